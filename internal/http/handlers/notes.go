package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/config"
	"lifeboard/internal/domain/note"
	"lifeboard/internal/http/middlewares"
)

type NotesStore interface {
	Create(ctx context.Context, n note.StickyNote) error
	ListByUser(ctx context.Context, userID string) ([]note.StickyNote, error)
	Update(ctx context.Context, userID, id string, req note.UpdateNoteRequest) (note.StickyNote, error)
	Delete(ctx context.Context, userID, id string) error
}

type NotesHandler struct {
	repo NotesStore
	log  *slog.Logger
}

func NewNotesHandler(repo NotesStore, log *slog.Logger) *NotesHandler {
	return &NotesHandler{repo: repo, log: log}
}

func (h *NotesHandler) CreateStickyNote(ctx *gin.Context) {
	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	n := note.NewFromCreateRequest(userID, req)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Create(cctx, n); err != nil {
		h.log.Error("note create failed", "err", err)
		RespondInternal(ctx, "Failed to create sticky note")
		return
	}

	ctx.JSON(http.StatusCreated, n)
}

func (h *NotesHandler) GetStickyNotes(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	notes, err := h.repo.ListByUser(cctx, userID)
	if err != nil {
		h.log.Error("note list failed", "err", err)
		RespondInternal(ctx, "Failed to fetch sticky notes")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, notes)
}

func (h *NotesHandler) UpdateStickyNote(ctx *gin.Context) {
	var req note.UpdateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, userID, ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}

		h.log.Error("note update failed", "err", err)
		RespondInternal(ctx, "Failed to update sticky note")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *NotesHandler) DeleteStickyNote(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			RespondNotFound(ctx, "Note not found")
			return
		}

		h.log.Error("note delete failed", "err", err)
		RespondInternal(ctx, "Failed to delete sticky note")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sticky note deleted"})
}
