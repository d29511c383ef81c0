package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/config"
	"lifeboard/internal/domain/todo"
	"lifeboard/internal/http/middlewares"
)

type TodosStore interface {
	CreateList(ctx context.Context, list todo.TodoList) error
	ListHeaders(ctx context.Context, userID string) ([]todo.ListHeader, error)
	GetList(ctx context.Context, listID, userID string) (todo.TodoList, error)
	RenameList(ctx context.Context, userID, oldName, newName string) (todo.TodoList, error)
	DeleteList(ctx context.Context, listID, userID string) error
	AddTask(ctx context.Context, userID string, t todo.Task) (todo.Task, error)
	GetTask(ctx context.Context, listID, userID, taskID string) (todo.Task, error)
	UpdateTask(ctx context.Context, listID, userID, taskID string, req todo.UpdateTaskRequest) (todo.Task, error)
	DeleteTask(ctx context.Context, listID, userID, taskID string) error
	Summary(ctx context.Context, userID string, limit int) (todo.Summary, error)
}

type TodosHandler struct {
	repo TodosStore
	log  *slog.Logger
}

func NewTodosHandler(repo TodosStore, log *slog.Logger) *TodosHandler {
	return &TodosHandler{repo: repo, log: log}
}

const summaryLimit = 5

func (h *TodosHandler) AddNewList(ctx *gin.Context) {
	var req todo.CreateListRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	list := todo.NewList(userID, req.ListName)

	// the unique constraint is the race arbiter: a concurrent create with
	// the same name loses with the same conflict answer
	if err := h.repo.CreateList(cctx, list); err != nil {
		if errors.Is(err, todo.ErrDuplicateList) {
			RespondConflict(ctx, "Todo list already exists for this user with the name: "+req.ListName)
			return
		}

		h.log.Error("list create failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Todo list created successfully",
		"list":    list,
	})
}

func (h *TodosHandler) AddTaskToList(ctx *gin.Context) {
	var req todo.AddTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	task, err := h.repo.AddTask(cctx, userID, todo.NewTask(ctx.Param("listId"), req))
	if err != nil {
		if errors.Is(err, todo.ErrListNotFound) {
			RespondNotFound(ctx, "Todo list not found for the user")
			return
		}

		h.log.Error("task add failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Task added successfully",
		"task":    task,
	})
}

func (h *TodosHandler) GetAllLists(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	lists, err := h.repo.ListHeaders(cctx, userID)
	if err != nil {
		h.log.Error("list enumeration failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	if len(lists) == 0 {
		RespondNotFound(ctx, "No todo lists found for the user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Todo lists retrieved successfully",
		"lists":   lists,
	})
}

func (h *TodosHandler) GetAllTasksFromList(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	list, err := h.repo.GetList(cctx, ctx.Param("listId"), userID)
	if err != nil {
		if errors.Is(err, todo.ErrListNotFound) {
			RespondNotFound(ctx, "Todo list not found for the user")
			return
		}

		h.log.Error("list fetch failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Tasks retrieved successfully",
		"tasks":   list.Tasks,
	})
}

func (h *TodosHandler) UpdateListName(ctx *gin.Context) {
	var req todo.RenameListRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.RenameList(cctx, userID, ctx.Param("listName"), req.NewListName)
	if err != nil {
		switch {
		case errors.Is(err, todo.ErrListNotFound):
			RespondNotFound(ctx, "Todo list not found for the user")
		case errors.Is(err, todo.ErrDuplicateList):
			RespondConflict(ctx, "Todo list already exists for this user with the name: "+req.NewListName)
		default:
			h.log.Error("list rename failed", "err", err)
			RespondInternal(ctx, "Server error")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Todo list name updated successfully",
		"updatedList": updated,
	})
}

func (h *TodosHandler) DeleteList(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	listID := ctx.Param("listId")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// fetch first so the response can echo what was removed
	deleted, err := h.repo.GetList(cctx, listID, userID)
	if err == nil {
		err = h.repo.DeleteList(cctx, listID, userID)
	}

	if err != nil {
		if errors.Is(err, todo.ErrListNotFound) {
			RespondNotFound(ctx, "Todo list not found for the user")
			return
		}

		h.log.Error("list delete failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Todo list deleted successfully",
		"deletedList": deleted,
	})
}

func (h *TodosHandler) GetTaskByID(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	task, err := h.repo.GetTask(cctx, ctx.Param("listId"), userID, ctx.Param("taskId"))
	if err != nil {
		h.respondTaskError(ctx, err, "task fetch failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TodosHandler) UpdateTaskByID(ctx *gin.Context) {
	var req todo.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	task, err := h.repo.UpdateTask(cctx, ctx.Param("listId"), userID, ctx.Param("taskId"), req)
	if err != nil {
		h.respondTaskError(ctx, err, "task update failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (h *TodosHandler) DeleteTaskByID(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.DeleteTask(cctx, ctx.Param("listId"), userID, ctx.Param("taskId"))
	if err != nil {
		h.respondTaskError(ctx, err, "task delete failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *TodosHandler) GetSummary(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	summary, err := h.repo.Summary(cctx, userID, summaryLimit)
	if err != nil {
		h.log.Error("summary failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func (h *TodosHandler) respondTaskError(ctx *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, todo.ErrListNotFound):
		RespondNotFound(ctx, "Todo list not found")
	case errors.Is(err, todo.ErrTaskNotFound):
		RespondNotFound(ctx, "Task not found in the todo list")
	default:
		h.log.Error(logMsg, "err", err)
		RespondInternal(ctx, "Server error")
	}
}
