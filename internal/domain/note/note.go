package note

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultColor = "#FFF9A9" // pastel yellow

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type StickyNote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	Rotation  float64   `json:"rotation"`
	Position  Position  `json:"position"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("sticky note not found")

type CreateNoteRequest struct {
	Content  string   `json:"content" binding:"omitempty,max=2000"`
	Color    string   `json:"color" binding:"omitempty,max=30"`
	Rotation float64  `json:"rotation"`
	Position Position `json:"position"`
	Pinned   bool     `json:"pinned"`
}

// patch payload: only non-nil fields are applied
type UpdateNoteRequest struct {
	Content *string `json:"content" binding:"omitempty,max=2000"`
	Color   *string `json:"color" binding:"omitempty,max=30"`
}

func NewFromCreateRequest(userID string, req CreateNoteRequest) StickyNote {
	now := time.Now().UTC()

	color := req.Color
	if color == "" {
		color = DefaultColor
	}

	return StickyNote{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   strings.TrimSpace(req.Content),
		Color:     color,
		Rotation:  req.Rotation,
		Position:  req.Position,
		Pinned:    req.Pinned,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
