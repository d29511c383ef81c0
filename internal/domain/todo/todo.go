package todo

import (
	"errors"
	"time"
)

type TodoList struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ListName  string    `json:"listName"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Task rows belong to exactly one list and only exist inside its lifecycle.
type Task struct {
	ID        string     `json:"id"`
	ListID    string     `json:"-"`
	TaskName  string     `json:"taskName"`
	Duration  time.Time  `json:"duration"`
	Reminder  *time.Time `json:"reminder"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

var (
	ErrListNotFound  = errors.New("todo list not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrDuplicateList = errors.New("todo list already exists")
)

type CreateListRequest struct {
	ListName string `json:"listName" binding:"required,min=1,max=120"`
}

type RenameListRequest struct {
	NewListName string `json:"newListName" binding:"required,min=1,max=120"`
}

type AddTaskRequest struct {
	TaskName string     `json:"taskName" binding:"required,min=1,max=200"`
	Duration time.Time  `json:"duration" binding:"required"`
	Reminder *time.Time `json:"reminder"`
}

// patch payload: only non-nil fields are applied
type UpdateTaskRequest struct {
	TaskName  *string `json:"taskName" binding:"omitempty,min=1,max=200"`
	Completed *bool   `json:"completed"`
}

// Summary is the dashboard view over all of a user's lists.
type Summary struct {
	Pending []Task `json:"pending"`
	Done    []Task `json:"done"`
}

// ListHeader is the compact shape used when enumerating lists.
type ListHeader struct {
	ID       string `json:"id"`
	ListName string `json:"listName"`
}
