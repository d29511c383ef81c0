package todo

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewList(userID, listName string) TodoList {
	now := time.Now().UTC()

	return TodoList{
		ID:        uuid.NewString(),
		UserID:    userID,
		ListName:  strings.TrimSpace(listName),
		Tasks:     []Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTask(listID string, req AddTaskRequest) Task {
	now := time.Now().UTC()

	return Task{
		ID:        uuid.NewString(),
		ListID:    listID,
		TaskName:  strings.TrimSpace(req.TaskName),
		Duration:  req.Duration,
		Reminder:  req.Reminder,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
