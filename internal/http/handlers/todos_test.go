package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/domain/todo"
	"lifeboard/internal/http/handlers"
	"lifeboard/internal/http/middlewares"
)

// Fake implementation of the handlers.TodosStore interface

type fakeTodosRepo struct {
	createListFn  func(ctx context.Context, list todo.TodoList) error
	listHeadersFn func(ctx context.Context, userID string) ([]todo.ListHeader, error)
	getListFn     func(ctx context.Context, listID, userID string) (todo.TodoList, error)
	renameListFn  func(ctx context.Context, userID, oldName, newName string) (todo.TodoList, error)
	deleteListFn  func(ctx context.Context, listID, userID string) error
	addTaskFn     func(ctx context.Context, userID string, t todo.Task) (todo.Task, error)
	getTaskFn     func(ctx context.Context, listID, userID, taskID string) (todo.Task, error)
	updateTaskFn  func(ctx context.Context, listID, userID, taskID string, req todo.UpdateTaskRequest) (todo.Task, error)
	deleteTaskFn  func(ctx context.Context, listID, userID, taskID string) error
	summaryFn     func(ctx context.Context, userID string, limit int) (todo.Summary, error)
}

func (f *fakeTodosRepo) CreateList(ctx context.Context, list todo.TodoList) error {
	if f.createListFn != nil {
		return f.createListFn(ctx, list)
	}
	return nil
}

func (f *fakeTodosRepo) ListHeaders(ctx context.Context, userID string) ([]todo.ListHeader, error) {
	if f.listHeadersFn != nil {
		return f.listHeadersFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeTodosRepo) GetList(ctx context.Context, listID, userID string) (todo.TodoList, error) {
	if f.getListFn != nil {
		return f.getListFn(ctx, listID, userID)
	}
	return todo.TodoList{}, nil
}

func (f *fakeTodosRepo) RenameList(ctx context.Context, userID, oldName, newName string) (todo.TodoList, error) {
	if f.renameListFn != nil {
		return f.renameListFn(ctx, userID, oldName, newName)
	}
	return todo.TodoList{}, nil
}

func (f *fakeTodosRepo) DeleteList(ctx context.Context, listID, userID string) error {
	if f.deleteListFn != nil {
		return f.deleteListFn(ctx, listID, userID)
	}
	return nil
}

func (f *fakeTodosRepo) AddTask(ctx context.Context, userID string, t todo.Task) (todo.Task, error) {
	if f.addTaskFn != nil {
		return f.addTaskFn(ctx, userID, t)
	}
	return t, nil
}

func (f *fakeTodosRepo) GetTask(ctx context.Context, listID, userID, taskID string) (todo.Task, error) {
	if f.getTaskFn != nil {
		return f.getTaskFn(ctx, listID, userID, taskID)
	}
	return todo.Task{}, nil
}

func (f *fakeTodosRepo) UpdateTask(ctx context.Context, listID, userID, taskID string, req todo.UpdateTaskRequest) (todo.Task, error) {
	if f.updateTaskFn != nil {
		return f.updateTaskFn(ctx, listID, userID, taskID, req)
	}
	return todo.Task{}, nil
}

func (f *fakeTodosRepo) DeleteTask(ctx context.Context, listID, userID, taskID string) error {
	if f.deleteTaskFn != nil {
		return f.deleteTaskFn(ctx, listID, userID, taskID)
	}
	return nil
}

func (f *fakeTodosRepo) Summary(ctx context.Context, userID string, limit int) (todo.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, userID, limit)
	}
	return todo.Summary{}, nil
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddNewListConflict(t *testing.T) {
	repo := &fakeTodosRepo{
		createListFn: func(context.Context, todo.TodoList) error {
			return todo.ErrDuplicateList
		},
	}

	h := handlers.NewTodosHandler(repo, testLogger)
	r := authedRouter(http.MethodPost, "/lists/addList", h.AddNewList)

	w := postJSON(r, "/lists/addList", gin.H{"listName": "Chores"})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestAddNewListCreated(t *testing.T) {
	var created todo.TodoList

	repo := &fakeTodosRepo{
		createListFn: func(_ context.Context, list todo.TodoList) error {
			created = list
			return nil
		},
	}

	h := handlers.NewTodosHandler(repo, testLogger)
	r := authedRouter(http.MethodPost, "/lists/addList", h.AddNewList)

	w := postJSON(r, "/lists/addList", gin.H{"listName": "Chores"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if created.UserID != "u-1" || created.ListName != "Chores" {
		t.Fatalf("created = %+v", created)
	}
	if created.ID == "" {
		t.Fatal("created list has no id")
	}
}

func TestAddTaskToList(t *testing.T) {
	repo := &fakeTodosRepo{
		addTaskFn: func(_ context.Context, userID string, task todo.Task) (todo.Task, error) {
			if userID != "u-1" {
				t.Fatalf("userID = %q", userID)
			}
			if task.ListID != "list-1" {
				t.Fatalf("listID = %q", task.ListID)
			}
			return task, nil
		},
	}

	h := handlers.NewTodosHandler(repo, testLogger)
	r := authedRouter(http.MethodPost, "/lists/addTask/:listId", h.AddTaskToList)

	w := postJSON(r, "/lists/addTask/list-1", gin.H{
		"taskName": "Pay rent",
		"duration": time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got struct {
		Message string `json:"message"`
		Task    struct {
			ID        string `json:"id"`
			TaskName  string `json:"taskName"`
			Completed bool   `json:"completed"`
		} `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Task.ID == "" {
		t.Fatal("task has no generated id")
	}
	if got.Task.Completed {
		t.Fatal("new task must start incomplete")
	}
}

func TestAddTaskToMissingList(t *testing.T) {
	repo := &fakeTodosRepo{
		addTaskFn: func(context.Context, string, todo.Task) (todo.Task, error) {
			return todo.Task{}, todo.ErrListNotFound
		},
	}

	h := handlers.NewTodosHandler(repo, testLogger)
	r := authedRouter(http.MethodPost, "/lists/addTask/:listId", h.AddTaskToList)

	w := postJSON(r, "/lists/addTask/nope", gin.H{
		"taskName": "Pay rent",
		"duration": time.Now().UTC(),
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetAllListsEmptyIsNotFound(t *testing.T) {
	h := handlers.NewTodosHandler(&fakeTodosRepo{}, testLogger)
	r := authedRouter(http.MethodGet, "/lists", h.GetAllLists)

	req := httptest.NewRequest(http.MethodGet, "/lists", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestTaskErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "missing list", err: todo.ErrListNotFound, wantStatus: http.StatusNotFound},
		{name: "missing task", err: todo.ErrTaskNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeTodosRepo{
				getTaskFn: func(context.Context, string, string, string) (todo.Task, error) {
					return todo.Task{}, tc.err
				},
			}

			h := handlers.NewTodosHandler(repo, testLogger)
			r := authedRouter(http.MethodGet, "/lists/:listId/task/:taskId", h.GetTaskByID)

			req := httptest.NewRequest(http.MethodGet, "/lists/l1/task/t1", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestSummaryPassesLimit(t *testing.T) {
	repo := &fakeTodosRepo{
		summaryFn: func(_ context.Context, userID string, limit int) (todo.Summary, error) {
			if limit != 5 {
				t.Fatalf("limit = %d, want 5", limit)
			}
			return todo.Summary{
				Pending: []todo.Task{{ID: "t1", TaskName: "A"}},
				Done:    []todo.Task{},
			}, nil
		},
	}

	h := handlers.NewTodosHandler(repo, testLogger)
	r := authedRouter(http.MethodGet, "/lists/summary", h.GetSummary)

	req := httptest.NewRequest(http.MethodGet, "/lists/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got todo.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Pending) != 1 || len(got.Done) != 0 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestRenameListConflict(t *testing.T) {
	repo := &fakeTodosRepo{
		renameListFn: func(_ context.Context, _, oldName, newName string) (todo.TodoList, error) {
			if oldName != "Chores" || newName != "Errands" {
				t.Fatalf("rename %q -> %q", oldName, newName)
			}
			return todo.TodoList{}, todo.ErrDuplicateList
		},
	}

	h := handlers.NewTodosHandler(repo, testLogger)

	r := gin.New()
	r.PUT("/lists/rename/:listName", middlewares.WithIdentity("u-1", "user"), h.UpdateListName)

	body, _ := json.Marshal(gin.H{"newListName": "Errands"})
	req := httptest.NewRequest(http.MethodPut, "/lists/rename/Chores", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}
