package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/domain/expense"
	"lifeboard/internal/domain/user"
	"lifeboard/internal/http/handlers"
	"lifeboard/internal/http/middlewares"
)

type fakeTaskCounter struct {
	pending, done int
}

func (f *fakeTaskCounter) CountTasks(context.Context, string) (int, int, error) {
	return f.pending, f.done, nil
}

type fakeAggregator struct {
	sumFn func(ctx context.Context, userID string, window expense.DateRange) (float64, error)
	topFn func(ctx context.Context, userID string, window expense.DateRange) (expense.Expense, error)
}

func (f *fakeAggregator) SumInRange(ctx context.Context, userID string, window expense.DateRange) (float64, error) {
	if f.sumFn != nil {
		return f.sumFn(ctx, userID, window)
	}
	return 0, nil
}

func (f *fakeAggregator) TopInRange(ctx context.Context, userID string, window expense.DateRange) (expense.Expense, error) {
	if f.topFn != nil {
		return f.topFn(ctx, userID, window)
	}
	return expense.Expense{}, expense.ErrNotFound
}

func profileRouter(h *handlers.ProfileHandler, actingID, role string) *gin.Engine {
	r := gin.New()
	r.GET("/profile/:userId", middlewares.WithIdentity(actingID, role), h.Dashboard)
	return r
}

func TestProfileForbiddenForOtherUser(t *testing.T) {
	h := handlers.NewProfileHandler(&fakeUsersRepo{}, &fakeTaskCounter{}, &fakeAggregator{}, testLogger)

	r := profileRouter(h, "u-1", "user")

	req := httptest.NewRequest(http.MethodGet, "/profile/u-2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestProfileAdminMayReadAnyUser(t *testing.T) {
	users := &fakeUsersRepo{
		getByIDFn: func(_ context.Context, id string) (user.User, error) {
			return user.User{ID: id, Username: "ada", Email: "ada@example.com"}, nil
		},
	}

	h := handlers.NewProfileHandler(users, &fakeTaskCounter{}, &fakeAggregator{}, testLogger)

	r := profileRouter(h, "admin-1", "admin")

	req := httptest.NewRequest(http.MethodGet, "/profile/u-2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestProfileShape(t *testing.T) {
	users := &fakeUsersRepo{
		getByIDFn: func(_ context.Context, id string) (user.User, error) {
			return user.User{ID: id, Username: "ada", Email: "ada@example.com"}, nil
		},
	}

	sums := map[int]float64{0: 120.5, 1: 80}
	call := 0

	agg := &fakeAggregator{
		sumFn: func(context.Context, string, expense.DateRange) (float64, error) {
			v := sums[call]
			call++
			return v, nil
		},
		topFn: func(context.Context, string, expense.DateRange) (expense.Expense, error) {
			return expense.Expense{ID: "e1", ExpenseName: "Rent", Amount: 100}, nil
		},
	}

	h := handlers.NewProfileHandler(users, &fakeTaskCounter{pending: 3, done: 2}, agg, testLogger)

	r := profileRouter(h, "u-1", "user")

	req := httptest.NewRequest(http.MethodGet, "/profile/u-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got struct {
		Username            string          `json:"username"`
		Email               string          `json:"email"`
		TodoPendingCount    int             `json:"todo_pending_count"`
		TodoDoneCount       int             `json:"todo_done_count"`
		CurrentMonthExpense float64         `json:"current_month_expense"`
		LastMonthExpense    float64         `json:"last_month_expense"`
		TopExpense          json.RawMessage `json:"top_expense"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Username != "ada" || got.TodoPendingCount != 3 || got.TodoDoneCount != 2 {
		t.Fatalf("profile = %+v", got)
	}
	if got.CurrentMonthExpense != 120.5 || got.LastMonthExpense != 80 {
		t.Fatalf("totals = %v / %v", got.CurrentMonthExpense, got.LastMonthExpense)
	}
	if string(got.TopExpense) == "null" {
		t.Fatal("expected a top expense object")
	}
}

func TestProfileTopExpenseNullWhenNone(t *testing.T) {
	users := &fakeUsersRepo{
		getByIDFn: func(_ context.Context, id string) (user.User, error) {
			return user.User{ID: id, Username: "ada"}, nil
		},
	}

	h := handlers.NewProfileHandler(users, &fakeTaskCounter{}, &fakeAggregator{}, testLogger)

	r := profileRouter(h, "u-1", "user")

	req := httptest.NewRequest(http.MethodGet, "/profile/u-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(got["top_expense"]) != "null" {
		t.Fatalf("top_expense = %s, want null", got["top_expense"])
	}
}
