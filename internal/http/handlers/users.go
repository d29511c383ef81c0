package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/config"
	"lifeboard/internal/domain/expense"
	"lifeboard/internal/domain/user"
	"lifeboard/internal/http/middlewares"
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type TaskCounter interface {
	CountTasks(ctx context.Context, userID string) (pending int, done int, err error)
}

type ExpenseAggregator interface {
	SumInRange(ctx context.Context, userID string, window expense.DateRange) (float64, error)
	TopInRange(ctx context.Context, userID string, window expense.DateRange) (expense.Expense, error)
}

// ProfileHandler assembles the user dashboard: identity, task counts and
// the month-over-month expense picture. Sub-fetches are independent reads,
// so the view is a best-effort snapshot, not a transaction.
type ProfileHandler struct {
	users    UserReader
	todos    TaskCounter
	expenses ExpenseAggregator
	log      *slog.Logger
}

func NewProfileHandler(users UserReader, todos TaskCounter, expenses ExpenseAggregator, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		users:    users,
		todos:    todos,
		expenses: expenses,
		log:      log,
	}
}

func (h *ProfileHandler) Dashboard(ctx *gin.Context) {
	targetID := ctx.Param("userId")

	actingID, _ := middlewares.UserIDFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	// users may only read their own profile; admins may read any
	if targetID != actingID && role != "admin" {
		RespondForbidden(ctx, "Cannot access another user's profile")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, targetID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("profile lookup failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	pending, done, err := h.todos.CountTasks(cctx, targetID)
	if err != nil {
		h.log.Error("task counts failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	now := time.Now().UTC()
	currentMonth := expense.MonthRange(int(now.Month()), now.Year())

	// anchor on the last day of the prior month so day-31 dates cannot
	// normalize into the wrong month
	lastOfPrior := currentMonth.Start.AddDate(0, 0, -1)
	priorMonth := expense.MonthRange(int(lastOfPrior.Month()), lastOfPrior.Year())

	currentTotal, err := h.expenses.SumInRange(cctx, targetID, currentMonth)
	if err != nil {
		h.log.Error("current month sum failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	priorTotal, err := h.expenses.SumInRange(cctx, targetID, priorMonth)
	if err != nil {
		h.log.Error("prior month sum failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	var topExpense any
	top, err := h.expenses.TopInRange(cctx, targetID, currentMonth)

	switch {
	case err == nil:
		topExpense = top
	case errors.Is(err, expense.ErrNotFound):
		topExpense = nil
	default:
		h.log.Error("top expense failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"username":              u.Username,
		"email":                 u.Email,
		"todo_pending_count":    pending,
		"todo_done_count":       done,
		"current_month_expense": currentTotal,
		"last_month_expense":    priorTotal,
		"top_expense":           topExpense,
	})
}
