package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/cache"
	"lifeboard/internal/config"
	"lifeboard/internal/domain/expense"
	"lifeboard/internal/http/middlewares"
	"lifeboard/internal/reports"
)

type ExpensesStore interface {
	Create(ctx context.Context, e expense.Expense) error
	ListByUser(ctx context.Context, userID string, window expense.DateRange) ([]expense.Expense, error)
	GetByID(ctx context.Context, userID, id string) (expense.Expense, error)
	Update(ctx context.Context, userID, id string, e expense.Expense) (expense.Expense, error)
	Delete(ctx context.Context, userID, id string) error
}

type ExpensesHandler struct {
	repo    ExpensesStore
	reports cache.Store
	log     *slog.Logger
}

func NewExpensesHandler(repo ExpensesStore, reportCache cache.Store, log *slog.Logger) *ExpensesHandler {
	return &ExpensesHandler{
		repo:    repo,
		reports: reportCache,
		log:     log,
	}
}

func (h *ExpensesHandler) AddExpense(ctx *gin.Context) {
	var req expense.CreateExpenseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	e := expense.NewFromCreateRequest(userID, req)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Create(cctx, e); err != nil {
		h.log.Error("expense create failed", "err", err)
		RespondInternal(ctx, "Could not create expense")
		return
	}

	h.invalidateReport(cctx, userID)

	ctx.JSON(http.StatusCreated, e)
}

func (h *ExpensesHandler) GetAllExpenses(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.ListByUser(cctx, userID, expense.DateRange{})
	if err != nil {
		h.log.Error("expense list failed", "err", err)
		RespondInternal(ctx, "Could not list expenses")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, expenses)
}

func (h *ExpensesHandler) GetExpenseByID(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, userID, ctx.Param("expenseId"))
	if err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			RespondNotFound(ctx, "Expense not found")
			return
		}

		h.log.Error("expense fetch failed", "err", err)
		RespondInternal(ctx, "Could not fetch expense")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *ExpensesHandler) UpdateExpense(ctx *gin.Context) {
	var req expense.UpdateExpenseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.repo.Update(cctx, userID, ctx.Param("expenseId"), expense.Expense{
		ExpenseName: strings.TrimSpace(req.ExpenseName),
		ExpenseType: expense.NormalizeCategory(req.ExpenseType),
		Date:        req.Date,
		IssuedTo:    strings.TrimSpace(req.IssuedTo),
		Amount:      *req.Amount,
	})

	if err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			RespondNotFound(ctx, "Expense not found")
			return
		}

		h.log.Error("expense update failed", "err", err)
		RespondInternal(ctx, "Could not update expense")
		return
	}

	h.invalidateReport(cctx, userID)

	ctx.JSON(http.StatusOK, e)
}

func (h *ExpensesHandler) DeleteExpense(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, userID, ctx.Param("expenseId"))
	if err != nil {
		if errors.Is(err, expense.ErrNotFound) {
			RespondNotFound(ctx, "Expense not found")
			return
		}

		h.log.Error("expense delete failed", "err", err)
		RespondInternal(ctx, "Could not delete expense")
		return
	}

	h.invalidateReport(cctx, userID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

func (h *ExpensesHandler) GetExpensesByDate(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	window, err := dateWindowFromQuery(ctx, true)
	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.ListByUser(cctx, userID, window)
	if err != nil {
		h.log.Error("expense date filter failed", "err", err)
		RespondInternal(ctx, "Could not list expenses")
		return
	}

	ctx.JSON(http.StatusOK, expenses)
}

func (h *ExpensesHandler) GetExpensesByMonth(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	month, year, err := monthYearFromQuery(ctx, "month", "year")
	if err != nil {
		RespondBadRequest(ctx, "Month and year are required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.ListByUser(cctx, userID, expense.MonthRange(month, year))
	if err != nil {
		h.log.Error("expense month filter failed", "err", err)
		RespondInternal(ctx, "Could not list expenses")
		return
	}

	ctx.JSON(http.StatusOK, expenses)
}

// category sums in the two-month comparison keep the raw expenseType key
type monthCategorySum struct {
	ExpenseType string  `json:"expenseType"`
	Amount      float64 `json:"amount"`
}

func (h *ExpensesHandler) GetExpensesForTwoMonths(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	month1, year1, err1 := monthYearFromQuery(ctx, "month1", "year1")
	month2, year2, err2 := monthYearFromQuery(ctx, "month2", "year2")

	if err1 != nil || err2 != nil {
		RespondBadRequest(ctx, "Missing required query parameters", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	mon1, err := h.monthCategorySums(cctx, userID, month1, year1)
	if err != nil {
		h.log.Error("two-month comparison failed", "err", err)
		RespondInternal(ctx, "Could not compare months")
		return
	}

	mon2, err := h.monthCategorySums(cctx, userID, month2, year2)
	if err != nil {
		h.log.Error("two-month comparison failed", "err", err)
		RespondInternal(ctx, "Could not compare months")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"mon1": mon1,
		"mon2": mon2,
	})
}

// monthCategorySums aggregates one month independently; the two result
// arrays are never merged or aligned.
func (h *ExpensesHandler) monthCategorySums(ctx context.Context, userID string, month, year int) ([]monthCategorySum, error) {
	expenses, err := h.repo.ListByUser(ctx, userID, expense.MonthRange(month, year))
	if err != nil {
		return nil, err
	}

	totals := reports.CategoryTotals(expenses)

	out := make([]monthCategorySum, 0, len(totals))
	for _, t := range totals {
		out = append(out, monthCategorySum{ExpenseType: t.Category, Amount: t.Amount})
	}

	return out, nil
}

func (h *ExpensesHandler) invalidateReport(ctx context.Context, userID string) {
	if h.reports != nil {
		h.reports.Delete(ctx, cache.DashboardReportKey(userID))
	}
}

// dateWindowFromQuery reads startDate/endDate. Dates parse as RFC3339 or
// plain YYYY-MM-DD; when required is false, either bound may be absent.
func dateWindowFromQuery(ctx *gin.Context, required bool) (expense.DateRange, error) {
	var window expense.DateRange

	rawStart := ctx.Query("startDate")
	rawEnd := ctx.Query("endDate")

	if required && (rawStart == "" || rawEnd == "") {
		return window, errors.New("startDate and endDate are required")
	}

	if rawStart != "" {
		t, err := parseDate(rawStart)
		if err != nil {
			return window, errors.New("startDate is not a valid date")
		}
		window.Start = &t
	}

	if rawEnd != "" {
		t, err := parseDate(rawEnd)
		if err != nil {
			return window, errors.New("endDate is not a valid date")
		}
		window.End = &t
	}

	return window, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Parse("2006-01-02", raw)
}

func monthYearFromQuery(ctx *gin.Context, monthKey, yearKey string) (int, int, error) {
	month, err := strconv.Atoi(ctx.Query(monthKey))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New(monthKey + " is invalid")
	}

	year, err := strconv.Atoi(ctx.Query(yearKey))
	if err != nil || year < 1 {
		return 0, 0, errors.New(yearKey + " is invalid")
	}

	return month, year, nil
}
