package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lifeboard/internal/cache"
	"lifeboard/internal/config"
	"lifeboard/internal/domain/expense"
	"lifeboard/internal/http/middlewares"
	"lifeboard/internal/reports"
)

// AnalysisHandler serves the reporting endpoints. Aggregation itself lives
// in the reports package; this layer only parses parameters, fetches rows
// and shapes the response.
type AnalysisHandler struct {
	repo    ExpensesStore
	reports cache.Store
	log     *slog.Logger
}

func NewAnalysisHandler(repo ExpensesStore, reportCache cache.Store, log *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		repo:    repo,
		reports: reportCache,
		log:     log,
	}
}

func (h *AnalysisHandler) CategoryBreakdown(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	window, err := dateWindowFromQuery(ctx, true)
	if err != nil {
		RespondBadRequest(ctx, "Start date and end date are required.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.ListByUser(cctx, userID, window)
	if err != nil {
		h.log.Error("category breakdown failed", "err", err)
		RespondInternal(ctx, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, reports.CategoryBreakdown(expenses))
}

func (h *AnalysisHandler) SpendingTrends(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	window, err := dateWindowFromQuery(ctx, false)
	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	interval, err := reports.ParseInterval(ctx.Query("interval"))
	if err != nil {
		if errors.Is(err, reports.ErrUnknownInterval) {
			RespondBadRequest(ctx, "interval must be daily, weekly or monthly", nil)
			return
		}

		RespondInternal(ctx, err.Error())
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.ListByUser(cctx, userID, window)
	if err != nil {
		h.log.Error("spending trends failed", "err", err)
		RespondInternal(ctx, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"spendingTrends": reports.SpendingTrends(expenses, interval),
	})
}

func (h *AnalysisHandler) TopExpenses(ctx *gin.Context) {
	ranked, ok := h.rankedExpenses(ctx, reports.TopExpenses)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"topExpenses": ranked})
}

func (h *AnalysisHandler) LowestExpenses(ctx *gin.Context) {
	ranked, ok := h.rankedExpenses(ctx, reports.LowestExpenses)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"lowestExpenses": ranked})
}

func (h *AnalysisHandler) rankedExpenses(ctx *gin.Context, rank func([]expense.Expense, int) []reports.RankedExpense) ([]reports.RankedExpense, bool) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	window, err := dateWindowFromQuery(ctx, false)
	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return nil, false
	}

	limit := reports.DefaultRankLimit

	if raw := ctx.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			RespondBadRequest(ctx, "limit must be a positive number", nil)
			return nil, false
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	expenses, err := h.repo.ListByUser(cctx, userID, window)
	if err != nil {
		h.log.Error("expense ranking failed", "err", err)
		RespondInternal(ctx, err.Error())
		return nil, false
	}

	return rank(expenses, limit), true
}

// DashboardReport serves the chart payload, preferring the cached copy.
// The cache entry is dropped whenever the user writes an expense.
func (h *AnalysisHandler) DashboardReport(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	key := cache.DashboardReportKey(userID)

	if h.reports != nil {
		if cached, ok := h.reports.Get(cctx, key); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	expenses, err := h.repo.ListByUser(cctx, userID, expense.DateRange{})
	if err != nil {
		h.log.Error("dashboard report failed", "err", err)
		RespondInternal(ctx, "Server error")
		return
	}

	report := reports.Dashboard(expenses)

	if h.reports != nil {
		if body, err := json.Marshal(report); err == nil {
			h.reports.Set(cctx, key, body)
		}
	}

	ctx.JSON(http.StatusOK, report)
}
