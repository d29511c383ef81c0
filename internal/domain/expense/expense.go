package expense

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Expense struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ExpenseName string    `json:"expenseName"`
	ExpenseType string    `json:"expenseType"`
	Date        time.Time `json:"date"`
	IssuedTo    string    `json:"issuedTo"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("expense not found")

// Categories shown by the client; free text is accepted too, normalized to
// the same Title-Case shape before it is stored.
var Categories = []string{"Custom", "Retail", "Electronic", "Food", "Travel", "Utilities", "Other"}

var titleCaser = cases.Title(language.English)

// NormalizeCategory is the single normalization point for expense types.
func NormalizeCategory(raw string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(raw)))
}

type CreateExpenseRequest struct {
	ExpenseName string    `json:"expenseName" binding:"required,min=1,max=120"`
	ExpenseType string    `json:"expenseType" binding:"required,min=1,max=60"`
	Date        time.Time `json:"date" binding:"required"`
	IssuedTo    string    `json:"issuedTo" binding:"required,min=1,max=120"`
	Amount      *float64  `json:"amount" binding:"required,gte=0"`
}

// full replacement payload, mirroring the create shape
type UpdateExpenseRequest struct {
	ExpenseName string    `json:"expenseName" binding:"required,min=1,max=120"`
	ExpenseType string    `json:"expenseType" binding:"required,min=1,max=60"`
	Date        time.Time `json:"date" binding:"required"`
	IssuedTo    string    `json:"issuedTo" binding:"required,min=1,max=120"`
	Amount      *float64  `json:"amount" binding:"required,gte=0"`
}

// DateRange is an inclusive [Start, End] window; nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// MonthRange expands (month, year) to the month's full inclusive range:
// day 1 00:00:00 through last-day 23:59:59.
func MonthRange(month, year int) DateRange {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	return DateRange{Start: &start, End: &end}
}
