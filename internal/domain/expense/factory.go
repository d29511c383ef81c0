package expense

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateExpenseRequest) Expense {
	now := time.Now().UTC()

	return Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		ExpenseName: strings.TrimSpace(req.ExpenseName),
		ExpenseType: NormalizeCategory(req.ExpenseType),
		Date:        req.Date,
		IssuedTo:    strings.TrimSpace(req.IssuedTo),
		Amount:      *req.Amount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
