package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lifeboard/internal/domain/expense"
	"lifeboard/internal/observability"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpensesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewExpensesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ExpensesRepo {
	return &ExpensesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ExpensesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const expenseColumns = `id, user_id, expense_name, expense_type, expense_date, issued_to, amount, created_at, updated_at`

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var e expense.Expense

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.ExpenseName,
		&e.ExpenseType,
		&e.Date,
		&e.IssuedTo,
		&e.Amount,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense.Expense{}, expense.ErrNotFound
		}
		return expense.Expense{}, err
	}

	return e, nil
}

func (r *ExpensesRepo) Create(ctx context.Context, e expense.Expense) error {
	return r.observe("expenses.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO expenses (id, user_id, expense_name, expense_type, expense_date, issued_to, amount, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			e.ID, e.UserID, e.ExpenseName, e.ExpenseType, e.Date, e.IssuedTo, e.Amount, e.CreatedAt, e.UpdatedAt,
		)
		return err
	})
}

// ListByUser returns a user's expenses, optionally windowed by the inclusive
// date range. Order is date ascending then id for stable output.
func (r *ExpensesRepo) ListByUser(ctx context.Context, userID string, window expense.DateRange) ([]expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses`

	conds := []string{"user_id = $1"}
	args := []interface{}{userID}
	argsPosition := 2

	if window.Start != nil {
		conds = append(conds, fmt.Sprintf("expense_date >= $%d", argsPosition))
		args = append(args, *window.Start)
		argsPosition++
	}

	if window.End != nil {
		conds = append(conds, fmt.Sprintf("expense_date <= $%d", argsPosition))
		args = append(args, *window.End)
		argsPosition++
	}

	query += " WHERE " + strings.Join(conds, " AND ")
	query += " ORDER BY expense_date ASC, id ASC"

	var rows pgx.Rows
	err := r.observe("expenses.list_by_user", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]expense.Expense, 0)

	for rows.Next() {
		var e expense.Expense

		err = rows.Scan(&e.ID, &e.UserID, &e.ExpenseName, &e.ExpenseType, &e.Date, &e.IssuedTo, &e.Amount, &e.CreatedAt, &e.UpdatedAt)

		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ExpensesRepo) GetByID(ctx context.Context, userID, id string) (e expense.Expense, err error) {
	err = r.observe("expenses.get_by_id", func() error {
		var serr error
		e, serr = scanExpense(r.pool.QueryRow(ctx,
			`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`,
			id, userID,
		))
		return serr
	})
	return
}

func (r *ExpensesRepo) Update(ctx context.Context, userID, id string, e expense.Expense) (out expense.Expense, err error) {
	err = r.observe("expenses.update", func() error {
		var serr error
		out, serr = scanExpense(r.pool.QueryRow(ctx,
			`UPDATE expenses
				SET expense_name = $3,
				    expense_type = $4,
				    expense_date = $5,
				    issued_to = $6,
				    amount = $7,
				    updated_at = NOW()
			 WHERE id = $1 AND user_id = $2
			 RETURNING `+expenseColumns,
			id, userID, e.ExpenseName, e.ExpenseType, e.Date, e.IssuedTo, e.Amount,
		))
		return serr
	})
	return
}

func (r *ExpensesRepo) Delete(ctx context.Context, userID, id string) error {
	return r.observe("expenses.delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return expense.ErrNotFound
		}

		return nil
	})
}

// SumInRange totals a user's spending inside the window with a single
// aggregate query; the dashboard aggregator calls this twice per request.
func (r *ExpensesRepo) SumInRange(ctx context.Context, userID string, window expense.DateRange) (float64, error) {
	var total float64

	err := r.observe("expenses.sum_in_range", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COALESCE(SUM(amount), 0)
			   FROM expenses
			  WHERE user_id = $1
			    AND ($2::timestamptz IS NULL OR expense_date >= $2)
			    AND ($3::timestamptz IS NULL OR expense_date <= $3)`,
			userID, window.Start, window.End,
		).Scan(&total)
	})

	return total, err
}

// TopInRange returns the single highest-amount expense in the window, or
// expense.ErrNotFound when the window is empty.
func (r *ExpensesRepo) TopInRange(ctx context.Context, userID string, window expense.DateRange) (e expense.Expense, err error) {
	err = r.observe("expenses.top_in_range", func() error {
		var serr error
		e, serr = scanExpense(r.pool.QueryRow(ctx,
			`SELECT `+expenseColumns+`
			   FROM expenses
			  WHERE user_id = $1
			    AND ($2::timestamptz IS NULL OR expense_date >= $2)
			    AND ($3::timestamptz IS NULL OR expense_date <= $3)
			  ORDER BY amount DESC, expense_date DESC, id ASC
			  LIMIT 1`,
			userID, window.Start, window.End,
		))
		return serr
	})
	return
}
