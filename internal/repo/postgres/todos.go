package postgres

import (
	"context"
	"errors"

	"lifeboard/internal/domain/todo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TodosRepo struct {
	pool *pgxpool.Pool
}

func NewTodosRepo(pool *pgxpool.Pool) *TodosRepo {
	return &TodosRepo{pool: pool}
}

func (r *TodosRepo) CreateList(ctx context.Context, list todo.TodoList) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO todo_lists (id, user_id, list_name, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		list.ID, list.UserID, list.ListName, list.CreatedAt, list.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		// (user_id, list_name) unique constraint arbitrates concurrent creates
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "todo_lists_user_name_uniq" {
			return todo.ErrDuplicateList
		}
		return err
	}

	return nil
}

func (r *TodosRepo) ListHeaders(ctx context.Context, userID string) ([]todo.ListHeader, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, list_name FROM todo_lists WHERE user_id = $1 ORDER BY created_at ASC, id ASC`,
		userID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]todo.ListHeader, 0)

	for rows.Next() {
		var h todo.ListHeader

		if err = rows.Scan(&h.ID, &h.ListName); err != nil {
			return nil, err
		}
		out = append(out, h)
	}

	return out, rows.Err()
}

// GetList loads a list with its tasks, scoped to the owning user.
func (r *TodosRepo) GetList(ctx context.Context, listID, userID string) (todo.TodoList, error) {
	var list todo.TodoList

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, list_name, created_at, updated_at
		   FROM todo_lists
		  WHERE id = $1 AND user_id = $2`,
		listID, userID,
	).Scan(&list.ID, &list.UserID, &list.ListName, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.TodoList{}, todo.ErrListNotFound
		}
		return todo.TodoList{}, err
	}

	tasks, err := r.tasksForList(ctx, list.ID)

	if err != nil {
		return todo.TodoList{}, err
	}

	list.Tasks = tasks
	return list, nil
}

func (r *TodosRepo) tasksForList(ctx context.Context, listID string) ([]todo.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, list_id, task_name, duration, reminder, completed, created_at, updated_at
		   FROM tasks
		  WHERE list_id = $1
		  ORDER BY created_at ASC, id ASC`,
		listID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	tasks := make([]todo.Task, 0)

	for rows.Next() {
		var t todo.Task

		if err = rows.Scan(&t.ID, &t.ListID, &t.TaskName, &t.Duration, &t.Reminder, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (r *TodosRepo) RenameList(ctx context.Context, userID, oldName, newName string) (todo.TodoList, error) {
	var list todo.TodoList

	err := r.pool.QueryRow(ctx,
		`UPDATE todo_lists
			SET list_name = $3, updated_at = NOW()
		 WHERE list_name = $1 AND user_id = $2
		 RETURNING id, user_id, list_name, created_at, updated_at`,
		oldName, userID, newName,
	).Scan(&list.ID, &list.UserID, &list.ListName, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.TodoList{}, todo.ErrListNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return todo.TodoList{}, todo.ErrDuplicateList
		}
		return todo.TodoList{}, err
	}

	return list, nil
}

// DeleteList removes a list; its tasks go with it via the FK cascade, so
// the whole aggregate disappears in one statement.
func (r *TodosRepo) DeleteList(ctx context.Context, listID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM todo_lists WHERE id = $1 AND user_id = $2`,
		listID, userID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return todo.ErrListNotFound
	}

	return nil
}

// AddTask appends a task after verifying the list belongs to the user. The
// insert is a single row, so concurrent appends never clobber each other.
func (r *TodosRepo) AddTask(ctx context.Context, userID string, t todo.Task) (todo.Task, error) {
	if err := r.requireList(ctx, t.ListID, userID); err != nil {
		return todo.Task{}, err
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, list_id, task_name, duration, reminder, completed, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.ListID, t.TaskName, t.Duration, t.Reminder, t.Completed, t.CreatedAt, t.UpdatedAt,
	)

	if err != nil {
		return todo.Task{}, err
	}

	return t, nil
}

func (r *TodosRepo) GetTask(ctx context.Context, listID, userID, taskID string) (todo.Task, error) {
	if err := r.requireList(ctx, listID, userID); err != nil {
		return todo.Task{}, err
	}

	var t todo.Task

	err := r.pool.QueryRow(ctx,
		`SELECT id, list_id, task_name, duration, reminder, completed, created_at, updated_at
		   FROM tasks
		  WHERE id = $1 AND list_id = $2`,
		taskID, listID,
	).Scan(&t.ID, &t.ListID, &t.TaskName, &t.Duration, &t.Reminder, &t.Completed, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Task{}, todo.ErrTaskNotFound
		}
		return todo.Task{}, err
	}

	return t, nil
}

// UpdateTask patches only the supplied fields.
func (r *TodosRepo) UpdateTask(ctx context.Context, listID, userID, taskID string, req todo.UpdateTaskRequest) (todo.Task, error) {
	if err := r.requireList(ctx, listID, userID); err != nil {
		return todo.Task{}, err
	}

	var t todo.Task

	err := r.pool.QueryRow(ctx,
		`UPDATE tasks
			SET task_name = COALESCE($3, task_name),
			    completed = COALESCE($4, completed),
			    updated_at = NOW()
		 WHERE id = $1 AND list_id = $2
		 RETURNING id, list_id, task_name, duration, reminder, completed, created_at, updated_at`,
		taskID, listID, req.TaskName, req.Completed,
	).Scan(&t.ID, &t.ListID, &t.TaskName, &t.Duration, &t.Reminder, &t.Completed, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Task{}, todo.ErrTaskNotFound
		}
		return todo.Task{}, err
	}

	return t, nil
}

func (r *TodosRepo) DeleteTask(ctx context.Context, listID, userID, taskID string) error {
	if err := r.requireList(ctx, listID, userID); err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND list_id = $2`,
		taskID, listID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return todo.ErrTaskNotFound
	}

	return nil
}

// Summary flattens tasks across all of the user's lists: up to limit
// incomplete and up to limit completed, in storage order.
func (r *TodosRepo) Summary(ctx context.Context, userID string, limit int) (todo.Summary, error) {
	summary := todo.Summary{
		Pending: []todo.Task{},
		Done:    []todo.Task{},
	}

	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.list_id, t.task_name, t.duration, t.reminder, t.completed, t.created_at, t.updated_at
		   FROM tasks t
		   JOIN todo_lists l ON l.id = t.list_id
		  WHERE l.user_id = $1
		  ORDER BY l.created_at ASC, l.id ASC, t.created_at ASC, t.id ASC`,
		userID,
	)

	if err != nil {
		return summary, err
	}

	defer rows.Close()

	for rows.Next() {
		var t todo.Task

		if err = rows.Scan(&t.ID, &t.ListID, &t.TaskName, &t.Duration, &t.Reminder, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return summary, err
		}

		if t.Completed {
			if len(summary.Done) < limit {
				summary.Done = append(summary.Done, t)
			}
		} else {
			if len(summary.Pending) < limit {
				summary.Pending = append(summary.Pending, t)
			}
		}

		if len(summary.Done) >= limit && len(summary.Pending) >= limit {
			break
		}
	}

	return summary, rows.Err()
}

// CountTasks returns (pending, done) counts across all the user's lists.
func (r *TodosRepo) CountTasks(ctx context.Context, userID string) (int, int, error) {
	var pending, done int

	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE NOT t.completed),
			COUNT(*) FILTER (WHERE t.completed)
		   FROM tasks t
		   JOIN todo_lists l ON l.id = t.list_id
		  WHERE l.user_id = $1`,
		userID,
	).Scan(&pending, &done)

	return pending, done, err
}

func (r *TodosRepo) requireList(ctx context.Context, listID, userID string) error {
	var dummy string

	err := r.pool.QueryRow(ctx,
		`SELECT id FROM todo_lists WHERE id = $1 AND user_id = $2`,
		listID, userID,
	).Scan(&dummy)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.ErrListNotFound
		}
		return err
	}

	return nil
}
