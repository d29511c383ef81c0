package postgres

import (
	"context"
	"errors"

	"lifeboard/internal/domain/note"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotesRepo struct {
	pool *pgxpool.Pool
}

func NewNotesRepo(pool *pgxpool.Pool) *NotesRepo {
	return &NotesRepo{pool: pool}
}

const noteColumns = `id, user_id, content, color, rotation, pos_x, pos_y, pinned, created_at, updated_at`

func scanNote(row pgx.Row) (note.StickyNote, error) {
	var n note.StickyNote

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Content,
		&n.Color,
		&n.Rotation,
		&n.Position.X,
		&n.Position.Y,
		&n.Pinned,
		&n.CreatedAt,
		&n.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.StickyNote{}, note.ErrNotFound
		}
		return note.StickyNote{}, err
	}

	return n, nil
}

func (r *NotesRepo) Create(ctx context.Context, n note.StickyNote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sticky_notes (id, user_id, content, color, rotation, pos_x, pos_y, pinned, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		n.ID, n.UserID, n.Content, n.Color, n.Rotation, n.Position.X, n.Position.Y, n.Pinned, n.CreatedAt, n.UpdatedAt,
	)

	return err
}

// ListByUser returns the user's notes, newest first.
func (r *NotesRepo) ListByUser(ctx context.Context, userID string) ([]note.StickyNote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM sticky_notes WHERE user_id = $1 ORDER BY created_at DESC, id ASC`,
		userID,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]note.StickyNote, 0)

	for rows.Next() {
		var n note.StickyNote

		err = rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Color, &n.Rotation, &n.Position.X, &n.Position.Y, &n.Pinned, &n.CreatedAt, &n.UpdatedAt)

		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

func (r *NotesRepo) Update(ctx context.Context, userID, id string, req note.UpdateNoteRequest) (note.StickyNote, error) {
	return scanNote(r.pool.QueryRow(ctx,
		`UPDATE sticky_notes
			SET content = COALESCE($3, content),
			    color = COALESCE($4, color),
			    updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+noteColumns,
		id, userID, req.Content, req.Color,
	))
}

func (r *NotesRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sticky_notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}

	return nil
}
