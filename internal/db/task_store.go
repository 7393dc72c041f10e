package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"taskmind-backend/internal/models"
)

const taskColumns = `id, client_id, title, description, priority, status, category, reason, created_at`

// TaskStore persists tasks in a single SQL table.
type TaskStore struct {
	db *sqlx.DB
}

func NewTaskStore(db *sqlx.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Insert stores t, ignoring t.ID, and returns the assigned id. A zero
// CreatedAt is replaced with the current time.
func (s *TaskStore) Insert(ctx context.Context, t models.Task) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO tasks (client_id, title, description, priority, status, category, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		nullIfEmpty(t.ClientID),
		t.Title,
		nullIfEmpty(t.Description),
		string(t.Priority),
		string(t.Status),
		t.Category,
		nullIfEmpty(t.Reason),
		t.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "insert task")
	}
	return id, nil
}

// GetAll returns every task, newest first.
func (s *TaskStore) GetAll(ctx context.Context) ([]models.Task, error) {
	out := []models.Task{}
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	return out, nil
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (models.Task, error) {
	var t models.Task
	err := s.db.GetContext(ctx, &t,
		s.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return models.Task{}, models.ErrNotFound
	}
	if err != nil {
		return models.Task{}, errors.Wrapf(err, "get task %d", id)
	}
	return t, nil
}

func (s *TaskStore) GetByClientID(ctx context.Context, clientID string) (models.Task, error) {
	var t models.Task
	err := s.db.GetContext(ctx, &t,
		s.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE client_id = ?`), clientID)
	if err == sql.ErrNoRows {
		return models.Task{}, models.ErrNotFound
	}
	if err != nil {
		return models.Task{}, errors.Wrapf(err, "get task by client id %s", clientID)
	}
	return t, nil
}

// Update applies only the fields that are set and returns the number of rows
// changed. Zero means no task has that id.
func (s *TaskStore) Update(ctx context.Context, id int64, f models.Fields) (int64, error) {
	if f.Empty() {
		// nothing to write, but callers still need to know whether the row exists
		var n int64
		err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM tasks WHERE id = ?`), id)
		if err != nil {
			return 0, errors.Wrapf(err, "count task %d", id)
		}
		return n, nil
	}

	var (
		sets []string
		args []interface{}
	)
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Description != nil {
		add("description", nullIfEmpty(f.Description))
	}
	if f.Priority != nil {
		add("priority", string(*f.Priority))
	}
	if f.Status != nil {
		add("status", string(*f.Status))
	}
	if f.Category != nil {
		add("category", *f.Category)
	}
	if f.Reason != nil {
		add("reason", nullIfEmpty(f.Reason))
	}
	args = append(args, id)

	query := s.db.Rebind(`UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "update task %d", id)
	}
	return rowsAffected(res)
}

func (s *TaskStore) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return 0, errors.Wrapf(err, "delete task %d", id)
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

func nullIfEmpty(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}
