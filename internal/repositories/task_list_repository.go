package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasklist/internal/models"
)

type TaskListRepository interface {
	Create(ctx context.Context, list *models.TaskList) error
	CreateWithTasks(ctx context.Context, list *models.TaskList, tasks []models.Task) error
	GetByID(ctx context.Context, id string) (*models.TaskList, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.TaskList, error)
	Update(ctx context.Context, list *models.TaskList) error
	Delete(ctx context.Context, id string) error
}

type taskListRepository struct {
	db *sql.DB
}

func NewTaskListRepository(db *sql.DB) TaskListRepository {
	return &taskListRepository{db: db}
}

func (r *taskListRepository) Create(ctx context.Context, l *models.TaskList) error {
	return insertTaskList(ctx, r.db, l)
}

// CreateWithTasks inserts the list and its tasks atomically.
func (r *taskListRepository) CreateWithTasks(ctx context.Context, l *models.TaskList, tasks []models.Task) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertTaskList(ctx, tx, l); err != nil {
			return err
		}
		for i := range tasks {
			if err := insertTask(ctx, tx, &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertTaskList(ctx context.Context, db execer, l *models.TaskList) error {
	const q = `
		INSERT INTO task_lists (id, owner_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := db.ExecContext(ctx, q, l.ID, l.OwnerID, l.Title, l.Description, l.CreatedAt); err != nil {
		return fmt.Errorf("task_list create: %w", err)
	}
	return nil
}

func (r *taskListRepository) GetByID(ctx context.Context, id string) (*models.TaskList, error) {
	const q = `SELECT id, owner_id, title, description, created_at FROM task_lists WHERE id = $1`
	l := &models.TaskList{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("task_list get: %w", err)
	}
	return l, nil
}

// ListByOwner returns the owner's lists newest first, each with its task
// and completed-task counts.
func (r *taskListRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.TaskList, error) {
	const q = `
		SELECT l.id, l.owner_id, l.title, l.description, l.created_at,
			COUNT(t.id),
			COALESCE(SUM(CASE WHEN t.status = $2 THEN 1 ELSE 0 END), 0)
		FROM task_lists l
		LEFT JOIN tasks t ON t.list_id = l.id
		WHERE l.owner_id = $1
		GROUP BY l.id, l.owner_id, l.title, l.description, l.created_at
		ORDER BY l.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("task_list list: %w", err)
	}
	defer rows.Close()

	lists := []models.TaskList{}
	for rows.Next() {
		var l models.TaskList
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.CreatedAt,
			&l.TaskCount, &l.CompletedCount); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *taskListRepository) Update(ctx context.Context, l *models.TaskList) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE task_lists SET title = $1, description = $2 WHERE id = $3`,
		l.Title, l.Description, l.ID)
	if err != nil {
		return fmt.Errorf("task_list update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the list and its tasks.
func (r *taskListRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = $1`, id); err != nil {
			return fmt.Errorf("task_list delete tasks: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM task_lists WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("task_list delete: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
