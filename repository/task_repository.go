package repository

import (
	"context"
	"database/sql"
	"errors"
	"joban-api/db"
	"joban-api/logger"
	"joban-api/model"

	"github.com/sirupsen/logrus"
)

// ITaskRepository stores tasks. Reads are scoped to the board owner.
type ITaskRepository interface {
	ColumnBoard(ctx context.Context, ownerID, columnID int) (int, error)
	Get(ctx context.Context, ownerID, taskID int) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task, moved bool) error
	Delete(ctx context.Context, taskID int) error
}

type TaskRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewTaskRepository(conn *sql.DB, dialect db.Dialect) *TaskRepository {
	return &TaskRepository{DB: conn, Dialect: dialect}
}

// ColumnBoard returns the board holding columnID when the board belongs to ownerID.
func (r *TaskRepository) ColumnBoard(ctx context.Context, ownerID, columnID int) (int, error) {
	var boardID int
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT b.id FROM board_columns c
		JOIN boards b ON b.id = c.board_id
		WHERE c.id = ? AND b.owner_id = ?`), columnID, ownerID).Scan(&boardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		logger.Log.WithError(err).WithField("column_id", columnID).Error("Failed to resolve column board")
		return 0, err
	}
	return boardID, nil
}

func (r *TaskRepository) Get(ctx context.Context, ownerID, taskID int) (*model.Task, error) {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": ownerID, "task_id": taskID})
	log.Info("Executing query to get task")

	t := &model.Task{}
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT t.id, t.col_id, t.ord_num, t.title, t.body, b.id
		FROM tasks t
		JOIN board_columns c ON c.id = t.col_id
		JOIN boards b ON b.id = c.board_id
		WHERE t.id = ? AND b.owner_id = ?`), taskID, ownerID).Scan(
		&t.ID, &t.ColumnID, &t.OrderNumber, &t.Title, &t.Body, &t.BoardID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.WithError(err).Error("Failed to execute get task query")
		return nil, err
	}
	return t, nil
}

// nextOrder is the position after the last task of the column, 0 when empty.
func (r *TaskRepository) nextOrder(ctx context.Context, tx db.DBTX, columnID int) (int, error) {
	var next int
	err := tx.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT COALESCE(MAX(ord_num) + 1, 0) FROM tasks WHERE col_id = ?`),
		columnID).Scan(&next)
	return next, err
}

// Create appends task to the end of its column.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	log := logger.Log.WithField("column_id", task.ColumnID)
	log.Info("Executing transaction to create a task")

	err := db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		next, err := r.nextOrder(ctx, tx, task.ColumnID)
		if err != nil {
			return err
		}
		task.OrderNumber = next
		return tx.QueryRowContext(ctx, r.Dialect.Rebind(`INSERT INTO tasks (col_id, title, body, ord_num) VALUES (?, ?, ?, ?) RETURNING id`),
			task.ColumnID, task.Title, task.Body, task.OrderNumber).Scan(&task.ID)
	})
	if err != nil {
		log.WithError(err).Error("Failed to create task")
	}
	return err
}

// Update saves title, body and column. When moved is set the task is
// appended to the end of its new column.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, moved bool) error {
	log := logger.Log.WithFields(logrus.Fields{"task_id": task.ID, "moved": moved})
	log.Info("Executing transaction to update a task")

	err := db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		if moved {
			next, err := r.nextOrder(ctx, tx, task.ColumnID)
			if err != nil {
				return err
			}
			task.OrderNumber = next
		}
		res, err := tx.ExecContext(ctx, r.Dialect.Rebind(`UPDATE tasks SET title = ?, body = ?, col_id = ?, ord_num = ? WHERE id = ?`),
			task.Title, task.Body, task.ColumnID, task.OrderNumber, task.ID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.WithError(err).Error("Failed to update task")
	}
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, taskID int) error {
	log := logger.Log.WithField("task_id", taskID)
	log.Info("Executing query to delete a task")

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM tasks WHERE id = ?`), taskID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete task query")
		return err
	}
	return requireAffected(res)
}
