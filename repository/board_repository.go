package repository

import (
	"context"
	"database/sql"
	"errors"
	"joban-api/db"
	"joban-api/logger"
	"joban-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// IBoardRepository stores boards and their columns. Every method is scoped
// to the owning user; boards of other users behave as missing.
type IBoardRepository interface {
	ListByOwner(ctx context.Context, ownerID int) ([]*model.BoardSummary, error)
	Get(ctx context.Context, ownerID, boardID int) (*model.Board, error)
	Create(ctx context.Context, board *model.Board) error
	Update(ctx context.Context, ownerID, boardID int, title string, columns []model.ColumnInput) error
	Delete(ctx context.Context, ownerID, boardID int) error
	AddColumn(ctx context.Context, ownerID int, column *model.Column) error
	DeleteColumn(ctx context.Context, ownerID, boardID, columnID int) error
}

type BoardRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewBoardRepository(conn *sql.DB, dialect db.Dialect) *BoardRepository {
	return &BoardRepository{DB: conn, Dialect: dialect}
}

func (r *BoardRepository) ListByOwner(ctx context.Context, ownerID int) ([]*model.BoardSummary, error) {
	log := logger.Log.WithField("owner_id", ownerID)
	log.Info("Executing query to list boards")

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`SELECT id, title FROM boards WHERE owner_id = ? ORDER BY id`), ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to execute list boards query")
		return nil, err
	}
	defer rows.Close()

	boards := make([]*model.BoardSummary, 0)
	for rows.Next() {
		b := &model.BoardSummary{}
		if err := rows.Scan(&b.ID, &b.Title); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// Get loads the board with columns ordered by ord_num and tasks ordered by ord_num.
func (r *BoardRepository) Get(ctx context.Context, ownerID, boardID int) (*model.Board, error) {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": ownerID, "board_id": boardID})
	log.Info("Executing query to get board")

	board := &model.Board{OwnerID: ownerID}
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT id, title FROM boards WHERE id = ? AND owner_id = ?`),
		boardID, ownerID).Scan(&board.ID, &board.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		log.WithError(err).Error("Failed to execute get board query")
		return nil, err
	}

	board.Columns, err = r.columns(ctx, boardID)
	if err != nil {
		log.WithError(err).Error("Failed to load board columns")
		return nil, err
	}

	byID := make(map[int]*model.Column, len(board.Columns))
	for _, c := range board.Columns {
		byID[c.ID] = c
	}
	tasks, err := r.tasks(ctx, boardID)
	if err != nil {
		log.WithError(err).Error("Failed to load board tasks")
		return nil, err
	}
	for _, t := range tasks {
		if c, ok := byID[t.ColumnID]; ok {
			c.Tasks = append(c.Tasks, t)
		}
	}
	return board, nil
}

func (r *BoardRepository) columns(ctx context.Context, boardID int) ([]*model.Column, error) {
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`SELECT id, board_id, title, ord_num
		FROM board_columns WHERE board_id = ? ORDER BY ord_num, id`), boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make([]*model.Column, 0)
	for rows.Next() {
		c := &model.Column{Tasks: make([]*model.Task, 0)}
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Title, &c.OrderNumber); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

func (r *BoardRepository) tasks(ctx context.Context, boardID int) ([]*model.Task, error) {
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`SELECT t.id, t.col_id, t.ord_num, t.title, t.body
		FROM tasks t JOIN board_columns c ON c.id = t.col_id
		WHERE c.board_id = ? ORDER BY t.ord_num, t.id`), boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t := &model.Task{BoardID: boardID}
		if err := rows.Scan(&t.ID, &t.ColumnID, &t.OrderNumber, &t.Title, &t.Body); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts the board and its columns in one transaction.
func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": board.OwnerID, "columns": len(board.Columns)})
	log.Info("Executing transaction to create a board")

	err := db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		err := tx.QueryRowContext(ctx, r.Dialect.Rebind(`INSERT INTO boards (owner_id, title, created_at) VALUES (?, ?, ?) RETURNING id`),
			board.OwnerID, board.Title, time.Now().UTC()).Scan(&board.ID)
		if err != nil {
			return err
		}
		for _, c := range board.Columns {
			c.BoardID = board.ID
			if err := r.insertColumn(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to create board")
	}
	return err
}

func (r *BoardRepository) insertColumn(ctx context.Context, tx db.DBTX, c *model.Column) error {
	if c.Tasks == nil {
		c.Tasks = make([]*model.Task, 0)
	}
	return tx.QueryRowContext(ctx, r.Dialect.Rebind(`INSERT INTO board_columns (board_id, title, ord_num) VALUES (?, ?, ?) RETURNING id`),
		c.BoardID, c.Title, c.OrderNumber).Scan(&c.ID)
}

// Update renames the board and replaces its column set: inputs with an id
// update that column, inputs without one are inserted, and existing columns
// that are not listed are deleted together with their tasks.
func (r *BoardRepository) Update(ctx context.Context, ownerID, boardID int, title string, columns []model.ColumnInput) error {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": ownerID, "board_id": boardID})
	log.Info("Executing transaction to update a board")

	err := db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		res, err := tx.ExecContext(ctx, r.Dialect.Rebind(`UPDATE boards SET title = ? WHERE id = ? AND owner_id = ?`),
			title, boardID, ownerID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}

		existing, err := columnIDs(ctx, tx, r.Dialect.Rebind(`SELECT id FROM board_columns WHERE board_id = ?`), boardID)
		if err != nil {
			return err
		}

		kept := make(map[int]bool, len(columns))
		for _, in := range columns {
			if in.ID == nil {
				c := &model.Column{BoardID: boardID, Title: in.Title, OrderNumber: in.OrderNumber}
				if err := r.insertColumn(ctx, tx, c); err != nil {
					return err
				}
				kept[c.ID] = true
				continue
			}
			if !existing[*in.ID] {
				return ErrForeignColumn
			}
			_, err := tx.ExecContext(ctx, r.Dialect.Rebind(`UPDATE board_columns SET title = ?, ord_num = ? WHERE id = ?`),
				in.Title, in.OrderNumber, *in.ID)
			if err != nil {
				return err
			}
			kept[*in.ID] = true
		}

		for id := range existing {
			if kept[id] {
				continue
			}
			if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM board_columns WHERE id = ?`), id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrForeignColumn) {
		log.WithError(err).Error("Failed to update board")
	}
	return err
}

func columnIDs(ctx context.Context, tx db.DBTX, query string, boardID int) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Delete removes the board; columns and tasks go with it.
func (r *BoardRepository) Delete(ctx context.Context, ownerID, boardID int) error {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": ownerID, "board_id": boardID})
	log.Info("Executing query to delete a board")

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM boards WHERE id = ? AND owner_id = ?`), boardID, ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete board query")
		return err
	}
	return requireAffected(res)
}

// AddColumn appends column to a board owned by ownerID.
func (r *BoardRepository) AddColumn(ctx context.Context, ownerID int, column *model.Column) error {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": ownerID, "board_id": column.BoardID})
	log.Info("Executing query to add a column")

	return db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		var id int
		err := tx.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT id FROM boards WHERE id = ? AND owner_id = ?`),
			column.BoardID, ownerID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			log.WithError(err).Error("Failed to check board ownership")
			return err
		}
		return r.insertColumn(ctx, tx, column)
	})
}

func (r *BoardRepository) DeleteColumn(ctx context.Context, ownerID, boardID, columnID int) error {
	log := logger.Log.WithFields(logrus.Fields{"owner_id": ownerID, "board_id": boardID, "column_id": columnID})
	log.Info("Executing query to delete a column")

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM board_columns
		WHERE id = ? AND board_id IN (SELECT id FROM boards WHERE id = ? AND owner_id = ?)`),
		columnID, boardID, ownerID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete column query")
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
