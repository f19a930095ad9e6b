package service

import (
	"context"
	"errors"
	"joban-api/model"
	"joban-api/repository"
)

var (
	ErrBoardNotFound  = errors.New("board not found")
	ErrColumnNotFound = errors.New("column not found")
)

// BoardService manages boards and columns of a single owner.
type BoardService struct {
	repo  repository.IBoardRepository
	cache BoardCache
}

func NewBoardService(repo repository.IBoardRepository, cache BoardCache) *BoardService {
	if cache == nil {
		cache = NoopBoardCache{}
	}
	return &BoardService{repo: repo, cache: cache}
}

// List returns the owner's boards using a cache-aside strategy.
func (s *BoardService) List(ctx context.Context, ownerID int) ([]*model.BoardSummary, error) {
	if boards, ok := s.cache.GetBoards(ctx, ownerID); ok {
		return boards, nil
	}

	boards, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.SetBoards(ctx, ownerID, boards)
	return boards, nil
}

func (s *BoardService) Get(ctx context.Context, ownerID, boardID int) (*model.Board, error) {
	if board, ok := s.cache.GetBoard(ctx, ownerID, boardID); ok {
		return board, nil
	}

	board, err := s.repo.Get(ctx, ownerID, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	s.cache.SetBoard(ctx, ownerID, board)
	return board, nil
}

// Create stores a board with its initial columns. Column ids in req are ignored.
func (s *BoardService) Create(ctx context.Context, ownerID int, req model.BoardRequest) (*model.Board, error) {
	board := &model.Board{
		OwnerID: ownerID,
		Title:   req.Title,
		Columns: make([]*model.Column, 0, len(req.Columns)),
	}
	for _, c := range req.Columns {
		board.Columns = append(board.Columns, &model.Column{Title: c.Title, OrderNumber: c.OrderNumber})
	}

	if err := s.repo.Create(ctx, board); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, ownerID)
	return board, nil
}

// Update renames the board and replaces its columns, then returns the fresh board.
func (s *BoardService) Update(ctx context.Context, ownerID, boardID int, req model.BoardRequest) (*model.Board, error) {
	err := s.repo.Update(ctx, ownerID, boardID, req.Title, req.Columns)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrBoardNotFound
	case errors.Is(err, repository.ErrForeignColumn):
		return nil, ErrColumnNotFound
	case err != nil:
		return nil, err
	}

	s.cache.Invalidate(ctx, ownerID, boardID)
	return s.Get(ctx, ownerID, boardID)
}

func (s *BoardService) Delete(ctx context.Context, ownerID, boardID int) error {
	if err := s.repo.Delete(ctx, ownerID, boardID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBoardNotFound
		}
		return err
	}
	s.cache.Invalidate(ctx, ownerID, boardID)
	return nil
}

func (s *BoardService) AddColumn(ctx context.Context, ownerID, boardID int, req model.ColumnRequest) (*model.Column, error) {
	column := &model.Column{BoardID: boardID, Title: req.Title, OrderNumber: req.OrderNumber}
	if err := s.repo.AddColumn(ctx, ownerID, column); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, ownerID, boardID)
	return column, nil
}

func (s *BoardService) DeleteColumn(ctx context.Context, ownerID, boardID, columnID int) error {
	if err := s.repo.DeleteColumn(ctx, ownerID, boardID, columnID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrColumnNotFound
		}
		return err
	}
	s.cache.Invalidate(ctx, ownerID, boardID)
	return nil
}
