package service

import (
	"context"
	"errors"
	"joban-api/model"
	"joban-api/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService manages tasks inside columns the caller owns.
type TaskService struct {
	repo  repository.ITaskRepository
	cache BoardCache
}

func NewTaskService(repo repository.ITaskRepository, cache BoardCache) *TaskService {
	if cache == nil {
		cache = NoopBoardCache{}
	}
	return &TaskService{repo: repo, cache: cache}
}

func (s *TaskService) columnBoard(ctx context.Context, ownerID, columnID int) (int, error) {
	boardID, err := s.repo.ColumnBoard(ctx, ownerID, columnID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrColumnNotFound
	}
	return boardID, err
}

// Create appends a task at the end of the column.
func (s *TaskService) Create(ctx context.Context, ownerID int, req model.TaskRequest) (*model.Task, error) {
	boardID, err := s.columnBoard(ctx, ownerID, req.ColumnID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ColumnID: req.ColumnID,
		Title:    req.Title,
		Body:     req.Description,
		BoardID:  boardID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, ownerID, boardID)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID int) (*model.Task, error) {
	task, err := s.repo.Get(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update changes title, description and column. A task moved to another
// column goes to the end of it.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID int, req model.TaskRequest) (*model.Task, error) {
	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	fromBoard := task.BoardID
	moved := req.ColumnID != task.ColumnID
	if moved {
		toBoard, err := s.columnBoard(ctx, ownerID, req.ColumnID)
		if err != nil {
			return nil, err
		}
		task.ColumnID = req.ColumnID
		task.BoardID = toBoard
	}
	task.Title = req.Title
	task.Body = req.Description

	if err := s.repo.Update(ctx, task, moved); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	s.cache.Invalidate(ctx, ownerID, fromBoard, task.BoardID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID int) error {
	task, err := s.Get(ctx, ownerID, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	s.cache.Invalidate(ctx, ownerID, task.BoardID)
	return nil
}
