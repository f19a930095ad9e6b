package service

import (
	"context"
	"joban-api/model"
	"joban-api/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) ColumnBoard(ctx context.Context, ownerID, columnID int) (int, error) {
	args := m.Called(ctx, ownerID, columnID)
	return args.Int(0), args.Error(1)
}

func (m *mockTaskRepo) Get(ctx context.Context, ownerID, taskID int) (*model.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *model.Task) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) Update(ctx context.Context, task *model.Task, moved bool) error {
	return m.Called(ctx, task, moved).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, taskID int) error {
	return m.Called(ctx, taskID).Error(0)
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("column of another user", func(t *testing.T) {
		repo := new(mockTaskRepo)
		svc := NewTaskService(repo, nil)
		repo.On("ColumnBoard", ctx, 5, 10).Return(0, repository.ErrNotFound).Once()

		_, err := svc.Create(ctx, 5, model.TaskRequest{Title: "t", ColumnID: 10})
		assert.ErrorIs(t, err, ErrColumnNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("appends and invalidates the board", func(t *testing.T) {
		repo, client := new(mockTaskRepo), new(mockCacheClient)
		svc := NewTaskService(repo, NewRedisBoardCache(client, time.Minute))

		repo.On("ColumnBoard", ctx, 5, 10).Return(3, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(task *model.Task) bool {
			return task.ColumnID == 10 && task.Body == "details"
		})).Run(func(args mock.Arguments) {
			task := args.Get(1).(*model.Task)
			task.ID, task.OrderNumber = 9, 2
		}).Return(nil).Once()
		client.On("Del", ctx, []string{"boards:5", "board:5:3"}).Return(nil).Once()

		task, err := svc.Create(ctx, 5, model.TaskRequest{Title: "t", Description: "details", ColumnID: 10})
		require.NoError(t, err)
		assert.Equal(t, 9, task.ID)
		assert.Equal(t, 2, task.OrderNumber)
		repo.AssertExpectations(t)
		client.AssertExpectations(t)
	})
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("same column keeps position", func(t *testing.T) {
		repo := new(mockTaskRepo)
		svc := NewTaskService(repo, nil)
		repo.On("Get", ctx, 5, 9).Return(&model.Task{ID: 9, ColumnID: 10, OrderNumber: 1, BoardID: 3}, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(task *model.Task) bool {
			return task.Title == "new" && task.OrderNumber == 1
		}), false).Return(nil).Once()

		task, err := svc.Update(ctx, 5, 9, model.TaskRequest{Title: "new", ColumnID: 10})
		require.NoError(t, err)
		assert.Equal(t, 10, task.ColumnID)
		repo.AssertExpectations(t)
	})

	t.Run("move checks target column", func(t *testing.T) {
		repo := new(mockTaskRepo)
		svc := NewTaskService(repo, nil)
		repo.On("Get", ctx, 5, 9).Return(&model.Task{ID: 9, ColumnID: 10, BoardID: 3}, nil).Once()
		repo.On("ColumnBoard", ctx, 5, 11).Return(4, nil).Once()
		repo.On("Update", ctx, mock.MatchedBy(func(task *model.Task) bool {
			return task.ColumnID == 11 && task.BoardID == 4
		}), true).Return(nil).Once()

		_, err := svc.Update(ctx, 5, 9, model.TaskRequest{Title: "t", ColumnID: 11})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		svc := NewTaskService(repo, nil)
		repo.On("Get", ctx, 5, 9).Return(nil, repository.ErrNotFound).Once()

		_, err := svc.Update(ctx, 5, 9, model.TaskRequest{Title: "t", ColumnID: 10})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(mockTaskRepo)
	svc := NewTaskService(repo, nil)

	repo.On("Get", ctx, 5, 9).Return(&model.Task{ID: 9, BoardID: 3}, nil).Once()
	repo.On("Delete", ctx, 9).Return(nil).Once()
	repo.On("Get", ctx, 5, 9).Return(nil, repository.ErrNotFound).Once()

	assert.NoError(t, svc.Delete(ctx, 5, 9))
	assert.ErrorIs(t, svc.Delete(ctx, 5, 9), ErrTaskNotFound)
	repo.AssertExpectations(t)
}
