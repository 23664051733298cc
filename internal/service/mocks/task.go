package mocks

import (
	"context"
	"time"

	"campus_circle/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) LockPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsProfile), args.Error(1)
}

func (m *MockTaskRepository) InsertTask(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) LockTask(ctx context.Context, taskID string) (*model.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, q model.TaskQuery) ([]*model.Task, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Task), args.Int(1), args.Error(2)
}

func (m *MockTaskRepository) HasParticipation(ctx context.Context, taskID, userID string) (bool, error) {
	args := m.Called(ctx, taskID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) InsertParticipation(ctx context.Context, p *model.Participation) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockTaskRepository) IncrementParticipants(ctx context.Context, taskID string, now time.Time) error {
	args := m.Called(ctx, taskID, now)
	return args.Error(0)
}

func (m *MockTaskRepository) ListParticipants(ctx context.Context, taskID string) ([]*model.Participation, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Participation), args.Error(1)
}

func (m *MockTaskRepository) ListTaskCategories(ctx context.Context) ([]*model.TaskCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskCategory), args.Error(1)
}
