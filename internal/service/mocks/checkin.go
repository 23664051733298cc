package mocks

import (
	"context"
	"time"

	"campus_circle/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCheckinRepository struct {
	mock.Mock
}

func (m *MockCheckinRepository) GetCheckin(ctx context.Context, userID string, day time.Time) (*model.CheckinRecord, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckinRecord), args.Error(1)
}

func (m *MockCheckinRepository) InsertCheckin(ctx context.Context, rec *model.CheckinRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCheckinRepository) CountCheckins(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCheckinRepository) LastCheckinDate(ctx context.Context, userID string) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockCheckinRepository) ListCheckins(ctx context.Context, userID string, limit, offset int) ([]*model.CheckinRecord, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.CheckinRecord), args.Int(1), args.Error(2)
}
