package mocks

import (
	"context"
	"time"

	"campus_circle/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockPointsRepository struct {
	mock.Mock
}

func (m *MockPointsRepository) GetPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsProfile), args.Error(1)
}

func (m *MockPointsRepository) LockPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsProfile), args.Error(1)
}

func (m *MockPointsRepository) UpdatePointsProfile(ctx context.Context, profile *model.PointsProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockPointsRepository) InsertPointsRecord(ctx context.Context, rec *model.PointsRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockPointsRepository) ListPointsRecords(ctx context.Context, userID string, direction *model.Direction, limit, offset int) ([]*model.PointsRecord, int, error) {
	args := m.Called(ctx, userID, direction, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.PointsRecord), args.Int(1), args.Error(2)
}

func (m *MockPointsRepository) SumEarnedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockPointsRepository) PointsBySource(ctx context.Context, userID string) (map[model.SourceType]int, map[model.SourceType]int, error) {
	args := m.Called(ctx, userID)
	var earned, spent map[model.SourceType]int
	if v := args.Get(0); v != nil {
		earned = v.(map[model.SourceType]int)
	}
	if v := args.Get(1); v != nil {
		spent = v.(map[model.SourceType]int)
	}
	return earned, spent, args.Error(2)
}

func (m *MockPointsRepository) DailyPoints(ctx context.Context, userID string, since time.Time) ([]*model.DailyPoints, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DailyPoints), args.Error(1)
}
