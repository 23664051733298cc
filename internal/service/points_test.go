package service

import (
	"context"
	"testing"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/repository"
	"campus_circle/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPointsService(repo PointsRepository, now time.Time) (*PointsService, *mocks.MockTransactor) {
	tx := &mocks.MockTransactor{}
	s := NewPointsService(tx, repo, time.UTC)
	s.now = func() time.Time { return now }
	return s, tx
}

func TestPointsService_Post(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		req           PostRequest
		setupMocks    func(repo *mocks.MockPointsRepository)
		expectedError error
		expectedKind  Kind
		balanceAfter  int
	}{
		{
			name: "Earn raises balance and level",
			req:  PostRequest{UserID: "u1", Direction: model.DirectionEarn, Amount: 30, SourceType: model.SourceManual, Title: "bonus"},
			setupMocks: func(repo *mocks.MockPointsRepository) {
				repo.On("LockPointsProfile", mock.Anything, "u1").
					Return(&model.PointsProfile{UserID: "u1", TotalPoints: 80, Level: 1}, nil)
				repo.On("UpdatePointsProfile", mock.Anything, mock.MatchedBy(func(p *model.PointsProfile) bool {
					return p.TotalPoints == 110 && p.Level == 2 && p.UpdatedAt.Equal(now)
				})).Return(nil)
				repo.On("InsertPointsRecord", mock.Anything, mock.MatchedBy(func(r *model.PointsRecord) bool {
					return r.Points == 30 && r.BalanceAfter == 110 && r.Direction == model.DirectionEarn && len(r.ID) == 32
				})).Return(nil)
			},
			balanceAfter: 110,
		},
		{
			name: "Spend to exactly zero",
			req:  PostRequest{UserID: "u2", Direction: model.DirectionSpend, Amount: 5, SourceType: model.SourceTaskPublish},
			setupMocks: func(repo *mocks.MockPointsRepository) {
				repo.On("LockPointsProfile", mock.Anything, "u2").
					Return(&model.PointsProfile{UserID: "u2", TotalPoints: 5, Level: 1}, nil)
				repo.On("UpdatePointsProfile", mock.Anything, mock.Anything).Return(nil)
				repo.On("InsertPointsRecord", mock.Anything, mock.Anything).Return(nil)
			},
			balanceAfter: 0,
		},
		{
			name: "Spend below zero",
			req:  PostRequest{UserID: "u3", Direction: model.DirectionSpend, Amount: 6, SourceType: model.SourceTaskPublish},
			setupMocks: func(repo *mocks.MockPointsRepository) {
				repo.On("LockPointsProfile", mock.Anything, "u3").
					Return(&model.PointsProfile{UserID: "u3", TotalPoints: 5, Level: 1}, nil)
			},
			expectedError: ErrInsufficientBalance,
			expectedKind:  KindInsufficient,
		},
		{
			name: "Missing profile",
			req:  PostRequest{UserID: "ghost", Direction: model.DirectionEarn, Amount: 1, SourceType: model.SourceComment},
			setupMocks: func(repo *mocks.MockPointsRepository) {
				repo.On("LockPointsProfile", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrUserNotFound,
			expectedKind:  KindNotFound,
		},
		{
			name:         "Zero amount",
			req:          PostRequest{UserID: "u1", Direction: model.DirectionEarn, Amount: 0, SourceType: model.SourceManual},
			setupMocks:   func(repo *mocks.MockPointsRepository) {},
			expectedKind: KindValidation,
		},
		{
			name:         "Unknown source",
			req:          PostRequest{UserID: "u1", Direction: model.DirectionEarn, Amount: 1, SourceType: "lottery"},
			setupMocks:   func(repo *mocks.MockPointsRepository) {},
			expectedKind: KindValidation,
		},
		{
			name: "Record insert fails",
			req:  PostRequest{UserID: "u4", Direction: model.DirectionEarn, Amount: 1, SourceType: model.SourceComment},
			setupMocks: func(repo *mocks.MockPointsRepository) {
				repo.On("LockPointsProfile", mock.Anything, "u4").
					Return(&model.PointsProfile{UserID: "u4", TotalPoints: 0, Level: 1}, nil)
				repo.On("UpdatePointsProfile", mock.Anything, mock.Anything).Return(nil)
				repo.On("InsertPointsRecord", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			expectedError: assert.AnError,
			expectedKind:  KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockPointsRepository{}
			tt.setupMocks(repo)
			s, _ := newTestPointsService(repo, now)

			rec, err := s.Post(context.Background(), tt.req)

			if tt.expectedError != nil || tt.expectedKind != KindInternal {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Equal(t, tt.expectedKind, KindOf(err))
				assert.Nil(t, rec)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.balanceAfter, rec.BalanceAfter)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestPointsService_ReplayMatchesBalance(t *testing.T) {
	store := newMemStore("u1")
	s, _ := newTestPointsService(store, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	postings := []PostRequest{
		{UserID: "u1", Direction: model.DirectionEarn, Amount: 20, SourceType: model.SourceManual},
		{UserID: "u1", Direction: model.DirectionSpend, Amount: 5, SourceType: model.SourceTaskPublish},
		{UserID: "u1", Direction: model.DirectionEarn, Amount: 3, SourceType: model.SourcePost},
		{UserID: "u1", Direction: model.DirectionSpend, Amount: 50, SourceType: model.SourceTaskPublish},
		{UserID: "u1", Direction: model.DirectionEarn, Amount: 1, SourceType: model.SourceComment},
	}
	for _, p := range postings {
		_, _ = s.Post(ctx, p)
	}

	sum := 0
	for _, r := range store.records {
		sum += r.Signed()
		assert.Equal(t, sum, r.BalanceAfter)
		assert.GreaterOrEqual(t, r.BalanceAfter, 0)
	}
	assert.Len(t, store.records, 4)
	assert.Equal(t, 19, store.profiles["u1"].TotalPoints)
	assert.Equal(t, sum, store.profiles["u1"].TotalPoints)
}

func TestPointsService_History(t *testing.T) {
	repo := &mocks.MockPointsRepository{}
	s, _ := newTestPointsService(repo, time.Now())

	spend := model.DirectionSpend
	repo.On("ListPointsRecords", mock.Anything, "u1", &spend, 10, 10).
		Return([]*model.PointsRecord{{ID: "r1"}}, 11, nil)

	records, page, err := s.History(context.Background(), "u1", HistorySpent, 2, 10)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, model.Pagination{Page: 2, Limit: 10, Total: 11, TotalPages: 2}, page)
	repo.AssertExpectations(t)
}

func TestPointsService_Profile(t *testing.T) {
	now := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC) // Wednesday
	repo := &mocks.MockPointsRepository{}
	s, _ := newTestPointsService(repo, now)

	repo.On("GetPointsProfile", mock.Anything, "u1").
		Return(&model.PointsProfile{UserID: "u1", TotalPoints: 245, Level: 3}, nil)
	repo.On("SumEarnedSince", mock.Anything, "u1", time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)).Return(5, nil)
	repo.On("SumEarnedSince", mock.Anything, "u1", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)).Return(20, nil)
	repo.On("SumEarnedSince", mock.Anything, "u1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).Return(60, nil)

	summary, err := s.Profile(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, &model.PointsSummary{
		TotalPoints:     245,
		Level:           3,
		LevelProgress:   45,
		NextLevelPoints: 400,
		TodayEarned:     5,
		WeekEarned:      20,
		MonthEarned:     60,
	}, summary)
	repo.AssertExpectations(t)
}

func TestPointsService_Statistics(t *testing.T) {
	repo := &mocks.MockPointsRepository{}
	s, _ := newTestPointsService(repo, time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC))

	repo.On("GetPointsProfile", mock.Anything, "u1").
		Return(&model.PointsProfile{UserID: "u1", TotalPoints: 40}, nil)
	repo.On("PointsBySource", mock.Anything, "u1").Return(
		map[model.SourceType]int{model.SourceDailyCheckin: 35, model.SourcePost: 15},
		map[model.SourceType]int{model.SourceTaskPublish: 10},
		nil,
	)
	repo.On("DailyPoints", mock.Anything, "u1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
		Return([]*model.DailyPoints{}, nil)

	stats, err := s.Statistics(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 50, stats.TotalEarned)
	assert.Equal(t, 10, stats.TotalSpent)
	assert.Equal(t, 40, stats.CurrentBalance)
}

func TestPointsService_ManualAdd(t *testing.T) {
	store := newMemStore("u1")
	s, _ := newTestPointsService(store, time.Now())
	ctx := context.Background()

	rec, err := s.ManualAdd(ctx, ManualAddRequest{UserID: "u1", SourceType: model.SourcePost, Title: "post reward"})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Points)

	rec, err = s.ManualAdd(ctx, ManualAddRequest{UserID: "u1", Points: 12, SourceType: model.SourceManual, Title: "event"})
	require.NoError(t, err)
	assert.Equal(t, 15, rec.BalanceAfter)

	_, err = s.ManualAdd(ctx, ManualAddRequest{UserID: "u1", SourceType: model.SourceManual, Title: "nothing"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = s.ManualAdd(ctx, ManualAddRequest{UserID: "u1", Points: 1, SourceType: "raffle", Title: "x"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = s.ManualAdd(ctx, ManualAddRequest{UserID: "u1", Points: 1, SourceType: model.SourceManual})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestPointsService_AwardAction(t *testing.T) {
	store := newMemStore("u1")
	s, _ := newTestPointsService(store, time.Now())

	rec, err := s.AwardAction(context.Background(), "u1", model.SourceComment, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Points)

	_, err = s.AwardAction(context.Background(), "u1", model.SourceDailyCheckin, nil)
	assert.Equal(t, KindValidation, KindOf(err))
}
