package api

import (
	"context"

	"campus_circle/internal/model"
	"campus_circle/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockPointsService struct {
	mock.Mock
}

func (m *mockPointsService) Post(ctx context.Context, req service.PostRequest) (*model.PointsRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsRecord), args.Error(1)
}

func (m *mockPointsService) Profile(ctx context.Context, userID string) (*model.PointsSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsSummary), args.Error(1)
}

func (m *mockPointsService) History(ctx context.Context, userID string, filter service.HistoryFilter, page, limit int) ([]*model.PointsRecord, model.Pagination, error) {
	args := m.Called(ctx, userID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Pagination), args.Error(2)
	}
	return args.Get(0).([]*model.PointsRecord), args.Get(1).(model.Pagination), args.Error(2)
}

func (m *mockPointsService) Statistics(ctx context.Context, userID string) (*model.PointsStatistics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsStatistics), args.Error(1)
}

func (m *mockPointsService) ManualAdd(ctx context.Context, req service.ManualAddRequest) (*model.PointsRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsRecord), args.Error(1)
}

func (m *mockPointsService) AwardAction(ctx context.Context, userID string, source model.SourceType, sourceID *string) (*model.PointsRecord, error) {
	args := m.Called(ctx, userID, source, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsRecord), args.Error(1)
}

type mockCheckinService struct {
	mock.Mock
}

func (m *mockCheckinService) Status(ctx context.Context, userID string) (*model.CheckinStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckinStatus), args.Error(1)
}

func (m *mockCheckinService) Checkin(ctx context.Context, userID string) (*model.CheckinResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckinResult), args.Error(1)
}

func (m *mockCheckinService) CheckinHistory(ctx context.Context, userID string, page, limit int) ([]*model.CheckinRecord, model.Pagination, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Pagination), args.Error(2)
	}
	return args.Get(0).([]*model.CheckinRecord), args.Get(1).(model.Pagination), args.Error(2)
}

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) CreateTask(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskService) JoinTask(ctx context.Context, taskID, userID string) (*model.Participation, error) {
	args := m.Called(ctx, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participation), args.Error(1)
}

func (m *mockTaskService) ListTasks(ctx context.Context, q model.TaskQuery) (*model.TaskList, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskList), args.Error(1)
}

func (m *mockTaskService) TaskDetail(ctx context.Context, taskID string) (*model.TaskDetail, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskDetail), args.Error(1)
}

func (m *mockTaskService) Categories(ctx context.Context) ([]*model.TaskCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TaskCategory), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type mockMemberService struct {
	mock.Mock
}

func (m *mockMemberService) Sync(ctx context.Context, userID, nickname string, avatarURL *string) (*model.Member, error) {
	args := m.Called(ctx, userID, nickname, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *mockMemberService) Member(ctx context.Context, userID string) (*model.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *mockMemberService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}
