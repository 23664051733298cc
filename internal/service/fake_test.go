package service

import (
	"context"
	"sort"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/repository"

	"github.com/stretchr/testify/mock"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Post(ctx context.Context, req PostRequest) (*model.PointsRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PointsRecord), args.Error(1)
}

// memStore keeps profiles, ledger records and check-ins in memory so a
// sequence of operations can be replayed across several days.
type memStore struct {
	profiles map[string]*model.PointsProfile
	records  []*model.PointsRecord
	checkins map[string]*model.CheckinRecord
}

func newMemStore(users ...string) *memStore {
	s := &memStore{
		profiles: make(map[string]*model.PointsProfile),
		checkins: make(map[string]*model.CheckinRecord),
	}
	for _, u := range users {
		s.profiles[u] = &model.PointsProfile{UserID: u, Level: 1}
	}
	return s
}

func checkinKey(userID string, day time.Time) string {
	return userID + "/" + day.Format("2006-01-02")
}

func (s *memStore) GetPointsProfile(_ context.Context, userID string) (*model.PointsProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) LockPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error) {
	return s.GetPointsProfile(ctx, userID)
}

func (s *memStore) UpdatePointsProfile(_ context.Context, profile *model.PointsProfile) error {
	if _, ok := s.profiles[profile.UserID]; !ok {
		return repository.ErrNotFound
	}
	cp := *profile
	s.profiles[profile.UserID] = &cp
	return nil
}

func (s *memStore) InsertPointsRecord(_ context.Context, rec *model.PointsRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *memStore) ListPointsRecords(_ context.Context, userID string, direction *model.Direction, limit, offset int) ([]*model.PointsRecord, int, error) {
	var out []*model.PointsRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.UserID == userID && (direction == nil || r.Direction == *direction) {
			out = append(out, r)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (s *memStore) SumEarnedSince(_ context.Context, userID string, since time.Time) (int, error) {
	sum := 0
	for _, r := range s.records {
		if r.UserID == userID && r.Direction == model.DirectionEarn && !r.CreatedAt.Before(since) {
			sum += r.Points
		}
	}
	return sum, nil
}

func (s *memStore) PointsBySource(_ context.Context, userID string) (map[model.SourceType]int, map[model.SourceType]int, error) {
	earned := make(map[model.SourceType]int)
	spent := make(map[model.SourceType]int)
	for _, r := range s.records {
		if r.UserID != userID {
			continue
		}
		if r.Direction == model.DirectionEarn {
			earned[r.SourceType] += r.Points
		} else {
			spent[r.SourceType] += r.Points
		}
	}
	return earned, spent, nil
}

func (s *memStore) DailyPoints(context.Context, string, time.Time) ([]*model.DailyPoints, error) {
	return nil, nil
}

func (s *memStore) GetCheckin(_ context.Context, userID string, day time.Time) (*model.CheckinRecord, error) {
	rec, ok := s.checkins[checkinKey(userID, day)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (s *memStore) InsertCheckin(_ context.Context, rec *model.CheckinRecord) error {
	key := checkinKey(rec.UserID, rec.CheckinDate)
	if _, ok := s.checkins[key]; ok {
		return repository.ErrDuplicate
	}
	s.checkins[key] = rec
	return nil
}

func (s *memStore) CountCheckins(_ context.Context, userID string) (int, error) {
	n := 0
	for _, rec := range s.checkins {
		if rec.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) LastCheckinDate(ctx context.Context, userID string) (*time.Time, error) {
	recs, _, _ := s.ListCheckins(ctx, userID, 1, 0)
	if len(recs) == 0 {
		return nil, nil
	}
	d := recs[0].CheckinDate
	return &d, nil
}

func (s *memStore) ListCheckins(_ context.Context, userID string, limit, offset int) ([]*model.CheckinRecord, int, error) {
	var out []*model.CheckinRecord
	for _, rec := range s.checkins {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckinDate.After(out[j].CheckinDate) })
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}
