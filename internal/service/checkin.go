package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/repository"
)

const defaultCheckinHistoryLimit = 30

type CheckinService struct {
	tx     Transactor
	repo   CheckinRepository
	ledger Ledger
	loc    *time.Location
	now    func() time.Time
}

// NewCheckinService builds the check-in engine. Calendar days are taken in
// loc; a nil loc means the server's local zone.
func NewCheckinService(tx Transactor, repo CheckinRepository, ledger Ledger, loc *time.Location) *CheckinService {
	if loc == nil {
		loc = time.Local
	}
	return &CheckinService{
		tx:     tx,
		repo:   repo,
		ledger: ledger,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *CheckinService) Status(ctx context.Context, userID string) (*model.CheckinStatus, error) {
	today := startOfDay(s.now(), s.loc)

	todayRec, err := s.findCheckin(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	status := &model.CheckinStatus{
		HasCheckedInToday: todayRec != nil,
		NextCheckinDate:   today.AddDate(0, 0, 1),
	}

	if todayRec != nil {
		status.ConsecutiveDays = todayRec.ConsecutiveDays
		status.TodayPoints = CheckinPoints(status.ConsecutiveDays)
		status.TomorrowPoints = CheckinPoints(status.ConsecutiveDays + 1)
	} else {
		yesterday, err := s.findCheckin(ctx, userID, today.AddDate(0, 0, -1))
		if err != nil {
			return nil, err
		}
		if yesterday != nil {
			status.ConsecutiveDays = yesterday.ConsecutiveDays
		}
		status.TodayPoints = CheckinPoints(status.ConsecutiveDays + 1)
		status.TomorrowPoints = CheckinPoints(status.ConsecutiveDays + 2)
	}

	if status.TotalDays, err = s.repo.CountCheckins(ctx, userID); err != nil {
		return nil, err
	}
	if status.LastCheckinDate, err = s.repo.LastCheckinDate(ctx, userID); err != nil {
		return nil, err
	}

	return status, nil
}

// Checkin records today's check-in and posts its award. The streak grows by
// one when yesterday has a record and restarts at one otherwise.
func (s *CheckinService) Checkin(ctx context.Context, userID string) (*model.CheckinResult, error) {
	now := s.now()
	today := startOfDay(now, s.loc)

	var result *model.CheckinResult
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.findCheckin(ctx, userID, today)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyCheckedIn
		}

		yesterday, err := s.findCheckin(ctx, userID, today.AddDate(0, 0, -1))
		if err != nil {
			return err
		}
		consecutive := 1
		if yesterday != nil {
			consecutive = yesterday.ConsecutiveDays + 1
		}

		rec := &model.CheckinRecord{
			ID:              newID(),
			UserID:          userID,
			CheckinDate:     today,
			ConsecutiveDays: consecutive,
			PointsEarned:    CheckinPoints(consecutive),
			CreatedAt:       now,
		}
		if err = s.repo.InsertCheckin(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		posted, err := s.ledger.Post(ctx, PostRequest{
			UserID:      userID,
			Direction:   model.DirectionEarn,
			Amount:      rec.PointsEarned,
			SourceType:  model.SourceDailyCheckin,
			SourceID:    &rec.ID,
			Title:       "Daily check-in reward",
			Description: fmt.Sprintf("Checked in %d days in a row, earned %d points", consecutive, rec.PointsEarned),
		})
		if err != nil {
			return err
		}

		result = &model.CheckinResult{Record: rec, TotalPoints: posted.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *CheckinService) CheckinHistory(ctx context.Context, userID string, page, limit int) ([]*model.CheckinRecord, model.Pagination, error) {
	page, limit = normalizePage(page, limit, defaultCheckinHistoryLimit)

	records, total, err := s.repo.ListCheckins(ctx, userID, limit, offset(page, limit))
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to get checkin history: %w", err)
	}

	return records, model.NewPagination(page, limit, total), nil
}

// findCheckin returns nil without error when the day has no record.
func (s *CheckinService) findCheckin(ctx context.Context, userID string, day time.Time) (*model.CheckinRecord, error) {
	rec, err := s.repo.GetCheckin(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}
