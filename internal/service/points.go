package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_circle/internal/model"
	"campus_circle/internal/repository"
)

const (
	defaultHistoryLimit = 20
	statisticsDays      = 30
)

type HistoryFilter string

const (
	HistoryAll    HistoryFilter = ""
	HistoryEarned HistoryFilter = "earned"
	HistorySpent  HistoryFilter = "spent"
)

type PostRequest struct {
	UserID      string
	Direction   model.Direction
	Amount      int
	SourceType  model.SourceType
	SourceID    *string
	Title       string
	Description string
}

type ManualAddRequest struct {
	UserID      string
	Points      int
	SourceType  model.SourceType
	SourceID    *string
	Title       string
	Description string
}

type PointsService struct {
	tx   Transactor
	repo PointsRepository
	loc  *time.Location
	now  func() time.Time
}

func NewPointsService(tx Transactor, repo PointsRepository, loc *time.Location) *PointsService {
	if loc == nil {
		loc = time.Local
	}
	return &PointsService{
		tx:   tx,
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// Post applies one signed delta to the user's balance and appends the
// matching ledger record, both in one unit of work. When ctx already carries
// a unit of work the posting joins it.
func (s *PointsService) Post(ctx context.Context, req PostRequest) (*model.PointsRecord, error) {
	if req.Amount <= 0 {
		return nil, invalid("points must be a positive amount")
	}
	if req.Direction != model.DirectionEarn && req.Direction != model.DirectionSpend {
		return nil, invalid("unknown points direction %d", req.Direction)
	}
	if !req.SourceType.Valid() {
		return nil, invalid("unknown source type %q", req.SourceType)
	}

	var rec *model.PointsRecord
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		profile, err := s.repo.LockPointsProfile(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		balance := profile.TotalPoints + req.Amount
		if req.Direction == model.DirectionSpend {
			balance = profile.TotalPoints - req.Amount
		}
		if balance < 0 {
			return fmt.Errorf("%w: balance %d, spending %d", ErrInsufficientBalance, profile.TotalPoints, req.Amount)
		}

		now := s.now()
		profile.TotalPoints = balance
		profile.Level = LevelFor(balance)
		profile.UpdatedAt = now
		if err = s.repo.UpdatePointsProfile(ctx, profile); err != nil {
			return err
		}

		rec = &model.PointsRecord{
			ID:           newID(),
			UserID:       req.UserID,
			Direction:    req.Direction,
			SourceType:   req.SourceType,
			SourceID:     req.SourceID,
			Points:       req.Amount,
			BalanceAfter: balance,
			Title:        req.Title,
			Description:  req.Description,
			CreatedAt:    now,
		}
		return s.repo.InsertPointsRecord(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *PointsService) Profile(ctx context.Context, userID string) (*model.PointsSummary, error) {
	profile, err := s.repo.GetPointsProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get points profile: %w", err)
	}

	today := startOfDay(s.now(), s.loc)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)

	summary := &model.PointsSummary{
		TotalPoints:     profile.TotalPoints,
		Level:           profile.Level,
		LevelProgress:   LevelProgress(profile.TotalPoints),
		NextLevelPoints: NextLevelPoints(profile.Level),
	}

	if summary.TodayEarned, err = s.repo.SumEarnedSince(ctx, userID, today); err != nil {
		return nil, err
	}
	if summary.WeekEarned, err = s.repo.SumEarnedSince(ctx, userID, weekStart); err != nil {
		return nil, err
	}
	if summary.MonthEarned, err = s.repo.SumEarnedSince(ctx, userID, monthStart); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *PointsService) History(ctx context.Context, userID string, filter HistoryFilter, page, limit int) ([]*model.PointsRecord, model.Pagination, error) {
	page, limit = normalizePage(page, limit, defaultHistoryLimit)

	var direction *model.Direction
	switch filter {
	case HistoryEarned:
		d := model.DirectionEarn
		direction = &d
	case HistorySpent:
		d := model.DirectionSpend
		direction = &d
	}

	records, total, err := s.repo.ListPointsRecords(ctx, userID, direction, limit, offset(page, limit))
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to get points history: %w", err)
	}

	return records, model.NewPagination(page, limit, total), nil
}

func (s *PointsService) Statistics(ctx context.Context, userID string) (*model.PointsStatistics, error) {
	profile, err := s.repo.GetPointsProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get points profile: %w", err)
	}

	earned, spent, err := s.repo.PointsBySource(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := startOfDay(s.now(), s.loc).AddDate(0, 0, -statisticsDays)
	daily, err := s.repo.DailyPoints(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	stats := &model.PointsStatistics{
		CurrentBalance: profile.TotalPoints,
		EarnedBySource: earned,
		SpentBySource:  spent,
		DailyHistory:   daily,
	}
	for _, v := range earned {
		stats.TotalEarned += v
	}
	for _, v := range spent {
		stats.TotalSpent += v
	}

	return stats, nil
}

// ManualAdd posts an earn record on behalf of an operator. When Points is
// zero the action schedule supplies the amount for post and comment sources.
func (s *PointsService) ManualAdd(ctx context.Context, req ManualAddRequest) (*model.PointsRecord, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, invalid("title is required")
	}
	if req.SourceType == "" {
		return nil, invalid("source_type is required")
	}
	if !req.SourceType.Valid() {
		return nil, invalid("unknown source type %q", req.SourceType)
	}

	points := req.Points
	if points == 0 {
		points = ActionPoints(req.SourceType)
	}
	if points <= 0 {
		return nil, invalid("points must be a positive amount")
	}

	return s.Post(ctx, PostRequest{
		UserID:      req.UserID,
		Direction:   model.DirectionEarn,
		Amount:      points,
		SourceType:  req.SourceType,
		SourceID:    req.SourceID,
		Title:       req.Title,
		Description: req.Description,
	})
}

// AwardAction credits the fixed reward for a community action such as a
// post or a comment.
func (s *PointsService) AwardAction(ctx context.Context, userID string, source model.SourceType, sourceID *string) (*model.PointsRecord, error) {
	points := ActionPoints(source)
	if points == 0 {
		return nil, invalid("source type %q carries no action reward", source)
	}

	title := "Published a post"
	if source == model.SourceComment {
		title = "Wrote a comment"
	}

	return s.Post(ctx, PostRequest{
		UserID:      userID,
		Direction:   model.DirectionEarn,
		Amount:      points,
		SourceType:  source,
		SourceID:    sourceID,
		Title:       title,
		Description: fmt.Sprintf("Earned %d points", points),
	})
}
