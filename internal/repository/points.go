package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campus_circle/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type pointsProfile struct {
	UserID      string    `db:"user_id"`
	TotalPoints int       `db:"total_points"`
	Level       int       `db:"level"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type pointsRecord struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Type         int       `db:"type"`
	SourceType   string    `db:"source_type"`
	SourceID     *string   `db:"source_id"`
	Points       int       `db:"points"`
	BalanceAfter int       `db:"balance_after"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
}

type sourceTotal struct {
	Type       int    `db:"type"`
	SourceType string `db:"source_type"`
	Total      int    `db:"total"`
}

type dailyPoints struct {
	Day    time.Time `db:"day"`
	Earned int       `db:"earned"`
	Spent  int       `db:"spent"`
}

var pointsRecordColumns = []string{
	"id", "user_id", "type", "source_type", "source_id",
	"points", "balance_after", "title", "description", "created_at",
}

func (r *Repository) GetPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error) {
	return r.getPointsProfile(ctx, userID, false)
}

// LockPointsProfile reads the profile with a row lock held until the
// surrounding transaction ends.
func (r *Repository) LockPointsProfile(ctx context.Context, userID string) (*model.PointsProfile, error) {
	return r.getPointsProfile(ctx, userID, true)
}

func (r *Repository) getPointsProfile(ctx context.Context, userID string, forUpdate bool) (*model.PointsProfile, error) {
	builder := squirrel.
		Select("user_id", "total_points", "level", "updated_at").
		From("user_profiles").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}

	var p pointsProfile
	err = sqlx.GetContext(ctx, r.conn(ctx), &p, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get points profile: %w", err)
	}

	return &model.PointsProfile{
		UserID:      p.UserID,
		TotalPoints: p.TotalPoints,
		Level:       p.Level,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (r *Repository) UpdatePointsProfile(ctx context.Context, profile *model.PointsProfile) error {
	query, args, err := squirrel.
		Update("user_profiles").
		SetMap(map[string]interface{}{
			"total_points": profile.TotalPoints,
			"level":        profile.Level,
			"updated_at":   profile.UpdatedAt,
		}).
		Where(squirrel.Eq{"user_id": profile.UserID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile update query: %w", err)
	}

	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update points profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) InsertPointsRecord(ctx context.Context, rec *model.PointsRecord) error {
	query, args, err := squirrel.
		Insert("points_records").
		Columns(pointsRecordColumns...).
		Values(
			rec.ID,
			rec.UserID,
			int(rec.Direction),
			string(rec.SourceType),
			rec.SourceID,
			rec.Points,
			rec.BalanceAfter,
			rec.Title,
			rec.Description,
			rec.CreatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build points record insert query: %w", err)
	}

	_, err = r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert points record: %w", err)
	}

	return nil
}

// ListPointsRecords returns one page of a user's ledger, newest first, and
// the total number of records matching the direction filter. A nil direction
// matches both.
func (r *Repository) ListPointsRecords(ctx context.Context, userID string, direction *model.Direction, limit, offset int) ([]*model.PointsRecord, int, error) {
	where := squirrel.Eq{"user_id": userID}
	if direction != nil {
		where["type"] = int(*direction)
	}

	countQuery, countArgs, err := squirrel.
		Select("COUNT(*)").
		From("points_records").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build points count query: %w", err)
	}

	var total int
	if err = sqlx.GetContext(ctx, r.conn(ctx), &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count points records: %w", err)
	}

	query, args, err := squirrel.
		Select(pointsRecordColumns...).
		From("points_records").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build points history query: %w", err)
	}

	var rows []*pointsRecord
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list points records: %w", err)
	}

	records := make([]*model.PointsRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toModel()
	}

	return records, total, nil
}

// SumEarnedSince totals the points a user earned at or after since.
func (r *Repository) SumEarnedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query, args, err := squirrel.
		Select("COALESCE(SUM(points), 0)").
		From("points_records").
		Where(squirrel.Eq{"user_id": userID, "type": int(model.DirectionEarn)}).
		Where(squirrel.GtOrEq{"created_at": since}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build earned sum query: %w", err)
	}

	var total int
	if err = sqlx.GetContext(ctx, r.conn(ctx), &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to sum earned points: %w", err)
	}

	return total, nil
}

// PointsBySource returns per-direction, per-source totals for a user.
func (r *Repository) PointsBySource(ctx context.Context, userID string) (earned, spent map[model.SourceType]int, err error) {
	query, args, err := squirrel.
		Select("type", "source_type", "COALESCE(SUM(points), 0) AS total").
		From("points_records").
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("type", "source_type").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build source totals query: %w", err)
	}

	var rows []*sourceTotal
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, nil, fmt.Errorf("failed to get source totals: %w", err)
	}

	earned = make(map[model.SourceType]int)
	spent = make(map[model.SourceType]int)
	for _, row := range rows {
		switch model.Direction(row.Type) {
		case model.DirectionEarn:
			earned[model.SourceType(row.SourceType)] += row.Total
		case model.DirectionSpend:
			spent[model.SourceType(row.SourceType)] += row.Total
		}
	}

	return earned, spent, nil
}

// DailyPoints groups a user's postings since the given instant by calendar
// day, newest day first.
func (r *Repository) DailyPoints(ctx context.Context, userID string, since time.Time) ([]*model.DailyPoints, error) {
	query, args, err := squirrel.
		Select(
			"DATE(created_at) AS day",
			"COALESCE(SUM(CASE WHEN type = 1 THEN points ELSE 0 END), 0) AS earned",
			"COALESCE(SUM(CASE WHEN type = 2 THEN points ELSE 0 END), 0) AS spent",
		).
		From("points_records").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"created_at": since}).
		GroupBy("DATE(created_at)").
		OrderBy("day DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build daily points query: %w", err)
	}

	var rows []*dailyPoints
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get daily points: %w", err)
	}

	out := make([]*model.DailyPoints, len(rows))
	for i, row := range rows {
		out[i] = &model.DailyPoints{Date: row.Day, Earned: row.Earned, Spent: row.Spent}
	}

	return out, nil
}

func (p *pointsRecord) toModel() *model.PointsRecord {
	return &model.PointsRecord{
		ID:           p.ID,
		UserID:       p.UserID,
		Direction:    model.Direction(p.Type),
		SourceType:   model.SourceType(p.SourceType),
		SourceID:     p.SourceID,
		Points:       p.Points,
		BalanceAfter: p.BalanceAfter,
		Title:        p.Title,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
	}
}
