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

const dateLayout = "2006-01-02"

type checkinRecord struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	CheckinDate     time.Time `db:"checkin_date"`
	ConsecutiveDays int       `db:"consecutive_days"`
	PointsEarned    int       `db:"points_earned"`
	CreatedAt       time.Time `db:"created_at"`
}

var checkinColumns = []string{
	"id", "user_id", "checkin_date", "consecutive_days", "points_earned", "created_at",
}

// GetCheckin returns the user's record for the calendar day of day.
func (r *Repository) GetCheckin(ctx context.Context, userID string, day time.Time) (*model.CheckinRecord, error) {
	query, args, err := squirrel.
		Select(checkinColumns...).
		From("daily_checkins").
		Where(squirrel.Eq{
			"user_id":      userID,
			"checkin_date": day.Format(dateLayout),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build checkin query: %w", err)
	}

	var rec checkinRecord
	err = sqlx.GetContext(ctx, r.conn(ctx), &rec, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get checkin: %w", err)
	}

	return rec.toModel(), nil
}

// InsertCheckin stores rec unless the user already has a record for that
// day, in which case ErrDuplicate is returned and nothing is written.
func (r *Repository) InsertCheckin(ctx context.Context, rec *model.CheckinRecord) error {
	query, args, err := squirrel.
		Insert("daily_checkins").
		Columns(checkinColumns...).
		Values(
			rec.ID,
			rec.UserID,
			rec.CheckinDate.Format(dateLayout),
			rec.ConsecutiveDays,
			rec.PointsEarned,
			rec.CreatedAt,
		).
		Suffix("ON CONFLICT (user_id, checkin_date) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build checkin insert query: %w", err)
	}

	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert checkin: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrDuplicate
	}

	return nil
}

func (r *Repository) CountCheckins(ctx context.Context, userID string) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("daily_checkins").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build checkin count query: %w", err)
	}

	var total int
	if err = sqlx.GetContext(ctx, r.conn(ctx), &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count checkins: %w", err)
	}

	return total, nil
}

// LastCheckinDate returns nil when the user never checked in.
func (r *Repository) LastCheckinDate(ctx context.Context, userID string) (*time.Time, error) {
	query, args, err := squirrel.
		Select("MAX(checkin_date)").
		From("daily_checkins").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build last checkin query: %w", err)
	}

	var last sql.NullTime
	if err = sqlx.GetContext(ctx, r.conn(ctx), &last, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get last checkin: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}

	return &last.Time, nil
}

func (r *Repository) ListCheckins(ctx context.Context, userID string, limit, offset int) ([]*model.CheckinRecord, int, error) {
	total, err := r.CountCheckins(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	query, args, err := squirrel.
		Select(checkinColumns...).
		From("daily_checkins").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("checkin_date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build checkin history query: %w", err)
	}

	var rows []*checkinRecord
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list checkins: %w", err)
	}

	records := make([]*model.CheckinRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toModel()
	}

	return records, total, nil
}

func (c *checkinRecord) toModel() *model.CheckinRecord {
	return &model.CheckinRecord{
		ID:              c.ID,
		UserID:          c.UserID,
		CheckinDate:     c.CheckinDate,
		ConsecutiveDays: c.ConsecutiveDays,
		PointsEarned:    c.PointsEarned,
		CreatedAt:       c.CreatedAt,
	}
}
