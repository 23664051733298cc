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

type member struct {
	ID        string    `db:"id"`
	Nickname  string    `db:"nickname"`
	AvatarURL *string   `db:"avatar_url"`
	CreatedAt time.Time `db:"created_at"`
}

type leaderboardRow struct {
	UserID      string  `db:"user_id"`
	Nickname    string  `db:"nickname"`
	AvatarURL   *string `db:"avatar_url"`
	TotalPoints int     `db:"total_points"`
	Level       int     `db:"level"`
}

// UpsertMember stores the member's display fields and makes sure a points
// profile exists for them. An existing profile is left untouched.
func (r *Repository) UpsertMember(ctx context.Context, m *model.Member) error {
	return r.WithTx(ctx, func(ctx context.Context) error {
		query, args, err := squirrel.
			Insert("users").
			Columns("id", "nickname", "avatar_url", "created_at").
			Values(m.ID, m.Nickname, m.AvatarURL, m.CreatedAt).
			Suffix("ON CONFLICT (id) DO UPDATE SET nickname = EXCLUDED.nickname, avatar_url = EXCLUDED.avatar_url").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build member upsert query: %w", err)
		}

		if _, err = r.conn(ctx).ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert member: %w", err)
		}

		profileQuery, profileArgs, err := squirrel.
			Insert("user_profiles").
			Columns("user_id", "total_points", "level", "updated_at").
			Values(m.ID, 0, 1, m.CreatedAt).
			Suffix("ON CONFLICT (user_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build profile insert query: %w", err)
		}

		if _, err = r.conn(ctx).ExecContext(ctx, profileQuery, profileArgs...); err != nil {
			return fmt.Errorf("failed to insert points profile: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetMember(ctx context.Context, userID string) (*model.Member, error) {
	query, args, err := squirrel.
		Select("id", "nickname", "avatar_url", "created_at").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build member query: %w", err)
	}

	var m member
	err = sqlx.GetContext(ctx, r.conn(ctx), &m, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &model.Member{
		ID:        m.ID,
		Nickname:  m.Nickname,
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
	}, nil
}

// TopMembers ranks members by balance. Ties are broken by user id so the
// order is stable between calls.
func (r *Repository) TopMembers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select("p.user_id", "u.nickname", "u.avatar_url", "p.total_points", "p.level").
		From("user_profiles p").
		Join("users u ON p.user_id = u.id").
		OrderBy("p.total_points DESC", "p.user_id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	var rows []leaderboardRow
	if err = sqlx.SelectContext(ctx, r.conn(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get top members: %w", err)
	}

	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      row.UserID,
			Nickname:    row.Nickname,
			AvatarURL:   row.AvatarURL,
			TotalPoints: row.TotalPoints,
			Level:       row.Level,
		}
	}

	return entries, nil
}
