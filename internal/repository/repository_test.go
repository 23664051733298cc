package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewWithDB(sqlx.NewDb(db, "pgx")), mock
}

var touchQuery = regexp.QuoteMeta("UPDATE user_profiles SET level = $1, total_points = $2, updated_at = $3 WHERE user_id = $4")

func TestRepository_WithTx(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		mockFn  func(mock sqlmock.Sqlmock)
		fn      func(r *Repository) func(ctx context.Context) error
		wantErr error
	}{
		{
			name: "Commits on success",
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(touchQuery).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: func(r *Repository) func(ctx context.Context) error {
				return func(ctx context.Context) error {
					_, err := r.conn(ctx).ExecContext(ctx,
						"UPDATE user_profiles SET level = $1, total_points = $2, updated_at = $3 WHERE user_id = $4",
						1, 10, time.Now(), "u1")
					return err
				}
			},
		},
		{
			name: "Rolls back on error",
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(r *Repository) func(ctx context.Context) error {
				return func(ctx context.Context) error { return errBoom }
			},
			wantErr: errBoom,
		},
		{
			name: "Keeps the cause when rollback fails",
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errors.New("conn lost"))
			},
			fn: func(r *Repository) func(ctx context.Context) error {
				return func(ctx context.Context) error { return errBoom }
			},
			wantErr: errBoom,
		},
		{
			name: "Nested unit joins the outer transaction",
			mockFn: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(r *Repository) func(ctx context.Context) error {
				return func(ctx context.Context) error {
					return r.WithTx(ctx, func(inner context.Context) error {
						assert.Equal(t, r.conn(ctx), r.conn(inner))
						return nil
					})
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupTestRepo(t)
			tt.mockFn(mock)

			err := repo.WithTx(context.Background(), tt.fn(repo))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_WithTxPanic(t *testing.T) {
	repo, mock := setupTestRepo(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = repo.WithTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfig_GetDatabaseURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "campus", Password: "secret", Name: "campus_circle"}
	assert.Equal(t, "postgres://campus:secret@db:5432/campus_circle?sslmode=disable", cfg.GetDatabaseURL())

	cfg.SSLMode = "require"
	assert.Equal(t, "postgres://campus:secret@db:5432/campus_circle?sslmode=require", cfg.GetDatabaseURL())
}
