package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"campus_circle/internal/model"
	"campus_circle/internal/repository"
)

const (
	maxNicknameLength       = 64
	defaultLeaderboardLimit = 50
)

type MemberService struct {
	repo MemberRepository
	now  func() time.Time
}

func NewMemberService(repo MemberRepository) *MemberService {
	return &MemberService{
		repo: repo,
		now:  time.Now,
	}
}

// Sync records the display fields the identity provider knows for userID and
// opens a points profile on first contact.
func (s *MemberService) Sync(ctx context.Context, userID, nickname string, avatarURL *string) (*model.Member, error) {
	nickname = strings.TrimSpace(nickname)
	switch {
	case nickname == "":
		return nil, invalid("nickname is required")
	case utf8.RuneCountInString(nickname) > maxNicknameLength:
		return nil, invalid("nickname must be at most %d characters", maxNicknameLength)
	}
	if avatarURL != nil && strings.TrimSpace(*avatarURL) == "" {
		avatarURL = nil
	}

	m := &model.Member{
		ID:        userID,
		Nickname:  nickname,
		AvatarURL: avatarURL,
		CreatedAt: s.now(),
	}
	if err := s.repo.UpsertMember(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to sync member: %w", err)
	}

	return s.Member(ctx, userID)
}

func (s *MemberService) Member(ctx context.Context, userID string) (*model.Member, error) {
	m, err := s.repo.GetMember(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (s *MemberService) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	entries, err := s.repo.TopMembers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top members: %w", err)
	}
	return entries, nil
}
