package api

import (
	"net/http"
	"testing"

	"campus_circle/internal/model"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSyncMember(t *testing.T) {
	avatar := "https://cdn.example.com/lin.png"

	tests := []struct {
		name       string
		body       interface{}
		mockFn     func(ms *mockMemberService)
		wantStatus int
	}{
		{
			name: "Synced",
			body: SyncMemberRequest{Nickname: "Lin", AvatarURL: &avatar},
			mockFn: func(ms *mockMemberService) {
				ms.On("Sync", mock.Anything, "u1", "Lin", &avatar).
					Return(&model.Member{ID: "u1", Nickname: "Lin", AvatarURL: &avatar}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Rejected nickname",
			body: SyncMemberRequest{Nickname: ""},
			mockFn: func(ms *mockMemberService) {
				ms.On("Sync", mock.Anything, "u1", "", (*string)(nil)).
					Return(nil, &service.ValidationError{Message: "nickname is required"}).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Malformed body",
			body:       "not an object",
			mockFn:     func(ms *mockMemberService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			tt.mockFn(s.members)

			w, body := s.do(t, http.MethodPut, "/api/v1/members/me", s.token(t, "u1", auth.RoleUser), tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, body["success"])
			s.members.AssertExpectations(t)
		})
	}
}

func TestGetMember(t *testing.T) {
	s := newTestServer(t)
	s.members.On("Member", mock.Anything, "ghost").Return(nil, service.ErrUserNotFound)

	w, body := s.do(t, http.MethodGet, "/api/v1/members/me", s.token(t, "ghost", auth.RoleUser), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", body["message"])
}

func TestLeaderboardIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.members.On("Leaderboard", mock.Anything, 5).Return([]*model.LeaderboardEntry{
		{Rank: 1, UserID: "u2", Nickname: "Mei", TotalPoints: 340, Level: 4},
	}, nil)

	w, body := s.do(t, http.MethodGet, "/api/v1/leaderboard?limit=5", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	entry := data[0].(map[string]interface{})
	assert.Equal(t, "u2", entry["user_id"])
	assert.Equal(t, float64(340), entry["total_points"])
}
