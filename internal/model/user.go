package model

import "time"

// Member mirrors an account owned by the identity provider. Only the fields
// shown next to tasks and on the leaderboard are kept locally.
type Member struct {
	ID        string
	Nickname  string
	AvatarURL *string
	CreatedAt time.Time
}

type LeaderboardEntry struct {
	Rank        int
	UserID      string
	Nickname    string
	AvatarURL   *string
	TotalPoints int
	Level       int
}
