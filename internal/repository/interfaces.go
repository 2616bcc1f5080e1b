package repository

import (
	"context"
	"encoding/json"

	"github.com/freeeve/bigbrainbot/internal/model"
)

// MatchRepository defines durable arena match storage.
type MatchRepository interface {
	CreateMatch(ctx context.Context, m *model.Match) error
	SaveSeatResults(ctx context.Context, matchID string, results []model.SeatResult) error
	FinishMatch(ctx context.Context, matchID string, turns, winner int) error
	ListRecent(ctx context.Context, limit int) ([]model.Match, error)
}

// MatchCache defines live match state operations (Redis).
type MatchCache interface {
	SetLiveFrame(ctx context.Context, matchID string, frame json.RawMessage) error
	GetLiveFrame(ctx context.Context, matchID string) (json.RawMessage, error)
	RecordWin(ctx context.Context, policy string) error
	Leaderboard(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
	DeleteMatch(ctx context.Context, matchID string) error
}
