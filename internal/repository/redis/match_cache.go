package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/bigbrainbot/internal/model"
)

// liveFrameTTL expires frames of matches whose runner died without cleanup.
const liveFrameTTL = 30 * time.Minute

// Key patterns for Redis match state.
func frameKey(matchID string) string { return "match:" + matchID + ":frame" }
func leaderboardKey() string         { return "arena:leaderboard" }

// SetLiveFrame stores the latest frame JSON of a running match.
func (c *Client) SetLiveFrame(ctx context.Context, matchID string, frame json.RawMessage) error {
	return c.rdb.Set(ctx, frameKey(matchID), []byte(frame), liveFrameTTL).Err()
}

// GetLiveFrame returns the latest frame JSON, or nil when none is stored.
func (c *Client) GetLiveFrame(ctx context.Context, matchID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, frameKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get live frame: %w", err)
	}
	return json.RawMessage(data), nil
}

// RecordWin increments the win count of a role policy.
func (c *Client) RecordWin(ctx context.Context, policy string) error {
	return c.rdb.ZIncrBy(ctx, leaderboardKey(), 1, policy).Err()
}

// Leaderboard returns the n policies with the most wins.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, leaderboardKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	out := make([]model.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		policy, _ := z.Member.(string)
		out = append(out, model.LeaderboardEntry{Policy: policy, Wins: int64(z.Score)})
	}
	return out, nil
}

// DeleteMatch removes the live state of a finished match.
func (c *Client) DeleteMatch(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, frameKey(matchID)).Err()
}
