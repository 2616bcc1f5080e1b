//go:build integration

package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/freeeve/bigbrainbot/internal/testutil"
)

func setup(t *testing.T) *Client {
	t.Helper()
	rdb := testutil.SetupRedis(t)
	testutil.CleanupRedis(t, rdb)
	return NewClientFromPool(rdb)
}

func TestLiveFrameRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	got, err := c.GetLiveFrame(ctx, "m-1")
	if err != nil || got != nil {
		t.Fatalf("GetLiveFrame(missing) = %s, %v; want nil, nil", got, err)
	}

	frame := json.RawMessage(`{"turn":7}`)
	if err := c.SetLiveFrame(ctx, "m-1", frame); err != nil {
		t.Fatalf("SetLiveFrame: %v", err)
	}
	got, err = c.GetLiveFrame(ctx, "m-1")
	if err != nil {
		t.Fatalf("GetLiveFrame: %v", err)
	}
	if string(got) != string(frame) {
		t.Errorf("frame = %s, want %s", got, frame)
	}

	if err := c.DeleteMatch(ctx, "m-1"); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	if got, _ := c.GetLiveFrame(ctx, "m-1"); got != nil {
		t.Errorf("frame after delete = %s, want nil", got)
	}
}

func TestLeaderboard(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	for _, p := range []string{"harvest", "blockade", "harvest", "harvest", "blockade", "idle"} {
		if err := c.RecordWin(ctx, p); err != nil {
			t.Fatalf("RecordWin(%s): %v", p, err)
		}
	}
	top, err := c.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("Leaderboard returned %d entries, want 2", len(top))
	}
	if top[0].Policy != "harvest" || top[0].Wins != 3 {
		t.Errorf("top[0] = %+v, want harvest with 3 wins", top[0])
	}
	if top[1].Policy != "blockade" || top[1].Wins != 2 {
		t.Errorf("top[1] = %+v, want blockade with 2 wins", top[1])
	}
}
