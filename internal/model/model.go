package model

import "time"

// Match statuses.
const (
	MatchRunning  = "running"
	MatchFinished = "finished"
)

// NoWinner marks a match with no single top seat.
const NoWinner = -1

// Match is one arena game.
type Match struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	MapName    string       `json:"map_name"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Seats      int          `json:"seats"`
	Status     string       `json:"status"`
	Winner     int          `json:"winner"`
	Turns      int          `json:"turns"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Results    []SeatResult `json:"results,omitempty"`
}

// SeatResult is one seat's final standing in a match.
type SeatResult struct {
	MatchID        string `json:"match_id"`
	Seat           int    `json:"seat"`
	Policy         string `json:"policy"`
	Banked         int    `json:"banked"`
	Ships          int    `json:"ships"`
	Spawned        int    `json:"spawned"`
	SelfCollisions int    `json:"self_collisions"`
	Collisions     int    `json:"collisions"`
}

// LeaderboardEntry counts match wins per role policy.
type LeaderboardEntry struct {
	Policy string `json:"policy"`
	Wins   int64  `json:"wins"`
}
