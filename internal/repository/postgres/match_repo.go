package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/bigbrainbot/internal/model"
)

// MatchRepo handles match and seat_result database operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateMatch inserts a running match. CreatedAt is filled from the database.
func (r *MatchRepo) CreateMatch(ctx context.Context, m *model.Match) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO matches (id, name, map_name, width, height, seats, status, winner)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		m.ID, m.Name, m.MapName, m.Width, m.Height, m.Seats, model.MatchRunning, model.NoWinner,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	m.Status = model.MatchRunning
	m.Winner = model.NoWinner
	return nil
}

// SaveSeatResults upserts the per-seat standings of a match.
func (r *MatchRepo) SaveSeatResults(ctx context.Context, matchID string, results []model.SeatResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, s := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO seat_results (match_id, seat, policy, banked, ships, spawned, self_collisions, collisions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (match_id, seat) DO UPDATE
			 SET policy = EXCLUDED.policy, banked = EXCLUDED.banked, ships = EXCLUDED.ships,
			     spawned = EXCLUDED.spawned, self_collisions = EXCLUDED.self_collisions,
			     collisions = EXCLUDED.collisions`,
			matchID, s.Seat, s.Policy, s.Banked, s.Ships, s.Spawned, s.SelfCollisions, s.Collisions)
		if err != nil {
			return fmt.Errorf("save seat %d: %w", s.Seat, err)
		}
	}
	return tx.Commit()
}

// FinishMatch marks a match finished.
func (r *MatchRepo) FinishMatch(ctx context.Context, matchID string, turns, winner int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $2, turns = $3, winner = $4, finished_at = now() WHERE id = $1`,
		matchID, model.MatchFinished, turns, winner)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	return nil
}

// ListRecent returns the newest matches with their seat results.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, map_name, width, height, seats, status, winner, turns, created_at, finished_at
		 FROM matches ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.Name, &m.MapName, &m.Width, &m.Height, &m.Seats, &m.Status,
			&m.Winner, &m.Turns, &m.CreatedAt, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matches {
		results, err := r.seatResults(ctx, matches[i].ID)
		if err != nil {
			return nil, err
		}
		matches[i].Results = results
	}
	return matches, nil
}

func (r *MatchRepo) seatResults(ctx context.Context, matchID string) ([]model.SeatResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT match_id, seat, policy, banked, ships, spawned, self_collisions, collisions
		 FROM seat_results WHERE match_id = $1 ORDER BY seat`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list seat results: %w", err)
	}
	defer rows.Close()

	var out []model.SeatResult
	for rows.Next() {
		var s model.SeatResult
		if err := rows.Scan(&s.MatchID, &s.Seat, &s.Policy, &s.Banked, &s.Ships, &s.Spawned,
			&s.SelfCollisions, &s.Collisions); err != nil {
			return nil, fmt.Errorf("scan seat result: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
