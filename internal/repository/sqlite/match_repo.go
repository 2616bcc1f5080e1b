package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/freeeve/bigbrainbot/internal/model"
)

// timeLayout is fixed width so text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MatchRepo handles match and seat_result rows.
type MatchRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// CreateMatch inserts a running match and stamps CreatedAt.
func (r *MatchRepo) CreateMatch(ctx context.Context, m *model.Match) error {
	created := r.now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (id, name, map_name, width, height, seats, status, winner, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.MapName, m.Width, m.Height, m.Seats, model.MatchRunning, model.NoWinner,
		created.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	m.Status = model.MatchRunning
	m.Winner = model.NoWinner
	m.CreatedAt = created
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
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (match_id, seat) DO UPDATE
			 SET policy = excluded.policy, banked = excluded.banked, ships = excluded.ships,
			     spawned = excluded.spawned, self_collisions = excluded.self_collisions,
			     collisions = excluded.collisions`,
			matchID, s.Seat, s.Policy, s.Banked, s.Ships, s.Spawned, s.SelfCollisions, s.Collisions)
		if err != nil {
			return fmt.Errorf("save seat %d: %w", s.Seat, err)
		}
	}
	return tx.Commit()
}

// FinishMatch marks a match finished.
func (r *MatchRepo) FinishMatch(ctx context.Context, matchID string, turns, winner int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = ?, turns = ?, winner = ?, finished_at = ? WHERE id = ?`,
		model.MatchFinished, turns, winner, r.now().Format(timeLayout), matchID)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish match: %s not found", matchID)
	}
	return nil
}

// ListRecent returns the newest matches with their seat results.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, map_name, width, height, seats, status, winner, turns, created_at, finished_at
		 FROM matches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		var created string
		var finished sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.MapName, &m.Width, &m.Height, &m.Seats, &m.Status,
			&m.Winner, &m.Turns, &created, &finished); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if m.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if finished.Valid {
			t, err := time.Parse(timeLayout, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
			m.FinishedAt = &t
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

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
		 FROM seat_results WHERE match_id = ? ORDER BY seat`, matchID)
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
