package players

import (
	"context"
	"fmt"

	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/models"
)

const RecentHistoryLimit = 20

type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, avatar, created_at FROM players ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) PlayerByID(ctx context.Context, id int64) (*models.Player, error) {
	var p models.Player
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, avatar, created_at FROM players WHERE id = ?`, id,
	).Scan(&p.ID, &p.Username, &p.Avatar, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &p, nil
}

// RecentHistory returns the newest answers first.
func (s *Store) RecentHistory(ctx context.Context, playerID int64, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, problem, answer, user_answer, correct, time_ms, created_at
		 FROM history WHERE player_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Problem, &e.Answer, &e.UserAnswer,
			&e.Correct, &e.TimeMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
