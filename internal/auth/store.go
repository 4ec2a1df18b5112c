package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/models"
)

type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// ── Players ─────────────────────────────────────────────

func (s *Store) UsernameExists(ctx context.Context, q database.Querier, username string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE LOWER(username) = LOWER(?)`, username,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (s *Store) EmailExists(ctx context.Context, q database.Querier, email string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE LOWER(email) = LOWER(?)`, email,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreatePlayer(ctx context.Context, q database.Querier, p *models.Player) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO players (username, email, avatar, pin_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		p.Username, p.Email, p.Avatar, p.PinHash, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// PlayerByUsername returns sql.ErrNoRows (wrapped) when nobody has the name.
func (s *Store) PlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	var p models.Player
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, avatar, email, pin_hash, created_at
		 FROM players WHERE LOWER(username) = LOWER(?)`,
		username,
	).Scan(&p.ID, &p.Username, &p.Avatar, &p.Email, &p.PinHash, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get player by username: %w", err)
	}
	return &p, nil
}

// ── Sessions ────────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, q database.Querier, sess *models.Session) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO sessions (player_id, token, expires_at) VALUES (?, ?, ?) RETURNING id`,
		sess.PlayerID, sess.Token, sess.ExpiresAt,
	).Scan(&sess.ID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// LiveSession loads an unexpired session together with its player.
func (s *Store) LiveSession(ctx context.Context, token string, now time.Time) (*models.Player, *models.Session, error) {
	var p models.Player
	var sess models.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.player_id, s.token, s.expires_at,
		        p.id, p.username, p.avatar, p.email, p.created_at
		 FROM sessions s
		 JOIN players p ON p.id = s.player_id
		 WHERE s.token = ? AND s.expires_at > ?`,
		token, now,
	).Scan(&sess.ID, &sess.PlayerID, &sess.Token, &sess.ExpiresAt,
		&p.ID, &p.Username, &p.Avatar, &p.Email, &p.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	return &p, &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

