package daily

import (
	"context"
	"fmt"

	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/models"
)

type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

const challengeColumns = `player_id, challenge_date, problems_completed, total_problems, bonus_xp_earned, completed, created_at`

func scanChallenge(sc interface{ Scan(...any) error }) (models.DailyChallenge, error) {
	var c models.DailyChallenge
	err := sc.Scan(&c.PlayerID, &c.Date, &c.ProblemsCompleted, &c.TotalProblems,
		&c.BonusXPEarned, &c.Completed, &c.CreatedAt)
	return c, err
}

// GetOrCreate returns the player's row for date, inserting a fresh one on
// first access.
func (s *Store) GetOrCreate(ctx context.Context, playerID int64, date string, total int) (models.DailyChallenge, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_challenges (player_id, challenge_date, total_problems) VALUES (?, ?, ?)
		 ON CONFLICT (player_id, challenge_date) DO NOTHING`,
		playerID, date, total,
	)
	if err != nil {
		return models.DailyChallenge{}, fmt.Errorf("create daily challenge: %w", err)
	}

	c, err := scanChallenge(s.db.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM daily_challenges WHERE player_id = ? AND challenge_date = ?`,
		playerID, date,
	))
	if err != nil {
		return models.DailyChallenge{}, fmt.Errorf("get daily challenge: %w", err)
	}
	return c, nil
}

// Lock reads the row for update. A missing row surfaces as sql.ErrNoRows.
func (s *Store) Lock(ctx context.Context, q database.Querier, playerID int64, date string) (models.DailyChallenge, error) {
	c, err := scanChallenge(q.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM daily_challenges
		 WHERE player_id = ? AND challenge_date = ?`+q.Dialect().ForUpdate(),
		playerID, date,
	))
	if err != nil {
		return models.DailyChallenge{}, fmt.Errorf("lock daily challenge: %w", err)
	}
	return c, nil
}

func (s *Store) Save(ctx context.Context, q database.Querier, c models.DailyChallenge) error {
	_, err := q.ExecContext(ctx,
		`UPDATE daily_challenges SET problems_completed = ?, bonus_xp_earned = ?, completed = ?
		 WHERE player_id = ? AND challenge_date = ?`,
		c.ProblemsCompleted, c.BonusXPEarned, c.Completed, c.PlayerID, c.Date,
	)
	if err != nil {
		return fmt.Errorf("update daily challenge: %w", err)
	}
	return nil
}

func (s *Store) Totals(ctx context.Context, playerID int64) (completed int, bonusXP int64, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(bonus_xp_earned), 0)
		 FROM daily_challenges WHERE player_id = ?`,
		playerID,
	).Scan(&completed, &bonusXP)
	if err != nil {
		return 0, 0, fmt.Errorf("daily totals: %w", err)
	}
	return completed, bonusXP, nil
}

// CompletedDates lists finished days, newest first.
func (s *Store) CompletedDates(ctx context.Context, playerID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT challenge_date FROM daily_challenges
		 WHERE player_id = ? AND completed = TRUE
		 ORDER BY challenge_date DESC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completed days: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan completed day: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
