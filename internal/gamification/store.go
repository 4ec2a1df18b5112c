package gamification

import (
	"context"
	"database/sql"
	"errors"
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

func (s *Store) DB() *database.DB {
	return s.db
}

// ── Progress ────────────────────────────────────────────

const progressColumns = `player_id, problem_type, correct, total, streak, best_streak, xp, difficulty, updated_at`

func scanProgress(sc interface{ Scan(...any) error }) (models.Progress, error) {
	var p models.Progress
	err := sc.Scan(&p.PlayerID, &p.ProblemType, &p.Correct, &p.Total, &p.Streak,
		&p.BestStreak, &p.XP, &p.Difficulty, &p.UpdatedAt)
	return p, err
}

// LockProgress makes sure the (player, type) row exists and reads it with a
// row lock held until the surrounding transaction ends.
func (s *Store) LockProgress(ctx context.Context, q database.Querier, playerID int64, problemType string) (models.Progress, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO progress (player_id, problem_type) VALUES (?, ?)
		 ON CONFLICT (player_id, problem_type) DO NOTHING`,
		playerID, problemType,
	)
	if err != nil {
		return models.Progress{}, fmt.Errorf("upsert progress: %w", err)
	}

	p, err := scanProgress(q.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM progress
		 WHERE player_id = ? AND problem_type = ?`+q.Dialect().ForUpdate(),
		playerID, problemType,
	))
	if err != nil {
		return models.Progress{}, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProgress(ctx context.Context, q database.Querier, p models.Progress) error {
	_, err := q.ExecContext(ctx,
		`UPDATE progress SET
		    correct = ?, total = ?, streak = ?, best_streak = ?, xp = ?, difficulty = ?,
		    updated_at = ?
		 WHERE player_id = ? AND problem_type = ?`,
		p.Correct, p.Total, p.Streak, p.BestStreak, p.XP, p.Difficulty,
		time.Now().UTC(), p.PlayerID, p.ProblemType,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// AddProgressXP credits bonus XP to a type's row, creating it with only XP
// when the player never answered that type.
func (s *Store) AddProgressXP(ctx context.Context, q database.Querier, playerID int64, problemType string, xp int) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO progress (player_id, problem_type, xp) VALUES (?, ?, ?)
		 ON CONFLICT (player_id, problem_type) DO UPDATE SET
		    xp = progress.xp + excluded.xp,
		    updated_at = CURRENT_TIMESTAMP`,
		playerID, problemType, xp,
	)
	if err != nil {
		return fmt.Errorf("add progress xp: %w", err)
	}
	return nil
}

func (s *Store) ListProgress(ctx context.Context, q database.Querier, playerID int64) ([]models.Progress, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM progress WHERE player_id = ? ORDER BY problem_type`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []models.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, p)
	}
	if out == nil {
		out = []models.Progress{}
	}
	return out, rows.Err()
}

// ── History & Counters ──────────────────────────────────

func (s *Store) InsertHistory(ctx context.Context, q database.Querier, sub models.Submission) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO history (player_id, problem, answer, user_answer, correct, time_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sub.PlayerID, sub.Problem, sub.CorrectAnswer, sub.UserAnswer, sub.IsCorrect, sub.TimeMs,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *Store) IncrementFastAnswers(ctx context.Context, q database.Querier, playerID int64) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO fast_answers (player_id, count) VALUES (?, 1)
		 ON CONFLICT (player_id) DO UPDATE SET count = fast_answers.count + 1`,
		playerID,
	)
	if err != nil {
		return fmt.Errorf("increment fast answers: %w", err)
	}
	return nil
}

func (s *Store) FastAnswerCount(ctx context.Context, q database.Querier, playerID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT count FROM fast_answers WHERE player_id = ?`, playerID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get fast answers: %w", err)
	}
	return n, nil
}

func (s *Store) CompletedDailyCount(ctx context.Context, q database.Querier, playerID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_challenges WHERE player_id = ? AND completed = TRUE`,
		playerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count daily challenges: %w", err)
	}
	return n, nil
}

// Stats builds the player snapshot from stored aggregates.
func (s *Store) Stats(ctx context.Context, q database.Querier, playerID int64) (models.PlayerStats, error) {
	progress, err := s.ListProgress(ctx, q, playerID)
	if err != nil {
		return models.PlayerStats{}, err
	}
	daily, err := s.CompletedDailyCount(ctx, q, playerID)
	if err != nil {
		return models.PlayerStats{}, err
	}
	fast, err := s.FastAnswerCount(ctx, q, playerID)
	if err != nil {
		return models.PlayerStats{}, err
	}
	return BuildStats(progress, daily, fast), nil
}

// ── Achievements & Avatars ──────────────────────────────

// AwardAchievement reports true only for the call that actually recorded it.
func (s *Store) AwardAchievement(ctx context.Context, q database.Querier, playerID int64, key string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO achievements (player_id, achievement) VALUES (?, ?)
		 ON CONFLICT (player_id, achievement) DO NOTHING`,
		playerID, key,
	)
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	return n == 1, nil
}

func (s *Store) ListAchievements(ctx context.Context, q database.Querier, playerID int64) ([]models.EarnedAchievement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT achievement, unlocked_at FROM achievements WHERE player_id = ? ORDER BY unlocked_at, id`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	out := []models.EarnedAchievement{}
	for rows.Next() {
		var a models.EarnedAchievement
		if err := rows.Scan(&a.Achievement, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UnlockAvatar(ctx context.Context, q database.Querier, playerID int64, avatarID string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO unlocked_avatars (player_id, avatar_id) VALUES (?, ?)
		 ON CONFLICT (player_id, avatar_id) DO NOTHING`,
		playerID, avatarID,
	)
	if err != nil {
		return false, fmt.Errorf("unlock avatar: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock avatar: %w", err)
	}
	return n == 1, nil
}

func (s *Store) UnlockedAvatars(ctx context.Context, q database.Querier, playerID int64) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT avatar_id FROM unlocked_avatars WHERE player_id = ?`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked avatars: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unlocked avatar: %w", err)
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}

func (s *Store) SetPlayerAvatar(ctx context.Context, playerID int64, emoji string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE players SET avatar = ? WHERE id = ?`, emoji, playerID)
	if err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ── Leaderboard ─────────────────────────────────────────

func (s *Store) GetGlobalLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.username, p.avatar,
		        COALESCE(SUM(pr.xp), 0), COALESCE(SUM(pr.correct), 0),
		        COALESCE(SUM(pr.total), 0), COALESCE(MAX(pr.best_streak), 0)
		 FROM players p
		 JOIN progress pr ON pr.player_id = p.id
		 GROUP BY p.id, p.username, p.avatar
		 HAVING COALESCE(SUM(pr.xp), 0) > 0
		 ORDER BY COALESCE(SUM(pr.xp), 0) DESC, p.id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get global leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Avatar, &e.TotalXP, &e.TotalCorrect,
			&e.TotalProblems, &e.BestStreak); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		e.Accuracy = Accuracy(e.TotalCorrect, e.TotalProblems)
		e.Level = Level(e.TotalXP)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
