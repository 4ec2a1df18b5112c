package gamification

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/cache"
	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/models"
)

const (
	DefaultLeaderboardLimit = 5
	MaxLeaderboardLimit     = 100

	leaderboardKey         = "leaderboard:top"
	leaderboardLoadTimeout = 5 * time.Second
)

type Service struct {
	store    *Store
	cache    cache.Cache
	cacheTTL time.Duration
	group    singleflight.Group

	// leaderboardGen is bumped on every invalidation. A load only fills the
	// cache if no invalidation happened since it started.
	leaderboardGen atomic.Uint64
}

func NewService(store *Store, c cache.Cache, cacheTTL time.Duration) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{store: store, cache: c, cacheTTL: cacheTTL}
}

func (s *Service) Store() *Store {
	return s.store
}

// ── Submissions ─────────────────────────────────────────

// RecordSubmission applies one verified answer. History, progress, the fast
// answer counter and any unlocks commit together or not at all.
func (s *Service) RecordSubmission(ctx context.Context, sub models.Submission) (*models.SubmitResponse, error) {
	resp := &models.SubmitResponse{
		Correct:         sub.IsCorrect,
		CorrectAnswer:   sub.CorrectAnswer,
		NewAchievements: []models.AchievementUnlock{},
		NewAvatars:      []models.AvatarUnlock{},
	}

	err := s.store.DB().InTx(ctx, func(tx *database.Tx) error {
		if err := s.store.InsertHistory(ctx, tx, sub); err != nil {
			return err
		}

		prev, err := s.store.LockProgress(ctx, tx, sub.PlayerID, sub.ProblemType)
		if err != nil {
			return err
		}
		next, result := ApplySubmission(prev, sub.IsCorrect, sub.Difficulty)
		if err := s.store.SaveProgress(ctx, tx, next); err != nil {
			return err
		}
		resp.NewStreak = result.NewStreak
		resp.BestStreak = result.BestStreak
		resp.XPGained = result.XPGained

		if IsFastAnswer(sub.IsCorrect, sub.TimeMs) {
			if err := s.store.IncrementFastAnswers(ctx, tx, sub.PlayerID); err != nil {
				return err
			}
		}

		stats, err := s.store.Stats(ctx, tx, sub.PlayerID)
		if err != nil {
			return err
		}
		resp.TotalXP = stats.TotalXP
		resp.Level = stats.Level

		achievements, err := s.awardAchievements(ctx, tx, sub.PlayerID, models.AchievementStats{
			TotalCorrect: stats.TotalCorrect,
			TotalXP:      stats.TotalXP,
			NewStreak:    result.NewStreak,
			Level:        stats.Level,
			IsCorrect:    sub.IsCorrect,
			TimeMs:       sub.TimeMs,
		})
		if err != nil {
			return err
		}
		resp.NewAchievements = achievements

		avatars, err := s.unlockAvatars(ctx, tx, sub.PlayerID, stats)
		if err != nil {
			return err
		}
		resp.NewAvatars = avatars
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to record answer")
	}

	if resp.XPGained > 0 {
		s.InvalidateLeaderboard(ctx)
	}

	log.WithFields(log.Fields{
		"player_id": sub.PlayerID,
		"type":      sub.ProblemType,
		"correct":   sub.IsCorrect,
		"xp":        resp.XPGained,
	}).Debug("answer recorded")

	return resp, nil
}

func (s *Service) awardAchievements(ctx context.Context, q database.Querier, playerID int64, stats models.AchievementStats) ([]models.AchievementUnlock, error) {
	unlocks := []models.AchievementUnlock{}
	for _, key := range CheckAchievements(stats) {
		inserted, err := s.store.AwardAchievement(ctx, q, playerID, key)
		if err != nil {
			return nil, err
		}
		if !inserted {
			continue
		}
		def, _ := AchievementByID(key)
		unlocks = append(unlocks, def.Unlock())
		log.WithFields(log.Fields{"player_id": playerID, "achievement": key}).Info("achievement unlocked")
	}
	return unlocks, nil
}

// EvaluateAvatars recomputes the player snapshot on q and unlocks every
// avatar it newly satisfies. Callers pass their open transaction so the
// snapshot includes their own writes.
func (s *Service) EvaluateAvatars(ctx context.Context, q database.Querier, playerID int64) ([]models.AvatarUnlock, error) {
	stats, err := s.store.Stats(ctx, q, playerID)
	if err != nil {
		return nil, err
	}
	return s.unlockAvatars(ctx, q, playerID, stats)
}

func (s *Service) unlockAvatars(ctx context.Context, q database.Querier, playerID int64, stats models.PlayerStats) ([]models.AvatarUnlock, error) {
	unlocked, err := s.store.UnlockedAvatars(ctx, q, playerID)
	if err != nil {
		return nil, err
	}

	unlocks := []models.AvatarUnlock{}
	for _, a := range CheckAvatars(stats, unlocked) {
		inserted, err := s.store.UnlockAvatar(ctx, q, playerID, a.ID)
		if err != nil {
			return nil, err
		}
		if inserted {
			unlocks = append(unlocks, a.Unlock())
			log.WithFields(log.Fields{"player_id": playerID, "avatar": a.ID}).Info("avatar unlocked")
		}
	}
	return unlocks, nil
}

// ── Stats ───────────────────────────────────────────────

func (s *Service) PlayerStats(ctx context.Context, playerID int64) (models.PlayerStats, error) {
	stats, err := s.store.Stats(ctx, s.store.DB(), playerID)
	if err != nil {
		return models.PlayerStats{}, apperr.Wrap(apperr.Persistence, err, "Failed to load stats")
	}
	return stats, nil
}

// ── Avatars ─────────────────────────────────────────────

func (s *Service) ListAvatars(ctx context.Context, playerID int64) ([]models.AvatarView, error) {
	db := s.store.DB()
	stats, err := s.store.Stats(ctx, db, playerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load avatars")
	}
	unlocked, err := s.store.UnlockedAvatars(ctx, db, playerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load avatars")
	}
	return AvatarViews(stats, unlocked), nil
}

// SelectAvatar sets the player's displayed avatar and returns its emoji.
func (s *Service) SelectAvatar(ctx context.Context, playerID int64, avatarID string) (string, error) {
	avatar, ok := AvatarByID(avatarID)
	if !ok {
		return "", apperr.New(apperr.InvalidArgument, "Invalid avatar")
	}

	if !avatar.Starter() {
		unlocked, err := s.store.UnlockedAvatars(ctx, s.store.DB(), playerID)
		if err != nil {
			return "", apperr.Wrap(apperr.Persistence, err, "Failed to select avatar")
		}
		if !unlocked[avatar.ID] {
			return "", apperr.New(apperr.Conflict, "Avatar not unlocked")
		}
	}

	if err := s.store.SetPlayerAvatar(ctx, playerID, avatar.Emoji); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.New(apperr.NotFound, "Player not found")
		}
		return "", apperr.Wrap(apperr.Persistence, err, "Failed to select avatar")
	}

	s.InvalidateLeaderboard(ctx)
	return avatar.Emoji, nil
}

// ── Leaderboard ─────────────────────────────────────────

// Leaderboard serves the top players by total XP. The top
// MaxLeaderboardLimit rows are cached as one list and sliced per request;
// concurrent misses share a single query.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	gen := s.leaderboardGen.Load()
	var top []models.LeaderboardEntry
	hit, err := s.cache.Get(ctx, leaderboardKey, &top)
	if err != nil {
		log.WithError(err).Warn("leaderboard cache read failed")
	}

	if !hit {
		v, err, _ := s.group.Do(leaderboardKey, func() (any, error) {
			// Shared by every waiter, so one caller going away must not
			// cancel it.
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaderboardLoadTimeout)
			defer cancel()
			return s.loadLeaderboard(loadCtx, gen)
		})
		if err != nil {
			return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load leaderboard")
		}
		top = v.([]models.LeaderboardEntry)
	}

	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *Service) loadLeaderboard(ctx context.Context, gen uint64) ([]models.LeaderboardEntry, error) {
	entries, err := s.store.GetGlobalLeaderboard(ctx, MaxLeaderboardLimit)
	if err != nil {
		return nil, err
	}
	if s.leaderboardGen.Load() != gen {
		return entries, nil
	}
	if err := s.cache.Set(ctx, leaderboardKey, entries, s.cacheTTL); err != nil {
		log.WithError(err).Warn("leaderboard cache write failed")
	}
	return entries, nil
}

// InvalidateLeaderboard drops the cached list. Loads already in flight
// still answer their callers but no longer write to the cache, and later
// callers start a fresh load.
func (s *Service) InvalidateLeaderboard(ctx context.Context) {
	s.leaderboardGen.Add(1)
	s.group.Forget(leaderboardKey)
	if err := s.cache.Delete(ctx, leaderboardKey); err != nil {
		log.WithError(err).Warn("leaderboard cache invalidation failed")
	}
}
