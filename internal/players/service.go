package players

import (
	"context"
	"database/sql"
	"errors"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/gamification"
	"github.com/math-adventure/backend/internal/models"
)

type Service struct {
	store    *Store
	progress *gamification.Store
}

func NewService(store *Store, progress *gamification.Store) *Service {
	return &Service{store: store, progress: progress}
}

func (s *Service) List(ctx context.Context) ([]models.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to list players")
	}
	return players, nil
}

func (s *Service) Stats(ctx context.Context, playerID int64) (*models.PlayerStatsResponse, error) {
	player, err := s.store.PlayerByID(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "Player not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load player")
	}

	db := s.progress.DB()
	progress, err := s.progress.ListProgress(ctx, db, playerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load progress")
	}
	achievements, err := s.progress.ListAchievements(ctx, db, playerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load achievements")
	}
	history, err := s.store.RecentHistory(ctx, playerID, RecentHistoryLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load history")
	}

	stats := gamification.BuildStats(progress, 0, 0)
	return &models.PlayerStatsResponse{
		Player:        player.Public(),
		Progress:      progress,
		Achievements:  achievements,
		RecentHistory: history,
		Summary: models.StatsSummary{
			TotalXP:       stats.TotalXP,
			TotalCorrect:  stats.TotalCorrect,
			TotalProblems: stats.TotalProblems,
			Accuracy:      stats.Accuracy,
			Level:         stats.Level,
		},
	}, nil
}
