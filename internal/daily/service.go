// Package daily runs the once-per-day challenge: five date-seeded problems
// worth bonus XP, with a completion bonus for finishing all of them.
package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/database"
	"github.com/math-adventure/backend/internal/gamification"
	"github.com/math-adventure/backend/internal/generator"
	"github.com/math-adventure/backend/internal/models"
)

const (
	wrongAnswerMessage = "Try again tomorrow!"
	completeMessage    = "🎉 Daily Challenge Complete! +100 bonus XP!"
)

// Challenge is today's state plus the problems still to solve.
type Challenge struct {
	Date              string                   `json:"date"`
	ProblemsCompleted int                      `json:"problemsCompleted"`
	TotalProblems     int                      `json:"totalProblems"`
	BonusXPEarned     int64                    `json:"bonusXpEarned"`
	Completed         bool                     `json:"completed"`
	Problems          []generator.DailyProblem `json:"problems"`
	CurrentProblem    *generator.DailyProblem  `json:"currentProblem"`
}

type Service struct {
	store       *Store
	progression *gamification.Service
	now         func() time.Time
}

func NewService(store *Store, progression *gamification.Service) *Service {
	return &Service{store: store, progression: progression, now: time.Now}
}

// Today is the current UTC calendar date. Every player rolls over at the
// same instant.
func (s *Service) Today() string {
	return s.now().UTC().Format(generator.DateLayout)
}

func (s *Service) Get(ctx context.Context, playerID int64) (*Challenge, error) {
	date := s.Today()

	c, err := s.store.GetOrCreate(ctx, playerID, date, generator.DailyTotalProblems)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load daily challenge")
	}
	problems, err := generator.Sequence(date)
	if err != nil {
		return nil, err
	}

	view := &Challenge{
		Date:              date,
		ProblemsCompleted: c.ProblemsCompleted,
		TotalProblems:     c.TotalProblems,
		BonusXPEarned:     c.BonusXPEarned,
		Completed:         c.Completed,
		Problems:          []generator.DailyProblem{},
	}
	if !c.Completed && c.ProblemsCompleted < len(problems) {
		view.Problems = problems[c.ProblemsCompleted:]
		view.CurrentProblem = &problems[c.ProblemsCompleted]
	}
	return view, nil
}

// Submit answers the current problem of today's challenge. A wrong answer
// changes nothing; a right one advances the challenge and credits bonus XP
// to the progress row of the problem's type.
func (s *Service) Submit(ctx context.Context, playerID int64, req models.DailySubmitRequest) (*models.DailySubmitResponse, error) {
	date := s.Today()
	var resp *models.DailySubmitResponse

	err := s.store.db.InTx(ctx, func(tx *database.Tx) error {
		c, err := s.store.Lock(ctx, tx, playerID, date)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "No active daily challenge")
		}
		if err != nil {
			return apperr.Wrap(apperr.Persistence, err, "Failed to load daily challenge")
		}
		if c.Completed {
			return apperr.New(apperr.Conflict, "Daily challenge already completed")
		}
		if req.ProblemIndex != nil && *req.ProblemIndex != c.ProblemsCompleted {
			return apperr.New(apperr.Conflict, "Problem already answered")
		}

		problem, err := generator.ProblemAt(date, c.ProblemsCompleted)
		if err != nil {
			return err
		}

		if !generator.CheckAnswer(problem.Answer, req.Answer.String()) {
			resp = &models.DailySubmitResponse{
				Correct:       false,
				CorrectAnswer: problem.Answer,
				Message:       wrongAnswerMessage,
			}
			return nil
		}

		bonus := gamification.DailyBonusXP(problem.Difficulty)
		c.ProblemsCompleted++
		c.Completed = c.ProblemsCompleted >= c.TotalProblems
		completion := 0
		if c.Completed {
			completion = gamification.DailyCompletionBonus
		}
		c.BonusXPEarned += int64(bonus + completion)

		if err := s.store.Save(ctx, tx, c); err != nil {
			return apperr.Wrap(apperr.Persistence, err, "Failed to save daily challenge")
		}
		if err := s.progression.Store().AddProgressXP(ctx, tx, playerID, problem.Kind.String(), bonus+completion); err != nil {
			return apperr.Wrap(apperr.Persistence, err, "Failed to save daily challenge")
		}
		avatars, err := s.progression.EvaluateAvatars(ctx, tx, playerID)
		if err != nil {
			return apperr.Wrap(apperr.Persistence, err, "Failed to save daily challenge")
		}

		message := fmt.Sprintf("✨ +%d XP!", bonus)
		if c.Completed {
			message = completeMessage
		}
		resp = &models.DailySubmitResponse{
			Correct:           true,
			BonusXP:           bonus,
			ProblemsCompleted: c.ProblemsCompleted,
			TotalProblems:     c.TotalProblems,
			Completed:         c.Completed,
			CompletionBonus:   completion,
			NewAvatars:        avatars,
			Message:           message,
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to save daily challenge")
	}

	if resp.Correct {
		s.progression.InvalidateLeaderboard(ctx)
		log.WithFields(log.Fields{
			"player_id": playerID,
			"date":      date,
			"completed": resp.Completed,
			"bonus_xp":  resp.BonusXP,
		}).Info("daily challenge answer accepted")
	}
	return resp, nil
}

func (s *Service) Stats(ctx context.Context, playerID int64) (*models.DailyStats, error) {
	completed, bonus, err := s.store.Totals(ctx, playerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load daily stats")
	}
	dates, err := s.store.CompletedDates(ctx, playerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, err, "Failed to load daily stats")
	}
	return &models.DailyStats{
		TotalCompleted: completed,
		TotalBonusXP:   bonus,
		CurrentStreak:  ConsecutiveDays(dates, s.Today()),
	}, nil
}

// ConsecutiveDays counts completed days in an unbroken run ending today.
// A streak whose last day was yesterday counts as 0.
func ConsecutiveDays(completed []string, today string) int {
	done := make(map[string]bool, len(completed))
	for _, d := range completed {
		done[d] = true
	}

	day, err := time.Parse(generator.DateLayout, today)
	if err != nil {
		return 0
	}
	streak := 0
	for done[day.Format(generator.DateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
