// Package problems serves practice problems and grades submitted answers.
package problems

import (
	"context"
	"fmt"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/gamification"
	"github.com/math-adventure/backend/internal/generator"
	"github.com/math-adventure/backend/internal/models"
)

type Service struct {
	progression *gamification.Service
	src         generator.Source
}

func NewService(progression *gamification.Service, src generator.Source) *Service {
	if src == nil {
		src = generator.NewRandomSource(nil)
	}
	return &Service{progression: progression, src: src}
}

func (s *Service) Next(kindName string, difficulty int) (generator.Problem, error) {
	kind, err := generator.ParseKind(kindName)
	if err != nil {
		return generator.Problem{}, err
	}
	return generator.Generate(kind, difficulty, s.src)
}

// Submit grades an answer against the statement itself; the client never
// supplies the expected result.
func (s *Service) Submit(ctx context.Context, playerID int64, req models.SubmitRequest) (*models.SubmitResponse, error) {
	canonical, kind, err := generator.Evaluate(req.Problem)
	if err != nil {
		return nil, err
	}

	if req.Type != "" {
		claimed, err := generator.ParseKind(req.Type)
		if err != nil {
			return nil, err
		}
		if claimed.Concrete() && claimed != kind {
			return nil, apperr.New(apperr.InvalidArgument,
				fmt.Sprintf("Problem %q is not %s", req.Problem, claimed))
		}
	}
	if req.Difficulty < generator.MinDifficulty || req.Difficulty > generator.MaxDifficulty {
		return nil, apperr.New(apperr.InvalidArgument,
			fmt.Sprintf("Difficulty must be between %d and %d", generator.MinDifficulty, generator.MaxDifficulty))
	}
	if req.TimeMs < 0 {
		return nil, apperr.New(apperr.InvalidArgument, "timeMs must not be negative")
	}

	answer := req.UserAnswer.String()
	return s.progression.RecordSubmission(ctx, models.Submission{
		PlayerID:      playerID,
		ProblemType:   kind.String(),
		Problem:       req.Problem,
		CorrectAnswer: canonical,
		UserAnswer:    answer,
		IsCorrect:     generator.CheckAnswer(canonical, answer),
		Difficulty:    req.Difficulty,
		TimeMs:        req.TimeMs,
	})
}
