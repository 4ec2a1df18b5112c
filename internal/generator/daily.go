package generator

import (
	"fmt"
	"time"

	"github.com/math-adventure/backend/internal/apperr"
)

// DailyTotalProblems is the fixed length of a daily challenge.
const DailyTotalProblems = 5

const DateLayout = "2006-01-02"

var dailyKinds = [...]Kind{Addition, Subtraction, Multiplication}

type DailyProblem struct {
	Index int `json:"index"`
	Problem
}

// Sequence derives the day's problems from the date alone; only the
// completed count is ever stored, so any index can be regenerated later.
func Sequence(date string) ([]DailyProblem, error) {
	seed, err := dailySeed(date)
	if err != nil {
		return nil, err
	}
	problems := make([]DailyProblem, 0, DailyTotalProblems)
	for i := 0; i < DailyTotalProblems; i++ {
		p, err := dailyProblem(seed, i)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

func ProblemAt(date string, index int) (DailyProblem, error) {
	seed, err := dailySeed(date)
	if err != nil {
		return DailyProblem{}, err
	}
	if index < 0 || index >= DailyTotalProblems {
		return DailyProblem{}, apperr.New(apperr.InvalidArgument, "Invalid problem index")
	}
	return dailyProblem(seed, index)
}

func dailySeed(date string) (int64, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return 0, apperr.New(apperr.InvalidArgument, fmt.Sprintf("Invalid date %q, want YYYY-MM-DD", date))
	}
	return SeedFromDate(date), nil
}

func dailyProblem(seed int64, i int) (DailyProblem, error) {
	problemSeed := seed + int64(i)
	kind := dailyKinds[problemSeed%int64(len(dailyKinds))]
	difficulty := min(MaxDifficulty, i+2)

	p, err := generate(kind, difficulty, SeededSource{Seed: problemSeed, Index: int64(i)}, dailyFactorOffset)
	if err != nil {
		return DailyProblem{}, err
	}
	return DailyProblem{Index: i, Problem: p}, nil
}
