package gamification

import (
	"math"

	"github.com/math-adventure/backend/internal/models"
)

const (
	BaseXP                 = 10
	StreakBonusThreshold   = 3
	StreakBonusMultiplier  = 5
	LevelXPRequirement     = 100
	FastAnswerThresholdMs  = 2000
	SpeedDemonThresholdMs  = 3000
	DailyBonusXPMultiplier = 25
	DailyCompletionBonus   = 100
)

// XPGained returns XP for one answer. Every full StreakBonusThreshold of the
// new streak adds StreakBonusMultiplier before scaling by difficulty.
func XPGained(isCorrect bool, newStreak, difficulty int) int {
	if !isCorrect {
		return 0
	}
	streakBonus := (newStreak / StreakBonusThreshold) * StreakBonusMultiplier
	return (BaseXP + streakBonus) * difficulty
}

// Level is derived from total XP and never stored.
func Level(totalXP int64) int {
	if totalXP < 0 {
		return 1
	}
	return int(totalXP/LevelXPRequirement) + 1
}

// Accuracy is a rounded percentage, 0 when nothing was answered.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func IsFastAnswer(isCorrect bool, timeMs int64) bool {
	return isCorrect && timeMs < FastAnswerThresholdMs
}

func DailyBonusXP(difficulty int) int {
	return DailyBonusXPMultiplier * difficulty
}

// ApplySubmission folds one answer into a progress row. A zero-valued prev
// stands for a player with no row yet.
func ApplySubmission(prev models.Progress, isCorrect bool, difficulty int) (models.Progress, models.ProgressResult) {
	next := prev
	next.Total++

	if isCorrect {
		next.Correct++
		next.Streak = prev.Streak + 1
	} else {
		next.Streak = 0
	}
	next.BestStreak = max(prev.BestStreak, next.Streak)

	xp := XPGained(isCorrect, next.Streak, difficulty)
	next.XP += int64(xp)
	next.Difficulty = difficulty

	return next, models.ProgressResult{
		NewStreak:  next.Streak,
		BestStreak: next.BestStreak,
		XPGained:   xp,
	}
}

// BuildStats aggregates per-type rows into the snapshot avatar requirements
// are checked against.
func BuildStats(progress []models.Progress, dailyCompleted, fastAnswers int) models.PlayerStats {
	var stats models.PlayerStats
	for _, p := range progress {
		stats.TotalXP += p.XP
		stats.TotalCorrect += p.Correct
		stats.TotalProblems += p.Total
		stats.BestStreak = max(stats.BestStreak, p.BestStreak)
	}
	stats.Level = Level(stats.TotalXP)
	stats.Accuracy = Accuracy(stats.TotalCorrect, stats.TotalProblems)
	stats.DailyChallengesCompleted = dailyCompleted
	stats.FastAnswers = fastAnswers
	return stats
}
