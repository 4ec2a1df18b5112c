package gamification

import "github.com/math-adventure/backend/internal/models"

// AchievementDef defines a single achievement.
type AchievementDef struct {
	ID          string
	Name        string
	Description string
	earned      func(s models.AchievementStats) bool
}

func (a AchievementDef) Unlock() models.AchievementUnlock {
	return models.AchievementUnlock{ID: a.ID, Name: a.Name, Desc: a.Description}
}

// Achievements is evaluated in this order. Predicates are independent, so
// the order only affects how new unlocks are listed.
var Achievements = []AchievementDef{
	{"first_correct", "🌟 First Star", "Got your first correct answer!",
		func(s models.AchievementStats) bool { return s.TotalCorrect >= 1 }},
	{"ten_correct", "⭐ Rising Star", "Got 10 correct answers!",
		func(s models.AchievementStats) bool { return s.TotalCorrect >= 10 }},
	{"fifty_correct", "🌟 Super Star", "Got 50 correct answers!",
		func(s models.AchievementStats) bool { return s.TotalCorrect >= 50 }},
	{"hundred_correct", "💫 Math Wizard", "Got 100 correct answers!",
		func(s models.AchievementStats) bool { return s.TotalCorrect >= 100 }},
	{"streak_5", "🔥 On Fire", "5 correct in a row!",
		func(s models.AchievementStats) bool { return s.NewStreak >= 5 }},
	{"streak_10", "🔥🔥 Unstoppable", "10 correct in a row!",
		func(s models.AchievementStats) bool { return s.NewStreak >= 10 }},
	{"level_5", "🏆 Level 5", "Reached level 5!",
		func(s models.AchievementStats) bool { return s.Level >= 5 }},
	{"level_10", "👑 Level 10", "Reached level 10!",
		func(s models.AchievementStats) bool { return s.Level >= 10 }},
	{"speed_demon", "⚡ Speed Demon", "Answered correctly in under 3 seconds!",
		func(s models.AchievementStats) bool { return s.IsCorrect && s.TimeMs < SpeedDemonThresholdMs }},
}

var achievementsByID = func() map[string]AchievementDef {
	m := make(map[string]AchievementDef, len(Achievements))
	for _, a := range Achievements {
		m[a.ID] = a
	}
	return m
}()

func AchievementByID(id string) (AchievementDef, bool) {
	a, ok := achievementsByID[id]
	return a, ok
}

// CheckAchievements returns achievement keys the player currently qualifies
// for. The caller is responsible for only awarding ones not yet earned.
func CheckAchievements(stats models.AchievementStats) []string {
	var earned []string
	for _, a := range Achievements {
		if a.earned(stats) {
			earned = append(earned, a.ID)
		}
	}
	return earned
}
