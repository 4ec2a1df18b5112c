package gamification

import (
	"slices"
	"testing"

	"github.com/math-adventure/backend/internal/models"
)

func TestCheckAchievements(t *testing.T) {
	tests := []struct {
		name  string
		stats models.AchievementStats
		want  []string
	}{
		{"nothing yet", models.AchievementStats{}, nil},
		{"first answer, slow", models.AchievementStats{TotalCorrect: 1, NewStreak: 1, Level: 1, IsCorrect: true, TimeMs: 3000}, []string{"first_correct"}},
		{"first answer, quick", models.AchievementStats{TotalCorrect: 1, NewStreak: 1, Level: 1, IsCorrect: true, TimeMs: 2999}, []string{"first_correct", "speed_demon"}},
		{"quick but wrong", models.AchievementStats{IsCorrect: false, TimeMs: 10}, nil},
		{"streak of five", models.AchievementStats{TotalCorrect: 12, NewStreak: 5, Level: 2, IsCorrect: true, TimeMs: 5000}, []string{"first_correct", "ten_correct", "streak_5"}},
		{"veteran", models.AchievementStats{TotalCorrect: 100, NewStreak: 10, Level: 10, IsCorrect: true, TimeMs: 4000},
			[]string{"first_correct", "ten_correct", "fifty_correct", "hundred_correct", "streak_5", "streak_10", "level_5", "level_10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckAchievements(tt.stats)
			if !slices.Equal(got, tt.want) {
				t.Errorf("CheckAchievements = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAchievementCatalog(t *testing.T) {
	if len(Achievements) != 9 {
		t.Fatalf("len(Achievements) = %d, want 9", len(Achievements))
	}
	for _, a := range Achievements {
		got, ok := AchievementByID(a.ID)
		if !ok || got.Name != a.Name {
			t.Errorf("AchievementByID(%q) = %+v, %v", a.ID, got, ok)
		}
		if a.Unlock().Desc == "" {
			t.Errorf("achievement %q has no description", a.ID)
		}
	}
	if _, ok := AchievementByID("missing"); ok {
		t.Error("AchievementByID found an unknown key")
	}
}
