package gamification

import (
	"testing"

	"github.com/math-adventure/backend/internal/models"
)

func TestXPGained(t *testing.T) {
	tests := []struct {
		correct    bool
		streak     int
		difficulty int
		want       int
	}{
		{false, 0, 5, 0},
		{true, 1, 1, 10},
		{true, 2, 1, 10},
		{true, 3, 1, 15},
		{true, 3, 2, 30},
		{true, 5, 3, 45},
		{true, 6, 3, 60},
		{true, 10, 5, 125},
	}
	for _, tt := range tests {
		got := XPGained(tt.correct, tt.streak, tt.difficulty)
		if got != tt.want {
			t.Errorf("XPGained(%v, %d, %d) = %d, want %d", tt.correct, tt.streak, tt.difficulty, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{999, 10},
		{5000, 51},
	}
	for _, tt := range tests {
		if got := Level(tt.xp); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{58, 60, 97},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := Accuracy(tt.correct, tt.total); got != tt.want {
			t.Errorf("Accuracy(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestApplySubmissionFreshRecord(t *testing.T) {
	next, res := ApplySubmission(models.Progress{}, true, 1)
	if next.Correct != 1 || next.Total != 1 || next.XP != 10 {
		t.Errorf("progress = {correct:%d total:%d xp:%d}, want {1 1 10}", next.Correct, next.Total, next.XP)
	}
	if res.NewStreak != 1 || res.BestStreak != 1 || res.XPGained != 10 {
		t.Errorf("result = %+v, want streak 1, best 1, xp 10", res)
	}
}

func TestApplySubmissionSequence(t *testing.T) {
	answers := []bool{true, true, true, false, true}
	wantStreak := []int{1, 2, 3, 0, 1}
	wantXP := []int{20, 20, 30, 0, 20}

	var p models.Progress
	for i, correct := range answers {
		prev := p
		var res models.ProgressResult
		p, res = ApplySubmission(p, correct, 2)

		if res.NewStreak != wantStreak[i] || res.XPGained != wantXP[i] {
			t.Errorf("answer %d: streak %d xp %d, want %d %d", i, res.NewStreak, res.XPGained, wantStreak[i], wantXP[i])
		}
		if p.Total != prev.Total+1 || p.XP < prev.XP || p.BestStreak < prev.BestStreak {
			t.Errorf("answer %d: counters went backwards: %+v -> %+v", i, prev, p)
		}
		if p.Correct > p.Total || p.Streak > p.BestStreak {
			t.Errorf("answer %d: invariant broken: %+v", i, p)
		}
	}
	if p.BestStreak != 3 || p.XP != 90 || p.Correct != 4 {
		t.Errorf("final = %+v, want best 3, xp 90, correct 4", p)
	}
}

func TestBuildStats(t *testing.T) {
	stats := BuildStats([]models.Progress{
		{ProblemType: "addition", Correct: 40, Total: 50, BestStreak: 7, XP: 450},
		{ProblemType: "division", Correct: 9, Total: 10, BestStreak: 9, XP: 90},
	}, 2, 11)

	want := models.PlayerStats{
		Level:                    6,
		TotalXP:                  540,
		TotalCorrect:             49,
		TotalProblems:            60,
		Accuracy:                 82,
		BestStreak:               9,
		DailyChallengesCompleted: 2,
		FastAnswers:              11,
	}
	if stats != want {
		t.Errorf("BuildStats = %+v, want %+v", stats, want)
	}

	if empty := BuildStats(nil, 0, 0); empty.Level != 1 || empty.Accuracy != 0 {
		t.Errorf("BuildStats(nil) = %+v, want level 1 and accuracy 0", empty)
	}
}

func TestIsFastAnswer(t *testing.T) {
	if !IsFastAnswer(true, 1999) {
		t.Error("1999ms correct answer should be fast")
	}
	if IsFastAnswer(true, 2000) {
		t.Error("2000ms answer should not be fast")
	}
	if IsFastAnswer(false, 100) {
		t.Error("wrong answer should never be fast")
	}
}
