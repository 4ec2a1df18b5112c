package models

import "time"

// ── History ──────────────────────────────────────────────

type HistoryEntry struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"playerId"`
	Problem    string    `json:"problem"`
	Answer     string    `json:"answer"`
	UserAnswer string    `json:"userAnswer"`
	Correct    bool      `json:"correct"`
	TimeMs     int64     `json:"timeMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ── Problem Requests ─────────────────────────────────────

type SubmitRequest struct {
	Problem    string     `json:"problem"`
	UserAnswer FlexString `json:"userAnswer"`
	Type       string     `json:"type"`
	Difficulty int        `json:"difficulty"`
	TimeMs     int64      `json:"timeMs"`
}

type SubmitResponse struct {
	Correct         bool                `json:"correct"`
	CorrectAnswer   string              `json:"correctAnswer"`
	NewStreak       int                 `json:"newStreak"`
	BestStreak      int                 `json:"bestStreak"`
	XPGained        int                 `json:"xpGained"`
	NewAchievements []AchievementUnlock `json:"newAchievements"`
	NewAvatars      []AvatarUnlock      `json:"newAvatars"`
	TotalXP         int64               `json:"totalXP"`
	Level           int                 `json:"level"`
}

// ── Player Stats ─────────────────────────────────────────

type StatsSummary struct {
	TotalXP       int64 `json:"totalXP"`
	TotalCorrect  int   `json:"totalCorrect"`
	TotalProblems int   `json:"totalProblems"`
	Accuracy      int   `json:"accuracy"`
	Level         int   `json:"level"`
}

type PlayerStatsResponse struct {
	Player        PublicPlayer        `json:"player"`
	Progress      []Progress          `json:"progress"`
	Achievements  []EarnedAchievement `json:"achievements"`
	RecentHistory []HistoryEntry      `json:"recentHistory"`
	Summary       StatsSummary        `json:"summary"`
}
