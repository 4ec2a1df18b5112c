package models

import "time"

// ── Progress ─────────────────────────────────────────────

// Progress is one player's aggregate for a single problem type.
// Invariants: Correct <= Total, Streak <= BestStreak, Difficulty in 1..5.
type Progress struct {
	PlayerID    int64     `json:"playerId"`
	ProblemType string    `json:"problemType"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	Streak      int       `json:"streak"`
	BestStreak  int       `json:"bestStreak"`
	XP          int64     `json:"xp"`
	Difficulty  int       `json:"difficulty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProgressResult struct {
	NewStreak  int `json:"newStreak"`
	BestStreak int `json:"bestStreak"`
	XPGained   int `json:"xpGained"`
}

// Submission is an already verified answer ready to be recorded.
type Submission struct {
	PlayerID      int64
	ProblemType   string
	Problem       string
	CorrectAnswer string
	UserAnswer    string
	IsCorrect     bool
	Difficulty    int
	TimeMs        int64
}

// ── Snapshots ────────────────────────────────────────────

// PlayerStats is the read-only aggregate avatar requirements are checked
// against.
type PlayerStats struct {
	Level                    int   `json:"level"`
	TotalXP                  int64 `json:"totalXP"`
	TotalCorrect             int   `json:"totalCorrect"`
	TotalProblems            int   `json:"totalProblems"`
	Accuracy                 int   `json:"accuracy"`
	BestStreak               int   `json:"bestStreak"`
	DailyChallengesCompleted int   `json:"dailyChallengesCompleted"`
	FastAnswers              int   `json:"fastAnswers"`
}

// AchievementStats describes the submission that was just processed.
type AchievementStats struct {
	TotalCorrect int
	TotalXP      int64
	NewStreak    int
	Level        int
	IsCorrect    bool
	TimeMs       int64
}

// ── Unlocks ──────────────────────────────────────────────

type AchievementUnlock struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

type EarnedAchievement struct {
	Achievement string    `json:"achievement"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

type AvatarUnlock struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
	Name  string `json:"name"`
	Desc  string `json:"desc,omitempty"`
}

type AvatarRequirement struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

type AvatarProgress struct {
	Current  int64 `json:"current"`
	Required int64 `json:"required"`
}

type AvatarView struct {
	ID          string             `json:"id"`
	Emoji       string             `json:"emoji"`
	Name        string             `json:"name"`
	Desc        string             `json:"desc,omitempty"`
	Requirement *AvatarRequirement `json:"requirement"`
	Unlocked    bool               `json:"unlocked"`
	Progress    *AvatarProgress    `json:"progress"`
}

type SelectAvatarRequest struct {
	AvatarID string `json:"avatarId"`
}

type SelectAvatarResponse struct {
	Success bool   `json:"success"`
	Avatar  string `json:"avatar"`
}

// ── Leaderboard ──────────────────────────────────────────

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Avatar        string `json:"avatar"`
	TotalXP       int64  `json:"totalXP"`
	TotalCorrect  int    `json:"totalCorrect"`
	TotalProblems int    `json:"totalProblems"`
	Accuracy      int    `json:"accuracy"`
	Level         int    `json:"level"`
	BestStreak    int    `json:"bestStreak"`
}
