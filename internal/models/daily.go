package models

import "time"

// DailyChallenge is one player's state for one calendar day. Completed
// becomes true exactly when ProblemsCompleted reaches TotalProblems.
type DailyChallenge struct {
	PlayerID          int64
	Date              string
	ProblemsCompleted int
	TotalProblems     int
	BonusXPEarned     int64
	Completed         bool
	CreatedAt         time.Time
}

type DailySubmitRequest struct {
	Answer       FlexString `json:"answer"`
	ProblemIndex *int       `json:"problemIndex,omitempty"`
}

type DailySubmitResponse struct {
	Correct           bool           `json:"correct"`
	CorrectAnswer     string         `json:"correctAnswer,omitempty"`
	BonusXP           int            `json:"bonusXp,omitempty"`
	ProblemsCompleted int            `json:"problemsCompleted,omitempty"`
	TotalProblems     int            `json:"totalProblems,omitempty"`
	Completed         bool           `json:"completed"`
	CompletionBonus   int            `json:"completionBonus"`
	NewAvatars        []AvatarUnlock `json:"newAvatars,omitempty"`
	Message           string         `json:"message"`
}

type DailyStats struct {
	TotalCompleted int   `json:"totalCompleted"`
	TotalBonusXP   int64 `json:"totalBonusXp"`
	CurrentStreak  int   `json:"currentStreak"`
}
