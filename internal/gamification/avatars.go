package gamification

import "github.com/math-adventure/backend/internal/models"

// MinAccuracySample is the number of answers an accuracy requirement needs
// before the percentage counts.
const MinAccuracySample = 50

type RequirementKind int

const (
	RequireLevel RequirementKind = iota
	RequireCorrect
	RequireStreak
	RequireDaily
	RequireAccuracy
	RequireXP
	RequireSpeed
)

func (k RequirementKind) String() string {
	switch k {
	case RequireLevel:
		return "level"
	case RequireCorrect:
		return "correct"
	case RequireStreak:
		return "streak"
	case RequireDaily:
		return "daily"
	case RequireAccuracy:
		return "accuracy"
	case RequireXP:
		return "xp"
	case RequireSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

type Requirement struct {
	Kind  RequirementKind
	Value int64
}

// Avatar is a starter when Requirement is nil.
type Avatar struct {
	ID          string
	Emoji       string
	Name        string
	Desc        string
	Requirement *Requirement
}

func (a Avatar) Starter() bool {
	return a.Requirement == nil
}

func (a Avatar) Unlock() models.AvatarUnlock {
	return models.AvatarUnlock{ID: a.ID, Emoji: a.Emoji, Name: a.Name, Desc: a.Desc}
}

func req(kind RequirementKind, value int64) *Requirement {
	return &Requirement{Kind: kind, Value: value}
}

var Avatars = []Avatar{
	{"kid1", "🧒", "Kid", "", nil},
	{"girl1", "👧", "Girl", "", nil},
	{"boy1", "👦", "Boy", "", nil},

	{"superhero", "🦸", "Superhero", "Reach Level 3", req(RequireLevel, 3)},
	{"wizard", "🧙", "Wizard", "Reach Level 5", req(RequireLevel, 5)},
	{"ninja", "🥷", "Ninja", "Reach Level 10", req(RequireLevel, 10)},
	{"king", "🤴", "King", "Reach Level 15", req(RequireLevel, 15)},
	{"queen", "👸", "Queen", "Reach Level 15", req(RequireLevel, 15)},

	{"star", "⭐", "Star", "Get 50 correct answers", req(RequireCorrect, 50)},
	{"rocket", "🚀", "Rocket", "Get 100 correct answers", req(RequireCorrect, 100)},
	{"trophy", "🏆", "Champion", "Get 250 correct answers", req(RequireCorrect, 250)},
	{"diamond", "💎", "Diamond", "Get 500 correct answers", req(RequireCorrect, 500)},

	{"fire", "🔥", "Fire", "Get a 10 streak", req(RequireStreak, 10)},
	{"lightning", "⚡", "Lightning", "Get a 20 streak", req(RequireStreak, 20)},
	{"comet", "☄️", "Comet", "Get a 30 streak", req(RequireStreak, 30)},

	{"cat", "🐱", "Cat", "Complete 3 daily challenges", req(RequireDaily, 3)},
	{"dog", "🐶", "Dog", "Complete 5 daily challenges", req(RequireDaily, 5)},
	{"fox", "🦊", "Fox", "Complete 10 daily challenges", req(RequireDaily, 10)},
	{"unicorn", "🦄", "Unicorn", "Complete 20 daily challenges", req(RequireDaily, 20)},
	{"dragon", "🐉", "Dragon", "Complete 30 daily challenges", req(RequireDaily, 30)},

	{"alien", "👽", "Alien", "Achieve 95% accuracy (min 50 problems)", req(RequireAccuracy, 95)},
	{"robot", "🤖", "Robot", "Answer 20 problems under 2 seconds each", req(RequireSpeed, 20)},
	{"brain", "🧠", "Brain", "Earn 5000 total XP", req(RequireXP, 5000)},
}

var avatarsByID = func() map[string]Avatar {
	m := make(map[string]Avatar, len(Avatars))
	for _, a := range Avatars {
		m[a.ID] = a
	}
	return m
}()

func AvatarByID(id string) (Avatar, bool) {
	a, ok := avatarsByID[id]
	return a, ok
}

// Current is the snapshot value a requirement is compared against.
func Current(r Requirement, s models.PlayerStats) int64 {
	switch r.Kind {
	case RequireLevel:
		return int64(s.Level)
	case RequireCorrect:
		return int64(s.TotalCorrect)
	case RequireStreak:
		return int64(s.BestStreak)
	case RequireDaily:
		return int64(s.DailyChallengesCompleted)
	case RequireAccuracy:
		return int64(s.Accuracy)
	case RequireXP:
		return s.TotalXP
	case RequireSpeed:
		return int64(s.FastAnswers)
	default:
		return 0
	}
}

func Qualifies(r Requirement, s models.PlayerStats) bool {
	if r.Kind == RequireAccuracy && s.TotalProblems < MinAccuracySample {
		return false
	}
	return Current(r, s) >= r.Value
}

// CheckAvatars returns gated avatars the snapshot satisfies that are not in
// unlocked.
func CheckAvatars(stats models.PlayerStats, unlocked map[string]bool) []Avatar {
	var earned []Avatar
	for _, a := range Avatars {
		if a.Starter() || unlocked[a.ID] {
			continue
		}
		if Qualifies(*a.Requirement, stats) {
			earned = append(earned, a)
		}
	}
	return earned
}

// AvatarViews renders the catalog for one player, with progress toward each
// locked avatar.
func AvatarViews(stats models.PlayerStats, unlocked map[string]bool) []models.AvatarView {
	views := make([]models.AvatarView, 0, len(Avatars))
	for _, a := range Avatars {
		v := models.AvatarView{
			ID:       a.ID,
			Emoji:    a.Emoji,
			Name:     a.Name,
			Desc:     a.Desc,
			Unlocked: a.Starter() || unlocked[a.ID],
		}
		if a.Requirement != nil {
			v.Requirement = &models.AvatarRequirement{Type: a.Requirement.Kind.String(), Value: a.Requirement.Value}
			if !v.Unlocked {
				v.Progress = &models.AvatarProgress{Current: Current(*a.Requirement, stats), Required: a.Requirement.Value}
			}
		}
		views = append(views, v)
	}
	return views
}
