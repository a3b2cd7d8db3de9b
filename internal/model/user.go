package model

import (
	"slices"
	"time"
)

// UserID uniquely identifies a learner across the system
type UserID string

// User is the canonical learner record owned by the host.
// The progression engine only ever works on copies of it.
type User struct {
	ID            UserID
	WalletAddress string
	// CompletedModules is in completion order and never holds duplicates
	CompletedModules []ModuleID
	Score            int
	Badges           []BadgeID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasCompleted reports whether the module is in the completed set
func (u *User) HasCompleted(id ModuleID) bool {
	return slices.Contains(u.CompletedModules, id)
}

// HasBadge reports whether the badge has already been earned
func (u *User) HasBadge(id BadgeID) bool {
	return slices.Contains(u.Badges, id)
}

// Clone returns a deep copy that shares no slices with u
func (u User) Clone() User {
	c := u
	c.CompletedModules = slices.Clone(u.CompletedModules)
	c.Badges = slices.Clone(u.Badges)
	return c
}

// Activity is host-supplied input the engine consumes but never computes
type Activity struct {
	// StreakDays is the current consecutive-day learning streak
	StreakDays int
	// QuizScores holds the best quiz percentage per module (0-100)
	QuizScores map[ModuleID]int
}
