package model

import "time"

// ModuleID uniquely identifies a learning module
type ModuleID string

// ModuleType classifies the subject area of a module
type ModuleType string

const (
	ModuleTypeBasics   ModuleType = "basics"
	ModuleTypeDispute  ModuleType = "dispute"
	ModuleTypeAdvanced ModuleType = "advanced"
)

// Difficulty is the difficulty tier of a module
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Module is an immutable catalog entry
type Module struct {
	ID         ModuleID
	Title      string
	Type       ModuleType
	Points     int
	Unlocks    []ModuleID // edges in the unlock graph
	Difficulty Difficulty
	Duration   time.Duration
}
