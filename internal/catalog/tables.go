package catalog

import (
	"time"

	"github.com/mcoot/rightsquest/internal/model"
)

// Designated module ids referenced by badge rules
const (
	BasicsModuleID   model.ModuleID = "onboarding-basics"
	DisputeModuleID  model.ModuleID = "dispute-resolution"
	AdvancedModuleID model.ModuleID = "advanced-rights"
)

// Badge ids with built-in eligibility rules
const (
	BadgeFirstModule     model.BadgeID = "first-module"
	BadgeBasicsMaster    model.BadgeID = "basics-master"
	BadgeDisputeExpert   model.BadgeID = "dispute-expert"
	BadgePerfectScore    model.BadgeID = "perfect-score"
	BadgeKnowledgeSeeker model.BadgeID = "knowledge-seeker"
	BadgeWeekStreak      model.BadgeID = "streak-7"
)

// DefaultModules is the built-in module table
var DefaultModules = []model.Module{
	{
		ID:         BasicsModuleID,
		Title:      "Onboarding Legal Basics",
		Type:       model.ModuleTypeBasics,
		Points:     100,
		Unlocks:    []model.ModuleID{DisputeModuleID},
		Difficulty: model.DifficultyBeginner,
		Duration:   15 * time.Minute,
	},
	{
		ID:         DisputeModuleID,
		Title:      "Dispute Resolution Guide",
		Type:       model.ModuleTypeDispute,
		Points:     150,
		Unlocks:    []model.ModuleID{AdvancedModuleID},
		Difficulty: model.DifficultyIntermediate,
		Duration:   20 * time.Minute,
	},
	{
		ID:         AdvancedModuleID,
		Title:      "Advanced Workplace Rights",
		Type:       model.ModuleTypeAdvanced,
		Points:     200,
		Difficulty: model.DifficultyAdvanced,
		Duration:   25 * time.Minute,
	},
}

// DefaultBadges is the built-in badge table, in display order
var DefaultBadges = []model.Badge{
	{ID: BadgeFirstModule, Name: "First Steps", Kind: model.BadgeKindCompletion, Tier: model.TierBronze, Description: "Completed your first learning module"},
	{ID: BadgeBasicsMaster, Name: "Basics Master", Kind: model.BadgeKindCompletion, Tier: model.TierSilver, Description: "Mastered the onboarding basics module"},
	{ID: BadgeDisputeExpert, Name: "Dispute Expert", Kind: model.BadgeKindCompletion, Tier: model.TierGold, Description: "Completed the dispute resolution guide"},
	{ID: BadgePerfectScore, Name: "Perfect Score", Kind: model.BadgeKindScore, Tier: model.TierGold, Description: "Achieved 100% on a module quiz"},
	{ID: BadgeWeekStreak, Name: "Week Warrior", Kind: model.BadgeKindStreak, Tier: model.TierSilver, Description: "Maintained a 7-day learning streak"},
	{ID: BadgeKnowledgeSeeker, Name: "Knowledge Seeker", Kind: model.BadgeKindSpecial, Tier: model.TierPlatinum, Description: "Completed all available modules"},
}

// DefaultLevels is the built-in leveling table
var DefaultLevels = []model.Level{
	{Number: 1, MinPoints: 0, Title: "Newcomer"},
	{Number: 2, MinPoints: 100, Title: "Learner"},
	{Number: 3, MinPoints: 300, Title: "Informed"},
	{Number: 4, MinPoints: 600, Title: "Knowledgeable"},
	{Number: 5, MinPoints: 1000, Title: "Expert"},
	{Number: 6, MinPoints: 1500, Title: "Rights Champion"},
}
