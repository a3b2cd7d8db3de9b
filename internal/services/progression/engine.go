package progression

import (
	"log/slog"
	"math"

	"github.com/mcoot/rightsquest/internal/catalog"
	"github.com/mcoot/rightsquest/internal/dependencies/clock"
	"github.com/mcoot/rightsquest/internal/model"
)

// Engine applies the unlock, scoring, leveling and badge rules of a catalog.
// It holds no mutable state; every method is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new Engine over a validated catalog
func New(cat *catalog.Catalog, clock clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		catalog: cat,
		clock:   clock,
		logger:  logger,
	}
}

// Catalog returns the catalog the engine evaluates against
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Completion describes the effect of a CompleteModule call
type Completion struct {
	ModuleID         model.ModuleID
	AlreadyCompleted bool
	PointsAwarded    int
	BadgesAwarded    []model.BadgeID
}

// CanUnlock reports whether a module may be started given a completed set.
// A module is unlocked if it is a root, or if any completed module lists it
// in its unlocks. Only direct predecessors are consulted.
func (e *Engine) CanUnlock(id model.ModuleID, completed []model.ModuleID) bool {
	if _, ok := e.catalog.Module(id); !ok {
		return false
	}
	if e.catalog.IsRoot(id) {
		return true
	}
	done := make(map[model.ModuleID]struct{}, len(completed))
	for _, c := range completed {
		done[c] = struct{}{}
	}
	for _, pred := range e.catalog.Predecessors(id) {
		if _, ok := done[pred]; ok {
			return true
		}
	}
	return false
}

// StartModule checks the unlock rule and records the module as completed
func (e *Engine) StartModule(id model.ModuleID, user model.User, activity model.Activity) (model.User, Completion, error) {
	if _, ok := e.catalog.Module(id); !ok {
		return user.Clone(), Completion{}, model.ErrModuleNotFound
	}
	if !e.CanUnlock(id, user.CompletedModules) {
		return user.Clone(), Completion{}, model.ErrModuleLocked
	}
	updated, completion := e.CompleteModule(id, user, activity)
	return updated, completion, nil
}

// CompleteModule returns a copy of user with the module completed, its points
// added and every newly eligible badge awarded. Completing a module twice is
// a no-op. Unknown modules are also a no-op.
func (e *Engine) CompleteModule(id model.ModuleID, user model.User, activity model.Activity) (model.User, Completion) {
	next := user.Clone()
	result := Completion{ModuleID: id}

	module, ok := e.catalog.Module(id)
	if !ok {
		return next, result
	}
	if next.HasCompleted(id) {
		result.AlreadyCompleted = true
		return next, result
	}

	next.CompletedModules = append(next.CompletedModules, id)
	next.Score += module.Points
	result.PointsAwarded = module.Points

	awarded := e.EvaluateBadges(next, activity)
	next.Badges = append(next.Badges, awarded...)
	result.BadgesAwarded = awarded
	next.UpdatedAt = e.clock.Now()

	e.logger.Debug("module completed",
		slog.String("user_id", string(next.ID)),
		slog.String("module_id", string(id)),
		slog.Int("points", module.Points),
		slog.Int("score", next.Score),
		slog.Int("badges_awarded", len(awarded)),
	)

	return next, result
}

// EvaluateBadges returns the badges the user is newly eligible for.
// Rules for badges already held are not evaluated.
func (e *Engine) EvaluateBadges(user model.User, activity model.Activity) []model.BadgeID {
	facts := catalog.Facts{
		Completed: user.CompletedModules,
		Activity:  activity,
	}

	var awarded []model.BadgeID
	for _, rule := range e.catalog.Rules() {
		if user.HasBadge(rule.Badge.ID) {
			continue
		}
		if rule.Eligible(facts) {
			awarded = append(awarded, rule.Badge.ID)
		}
	}
	return awarded
}

// AwardBadges returns a copy of user with every newly eligible badge added.
// Used when host-supplied activity changes without a module completion.
func (e *Engine) AwardBadges(user model.User, activity model.Activity) (model.User, []model.BadgeID) {
	next := user.Clone()
	awarded := e.EvaluateBadges(next, activity)
	if len(awarded) > 0 {
		next.Badges = append(next.Badges, awarded...)
		next.UpdatedAt = e.clock.Now()
	}
	return next, awarded
}

// NextBadge returns the lowest-tier badge the user has not earned yet, or
// nil when every badge is held. Ties keep catalog order.
func (e *Engine) NextBadge(user model.User) *model.Badge {
	var next *model.Badge
	for _, b := range e.catalog.Badges() {
		if user.HasBadge(b.ID) {
			continue
		}
		if next == nil || b.Tier < next.Tier {
			candidate := b
			next = &candidate
		}
	}
	return next
}

// ModuleStatus is a catalog module annotated for one user
type ModuleStatus struct {
	Module    model.Module
	Unlocked  bool
	Completed bool
}

// ModuleStatuses annotates every catalog module with the user's lock state
func (e *Engine) ModuleStatuses(user model.User) []ModuleStatus {
	modules := e.catalog.Modules()
	out := make([]ModuleStatus, len(modules))
	for i, m := range modules {
		out[i] = ModuleStatus{
			Module:    m,
			Unlocked:  e.CanUnlock(m.ID, user.CompletedModules),
			Completed: user.HasCompleted(m.ID),
		}
	}
	return out
}

// LevelFor returns the highest level whose threshold does not exceed score
func (e *Engine) LevelFor(score int) model.Level {
	levels := e.catalog.Levels()
	current := levels[0]
	for _, l := range levels[1:] {
		if score < l.MinPoints {
			break
		}
		current = l
	}
	return current
}

// PointsToNextLevel returns the points needed to reach the next level, or 0
// at the top of the table
func (e *Engine) PointsToNextLevel(score int) int {
	for _, l := range e.catalog.Levels() {
		if l.MinPoints > score {
			return l.MinPoints - score
		}
	}
	return 0
}

// ComputeStats derives GameStats from the user. Nothing is cached.
func (e *Engine) ComputeStats(user model.User, activity model.Activity) model.GameStats {
	level := e.LevelFor(user.Score)
	total := e.catalog.ModuleCount()
	completed := e.catalog.CountCompleted(user.CompletedModules)

	return model.GameStats{
		TotalScore:        user.Score,
		Level:             level.Number,
		Rank:              level.Title,
		PointsToNextLevel: e.PointsToNextLevel(user.Score),
		ModulesCompleted:  completed,
		ModulesTotal:      total,
		ProgressPercent:   Percent(completed, total),
		BadgesEarned:      len(user.Badges),
		Streak:            activity.StreakDays,
	}
}

// Percent returns part/total as a rounded percentage, or 0 when total <= 0
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// QuizScore returns the rounded percentage of correct answers
func QuizScore(correct, total int) int {
	return Percent(correct, total)
}
