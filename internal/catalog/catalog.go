package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mcoot/rightsquest/internal/model"
)

// ErrInvalidCatalog is wrapped by every validation failure
var ErrInvalidCatalog = errors.New("invalid catalog")

const streakBadgePrefix = "streak-"

// Facts is the view of a user's history a badge rule is evaluated against
type Facts struct {
	Completed []model.ModuleID
	Activity  model.Activity
}

// Has reports whether the module is in the completed set
func (f Facts) Has(id model.ModuleID) bool {
	return slices.Contains(f.Completed, id)
}

// Rule is a badge eligibility predicate
type Rule func(Facts) bool

// BadgeRule pairs a badge with its eligibility predicate
type BadgeRule struct {
	Badge    model.Badge
	Eligible Rule
}

// Designated names the modules that badge rules refer to
type Designated struct {
	Basics  model.ModuleID
	Dispute model.ModuleID
}

// Catalog is an immutable, validated set of modules, badges and levels
type Catalog struct {
	modules      []model.Module
	moduleIndex  map[model.ModuleID]int
	predecessors map[model.ModuleID][]model.ModuleID
	rules        []BadgeRule
	badgeIndex   map[model.BadgeID]int
	levels       []model.Level
	designated   Designated
}

// New validates the tables and builds a catalog. Inputs are copied.
func New(modules []model.Module, badges []model.Badge, levels []model.Level, designated Designated) (*Catalog, error) {
	c := &Catalog{
		moduleIndex:  make(map[model.ModuleID]int, len(modules)),
		predecessors: make(map[model.ModuleID][]model.ModuleID, len(modules)),
		badgeIndex:   make(map[model.BadgeID]int, len(badges)),
		designated:   designated,
	}

	if len(modules) == 0 {
		return nil, fmt.Errorf("%w: no modules", ErrInvalidCatalog)
	}

	for _, m := range modules {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: module with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.moduleIndex[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate module %q", ErrInvalidCatalog, m.ID)
		}
		if m.Points <= 0 {
			return nil, fmt.Errorf("%w: module %q has non-positive points", ErrInvalidCatalog, m.ID)
		}
		m.Unlocks = slices.Clone(m.Unlocks)
		c.moduleIndex[m.ID] = len(c.modules)
		c.modules = append(c.modules, m)
	}

	for _, m := range c.modules {
		for _, target := range m.Unlocks {
			if target == m.ID {
				return nil, fmt.Errorf("%w: module %q unlocks itself", ErrInvalidCatalog, m.ID)
			}
			if _, ok := c.moduleIndex[target]; !ok {
				return nil, fmt.Errorf("%w: module %q unlocks unknown module %q", ErrInvalidCatalog, m.ID, target)
			}
			if !slices.Contains(c.predecessors[target], m.ID) {
				c.predecessors[target] = append(c.predecessors[target], m.ID)
			}
		}
	}

	if len(c.Roots()) == 0 {
		return nil, fmt.Errorf("%w: no root module", ErrInvalidCatalog)
	}
	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}

	for _, id := range []model.ModuleID{designated.Basics, designated.Dispute} {
		if _, ok := c.moduleIndex[id]; !ok {
			return nil, fmt.Errorf("%w: designated module %q not in catalog", ErrInvalidCatalog, id)
		}
	}

	if err := c.buildLevels(levels); err != nil {
		return nil, err
	}
	if err := c.buildRules(badges); err != nil {
		return nil, err
	}

	return c, nil
}

// Default returns the built-in catalog. It panics if the built-in tables are
// malformed, which is a programmer error surfaced at startup.
func Default() *Catalog {
	c, err := New(DefaultModules, DefaultBadges, DefaultLevels, Designated{
		Basics:  BasicsModuleID,
		Dispute: DisputeModuleID,
	})
	if err != nil {
		panic(err)
	}
	return c
}

// checkAcyclic runs a three-colour DFS over the unlock graph
func (c *Catalog) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	colour := make([]int, len(c.modules))

	var visit func(i int, path []model.ModuleID) error
	visit = func(i int, path []model.ModuleID) error {
		colour[i] = grey
		path = append(path, c.modules[i].ID)
		for _, next := range c.modules[i].Unlocks {
			j := c.moduleIndex[next]
			switch colour[j] {
			case grey:
				cycle := append(slices.Clone(path), next)
				return fmt.Errorf("%w: unlock cycle %s", ErrInvalidCatalog, joinIDs(cycle))
			case white:
				if err := visit(j, path); err != nil {
					return err
				}
			}
		}
		colour[i] = black
		return nil
	}

	for i := range c.modules {
		if colour[i] == white {
			if err := visit(i, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) buildLevels(levels []model.Level) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: empty level table", ErrInvalidCatalog)
	}
	if levels[0].MinPoints != 0 {
		return fmt.Errorf("%w: first level must start at 0 points", ErrInvalidCatalog)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].MinPoints <= levels[i-1].MinPoints {
			return fmt.Errorf("%w: level %d threshold does not ascend", ErrInvalidCatalog, levels[i].Number)
		}
		if levels[i].Number <= levels[i-1].Number {
			return fmt.Errorf("%w: level numbers must ascend", ErrInvalidCatalog)
		}
	}
	c.levels = slices.Clone(levels)
	return nil
}

func (c *Catalog) buildRules(badges []model.Badge) error {
	for _, b := range badges {
		if _, dup := c.badgeIndex[b.ID]; dup {
			return fmt.Errorf("%w: duplicate badge %q", ErrInvalidCatalog, b.ID)
		}
		if b.Tier < model.TierBronze || b.Tier > model.TierPlatinum {
			return fmt.Errorf("%w: badge %q has unknown tier", ErrInvalidCatalog, b.ID)
		}
		rule, err := c.ruleFor(b.ID)
		if err != nil {
			return err
		}
		c.badgeIndex[b.ID] = len(c.rules)
		c.rules = append(c.rules, BadgeRule{Badge: b, Eligible: rule})
	}
	return nil
}

// ruleFor maps a badge id to its predicate. Every badge must have one.
func (c *Catalog) ruleFor(id model.BadgeID) (Rule, error) {
	switch id {
	case BadgeFirstModule:
		return func(f Facts) bool { return c.CountCompleted(f.Completed) >= 1 }, nil
	case BadgeBasicsMaster:
		basics := c.designated.Basics
		return func(f Facts) bool { return f.Has(basics) }, nil
	case BadgeDisputeExpert:
		dispute := c.designated.Dispute
		return func(f Facts) bool { return f.Has(dispute) }, nil
	case BadgeKnowledgeSeeker:
		return func(f Facts) bool { return c.CountCompleted(f.Completed) == len(c.modules) }, nil
	case BadgePerfectScore:
		return func(f Facts) bool {
			for _, score := range f.Activity.QuizScores {
				if score >= 100 {
					return true
				}
			}
			return false
		}, nil
	}

	if days, ok := strings.CutPrefix(string(id), streakBadgePrefix); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: badge %q has malformed streak length", ErrInvalidCatalog, id)
		}
		return func(f Facts) bool { return f.Activity.StreakDays >= n }, nil
	}

	return nil, fmt.Errorf("%w: badge %q has no eligibility rule", ErrInvalidCatalog, id)
}

// CountCompleted counts the distinct catalog modules among ids.
// Ids this catalog does not define are ignored.
func (c *Catalog) CountCompleted(ids []model.ModuleID) int {
	seen := make(map[model.ModuleID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := c.moduleIndex[id]; ok {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// Modules returns all modules in catalog order
func (c *Catalog) Modules() []model.Module {
	out := make([]model.Module, len(c.modules))
	for i, m := range c.modules {
		m.Unlocks = slices.Clone(m.Unlocks)
		out[i] = m
	}
	return out
}

// Module looks up a module by id
func (c *Catalog) Module(id model.ModuleID) (model.Module, bool) {
	i, ok := c.moduleIndex[id]
	if !ok {
		return model.Module{}, false
	}
	m := c.modules[i]
	m.Unlocks = slices.Clone(m.Unlocks)
	return m, true
}

// ModuleCount returns the number of modules in the catalog
func (c *Catalog) ModuleCount() int {
	return len(c.modules)
}

// IsRoot reports whether the module has no predecessors in the unlock graph
func (c *Catalog) IsRoot(id model.ModuleID) bool {
	_, known := c.moduleIndex[id]
	return known && len(c.predecessors[id]) == 0
}

// Roots returns the modules with no prerequisites, in catalog order
func (c *Catalog) Roots() []model.ModuleID {
	var roots []model.ModuleID
	for _, m := range c.modules {
		if len(c.predecessors[m.ID]) == 0 {
			roots = append(roots, m.ID)
		}
	}
	return roots
}

// Predecessors returns the modules whose completion unlocks id
func (c *Catalog) Predecessors(id model.ModuleID) []model.ModuleID {
	return slices.Clone(c.predecessors[id])
}

// Rules returns the badge rules in catalog order
func (c *Catalog) Rules() []BadgeRule {
	return slices.Clone(c.rules)
}

// Badges returns the badges in catalog order
func (c *Catalog) Badges() []model.Badge {
	out := make([]model.Badge, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Badge
	}
	return out
}

// Badge looks up a badge by id
func (c *Catalog) Badge(id model.BadgeID) (model.Badge, bool) {
	i, ok := c.badgeIndex[id]
	if !ok {
		return model.Badge{}, false
	}
	return c.rules[i].Badge, true
}

// Levels returns the leveling table in ascending order
func (c *Catalog) Levels() []model.Level {
	return slices.Clone(c.levels)
}

func joinIDs(ids []model.ModuleID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " -> ")
}
