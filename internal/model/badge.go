package model

import "fmt"

// BadgeID uniquely identifies a badge
type BadgeID string

// BadgeKind groups badges by what earns them
type BadgeKind string

const (
	BadgeKindCompletion BadgeKind = "completion"
	BadgeKindStreak     BadgeKind = "streak"
	BadgeKindScore      BadgeKind = "score"
	BadgeKindSpecial    BadgeKind = "special"
)

// BadgeTier is ordered: bronze < silver < gold < platinum
type BadgeTier int

const (
	TierBronze BadgeTier = iota + 1
	TierSilver
	TierGold
	TierPlatinum
)

var tierNames = map[BadgeTier]string{
	TierBronze:   "bronze",
	TierSilver:   "silver",
	TierGold:     "gold",
	TierPlatinum: "platinum",
}

// String returns the lowercase tier name
func (t BadgeTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// MarshalText encodes the tier by name
func (t BadgeTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name
func (t *BadgeTier) UnmarshalText(b []byte) error {
	for tier, name := range tierNames {
		if name == string(b) {
			*t = tier
			return nil
		}
	}
	return fmt.Errorf("unknown badge tier %q", string(b))
}

// Badge is an immutable catalog entry. Eligibility rules live in the catalog.
type Badge struct {
	ID          BadgeID
	Name        string
	Kind        BadgeKind
	Tier        BadgeTier
	Description string
}
