package content

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is a complexity stratum: 1 is the lay audience, 5 the domain expert.
type Tier int

const (
	TierLay          Tier = 1
	TierIntermediate Tier = 2
	TierAdvanced     Tier = 3
	TierExpert       Tier = 4
	TierMaster       Tier = 5

	MinTier = TierLay
	MaxTier = TierMaster
)

// AllTiers lists every tier in ascending order.
var AllTiers = []Tier{TierLay, TierIntermediate, TierAdvanced, TierExpert, TierMaster}

var namedTiers = map[string]Tier{
	"intermediate": TierIntermediate,
	"advanced":     TierAdvanced,
	"expert":       TierExpert,
	"master":       TierMaster,
}

var tierNames = map[Tier]string{
	TierIntermediate: "intermediate",
	TierAdvanced:     "advanced",
	TierExpert:       "expert",
	TierMaster:       "master",
}

func (t Tier) Valid() bool { return t >= MinTier && t <= MaxTier }

func (t Tier) String() string { return strconv.Itoa(int(t)) }

// LegacyKey returns the key the named scheme uses for t. Tier 1 has no name
// in that scheme and keeps its numeric key.
func (t Tier) LegacyKey() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return t.String()
}

// KeyScheme reports which naming scheme an authored level key belongs to.
// Key "1" is shared by both schemes and reports SchemeUnknown.
func KeyScheme(key string) LevelScheme {
	k := strings.ToLower(strings.TrimSpace(key))
	if _, ok := namedTiers[k]; ok {
		return SchemeNamed
	}
	if n, err := strconv.Atoi(k); err == nil && n > int(MinTier) && n <= int(MaxTier) {
		return SchemeNumeric
	}
	return SchemeUnknown
}

// ParseTier accepts "1".."5" and the named tiers intermediate, advanced,
// expert and master.
func ParseTier(raw string) (Tier, error) {
	k := strings.ToLower(strings.TrimSpace(raw))
	if k == "" {
		return 0, &InvalidTierError{Raw: raw}
	}
	if t, ok := namedTiers[k]; ok {
		return t, nil
	}
	n, err := strconv.Atoi(k)
	if err != nil || !Tier(n).Valid() {
		return 0, &InvalidTierError{Raw: raw}
	}
	return Tier(n), nil
}

type InvalidTierError struct {
	Raw string
}

func (e *InvalidTierError) Error() string {
	return fmt.Sprintf("invalid complexity tier %q (want 1-5 or intermediate|advanced|expert|master)", e.Raw)
}
