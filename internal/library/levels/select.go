package levels

import (
	"errors"
	"fmt"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

var ErrNoLevels = errors.New("record has no levels")

// FellBack reports that the requested tier was not present and another one
// was served instead.
type FellBack struct {
	From content.Tier `json:"from"`
	To   content.Tier `json:"to"`
}

func (f *FellBack) String() string {
	return fmt.Sprintf("tier %d unavailable, served tier %d", f.From, f.To)
}

// Select returns the level for requested. Without an exact match it serves the
// nearest lower tier, and when nothing at or below requested exists, the
// lowest tier the record has. A non-nil FellBack is returned for every
// non-exact answer. Select never serves a tier above requested unless no
// lower one exists.
func Select(rec *content.EducationalContent, requested content.Tier) (content.LevelContent, *FellBack, error) {
	if rec == nil || len(rec.Levels) == 0 {
		return content.LevelContent{}, nil, ErrNoLevels
	}
	if !requested.Valid() {
		return content.LevelContent{}, nil, &content.InvalidTierError{Raw: requested.String()}
	}
	if lv, ok := rec.Levels[requested]; ok {
		return lv, nil, nil
	}

	tiers := rec.Levels.Tiers()
	to := tiers[0]
	for _, t := range tiers {
		if t > requested {
			break
		}
		to = t
	}
	return rec.Levels[to], &FellBack{From: requested, To: to}, nil
}

// SelectRaw parses raw with content.ParseTier, so both "4" and "expert"
// select tier 4.
func SelectRaw(rec *content.EducationalContent, raw string) (content.LevelContent, *FellBack, error) {
	t, err := content.ParseTier(raw)
	if err != nil {
		return content.LevelContent{}, nil, err
	}
	return Select(rec, t)
}
