package content

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one authored document before validation: a tagged union of the
// canonical and the legacy shape. Exactly one of Current and Legacy is set.
type Entry struct {
	Scheme    LevelScheme
	LevelKeys []string
	Current   *EducationalContent
	Legacy    *LegacyEducationalContent

	// Source names where the document came from (file path, table row).
	Source string
}

// ID returns the record id of whichever shape is set.
func (e Entry) ID() string {
	switch {
	case e.Current != nil:
		return e.Current.ID
	case e.Legacy != nil:
		return e.Legacy.ID
	default:
		return ""
	}
}

func (e Entry) IsLegacy() bool { return e.Legacy != nil }

// Decode parses a JSON document into an Entry. The level scheme is taken from
// the authored level keys. A document with a name and no title is canonical,
// one with a title and no name is legacy; otherwise named keys mean legacy.
func Decode(data []byte) (Entry, error) {
	var probe struct {
		Name   *string                    `json:"name"`
		Title  *string                    `json:"title"`
		Levels map[string]json.RawMessage `json:"levels"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Entry{}, fmt.Errorf("decode content document: %w", err)
	}

	keys := make([]string, 0, len(probe.Levels))
	for k := range probe.Levels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	scheme := SchemeForKeys(keys)

	var legacy bool
	switch {
	case probe.Name != nil && probe.Title == nil:
		legacy = false
	case probe.Title != nil && probe.Name == nil:
		legacy = true
	default:
		legacy = scheme == SchemeNamed
	}

	out := Entry{Scheme: scheme, LevelKeys: keys}
	if legacy {
		var l LegacyEducationalContent
		if err := json.Unmarshal(data, &l); err != nil {
			return Entry{}, fmt.Errorf("decode legacy content document: %w", err)
		}
		out.Legacy = &l
		if out.Scheme == SchemeUnknown {
			out.Scheme = SchemeNamed
		}
		return out, nil
	}

	var c EducationalContent
	if err := json.Unmarshal(data, &c); err != nil {
		return Entry{}, fmt.Errorf("decode content document: %w", err)
	}
	out.Current = &c
	if out.Scheme == SchemeUnknown {
		out.Scheme = SchemeNumeric
	}
	return out, nil
}

// SchemeForKeys classifies a set of authored level keys. Keys outside both
// schemes are ignored here and reported by validation.
func SchemeForKeys(keys []string) LevelScheme {
	var numeric, named bool
	for _, k := range keys {
		switch KeyScheme(k) {
		case SchemeNumeric:
			numeric = true
		case SchemeNamed:
			named = true
		}
	}
	switch {
	case numeric && named:
		return SchemeMixed
	case named:
		return SchemeNamed
	case numeric:
		return SchemeNumeric
	default:
		return SchemeUnknown
	}
}

// EntryFor wraps an already-built record, e.g. one read back from storage.
func EntryFor(c *EducationalContent) Entry {
	keys := make([]string, 0, len(c.Levels))
	for _, t := range c.Levels.Tiers() {
		keys = append(keys, t.String())
	}
	scheme := SchemeForKeys(keys)
	if scheme == SchemeUnknown {
		scheme = SchemeNumeric
	}
	return Entry{Scheme: scheme, LevelKeys: keys, Current: c}
}
