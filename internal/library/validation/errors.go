package validation

import (
	"fmt"
	"strings"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

// Error collects every problem found in one document.
type Error struct {
	RecordID string
	Source   string
	Problems []error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	id := e.RecordID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("invalid content %s (%d problems): %s", id, len(e.Problems), strings.Join(msgs, "; "))
}

func (e *Error) Unwrap() []error { return e.Problems }

type MissingFieldError struct {
	RecordID string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %s", e.RecordID, e.Field)
}

type EmptyLevelsError struct {
	RecordID string
}

func (e *EmptyLevelsError) Error() string {
	return fmt.Sprintf("%s: levels is empty", e.RecordID)
}

// MalformedEntryError points at one item of a sub-array. Level is zero for
// record-level arrays (citations, crossReferences, media).
type MalformedEntryError struct {
	RecordID string
	Level    content.Tier
	Field    string
	Index    int
	Reason   string
}

func (e *MalformedEntryError) Error() string {
	where := fmt.Sprintf("%s[%d]", e.Field, e.Index)
	if e.Level != 0 {
		where = fmt.Sprintf("levels[%d].%s", e.Level, where)
	}
	return fmt.Sprintf("%s: malformed %s: %s", e.RecordID, where, e.Reason)
}

type UnknownTierError struct {
	RecordID string
	Key      string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("%s: unknown level key %q", e.RecordID, e.Key)
}

// DuplicateTierError reports authored level keys that name the same tier,
// e.g. "1" and "01". Only one of them would survive decoding.
type DuplicateTierError struct {
	RecordID string
	Tier     content.Tier
	Keys     []string
}

func (e *DuplicateTierError) Error() string {
	return fmt.Sprintf("%s: level keys %s all name tier %d", e.RecordID, strings.Join(e.Keys, ", "), e.Tier)
}

type MixedSchemeError struct {
	RecordID string
	Keys     []string
}

func (e *MixedSchemeError) Error() string {
	return fmt.Sprintf("%s: level keys mix numeric and named tiers (%s)", e.RecordID, strings.Join(e.Keys, ", "))
}

type InvalidValueError struct {
	RecordID string
	Field    string
	Value    string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q", e.RecordID, e.Field, e.Value)
}
