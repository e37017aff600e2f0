package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

// IDSet answers id membership for the records already accepted.
type IDSet interface {
	Has(id string) bool
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// Validate checks one authored document and returns the canonical record.
// Legacy documents are converted to the numeric shape; an empty status
// defaults to published and a zero version to 1. Every problem is reported,
// not just the first. ids may be nil.
func Validate(e content.Entry, ids IDSet) (*content.EducationalContent, error) {
	v := &validator{id: e.ID()}

	var rec *content.EducationalContent
	switch {
	case e.Current != nil:
		rec = cloneRecord(e.Current)
		v.checkIdentity(rec)
		v.checkLevelText(rec)
	case e.Legacy != nil:
		v.checkLegacy(e.Legacy)
		rec = e.Legacy.Canonical()
	default:
		return nil, &Error{Source: e.Source, Problems: []error{&MissingFieldError{Field: "document"}}}
	}

	v.checkLevelKeys(e)
	v.checkLevels(rec)
	v.checkCitations(rec)
	v.checkCrossReferences(rec)
	v.checkMedia(rec)
	v.checkMetadata(rec)

	if ids != nil && rec.ID != "" && ids.Has(rec.ID) {
		v.add(&content.DuplicateIDError{ID: rec.ID})
	}

	if len(v.problems) > 0 {
		return nil, &Error{RecordID: v.id, Source: e.Source, Problems: v.problems}
	}

	normalize(rec, e.Scheme)
	return rec, nil
}

type validator struct {
	id       string
	problems []error
}

func (v *validator) add(err error) { v.problems = append(v.problems, err) }

func (v *validator) missing(field string) {
	v.add(&MissingFieldError{RecordID: v.id, Field: field})
}

func (v *validator) malformed(level content.Tier, field string, idx int, reason string) {
	v.add(&MalformedEntryError{RecordID: v.id, Level: level, Field: field, Index: idx, Reason: reason})
}

func (v *validator) invalid(field, value string) {
	v.add(&InvalidValueError{RecordID: v.id, Field: field, Value: value})
}

func (v *validator) checkIdentity(rec *content.EducationalContent) {
	if blank(rec.ID) {
		v.missing("id")
	}
	if blank(string(rec.Type)) {
		v.missing("type")
	} else if !oneOf(rec.Type, content.ContentTypes) {
		v.invalid("type", string(rec.Type))
	}
	if blank(rec.Name) {
		v.missing("name")
	}
}

func (v *validator) checkLevelText(rec *content.EducationalContent) {
	for _, t := range rec.Levels.Tiers() {
		lv := rec.Levels[t]
		if blank(lv.Summary) {
			v.missing(fmt.Sprintf("levels[%d].summary", t))
		}
		if blank(lv.Explanation) {
			v.missing(fmt.Sprintf("levels[%d].explanation", t))
		}
		if lv.Level != 0 && lv.Level != int(t) {
			v.invalid(fmt.Sprintf("levels[%d].level", t), fmt.Sprint(lv.Level))
		}
	}
}

func (v *validator) checkLegacy(l *content.LegacyEducationalContent) {
	if blank(l.ID) {
		v.missing("id")
	}
	if blank(l.Title) {
		v.missing("title")
	}
	for _, t := range l.Levels.Tiers() {
		lv := l.Levels[t]
		if blank(lv.Description) {
			v.missing(fmt.Sprintf("levels[%s].description", t.LegacyKey()))
		}
		if blank(lv.Content) {
			v.missing(fmt.Sprintf("levels[%s].content", t.LegacyKey()))
		}
	}
}

func (v *validator) checkLevelKeys(e content.Entry) {
	byTier := map[content.Tier][]string{}
	for _, k := range e.LevelKeys {
		t, err := content.ParseTier(k)
		if err != nil {
			v.add(&UnknownTierError{RecordID: v.id, Key: k})
			continue
		}
		byTier[t] = append(byTier[t], k)
	}
	for _, t := range content.AllTiers {
		if keys := byTier[t]; len(keys) > 1 {
			v.add(&DuplicateTierError{RecordID: v.id, Tier: t, Keys: keys})
		}
	}
	if e.Scheme == content.SchemeMixed {
		v.add(&MixedSchemeError{RecordID: v.id, Keys: append([]string(nil), e.LevelKeys...)})
	}
}

func (v *validator) checkLevels(rec *content.EducationalContent) {
	if len(rec.Levels) == 0 {
		v.add(&EmptyLevelsError{RecordID: v.id})
		return
	}
	if _, ok := rec.Levels[content.TierLay]; !ok {
		v.missing("levels[1]")
	}
	for _, t := range rec.Levels.Tiers() {
		lv := rec.Levels[t]
		for i, kt := range lv.KeyTerms {
			switch {
			case blank(kt.Term):
				v.malformed(t, "keyTerms", i, "empty term")
			case blank(kt.Definition):
				v.malformed(t, "keyTerms", i, "empty definition")
			}
		}
		for i, fc := range lv.Flashcards {
			if blank(fc.Front) || blank(fc.Back) {
				v.malformed(t, "flashcards", i, "front and back are required")
			}
		}
		for i, q := range lv.Quiz {
			switch {
			case blank(q.Question):
				v.malformed(t, "quiz", i, "empty question")
			case len(q.Options) < 2:
				v.malformed(t, "quiz", i, "needs at least two options")
			case q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options):
				v.malformed(t, "quiz", i, fmt.Sprintf("correctAnswer %d out of range", q.CorrectAnswer))
			}
		}
	}
}

func (v *validator) checkCitations(rec *content.EducationalContent) {
	for i, c := range rec.Citations {
		switch {
		case blank(c.ID):
			v.malformed(0, "citations", i, "empty id")
		case blank(c.Title):
			v.malformed(0, "citations", i, "empty title")
		}
	}
}

func (v *validator) checkCrossReferences(rec *content.EducationalContent) {
	for i, ref := range rec.CrossReferences {
		switch {
		case blank(ref.TargetID):
			v.malformed(0, "crossReferences", i, "empty targetId")
		case blank(string(ref.Relationship)):
			v.malformed(0, "crossReferences", i, "empty relationship")
		case !oneOf(ref.Relationship, content.Relationships):
			v.malformed(0, "crossReferences", i, fmt.Sprintf("unknown relationship %q", ref.Relationship))
		case ref.TargetID == rec.ID:
			v.malformed(0, "crossReferences", i, "references itself")
		case ref.TargetType != "" && !oneOf(ref.TargetType, content.ContentTypes):
			v.malformed(0, "crossReferences", i, fmt.Sprintf("unknown targetType %q", ref.TargetType))
		}
	}
}

func (v *validator) checkMedia(rec *content.EducationalContent) {
	for i, m := range rec.Media {
		switch {
		case blank(m.ID):
			v.malformed(0, "media", i, "empty id")
		case blank(m.Filename):
			v.malformed(0, "media", i, "empty filename")
		}
	}
}

func (v *validator) checkMetadata(rec *content.EducationalContent) {
	if rec.Status != "" && !oneOf(rec.Status, content.Statuses) {
		v.invalid("status", string(rec.Status))
	}
	if rec.Version < 0 {
		v.invalid("version", fmt.Sprint(rec.Version))
	}
	if cr := rec.Tags.ClinicalRelevance; cr != "" && !oneOf(cr, content.ClinicalRelevances) {
		v.invalid("tags.clinicalRelevance", string(cr))
	}
	if rec.CreatedAt != "" && !validDate(rec.CreatedAt) {
		v.invalid("createdAt", rec.CreatedAt)
	}
	if rec.UpdatedAt != "" && !validDate(rec.UpdatedAt) {
		v.invalid("updatedAt", rec.UpdatedAt)
	}
	if er := rec.Tags.ExamRelevance; er != nil {
		for i, s := range er.Shelf {
			if blank(s) {
				v.malformed(0, "tags.examRelevance.shelf", i, "empty shelf exam")
			}
		}
	}
}

func normalize(rec *content.EducationalContent, scheme content.LevelScheme) {
	if rec.Status == "" {
		rec.Status = content.StatusPublished
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	if rec.LevelScheme == "" {
		rec.LevelScheme = scheme
	}
	for t, lv := range rec.Levels {
		lv.Level = int(t)
		rec.Levels[t] = lv
	}
}

func cloneRecord(c *content.EducationalContent) *content.EducationalContent {
	out := *c
	out.Levels = make(content.LevelMap, len(c.Levels))
	for t, lv := range c.Levels {
		out.Levels[t] = lv
	}
	return &out
}

func validDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func oneOf[T comparable](v T, allowed []T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
