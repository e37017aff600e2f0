package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

type idSet map[string]bool

func (s idSet) Has(id string) bool { return s[id] }

func sampleRecord(id string) *content.EducationalContent {
	return &content.EducationalContent{
		ID:     id,
		Type:   content.TypeCondition,
		Name:   "Hypoglycemia",
		NameEs: "Hipoglucemia",
		Levels: content.LevelMap{
			content.TierLay: {
				Summary:     "Blood sugar is too low.",
				Explanation: "## What happens\nYour body runs short of fuel.",
				KeyTerms:    []content.KeyTerm{{Term: "Glucose", Definition: "Sugar carried in the blood"}},
			},
			content.TierIntermediate: {
				Summary:     "Plasma glucose below 70 mg/dL.",
				Explanation: "Whipple triad confirms the diagnosis.",
			},
		},
		Citations: []content.Citation{{ID: "ref-1", Type: "guideline", Title: "Standards of Care in Diabetes"}},
		CrossReferences: []content.CrossReference{
			{TargetID: "condition-diabetes-type-1", TargetType: content.TypeCondition, Relationship: content.RelRelated, Label: "Type 1 diabetes"},
		},
		Tags:      content.Tags{Topics: []string{"diabetes", "endocrinology"}, ClinicalRelevance: content.RelevanceHigh},
		CreatedAt: "2026-02-05",
		UpdatedAt: "2026-02-05",
	}
}

func problemsOf(t *testing.T, err error) []error {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T (%v)", err, err)
	}
	return verr.Problems
}

func TestValidateAcceptsAndNormalizes(t *testing.T) {
	in := sampleRecord("condition-hypoglycemia")
	rec, err := Validate(content.EntryFor(in), idSet{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rec.Status != content.StatusPublished || rec.Version != 1 {
		t.Fatalf("defaults not applied: status=%q version=%d", rec.Status, rec.Version)
	}
	if rec.Levels[content.TierIntermediate].Level != 2 {
		t.Fatalf("level ordinal not set: %+v", rec.Levels[content.TierIntermediate])
	}
	if in.Status != "" || in.Levels[content.TierIntermediate].Level != 0 {
		t.Fatalf("Validate mutated its input")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	in := sampleRecord("condition-bad")
	in.Name = " "
	in.Type = "disease"
	lay := in.Levels[content.TierLay]
	lay.Summary = ""
	lay.KeyTerms = []content.KeyTerm{{Term: "Glucose"}}
	in.Levels[content.TierLay] = lay
	in.Citations = append(in.Citations, content.Citation{ID: "ref-2"})
	in.CrossReferences = append(in.CrossReferences, content.CrossReference{TargetID: "x", Relationship: "cousin"})

	_, err := Validate(content.EntryFor(in), nil)
	problems := problemsOf(t, err)

	var (
		missing   []*MissingFieldError
		malformed []*MalformedEntryError
		invalid   []*InvalidValueError
	)
	for _, p := range problems {
		switch e := p.(type) {
		case *MissingFieldError:
			missing = append(missing, e)
		case *MalformedEntryError:
			malformed = append(malformed, e)
		case *InvalidValueError:
			invalid = append(invalid, e)
		}
	}
	if len(missing) != 2 {
		t.Fatalf("missing fields: got=%d want=2 (%v)", len(missing), problems)
	}
	if len(invalid) != 1 || invalid[0].Field != "type" {
		t.Fatalf("invalid values: got=%v", invalid)
	}
	if len(malformed) != 3 {
		t.Fatalf("malformed entries: got=%d want=3 (%v)", len(malformed), problems)
	}
	kt := malformed[0]
	if kt.Level != content.TierLay || kt.Field != "keyTerms" || kt.Index != 0 || kt.RecordID != "condition-bad" {
		t.Fatalf("keyTerms problem: got=%+v", kt)
	}
}

func TestValidateDuplicateID(t *testing.T) {
	_, err := Validate(content.EntryFor(sampleRecord("x")), idSet{"x": true})
	var dup *content.DuplicateIDError
	if !errors.As(err, &dup) || dup.ID != "x" {
		t.Fatalf("expected DuplicateIDError{x}, got %v", err)
	}
}

func TestValidateEmptyLevels(t *testing.T) {
	in := sampleRecord("empty")
	in.Levels = nil
	_, err := Validate(content.EntryFor(in), nil)
	var empty *EmptyLevelsError
	if !errors.As(err, &empty) || empty.RecordID != "empty" {
		t.Fatalf("expected EmptyLevelsError, got %v", err)
	}
}

func TestValidateRequiresTierOne(t *testing.T) {
	in := sampleRecord("no-lay")
	delete(in.Levels, content.TierLay)
	_, err := Validate(content.EntryFor(in), nil)
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "levels[1]" {
		t.Fatalf("expected missing levels[1], got %v", err)
	}
}

func TestValidateLevelKeys(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		check func(t *testing.T, problems []error)
	}{
		{
			name: "mixed scheme",
			doc: `{"id":"m","type":"topic","name":"M","levels":{
				"1":{"summary":"a","explanation":"b"},
				"3":{"summary":"a","explanation":"b"},
				"expert":{"summary":"a","explanation":"b"}}}`,
			check: func(t *testing.T, problems []error) {
				for _, p := range problems {
					if _, ok := p.(*MixedSchemeError); ok {
						return
					}
				}
				t.Fatalf("expected MixedSchemeError, got %v", problems)
			},
		},
		{
			name: "unknown key",
			doc: `{"id":"u","type":"topic","name":"U","levels":{
				"1":{"summary":"a","explanation":"b"},
				"novice":{"summary":"a","explanation":"b"}}}`,
			check: func(t *testing.T, problems []error) {
				if len(problems) != 1 {
					t.Fatalf("expected one problem, got %v", problems)
				}
				ut, ok := problems[0].(*UnknownTierError)
				if !ok || ut.Key != "novice" {
					t.Fatalf("expected UnknownTierError{novice}, got %v", problems[0])
				}
			},
		},
		{
			name: "two keys for one tier",
			doc: `{"id":"d","type":"topic","name":"D","levels":{
				"1":{"summary":"a","explanation":"b"},
				"01":{"summary":"c","explanation":"d"}}}`,
			check: func(t *testing.T, problems []error) {
				if len(problems) != 1 {
					t.Fatalf("expected one problem, got %v", problems)
				}
				dt, ok := problems[0].(*DuplicateTierError)
				if !ok || dt.Tier != content.TierLay || len(dt.Keys) != 2 || dt.Keys[0] != "01" || dt.Keys[1] != "1" {
					t.Fatalf("expected DuplicateTierError for tier 1, got %v", problems[0])
				}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := content.Decode([]byte(tc.doc))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			_, err = Validate(e, nil)
			tc.check(t, problemsOf(t, err))
		})
	}
}

func TestValidateLegacyDocument(t *testing.T) {
	doc := `{
		"id": "teratogens",
		"title": "Teratogens",
		"category": "embryology",
		"levels": {
			"1": {"description": "Basics", "content": "# Intro"},
			"advanced": {"description": "", "content": "# Counseling"}
		}
	}`
	e, err := content.Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = Validate(e, nil)
	problems := problemsOf(t, err)
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
	mf, ok := problems[0].(*MissingFieldError)
	if !ok || mf.Field != "levels[advanced].description" {
		t.Fatalf("unexpected problem: %v", problems[0])
	}

	e.Legacy.Levels[content.TierAdvanced] = content.LegacyLevel{Description: "Counseling", Content: "# Counseling"}
	rec, err := Validate(e, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rec.LevelScheme != content.SchemeNamed || rec.Type != content.TypeTopic {
		t.Fatalf("unexpected canonical record: scheme=%q type=%q", rec.LevelScheme, rec.Type)
	}
	if rec.Levels[content.TierAdvanced].Summary != "Counseling" {
		t.Fatalf("advanced level not carried over: %+v", rec.Levels[content.TierAdvanced])
	}
}

func TestValidateJSONRoundTrip(t *testing.T) {
	first, err := Validate(content.EntryFor(sampleRecord("condition-hypoglycemia")), nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	e, err := content.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	second, err := Validate(e, nil)
	if err != nil {
		t.Fatalf("Validate after round trip: %v", err)
	}
	again, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(raw, again) {
		t.Fatalf("round trip changed record:\nfirst:  %s\nsecond: %s", raw, again)
	}
}

func TestLintWarnings(t *testing.T) {
	rec := sampleRecord("lint")
	rec.NameEs = ""
	rec.Tags.Systems = []string{"endocrine", "ICD-11:not a code"}
	rec.Tags.ExamRelevance = &content.ExamRelevance{USMLE: true, Unknown: []string{"mcat"}}
	lay := rec.Levels[content.TierLay]
	lay.ClinicalNotes = "TODO: add dosing table"
	rec.Levels[content.TierLay] = lay

	issues := Lint(rec)
	want := map[string]bool{
		"missing Spanish name (nameEs)":                    false,
		"level 1: clinicalNotes contains placeholder text": false,
		"missing complexity levels 3, 4, 5":                false,
		`potentially invalid ICD-11 code "not a code"`:     false,
		`unknown exam type "mcat" in examRelevance`:        false,
	}
	for _, is := range issues {
		if is.Severity != SeverityWarning {
			t.Fatalf("lint must only warn, got %+v", is)
		}
		if _, ok := want[is.Message]; ok {
			want[is.Message] = true
		}
	}
	for msg, seen := range want {
		if !seen {
			t.Fatalf("missing lint warning %q in %+v", msg, issues)
		}
	}
}
