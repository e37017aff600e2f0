package content

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseTier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    Tier
		wantErr bool
	}{
		{raw: "1", want: TierLay},
		{raw: " 4 ", want: TierExpert},
		{raw: "intermediate", want: TierIntermediate},
		{raw: "Advanced", want: TierAdvanced},
		{raw: "expert", want: TierExpert},
		{raw: "master", want: TierMaster},
		{raw: "0", wantErr: true},
		{raw: "6", wantErr: true},
		{raw: "beginner", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseTier(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseTier(%q): expected error, got %d", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTier(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseTier(%q): got=%d want=%d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDecodeNumericDocument(t *testing.T) {
	doc := `{
		"id": "condition-hypoglycemia",
		"type": "condition",
		"name": "Hypoglycemia",
		"levels": {
			"1": {"level": 1, "summary": "Low blood sugar.", "explanation": "Body"},
			"3": {"level": 3, "summary": "Whipple triad.", "explanation": "Body"}
		},
		"tags": {"topics": ["diabetes"], "examRelevance": {"usmle": true, "mcat": true}}
	}`
	e, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if e.Current == nil || e.Legacy != nil {
		t.Fatalf("expected canonical shape, got %+v", e)
	}
	if e.Scheme != SchemeNumeric {
		t.Fatalf("scheme: got=%q want=%q", e.Scheme, SchemeNumeric)
	}
	if got := e.Current.Tiers(); len(got) != 2 || got[0] != TierLay || got[1] != TierAdvanced {
		t.Fatalf("tiers: got=%v", got)
	}
	if er := e.Current.Tags.ExamRelevance; er == nil || !er.USMLE || len(er.Unknown) != 1 || er.Unknown[0] != "mcat" {
		t.Fatalf("exam relevance: got=%+v", er)
	}
}

func TestDecodeLegacyDocument(t *testing.T) {
	doc := `{
		"id": "teratogens",
		"title": "Teratogens",
		"category": "embryology",
		"levels": {
			"1": {"title": "Intro", "description": "Basics", "content": "# Intro"},
			"intermediate": {"description": "Mechanisms", "content": "# Mechanisms"},
			"master": {"description": "Management", "content": "# Management",
				"flashcards": [{"id": "f1", "front": "Q", "back": "A"}]}
		}
	}`
	e, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !e.IsLegacy() || e.Scheme != SchemeNamed {
		t.Fatalf("expected legacy named entry, got scheme=%q legacy=%v", e.Scheme, e.IsLegacy())
	}
	if e.ID() != "teratogens" {
		t.Fatalf("ID: got=%q", e.ID())
	}

	if got := e.Legacy.Levels.Tiers(); len(got) != 3 || got[0] != TierLay || got[1] != TierIntermediate || got[2] != TierMaster {
		t.Fatalf("legacy tiers: got=%v", got)
	}

	c := e.Legacy.Canonical()
	if c.Name != "Teratogens" || c.LevelScheme != SchemeNamed {
		t.Fatalf("canonical: got name=%q scheme=%q", c.Name, c.LevelScheme)
	}
	if lv, ok := c.Levels[TierMaster]; !ok || lv.Summary != "Management" || lv.Level != 5 || len(lv.Flashcards) != 1 {
		t.Fatalf("master level: got=%+v ok=%v", lv, ok)
	}
	if len(c.Tags.Topics) != 1 || c.Tags.Topics[0] != "embryology" {
		t.Fatalf("topics: got=%v", c.Tags.Topics)
	}
}

func TestDecodeMixedSchemeIsFlagged(t *testing.T) {
	doc := `{
		"id": "mixed",
		"name": "Mixed",
		"type": "topic",
		"levels": {
			"1": {"summary": "a", "explanation": "b"},
			"2": {"summary": "a", "explanation": "b"},
			"expert": {"summary": "a", "explanation": "b"}
		}
	}`
	e, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if e.Scheme != SchemeMixed {
		t.Fatalf("scheme: got=%q want=%q", e.Scheme, SchemeMixed)
	}
	if e.Current == nil {
		t.Fatalf("expected canonical shape when name is present")
	}
}

func TestLegacyLevelMapEncodesNamedKeys(t *testing.T) {
	m := LegacyLevelMap{
		TierLay:    {Description: "a", Content: "b"},
		TierExpert: {Description: "c", Content: "d"},
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, `"1":`) || !strings.Contains(s, `"expert":`) {
		t.Fatalf("unexpected keys: %s", s)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"id": `)); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}
