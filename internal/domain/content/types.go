package content

import (
	"encoding/json"
	"sort"
)

type ContentType string

const (
	TypeStructure ContentType = "structure"
	TypeSystem    ContentType = "system"
	TypePathway   ContentType = "pathway"
	TypeProcess   ContentType = "process"
	TypeCondition ContentType = "condition"
	TypeConcept   ContentType = "concept"
	TypeTopic     ContentType = "topic"
)

var ContentTypes = []ContentType{TypeStructure, TypeSystem, TypePathway, TypeProcess, TypeCondition, TypeConcept, TypeTopic}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
)

var Statuses = []Status{StatusDraft, StatusReview, StatusPublished}

type Relationship string

const (
	RelParent  Relationship = "parent"
	RelChild   Relationship = "child"
	RelSibling Relationship = "sibling"
	RelRelated Relationship = "related"
	RelSeeAlso Relationship = "see-also"
)

var Relationships = []Relationship{RelParent, RelChild, RelSibling, RelRelated, RelSeeAlso}

type ClinicalRelevance string

const (
	RelevanceLow      ClinicalRelevance = "low"
	RelevanceMedium   ClinicalRelevance = "medium"
	RelevanceHigh     ClinicalRelevance = "high"
	RelevanceCritical ClinicalRelevance = "critical"
)

var ClinicalRelevances = []ClinicalRelevance{RelevanceLow, RelevanceMedium, RelevanceHigh, RelevanceCritical}

// LevelScheme names the tier keys a document was authored with.
type LevelScheme string

const (
	SchemeUnknown LevelScheme = ""
	SchemeNumeric LevelScheme = "numeric"
	SchemeNamed   LevelScheme = "named"
	SchemeMixed   LevelScheme = "mixed"
)

// EducationalContent is the canonical content record. Records are immutable
// once registered in a store.
type EducationalContent struct {
	ID              string           `json:"id"`
	Type            ContentType      `json:"type"`
	Name            string           `json:"name"`
	NameEs          string           `json:"nameEs,omitempty"`
	AlternateNames  []string         `json:"alternateNames,omitempty"`
	Description     string           `json:"description,omitempty"`
	LevelScheme     LevelScheme      `json:"levelScheme,omitempty"`
	Levels          LevelMap         `json:"levels"`
	Media           []Media          `json:"media"`
	Citations       []Citation       `json:"citations"`
	CrossReferences []CrossReference `json:"crossReferences"`
	Tags            Tags             `json:"tags"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
	Version         int              `json:"version"`
	Status          Status           `json:"status"`
	Contributors    []string         `json:"contributors,omitempty"`
}

// Tiers returns the tiers present on the record in ascending order.
func (c *EducationalContent) Tiers() []Tier {
	if c == nil {
		return nil
	}
	return c.Levels.Tiers()
}

type LevelContent struct {
	Level                   int         `json:"level"`
	Title                   string      `json:"title,omitempty"`
	Summary                 string      `json:"summary"`
	Explanation             string      `json:"explanation"`
	KeyTerms                []KeyTerm   `json:"keyTerms,omitempty"`
	Analogies               []string    `json:"analogies,omitempty"`
	Examples                []string    `json:"examples,omitempty"`
	PatientCounselingPoints []string    `json:"patientCounselingPoints,omitempty"`
	ClinicalNotes           string      `json:"clinicalNotes,omitempty"`
	Flashcards              []Flashcard `json:"flashcards,omitempty"`
	Quiz                    []QuizItem  `json:"quiz,omitempty"`
}

type KeyTerm struct {
	Term          string `json:"term"`
	Definition    string `json:"definition"`
	Pronunciation string `json:"pronunciation,omitempty"`
}

type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type QuizItem struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Media struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type Citation struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Authors []string `json:"authors,omitempty"`
	Source  string   `json:"source,omitempty"`
	URL     string   `json:"url,omitempty"`
	License string   `json:"license,omitempty"`
}

// CrossReference is a weak, directed link to another record by id. The target
// is not guaranteed to exist.
type CrossReference struct {
	TargetID     string       `json:"targetId"`
	TargetType   ContentType  `json:"targetType,omitempty"`
	Relationship Relationship `json:"relationship"`
	Label        string       `json:"label,omitempty"`
}

type Tags struct {
	Systems           []string          `json:"systems,omitempty"`
	Topics            []string          `json:"topics,omitempty"`
	Keywords          []string          `json:"keywords,omitempty"`
	ClinicalRelevance ClinicalRelevance `json:"clinicalRelevance,omitempty"`
	ExamRelevance     *ExamRelevance    `json:"examRelevance,omitempty"`
}

type ExamRelevance struct {
	USMLE bool     `json:"usmle,omitempty"`
	NBME  bool     `json:"nbme,omitempty"`
	Shelf []string `json:"shelf,omitempty"`

	// Unknown holds exam keys outside usmle/nbme/shelf, kept for linting.
	Unknown []string `json:"-"`
}

func (e *ExamRelevance) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = ExamRelevance{}
	for k, v := range raw {
		switch k {
		case "usmle":
			if err := json.Unmarshal(v, &e.USMLE); err != nil {
				return err
			}
		case "nbme":
			if err := json.Unmarshal(v, &e.NBME); err != nil {
				return err
			}
		case "shelf":
			if err := json.Unmarshal(v, &e.Shelf); err != nil {
				return err
			}
		default:
			e.Unknown = append(e.Unknown, k)
		}
	}
	sort.Strings(e.Unknown)
	return nil
}

// LevelMap holds levels keyed by tier. It decodes both numeric and named keys
// and always encodes numeric keys. Keys that are not tiers are dropped here;
// Decode keeps the authored keys so validation can report them.
type LevelMap map[Tier]LevelContent

func (m LevelMap) Tiers() []Tier { return sortedTiers(m) }

func sortedTiers[V any](m map[Tier]V) []Tier {
	out := make([]Tier, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *LevelMap) UnmarshalJSON(b []byte) error {
	var raw map[string]LevelContent
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(LevelMap, len(raw))
	for k, v := range raw {
		t, err := ParseTier(k)
		if err != nil {
			continue
		}
		out[t] = v
	}
	*m = out
	return nil
}

// LegacyEducationalContent is the older authored shape with named tiers.
type LegacyEducationalContent struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Category    string         `json:"category,omitempty"`
	Subcategory string         `json:"subcategory,omitempty"`
	Description string         `json:"description,omitempty"`
	Levels      LegacyLevelMap `json:"levels"`
}

type LegacyLevel struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Content     string      `json:"content"`
	Flashcards  []Flashcard `json:"flashcards,omitempty"`
	Quiz        []QuizItem  `json:"quiz,omitempty"`
}

// LegacyLevelMap encodes with the named keys (1, intermediate, ... master).
type LegacyLevelMap map[Tier]LegacyLevel

func (m LegacyLevelMap) Tiers() []Tier { return sortedTiers(m) }

func (m LegacyLevelMap) MarshalJSON() ([]byte, error) {
	raw := make(map[string]LegacyLevel, len(m))
	for t, v := range m {
		raw[t.LegacyKey()] = v
	}
	return json.Marshal(raw)
}

func (m *LegacyLevelMap) UnmarshalJSON(b []byte) error {
	var raw map[string]LegacyLevel
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(LegacyLevelMap, len(raw))
	for k, v := range raw {
		t, err := ParseTier(k)
		if err != nil {
			continue
		}
		out[t] = v
	}
	*m = out
	return nil
}
