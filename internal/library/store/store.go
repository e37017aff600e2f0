package store

import (
	"errors"
	"iter"
	"sort"
	"strings"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

var ErrSealed = errors.New("content store is sealed")

// Tag categories accepted by FindByTag.
const (
	TagSystems           = "systems"
	TagTopics            = "topics"
	TagKeywords          = "keywords"
	TagClinicalRelevance = "clinicalrelevance"
	TagExamRelevance     = "examrelevance"
)

var tagAliases = map[string]string{
	"system":             TagSystems,
	"topic":              TagTopics,
	"keyword":            TagKeywords,
	"clinical_relevance": TagClinicalRelevance,
	"exam_relevance":     TagExamRelevance,
	"exam":               TagExamRelevance,
}

// Store is an in-memory index of validated records. It is filled by a single
// goroutine through Register, then sealed and only read; reads on a sealed
// store are safe from any number of goroutines.
type Store struct {
	records []*content.EducationalContent
	byID    map[string]int
	byTag   map[string]map[string][]int
	sealed  bool
}

func New() *Store {
	return &Store{
		byID:  map[string]int{},
		byTag: map[string]map[string][]int{},
	}
}

// Register inserts rec. The first record with a given id wins; later ones
// fail with DuplicateIDError and leave the store untouched.
func (s *Store) Register(rec *content.EducationalContent) error {
	if s.sealed {
		return ErrSealed
	}
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return errors.New("register: record has no id")
	}
	if _, ok := s.byID[rec.ID]; ok {
		return &content.DuplicateIDError{ID: rec.ID}
	}
	pos := len(s.records)
	s.records = append(s.records, rec)
	s.byID[rec.ID] = pos
	for cat, vals := range tagValues(rec) {
		idx := s.byTag[cat]
		if idx == nil {
			idx = map[string][]int{}
			s.byTag[cat] = idx
		}
		for v := range vals {
			idx[v] = append(idx[v], pos)
		}
	}
	return nil
}

// Seal stops further registration.
func (s *Store) Seal() { s.sealed = true }

func (s *Store) Sealed() bool { return s.sealed }

func (s *Store) Len() int { return len(s.records) }

func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *Store) GetByID(id string) (*content.EducationalContent, error) {
	pos, ok := s.byID[id]
	if !ok {
		return nil, &content.NotFoundError{ID: id}
	}
	return s.records[pos], nil
}

// All yields every record in registration order.
func (s *Store) All() iter.Seq[*content.EducationalContent] {
	records := s.records
	return func(yield func(*content.EducationalContent) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}

// FindByTag yields the records carrying value under category, in
// registration order. Matching is case-insensitive. Exam relevance values are
// "usmle", "nbme" or "shelf:<exam>". The sequence can be ranged over any
// number of times and yields each record at most once.
func (s *Store) FindByTag(category, value string) iter.Seq[*content.EducationalContent] {
	var hits []int
	if idx := s.byTag[normalizeCategory(category)]; idx != nil {
		hits = idx[normalizeValue(value)]
	}
	records := s.records
	return func(yield func(*content.EducationalContent) bool) {
		for _, pos := range hits {
			if !yield(records[pos]) {
				return
			}
		}
	}
}

// Dangling marks a cross-reference whose target is not in the store.
type Dangling struct {
	TargetID string `json:"targetId"`
}

// Resolution is one cross-reference after lookup. Exactly one of Record and
// Dangling is set.
type Resolution struct {
	Relationship content.Relationship        `json:"relationship"`
	Label        string                      `json:"label,omitempty"`
	TargetID     string                      `json:"targetId"`
	TargetType   content.ContentType         `json:"targetType,omitempty"`
	Record       *content.EducationalContent `json:"-"`
	Dangling     *Dangling                   `json:"dangling,omitempty"`
}

func (r Resolution) Resolved() bool { return r.Record != nil }

// ResolveCrossReferences looks up every cross-reference of the record with
// the given id, in authored order. Missing targets come back as Dangling;
// the only error is an unknown source id.
func (s *Store) ResolveCrossReferences(id string) ([]Resolution, error) {
	rec, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	out := make([]Resolution, 0, len(rec.CrossReferences))
	for _, ref := range rec.CrossReferences {
		res := Resolution{
			Relationship: ref.Relationship,
			Label:        ref.Label,
			TargetID:     ref.TargetID,
			TargetType:   ref.TargetType,
		}
		if pos, ok := s.byID[ref.TargetID]; ok {
			res.Record = s.records[pos]
		} else {
			res.Dangling = &Dangling{TargetID: ref.TargetID}
		}
		out = append(out, res)
	}
	return out, nil
}

// DanglingRef is a broken link found by DanglingReferences.
type DanglingRef struct {
	SourceID     string               `json:"sourceId"`
	TargetID     string               `json:"targetId"`
	Relationship content.Relationship `json:"relationship"`
	Label        string               `json:"label,omitempty"`
}

// DanglingReferences lists every unresolved cross-reference in the store.
func (s *Store) DanglingReferences() []DanglingRef {
	var out []DanglingRef
	for _, rec := range s.records {
		for _, ref := range rec.CrossReferences {
			if _, ok := s.byID[ref.TargetID]; ok {
				continue
			}
			out = append(out, DanglingRef{
				SourceID:     rec.ID,
				TargetID:     ref.TargetID,
				Relationship: ref.Relationship,
				Label:        ref.Label,
			})
		}
	}
	return out
}

// FindByName matches query against name, nameEs and alternateNames. Exact
// matches come first, then prefix matches, then substring matches; ties keep
// registration order.
func (s *Store) FindByName(query string) []*content.EducationalContent {
	q := normalizeValue(query)
	if q == "" {
		return nil
	}
	type hit struct {
		rank int
		pos  int
	}
	var hits []hit
	for pos, rec := range s.records {
		best := -1
		for _, name := range names(rec) {
			n := normalizeValue(name)
			rank := -1
			switch {
			case n == q:
				rank = 0
			case strings.HasPrefix(n, q):
				rank = 1
			case strings.Contains(n, q):
				rank = 2
			}
			if rank >= 0 && (best < 0 || rank < best) {
				best = rank
			}
		}
		if best >= 0 {
			hits = append(hits, hit{rank: best, pos: pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	out := make([]*content.EducationalContent, 0, len(hits))
	for _, h := range hits {
		out = append(out, s.records[h.pos])
	}
	return out
}

func names(rec *content.EducationalContent) []string {
	out := make([]string, 0, 2+len(rec.AlternateNames))
	out = append(out, rec.Name)
	if rec.NameEs != "" {
		out = append(out, rec.NameEs)
	}
	return append(out, rec.AlternateNames...)
}

// tagValues returns the normalized, de-duplicated tag values of rec per
// category.
func tagValues(rec *content.EducationalContent) map[string]map[string]struct{} {
	out := map[string]map[string]struct{}{}
	add := func(cat string, vals ...string) {
		for _, v := range vals {
			v = normalizeValue(v)
			if v == "" {
				continue
			}
			if out[cat] == nil {
				out[cat] = map[string]struct{}{}
			}
			out[cat][v] = struct{}{}
		}
	}
	t := rec.Tags
	add(TagSystems, t.Systems...)
	add(TagTopics, t.Topics...)
	add(TagKeywords, t.Keywords...)
	add(TagClinicalRelevance, string(t.ClinicalRelevance))
	if er := t.ExamRelevance; er != nil {
		if er.USMLE {
			add(TagExamRelevance, "usmle")
		}
		if er.NBME {
			add(TagExamRelevance, "nbme")
		}
		for _, shelf := range er.Shelf {
			if strings.TrimSpace(shelf) != "" {
				add(TagExamRelevance, "shelf:"+shelf)
			}
		}
	}
	return out
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if alias, ok := tagAliases[c]; ok {
		return alias
	}
	return c
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
