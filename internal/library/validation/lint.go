package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding for reports. Validation problems become errors;
// Lint findings are warnings and never block registration.
type Issue struct {
	RecordID string   `json:"recordId"`
	Source   string   `json:"source,omitempty"`
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

var (
	placeholderRE = regexp.MustCompile(`(?i)\b(todo|fixme|placeholder)\b`)
	icd11RE       = regexp.MustCompile(`^[A-Z0-9]\w{1,3}(\.[A-Z0-9]{1,3})?$`)
)

// Lint reports quality warnings on a validated record.
func Lint(rec *content.EducationalContent) []Issue {
	if rec == nil {
		return nil
	}
	var out []Issue
	warn := func(category, format string, args ...any) {
		out = append(out, Issue{
			RecordID: rec.ID,
			Severity: SeverityWarning,
			Category: category,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if blank(rec.NameEs) {
		warn("content_quality", "missing Spanish name (nameEs)")
	}
	if placeholderRE.MatchString(rec.Name) || placeholderRE.MatchString(rec.NameEs) {
		warn("content_quality", "name contains placeholder text")
	}

	var missing []string
	for _, t := range content.AllTiers {
		lv, ok := rec.Levels[t]
		if !ok {
			missing = append(missing, t.String())
			continue
		}
		for _, f := range [][2]string{
			{"summary", lv.Summary},
			{"explanation", lv.Explanation},
			{"clinicalNotes", lv.ClinicalNotes},
		} {
			if placeholderRE.MatchString(f[1]) {
				warn("content_quality", "level %d: %s contains placeholder text", t, f[0])
			}
		}
		if len(lv.KeyTerms) == 0 && len(lv.Flashcards) == 0 {
			warn("level_content", "level %d: no key terms", t)
		}
	}
	if len(missing) > 0 {
		warn("interface_compliance", "missing complexity levels %s", strings.Join(missing, ", "))
	}

	for _, sys := range rec.Tags.Systems {
		code, ok := strings.CutPrefix(sys, "ICD-11:")
		if !ok {
			continue
		}
		code = strings.TrimSpace(code)
		if !icd11RE.MatchString(code) {
			warn("content_quality", "potentially invalid ICD-11 code %q", code)
		}
	}
	if er := rec.Tags.ExamRelevance; er != nil {
		for _, k := range er.Unknown {
			warn("metadata", "unknown exam type %q in examRelevance", k)
		}
	}
	return out
}

// Issues flattens a validation error into report issues.
func Issues(err error, source string) []Issue {
	if err == nil {
		return nil
	}
	verr, ok := err.(*Error)
	if !ok {
		var id string
		if dup, ok := err.(*content.DuplicateIDError); ok {
			id = dup.ID
		}
		return []Issue{{RecordID: id, Source: source, Severity: SeverityError, Category: categoryOf(err), Message: err.Error()}}
	}
	out := make([]Issue, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		out = append(out, Issue{
			RecordID: verr.RecordID,
			Source:   firstNonEmpty(verr.Source, source),
			Severity: SeverityError,
			Category: categoryOf(p),
			Message:  p.Error(),
		})
	}
	return out
}

func categoryOf(err error) string {
	switch err.(type) {
	case *MissingFieldError:
		return "missing_field"
	case *EmptyLevelsError:
		return "empty_levels"
	case *MalformedEntryError:
		return "malformed_entry"
	case *UnknownTierError, *MixedSchemeError:
		return "level_keys"
	case *InvalidValueError:
		return "invalid_value"
	case *content.DuplicateIDError:
		return "duplicate_id"
	default:
		return "decode"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
