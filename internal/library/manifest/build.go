package manifest

import (
	"context"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/store"
	"github.com/yungbote/medlibrary-backend/internal/library/validation"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

const defaultDecodeConcurrency = 8

// Report summarizes one build. A rejected document never stops the build.
type Report struct {
	Accepted []string            `json:"accepted"`
	Rejected []string            `json:"rejected"`
	Issues   []validation.Issue  `json:"issues"`
	Dangling []store.DanglingRef `json:"dangling"`
	Sources  map[string]string   `json:"-"`
}

func (r *Report) Errors() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == validation.SeverityError {
			n++
		}
	}
	return n
}

func (r *Report) Warnings() int { return len(r.Issues) - r.Errors() }

type BuildOptions struct {
	Concurrency int
	Lint        bool
	Log         *logger.Logger
}

// Build reads every enabled document of m from fsys, decoding concurrently,
// then validates and registers them one by one in manifest order. The
// returned store is not sealed.
func Build(ctx context.Context, fsys fs.FS, m *Manifest, opts BuildOptions) (*store.Store, *Report, error) {
	paths := m.Enabled()
	entries := make([]content.Entry, len(paths))
	decodeErrs := make([]error, len(paths))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultDecodeConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i], decodeErrs[i] = ReadDocument(fsys, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("decode content documents: %w", err)
	}

	st, report := Assemble(entries, decodeErrs, paths, opts)
	return st, report, nil
}

// Assemble validates and registers already decoded entries in order. errs
// and sources may be nil; when set they line up with entries and a non-nil
// error rejects its entry without validation.
func Assemble(entries []content.Entry, errs []error, sources []string, opts BuildOptions) (*store.Store, *Report) {
	st := store.New()
	report := &Report{Sources: map[string]string{}}
	log := opts.Log

	for i, e := range entries {
		source := e.Source
		if source == "" && i < len(sources) {
			source = sources[i]
		}
		if i < len(errs) && errs[i] != nil {
			report.Rejected = append(report.Rejected, source)
			report.Issues = append(report.Issues, validation.Issues(errs[i], source)...)
			if log != nil {
				log.Warn("content document rejected", "source", source, "error", errs[i])
			}
			continue
		}

		rec, err := validation.Validate(e, st)
		if err == nil {
			err = st.Register(rec)
		}
		if err != nil {
			report.Rejected = append(report.Rejected, source)
			report.Issues = append(report.Issues, validation.Issues(err, source)...)
			if log != nil {
				log.Warn("content record rejected", "source", source, "record_id", e.ID(), "error", err)
			}
			continue
		}

		report.Accepted = append(report.Accepted, rec.ID)
		report.Sources[rec.ID] = source
		if opts.Lint {
			for _, is := range validation.Lint(rec) {
				is.Source = source
				report.Issues = append(report.Issues, is)
			}
		}
	}

	report.Dangling = st.DanglingReferences()
	if log != nil {
		log.Info("content store assembled",
			"accepted", len(report.Accepted),
			"rejected", len(report.Rejected),
			"dangling", len(report.Dangling),
		)
	}
	return st, report
}
