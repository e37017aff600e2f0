package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	redisbus "github.com/yungbote/medlibrary-backend/internal/clients/redis"
	"github.com/yungbote/medlibrary-backend/internal/data/graph"
	"github.com/yungbote/medlibrary-backend/internal/data/repos"
	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/levels"
	"github.com/yungbote/medlibrary-backend/internal/library/manifest"
	"github.com/yungbote/medlibrary-backend/internal/library/store"
	"github.com/yungbote/medlibrary-backend/internal/observability"
	"github.com/yungbote/medlibrary-backend/internal/platform/ctxutil"
	"github.com/yungbote/medlibrary-backend/internal/platform/dbctx"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/platform/neo4jdb"
)

const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

var ErrNoMirror = errors.New("content mirror database not configured")

type LibraryConfig struct {
	// Source is one of SourceEmbedded, SourceDir or SourcePostgres.
	Source          string
	FS              fs.FS
	ManifestName    string
	VisibleStatuses []string
	Instance        string
	Concurrency     int
	Lint            bool
}

// LevelView is one level of a record as served to a reader.
type LevelView struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Requested content.Tier         `json:"requestedTier"`
	Served    content.Tier         `json:"servedTier"`
	FellBack  *levels.FellBack     `json:"fellBack,omitempty"`
	Level     content.LevelContent `json:"level"`
}

type ReloadResult struct {
	Generation string    `json:"generation"`
	Source     string    `json:"source"`
	Records    int       `json:"records"`
	Rejected   int       `json:"rejected"`
	Errors     int       `json:"errors"`
	Warnings   int       `json:"warnings"`
	Dangling   int       `json:"dangling"`
	BuiltAt    time.Time `json:"builtAt"`
}

type MirrorResult struct {
	Generation string `json:"generation"`
	Upserted   int    `json:"upserted"`
	Deleted    int64  `json:"deleted"`
	// Total is the row count of the mirror once the write committed.
	Total int64 `json:"total"`
}

// RelatedFilter narrows Related. Zero fields match everything.
type RelatedFilter struct {
	Relationship content.Relationship
	TargetType   content.ContentType
}

// ParseRelatedFilter checks raw query values against the closed sets.
func ParseRelatedFilter(relationship, targetType string) (RelatedFilter, error) {
	f := RelatedFilter{
		Relationship: content.Relationship(strings.ToLower(strings.TrimSpace(relationship))),
		TargetType:   content.ContentType(strings.ToLower(strings.TrimSpace(targetType))),
	}
	if f.Relationship != "" && !slices.Contains(content.Relationships, f.Relationship) {
		return RelatedFilter{}, &content.InvalidFilterError{Field: "relationship", Value: relationship}
	}
	if f.TargetType != "" && !slices.Contains(content.ContentTypes, f.TargetType) {
		return RelatedFilter{}, &content.InvalidFilterError{Field: "targetType", Value: targetType}
	}
	return f, nil
}

func (f RelatedFilter) match(r store.Resolution) bool {
	if f.Relationship != "" && r.Relationship != f.Relationship {
		return false
	}
	if f.TargetType == "" {
		return true
	}
	typ := r.TargetType
	if typ == "" && r.Record != nil {
		typ = r.Record.Type
	}
	return typ == f.TargetType
}

type LibraryService interface {
	Reload(ctx context.Context) (*ReloadResult, error)
	HandleReloadNotice(ctx context.Context, n redisbus.ReloadNotice)
	Snapshot() *store.Snapshot
	Audit() *manifest.Report
	// Loaded reports whether a reload has ever succeeded.
	Loaded() bool

	List(ctx context.Context) []*content.EducationalContent
	Get(ctx context.Context, id string) (*content.EducationalContent, error)
	Level(ctx context.Context, id, tier string) (*LevelView, error)
	FindByTag(ctx context.Context, category, value string) []*content.EducationalContent
	SearchNames(ctx context.Context, query string) []*content.EducationalContent
	Related(ctx context.Context, id string, filter RelatedFilter) ([]store.Resolution, error)

	Mirror(ctx context.Context) (*MirrorResult, error)
	ProjectGraph(ctx context.Context) error
}

// libraryState pairs a snapshot with the report of the build that produced
// it. Readers load it once and never see one without the other.
type libraryState struct {
	snap   *store.Snapshot
	report *manifest.Report
	loaded bool
}

type libraryService struct {
	log     *logger.Logger
	cfg     LibraryConfig
	visible map[content.Status]bool

	state    atomic.Pointer[libraryState]
	reloadMu sync.Mutex

	db    *gorm.DB
	repo  repos.ContentRecordRepo
	neo   *neo4jdb.Client
	bus   redisbus.ReloadBus
	clock func() time.Time
}

// NewLibraryService builds an empty library; call Reload to fill it. db, repo,
// neo and bus are optional.
func NewLibraryService(
	log *logger.Logger,
	cfg LibraryConfig,
	db *gorm.DB,
	repo repos.ContentRecordRepo,
	neo *neo4jdb.Client,
	bus redisbus.ReloadBus,
) LibraryService {
	if strings.TrimSpace(cfg.Source) == "" {
		cfg.Source = SourceEmbedded
	}
	visible := map[content.Status]bool{}
	statuses := cfg.VisibleStatuses
	if len(statuses) == 0 {
		statuses = []string{string(content.StatusPublished)}
	}
	for _, s := range statuses {
		visible[content.Status(strings.ToLower(strings.TrimSpace(s)))] = true
	}
	ls := &libraryService{
		log:     log.With("service", "LibraryService"),
		cfg:     cfg,
		visible: visible,
		db:      db,
		repo:    repo,
		neo:     neo,
		bus:     bus,
		clock:   time.Now,
	}
	ls.state.Store(&libraryState{
		snap:   store.NewSnapshot(store.New()),
		report: &manifest.Report{Sources: map[string]string{}},
	})
	return ls
}

// Reload rebuilds the library and announces the new generation on the bus.
func (ls *libraryService) Reload(ctx context.Context) (*ReloadResult, error) {
	return ls.reload(ctx, true)
}

func (ls *libraryService) reload(ctx context.Context, announce bool) (*ReloadResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "library.reload")
	defer span.End()
	span.SetAttributes(attribute.String("library.source", ls.cfg.Source))

	ls.reloadMu.Lock()
	defer ls.reloadMu.Unlock()

	st, report, err := ls.build(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	snap := store.NewSnapshot(st)
	ls.state.Store(&libraryState{snap: snap, report: report, loaded: true})

	res := &ReloadResult{
		Generation: snap.Generation,
		Source:     ls.cfg.Source,
		Records:    snap.Store.Len(),
		Rejected:   len(report.Rejected),
		Errors:     report.Errors(),
		Warnings:   report.Warnings(),
		Dangling:   len(report.Dangling),
		BuiltAt:    snap.BuiltAt,
	}
	span.SetAttributes(
		attribute.String("library.generation", res.Generation),
		attribute.Int("library.records", res.Records),
		attribute.Int("library.rejected", res.Rejected),
	)
	ls.log.Info("content library reloaded",
		"generation", res.Generation,
		"source", res.Source,
		"records", res.Records,
		"rejected", res.Rejected,
		"warnings", res.Warnings,
		"dangling", res.Dangling,
	)

	if announce && ls.bus != nil {
		notice := redisbus.ReloadNotice{
			Generation: res.Generation,
			Source:     res.Source,
			Instance:   ls.cfg.Instance,
			Records:    res.Records,
			At:         res.BuiltAt,
		}
		if err := ls.bus.Publish(ctx, notice); err != nil {
			ls.log.Warn("publish reload notice failed (continuing)", "error", err)
		}
	}
	return res, nil
}

func (ls *libraryService) build(ctx context.Context) (*store.Store, *manifest.Report, error) {
	opts := manifest.BuildOptions{
		Concurrency: ls.cfg.Concurrency,
		Lint:        ls.cfg.Lint,
		Log:         ls.log,
	}
	switch ls.cfg.Source {
	case SourceEmbedded, SourceDir:
		if ls.cfg.FS == nil {
			return nil, nil, fmt.Errorf("library source %q has no filesystem", ls.cfg.Source)
		}
		m, err := manifest.Load(ls.cfg.FS, ls.cfg.ManifestName)
		if err != nil {
			return nil, nil, err
		}
		return manifest.Build(ctx, ls.cfg.FS, m, opts)
	case SourcePostgres:
		if ls.repo == nil {
			return nil, nil, ErrNoMirror
		}
		rows, err := ls.repo.List(dbctx.Context{Ctx: ctx})
		if err != nil {
			return nil, nil, fmt.Errorf("list content records: %w", err)
		}
		entries := make([]content.Entry, len(rows))
		errs := make([]error, len(rows))
		sources := make([]string, len(rows))
		for i, row := range rows {
			sources[i] = "content_record:" + row.ID
			entries[i], errs[i] = row.Entry()
		}
		st, report := manifest.Assemble(entries, errs, sources, opts)
		return st, report, nil
	default:
		return nil, nil, fmt.Errorf("unknown library source %q", ls.cfg.Source)
	}
}

// HandleReloadNotice rebuilds when another instance announces a new
// generation. Notices from this instance are ignored, and the rebuild is not
// announced again.
func (ls *libraryService) HandleReloadNotice(ctx context.Context, n redisbus.ReloadNotice) {
	if n.Instance != "" && n.Instance == ls.cfg.Instance {
		return
	}
	ls.log.Info("reload notice received", "from", n.Instance, "generation", n.Generation, "source", n.Source)
	if _, err := ls.reload(ctx, false); err != nil {
		ls.log.Warn("reload after notice failed", "error", err)
	}
}

func (ls *libraryService) Snapshot() *store.Snapshot {
	return ls.state.Load().snap
}

func (ls *libraryService) Audit() *manifest.Report {
	return ls.state.Load().report
}

func (ls *libraryService) Loaded() bool {
	return ls.state.Load().loaded
}

func (ls *libraryService) isVisible(rec *content.EducationalContent) bool {
	return rec != nil && ls.visible[rec.Status]
}

func (ls *libraryService) List(ctx context.Context) []*content.EducationalContent {
	out := []*content.EducationalContent{}
	for rec := range ls.Snapshot().Store.All() {
		if ls.isVisible(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (ls *libraryService) Get(ctx context.Context, id string) (*content.EducationalContent, error) {
	return ls.get(ls.Snapshot().Store, id)
}

func (ls *libraryService) get(st *store.Store, id string) (*content.EducationalContent, error) {
	rec, err := st.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if !ls.isVisible(rec) {
		return nil, &content.NotFoundError{ID: id}
	}
	return rec, nil
}

func (ls *libraryService) Level(ctx context.Context, id, tier string) (*LevelView, error) {
	requested, err := content.ParseTier(tier)
	if err != nil {
		return nil, err
	}
	rec, err := ls.get(ls.Snapshot().Store, id)
	if err != nil {
		return nil, err
	}
	lv, fb, err := levels.Select(rec, requested)
	if err != nil {
		return nil, err
	}
	view := &LevelView{
		ID:        rec.ID,
		Name:      rec.Name,
		Requested: requested,
		Served:    requested,
		FellBack:  fb,
		Level:     lv,
	}
	if fb != nil {
		view.Served = fb.To
		fields := []any{
			"record_id", rec.ID,
			"requested_tier", int(fb.From),
			"served_tier", int(fb.To),
		}
		ls.log.Info("content level fell back", append(fields, ctxutil.LogFields(ctx)...)...)
	}
	return view, nil
}

func (ls *libraryService) FindByTag(ctx context.Context, category, value string) []*content.EducationalContent {
	out := []*content.EducationalContent{}
	for rec := range ls.Snapshot().Store.FindByTag(category, value) {
		if ls.isVisible(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (ls *libraryService) SearchNames(ctx context.Context, query string) []*content.EducationalContent {
	out := []*content.EducationalContent{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	for _, rec := range ls.Snapshot().Store.FindByName(query) {
		if ls.isVisible(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Related resolves the cross-references of a visible record. A target that
// exists but is hidden from readers is reported as dangling.
func (ls *libraryService) Related(ctx context.Context, id string, filter RelatedFilter) ([]store.Resolution, error) {
	st := ls.Snapshot().Store
	rec, err := ls.get(st, id)
	if err != nil {
		return nil, err
	}
	res, err := st.ResolveCrossReferences(rec.ID)
	if err != nil {
		return nil, err
	}
	out := make([]store.Resolution, 0, len(res))
	for _, r := range res {
		if r.Record != nil && !ls.isVisible(r.Record) {
			r.Record = nil
			r.Dangling = &store.Dangling{TargetID: r.TargetID}
		}
		if filter.match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Mirror writes every record of the current snapshot to the content_record
// table and removes rows for records that are gone.
func (ls *libraryService) Mirror(ctx context.Context) (*MirrorResult, error) {
	if ls.db == nil || ls.repo == nil {
		return nil, ErrNoMirror
	}
	ctx, span := observability.Tracer().Start(ctx, "library.mirror")
	defer span.End()

	state := ls.state.Load()
	snap, sources := state.snap, state.report.Sources

	var rows []*content.ContentRecord
	var ids []string
	pos := 0
	for rec := range snap.Store.All() {
		row, err := content.NewContentRecord(rec, pos, sources[rec.ID], snap.Generation)
		if err != nil {
			return nil, fmt.Errorf("mirror %s: %w", rec.ID, err)
		}
		rows = append(rows, row)
		ids = append(ids, rec.ID)
		pos++
	}

	res := &MirrorResult{Generation: snap.Generation, Upserted: len(rows)}
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := ls.repo.Upsert(dbc, rows); err != nil {
			return err
		}
		deleted, err := ls.repo.DeleteExcept(dbc, ids)
		if err != nil {
			return err
		}
		res.Deleted = deleted
		res.Total, err = ls.repo.Count(dbc)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("mirror content records: %w", err)
	}
	ls.log.Info("content mirrored", "generation", res.Generation, "upserted", res.Upserted, "deleted", res.Deleted)
	return res, nil
}

// ProjectGraph pushes the current snapshot into Neo4j. Without a configured
// client it does nothing.
func (ls *libraryService) ProjectGraph(ctx context.Context) error {
	if ls.neo == nil {
		ls.log.Debug("neo4j not configured; skipping content graph projection")
		return nil
	}
	ctx, span := observability.Tracer().Start(ctx, "library.project_graph")
	defer span.End()

	snap := ls.Snapshot()
	var records []*content.EducationalContent
	for rec := range snap.Store.All() {
		records = append(records, rec)
	}
	p := graph.BuildContentGraphPayload(records, snap.Generation, ls.clock())
	if err := graph.UpsertContentGraph(ctx, ls.neo, ls.log, snap.Generation, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("project content graph: %w", err)
	}
	return nil
}
