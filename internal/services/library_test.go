package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisbus "github.com/yungbote/medlibrary-backend/internal/clients/redis"
	"github.com/yungbote/medlibrary-backend/internal/data/repos"
	"github.com/yungbote/medlibrary-backend/internal/data/repos/testutil"
	"github.com/yungbote/medlibrary-backend/internal/domain/content"
	"github.com/yungbote/medlibrary-backend/internal/library/corpus"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type recordingBus struct {
	mu      sync.Mutex
	notices []redisbus.ReloadNotice
}

func (b *recordingBus) Publish(_ context.Context, n redisbus.ReloadNotice) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
	return nil
}

func (b *recordingBus) StartForwarder(context.Context, func(redisbus.ReloadNotice)) error {
	return nil
}

func (b *recordingBus) LastNotice(context.Context) (*redisbus.ReloadNotice, error) {
	return nil, nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices)
}

func embeddedLibrary(t *testing.T, visible ...string) LibraryService {
	t.Helper()
	svc := NewLibraryService(logger.Nop(), LibraryConfig{
		Source:          SourceEmbedded,
		FS:              corpus.Embedded(),
		VisibleStatuses: visible,
		Instance:        "test-1",
	}, nil, nil, nil, nil)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return svc
}

// emptyCorpus builds cleanly but registers nothing: its only document is
// rejected.
func emptyCorpus() fstest.MapFS {
	return fstest.MapFS{
		"manifest.yaml": {Data: []byte("library: empty\ndocuments:\n  - path: broken.json\n")},
		"broken.json":   {Data: []byte("{")},
	}
}

func ids(recs []*content.EducationalContent) map[string]bool {
	out := map[string]bool{}
	for _, r := range recs {
		out[r.ID] = true
	}
	return out
}

func TestLibraryServiceVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := embeddedLibrary(t)
	if got := svc.Snapshot().Store.Len(); got != 8 {
		t.Fatalf("store keeps every valid record: got=%d want=8", got)
	}
	list := svc.List(ctx)
	if len(list) != 7 || ids(list)["concept-glycemic-index"] {
		t.Fatalf("List should hide the draft record: got=%d", len(list))
	}
	if _, err := svc.Get(ctx, "concept-glycemic-index"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("Get(draft): want ErrNotFound, got %v", err)
	}
	if ids(svc.FindByTag(ctx, "topics", "diabetes"))["concept-glycemic-index"] {
		t.Fatal("FindByTag returned a hidden record")
	}

	all := embeddedLibrary(t, "published", "Draft")
	if len(all.List(ctx)) != 8 {
		t.Fatalf("all statuses visible: got=%d", len(all.List(ctx)))
	}
	if !ids(all.FindByTag(ctx, "topic", "DIABETES"))["concept-glycemic-index"] {
		t.Fatal("FindByTag should include the draft when drafts are visible")
	}
}

func TestLibraryServiceLevel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := embeddedLibrary(t)

	view, err := svc.Level(ctx, "topic-teratogens", "expert")
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if view.Requested != content.TierExpert || view.Served != content.TierAdvanced || view.FellBack == nil {
		t.Fatalf("expected fallback 4 -> 3, got %+v", view)
	}

	view, err = svc.Level(ctx, "condition-hypoglycemia", "2")
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if view.FellBack != nil || view.Served != content.TierIntermediate || view.Level.Level != 2 {
		t.Fatalf("exact tier expected, got %+v", view)
	}

	var tierErr *content.InvalidTierError
	if _, err := svc.Level(ctx, "condition-hypoglycemia", "9"); !errors.As(err, &tierErr) {
		t.Fatalf("want InvalidTierError, got %v", err)
	}
	if _, err := svc.Level(ctx, "nope", "1"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestLibraryServiceRelated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := embeddedLibrary(t)
	res, err := svc.Related(ctx, "condition-hypoglycemia", RelatedFilter{})
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("one resolution per cross-reference: got=%d", len(res))
	}
	if !res[0].Resolved() || res[2].Resolved() || res[2].Dangling == nil || res[2].TargetID != "condition-insulinoma" {
		t.Fatalf("unexpected resolutions: %+v", res)
	}

	drafts := embeddedLibrary(t, "draft")
	res, err = drafts.Related(ctx, "concept-glycemic-index", RelatedFilter{})
	if err != nil {
		t.Fatalf("Related(draft): %v", err)
	}
	for _, r := range res {
		if r.TargetID == "condition-hypoglycemia" && (r.Resolved() || r.Dangling == nil) {
			t.Fatalf("hidden target should be reported as dangling: %+v", r)
		}
	}
}

func TestLibraryServiceRelatedFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := embeddedLibrary(t)

	f, err := ParseRelatedFilter("", "Process")
	if err != nil {
		t.Fatalf("ParseRelatedFilter: %v", err)
	}
	res, err := svc.Related(ctx, "condition-hypoglycemia", f)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(res) != 1 || res[0].TargetID != "process-insulin-signaling" {
		t.Fatalf("targetType filter: got %+v", res)
	}

	f, _ = ParseRelatedFilter("parent", "")
	if res, _ := svc.Related(ctx, "condition-hypoglycemia", f); len(res) != 0 {
		t.Fatalf("relationship filter: got %+v", res)
	}

	var filterErr *content.InvalidFilterError
	if _, err := ParseRelatedFilter("cousin", ""); !errors.As(err, &filterErr) || filterErr.Field != "relationship" {
		t.Fatalf("want InvalidFilterError, got %v", err)
	}
	if _, err := ParseRelatedFilter("", "organ"); !errors.As(err, &filterErr) || filterErr.Field != "targetType" {
		t.Fatalf("want InvalidFilterError, got %v", err)
	}
}

func TestLibraryServiceSearchNames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := embeddedLibrary(t)

	if got := svc.SearchNames(ctx, "   "); len(got) != 0 {
		t.Fatalf("blank query should match nothing, got %d", len(got))
	}
	got := svc.SearchNames(ctx, "hypoglycemia")
	if len(got) == 0 || got[0].ID != "condition-hypoglycemia" {
		t.Fatalf("exact name should rank first: %v", ids(got))
	}
}

func TestLibraryServiceReloadNotices(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bus := &recordingBus{}
	svc := NewLibraryService(logger.Nop(), LibraryConfig{
		FS:       corpus.Embedded(),
		Instance: "api-1",
	}, nil, nil, nil, bus)

	first, err := svc.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if bus.count() != 1 || bus.notices[0].Generation != first.Generation || bus.notices[0].Instance != "api-1" {
		t.Fatalf("reload should publish one notice: %+v", bus.notices)
	}

	svc.HandleReloadNotice(ctx, redisbus.ReloadNotice{Instance: "api-1", Generation: first.Generation})
	if bus.count() != 1 {
		t.Fatal("own notices must not trigger a reload")
	}

	svc.HandleReloadNotice(ctx, redisbus.ReloadNotice{Instance: "api-2", Generation: "other"})
	if svc.Snapshot().Generation == first.Generation {
		t.Fatal("foreign notice should trigger a reload")
	}
	if bus.count() != 1 {
		t.Fatalf("a reload caused by a notice must not be announced again: %+v", bus.notices)
	}
}

func TestReloadNoticesSettleAcrossInstances(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	instance := func(name string) (LibraryService, redisbus.ReloadBus, *atomic.Int32) {
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		bus := redisbus.NewReloadBusWithClient(logger.Nop(), client, "")
		t.Cleanup(func() { _ = bus.Close() })
		svc := NewLibraryService(logger.Nop(), LibraryConfig{FS: corpus.Embedded(), Instance: name}, nil, nil, nil, bus)
		var seen atomic.Int32
		require.NoError(t, bus.StartForwarder(ctx, func(n redisbus.ReloadNotice) {
			seen.Add(1)
			svc.HandleReloadNotice(ctx, n)
		}))
		return svc, bus, &seen
	}
	a, busA, seenA := instance("api-a")
	b, _, seenB := instance("api-b")

	first, err := a.Reload(ctx)
	require.NoError(t, err)
	require.Eventually(t, b.Loaded, 2*time.Second, 10*time.Millisecond)
	genB := b.Snapshot().Generation

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), seenA.Load(), "instance a should only see its own notice")
	assert.Equal(t, int32(1), seenB.Load(), "instance b should see exactly one notice")
	assert.Equal(t, first.Generation, a.Snapshot().Generation)
	assert.Equal(t, genB, b.Snapshot().Generation)

	last, err := busA.LastNotice(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, first.Generation, last.Generation)
}

func TestLibraryServiceLoaded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewLibraryService(logger.Nop(), LibraryConfig{Source: SourcePostgres}, nil, nil, nil, nil)
	if svc.Loaded() {
		t.Fatal("a fresh service has not loaded")
	}
	if _, err := svc.Reload(ctx); err == nil || svc.Loaded() {
		t.Fatal("a failed reload must not mark the library loaded")
	}

	empty := NewLibraryService(logger.Nop(), LibraryConfig{FS: emptyCorpus()}, nil, nil, nil, nil)
	res, err := empty.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload(empty): %v", err)
	}
	if res.Records != 0 || !empty.Loaded() {
		t.Fatalf("an empty library that reloaded cleanly is loaded: %+v", res)
	}
}

func TestReloadKeepsReportWithSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewLibraryService(logger.Nop(), LibraryConfig{FS: corpus.Embedded()}, nil, nil, nil, nil).(*libraryService)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = svc.Reload(ctx)
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		st := svc.state.Load()
		if len(st.report.Accepted) != st.snap.Store.Len() {
			t.Fatalf("report and snapshot out of step: accepted=%d stored=%d", len(st.report.Accepted), st.snap.Store.Len())
		}
		select {
		case <-done:
			return
		default:
		}
	}
}

func TestLibraryServiceMirrorAndPostgresSource(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := logger.Nop()
	repo := repos.NewContentRecordRepo(db, log)

	src := NewLibraryService(log, LibraryConfig{FS: corpus.Embedded()}, db, repo, nil, nil)
	if _, err := src.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	res, err := src.Mirror(ctx)
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	if res.Upserted != 8 || res.Deleted != 0 || res.Total != 8 {
		t.Fatalf("Mirror: got %+v", res)
	}
	if err := src.ProjectGraph(ctx); err != nil {
		t.Fatalf("ProjectGraph without neo4j should be a no-op: %v", err)
	}

	mirror := NewLibraryService(log, LibraryConfig{Source: SourcePostgres}, db, repo, nil, nil)
	out, err := mirror.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload(postgres): %v", err)
	}
	if out.Records != 8 || out.Rejected != 0 {
		t.Fatalf("Reload(postgres): got %+v", out)
	}
	rec, err := mirror.Get(ctx, "topic-teratogens")
	if err != nil {
		t.Fatalf("Get from mirror: %v", err)
	}
	if rec.LevelScheme != content.SchemeNamed {
		t.Fatalf("level scheme should survive the mirror: got=%q", rec.LevelScheme)
	}

	var order []string
	for r := range mirror.Snapshot().Store.All() {
		order = append(order, r.ID)
	}
	var want []string
	for r := range src.Snapshot().Store.All() {
		want = append(want, r.ID)
	}
	if len(order) != len(want) || order[0] != want[0] || order[len(order)-1] != want[len(want)-1] {
		t.Fatalf("mirror should keep registration order: got=%v want=%v", order, want)
	}
}

func TestLibraryServiceMissingSources(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewLibraryService(logger.Nop(), LibraryConfig{Source: SourcePostgres}, nil, nil, nil, nil)
	if _, err := svc.Reload(ctx); !errors.Is(err, ErrNoMirror) {
		t.Fatalf("Reload(postgres) without repo: want ErrNoMirror, got %v", err)
	}
	if _, err := svc.Mirror(ctx); !errors.Is(err, ErrNoMirror) {
		t.Fatalf("Mirror without db: want ErrNoMirror, got %v", err)
	}
	if svc.Snapshot().Store.Len() != 0 {
		t.Fatal("failed reload must keep the previous (empty) snapshot")
	}

	bad := NewLibraryService(logger.Nop(), LibraryConfig{Source: "s3"}, nil, nil, nil, nil)
	if _, err := bad.Reload(ctx); err == nil {
		t.Fatal("unknown source should fail")
	}
}
