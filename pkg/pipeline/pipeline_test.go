package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/casegraph/casegraph/pkg/cache"
	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/graph"
)

// stubSource serves a fixed network and counts fetches.
type stubSource struct {
	network graph.Network
	err     error
	calls   int
}

func (s *stubSource) FetchNetwork(ctx context.Context, caseID string) (graph.Network, error) {
	s.calls++
	if s.err != nil {
		return graph.Network{}, s.err
	}
	n := s.network.Clone()
	n.CaseID = caseID
	return n, nil
}

func testSource() *stubSource {
	return &stubSource{network: graph.Network{
		Entities: []graph.Entity{
			{ID: "boss", Type: graph.EntityPerson, Risk: graph.RiskCritical, Suspect: true, ClusterID: "ring-1"},
			{ID: "mule", Type: graph.EntityMuleAccount, Risk: graph.RiskHigh, ClusterID: "ring-1"},
			{ID: "victim", Type: graph.EntityPerson, Risk: graph.RiskLow, Victim: true, ClusterID: "ring-2"},
		},
		Relationships: []graph.Relationship{
			{ID: "r1", SourceID: "victim", TargetID: "mule", Type: graph.RelTransfer, Amount: 5000},
			{ID: "r2", SourceID: "boss", TargetID: "mule", Type: graph.RelCall},
		},
	}}
}

func TestExecute(t *testing.T) {
	src := testSource()
	runner := NewRunner(src, cache.NewNullCache(), nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		CaseID:  "7",
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.EntityCount != 3 || result.Stats.RelationshipCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.NetworkHash == "" {
		t.Error("missing network hash")
	}
	if len(result.Layout.Placements) != 3 {
		t.Errorf("placements = %d, want 3", len(result.Layout.Placements))
	}

	// victim and boss are roots (level 0), mule level 1.
	if result.Layout.Placements["mule"].Level != 1 {
		t.Errorf("level(mule) = %d, want 1", result.Layout.Placements["mule"].Level)
	}

	if _, ok := result.Artifacts[FormatJSON]; !ok {
		t.Error("missing json artifact")
	}
	dotOut, ok := result.Artifacts[FormatDOT]
	if !ok {
		t.Fatal("missing dot artifact")
	}
	if !strings.Contains(string(dotOut), `"boss" -> "mule"`) {
		t.Errorf("dot artifact missing edge:\n%s", dotOut)
	}
}

func TestExecuteWithFilters(t *testing.T) {
	src := testSource()
	runner := NewRunner(src, cache.NewNullCache(), nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		CaseID:   "7",
		Clusters: []string{"ring-1"},
		Formats:  []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.EntityCount != 2 {
		t.Errorf("filtered entities = %d, want 2", result.Stats.EntityCount)
	}
	// Only r2 (boss -> mule) survives; r1's source is filtered out.
	if result.Stats.RelationshipCount != 1 {
		t.Errorf("filtered relationships = %d, want 1", result.Stats.RelationshipCount)
	}
	if _, ok := result.Layout.Placements["victim"]; ok {
		t.Error("filtered entity still placed")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(testSource(), nil, nil, nil)
	ctx := context.Background()

	if _, err := runner.Execute(ctx, Options{}); !errors.Is(err, errors.ErrCodeInvalidCase) {
		t.Errorf("empty case error = %v, want INVALID_CASE", err)
	}

	_, err := runner.Execute(ctx, Options{CaseID: "7", Risks: []string{"rainbow"}})
	if !errors.Is(err, errors.ErrCodeInvalidFilter) {
		t.Errorf("bad risk error = %v, want INVALID_FILTER", err)
	}

	_, err = runner.Execute(ctx, Options{CaseID: "7", Types: []string{"hoverboard"}})
	if !errors.Is(err, errors.ErrCodeInvalidFilter) {
		t.Errorf("bad type error = %v, want INVALID_FILTER", err)
	}

	_, err = runner.Execute(ctx, Options{CaseID: "7", Formats: []string{"png"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteCaching(t *testing.T) {
	src := testSource()
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(src, fileCache, nil, nil)
	defer runner.Close()

	opts := Options{CaseID: "7", Formats: []string{FormatJSON}}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.FetchHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss everywhere: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.FetchHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit everywhere: %+v", second.CacheInfo)
	}
	if src.calls != 1 {
		t.Errorf("backend fetches = %d, want 1", src.calls)
	}
	if second.NetworkHash != first.NetworkHash {
		t.Error("network hash changed between identical runs")
	}

	// Refresh bypasses the cache.
	refreshOpts := opts
	refreshOpts.Refresh = true
	third, err := runner.Execute(ctx, refreshOpts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.FetchHit {
		t.Error("refresh run should not hit the fetch cache")
	}
	if src.calls != 2 {
		t.Errorf("backend fetches = %d, want 2 after refresh", src.calls)
	}
}

func TestExecuteSourceError(t *testing.T) {
	src := testSource()
	src.err = errors.New(errors.ErrCodeCaseNotFound, "case 7 not found")
	runner := NewRunner(src, nil, nil, nil)

	_, err := runner.Execute(context.Background(), Options{CaseID: "7"})
	if !errors.Is(err, errors.ErrCodeCaseNotFound) {
		t.Errorf("error = %v, want CASE_NOT_FOUND", err)
	}
}

func TestExecuteDefaultFormat(t *testing.T) {
	runner := NewRunner(testSource(), nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{CaseID: "7"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.Artifacts[FormatJSON]; !ok {
		t.Error("default format should be json")
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{CaseID: "7"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validate: %v", err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validate: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("formats = %v", opts.Formats)
	}
}
