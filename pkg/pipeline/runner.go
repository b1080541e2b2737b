package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/casegraph/casegraph/pkg/cache"
	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/graph/filter"
	"github.com/casegraph/casegraph/pkg/graph/layout"
	"github.com/casegraph/casegraph/pkg/render/dot"
)

// Source fetches case networks from the case-management backend.
// *casefile.Client is the production implementation.
type Source interface {
	FetchNetwork(ctx context.Context, caseID string) (graph.Network, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Source Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given source, cache, and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(source Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: source,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → filter → layout → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	n, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.CacheInfo.FetchHit = fetchHit

	r.Logger.Info("fetched network",
		"case", opts.CaseID,
		"entities", len(n.Entities),
		"relationships", len(n.Relationships),
		"cached", fetchHit,
		"duration", result.Stats.FetchTime)

	// Stage 2: Filter
	filtered := r.PrepareNetwork(n, opts)
	result.Network = filtered
	result.Stats.EntityCount = len(filtered.Entities)
	result.Stats.RelationshipCount = len(filtered.Relationships)

	// Content hash of the filtered network drives the layout cache key.
	if data, err := graph.MarshalNetwork(filtered); err == nil {
		result.NetworkHash = cache.Hash(data)
	}

	// Stage 3: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, filtered, result.NetworkHash, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"levels", len(res.Levels),
		"dangling", len(res.DanglingRelationships),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, filtered, res, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo retrieves the case network with caching and returns
// cache hit info.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (graph.Network, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return graph.Network{}, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.NetworkKey(opts.CaseID, cache.NetworkKeyOpts{})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			n, err := graph.UnmarshalNetwork(data)
			if err == nil {
				return n, true, nil // Cache hit
			}
		}
	}

	n, err := r.Source.FetchNetwork(ctx, opts.CaseID)
	if err != nil {
		return graph.Network{}, false, err
	}

	if data, err := graph.MarshalNetwork(n); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLNetwork)
	}

	return n, false, nil // Cache miss
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (graph.Network, error) {
	n, _, err := r.FetchWithCacheInfo(ctx, opts)
	return n, err
}

// PrepareNetwork applies the filter dimensions. The unfiltered network is
// returned (as a copy) when no dimension is constrained.
func (r *Runner) PrepareNetwork(n graph.Network, opts Options) graph.Network {
	f := opts.FilterOptions()
	filtered := filter.Apply(n, f)
	if !f.Empty() {
		r.Logger.Debug("filtered network",
			"original_entities", len(n.Entities),
			"filtered_entities", len(filtered.Entities))
	}
	return filtered
}

// ComputeLayoutWithCacheInfo computes the layout with caching and returns
// cache hit info. networkHash must be the content hash of the network the
// layout is computed over; it anchors the cache key.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, n graph.Network, networkHash string, opts Options) (layout.Result, bool, error) {
	cacheKey := r.Keyer.LayoutKey(networkHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	res := layout.ComputeNetwork(n, opts.LayoutOptions())

	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return res, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, n graph.Network, networkHash string, opts Options) (layout.Result, error) {
	res, _, err := r.ComputeLayoutWithCacheInfo(ctx, n, networkHash, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, n graph.Network, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := json.Marshal(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	rendered, err := renderFormats(n, res, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, n graph.Network, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, n, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func renderFormats(n graph.Network, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := renderJSON(n, res)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(dot.ToDOT(n, res, dot.Options{Detailed: opts.Detailed}))
		case FormatSVG:
			svg, err := dot.RenderSVG(dot.ToDOT(n, res, dot.Options{Detailed: opts.Detailed}))
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = svg
		}
	}
	return artifacts, nil
}

// exportDoc is the JSON artifact shape: the network plus its layout and
// stats, self-contained for downstream consumers.
type exportDoc struct {
	CaseID        string               `json:"case_id"`
	Case          graph.CaseInfo       `json:"case,omitempty"`
	Entities      []graph.Entity       `json:"entities"`
	Relationships []graph.Relationship `json:"relationships"`
	Layout        layout.Result        `json:"layout"`
	Stats         graph.Stats          `json:"stats"`
}

func renderJSON(n graph.Network, res layout.Result) ([]byte, error) {
	doc := exportDoc{
		CaseID:        n.CaseID,
		Case:          n.Case,
		Entities:      n.Entities,
		Relationships: n.Relationships,
		Layout:        res,
		Stats:         n.Stats(),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
