// Package pipeline provides the core visualization pipeline for casegraph.
//
// This package implements the complete fetch → filter → layout → render
// pipeline shared by the CLI and the HTTP API. Centralizing it keeps the two
// entry points behaviorally identical: same caching, same degradation rules,
// same artifacts.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: Retrieve the case network from the case-management backend
//  2. Filter: Reduce the network by cluster, risk, and entity type
//  3. Layout: Compute hierarchical positions for the filtered network
//  4. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(source, cache, nil, logger)
//	opts := pipeline.Options{
//	    CaseID:  "42",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/casegraph/casegraph/pkg/cache"
	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/graph/filter"
	"github.com/casegraph/casegraph/pkg/graph/layout"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	CaseID  string `json:"case_id"`
	Refresh bool   `json:"refresh,omitempty"`

	// Filter options (string-typed for wire compatibility; validated
	// against the closed sets before use)
	Clusters []string `json:"clusters,omitempty"`
	Risks    []string `json:"risks,omitempty"`
	Types    []string `json:"types,omitempty"`

	// Layout options
	BaseX        float64 `json:"base_x,omitempty"`
	BaseY        float64 `json:"base_y,omitempty"`
	LevelSpacing float64 `json:"level_spacing,omitempty"`
	NodeSpacing  float64 `json:"node_spacing,omitempty"`
	Band         float64 `json:"band,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the fetched, filtered network the layout was computed
	// over.
	Network graph.Network

	// NetworkHash is the content hash of the filtered network.
	NetworkHash string

	// Layout contains the computed placements and level groups.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int
	RelationshipCount int
	FetchTime         time.Duration
	LayoutTime        time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether the network came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRisks checks that all risk filter values are members of the closed
// risk set.
func ValidateRisks(risks []string) error {
	for _, r := range risks {
		switch graph.RiskLevel(r) {
		case graph.RiskCritical, graph.RiskHigh, graph.RiskMedium, graph.RiskLow, graph.RiskUnknown:
		default:
			return errors.New(errors.ErrCodeInvalidFilter, "invalid risk level: %q", r)
		}
	}
	return nil
}

// ValidateTypes checks that all entity type filter values are members of the
// closed entity type set.
func ValidateTypes(types []string) error {
	for _, t := range types {
		switch graph.EntityType(t) {
		case graph.EntityPerson, graph.EntityBankAccount, graph.EntityPhone,
			graph.EntityCryptoWallet, graph.EntityCompany, graph.EntityMuleAccount,
			graph.EntityGamblingSite, graph.EntityExchange, graph.EntityUnknown:
		default:
			return errors.New(errors.ErrCodeInvalidFilter, "invalid entity type: %q", t)
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForFilter(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for fetching.
func (o *Options) ValidateForFetch() error {
	if err := errors.ValidateCaseID(o.CaseID); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForFilter checks the filter dimensions against the closed sets.
func (o *Options) ValidateForFilter() error {
	if err := ValidateRisks(o.Risks); err != nil {
		return err
	}
	return ValidateTypes(o.Types)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// FilterOptions converts the string-typed filter dimensions to the filter
// package's typed options.
func (o *Options) FilterOptions() filter.Options {
	f := filter.Options{Clusters: o.Clusters}
	for _, r := range o.Risks {
		f.Risks = append(f.Risks, graph.RiskLevel(r))
	}
	for _, t := range o.Types {
		f.Types = append(f.Types, graph.EntityType(t))
	}
	return f
}

// LayoutOptions converts the layout overrides to the layout package's
// options. Zero values fall through to the engine defaults.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		BaseX:        o.BaseX,
		BaseY:        o.BaseY,
		LevelSpacing: o.LevelSpacing,
		NodeSpacing:  o.NodeSpacing,
		Band:         o.Band,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Clusters: o.Clusters,
		Risks:    o.Risks,
		Types:    o.Types,
		BaseX:    o.BaseX,
		BaseY:    o.BaseY,
		LevelGap: o.LevelSpacing,
		NodeGap:  o.NodeSpacing,
		Band:     o.Band,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	key := format
	if o.Detailed {
		key += ":detailed"
	}
	return cache.ArtifactKeyOpts{Format: key}
}
