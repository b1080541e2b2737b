// Package cache provides pluggable byte caching for the casegraph pipeline.
//
// Three backends cover the deployment modes: FileCache for CLI usage,
// RedisCache for the multi-instance server, and NullCache when caching is
// disabled. Keys are produced by a Keyer so every stage of the pipeline
// (backend fetch, layout, rendered artifact) caches under a stable,
// content-addressed name.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Backend data goes stale as investigators
// edit the case; layouts and artifacts are pure functions of their inputs and
// can live much longer.
const (
	TTLNetwork  = 5 * time.Minute
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is the interface for byte-oriented cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports a hit; a miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NetworkKeyOpts are the request parameters that distinguish one backend
// fetch from another.
type NetworkKeyOpts struct {
	BaseURL string `json:"base_url"`
}

// LayoutKeyOpts are the layout parameters that distinguish one computation
// from another over the same network.
type LayoutKeyOpts struct {
	Clusters []string `json:"clusters,omitempty"`
	Risks    []string `json:"risks,omitempty"`
	Types    []string `json:"types,omitempty"`
	BaseX    float64  `json:"base_x"`
	BaseY    float64  `json:"base_y"`
	LevelGap float64  `json:"level_gap"`
	NodeGap  float64  `json:"node_gap"`
	Band     float64  `json:"band"`
}

// ArtifactKeyOpts are the rendering parameters that distinguish one artifact
// from another over the same layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response.
	HTTPKey(namespace, key string) string

	// NetworkKey generates a key for a fetched case network.
	NetworkKey(caseID string, opts NetworkKeyOpts) string

	// LayoutKey generates a key for a layout result, derived from the
	// content hash of the filtered network it was computed over.
	LayoutKey(networkHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, derived from
	// the content hash of the layout it was rendered from.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// NetworkKey generates a key for a fetched case network.
func (k *DefaultKeyer) NetworkKey(caseID string, opts NetworkKeyOpts) string {
	return hashKey("network", caseID, opts)
}

// LayoutKey generates a key for a layout result.
func (k *DefaultKeyer) LayoutKey(networkHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", networkHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
