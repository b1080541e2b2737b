// Package store persists layout snapshots.
//
// A snapshot freezes one pipeline run: the fetched network, the computed
// layout, and summary stats, stamped with a generated ID and timestamp.
// Investigators use snapshots to compare a case's shape over time and to
// serve the last known layout when the backend is unreachable.
//
// Two implementations exist: MemoryStore for tests and single-process CLI
// usage, and MongoStore for server deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/casegraph/casegraph/pkg/errors"
	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/graph/layout"
)

// Snapshot is a persisted pipeline run for one case.
type Snapshot struct {
	ID          string         `json:"id" bson:"_id"`
	CaseID      string         `json:"case_id" bson:"case_id"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	NetworkHash string         `json:"network_hash" bson:"network_hash"`
	Network     graph.Network  `json:"network" bson:"network"`
	Layout      layout.Result  `json:"layout" bson:"layout"`
	Stats       graph.Stats    `json:"stats" bson:"stats"`
}

// NewSnapshot stamps a snapshot with a fresh ID and timestamp.
func NewSnapshot(caseID, networkHash string, n graph.Network, l layout.Result) *Snapshot {
	return &Snapshot{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		CreatedAt:   time.Now().UTC(),
		NetworkHash: networkHash,
		Network:     n,
		Layout:      l,
		Stats:       n.Stats(),
	}
}

// Ref is a brief snapshot descriptor for listings.
type Ref struct {
	ID          string    `json:"id" bson:"_id"`
	CaseID      string    `json:"case_id" bson:"case_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	NetworkHash string    `json:"network_hash" bson:"network_hash"`
}

// Store is the interface for snapshot persistence backends.
type Store interface {
	// Save persists a snapshot. Saving an existing ID overwrites it.
	Save(ctx context.Context, s *Snapshot) error

	// Get retrieves a snapshot by ID. Returns a NOT_FOUND coded error if
	// the snapshot does not exist.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Latest retrieves the most recent snapshot for a case. Returns a
	// NOT_FOUND coded error if the case has none.
	Latest(ctx context.Context, caseID string) (*Snapshot, error)

	// List returns brief descriptors for a case's snapshots, newest first,
	// up to limit (0 means no limit).
	List(ctx context.Context, caseID string, limit int) ([]Ref, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "snapshot %s not found", id)
}

func noneForCase(caseID string) error {
	return errors.New(errors.ErrCodeNotFound, "no snapshots for case %s", caseID)
}
