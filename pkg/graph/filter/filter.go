// Package filter reduces a case network to the entities an investigator is
// looking at, before layout runs.
//
// Filtering is conjunctive across dimensions and disjunctive within one: an
// entity survives when, for every dimension that has values set, the entity
// matches at least one of them. An empty dimension imposes no constraint, so
// the zero Options passes every network through unchanged. Relationships
// survive only when both endpoints do, so a filtered network is always
// self-contained.
package filter

import (
	"slices"

	"github.com/casegraph/casegraph/pkg/graph"
)

// Options selects which entities survive filtering. Empty slices mean "no
// constraint" for that dimension.
type Options struct {
	Clusters []string           // backend cluster IDs
	Risks    []graph.RiskLevel  // risk levels
	Types    []graph.EntityType // entity types
}

// Empty reports whether no dimension is constrained.
func (o Options) Empty() bool {
	return len(o.Clusters) == 0 && len(o.Risks) == 0 && len(o.Types) == 0
}

func (o Options) match(e graph.Entity) bool {
	if len(o.Clusters) > 0 && !slices.Contains(o.Clusters, e.ClusterID) {
		return false
	}
	if len(o.Risks) > 0 && !slices.Contains(o.Risks, e.Risk) {
		return false
	}
	if len(o.Types) > 0 && !slices.Contains(o.Types, e.Type) {
		return false
	}
	return true
}

// Apply returns a new network holding the entities matching the options and
// the relationships whose endpoints both survive. Input order is preserved in
// both slices and the input network is never mutated.
func Apply(n graph.Network, opts Options) graph.Network {
	if opts.Empty() {
		return n.Clone()
	}

	out := graph.Network{CaseID: n.CaseID, Case: n.Case}

	kept := make(map[string]bool, len(n.Entities))
	for _, e := range n.Entities {
		if opts.match(e) {
			out.Entities = append(out.Entities, e)
			kept[e.ID] = true
		}
	}

	for _, r := range n.Relationships {
		if kept[r.SourceID] && kept[r.TargetID] {
			out.Relationships = append(out.Relationships, r)
		}
	}

	return out
}
