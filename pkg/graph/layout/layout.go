package layout

import (
	"github.com/casegraph/casegraph/pkg/graph"
)

// Default spacing constants for the hierarchical layout.
const (
	// DefaultLevelSpacing is the horizontal distance between levels.
	DefaultLevelSpacing = 350.0

	// DefaultNodeSpacing is the vertical distance between entities that
	// share a level.
	DefaultNodeSpacing = 150.0

	// DefaultBand is the height of the vertical band each level's group is
	// centered within.
	DefaultBand = 500.0
)

// Options configures the hierarchical layout. The zero value gets defaults
// applied; spacing values must be positive to take effect.
type Options struct {
	BaseX        float64 // origin x for level 0
	BaseY        float64 // origin y of the vertical band
	LevelSpacing float64 // horizontal distance per level
	NodeSpacing  float64 // vertical distance between same-level entities
	Band         float64 // vertical band height used for centering
}

func (o *Options) setDefaults() {
	if o.LevelSpacing <= 0 {
		o.LevelSpacing = DefaultLevelSpacing
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.Band <= 0 {
		o.Band = DefaultBand
	}
}

// Placement is the computed position of a single entity.
type Placement struct {
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Level int     `json:"level" bson:"level"`
}

// Result is the output of a layout computation.
type Result struct {
	// Placements maps every input entity ID to its position and level.
	Placements map[string]Placement `json:"placements" bson:"placements"`

	// Levels groups entity IDs by level, input-order within each group.
	// Index is the level number; every level up to the maximum assigned
	// level is present (possibly empty, though BFS leveling never leaves
	// gaps in practice).
	Levels [][]string `json:"levels" bson:"levels"`

	// DanglingRelationships lists the IDs of relationships whose source or
	// target was absent from the entity set. They were skipped by the
	// traversal but remain in the network passed to rendering.
	DanglingRelationships []string `json:"dangling_relationships,omitempty" bson:"dangling_relationships,omitempty"`
}

// Compute lays out a case network as a left-to-right hierarchy: roots
// (entities with no incoming relationships) on the left, effects to the
// right, each level's group vertically centered within a fixed band.
//
// Compute is total and pure: every entity receives exactly one placement,
// malformed input degrades instead of failing, inputs are never mutated, and
// identical input (same slice order) produces identical output.
//
// Leveling is breadth-first from the root set with first-assignment-wins: an
// entity is leveled exactly once, at level(parent)+1 of whichever neighbor
// dequeues it first. This guards against both cycles and re-leveling on
// diamond-shaped graphs. If no entity has zero in-degree (a fully cyclic
// network), the first entity in input order becomes the sole root. Entities
// the traversal never reaches default to level 0; disconnected subgraphs
// therefore overlap the true roots visually, a known limitation kept for
// compatibility with the existing rendering behavior.
func Compute(entities []graph.Entity, rels []graph.Relationship, opts Options) Result {
	opts.setDefaults()

	res := Result{Placements: make(map[string]Placement, len(entities))}
	if len(entities) == 0 {
		res.Levels = [][]string{}
		return res
	}

	present := make(map[string]bool, len(entities))
	for _, e := range entities {
		present[e.ID] = true
	}

	// Adjacency and in-degree over valid edges only. Slices keep edge input
	// order so traversal order, and therefore output, is deterministic.
	outgoing := make(map[string][]string, len(entities))
	inDegree := make(map[string]int, len(entities))
	for _, r := range rels {
		if !present[r.SourceID] || !present[r.TargetID] {
			res.DanglingRelationships = append(res.DanglingRelationships, r.ID)
			continue
		}
		outgoing[r.SourceID] = append(outgoing[r.SourceID], r.TargetID)
		inDegree[r.TargetID]++
	}

	// Root selection: zero in-degree entities in input order. A fully
	// cyclic network has none; fall back to the first entity so leveling
	// still produces a hierarchy instead of nothing.
	var queue []string
	for _, e := range entities {
		if inDegree[e.ID] == 0 {
			queue = append(queue, e.ID)
		}
	}
	if len(queue) == 0 {
		queue = append(queue, entities[0].ID)
	}

	levels := make(map[string]int, len(entities))
	for _, id := range queue {
		levels[id] = 0
	}

	// BFS with first-assignment-wins. Visited entities are never re-leveled,
	// so cycles terminate and diamonds keep their first-discovered depth.
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range outgoing[curr] {
			if _, visited := levels[next]; visited {
				continue
			}
			levels[next] = levels[curr] + 1
			queue = append(queue, next)
		}
	}

	// Orphans (unreached entities) collapse to level 0.
	maxLevel := 0
	for _, e := range entities {
		if lvl, ok := levels[e.ID]; ok && lvl > maxLevel {
			maxLevel = lvl
		}
	}
	groups := make([][]string, maxLevel+1)
	for _, e := range entities {
		lvl := levels[e.ID] // zero value is the orphan default
		groups[lvl] = append(groups[lvl], e.ID)
	}
	res.Levels = groups

	for lvl, group := range groups {
		x := opts.BaseX + float64(lvl)*opts.LevelSpacing
		// Center the group of N within the band: first node sits at
		// (band - (N-1)*spacing)/2 from the band top.
		yStart := opts.BaseY + (opts.Band-float64(len(group)-1)*opts.NodeSpacing)/2
		for i, id := range group {
			res.Placements[id] = Placement{
				X:     x,
				Y:     yStart + float64(i)*opts.NodeSpacing,
				Level: lvl,
			}
		}
	}

	return res
}

// ComputeNetwork is a convenience wrapper around [Compute] for a whole
// network.
func ComputeNetwork(n graph.Network, opts Options) Result {
	return Compute(n.Entities, n.Relationships, opts)
}
