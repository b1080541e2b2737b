// Package layout computes deterministic hierarchical positions for
// investigation case networks.
//
// # Overview
//
// The engine turns a case's entities and relationships into a left-to-right
// "waterfall": entities with no incoming relationships (roots) sit at level 0
// on the left, and each relationship hop moves one level to the right. Within
// a level, entities stack vertically, centered in a fixed band. The result is
// a readable money-flow diagram without manual placement.
//
// # Contract
//
// [Compute] is a pure function of its inputs. It is total: every entity gets
// exactly one placement, empty input yields an empty result, and no input can
// make it fail. Malformed data degrades instead:
//
//   - Relationships referencing entities outside the set are skipped by the
//     traversal (and reported in [Result.DanglingRelationships]).
//   - A fully cyclic network, which has no roots, falls back to treating the
//     first entity in input order as the sole root.
//   - Entities the traversal never reaches default to level 0. Disconnected
//     subgraphs therefore collapse onto the root level and overlap the true
//     roots - a known limitation, kept because per-component leveling would
//     silently change visual behavior the rest of the system depends on.
//
// Output is deterministic for identical input. That contract holds only if
// the caller supplies order-stable slices: same-level tie-breaking follows
// raw input order, not any secondary key.
//
// # Invocation Model
//
// The engine holds no state and performs no I/O. Each call receives its own
// snapshot and returns a fresh result, so recomputing on every data refresh
// or filter change is safe and idempotent. Stale-result handling when fetches
// overlap belongs to the orchestrating pipeline, not to this package.
package layout
