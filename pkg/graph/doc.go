// Package graph defines the entity/relationship data model for investigation
// case networks.
//
// # Overview
//
// Casegraph visualizes case networks ("money flow"): entities such as persons,
// bank accounts, and crypto wallets, connected by directed relationships such
// as transfers and calls. This package provides the canonical in-memory and
// serialization model those networks flow through, from the backend response
// to the layout engine and the rendering surface.
//
// A [Network] is the unit fetched per case. Its entity and relationship
// slices keep backend order - order is significant, because the layout
// engine's determinism contract assumes order-stable input.
//
// # Boundary Normalization
//
// Backend payloads are normalized exactly once, at deserialization time, via
// [Network.Normalize]: unknown entity/relationship types and risk levels
// coerce to the "unknown" members of their closed sets, blank or duplicate
// identifiers are dropped (first occurrence wins), and everything else passes
// through untouched. Normalization never fails; the [NormalizeReport] says
// what was coerced or dropped so callers can log it.
//
// Relationships whose endpoints are missing from the entity set survive
// normalization deliberately: the layout engine skips them during traversal,
// but the rendering surface receives them and decides how to treat dangling
// references.
//
// # Related Packages
//
// The [layout] subpackage computes deterministic hierarchical positions for a
// network. The [filter] subpackage reduces a network by cluster, risk, and
// entity-type membership before layout.
//
// [layout]: github.com/casegraph/casegraph/pkg/graph/layout
// [filter]: github.com/casegraph/casegraph/pkg/graph/filter
package graph
