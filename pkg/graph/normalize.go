package graph

// NormalizeReport records what normalization changed. All fields are counts;
// a zero report means the input was already clean.
type NormalizeReport struct {
	BlankEntities      int // entities dropped for empty ID
	DuplicateEntities  int // entities dropped because an earlier one had the same ID
	UnknownTypes       int // entity types coerced to EntityUnknown
	UnknownRisks       int // risk levels coerced to RiskUnknown
	BlankRelationships int // relationships dropped for empty ID or endpoints
	UnknownRelTypes    int // relationship types coerced to RelUnknown
}

// Dirty reports whether normalization changed anything.
func (r NormalizeReport) Dirty() bool {
	return r != NormalizeReport{}
}

// Normalize validates the network in place at the system boundary, right
// after deserializing a backend response. It never fails: malformed records
// are coerced or dropped, and the report says what happened.
//
// Rules:
//   - Entities with an empty ID are dropped.
//   - Duplicate entity IDs keep the first occurrence (input order wins).
//   - Entity types and risk levels outside the closed sets coerce to unknown.
//   - Relationships with an empty ID, source, or target are dropped.
//   - Relationship types outside the closed set coerce to unknown.
//
// Relationships referencing entities absent from the entity set are NOT
// dropped here: the layout engine skips them during traversal but passes them
// through so the rendering surface can decide how to treat dangling edges.
func (n *Network) Normalize() NormalizeReport {
	var report NormalizeReport

	seen := make(map[string]bool, len(n.Entities))
	entities := n.Entities[:0]
	for _, e := range n.Entities {
		if e.ID == "" {
			report.BlankEntities++
			continue
		}
		if seen[e.ID] {
			report.DuplicateEntities++
			continue
		}
		seen[e.ID] = true

		if !validEntityTypes[e.Type] {
			e.Type = EntityUnknown
			report.UnknownTypes++
		}
		if e.Risk == "" {
			e.Risk = RiskUnknown
		} else if !validRiskLevels[e.Risk] {
			e.Risk = RiskUnknown
			report.UnknownRisks++
		}
		entities = append(entities, e)
	}
	n.Entities = entities

	rels := n.Relationships[:0]
	for _, r := range n.Relationships {
		if r.ID == "" || r.SourceID == "" || r.TargetID == "" {
			report.BlankRelationships++
			continue
		}
		if r.Type == "" {
			r.Type = RelUnknown
		} else if !validRelTypes[r.Type] {
			r.Type = RelUnknown
			report.UnknownRelTypes++
		}
		rels = append(rels, r)
	}
	n.Relationships = rels

	return report
}
