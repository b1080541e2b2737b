package graph

import "slices"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// EntityType classifies a node in the investigation network.
// The set is closed: values outside it normalize to EntityUnknown.
type EntityType string

// Entity types recognized by the case-management backend.
const (
	EntityPerson       EntityType = "person"
	EntityBankAccount  EntityType = "bank_account"
	EntityPhone        EntityType = "phone"
	EntityCryptoWallet EntityType = "crypto_wallet"
	EntityCompany      EntityType = "company"
	EntityMuleAccount  EntityType = "mule_account"
	EntityGamblingSite EntityType = "gambling_site"
	EntityExchange     EntityType = "exchange"
	EntityUnknown      EntityType = "unknown"
)

// RiskLevel is an ordered risk category used only for presentation
// (color, size). It never influences layout.
type RiskLevel string

// Risk levels from most to least severe.
const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskUnknown  RiskLevel = "unknown"
)

// RelType classifies a directed relationship between two entities.
type RelType string

// Relationship types recognized by the case-management backend.
const (
	RelTransfer   RelType = "transfer"
	RelWithdrawal RelType = "withdrawal"
	RelDeposit    RelType = "deposit"
	RelCall       RelType = "call"
	RelMeeting    RelType = "meeting"
	RelUnknown    RelType = "unknown"
)

var validEntityTypes = map[EntityType]bool{
	EntityPerson:       true,
	EntityBankAccount:  true,
	EntityPhone:        true,
	EntityCryptoWallet: true,
	EntityCompany:      true,
	EntityMuleAccount:  true,
	EntityGamblingSite: true,
	EntityExchange:     true,
	EntityUnknown:      true,
}

var validRiskLevels = map[RiskLevel]bool{
	RiskCritical: true,
	RiskHigh:     true,
	RiskMedium:   true,
	RiskLow:      true,
	RiskUnknown:  true,
}

var validRelTypes = map[RelType]bool{
	RelTransfer:   true,
	RelWithdrawal: true,
	RelDeposit:    true,
	RelCall:       true,
	RelMeeting:    true,
	RelUnknown:    true,
}

// riskRank orders risk levels for comparison; lower is more severe.
var riskRank = map[RiskLevel]int{
	RiskCritical: 0,
	RiskHigh:     1,
	RiskMedium:   2,
	RiskLow:      3,
	RiskUnknown:  4,
}

// Rank returns the severity rank of the risk level; lower is more severe.
// Unrecognized levels rank with RiskUnknown.
func (r RiskLevel) Rank() int {
	if rank, ok := riskRank[r]; ok {
		return rank
	}
	return riskRank[RiskUnknown]
}

// RiskFromScore buckets the backend's 0-100 risk score into a RiskLevel.
// A score of zero means the entity was never assessed.
func RiskFromScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	case score > 0:
		return RiskLow
	default:
		return RiskUnknown
	}
}

// =============================================================================
// Entity - Node in the Investigation Network
// =============================================================================

// Entity is a node in the investigation network: a person, account, wallet,
// company, or similar. Entities are created by the backend from imported
// records or manual entry and are read-only inputs to layout and filtering.
type Entity struct {
	ID       string     `json:"id" bson:"id"`
	Type     EntityType `json:"type" bson:"type"`
	Label    string     `json:"label" bson:"label"`
	Sublabel string     `json:"sublabel,omitempty" bson:"sublabel,omitempty"` // Account number, wallet address, etc.

	// Assessment flags; presentation only, never consulted by layout.
	Risk    RiskLevel `json:"risk,omitempty" bson:"risk,omitempty"`
	Suspect bool      `json:"suspect,omitempty" bson:"suspect,omitempty"`
	Victim  bool      `json:"victim,omitempty" bson:"victim,omitempty"`

	// ClusterID is a backend-assigned grouping used only for filtering.
	ClusterID string `json:"cluster_id,omitempty" bson:"cluster_id,omitempty"`

	// Meta carries arbitrary presentation-only key-value data, opaque to
	// layout and filtering.
	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (e *Entity) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	return e.ID
}

// =============================================================================
// Relationship - Directed Edge
// =============================================================================

// Relationship is a directed edge between two entities: a transfer, call, or
// other link. Relationships form a directed multigraph; parallel edges
// between the same pair are permitted.
type Relationship struct {
	ID       string  `json:"id" bson:"id"`
	SourceID string  `json:"source_id" bson:"source_id"`
	TargetID string  `json:"target_id" bson:"target_id"`
	Type     RelType `json:"type,omitempty" bson:"type,omitempty"`
	Label    string  `json:"label,omitempty" bson:"label,omitempty"`

	// Amount and Currency drive edge thickness in rendering only.
	Amount   float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Currency string  `json:"currency,omitempty" bson:"currency,omitempty"`

	Meta map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// =============================================================================
// Network - Case-Scoped Entity/Relationship Set
// =============================================================================

// CaseInfo carries display metadata about the investigation case a network
// belongs to, as reported by the backend.
type CaseInfo struct {
	Number   string `json:"number,omitempty" bson:"number,omitempty"`
	Title    string `json:"title,omitempty" bson:"title,omitempty"`
	Status   string `json:"status,omitempty" bson:"status,omitempty"`
	Priority string `json:"priority,omitempty" bson:"priority,omitempty"`
}

// Network is the unit fetched per case: all entities and relationships of a
// single investigation, in backend order. Slice order is significant - the
// layout engine's determinism contract assumes order-stable input.
type Network struct {
	CaseID        string         `json:"case_id" bson:"case_id"`
	Case          CaseInfo       `json:"case,omitempty" bson:"case,omitempty"`
	Entities      []Entity       `json:"entities" bson:"entities"`
	Relationships []Relationship `json:"relationships" bson:"relationships"`
}

// Entity returns the entity with the given ID and true, or a zero Entity and
// false if not present.
func (n *Network) Entity(id string) (Entity, bool) {
	for _, e := range n.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// Clone returns a deep-enough copy of the network: slices are copied, while
// Meta maps are shared (they are treated as immutable presentation data).
func (n *Network) Clone() Network {
	return Network{
		CaseID:        n.CaseID,
		Case:          n.Case,
		Entities:      slices.Clone(n.Entities),
		Relationships: slices.Clone(n.Relationships),
	}
}

// =============================================================================
// Stats - Summary Counters
// =============================================================================

// Stats summarizes a network for CLI and API display.
type Stats struct {
	Entities      int     `json:"entities"`
	Relationships int     `json:"relationships"`
	Suspects      int     `json:"suspects"`
	Victims       int     `json:"victims"`
	TotalAmount   float64 `json:"total_amount"`
}

// Stats computes summary counters over the network.
func (n *Network) Stats() Stats {
	s := Stats{
		Entities:      len(n.Entities),
		Relationships: len(n.Relationships),
	}
	for _, e := range n.Entities {
		if e.Suspect {
			s.Suspects++
		}
		if e.Victim {
			s.Victims++
		}
	}
	for _, r := range n.Relationships {
		s.TotalAmount += r.Amount
	}
	return s
}
