package casefile

import (
	"strconv"

	"github.com/casegraph/casegraph/pkg/graph"
)

// Wire types mirror the backend's JSON field names. They exist only inside
// this package; everything downstream works with the graph model.

type moneyFlowResponse struct {
	CaseID int        `json:"case_id"`
	Case   *wireCase  `json:"case,omitempty"`
	Nodes  []wireNode `json:"nodes"`
	Edges  []wireEdge `json:"edges"`
}

type wireCase struct {
	CaseNumber string `json:"case_number"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
}

type wireNode struct {
	ID         int    `json:"id"`
	NodeType   string `json:"node_type"`
	Label      string `json:"label"`
	Identifier string `json:"identifier,omitempty"`

	// Detail fields; folded into Meta when set.
	BankName      string `json:"bank_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Blockchain    string `json:"blockchain,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Source        string `json:"source,omitempty"`

	RiskScore int  `json:"risk_score"`
	IsSuspect bool `json:"is_suspect"`
	IsVictim  bool `json:"is_victim"`

	// ClusterID is optional; older backends omit it.
	ClusterID string `json:"cluster_id,omitempty"`
}

type wireEdge struct {
	ID         int      `json:"id"`
	FromNodeID int      `json:"from_node_id"`
	ToNodeID   int      `json:"to_node_id"`
	EdgeType   string   `json:"edge_type"`
	Label      string   `json:"label,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Currency   string   `json:"currency,omitempty"`
}

type caseListResponse struct {
	Items []struct {
		ID         int    `json:"id"`
		CaseNumber string `json:"case_number"`
		Title      string `json:"title"`
		Status     string `json:"status"`
		Priority   string `json:"priority"`
	} `json:"items"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// toNetwork converts the wire response, keeping backend order. Integer
// identifiers become decimal strings so the graph model stays
// backend-agnostic.
func (r moneyFlowResponse) toNetwork(caseID string) graph.Network {
	n := graph.Network{
		CaseID:        caseID,
		Entities:      make([]graph.Entity, 0, len(r.Nodes)),
		Relationships: make([]graph.Relationship, 0, len(r.Edges)),
	}
	if r.Case != nil {
		n.Case = graph.CaseInfo{
			Number:   r.Case.CaseNumber,
			Title:    r.Case.Title,
			Status:   r.Case.Status,
			Priority: r.Case.Priority,
		}
	}

	for _, node := range r.Nodes {
		n.Entities = append(n.Entities, node.toEntity())
	}
	for _, edge := range r.Edges {
		n.Relationships = append(n.Relationships, edge.toRelationship())
	}
	return n
}

func (w wireNode) toEntity() graph.Entity {
	e := graph.Entity{
		ID:        strconv.Itoa(w.ID),
		Type:      graph.EntityType(w.NodeType),
		Label:     w.Label,
		Sublabel:  w.Identifier,
		Risk:      graph.RiskFromScore(w.RiskScore),
		Suspect:   w.IsSuspect,
		Victim:    w.IsVictim,
		ClusterID: w.ClusterID,
	}

	meta := map[string]any{}
	for key, val := range map[string]string{
		"bank_name":      w.BankName,
		"account_name":   w.AccountName,
		"phone_number":   w.PhoneNumber,
		"blockchain":     w.Blockchain,
		"wallet_address": w.WalletAddress,
		"notes":          w.Notes,
		"source":         w.Source,
	} {
		if val != "" {
			meta[key] = val
		}
	}
	if len(meta) > 0 {
		e.Meta = meta
	}
	return e
}

func (w wireEdge) toRelationship() graph.Relationship {
	r := graph.Relationship{
		ID:       strconv.Itoa(w.ID),
		SourceID: strconv.Itoa(w.FromNodeID),
		TargetID: strconv.Itoa(w.ToNodeID),
		Type:     graph.RelType(w.EdgeType),
		Label:    w.Label,
		Currency: w.Currency,
	}
	if w.Amount != nil {
		r.Amount = *w.Amount
	}
	return r
}
