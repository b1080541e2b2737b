package graph

import (
	"reflect"
	"strings"
	"testing"
)

func TestRiskFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  RiskLevel
	}{
		{100, RiskCritical},
		{75, RiskCritical},
		{74, RiskHigh},
		{50, RiskHigh},
		{49, RiskMedium},
		{25, RiskMedium},
		{24, RiskLow},
		{1, RiskLow},
		{0, RiskUnknown},
		{-5, RiskUnknown},
	}
	for _, tt := range tests {
		if got := RiskFromScore(tt.score); got != tt.want {
			t.Errorf("RiskFromScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestRiskRank(t *testing.T) {
	if !(RiskCritical.Rank() < RiskHigh.Rank() &&
		RiskHigh.Rank() < RiskMedium.Rank() &&
		RiskMedium.Rank() < RiskLow.Rank() &&
		RiskLow.Rank() < RiskUnknown.Rank()) {
		t.Error("risk ranks are not ordered critical < high < medium < low < unknown")
	}
	if RiskLevel("bogus").Rank() != RiskUnknown.Rank() {
		t.Error("unrecognized level must rank with unknown")
	}
}

func TestDisplayLabel(t *testing.T) {
	e := Entity{ID: "acct-1", Label: "Main Account"}
	if got := e.DisplayLabel(); got != "Main Account" {
		t.Errorf("DisplayLabel() = %q, want %q", got, "Main Account")
	}
	e.Label = ""
	if got := e.DisplayLabel(); got != "acct-1" {
		t.Errorf("DisplayLabel() = %q, want %q", got, "acct-1")
	}
}

func TestNormalizeDropsBlankAndDuplicateEntities(t *testing.T) {
	n := Network{
		Entities: []Entity{
			{ID: "A", Type: EntityPerson, Risk: RiskHigh},
			{ID: "", Type: EntityPerson},
			{ID: "A", Type: EntityCompany, Label: "shadow"},
			{ID: "B", Type: EntityBankAccount, Risk: RiskLow},
		},
	}

	report := n.Normalize()

	if report.BlankEntities != 1 {
		t.Errorf("BlankEntities = %d, want 1", report.BlankEntities)
	}
	if report.DuplicateEntities != 1 {
		t.Errorf("DuplicateEntities = %d, want 1", report.DuplicateEntities)
	}
	if len(n.Entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(n.Entities))
	}
	// First occurrence wins.
	if n.Entities[0].Type != EntityPerson {
		t.Errorf("duplicate replaced the first occurrence: %+v", n.Entities[0])
	}
}

func TestNormalizeCoercesUnknownValues(t *testing.T) {
	n := Network{
		Entities: []Entity{
			{ID: "A", Type: EntityType("spaceship"), Risk: RiskLevel("rainbow")},
			{ID: "B", Type: EntityPhone}, // blank risk, silent default
		},
		Relationships: []Relationship{
			{ID: "r1", SourceID: "A", TargetID: "B", Type: RelType("teleport")},
			{ID: "r2", SourceID: "A", TargetID: "B"}, // blank type, silent default
		},
	}

	report := n.Normalize()

	if n.Entities[0].Type != EntityUnknown {
		t.Errorf("type = %s, want unknown", n.Entities[0].Type)
	}
	if n.Entities[0].Risk != RiskUnknown {
		t.Errorf("risk = %s, want unknown", n.Entities[0].Risk)
	}
	if n.Entities[1].Risk != RiskUnknown {
		t.Errorf("blank risk = %s, want unknown", n.Entities[1].Risk)
	}
	if n.Relationships[0].Type != RelUnknown {
		t.Errorf("rel type = %s, want unknown", n.Relationships[0].Type)
	}
	if n.Relationships[1].Type != RelUnknown {
		t.Errorf("blank rel type = %s, want unknown", n.Relationships[1].Type)
	}

	// Blank values are backfilled silently; only out-of-set values count.
	if report.UnknownTypes != 1 || report.UnknownRisks != 1 || report.UnknownRelTypes != 1 {
		t.Errorf("report = %+v, want one of each coercion", report)
	}
}

func TestNormalizeDropsBlankRelationships(t *testing.T) {
	n := Network{
		Entities: []Entity{{ID: "A", Type: EntityPerson}, {ID: "B", Type: EntityPerson}},
		Relationships: []Relationship{
			{ID: "", SourceID: "A", TargetID: "B", Type: RelTransfer},
			{ID: "r2", SourceID: "", TargetID: "B", Type: RelTransfer},
			{ID: "r3", SourceID: "A", TargetID: "", Type: RelTransfer},
			{ID: "r4", SourceID: "A", TargetID: "B", Type: RelTransfer},
		},
	}

	report := n.Normalize()

	if report.BlankRelationships != 3 {
		t.Errorf("BlankRelationships = %d, want 3", report.BlankRelationships)
	}
	if len(n.Relationships) != 1 || n.Relationships[0].ID != "r4" {
		t.Errorf("relationships = %+v, want only r4", n.Relationships)
	}
}

func TestNormalizeKeepsDanglingRelationships(t *testing.T) {
	// Endpoints absent from the entity set are a layout concern, not a
	// normalization concern.
	n := Network{
		Entities: []Entity{{ID: "A", Type: EntityPerson}},
		Relationships: []Relationship{
			{ID: "r1", SourceID: "A", TargetID: "ghost", Type: RelTransfer},
		},
	}

	report := n.Normalize()

	if report.Dirty() {
		t.Errorf("report = %+v, want clean", report)
	}
	if len(n.Relationships) != 1 {
		t.Error("dangling relationship was dropped")
	}
}

func TestNormalizeReportDirty(t *testing.T) {
	if (NormalizeReport{}).Dirty() {
		t.Error("zero report must be clean")
	}
	if !(NormalizeReport{UnknownTypes: 1}).Dirty() {
		t.Error("non-zero report must be dirty")
	}
}

func TestNetworkEntityLookup(t *testing.T) {
	n := Network{Entities: []Entity{{ID: "A", Label: "Alice"}, {ID: "B"}}}

	e, ok := n.Entity("A")
	if !ok || e.Label != "Alice" {
		t.Errorf("Entity(A) = %+v, %v", e, ok)
	}
	if _, ok := n.Entity("missing"); ok {
		t.Error("Entity(missing) reported found")
	}
}

func TestNetworkClone(t *testing.T) {
	n := Network{
		CaseID:        "7",
		Entities:      []Entity{{ID: "A", Type: EntityPerson}},
		Relationships: []Relationship{{ID: "r1", SourceID: "A", TargetID: "A"}},
	}

	c := n.Clone()
	c.Entities[0].ID = "mutated"
	c.Relationships[0].ID = "mutated"

	if n.Entities[0].ID != "A" || n.Relationships[0].ID != "r1" {
		t.Error("mutating the clone changed the original")
	}
}

func TestNetworkStats(t *testing.T) {
	n := Network{
		Entities: []Entity{
			{ID: "A", Suspect: true},
			{ID: "B", Victim: true},
			{ID: "C", Suspect: true, Victim: true},
		},
		Relationships: []Relationship{
			{ID: "r1", SourceID: "A", TargetID: "B", Amount: 1500},
			{ID: "r2", SourceID: "B", TargetID: "C", Amount: 250.50},
		},
	}

	s := n.Stats()
	if s.Entities != 3 || s.Relationships != 2 {
		t.Errorf("counts = %d/%d, want 3/2", s.Entities, s.Relationships)
	}
	if s.Suspects != 2 || s.Victims != 2 {
		t.Errorf("suspects/victims = %d/%d, want 2/2", s.Suspects, s.Victims)
	}
	if s.TotalAmount != 1750.50 {
		t.Errorf("TotalAmount = %v, want 1750.50", s.TotalAmount)
	}
}

func TestNetworkRoundTrip(t *testing.T) {
	n := Network{
		CaseID: "case-42",
		Case:   CaseInfo{Number: "2026-0042", Title: "Romance scam ring", Status: "active", Priority: "high"},
		Entities: []Entity{
			{ID: "p1", Type: EntityPerson, Label: "J. Doe", Risk: RiskCritical, Suspect: true},
			{ID: "acct1", Type: EntityBankAccount, Label: "Checking", Sublabel: "DE89...", Risk: RiskHigh},
		},
		Relationships: []Relationship{
			{ID: "r1", SourceID: "p1", TargetID: "acct1", Type: RelTransfer, Amount: 9000, Currency: "EUR"},
		},
	}

	data, err := MarshalNetwork(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalNetwork(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.CaseID != n.CaseID || got.Case != n.Case {
		t.Errorf("case metadata mismatch: %+v", got)
	}
	if len(got.Entities) != 2 || !reflect.DeepEqual(got.Entities[0], n.Entities[0]) {
		t.Errorf("entities mismatch: %+v", got.Entities)
	}
	if len(got.Relationships) != 1 || !reflect.DeepEqual(got.Relationships[0], n.Relationships[0]) {
		t.Errorf("relationships mismatch: %+v", got.Relationships)
	}
}

func TestUnmarshalNetworkNormalizes(t *testing.T) {
	raw := `{
		"case_id": "7",
		"entities": [
			{"id": "A", "type": "hoverboard"},
			{"id": "", "type": "person"}
		],
		"relationships": [
			{"id": "r1", "source_id": "A", "target_id": "A", "type": "osmosis"}
		]
	}`

	n, err := UnmarshalNetwork([]byte(raw))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(n.Entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(n.Entities))
	}
	if n.Entities[0].Type != EntityUnknown {
		t.Errorf("type = %s, want unknown", n.Entities[0].Type)
	}
	if n.Relationships[0].Type != RelUnknown {
		t.Errorf("rel type = %s, want unknown", n.Relationships[0].Type)
	}
}

func TestUnmarshalNetworkInvalidJSON(t *testing.T) {
	if _, err := UnmarshalNetwork([]byte("{nope")); err == nil {
		t.Error("expected error for malformed JSON")
	} else if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error = %v, want decode context", err)
	}
}
