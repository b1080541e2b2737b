package dot

import (
	"strings"
	"testing"

	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/graph/layout"
)

func testNetwork() graph.Network {
	return graph.Network{
		CaseID: "7",
		Entities: []graph.Entity{
			{ID: "1", Type: graph.EntityPerson, Label: "J. Doe", Risk: graph.RiskCritical, Suspect: true},
			{ID: "2", Type: graph.EntityBankAccount, Label: "Checking", Sublabel: "123-456", Risk: graph.RiskMedium},
			{ID: "3", Type: graph.EntityPerson, Label: "Victim", Risk: graph.RiskLow, Victim: true},
		},
		Relationships: []graph.Relationship{
			{ID: "r1", SourceID: "3", TargetID: "2", Type: graph.RelTransfer, Amount: 25000, Currency: "THB"},
			{ID: "r2", SourceID: "1", TargetID: "3", Type: graph.RelCall},
			{ID: "r3", SourceID: "1", TargetID: "ghost", Type: graph.RelTransfer},
		},
	}
}

func TestToDOT(t *testing.T) {
	n := testNetwork()
	res := layout.ComputeNetwork(n, layout.Options{})
	dot := ToDOT(n, res, Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("missing left-to-right rank direction")
	}

	// All entities appear with their display labels.
	for _, want := range []string{`"1" [`, `"2" [`, `"3" [`, `label="J. Doe"`, `label="Checking"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %q in DOT output", want)
		}
	}

	// Risk drives fill color.
	if !strings.Contains(dot, `fillcolor="#d64550"`) {
		t.Error("critical risk color missing")
	}

	// Assessment flags drive shapes.
	if !strings.Contains(dot, "shape=doubleoctagon") {
		t.Error("suspect shape missing")
	}
	if !strings.Contains(dot, "shape=hexagon") {
		t.Error("victim shape missing")
	}

	// Computed positions ride along.
	if !strings.Contains(dot, `pos="0.0,`) {
		t.Error("pos attribute for level 0 missing")
	}

	// Edges carry amounts and styles.
	if !strings.Contains(dot, `"3" -> "2"`) {
		t.Error("transfer edge missing")
	}
	if !strings.Contains(dot, "25000.00 THB") {
		t.Error("amount label missing")
	}
	if !strings.Contains(dot, "style=dashed") {
		t.Error("call edge should be dashed")
	}

	// Dangling edges never reach the output.
	if strings.Contains(dot, "ghost") {
		t.Error("dangling edge rendered")
	}
}

func TestToDOTDetailed(t *testing.T) {
	n := testNetwork()
	res := layout.ComputeNetwork(n, layout.Options{})
	dot := ToDOT(n, res, Options{Detailed: true})

	if !strings.Contains(dot, "level:") {
		t.Error("detailed labels missing level")
	}
	if !strings.Contains(dot, "123-456") {
		t.Error("detailed labels missing sublabel")
	}
	if !strings.Contains(dot, "risk: critical") {
		t.Error("detailed labels missing risk")
	}
}

func TestToDOTEmptyNetwork(t *testing.T) {
	dot := ToDOT(graph.Network{}, layout.Result{Placements: map[string]layout.Placement{}}, Options{})

	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty network should still produce a valid digraph:\n%s", dot)
	}
}

func TestPenWidth(t *testing.T) {
	tests := []struct {
		amount float64
		want   float64
	}{
		{0, 1},
		{999, 1},
		{1000, 2},
		{9999, 2},
		{10000, 3},
		{100000, 4},
		{1000000, 5},
		{100000000, 5}, // capped
	}
	for _, tt := range tests {
		if got := penWidth(tt.amount); got != tt.want {
			t.Errorf("penWidth(%v) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)

	if !strings.Contains(string(out), `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(string(out), `width="100" height="50"`) {
		t.Errorf("dimensions not rewritten: %s", out)
	}

	// SVG without a viewBox passes through untouched.
	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox was modified")
	}
}
