// Package dot renders case networks to Graphviz DOT and SVG.
//
// The DOT output carries the layout engine's computed positions as pos
// attributes, so downstream tooling can reproduce the exact waterfall
// placement. Risk levels map to node colors, assessment flags to shapes, and
// transfer amounts to edge thickness.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/casegraph/casegraph/pkg/graph"
	"github.com/casegraph/casegraph/pkg/graph/layout"
)

// Options configures DOT rendering.
type Options struct {
	// Detailed includes level numbers, risk, and sublabels in node labels.
	// When false, only the display label is shown.
	Detailed bool
}

var riskColors = map[graph.RiskLevel]string{
	graph.RiskCritical: "#d64550",
	graph.RiskHigh:     "#e8883a",
	graph.RiskMedium:   "#e3c441",
	graph.RiskLow:      "#67b26f",
	graph.RiskUnknown:  "#b0b7c3",
}

// ToDOT converts a laid-out network to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
//
// Suspects are drawn as double octagons and victims as hexagons so they stand
// out in exported diagrams. Relationships whose endpoints are missing from
// the entity set are skipped, matching the layout engine's traversal.
func ToDOT(n graph.Network, res layout.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, e := range n.Entities {
		attrs := entityAttrs(e, res.Placements[e.ID], opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", e.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, r := range n.Relationships {
		if _, ok := res.Placements[r.SourceID]; !ok {
			continue
		}
		if _, ok := res.Placements[r.TargetID]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", r.SourceID, r.TargetID, strings.Join(relAttrs(r), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func entityAttrs(e graph.Entity, p layout.Placement, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", entityLabel(e, p, detailed)),
		fmt.Sprintf("fillcolor=%q", riskColors[e.Risk]),
		fmt.Sprintf("pos=\"%.1f,%.1f\"", p.X, p.Y),
	}
	switch {
	case e.Suspect:
		attrs = append(attrs, "shape=doubleoctagon")
	case e.Victim:
		attrs = append(attrs, "shape=hexagon")
	}
	return attrs
}

func entityLabel(e graph.Entity, p layout.Placement, detailed bool) string {
	label := e.DisplayLabel()
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("level: %d", p.Level)}
	if e.Sublabel != "" {
		parts = append(parts, e.Sublabel)
	}
	if e.Risk != "" && e.Risk != graph.RiskUnknown {
		parts = append(parts, fmt.Sprintf("risk: %s", e.Risk))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func relAttrs(r graph.Relationship) []string {
	attrs := []string{fmt.Sprintf("penwidth=%.1f", penWidth(r.Amount))}
	if label := relLabel(r); label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	if r.Type == graph.RelCall || r.Type == graph.RelMeeting {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func relLabel(r graph.Relationship) string {
	if r.Label != "" {
		return r.Label
	}
	if r.Amount > 0 {
		return strings.TrimSpace(fmt.Sprintf("%.2f %s", r.Amount, r.Currency))
	}
	return ""
}

// penWidth scales edge thickness with the transfer amount: 1pt baseline,
// one extra point per order of magnitude above 1000, capped at 5pt.
func penWidth(amount float64) float64 {
	width := 1.0
	for threshold := 1000.0; amount >= threshold && width < 5; threshold *= 10 {
		width++
	}
	return width
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element with a zero-origin viewBox
// and explicit dimensions so embedding contexts scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
