package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tanglestat/pkg/tangle"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed adds the timestamp and depth to each label.
	// When false, only the transaction index is shown.
	Detailed bool

	// RankByDepth aligns transactions of equal depth on one row.
	RankByDepth bool
}

// ToDOT converts a tangle to Graphviz DOT. Nodes are named tx<index>;
// parallel edges are kept, so a transaction approving the same parent
// twice shows two arrows.
func ToDOT(t *tangle.Tangle, opts Options) string {
	depths := t.MustDepths()

	var buf bytes.Buffer
	buf.WriteString("digraph tangle {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, tx := range t.Transactions() {
		label := fmtLabel(tx, depths[tx.Index], opts.Detailed)
		attrs := fmtAttrs(t, tx, label)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(tx.Index), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range t.Len() {
		for _, c := range t.Children(i) {
			fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(i), nodeID(c))
		}
	}

	if opts.RankByDepth {
		levels := make([][]string, t.MaxDepth()+1)
		for i, d := range depths {
			levels[d] = append(levels[d], nodeID(i))
		}
		buf.WriteString("\n")
		for _, ids := range levels {
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string { return "tx" + strconv.Itoa(i) }

func fmtLabel(tx tangle.Transaction, depth int, detailed bool) string {
	label := strconv.Itoa(tx.Index)
	if !detailed {
		return label
	}
	if ts, ok := tx.Time(); ok {
		label += "\nt=" + strconv.FormatUint(ts, 10)
	}
	return label + "\nd=" + strconv.Itoa(depth)
}

func fmtAttrs(t *tangle.Tangle, tx tangle.Transaction, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case tx.IsOrigin():
		attrs = append(attrs, "shape=doublecircle")
	case t.IsTip(tx.Index):
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG lays out a DOT graph and returns SVG bytes with a normalized
// viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

// normalizeViewBox replaces Graphviz's point-based size attributes with a
// plain viewBox so the SVG scales in browsers.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
