package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kinship/pkg/family"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the gender to node labels.
	Detailed bool

	// Highlight lists people drawn with a thick red outline, typically the
	// two sides of a resolved relation and their shared relative.
	Highlight []string

	// Title is shown above the diagram when set.
	Title string
}

var fillColors = map[family.Gender]string{
	family.Female:    "#f8d7e3",
	family.Male:      "#d6e6f5",
	family.Nonbinary: "#e6f2d6",
}

const highlightColor = "#d62728"

// ToDOT converts a family graph to Graphviz DOT source. Output is
// deterministic: people are emitted in name order.
func ToDOT(g *family.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n", opts.Title)
	}
	buf.WriteString("\n")

	people := g.People()
	for _, p := range people {
		fmt.Fprintf(&buf, "  %q [%s];\n", p.Name, strings.Join(nodeAttrs(p, opts), ", "))
	}

	buf.WriteString("\n")
	for _, p := range people {
		for _, parent := range p.Parents {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.Name, g.Name(parent))
		}
	}

	buf.WriteString("\n")
	for _, p := range people {
		if !p.HasSpouse() || p.Spouse < p.ID {
			continue
		}
		spouse := g.Name(p.Spouse)
		fmt.Fprintf(&buf, "  %q -> %q [dir=none, style=dashed, constraint=false];\n", p.Name, spouse)
		fmt.Fprintf(&buf, "  { rank=same; %q; %q; }\n", p.Name, spouse)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(p family.Person, opts Options) []string {
	label := p.Name
	if opts.Detailed {
		label += "\n" + p.Gender.String()
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", fillColors[p.Gender]),
	}
	if slices.Contains(opts.Highlight, p.Name) {
		attrs = append(attrs, fmt.Sprintf("color=%q", highlightColor), "penwidth=3")
	}
	return attrs
}

// Format is an output format of [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Render turns DOT source into the requested format. FormatDOT returns the
// source unchanged.
func Render(ctx context.Context, src string, format Format) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		return RenderSVG(ctx, src)
	case FormatPNG:
		return render(ctx, src, graphviz.PNG)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// RenderSVG renders DOT source to a standalone SVG document.
func RenderSVG(ctx context.Context, src string) ([]byte, error) {
	svg, err := render(ctx, src, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

func render(ctx context.Context, src string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a plain
// viewBox anchored at the origin so the image scales in a browser.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
