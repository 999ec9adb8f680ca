// Package dot renders family graphs with Graphviz.
//
// [ToDOT] produces DOT source: one rounded box per person, filled by gender,
// an arrow from every child to each of its parents, and a dashed undirected
// edge between spouses, who are kept on the same rank. Parents are drawn
// above their children (rankdir=BT).
//
//	src := dot.ToDOT(g, dot.Options{Highlight: []string{"Alice", "Carol"}})
//	svg, err := dot.RenderSVG(ctx, src)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Rendering to SVG or PNG happens in-process through
// [github.com/goccy/go-graphviz]; no Graphviz installation is needed.
package dot
