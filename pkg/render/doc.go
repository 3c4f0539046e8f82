// Package render draws a tangle as a node-link diagram.
//
// [ToDOT] emits Graphviz DOT with the origin at the top and every
// transaction ranked by its depth, so each horizontal band of the picture
// is one depth level. [RenderSVG] lays the DOT out with the embedded
// Graphviz (github.com/goccy/go-graphviz, compiled to WebAssembly), which
// means no system Graphviz install is required.
//
//	dot := render.ToDOT(t, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Tips are filled so they stand out; the origin is drawn as a double
// circle.
package render
