package render

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/coordinates"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
)

// Renderer draws a clustered graph
type Renderer interface {
	Render(g *bipartite.Graph, p greedy.Partition, positions map[int]coordinates.Position) error
}

// NopRenderer draws nothing
type NopRenderer struct{}

// Render implements Renderer
func (NopRenderer) Render(*bipartite.Graph, greedy.Partition, map[int]coordinates.Position) error {
	return nil
}

// PlotRenderer saves the clustered graph as an image. The format follows the
// file extension.
type PlotRenderer struct {
	Path       string
	Title      string
	Size       vg.Length
	NodeRadius vg.Length
	EdgeAlpha  float64
}

var supportedFormats = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true,
}

// NewPlotRenderer creates a renderer writing to path
func NewPlotRenderer(path string) (*PlotRenderer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormats[ext] {
		return nil, fmt.Errorf("unsupported plot format %q", ext)
	}
	return &PlotRenderer{
		Path:       path,
		Title:      "Customer-product communities",
		Size:       6 * vg.Inch,
		NodeRadius: vg.Points(2.5),
		EdgeAlpha:  0.5,
	}, nil
}

// Render draws edges first, then one scatter per community
func (r *PlotRenderer) Render(g *bipartite.Graph, p greedy.Partition, positions map[int]coordinates.Position) error {
	if len(positions) != g.NumNodes() {
		return fmt.Errorf("have %d positions for %d nodes", len(positions), g.NumNodes())
	}

	pl := plot.New()
	pl.Title.Text = r.Title
	pl.HideAxes()

	edgeColor := color.NRGBA{R: 0, G: 0, B: 0, A: uint8(math.Round(r.EdgeAlpha * 255))}
	for _, e := range g.Edges() {
		from, to := positions[e.From], positions[e.To]
		line, err := plotter.NewLine(plotter.XYs{{X: from.X, Y: from.Y}, {X: to.X, Y: to.Y}})
		if err != nil {
			return fmt.Errorf("failed to draw edge %d-%d: %w", e.From, e.To, err)
		}
		line.LineStyle.Color = edgeColor
		line.LineStyle.Width = vg.Points(0.5)
		pl.Add(line)
	}

	palette := Rainbow(len(p))
	for ci, community := range p {
		pts := make(plotter.XYs, len(community))
		for i, node := range community {
			pos := positions[node]
			pts[i] = plotter.XY{X: pos.X, Y: pos.Y}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to draw community %d: %w", ci, err)
		}
		scatter.GlyphStyle.Color = palette[ci]
		scatter.GlyphStyle.Radius = r.NodeRadius
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		pl.Add(scatter)
	}

	if err := pl.Save(r.Size, r.Size, r.Path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", r.Path, err)
	}
	return nil
}

// Rainbow returns n colors spread evenly over a rainbow colormap
func Rainbow(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		colors[i] = color.NRGBA{
			R: channel(math.Abs(2*x - 0.5)),
			G: channel(math.Sin(math.Pi * x)),
			B: channel(math.Cos(math.Pi / 2 * x)),
			A: 255,
		}
	}
	return colors
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
