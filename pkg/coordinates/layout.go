package coordinates

import (
	"fmt"
	"math"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
)

// Position represents a 2D coordinate
type Position struct {
	X, Y float64
}

// Kind names a layout algorithm
type Kind string

const (
	KindForce Kind = "force"
	KindMDS   Kind = "mds"
)

// Config controls canvas size and iterative layouts
type Config struct {
	Kind       Kind    `json:"kind"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Padding    float64 `json:"padding"`
	Iterations int     `json:"iterations"`
	Seed       uint64  `json:"seed"`
}

// DefaultConfig returns the standard layout configuration
func DefaultConfig() Config {
	return Config{
		Kind:       KindForce,
		Width:      1000,
		Height:     1000,
		Padding:    50,
		Iterations: 50,
		Seed:       42,
	}
}

// Layout places every node of a graph on the canvas. Keys are node indices.
type Layout interface {
	Compute(g *bipartite.Graph) (map[int]Position, error)
}

// New returns the layout named by config.Kind
func New(config Config) (Layout, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("layout canvas must be positive, got %vx%v", config.Width, config.Height)
	}
	if 2*config.Padding >= math.Min(config.Width, config.Height) {
		return nil, fmt.Errorf("layout padding %v leaves no drawing area", config.Padding)
	}

	switch config.Kind {
	case KindForce, "":
		return NewForceLayout(config), nil
	case KindMDS:
		return NewMDSLayout(config), nil
	default:
		return nil, fmt.Errorf("unknown layout kind %q", config.Kind)
	}
}

// normalize scales positions into the padded canvas
func normalize(positions map[int]Position, width, height, padding float64) map[int]Position {
	if len(positions) == 0 {
		return positions
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, pos := range positions {
		minX = math.Min(minX, pos.X)
		maxX = math.Max(maxX, pos.X)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	normalized := make(map[int]Position, len(positions))
	for node, pos := range positions {
		normalized[node] = Position{
			X: padding + ((pos.X-minX)/rangeX)*targetWidth,
			Y: padding + ((pos.Y-minY)/rangeY)*targetHeight,
		}
	}
	return normalized
}

func center(config Config) Position {
	return Position{X: config.Width / 2, Y: config.Height / 2}
}
