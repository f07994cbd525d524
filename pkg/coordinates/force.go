package coordinates

import (
	"math"
	"math/rand/v2"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
)

// ForceLayout is a Fruchterman-Reingold spring layout with a seeded start
type ForceLayout struct {
	config Config
}

// NewForceLayout creates a force-directed layout
func NewForceLayout(config Config) *ForceLayout {
	if config.Iterations <= 0 {
		config.Iterations = 50
	}
	return &ForceLayout{config: config}
}

// Compute runs the spring simulation and scales the result to the canvas
func (fl *ForceLayout) Compute(g *bipartite.Graph) (map[int]Position, error) {
	n := g.NumNodes()
	if n == 0 {
		return map[int]Position{}, nil
	}
	if n == 1 {
		return map[int]Position{0: center(fl.config)}, nil
	}

	cfg := fl.config
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	pos := make([]Position, n)
	for i := range pos {
		pos[i] = Position{
			X: rng.Float64()*(cfg.Width-2*cfg.Padding) + cfg.Padding,
			Y: rng.Float64()*(cfg.Height-2*cfg.Padding) + cfg.Padding,
		}
	}

	edges := g.Edges()
	k := math.Sqrt((cfg.Width * cfg.Height) / float64(n)) // optimal distance
	temperature := cfg.Width / 10.0
	forces := make([]Position, n)

	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range forces {
			forces[i] = Position{}
		}

		// repulsion between all pairs
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := pos[i].X - pos[j].X
				dy := pos[i].Y - pos[j].Y
				dist := math.Max(math.Sqrt(dx*dx+dy*dy), 0.01)

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force
				forces[i].X += fx
				forces[i].Y += fy
				forces[j].X -= fx
				forces[j].Y -= fy
			}
		}

		// attraction along edges
		for _, e := range edges {
			dx := pos[e.From].X - pos[e.To].X
			dy := pos[e.From].Y - pos[e.To].Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist < 0.01 {
				continue
			}

			force := (dist * dist) / k
			fx := (dx / dist) * force
			fy := (dy / dist) * force
			forces[e.From].X -= fx
			forces[e.From].Y -= fy
			forces[e.To].X += fx
			forces[e.To].Y += fy
		}

		cool := 1.0 - float64(iter)/float64(cfg.Iterations)
		for i := range pos {
			fx, fy := forces[i].X, forces[i].Y
			force := math.Sqrt(fx*fx + fy*fy)
			if force > 0 {
				step := math.Min(force, temperature) * cool
				pos[i].X += (fx / force) * step
				pos[i].Y += (fy / force) * step
			}
		}

		temperature *= 0.95
	}

	positions := make(map[int]Position, n)
	for i, p := range pos {
		positions[i] = p
	}
	return normalize(positions, cfg.Width, cfg.Height, cfg.Padding), nil
}
