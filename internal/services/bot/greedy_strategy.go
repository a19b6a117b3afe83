package bot

import "github.com/mcoot/multitetris/internal/model"

// Heuristic weights for scoring a resulting grid
const (
	weightLines     = 0.76
	weightHeight    = -0.51
	weightHoles     = -0.36
	weightBumpiness = -0.18
)

// GreedyStrategy tries every orientation and column and keeps the one whose
// resulting grid scores best. It looks one piece ahead only.
type GreedyStrategy struct{}

// NewGreedyStrategy creates a new GreedyStrategy
func NewGreedyStrategy() *GreedyStrategy {
	return &GreedyStrategy{}
}

// ChoosePlacement returns the best scoring placement. Earlier candidates win ties.
func (s *GreedyStrategy) ChoosePlacement(grid model.Grid, piece model.Piece, dir model.Direction) Placement {
	best := Placement{}
	bestScore := 0.0
	found := false

	for r := 0; r < 4; r++ {
		shape := rotated(piece.Shape, dir, r)
		minX, maxX := columnRange(shape)
		for x := minX; x <= maxX; x++ {
			candidate := model.Piece{Type: piece.Type, Shape: shape, X: x, Y: piece.Y}
			if grid.Collides(candidate, 0, 0, nil) {
				continue
			}
			score := evaluate(grid, candidate)
			if !found || score > bestScore {
				best = Placement{Rotations: r, X: x}
				bestScore = score
				found = true
			}
		}
	}
	return best
}

// evaluate drops the piece onto a copy of the grid and scores the result
func evaluate(grid model.Grid, p model.Piece) float64 {
	for !grid.Collides(p, 0, 1, nil) {
		p.Y++
	}
	g := grid.Clone()
	g.Place(p)
	full := g.FullRows()
	g = g.WithoutRows(full)

	heights := columnHeights(g)
	aggregate, bumpiness := 0, 0
	for x, h := range heights {
		aggregate += h
		if x > 0 {
			bumpiness += abs(h - heights[x-1])
		}
	}

	return weightLines*float64(len(full)) +
		weightHeight*float64(aggregate) +
		weightHoles*float64(countHoles(g)) +
		weightBumpiness*float64(bumpiness)
}

func columnHeights(g model.Grid) []int {
	heights := make([]int, model.Cols)
	for x := 0; x < model.Cols; x++ {
		for y := 0; y < len(g); y++ {
			if g[y][x] != model.CellEmpty {
				heights[x] = len(g) - y
				break
			}
		}
	}
	return heights
}

// countHoles counts empty cells with an occupied cell somewhere above them
func countHoles(g model.Grid) int {
	holes := 0
	for x := 0; x < model.Cols; x++ {
		covered := false
		for y := 0; y < len(g); y++ {
			if g[y][x] != model.CellEmpty {
				covered = true
			} else if covered {
				holes++
			}
		}
	}
	return holes
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
