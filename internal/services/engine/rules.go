package engine

import "github.com/mcoot/multitetris/internal/model"

// linePoints is indexed by rows cleared at once; 4 or more score as 4
var linePoints = [...]int{0, 40, 100, 300, 1200}

// garbageRows is indexed by rows cleared at once; 4 or more send 4
var garbageRows = [...]int{0, 0, 1, 2, 4}

// LinePoints returns the base points for clearing n rows at once
func LinePoints(n int) int {
	if n <= 0 {
		return 0
	}
	return linePoints[min(n, len(linePoints)-1)]
}

// GarbageForLines returns the attack size for clearing n rows at once
func GarbageForLines(n int) int {
	if n <= 0 {
		return 0
	}
	return garbageRows[min(n, len(garbageRows)-1)]
}

// LevelForLines returns the level reached after clearing the given total
func LevelForLines(lines int) int {
	return lines/10 + 1
}

// EaseOutBounce maps linear progress t in [0,1] to a bouncing landing curve
func EaseOutBounce(t float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// settle drops every floating cell straight down within its column,
// working bottom-up so stacked cells land on each other. Returns the
// settled grid and one block per moved cell.
func settle(g model.Grid) (model.Grid, []GravityBlock) {
	out := g.Clone()
	var blocks []GravityBlock

	for x := 0; x < model.Cols; x++ {
		for y := len(out) - 2; y >= 0; y-- {
			v := out[y][x]
			if v == model.CellEmpty {
				continue
			}
			target := y
			for target+1 < len(out) && out[target+1][x] == model.CellEmpty {
				target++
			}
			if target == y {
				continue
			}
			out[target][x] = v
			out[y][x] = model.CellEmpty
			blocks = append(blocks, GravityBlock{
				Col:      x,
				StartRow: y,
				EndRow:   target,
				Value:    v,
			})
		}
	}
	return out, blocks
}
