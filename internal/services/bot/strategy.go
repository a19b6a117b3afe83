package bot

import "github.com/mcoot/multitetris/internal/model"

// Placement is where a bot wants the current piece to land
type Placement struct {
	Rotations int // RotatePiece calls to make before moving
	X         int // target column of the shape's top-left cell
}

// Strategy defines how a bot chooses a placement for the falling piece
type Strategy interface {
	// ChoosePlacement picks a placement for piece on grid. dir is the
	// engine's rotation direction.
	ChoosePlacement(grid model.Grid, piece model.Piece, dir model.Direction) Placement
}

// rotated returns the shape after n rotations in dir
func rotated(shape model.Shape, dir model.Direction, n int) model.Shape {
	out := shape.Clone()
	for i := 0; i < n; i++ {
		out = out.Rotate(dir)
	}
	return out
}

// columnRange returns the X values that keep every occupied cell of the
// shape inside the grid
func columnRange(shape model.Shape) (minX, maxX int) {
	first, last := len(shape), -1
	for _, row := range shape {
		for x, v := range row {
			if v == model.CellEmpty {
				continue
			}
			first = min(first, x)
			last = max(last, x)
		}
	}
	if last < 0 {
		return 0, 0
	}
	return -first, model.Cols - 1 - last
}
