package bot

import (
	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
)

// RandomStrategy picks a random orientation and a random legal column
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChoosePlacement returns a random rotation count and column
func (s *RandomStrategy) ChoosePlacement(grid model.Grid, piece model.Piece, dir model.Direction) Placement {
	rotations := s.random.Intn(4)
	minX, maxX := columnRange(rotated(piece.Shape, dir, rotations))
	return Placement{
		Rotations: rotations,
		X:         minX + s.random.Intn(maxX-minX+1),
	}
}
