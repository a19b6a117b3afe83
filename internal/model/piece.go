package model

// PieceType identifies one of the seven tetrominoes
type PieceType string

const (
	PieceI PieceType = "I"
	PieceO PieceType = "O"
	PieceT PieceType = "T"
	PieceS PieceType = "S"
	PieceZ PieceType = "Z"
	PieceJ PieceType = "J"
	PieceL PieceType = "L"
)

// AllPieceTypes returns the piece types in their canonical order
func AllPieceTypes() []PieceType {
	return []PieceType{PieceI, PieceO, PieceT, PieceS, PieceZ, PieceJ, PieceL}
}

// Direction is a rotation direction
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	if d == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

// String returns a display label for the direction
func (d Direction) String() string {
	if d == Clockwise {
		return "clockwise"
	}
	return "counterclockwise"
}

// Shape is a square matrix of cell values
type Shape [][]int

var pieceShapes = map[PieceType]Shape{
	PieceI: {
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	},
	PieceO: {
		{2, 2},
		{2, 2},
	},
	PieceT: {
		{0, 3, 0},
		{3, 3, 3},
		{0, 0, 0},
	},
	PieceS: {
		{0, 4, 4},
		{4, 4, 0},
		{0, 0, 0},
	},
	PieceZ: {
		{5, 5, 0},
		{0, 5, 5},
		{0, 0, 0},
	},
	PieceJ: {
		{6, 0, 0},
		{6, 6, 6},
		{0, 0, 0},
	},
	PieceL: {
		{0, 0, 7},
		{7, 7, 7},
		{0, 0, 0},
	},
}

// ShapeOf returns a fresh copy of the spawn orientation of a piece type
func ShapeOf(t PieceType) Shape {
	return pieceShapes[t].Clone()
}

// Clone returns a deep copy of the shape
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	for i, row := range s {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// Rotate returns the shape rotated 90 degrees in the given direction.
// The receiver is never modified.
func (s Shape) Rotate(dir Direction) Shape {
	n := len(s)
	rotated := make(Shape, n)
	for i := range rotated {
		rotated[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dir == Clockwise {
				rotated[j][n-1-i] = s[i][j]
			} else {
				rotated[n-1-j][i] = s[i][j]
			}
		}
	}
	return rotated
}

// CellCount returns the number of occupied cells in the shape
func (s Shape) CellCount() int {
	count := 0
	for _, row := range s {
		for _, v := range row {
			if v != CellEmpty {
				count++
			}
		}
	}
	return count
}

// Piece is a tetromino instance on a grid
type Piece struct {
	Type  PieceType
	Shape Shape
	X     int // column of the shape's top-left cell
	Y     int // row of the shape's top-left cell
}

// NewPiece creates a piece of the given type at its spawn position,
// horizontally centred on the top row
func NewPiece(t PieceType) Piece {
	shape := ShapeOf(t)
	return Piece{
		Type:  t,
		Shape: shape,
		X:     Cols/2 - len(shape[0])/2,
		Y:     0,
	}
}

// Clone returns a deep copy of the piece
func (p Piece) Clone() Piece {
	p.Shape = p.Shape.Clone()
	return p
}
