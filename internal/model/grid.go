package model

// Grid dimensions
const (
	Rows = 20
	Cols = 10
)

// Cell values
const (
	CellEmpty   = 0
	CellGarbage = 8
	MaxCell     = CellGarbage
)

// Position identifies a cell on the grid
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Grid is the row-major cell matrix of a single player's playfield.
// Grid[row][col], 0 means empty, 1-7 are piece types, 8 is garbage.
type Grid [][]int

// NewGrid creates an empty Rows x Cols grid
func NewGrid() Grid {
	g := make(Grid, Rows)
	for i := range g {
		g[i] = make([]int, Cols)
	}
	return g
}

// EmptyRow returns a fresh row with no occupied cells
func EmptyRow() []int {
	return make([]int, Cols)
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// Valid returns true if the grid has the expected dimensions and every
// cell value is in range
func (g Grid) Valid() bool {
	if len(g) != Rows {
		return false
	}
	for _, row := range g {
		if len(row) != Cols {
			return false
		}
		for _, v := range row {
			if v < CellEmpty || v > MaxCell {
				return false
			}
		}
	}
	return true
}

// IsValidPosition returns true if the position is within bounds
func (g Grid) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < len(g) && pos.Col >= 0 && pos.Col < Cols
}

// Get returns the cell value at the given position, or 0 if out of bounds
func (g Grid) Get(pos Position) int {
	if !g.IsValidPosition(pos) {
		return CellEmpty
	}
	return g[pos.Row][pos.Col]
}

// Collides reports whether the piece, translated by (dx, dy) and drawn with
// shape (the piece's own shape when nil), would overlap an occupied cell or
// leave the playfield. Cells above the top edge never collide so pieces can
// spawn partially off-grid.
func (g Grid) Collides(p Piece, dx, dy int, shape Shape) bool {
	if shape == nil {
		shape = p.Shape
	}
	newX := p.X + dx
	newY := p.Y + dy

	for y, row := range shape {
		for x, cell := range row {
			if cell == CellEmpty {
				continue
			}
			gridX := newX + x
			gridY := newY + y
			if gridX < 0 || gridX >= Cols || gridY >= len(g) {
				return true
			}
			if gridY >= 0 && g[gridY][gridX] != CellEmpty {
				return true
			}
		}
	}
	return false
}

// Place writes the piece's occupied cells into the grid. Cells above the
// top edge are discarded. Returns the number of cells written.
func (g Grid) Place(p Piece) int {
	written := 0
	for y, row := range p.Shape {
		for x, cell := range row {
			if cell == CellEmpty {
				continue
			}
			gridY := p.Y + y
			gridX := p.X + x
			if gridY < 0 || gridY >= len(g) || gridX < 0 || gridX >= Cols {
				continue
			}
			g[gridY][gridX] = cell
			written++
		}
	}
	return written
}

// RowFull returns true if every cell in the row is occupied
func (g Grid) RowFull(row int) bool {
	if row < 0 || row >= len(g) {
		return false
	}
	for _, v := range g[row] {
		if v == CellEmpty {
			return false
		}
	}
	return true
}

// FullRows returns the indices of all fully occupied rows, bottom first
func (g Grid) FullRows() []int {
	var rows []int
	for y := len(g) - 1; y >= 0; y-- {
		if g.RowFull(y) {
			rows = append(rows, y)
		}
	}
	return rows
}

// WithoutRows returns a new grid with the given rows spliced out and empty
// rows padded on top so the height is unchanged
func (g Grid) WithoutRows(rows []int) Grid {
	remove := make(map[int]bool, len(rows))
	for _, r := range rows {
		remove[r] = true
	}

	kept := make(Grid, 0, len(g))
	for y, row := range g {
		if remove[y] {
			continue
		}
		cp := make([]int, len(row))
		copy(cp, row)
		kept = append(kept, cp)
	}

	out := make(Grid, 0, len(g))
	for i := len(kept); i < len(g); i++ {
		out = append(out, EmptyRow())
	}
	return append(out, kept...)
}

// FilledCount returns the number of occupied cells
func (g Grid) FilledCount() int {
	count := 0
	for _, row := range g {
		for _, v := range row {
			if v != CellEmpty {
				count++
			}
		}
	}
	return count
}

// AnyOccupied returns true if any cell in the first n rows is occupied
func (g Grid) AnyOccupied(n int) bool {
	for y := 0; y < n && y < len(g); y++ {
		for _, v := range g[y] {
			if v != CellEmpty {
				return true
			}
		}
	}
	return false
}

// IsEmpty returns true if no cell in the grid is occupied
func (g Grid) IsEmpty() bool {
	return g.FilledCount() == 0
}
