package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrBadSize     = errors.New("grid size must be positive")
)

// DecodeError reports a flat maze payload that cannot become a grid.
type DecodeError struct {
	Length int
	Size   int
	Index  int
	Char   rune
}

func (e *DecodeError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("decode maze: invalid cell %q at index %d", e.Char, e.Index)
	}
	return fmt.Sprintf("decode maze: length %d, want %d for size %d", e.Length, e.Size*e.Size, e.Size)
}

// Grid is a square, row-major maze. Its size never changes after construction.
type Grid struct {
	n     int
	cells []Cell
}

func NewGrid(n int) *Grid {
	if n < 1 {
		n = 1
	}
	return &Grid{n: n, cells: make([]Cell, n*n)}
}

// DecodeGrid parses the flat wire form, one digit per cell. A zero n takes the
// size from the payload, which then has to be a perfect square.
func DecodeGrid(flat string, n int) (*Grid, error) {
	if n < 0 {
		return nil, ErrBadSize
	}
	if n == 0 {
		root := int(math.Sqrt(float64(len(flat))))
		for root*root < len(flat) {
			root++
		}
		if root == 0 || root*root != len(flat) {
			return nil, &DecodeError{Length: len(flat), Size: root}
		}
		n = root
	}
	if len(flat) != n*n {
		return nil, &DecodeError{Length: len(flat), Size: n}
	}
	g := &Grid{n: n, cells: make([]Cell, n*n)}
	for i := 0; i < len(flat); i++ {
		ch := flat[i]
		if ch < '0' || ch > '3' {
			return nil, &DecodeError{Length: len(flat), Size: n, Index: i, Char: rune(ch)}
		}
		g.cells[i] = Cell(ch - '0')
	}
	return g, nil
}

func (g *Grid) Size() int {
	return g.n
}

func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.n && p.Y >= 0 && p.Y < g.n
}

func (g *Grid) Get(x, y int) (Cell, error) {
	if !g.InBounds(Position{x, y}) {
		return Empty, fmt.Errorf("get %d,%d on %dx%d: %w", x, y, g.n, g.n, ErrOutOfBounds)
	}
	return g.cells[y*g.n+x], nil
}

func (g *Grid) Set(x, y int, c Cell) error {
	if !g.InBounds(Position{x, y}) {
		return fmt.Errorf("set %d,%d on %dx%d: %w", x, y, g.n, g.n, ErrOutOfBounds)
	}
	g.cells[y*g.n+x] = c
	return nil
}

// MarkTrail leaves color's trail on an empty cell. Walls and the other
// player's trail are kept as they are.
func (g *Grid) MarkTrail(p Position, c Color) {
	if !g.InBounds(p) || !c.Valid() {
		return
	}
	i := p.Y*g.n + p.X
	switch g.cells[i] {
	case Empty, c.Trail():
		g.cells[i] = c.Trail()
	}
}

func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{n: g.n, cells: cells}
}

// String encodes the grid back to the flat wire form.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(len(g.cells))
	for _, c := range g.cells {
		b.WriteByte(byte('0' + c))
	}
	return b.String()
}

func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.n)
	for y := range rows {
		rows[y] = make([]Cell, g.n)
		copy(rows[y], g.cells[y*g.n:(y+1)*g.n])
	}
	return rows
}
