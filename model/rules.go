package model

import "fmt"

// IllegalMoveError carries the reason the validator turned a move down.
type IllegalMoveError struct {
	Color  Color
	DX, DY int
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s by %d,%d: %s", e.Color, e.DX, e.DY, e.Reason)
}

const (
	ReasonDirection = "not a cardinal step"
	ReasonTurn      = "not this color's turn"
	ReasonBounds    = "outside the maze"
	ReasonWall      = "into a wall"
	ReasonColor     = "unknown color"
)

// Validator decides move legality. Trails never block.
type Validator struct {
	EnforceTurns bool
}

func (v Validator) Check(g *Grid, ps *Players, turn Turn, c Color, dx, dy int) error {
	illegal := func(reason string) error {
		return &IllegalMoveError{Color: c, DX: dx, DY: dy, Reason: reason}
	}
	if !c.Valid() {
		return illegal(ReasonColor)
	}
	if !Cardinal(dx, dy) {
		return illegal(ReasonDirection)
	}
	if v.EnforceTurns && turn.Color() != c {
		return illegal(ReasonTurn)
	}
	to := ps.Position(c).Add(dx, dy)
	cell, err := g.Get(to.X, to.Y)
	if err != nil {
		return illegal(ReasonBounds)
	}
	if cell == Wall {
		return illegal(ReasonWall)
	}
	return nil
}

func (v Validator) IsLegal(g *Grid, ps *Players, turn Turn, c Color, dx, dy int) bool {
	return v.Check(g, ps, turn, c, dx, dy) == nil
}
