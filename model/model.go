package model

import (
	"fmt"
	"strings"
)

type Cell int8

const (
	Empty Cell = iota
	Wall
	RedTrail
	BlueTrail
)

func (c Cell) Name() string {
	switch c {
	case Empty:
		return "EMPTY"
	case Wall:
		return "WALL"
	case RedTrail:
		return "RED_TRAIL"
	case BlueTrail:
		return "BLUE_TRAIL"
	default:
		return fmt.Sprintf("N/A(%d)", c)
	}
}

// Color identifies one of the two racers. The zero value is no color at all.
type Color int8

const (
	NoColor Color = iota
	Red
	Blue
)

var Colors = []Color{Red, Blue}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "red":
		return Red, nil
	case "blue":
		return Blue, nil
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	default:
		return ""
	}
}

func (c Color) Valid() bool {
	return c == Red || c == Blue
}

func (c Color) Opponent() Color {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return NoColor
	}
}

// Trail is the cell marker a player leaves behind.
func (c Color) Trail() Cell {
	if c == Blue {
		return BlueTrail
	}
	return RedTrail
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal color %d", c)
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

type Turn int8

const (
	RedToMove Turn = iota
	BlueToMove
)

func TurnOf(c Color) Turn {
	if c == Blue {
		return BlueToMove
	}
	return RedToMove
}

func (t Turn) Color() Color {
	if t == BlueToMove {
		return Blue
	}
	return Red
}

func (t Turn) Next() Turn {
	return TurnOf(t.Color().Opponent())
}

func (t Turn) Name() string {
	switch t {
	case RedToMove:
		return "RED_TO_MOVE"
	case BlueToMove:
		return "BLUE_TO_MOVE"
	default:
		return fmt.Sprintf("N/A(%d)", t)
	}
}

type Direction struct {
	DX, DY int
}

var (
	Up    = Direction{0, -1}
	Down  = Direction{0, 1}
	Left  = Direction{-1, 0}
	Right = Direction{1, 0}
)

var Directions = [4]Direction{Up, Right, Down, Left}

// Cardinal reports whether (dx, dy) is a single step up, down, left or right.
func Cardinal(dx, dy int) bool {
	for _, d := range Directions {
		if d.DX == dx && d.DY == dy {
			return true
		}
	}
	return false
}
