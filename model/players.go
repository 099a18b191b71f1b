package model

import "errors"

var ErrAlreadyAssigned = errors.New("local color already assigned")

type Player struct {
	Color Color
	Pos   Position
	Trail []Position
}

// Players is the client's view of both racers plus its own identity.
type Players struct {
	red, blue Player
	local     Color
}

func NewPlayers() *Players {
	return &Players{
		red:  Player{Color: Red},
		blue: Player{Color: Blue},
	}
}

func (ps *Players) player(c Color) *Player {
	if c == Blue {
		return &ps.blue
	}
	return &ps.red
}

func (ps *Players) Player(c Color) Player {
	p := *ps.player(c)
	p.Trail = append([]Position(nil), p.Trail...)
	return p
}

func (ps *Players) Position(c Color) Position {
	return ps.player(c).Pos
}

// ApplyMove trusts the server: the position is overwritten as given. The
// departed cell joins the trail only when the position actually changes.
func (ps *Players) ApplyMove(c Color, pos Position) {
	if !c.Valid() {
		return
	}
	p := ps.player(c)
	if p.Pos == pos {
		return
	}
	p.Trail = append(p.Trail, p.Pos)
	p.Pos = pos
}

// Reset places both players and forgets their trails.
func (ps *Players) Reset(red, blue Position) {
	ps.red = Player{Color: Red, Pos: red}
	ps.blue = Player{Color: Blue, Pos: blue}
}

func (ps *Players) Assign(c Color) error {
	if ps.local != NoColor {
		return ErrAlreadyAssigned
	}
	ps.local = c
	return nil
}

func (ps *Players) LocalColor() (Color, bool) {
	return ps.local, ps.local != NoColor
}

func (ps *Players) Clone() *Players {
	return &Players{
		red:   ps.Player(Red),
		blue:  ps.Player(Blue),
		local: ps.local,
	}
}

// restore puts a player back to an earlier position and trail length.
func (ps *Players) restore(c Color, pos Position, trailLen int) {
	p := ps.player(c)
	p.Pos = pos
	if trailLen < len(p.Trail) {
		p.Trail = p.Trail[:trailLen]
	}
}

// Undo is what is needed to take one locally applied move back.
type Undo struct {
	Color    Color
	From     Position
	To       Position
	TrailLen int
	Departed Cell
}

// ApplyLocal moves c by one step on both grid and players and returns the
// record that reverts it.
func ApplyLocal(g *Grid, ps *Players, c Color, to Position) Undo {
	from := ps.Position(c)
	departed, _ := g.Get(from.X, from.Y)
	u := Undo{Color: c, From: from, To: to, TrailLen: len(ps.player(c).Trail), Departed: departed}
	ps.ApplyMove(c, to)
	if from != to {
		g.MarkTrail(from, c)
	}
	return u
}

// Revert undoes an ApplyLocal.
func (u Undo) Revert(g *Grid, ps *Players) {
	ps.restore(u.Color, u.From, u.TrailLen)
	_ = g.Set(u.From.X, u.From.Y, u.Departed)
}
