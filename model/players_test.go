package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMoveIsIdempotent(t *testing.T) {
	ps := NewPlayers()
	ps.Reset(Position{0, 0}, Position{3, 3})

	ps.ApplyMove(Red, Position{1, 0})
	once := ps.Clone()
	ps.ApplyMove(Red, Position{1, 0})

	assert.Equal(t, once.Player(Red), ps.Player(Red))
	assert.Equal(t, []Position{{0, 0}}, ps.Player(Red).Trail)
	assert.Equal(t, Position{3, 3}, ps.Position(Blue))
}

func TestApplyMoveTrustsServer(t *testing.T) {
	ps := NewPlayers()
	ps.Reset(Position{0, 0}, Position{3, 3})

	ps.ApplyMove(Blue, Position{0, 3})
	assert.Equal(t, Position{0, 3}, ps.Position(Blue), "jumps are not second-guessed")

	ps.ApplyMove(NoColor, Position{1, 1})
	assert.Equal(t, Position{0, 0}, ps.Position(Red))
}

func TestPlayerReturnsCopy(t *testing.T) {
	ps := NewPlayers()
	ps.ApplyMove(Red, Position{1, 0})
	p := ps.Player(Red)
	p.Trail[0] = Position{9, 9}
	assert.Equal(t, Position{0, 0}, ps.Player(Red).Trail[0])
}

func TestAssignOnce(t *testing.T) {
	ps := NewPlayers()
	_, ok := ps.LocalColor()
	assert.False(t, ok)

	require.NoError(t, ps.Assign(Blue))
	assert.ErrorIs(t, ps.Assign(Red), ErrAlreadyAssigned)

	c, ok := ps.LocalColor()
	assert.True(t, ok)
	assert.Equal(t, Blue, c)
}

func TestApplyLocalRevert(t *testing.T) {
	g, err := DecodeGrid("0000000000000000", 4)
	require.NoError(t, err)
	ps := NewPlayers()
	ps.Reset(Position{0, 0}, Position{3, 3})
	ps.ApplyMove(Red, Position{1, 0})
	g.MarkTrail(Position{0, 0}, Red)
	before, beforeGrid := ps.Clone(), g.Clone()

	u := ApplyLocal(g, ps, Red, Position{1, 1})
	assert.Equal(t, Position{1, 1}, ps.Position(Red))
	c, _ := g.Get(1, 0)
	assert.Equal(t, RedTrail, c)

	u.Revert(g, ps)
	assert.Equal(t, before.Player(Red), ps.Player(Red))
	assert.Equal(t, beforeGrid.String(), g.String())
}
