package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBoard(t *testing.T) (*Grid, *Players) {
	t.Helper()
	g, err := DecodeGrid("0000000000000000", 4)
	require.NoError(t, err)
	ps := NewPlayers()
	ps.Reset(Position{0, 0}, Position{3, 3})
	require.NoError(t, ps.Assign(Red))
	return g, ps
}

func TestLegalStepMarksTrail(t *testing.T) {
	g, ps := openBoard(t)
	v := Validator{EnforceTurns: true}

	require.True(t, v.IsLegal(g, ps, RedToMove, Red, 1, 0))
	ApplyLocal(g, ps, Red, ps.Position(Red).Add(1, 0))

	assert.Equal(t, Position{1, 0}, ps.Position(Red))
	c, err := g.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, RedTrail, c)
}

func TestWallBlocks(t *testing.T) {
	g, ps := openBoard(t)
	require.NoError(t, g.Set(1, 0, Wall))
	before := ps.Clone()

	err := Validator{}.Check(g, ps, RedToMove, Red, 1, 0)
	var ie *IllegalMoveError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ReasonWall, ie.Reason)
	assert.Equal(t, before.Player(Red), ps.Player(Red))
}

func TestOnlyCardinalSteps(t *testing.T) {
	g, ps := openBoard(t)
	ps.ApplyMove(Red, Position{1, 1})
	v := Validator{}
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			want := (dx == 0) != (dy == 0) && dx*dx+dy*dy == 1
			assert.Equal(t, want, v.IsLegal(g, ps, RedToMove, Red, dx, dy), "%d,%d", dx, dy)
		}
	}
}

func TestTrailsDoNotBlock(t *testing.T) {
	g, ps := openBoard(t)
	require.NoError(t, g.Set(1, 0, BlueTrail))
	require.NoError(t, g.Set(0, 1, RedTrail))
	v := Validator{}
	assert.True(t, v.IsLegal(g, ps, RedToMove, Red, 1, 0))
	assert.True(t, v.IsLegal(g, ps, RedToMove, Red, 0, 1))
}

func TestBounds(t *testing.T) {
	g, ps := openBoard(t)
	err := Validator{}.Check(g, ps, RedToMove, Red, -1, 0)
	var ie *IllegalMoveError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ReasonBounds, ie.Reason)
	assert.False(t, Validator{}.IsLegal(g, ps, BlueToMove, Blue, 0, 1))
}

func TestTurnEnforcement(t *testing.T) {
	g, ps := openBoard(t)

	err := Validator{EnforceTurns: true}.Check(g, ps, BlueToMove, Red, 1, 0)
	var ie *IllegalMoveError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ReasonTurn, ie.Reason)

	assert.True(t, Validator{EnforceTurns: false}.IsLegal(g, ps, BlueToMove, Red, 1, 0))
	assert.True(t, Validator{EnforceTurns: true}.IsLegal(g, ps, BlueToMove, Blue, -1, 0))
}

func TestUnknownColor(t *testing.T) {
	g, ps := openBoard(t)
	assert.False(t, Validator{}.IsLegal(g, ps, RedToMove, NoColor, 1, 0))
}

func TestTurnNext(t *testing.T) {
	assert.Equal(t, BlueToMove, RedToMove.Next())
	assert.Equal(t, RedToMove, BlueToMove.Next())
	assert.Equal(t, Blue, TurnOf(Blue).Color())
}
