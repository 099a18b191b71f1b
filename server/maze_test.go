package server

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

// reachable walks open cells from one corner and reports whether the other
// is found. Trails count as open.
func reachable(g *model.Grid, from, to model.Position) bool {
	seen := map[model.Position]bool{from: true}
	queue := []model.Position{from}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p == to {
			return true
		}
		for _, d := range model.Directions {
			next := p.Add(d.DX, d.DY)
			c, err := g.Get(next.X, next.Y)
			if err != nil || c == model.Wall || seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

func TestGenerateMazeConnectsCorners(t *testing.T) {
	for n := minSize; n <= 24; n++ {
		for seed := int64(1); seed <= 5; seed++ {
			g, err := GenerateMaze(n, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			require.Equal(t, n, g.Size())

			starts := startPositions(n)
			for _, c := range model.Colors {
				cell, err := g.Get(starts[c].X, starts[c].Y)
				require.NoError(t, err)
				assert.Equal(t, model.Empty, cell, "n=%d seed=%d %s", n, seed, c)
			}
			assert.True(t, reachable(g, starts[model.Red], starts[model.Blue]), "n=%d seed=%d\n%v", n, seed, g.Rows())
		}
	}
}

func TestGenerateMazeHasWalls(t *testing.T) {
	g, err := GenerateMaze(21, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Contains(t, g.String(), "1")
	assert.Contains(t, g.String(), "0")
	assert.NotContains(t, g.String(), "2")
}

func TestGenerateMazeIsSeeded(t *testing.T) {
	a, err := GenerateMaze(15, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := GenerateMaze(15, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerateMazeTooSmall(t *testing.T) {
	_, err := GenerateMaze(2, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrMazeTooSmall)
}

func TestReadMaze(t *testing.T) {
	g, err := read(strings.NewReader("\n.#.\n.#.\n...\n"))
	require.NoError(t, err)
	assert.Equal(t, "010010000", g.String())

	g, err = read(strings.NewReader("0100\r\n0000\r\n0110\r\n0000\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, g.Size())
}

func TestReadMazeRejects(t *testing.T) {
	cases := map[string]error{
		"...\n..\n...\n":  ErrMazeNotSquare,
		"....\n....\n":    ErrMazeNotSquare,
		"..\n..\n":        ErrMazeTooSmall,
		"#..\n...\n...\n": ErrCornerBlocked,
		"...\n...\n..#\n": ErrCornerBlocked,
		"...\n.x.\n...\n": ErrUnknownMazeRune,
	}
	for text, want := range cases {
		_, err := read(strings.NewReader(text))
		assert.ErrorIs(t, err, want, "%q", text)
	}
}

func TestLoadMazeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.txt")
	require.NoError(t, os.WriteFile(path, []byte("...\n##.\n...\n"), 0o600))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "000110000", g.String())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
