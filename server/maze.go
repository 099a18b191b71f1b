package server

import (
	"math/rand"

	"github.com/zucenko/mazerace/model"
)

// GenerateMaze carves a perfect maze with a randomized depth-first walk from
// the top-left corner, two cells per step. The bottom-right corner is always
// open and connected.
func GenerateMaze(n int, rnd *rand.Rand) (*model.Grid, error) {
	if n < minSize {
		return nil, ErrMazeTooSmall
	}
	g := model.NewGrid(n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			_ = g.Set(x, y, model.Wall)
		}
	}
	carve(g, model.Position{}, rnd)
	if n%2 == 0 {
		_ = g.Set(n-2, n-1, model.Empty)
		_ = g.Set(n-1, n-1, model.Empty)
	}
	return g, nil
}

func carve(g *model.Grid, p model.Position, rnd *rand.Rand) {
	_ = g.Set(p.X, p.Y, model.Empty)
	dirs := model.Directions
	rnd.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	for _, d := range dirs {
		next := p.Add(2*d.DX, 2*d.DY)
		if c, err := g.Get(next.X, next.Y); err != nil || c != model.Wall {
			continue
		}
		_ = g.Set(p.X+d.DX, p.Y+d.DY, model.Empty)
		carve(g, next, rnd)
	}
}
