package main

import (
	"fmt"
	"image/color"
	"sync/atomic"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zucenko/mazerace/client"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/model"
)

const (
	boardSize    = 640
	hudHeight    = 72
	screenWidth  = boardSize
	screenHeight = boardSize + hudHeight
	trailAlpha   = .3
	slideSeconds = .12
	frameSeconds = 1. / 60
)

// ViewSource is the part of a session the window needs.
type ViewSource interface {
	View() client.View
	Move(model.Direction) bool
}

var keys = map[ebiten.Key]model.Direction{
	ebiten.KeyUp:    model.Up,
	ebiten.KeyW:     model.Up,
	ebiten.KeyDown:  model.Down,
	ebiten.KeyS:     model.Down,
	ebiten.KeyLeft:  model.Left,
	ebiten.KeyA:     model.Left,
	ebiten.KeyRight: model.Right,
	ebiten.KeyD:     model.Right,
}

type Game struct {
	session ViewSource
	strokes map[*Stroke]struct{}
	Tweens  map[*gween.Tween]Action
	tokens  map[model.Color]*Token
	panel   *Nine
	face    font.Face

	board    *ebiten.Image
	lastGrid *model.Grid
	blinking bool
	offline  int32
}

func NewGame(session ViewSource) (*Game, error) {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(tt, &truetype.Options{
		Size:    20,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	disc, err := discImage(64)
	if err != nil {
		return nil, err
	}
	board, err := ebiten.NewImage(boardSize, boardSize, ebiten.FilterNearest)
	if err != nil {
		return nil, err
	}
	panel, err := NewPanel(COLOR_HUD)
	if err != nil {
		return nil, err
	}
	panel.SetPosition(4, boardSize+4)
	panel.SetSize(screenWidth-8, hudHeight-8)

	tokens := make(map[model.Color]*Token)
	for _, c := range model.Colors {
		tokens[c] = &Token{image: disc, color: COLORS[c], alpha: 1}
	}
	return &Game{
		session: session,
		strokes: map[*Stroke]struct{}{},
		Tweens:  make(map[*gween.Tween]Action),
		tokens:  tokens,
		panel:   panel,
		face:    face,
		board:   board,
	}, nil
}

func (g *Game) Run() error {
	return ebiten.Run(g.update, screenWidth, screenHeight, 1, "Maze Race")
}

// Disconnected is called from the session goroutine once it has stopped.
func (g *Game) Disconnected() {
	atomic.StoreInt32(&g.offline, 1)
}

func (g *Game) input(view client.View) {
	for key, dir := range keys {
		if inpututil.IsKeyJustPressed(key) {
			g.session.Move(dir)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.strokes[NewStroke(&MouseStrokeSource{})] = struct{}{}
	}
	for _, id := range inpututil.JustPressedTouchIDs() {
		g.strokes[NewStroke(&TouchStrokeSource{id})] = struct{}{}
	}
	cell := view.CellPixels(boardSize)
	for s := range g.strokes {
		s.Update()
		if dir, ok := s.Swipe(cell); ok {
			g.session.Move(dir)
		}
		if s.IsReleased() {
			delete(g.strokes, s)
		}
	}
}

func (g *Game) update(screen *ebiten.Image) error {
	view := g.session.View()
	g.input(view)
	g.updateTweens(frameSeconds)

	if view.Grid != nil {
		cell := float64(boardSize) / float64(view.Grid.Size())
		if view.Grid != g.lastGrid {
			g.drawBoard(view.Grid, cell)
			g.lastGrid = view.Grid
		}
		g.follow(model.Red, view.Red.Pos, cell)
		g.follow(model.Blue, view.Blue.Pos, cell)
		if c, err := model.ParseColor(view.Winner); err == nil && !g.blinking {
			g.blink(g.tokens[c])
		}
	}

	if ebiten.IsDrawingSkipped() {
		return nil
	}

	if err := screen.Fill(COLOR_BG.RGBA(1)); err != nil {
		log.Printf("%v", err)
	}
	if view.Grid != nil {
		cell := float64(boardSize) / float64(view.Grid.Size())
		_ = screen.DrawImage(g.board, &ebiten.DrawImageOptions{})
		for _, c := range model.Colors {
			g.tokens[c].Draw(screen, cell)
		}
	}

	g.panel.Draw(screen)
	status, notice := statusLines(view, atomic.LoadInt32(&g.offline) == 1)
	text.Draw(screen, status, g.face, 16, boardSize+32, color.White)
	text.Draw(screen, notice, g.face, 16, boardSize+58, COLOR_HUD.RGBA(1))
	ebitenutil.DebugPrintAt(screen, view.State.Name(), screenWidth-90, boardSize+10)
	return nil
}

// drawBoard renders walls and trails once per grid change.
func (g *Game) drawBoard(grid *model.Grid, cell float64) {
	_ = g.board.Fill(COLOR_FLOOR.RGBA(1))
	n := grid.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			c, _ := grid.Get(x, y)
			var fill color.Color
			switch c {
			case model.Wall:
				fill = COLOR_WALL.RGBA(1)
			case model.RedTrail:
				fill = blend(COLOR_FLOOR, COLORS[model.Red], trailAlpha)
			case model.BlueTrail:
				fill = blend(COLOR_FLOOR, COLORS[model.Blue], trailAlpha)
			default:
				continue
			}
			ebitenutil.DrawRect(g.board, float64(x)*cell, float64(y)*cell, cell, cell, fill)
		}
	}
}

func blend(base, over GameColor, a float64) color.RGBA {
	return GameColor{
		r: base.r*(1-a) + over.r*a,
		g: base.g*(1-a) + over.g*a,
		b: base.b*(1-a) + over.b*a,
	}.RGBA(1)
}

// follow slides a token towards the position the session reports.
func (g *Game) follow(c model.Color, pos model.Position, cell float64) {
	t := g.tokens[c]
	toX, toY := float64(pos.X)*cell, float64(pos.Y)*cell
	if !t.placed {
		t.X, t.Y, t.target, t.placed = toX, toY, pos, true
		return
	}
	if pos == t.target {
		return
	}
	t.target = pos
	slideX := gween.New(float32(t.X), float32(toX), slideSeconds, ease.OutQuad)
	slideY := gween.New(float32(t.Y), float32(toY), slideSeconds, ease.OutQuad)
	g.Tweens[slideX] = Action{onChange: func(v float32) { t.X = float64(v) }}
	done := Action{onChange: func(v float32) { t.Y = float64(v) }}
	done.addOnFinish(func() {
		// a newer slide may have been started meanwhile
		if t.target == pos {
			t.X, t.Y = toX, toY
		}
	})
	g.Tweens[slideY] = done
}

// blink fades the winner out and back in.
func (g *Game) blink(t *Token) {
	g.blinking = true
	out := gween.New(1, .2, .4, ease.InOutQuad)
	back := gween.New(.2, 1, .4, ease.InOutQuad)
	fade := Action{onChange: func(v float32) { t.alpha = float64(v) }}
	fade.next(back).onChange = func(v float32) { t.alpha = float64(v) }
	g.Tweens[out] = fade
}

func statusLines(v client.View, offline bool) (string, string) {
	var status string
	switch {
	case v.State == client.Unassigned || v.State == 0:
		status = "Waiting for an opponent..."
	case v.State == client.Ended:
		status = fmt.Sprintf("Game over: %s wins", v.Winner)
	case v.EnforceTurns && v.Turn.Color() == v.Local:
		status = fmt.Sprintf("You are %s. Your move.", v.Local)
	case v.EnforceTurns:
		status = fmt.Sprintf("You are %s. %s to move.", v.Local, v.Turn.Color())
	default:
		status = fmt.Sprintf("You are %s. Race!", v.Local)
	}
	notice := v.Notice
	if offline {
		notice = "Disconnected. " + notice
	}
	return status, notice
}

func main() {
	config.LoadDotEnv()
	cfg := &config.Config{}
	if err := newCmd(cfg).Execute(); err != nil {
		log.Fatal(err)
	}
}
