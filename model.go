package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten"
	"github.com/zucenko/mazerace/model"
)

func HexToF32(u uint32) GameColor {
	b := float64(0xff&u) / 255
	g := float64(0xff&(u>>8)) / 255
	r := float64(0xff&(u>>16)) / 255
	return GameColor{r, g, b}
}

type GameColor struct {
	r, g, b float64
}

func (c GameColor) RGBA(alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(c.r * alpha * 255),
		G: uint8(c.g * alpha * 255),
		B: uint8(c.b * alpha * 255),
		A: uint8(alpha * 255),
	}
}

var (
	COLOR_FLOOR = HexToF32(0xf4f1ea)
	COLOR_WALL  = HexToF32(0x222222)
	COLOR_BG    = HexToF32(0x464646)
	COLOR_HUD   = HexToF32(0xdddddd)
)

var COLORS = map[model.Color]GameColor{
	model.Red:  HexToF32(0xfa3636),
	model.Blue: HexToF32(0x321ecc),
}

// Token is a player's disc. X and Y are pixels and follow the model position
// through tweens.
type Token struct {
	image  *ebiten.Image
	color  GameColor
	X, Y   float64
	target model.Position
	placed bool
	alpha  float64
}

func (t *Token) Draw(screen *ebiten.Image, size float64) {
	w, _ := t.image.Size()
	scale := size / float64(w) * .8
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(t.X+size*.1, t.Y+size*.1)
	op.ColorM.Scale(t.color.r, t.color.g, t.color.b, t.alpha)
	_ = screen.DrawImage(t.image, op)
}

// discImage is a white anti-aliased circle, tinted per token when drawn.
func discImage(d int) (*ebiten.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, d, d))
	r := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			dx, dy := float64(x)+.5-r, float64(y)+.5-r
			cover := r - math.Sqrt(dx*dx+dy*dy)
			if cover <= 0 {
				continue
			}
			if cover > 1 {
				cover = 1
			}
			a := uint8(cover * 255)
			img.Set(x, y, color.RGBA{a, a, a, a})
		}
	}
	return ebiten.NewImageFromImage(img, ebiten.FilterLinear)
}
