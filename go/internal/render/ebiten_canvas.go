package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const dashLength = 6.0

// EbitenCanvas draws onto an ebiten image. The static field layer is kept in
// an offscreen image between frames.
type EbitenCanvas struct {
	screen       *ebiten.Image
	fieldLayer   *ebiten.Image
	fieldVersion int
}

// NewEbitenCanvas creates a canvas with an empty field cache
func NewEbitenCanvas() *EbitenCanvas {
	return &EbitenCanvas{}
}

// Begin targets screen for the next frame
func (c *EbitenCanvas) Begin(screen *ebiten.Image) {
	c.screen = screen
}

func (c *EbitenCanvas) Line(x0, y0, x1, y1, width float64, clr color.RGBA, dashed bool) {
	if !dashed {
		vector.StrokeLine(c.screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), clr, true)
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	for d := 0.0; d < length; d += 2 * dashLength {
		end := math.Min(d+dashLength, length)
		vector.StrokeLine(c.screen,
			float32(x0+ux*d), float32(y0+uy*d),
			float32(x0+ux*end), float32(y0+uy*end),
			float32(width), clr, true)
	}
}

func (c *EbitenCanvas) Circle(cx, cy, r float64, clr color.RGBA, filled bool) {
	if filled {
		vector.DrawFilledCircle(c.screen, float32(cx), float32(cy), float32(r), clr, true)
		return
	}
	vector.StrokeCircle(c.screen, float32(cx), float32(cy), float32(r), 1.5, clr, true)
}

func (c *EbitenCanvas) Arc(cx, cy, r, start, sweep, width float64, clr color.RGBA) {
	DrawArcSegments(func(x0, y0, x1, y1 float64) {
		vector.StrokeLine(c.screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), clr, true)
	}, cx, cy, r, start, sweep)
}

func (c *EbitenCanvas) Rect(x, y, w, h float64, clr color.RGBA, filled bool) {
	if w <= 0 || h <= 0 {
		return
	}
	if filled {
		vector.DrawFilledRect(c.screen, float32(x), float32(y), float32(w), float32(h), clr, false)
		return
	}
	vector.StrokeRect(c.screen, float32(x), float32(y), float32(w), float32(h), 1, clr, false)
}

func (c *EbitenCanvas) Text(s string, x, y int) {
	ebitenutil.DebugPrintAt(c.screen, s, x, y)
}

// Field blits the cached field layer, redrawing it first when version moved
// or the screen was resized.
func (c *EbitenCanvas) Field(version int, draw func(Canvas)) {
	bounds := c.screen.Bounds()
	if c.fieldLayer == nil || c.fieldLayer.Bounds() != bounds {
		c.fieldLayer = ebiten.NewImage(bounds.Dx(), bounds.Dy())
		c.fieldVersion = 0
	}
	if c.fieldVersion != version {
		c.fieldLayer.Clear()
		draw(&EbitenCanvas{screen: c.fieldLayer})
		c.fieldVersion = version
	}
	c.screen.DrawImage(c.fieldLayer, &ebiten.DrawImageOptions{})
}
