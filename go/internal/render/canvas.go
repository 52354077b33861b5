package render

import "image/color"

// Canvas is the drawing surface the renderer paints on. Coordinates are
// screen pixels.
type Canvas interface {
	Line(x0, y0, x1, y1, width float64, clr color.RGBA, dashed bool)
	Circle(cx, cy, r float64, clr color.RGBA, filled bool)
	// Arc strokes a circular arc starting at start radians and sweeping
	// clockwise by sweep radians.
	Arc(cx, cy, r, start, sweep, width float64, clr color.RGBA)
	Rect(x, y, w, h float64, clr color.RGBA, filled bool)
	Text(s string, x, y int)

	// Field draws the static field layer. Implementations cache the result
	// and only call draw again when version changes.
	Field(version int, draw func(Canvas))
}

var (
	colorTurf      = color.RGBA{R: 34, G: 94, B: 44, A: 255}
	colorMarking   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	colorLOS       = color.RGBA{R: 70, G: 130, B: 230, A: 255}
	colorOffense   = color.RGBA{R: 60, G: 100, B: 220, A: 255}
	colorDefense   = color.RGBA{R: 200, G: 60, B: 50, A: 255}
	colorSelected  = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	colorBall      = color.RGBA{R: 140, G: 80, B: 30, A: 255}
	colorTrail     = color.RGBA{R: 255, G: 255, B: 255, A: 60}
	colorSeparated = color.RGBA{R: 255, G: 255, B: 120, A: 200}
	colorGapOpen   = color.RGBA{R: 80, G: 220, B: 100, A: 200}
	colorGapClosed = color.RGBA{R: 220, G: 80, B: 60, A: 200}
	colorDesigned  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorBlocker   = color.RGBA{R: 60, G: 100, B: 220, A: 220}
	colorRusher    = color.RGBA{R: 220, G: 60, B: 50, A: 220}
	colorBarBack   = color.RGBA{R: 20, G: 20, B: 20, A: 180}
	colorRecognize = color.RGBA{R: 255, G: 170, B: 40, A: 220}
	colorPursuit   = color.RGBA{R: 255, G: 120, B: 200, A: 160}
	colorFlight    = color.RGBA{R: 255, G: 255, B: 255, A: 140}
	colorBanner    = color.RGBA{R: 120, G: 20, B: 20, A: 220}
)
