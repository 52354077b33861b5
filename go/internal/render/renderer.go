// Package render paints resolved display states onto a Canvas.
//
// The static field layer is cached behind a version number that only moves
// when the zoom mode changes. Every dynamic layer (players, ball, trails and
// overlays) is redrawn in full on every frame from the snapshot passed in.
package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/mcdev12/simviewer/go/internal/field"
	"github.com/mcdev12/simviewer/go/internal/models"
	"github.com/mcdev12/simviewer/go/internal/overlay"
)

const (
	playerRadiusYards = 0.6
	ballRadiusYards   = 0.3
	shedBarWidthYards = 2.0
	shedBarHeightPx   = 4.0
	recognitionRadius = 1.1
	arcSegments       = 24
)

// Frame is everything needed to draw one display state
type Frame struct {
	Snapshot models.SimSnapshot
	Overlays overlay.Overlays
	Trails   map[string][]models.Point
	Selected string
	Status   []string
	Banner   string
}

// Renderer draws frames. It is not safe for concurrent use; the UI loop owns it.
type Renderer struct {
	transform    field.Transform
	mode         field.ZoomMode
	fieldVersion int
}

// NewRenderer creates a renderer drawing through transform in mode
func NewRenderer(transform field.Transform, mode field.ZoomMode) *Renderer {
	return &Renderer{transform: transform, mode: mode, fieldVersion: 1}
}

// Mode returns the current zoom mode
func (r *Renderer) Mode() field.ZoomMode {
	return r.mode
}

// FieldVersion identifies the current static field layer
func (r *Renderer) FieldVersion() int {
	return r.fieldVersion
}

// SetZoom switches the zoom preset. It reports whether the mode changed,
// which is the only thing that invalidates the cached field layer.
func (r *Renderer) SetZoom(mode field.ZoomMode) bool {
	if mode == r.mode {
		return false
	}
	r.mode = mode
	r.fieldVersion++
	return true
}

// ToggleZoom flips between the normal and line-of-scrimmage presets
func (r *Renderer) ToggleZoom() {
	if r.mode == field.ZoomNormal {
		r.SetZoom(field.ZoomLOS)
		return
	}
	r.SetZoom(field.ZoomNormal)
}

// Draw paints frame onto c
func (r *Renderer) Draw(c Canvas, frame Frame) {
	c.Field(r.fieldVersion, r.drawField)

	r.drawTrails(c, frame.Trails)
	r.drawGaps(c, frame.Overlays.Gaps)
	r.drawSeparations(c, frame.Overlays.Separations)
	r.drawPursuits(c, frame.Overlays.Pursuits)
	r.drawFlight(c, frame.Overlays.BallFlight)
	r.drawPlayers(c, frame.Snapshot.Players, frame.Selected)
	r.drawBall(c, frame.Snapshot.Ball)
	r.drawEngagements(c, frame.Overlays.Engagements)
	r.drawRecognition(c, frame.Overlays.Recognition)
	r.drawHUD(c, frame)
}

func (r *Renderer) drawField(c Canvas) {
	w, h := r.transform.Size()
	c.Rect(0, 0, w, h, colorTurf, true)
	for _, m := range field.Markings(r.transform, r.mode) {
		switch m.Kind {
		case field.MarkingScrimmage:
			c.Line(m.X1, m.Y1, m.X2, m.Y2, 2, colorLOS, false)
		case field.MarkingHash:
			c.Line(m.X1, m.Y1, m.X2, m.Y2, 1, colorMarking, false)
		default:
			c.Line(m.X1, m.Y1, m.X2, m.Y2, 1.5, colorMarking, false)
		}
		if m.Label != "" {
			c.Text(m.Label, int(m.X1)+4, int(m.Y1)-14)
		}
	}
}

func (r *Renderer) point(p models.Point) (float64, float64) {
	return r.transform.YardToScreen(p.X, p.Y, r.mode)
}

func (r *Renderer) drawTrails(c Canvas, trails map[string][]models.Point) {
	ids := make([]string, 0, len(trails))
	for id := range trails {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		trail := trails[id]
		for i := 1; i < len(trail); i++ {
			x0, y0 := r.point(trail[i-1])
			x1, y1 := r.point(trail[i])
			c.Line(x0, y0, x1, y1, 1, colorTrail, false)
		}
	}
}

func (r *Renderer) drawGaps(c Canvas, gaps []overlay.Gap) {
	for _, g := range gaps {
		x, y := r.point(g.Midpoint)
		clr := colorGapClosed
		if g.Open {
			clr = colorGapOpen
		}
		radius := r.transform.Yards(0.35, r.mode)
		c.Circle(x, y, radius, clr, true)
		if g.Designed {
			c.Circle(x, y, radius+3, colorDesigned, false)
			c.Text(g.Label, int(x)-8, int(y)+int(radius)+4)
		}
	}
}

func (r *Renderer) drawSeparations(c Canvas, seps []overlay.Separation) {
	for _, s := range seps {
		x0, y0 := r.point(s.From)
		x1, y1 := r.point(s.To)
		c.Line(x0, y0, x1, y1, 1.5, colorSeparated, s.Style == overlay.LineDashed)
		c.Text(fmt.Sprintf("%.1f", s.Distance), int((x0+x1)/2)+4, int((y0+y1)/2))
	}
}

func (r *Renderer) drawPursuits(c Canvas, pursuits []overlay.Pursuit) {
	for _, p := range pursuits {
		x0, y0 := r.point(p.From)
		x1, y1 := r.point(p.To)
		c.Line(x0, y0, x1, y1, 1, colorPursuit, false)
	}
}

func (r *Renderer) drawFlight(c Canvas, flight *overlay.BallFlight) {
	if flight == nil {
		return
	}
	x0, y0 := r.point(flight.Origin)
	x1, y1 := r.point(flight.Target)
	c.Line(x0, y0, x1, y1, 1, colorFlight, true)
	c.Circle(x1, y1, r.transform.Yards(0.5, r.mode), colorFlight, false)
}

func (r *Renderer) drawPlayers(c Canvas, players []models.PlayerState, selected string) {
	radius := r.transform.Yards(playerRadiusYards, r.mode)
	for _, p := range players {
		x, y := r.point(p.Pos())
		clr := colorDefense
		if p.Team == models.TeamOffense {
			clr = colorOffense
		}
		c.Circle(x, y, radius, clr, true)
		if p.ID == selected {
			c.Circle(x, y, radius+3, colorSelected, false)
		}
		if p.Number > 0 {
			c.Text(fmt.Sprintf("%d", p.Number), int(x)-6, int(y)-8)
		}
	}
}

func (r *Renderer) drawBall(c Canvas, ball models.BallState) {
	if ball.State == "" {
		return
	}
	x, y := r.transform.YardToScreen(ball.X, ball.Y, r.mode)
	c.Circle(x, y, r.transform.Yards(ballRadiusYards, r.mode), colorBall, true)
}

func (r *Renderer) drawEngagements(c Canvas, engagements []overlay.Engagement) {
	width := r.transform.Yards(shedBarWidthYards, r.mode)
	for _, e := range engagements {
		x, y := r.point(e.Anchor)
		left := x - width/2
		top := y - r.transform.Yards(playerRadiusYards, r.mode) - shedBarHeightPx - 2
		clr := colorBlocker
		if e.Favor == overlay.FavorRusher {
			clr = colorRusher
		}
		c.Rect(left, top, width, shedBarHeightPx, colorBarBack, true)
		c.Rect(left, top, width*e.Progress, shedBarHeightPx, clr, true)
	}
}

func (r *Renderer) drawRecognition(c Canvas, recognition []overlay.Recognition) {
	radius := r.transform.Yards(recognitionRadius, r.mode)
	for _, rec := range recognition {
		x, y := r.point(rec.Position)
		if rec.Recognized {
			c.Text("!", int(x)+int(radius), int(y)-int(radius)-8)
			continue
		}
		if rec.Progress <= 0 {
			continue
		}
		c.Arc(x, y, radius, -math.Pi/2, 2*math.Pi*rec.Progress, 2, colorRecognize)
	}
}

func (r *Renderer) drawHUD(c Canvas, frame Frame) {
	s := frame.Snapshot
	line := fmt.Sprintf("tick %d  t=%.2fs  %s", s.Tick, s.Time, s.Phase)
	if frame.Overlays.CoverageShell != "" {
		line += "  shell " + frame.Overlays.CoverageShell
	}
	if s.PlayOutcome != "" {
		line += "  outcome " + s.PlayOutcome
	}
	c.Text(line, 8, 8)
	for i, status := range frame.Status {
		c.Text(status, 8, 24+16*i)
	}

	if frame.Banner == "" {
		return
	}
	w, h := r.transform.Size()
	c.Rect(0, h-28, w, 28, colorBanner, true)
	c.Text(frame.Banner+"  [esc] dismiss", 8, int(h)-22)
}

// DrawArcSegments approximates an arc with straight strokes through line.
// Canvases without native arc support use it.
func DrawArcSegments(line func(x0, y0, x1, y1 float64), cx, cy, r, start, sweep float64) {
	steps := int(math.Ceil(arcSegments * math.Abs(sweep) / (2 * math.Pi)))
	if steps < 1 {
		steps = 1
	}
	px, py := cx+r*math.Cos(start), cy+r*math.Sin(start)
	for i := 1; i <= steps; i++ {
		a := start + sweep*float64(i)/float64(steps)
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		line(px, py, x, y)
		px, py = x, y
	}
}
