// Package viewer ties the connection, playback controller and renderer into
// the per-frame loop the window drives.
package viewer

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/animation"
	"github.com/mcdev12/simviewer/go/internal/field"
	"github.com/mcdev12/simviewer/go/internal/gateway"
	"github.com/mcdev12/simviewer/go/internal/models"
	"github.com/mcdev12/simviewer/go/internal/overlay"
	"github.com/mcdev12/simviewer/go/internal/playback"
	"github.com/mcdev12/simviewer/go/internal/render"
)

// DefaultTrailLength is how many buffered ticks a player trail spans
const DefaultTrailLength = 20

// Action is an operator input, already decoded from whatever device sent it
type Action int

const (
	ActionTogglePlay Action = iota
	ActionStep
	ActionReset
	ActionNextPlayer
	ActionPrevPlayer
	ActionZoomNormal
	ActionZoomLOS
	ActionToggleZoom
	ActionScrubBack
	ActionScrubForward
	ActionGoLive
	ActionDismissError
)

// Source yields the messages received since the last call.
// *gateway.ConnectionManager satisfies it.
type Source interface {
	Poll() []gateway.Message
}

// Viewer is the UI-thread state of one viewing session. Update, Apply and
// Draw must be called from the same goroutine.
type Viewer struct {
	controller  *playback.Controller
	source      Source
	renderer    *render.Renderer
	interp      *animation.Interpolator
	trailLength int

	selected   string
	targetTick int
	hasTarget  bool
}

// Options configures a Viewer. Source is nil when replaying an archived
// play; a nil Interpolator draws raw engine positions.
type Options struct {
	Source       Source
	Interpolator *animation.Interpolator
	TrailLength  int
}

// New creates a viewer drawing controller's display state through renderer
func New(controller *playback.Controller, renderer *render.Renderer, opts Options) *Viewer {
	trail := opts.TrailLength
	if trail <= 0 {
		trail = DefaultTrailLength
	}
	return &Viewer{
		controller:  controller,
		source:      opts.Source,
		renderer:    renderer,
		interp:      opts.Interpolator,
		trailLength: trail,
	}
}

// Update processes every message received since the previous frame, in
// order, and retargets the interpolator when the displayed tick moved.
func (v *Viewer) Update() {
	if v.source != nil {
		for _, msg := range v.source.Poll() {
			v.controller.HandleMessage(msg)
		}
	}

	if v.interp == nil {
		return
	}
	view := v.controller.View()
	if !view.HasDisplay {
		return
	}
	if v.hasTarget && view.Display.Tick == v.targetTick {
		return
	}
	v.interp.SetTargets(view.Display.Players)
	v.targetTick = view.Display.Tick
	v.hasTarget = true
}

// Apply performs a single operator action
func (v *Viewer) Apply(a Action) {
	switch a {
	case ActionTogglePlay:
		v.controller.TogglePlayPause()
	case ActionStep:
		v.controller.Step()
	case ActionReset:
		v.controller.Reset()
	case ActionNextPlayer:
		v.cycleSelection(1)
	case ActionPrevPlayer:
		v.cycleSelection(-1)
	case ActionZoomNormal:
		v.renderer.SetZoom(field.ZoomNormal)
	case ActionZoomLOS:
		v.renderer.SetZoom(field.ZoomLOS)
	case ActionToggleZoom:
		v.renderer.ToggleZoom()
	case ActionScrubBack:
		v.controller.ScrubBy(-1)
	case ActionScrubForward:
		v.controller.ScrubBy(1)
	case ActionGoLive:
		v.controller.GoLive()
	case ActionDismissError:
		v.controller.DismissError()
	default:
		log.Debug().Int("action", int(a)).Msg("ignoring unknown viewer action")
	}
}

// Selected returns the id of the highlighted player, if any
func (v *Viewer) Selected() string {
	return v.selected
}

// Frame resolves what to draw right now. Overlays and trails are computed
// from the raw displayed snapshot; only player markers are smoothed.
func (v *Viewer) Frame() render.Frame {
	view := v.controller.View()
	frame := render.Frame{
		Selected: v.selected,
		Status:   v.status(view),
	}
	if view.Err != nil {
		frame.Banner = fmt.Sprintf("%s error: %s", view.Err.Kind, view.Err.Message)
	}
	if !view.HasDisplay {
		return frame
	}

	snapshot := view.Display
	frame.Overlays = overlay.Compute(snapshot)
	frame.Trails = overlay.Trails(v.controller.Trail(snapshot.Tick, v.trailLength))
	frame.Snapshot = v.smoothed(snapshot)
	return frame
}

// Draw paints the current frame onto c
func (v *Viewer) Draw(c render.Canvas) {
	v.renderer.Draw(c, v.Frame())
}

func (v *Viewer) smoothed(snapshot models.SimSnapshot) models.SimSnapshot {
	if v.interp == nil {
		return snapshot
	}
	positions := v.interp.Positions()
	players := make([]models.PlayerState, len(snapshot.Players))
	for i, p := range snapshot.Players {
		if pos, ok := positions[p.ID]; ok {
			p.X, p.Y = pos.X, pos.Y
		}
		players[i] = p
	}
	snapshot.Players = players
	return snapshot
}

func (v *Viewer) cycleSelection(delta int) {
	view := v.controller.View()
	if !view.HasDisplay || len(view.Display.Players) == 0 {
		v.selected = ""
		return
	}

	ids := make([]string, len(view.Display.Players))
	for i, p := range view.Display.Players {
		ids[i] = p.ID
	}
	sort.Strings(ids)

	current := -1
	for i, id := range ids {
		if id == v.selected {
			current = i
			break
		}
	}
	if current < 0 {
		if delta < 0 {
			v.selected = ids[len(ids)-1]
		} else {
			v.selected = ids[0]
		}
		return
	}
	n := len(ids)
	v.selected = ids[((current+delta)%n+n)%n]
}

func (v *Viewer) status(view playback.View) []string {
	lines := make([]string, 0, 4)

	tick := "-"
	if view.HasDisplay {
		tick = fmt.Sprint(view.Display.Tick)
	}
	lines = append(lines, fmt.Sprintf("%s  tick %s", view.Mode, tick))

	if view.OldestTick != nil && view.LatestTick != nil {
		lines = append(lines, fmt.Sprintf("buffer %d-%d (%d)", *view.OldestTick, *view.LatestTick, view.Buffered))
	}

	conn := "disconnected"
	if view.Connected {
		conn = "connected"
	}
	lines = append(lines, fmt.Sprintf("%s  zoom %s", conn, v.renderer.Mode()))

	if view.HasDisplay {
		if p, ok := view.Display.Player(v.selected); ok {
			lines = append(lines, fmt.Sprintf("#%d %s %s (%.1f, %.1f)", p.Number, p.Role, p.ID, p.X, p.Y))
		}
	}
	return lines
}
