package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/mcdev12/simviewer/go/internal/render"
)

type binding struct {
	key    ebiten.Key
	action Action
}

// bindings maps keys onto viewer actions. Keys fire once per press.
var bindings = []binding{
	{ebiten.KeySpace, ActionTogglePlay},
	{ebiten.KeyS, ActionStep},
	{ebiten.KeyR, ActionReset},
	{ebiten.KeyArrowRight, ActionNextPlayer},
	{ebiten.KeyArrowDown, ActionNextPlayer},
	{ebiten.KeyArrowLeft, ActionPrevPlayer},
	{ebiten.KeyArrowUp, ActionPrevPlayer},
	{ebiten.Key1, ActionZoomNormal},
	{ebiten.Key2, ActionZoomLOS},
	{ebiten.KeyZ, ActionToggleZoom},
	{ebiten.KeyComma, ActionScrubBack},
	{ebiten.KeyPeriod, ActionScrubForward},
	{ebiten.KeyL, ActionGoLive},
	{ebiten.KeyEscape, ActionDismissError},
}

// Game adapts a Viewer to ebiten's game loop
type Game struct {
	viewer   *Viewer
	canvas   *render.EbitenCanvas
	width    int
	height   int
	prevKeys map[ebiten.Key]bool
	done     <-chan struct{}
}

// NewGame creates a game with a fixed logical screen size
func NewGame(v *Viewer, width, height int) *Game {
	return &Game{
		viewer:   v,
		canvas:   render.NewEbitenCanvas(),
		width:    width,
		height:   height,
		prevKeys: make(map[ebiten.Key]bool),
	}
}

// StopOn ends the game once done is closed
func (g *Game) StopOn(done <-chan struct{}) {
	g.done = done
}

// Update handles input, then drains the connection. Q ends the game.
func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.handleInput()
	g.viewer.Update()
	return nil
}

func (g *Game) handleInput() {
	currentKeys := make(map[ebiten.Key]bool, len(bindings))
	for _, b := range bindings {
		pressed, seen := currentKeys[b.key]
		if !seen {
			pressed = ebiten.IsKeyPressed(b.key)
			currentKeys[b.key] = pressed
		}
		if pressed && !g.prevKeys[b.key] {
			g.viewer.Apply(b.action)
		}
	}
	g.prevKeys = currentKeys
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.Begin(screen)
	g.viewer.Draw(g.canvas)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
