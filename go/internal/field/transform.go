// Package field maps yard-space positions onto the render surface and
// describes the static field markings for each zoom preset.
package field

import "fmt"

// FieldWidthYards is the distance between the sidelines
const FieldWidthYards = 160.0 / 3.0

// ZoomMode selects one of the fixed camera presets
type ZoomMode int

const (
	// ZoomNormal shows the whole play around the line of scrimmage
	ZoomNormal ZoomMode = iota
	// ZoomLOS is zoomed 2x on the line of scrimmage
	ZoomLOS
)

func (z ZoomMode) String() string {
	switch z {
	case ZoomNormal:
		return "normal"
	case ZoomLOS:
		return "los"
	}
	return fmt.Sprintf("zoom(%d)", int(z))
}

// ParseZoomMode parses the name produced by String
func ParseZoomMode(s string) (ZoomMode, error) {
	switch s {
	case "normal", "":
		return ZoomNormal, nil
	case "los":
		return ZoomLOS, nil
	}
	return ZoomNormal, fmt.Errorf("unknown zoom mode %q", s)
}

// Preset is the scale and vertical anchor of a zoom mode. AnchorY is the
// fraction of the surface height at which the line of scrimmage sits.
type Preset struct {
	Scale   float64 `yaml:"scale"`    // pixels per yard
	AnchorY float64 `yaml:"anchor_y"` // 0 = top, 1 = bottom
}

// DefaultPresets returns the normal and 2x line-of-scrimmage presets
func DefaultPresets() map[ZoomMode]Preset {
	return map[ZoomMode]Preset{
		ZoomNormal: {Scale: 12, AnchorY: 0.75},
		ZoomLOS:    {Scale: 24, AnchorY: 0.6},
	}
}

// Transform maps yard coordinates to pixels on a surface of fixed size.
// It holds no mutable state, so the same input always maps to the same pixel.
type Transform struct {
	width   float64
	height  float64
	presets map[ZoomMode]Preset
}

// NewTransform creates a transform for a width x height surface. Missing
// presets fall back to the defaults.
func NewTransform(width, height int, presets map[ZoomMode]Preset) Transform {
	merged := DefaultPresets()
	for mode, p := range presets {
		if p.Scale > 0 {
			merged[mode] = p
		}
	}
	return Transform{width: float64(width), height: float64(height), presets: merged}
}

// Size returns the surface size in pixels
func (t Transform) Size() (float64, float64) {
	return t.width, t.height
}

// Preset returns the preset for mode, using normal for unknown modes
func (t Transform) Preset(mode ZoomMode) Preset {
	if p, ok := t.presets[mode]; ok {
		return p
	}
	return t.presets[ZoomNormal]
}

// YardToScreen maps (x, y) in yards to pixels. x grows to the right from the
// field center, y grows downfield (up the screen) from the line of scrimmage.
func (t Transform) YardToScreen(x, y float64, mode ZoomMode) (float64, float64) {
	p := t.Preset(mode)
	px := t.width/2 + x*p.Scale
	py := t.height*p.AnchorY - y*p.Scale
	return px, py
}

// ScreenToYard is the inverse of YardToScreen
func (t Transform) ScreenToYard(px, py float64, mode ZoomMode) (float64, float64) {
	p := t.Preset(mode)
	x := (px - t.width/2) / p.Scale
	y := (t.height*p.AnchorY - py) / p.Scale
	return x, y
}

// Yards converts a length in yards to pixels
func (t Transform) Yards(d float64, mode ZoomMode) float64 {
	return d * t.Preset(mode).Scale
}

// VisibleYards returns the downfield range in yards visible on the surface
func (t Transform) VisibleYards(mode ZoomMode) (minY, maxY float64) {
	_, minY = t.ScreenToYard(0, t.height, mode)
	_, maxY = t.ScreenToYard(0, 0, mode)
	return minY, maxY
}
