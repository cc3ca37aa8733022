// Package motion computes the Ken Burns pan/zoom path for a scene. The path
// is pure data: a start/end scale and a start/end focal point in normalized
// image space, interpolated linearly over the scene duration.
package motion

import (
	"github.com/VihaanShinde10/Vizuara2/internal/focus"
)

// Pan is the travel axis of the camera across a scene.
type Pan int

const (
	PanDown Pan = iota
	PanLeft
	PanRight
	PanUp
)

// Spec is the per-scene pan/zoom parameterization. All coordinates are
// normalized to the aspect-matched source frame; scales are relative to the
// cover fit (1.0 shows the full frame).
type Spec struct {
	Index      int
	Duration   float64
	ScaleStart float64
	ScaleEnd   float64
	FromX      float64
	FromY      float64
	ToX        float64
	ToY        float64
	ZoomIn     bool
}

// Params are the tuning values shared by every scene of a run.
type Params struct {
	ZoomStart   float64
	ZoomEnd     float64
	PanStrength float64
}

// NewSpec derives the deterministic motion path for a scene. Even scenes
// zoom in, odd scenes zoom out; the pan axis rotates with index%4 so
// consecutive panels visually differ. The same (index, duration, anchor)
// always yields the same path.
func NewSpec(index int, duration float64, p Params, anchor focus.Point) Spec {
	s := Spec{
		Index:    index,
		Duration: duration,
		ZoomIn:   index%2 == 0,
	}

	if s.ZoomIn {
		s.ScaleStart, s.ScaleEnd = p.ZoomStart, p.ZoomEnd
	} else {
		s.ScaleStart, s.ScaleEnd = p.ZoomEnd, p.ZoomStart
	}

	var dx, dy float64
	switch Pan(index % 4) {
	case PanLeft:
		dx = -p.PanStrength
	case PanRight:
		dx = p.PanStrength
	case PanUp:
		dy = -p.PanStrength
	case PanDown:
		dy = p.PanStrength
	}

	s.FromX, s.FromY = anchor.X, anchor.Y
	s.ToX, s.ToY = anchor.X+dx, anchor.Y+dy

	// The focal path is linear and the visible half-extent 1/(2*scale) is
	// convex in time, so clamping both endpoints keeps the sampling
	// rectangle inside the frame for every intermediate t as well.
	s.FromX, s.FromY = clampFocal(s.FromX, s.FromY, s.ScaleStart)
	s.ToX, s.ToY = clampFocal(s.ToX, s.ToY, s.ScaleEnd)
	return s
}

// Transform samples the camera at elapsed time t. Out-of-range t clamps to
// the scene bounds, so there is no discontinuity at t=0 or t=duration.
func (s Spec) Transform(t float64) (scale, focalX, focalY float64) {
	progress := 0.0
	if s.Duration > 0 {
		progress = t / s.Duration
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	scale = lerp(s.ScaleStart, s.ScaleEnd, progress)
	focalX, focalY = clampFocal(
		lerp(s.FromX, s.ToX, progress),
		lerp(s.FromY, s.ToY, progress),
		scale,
	)
	return scale, focalX, focalY
}

// clampFocal constrains a focal point so the sampling rectangle implied by
// the scale lies fully inside [0,1]². Never extrapolates.
func clampFocal(x, y, scale float64) (float64, float64) {
	half := 0.5
	if scale > 1 {
		half = 1 / (2 * scale)
	}
	return clamp(x, half, 1-half), clamp(y, half, 1-half)
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
