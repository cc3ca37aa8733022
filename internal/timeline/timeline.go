// Package timeline places scenes on a shared clock. Adjacent scenes overlap
// by the crossfade window, so the timeline total is shorter than the sum of
// scene durations: total = sum(d) - sum(applied crossfades).
package timeline

import "math"

// Timeline is the ordered sequence of scenes with derived start/end times.
// Applied[i] is the crossfade actually used between scene i and i+1 after
// per-boundary clamping.
type Timeline struct {
	Scenes  []Scene
	Applied []float64
	Total   float64
}

// Build stamps Start/End on every scene. Durations are aligned up to the
// frame grid first so xfade offsets land on frame boundaries. The requested
// crossfade clamps to half of the shorter neighbor, preventing a scene from
// overlapping with itself.
func Build(scenes []Scene, crossfade float64, fps int) *Timeline {
	tl := &Timeline{Scenes: scenes}
	if len(scenes) == 0 {
		return tl
	}

	for i := range tl.Scenes {
		tl.Scenes[i].Duration = AlignDuration(tl.Scenes[i].Duration, fps)
	}

	if len(tl.Scenes) > 1 {
		tl.Applied = make([]float64, len(tl.Scenes)-1)
		for i := range tl.Applied {
			tl.Applied[i] = AppliedCrossfade(crossfade, tl.Scenes[i].Duration, tl.Scenes[i+1].Duration)
		}
	}

	cursor := 0.0
	for i := range tl.Scenes {
		tl.Scenes[i].Start = cursor
		tl.Scenes[i].End = cursor + tl.Scenes[i].Duration
		if i < len(tl.Applied) {
			cursor += tl.Scenes[i].Duration - tl.Applied[i]
		}
	}
	tl.Total = tl.Scenes[len(tl.Scenes)-1].End
	return tl
}

// AppliedCrossfade clamps the requested window at one boundary to at most
// half of either neighbor's duration.
func AppliedCrossfade(requested, durOut, durIn float64) float64 {
	applied := requested
	if limit := durOut / 2; applied > limit {
		applied = limit
	}
	if limit := durIn / 2; applied > limit {
		applied = limit
	}
	if applied < 0 {
		applied = 0
	}
	return applied
}

// AlignDuration rounds seconds up to the frame grid. Values already on the
// grid (within float noise) pass through, so alignment is idempotent.
func AlignDuration(seconds float64, fps int) float64 {
	frame := 1.0 / float64(fps)
	frames := seconds / frame
	rounded := math.Round(frames)
	if math.Abs(frames-rounded) < 1e-9 {
		return rounded * frame
	}
	return math.Ceil(frames) * frame
}
