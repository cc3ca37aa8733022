// Package transition blends adjacent scene streams over the crossfade
// window. The outgoing stream decays linearly 1→0 while the incoming one
// rises 0→1, so their sum is unit opacity at every instant.
package transition

import (
	"fmt"
	"strings"
)

// Ramp returns the outgoing and incoming opacity at elapsed time u inside a
// crossfade window of length d. Outside the window the values saturate.
func Ramp(u, d float64) (out, in float64) {
	if d <= 0 {
		return 0, 1
	}
	p := u / d
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return 1 - p, p
}

// Graph builds the sequential xfade chain for the per-scene segment inputs
// [0:v]..[n-1:v]. durations must be the frame-aligned scene durations and
// applied the per-boundary crossfades; offsets accumulate exactly like
// scene start times, so frames land where the timeline says they do.
//
// The returned label names the final video stream. A single segment needs
// no graph at all.
func Graph(durations, applied []float64) (graph, outLabel string) {
	n := len(durations)
	if n <= 1 {
		return "", "0:v"
	}

	var b strings.Builder
	last := "[0:v]"
	offset := 0.0
	for i := 1; i < n; i++ {
		offset += durations[i-1] - applied[i-1]
		out := fmt.Sprintf("[v%d]", i)
		fmt.Fprintf(&b, "%s[%d:v]xfade=transition=fade:duration=%.6f:offset=%.6f%s;",
			last, i, applied[i-1], offset, out)
		last = out
	}

	return strings.TrimSuffix(b.String(), ";"), strings.Trim(last, "[]")
}
