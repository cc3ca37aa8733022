package timeline

import (
	"context"
	"strings"
)

// Prober reports the decoded length of an audio clip in seconds.
// Implemented by system.FFProber; tests substitute fakes.
type Prober interface {
	AudioDuration(ctx context.Context, path string) (float64, error)
}

// Estimate is the timing the estimator derives for one scene.
type Estimate struct {
	Duration     float64 // scene duration, floored at the minimum
	AudioLength  float64 // probed clip length, 0 when audio is missing
	AudioMissing bool
}

// Estimator derives a timed duration for each scene from its audio, or from
// the narration text at a fixed reading rate when audio is absent or fails
// to decode.
type Estimator struct {
	Prober          Prober
	MinSceneSeconds float64
	HeadPad         float64
	TailPad         float64
	WordsPerMinute  float64
	Logf            func(format string, args ...any)
}

// Estimate computes the scene timing. A decode failure is non-fatal: the
// scene falls back to the reading-time estimate and is flagged so the audio
// composer inserts silence.
func (e *Estimator) Estimate(ctx context.Context, in SceneInput) Estimate {
	if in.AudioPath != "" {
		d, err := e.Prober.AudioDuration(ctx, in.AudioPath)
		if err == nil && d > 0 {
			return Estimate{
				Duration:    e.floor(d + e.HeadPad + e.TailPad),
				AudioLength: d,
			}
		}
		if err != nil && e.Logf != nil {
			e.Logf("[!] audio decode failed for %s, using narration estimate: %v", in.AudioPath, err)
		}
	}
	return Estimate{
		Duration:     e.floor(e.readingTime(in.NarrationText)),
		AudioMissing: true,
	}
}

func (e *Estimator) readingTime(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return float64(words) * 60.0 / e.WordsPerMinute
}

func (e *Estimator) floor(d float64) float64 {
	if d < e.MinSceneSeconds {
		return e.MinSceneSeconds
	}
	return d
}
