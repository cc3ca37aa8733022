// Package audio composes the single continuous track aligned to the visual
// timeline: narration clips placed at their scene offsets, silence
// everywhere else, complementary gain ramps inside crossfade windows and a
// uniform peak-ceiling attenuation across the whole track.
package audio

import (
	"fmt"
	"strings"

	"github.com/VihaanShinde10/Vizuara2/internal/timeline"
)

// Segment is a placed interval on the global track. An empty SourcePath
// denotes silence. Inside a crossfade window two segments co-exist with
// complementary fade gains; everywhere else segments do not overlap.
type Segment struct {
	Scene      int
	SourcePath string
	Offset     float64
	Length     float64
	FadeIn     float64
	FadeOut    float64
}

// Silent reports whether the segment contributes no signal.
func (s Segment) Silent() bool { return s.SourcePath == "" }

// Place maps every scene onto the track. Narration starts headPad after the
// scene and is trimmed to never exceed the scene's visual duration; scenes
// flagged audioMissing contribute an explicit silence interval. audioLen
// holds the probed clip length per scene (ignored for silent scenes).
func Place(tl *timeline.Timeline, headPad float64, audioLen []float64) []Segment {
	segs := make([]Segment, 0, len(tl.Scenes))
	for i, sc := range tl.Scenes {
		seg := Segment{Scene: sc.Index, Offset: sc.Start, Length: sc.Duration}
		if i > 0 {
			seg.FadeIn = tl.Applied[i-1]
		}
		if i < len(tl.Applied) {
			seg.FadeOut = tl.Applied[i]
		}

		if !sc.AudioMissing {
			seg.SourcePath = sc.AudioPath
			seg.Offset = sc.Start + headPad
			maxLen := sc.Duration - headPad
			seg.Length = audioLen[i]
			if seg.Length > maxLen {
				seg.Length = maxLen
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// Gain returns the fade gain of a segment at elapsed time u inside a ramp
// of length d. Outgoing and incoming ramps of the same window are
// complementary and sum to unit gain, mirroring the visual crossfade.
func Gain(u, d float64) float64 {
	if d <= 0 {
		return 1
	}
	p := u / d
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// UniformGainDB computes the attenuation, in dB, that brings the loudest
// clip peak down to the ceiling. Attenuation is global so relative scene
// loudness is preserved; tracks already under the ceiling get 0.
func UniformGainDB(peaksDB []float64, ceilingDB float64) float64 {
	max := -1e9
	for _, p := range peaksDB {
		if p > max {
			max = p
		}
	}
	if max <= ceilingDB || max == -1e9 {
		return 0
	}
	return ceilingDB - max
}

// GraphSpec describes the audio half of the final filter_complex.
type GraphSpec struct {
	Segments   []Segment
	Total      float64
	GainDB     float64
	SampleRate int

	// FirstInput is the ffmpeg input index of the first narration clip;
	// non-silent segments occupy consecutive indices in order.
	FirstInput int

	// Optional looped music bed.
	BackgroundInput  int // -1 when absent
	BackgroundVolume float64
}

// Graph renders the spec as a filter_complex fragment and returns it with
// the output stream label. A silence base spanning the whole timeline
// guarantees the track length even when every scene is silent.
func Graph(spec GraphSpec) (graph, outLabel string) {
	sr := spec.SampleRate
	if sr == 0 {
		sr = 44100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "anullsrc=channel_layout=stereo:sample_rate=%d,atrim=0:%.6f[abase];", sr, spec.Total)

	labels := []string{"[abase]"}
	input := spec.FirstInput
	for _, seg := range spec.Segments {
		if seg.Silent() {
			continue
		}
		label := fmt.Sprintf("[seg%d]", seg.Scene)
		chain := fmt.Sprintf("atrim=0:%.6f", seg.Length)
		if seg.FadeIn > 0 {
			chain += fmt.Sprintf(",afade=t=in:st=0:d=%.6f:curve=tri", seg.FadeIn)
		}
		if seg.FadeOut > 0 {
			st := seg.Length - seg.FadeOut
			if st < 0 {
				st = 0
			}
			chain += fmt.Sprintf(",afade=t=out:st=%.6f:d=%.6f:curve=tri", st, seg.FadeOut)
		}
		delay := int(seg.Offset*1000 + 0.5)
		chain += fmt.Sprintf(",adelay=%d|%d", delay, delay)
		fmt.Fprintf(&b, "[%d:a]%s%s;", input, chain, label)
		labels = append(labels, label)
		input++
	}

	mixed := "[abase]"
	if len(labels) > 1 {
		fmt.Fprintf(&b, "%samix=inputs=%d:duration=first:normalize=0[amain];",
			strings.Join(labels, ""), len(labels))
		mixed = "[amain]"
	}

	if spec.BackgroundInput >= 0 {
		fadeIn, fadeOut := 5.0, 5.0
		if spec.Total < fadeIn+fadeOut {
			fadeIn, fadeOut = spec.Total*0.1, spec.Total*0.1
		}
		fmt.Fprintf(&b, "[%d:a]volume=%.4f,afade=t=in:st=0:d=%.6f,afade=t=out:st=%.6f:d=%.6f,atrim=0:%.6f[abed];",
			spec.BackgroundInput, spec.BackgroundVolume, fadeIn, spec.Total-fadeOut, fadeOut, spec.Total)
		fmt.Fprintf(&b, "%s[abed]amix=inputs=2:duration=first:normalize=0[amixed];", mixed)
		mixed = "[amixed]"
	}

	fmt.Fprintf(&b, "%svolume=%.4fdB,atrim=0:%.6f[aout]", mixed, spec.GainDB, spec.Total)
	return b.String(), "aout"
}
