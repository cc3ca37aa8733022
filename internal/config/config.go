package config

import "fmt"

// RenderJob is the immutable configuration for one assembly run. It is
// created once, validated before any work starts and never mutated by the
// pipeline.
type RenderJob struct {
	OutputPath string
	Title      string

	Width  int
	Height int
	FPS    int

	// Timing
	MinSceneSeconds  float64
	HeadPad          float64
	TailPad          float64
	CrossfadeSeconds float64

	// Product tuning values. The originals were hardcoded; they are exposed
	// here so runs stay independently testable.
	WordsPerMinute float64 // narration reading-time fallback rate
	PeakCeilingDB  float64 // audio peak normalization ceiling, dBFS (<= 0)
	ZoomStart      float64
	ZoomEnd        float64
	PanStrength    float64 // focal travel in normalized image space

	// Optional extras
	BackgroundAudio  string
	BackgroundVolume float64
	EndCardURL       string
	SmartFocus       bool

	// Encoding
	VideoEncoder string // libx264, h264_nvenc, h264_videotoolbox
	Quality      int
	Workers      int
}

// Default returns a RenderJob with the product defaults applied. Callers
// override fields before Validate.
func Default() RenderJob {
	return RenderJob{
		Width:            1920,
		Height:           1080,
		FPS:              30,
		MinSceneSeconds:  2.0,
		HeadPad:          0.15,
		TailPad:          0.15,
		CrossfadeSeconds: 0.3,
		WordsPerMinute:   150,
		PeakCeilingDB:    -1.0,
		ZoomStart:        1.05,
		ZoomEnd:          1.15,
		PanStrength:      0.06,
		BackgroundVolume: 0.08,
		VideoEncoder:     "libx264",
		Quality:          23,
	}
}

// ConfigError marks a RenderJob field that makes the run impossible. It is
// fatal and reported before any scene work starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (j *RenderJob) Validate() error {
	if j.OutputPath == "" {
		return &ConfigError{Field: "OutputPath", Reason: "is empty"}
	}
	if j.Width <= 0 || j.Height <= 0 {
		return &ConfigError{Field: "Resolution", Reason: fmt.Sprintf("invalid %dx%d", j.Width, j.Height)}
	}
	if j.Width%2 != 0 || j.Height%2 != 0 {
		return &ConfigError{Field: "Resolution", Reason: "dimensions must be even for yuv420p"}
	}
	switch j.FPS {
	case 24, 25, 30:
	default:
		return &ConfigError{Field: "FPS", Reason: fmt.Sprintf("unsupported rate %d (want 24, 25 or 30)", j.FPS)}
	}
	if j.MinSceneSeconds <= 0 {
		return &ConfigError{Field: "MinSceneSeconds", Reason: "must be > 0"}
	}
	if j.HeadPad < 0 || j.TailPad < 0 {
		return &ConfigError{Field: "HeadPad/TailPad", Reason: "must be >= 0"}
	}
	if j.CrossfadeSeconds < 0 {
		return &ConfigError{Field: "CrossfadeSeconds", Reason: "must be >= 0"}
	}
	// Crossfades clamp per boundary to duration/2, so the only impossible
	// case is a window that even the duration floor cannot accommodate.
	if j.CrossfadeSeconds > 0 && j.CrossfadeSeconds/2 > j.MinSceneSeconds {
		return &ConfigError{Field: "CrossfadeSeconds", Reason: "exceeds twice the minimum scene duration"}
	}
	if j.WordsPerMinute <= 0 {
		return &ConfigError{Field: "WordsPerMinute", Reason: "must be > 0"}
	}
	if j.PeakCeilingDB > 0 {
		return &ConfigError{Field: "PeakCeilingDB", Reason: "must be <= 0 dBFS"}
	}
	if j.ZoomStart < 1.0 || j.ZoomEnd < 1.0 {
		return &ConfigError{Field: "Zoom", Reason: "zoom factors must be >= 1.0"}
	}
	if j.PanStrength < 0 || j.PanStrength > 0.5 {
		return &ConfigError{Field: "PanStrength", Reason: "must be within [0, 0.5]"}
	}
	if j.BackgroundVolume < 0 || j.BackgroundVolume > 1 {
		return &ConfigError{Field: "BackgroundVolume", Reason: "must be within [0, 1]"}
	}
	return nil
}

// SegmentParams carries everything the encoder needs to turn one prepared
// scene image into a motion segment.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Filter        string
	Encoder       string
	Quality       int
}
