package render

import (
	"errors"
	"fmt"
)

// Stage names the pipeline phase an error was raised in.
type Stage string

const (
	StagePrepare  Stage = "prepare"  // image decode / upscale
	StageEstimate Stage = "estimate" // duration estimation
	StageEncode   Stage = "encode"   // per-scene motion segment
	StageMux      Stage = "mux"      // final compositing and container write
)

// ErrCancelled reports cooperative cancellation. The run aborts cleanly and
// leaves no output file.
var ErrCancelled = errors.New("assembly cancelled")

// EncodeError is a fatal backend failure. Scene is -1 for the final mux.
type EncodeError struct {
	Scene int
	Stage Stage
	Err   error
}

func (e *EncodeError) Error() string {
	if e.Scene < 0 {
		return fmt.Sprintf("encode failed at stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("encode failed at scene %d, stage %s: %v", e.Scene, e.Stage, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Warning records a per-scene recoverable substitution: a placeholder frame
// for a bad image, or silence for an undecodable clip. Warnings surface in
// the manifest instead of failing the run.
type Warning struct {
	Scene   int    `yaml:"scene"`
	Kind    string `yaml:"kind"` // "input" or "audio_decode"
	Message string `yaml:"message"`
}

const (
	WarnInput       = "input"
	WarnAudioDecode = "audio_decode"
)
