// Package render drives the assembly run: fan out per-scene preparation and
// motion encoding across a worker pool, then compose the ordered segments
// and the audio track sequentially into the final container.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/VihaanShinde10/Vizuara2/internal/audio"
	"github.com/VihaanShinde10/Vizuara2/internal/config"
	"github.com/VihaanShinde10/Vizuara2/internal/endcard"
	"github.com/VihaanShinde10/Vizuara2/internal/focus"
	"github.com/VihaanShinde10/Vizuara2/internal/motion"
	"github.com/VihaanShinde10/Vizuara2/internal/source"
	"github.com/VihaanShinde10/Vizuara2/internal/system"
	"github.com/VihaanShinde10/Vizuara2/internal/timeline"
	"github.com/VihaanShinde10/Vizuara2/internal/transition"
	"github.com/VihaanShinde10/Vizuara2/internal/video"
)

// Prober is the media inspection boundary (system.FFProber in production).
type Prober interface {
	AudioDuration(ctx context.Context, path string) (float64, error)
	PeakDB(ctx context.Context, path string) (float64, error)
}

// Pipeline assembles one run. Build a fresh Pipeline per run; the temp
// workspace and cleanup state are single-use.
type Pipeline struct {
	Job     config.RenderJob
	Images  source.Source
	Encoder video.Encoder
	Prober  Prober
	Logf    func(format string, args ...any)

	tempDir string
	cleanup sync.Once
}

func New(job config.RenderJob, images source.Source, enc video.Encoder, prober Prober) *Pipeline {
	return &Pipeline{Job: job, Images: images, Encoder: enc, Prober: prober}
}

type sceneResult struct {
	scene    timeline.Scene
	segPath  string
	audioLen float64
	peakDB   float64
	hasPeak  bool
	warnings []Warning
}

// Assemble runs the full pipeline and returns the manifest. On any fatal
// error no file is left at the output path; recoverable per-scene problems
// become manifest warnings instead.
func (p *Pipeline) Assemble(ctx context.Context, inputs []timeline.SceneInput) (*Manifest, error) {
	if err := p.Job.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, &config.ConfigError{Field: "Scenes", Reason: "no scenes to assemble"}
	}

	endCard := -1
	if p.Job.EndCardURL != "" {
		endCard = len(inputs)
		inputs = append(inputs[:len(inputs):len(inputs)], timeline.SceneInput{})
	}

	var err error
	p.tempDir, err = os.MkdirTemp("", "vizuara_")
	if err != nil {
		return nil, fmt.Errorf("temp workspace: %w", err)
	}
	defer p.Cleanup()

	n := len(inputs)
	results := make([]sceneResult, n)

	est := &timeline.Estimator{
		Prober:          p.Prober,
		MinSceneSeconds: p.Job.MinSceneSeconds,
		HeadPad:         p.Job.HeadPad,
		TailPad:         p.Job.TailPad,
		WordsPerMinute:  p.Job.WordsPerMinute,
		Logf:            p.logf,
	}

	// Each worker holds the doubled cover frame in RGBA.
	frameBytes := p.Job.Width * 2 * p.Job.Height * 2 * 4
	workers := system.Workers(p.Job.Workers, n, frameBytes)
	p.logf("[*] assembling %d scenes, %d workers, %dx%d @ %d fps",
		n, workers, p.Job.Width, p.Job.Height, p.Job.FPS)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		g.Go(func() error {
			return p.processScene(gctx, i, inputs[i], i == endCard, est, &results[i])
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrCancelled
		}
		return nil, err
	}
	// Completed work arrives keyed by index; everything below walks the
	// results strictly in timeline order.

	scenes := make([]timeline.Scene, n)
	audioLens := make([]float64, n)
	var peaks []float64
	var warnings []Warning
	for i := range results {
		scenes[i] = results[i].scene
		audioLens[i] = results[i].audioLen
		if results[i].hasPeak {
			peaks = append(peaks, results[i].peakDB)
		}
		warnings = append(warnings, results[i].warnings...)
	}

	tl := timeline.Build(scenes, p.Job.CrossfadeSeconds, p.Job.FPS)

	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	if err := p.mux(ctx, tl, results, audioLens, peaks); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		OutputPath:           p.Job.OutputPath,
		Title:                p.Job.Title,
		TotalDurationSeconds: tl.Total,
		Warnings:             warnings,
	}
	for _, sc := range tl.Scenes {
		manifest.Scenes = append(manifest.Scenes, SceneTiming{
			Index:        sc.Index,
			StartTime:    sc.Start,
			EndTime:      sc.End,
			AudioMissing: sc.AudioMissing,
		})
	}
	p.logf("[+] wrote %s (%.2fs, %d scenes)", p.Job.OutputPath, tl.Total, len(tl.Scenes))
	return manifest, nil
}

func (p *Pipeline) processScene(ctx context.Context, idx int, in timeline.SceneInput, isEndCard bool, est *timeline.Estimator, out *sceneResult) error {
	sc := timeline.Scene{
		Index:     idx,
		ImagePath: in.ImagePath,
		AudioPath: in.AudioPath,
		Narration: in.NarrationText,
	}

	e := est.Estimate(ctx, in)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if in.AudioPath != "" && e.AudioMissing {
		out.warnings = append(out.warnings, Warning{
			Scene:   idx,
			Kind:    WarnAudioDecode,
			Message: fmt.Sprintf("narration clip %s not decodable, scene runs silent", in.AudioPath),
		})
	}
	sc.Duration = timeline.AlignDuration(e.Duration, p.Job.FPS)
	sc.AudioMissing = e.AudioMissing
	out.audioLen = e.AudioLength

	img := p.sceneImage(idx, in, isEndCard, out)
	prepared := source.EnsureCover(img, p.Job.Width, p.Job.Height)

	anchor := focus.Point{X: 0.5, Y: 0.5}
	if p.Job.SmartFocus {
		anchor = focus.Salient(prepared)
	}
	spec := motion.NewSpec(idx, sc.Duration, motion.Params{
		ZoomStart:   p.Job.ZoomStart,
		ZoomEnd:     p.Job.ZoomEnd,
		PanStrength: p.Job.PanStrength,
	}, anchor)

	segPath := filepath.Join(p.tempDir, fmt.Sprintf("seg_%03d.mp4", idx))
	params := config.SegmentParams{
		Width:    p.Job.Width,
		Height:   p.Job.Height,
		FPS:      p.Job.FPS,
		Duration: sc.Duration,
		Filter:   spec.Filter(p.Job.Width, p.Job.Height, p.Job.FPS),
		Encoder:  p.Job.VideoEncoder,
		Quality:  p.Job.Quality,
	}
	if err := p.Encoder.EncodeSegment(ctx, prepared, segPath, params); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &EncodeError{Scene: idx, Stage: StageEncode, Err: err}
	}

	if !sc.AudioMissing {
		if peak, err := p.Prober.PeakDB(ctx, in.AudioPath); err == nil {
			out.peakDB, out.hasPeak = peak, true
		} else if ctx.Err() == nil {
			p.logf("[!] peak probe failed for %s: %v", in.AudioPath, err)
		}
	}

	out.scene = sc
	out.segPath = segPath
	p.logf("[>] scene %d ready (%.2fs)", idx, sc.Duration)
	return nil
}

// sceneImage loads the scene raster, substituting a neutral placeholder for
// anything missing or corrupt. Substitutions are recorded, never fatal.
func (p *Pipeline) sceneImage(idx int, in timeline.SceneInput, isEndCard bool, out *sceneResult) image.Image {
	if isEndCard {
		card, err := endcard.Render(p.Job.Title, p.Job.EndCardURL, p.Job.Width, p.Job.Height)
		if err == nil {
			return card
		}
		out.warnings = append(out.warnings, Warning{
			Scene:   idx,
			Kind:    WarnInput,
			Message: fmt.Sprintf("end card render failed: %v", err),
		})
		return source.Placeholder(p.Job.Width, p.Job.Height)
	}

	if p.Images != nil && idx < p.Images.SceneCount() {
		img, err := p.Images.SceneImage(idx)
		if err == nil {
			return img
		}
		out.warnings = append(out.warnings, Warning{
			Scene:   idx,
			Kind:    WarnInput,
			Message: fmt.Sprintf("image unusable (%v), substituting placeholder", err),
		})
		p.logf("[!] scene %d: %v", idx, err)
	} else {
		out.warnings = append(out.warnings, Warning{
			Scene:   idx,
			Kind:    WarnInput,
			Message: fmt.Sprintf("no image for scene %d (%s), substituting placeholder", idx, in.ImagePath),
		})
	}
	return source.Placeholder(p.Job.Width, p.Job.Height)
}

// mux runs the sequential compositing stage: xfade chain, audio graph, and
// the atomic publish of the output file.
func (p *Pipeline) mux(ctx context.Context, tl *timeline.Timeline, results []sceneResult, audioLens, peaks []float64) error {
	segPaths := make([]string, len(results))
	for i := range results {
		segPaths[i] = results[i].segPath
	}

	durations := make([]float64, len(tl.Scenes))
	for i, sc := range tl.Scenes {
		durations[i] = sc.Duration
	}
	vGraph, vLabel := transition.Graph(durations, tl.Applied)

	segs := audio.Place(tl, p.Job.HeadPad, audioLens)
	var audioInputs []string
	for _, seg := range segs {
		if !seg.Silent() {
			audioInputs = append(audioInputs, seg.SourcePath)
		}
	}
	bgInput := -1
	if p.Job.BackgroundAudio != "" {
		bgInput = len(segPaths) + len(audioInputs)
	}
	aGraph, aLabel := audio.Graph(audio.GraphSpec{
		Segments:         segs,
		Total:            tl.Total,
		GainDB:           audio.UniformGainDB(peaks, p.Job.PeakCeilingDB),
		FirstInput:       len(segPaths),
		BackgroundInput:  bgInput,
		BackgroundVolume: p.Job.BackgroundVolume,
	})

	graph := aGraph
	if vGraph != "" {
		graph = vGraph + ";" + aGraph
	}

	if err := os.MkdirAll(filepath.Dir(p.Job.OutputPath), 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	// Write next to the final path and rename on success, so a failed run
	// never leaves a partial file where callers look for the result.
	partial := partialPath(p.Job.OutputPath)
	defer os.Remove(partial)

	err := p.Encoder.Mux(ctx, video.MuxSpec{
		SegmentPaths:    segPaths,
		AudioInputs:     audioInputs,
		BackgroundAudio: p.Job.BackgroundAudio,
		FilterGraph:     graph,
		VideoLabel:      vLabel,
		AudioLabel:      aLabel,
		OutputPath:      partial,
		FPS:             p.Job.FPS,
		Encoder:         p.Job.VideoEncoder,
		Quality:         p.Job.Quality,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return &EncodeError{Scene: -1, Stage: StageMux, Err: err}
	}

	if err := os.Rename(partial, p.Job.OutputPath); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

// Cleanup releases the run's intermediate workspace. Safe to invoke any
// number of times; calls after the first are no-ops.
func (p *Pipeline) Cleanup() {
	p.cleanup.Do(func() {
		if p.tempDir != "" {
			os.RemoveAll(p.tempDir)
		}
	})
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

func partialPath(out string) string {
	dir, base := filepath.Split(out)
	return filepath.Join(dir, "."+base+".partial")
}
