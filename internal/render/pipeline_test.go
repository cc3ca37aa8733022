package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/VihaanShinde10/Vizuara2/internal/config"
	"github.com/VihaanShinde10/Vizuara2/internal/timeline"
	"github.com/VihaanShinde10/Vizuara2/internal/video"
)

const eps = 1e-9

type fakeSource struct {
	count int
	errAt map[int]error
}

func (s *fakeSource) SceneCount() int { return s.count }

func (s *fakeSource) SceneImage(index int) (image.Image, error) {
	if err, ok := s.errAt[index]; ok {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, 320, 180)), nil
}

func (s *fakeSource) Close() error { return nil }

type fakeEncoder struct {
	mu           sync.Mutex
	segments     int
	segmentDims  []image.Rectangle
	failSegment  int // scene index to fail, -1 for none
	failMux      bool
	lastMux      video.MuxSpec
	muxed        bool
}

func newFakeEncoder() *fakeEncoder { return &fakeEncoder{failSegment: -1} }

func (e *fakeEncoder) EncodeSegment(_ context.Context, img image.Image, outPath string, params config.SegmentParams) error {
	e.mu.Lock()
	e.segments++
	e.segmentDims = append(e.segmentDims, img.Bounds())
	e.mu.Unlock()
	if idx := sceneIndexFromPath(outPath); idx == e.failSegment {
		return errors.New("encoder exited with status 1")
	}
	return os.WriteFile(outPath, []byte("segment"), 0o644)
}

func (e *fakeEncoder) Mux(_ context.Context, spec video.MuxSpec) error {
	e.mu.Lock()
	e.lastMux = spec
	e.muxed = true
	e.mu.Unlock()
	if e.failMux {
		return errors.New("muxer exited with status 1")
	}
	return os.WriteFile(spec.OutputPath, []byte("video"), 0o644)
}

func sceneIndexFromPath(p string) int {
	var idx int
	if _, err := fmt.Sscanf(filepath.Base(p), "seg_%03d.mp4", &idx); err != nil {
		return -1
	}
	return idx
}

type stubProber struct {
	durations map[string]float64
	peaks     map[string]float64
}

func (p *stubProber) AudioDuration(ctx context.Context, path string) (float64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	d, ok := p.durations[path]
	if !ok {
		return 0, errors.New("undecodable")
	}
	return d, nil
}

func (p *stubProber) PeakDB(ctx context.Context, path string) (float64, error) {
	if peak, ok := p.peaks[path]; ok {
		return peak, nil
	}
	return -6.0, nil
}

func testJob(t *testing.T) config.RenderJob {
	t.Helper()
	job := config.Default()
	job.OutputPath = filepath.Join(t.TempDir(), "story.mp4")
	job.Width, job.Height = 640, 360
	job.HeadPad, job.TailPad = 0, 0
	job.CrossfadeSeconds = 0.5
	job.Workers = 2
	return job
}

func threeScenes() []timeline.SceneInput {
	return []timeline.SceneInput{
		{ImagePath: "a.png", AudioPath: "s0.mp3"},
		{ImagePath: "b.png", AudioPath: "s1.mp3"},
		{ImagePath: "c.png", AudioPath: "s2.mp3"},
	}
}

func defaultProber() *stubProber {
	return &stubProber{durations: map[string]float64{
		"s0.mp3": 4.0,
		"s1.mp3": 3.0,
		"s2.mp3": 5.0,
	}}
}

func TestAssembleTimings(t *testing.T) {
	job := testJob(t)
	enc := newFakeEncoder()
	p := New(job, &fakeSource{count: 3}, enc, defaultProber())

	m, err := p.Assemble(context.Background(), threeScenes())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if math.Abs(m.TotalDurationSeconds-11.0) > eps {
		t.Errorf("total = %f, want 11.0", m.TotalDurationSeconds)
	}
	wantStart := []float64{0.0, 3.5, 6.0}
	for i, sc := range m.Scenes {
		if math.Abs(sc.StartTime-wantStart[i]) > eps {
			t.Errorf("scene %d start = %f, want %f", i, sc.StartTime, wantStart[i])
		}
		if sc.AudioMissing {
			t.Errorf("scene %d wrongly flagged silent", i)
		}
	}
	if math.Abs(m.Scenes[2].EndTime-11.0) > eps {
		t.Errorf("last scene end = %f, want 11.0", m.Scenes[2].EndTime)
	}
	if len(m.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", m.Warnings)
	}

	if _, err := os.Stat(job.OutputPath); err != nil {
		t.Errorf("output file missing: %v", err)
	}
	if enc.segments != 3 {
		t.Errorf("encoded %d segments, want 3", enc.segments)
	}
	if len(enc.lastMux.SegmentPaths) != 3 || len(enc.lastMux.AudioInputs) != 3 {
		t.Errorf("mux got %d segments / %d audio inputs",
			len(enc.lastMux.SegmentPaths), len(enc.lastMux.AudioInputs))
	}
	// Segments arrive at the mux strictly in timeline order regardless of
	// worker completion order.
	for i, sp := range enc.lastMux.SegmentPaths {
		if sceneIndexFromPath(sp) != i {
			t.Errorf("mux segment %d is %s", i, sp)
		}
	}
}

func TestAssembleAudioDecodeFailure(t *testing.T) {
	job := testJob(t)
	prober := defaultProber()
	delete(prober.durations, "s1.mp3")

	inputs := threeScenes()
	inputs[1].NarrationText = strings.Repeat("word ", 10) // 10 words -> 4s at 150wpm

	p := New(job, &fakeSource{count: 3}, newFakeEncoder(), prober)
	m, err := p.Assemble(context.Background(), inputs)
	if err != nil {
		t.Fatalf("decode failure must not be fatal: %v", err)
	}

	if !m.Scenes[1].AudioMissing {
		t.Error("scene 1 must be flagged audioMissing")
	}
	if got := m.Scenes[1].EndTime - m.Scenes[1].StartTime; math.Abs(got-4.0) > eps {
		t.Errorf("scene 1 duration = %f, want 4.0 from the narration estimate", got)
	}
	found := false
	for _, w := range m.Warnings {
		if w.Scene == 1 && w.Kind == WarnAudioDecode {
			found = true
		}
	}
	if !found {
		t.Errorf("missing audio_decode warning for scene 1: %v", m.Warnings)
	}
}

func TestAssembleConfigErrorRejectedUpfront(t *testing.T) {
	job := testJob(t)
	job.MinSceneSeconds = 0

	enc := newFakeEncoder()
	p := New(job, &fakeSource{count: 3}, enc, defaultProber())
	_, err := p.Assemble(context.Background(), threeScenes())

	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("want ConfigError, got %v", err)
	}
	if enc.segments != 0 || enc.muxed {
		t.Error("no work may start on an invalid job")
	}
}

func TestAssembleSegmentEncodeFailure(t *testing.T) {
	job := testJob(t)
	enc := newFakeEncoder()
	enc.failSegment = 1

	p := New(job, &fakeSource{count: 3}, enc, defaultProber())
	_, err := p.Assemble(context.Background(), threeScenes())

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("want EncodeError, got %v", err)
	}
	if encErr.Scene != 1 || encErr.Stage != StageEncode {
		t.Errorf("error context = scene %d stage %s, want scene 1 stage encode", encErr.Scene, encErr.Stage)
	}
	if _, statErr := os.Stat(job.OutputPath); !os.IsNotExist(statErr) {
		t.Error("failed run must leave no output file")
	}
}

func TestAssembleMuxFailureLeavesNoOutput(t *testing.T) {
	job := testJob(t)
	enc := newFakeEncoder()
	enc.failMux = true

	p := New(job, &fakeSource{count: 3}, enc, defaultProber())
	_, err := p.Assemble(context.Background(), threeScenes())

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("want EncodeError, got %v", err)
	}
	if encErr.Scene != -1 || encErr.Stage != StageMux {
		t.Errorf("error context = scene %d stage %s, want final mux", encErr.Scene, encErr.Stage)
	}

	if _, statErr := os.Stat(job.OutputPath); !os.IsNotExist(statErr) {
		t.Error("output path must stay empty after a mux failure")
	}
	entries, _ := os.ReadDir(filepath.Dir(job.OutputPath))
	for _, e := range entries {
		if strings.Contains(e.Name(), ".partial") {
			t.Errorf("partial file left behind: %s", e.Name())
		}
	}
}

func TestAssembleCancelled(t *testing.T) {
	job := testJob(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(job, &fakeSource{count: 3}, newFakeEncoder(), defaultProber())
	_, err := p.Assemble(ctx, threeScenes())

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("want ErrCancelled, got %v", err)
	}
	if _, statErr := os.Stat(job.OutputPath); !os.IsNotExist(statErr) {
		t.Error("cancelled run must leave no output file")
	}
}

func TestAssembleBadImageSubstitutesPlaceholder(t *testing.T) {
	job := testJob(t)
	enc := newFakeEncoder()
	src := &fakeSource{count: 3, errAt: map[int]error{0: errors.New("truncated png")}}

	p := New(job, src, enc, defaultProber())
	m, err := p.Assemble(context.Background(), threeScenes())
	if err != nil {
		t.Fatalf("bad image must not be fatal: %v", err)
	}

	found := false
	for _, w := range m.Warnings {
		if w.Scene == 0 && w.Kind == WarnInput {
			found = true
		}
	}
	if !found {
		t.Errorf("missing input warning: %v", m.Warnings)
	}
	// The substitute still covers the target resolution.
	for _, b := range enc.segmentDims {
		if b.Dx() < job.Width || b.Dy() < job.Height {
			t.Errorf("segment image %v smaller than %dx%d", b, job.Width, job.Height)
		}
	}
}

func TestAssembleDeterministicManifest(t *testing.T) {
	job := testJob(t)

	run := func() *Manifest {
		p := New(job, &fakeSource{count: 3}, newFakeEncoder(), defaultProber())
		m, err := p.Assemble(context.Background(), threeScenes())
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		return m
	}

	a, b := run(), run()
	if a.TotalDurationSeconds != b.TotalDurationSeconds {
		t.Errorf("totals differ: %f vs %f", a.TotalDurationSeconds, b.TotalDurationSeconds)
	}
	for i := range a.Scenes {
		if a.Scenes[i] != b.Scenes[i] {
			t.Errorf("scene %d timing differs across identical runs", i)
		}
	}
}

func TestAssembleEndCard(t *testing.T) {
	job := testJob(t)
	job.Title = "The Silk Road"
	job.EndCardURL = "https://example.org/story/42"

	p := New(job, &fakeSource{count: 3}, newFakeEncoder(), defaultProber())
	m, err := p.Assemble(context.Background(), threeScenes())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(m.Scenes) != 4 {
		t.Fatalf("got %d scenes, want 3 + end card", len(m.Scenes))
	}
	last := m.Scenes[3]
	if !last.AudioMissing {
		t.Error("end card runs silent")
	}
	if got := last.EndTime - last.StartTime; got+eps < job.MinSceneSeconds {
		t.Errorf("end card duration %f below the floor", got)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	job := testJob(t)
	p := New(job, &fakeSource{count: 1}, newFakeEncoder(), defaultProber())

	if _, err := p.Assemble(context.Background(), threeScenes()[:1]); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	p.Cleanup()
	p.Cleanup() // second invocation is a no-op
}
