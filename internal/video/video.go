package video

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/VihaanShinde10/Vizuara2/internal/config"
)

// Encoder is the encoding backend boundary. The pipeline treats it as a
// black box invoked with well-defined parameters; tests substitute fakes.
type Encoder interface {
	// EncodeSegment turns one prepared scene image into a motion segment at
	// outPath, applying params.Filter.
	EncodeSegment(ctx context.Context, img image.Image, outPath string, params config.SegmentParams) error
	// Mux combines the per-scene segments and audio inputs into the final
	// container according to the filter graph.
	Mux(ctx context.Context, spec MuxSpec) error
}

// MuxSpec describes the final sequential compositing pass.
type MuxSpec struct {
	SegmentPaths    []string
	AudioInputs     []string // narration clips, in segment order
	BackgroundAudio string   // optional, looped
	FilterGraph     string
	VideoLabel      string
	AudioLabel      string
	OutputPath      string
	FPS             int
	Encoder         string
	Quality         int
}

// FFmpegEncoder shells out to ffmpeg. Raw RGBA frames go in over stdin so
// segment encoding never touches the disk for intermediate frames.
type FFmpegEncoder struct {
	Path string
}

func NewFFmpegEncoder(path string) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegEncoder{Path: path}
}

func (e *FFmpegEncoder) EncodeSegment(ctx context.Context, img image.Image, outPath string, params config.SegmentParams) error {
	b := img.Bounds()
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"-i", "-",
		"-vf", params.Filter,
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	}
	args = append(args, qualityArgs(params.Encoder, params.Quality)...)
	args = append(args, outPath)

	cmd := exec.CommandContext(ctx, e.Path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	out := &tailBuffer{}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start: %w", err)
	}

	// One frame of raw data; zoompan's d=N replicates it.
	if err := writeRawRGBA(stdin, img); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write raw frame: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg segment: %w\n%s", err, out.String())
	}
	return nil
}

func (e *FFmpegEncoder) Mux(ctx context.Context, spec MuxSpec) error {
	args := []string{"-y"}
	for _, p := range spec.SegmentPaths {
		args = append(args, "-i", p)
	}
	for _, p := range spec.AudioInputs {
		args = append(args, "-i", p)
	}
	if spec.BackgroundAudio != "" {
		args = append(args, "-stream_loop", "-1", "-i", spec.BackgroundAudio)
	}

	if spec.FilterGraph != "" {
		args = append(args, "-filter_complex", spec.FilterGraph)
	}
	args = append(args, "-map", mapLabel(spec.VideoLabel))
	if spec.AudioLabel != "" {
		args = append(args, "-map", mapLabel(spec.AudioLabel), "-c:a", "aac", "-b:a", "192k")
	}

	args = append(args, "-c:v", spec.Encoder, "-pix_fmt", "yuv420p", "-r", fmt.Sprintf("%d", spec.FPS))
	args = append(args, qualityArgs(spec.Encoder, spec.Quality)...)
	args = append(args, spec.OutputPath)

	cmd := exec.CommandContext(ctx, e.Path, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w\n%s", err, tail(string(out)))
	}
	return nil
}

// mapLabel wraps named filter outputs in brackets; plain stream specifiers
// like "0:v" map as-is.
func mapLabel(label string) string {
	for _, c := range label {
		if c == ':' {
			return label
		}
	}
	return "[" + label + "]"
}

func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no portable CRF knob; use bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// tailBuffer keeps only the end of ffmpeg's chatter, which is where the
// actionable error lives.
type tailBuffer struct {
	buf []byte
}

const tailLimit = 4096

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > tailLimit {
		t.buf = t.buf[len(t.buf)-tailLimit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

func tail(s string) string {
	if len(s) > tailLimit {
		return s[len(s)-tailLimit:]
	}
	return s
}
