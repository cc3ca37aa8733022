// Package system wraps the host-facing probes: ffprobe/ffmpeg media
// inspection, encoder discovery and worker sizing.
package system

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// FFProber inspects media files through ffprobe and ffmpeg.
type FFProber struct {
	FFprobe string
	FFmpeg  string
}

func NewFFProber(ffprobePath, ffmpegPath string) *FFProber {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFProber{FFprobe: ffprobePath, FFmpeg: ffmpegPath}
}

// AudioDuration returns the decoded length of an audio file in seconds.
func (p *FFProber) AudioDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(out))
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration parse: %w", err)
	}
	return d, nil
}

var maxVolumeRe = regexp.MustCompile(`max_volume:\s*(-?[0-9.]+)\s*dB`)

// PeakDB measures the sample peak of an audio file in dBFS via a
// volumedetect pass to the null muxer.
func (p *FFProber) PeakDB(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.FFmpeg,
		"-hide_banner",
		"-i", path,
		"-af", "volumedetect",
		"-f", "null", "-",
	)
	out, _ := cmd.CombinedOutput() // ffmpeg exits 0 here; output carries the stats
	m := maxVolumeRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("volumedetect: no max_volume in output for %s", path)
	}
	return strconv.ParseFloat(string(m[1]), 64)
}

// BestH264Encoder picks the fastest available H.264 encoder, preferring
// hardware paths when ffmpeg advertises them.
func BestH264Encoder(ffmpegPath string) string {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	out, err := exec.Command(ffmpegPath, "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// Workers sizes the per-scene pool. Each worker holds a decoded RGBA frame
// around frameBytes plus encoder overhead, so the pool is capped both by
// logical CPUs and by a quarter of the memory currently available.
func Workers(requested, sceneCount, frameBytes int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
		if counts, err := cpu.Counts(true); err == nil && counts > 0 {
			n = counts
		}
	}

	if frameBytes > 0 {
		if vm, err := mem.VirtualMemory(); err == nil {
			// 3x frame: decoded source, cover upscale, encoder staging.
			budget := int(vm.Available / 4 / uint64(frameBytes*3))
			if budget < n {
				n = budget
			}
		}
	}

	if n > sceneCount {
		n = sceneCount
	}
	if n < 1 {
		n = 1
	}
	return n
}
