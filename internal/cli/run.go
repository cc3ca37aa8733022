package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/VihaanShinde10/Vizuara2/internal/config"
	"github.com/VihaanShinde10/Vizuara2/internal/render"
	"github.com/VihaanShinde10/Vizuara2/internal/source"
	"github.com/VihaanShinde10/Vizuara2/internal/storyboard"
	"github.com/VihaanShinde10/Vizuara2/internal/system"
	"github.com/VihaanShinde10/Vizuara2/internal/timeline"
	"github.com/VihaanShinde10/Vizuara2/internal/video"
)

func run(cmd *cobra.Command, input string) error {
	job := config.Default()

	job.Title, _ = cmd.Flags().GetString("title")
	job.Width, _ = cmd.Flags().GetInt("width")
	job.Height, _ = cmd.Flags().GetInt("height")
	job.FPS, _ = cmd.Flags().GetInt("fps")
	job.MinSceneSeconds, _ = cmd.Flags().GetFloat64("min-scene")
	job.CrossfadeSeconds, _ = cmd.Flags().GetFloat64("crossfade")
	job.HeadPad, _ = cmd.Flags().GetFloat64("head-pad")
	job.TailPad, _ = cmd.Flags().GetFloat64("tail-pad")
	job.WordsPerMinute, _ = cmd.Flags().GetFloat64("wpm")
	job.PeakCeilingDB, _ = cmd.Flags().GetFloat64("peak-ceiling")
	job.ZoomStart, _ = cmd.Flags().GetFloat64("zoom-start")
	job.ZoomEnd, _ = cmd.Flags().GetFloat64("zoom-end")
	job.PanStrength, _ = cmd.Flags().GetFloat64("pan")
	job.BackgroundAudio, _ = cmd.Flags().GetString("bg-music")
	job.BackgroundVolume, _ = cmd.Flags().GetFloat64("bg-volume")
	job.EndCardURL, _ = cmd.Flags().GetString("end-card-url")
	job.SmartFocus, _ = cmd.Flags().GetBool("smart-focus")
	job.Workers, _ = cmd.Flags().GetInt("workers")

	preset, _ := cmd.Flags().GetString("preset")
	switch preset {
	case "16:9":
		job.Width, job.Height = 1920, 1080
	case "9:16":
		job.Width, job.Height = 720, 1280
	case "4:5":
		job.Width, job.Height = 1080, 1350
	case "":
	default:
		return fmt.Errorf("unknown preset %q (want 16:9, 9:16 or 4:5)", preset)
	}

	images, inputs, title, bgAudio, err := loadInput(cmd, input)
	if err != nil {
		return err
	}
	defer images.Close()

	if job.Title == "" {
		job.Title = title
	}
	if job.BackgroundAudio == "" {
		job.BackgroundAudio = bgAudio
	}

	if job.VideoEncoder, _ = cmd.Flags().GetString("encoder"); job.VideoEncoder == "" {
		job.VideoEncoder = system.BestH264Encoder("")
		if job.VideoEncoder != "libx264" {
			log.Printf("[*] hardware encoder detected: %s", job.VideoEncoder)
		}
	}
	if job.Quality, _ = cmd.Flags().GetInt("quality"); job.Quality == 0 {
		switch job.VideoEncoder {
		case "h264_videotoolbox":
			job.Quality = 75
		case "h264_nvenc":
			job.Quality = 28
		default:
			job.Quality = 23
		}
	}

	if job.OutputPath, _ = cmd.Flags().GetString("out"); job.OutputPath == "" {
		name := job.Title
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		}
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, "/", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		job.OutputPath = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", name, timestamp))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := render.New(job, images, video.NewFFmpegEncoder(""), system.NewFFProber("", ""))
	pipeline.Logf = log.Printf

	manifest, err := pipeline.Assemble(ctx, inputs)
	if err != nil {
		return err
	}

	manifestPath := strings.TrimSuffix(job.OutputPath, filepath.Ext(job.OutputPath)) + ".manifest.yaml"
	if err := manifest.Write(manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	log.Printf("[+++] done: %s (%.2fs), manifest: %s",
		manifest.OutputPath, manifest.TotalDurationSeconds, manifestPath)
	return nil
}

// loadInput resolves the positional argument: a YAML storyboard with
// per-scene images and narration, or a PDF deck rendered one page per
// scene.
func loadInput(cmd *cobra.Command, input string) (source.Source, []timeline.SceneInput, string, string, error) {
	if strings.EqualFold(filepath.Ext(input), ".pdf") {
		dpi, _ := cmd.Flags().GetInt("dpi")
		deck, err := source.NewDeckSource(input, dpi)
		if err != nil {
			return nil, nil, "", "", fmt.Errorf("open deck: %w", err)
		}
		inputs := make([]timeline.SceneInput, deck.SceneCount())
		return deck, inputs, "", "", nil
	}

	sb, err := storyboard.Read(input)
	if err != nil {
		return nil, nil, "", "", err
	}
	paths := make([]string, len(sb.Scenes))
	for i, sc := range sb.Scenes {
		paths[i] = sc.ImagePath
	}
	return source.NewImageListSource(paths), sb.Scenes, sb.Title, sb.BackgroundAudio, nil
}
