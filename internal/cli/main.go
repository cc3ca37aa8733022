package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "vizuara <storyboard.yaml|deck.pdf>",
		Short:        "Assemble narrated scene images into a single video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().String("out", "", "Output video path (default: output/<title>_<timestamp>.mp4)")
	root.Flags().String("title", "", "Video title (defaults to the storyboard title)")
	root.Flags().String("preset", "", "Aspect preset: 16:9, 9:16, 4:5")
	root.Flags().Int("width", 1920, "Output width")
	root.Flags().Int("height", 1080, "Output height")
	root.Flags().Int("fps", 30, "Frame rate (24, 25 or 30)")
	root.Flags().Float64("min-scene", 2.0, "Minimum scene duration in seconds")
	root.Flags().Float64("crossfade", 0.3, "Crossfade duration in seconds")
	root.Flags().Float64("head-pad", 0.15, "Audio head padding in seconds")
	root.Flags().Float64("tail-pad", 0.15, "Audio tail padding in seconds")
	root.Flags().String("bg-music", "", "Background music file, looped under the narration")
	root.Flags().Float64("bg-volume", 0.08, "Background music volume (0..1)")
	root.Flags().String("end-card-url", "", "Append a closing card with a QR code for this URL")
	root.Flags().Bool("smart-focus", false, "Aim the Ken Burns camera at the most detailed region")
	root.Flags().Int("workers", 0, "Parallel scene workers (0 = auto)")
	root.Flags().Int("dpi", 150, "Rasterization DPI for PDF decks")
	root.Flags().String("encoder", "", "Video encoder (default: best available H.264)")
	root.Flags().Int("quality", 0, "Encoder quality (0 = per-encoder default)")

	// Tuning knobs, hidden: product values, not user-facing controls.
	root.Flags().Float64("wpm", 150, "Reading rate for silent-scene duration estimates")
	root.Flags().Float64("peak-ceiling", -1.0, "Audio peak ceiling, dBFS")
	root.Flags().Float64("zoom-start", 1.05, "Ken Burns start zoom")
	root.Flags().Float64("zoom-end", 1.15, "Ken Burns end zoom")
	root.Flags().Float64("pan", 0.06, "Ken Burns pan strength")
	for _, f := range []string{"wpm", "peak-ceiling", "zoom-start", "zoom-end", "pan"} {
		_ = root.Flags().MarkHidden(f)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
