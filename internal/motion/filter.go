package motion

import "fmt"

// Filter renders the spec as an ffmpeg filter chain: cover-crop the source
// frame to the target aspect at double size (sub-pixel headroom against
// zoompan jitter), then drive zoompan with linear zoom and focal
// expressions. Offsets are clamped in-expression so border sampling cannot
// happen even under ffmpeg's own rounding.
func (s Spec) Filter(width, height, fps int) string {
	totalFrames := int(s.Duration*float64(fps) + 0.5)
	if totalFrames < 1 {
		totalFrames = 1
	}

	// 'on' counts output frames 0..d-1.
	denom := totalFrames - 1
	if denom < 1 {
		denom = 1
	}

	zExpr := fmt.Sprintf("%.6f+(%.6f-%.6f)*on/%d", s.ScaleStart, s.ScaleEnd, s.ScaleStart, denom)
	fxExpr := fmt.Sprintf("(%.6f+(%.6f-%.6f)*on/%d)", s.FromX, s.ToX, s.FromX, denom)
	fyExpr := fmt.Sprintf("(%.6f+(%.6f-%.6f)*on/%d)", s.FromY, s.ToY, s.FromY, denom)

	xExpr := fmt.Sprintf("max(0,min(iw-iw/zoom,%s*iw-iw/zoom/2))", fxExpr)
	yExpr := fmt.Sprintf("max(0,min(ih-ih/zoom,%s*ih-ih/zoom/2))", fyExpr)

	cover := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		width*2, height*2, width*2, height*2,
	)
	zoompan := fmt.Sprintf(
		"zoompan=z='%s':x='%s':y='%s':d=%d:s=%dx%d:fps=%d",
		zExpr, xExpr, yExpr, totalFrames, width, height, fps,
	)

	return cover + "," + zoompan
}
