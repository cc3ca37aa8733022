package source

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Placeholder returns a neutral dark-gray frame used as a substitute for a
// missing or corrupt scene image.
func Placeholder(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := color.RGBA{R: 0x2b, G: 0x2b, B: 0x2e, A: 0xff}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = fill.R
		img.Pix[i+1] = fill.G
		img.Pix[i+2] = fill.B
		img.Pix[i+3] = fill.A
	}
	return img
}

// EnsureCover upscales img so it fully covers width x height, preserving
// aspect ratio. Images already large enough are returned converted to RGBA
// but otherwise untouched; motion sampling happens downstream and must never
// run on an undersized frame.
func EnsureCover(img image.Image, width, height int) *image.RGBA {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	scale := 1.0
	if sx := float64(width) / float64(srcW); sx > scale {
		scale = sx
	}
	if sy := float64(height) / float64(srcH); sy > scale {
		scale = sy
	}

	if scale == 1.0 {
		if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
			return rgba
		}
		out := image.NewRGBA(image.Rect(0, 0, srcW, srcH))
		xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
		return out
	}

	dstW := int(float64(srcW)*scale + 0.5)
	dstH := int(float64(srcH)*scale + 0.5)
	if dstW < width {
		dstW = width
	}
	if dstH < height {
		dstH = height
	}

	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Over, nil)
	return out
}
