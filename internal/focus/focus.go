// Package focus picks a salient focal point for camera targeting using
// Sobel gradient energy. Flat regions (sky, page margins) carry almost no
// energy, so the centroid lands on the detailed part of the frame.
package focus

import (
	"image"
	"image/color"
	"math"
)

// maxSampleDim bounds the grayscale working copy; saliency does not need
// full resolution and full-size Sobel on a 4K frame is wasted work.
const maxSampleDim = 256

// Point is a normalized image-space coordinate in [0,1]².
type Point struct {
	X float64
	Y float64
}

// Salient returns the gradient-energy centroid of img. The result is
// deterministic for a given image. Images with no measurable detail fall
// back to the center.
func Salient(img image.Image) Point {
	gray := downsampleGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return Point{X: 0.5, Y: 0.5}
	}

	var total, sumX, sumY float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := float64(gray.GrayAt(x+1, y-1).Y) + 2*float64(gray.GrayAt(x+1, y).Y) + float64(gray.GrayAt(x+1, y+1).Y) -
				float64(gray.GrayAt(x-1, y-1).Y) - 2*float64(gray.GrayAt(x-1, y).Y) - float64(gray.GrayAt(x-1, y+1).Y)
			gy := float64(gray.GrayAt(x-1, y+1).Y) + 2*float64(gray.GrayAt(x, y+1).Y) + float64(gray.GrayAt(x+1, y+1).Y) -
				float64(gray.GrayAt(x-1, y-1).Y) - 2*float64(gray.GrayAt(x, y-1).Y) - float64(gray.GrayAt(x+1, y-1).Y)
			mag := math.Sqrt(gx*gx + gy*gy)
			total += mag
			sumX += mag * float64(x)
			sumY += mag * float64(y)
		}
	}

	if total == 0 {
		return Point{X: 0.5, Y: 0.5}
	}
	return Point{
		X: sumX / total / float64(w-1),
		Y: sumY / total / float64(h-1),
	}
}

func downsampleGray(img image.Image) *image.Gray {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	step := 1
	for srcW/step > maxSampleDim || srcH/step > maxSampleDim {
		step++
	}

	w, h := srcW/step, srcH/step
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x*step, b.Min.Y+y*step)
			gray.Set(x, y, color.GrayModel.Convert(c))
		}
	}
	return gray
}
