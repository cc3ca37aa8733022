// Package endcard renders the closing title card: story title over a QR
// code pointing at the source material.
package endcard

import (
	"image"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Render produces a width x height card. The QR encodes url; title is drawn
// above it. Fails only if the QR payload is unencodable.
func Render(title, url string, width, height int) (*image.RGBA, error) {
	card := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := color.RGBA{R: 0x12, G: 0x12, B: 0x16, A: 0xff}
	for i := 0; i < len(card.Pix); i += 4 {
		card.Pix[i] = bg.R
		card.Pix[i+1] = bg.G
		card.Pix[i+2] = bg.B
		card.Pix[i+3] = bg.A
	}

	qrSize := height / 3
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qrImg := qr.Image(qrSize)
	qrRect := image.Rect(
		(width-qrSize)/2,
		height/2,
		(width-qrSize)/2+qrSize,
		height/2+qrSize,
	)
	xdraw.Draw(card, qrRect, qrImg, qrImg.Bounds().Min, xdraw.Over)

	if title != "" {
		drawTitle(card, title, width, height)
	}
	return card, nil
}

// drawTitle renders the title with the bitmap face at small size, then
// upscales the strip so it stays legible at full resolution.
func drawTitle(dst *image.RGBA, title string, width, height int) {
	face := basicfont.Face7x13
	textW := font.MeasureString(face, title).Ceil()
	strip := image.NewRGBA(image.Rect(0, 0, textW+8, 20))

	d := font.Drawer{
		Dst:  strip,
		Src:  image.NewUniform(color.RGBA{0xf0, 0xf0, 0xf0, 0xff}),
		Face: face,
		Dot:  fixed.P(4, 14),
	}
	d.DrawString(title)

	scale := 4
	if textW*scale > width-80 && textW > 0 {
		scale = (width - 80) / textW
		if scale < 1 {
			scale = 1
		}
	}
	dstW, dstH := strip.Bounds().Dx()*scale, strip.Bounds().Dy()*scale
	target := image.Rect((width-dstW)/2, height/4, (width-dstW)/2+dstW, height/4+dstH)
	xdraw.NearestNeighbor.Scale(dst, target, strip, strip.Bounds(), xdraw.Over, nil)
}
