package endcard

import "testing"

func TestRender(t *testing.T) {
	card, err := Render("The Silk Road", "https://example.org/story/42", 1280, 720)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if card.Bounds().Dx() != 1280 || card.Bounds().Dy() != 720 {
		t.Errorf("card bounds %v", card.Bounds())
	}

	// The QR modules must actually land on the card: expect both dark and
	// light pixels inside the code area.
	dark, light := 0, 0
	qrSize := 720 / 3
	x0, y0 := (1280-qrSize)/2, 720/2
	for y := y0; y < y0+qrSize; y++ {
		for x := x0; x < x0+qrSize; x++ {
			r, g, b, _ := card.At(x, y).RGBA()
			if r > 0xc000 && g > 0xc000 && b > 0xc000 {
				light++
			} else {
				dark++
			}
		}
	}
	if dark == 0 || light == 0 {
		t.Errorf("QR area looks blank: dark=%d light=%d", dark, light)
	}
}

func TestRenderNoTitle(t *testing.T) {
	if _, err := Render("", "https://example.org", 640, 360); err != nil {
		t.Fatalf("render without title: %v", err)
	}
}
