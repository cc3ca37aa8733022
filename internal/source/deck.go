package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// DeckSource rasterizes a PDF deck, one page per scene.
type DeckSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewDeckSource(path string, dpi int) (*DeckSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &DeckSource{doc: doc, path: path, dpi: dpi}, nil
}

func (s *DeckSource) SceneCount() int {
	return s.doc.NumPage()
}

// SceneImage opens a private document handle per call: fitz handles are not
// safe for concurrent rasterization and scenes decode in parallel.
func (s *DeckSource) SceneImage(index int) (image.Image, error) {
	workerDoc, err := fitz.New(s.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(s.dpi))
}

func (s *DeckSource) Close() error {
	return s.doc.Close()
}
