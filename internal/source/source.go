package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Source yields one decoded raster per scene, in timeline order. The image
// is owned by the caller once returned.
type Source interface {
	SceneCount() int
	SceneImage(index int) (image.Image, error)
	Close() error
}

// ImageListSource serves scene images from an ordered list of files.
type ImageListSource struct {
	paths []string
}

func NewImageListSource(paths []string) *ImageListSource {
	return &ImageListSource{paths: paths}
}

func (s *ImageListSource) SceneCount() int {
	return len(s.paths)
}

func (s *ImageListSource) SceneImage(index int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("scene %d out of range", index)
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.paths[index], err)
	}
	return img, nil
}

func (s *ImageListSource) Close() error {
	return nil
}
