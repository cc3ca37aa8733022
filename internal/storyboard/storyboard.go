// Package storyboard reads the ordered scene list handed over by the
// upstream generation steps.
package storyboard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/VihaanShinde10/Vizuara2/internal/timeline"
)

type Storyboard struct {
	Version         string                `yaml:"version"`
	Title           string                `yaml:"title"`
	BackgroundAudio string                `yaml:"background_audio,omitempty"`
	Scenes          []timeline.SceneInput `yaml:"scenes"`
}

func Read(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sb Storyboard
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("parse storyboard %s: %w", path, err)
	}
	if len(sb.Scenes) == 0 {
		return nil, fmt.Errorf("storyboard %s has no scenes", path)
	}
	return &sb, nil
}

func Write(sb *Storyboard, path string) error {
	data, err := yaml.Marshal(sb)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
