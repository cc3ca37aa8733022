package render

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SceneTiming is the placed interval of one scene, for downstream
// reporting.
type SceneTiming struct {
	Index        int     `yaml:"index"`
	StartTime    float64 `yaml:"startTime"`
	EndTime      float64 `yaml:"endTime"`
	AudioMissing bool    `yaml:"audioMissing"`
}

// Manifest is the structured record of an assembly run.
type Manifest struct {
	OutputPath           string        `yaml:"outputPath"`
	Title                string        `yaml:"title,omitempty"`
	TotalDurationSeconds float64       `yaml:"totalDurationSeconds"`
	Scenes               []SceneTiming `yaml:"scenes"`
	Warnings             []Warning     `yaml:"warnings,omitempty"`
}

func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
