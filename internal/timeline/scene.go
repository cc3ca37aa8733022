package timeline

// SceneInput is the validated output of the upstream collaborators for one
// story unit: a raster to show, an optional narration clip and the narration
// text used for duration estimation when the clip is absent.
type SceneInput struct {
	ImagePath     string `yaml:"image"`
	AudioPath     string `yaml:"audio,omitempty"`
	NarrationText string `yaml:"narration,omitempty"`
}

// Scene is one placed unit of the story. Index and the input references are
// immutable; Duration is set once by the estimator and Start/End once by
// Build.
type Scene struct {
	Index        int
	ImagePath    string
	AudioPath    string
	Narration    string
	Duration     float64
	AudioMissing bool

	Start float64
	End   float64
}
