package timeline

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeProber struct {
	durations map[string]float64
	err       error
}

func (f *fakeProber) AudioDuration(_ context.Context, path string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	d, ok := f.durations[path]
	if !ok {
		return 0, errors.New("no such file")
	}
	return d, nil
}

func newEstimator(p Prober) *Estimator {
	return &Estimator{
		Prober:          p,
		MinSceneSeconds: 2.0,
		HeadPad:         0.15,
		TailPad:         0.15,
		WordsPerMinute:  150,
	}
}

func TestEstimateFromAudio(t *testing.T) {
	est := newEstimator(&fakeProber{durations: map[string]float64{"narr.mp3": 4.2}})

	got := est.Estimate(context.Background(), SceneInput{AudioPath: "narr.mp3"})
	if got.AudioMissing {
		t.Fatal("audio flagged missing")
	}
	if want := 4.2 + 0.3; math.Abs(got.Duration-want) > eps {
		t.Errorf("duration = %f, want %f", got.Duration, want)
	}
	if math.Abs(got.AudioLength-4.2) > eps {
		t.Errorf("audio length = %f, want 4.2", got.AudioLength)
	}
}

func TestEstimateFloorsShortAudio(t *testing.T) {
	est := newEstimator(&fakeProber{durations: map[string]float64{"blip.mp3": 0.4}})

	got := est.Estimate(context.Background(), SceneInput{AudioPath: "blip.mp3"})
	if got.Duration != 2.0 {
		t.Errorf("duration = %f, want the 2.0 floor", got.Duration)
	}
}

func TestEstimateDecodeFailureFallsBack(t *testing.T) {
	est := newEstimator(&fakeProber{err: errors.New("corrupt header")})

	// 10 words at 150wpm read in 4s.
	in := SceneInput{
		AudioPath:     "broken.mp3",
		NarrationText: "one two three four five six seven eight nine ten",
	}
	got := est.Estimate(context.Background(), in)
	if !got.AudioMissing {
		t.Fatal("decode failure must flag the scene silent")
	}
	if math.Abs(got.Duration-4.0) > eps {
		t.Errorf("duration = %f, want 4.0 from narration estimate", got.Duration)
	}
	if got.AudioLength != 0 {
		t.Errorf("audio length = %f for a silent scene", got.AudioLength)
	}
}

func TestEstimateNoAudioNoNarration(t *testing.T) {
	est := newEstimator(&fakeProber{})

	got := est.Estimate(context.Background(), SceneInput{})
	if !got.AudioMissing {
		t.Fatal("scene should be silent")
	}
	if got.Duration != 2.0 {
		t.Errorf("duration = %f, want exactly the minimum", got.Duration)
	}
}

func TestEstimateReadingRate(t *testing.T) {
	est := newEstimator(&fakeProber{})
	est.WordsPerMinute = 60

	in := SceneInput{NarrationText: "a b c d e f"} // 6 words at 1/s
	got := est.Estimate(context.Background(), in)
	if math.Abs(got.Duration-6.0) > eps {
		t.Errorf("duration = %f, want 6.0", got.Duration)
	}
}
