package engine

import "time"

// Time tracks frame timing. The FPS figure is averaged over windows of at
// least one second.
type Time struct {
	delta  time.Duration
	total  time.Duration
	frames uint64
	fps    float64

	windowFrames  int
	windowElapsed time.Duration
}

func (t *Time) advance(dt time.Duration) {
	t.delta = dt
	t.total += dt
	t.frames++
	t.windowFrames++
	t.windowElapsed += dt
	if t.windowElapsed >= time.Second {
		t.fps = float64(t.windowFrames) / t.windowElapsed.Seconds()
		t.windowFrames = 0
		t.windowElapsed = 0
	}
}

// Delta is the duration of the current frame.
func (t *Time) Delta() time.Duration { return t.delta }

// DeltaSeconds is Delta as float32 seconds, the unit transforms integrate in.
func (t *Time) DeltaSeconds() float32 { return float32(t.delta.Seconds()) }

// Total is the summed delta of every frame so far.
func (t *Time) Total() time.Duration { return t.total }

// Frames counts frames started, including the current one.
func (t *Time) Frames() uint64 { return t.frames }

func (t *Time) FPS() float64 { return t.fps }
