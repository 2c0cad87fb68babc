package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greyengine/grey/internal/gpu"
	"github.com/greyengine/grey/internal/input"
	"github.com/greyengine/grey/internal/render"
)

// ErrClosed is returned by Platform.NextFrame once the window is gone. Run
// treats it as a clean shutdown.
var ErrClosed = errors.New("platform closed")

// Frame is what the platform hands the engine each iteration.
type Frame struct {
	Delta  time.Duration
	Width  float32
	Height float32
	Clear  render.Color
	// Pass is the render pass for this frame's surface. A nil pass skips
	// rendering, e.g. while the window is minimised.
	Pass   gpu.RenderPass
	Events []input.Event
}

// Platform owns the window, the GPU device and frame pacing.
type Platform interface {
	Device() gpu.Device
	NextFrame(ctx context.Context) (Frame, error)
	Present(f Frame) error
}

// HeadlessPlatform drives the engine without a window. Every frame records
// into one gpu.Recorder and is submitted on Present.
type HeadlessPlatform struct {
	rec    *gpu.Recorder
	width  float32
	height float32
	clear  render.Color
	step   time.Duration
	pace   *time.Ticker
	events []input.Event
	closed bool

	// Retain keeps recorded commands across frames instead of resetting the
	// recorder after each Present.
	Retain bool

	frames    int
	lastDraws int
}

// NewHeadlessPlatform returns a platform whose frames are step long. With
// paced set, NextFrame waits for wall-clock ticks of step; otherwise frames
// are produced back to back.
func NewHeadlessPlatform(width, height float32, step time.Duration, paced bool) *HeadlessPlatform {
	h := &HeadlessPlatform{
		rec:    gpu.NewRecorder(),
		width:  width,
		height: height,
		clear:  render.Black,
		step:   step,
	}
	if paced && step > 0 {
		h.pace = time.NewTicker(step)
	}
	return h
}

func (h *HeadlessPlatform) Device() gpu.Device { return h.rec }

// Recorder exposes the command stream for inspection.
func (h *HeadlessPlatform) Recorder() *gpu.Recorder { return h.rec }

// SetClearColor sets the colour reported in every Frame.
func (h *HeadlessPlatform) SetClearColor(c render.Color) { h.clear = c }

// Queue delivers events with the next frame.
func (h *HeadlessPlatform) Queue(events ...input.Event) {
	h.events = append(h.events, events...)
}

// Resize changes the surface size reported from the next frame on.
// Non-positive sizes are ignored.
func (h *HeadlessPlatform) Resize(width, height float32) {
	if width > 0 && height > 0 {
		h.width, h.height = width, height
	}
}

// Close makes the next NextFrame return ErrClosed.
func (h *HeadlessPlatform) Close() {
	h.closed = true
	if h.pace != nil {
		h.pace.Stop()
	}
}

func (h *HeadlessPlatform) NextFrame(ctx context.Context) (Frame, error) {
	if h.closed {
		return Frame{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if h.pace != nil {
		select {
		case <-h.pace.C:
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}
	f := Frame{
		Delta:  h.step,
		Width:  h.width,
		Height: h.height,
		Clear:  h.clear,
		Pass:   h.rec,
		Events: h.events,
	}
	h.events = nil
	return f, nil
}

func (h *HeadlessPlatform) Present(_ Frame) error {
	h.frames++
	h.lastDraws = len(h.rec.Draws())
	err := h.rec.Submit()
	if !h.Retain {
		h.rec.Reset()
	}
	if err != nil {
		return fmt.Errorf("present frame %d: %w", h.frames, err)
	}
	return nil
}

// Frames returns the number of presented frames.
func (h *HeadlessPlatform) Frames() int { return h.frames }

// LastDraws returns the draw calls recorded in the most recent frame when
// Retain is off, or the running total when it is on.
func (h *HeadlessPlatform) LastDraws() int { return h.lastDraws }
