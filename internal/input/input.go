// Package input tracks keyboard and mouse state between frames. The platform
// feeds raw events through Apply; systems read the resulting state.
package input

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEnter
	KeyEscape
	KeyF3
	keyCount
)

var keyNames = [keyCount]string{
	"unknown", "w", "a", "s", "d", "up", "down", "left", "right",
	"space", "enter", "escape", "f3",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "unknown"
	}
	return keyNames[k]
}

// ParseKey maps a case-insensitive key name to a Key.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range keyNames {
		if k != int(KeyUnknown) && n == name {
			return Key(k), nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	mouseButtonCount
)

// EventKind discriminates Event.
type EventKind int

const (
	EventKeyPressed EventKind = iota
	EventKeyReleased
	EventMouseMoved
	EventMousePressed
	EventMouseReleased
	EventScrolled
)

// Event is one raw input event from the platform.
type Event struct {
	Kind     EventKind
	Key      Key
	Button   MouseButton
	Position mgl32.Vec2
	Delta    mgl32.Vec2
}

// State holds held keys plus the edges seen since the last BeginFrame.
type State struct {
	down     [keyCount]bool
	pressed  [keyCount]bool
	released [keyCount]bool

	mouseDown     [mouseButtonCount]bool
	mousePressed  [mouseButtonCount]bool
	mouseReleased [mouseButtonCount]bool

	mouse      mgl32.Vec2
	prevMouse  mgl32.Vec2
	mouseDelta mgl32.Vec2
	scroll     mgl32.Vec2
}

func NewState() *State { return &State{} }

// BeginFrame clears per-frame edges. Call it before applying the frame's
// events.
func (s *State) BeginFrame() {
	s.pressed = [keyCount]bool{}
	s.released = [keyCount]bool{}
	s.mousePressed = [mouseButtonCount]bool{}
	s.mouseReleased = [mouseButtonCount]bool{}
	s.scroll = mgl32.Vec2{}
	s.mouseDelta = s.mouse.Sub(s.prevMouse)
	s.prevMouse = s.mouse
}

// Apply folds one platform event into the state.
func (s *State) Apply(ev Event) {
	switch ev.Kind {
	case EventKeyPressed:
		if !valid(ev.Key) {
			return
		}
		if !s.down[ev.Key] {
			s.pressed[ev.Key] = true
		}
		s.down[ev.Key] = true
	case EventKeyReleased:
		if !valid(ev.Key) {
			return
		}
		if s.down[ev.Key] {
			s.released[ev.Key] = true
		}
		s.down[ev.Key] = false
	case EventMouseMoved:
		s.mouse = ev.Position
	case EventMousePressed:
		if ev.Button >= 0 && ev.Button < mouseButtonCount {
			if !s.mouseDown[ev.Button] {
				s.mousePressed[ev.Button] = true
			}
			s.mouseDown[ev.Button] = true
		}
	case EventMouseReleased:
		if ev.Button >= 0 && ev.Button < mouseButtonCount {
			if s.mouseDown[ev.Button] {
				s.mouseReleased[ev.Button] = true
			}
			s.mouseDown[ev.Button] = false
		}
	case EventScrolled:
		s.scroll = s.scroll.Add(ev.Delta)
	}
}

func valid(k Key) bool { return k > KeyUnknown && k < keyCount }

// KeyDown reports whether k is held.
func (s *State) KeyDown(k Key) bool { return valid(k) && s.down[k] }

// KeyPressed reports whether k went down this frame.
func (s *State) KeyPressed(k Key) bool { return valid(k) && s.pressed[k] }

// KeyReleased reports whether k went up this frame.
func (s *State) KeyReleased(k Key) bool { return valid(k) && s.released[k] }

func (s *State) MouseDown(b MouseButton) bool {
	return b >= 0 && b < mouseButtonCount && s.mouseDown[b]
}

func (s *State) MousePressed(b MouseButton) bool {
	return b >= 0 && b < mouseButtonCount && s.mousePressed[b]
}

func (s *State) MouseReleased(b MouseButton) bool {
	return b >= 0 && b < mouseButtonCount && s.mouseReleased[b]
}

// MousePosition is in pixels from the top-left of the viewport.
func (s *State) MousePosition() mgl32.Vec2 { return s.mouse }

// MouseDelta is the movement between the last two BeginFrame calls.
func (s *State) MouseDelta() mgl32.Vec2 { return s.mouseDelta }

func (s *State) ScrollDelta() mgl32.Vec2 { return s.scroll }

// MovementAxis reads WASD and the arrow keys as a unit vector, Y up. It is
// zero when nothing is held or opposite keys cancel out.
func (s *State) MovementAxis() mgl32.Vec2 {
	var dir mgl32.Vec2
	if s.KeyDown(KeyW) || s.KeyDown(KeyUp) {
		dir[1]++
	}
	if s.KeyDown(KeyS) || s.KeyDown(KeyDown) {
		dir[1]--
	}
	if s.KeyDown(KeyA) || s.KeyDown(KeyLeft) {
		dir[0]--
	}
	if s.KeyDown(KeyD) || s.KeyDown(KeyRight) {
		dir[0]++
	}
	if dir.Len() == 0 {
		return dir
	}
	return dir.Normalize()
}
