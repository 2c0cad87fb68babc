package render

import (
	"fmt"

	"github.com/greyengine/grey/internal/gpu"
)

// stream hands out regions of equally sized GPU buffers. A region is never
// handed out twice between resets, so a write never lands on bytes an
// earlier draw of the same frame still reads. Buffers are added on demand
// and kept across frames.
type stream struct {
	device gpu.Device
	label  string
	usage  gpu.BufferUsage
	size   uint64

	bufs []*gpu.Buffer
	cur  int
	off  uint64
}

func newStream(device gpu.Device, label string, usage gpu.BufferUsage, size uint64) (*stream, error) {
	s := &stream{device: device, label: label, usage: usage, size: size}
	if err := s.grow(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *stream) grow() error {
	label := s.label
	if n := len(s.bufs); n > 0 {
		label = fmt.Sprintf("%s#%d", s.label, n)
	}
	buf, err := s.device.CreateBuffer(gpu.BufferDescriptor{Label: label, Size: s.size, Usage: s.usage})
	if err != nil {
		return fmt.Errorf("create %s buffer: %w", label, err)
	}
	s.bufs = append(s.bufs, buf)
	return nil
}

// write uploads data into the next free region and returns where it went.
// data must not be larger than one buffer.
func (s *stream) write(data []byte) (*gpu.Buffer, uint64, error) {
	n := uint64(len(data))
	if n > s.size {
		return nil, 0, fmt.Errorf("%s: %d bytes exceed buffer size %d: %w", s.label, n, s.size, gpu.ErrOutOfBounds)
	}
	if s.off+n > s.size {
		s.cur++
		s.off = 0
	}
	if s.cur == len(s.bufs) {
		if err := s.grow(); err != nil {
			return nil, 0, err
		}
	}
	buf, off := s.bufs[s.cur], s.off
	if err := s.device.WriteBuffer(buf, off, data); err != nil {
		return nil, 0, err
	}
	s.off += n
	return buf, off, nil
}

func (s *stream) reset() {
	s.cur = 0
	s.off = 0
}

// buffers returns how many buffers the stream has allocated.
func (s *stream) buffers() int { return len(s.bufs) }
