package render

import "errors"

var (
	// ErrBindingContract is returned at startup when vertex layouts, bind
	// group layouts or shader entry points disagree with what the pipelines
	// expect.
	ErrBindingContract = errors.New("binding contract violated")
	ErrNotAccumulating = errors.New("renderer is not accumulating, call BeginFrame first")
	ErrFrameInProgress = errors.New("frame already in progress")
	ErrBatchTooLarge   = errors.New("draw exceeds batch capacity")
	ErrInvalidGeometry = errors.New("index references a vertex outside the draw")
)
