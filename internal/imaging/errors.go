package imaging

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is wrapped by errors caused by out-of-range request
// parameters.
var ErrInvalidRequest = errors.New("invalid synthesis request")

// SynthesisError reports a failure to build or rasterize the canvas, or to
// encode it. The caller should skip the item.
type SynthesisError struct {
	Category string
	Op       string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize %s: %s: %v", e.Category, e.Op, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// EncodingError reports a post-processing failure. The synthesizer recovers
// from it by returning the unprocessed buffer.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("postprocess %s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
