package synth

import "errors"

// ErrInvalidSampleRate is returned by Init for a non-positive or non-finite
// sample rate.
var ErrInvalidSampleRate = errors.New("synth: invalid sample rate")
