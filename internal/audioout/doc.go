// Package audioout sends rendered float32 mono audio to a 16-bit WAV file or
// to the default audio device. The engine output is unclamped; this is the
// layer that clips to the PCM range.
package audioout
