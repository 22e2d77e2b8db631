package audioout

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	pcmScale  = 32767
	wavFormat = 1 // PCM
)

// WAVWriter streams mono float32 blocks to a 16-bit PCM WAV.
type WAVWriter struct {
	enc     *wav.Encoder
	buf     *audio.IntBuffer
	frames  int
	clipped int
}

// NewWAVWriter returns a writer encoding to w. The header is finalized by
// Close, which needs w to be seekable.
func NewWAVWriter(w io.WriteSeeker, sampleRate int) (*WAVWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audioout: invalid sample rate: %d", sampleRate)
	}

	return &WAVWriter{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, 1, wavFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends block, clipping samples outside [-1, 1].
func (w *WAVWriter) Write(block []float32) error {
	if cap(w.buf.Data) < len(block) {
		w.buf.Data = make([]int, len(block))
	}

	w.buf.Data = w.buf.Data[:len(block)]
	for i, v := range block {
		s, clipped := toPCM16(v)
		if clipped {
			w.clipped++
		}
		w.buf.Data[i] = s
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("audioout: wav write: %w", err)
	}

	w.frames += len(block)

	return nil
}

// Frames returns the number of frames written.
func (w *WAVWriter) Frames() int { return w.frames }

// Clipped returns how many samples were clipped so far.
func (w *WAVWriter) Clipped() int { return w.clipped }

// Close writes the final header. It does not close the underlying writer.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("audioout: wav close: %w", err)
	}

	return nil
}

// WriteWAVFile creates path and writes samples to it as 16-bit mono PCM.
// It returns the number of clipped samples.
func WriteWAVFile(path string, sampleRate int, samples []float32) (clipped int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("audioout: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("audioout: %w", cerr)
		}
	}()

	w, err := NewWAVWriter(f, sampleRate)
	if err != nil {
		return 0, err
	}

	if err := w.Write(samples); err != nil {
		return w.Clipped(), err
	}

	return w.Clipped(), w.Close()
}

// toPCM16 scales v to the signed 16-bit range. NaN maps to 0 and counts as
// clipped.
func toPCM16(v float32) (int, bool) {
	x := float64(v)

	switch {
	case math.IsNaN(x):
		return 0, true
	case x > 1:
		return pcmScale, true
	case x < -1:
		return -pcmScale, true
	}

	return int(math.Round(x * pcmScale)), false
}
