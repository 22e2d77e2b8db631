package audioout

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/ebitengine/oto/v3"
)

// Source fills dst with the next block of mono audio.
type Source interface {
	Render(dst []float32)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(dst []float32)

// Render calls f(dst).
func (f SourceFunc) Render(dst []float32) { f(dst) }

// sourceReader turns a Source into little-endian float32 bytes for oto.
type sourceReader struct {
	mu      sync.Mutex
	src     Source
	scratch []float32
}

func (r *sourceReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p) / 4
	r.scratch = core.EnsureLen(r.scratch, n)

	block := r.scratch
	core.Zero(block)
	r.src.Render(block)

	for i, v := range block {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}

	return 4 * n, nil
}

// Player streams a Source to the default output device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer opens the audio device at sampleRate in mono float32 and starts
// pulling from src. bufferFrames sets the device buffer; 0 lets oto choose.
func NewPlayer(src Source, sampleRate, bufferFrames int) (*Player, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audioout: invalid sample rate: %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	if bufferFrames > 0 {
		op.BufferSize = time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate)
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audioout: open device: %w", err)
	}
	<-ready

	p := &Player{ctx: ctx, player: ctx.NewPlayer(&sourceReader{src: src})}
	p.player.Play()

	return p, nil
}

// Close stops playback.
func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("audioout: close player: %w", err)
	}

	return nil
}
