package engine

import (
	"errors"
	"fmt"

	"hdxvis/internal/filesystem"

	"github.com/faiface/beep"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("engine: not a PCM wav file")

const resampleQuality = 4

// pcm streams a decoded integer buffer as stereo floats. Mono is
// duplicated, channels past the second are dropped.
type pcm struct {
	buf      *audio.IntBuffer
	channels int
	depth    int
	pos      int
}

func (p *pcm) sample(i int) float64 {
	v := p.buf.Data[i]
	if p.depth == 8 {
		// 8-bit wav is unsigned
		return float64(v-128) / 128
	}
	return float64(v) / float64(int(1)<<(p.depth-1))
}

func (p *pcm) Stream(samples [][2]float64) (n int, ok bool) {
	frames := len(p.buf.Data) / p.channels
	if p.pos >= frames {
		return 0, false
	}
	for n < len(samples) && p.pos < frames {
		i := p.pos * p.channels
		l := p.sample(i)
		r := l
		if p.channels > 1 {
			r = p.sample(i + 1)
		}
		samples[n] = [2]float64{l, r}
		n++
		p.pos++
	}
	return n, true
}

func (p *pcm) Err() error { return nil }

// decodeWAV reads a whole wav file into a seekable buffer at rate.
func decodeWAV(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || dec.BitDepth == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}

	src := &pcm{buf: buf, channels: buf.Format.NumChannels, depth: int(dec.BitDepth)}
	srcRate := beep.SampleRate(buf.Format.SampleRate)

	var s beep.Streamer = src
	if srcRate != rate {
		s = beep.Resample(resampleQuality, srcRate, rate, src)
	}

	out := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	out.Append(s)
	return out, nil
}
