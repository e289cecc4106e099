// Package codec converts PCM into the byte forms used for visualisation.
package codec

import (
	"math"

	"hdxvis/pkg/spec"
)

// WaveformFrame writes mono samples in [-1, 1] into dst as unsigned 8-bit
// amplitudes centred on spec.WaveformCenter. Samples beyond len(dst) are
// ignored, missing samples are written as silence. Nothing is allocated.
func WaveformFrame(dst []byte, mono []float64) {
	for i := range dst {
		if i >= len(mono) {
			dst[i] = spec.WaveformCenter
			continue
		}
		v := math.Round(mono[i]*127) + spec.WaveformCenter
		dst[i] = uint8(math.Max(0, math.Min(v, 255)))
	}
}

// Envelope reduces a waveform frame to points RMS levels (0-255), measured
// as distance from the centre line.
func Envelope(frame []byte, points int) []byte {
	if points <= 0 || len(frame) == 0 {
		return nil
	}
	step := len(frame) / points
	if step == 0 {
		step = 1
	}

	out := make([]byte, 0, points)
	for i := 0; i < len(frame) && len(out) < points; i += step {
		var sum float64
		count := 0
		for j := 0; j < step && (i+j) < len(frame); j++ {
			d := float64(frame[i+j]) - spec.WaveformCenter
			sum += d * d
			count++
		}
		rms := math.Sqrt(sum / float64(count))
		out = append(out, uint8(math.Min(rms/128*255, 255)))
	}
	return out
}
