package main

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-flanger/dsp/signal"
)

// source produces frames of planar input for the stream.
type source interface {
	fill(dst [][]float64, frames int)
}

// toneSource writes one generated signal to every channel.
type toneSource struct {
	gen *signal.Source
}

func (s toneSource) fill(dst [][]float64, frames int) {
	s.gen.Fill(dst[0][:frames])
	for ch := 1; ch < len(dst); ch++ {
		copy(dst[ch][:frames], dst[0][:frames])
	}
}

// loopSource repeats decoded file content forever. Output channels beyond
// the file's channel count reuse file channels round robin.
type loopSource struct {
	data [][]float64
	pos  int
}

func (s *loopSource) fill(dst [][]float64, frames int) {
	length := len(s.data[0])
	for i := 0; i < frames; i++ {
		for ch := range dst {
			dst[ch][i] = s.data[ch%len(s.data)][s.pos]
		}
		s.pos++
		if s.pos == length {
			s.pos = 0
		}
	}
}

// loadWAV decodes an integer PCM file into planar samples in [-1, 1).
func loadWAV(path string) (*loopSource, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, 0, fmt.Errorf("WAV file has no audio: %s", path)
	}

	scale := 1 / float64(int64(1)<<(dec.BitDepth-1))
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
		for i := range data[ch] {
			data[ch][i] = float64(buf.Data[i*channels+ch]) * scale
		}
	}

	return &loopSource{data: data}, buf.Format.SampleRate, nil
}
