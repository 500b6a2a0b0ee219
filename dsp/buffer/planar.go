package buffer

// Planar holds frames samples for each of channels channels in one
// contiguous backing array.
type Planar struct {
	data     []float64
	channels [][]float64
	frames   int
}

// New returns a zero-filled block. Negative sizes are treated as 0.
func New(channels, frames int) *Planar {
	p := &Planar{}
	p.Resize(channels, frames)
	return p
}

// Channels returns the channel count.
func (p *Planar) Channels() int { return len(p.channels) }

// Frames returns the per-channel length.
func (p *Planar) Frames() int { return p.frames }

// Channel returns the full-length slice of channel ch.
func (p *Planar) Channel(ch int) []float64 { return p.channels[ch] }

// Slices returns every channel at full length. The outer slice is owned by
// p and must not be modified.
func (p *Planar) Slices() [][]float64 { return p.channels }

// Views points dst[ch] at the first frames samples of channel ch and
// returns dst. dst must have Channels() entries.
func (p *Planar) Views(dst [][]float64, frames int) [][]float64 {
	for ch := range dst {
		dst[ch] = p.channels[ch][:frames]
	}
	return dst
}

// Zero clears the first frames samples of every channel.
func (p *Planar) Zero(frames int) {
	for _, c := range p.channels {
		clear(c[:frames])
	}
}

// Resize changes the shape, reusing the backing array when it is large
// enough. All samples are zero afterwards.
func (p *Planar) Resize(channels, frames int) {
	channels = max(channels, 0)
	frames = max(frames, 0)

	n := channels * frames
	if n <= cap(p.data) {
		p.data = p.data[:n]
		clear(p.data)
	} else {
		p.data = make([]float64, n)
	}

	if channels <= cap(p.channels) {
		p.channels = p.channels[:channels]
	} else {
		p.channels = make([][]float64, channels)
	}
	for ch := range p.channels {
		p.channels[ch] = p.data[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	p.frames = frames
}
