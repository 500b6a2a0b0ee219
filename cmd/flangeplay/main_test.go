package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/lfo"
	dspsignal "github.com/cwbudde/algo-flanger/dsp/signal"
	"github.com/cwbudde/algo-flanger/plugin"
)

func newTestUnit(t *testing.T, channels, block int) *plugin.Unit {
	t.Helper()

	u, err := plugin.New(plugin.WithProcessorConfig(core.ProcessorConfig{
		SampleRate: 1000,
		BlockSize:  block,
		Channels:   channels,
		MaxDelayMs: plugin.MaxDelayMs,
	}))
	require.NoError(t, err)
	return u
}

func decodeFloat32(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]string{"-signal", "saw", "-preset", "Sweeper", "-channels", "1", "-waveform", "sine", "in.wav"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, dspsignal.Sawtooth, cfg.kind)
	assert.Equal(t, 1, cfg.preset)
	assert.Equal(t, 1, cfg.channels)
	assert.Equal(t, lfo.Sine, cfg.waveform)
	assert.Equal(t, "in.wav", cfg.inPath)
	assert.Equal(t, 40*time.Millisecond, cfg.buffer)

	for _, args := range [][]string{
		{"-signal", "square"},
		{"-preset", "Jet"},
		{"-channels", "3"},
		{"-block", "0"},
		{"-sr", "-1"},
		{"-buffer", "0s"},
		{"-duration", "-1s"},
		{"-waveform", "pulse"},
	} {
		_, err := parseConfig(args, &bytes.Buffer{})
		assert.Error(t, err, args)
	}

	var stderr bytes.Buffer
	_, err = parseConfig([]string{"a.wav", "b.wav"}, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "Usage: flangeplay")
}

func TestStreamBypassPassesSourceThrough(t *testing.T) {
	u := newTestUnit(t, 2, 16)
	u.SetBypass(true)

	gen, err := dspsignal.NewSource(dspsignal.Sawtooth, 250, 1000, dspsignal.WithAmplitude(1))
	require.NoError(t, err)
	st := newStream(u, toneSource{gen: gen})

	// 40 frames plus 3 stray bytes: three render calls, stray bytes unread.
	p := make([]byte, 40*2*4+3)
	n, err := st.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 40*2*4, n)

	want := []float32{-1, -0.5, 0, 0.5}
	got := decodeFloat32(p[:n])
	for i := 0; i < 40; i++ {
		assert.Equal(t, want[i%4], got[2*i], "left %d", i)
		assert.Equal(t, want[i%4], got[2*i+1], "right %d", i)
	}

	assert.Equal(t, int64(40), st.timestamp)
	assert.InDelta(t, 1.0, st.takePeak(), 1e-12)
	assert.Zero(t, st.takePeak())
}

func TestStreamRendersThroughFlanger(t *testing.T) {
	u := newTestUnit(t, 1, 32)
	require.NoError(t, u.SetParameter(plugin.Depth, 4, 0))
	require.NoError(t, u.SetParameter(plugin.Delay, 4, 0))
	require.NoError(t, u.SetParameter(plugin.Feedback, 0, 0))
	require.NoError(t, u.SetParameter(plugin.DryMix, 0, 0))
	require.NoError(t, u.SetParameter(plugin.WetMix, 100, 0))

	gen, err := dspsignal.NewSource(dspsignal.Clicks, 125, 1000, dspsignal.WithAmplitude(1))
	require.NoError(t, err)
	st := newStream(u, toneSource{gen: gen})

	p := make([]byte, 20*4)
	_, err = st.Read(p)
	require.NoError(t, err)

	got := decodeFloat32(p)
	for i, v := range got {
		want := float32(0)
		if i%8 == 4 {
			want = 1
		}
		assert.InDelta(t, want, v, 1e-6, "frame %d", i)
	}
	assert.Zero(t, st.failures.Load())
}

func TestStreamPeakMeter(t *testing.T) {
	s := &stream{}

	s.raisePeak(0.5)
	s.raisePeak(0.25)
	assert.Equal(t, 0.5, s.takePeak())
	assert.Zero(t, s.takePeak())

	s.raisePeak(0.125)
	assert.Equal(t, 0.125, s.takePeak(), "a value raised after a take must not be lost")
}

func TestStreamPeakMeterConcurrentTake(t *testing.T) {
	s := &stream{}
	const n = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			s.raisePeak(float64(i) / n)
		}
	}()

	highest := 0.0
	for range n {
		v := s.takePeak()
		assert.LessOrEqual(t, v, 1.0)
		highest = max(highest, v)
	}
	wg.Wait()
	highest = max(highest, s.takePeak())

	assert.Equal(t, 1.0, highest)
	assert.Zero(t, s.takePeak())
}

func TestLoopSourceWraps(t *testing.T) {
	src := &loopSource{data: [][]float64{{1, 2, 3}}}
	dst := [][]float64{make([]float64, 7), make([]float64, 7)}
	src.fill(dst, 7)

	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3, 1}, dst[0])
	assert.Equal(t, dst[0], dst[1])
	assert.Equal(t, 1, src.pos)
}

func TestLoadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 22050, 16, 2, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           []int{16384, -16384, 0, 8192},
		Format:         &audio.Format{NumChannels: 2, SampleRate: 22050},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	src, rate, err := loadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 22050, rate)
	assert.Equal(t, [][]float64{{0.5, 0}, {-0.5, 0.25}}, src.data)

	bad := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))
	_, _, err = loadWAV(bad)
	assert.ErrorContains(t, err, "invalid WAV file")
}

func TestHandleKey(t *testing.T) {
	u := newTestUnit(t, 2, 32)

	msg, quit, err := handleKey(u, 'D')
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, msg, "Depth: ")
	depth, err := u.Parameter(plugin.Depth)
	require.NoError(t, err)
	assert.Greater(t, depth, 7.0)

	_, _, err = handleKey(u, 'w')
	require.NoError(t, err)
	wet, err := u.Parameter(plugin.WetMix)
	require.NoError(t, err)
	assert.InDelta(t, 45, wet, 1e-9)

	msg, _, err = handleKey(u, 'o')
	require.NoError(t, err)
	assert.Equal(t, "Odd 90°: on", msg)
	msg, _, err = handleKey(u, 'o')
	require.NoError(t, err)
	assert.Equal(t, "Odd 90°: off", msg)

	msg, _, err = handleKey(u, '4')
	require.NoError(t, err)
	assert.Equal(t, "preset Lord Tremolo", msg)
	assert.Equal(t, 3, u.CurrentPreset())

	msg, _, err = handleKey(u, '9')
	require.NoError(t, err)
	assert.Empty(t, msg)

	msg, _, err = handleKey(u, 'b')
	require.NoError(t, err)
	assert.Equal(t, "bypass on", msg)
	assert.True(t, u.IsBypassed())

	msg, quit, err = handleKey(u, 'x')
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Empty(t, msg)

	for _, key := range []byte{'q', ctrlC, 0x1b} {
		_, quit, err := handleKey(u, key)
		require.NoError(t, err)
		assert.True(t, quit)
	}
}

func TestHandleKeyClampsAtRangeEnd(t *testing.T) {
	u := newTestUnit(t, 2, 32)
	require.NoError(t, u.SetParameter(plugin.Feedback, 100, 0))

	_, _, err := handleKey(u, 'F')
	require.NoError(t, err)
	fb, err := u.Parameter(plugin.Feedback)
	require.NoError(t, err)
	assert.InDelta(t, 100, fb, 1e-9)
}

func TestPrintHelpListsPresets(t *testing.T) {
	var b bytes.Buffer
	printHelp(&b)
	for _, p := range plugin.Presets() {
		assert.Contains(t, b.String(), p.Name)
	}
	assert.Contains(t, b.String(), "d/D  Depth down/up")
}
