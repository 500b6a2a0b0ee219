package main

import (
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// device plays a stream on the default audio output.
type device struct {
	ctx    *oto.Context
	player *oto.Player
}

func openDevice(sampleRate, channels int, bufferSize time.Duration, r io.Reader) (*device, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	player := ctx.NewPlayer(r)
	player.Play()

	return &device{ctx: ctx, player: player}, nil
}

func (d *device) Close() error {
	if err := d.player.Close(); err != nil {
		return err
	}
	return d.ctx.Suspend()
}
