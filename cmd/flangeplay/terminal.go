package main

import (
	"context"
	"os"

	"golang.org/x/term"
)

// keyboard delivers single key presses from stdin. On a terminal it
// switches to raw mode so keys arrive without Enter.
type keyboard struct {
	fd    int
	state *term.State
	keys  chan byte
}

func openKeyboard(ctx context.Context, in *os.File) (*keyboard, error) {
	k := &keyboard{
		fd:   int(in.Fd()),
		keys: make(chan byte, 16),
	}

	if term.IsTerminal(k.fd) {
		state, err := term.MakeRaw(k.fd)
		if err != nil {
			return nil, err
		}
		k.state = state
	}

	go func() {
		defer close(k.keys)
		buf := make([]byte, 1)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case k.keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	return k, nil
}

// Close restores the terminal mode. The reader goroutine ends with the
// process since a blocked stdin read cannot be interrupted.
func (k *keyboard) Close() error {
	if k.state == nil {
		return nil
	}
	err := term.Restore(k.fd, k.state)
	k.state = nil
	return err
}
