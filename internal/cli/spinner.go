package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on w while a slow conversion runs. It
// stops when Stop is called or when the parent context ends.
type spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
	stopped chan struct{}
}

func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     inner,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
		}
	}
}

// Stop clears the line and waits for the animation to exit. Safe to call
// more than once.
func (s *spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// Interrupted reports whether the parent context ended, as opposed to a
// plain Stop.
func (s *spinner) Interrupted() bool {
	return s.parent.Err() != nil
}

// withSpinner runs fn behind a spinner on stderr.
func withSpinner(ctx context.Context, msg string, fn func() ([]byte, error)) ([]byte, error) {
	s := startSpinner(ctx, os.Stderr, msg)
	data, err := fn()
	s.Stop()
	if err == nil && s.Interrupted() {
		err = ctx.Err()
	}
	return data, err
}
