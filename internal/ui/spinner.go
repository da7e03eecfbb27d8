package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Output is where spinners draw. Tests and --json output point it elsewhere.
var Output io.Writer = os.Stderr

// Spinner animates a loading indicator while a node call or a receipt
// wait is in flight.
type Spinner struct {
	frames []string
	msg    string
	out    io.Writer
	stop   chan struct{}
	done   chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(msg string) *Spinner {
	return &Spinner{
		frames: spinnerFrames,
		msg:    msg,
		out:    Output,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the spinner animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := StyleNetwork.Render(s.frames[i%len(s.frames)])
			fmt.Fprintf(s.out, "\r%s  %s", frame, s.msg)
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-70s\r", "")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the spinner and waits for it to finish.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithMsg halts the spinner and prints a final message.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}

// Spin runs fn behind a spinner showing msg.
func Spin[T any](msg string, fn func() (T, error)) (T, error) {
	s := NewSpinner(msg)
	s.Start()
	v, err := fn()
	s.Stop()
	return v, err
}
