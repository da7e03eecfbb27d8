package ui

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureOutput(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := Output
	Output = buf
	t.Cleanup(func() { Output = prev })
	return buf
}

func TestSpinReturnsResult(t *testing.T) {
	out := captureOutput(t)

	v, err := Spin("Loading opportunities...", func() (int, error) { return 42, nil })
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Contains(t, out.String(), "Loading opportunities...")
}

func TestSpinPassesErrorThrough(t *testing.T) {
	captureOutput(t)
	boom := errors.New("boom")

	_, err := Spin("Working", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestStopWithMsg(t *testing.T) {
	out := captureOutput(t)

	s := NewSpinner("Waiting for receipt")
	s.Start()
	s.StopWithMsg("done")
	assert.Contains(t, out.String(), "done\n")
}
