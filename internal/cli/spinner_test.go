package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
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

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Checking p.json on http://localhost:8000")
	s.Start()
	time.Sleep(3 * spinnerTick)
	elapsed := s.Stop()

	got := out.String()
	if !strings.Contains(got, "Checking p.json on http://localhost:8000") {
		t.Errorf("label not drawn: %q", got)
	}
	if !strings.Contains(got, "○──●──○") {
		t.Errorf("pulse did not advance: %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("line not cleared: %q", got)
	}
	if elapsed < 3*spinnerTick {
		t.Errorf("elapsed = %v", elapsed)
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "x")
	s.Start()
	s.Stop()
	s.Stop()

	if d := newSpinner(context.Background(), io.Discard, "never started").Stop(); d != 0 {
		t.Errorf("Stop before Start = %v, want 0", d)
	}
}

func TestSpinnerClearsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	s := newSpinner(ctx, &out, "slow server")
	s.Start()
	cancel()

	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context ended")
	}
	if got := out.String(); !strings.HasSuffix(got, "\r") {
		t.Errorf("line not cleared: %q", got)
	}
	s.Stop()
}

func TestStatusLine(t *testing.T) {
	if line := statusLine(0, "Checking", 300*time.Millisecond); strings.Contains(line, "(") {
		t.Errorf("fast request should not show elapsed time: %q", line)
	}
	line := statusLine(2, "Checking", 2500*time.Millisecond)
	if !strings.Contains(line, "(2s)") || !strings.Contains(line, "○──○──●") {
		t.Errorf("slow request line = %q", line)
	}
	if statusLine(4, "x", 0) != statusLine(0, "x", 0) {
		t.Error("frames should wrap")
	}
}
