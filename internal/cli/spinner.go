package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// pulseFrames move a lit node along a three-node chain and back.
var pulseFrames = []string{"●──○──○", "○──●──○", "○──○──●", "○──●──○"}

const (
	spinnerTick = 120 * time.Millisecond

	// showElapsedAfter is how long a request runs before the status line
	// starts showing the elapsed time.
	showElapsedAfter = time.Second
)

// spinner animates a status line on w while a pipeline is being checked by
// the validation server. It exits early when its context is cancelled.
type spinner struct {
	w     io.Writer
	label string
	ctx   context.Context
	stop  context.CancelFunc

	start  time.Time
	exited chan struct{}
	once   sync.Once

	mu    sync.Mutex
	width int // visible width of the last line written
}

func newSpinner(ctx context.Context, w io.Writer, label string) *spinner {
	ctx, stop := context.WithCancel(ctx)
	return &spinner{
		w:      w,
		label:  label,
		ctx:    ctx,
		stop:   stop,
		exited: make(chan struct{}),
	}
}

// Start draws the first frame immediately and keeps animating until Stop
// is called or the context ends.
func (s *spinner) Start() {
	s.start = time.Now()
	s.draw(0, 0)
	go func() {
		defer close(s.exited)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()

		for i := 1; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(i, time.Since(s.start))
			}
		}
	}()
}

// Stop clears the status line and returns how long the spinner ran. It is
// safe to call more than once.
func (s *spinner) Stop() time.Duration {
	s.once.Do(func() {
		s.stop()
		if !s.start.IsZero() {
			<-s.exited
		}
	})
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start)
}

func (s *spinner) draw(frame int, elapsed time.Duration) {
	line := statusLine(frame, s.label, elapsed)
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, "\r"+line+s.pad(lipgloss.Width(line)))
	s.width = lipgloss.Width(line)
}

// pad returns the blanks needed to overwrite a longer previous line.
func (s *spinner) pad(width int) string {
	if s.width <= width {
		return ""
	}
	return strings.Repeat(" ", s.width-width)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// statusLine renders one frame: the pulse, the label and, once the request
// is slow, the elapsed whole seconds.
func statusLine(frame int, label string, elapsed time.Duration) string {
	line := styleIconSpinner.Render(pulseFrames[frame%len(pulseFrames)]) + " " + StyleDim.Render(label)
	if elapsed >= showElapsedAfter {
		line += " " + StyleDim.Render(fmt.Sprintf("(%s)", elapsed.Truncate(time.Second)))
	}
	return line
}
