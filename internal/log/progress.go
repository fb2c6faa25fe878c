package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Progress draws a spinner with a done/total counter on one terminal line.
// Increment is safe for concurrent use.
type Progress struct {
	mu      sync.Mutex
	writer  io.Writer
	colors  bool
	message string
	done    int
	total   int
	frame   int

	stop    chan struct{}
	stopped sync.WaitGroup
}

// NewProgress returns a stopped progress line for total items.
func NewProgress(w io.Writer, message string, total int) *Progress {
	return &Progress{
		writer:  w,
		colors:  isTerminal(w),
		message: message,
		total:   total,
	}
}

// Start begins redrawing every interval.
func (p *Progress) Start(interval time.Duration) {
	p.stop = make(chan struct{})
	p.stopped.Add(1)
	go func() {
		defer p.stopped.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.mu.Lock()
				p.draw()
				p.mu.Unlock()
			case <-p.stop:
				return
			}
		}
	}()
}

// Increment records one finished item.
func (p *Progress) Increment() {
	p.mu.Lock()
	p.done++
	p.mu.Unlock()
}

// Done returns the number of finished items.
func (p *Progress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Stop ends the animation and clears the line. It is a no-op on a nil or
// stopped Progress.
func (p *Progress) Stop() {
	if p == nil || p.stop == nil {
		return
	}
	close(p.stop)
	p.stopped.Wait()
	p.stop = nil
	fmt.Fprint(p.writer, "\r\033[K")
}

func (p *Progress) draw() {
	frame := spinnerFrames[p.frame%len(spinnerFrames)]
	p.frame++
	if p.colors {
		frame = "\033[36m" + frame + "\033[0m"
	}
	fmt.Fprintf(p.writer, "\r%s %s %d/%d", frame, p.message, p.done, p.total)
}
