package pipeline

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// ProgressFunc is a callback for pipeline stage progress updates.
type ProgressFunc func(stage string, detail string)

// stageOrder is the fixed stage sequence Run reports through its
// ProgressFunc. The progress meter uses it to render a [n/total]
// position for each update.
var stageOrder = []string{"scan", "parse", "graph", "layers", "health"}

// frameInterval is the animation rate of the activity indicator.
const frameInterval = 120 * time.Millisecond

// progressFrames animate while a stage is running.
var progressFrames = [...]byte{'|', '/', '-', '\\'}

// Progress renders a single-line [stage/total] meter on stderr while the
// pipeline runs. Its Step method is a ProgressFunc, so it plugs straight
// into New. Rendering is suppressed entirely when the writer is not a
// TTY (piped output, CI); Step and Done stay cheap no-ops there.
type Progress struct {
	mu      sync.Mutex
	writer  *os.File
	enabled bool
	stage   int // index into stageOrder, -1 before the first Step
	detail  string
	frame   int
	quit    chan struct{}
	started bool
}

// NewProgress creates a Progress meter writing to w (typically
// os.Stderr).
func NewProgress(w *os.File) *Progress {
	return &Progress{
		writer:  w,
		enabled: isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()),
		stage:   -1,
		quit:    make(chan struct{}),
	}
}

// Step records a stage transition and redraws. It matches ProgressFunc,
// so callers pass it to New directly. Unknown stage names keep the last
// known position rather than corrupting the meter.
func (p *Progress) Step(stage, detail string) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	for i, name := range stageOrder {
		if name == stage {
			p.stage = i
			break
		}
	}
	p.detail = detail
	if !p.started {
		p.started = true
		go p.animate()
	}
	p.render()
	p.mu.Unlock()
}

// Done stops the animation and clears the meter line.
func (p *Progress) Done() {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		close(p.quit)
		p.started = false
	}
	fmt.Fprintf(p.writer, "\r\033[K")
}

// animate advances the activity frame until Done.
func (p *Progress) animate() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.quit:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.frame++
			p.render()
			p.mu.Unlock()
		}
	}
}

// render redraws the meter line. Callers hold the mutex.
func (p *Progress) render() {
	pos := p.stage + 1
	if pos < 1 {
		pos = 1
	}
	frame := progressFrames[p.frame%len(progressFrames)]
	fmt.Fprintf(p.writer, "\r\033[K%c [%d/%d] %s", frame, pos, len(stageOrder), p.detail)
}
