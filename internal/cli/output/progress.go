package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const barWidth = 40

// Progress draws a status line for the store being benchmarked. A compare
// run benchmarks two stores in turn; when Update names a new store the
// previous line is closed and a fresh one starts, so each store keeps its
// own count and throughput.
type Progress struct {
	w   io.Writer
	now func() time.Time

	mu    sync.Mutex
	impl  string
	start time.Time
	drawn bool
}

// NewProgress returns a Progress writing to w, usually stderr.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w, now: time.Now}
}

// Update redraws the line for impl. total is 0 for duration-bound runs,
// which show a running count instead of a bar.
func (p *Progress) Update(impl string, done, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.drawn || impl != p.impl {
		if p.drawn {
			fmt.Fprintln(p.w)
		}
		p.impl, p.start, p.drawn = impl, p.now(), true
	}
	fmt.Fprint(p.w, "\r"+p.line(done, total))
}

// Finish ends the current line. A run stopped early keeps its partial
// count on screen.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

func (p *Progress) line(done, total int64) string {
	var b strings.Builder
	b.WriteString(p.impl)

	if total > 0 {
		frac := min(float64(done)/float64(total), 1)
		n := int(frac * barWidth)
		fmt.Fprintf(&b, " [%s%s] %3.0f%% (%s/%s)",
			strings.Repeat("█", n), strings.Repeat("░", barWidth-n),
			frac*100, formatCount(done), formatCount(total))
	} else {
		fmt.Fprintf(&b, " %s ops", formatCount(done))
	}

	if secs := p.now().Sub(p.start).Seconds(); secs > 0 {
		fmt.Fprintf(&b, " %s ops/s", formatCount(int64(float64(done)/secs)))
	}
	return b.String()
}

// formatCount shortens n with a K, M or G style suffix.
func formatCount(n int64) string {
	if n < 1000 {
		return fmt.Sprint(n)
	}
	f := float64(n)
	for _, suffix := range "KMGTPE" {
		f /= 1000
		if f < 1000 {
			return fmt.Sprintf("%.1f%c", f, suffix)
		}
	}
	return fmt.Sprint(n)
}
