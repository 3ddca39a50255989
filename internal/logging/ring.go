package logging

import (
	"strings"
	"sync"
)

// Ring is a zapcore.WriteSyncer that keeps the last lines written to it.
type Ring struct {
	mu    sync.Mutex
	lines []string
	start int
	count int
}

// NewRing returns a ring holding up to capacity lines. A non-positive
// capacity uses DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{lines: make([]string, capacity)}
}

// Write stores every line of p. zap writes one entry per call.
func (r *Ring) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		r.push(line)
	}
	return len(p), nil
}

func (r *Ring) push(line string) {
	size := len(r.lines)
	if r.count < size {
		r.lines[(r.start+r.count)%size] = line
		r.count++
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % size
}

// Sync is a no-op.
func (r *Ring) Sync() error { return nil }

// Lines returns a copy of the stored lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, r.count)
	for i := range out {
		out[i] = r.lines[(r.start+i)%len(r.lines)]
	}
	return out
}

// Len returns the number of stored lines.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
