package diagnostics

import "sync"

const defaultLogLines = 100

// LogBuffer keeps the most recent request log lines in a fixed ring for
// /debug/logs.
type LogBuffer struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// NewLogBuffer allocates a ring of limit lines; limit <= 0 selects 100.
func NewLogBuffer(limit int) *LogBuffer {
	if limit <= 0 {
		limit = defaultLogLines
	}
	return &LogBuffer{lines: make([]string, limit)}
}

// Append stores line, overwriting the oldest once the ring is full.
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines[b.next] = line
	b.next++
	if b.next == len(b.lines) {
		b.next = 0
		b.full = true
	}
}

// Snapshot returns the buffered lines, oldest first.
func (b *LogBuffer) Snapshot() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.full {
		out := make([]string, b.next)
		copy(out, b.lines[:b.next])
		return out
	}
	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	return append(out, b.lines[:b.next]...)
}
