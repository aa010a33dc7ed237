package runner

import (
	"bytes"
	"strings"
)

// LineAssembler is an io.Writer that turns arbitrarily chunked output into
// lines. A line split across writes is delivered once, whole. Invalid UTF-8
// is replaced with U+FFFD per line, so multi-byte characters split across
// writes decode correctly.
type LineAssembler struct {
	pending []byte
	lines   []string
	onLine  LineHandler
}

func NewLineAssembler(onLine LineHandler) *LineAssembler {
	return &LineAssembler{onLine: onLine}
}

func (a *LineAssembler) Write(p []byte) (int, error) {
	a.pending = append(a.pending, p...)
	for {
		idx := bytes.IndexByte(a.pending, '\n')
		if idx < 0 {
			break
		}
		a.emit(a.pending[:idx])
		a.pending = a.pending[idx+1:]
	}
	return len(p), nil
}

// Flush emits a trailing line that had no terminating newline.
func (a *LineAssembler) Flush() {
	if len(a.pending) > 0 {
		a.emit(a.pending)
	}
	a.pending = nil
}

// Lines returns every line emitted so far.
func (a *LineAssembler) Lines() []string {
	out := make([]string, len(a.lines))
	copy(out, a.lines)
	return out
}

func (a *LineAssembler) emit(raw []byte) {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	line := strings.ToValidUTF8(string(raw), "\uFFFD")
	a.lines = append(a.lines, line)
	if a.onLine != nil {
		a.onLine(line)
	}
}
