package jobs

import (
	"fmt"
	"sync"
	"unicode/utf8"
)

// maxOutputBytes is how much of each output stream a run keeps.
const maxOutputBytes = 64 << 10

// tailBuffer is an io.Writer that keeps only the last limit bytes written.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	buf     []byte
	dropped int64
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(p)
	if len(p) >= t.limit {
		t.dropped += int64(len(t.buf) + len(p) - t.limit)
		t.buf = append(t.buf[:0], p[len(p)-t.limit:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	// compact once the slack reaches limit so appends stay amortised
	if len(t.buf) >= 2*t.limit {
		over := len(t.buf) - t.limit
		t.dropped += int64(over)
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return n, nil
}

// Bytes returns the kept tail. A cut inside a multi-byte character is
// skipped, and a dropped prefix is noted on the first line.
func (t *tailBuffer) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	b := t.buf
	dropped := t.dropped
	if len(b) > t.limit {
		dropped += int64(len(b) - t.limit)
		b = b[len(b)-t.limit:]
	}
	if dropped == 0 {
		return append([]byte(nil), b...)
	}
	for i := 0; i < utf8.UTFMax && len(b) > 0 && !utf8.RuneStart(b[0]); i++ {
		b = b[1:]
		dropped++
	}
	out := fmt.Appendf(nil, "[%d earlier bytes dropped]\n", dropped)
	return append(out, b...)
}

func (t *tailBuffer) String() string {
	return string(t.Bytes())
}
