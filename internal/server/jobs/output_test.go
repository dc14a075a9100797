package jobs

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTailBuffer(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{"under limit", 10, []string{"abc", "def"}, "abcdef"},
		{"exactly at limit", 6, []string{"abc", "def"}, "abcdef"},
		{"small writes overflow", 4, []string{"ab", "cd", "ef", "gh", "ij"}, "[6 earlier bytes dropped]\nghij"},
		{"one large write", 3, []string{"0123456789"}, "[7 earlier bytes dropped]\n789"},
		{"large write after data", 3, []string{"ab", "cdef"}, "[3 earlier bytes dropped]\ndef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTailBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := b.Write([]byte(w))
				assert.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestTailBuffer_CutsAtRuneStart(t *testing.T) {
	b := newTailBuffer(5)
	_, _ = b.Write([]byte("ab日本"))

	got := b.String()
	assert.True(t, utf8.ValidString(got), "%q", got)
	assert.Equal(t, "[5 earlier bytes dropped]\n本", got)
}

func TestTailBuffer_StaysBounded(t *testing.T) {
	b := newTailBuffer(1024)
	chunk := []byte(strings.Repeat("x", 100))
	for range 10_000 {
		_, _ = b.Write(chunk)
	}
	assert.LessOrEqual(t, cap(b.buf), 4*1024)
	assert.Contains(t, b.String(), "[998976 earlier bytes dropped]")
}
