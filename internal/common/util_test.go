package common

import (
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_WrapAndMatch(t *testing.T) {
	err := fmt.Errorf("accounts upsert: %w", ErrStorageFailure)
	if !errors.Is(err, ErrStorageFailure) {
		t.Fatalf("wrapped sentinel must match")
	}
	if errors.Is(err, ErrorNotFound) {
		t.Fatalf("distinct sentinels must not match")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in     string
		n      int
		suffix string
		want   string
	}{
		{"short", 10, "...", "short"},
		{"exactly", 7, "...", "exactly"},
		{"abcdef", 3, "...", "abc..."},
		{"héllo wörld", 4, "…", "héll…"},
		{"日本語テキスト", 3, "", "日本語"},
		{"anything", 0, "", ""},
	}
	for _, tt := range tests {
		got := TruncateRunes(tt.in, tt.n, tt.suffix)
		if got != tt.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("TruncateRunes(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}

func TestTailRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 2, "ef"},
		{"naïve café", 4, "café"},
		{"日本語", 0, ""},
	}
	for _, tt := range tests {
		got := TailRunes(tt.in, tt.n)
		if got != tt.want {
			t.Fatalf("TailRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("TailRunes(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}
