package common

import "unicode/utf8"

// WipeByteArray overwrites b with zeros. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// TruncateRunes returns the first n runes of s, followed by suffix when
// anything was cut.
func TruncateRunes(s string, n int, suffix string) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + suffix
		}
		i++
	}
	return s
}

// TailRunes returns the last n runes of s.
func TailRunes(s string, n int) string {
	if n < 0 {
		n = 0
	}
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	skip := count - n
	for pos := range s {
		if skip == 0 {
			return s[pos:]
		}
		skip--
	}
	return ""
}
