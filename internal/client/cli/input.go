package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// maxPromptAttempts bounds how often a required value is asked for.
const maxPromptAttempts = 3

// ErrNoInput is returned when a required prompt is answered empty too often.
var ErrNoInput = errors.New("no input given")

// GetSimpleText writes prompt followed by a "> " marker line and reads one
// line from reader. Surrounding whitespace is trimmed. A final line without
// a newline is still returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetRequiredText is GetSimpleText that asks again on an empty answer.
func GetRequiredText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	for range maxPromptAttempts {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
		fmt.Fprintln(w, "A value is required")
	}
	return "", ErrNoInput
}

// GetCode reads a verification code. Codes are often copied in groups
// ("123 456", "123-456"), so blanks and dashes are dropped.
func GetCode(reader *bufio.Reader, w io.Writer) (string, error) {
	s, err := GetRequiredText(reader, "Enter verification code", w)
	if err != nil {
		return "", err
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return r
	}, s), nil
}

// GetPassword reads a password without echo when stdin is a terminal. When
// input is piped the next line of reader is used instead.
//
// The caller should wipe the returned slice once it is no longer needed.
func GetPassword(reader *bufio.Reader, w io.Writer) ([]byte, error) {
	fd := stdinFd()
	if !isTerminal(fd) {
		s, err := GetRequiredText(reader, "Enter password", w)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, ErrNoInput
	}
	return pw, nil
}
