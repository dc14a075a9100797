package provider

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/dmitrijs2005/shelfsync/internal/common"
)

// indicator is one row of the free-text classification table.
type indicator struct {
	text string
	// fold enables case-insensitive matching; acronyms stay exact so that
	// e.g. "otp" inside an unrelated word does not trigger a challenge.
	fold bool
}

// challengeIndicators are substrings in provider error text that mean the
// provider expects an interactive verification code. The provider library
// reports "EOF when reading a line" when it tried to prompt for one.
var challengeIndicators = []indicator{
	{text: "OTP"},
	{text: "CVF"},
	{text: "captcha", fold: true},
	{text: "EOF when reading a line", fold: true},
	{text: "two-factor", fold: true},
	{text: "verification code", fold: true},
	{text: "authentication code", fold: true},
}

const maxMessageLength = 200

// Classify maps a provider login error onto the error taxonomy. It returns
// one of common.ErrChallengeRequired, common.ErrInvalidCredentials,
// common.ErrProviderUnavailable or common.ErrAuthFailed; anything it does not
// recognise is a plain authentication failure, never a success.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var perr *Error
	if errors.As(err, &perr) {
		switch perr.Kind {
		case KindChallenge:
			return common.ErrChallengeRequired
		case KindInvalidCredentials:
			return common.ErrInvalidCredentials
		case KindUnavailable:
			return common.ErrProviderUnavailable
		}
	}

	if matchesAny(err.Error(), challengeIndicators) {
		return common.ErrChallengeRequired
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return common.ErrProviderUnavailable
	}

	return common.ErrAuthFailed
}

func matchesAny(msg string, table []indicator) bool {
	lower := strings.ToLower(msg)
	for _, ind := range table {
		if ind.fold {
			if strings.Contains(lower, strings.ToLower(ind.text)) {
				return true
			}
			continue
		}
		if strings.Contains(msg, ind.text) {
			return true
		}
	}
	return false
}

// Sanitize turns a provider error into a single-line message safe to show
// to the user: secrets are masked, only the first line is kept and the
// result is truncated.
func Sanitize(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, "***")
		}
	}
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimSpace(msg)
	return common.TruncateRunes(msg, maxMessageLength, "…")
}
