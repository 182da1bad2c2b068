package provider

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

var (
	// ErrCircuitOpen is returned without a network call while the breaker is
	// open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrEmptyPayload is returned when an endpoint answered with an empty or
	// null body where data is required.
	ErrEmptyPayload = errors.New("empty payload")
)

const previewLimit = 240

// FetchError describes a failed fetch. Preview holds the start of the
// offending payload when one was received.
type FetchError struct {
	Op      string
	Target  string
	Cause   error
	Preview string
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Target != "" {
		b.WriteByte(' ')
		b.WriteString(e.Target)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Preview != "" {
		b.WriteString(" (payload: ")
		b.WriteString(e.Preview)
		b.WriteByte(')')
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Cause }

func fetchErr(op, target string, cause error, body []byte) *FetchError {
	return &FetchError{Op: op, Target: target, Cause: cause, Preview: abbreviateBody(body)}
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= previewLimit {
		return text
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
