package diag

import (
	"fmt"
	"strings"
)

// Severity ranks a diagnostic. Anything at SevError fails the build; the
// lower ranks are reported alongside a successful module.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityWords = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// String is the lowercase word printed in front of a diagnostic code.
func (s Severity) String() string {
	if int(s) < len(severityWords) {
		return severityWords[s]
	}
	return "error"
}

// Fails reports whether a diagnostic of this severity fails the build.
func (s Severity) Fails() bool { return s >= SevError }

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(text []byte) error {
	word := strings.ToLower(string(text))
	for i, w := range severityWords {
		if w == word {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}
