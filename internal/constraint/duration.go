package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// durationPattern matches duration strings: a positive integer followed
// by a single unit letter (seconds, minutes, hours, days, weeks).
var durationPattern = regexp.MustCompile(`^(\d+)([smhdw])$`)

var durationMultipliers = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 604800,
}

// MalformedDurationError reports a duration string that does not match
// the unit grammar. Raised at parse/construction time, never during
// evaluation.
type MalformedDurationError struct {
	Input string
}

func (e *MalformedDurationError) Error() string {
	return fmt.Sprintf("invalid duration format: %q (use forms like 24h, 30m, 7d)", e.Input)
}

// ParseDuration converts a duration string to integer seconds.
// ParseDuration("24h") == 86400. Input is trimmed and lowercased first.
func ParseDuration(duration string) (int64, error) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(duration)))
	if m == nil {
		return 0, &MalformedDurationError{Input: duration}
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits that overflow int64 still count as malformed
		return 0, &MalformedDurationError{Input: duration}
	}
	return n * durationMultipliers[m[2]], nil
}
