package sim

import (
	"fmt"
	"regexp"
	"strconv"

	"btc-journal-lab/internal/domain"
)

// triggerPattern matches the operator and level inside trigger text such as
// "15m close >= 87362.71". Anything before the operator is ignored.
var triggerPattern = regexp.MustCompile(`(>=|<=)\s*([0-9]+(?:\.[0-9]+)?)`)

// ParseTrigger extracts the comparison operator and threshold level from a
// trigger condition string.
func ParseTrigger(text string) (domain.TriggerOp, float64, error) {
	m := triggerPattern.FindStringSubmatch(text)
	if m == nil {
		return "", 0, fmt.Errorf("parse trigger %q: %w", text, ErrMalformedTrigger)
	}

	level, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		// Unreachable given the pattern, but never fabricate a level.
		return "", 0, fmt.Errorf("parse trigger level %q: %w", m[2], ErrMalformedTrigger)
	}

	return domain.TriggerOp(m[1]), level, nil
}
