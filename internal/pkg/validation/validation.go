package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Registry numbers are plain digits; an "MC"/"DOT" label is tolerated.
var registryRe = regexp.MustCompile(`^(?i)(?:(?:mc|dot)[\s-]*)?([0-9]{1,12})$`)

// ParseRegistryNumber accepts "123", "MC 123" or "mc-123" and returns 123.
func ParseRegistryNumber(s string) (int64, bool) {
	m := registryRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsValidAmount reports whether d is a positive amount with at most two decimal places.
func IsValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(2))
}

// ParseBoundedInt parses s as an int in [min, max]. Empty s yields def.
func ParseBoundedInt(s string, def, min, max int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}
