package companies

import (
	"strconv"
	"strings"
)

// NormalizeQuery extracts a registry number from an autocomplete query.
// "MC-00456", "mc 456" and "456000" all give 456: an "mc"/"mc-" prefix is dropped and
// trailing zeros are stripped because the source registry pads some numbers with them.
// ok is false when what remains is not a positive integer.
func NormalizeQuery(raw string) (number int64, ok bool) {
	q := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(q, "mc-"):
		q = q[3:]
	case strings.HasPrefix(q, "mc"):
		q = q[2:]
	}
	q = strings.TrimRight(strings.TrimSpace(q), "0")
	if q == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(q, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
