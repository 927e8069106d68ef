package insights

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeCount coerces a loosely typed count ("1,234 views", 1234, nil) into a
// non-negative integer. Every non-digit character is dropped; anything left
// unparseable yields 0.
func NormalizeCount(raw any) int64 {
	var text string
	switch v := raw.(type) {
	case nil:
		return 0
	case string:
		text = v
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		text = strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		text = fmt.Sprint(v)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// fold case-folds s. Casers are stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeKeyword trims and case-folds a keyword so that variants collapse to one key
func NormalizeKeyword(s string) string {
	return fold(strings.Join(strings.Fields(s), " "))
}

// containsFoldNeedle reports whether an already folded needle occurs in haystack ignoring case
func containsFoldNeedle(haystack, foldedNeedle string) bool {
	return strings.Contains(fold(haystack), foldedNeedle)
}
