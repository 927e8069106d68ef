package insights

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ISO 8601 duration as emitted by YouTube (e.g. "PT1M30S", "PT45S", "P1DT2H")
var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// DecodeDuration converts a duration token into total seconds. Malformed input, including
// a token whose total does not fit in an int, decodes to 0.
func DecodeDuration(code string) int {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0
	}

	matches := durationPattern.FindStringSubmatch(code)
	if matches == nil {
		return 0
	}

	units := []int{86400, 3600, 60, 1}
	var total int
	for i, unit := range units {
		if matches[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(matches[i+1])
		if err != nil || n > (math.MaxInt-total)/unit {
			return 0
		}
		total += n * unit
	}

	return total
}

// FormatDuration renders seconds as MM:SS. Minutes are not wrapped at the hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
