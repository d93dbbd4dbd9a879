package client

import (
	"math"
	"strconv"
	"strings"
)

// ParseWeek reads the leading integer of the week input. It returns nil when
// the trimmed input does not start with digits, meaning "current week".
// No range check is made; values beyond int are clamped.
func ParseWeek(raw string) *int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// ErrRange still yields the saturated value.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return nil
		}
	}
	if n > math.MaxInt {
		n = math.MaxInt
	} else if n < math.MinInt {
		n = math.MinInt
	}
	week := int(n)
	return &week
}
