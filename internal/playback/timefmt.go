package playback

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned by ParseTime for anything that is not [[h:]m:]s
var ErrInvalidTime = errors.New("invalid time")

// FormatTime renders seconds as m:ss, or h:mm:ss from one hour up.  NaN, infinite and negative values render as 0:00
// so an unknown duration never leaks into the view.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}

	total := int(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseTime is the inverse of FormatTime for user input: "90", "1:30" and "1:01:30" are all accepted.  Fields after the
// first must be below 60.
func ParseTime(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTime)
	}

	parts := strings.Split(input, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, input)
	}

	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, input)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("%w: %q field out of range", ErrInvalidTime, input)
		}
		total = total*60 + n
	}
	return float64(total), nil
}
