package playback

import (
	"errors"
	"strconv"

	"github.com/samber/lo"
)

// DefaultRate is normal speed
const DefaultRate = 1.0

// Rates is the fixed, ordered set of playback rates the settings menu offers
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// ErrUnsupportedRate is returned for a rate outside Rates
var ErrUnsupportedRate = errors.New("unsupported playback rate")

// ValidRate reports whether rate is one of Rates
func ValidRate(rate float64) bool {
	return lo.Contains(Rates, rate)
}

// NextRate moves steps entries along Rates from current, saturating at both ends.  A current rate between two entries
// (set outside the engine) steps to its neighbours, so 1.3 goes up to 1.5 and down to 1.25.
func NextRate(current float64, steps int) float64 {
	idx := lo.IndexOf(Rates, current)
	if idx < 0 {
		_, above, found := lo.FindIndexOf(Rates, func(rate float64) bool { return rate > current })
		if !found {
			above = len(Rates)
		}
		idx = above
		if steps > 0 {
			steps--
		}
	}
	return Rates[lo.Clamp(idx+steps, 0, len(Rates)-1)]
}

// FormatRate renders a rate the way the settings menu lists it, e.g. "1.25x"
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64) + "x"
}
