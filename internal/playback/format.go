package playback

import (
	"fmt"
	"math"
	"time"
)

// SecondsHuman formats seconds as M:SS, truncating fractions.
// Negative, NaN and infinite inputs format as 0:00; huge values saturate.
func SecondsHuman(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int64(min(seconds, math.MaxInt32))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// DurationHuman formats d as M:SS.
func DurationHuman(d time.Duration) string {
	return SecondsHuman(d.Seconds())
}
