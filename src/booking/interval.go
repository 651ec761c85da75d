package booking

import (
	"math"
	"time"
)

// Interval is a half-open time range [Start, End). The start instant belongs
// to the interval, the end instant does not, so back-to-back stays on the
// same property never collide.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open ranges share any instant.
// Equal boundaries (one range ending exactly where the other starts) do not
// count as overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Days is the stay length in whole days, rounding any partial day up.
func (iv Interval) Days() int {
	return int(math.Ceil(iv.End.Sub(iv.Start).Hours() / 24))
}

// Started reports whether the stay has begun at the given instant.
func (iv Interval) Started(now time.Time) bool {
	return !iv.Start.After(now)
}

// Ended reports whether the stay is over at the given instant.
func (iv Interval) Ended(now time.Time) bool {
	return !iv.End.After(now)
}
