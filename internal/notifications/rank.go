package notifications

import (
	"math"
	"sort"
	"time"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/subscriber"
)

const (
	minPercentile = 1.0
	maxPercentile = 100.0
)

// Ranker computes percentile ranks against one run's population. Population
// day counts use UTC dates; the subscriber's own count is passed in by the
// caller.
type Ranker struct {
	days []int // sorted ascending
}

// NewRanker precomputes the UTC day counts of the population.
func NewRanker(population []subscriber.Subscriber, runInstant time.Time) *Ranker {
	days := make([]int, 0, len(population))
	for _, sub := range population {
		days = append(days, UTCDays(sub, runInstant))
	}
	sort.Ints(days)
	return &Ranker{days: days}
}

// UTCDays is the number of UTC calendar days from the subscriber's
// registration to runInstant. Missing or unparseable dates count as 0, as do
// registrations after the run.
func UTCDays(sub subscriber.Subscriber, runInstant time.Time) int {
	reg, ok := sub.RegistrationInstant()
	if !ok {
		return 0
	}
	return max(0, DayNumber(reg, runInstant, time.UTC))
}

// Size is the population size.
func (r *Ranker) Size() int { return len(r.days) }

// Percentile returns round((1 - k/N) * 100, 1) clamped to [1, 100], where k
// is the number of members with strictly fewer days.
func (r *Ranker) Percentile(days int) float64 {
	n := len(r.days)
	if n == 0 {
		return maxPercentile
	}
	k := sort.SearchInts(r.days, days)
	p := math.Round((1-float64(k)/float64(n))*1000) / 10
	return math.Min(maxPercentile, math.Max(minPercentile, p))
}
