package analytics

import (
	"fmt"
	"time"

	"proplead/models"
)

// Sales time series ranges
const (
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

// SalesSeries is the bucketed sales output for one lister. Buckets are
// ordered oldest to newest; nothing here is persisted.
type SalesSeries struct {
	Labels  []string  `json:"labels"`
	Counts  []int     `json:"counts"`
	Revenue []float64 `json:"revenue"`
}

// SalePeriodBucket is one bucket of the series.
type SalePeriodBucket struct {
	Label   string
	Start   time.Time
	End     time.Time // exclusive
	Count   int
	Revenue float64
}

// BucketSales groups raw sale records into week/month/year buckets relative
// to now. Each sale lands in exactly one bucket; sales dated outside all
// buckets are dropped, they are outside the requested window by construction.
func BucketSales(sales []models.Sale, rng string, now time.Time) (SalesSeries, error) {
	buckets, err := periodBuckets(rng, now)
	if err != nil {
		return SalesSeries{}, err
	}

	for _, s := range sales {
		for i := range buckets {
			if !s.SaleDate.Before(buckets[i].Start) && s.SaleDate.Before(buckets[i].End) {
				buckets[i].Count++
				buckets[i].Revenue += s.SalePrice
				break
			}
		}
	}

	series := SalesSeries{
		Labels:  make([]string, len(buckets)),
		Counts:  make([]int, len(buckets)),
		Revenue: make([]float64, len(buckets)),
	}
	for i := range buckets {
		series.Labels[i] = buckets[i].Label
		series.Counts[i] = buckets[i].Count
		series.Revenue[i] = buckets[i].Revenue
	}
	return series, nil
}

// WindowStart is the start of the earliest bucket for a range, so callers can
// limit how far back they fetch sale records.
func WindowStart(rng string, now time.Time) (time.Time, error) {
	buckets, err := periodBuckets(rng, now)
	if err != nil {
		return time.Time{}, err
	}
	return buckets[0].Start, nil
}

func periodBuckets(rng string, now time.Time) ([]SalePeriodBucket, error) {
	today := startOfDay(now)

	switch rng {
	case RangeWeek:
		// Last 7 calendar days, one bucket per day, labeled by weekday name.
		buckets := make([]SalePeriodBucket, 7)
		for i := 0; i < 7; i++ {
			day := today.AddDate(0, 0, i-6)
			buckets[i] = SalePeriodBucket{
				Label: day.Weekday().String(),
				Start: day,
				End:   day.AddDate(0, 0, 1),
			}
		}
		return buckets, nil

	case RangeMonth:
		// Last 4 weeks, one bucket per week.
		windowStart := today.AddDate(0, 0, -27)
		buckets := make([]SalePeriodBucket, 4)
		for i := 0; i < 4; i++ {
			start := windowStart.AddDate(0, 0, i*7)
			buckets[i] = SalePeriodBucket{
				Label: fmt.Sprintf("Week %d", i+1),
				Start: start,
				End:   start.AddDate(0, 0, 7),
			}
		}
		return buckets, nil

	case RangeYear:
		// Last 12 calendar months, labeled by month abbreviation.
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		buckets := make([]SalePeriodBucket, 12)
		for i := 0; i < 12; i++ {
			start := firstOfMonth.AddDate(0, i-11, 0)
			buckets[i] = SalePeriodBucket{
				Label: start.Format("Jan"),
				Start: start,
				End:   start.AddDate(0, 1, 0),
			}
		}
		return buckets, nil
	}

	return nil, fmt.Errorf("invalid range %q: must be week, month or year", rng)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
