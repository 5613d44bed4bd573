package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DefaultForecastDays is the forecast length used when a caller does not ask for one.
const DefaultForecastDays = 7

// dayBucket holds every sample observed on one calendar date, in input order.
type dayBucket struct {
	date       time.Time
	temps      []float64
	conditions []string
}

// dayStat is the representative value of a bucket.
type dayStat struct {
	temperature int
	condition   string
}

// stat computes the rounded mean temperature and the modal condition.
// Ties on the mode go to the label encountered first.
func (b *dayBucket) stat() dayStat {
	var sum float64
	for _, t := range b.temps {
		sum += t
	}
	mean := sum / float64(len(b.temps))

	counts := make(map[string]int, len(b.conditions))
	best, bestCount := "", 0
	for _, c := range b.conditions {
		counts[c]++
	}
	for _, c := range b.conditions {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}

	return dayStat{
		temperature: int(math.RoundToEven(mean)),
		condition:   best,
	}
}

// dayBuckets is an insertion-ordered map from date key to bucket.
type dayBuckets struct {
	order []string
	byKey map[string]*dayBucket
}

func groupByDay(samples []Observation, loc *time.Location) *dayBuckets {
	g := &dayBuckets{byKey: make(map[string]*dayBucket)}
	for _, s := range samples {
		ts := s.Time.In(loc)
		key := ts.Format(dateLayout)

		b, ok := g.byKey[key]
		if !ok {
			b = &dayBucket{date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)}
			g.byKey[key] = b
			g.order = append(g.order, key)
		}
		b.temps = append(b.temps, s.TemperatureC)
		b.conditions = append(b.conditions, s.Condition)
	}
	return g
}

func (g *dayBuckets) last() *dayBucket {
	if len(g.order) == 0 {
		return nil
	}
	return g.byKey[g.order[len(g.order)-1]]
}

// AggregateDailyForecast collapses samples into one entry per calendar day,
// starting at ref's date and covering days consecutive days. Dates are taken
// in ref's time zone. Days the samples do not cover reuse the statistic of
// the last day that is covered.
func AggregateDailyForecast(samples []Observation, days int, ref time.Time) ([]ForecastEntry, error) {
	if days <= 0 {
		return nil, ErrInvalidDays
	}
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	loc := ref.Location()
	buckets := groupByDay(samples, loc)
	fallback := buckets.last().stat()

	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	entries := make([]ForecastEntry, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)

		st := fallback
		if b, ok := buckets.byKey[day.Format(dateLayout)]; ok {
			st = b.stat()
		}

		entries = append(entries, ForecastEntry{
			Date:        day.Format(dateLayout),
			Weekday:     day.Weekday().String(),
			Temperature: st.temperature,
			Condition:   st.condition,
		})
	}
	return entries, nil
}

// BuildWeatherSummary renders the text block handed to the advice model.
func BuildWeatherSummary(entries []ForecastEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrEmptyInput
	}

	minT, maxT := entries[0].Temperature, entries[0].Temperature
	sum := 0
	seen := make(map[string]struct{})
	var conditions []string
	for _, e := range entries {
		if e.Temperature < minT {
			minT = e.Temperature
		}
		if e.Temperature > maxT {
			maxT = e.Temperature
		}
		sum += e.Temperature
		if _, ok := seen[e.Condition]; !ok {
			seen[e.Condition] = struct{}{}
			conditions = append(conditions, e.Condition)
		}
	}
	avg := float64(sum) / float64(len(entries))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Forecast period: %s to %s\n", entries[0].Date, entries[len(entries)-1].Date)
	fmt.Fprintf(&sb, "Temperature range: %d°C to %d°C\n", minT, maxT)
	fmt.Fprintf(&sb, "Average temperature: %.1f°C\n", avg)
	fmt.Fprintf(&sb, "Conditions: %s", strings.Join(conditions, ", "))
	return sb.String(), nil
}

// BuildForecastResult aggregates samples and summarises them, reporting any
// failure in the result's Error field.
func BuildForecastResult(samples []Observation, days int, ref time.Time) ForecastResult {
	entries, err := AggregateDailyForecast(samples, days, ref)
	if err != nil {
		return failedResult(err)
	}
	summary, err := BuildWeatherSummary(entries)
	if err != nil {
		return failedResult(err)
	}
	return ForecastResult{Forecast: entries, WeatherSummary: summary}
}
