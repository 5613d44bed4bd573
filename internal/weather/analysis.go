package weather

import (
	"math"
	"sort"
	"time"

	"github.com/i474232898/agri-advisor/internal/common"
)

// analysisWindow is the span of forecast the conditions report looks at.
const analysisWindow = 24 * time.Hour

// highHumidityPct is the threshold above which a sample counts as humid.
const highHumidityPct = 70

const sampleTimeLayout = "2006-01-02 15:04:05"

type TemperaturePoint struct {
	Time string  `json:"time"`
	Temp float64 `json:"temp"`
}

type HumidityPoint struct {
	Time     string  `json:"time"`
	Humidity float64 `json:"humidity"`
}

type ConditionPoint struct {
	Time      string `json:"time"`
	Condition string `json:"condition"`
}

type TemperatureData struct {
	Current  float64            `json:"current"`
	Forecast []TemperaturePoint `json:"forecast"`
	Max      float64            `json:"max"`
	Min      float64            `json:"min"`
	Avg      float64            `json:"avg"`
	Trend    string             `json:"trend"`
}

type HumidityData struct {
	Current           float64         `json:"current"`
	Forecast          []HumidityPoint `json:"forecast"`
	HighHumidityHours int             `json:"high_humidity_hours"`
	Trend             string          `json:"trend"`
}

type WeatherConditions struct {
	Current                  string           `json:"current"`
	Forecast                 []ConditionPoint `json:"forecast"`
	PrecipitationProbability float64          `json:"precipitation_probability"`
}

type WaterManagement struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Conditions  string  `json:"conditions"`
}

type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type HistoricalPatterns struct {
	TotalRainfall float64   `json:"total_rainfall"`
	TempRange     TempRange `json:"temp_range"`
	TempTrend     string    `json:"temp_trend"`
}

// ConditionsReport is the 24-hour weather analysis served to the weather page.
type ConditionsReport struct {
	TemperatureData    TemperatureData    `json:"temperature_data"`
	HumidityData       HumidityData       `json:"humidity_data"`
	WeatherConditions  WeatherConditions  `json:"weather_conditions"`
	WaterManagement    WaterManagement    `json:"water_management"`
	HistoricalPatterns HistoricalPatterns `json:"historical_patterns"`
}

// AnalyzeConditions summarises the current reading and the samples falling in
// the 24 hours from now. Hour-based figures are weighted by the spacing between
// samples, so 1-hour and 3-hour providers report alike.
func AnalyzeConditions(current Current, samples []Observation, now time.Time) (ConditionsReport, error) {
	end := now.Add(analysisWindow)
	window := nextDay(samples, now, end)
	if len(window) == 0 {
		return ConditionsReport{}, ErrEmptyInput
	}
	spans := sampleSpans(window, end)

	temps := make([]float64, 0, len(window))
	humidity := make([]float64, 0, len(window))
	var (
		tempSeries     []TemperaturePoint
		humiditySeries []HumidityPoint
		condSeries     []ConditionPoint

		humid, rainy, covered time.Duration
		rainfall              float64
	)
	for i, s := range window {
		ts := s.Time.UTC().Format(sampleTimeLayout)
		temps = append(temps, s.TemperatureC)
		humidity = append(humidity, s.HumidityPct)
		tempSeries = append(tempSeries, TemperaturePoint{Time: ts, Temp: s.TemperatureC})
		humiditySeries = append(humiditySeries, HumidityPoint{Time: ts, Humidity: s.HumidityPct})
		condSeries = append(condSeries, ConditionPoint{Time: ts, Condition: s.Condition})

		covered += spans[i]
		if s.HumidityPct > highHumidityPct {
			humid += spans[i]
		}
		if s.Rainy || s.RainMm > 0 || common.HasAny(s.Condition, "rain", "drizzle", "shower") {
			rainy += spans[i]
		}
		rainfall += s.RainMm
	}

	var precipitation float64
	if covered > 0 {
		precipitation = round1(float64(rainy) / float64(covered) * 100)
	}

	minT, maxT := minMax(temps)
	tempTrend := trend(temps)

	return ConditionsReport{
		TemperatureData: TemperatureData{
			Current:  current.TemperatureC,
			Forecast: tempSeries,
			Max:      maxT,
			Min:      minT,
			Avg:      round1(mean(temps)),
			Trend:    tempTrend,
		},
		HumidityData: HumidityData{
			Current:           current.HumidityPct,
			Forecast:          humiditySeries,
			HighHumidityHours: int(math.Round(humid.Hours())),
			Trend:             trend(humidity),
		},
		WeatherConditions: WeatherConditions{
			Current:                  current.Condition,
			Forecast:                 condSeries,
			PrecipitationProbability: precipitation,
		},
		WaterManagement: WaterManagement{
			Temperature: current.TemperatureC,
			Humidity:    current.HumidityPct,
			WindSpeed:   current.WindSpeedMS,
			Conditions:  current.Condition,
		},
		HistoricalPatterns: HistoricalPatterns{
			TotalRainfall: round1(rainfall),
			TempRange:     TempRange{Min: minT, Max: maxT},
			TempTrend:     tempTrend,
		},
	}, nil
}

// nextDay returns the samples with from <= t < to in chronological order.
func nextDay(samples []Observation, from, to time.Time) []Observation {
	var out []Observation
	for _, s := range samples {
		if !s.Time.Before(from) && s.Time.Before(to) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// sampleSpans gives each sample the time until the next one. The last sample
// repeats the previous step (one hour if it is alone) and is clipped at end.
func sampleSpans(window []Observation, end time.Time) []time.Duration {
	spans := make([]time.Duration, len(window))
	for i, s := range window {
		var next time.Time
		switch {
		case i+1 < len(window):
			next = window[i+1].Time
		case i > 0:
			next = s.Time.Add(s.Time.Sub(window[i-1].Time))
		default:
			next = s.Time.Add(time.Hour)
		}
		if next.After(end) {
			next = end
		}
		spans[i] = next.Sub(s.Time)
	}
	return spans
}

func trend(values []float64) string {
	if values[len(values)-1] > values[0] {
		return "rising"
	}
	return "falling"
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
