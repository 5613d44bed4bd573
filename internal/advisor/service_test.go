package advisor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/agri-advisor/internal/ai"
	"github.com/i474232898/agri-advisor/internal/weather"
)

type call struct {
	prompt string
	opts   ai.Options
	image  []byte
}

type fakeModel struct {
	answers []string
	err     error
	calls   []call
}

func (m *fakeModel) next() string {
	if len(m.answers) == 0 {
		return ""
	}
	a := m.answers[0]
	m.answers = m.answers[1:]
	return a
}

func (m *fakeModel) Complete(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	m.calls = append(m.calls, call{prompt: prompt, opts: opts})
	if m.err != nil {
		return "", m.err
	}
	return m.next(), nil
}

func (m *fakeModel) CompleteWithImage(ctx context.Context, prompt string, img []byte, opts ai.Options) (string, error) {
	m.calls = append(m.calls, call{prompt: prompt, opts: opts, image: img})
	if m.err != nil {
		return "", m.err
	}
	return m.next(), nil
}

type fakeForecaster struct {
	result weather.ForecastResult
	days   int
	loc    weather.Location
}

func (f *fakeForecaster) Forecast(ctx context.Context, loc weather.Location, days int) weather.ForecastResult {
	f.loc, f.days = loc, days
	return f.result
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAgricultureAdvice(t *testing.T) {
	text := &fakeModel{answers: []string{"# Introduction\nRotate crops."}}
	svc := New(Config{Text: text})

	out, err := svc.AgricultureAdvice(context.Background(), "aphids on mustard")
	require.NoError(t, err)
	assert.Equal(t, "# Introduction\nRotate crops.", out)

	require.Len(t, text.calls, 1)
	assert.Contains(t, text.calls[0].prompt, "aphids on mustard")
	assert.Equal(t, 800, text.calls[0].opts.MaxTokens)
}

func TestWaterAndBioFertilizerAdvice(t *testing.T) {
	text := &fakeModel{answers: []string{"water", "bio"}}
	svc := New(Config{Text: text})

	w, err := svc.WaterAdvice(context.Background(), "rice", "clay")
	require.NoError(t, err)
	assert.Equal(t, "water", w)
	assert.Contains(t, text.calls[0].prompt, "rice crop grown in clay soil")

	b, err := svc.BioFertilizerAdvice(context.Background(), "wheat", "loam", "tillering")
	require.NoError(t, err)
	assert.Equal(t, "bio", b)
	assert.Contains(t, text.calls[1].prompt, "during tillering stage")
	assert.Equal(t, 500, text.calls[1].opts.MaxTokens)
}

func TestTextModelErrorIsWrapped(t *testing.T) {
	cause := errors.New("quota exceeded")
	svc := New(Config{Text: &fakeModel{err: cause}})

	_, err := svc.WaterAdvice(context.Background(), "rice", "clay")
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "error getting water advice")
}

func TestSchemeInformationUsesSchemeModel(t *testing.T) {
	text := &fakeModel{}
	schemes := &fakeModel{answers: []string{"# Government Schemes Overview"}}
	svc := New(Config{Text: text, Schemes: schemes})

	out, err := svc.SchemeInformation(context.Background(), "Punjab", "Crop Insurance")
	require.NoError(t, err)
	assert.Equal(t, SchemeDisclaimer+"# Government Schemes Overview", out)
	assert.Empty(t, text.calls)

	require.Len(t, schemes.calls, 1)
	assert.Contains(t, schemes.calls[0].prompt, "in Punjab state for Crop Insurance")
	assert.Equal(t, 40, schemes.calls[0].opts.TopK)
}

func TestSchemeInformationFallsBackToText(t *testing.T) {
	text := &fakeModel{answers: []string{"answer"}}
	svc := New(Config{Text: text})

	_, err := svc.SchemeInformation(context.Background(), "Kerala", "Loans")
	require.NoError(t, err)
	assert.Len(t, text.calls, 1)
}

func TestAnalyzeCrop(t *testing.T) {
	vision := &fakeModel{answers: []string{" Tomato.\n"}}
	text := &fakeModel{answers: []string{"# Introduction\nTomatoes like sun."}}
	svc := New(Config{Text: text, Vision: vision})

	out, err := svc.AnalyzeCrop(context.Background(), testPNG(t))
	require.NoError(t, err)
	assert.Equal(t, CropAnalysis{CropIdentified: "Tomato", SustainableAdvice: "# Introduction\nTomatoes like sun."}, out)

	require.Len(t, vision.calls, 1)
	assert.Equal(t, identifyCropPrompt, vision.calls[0].prompt)
	assert.NotEmpty(t, vision.calls[0].image)
	assert.Contains(t, text.calls[0].prompt, "sustainable farming advice for Tomato")
}

func TestAnalyzeCropRejectsNonImage(t *testing.T) {
	vision := &fakeModel{}
	svc := New(Config{Text: &fakeModel{}, Vision: vision})

	_, err := svc.AnalyzeCrop(context.Background(), []byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Empty(t, vision.calls)
}

func TestDiagnoseDisease(t *testing.T) {
	vision := &fakeModel{answers: []string{"# Plant Identification\nPotato"}}
	svc := New(Config{Text: &fakeModel{}, Vision: vision})

	out, err := svc.DiagnoseDisease(context.Background(), testPNG(t))
	require.NoError(t, err)
	assert.Equal(t, "# Plant Identification\nPotato", out)
	assert.Equal(t, diseasePrompt, vision.calls[0].prompt)

	vision.err = errors.New("vision down")
	_, err = svc.DiagnoseDisease(context.Background(), testPNG(t))
	assert.ErrorContains(t, err, "error analyzing plant disease")
}

func TestWeatherAdvice(t *testing.T) {
	entries := []weather.ForecastEntry{{Date: "2024-01-01", Weekday: "Monday", Temperature: 12, Condition: "clear"}}
	fc := &fakeForecaster{result: weather.ForecastResult{Forecast: entries, WeatherSummary: "Forecast period: 2024-01-01 to 2024-01-01"}}
	text := &fakeModel{answers: []string{"Irrigate on Monday."}}
	svc := New(Config{Text: text, Forecaster: fc, ForecastDays: 5})

	out, err := svc.WeatherAdvice(context.Background(), weather.Location{City: "Ludhiana"}, "wheat")
	require.NoError(t, err)
	assert.Equal(t, entries, out.Forecast)
	assert.Equal(t, "Irrigate on Monday.", out.Advice)
	assert.Equal(t, 5, fc.days)
	assert.Equal(t, "Ludhiana", fc.loc.City)
	assert.Contains(t, text.calls[0].prompt, "Forecast period: 2024-01-01 to 2024-01-01")
	assert.Contains(t, text.calls[0].prompt, "wheat farmers")
}

func TestWeatherAdviceForecastFailure(t *testing.T) {
	fc := &fakeForecaster{result: weather.ForecastResult{Error: "fetch weather for \"x\": boom"}}
	text := &fakeModel{}
	svc := New(Config{Text: text, Forecaster: fc})

	_, err := svc.WeatherAdvice(context.Background(), weather.Location{City: "x"}, "")
	assert.EqualError(t, err, "fetch weather for \"x\": boom")
	assert.Empty(t, text.calls)
	assert.Equal(t, weather.DefaultForecastDays, fc.days)
}
