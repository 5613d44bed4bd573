// Package advisor turns farmer questions, form fields and photos into model
// prompts and shapes the answers into advice documents.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/agri-advisor/internal/ai"
	"github.com/i474232898/agri-advisor/internal/weather"
)

// TextModel generates text from a prompt.
type TextModel interface {
	Complete(ctx context.Context, prompt string, opts ai.Options) (string, error)
}

// VisionModel answers a prompt about a PNG image.
type VisionModel interface {
	CompleteWithImage(ctx context.Context, prompt string, png []byte, opts ai.Options) (string, error)
}

// Forecaster supplies aggregated daily forecasts.
type Forecaster interface {
	Forecast(ctx context.Context, loc weather.Location, days int) weather.ForecastResult
}

var (
	shortAdvice  = ai.Options{Temperature: 0.7, MaxTokens: 500}
	longAdvice   = ai.Options{Temperature: 0.7, MaxTokens: 800}
	identifyCrop = ai.Options{Temperature: 0.7, MaxTokens: 100}
	schemeConfig = ai.Options{Temperature: 0.2, TopP: 0.8, TopK: 40}
)

// CropAnalysis is the result of identifying a crop photo.
type CropAnalysis struct {
	CropIdentified    string `json:"crop_identified"`
	SustainableAdvice string `json:"sustainable_advice"`
}

// WeatherAdvice bundles the forecast a piece of advice was based on.
type WeatherAdvice struct {
	Forecast       []weather.ForecastEntry `json:"forecast"`
	WeatherSummary string                  `json:"weather_summary"`
	Advice         string                  `json:"advice"`
}

type Service struct {
	text         TextModel
	vision       VisionModel
	schemes      TextModel
	forecaster   Forecaster
	forecastDays int
	logger       *zap.SugaredLogger
}

type Config struct {
	Text       TextModel
	Vision     VisionModel
	Schemes    TextModel
	Forecaster Forecaster
	// ForecastDays is the horizon used for weather advice.
	ForecastDays int
	Logger       *zap.SugaredLogger
}

// New creates a Service. Schemes falls back to Text when not set.
func New(cfg Config) *Service {
	s := &Service{
		text:         cfg.Text,
		vision:       cfg.Vision,
		schemes:      cfg.Schemes,
		forecaster:   cfg.Forecaster,
		forecastDays: cfg.ForecastDays,
		logger:       cfg.Logger,
	}
	if s.schemes == nil {
		s.schemes = s.text
	}
	if s.forecastDays <= 0 {
		s.forecastDays = weather.DefaultForecastDays
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	return s
}

func (s *Service) AgricultureAdvice(ctx context.Context, question string) (string, error) {
	return s.complete(ctx, "agriculture advice", agriculturePrompt(question), longAdvice)
}

func (s *Service) WaterAdvice(ctx context.Context, crop, soil string) (string, error) {
	return s.complete(ctx, "water advice", waterPrompt(crop, soil), shortAdvice)
}

func (s *Service) BioFertilizerAdvice(ctx context.Context, crop, soil, stage string) (string, error) {
	return s.complete(ctx, "bio-fertilizer advice", bioFertilizerPrompt(crop, soil, stage), shortAdvice)
}

// SchemeInformation asks the scheme model and prefixes the disclaimer.
func (s *Service) SchemeInformation(ctx context.Context, state, category string) (string, error) {
	answer, err := s.schemes.Complete(ctx, schemePrompt(state, category), schemeConfig)
	if err != nil {
		s.logger.Errorw("scheme information failed", "state", state, "category", category, "error", err)
		return "", fmt.Errorf("error getting scheme information: %w", err)
	}
	return SchemeDisclaimer + answer, nil
}

// AnalyzeCrop identifies the crop in the photo, then asks for sustainable
// farming advice for it.
func (s *Service) AnalyzeCrop(ctx context.Context, upload []byte) (CropAnalysis, error) {
	img, err := NormalizeImage(upload)
	if err != nil {
		return CropAnalysis{}, err
	}

	crop, err := s.vision.CompleteWithImage(ctx, identifyCropPrompt, img, identifyCrop)
	if err != nil {
		s.logger.Errorw("crop identification failed", "error", err)
		return CropAnalysis{}, fmt.Errorf("error analyzing image: %w", err)
	}
	crop = strings.Trim(strings.TrimSpace(crop), ".")

	advice, err := s.complete(ctx, "sustainable advice", sustainableCropPrompt(crop), longAdvice)
	if err != nil {
		return CropAnalysis{}, err
	}
	return CropAnalysis{CropIdentified: crop, SustainableAdvice: advice}, nil
}

func (s *Service) DiagnoseDisease(ctx context.Context, upload []byte) (string, error) {
	img, err := NormalizeImage(upload)
	if err != nil {
		return "", err
	}

	diagnosis, err := s.vision.CompleteWithImage(ctx, diseasePrompt, img, longAdvice)
	if err != nil {
		s.logger.Errorw("disease analysis failed", "error", err)
		return "", fmt.Errorf("error analyzing plant disease: %w", err)
	}
	return diagnosis, nil
}

// WeatherAdvice aggregates the forecast for loc and feeds its summary to the
// text model.
func (s *Service) WeatherAdvice(ctx context.Context, loc weather.Location, crop string) (WeatherAdvice, error) {
	result := s.forecaster.Forecast(ctx, loc, s.forecastDays)
	if result.Failed() {
		if err := result.Err(); err != nil {
			return WeatherAdvice{}, err
		}
		return WeatherAdvice{}, fmt.Errorf("%s", result.Error)
	}

	advice, err := s.complete(ctx, "weather advice", weatherAdvicePrompt(loc.City, crop, result.WeatherSummary), longAdvice)
	if err != nil {
		return WeatherAdvice{}, err
	}
	return WeatherAdvice{
		Forecast:       result.Forecast,
		WeatherSummary: result.WeatherSummary,
		Advice:         advice,
	}, nil
}

func (s *Service) complete(ctx context.Context, what, prompt string, opts ai.Options) (string, error) {
	answer, err := s.text.Complete(ctx, prompt, opts)
	if err != nil {
		s.logger.Errorw("text generation failed", "action", what, "error", err)
		return "", fmt.Errorf("error getting %s: %w", what, err)
	}
	return answer, nil
}
