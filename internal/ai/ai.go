// Package ai holds thin clients for the hosted language and vision models.
package ai

import (
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/i474232898/agri-advisor/internal/common"
)

// ErrEmptyCompletion is returned when a model answers without any text.
var ErrEmptyCompletion = errors.New("model returned no content")

// Options tunes a single generation call. Zero values are omitted from the request.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
	TopK        int
}

func newHTTPConfig(client *http.Client, limiter *rate.Limiter) common.HTTPClientConfig {
	return common.HTTPClientConfig{
		Client:  client,
		Backoff: common.DefaultBackoff,
		Limiter: limiter,
	}
}

// NewLimiter returns a limiter allowing rps requests per second, or nil when rps <= 0.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
