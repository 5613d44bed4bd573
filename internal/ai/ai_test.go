package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Use drip irrigation.\n"}}]}`))
	}))
	defer srv.Close()

	c := NewGroqClient(srv.Client(), GroqConfig{APIKey: "gsk", BaseURL: srv.URL + "/", TextModel: "llama"}, nil)
	out, err := c.Complete(context.Background(), "how to water rice?", Options{Temperature: 0.7, MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "Use drip irrigation.", out)

	assert.Equal(t, "llama", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "how to water rice?", got.Messages[0].Content)
}

func TestGroqCompleteWithImage(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Wheat"}}]}`))
	}))
	defer srv.Close()

	c := NewGroqClient(srv.Client(), GroqConfig{APIKey: "gsk", BaseURL: srv.URL, VisionModel: "vision"}, nil)
	out, err := c.CompleteWithImage(context.Background(), "what crop?", []byte{0x89, 'P', 'N', 'G'}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Wheat", out)

	assert.Equal(t, "vision", raw["model"])
	msgs := raw["messages"].([]interface{})
	parts := msgs[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, parts, 2)
	img := parts[1].(map[string]interface{})["image_url"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(img["url"].(string), "data:image/png;base64,"))
}

func TestGroqEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewGroqClient(srv.Client(), GroqConfig{APIKey: "gsk", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), "hi", Options{})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGroqRequiresKey(t *testing.T) {
	c := NewGroqClient(http.DefaultClient, GroqConfig{}, nil)
	_, err := c.Complete(context.Background(), "hi", Options{})
	assert.Error(t, err)
}

func TestGeminiComplete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "gkey", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"PM-KISAN "},{"text":"pays farmers."}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.Client(), GeminiConfig{APIKey: "gkey", BaseURL: srv.URL, Model: "gemini-pro"}, nil)
	out, err := c.Complete(context.Background(), "schemes in Punjab", Options{Temperature: 0.2, TopP: 0.8, TopK: 40})
	require.NoError(t, err)
	assert.Equal(t, "PM-KISAN pays farmers.", out)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "schemes in Punjab", got.Contents[0].Parts[0].Text)
	assert.Equal(t, 40, got.GenerationConfig.TopK)
	assert.Equal(t, 0.8, got.GenerationConfig.TopP)
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.Client(), GeminiConfig{APIKey: "gkey", BaseURL: srv.URL, Model: "m"}, nil)
	_, err := c.Complete(context.Background(), "hi", Options{})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGeminiUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.Client(), GeminiConfig{APIKey: "bad", BaseURL: srv.URL, Model: "m"}, nil)
	_, err := c.Complete(context.Background(), "hi", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))

	l := NewLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}
