package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/raine/listing-wizard/config"
	"github.com/stretchr/testify/assert"
)

func newTestKeyCheckClient(url string) *keyCheckClient {
	return &keyCheckClient{http: resty.New(), openAIURL: url, geminiURL: url}
}

func TestValidateAPIKey_OpenAI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	c := newTestKeyCheckClient(ts.URL)
	assert.NoError(t, validateAPIKey(c, config.ProviderOpenAI, "good-key"))
	assert.EqualError(t, validateAPIKey(c, config.ProviderOpenAI, "bad-key"), "Incorrect API key provided")
}

func TestValidateAPIKey_Gemini(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "good-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[]}`))
	}))
	defer ts.Close()

	c := newTestKeyCheckClient(ts.URL)
	assert.NoError(t, validateAPIKey(c, config.ProviderGemini, "good-key"))
	assert.EqualError(t, validateAPIKey(c, config.ProviderGemini, "bad-key"), "API key rejected (HTTP 403)")
}

func TestValidateAPIKey_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	err := validateAPIKey(newTestKeyCheckClient(ts.URL), config.ProviderOpenAI, "key")
	assert.EqualError(t, err, "unexpected response (HTTP 500)")
}

func TestValidateAPIKey_ConnectionFailed(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := validateAPIKey(newTestKeyCheckClient(url), config.ProviderOpenAI, "key")
	assert.EqualError(t, err, "connection failed - check your internet")
}
