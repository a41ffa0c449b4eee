package scraper

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScraper struct{ name string }

func (s stubScraper) Name() string { return s.name }

func (s stubScraper) Fetch(ctx context.Context, target string, opts Options) (*Document, error) {
	return nil, errors.New("not implemented")
}

func TestRegistry(t *testing.T) {
	Register(stubScraper{name: "Stub"})
	t.Cleanup(func() { delete(registry, "stub") })

	s, ok := Get("STUB")
	require.True(t, ok)
	assert.Equal(t, "Stub", s.Name())
	assert.Contains(t, Names(), "stub")

	_, ok = Get("missing")
	assert.False(t, ok)
}

func TestCheckStatus(t *testing.T) {
	require.NoError(t, CheckStatus("https://example.com", http.StatusOK))
	require.NoError(t, CheckStatus("https://example.com", http.StatusNoContent))

	err := CheckStatus("https://example.com", http.StatusForbidden)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "403 Forbidden")
}

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "en.wikipedia.org/wiki/1975_Atlantic_hurricane_season", expected: "https://en.wikipedia.org/wiki/1975_Atlantic_hurricane_season"},
		{in: "  http://example.com ", expected: "http://example.com"},
		{in: "HTTPS://example.com", expected: "HTTPS://example.com"},
		{in: "", expected: ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeURL(tc.in), tc.in)
	}
}

func TestUserAgentOrDefault(t *testing.T) {
	assert.Equal(t, DefaultUserAgent, Options{}.UserAgentOrDefault())
	assert.Equal(t, "custom", Options{UserAgent: "custom"}.UserAgentOrDefault())
}
