package direct

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stormscrape/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA, gotExtra string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Season</title></head><body><table class="wikitable"><tr><th>A</th></tr></table></body></html>`))
	}))
	defer srv.Close()

	s := &DirectScraper{}
	doc, err := s.Fetch(context.Background(), srv.URL, scraper.Options{
		Headers: map[string]string{"Accept-Language": "en"},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, scraper.DefaultUserAgent, gotUA)
	assert.Equal(t, "en", gotExtra)
	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Equal(t, "Season", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("table.wikitable").Length())
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	defer srv.Close()

	s := &DirectScraper{}
	_, err := s.Fetch(context.Background(), srv.URL, scraper.Options{UserAgent: "test-agent"})

	var statusErr *scraper.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, srv.URL, statusErr.URL)
}

func TestRegistered(t *testing.T) {
	s, ok := scraper.Get("http")
	require.True(t, ok)
	assert.IsType(t, &DirectScraper{}, s)
}
