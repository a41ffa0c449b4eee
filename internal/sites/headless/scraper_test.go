package headless

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stormscrape/internal/scraper"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	s, ok := scraper.Get("browser")
	require.True(t, ok)
	assert.IsType(t, &HeadlessScraper{}, s)
	assert.Equal(t, "browser", s.Name())
}

func requireBrowser(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("browser tests skipped in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no local Chromium found")
	}
}

func TestFetchRendersScriptBuiltTable(t *testing.T) {
	requireBrowser(t)

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><script>
document.body.innerHTML = '<table class="wikitable"><tr><th>Stormname</th></tr><tr><td>Amy</td></tr></table>';
</script></body></html>`))
	}))
	defer srv.Close()

	doc, err := (&HeadlessScraper{}).Fetch(context.Background(), srv.URL, scraper.Options{
		UserAgent: "test-agent",
		Timeout:   30 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doc.StatusCode)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "Amy", doc.Find("table.wikitable td").First().Text())
}

func TestFetchNonSuccessStatus(t *testing.T) {
	requireBrowser(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := (&HeadlessScraper{}).Fetch(context.Background(), srv.URL, scraper.Options{Timeout: 30 * time.Second})

	var statusErr *scraper.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}
