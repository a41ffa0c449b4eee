package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgent is sent with every fetch unless overridden. Some hosts
// reject requests that do not look like they come from a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"

// Scraper retrieves one HTML document.
type Scraper interface {
	Name() string
	Fetch(ctx context.Context, target string, opts Options) (*Document, error)
}

type Options struct {
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
	ProxyURL  string // --proxy flag or STORMSCRAPE_PROXY env var
	ShowUI    bool
}

// Document is a fetched and parsed page.
type Document struct {
	*goquery.Document
	URL        string
	StatusCode int
	LoadTime   time.Duration
}

// StatusError reports a non-success response from the document server.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s from %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// CheckStatus returns a *StatusError unless code is 2xx.
func CheckStatus(target string, code int) error {
	if code < 200 || code > 299 {
		return &StatusError{URL: target, StatusCode: code}
	}
	return nil
}

// UserAgentOrDefault returns the configured user agent, falling back to DefaultUserAgent.
func (o Options) UserAgentOrDefault() string {
	if o.UserAgent != "" {
		return o.UserAgent
	}
	return DefaultUserAgent
}

// NormalizeURL adds https:// if no protocol prefix
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}
