package direct

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"stormscrape/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

func init() {
	scraper.Register(&DirectScraper{})
}

// DirectScraper fetches the document with a plain HTTP GET. No JavaScript is
// executed, which is enough for server-rendered pages such as Wikipedia.
type DirectScraper struct{}

func (s *DirectScraper) Name() string { return "http" }

func (s *DirectScraper) Fetch(ctx context.Context, target string, opts scraper.Options) (*scraper.Document, error) {
	client := resty.New().SetTimeout(opts.Timeout)
	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}

	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(opts.Headers).
		SetHeader("User-Agent", opts.UserAgentOrDefault()).
		Get(target)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", target, err)
	}

	slog.DebugContext(ctx, "document response", "url", target, "status", resp.StatusCode(), "bytes", len(resp.Body()))

	if err := scraper.CheckStatus(target, resp.StatusCode()); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	finalURL := target
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return &scraper.Document{
		Document:   doc,
		URL:        finalURL,
		StatusCode: resp.StatusCode(),
		LoadTime:   resp.Time(),
	}, nil
}
