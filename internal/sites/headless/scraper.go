package headless

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stormscrape/internal/browser"
	"stormscrape/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

func init() {
	scraper.Register(&HeadlessScraper{})
}

// HeadlessScraper renders the page in Chromium before parsing it. It is
// slower than the http backend but sees tables that are built by scripts.
type HeadlessScraper struct{}

func (s *HeadlessScraper) Name() string { return "browser" }

// Fetch launches a browser, navigates to target and parses the rendered DOM.
// The browser is closed before returning.
func (s *HeadlessScraper) Fetch(ctx context.Context, target string, opts scraper.Options) (*scraper.Document, error) {
	b, err := browser.New(browser.Config{
		ProxyURL: opts.ProxyURL,
		Headless: !opts.ShowUI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)
	if opts.Timeout > 0 {
		page = page.Timeout(opts.Timeout)
	}

	start := time.Now()
	html, status, finalURL, err := navigate(page, target, opts)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "rendered document", "url", finalURL, "status", status, "bytes", len(html), "proxy", b.ProxyURL())

	if err := scraper.CheckStatus(target, status); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &scraper.Document{
		Document:   doc,
		URL:        finalURL,
		StatusCode: status,
		LoadTime:   time.Since(start),
	}, nil
}

// navigate loads target and returns the rendered HTML together with the HTTP
// status of the main document response.
func navigate(page *rod.Page, target string, opts scraper.Options) (string, int, string, error) {
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: opts.UserAgentOrDefault(),
	}); err != nil {
		return "", 0, "", fmt.Errorf("failed to set user agent: %w", err)
	}
	if _, err := page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`); err != nil {
		slog.Debug("failed to hide webdriver flag", "err", err)
	}

	if len(opts.Headers) > 0 {
		headerList := make([]string, 0, len(opts.Headers)*2)
		for k, v := range opts.Headers {
			headerList = append(headerList, k, v)
		}
		cleanup, err := page.SetExtraHeaders(headerList)
		if err != nil {
			return "", 0, "", fmt.Errorf("failed to set headers: %w", err)
		}
		defer cleanup()
	}

	status := 0
	waitResponse := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(target); err != nil {
		return "", 0, "", fmt.Errorf("failed to navigate: %w", err)
	}
	waitResponse()

	if err := page.WaitLoad(); err != nil {
		return "", 0, "", fmt.Errorf("failed to wait for page load: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", 0, "", fmt.Errorf("failed to get page HTML: %w", err)
	}

	finalURL := target
	if info, err := page.Info(); err == nil {
		finalURL = info.URL
	}

	return html, status, finalURL, nil
}
