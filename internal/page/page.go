// Package page fetches web pages and pulls resume text out of them.
package page

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; resume-assistant)"

	// maxBodySize bounds how much HTML is read from a single page.
	maxBodySize = 10 << 20
)

// blockElements end a line in rendered text.
const blockElements = "br, p, div, li, tr, td, th, h1, h2, h3, h4, h5, h6, section"

// ErrNoText is returned when a page has no extractable text.
var ErrNoText = errors.New("no readable text found on the page")

// ResumeSelectors are tried in order before falling back to the whole body.
var ResumeSelectors = []string{
	".resume-body",
	".resume-content",
	"#resumeContent",
	`[data-hook="resume"]`,
	".job-intro + div",
}

// Options configures page fetching.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// Selector, when set, is tried before ResumeSelectors.
	Selector string
}

// Fetcher downloads pages and extracts resume text from them.
type Fetcher struct {
	opts   Options
	logger *zap.Logger

	HTTPClient *http.Client
}

func New(opts Options, logger *zap.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Fetcher{
		opts:       opts,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: opts.Timeout},
	}
}

// Extract downloads rawURL and returns its resume text.
func (f *Fetcher) Extract(ctx context.Context, rawURL string) (string, error) {
	html, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := ExtractHTML(html, f.selectors()...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rawURL, err)
	}

	f.logger.Debug("extracted page text",
		zap.String("url", rawURL),
		zap.Int("length", len([]rune(text))),
	)

	return text, nil
}

func (f *Fetcher) selectors() []string {
	if s := strings.TrimSpace(f.opts.Selector); s != "" {
		return append([]string{s}, ResumeSelectors...)
	}
	return ResumeSelectors
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid page url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip")
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	f.logger.Debug("make request", zap.String("url", rawURL))

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: bad status: %s", rawURL, resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("fetching %s: %w", rawURL, err)
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", rawURL, err)
	}

	return string(data), nil
}

// ExtractHTML returns the text of the first selector with non-empty text,
// falling back to the whole body. Scripts and styles are dropped and block
// elements are put on their own lines.
func ExtractHTML(html string, selectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()
	// Text() concatenates sibling blocks directly, so "2015</div><div>3年" would read as "20153年".
	doc.Find(blockElements).AfterHtml("\n")

	if len(selectors) == 0 {
		selectors = ResumeSelectors
	}

	for _, selector := range selectors {
		if text := cleanWhitespace(doc.Find(selector).First().Text()); text != "" {
			return text, nil
		}
	}

	if text := cleanWhitespace(doc.Find("body").Text()); text != "" {
		return text, nil
	}

	return "", ErrNoText
}

// cleanWhitespace trims every line and drops the empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
