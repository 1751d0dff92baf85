package playstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bmsujon/play-store-data-collector/config"
	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/utils"
)

const (
	detailsPath = "/store/apps/details"
	searchPath  = "/store/search"
)

var packageRegexp = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)+$`)

// Client fetches and parses Google Play listing pages. It performs network
// I/O only; it never mutates shared state.
type Client struct {
	cfg     *config.Config
	logger  *utils.Logger
	fetcher fetcher
	retry   *utils.RetryConfig
}

// fetcher abstracts how a page's HTML is obtained, so the plain HTTP client
// and the headless-browser client are interchangeable.
type fetcher interface {
	Fetch(ctx context.Context, pageURL string) (html string, status int, err error)
}

// New creates a ready-to-use Play Store client. The fetcher backend is chosen
// by cfg.PlayFetcher: "browser" renders pages in headless Chrome, anything
// else uses a plain HTTP client.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	var f fetcher
	if cfg.PlayFetcher == "browser" {
		f = newBrowserFetcher(cfg, logger)
	} else {
		f = newHTTPFetcher(cfg)
	}

	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	return &Client{
		cfg:     cfg,
		logger:  logger,
		fetcher: f,
		retry: &utils.RetryConfig{
			MaxAttempts: attempts,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// PackageID extracts the package name from a Play Store details URL. Bare
// package names ("com.whatsapp") are accepted as-is.
func PackageID(ref string) (string, error) {
	if packageRegexp.MatchString(ref) {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}

	id := u.Query().Get("id")
	if id == "" || !packageRegexp.MatchString(id) {
		return "", fmt.Errorf("no package id in url %q", ref)
	}
	return id, nil
}

// DetailsURL builds the canonical listing URL for a package.
func (c *Client) DetailsURL(pkg string) string {
	return c.cfg.PlayBaseURL + detailsPath +
		"?id=" + url.QueryEscape(pkg) +
		"&hl=" + url.QueryEscape(c.cfg.PlayLang) +
		"&gl=" + url.QueryEscape(c.cfg.PlayCountry)
}

// FetchApp retrieves and parses the listing page for one package. Partial
// pages still yield a best-effort RawApp; only a page that cannot be
// recognised as an app listing at all fails with ErrParse.
func (c *Client) FetchApp(ctx context.Context, pkg string) (*models.RawApp, error) {
	pageURL := c.DetailsURL(pkg)

	doc, err := c.fetchDoc(ctx, "app "+pkg, pageURL)
	if err != nil {
		return nil, err
	}

	if looksNotFound(doc) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pkg)
	}

	raw := parseApp(doc, pkg, pageURL)
	if raw.Title == "" {
		return nil, fmt.Errorf("%w: %s", ErrParse, pageURL)
	}

	c.logger.Debug("[playstore] Fetched %s — %q (related: %d)",
		pkg, raw.Title, len(raw.RelatedIDs))
	return raw, nil
}

// Search runs a storefront search and returns the result package ids in
// presentation order, capped at limit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	pageURL := c.cfg.PlayBaseURL + searchPath +
		"?q=" + url.QueryEscape(query) +
		"&c=apps" +
		"&hl=" + url.QueryEscape(c.cfg.PlayLang) +
		"&gl=" + url.QueryEscape(c.cfg.PlayCountry)

	doc, err := c.fetchDoc(ctx, "search "+query, pageURL)
	if err != nil {
		return nil, err
	}

	ids := detailLinkIDs(doc, "", limit)
	c.logger.Debug("[playstore] Search %q returned %d candidates", query, len(ids))
	return ids, nil
}

// fetchDoc retrieves a page and parses it into a goquery document, retrying
// transient upstream failures only.
func (c *Client) fetchDoc(ctx context.Context, op, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document
	var terminal error

	err := c.retry.Do(ctx, op, func() error {
		d, ferr := c.fetchOnce(ctx, pageURL)
		if ferr == nil {
			doc = d
			return nil
		}
		if errors.Is(ferr, ErrUnavailable) {
			return ferr
		}
		// ErrNotFound and ErrParse are terminal; retrying cannot help.
		terminal = ferr
		return nil
	})
	if terminal != nil {
		return nil, terminal
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) fetchOnce(ctx context.Context, pageURL string) (*goquery.Document, error) {
	html, status, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case status == 404:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pageURL)
	case status != 200:
		return nil, fmt.Errorf("%w: status %d for %s", ErrUnavailable, status, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}
