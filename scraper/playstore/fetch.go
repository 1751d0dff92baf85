package playstore

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bmsujon/play-store-data-collector/config"
)

// httpFetcher retrieves pages with a plain HTTP client. Play Store details
// pages are server-rendered enough for this to be the default backend.
type httpFetcher struct {
	client     *http.Client
	userAgents []string
	lang       string
}

func newHTTPFetcher(cfg *config.Config) *httpFetcher {
	return &httpFetcher{
		client: &http.Client{Timeout: cfg.FetchTimeout},
		lang:   cfg.PlayLang,
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		},
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, pageURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept-Language", f.lang+";q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(body), resp.StatusCode, nil
}

func (f *httpFetcher) userAgent() string {
	if len(f.userAgents) == 0 {
		return "Mozilla/5.0 (compatible; playcollector/1.0)"
	}
	idx := int(time.Now().UnixNano()) % len(f.userAgents)
	if idx < 0 {
		idx = -idx
	}
	return f.userAgents[idx]
}
