package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bmsujon/play-store-data-collector/config"
	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/scraper/playstore"
)

type fakeStore struct {
	mu      sync.Mutex
	apps    map[string]*models.RawApp
	errs    map[string]error
	fetches []string
}

func (f *fakeStore) FetchApp(_ context.Context, pkg string) (*models.RawApp, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, pkg)
	f.mu.Unlock()

	if err, ok := f.errs[pkg]; ok {
		return nil, err
	}
	if app, ok := f.apps[pkg]; ok {
		copied := *app
		return &copied, nil
	}
	return nil, playstore.ErrNotFound
}

func (f *fakeStore) Search(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func analyzerConfig() *config.Config {
	return &config.Config{
		PlayBaseURL:    "https://play.google.com",
		SimilarLimit:   10,
		SearchFallback: false,
		MaxConcurrency: 2,
		RateLimitMs:    0,
	}
}

func rawApp(pkg, title string) *models.RawApp {
	return &models.RawApp{
		PackageID: pkg,
		Title:     title,
		RawRating: "4.5",
		RawPrice:  "Free",
		SourceURL: "https://play.google.com/store/apps/details?id=" + pkg,
	}
}

const whatsappURL = "https://play.google.com/store/apps/details?id=com.whatsapp"

func TestAnalyzeRejectsInvalidInputWithoutFetching(t *testing.T) {
	store := &fakeStore{apps: map[string]*models.RawApp{}}
	a := NewAnalyzer(analyzerConfig(), newTestLogger(), store, nil, nil)

	tests := []struct {
		name string
		req  models.AnalysisRequest
	}{
		{"empty app name", models.AnalysisRequest{AndroidAppName: "  ", URL: whatsappURL}},
		{"malformed url", models.AnalysisRequest{AndroidAppName: "WhatsApp", URL: "not-a-url"}},
		{"wrong host", models.AnalysisRequest{AndroidAppName: "WhatsApp", URL: "https://example.com/store/apps/details?id=com.whatsapp"}},
		{"missing package id", models.AnalysisRequest{AndroidAppName: "WhatsApp", URL: "https://play.google.com/store/apps"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}

	if store.fetchCount() != 0 {
		t.Errorf("validation failures must not hit the network, got %d fetches", store.fetchCount())
	}
}

func TestAnalyzeTargetFailureIsTerminal(t *testing.T) {
	store := &fakeStore{
		apps: map[string]*models.RawApp{},
		errs: map[string]error{"com.whatsapp": playstore.ErrUnavailable},
	}
	a := NewAnalyzer(analyzerConfig(), newTestLogger(), store, nil, nil)

	resp, err := a.Analyze(context.Background(), models.AnalysisRequest{
		AndroidAppName: "WhatsApp",
		URL:            whatsappURL,
	})
	if !errors.Is(err, playstore.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if resp != nil {
		t.Error("no response may be produced when the target fetch fails")
	}
}

func TestAnalyzeDropsFailedSimilarApps(t *testing.T) {
	target := rawApp("com.whatsapp", "WhatsApp")
	target.RelatedIDs = []string{"com.a", "com.b", "com.c", "com.d"}

	store := &fakeStore{
		apps: map[string]*models.RawApp{
			"com.whatsapp": target,
			"com.a":        rawApp("com.a", "App A"),
			"com.c":        rawApp("com.c", "App C"),
			"com.d":        rawApp("com.d", "App D"),
		},
		errs: map[string]error{"com.b": playstore.ErrParse},
	}
	a := NewAnalyzer(analyzerConfig(), newTestLogger(), store, nil, nil)

	resp, err := a.Analyze(context.Background(), models.AnalysisRequest{
		AndroidAppName: "WhatsApp",
		URL:            whatsappURL,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if resp.Target.Name != "WhatsApp" {
		t.Errorf("target name: got %q", resp.Target.Name)
	}
	if resp.Target.SourceURL != whatsappURL {
		t.Errorf("target source_url must echo the request url, got %q", resp.Target.SourceURL)
	}

	wantOrder := []string{"App A", "App C", "App D"}
	if len(resp.SimilarApps) != len(wantOrder) {
		t.Fatalf("similar apps: got %d, want %d", len(resp.SimilarApps), len(wantOrder))
	}
	for i, name := range wantOrder {
		if resp.SimilarApps[i].Name != name {
			t.Errorf("similar[%d]: got %q, want %q (survivor order must be preserved)",
				i, resp.SimilarApps[i].Name, name)
		}
	}

	if resp.Insights == nil {
		t.Error("insights should be computed for a successful analysis")
	}
}

func TestAnalyzeNoSimilarApps(t *testing.T) {
	store := &fakeStore{
		apps: map[string]*models.RawApp{"com.whatsapp": rawApp("com.whatsapp", "WhatsApp")},
	}
	a := NewAnalyzer(analyzerConfig(), newTestLogger(), store, nil, nil)

	resp, err := a.Analyze(context.Background(), models.AnalysisRequest{
		AndroidAppName: "WhatsApp",
		URL:            whatsappURL,
	})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if resp.SimilarApps == nil {
		t.Error("similar_apps must be an empty array, not null")
	}
	if len(resp.SimilarApps) != 0 {
		t.Errorf("expected no similar apps, got %d", len(resp.SimilarApps))
	}
}
