package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bmsujon/play-store-data-collector/config"
	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/scraper/playstore"
	"github.com/bmsujon/play-store-data-collector/services"
	"github.com/bmsujon/play-store-data-collector/utils"
)

type fakeAnalyzer struct {
	resp *models.AnalysisResponse
	err  error
}

func (f *fakeAnalyzer) Analyze(context.Context, models.AnalysisRequest) (*models.AnalysisResponse, error) {
	return f.resp, f.err
}

func testServer(a AppAnalyzer) *Server {
	cfg := &config.Config{
		ServerHost:     "127.0.0.1",
		ServerPort:     "0",
		RequestTimeout: 5 * time.Second,
	}
	return New(cfg, utils.NewLogger(), a)
}

func postAnalyze(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze-app", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	resp := &models.AnalysisResponse{
		Target: &models.App{
			Name:      "WhatsApp",
			SourceURL: "https://play.google.com/store/apps/details?id=com.whatsapp",
		},
		SimilarApps: []*models.App{},
	}
	s := testServer(&fakeAnalyzer{resp: resp})

	rec := postAnalyze(t, s, `{"android_app_name":"WhatsApp","url":"https://play.google.com/store/apps/details?id=com.whatsapp"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	var got models.AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Target == nil || got.Target.Name != "WhatsApp" {
		t.Errorf("target: got %+v", got.Target)
	}
	if got.SimilarApps == nil {
		t.Error("similar_apps must serialize as an array, not null")
	}
}

func TestAnalyzeEndpointValidationError(t *testing.T) {
	err := fmt.Errorf("%w: malformed url %q", services.ErrValidation, "not-a-url")
	s := testServer(&fakeAnalyzer{err: err})

	rec := postAnalyze(t, s, `{"android_app_name":"WhatsApp","url":"not-a-url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body must carry a message")
	}
}

func TestAnalyzeEndpointTargetFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", fmt.Errorf("target fetch com.x: %w", playstore.ErrNotFound)},
		{"unavailable", fmt.Errorf("target fetch com.x: %w", playstore.ErrUnavailable)},
		{"parse failure", fmt.Errorf("target fetch com.x: %w", playstore.ErrParse)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(&fakeAnalyzer{err: tt.err})
			rec := postAnalyze(t, s, `{"android_app_name":"X","url":"https://play.google.com/store/apps/details?id=com.x"}`)
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status: got %d, want 500", rec.Code)
			}
		})
	}
}

func TestAnalyzeEndpointBadBody(t *testing.T) {
	s := testServer(&fakeAnalyzer{})
	rec := postAnalyze(t, s, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointMethodNotAllowed(t *testing.T) {
	s := testServer(&fakeAnalyzer{})
	req := httptest.NewRequest(http.MethodGet, "/analyze-app", nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(&fakeAnalyzer{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q", body["status"])
	}
}
