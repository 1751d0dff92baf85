package services

import (
	"testing"

	"github.com/bmsujon/play-store-data-collector/models"
)

func app(name string, rating *float64, price *float64, developer *string) *models.App {
	return &models.App{Name: name, Rating: rating, Price: price, Developer: developer}
}

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestInsightRatings(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	target := app("Target", f(4.0), f(0), s("Acme"))
	similar := []*models.App{
		app("A", f(4.8), f(0), s("Acme")),
		app("B", f(3.0), f(1.99), s("Beta")),
		app("C", nil, nil, nil),
	}

	r := svc.Generate(target, similar)

	if r.TotalApps != 4 {
		t.Errorf("TotalApps: got %d, want 4", r.TotalApps)
	}
	if r.RatedApps != 3 {
		t.Errorf("RatedApps: got %d, want 3", r.RatedApps)
	}
	if r.AverageRating == nil || *r.AverageRating != 3.93 {
		t.Errorf("AverageRating: got %v, want 3.93", r.AverageRating)
	}
	if r.MinRating == nil || *r.MinRating != 3.0 {
		t.Errorf("MinRating: got %v, want 3.0", r.MinRating)
	}
	if r.MaxRating == nil || *r.MaxRating != 4.8 {
		t.Errorf("MaxRating: got %v, want 4.8", r.MaxRating)
	}
}

func TestInsightPriceSplitAndDevelopers(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	target := app("Target", nil, f(0), s("Acme"))
	similar := []*models.App{
		app("A", nil, f(0), s("Acme")),
		app("B", nil, f(4.99), s("Beta")),
		app("C", nil, nil, s("Gamma")),
	}

	r := svc.Generate(target, similar)

	if r.FreeApps != 2 {
		t.Errorf("FreeApps: got %d, want 2", r.FreeApps)
	}
	if r.PaidApps != 1 {
		t.Errorf("PaidApps: got %d, want 1", r.PaidApps)
	}
	if r.Developers != 3 {
		t.Errorf("Developers: got %d, want 3", r.Developers)
	}
}

func TestInsightTopRatedAndOutrated(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	target := app("Target", f(4.0), nil, nil)
	similar := []*models.App{
		app("A", f(4.5), nil, nil),
		app("B", f(3.5), nil, nil),
		app("C", f(4.9), nil, nil),
		app("D", f(4.2), nil, nil),
		app("E", f(4.1), nil, nil),
		app("F", f(3.9), nil, nil),
	}

	r := svc.Generate(target, similar)

	if len(r.TopRated) != 5 {
		t.Fatalf("TopRated: got %d entries, want 5", len(r.TopRated))
	}
	if r.TopRated[0].Name != "C" {
		t.Errorf("TopRated[0]: got %q, want C", r.TopRated[0].Name)
	}
	if r.TargetOutrated != 4 {
		t.Errorf("TargetOutrated: got %d, want 4", r.TargetOutrated)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())

	r := svc.Generate(nil, nil)
	if r.TotalApps != 0 {
		t.Errorf("expected 0 total apps for empty input")
	}
	if r.AverageRating != nil {
		t.Error("no ratings means no average")
	}
}
