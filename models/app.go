package models

import "time"

// RawApp holds unprocessed scraped data straight off a Play Store listing page.
// This is written to the CSV audit sink before any normalization.
type RawApp struct {
	PackageID   string
	Title       string
	Developer   string
	RawRating   string
	RawReviews  string
	RawInstalls string
	RawPrice    string
	Description string
	Screenshots []string
	// RelatedIDs are the package ids linked from the listing's similar-apps
	// section, in the order the storefront presents them.
	RelatedIDs []string
	SourceURL  string
	ScrapedAt  time.Time
}

// App is the normalized, API-facing record for one app's public metadata.
// Every field except Name and SourceURL may be absent when the storefront
// omitted it or the raw value could not be parsed; absence is not an error.
type App struct {
	Name        string   `json:"name"`
	PackageID   *string  `json:"package_id"`
	Developer   *string  `json:"developer"`
	Rating      *float64 `json:"rating"`
	ReviewCount *int64   `json:"review_count"`
	Installs    *string  `json:"install_count_bucket"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Screenshots []string `json:"screenshots"`
	SourceURL   string   `json:"source_url"`
}

// AnalysisRequest is the inbound payload for POST /analyze-app.
type AnalysisRequest struct {
	AndroidAppName string `json:"android_app_name"`
	URL            string `json:"url"`
}

// AnalysisResponse is the combined payload: the target app plus the apps the
// storefront presents as similar, in the storefront's own order.
type AnalysisResponse struct {
	Target      *App              `json:"target"`
	SimilarApps []*App            `json:"similar_apps"`
	Insights    *ComparisonReport `json:"insights,omitempty"`
}

// FetchResult tags one similar-app fetch with its candidate position so the
// survivors can be reassembled in storefront order after the fan-out.
type FetchResult struct {
	Index int
	App   *App
	Err   error
}

// ComparisonReport holds summary statistics computed over the target and its
// similar apps.
type ComparisonReport struct {
	TotalApps      int      `json:"total_apps"`
	RatedApps      int      `json:"rated_apps"`
	AverageRating  *float64 `json:"average_rating"`
	MinRating      *float64 `json:"min_rating"`
	MaxRating      *float64 `json:"max_rating"`
	FreeApps       int      `json:"free_apps"`
	PaidApps       int      `json:"paid_apps"`
	Developers     int      `json:"developers"`
	TopRated       []*App   `json:"top_rated,omitempty"`
	TargetOutrated int      `json:"target_outrated,omitempty"`
}
