package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmsujon/play-store-data-collector/config"
	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/scraper/playstore"
	"github.com/bmsujon/play-store-data-collector/storage"
	"github.com/bmsujon/play-store-data-collector/utils"
)

// ErrValidation indicates a malformed analysis request. Validation failures
// never reach the network layer.
var ErrValidation = errors.New("invalid analysis request")

// StoreClient is the slice of the storefront client the orchestrator needs.
type StoreClient interface {
	FetchApp(ctx context.Context, pkg string) (*models.RawApp, error)
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Analyzer coordinates one analysis end to end: validate the request, fetch
// the target listing, resolve and fetch similar apps, and assemble the
// response. The target fetch is mandatory; similar-app fetches are
// best-effort and individual failures only shrink the result list.
type Analyzer struct {
	cfg       *config.Config
	logger    *utils.Logger
	store     StoreClient
	resolver  *Resolver
	assembler *Assembler
	insights  *InsightService
	rawSink   storage.RawAppWriter
	appSink   storage.AppWriter
}

// NewAnalyzer wires an Analyzer. Either sink may be nil, in which case the
// corresponding audit output is skipped.
func NewAnalyzer(cfg *config.Config, logger *utils.Logger, store StoreClient,
	rawSink storage.RawAppWriter, appSink storage.AppWriter) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		resolver:  NewResolver(cfg, logger, store),
		assembler: NewAssembler(logger),
		insights:  NewInsightService(logger),
		rawSink:   rawSink,
		appSink:   appSink,
	}
}

// Analyze runs the full pipeline for one request.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	pkg, err := a.validate(req)
	if err != nil {
		return nil, err
	}

	a.logger.Info("[analyzer] Analyzing %s (%q)", pkg, req.AndroidAppName)

	rawTarget, err := a.store.FetchApp(ctx, pkg)
	if err != nil {
		return nil, fmt.Errorf("target fetch %s: %w", pkg, err)
	}

	// The response echoes the caller's URL, not the canonicalised one.
	rawTarget.SourceURL = req.URL
	target := a.assembler.Normalize(rawTarget)

	refs := a.resolver.Resolve(ctx, rawTarget, strings.TrimSpace(req.AndroidAppName))

	similar, rawSimilar := a.fetchSimilar(ctx, refs)

	resp := &models.AnalysisResponse{
		Target:      target,
		SimilarApps: similar,
	}
	resp.Insights = a.insights.Generate(target, similar)
	a.insights.Log(pkg, resp.Insights)

	a.audit(append([]*models.RawApp{rawTarget}, rawSimilar...), append([]*models.App{target}, similar...))

	a.logger.Info("[analyzer] Done: %s — %d/%d similar apps resolved",
		pkg, len(similar), len(refs))
	return resp, nil
}

// validate checks request shape without touching the network.
func (a *Analyzer) validate(req models.AnalysisRequest) (string, error) {
	if strings.TrimSpace(req.AndroidAppName) == "" {
		return "", fmt.Errorf("%w: android_app_name must not be empty", ErrValidation)
	}

	u, err := url.Parse(req.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: malformed url %q", ErrValidation, req.URL)
	}
	if u.Host != a.cfg.StoreHost() {
		return "", fmt.Errorf("%w: unsupported storefront host %q", ErrValidation, u.Host)
	}

	pkg, err := playstore.PackageID(req.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return pkg, nil
}

// fetchSimilar fans out one fetch per candidate. Each result keeps its
// candidate index so survivors come back in storefront order; a failed
// candidate is logged and dropped, never fatal.
func (a *Analyzer) fetchSimilar(ctx context.Context, refs []string) ([]*models.App, []*models.RawApp) {
	results := make([]models.FetchResult, len(refs))
	raws := make([]*models.RawApp, len(refs))

	workers := a.cfg.MaxConcurrency
	if workers < 1 {
		workers = 1
	}
	pool := utils.NewWorkerPool(workers, a.cfg.RateLimitMs)
	for i, pkg := range refs {
		i, pkg := i, pkg
		pool.Submit(func() {
			raw, err := a.store.FetchApp(ctx, pkg)
			if err != nil {
				results[i] = models.FetchResult{Index: i, Err: err}
				return
			}
			raws[i] = raw
			results[i] = models.FetchResult{Index: i, App: a.assembler.Normalize(raw)}
		})
	}
	pool.Wait()

	similar := make([]*models.App, 0, len(refs))
	var rawKept []*models.RawApp
	for _, res := range results {
		if res.Err != nil {
			a.logger.Warn("[analyzer] Dropping similar app %s: %v", refs[res.Index], res.Err)
			continue
		}
		similar = append(similar, res.App)
		rawKept = append(rawKept, raws[res.Index])
	}
	return similar, rawKept
}

// audit writes the analysis to the configured sinks. Sink failures are
// logged and swallowed: persistence is an audit trail, not part of the
// request contract.
func (a *Analyzer) audit(raws []*models.RawApp, apps []*models.App) {
	if a.rawSink != nil {
		if err := a.rawSink.WriteRaw(raws); err != nil {
			a.logger.Warn("[analyzer] CSV audit write failed: %v", err)
		}
	}
	if a.appSink != nil {
		if err := a.appSink.Write(apps); err != nil {
			a.logger.Warn("[analyzer] DB audit write failed: %v", err)
		}
	}
}
