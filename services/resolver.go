package services

import (
	"context"

	"github.com/bmsujon/play-store-data-collector/config"
	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/utils"
)

// Searcher is the slice of the storefront client the resolver needs.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Resolver derives the set of similar-app references for a target listing.
// The storefront's own similar-apps section is the canonical source and its
// presentation order is the relevance order; no re-ranking happens here.
type Resolver struct {
	logger   *utils.Logger
	searcher Searcher
	limit    int
	fallback bool
}

// NewResolver creates a Resolver. searcher is only consulted when the
// listing exposes no similar-apps section and the search fallback is enabled.
func NewResolver(cfg *config.Config, logger *utils.Logger, searcher Searcher) *Resolver {
	return &Resolver{
		logger:   logger,
		searcher: searcher,
		limit:    cfg.SimilarLimit,
		fallback: cfg.SearchFallback,
	}
}

// Resolve returns similar-app package ids in storefront order. An empty
// result is not an error: some listings simply have no related apps.
func (r *Resolver) Resolve(ctx context.Context, target *models.RawApp, displayName string) []string {
	refs := r.filter(target.RelatedIDs, target.PackageID)
	if len(refs) > 0 {
		r.logger.Debug("[resolver] %d similar apps from listing section", len(refs))
		return refs
	}

	if !r.fallback || r.searcher == nil || displayName == "" {
		return nil
	}

	r.logger.Info("[resolver] No similar-apps section for %s — falling back to search %q",
		target.PackageID, displayName)

	found, err := r.searcher.Search(ctx, displayName, r.limit+1)
	if err != nil {
		// Best-effort: a failed fallback just means no similar apps.
		r.logger.Warn("[resolver] Search fallback failed: %v", err)
		return nil
	}
	return r.filter(found, target.PackageID)
}

// filter dedupes candidates, drops the target itself, and caps the list.
func (r *Resolver) filter(candidates []string, selfPkg string) []string {
	seen := utils.NewRefSet()
	seen.Add(selfPkg)

	var refs []string
	for _, pkg := range candidates {
		if !seen.Add(pkg) {
			continue
		}
		refs = append(refs, pkg)
		if r.limit > 0 && len(refs) >= r.limit {
			break
		}
	}
	return refs
}
