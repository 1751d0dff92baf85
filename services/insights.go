package services

import (
	"sort"

	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/utils"
)

// InsightService computes summary statistics over an analysis result: how
// the target sits among the apps the storefront considers similar.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds a ComparisonReport over the target and its similar apps.
// It is a pure function of the normalized records.
func (s *InsightService) Generate(target *models.App, similar []*models.App) *models.ComparisonReport {
	report := &models.ComparisonReport{}

	all := make([]*models.App, 0, len(similar)+1)
	if target != nil {
		all = append(all, target)
	}
	all = append(all, similar...)
	report.TotalApps = len(all)

	developers := make(map[string]struct{})
	var ratedSimilar []*models.App

	for _, app := range all {
		if app.Rating != nil {
			report.RatedApps++
			s.foldRating(report, *app.Rating)
		}
		if app.Price != nil {
			if *app.Price == 0 {
				report.FreeApps++
			} else {
				report.PaidApps++
			}
		}
		if app.Developer != nil {
			developers[*app.Developer] = struct{}{}
		}
	}
	report.Developers = len(developers)

	for _, app := range similar {
		if app.Rating == nil {
			continue
		}
		ratedSimilar = append(ratedSimilar, app)
		if target != nil && target.Rating != nil && *app.Rating > *target.Rating {
			report.TargetOutrated++
		}
	}

	sort.SliceStable(ratedSimilar, func(i, j int) bool {
		return *ratedSimilar[i].Rating > *ratedSimilar[j].Rating
	})
	if len(ratedSimilar) > 5 {
		ratedSimilar = ratedSimilar[:5]
	}
	report.TopRated = ratedSimilar

	if report.RatedApps > 0 {
		avg := round2(*report.AverageRating / float64(report.RatedApps))
		report.AverageRating = &avg
	}

	return report
}

// foldRating accumulates sum/min/max; AverageRating holds the running sum
// until Generate divides it at the end.
func (s *InsightService) foldRating(r *models.ComparisonReport, rating float64) {
	if r.AverageRating == nil {
		sum := rating
		min := rating
		max := rating
		r.AverageRating = &sum
		r.MinRating = &min
		r.MaxRating = &max
		return
	}
	*r.AverageRating += rating
	if rating < *r.MinRating {
		*r.MinRating = rating
	}
	if rating > *r.MaxRating {
		*r.MaxRating = rating
	}
}

// Log prints a one-look summary of the report after an analysis.
func (s *InsightService) Log(pkg string, r *models.ComparisonReport) {
	if r == nil {
		return
	}
	if r.AverageRating != nil {
		s.logger.Info("[insights] %s: %d apps | rated %d | avg %.2f (min %.2f, max %.2f) | free %d / paid %d | %d developers",
			pkg, r.TotalApps, r.RatedApps, *r.AverageRating, *r.MinRating, *r.MaxRating,
			r.FreeApps, r.PaidApps, r.Developers)
		return
	}
	s.logger.Info("[insights] %s: %d apps | no rating data | free %d / paid %d | %d developers",
		pkg, r.TotalApps, r.FreeApps, r.PaidApps, r.Developers)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
