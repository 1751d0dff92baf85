package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/bmsujon/play-store-data-collector/models"
	"github.com/bmsujon/play-store-data-collector/utils"
)

var (
	// ratingRegexp captures a numeric rating in the 0.0–5.0 range, tolerating
	// glued suffixes like "4.6star"
	ratingRegexp = regexp.MustCompile(`\b([0-5](?:[.,]\d{1,2})?)`)
	// countRegexp captures counts like "1,234,567" or "12.3M"
	countRegexp = regexp.MustCompile(`([\d][\d,.]*)\s*([KMB])?`)
	// priceRegexp captures a decimal price after any currency symbol
	priceRegexp = regexp.MustCompile(`[\d]+(?:\.\d{1,2})?`)
	// decimalCommaRegexp recognises a single decimal comma ("2,99 €")
	decimalCommaRegexp = regexp.MustCompile(`^\D*\d+,\d{1,2}\D*$`)
)

// Assembler turns RawApps into normalized, API-facing App records. It never
// fails: anything unparsable becomes a null field, because a partial record
// is strictly more useful to the caller than a dropped app.
type Assembler struct {
	logger *utils.Logger
}

// NewAssembler creates an Assembler with the given logger.
func NewAssembler(logger *utils.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Normalize maps every raw field onto the response schema.
func (a *Assembler) Normalize(raw *models.RawApp) *models.App {
	app := &models.App{
		Name:        normaliseText(raw.Title),
		PackageID:   optText(raw.PackageID),
		Developer:   optText(raw.Developer),
		Rating:      a.parseRating(raw.RawRating),
		ReviewCount: a.parseCount(raw.RawReviews),
		Installs:    optText(raw.RawInstalls),
		Price:       a.parsePrice(raw.RawPrice),
		Description: optText(raw.Description),
		Screenshots: dedupeOrdered(raw.Screenshots),
		SourceURL:   raw.SourceURL,
	}
	return app
}

// parseRating extracts a 0.0–5.0 rating, tolerant of decimal commas and
// surrounding label text ("Rated 4.5 stars out of five").
func (a *Assembler) parseRating(raw string) *float64 {
	match := ratingRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil || val < 0 || val > 5 {
		return nil
	}
	return &val
}

// parseCount extracts an integer count, handling thousands separators and
// K/M/B suffixes ("1,234,567 reviews" → 1234567, "12.3M" → 12300000).
func (a *Assembler) parseCount(raw string) *int64 {
	match := countRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}

	numText := strings.ReplaceAll(match[1], ",", "")
	numText = strings.TrimSuffix(numText, ".")
	val, err := strconv.ParseFloat(numText, 64)
	if err != nil || val < 0 {
		return nil
	}

	switch match[2] {
	case "K":
		val *= 1e3
	case "M":
		val *= 1e6
	case "B":
		val *= 1e9
	}

	n := int64(val)
	return &n
}

// parsePrice maps "Free"/"Install"/"0" to 0 and otherwise extracts a decimal
// value, tolerant of currency symbols and locale separators. An empty or
// malformed price becomes null, never an error.
func (a *Assembler) parsePrice(raw string) *float64 {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return nil
	}

	zero := 0.0
	if text == "free" || text == "install" || text == "0" {
		return &zero
	}

	// A lone comma with one or two trailing digits is a decimal separator;
	// any other comma is a thousands separator.
	cleaned := text
	if strings.Count(cleaned, ",") == 1 && decimalCommaRegexp.MatchString(cleaned) {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		a.logger.Debug("[assembler] Unparsable price %q — leaving null", raw)
		return nil
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil || val < 0 {
		return nil
	}
	return &val
}

// dedupeOrdered removes duplicate screenshot URLs while preserving the
// storefront's presentation order.
func dedupeOrdered(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(urls))
	result := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		result = append(result, u)
	}
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// optText returns nil for empty strings so omitted storefront fields marshal
// as JSON null.
func optText(s string) *string {
	t := normaliseText(s)
	if t == "" {
		return nil
	}
	return &t
}
