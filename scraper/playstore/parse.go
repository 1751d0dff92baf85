package playstore

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bmsujon/play-store-data-collector/models"
)

const titleSuffix = " - Apps on Google Play"

var installsRegexp = regexp.MustCompile(`^[0-9][0-9.,]*[KMB]?\+$`)

// parseApp maps a listing document onto a RawApp, field by field. Every
// extraction is best-effort: a selector that matches nothing leaves the field
// empty, and the assembler turns empty fields into nulls downstream.
func parseApp(doc *goquery.Document, pkg, sourceURL string) *models.RawApp {
	raw := &models.RawApp{
		PackageID: pkg,
		SourceURL: sourceURL,
		ScrapedAt: time.Now(),
	}

	raw.Title = parseTitle(doc)
	raw.Developer = firstText(doc,
		"div[itemprop='author'] a span",
		"div[itemprop='author'] a",
		"a[href*='/store/apps/dev'] span",
	)
	raw.RawRating = parseRating(doc)
	raw.RawReviews = parseReviews(doc)
	raw.RawInstalls = parseInstalls(doc)
	raw.RawPrice = parsePrice(doc)
	raw.Description = parseDescription(doc)
	raw.Screenshots = parseScreenshots(doc)
	raw.RelatedIDs = detailLinkIDs(doc, pkg, 0)

	return raw
}

// firstText tries selectors in order and returns the first non-empty
// trimmed text, or "" when none match.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func parseTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("h1 span").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1[itemprop='name']").First().Text()); t != "" {
		return t
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if strings.HasSuffix(title, titleSuffix) {
		return strings.TrimSpace(strings.TrimSuffix(title, titleSuffix))
	}
	return ""
}

func parseRating(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("div[itemprop='starRating']").First().Text()); t != "" {
		return t
	}
	if v, ok := doc.Find("meta[itemprop='ratingValue']").First().Attr("content"); ok {
		return v
	}
	// aria-label like "Rated 4.5 stars out of five stars"
	var label string
	doc.Find("[aria-label*='stars']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("aria-label"); ok {
			label = v
			return false
		}
		return true
	})
	return label
}

func parseReviews(doc *goquery.Document) string {
	if v, ok := doc.Find("meta[itemprop='reviewCount']").First().Attr("content"); ok {
		return v
	}

	var text string
	doc.Find("div, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if strings.HasSuffix(t, "reviews") && len(t) < 32 {
			text = t
			return false
		}
		return true
	})
	return text
}

// parseInstalls looks for the "Downloads" stat cell and takes the bucket
// value next to it ("10M+", "1B+").
func parseInstalls(doc *goquery.Document) string {
	var bucket string
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != "Downloads" {
			return true
		}
		prev := strings.TrimSpace(s.Prev().Text())
		if installsRegexp.MatchString(prev) {
			bucket = prev
			return false
		}
		return true
	})
	return bucket
}

func parsePrice(doc *goquery.Document) string {
	if v, ok := doc.Find("meta[itemprop='price']").First().Attr("content"); ok {
		return v
	}

	// The install button carries the price for paid apps ("$4.99 Buy"),
	// plain "Install" for free ones.
	var text string
	doc.Find("button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if t == "Install" || strings.Contains(t, "Buy") {
			text = t
			return false
		}
		return true
	})
	return text
}

func parseDescription(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("div[data-g-id='description']").First().Text()); t != "" {
		return t
	}
	if v, ok := doc.Find("meta[itemprop='description']").First().Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find("meta[name='description']").First().Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func parseScreenshots(doc *goquery.Document) []string {
	var shots []string
	doc.Find("img[alt*='Screenshot']").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, _ = s.Attr("data-src")
		}
		if src != "" {
			shots = append(shots, src)
		}
	})
	return shots
}

// detailLinkIDs collects the package ids of every details-page link in
// document order, skipping exclude and duplicates. limit <= 0 means no cap.
func detailLinkIDs(doc *goquery.Document, exclude string, limit int) []string {
	var ids []string
	seen := make(map[string]struct{})

	doc.Find("a[href*='/store/apps/details']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		id := u.Query().Get("id")
		if id == "" || id == exclude || !packageRegexp.MatchString(id) {
			return true
		}
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}
		ids = append(ids, id)

		return limit <= 0 || len(ids) < limit
	})

	return ids
}

// looksNotFound recognises the storefront's 404 page, needed when the
// browser fetcher cannot surface HTTP status codes.
func looksNotFound(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").First().Text())
	if strings.Contains(title, "not found") {
		return true
	}
	body := doc.Find("body").First().Text()
	return strings.Contains(body, "the requested URL was not found on this server")
}
