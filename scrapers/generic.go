package scrapers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// GenericScraper reads Open Graph / Twitter card metadata, which most shop
// pages carry in their static HTML. JS-rendered shops that expose nothing in
// the initial document are out of scope.
type GenericScraper struct {
	client *http.Client
}

func NewGenericScraper() *GenericScraper {
	return &GenericScraper{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *GenericScraper) CanScrape(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func (s *GenericScraper) ScrapeGarment(url string) (*GarmentPage, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page, status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %v", err)
	}

	page := &GarmentPage{
		Title:    metaContent(doc, `meta[property="og:title"]`, `meta[name="twitter:title"]`),
		ImageURL: metaContent(doc, `meta[property="og:image"]`, `meta[name="twitter:image"]`),
	}

	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if page.ImageURL == "" {
		return nil, fmt.Errorf("no product image found on page")
	}
	return page, nil
}

// metaContent returns the first non-empty content attribute among the selectors.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
