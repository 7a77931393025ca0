// Package scrapers extracts garment data from shop product pages for
// wardrobe import.
package scrapers

import (
	"fmt"

	"github.com/fitly-app/stylist/utils"
)

// GarmentPage is what a product page yields for wardrobe import.
type GarmentPage struct {
	Title    string
	ImageURL string
}

// Scraper defines the interface for all product-page scrapers
type Scraper interface {
	// CanScrape checks if the scraper can handle the given URL
	CanScrape(url string) bool
	// ScrapeGarment extracts the garment title and image from the page
	ScrapeGarment(url string) (*GarmentPage, error)
}

// GetScraper returns the appropriate scraper and the resolved URL
func GetScraper(url string) (Scraper, string, error) {
	// Resolve shortened URLs (e.g. amzn.in, bit.ly)
	resolvedURL, err := utils.ResolveShortenedURL(url)
	if err != nil {
		return nil, url, fmt.Errorf("error resolving url: %v", err)
	}

	// Register scrapers here; the generic one must stay last.
	all := []Scraper{
		NewGenericScraper(),
	}

	for _, s := range all {
		if s.CanScrape(resolvedURL) {
			return s, resolvedURL, nil
		}
	}

	return nil, resolvedURL, fmt.Errorf("no scraper found for url: %s", resolvedURL)
}
