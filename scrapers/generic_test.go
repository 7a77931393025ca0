package scrapers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeGarmentOpenGraph(t *testing.T) {
	srv := pageServer(t, `<html><head>
		<meta property="og:title" content="Linen Shirt - White" />
		<meta property="og:image" content="https://shop.test/img/shirt.jpg" />
	</head><body><h1>ignored</h1></body></html>`)

	page, err := NewGenericScraper().ScrapeGarment(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt - White", page.Title)
	assert.Equal(t, "https://shop.test/img/shirt.jpg", page.ImageURL)
}

func TestScrapeGarmentTwitterFallback(t *testing.T) {
	srv := pageServer(t, `<html><head>
		<meta name="twitter:title" content="Wool Coat" />
		<meta name="twitter:image" content="https://shop.test/img/coat.jpg" />
	</head><body></body></html>`)

	page, err := NewGenericScraper().ScrapeGarment(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Wool Coat", page.Title)
	assert.Equal(t, "https://shop.test/img/coat.jpg", page.ImageURL)
}

func TestScrapeGarmentH1TitleFallback(t *testing.T) {
	srv := pageServer(t, `<html><head>
		<meta property="og:image" content="https://shop.test/img/jeans.jpg" />
	</head><body><h1> Raw Denim Jeans </h1></body></html>`)

	page, err := NewGenericScraper().ScrapeGarment(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Raw Denim Jeans", page.Title)
}

func TestScrapeGarmentNoImage(t *testing.T) {
	srv := pageServer(t, `<html><head><title>Some Shop</title></head><body></body></html>`)

	_, err := NewGenericScraper().ScrapeGarment(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no product image found")
}

func TestScrapeGarmentHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewGenericScraper().ScrapeGarment(srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 404")
}

func TestCanScrape(t *testing.T) {
	s := NewGenericScraper()
	assert.True(t, s.CanScrape("https://shop.test/p/1"))
	assert.True(t, s.CanScrape("http://shop.test/p/1"))
	assert.False(t, s.CanScrape("ftp://shop.test/p/1"))
}
