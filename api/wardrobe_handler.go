package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fitly-app/stylist/models"
	"github.com/fitly-app/stylist/scrapers"
	"github.com/fitly-app/stylist/stylist"
	"github.com/fitly-app/stylist/utils"
)

// ImportRequest is the body of a wardrobe import call.
type ImportRequest struct {
	URL string `json:"url"`
}

// ImportResponse reports what was imported and whether a category is still needed.
type ImportResponse struct {
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Stage    string   `json:"stage"`
	Choices  []string `json:"choices,omitempty"`
}

// ImportGarmentHandler scrapes a shop product page and files the garment
// into the user's wardrobe. When the category cannot be derived from the
// product title, the garment is parked as the pending item and the user is
// asked to pick a category, same as with a direct photo upload.
func ImportGarmentHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Wardrobe Import API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "url is required", http.StatusBadRequest)
		return
	}

	scraper, resolvedURL, err := scrapers.GetScraper(req.URL)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Cannot handle this URL: %v", err), http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Scraping %s for UserID=%s", resolvedURL, userID))

	page, err := scraper.ScrapeGarment(resolvedURL)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to read the product page: %v", err), http.StatusBadGateway)
		return
	}

	imageData, _, err := utils.DownloadImage(page.ImageURL)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Failed to download product image: %v", err), http.StatusBadGateway)
		return
	}

	key, err := media.SaveGarment(r.Context(), userID, imageData)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to store garment image", http.StatusInternalServerError)
		return
	}

	garment := models.Garment{Key: key, Label: page.Title, AddedAt: time.Now()}
	category := categoryFromTitle(page.Title)

	response := ImportResponse{Title: page.Title, Category: category}
	err = profiles.WithLock(userID, func() error {
		profile, err := profiles.Load(r.Context(), userID)
		if err != nil {
			return err
		}
		if category != "" {
			if err := profiles.AddGarment(r.Context(), profile, category, garment); err != nil {
				return err
			}
			response.Stage = profile.Stage
			return nil
		}
		if err := profiles.SetPendingItem(r.Context(), profile, &garment); err != nil {
			return err
		}
		if err := machine.Set(r.Context(), profile, stylist.StageAwaitingCategory); err != nil {
			return err
		}
		response.Stage = profile.Stage
		response.Choices = stylist.CategoryChoices()
		return nil
	})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to update wardrobe", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Imported %q, category=%q", page.Title, category))
	utils.RespondJSON(w, http.StatusOK, response)
}

// categoryFromTitle tries the category normaliser on each word of the
// product title.
func categoryFromTitle(title string) string {
	for _, word := range strings.Fields(title) {
		if category, ok := stylist.NormalizeCategory(word); ok {
			return category
		}
	}
	return ""
}
