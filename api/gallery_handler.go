package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fitly-app/stylist/models"
	"github.com/fitly-app/stylist/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GalleryResponse represents the response structure for the gallery API
type GalleryResponse struct {
	Outfits     []models.Outfit `json:"outfits"`
	Total       int64           `json:"total"`
	CurrentPage int             `json:"current_page"`
	TotalPages  int             `json:"total_pages"`
}

// GalleryHandler lists the user's generated outfits, latest first.
func GalleryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := 1
	limit := 10
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	collection := utils.GetCollection("outfits")
	filter := bson.M{"user_id": userID, "status": "completed"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		http.Error(w, "Failed to fetch data", http.StatusInternalServerError)
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}}) // Show latest first
	findOptions.SetSkip(int64((page - 1) * limit))
	findOptions.SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		http.Error(w, "Failed to fetch data", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var outfits []models.Outfit
	if err := cursor.All(ctx, &outfits); err != nil {
		http.Error(w, "Failed to decode data", http.StatusInternalServerError)
		return
	}

	// Resolve stored keys to presigned URLs for rendering.
	for i := range outfits {
		if outfits[i].ImageKey == "" {
			continue
		}
		if url, err := utils.GetPresignedURL(r.Context(), outfits[i].ImageKey); err == nil {
			outfits[i].ImageURL = url
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	utils.RespondJSON(w, http.StatusOK, GalleryResponse{
		Outfits:     outfits,
		Total:       total,
		CurrentPage: page,
		TotalPages:  totalPages,
	})
}
