package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fitly-app/stylist/aitunnel"
	"github.com/fitly-app/stylist/models"
	"github.com/fitly-app/stylist/stylist"
	"github.com/fitly-app/stylist/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OutfitRequest is the direct (non-conversational) outfit request body.
type OutfitRequest struct {
	Occasion   string `json:"occasion"`
	StyleToday string `json:"style_today"`
	Weather    string `json:"weather"`
	Notes      string `json:"notes"`
}

// OutfitResponse is the combined result of one outfit build.
type OutfitResponse struct {
	Summary      string   `json:"summary"`
	Reasons      []string `json:"reasons,omitempty"`
	MissingItems []string `json:"missing_items,omitempty"`
	GarmentKeys  []string `json:"garment_keys"`
	ImageURL     string   `json:"image_url,omitempty"`
	NoImage      bool     `json:"no_image,omitempty"`
}

// OutfitTodayHandler runs the full recommendation + generation pipeline for
// the authenticated user.
func OutfitTodayHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Outfit Today API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req OutfitRequest
	if r.Body != nil {
		// An empty body is fine; the stored daily context still applies.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	extra := models.DailyContext{
		Occasion:   req.Occasion,
		StyleToday: req.StyleToday,
		Weather:    req.Weather,
		Notes:      req.Notes,
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Outfit request: UserID=%s", userID))

	var result *stylist.OutfitResult
	err = profiles.WithLock(userID, func() error {
		profile, err := profiles.Load(r.Context(), userID)
		if err != nil {
			return err
		}
		if err := profiles.MergeDailyContext(r.Context(), profile, extra); err != nil {
			return err
		}
		result, err = logic.BuildOutfit(r.Context(), profile, extra)
		if err != nil {
			return err
		}
		return machine.Set(r.Context(), profile, stylist.StageReady)
	})
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Outfit build failed: %v", err))
		respondPipelineError(w, &logMessageBuilder, err)
		return
	}

	imageURL, err := deliverOutfit(r, userID, result, &logMessageBuilder)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to store outfit: %v", err))
		// The recommendation is still worth delivering.
	}

	utils.RespondJSON(w, http.StatusOK, OutfitResponse{
		Summary:      result.Summary,
		Reasons:      result.Recommendation.Reasons,
		MissingItems: result.Recommendation.MissingItems,
		GarmentKeys:  result.SelectedKeys,
		ImageURL:     imageURL,
		NoImage:      imageURL == "",
	})
}

// deliverOutfit persists the generated image (when bytes came back) and the
// outfit record, returning a URL the client can render.
func deliverOutfit(r *http.Request, userID string, result *stylist.OutfitResult, logMessageBuilder *strings.Builder) (string, error) {
	outfit := models.Outfit{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Summary:      result.Summary,
		Prompt:       result.Prompt,
		GarmentKeys:  result.SelectedKeys,
		MissingItems: result.Recommendation.MissingItems,
		Status:       "completed",
		CreatedAt:    time.Now(),
	}

	imageURL := ""
	switch {
	case len(result.ImageBytes) > 0:
		key, err := media.SaveGenerated(r.Context(), userID, result.ImageBytes)
		if err != nil {
			return "", err
		}
		outfit.ImageKey = key
		if url, err := utils.GetPresignedURL(r.Context(), key); err == nil {
			imageURL = url
		} else {
			imageURL = key
		}
	case result.ImageURL != "":
		outfit.ImageURL = result.ImageURL
		imageURL = result.ImageURL
	default:
		outfit.Status = "no_image"
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("No image produced, reason=%s", result.NoImageReason))
	}

	collection := utils.GetCollection("outfits")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.InsertOne(ctx, outfit); err != nil {
		// The response still carries the result even if the record is lost.
		return imageURL, err
	}
	return imageURL, nil
}

// respondPipelineError maps orchestration failures onto HTTP statuses:
// precondition violations are the caller's fault, upstream trouble is not.
func respondPipelineError(w http.ResponseWriter, logMessageBuilder *strings.Builder, err error) {
	var ue *stylist.UserError
	if !errors.As(err, &ue) {
		utils.RespondError(w, logMessageBuilder, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch {
	case ue.Err == nil:
		// Local precondition, no remote call was made.
		utils.RespondError(w, logMessageBuilder, ue.Message, http.StatusBadRequest)
	case aitunnel.IsQuotaError(ue.Err):
		utils.RespondError(w, logMessageBuilder, "Quota exceeded. Please try again later.", http.StatusTooManyRequests)
	default:
		utils.RespondError(w, logMessageBuilder, ue.Message, http.StatusBadGateway)
	}
}
