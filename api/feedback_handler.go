package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fitly-app/stylist/models"
	"github.com/fitly-app/stylist/utils"
	"go.mongodb.org/mongo-driver/bson"
)

// FeedbackRequest is the body of an outfit feedback call.
type FeedbackRequest struct {
	Sentiment string `json:"sentiment"`
	Note      string `json:"note,omitempty"`
}

// FeedbackHandler records the user's reaction to a recommendation. The entry
// lands in the profile's feedback history and, for analytics, in the
// feedbacks collection.
func FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Feedback API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	sentiment := strings.ToLower(strings.TrimSpace(req.Sentiment))
	if sentiment != "positive" && sentiment != "negative" {
		utils.RespondError(w, &logMessageBuilder, "sentiment must be positive or negative", http.StatusBadRequest)
		return
	}

	entry := models.FeedbackEntry{Sentiment: sentiment, Note: req.Note, Timestamp: time.Now()}
	err = profiles.WithLock(userID, func() error {
		profile, err := profiles.Load(r.Context(), userID)
		if err != nil {
			return err
		}
		return profiles.AddFeedback(r.Context(), profile, entry)
	})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to record feedback", http.StatusInternalServerError)
		return
	}

	feedbackCollection := utils.GetCollection("feedbacks")
	_, err = feedbackCollection.InsertOne(r.Context(), bson.M{
		"user_id":    userID,
		"sentiment":  sentiment,
		"note":       req.Note,
		"created_at": entry.Timestamp,
	})
	if err != nil {
		// Profile already holds the entry; the analytics copy is best effort.
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to insert feedback record: %v", err))
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Recorded %s feedback for UserID=%s", sentiment, userID))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Thanks, noted!"})
}
