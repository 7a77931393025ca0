package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fitly-app/stylist/models"
	"github.com/fitly-app/stylist/stylist"
	"github.com/fitly-app/stylist/utils"
)

// StyleRequest carries a free-form style description.
type StyleRequest struct {
	Text string `json:"text"`
}

// StyleResponse returns the stored preferences after extraction.
type StyleResponse struct {
	Preferences models.Preferences `json:"preferences"`
	Stage       string             `json:"stage"`
}

// StyleHandler submits style preferences directly, outside the chat flow.
// The text goes through the same extraction pipeline as the
// awaiting_preferences chat stage, and a successful update moves the
// profile to ready.
func StyleHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Style API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req StyleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, &logMessageBuilder, "text is required", http.StatusBadRequest)
		return
	}

	var response StyleResponse
	err = profiles.WithLock(userID, func() error {
		profile, err := profiles.Load(r.Context(), userID)
		if err != nil {
			return err
		}
		prefs, err := logic.UpdatePreferences(r.Context(), profile, req.Text)
		if err != nil {
			return err
		}
		if err := machine.Set(r.Context(), profile, stylist.StageReady); err != nil {
			return err
		}
		response.Preferences = *prefs
		response.Stage = profile.Stage
		return nil
	})
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to update preferences: %v", err))
		respondPipelineError(w, &logMessageBuilder, err)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Updated preferences for UserID=%s", userID))
	utils.RespondJSON(w, http.StatusOK, response)
}
