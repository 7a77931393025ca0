package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fitly-app/stylist/models"
	"github.com/fitly-app/stylist/stylist"
	"github.com/fitly-app/stylist/utils"
)

// ChatReply is the JSON shape of a conversation turn.
type ChatReply struct {
	Reply    string   `json:"reply"`
	Stage    string   `json:"stage"`
	Choices  []string `json:"choices,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// ChatMessageHandler is the conversational entry point. It accepts a
// multipart form with an optional "text" field and an optional "photo" file
// and routes the message through the stage machine.
func ChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Chat Message API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Error parsing form data", http.StatusBadRequest)
		return
	}

	in := stylist.Incoming{Text: r.FormValue("text")}

	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo, err := io.ReadAll(file)
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, "Error reading photo", http.StatusBadRequest)
			return
		}
		in.Photo = photo
	}

	if in.Text == "" && len(in.Photo) == 0 {
		utils.RespondError(w, &logMessageBuilder, "Send a text message or a photo", http.StatusBadRequest)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("UserID=%s, text_len=%d, photo_bytes=%d", userID, len(in.Text), len(in.Photo)))

	var reply *stylist.Reply
	err = profiles.WithLock(userID, func() error {
		profile, err := profiles.Load(r.Context(), userID)
		if err != nil {
			return err
		}
		reply, err = dispatcher.HandleMessage(r.Context(), profile, in)
		return err
	})
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Dispatch failed: %v", err))
		respondPipelineError(w, &logMessageBuilder, err)
		return
	}

	response := ChatReply{
		Reply:   reply.Text,
		Stage:   string(reply.Stage),
		Choices: reply.Choices,
	}
	if reply.Outfit != nil {
		response.Summary = reply.Outfit.Summary
		imageURL, err := deliverOutfit(r, userID, reply.Outfit, &logMessageBuilder)
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to store outfit: %v", err))
		}
		response.ImageURL = imageURL
	}

	utils.RespondJSON(w, http.StatusOK, response)
}

// ChatResetHandler clears the user's profile back to the initial stage.
func ChatResetHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Chat Reset API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var profile *models.Profile
	err = profiles.WithLock(userID, func() error {
		var resetErr error
		profile, resetErr = profiles.Reset(r.Context(), userID)
		return resetErr
	})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to reset profile", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Profile reset for UserID=%s", userID))
	utils.RespondJSON(w, http.StatusOK, ChatReply{
		Reply: "Everything is cleared. Send a selfie to start over.",
		Stage: profile.Stage,
	})
}
