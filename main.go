package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/fitly-app/stylist/aitunnel"
	"github.com/fitly-app/stylist/api"
	"github.com/fitly-app/stylist/config"
	"github.com/fitly-app/stylist/storage"
	"github.com/fitly-app/stylist/stylist"
	"github.com/fitly-app/stylist/utils"
	"github.com/fitly-app/stylist/vision"
)

func main() {
	config.LoadConfig()

	// Initialize MongoDB
	if err := utils.ConnectMongo(config.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// S3 is initialised lazily on first use; a failed eager init is only a warning.
	if err := utils.InitS3(); err != nil {
		log.Printf("S3 init deferred: %v", err)
	}

	client := aitunnel.NewClient(config.AITunnelBaseURL, config.AITunnelAPIKey, config.RequestTimeout)
	client.ChatModel = config.AITunnelChatModel
	client.ImageModel = config.AITunnelImageModel

	var labeler stylist.Labeler
	if config.GeminiAPIKey != "" {
		labeler = vision.NewLabeler(config.GeminiAPIKey, config.LabelerModel)
	} else {
		log.Println("GEMINI_API_KEY not set, garment labeling disabled")
	}

	profiles := storage.NewProfileStore(utils.GetCollection("profiles"))
	media := storage.NewMediaStore()
	machine := stylist.NewStateMachine(profiles)
	logic := stylist.NewLogic(profiles, media, client, client, client)
	dispatcher := stylist.NewDispatcher(profiles, machine, logic, media, labeler)

	api.Setup(profiles, media, dispatcher, machine, logic)

	// CORS Middleware
	corsMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Auth Routes
	http.HandleFunc("/auth/signup", corsMiddleware(api.SignupHandler))
	http.HandleFunc("/auth/verify-otp", corsMiddleware(api.VerifyOTPHandler))
	http.HandleFunc("/auth/login", corsMiddleware(api.LoginHandler))

	// Stylist Routes
	http.HandleFunc("/chat/message", corsMiddleware(api.AuthMiddleware(api.ChatMessageHandler)))
	http.HandleFunc("/chat/reset", corsMiddleware(api.AuthMiddleware(api.ChatResetHandler)))
	http.HandleFunc("/outfit/today", corsMiddleware(api.AuthMiddleware(api.OutfitTodayHandler)))
	http.HandleFunc("/style", corsMiddleware(api.AuthMiddleware(api.StyleHandler)))
	http.HandleFunc("/wardrobe/import", corsMiddleware(api.AuthMiddleware(api.ImportGarmentHandler)))
	http.HandleFunc("/feedback", corsMiddleware(api.AuthMiddleware(api.FeedbackHandler)))
	http.HandleFunc("/gallery", corsMiddleware(api.AuthMiddleware(api.GalleryHandler)))

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	port := config.Port
	fmt.Printf("Server starting on port %s...\n", port)
	if err := http.ListenAndServe(":"+port, utils.LatencyMiddleware(http.DefaultServeMux)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
