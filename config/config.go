package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	MongoURI string
	DBName   string
	Port     string

	AITunnelBaseURL    string
	AITunnelAPIKey     string
	AITunnelChatModel  string
	AITunnelImageModel string
	RequestTimeout     time.Duration

	GeminiAPIKey string
	LabelerModel string

	AWSRegion     string
	AWSBucketName string

	JWTSecret      string
	SendGridAPIKey string
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	MongoURI = os.Getenv("MONGO_URI")
	if MongoURI == "" {
		MongoURI = "mongodb://localhost:27017/"
	}

	DBName = os.Getenv("DB_NAME")
	if DBName == "" {
		DBName = "stylist"
	}

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "8080"
	}

	AITunnelBaseURL = os.Getenv("AITUNNEL_BASE_URL")
	if AITunnelBaseURL == "" {
		AITunnelBaseURL = "https://api.aitunnel.ru/v1"
	}
	AITunnelAPIKey = os.Getenv("AITUNNEL_API_KEY")

	AITunnelChatModel = os.Getenv("AITUNNEL_CHAT_MODEL")
	if AITunnelChatModel == "" {
		AITunnelChatModel = "gpt-4o-mini"
	}
	AITunnelImageModel = os.Getenv("AITUNNEL_IMAGE_MODEL")
	if AITunnelImageModel == "" {
		AITunnelImageModel = "gpt-image-1"
	}

	timeoutStr := os.Getenv("REQUEST_TIMEOUT_SECONDS")
	timeoutSec, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutSec <= 0 {
		timeoutSec = 120
	}
	RequestTimeout = time.Duration(timeoutSec) * time.Second

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	LabelerModel = os.Getenv("LABELER_MODEL")
	if LabelerModel == "" {
		LabelerModel = "gemini-1.5-flash"
	}

	AWSRegion = os.Getenv("AWS_REGION")
	if AWSRegion == "" {
		AWSRegion = "ap-south-1"
	}
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")
	if AWSBucketName == "" {
		AWSBucketName = "stylist-images"
	}

	JWTSecret = os.Getenv("JWT_SECRET")
	SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
}
