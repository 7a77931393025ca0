package stylist

import (
	"context"

	"github.com/fitly-app/stylist/aitunnel"
	"github.com/fitly-app/stylist/models"
)

// ProfileStore persists user profiles. Mutating methods write through; the
// stylist core never batches writes.
type ProfileStore interface {
	Load(ctx context.Context, userID string) (*models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	SetStage(ctx context.Context, p *models.Profile, stage string) error
	SetSelfie(ctx context.Context, p *models.Profile, key string) error
	SetPendingItem(ctx context.Context, p *models.Profile, g *models.Garment) error
	AddGarment(ctx context.Context, p *models.Profile, category string, g models.Garment) error
	UpdatePreferences(ctx context.Context, p *models.Profile, prefs models.Preferences) error
	MergeDailyContext(ctx context.Context, p *models.Profile, dcx models.DailyContext) error
	AddFeedback(ctx context.Context, p *models.Profile, entry models.FeedbackEntry) error
	Reset(ctx context.Context, userID string) (*models.Profile, error)
}

// MediaStore stores image binaries and resolves stored keys to fetchable URLs.
type MediaStore interface {
	SaveSelfie(ctx context.Context, userID string, data []byte) (string, error)
	SaveGarment(ctx context.Context, userID string, data []byte) (string, error)
	PresignURL(ctx context.Context, key string) (string, error)
}

// Recommender asks a chat model to pick an outfit from the wardrobe.
type Recommender interface {
	PlanOutfit(ctx context.Context, req aitunnel.OutfitRequest) (*aitunnel.Recommendation, error)
}

// PreferenceExtractor classifies a free-text style description.
type PreferenceExtractor interface {
	ExtractPreferences(ctx context.Context, text string) (*aitunnel.StylePreferences, error)
}

// ImageGenerator renders the outfit image.
type ImageGenerator interface {
	GenerateOutfitImage(ctx context.Context, req aitunnel.ImageRequest) (*aitunnel.ImageResult, error)
}

// Labeler produces a short label for a garment photo. Optional; label
// failures are never fatal.
type Labeler interface {
	LabelGarment(ctx context.Context, imageData []byte) (string, error)
}

// UserError is a failure with a message safe to show to the end user.
// Raw transport and parsing errors stay wrapped inside.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Precondition errors: detected locally, no remote call is attempted.
var (
	ErrNoSelfie      = &UserError{Message: "Please upload a selfie first."}
	ErrEmptyWardrobe = &UserError{Message: "Your wardrobe is empty. Add a few garments first."}
)
