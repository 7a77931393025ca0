package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outfit represents one generated outfit delivered to a user
type Outfit struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"user_id"`
	Summary      string             `bson:"summary" json:"summary"`
	Prompt       string             `bson:"prompt" json:"prompt"`
	GarmentKeys  []string           `bson:"garment_keys" json:"garment_keys"`
	ImageKey     string             `bson:"image_key,omitempty" json:"image_key,omitempty"`     // S3 key when bytes were produced
	ImageURL     string             `bson:"image_url,omitempty" json:"image_url,omitempty"`     // provider URL when only a link came back
	MissingItems []string           `bson:"missing_items,omitempty" json:"missing_items,omitempty"`
	Status       string             `bson:"status" json:"status"` // "completed" or "no_image"
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
