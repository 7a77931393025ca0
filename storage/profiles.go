// Package storage persists stylist profiles and generated outfits in MongoDB
// and user images in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fitly-app/stylist/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileStore is the Mongo-backed profile repository. All mutations of one
// user's profile are serialised through a per-user mutex so that concurrent
// messages cannot interleave conflicting writes.
type ProfileStore struct {
	col *mongo.Collection

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProfileStore wraps the given collection.
func NewProfileStore(col *mongo.Collection) *ProfileStore {
	return &ProfileStore{col: col, locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex serialising one user's mutations, creating it
// lazily. Entries are never evicted; see DESIGN.md.
func (s *ProfileStore) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// WithLock runs fn while holding the user's exclusive section.
func (s *ProfileStore) WithLock(userID string, fn func() error) error {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// Load returns the user's profile, creating a fresh one on first contact.
// Records persisted by older versions may miss optional fields; bson
// decoding leaves them at their defaults rather than failing.
func (s *ProfileStore) Load(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	fresh := models.NewProfile(userID)
	if err := s.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Save upserts the profile and refreshes its modification timestamp.
func (s *ProfileStore) Save(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"user_id": p.UserID}, p, opts)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// SetStage updates the conversational stage and persists immediately.
func (s *ProfileStore) SetStage(ctx context.Context, p *models.Profile, stage string) error {
	p.Stage = stage
	return s.Save(ctx, p)
}

// SetSelfie stores the selfie object key.
func (s *ProfileStore) SetSelfie(ctx context.Context, p *models.Profile, key string) error {
	p.SelfieKey = key
	return s.Save(ctx, p)
}

// SetPendingItem stores (or clears, with nil) the garment awaiting a category.
func (s *ProfileStore) SetPendingItem(ctx context.Context, p *models.Profile, g *models.Garment) error {
	p.PendingItem = g
	return s.Save(ctx, p)
}

// AddGarment files a garment under its canonical category.
func (s *ProfileStore) AddGarment(ctx context.Context, p *models.Profile, category string, g models.Garment) error {
	if !p.Wardrobe.Add(category, g) {
		return fmt.Errorf("unknown wardrobe category: %s", category)
	}
	return s.Save(ctx, p)
}

// UpdatePreferences merges the extracted preferences into the profile.
// Non-empty incoming fields win; empty ones keep the stored value.
func (s *ProfileStore) UpdatePreferences(ctx context.Context, p *models.Profile, prefs models.Preferences) error {
	if len(prefs.StyleTags) > 0 {
		p.Preferences.StyleTags = prefs.StyleTags
	}
	if len(prefs.Colors) > 0 {
		p.Preferences.Colors = prefs.Colors
	}
	if len(prefs.BrandRefs) > 0 {
		p.Preferences.BrandRefs = prefs.BrandRefs
	}
	if prefs.Notes != "" {
		p.Preferences.Notes = prefs.Notes
	}
	return s.Save(ctx, p)
}

// MergeDailyContext overlays today's request context.
func (s *ProfileStore) MergeDailyContext(ctx context.Context, p *models.Profile, dcx models.DailyContext) error {
	p.DailyContext.Merge(dcx)
	return s.Save(ctx, p)
}

// AddFeedback appends one feedback entry.
func (s *ProfileStore) AddFeedback(ctx context.Context, p *models.Profile, entry models.FeedbackEntry) error {
	p.FeedbackHistory = append(p.FeedbackHistory, entry)
	return s.Save(ctx, p)
}

// Reset clears the profile back to its initial state, keeping the user id.
// Stored S3 objects are left to bucket lifecycle rules.
func (s *ProfileStore) Reset(ctx context.Context, userID string) (*models.Profile, error) {
	fresh := models.NewProfile(userID)
	if err := s.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}
