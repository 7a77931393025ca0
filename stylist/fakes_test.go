package stylist

import (
	"context"
	"fmt"

	"github.com/fitly-app/stylist/aitunnel"
	"github.com/fitly-app/stylist/models"
)

// fakeStore is an in-memory ProfileStore for tests.
type fakeStore struct {
	profiles map[string]*models.Profile
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[string]*models.Profile{}}
}

func (s *fakeStore) Load(ctx context.Context, userID string) (*models.Profile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	p := models.NewProfile(userID)
	s.profiles[userID] = p
	return p, nil
}

func (s *fakeStore) Save(ctx context.Context, p *models.Profile) error {
	s.saves++
	s.profiles[p.UserID] = p
	return nil
}

func (s *fakeStore) SetStage(ctx context.Context, p *models.Profile, stage string) error {
	p.Stage = stage
	return s.Save(ctx, p)
}

func (s *fakeStore) SetSelfie(ctx context.Context, p *models.Profile, key string) error {
	p.SelfieKey = key
	return s.Save(ctx, p)
}

func (s *fakeStore) SetPendingItem(ctx context.Context, p *models.Profile, g *models.Garment) error {
	p.PendingItem = g
	return s.Save(ctx, p)
}

func (s *fakeStore) AddGarment(ctx context.Context, p *models.Profile, category string, g models.Garment) error {
	if !p.Wardrobe.Add(category, g) {
		return fmt.Errorf("unknown wardrobe category: %s", category)
	}
	return s.Save(ctx, p)
}

func (s *fakeStore) UpdatePreferences(ctx context.Context, p *models.Profile, prefs models.Preferences) error {
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

func (s *fakeStore) MergeDailyContext(ctx context.Context, p *models.Profile, dcx models.DailyContext) error {
	p.DailyContext.Merge(dcx)
	return s.Save(ctx, p)
}

func (s *fakeStore) AddFeedback(ctx context.Context, p *models.Profile, entry models.FeedbackEntry) error {
	p.FeedbackHistory = append(p.FeedbackHistory, entry)
	return s.Save(ctx, p)
}

func (s *fakeStore) Reset(ctx context.Context, userID string) (*models.Profile, error) {
	p := models.NewProfile(userID)
	s.profiles[userID] = p
	return p, nil
}

// fakeMedia records uploads and presigns keys with a fixed prefix.
type fakeMedia struct {
	selfies  int
	garments int
}

func (m *fakeMedia) SaveSelfie(ctx context.Context, userID string, data []byte) (string, error) {
	m.selfies++
	return fmt.Sprintf("selfies/%s/%d.jpg", userID, m.selfies), nil
}

func (m *fakeMedia) SaveGarment(ctx context.Context, userID string, data []byte) (string, error) {
	m.garments++
	return fmt.Sprintf("garments/%s/%d.jpg", userID, m.garments), nil
}

func (m *fakeMedia) PresignURL(ctx context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

// fakeRecommender returns a canned recommendation and counts calls.
type fakeRecommender struct {
	calls int
	rec   *aitunnel.Recommendation
	err   error
}

func (r *fakeRecommender) PlanOutfit(ctx context.Context, req aitunnel.OutfitRequest) (*aitunnel.Recommendation, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.rec, nil
}

// fakeExtractor returns canned preferences and counts calls.
type fakeExtractor struct {
	calls int
	prefs *aitunnel.StylePreferences
	err   error
}

func (e *fakeExtractor) ExtractPreferences(ctx context.Context, text string) (*aitunnel.StylePreferences, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.prefs, nil
}

// fakeImages returns a canned image result and records the last request.
type fakeImages struct {
	calls   int
	lastReq aitunnel.ImageRequest
	result  *aitunnel.ImageResult
	err     error
}

func (i *fakeImages) GenerateOutfitImage(ctx context.Context, req aitunnel.ImageRequest) (*aitunnel.ImageResult, error) {
	i.calls++
	i.lastReq = req
	if i.err != nil {
		return nil, i.err
	}
	if i.result != nil {
		return i.result, nil
	}
	return &aitunnel.ImageResult{ImageBytes: []byte("png"), PromptUsed: req.Instructions}, nil
}

// fakeLabeler labels every garment with a fixed string.
type fakeLabeler struct {
	label string
	err   error
}

func (l *fakeLabeler) LabelGarment(ctx context.Context, imageData []byte) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return l.label, nil
}
