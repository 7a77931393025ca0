package stylist

import (
	"context"
	"testing"

	"github.com/fitly-app/stylist/aitunnel"
	"github.com/fitly-app/stylist/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(store *fakeStore, rec *fakeRecommender, extractor *fakeExtractor, images *fakeImages, labeler Labeler) *Dispatcher {
	media := &fakeMedia{}
	machine := NewStateMachine(store)
	logic := NewLogic(store, media, rec, extractor, images)
	return NewDispatcher(store, machine, logic, media, labeler)
}

func defaultRecommendation() *aitunnel.Recommendation {
	return &aitunnel.Recommendation{
		SuggestedOutfit: []aitunnel.OutfitPick{{ItemReference: "t1"}},
		NaturalText:     "A look.",
	}
}

func TestOnboardingFlow(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{rec: defaultRecommendation()}, &fakeExtractor{
		prefs: &aitunnel.StylePreferences{StyleTags: []string{"casual"}},
	}, &fakeImages{}, &fakeLabeler{label: "white tee"})
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)

	// Text before the selfie just re-prompts.
	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingSelfie, reply.Stage)

	// Selfie photo moves to garment collection.
	reply, err = d.HandleMessage(ctx, p, Incoming{Photo: []byte("selfie")})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingGarment, reply.Stage)
	assert.NotEmpty(t, p.SelfieKey)

	// Garment photo parks a labeled pending item and asks for a category.
	reply, err = d.HandleMessage(ctx, p, Incoming{Photo: []byte("garment")})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingCategory, reply.Stage)
	assert.Equal(t, CategoryChoices(), reply.Choices)
	require.NotNil(t, p.PendingItem)
	assert.Equal(t, "white tee", p.PendingItem.Label)

	// Category answer files the garment and clears the pending item.
	reply, err = d.HandleMessage(ctx, p, Incoming{Text: "t-shirt"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingGarment, reply.Stage)
	assert.Nil(t, p.PendingItem)
	assert.Equal(t, 1, len(p.Wardrobe.Top))
}

func TestUnknownCategoryReprompts(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageAwaitingCategory)
	p.PendingItem = &models.Garment{Key: "g1"}

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "spaceship"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingCategory, reply.Stage)
	assert.Equal(t, CategoryChoices(), reply.Choices)
	assert.NotNil(t, p.PendingItem)
}

func TestCategoryWithoutPendingItemRecovers(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageAwaitingCategory)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "top"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingGarment, reply.Stage)
	assert.Equal(t, 0, p.Wardrobe.Count())
}

// A user whose preferences are already set goes straight back to ready after
// filing a garment.
func TestCategorySkipsToReadyWhenPreferencesSet(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageAwaitingCategory)
	p.PendingItem = &models.Garment{Key: "g1"}
	p.Preferences.StyleTags = []string{"casual"}

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "jeans"})
	require.NoError(t, err)
	assert.Equal(t, StageReady, reply.Stage)
}

func TestPreferencesStage(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{prefs: &aitunnel.StylePreferences{Notes: "minimal"}}
	d := newTestDispatcher(store, &fakeRecommender{}, extractor, &fakeImages{}, nil)
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageAwaitingPreferences)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "minimal, lots of black"})
	require.NoError(t, err)
	assert.Equal(t, StageReady, reply.Stage)
	assert.Equal(t, "minimal", p.Preferences.Notes)
}

// A preference-extraction failure stays in the same stage and surfaces the
// user-facing message instead of an error.
func TestPreferencesExtractionFailureKeepsStage(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{err: aitunnel.ErrMalformedPreferences}
	d := newTestDispatcher(store, &fakeRecommender{}, extractor, &fakeImages{}, nil)
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageAwaitingPreferences)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "???"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingPreferences, reply.Stage)
	assert.Contains(t, reply.Text, "Could not read your style preferences")
}

func TestDailyContextBuildsOutfit(t *testing.T) {
	store := newFakeStore()
	images := &fakeImages{}
	d := newTestDispatcher(store, &fakeRecommender{rec: defaultRecommendation()}, &fakeExtractor{}, images, nil)
	ctx := context.Background()

	p := readyProfile(t, store)
	p.Stage = string(StageAwaitingDailyContext)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "dinner, warm evening"})
	require.NoError(t, err)
	assert.Equal(t, StageReady, reply.Stage)
	require.NotNil(t, reply.Outfit)
	assert.Equal(t, "A look.", reply.Outfit.Summary)
	assert.Equal(t, "dinner, warm evening", p.DailyContext.Notes)
	assert.Equal(t, 1, images.calls)
}

func TestDailyContextNoImageAppendsNotice(t *testing.T) {
	store := newFakeStore()
	images := &fakeImages{result: &aitunnel.ImageResult{ErrorCode: aitunnel.ErrCodeNoImagesGenerated}}
	d := newTestDispatcher(store, &fakeRecommender{rec: defaultRecommendation()}, &fakeExtractor{}, images, nil)
	ctx := context.Background()

	p := readyProfile(t, store)
	p.Stage = string(StageAwaitingDailyContext)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "office"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "No image is available this time")
	assert.Equal(t, StageReady, reply.Stage)
}

func TestDailyContextFailureKeepsStage(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{err: aitunnel.ErrMalformedRecommendation}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	p := readyProfile(t, store)
	p.Stage = string(StageAwaitingDailyContext)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "office"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingDailyContext, reply.Stage)
	assert.Contains(t, reply.Text, "invalid response")
}

func TestReadyStageIntents(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	tests := []struct {
		text      string
		wantStage Stage
	}{
		{"give me an outfit", StageAwaitingDailyContext},
		{"I want to add clothes", StageAwaitingGarment},
		{"update my style", StageAwaitingPreferences},
		{"tell me a joke", StageReady},
	}
	for _, tc := range tests {
		p, err := store.Load(ctx, "u-"+tc.text)
		require.NoError(t, err)
		p.Stage = string(StageReady)

		reply, err := d.HandleMessage(ctx, p, Incoming{Text: tc.text})
		require.NoError(t, err)
		assert.Equal(t, tc.wantStage, reply.Stage, "text %q", tc.text)
	}
}

func TestReadyStageFeedback(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageReady)

	_, err = d.HandleMessage(ctx, p, Incoming{Text: "I love this look"})
	require.NoError(t, err)
	_, err = d.HandleMessage(ctx, p, Incoming{Text: "I dont like the shoes"})
	require.NoError(t, err)

	require.Len(t, p.FeedbackHistory, 2)
	assert.Equal(t, "positive", p.FeedbackHistory[0].Sentiment)
	assert.Equal(t, "I love this look", p.FeedbackHistory[0].Note)
	assert.Equal(t, "negative", p.FeedbackHistory[1].Sentiment)
	assert.Equal(t, "I dont like the shoes", p.FeedbackHistory[1].Note)
}

// The reset command works from chat text too, not just the HTTP endpoint.
func TestReadyStageResetClearsEverything(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{}, nil)
	ctx := context.Background()

	p := readyProfile(t, store)

	reply, err := d.HandleMessage(ctx, p, Incoming{Text: "reset everything please"})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingSelfie, reply.Stage)

	assert.Equal(t, StageAwaitingSelfie, ParseStage(p.Stage))
	assert.Empty(t, p.SelfieKey)
	assert.True(t, p.Wardrobe.IsEmpty())

	reloaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, reloaded.Wardrobe.IsEmpty())
	assert.Equal(t, StageAwaitingSelfie, ParseStage(reloaded.Stage))
}

func TestResetClearsProfile(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	p := readyProfile(t, store)
	p.PendingItem = &models.Garment{Key: "g1"}
	p.Preferences.Notes = "minimal"
	require.NoError(t, store.Save(ctx, p))

	_, err := store.Reset(ctx, "u1")
	require.NoError(t, err)

	reloaded, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingSelfie, ParseStage(reloaded.Stage))
	assert.Empty(t, reloaded.SelfieKey)
	assert.True(t, reloaded.Wardrobe.IsEmpty())
	assert.Nil(t, reloaded.PendingItem)
	assert.False(t, reloaded.Preferences.IsSet())
	assert.Equal(t, "u1", reloaded.UserID)
}

// Labeler failures are ignored; the garment is still parked for a category.
func TestGarmentPhotoWithFailingLabeler(t *testing.T) {
	store := newFakeStore()
	d := newTestDispatcher(store, &fakeRecommender{}, &fakeExtractor{}, &fakeImages{},
		&fakeLabeler{err: assert.AnError})
	ctx := context.Background()

	p, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	p.Stage = string(StageAwaitingGarment)

	reply, err := d.HandleMessage(ctx, p, Incoming{Photo: []byte("garment")})
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingCategory, reply.Stage)
	require.NotNil(t, p.PendingItem)
	assert.Empty(t, p.PendingItem.Label)
}
