package stylist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fitly-app/stylist/models"
)

// Incoming is one user message: text, a photo, or both.
type Incoming struct {
	Text  string
	Photo []byte
}

// Reply is what the conversation layer renders back to the user.
type Reply struct {
	Text    string
	Stage   Stage
	Choices []string      // offered when the user must pick a category
	Outfit  *OutfitResult // set when an outfit was produced
}

// Dispatcher routes incoming messages to per-stage handlers. This is where
// transition legality lives: each handler decides what a photo or a text may
// do in the current stage.
type Dispatcher struct {
	store   ProfileStore
	machine *StateMachine
	logic   *Logic
	media   MediaStore
	labeler Labeler // optional
	intents *IntentClassifier
}

// NewDispatcher wires the conversation routing.
func NewDispatcher(store ProfileStore, machine *StateMachine, logic *Logic, media MediaStore, labeler Labeler) *Dispatcher {
	return &Dispatcher{
		store:   store,
		machine: machine,
		logic:   logic,
		media:   media,
		labeler: labeler,
		intents: NewIntentClassifier(),
	}
}

// HandleMessage processes one message for the given profile and returns the
// reply. The caller is responsible for holding the user's lock.
func (d *Dispatcher) HandleMessage(ctx context.Context, p *models.Profile, in Incoming) (*Reply, error) {
	if len(in.Photo) > 0 {
		return d.handlePhoto(ctx, p, in.Photo)
	}
	return d.handleText(ctx, p, strings.TrimSpace(in.Text))
}

func (d *Dispatcher) handlePhoto(ctx context.Context, p *models.Profile, photo []byte) (*Reply, error) {
	if d.machine.Current(p) == StageAwaitingSelfie {
		key, err := d.media.SaveSelfie(ctx, p.UserID, photo)
		if err != nil {
			return nil, err
		}
		if err := d.store.SetSelfie(ctx, p, key); err != nil {
			return nil, err
		}
		if err := d.machine.Set(ctx, p, StageAwaitingGarment); err != nil {
			return nil, err
		}
		return &Reply{
			Text:  "Selfie saved. Now send your wardrobe, one garment photo at a time.",
			Stage: StageAwaitingGarment,
		}, nil
	}

	// Any other stage: the photo is a garment awaiting its category.
	key, err := d.media.SaveGarment(ctx, p.UserID, photo)
	if err != nil {
		return nil, err
	}

	pending := models.Garment{Key: key, AddedAt: time.Now()}
	if d.labeler != nil {
		if label, err := d.labeler.LabelGarment(ctx, photo); err == nil {
			pending.Label = label
		}
	}

	if err := d.store.SetPendingItem(ctx, p, &pending); err != nil {
		return nil, err
	}
	if err := d.machine.Set(ctx, p, StageAwaitingCategory); err != nil {
		return nil, err
	}
	return &Reply{
		Text:    "Got the photo. Which category is this garment?",
		Stage:   StageAwaitingCategory,
		Choices: CategoryChoices(),
	}, nil
}

func (d *Dispatcher) handleText(ctx context.Context, p *models.Profile, text string) (*Reply, error) {
	switch d.machine.Current(p) {
	case StageAwaitingSelfie:
		return &Reply{
			Text:  "Please send a full-body selfie to get started.",
			Stage: StageAwaitingSelfie,
		}, nil

	case StageAwaitingGarment:
		return &Reply{
			Text:  "Send garment photos one by one. When you are done, describe your style to finish onboarding.",
			Stage: StageAwaitingGarment,
		}, nil

	case StageAwaitingCategory:
		return d.handleCategory(ctx, p, text)

	case StageAwaitingPreferences:
		return d.handlePreferences(ctx, p, text)

	case StageAwaitingDailyContext:
		return d.handleDailyContext(ctx, p, text)

	default: // StageReady
		return d.handleReady(ctx, p, text)
	}
}

func (d *Dispatcher) handleCategory(ctx context.Context, p *models.Profile, text string) (*Reply, error) {
	category, ok := NormalizeCategory(text)
	if !ok {
		return &Reply{
			Text:    "I did not recognise that category. Please pick one of the options.",
			Stage:   StageAwaitingCategory,
			Choices: CategoryChoices(),
		}, nil
	}

	if p.PendingItem == nil {
		if err := d.machine.Set(ctx, p, StageAwaitingGarment); err != nil {
			return nil, err
		}
		return &Reply{
			Text:  "There is no photo waiting for a category. Send the next garment.",
			Stage: StageAwaitingGarment,
		}, nil
	}

	garment := *p.PendingItem
	if err := d.store.AddGarment(ctx, p, category, garment); err != nil {
		return nil, err
	}
	if err := d.store.SetPendingItem(ctx, p, nil); err != nil {
		return nil, err
	}

	// Users who already described their style skip straight back to ready.
	next := StageAwaitingGarment
	if p.Preferences.IsSet() {
		next = StageReady
	}
	if err := d.machine.Set(ctx, p, next); err != nil {
		return nil, err
	}

	text = "Saved under \"" + category + "\". Send the next garment, or describe your style preferences to finish."
	if next == StageReady {
		text = "Saved under \"" + category + "\". Ask for an outfit whenever you are ready."
	}
	return &Reply{Text: text, Stage: next}, nil
}

func (d *Dispatcher) handlePreferences(ctx context.Context, p *models.Profile, text string) (*Reply, error) {
	if text == "" {
		return &Reply{
			Text:  "Tell me a few words about the styles, colors, or brands you like.",
			Stage: StageAwaitingPreferences,
		}, nil
	}

	if _, err := d.logic.UpdatePreferences(ctx, p, text); err != nil {
		return d.replyForUserError(err, StageAwaitingPreferences)
	}
	if err := d.machine.Set(ctx, p, StageReady); err != nil {
		return nil, err
	}
	return &Reply{
		Text:  "Preferences saved. Ask me for an outfit whenever you like.",
		Stage: StageReady,
	}, nil
}

func (d *Dispatcher) handleDailyContext(ctx context.Context, p *models.Profile, text string) (*Reply, error) {
	if text == "" {
		return &Reply{
			Text:  "Tell me at least a few words about today: where you are going, the weather, anything else.",
			Stage: StageAwaitingDailyContext,
		}, nil
	}

	extra := models.DailyContext{Notes: text}
	if err := d.store.MergeDailyContext(ctx, p, extra); err != nil {
		return nil, err
	}

	result, err := d.logic.BuildOutfit(ctx, p, extra)
	if err != nil {
		return d.replyForUserError(err, StageAwaitingDailyContext)
	}
	if err := d.machine.Set(ctx, p, StageReady); err != nil {
		return nil, err
	}

	text = result.Summary
	if result.ImageBytes == nil && result.ImageURL == "" {
		text += "\nNo image is available this time, but the recommendation stands."
	}
	return &Reply{Text: text, Stage: StageReady, Outfit: result}, nil
}

func (d *Dispatcher) handleReady(ctx context.Context, p *models.Profile, text string) (*Reply, error) {
	intent, _ := d.intents.Classify(text)
	switch intent {
	case IntentRequestOutfit:
		if err := d.machine.Set(ctx, p, StageAwaitingDailyContext); err != nil {
			return nil, err
		}
		return &Reply{
			Text:  "Where are you headed today, and is there anything to keep in mind (weather, dress code)?",
			Stage: StageAwaitingDailyContext,
		}, nil

	case IntentAddGarment:
		if err := d.machine.Set(ctx, p, StageAwaitingGarment); err != nil {
			return nil, err
		}
		return &Reply{
			Text:  "Send the garment photos one by one.",
			Stage: StageAwaitingGarment,
		}, nil

	case IntentSetStyle:
		if err := d.machine.Set(ctx, p, StageAwaitingPreferences); err != nil {
			return nil, err
		}
		return &Reply{
			Text:  "Describe the style you like: tags, colors, brands, anything.",
			Stage: StageAwaitingPreferences,
		}, nil

	case IntentFeedbackPositive:
		entry := models.FeedbackEntry{Sentiment: "positive", Note: text, Timestamp: time.Now()}
		if err := d.store.AddFeedback(ctx, p, entry); err != nil {
			return nil, err
		}
		return &Reply{Text: "Glad you liked it! Come back anytime.", Stage: StageReady}, nil

	case IntentFeedbackNegative:
		entry := models.FeedbackEntry{Sentiment: "negative", Note: text, Timestamp: time.Now()}
		if err := d.store.AddFeedback(ctx, p, entry); err != nil {
			return nil, err
		}
		return &Reply{Text: "Noted. I will take it into account next time.", Stage: StageReady}, nil

	case IntentReset:
		fresh, err := d.store.Reset(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		*p = *fresh
		return &Reply{
			Text:  "Everything is cleared. Send a selfie to start over.",
			Stage: StageAwaitingSelfie,
		}, nil

	default:
		return &Reply{
			Text:  "You can ask for an outfit, add garments, or update your style preferences.",
			Stage: StageReady,
		}, nil
	}
}

// replyForUserError turns a UserError into a reply and propagates anything else.
func (d *Dispatcher) replyForUserError(err error, stage Stage) (*Reply, error) {
	var ue *UserError
	if errors.As(err, &ue) {
		return &Reply{Text: ue.Message, Stage: stage}, nil
	}
	return nil, err
}
