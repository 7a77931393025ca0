// Package stylist holds the conversation core: the onboarding stage machine,
// category and intent normalisation, the chat dispatcher, and the outfit
// orchestration pipeline.
package stylist

import (
	"context"

	"github.com/fitly-app/stylist/models"
)

// Stage is the coarse conversation state gating which inputs are accepted.
type Stage string

const (
	StageAwaitingSelfie       Stage = "awaiting_selfie"
	StageAwaitingGarment      Stage = "awaiting_garment"
	StageAwaitingCategory     Stage = "awaiting_category"
	StageAwaitingPreferences  Stage = "awaiting_preferences"
	StageReady                Stage = "ready"
	StageAwaitingDailyContext Stage = "awaiting_daily_context"
)

// ParseStage maps a persisted stage string to a Stage. Unknown or corrupt
// values map to the initial stage; this never fails.
func ParseStage(raw string) Stage {
	switch Stage(raw) {
	case StageAwaitingSelfie, StageAwaitingGarment, StageAwaitingCategory,
		StageAwaitingPreferences, StageReady, StageAwaitingDailyContext:
		return Stage(raw)
	}
	return StageAwaitingSelfie
}

// StateMachine keeps the profile's stage in sync with storage.
//
// The machine is a label, not a guard: it does not validate transition
// legality. Legality lives in the per-stage handlers of the Dispatcher,
// which decide what each input type may do in each stage.
type StateMachine struct {
	store ProfileStore
}

// NewStateMachine wraps the given store.
func NewStateMachine(store ProfileStore) *StateMachine {
	return &StateMachine{store: store}
}

// Current returns the current conversation stage of the profile.
func (m *StateMachine) Current(p *models.Profile) Stage {
	return ParseStage(p.Stage)
}

// Set persists the new stage immediately.
func (m *StateMachine) Set(ctx context.Context, p *models.Profile, stage Stage) error {
	return m.store.SetStage(ctx, p, string(stage))
}
