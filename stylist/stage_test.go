package stylist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	for _, stage := range []Stage{
		StageAwaitingSelfie, StageAwaitingGarment, StageAwaitingCategory,
		StageAwaitingPreferences, StageReady, StageAwaitingDailyContext,
	} {
		assert.Equal(t, stage, ParseStage(string(stage)))
	}
}

func TestParseStageUnknownFallsBackToInitial(t *testing.T) {
	assert.Equal(t, StageAwaitingSelfie, ParseStage("garbage"))
	assert.Equal(t, StageAwaitingSelfie, ParseStage(""))
}

func TestStateMachineSetPersists(t *testing.T) {
	store := newFakeStore()
	machine := NewStateMachine(store)

	p, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingSelfie, machine.Current(p))

	require.NoError(t, machine.Set(context.Background(), p, StageReady))
	assert.Equal(t, StageReady, machine.Current(p))
	assert.Equal(t, "ready", store.profiles["u1"].Stage)
}
