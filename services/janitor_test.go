package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leocezardev/pifc/models"
	"github.com/leocezardev/pifc/repository"
)

func TestJanitor_FailsStaleEntities(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	contract := newDraftContract(t, store)
	require.NoError(t, store.UpdateContractStatus(ctx, contract.ID, models.ContractStatusAnalyzing))

	session := &models.ChatSession{SessionType: models.SessionTypeChat, Status: models.SessionStatusActive}
	require.NoError(t, store.CreateSession(ctx, session))
	require.NoError(t, store.UpdateSessionStatus(ctx, session.ID, models.SessionStatusAnalyzing))

	// A negative stale age puts the cutoff in the future, so everything in
	// analyzing status is already considered abandoned.
	janitor := &Janitor{store: store, staleAge: -time.Minute}
	janitor.sweep(ctx)

	foundContract, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusFailed, foundContract.Status)

	foundSession, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFailed, foundSession.Status)
}

func TestJanitor_LeavesFreshAndTerminalAlone(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	fresh := newDraftContract(t, store)
	require.NoError(t, store.UpdateContractStatus(ctx, fresh.ID, models.ContractStatusAnalyzing))

	done := newDraftContract(t, store)
	require.NoError(t, store.UpdateContractStatus(ctx, done.ID, models.ContractStatusCompleted))

	janitor := NewJanitor(store, time.Hour)
	janitor.sweep(ctx)

	foundFresh, err := store.GetContract(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusAnalyzing, foundFresh.Status)

	foundDone, err := store.GetContract(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCompleted, foundDone.Status)
}
