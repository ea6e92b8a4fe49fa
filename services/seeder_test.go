package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leocezardev/pifc/repository"
)

func TestSeedDatabase_Idempotent(t *testing.T) {
	store := repository.NewMemoryStore()
	seeder := NewDatabaseSeeder(store)
	ctx := context.Background()

	require.NoError(t, seeder.SeedDatabase())

	contracts, err := store.GetContracts(ctx)
	require.NoError(t, err)
	assert.Len(t, contracts, 2)

	user, err := store.GetUserByEmail(ctx, "auditor@pifc.go.gov.br")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "auditor", user.Role)

	// Second run must not duplicate anything.
	require.NoError(t, seeder.SeedDatabase())

	contracts, err = store.GetContracts(ctx)
	require.NoError(t, err)
	assert.Len(t, contracts, 2)
}

func TestSeedDatabase_SeededContractsAreDraft(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, NewDatabaseSeeder(store).SeedDatabase())

	contracts, err := store.GetContracts(context.Background())
	require.NoError(t, err)
	for _, contract := range contracts {
		assert.Equal(t, "draft", contract.Status)
		assert.NotEmpty(t, contract.Value)
	}
}
