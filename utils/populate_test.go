package utils

import (
	"context"
	"testing"

	"neurovisa/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulateDemoUsers(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryUserStore()

	n, err := PopulateDemoUsers(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(demoUsers), n)

	u, err := store.GetUserByEmail(ctx, "worker@neurovisa.dev")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.True(t, CheckPasswordHash(DemoPassword, u.HashedPassword))

	again, err := PopulateDemoUsers(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, again)
}
