package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Milo-adonos/SilentView/internal/data/repos/testutil"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
)

func TestSubscriptionRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, db)}
	repo := NewSubscriptionRepo(db, testutil.Logger(t))
	now := time.Now()
	userID := uuid.New()

	got, err := repo.ActiveForUser(dbc, userID, now)
	require.NoError(t, err)
	assert.Nil(t, got)

	past := now.Add(-time.Hour)
	require.NoError(t, repo.Create(dbc, &types.Subscription{
		UserID: &userID, UserIdentifier: "marie", SubscriptionType: types.SubscriptionPremiumMonthly,
		Status: types.SubscriptionActive, StartedAt: now.Add(-48 * time.Hour), ExpiresAt: &past,
	}))
	got, err = repo.ActiveForUser(dbc, userID, now)
	require.NoError(t, err)
	assert.Nil(t, got, "expired subscriptions grant nothing")

	sub := &types.Subscription{
		UserID: &userID, UserIdentifier: "marie", SubscriptionType: types.SubscriptionOneTime,
		Status: types.SubscriptionActive, StartedAt: now,
	}
	require.NoError(t, repo.Create(dbc, sub))

	got, err = repo.ActiveForUser(dbc, userID, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID, got.ID)

	got, err = repo.ActiveForIdentifier(dbc, "marie", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.ActiveAt(now))

	later := now.Add(time.Minute)
	require.NoError(t, repo.Touch(dbc, sub.ID, later))
	got, err = repo.ActiveForUser(dbc, userID, now)
	require.NoError(t, err)
	assert.WithinDuration(t, later, got.UpdatedAt, time.Second)
}
