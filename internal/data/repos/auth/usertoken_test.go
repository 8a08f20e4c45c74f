package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Milo-adonos/SilentView/internal/data/repos/testutil"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := &types.User{Email: "usertokenrepo@example.com", Password: "pw"}
	require.NoError(t, tx.Create(u).Error)

	now := time.Now()
	live := &types.UserToken{UserID: u.ID, AccessToken: "access-1", ExpiresAt: now.Add(time.Hour)}
	stale := &types.UserToken{UserID: u.ID, AccessToken: "access-2", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(dbc, live))
	require.NoError(t, repo.Create(dbc, stale))

	got, err := repo.GetByAccessToken(dbc, "access-1")
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)

	n, err := repo.DeleteExpired(dbc, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.GetByAccessToken(dbc, "access-2")
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	require.NoError(t, repo.DeleteByAccessToken(dbc, "access-1"))
	_, err = repo.GetByAccessToken(dbc, "access-1")
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	require.NoError(t, repo.Create(dbc, &types.UserToken{UserID: u.ID, AccessToken: "access-3", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.DeleteByUserIDs(dbc, []uuid.UUID{u.ID}))
	_, err = repo.GetByAccessToken(dbc, "access-3")
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}
