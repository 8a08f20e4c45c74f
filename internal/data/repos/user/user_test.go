package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Milo-adonos/SilentView/internal/data/repos/testutil"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	u := &types.User{Email: "  Marie@Example.com ", Password: "hash"}
	require.NoError(t, repo.Create(dbc, u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "marie@example.com", u.Email)

	got, err := repo.GetByEmail(dbc, "MARIE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "marie@example.com", got.Email)

	exists, err := repo.EmailExists(dbc, "marie@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(dbc, &types.User{Email: "marie@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmailTaken))
	assert.True(t, errors.Is(err, pkgerrors.ErrConflict))
}

func TestUserRepoNotFound(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(context.Background())

	_, err := repo.GetByEmail(dbc, "nobody@example.com")
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	_, err = repo.GetByID(dbc, uuid.New())
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}
