package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Milo-adonos/SilentView/internal/data/repos/testutil"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
)

func seedUser(t *testing.T, dbc dbctx.Context, email string) *types.User {
	t.Helper()
	u := &types.User{Email: email, Password: "pw"}
	require.NoError(t, dbc.Tx.Create(u).Error)
	return u
}

func TestAnalysisSessionRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, db)}
	repo := NewAnalysisSessionRepo(db, testutil.Logger(t))

	s := &types.AnalysisSession{
		OwnUsername:     "me",
		TargetUsername:  "marie",
		SocialNetwork:   "instagram",
		ContextType:     "curiosity",
		Question1Answer: "curiosity",
		Question2Answer: "Oui bien",
		PredictionValue: 20,
		Result:          datatypes.JSON(`{"interestScore":97}`),
	}
	require.NoError(t, repo.Create(dbc, s))
	require.NotEqual(t, uuid.Nil, s.ID)

	got, err := repo.GetByID(dbc, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "marie", got.TargetUsername)
	assert.False(t, got.PaymentCompleted)
	assert.JSONEq(t, `{"interestScore":97}`, string(got.Result))

	paid, err := repo.PaidFor(dbc, s.ID, "me")
	require.NoError(t, err)
	assert.False(t, paid)

	u := seedUser(t, dbc, "paid@example.com")
	require.NoError(t, repo.MarkPaid(dbc, s.ID, Payment{PaymentType: "one_time", StripePaymentID: "cs_1", UserID: &u.ID}))

	got, err = repo.GetByID(dbc, s.ID)
	require.NoError(t, err)
	assert.True(t, got.PaymentCompleted)
	assert.Equal(t, "one_time", got.PaymentType)
	assert.Equal(t, "cs_1", got.StripePaymentID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, u.ID, *got.UserID)

	paid, err = repo.PaidFor(dbc, s.ID, "me")
	require.NoError(t, err)
	assert.True(t, paid)
	paid, err = repo.PaidFor(dbc, s.ID, "someone-else")
	require.NoError(t, err)
	assert.False(t, paid)

	err = repo.MarkPaid(dbc, uuid.New(), Payment{PaymentType: "one_time"})
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	_, err = repo.GetByID(dbc, uuid.New())
	assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestAnalysisSessionRepoHistoryNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, db)}
	repo := NewAnalysisSessionRepo(db, testutil.Logger(t))
	u := seedUser(t, dbc, "history@example.com")

	base := time.Now().Add(-time.Hour)
	for i, target := range []string{"first", "second", "third"} {
		s := &types.AnalysisSession{TargetUsername: target, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(dbc, s))
		require.NoError(t, repo.AttachUser(dbc, s.ID, u.ID))
	}
	require.NoError(t, repo.Create(dbc, &types.AnalysisSession{TargetUsername: "anonymous"}))

	rows, err := repo.ListByUser(dbc, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"third", "second", "first"},
		[]string{rows[0].TargetUsername, rows[1].TargetUsername, rows[2].TargetUsername})

	rows, err = repo.ListByUser(dbc, u.ID, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// an owned session is never moved to another user
	other := seedUser(t, dbc, "other@example.com")
	require.NoError(t, repo.AttachUser(dbc, rows[0].ID, other.ID))
	got, err := repo.GetByID(dbc, rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, *got.UserID)
}
