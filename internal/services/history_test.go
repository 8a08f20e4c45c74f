package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Milo-adonos/SilentView/internal/contexts"
	"github.com/Milo-adonos/SilentView/internal/flow"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/signals"
)

func completedSession(target string) flow.Session {
	return flow.Session{
		Network:       contexts.Instagram,
		OwnHandle:     "moi",
		TargetHandle:  target,
		Context:       contexts.Curiosity,
		Answer:        "Oui bien",
		Prediction:    20,
		HasPrediction: true,
	}
}

func TestHistorySaveAndList(t *testing.T) {
	r := newTestRepos(t)
	svc := NewHistoryService(r.log, r.sessions)
	ctx := context.Background()
	userID := uuid.New()

	first := completedSession("marie")
	res := signals.Generate(first.Input())
	id1, err := svc.Save(ctx, userID, first, res)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	id2, err := svc.Save(ctx, userID, completedSession("lea"), signals.Generate(completedSession("lea").Input()))
	require.NoError(t, err)
	_, err = svc.Save(ctx, uuid.New(), completedSession("zoe"), res)
	require.NoError(t, err)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id2, list[0].ID)
	assert.Equal(t, id1, list[1].ID)
	assert.Equal(t, "marie", list[1].TargetUsername)
	assert.Equal(t, "curiosity", list[1].ContextType)
	assert.Equal(t, 20, list[1].PredictionValue)
	assert.Equal(t, res.InterestScore, list[1].InterestScore)
}

func TestHistoryResultRoundTripsAndChecksOwner(t *testing.T) {
	r := newTestRepos(t)
	svc := NewHistoryService(r.log, r.sessions)
	ctx := context.Background()
	userID := uuid.New()

	sess := completedSession("marie")
	res := signals.Generate(sess.Input())
	id, err := svc.Save(ctx, userID, sess, res)
	require.NoError(t, err)

	got, err := svc.Result(ctx, userID, id)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	_, err = svc.Result(ctx, uuid.New(), id)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestHistoryAttachAnonymousAnalysis(t *testing.T) {
	r := newTestRepos(t)
	svc := NewHistoryService(r.log, r.sessions)
	ctx := context.Background()

	sess := completedSession("marie")
	id, err := svc.Save(ctx, uuid.Nil, sess, signals.Generate(sess.Input()))
	require.NoError(t, err)

	owner := uuid.New()
	require.NoError(t, svc.Attach(ctx, id, owner))
	require.NoError(t, svc.Attach(ctx, id, uuid.New()))

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}
