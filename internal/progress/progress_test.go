package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constRand(v float64) func() float64 { return func() float64 { return v } }

func TestLocationAtPhaseBoundaries(t *testing.T) {
	pct, phase, msg := LocationAt(0)
	assert.Equal(t, 0.0, pct)
	assert.Equal(t, 1, phase)
	assert.Equal(t, 0, msg)

	pct, _, _ = LocationAt(3000 * time.Millisecond)
	assert.InDelta(t, 25, pct, 1e-9)

	pct, phase, msg = LocationAt(9000 * time.Millisecond)
	assert.Greater(t, pct, 60.0)
	assert.Less(t, pct, 75.0)
	assert.Equal(t, 2, phase)
	assert.Equal(t, 2, msg)

	pct, phase, msg = LocationAt(LocationTotal)
	assert.Equal(t, 100.0, pct)
	assert.Equal(t, LocationDonePhase, phase)
	assert.Equal(t, 3, msg)
}

func TestLocationAtStaysInRange(t *testing.T) {
	for ms := 0; ms <= 15000; ms += 10 {
		pct, _, _ := LocationAt(time.Duration(ms) * time.Millisecond)
		assert.GreaterOrEqual(t, pct, 0.0)
		assert.LessOrEqual(t, pct, 100.0)
	}
}

func TestPlanAnalysisJitterBounds(t *testing.T) {
	lo := PlanAnalysis(constRand(0))
	hi := PlanAnalysis(constRand(0.999999))
	require.Len(t, lo.Stages, 7)
	assert.Equal(t, 112, lo.FinalSignals)
	assert.Equal(t, 334, hi.FinalSignals)

	for i, st := range AnalysisStages {
		assert.Equal(t, time.Duration(float64(st.Base)*0.85), lo.Stages[i].Effective)
		assert.LessOrEqual(t, hi.Stages[i].Effective, time.Duration(float64(st.Base)*1.15))
		assert.Equal(t, lo.Stages[i].Effective+st.Pause, lo.Stages[i].Total)
	}
	assert.Equal(t, 0, lo.Stages[0].SignalsFrom)
	assert.Equal(t, lo.FinalSignals, lo.Stages[6].SignalsTo)
	for i := 1; i < 7; i++ {
		assert.Equal(t, lo.Stages[i-1].SignalsTo, lo.Stages[i].SignalsFrom)
	}
}

func TestStagePauses(t *testing.T) {
	var withPause []string
	for _, st := range AnalysisStages {
		if st.HasPause() {
			withPause = append(withPause, st.Label)
		}
	}
	assert.Equal(t, []string{
		"Analyse du comportement",
		"Détection des visites",
		"Croisement des signaux",
		"Évaluation attention",
	}, withPause)
}

func TestEaseStage(t *testing.T) {
	assert.InDelta(t, 0.12, EaseStage(0.1), 1e-9)
	assert.InDelta(t, 0.36, EaseStage(0.3), 1e-9)
	assert.InDelta(t, 0.64, EaseStage(0.7), 1e-9)
	assert.InDelta(t, 1.0, EaseStage(1.0), 1e-9)

	prev := 0.0
	for i := 0; i <= 100; i++ {
		v := EaseStage(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestStagePlanHelpers(t *testing.T) {
	sp := PlanAnalysis(constRand(0.5)).Stages[1]
	assert.Equal(t, 100.0, sp.StagePercent(sp.Effective*2))
	assert.Equal(t, 0.0, sp.StagePercent(0))
	assert.Equal(t, sp.SignalsFrom, sp.SignalsAt(0))
	assert.Equal(t, sp.SignalsTo, sp.SignalsAt(100))
	assert.Equal(t, 0, sp.SubMessageAt(0))
	assert.Equal(t, 2, sp.SubMessageAt(sp.Total))
}

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) emit(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) all() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

func fastRunner() Runner {
	return Runner{Scale: 0.001, Tick: 100 * time.Microsecond, Rand: constRand(0.5)}
}

func TestRunLocationCompletesMonotonically(t *testing.T) {
	var rec recorder
	require.NoError(t, fastRunner().RunLocation(context.Background(), rec.emit))

	ups := rec.all()
	require.NotEmpty(t, ups)
	last := ups[len(ups)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, "Localisation détectée !", last.Message)

	prev := 0.0
	for _, u := range ups {
		assert.Equal(t, KindLocation, u.Kind)
		assert.GreaterOrEqual(t, u.Percent, prev)
		prev = u.Percent
	}
}

func TestRunLocationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var rec recorder
	done := make(chan error, 1)
	go func() { done <- NewRunner(1).RunLocation(ctx, rec.emit) }()
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("location animation ignored cancellation")
	}
	for _, u := range rec.all() {
		assert.False(t, u.Done)
	}
}

func TestRunAnalysisStreamsEveryStage(t *testing.T) {
	var rec recorder
	plan, err := fastRunner().RunAnalysis(context.Background(), rec.emit)
	require.NoError(t, err)

	ups := rec.all()
	last := ups[len(ups)-1]
	assert.True(t, last.Done)
	assert.Equal(t, plan.FinalSignals, last.Signals)

	seen := map[int]bool{}
	prevPhase, prevPct := 0, 0.0
	for _, u := range ups[:len(ups)-1] {
		seen[u.Phase] = true
		if u.Phase != prevPhase {
			assert.Greater(t, u.Phase, prevPhase)
			prevPhase, prevPct = u.Phase, 0
		}
		assert.GreaterOrEqual(t, u.Percent, prevPct)
		assert.LessOrEqual(t, u.Percent, 100.0)
		prevPct = u.Percent
	}
	assert.Len(t, seen, 7)
}

func TestRunAnalysisCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(1).RunAnalysis(ctx, func(Update) {})
	assert.True(t, errors.Is(err, context.Canceled))
}
