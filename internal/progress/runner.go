package progress

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Milo-adonos/SilentView/internal/task"
)

type Kind string

const (
	KindLocation Kind = "location"
	KindAnalysis Kind = "analysis"
)

// Update is one frame of an animation as streamed to the browser.
type Update struct {
	Kind       Kind    `json:"kind"`
	Percent    float64 `json:"percent"`
	Phase      int     `json:"phase"`
	Label      string  `json:"label,omitempty"`
	Message    string  `json:"message"`
	SubMessage string  `json:"subMessage,omitempty"`
	Paused     bool    `json:"paused,omitempty"`
	Signals    int     `json:"signals,omitempty"`
	Done       bool    `json:"done,omitempty"`
}

const defaultTick = 50 * time.Millisecond

type Runner struct {
	// Scale multiplies every nominal duration; 1 is real time.
	Scale float64
	Tick  time.Duration
	Rand  func() float64
	now   func() time.Time
}

func NewRunner(scale float64) Runner {
	return Runner{Scale: scale}
}

func (r Runner) scale() float64 {
	if r.Scale <= 0 {
		return 1
	}
	return r.Scale
}

func (r Runner) tick() time.Duration {
	if r.Tick > 0 {
		return r.Tick
	}
	t := time.Duration(float64(defaultTick) * r.scale())
	if t < time.Millisecond {
		t = time.Millisecond
	}
	return t
}

func (r Runner) rand() func() float64 {
	if r.Rand != nil {
		return r.Rand
	}
	return rand.Float64
}

func (r Runner) clock() func() time.Time {
	if r.now != nil {
		return r.now
	}
	return time.Now
}

// nominal converts wall time elapsed since start back into nominal time.
func (r Runner) nominal(start time.Time) time.Duration {
	return time.Duration(float64(r.clock()().Sub(start)) / r.scale())
}

func (r Runner) wall(d time.Duration) time.Duration {
	return time.Duration(float64(d) * r.scale())
}

// RunLocation plays the location verification animation to completion,
// including the settle delay, and returns ctx.Err() when cancelled. The final
// update has Done set.
func (r Runner) RunLocation(ctx context.Context, emit func(Update)) error {
	start := r.clock()()
	ticker := time.NewTicker(r.tick())
	defer ticker.Stop()

	best := 0.0
	for {
		elapsed := r.nominal(start)
		if elapsed >= LocationTotal {
			break
		}
		pct, phase, msg := LocationAt(elapsed)
		best = math.Min(math.Max(best, pct), 100)
		emit(Update{Kind: KindLocation, Percent: best, Phase: phase, Message: LocationMessages[msg]})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	last := LocationMessages[len(LocationMessages)-1]
	emit(Update{Kind: KindLocation, Percent: 100, Phase: LocationDonePhase, Message: last})
	if err := task.Sleep(ctx, r.wall(LocationSettle)); err != nil {
		return err
	}
	emit(Update{Kind: KindLocation, Percent: 100, Phase: LocationDonePhase, Message: last, Done: true})
	return nil
}

// RunAnalysis draws a plan and plays every stage in order. Progress never
// decreases inside a stage; a stage's pause freezes it once.
func (r Runner) RunAnalysis(ctx context.Context, emit func(Update)) (AnalysisPlan, error) {
	plan := PlanAnalysis(r.rand())
	for _, sp := range plan.Stages {
		if err := r.runStage(ctx, sp, emit); err != nil {
			return plan, err
		}
		if err := task.Sleep(ctx, r.wall(StageTransition)); err != nil {
			return plan, err
		}
	}
	if err := task.Sleep(ctx, r.wall(AnalysisSettle)); err != nil {
		return plan, err
	}
	emit(Update{
		Kind:    KindAnalysis,
		Percent: 100,
		Phase:   len(plan.Stages),
		Message: "Analyse terminée",
		Signals: plan.FinalSignals,
		Done:    true,
	})
	return plan, nil
}

func (r Runner) runStage(ctx context.Context, sp StagePlan, emit func(Update)) error {
	start := r.clock()()
	ticker := time.NewTicker(r.tick())
	defer ticker.Stop()

	var (
		best       float64
		paused     bool
		pausedFrom time.Duration
		pausedFor  time.Duration
		triggered  bool
	)
	for {
		elapsed := r.nominal(start)
		if elapsed >= sp.Total {
			break
		}
		if paused && elapsed-pausedFrom >= sp.Pause {
			paused = false
			pausedFor += sp.Pause
		}
		if !paused {
			best = math.Max(best, sp.StagePercent(elapsed-pausedFor))
			if sp.HasPause() && !triggered && best >= sp.PauseAt {
				triggered = true
				paused = true
				pausedFrom = elapsed
			}
		}
		emit(Update{
			Kind:       KindAnalysis,
			Percent:    best,
			Phase:      sp.Index,
			Label:      sp.Label,
			Message:    sp.Message,
			SubMessage: sp.SubMessages[sp.SubMessageAt(elapsed)],
			Paused:     paused,
			Signals:    sp.SignalsAt(best),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	emit(Update{
		Kind:       KindAnalysis,
		Percent:    100,
		Phase:      sp.Index,
		Label:      sp.Label,
		Message:    sp.Message,
		SubMessage: sp.SubMessages[len(sp.SubMessages)-1],
		Signals:    sp.SignalsTo,
	})
	return nil
}
