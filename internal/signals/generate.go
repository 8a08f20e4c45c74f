package signals

import (
	"fmt"

	"github.com/Milo-adonos/SilentView/internal/contexts"
	"github.com/Milo-adonos/SilentView/internal/prng"
)

// Generate builds the full result for an input. The PRNG is seeded from
// Input.Seed and drawn in a fixed order (key moment, intention, attention,
// last visit, visits count) so the same input always yields the same result.
func Generate(in Input) Result {
	rnd := prng.New(in.Seed())
	ct := tableContext(in.Context)
	b := predictionBucket(in.Prediction)

	var sigs [SignalCount]Signal
	sigs[0] = intuitionSignal(ct, in.Handle, in.Answer, b)
	sigs[1] = frequencySignal(ct, in.Handle, b)
	sigs[2] = momentSignal(ct, in.Handle, rnd)
	sigs[3] = intentionSignal(ct, in.Handle, rnd)
	sigs[4] = attentionSignal(b, rnd)
	lastVisit := lastVisitLabel(ct, rnd)
	visits := rnd.Intn(16) + 12

	return Result{
		Signals:           sigs,
		PersonalizedTitle: PersonalizedTitle(in.Context, in.Handle, in.Answer, in.Prediction),
		Interpretation:    InterpretationFor(in.Context, in.Handle),
		LastVisit:         lastVisit,
		UserPrediction:    in.Prediction,
		UserAnswer:        in.Answer,
		VisitsCount:       visits,
		InterestScore:     InterestScore(in.Handle, in.Answer, in.Prediction, sigs),
	}
}

// tableContext maps unknown context types onto the curiosity tables.
func tableContext(ct contexts.Type) contexts.Type {
	if _, ok := intuitionTables[ct]; ok {
		return ct
	}
	return contexts.Curiosity
}

func intuitionSignal(ct contexts.Type, handle, answer string, b bucket) Signal {
	n := intuitionTables[ct].pick(answer)
	detail := n.Normal
	if b == bucketHigh {
		detail = n.High
	}
	return Signal{
		Title:     n.Title,
		Preview:   fmt.Sprintf(n.Preview, handle, detail),
		Icon:      IconEye,
		Intensity: High,
	}
}

func frequencySignal(ct contexts.Type, handle string, b bucket) Signal {
	t := frequencyTexts[ct]
	intensity := Medium
	if b == bucketHigh {
		intensity = High
	}
	return Signal{
		Title:     t.Title,
		Preview:   fmt.Sprintf(t.Preview, frequencyLevels[b], handle, frequencyDescriptions[b], t.Detail[b]),
		Icon:      IconChart,
		Intensity: intensity,
	}
}

func momentSignal(ct contexts.Type, handle string, rnd *prng.Source) Signal {
	opts := momentTables[ct]
	m := opts[rnd.Intn(len(opts))]
	return Signal{
		Title:     "Moments clés",
		Preview:   fmt.Sprintf("%s - @%s : %s Ces créneaux révélés permettent de mieux comprendre son comportement.", m.Window, handle, m.Detail),
		Icon:      IconClock,
		Intensity: Medium,
	}
}

func intentionSignal(ct contexts.Type, handle string, rnd *prng.Source) Signal {
	opts := intentionWeights[ct]
	it := opts[rnd.Intn(len(opts))]
	return Signal{
		Title:     "Type d'intention",
		Preview:   fmt.Sprintf("%s - @%s : %s", it.Kind, handle, it.Description),
		Icon:      IconTarget,
		Intensity: Medium,
	}
}

// attentionSignal never reports Low: a low prediction still reads as medium.
func attentionSignal(b bucket, rnd *prng.Source) Signal {
	var a attention
	intensity := Medium
	switch b {
	case bucketHigh:
		a = attentionHigh[rnd.Intn(len(attentionHigh))]
		intensity = High
	case bucketMedium:
		a = attentionMedium
	default:
		a = attentionLow[rnd.Intn(len(attentionLow))]
	}
	return Signal{
		Title:     "Niveau d'attention global",
		Preview:   fmt.Sprintf("%s - SYNTHÈSE : %s Cette évaluation prend en compte l'ensemble des signaux détectés.", a.Level, a.Description),
		Icon:      IconGauge,
		Intensity: intensity,
	}
}

func lastVisitLabel(ct contexts.Type, rnd *prng.Source) string {
	day := lastVisitDays[rnd.Intn(len(lastVisitDays))]
	hours := lastVisitHours[ct]
	hour := hours[rnd.Intn(len(hours))]
	minute := rnd.Intn(60)
	return fmt.Sprintf("%s à %02dh%02d", day, hour, minute)
}
