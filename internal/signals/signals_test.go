package signals

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Milo-adonos/SilentView/internal/contexts"
)

func marie() Input {
	return Input{Handle: "marie", Context: contexts.Curiosity, Answer: "Oui bien", Prediction: 20}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(marie())
	b := Generate(marie())
	assert.Equal(t, a, b)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestGenerateMarieGolden(t *testing.T) {
	r := Generate(marie())

	assert.Equal(t, 97, r.InterestScore)
	assert.Equal(t, 110, RawInterestScore("marie", "Oui bien", 20, r.Signals))
	assert.Equal(t, 12, r.VisitsCount)
	assert.Equal(t, "Avant-hier à 23h32", r.LastVisit)

	assert.Equal(t, "Cette connaissance te surveille bien", r.Signals[0].Title)
	assert.True(t, strings.HasPrefix(r.Signals[1].Preview, "élevée - @marie"))
	assert.True(t, strings.HasPrefix(r.Signals[2].Preview, "Nuit et week-end - @marie : "))
	assert.True(t, strings.HasPrefix(r.Signals[3].Preview, "Surveillance passive - @marie : "))
	assert.True(t, strings.HasPrefix(r.Signals[4].Preview, "Élevé - SYNTHÈSE : "))

	var highs []int
	for i, s := range r.Signals {
		if s.Intensity == High {
			highs = append(highs, i)
		}
	}
	assert.Equal(t, []int{0, 1, 4}, highs)

	assert.Equal(t, "Cette personne te surveille...", r.PersonalizedTitle.Title)
	assert.Contains(t, r.Interpretation.Main, "@marie")
	assert.Equal(t, "Oui bien", r.UserAnswer)
	assert.Equal(t, 20, r.UserPrediction)
}

func TestIconOrderAndCount(t *testing.T) {
	for _, def := range contexts.All() {
		for _, answer := range def.Answers {
			for _, p := range []int{0, 7, 15, 50} {
				r := Generate(Input{Handle: "lea_22", Context: def.Value, Answer: answer, Prediction: p})
				require.Len(t, r.Signals, SignalCount)
				for i, s := range r.Signals {
					assert.Equal(t, IconOrder[i], s.Icon)
					assert.NotEmpty(t, s.Title)
					assert.NotEmpty(t, s.Preview)
				}
			}
		}
	}
}

func TestBoundsAcrossInputs(t *testing.T) {
	handles := []string{"a", "marie", "x_y.z", "élodie", "Z"}
	for _, def := range contexts.All() {
		for _, answer := range def.Answers {
			for _, h := range handles {
				for p := 0; p <= 50; p++ {
					r := Generate(Input{Handle: h, Context: def.Value, Answer: answer, Prediction: p})
					assert.GreaterOrEqual(t, r.InterestScore, MinInterestScore)
					assert.LessOrEqual(t, r.InterestScore, MaxInterestScore)
					assert.GreaterOrEqual(t, r.VisitsCount, 12)
					assert.LessOrEqual(t, r.VisitsCount, 27)
					assert.NotEqual(t, Low, r.Signals[4].Intensity)
				}
			}
		}
	}
}

func TestIntuitionSignalAlwaysHigh(t *testing.T) {
	for _, def := range contexts.All() {
		answers := append([]string{"not an option"}, def.Answers...)
		for _, answer := range answers {
			for _, p := range []int{0, 14, 15} {
				r := Generate(Input{Handle: "sam", Context: def.Value, Answer: answer, Prediction: p})
				assert.Equal(t, High, r.Signals[0].Intensity, "%s/%s", def.Value, answer)
				assert.Contains(t, r.Signals[0].Preview, "@sam")
			}
		}
	}
}

func TestRawScoreNonDecreasingInPrediction(t *testing.T) {
	for _, def := range contexts.All() {
		for _, answer := range def.Answers {
			prev := -1 << 31
			for p := 0; p <= 50; p++ {
				r := Generate(Input{Handle: "noah", Context: def.Value, Answer: answer, Prediction: p})
				raw := RawInterestScore("noah", answer, p, r.Signals)
				assert.GreaterOrEqual(t, raw, prev, "%s/%s p=%d", def.Value, answer, p)
				prev = raw
			}
		}
	}
}

func TestPredictionBuckets(t *testing.T) {
	assert.Equal(t, bucketLow, predictionBucket(0))
	assert.Equal(t, bucketLow, predictionBucket(4))
	assert.Equal(t, bucketMedium, predictionBucket(5))
	assert.Equal(t, bucketMedium, predictionBucket(14))
	assert.Equal(t, bucketHigh, predictionBucket(15))

	low := Generate(Input{Handle: "sam", Context: contexts.Friend, Answer: "Non", Prediction: 2})
	assert.Equal(t, Medium, low.Signals[1].Intensity)
	assert.Equal(t, Medium, low.Signals[4].Intensity)

	mid := Generate(Input{Handle: "sam", Context: contexts.Friend, Answer: "Non", Prediction: 10})
	assert.True(t, strings.HasPrefix(mid.Signals[4].Preview, "Modéré - SYNTHÈSE : "))
}

func TestScoreRules(t *testing.T) {
	var none [SignalCount]Signal
	// "ab": 97+98=195, variation 0
	assert.Equal(t, 55, RawInterestScore("ab", "Non", 0, none))
	assert.Equal(t, 63, RawInterestScore("ab", "Concurrent", 0, none))

	var two [SignalCount]Signal
	two[0].Intensity = High
	two[3].Intensity = High
	assert.Equal(t, 59, RawInterestScore("ab", "Non", 0, two))

	assert.Equal(t, MinInterestScore, InterestScore("ab", "Non", 0, none))
	assert.Equal(t, MaxInterestScore, InterestScore("ab", "Non", 50, none))
	assert.True(t, IsPositiveAnswer("Oui bien"))
	assert.False(t, IsPositiveAnswer("Vaguement"))
}

func TestUnknownContextUsesCuriosityTables(t *testing.T) {
	r := Generate(Input{Handle: "sam", Context: contexts.Type("other"), Answer: "Oui bien", Prediction: 3})
	assert.Equal(t, "Cette connaissance te surveille bien", r.Signals[0].Title)
	assert.Equal(t, "Fréquence d'intérêt", r.Signals[1].Title)
	assert.Equal(t, InterpretationFor(contexts.Curiosity, "sam"), r.Interpretation)
}

func TestPersonalizedTitles(t *testing.T) {
	cases := []struct {
		ct         contexts.Type
		answer     string
		prediction int
		want       string
	}{
		{contexts.ExCrush, "Oui je pense", 15, "Ton intuition était juste..."},
		{contexts.ExCrush, "Oui je pense", 3, "Tu avais raison de te poser la question..."},
		{contexts.ExCrush, "J'ai des doutes", 20, "Tes doutes étaient fondés..."},
		{contexts.ExCrush, "J'ai des doutes", 2, "Résultats intéressants pour"},
		{contexts.Friend, "Oui clairement", 30, "Tu avais remarqué quelque chose..."},
		{contexts.Friend, "Peut-être", 30, "Ton instinct ne te trompait pas..."},
		{contexts.Friend, "Non", 30, "Analyse terminée pour"},
		{contexts.Business, "Concurrent", 0, "Veille concurrentielle confirmée..."},
		{contexts.Business, "Autre", 0, "Surveillance active détectée..."},
		{contexts.Curiosity, "Vaguement", 15, "Plus qu'une simple connaissance..."},
		{contexts.Curiosity, "Vaguement", 14, "Résultats pour"},
	}
	for _, tc := range cases {
		got := PersonalizedTitle(tc.ct, "sam", tc.answer, tc.prediction)
		assert.Equal(t, tc.want, got.Title, "%s/%s/%d", tc.ct, tc.answer, tc.prediction)
		assert.Contains(t, got.Subtitle, "@sam")
	}
}

func TestInterpretationKeepsPercentSigns(t *testing.T) {
	got := InterpretationFor(contexts.Friend, "sam")
	assert.Contains(t, got.Prediction, "plus de 80% les chances que @sam")
	biz := InterpretationFor(contexts.Business, "sam")
	assert.NotContains(t, biz.Prediction, "{handle}")
}

func TestIntensityStyle(t *testing.T) {
	assert.Equal(t, "rose", High.Style())
	assert.Equal(t, "amber", Medium.Style())
	assert.Equal(t, "slate", Low.Style())
	assert.Equal(t, "slate", Intensity("weird").Style())
}
