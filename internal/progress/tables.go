// Package progress drives the two simulated animations of the flow: the
// location verification floor and the seven-stage analysis. Durations are
// nominal; a Runner scales them and streams Updates to the caller.
package progress

import (
	"math"
	"time"
)

type LocationPhase struct {
	End     time.Duration
	Target  float64
	Phase   int
	Message int
}

const (
	LocationTotal  = 15 * time.Second
	LocationSettle = 500 * time.Millisecond
	// LocationDonePhase is reported once the animation reached its end.
	LocationDonePhase = 4
)

var LocationPhases = []LocationPhase{
	{End: 3000 * time.Millisecond, Target: 25, Phase: 1, Message: 0},
	{End: 5500 * time.Millisecond, Target: 40, Phase: 1, Message: 1},
	{End: 8000 * time.Millisecond, Target: 60, Phase: 2, Message: 1},
	{End: 10500 * time.Millisecond, Target: 75, Phase: 2, Message: 2},
	{End: 12500 * time.Millisecond, Target: 90, Phase: 3, Message: 2},
	{End: 15000 * time.Millisecond, Target: 100, Phase: 3, Message: 3},
}

var LocationMessages = [4]string{
	"Connexion aux serveurs...",
	"Analyse des métadonnées...",
	"Localisation en cours...",
	"Localisation détectée !",
}

// LocationAt returns the eased percentage, phase and message index at a
// nominal elapsed time. It is not clamped against earlier values; callers that
// stream it keep the running maximum.
func LocationAt(elapsed time.Duration) (pct float64, phase, message int) {
	if elapsed >= LocationTotal {
		return 100, LocationDonePhase, len(LocationMessages) - 1
	}
	if elapsed < 0 {
		elapsed = 0
	}
	idx := 0
	for i, p := range LocationPhases {
		if elapsed < p.End {
			idx = i
			break
		}
	}
	cur := LocationPhases[idx]
	var prevEnd time.Duration
	var prevTarget float64
	if idx > 0 {
		prevEnd = LocationPhases[idx-1].End
		prevTarget = LocationPhases[idx-1].Target
	}
	ratio := math.Min(float64(elapsed-prevEnd)/float64(cur.End-prevEnd), 1)
	eased := math.Min(locationEase(idx, ratio), 1)
	return prevTarget + (cur.Target-prevTarget)*eased, cur.Phase, cur.Message
}

func locationEase(idx int, r float64) float64 {
	switch idx {
	case 0:
		return 1 - (1-r)*(1-r)
	case 2:
		return r*0.7 + math.Sin(r*math.Pi)*0.15
	case 4, 5:
		return math.Pow(r, 0.7)
	default:
		return r
	}
}

type Stage struct {
	Label       string
	Message     string
	SubMessages [3]string
	Base        time.Duration
	PauseAt     float64
	Pause       time.Duration
}

func (s Stage) HasPause() bool { return s.Pause > 0 }

// StageTransition is the gap between two stages; AnalysisSettle follows the
// last one.
const (
	StageTransition = 400 * time.Millisecond
	AnalysisSettle  = 500 * time.Millisecond
)

var AnalysisStages = [7]Stage{
	{
		Label:       "Recherche du compte",
		Message:     "Localisation des données publiques...",
		SubMessages: [3]string{"Connexion aux serveurs...", "Recherche en cours...", "Compte localisé..."},
		Base:        4000 * time.Millisecond,
	},
	{
		Label:       "Analyse du comportement",
		Message:     "Étude des patterns d'interaction...",
		SubMessages: [3]string{"Collecte des métadonnées...", "Analyse des interactions...", "Patterns identifiés..."},
		Base:        5500 * time.Millisecond,
		PauseAt:     45,
		Pause:       1200 * time.Millisecond,
	},
	{
		Label:       "Détection des visites",
		Message:     "Identification des signaux récurrents...",
		SubMessages: [3]string{"Scan des traces numériques...", "Détection des visites...", "Signaux confirmés..."},
		Base:        6000 * time.Millisecond,
		PauseAt:     60,
		Pause:       1800 * time.Millisecond,
	},
	{
		Label:       "Moments clés",
		Message:     "Analyse temporelle des activités...",
		SubMessages: [3]string{"Horodatage des événements...", "Analyse des fréquences...", "Moments clés extraits..."},
		Base:        5000 * time.Millisecond,
	},
	{
		Label:       "Croisement des signaux",
		Message:     "Corrélation des données collectées...",
		SubMessages: [3]string{"Synchronisation des données...", "Corrélation en cours...", "Vérification des résultats..."},
		Base:        6500 * time.Millisecond,
		PauseAt:     35,
		Pause:       2000 * time.Millisecond,
	},
	{
		Label:       "Évaluation attention",
		Message:     "Mesure du niveau d'intérêt...",
		SubMessages: [3]string{"Calcul du score d'attention...", "Évaluation de l'intérêt...", "Score finalisé..."},
		Base:        5500 * time.Millisecond,
		PauseAt:     70,
		Pause:       1500 * time.Millisecond,
	},
	{
		Label:       "Génération rapport",
		Message:     "Compilation des résultats...",
		SubMessages: [3]string{"Génération du rapport...", "Mise en forme...", "Rapport prêt..."},
		Base:        4500 * time.Millisecond,
	},
}

const (
	minSignals   = 112
	signalsRange = 223
)

type StagePlan struct {
	Stage
	Index int
	// Effective is the jittered active duration, Total adds the pause.
	Effective   time.Duration
	Total       time.Duration
	SignalsFrom int
	SignalsTo   int
}

type AnalysisPlan struct {
	Stages       []StagePlan
	FinalSignals int
}

// Duration is the nominal wall time of the whole plan, transitions and the
// final settle included.
func (p AnalysisPlan) Duration() time.Duration {
	var d time.Duration
	for _, s := range p.Stages {
		d += s.Total + StageTransition
	}
	return d + AnalysisSettle
}

// PlanAnalysis draws the final signal count and the per-stage jitter from
// rnd, which must return values in [0, 1).
func PlanAnalysis(rnd func() float64) AnalysisPlan {
	final := minSignals + int(math.Floor(rnd()*signalsRange))
	n := len(AnalysisStages)
	plan := AnalysisPlan{Stages: make([]StagePlan, 0, n), FinalSignals: final}
	for i, st := range AnalysisStages {
		jitter := 0.85 + rnd()*0.3
		eff := time.Duration(float64(st.Base) * jitter)
		plan.Stages = append(plan.Stages, StagePlan{
			Stage:       st,
			Index:       i,
			Effective:   eff,
			Total:       eff + st.Pause,
			SignalsFrom: int(math.Floor(float64(i) / float64(n) * float64(final))),
			SignalsTo:   int(math.Floor(float64(i+1) / float64(n) * float64(final))),
		})
	}
	return plan
}

// EaseStage maps the raw time ratio of a stage onto its displayed fraction:
// fast start, slower middle, faster end.
func EaseStage(raw float64) float64 {
	switch {
	case raw < 0.3:
		return raw * 1.2
	case raw < 0.7:
		return 0.36 + (raw-0.3)*0.7
	default:
		return 0.64 + (raw-0.7)*1.2
	}
}

// StagePercent converts an active (pause-excluded) elapsed time into a
// percentage in [0, 100].
func (s StagePlan) StagePercent(active time.Duration) float64 {
	if s.Effective <= 0 {
		return 100
	}
	pct := EaseStage(float64(active)/float64(s.Effective)) * 100
	return math.Max(0, math.Min(pct, 100))
}

// SignalsAt interpolates the detected-signals counter inside the stage.
func (s StagePlan) SignalsAt(pct float64) int {
	return s.SignalsFrom + int(math.Floor(pct/100*float64(s.SignalsTo-s.SignalsFrom)))
}

// SubMessageAt cycles through the sub-messages over the stage's total
// duration and holds the last one.
func (s StagePlan) SubMessageAt(elapsed time.Duration) int {
	if s.Total <= 0 {
		return len(s.SubMessages) - 1
	}
	step := s.Total / time.Duration(len(s.SubMessages))
	if step <= 0 {
		return 0
	}
	i := int(elapsed / step)
	if i >= len(s.SubMessages) {
		i = len(s.SubMessages) - 1
	}
	return i
}
