// Package signals synthesises the five behavioural signal cards, the
// narrative texts and the composite interest score of an analysis. Every
// function here is a pure function of its inputs.
package signals

import (
	"fmt"

	"github.com/Milo-adonos/SilentView/internal/contexts"
)

// SignalCount is the fixed number of signals per analysis.
const SignalCount = 5

type Icon string

const (
	IconEye    Icon = "eye"
	IconChart  Icon = "chart"
	IconClock  Icon = "clock"
	IconTarget Icon = "target"
	IconGauge  Icon = "gauge"
)

// IconOrder is the icon of each signal slot, in result order.
var IconOrder = [SignalCount]Icon{IconEye, IconChart, IconClock, IconTarget, IconGauge}

type Intensity string

const (
	Low    Intensity = "low"
	Medium Intensity = "medium"
	High   Intensity = "high"
)

var intensityStyles = map[Intensity]string{
	High:   "rose",
	Medium: "amber",
	Low:    "slate",
}

// Style resolves the display token of an intensity.
func (i Intensity) Style() string {
	if s, ok := intensityStyles[i]; ok {
		return s
	}
	return "slate"
}

type Signal struct {
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	Icon      Icon      `json:"iconType"`
	Intensity Intensity `json:"intensity"`
}

type Title struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type Interpretation struct {
	Main       string `json:"main"`
	Prediction string `json:"prediction"`
}

// Result is the immutable output of one completed flow. Signals is an array
// so copies never share backing storage.
type Result struct {
	Signals           [SignalCount]Signal `json:"signals"`
	PersonalizedTitle Title               `json:"personalizedTitle"`
	Interpretation    Interpretation      `json:"interpretation"`
	LastVisit         string              `json:"lastVisit"`
	UserPrediction    int                 `json:"userPrediction"`
	UserAnswer        string              `json:"userAnswer"`
	VisitsCount       int                 `json:"visitsCount"`
	InterestScore     int                 `json:"interestScore"`
}

type Input struct {
	Handle     string
	Context    contexts.Type
	Answer     string
	Prediction int
}

// Seed is the PRNG key of an input: handle, context, answer and prediction
// joined by dashes.
func (in Input) Seed() string {
	return fmt.Sprintf("%s-%s-%s-%d", in.Handle, in.Context, in.Answer, in.Prediction)
}

type bucket int

const (
	bucketLow bucket = iota
	bucketMedium
	bucketHigh
)

func predictionBucket(p int) bucket {
	switch {
	case p >= 15:
		return bucketHigh
	case p >= 5:
		return bucketMedium
	default:
		return bucketLow
	}
}
