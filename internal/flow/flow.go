// Package flow is the wizard that walks a visitor from choosing a network to
// the unlocked results. Machine is a plain finite-state machine: Fire takes an
// event, moves to the next state and returns the side effects the caller has
// to perform. It never starts timers or talks to collaborators itself.
package flow

import (
	"fmt"

	"github.com/Milo-adonos/SilentView/internal/contexts"
	"github.com/Milo-adonos/SilentView/internal/geo"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/signals"
)

type State string

const (
	NetworkSelect   State = "network_select"
	OwnHandle       State = "own_handle"
	TargetHandle    State = "target_handle"
	LocationVerify  State = "location_verify"
	ContextSelect   State = "context_select"
	ContextQuestion State = "context_question"
	PredictionInput State = "prediction_input"
	FakeAnalysis    State = "fake_analysis"
	LockedResults   State = "locked_results"
	UnlockedResults State = "unlocked_results"
)

// order is the forward sequence; Back walks it in reverse.
var order = []State{
	NetworkSelect, OwnHandle, TargetHandle, LocationVerify, ContextSelect,
	ContextQuestion, PredictionInput, FakeAnalysis, LockedResults, UnlockedResults,
}

func (s State) index() int {
	for i, o := range order {
		if o == s {
			return i
		}
	}
	return -1
}

const (
	MinPrediction = 0
	MaxPrediction = 50
)

// Session accumulates what the visitor declared during one traversal.
type Session struct {
	Network       contexts.Network `json:"network,omitempty"`
	OwnHandle     string           `json:"ownHandle,omitempty"`
	TargetHandle  string           `json:"targetHandle,omitempty"`
	Location      *geo.Location    `json:"location,omitempty"`
	Context       contexts.Type    `json:"contextType,omitempty"`
	Answer        string           `json:"answer,omitempty"`
	Prediction    int              `json:"prediction"`
	HasPrediction bool             `json:"hasPrediction"`
}

// Input is the generation input of a completed session.
func (s Session) Input() signals.Input {
	return signals.Input{
		Handle:     s.TargetHandle,
		Context:    s.Context,
		Answer:     s.Answer,
		Prediction: s.Prediction,
	}
}

// clearFrom drops every field captured in state st or later.
func (s *Session) clearFrom(st State) {
	i := st.index()
	if i <= NetworkSelect.index() {
		s.Network = ""
	}
	if i <= OwnHandle.index() {
		s.OwnHandle = ""
	}
	if i <= TargetHandle.index() {
		s.TargetHandle = ""
	}
	if i <= LocationVerify.index() {
		s.Location = nil
	}
	if i <= ContextSelect.index() {
		s.Context = ""
	}
	if i <= ContextQuestion.index() {
		s.Answer = ""
	}
	if i <= PredictionInput.index() {
		s.Prediction = 0
		s.HasPrediction = false
	}
}

// Access is what the auth and payment collaborators reported for the unlock
// attempt.
type Access struct {
	Authenticated bool
	Paid          bool
	Subscribed    bool
}

func (a Access) Granted() bool {
	return a.Authenticated && (a.Paid || a.Subscribed)
}

type Event interface{ name() string }

type (
	NetworkChosen       struct{ Network string }
	OwnHandleEntered    struct{ Handle string }
	TargetHandleEntered struct{ Handle string }
	LocationResolved    struct{ Location geo.Location }
	ContextChosen       struct{ Context string }
	AnswerGiven         struct{ Answer string }
	PredictionSet       struct{ Value int }
	AnalysisCompleted   struct{}
	UnlockRequested     struct{ Access Access }
	Back                struct{}
	Reset               struct{}
)

func (NetworkChosen) name() string       { return "network_chosen" }
func (OwnHandleEntered) name() string    { return "own_handle_entered" }
func (TargetHandleEntered) name() string { return "target_handle_entered" }
func (LocationResolved) name() string    { return "location_resolved" }
func (ContextChosen) name() string       { return "context_chosen" }
func (AnswerGiven) name() string         { return "answer_given" }
func (PredictionSet) name() string       { return "prediction_set" }
func (AnalysisCompleted) name() string   { return "analysis_completed" }
func (UnlockRequested) name() string     { return "unlock_requested" }
func (Back) name() string                { return "back" }
func (Reset) name() string               { return "reset" }

type Effect string

const (
	// StartLocationVerify runs the geo lookup alongside the 15 s animation and
	// fires LocationResolved once both are over.
	StartLocationVerify Effect = "start_location_verify"
	// StartAnalysis runs the staged animation and fires AnalysisCompleted.
	StartAnalysis Effect = "start_analysis"
	// PersistResult writes the result bundle to the client state store.
	PersistResult Effect = "persist_result"
	// SaveSession records the analysis with the persistence collaborator.
	SaveSession       Effect = "save_session"
	RedirectToPayment Effect = "redirect_to_payment"
	MarkUnlocked      Effect = "mark_unlocked"
	CancelTasks       Effect = "cancel_tasks"
	ClearStorage      Effect = "clear_storage"
)

type Transition struct {
	From    State
	To      State
	Event   string
	Effects []Effect
}

func (t Transition) Has(e Effect) bool {
	for _, x := range t.Effects {
		if x == e {
			return true
		}
	}
	return false
}

// Generator turns a completed session into its result.
type Generator func(signals.Input) signals.Result

// Machine is not safe for concurrent use; callers serialise access.
type Machine struct {
	state    State
	session  Session
	result   *signals.Result
	unlocked bool
	generate Generator
}

func New(gen Generator) *Machine {
	if gen == nil {
		gen = signals.Generate
	}
	return &Machine{state: NetworkSelect, generate: gen}
}

// Resume rebuilds a machine that already holds a result, for instance after
// the in-memory machine was evicted but the client state survived.
func Resume(gen Generator, sess Session, result signals.Result, unlocked bool) *Machine {
	m := New(gen)
	m.session = sess
	r := result
	m.result = &r
	m.state = LockedResults
	if unlocked {
		m.unlocked = true
		m.state = UnlockedResults
	}
	return m
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Session() Session { return m.session }

func (m *Machine) Unlocked() bool { return m.unlocked }

// Result returns the result produced on entering LockedResults. The returned
// value is a copy.
func (m *Machine) Result() (signals.Result, bool) {
	if m.result == nil {
		return signals.Result{}, false
	}
	return *m.result, true
}

// ErrInvalidTransition is returned, wrapped, when an event does not apply to
// the current state. It matches pkgerrors.ErrConflict.
var ErrInvalidTransition = fmt.Errorf("invalid transition: %w", pkgerrors.ErrConflict)

func invalid(st State, ev Event) error {
	return fmt.Errorf("%s in %s: %w", ev.name(), st, ErrInvalidTransition)
}

// Fire applies ev. On error the machine is unchanged.
func (m *Machine) Fire(ev Event) (Transition, error) {
	from := m.state
	switch e := ev.(type) {
	case Reset:
		m.reset()
		return m.moved(from, ev, CancelTasks, ClearStorage), nil
	case Back:
		return m.back(from)
	case UnlockRequested:
		return m.unlock(from, e.Access)
	}

	switch from {
	case NetworkSelect:
		e, ok := ev.(NetworkChosen)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		n, err := contexts.ParseNetwork(e.Network)
		if err != nil {
			return Transition{}, pkgerrors.Invalid("Réseau social inconnu")
		}
		m.session.Network = n
		m.state = OwnHandle

	case OwnHandle:
		e, ok := ev.(OwnHandleEntered)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		h, err := handle(e.Handle)
		if err != nil {
			return Transition{}, err
		}
		m.session.OwnHandle = h
		m.state = TargetHandle

	case TargetHandle:
		e, ok := ev.(TargetHandleEntered)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		h, err := handle(e.Handle)
		if err != nil {
			return Transition{}, err
		}
		m.session.TargetHandle = h
		m.state = LocationVerify
		return m.moved(from, ev, StartLocationVerify), nil

	case LocationVerify:
		e, ok := ev.(LocationResolved)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		loc := e.Location
		m.session.Location = &loc
		m.state = ContextSelect

	case ContextSelect:
		e, ok := ev.(ContextChosen)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		ct, err := contexts.ParseType(e.Context)
		if err != nil {
			return Transition{}, pkgerrors.Invalid("Contexte inconnu")
		}
		m.session.Context = ct
		m.state = ContextQuestion

	case ContextQuestion:
		e, ok := ev.(AnswerGiven)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		def, _ := contexts.Lookup(m.session.Context)
		if !def.HasAnswer(e.Answer) {
			return Transition{}, pkgerrors.Invalid("Réponse invalide")
		}
		m.session.Answer = e.Answer
		m.state = PredictionInput

	case PredictionInput:
		e, ok := ev.(PredictionSet)
		if !ok {
			return Transition{}, invalid(from, ev)
		}
		if e.Value < MinPrediction || e.Value > MaxPrediction {
			return Transition{}, pkgerrors.Invalid(fmt.Sprintf("La prédiction doit être comprise entre %d et %d", MinPrediction, MaxPrediction))
		}
		m.session.Prediction = e.Value
		m.session.HasPrediction = true
		m.state = FakeAnalysis
		return m.moved(from, ev, StartAnalysis), nil

	case FakeAnalysis:
		if _, ok := ev.(AnalysisCompleted); !ok {
			return Transition{}, invalid(from, ev)
		}
		res := m.generate(m.session.Input())
		m.result = &res
		m.state = LockedResults
		return m.moved(from, ev, PersistResult, SaveSession), nil

	default:
		return Transition{}, invalid(from, ev)
	}
	return m.moved(from, ev), nil
}

func (m *Machine) moved(from State, ev Event, effects ...Effect) Transition {
	return Transition{From: from, To: m.state, Event: ev.name(), Effects: effects}
}

func (m *Machine) reset() {
	m.state = NetworkSelect
	m.session = Session{}
	m.result = nil
	m.unlocked = false
}

// back re-enters the previous state and clears what was captured there.
// The animated states and the result states have no way back; a new analysis
// goes through Reset.
func (m *Machine) back(from State) (Transition, error) {
	switch from {
	case NetworkSelect, LocationVerify, FakeAnalysis, LockedResults, UnlockedResults:
		return Transition{}, invalid(from, Back{})
	}
	prev := order[from.index()-1]
	m.session.clearFrom(prev)
	m.state = prev
	if prev == LocationVerify {
		return m.moved(from, Back{}, StartLocationVerify), nil
	}
	return m.moved(from, Back{}), nil
}

// unlock is the gate in front of the full results. Without an identity and a
// payment or subscription the visitor stays on the teaser and is sent to pay.
func (m *Machine) unlock(from State, a Access) (Transition, error) {
	switch from {
	case UnlockedResults:
		return m.moved(from, UnlockRequested{}), nil
	case LockedResults:
	default:
		return Transition{}, invalid(from, UnlockRequested{})
	}
	if !a.Granted() {
		return m.moved(from, UnlockRequested{}, RedirectToPayment), nil
	}
	m.unlocked = true
	m.state = UnlockedResults
	return m.moved(from, UnlockRequested{}, MarkUnlocked), nil
}

func handle(raw string) (string, error) {
	h := contexts.NormalizeHandle(raw)
	if h == "" {
		return "", pkgerrors.Invalid("Le nom d'utilisateur est requis")
	}
	return h, nil
}
