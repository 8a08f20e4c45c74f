package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Milo-adonos/SilentView/internal/geo"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/signals"
)

func fire(t *testing.T, m *Machine, ev Event) Transition {
	t.Helper()
	tr, err := m.Fire(ev)
	require.NoError(t, err)
	return tr
}

// toLocked drives a fresh machine through the whole wizard.
func toLocked(t *testing.T, m *Machine) {
	t.Helper()
	fire(t, m, NetworkChosen{Network: "instagram"})
	fire(t, m, OwnHandleEntered{Handle: "@me"})
	fire(t, m, TargetHandleEntered{Handle: " @marie "})
	fire(t, m, LocationResolved{Location: geo.Fallback})
	fire(t, m, ContextChosen{Context: "curiosity"})
	fire(t, m, AnswerGiven{Answer: "Oui bien"})
	fire(t, m, PredictionSet{Value: 20})
	tr := fire(t, m, AnalysisCompleted{})
	require.Equal(t, LockedResults, tr.To)
}

func TestForwardPathAndEffects(t *testing.T) {
	m := New(nil)
	assert.Equal(t, NetworkSelect, m.State())

	tr := fire(t, m, NetworkChosen{Network: "TikTok"})
	assert.Equal(t, Transition{From: NetworkSelect, To: OwnHandle, Event: "network_chosen"}, tr)

	fire(t, m, OwnHandleEntered{Handle: "me"})
	tr = fire(t, m, TargetHandleEntered{Handle: "@marie"})
	assert.Equal(t, LocationVerify, tr.To)
	assert.True(t, tr.Has(StartLocationVerify))

	fire(t, m, LocationResolved{Location: geo.Fallback})
	fire(t, m, ContextChosen{Context: "curiosity"})
	fire(t, m, AnswerGiven{Answer: "Oui bien"})
	tr = fire(t, m, PredictionSet{Value: 20})
	assert.Equal(t, FakeAnalysis, tr.To)
	assert.Equal(t, []Effect{StartAnalysis}, tr.Effects)

	tr = fire(t, m, AnalysisCompleted{})
	assert.Equal(t, LockedResults, tr.To)
	assert.Equal(t, []Effect{PersistResult, SaveSession}, tr.Effects)

	sess := m.Session()
	assert.Equal(t, "marie", sess.TargetHandle)
	assert.Equal(t, "me", sess.OwnHandle)
	require.NotNil(t, sess.Location)
	assert.Equal(t, "Paris", sess.Location.City)

	res, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, signals.Generate(signals.Input{Handle: "marie", Context: "curiosity", Answer: "Oui bien", Prediction: 20}), res)
}

func TestResultGeneratedOnceAndCopied(t *testing.T) {
	calls := 0
	gen := func(in signals.Input) signals.Result {
		calls++
		return signals.Generate(in)
	}
	m := New(gen)
	toLocked(t, m)
	require.Equal(t, 1, calls)

	res, _ := m.Result()
	res.InterestScore = 1
	res.Signals[0].Title = "mutated"

	fire(t, m, UnlockRequested{Access: Access{Authenticated: true, Paid: true}})
	again, _ := m.Result()
	assert.NotEqual(t, 1, again.InterestScore)
	assert.NotEqual(t, "mutated", again.Signals[0].Title)
	assert.Equal(t, 1, calls)
}

func TestValidationKeepsState(t *testing.T) {
	m := New(nil)
	_, err := m.Fire(NetworkChosen{Network: "myspace"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	assert.Equal(t, NetworkSelect, m.State())

	fire(t, m, NetworkChosen{Network: "instagram"})
	_, err = m.Fire(OwnHandleEntered{Handle: "  @ "})
	var v *pkgerrors.Validation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "Le nom d'utilisateur est requis", v.Message)
	assert.Equal(t, OwnHandle, m.State())
	assert.Equal(t, "", m.Session().OwnHandle)

	fire(t, m, OwnHandleEntered{Handle: "me"})
	fire(t, m, TargetHandleEntered{Handle: "marie"})
	fire(t, m, LocationResolved{Location: geo.Fallback})
	fire(t, m, ContextChosen{Context: "ex_crush"})

	_, err = m.Fire(AnswerGiven{Answer: "Oui bien"})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	assert.Equal(t, ContextQuestion, m.State())

	fire(t, m, AnswerGiven{Answer: "J'ai des doutes"})
	_, err = m.Fire(PredictionSet{Value: 51})
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	_, err = m.Fire(PredictionSet{Value: -1})
	assert.Error(t, err)
	assert.Equal(t, PredictionInput, m.State())
	assert.False(t, m.Session().HasPrediction)
}

func TestEventOutOfOrder(t *testing.T) {
	m := New(nil)
	_, err := m.Fire(AnalysisCompleted{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, errors.Is(err, pkgerrors.ErrConflict))
	assert.Equal(t, NetworkSelect, m.State())

	_, err = m.Fire(UnlockRequested{Access: Access{Authenticated: true, Paid: true}})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestBackClearsCapturedInput(t *testing.T) {
	m := New(nil)
	fire(t, m, NetworkChosen{Network: "instagram"})
	fire(t, m, OwnHandleEntered{Handle: "me"})

	tr := fire(t, m, Back{})
	assert.Equal(t, OwnHandle, tr.To)
	assert.Equal(t, "", m.Session().OwnHandle)
	assert.Equal(t, "instagram", string(m.Session().Network))

	tr = fire(t, m, Back{})
	assert.Equal(t, NetworkSelect, tr.To)
	assert.Equal(t, Session{}, m.Session())

	_, err := m.Fire(Back{})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestBackFromQuestionSteps(t *testing.T) {
	m := New(nil)
	fire(t, m, NetworkChosen{Network: "instagram"})
	fire(t, m, OwnHandleEntered{Handle: "me"})
	fire(t, m, TargetHandleEntered{Handle: "marie"})
	fire(t, m, LocationResolved{Location: geo.Fallback})
	fire(t, m, ContextChosen{Context: "friend"})
	fire(t, m, AnswerGiven{Answer: "Peut-être"})

	tr := fire(t, m, Back{})
	assert.Equal(t, ContextQuestion, tr.To)
	assert.Equal(t, "", m.Session().Answer)
	assert.Equal(t, "friend", string(m.Session().Context))

	tr = fire(t, m, Back{})
	assert.Equal(t, ContextSelect, tr.To)
	assert.Equal(t, "", string(m.Session().Context))
	assert.NotNil(t, m.Session().Location)

	tr = fire(t, m, Back{})
	assert.Equal(t, LocationVerify, tr.To)
	assert.True(t, tr.Has(StartLocationVerify))
	assert.Nil(t, m.Session().Location)
	assert.Equal(t, "marie", m.Session().TargetHandle)

	_, err := m.Fire(Back{})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, LocationVerify, m.State())
}

func TestNoBackFromAnimatedOrResultStates(t *testing.T) {
	m := New(nil)
	fire(t, m, NetworkChosen{Network: "instagram"})
	fire(t, m, OwnHandleEntered{Handle: "me"})
	fire(t, m, TargetHandleEntered{Handle: "marie"})
	fire(t, m, LocationResolved{Location: geo.Fallback})
	fire(t, m, ContextChosen{Context: "curiosity"})
	fire(t, m, AnswerGiven{Answer: "Vaguement"})
	fire(t, m, PredictionSet{Value: 3})

	_, err := m.Fire(Back{})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, FakeAnalysis, m.State())

	fire(t, m, AnalysisCompleted{})
	_, err = m.Fire(Back{})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, LockedResults, m.State())
}

func TestUnlockRequiresIdentityAndPayment(t *testing.T) {
	cases := []struct {
		name   string
		access Access
	}{
		{"anonymous", Access{}},
		{"anonymous but paid", Access{Paid: true}},
		{"anonymous but subscribed", Access{Subscribed: true}},
		{"signed in without payment", Access{Authenticated: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(nil)
			toLocked(t, m)
			tr := fire(t, m, UnlockRequested{Access: tc.access})
			assert.Equal(t, LockedResults, tr.To)
			assert.Equal(t, []Effect{RedirectToPayment}, tr.Effects)
			assert.False(t, m.Unlocked())
			assert.Equal(t, LockedResults, m.State())
		})
	}
}

func TestUnlockGranted(t *testing.T) {
	for _, a := range []Access{{Authenticated: true, Paid: true}, {Authenticated: true, Subscribed: true}} {
		m := New(nil)
		toLocked(t, m)
		locked, _ := m.Result()

		tr := fire(t, m, UnlockRequested{Access: a})
		assert.Equal(t, UnlockedResults, tr.To)
		assert.True(t, tr.Has(MarkUnlocked))
		assert.True(t, m.Unlocked())

		unlocked, _ := m.Result()
		assert.Equal(t, locked, unlocked)

		tr = fire(t, m, UnlockRequested{Access: Access{}})
		assert.Equal(t, UnlockedResults, tr.To)
		assert.Empty(t, tr.Effects)
	}
}

func TestResetClearsResultAndUnlock(t *testing.T) {
	m := New(nil)
	toLocked(t, m)
	fire(t, m, UnlockRequested{Access: Access{Authenticated: true, Paid: true}})
	require.True(t, m.Unlocked())

	tr := fire(t, m, Reset{})
	assert.Equal(t, NetworkSelect, tr.To)
	assert.Equal(t, []Effect{CancelTasks, ClearStorage}, tr.Effects)
	assert.False(t, m.Unlocked())
	_, ok := m.Result()
	assert.False(t, ok)
	assert.Equal(t, Session{}, m.Session())

	// Reset from mid-animation also cancels the running tasks.
	toLocked(t, m)
	fire(t, m, Reset{})
	fire(t, m, NetworkChosen{Network: "tiktok"})
	fire(t, m, OwnHandleEntered{Handle: "me"})
	tr = fire(t, m, Reset{})
	assert.Equal(t, OwnHandle, tr.From)
	assert.True(t, tr.Has(CancelTasks))
}

func TestResume(t *testing.T) {
	res := signals.Generate(signals.Input{Handle: "marie", Context: "curiosity", Answer: "Oui bien", Prediction: 20})
	m := Resume(nil, Session{TargetHandle: "marie"}, res, false)
	assert.Equal(t, LockedResults, m.State())
	got, ok := m.Result()
	require.True(t, ok)
	assert.Equal(t, res, got)

	m = Resume(nil, Session{TargetHandle: "marie"}, res, true)
	assert.Equal(t, UnlockedResults, m.State())
	assert.True(t, m.Unlocked())
}

func TestAccessGranted(t *testing.T) {
	assert.False(t, Access{}.Granted())
	assert.False(t, Access{Paid: true, Subscribed: true}.Granted())
	assert.True(t, Access{Authenticated: true, Paid: true}.Granted())
	assert.True(t, Access{Authenticated: true, Subscribed: true}.Granted())
}
