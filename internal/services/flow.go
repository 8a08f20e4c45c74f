package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Milo-adonos/SilentView/internal/clientstate"
	"github.com/Milo-adonos/SilentView/internal/contexts"
	"github.com/Milo-adonos/SilentView/internal/flow"
	"github.com/Milo-adonos/SilentView/internal/geo"
	"github.com/Milo-adonos/SilentView/internal/payment"
	"github.com/Milo-adonos/SilentView/internal/pkg/ctxutil"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/progress"
	"github.com/Milo-adonos/SilentView/internal/signals"
	"github.com/Milo-adonos/SilentView/internal/sse"
	"github.com/Milo-adonos/SilentView/internal/task"
)

// PaymentPage is where a visitor without access is sent from the results.
const PaymentPage = "/dashboardfree"

// ErrNoSession is returned by the result views when the browser session has
// no stored analysis, including when the stored one could not be decoded.
var ErrNoSession = fmt.Errorf("no analysis session: %w", pkgerrors.ErrNotFound)

// Publisher pushes a message to every SSE client of one browser session.
type Publisher interface {
	Publish(channel string, event sse.Event, data any)
}

// AccessChecker answers the payment half of the unlock gate.
type AccessChecker interface {
	Access(ctx context.Context, req AccessRequest) (Access, error)
}

type FlowView struct {
	State     flow.State   `json:"state"`
	Session   flow.Session `json:"session"`
	HasResult bool         `json:"hasResult"`
	Unlocked  bool         `json:"unlocked"`
}

type SignalTeaser struct {
	Title     string            `json:"title"`
	Preview   string            `json:"preview,omitempty"`
	Icon      signals.Icon      `json:"iconType"`
	Intensity signals.Intensity `json:"intensity,omitempty"`
	Style     string            `json:"style,omitempty"`
	Locked    bool              `json:"locked"`
}

// LockedView is the free teaser. Only the first FreeSignals cards are shown
// in full.
type LockedView struct {
	TargetUsername    string                `json:"targetUsername"`
	OwnUsername       string                `json:"ownUsername"`
	NetworkStyle      string                `json:"networkStyle,omitempty"`
	PersonalizedTitle signals.Title         `json:"personalizedTitle"`
	Signals           []SignalTeaser        `json:"signals"`
	InterestScore     int                   `json:"interestScore"`
	VisitsCount       int                   `json:"visitsCount"`
	LastVisit         string                `json:"lastVisit"`
	Texts             *contexts.ResultTexts `json:"texts,omitempty"`
}

type UnlockedView struct {
	TargetUsername string         `json:"targetUsername"`
	OwnUsername    string         `json:"ownUsername"`
	Result         signals.Result `json:"generatedSignals"`
}

const FreeSignals = 2

type FlowService interface {
	View(ctx context.Context, sid string) (FlowView, error)
	// Fire applies one visitor event and runs the resulting effects. Timer
	// driven transitions happen later and are announced over SSE.
	Fire(ctx context.Context, sid string, ev flow.Event) (FlowView, error)
	Locked(ctx context.Context, sid string) (LockedView, error)
	// Unlock runs the gate. Without access it returns ErrPaymentRequired and
	// the visitor stays on the locked results.
	Unlock(ctx context.Context, sid string) (UnlockedView, error)
	// ConfirmPaymentReturn records what the payment page redirect reported.
	ConfirmPaymentReturn(ctx context.Context, sid string, ret payment.Return) error
	// CheckoutRef returns the reference and identifier a checkout for this
	// browser session is created with.
	CheckoutRef(ctx context.Context, sid string) (ref, identifier string, err error)
	Close()
}

type FlowConfig struct {
	SessionCacheSize int
	ResultCacheSize  int
	// OnTransition is told about every applied transition.
	OnTransition func(flow.Transition)
}

func (c FlowConfig) withDefaults() FlowConfig {
	if c.SessionCacheSize <= 0 {
		c.SessionCacheSize = 4096
	}
	if c.ResultCacheSize <= 0 {
		c.ResultCacheSize = 1024
	}
	return c
}

// flowSession is the server side of one browser session. mu guards every
// field and is held while effects are applied.
type flowSession struct {
	mu         sync.Mutex
	machine    *flow.Machine
	tasks      *task.Group
	epoch      uint64
	analysisID uuid.UUID
	checkout   string
	paid       bool
	clientIP   string
	userID     uuid.UUID
}

type flowService struct {
	log     *logger.Logger
	geo     geo.Detector
	runner  progress.Runner
	store   clientstate.Store
	pub     Publisher
	history HistoryService
	access  AccessChecker

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions *lru.Cache[string, *flowSession]
	results  *lru.Cache[string, signals.Result]
	observe  func(flow.Transition)
	now      func() time.Time
}

func NewFlowService(
	log *logger.Logger,
	detector geo.Detector,
	runner progress.Runner,
	store clientstate.Store,
	pub Publisher,
	history HistoryService,
	access AccessChecker,
	cfg FlowConfig,
) (FlowService, error) {
	cfg = cfg.withDefaults()
	sessions, err := lru.NewWithEvict[string, *flowSession](cfg.SessionCacheSize, func(_ string, fs *flowSession) {
		fs.tasks.CancelAll()
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	results, err := lru.New[string, signals.Result](cfg.ResultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("result cache: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &flowService{
		log:      log.With("service", "FlowService"),
		geo:      detector,
		runner:   runner,
		store:    store,
		pub:      pub,
		history:  history,
		access:   access,
		ctx:      ctx,
		cancel:   cancel,
		sessions: sessions,
		results:  results,
		observe:  cfg.OnTransition,
		now:      time.Now,
	}, nil
}

// generate memoises results by seed; the engine is pure so a hit is
// indistinguishable from a fresh run.
func (s *flowService) generate(in signals.Input) signals.Result {
	seed := in.Seed()
	if r, ok := s.results.Get(seed); ok {
		return r
	}
	_, span := otel.Tracer("silentview/signals").Start(s.ctx, "signals.Generate")
	span.SetAttributes(attribute.String("signals.context", string(in.Context)))
	r := signals.Generate(in)
	span.End()
	s.results.Add(seed, r)
	return r
}

// session returns the live session for sid, resuming it from the client
// state store when the in-memory machine is gone.
func (s *flowService) session(ctx context.Context, sid string) (*flowSession, error) {
	if sid == "" {
		return nil, pkgerrors.Invalid("missing browser session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if fs, ok := s.sessions.Get(sid); ok {
		return fs, nil
	}
	fs := &flowSession{machine: flow.New(s.generate), tasks: task.NewGroup()}

	b, ok, err := s.store.LoadBundle(ctx, sid)
	if err != nil {
		s.log.Warn("Client state unavailable; starting a fresh flow", "session_id", sid, "error", err)
	}
	if ok {
		unlocked, err := s.store.Unlocked(ctx, sid)
		if err != nil {
			s.log.Warn("Unlocked flag unavailable", "session_id", sid, "error", err)
		}
		res := b.GeneratedSignals
		fs.machine = flow.Resume(s.generate, flow.Session{
			OwnHandle:     b.OwnUsername,
			TargetHandle:  b.TargetUsername,
			Answer:        res.UserAnswer,
			Prediction:    res.UserPrediction,
			HasPrediction: true,
		}, res, unlocked)
	}
	s.sessions.Add(sid, fs)
	return fs, nil
}

func (s *flowService) identify(ctx context.Context, fs *flowSession) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return
	}
	if rd.ClientIP != "" {
		fs.clientIP = rd.ClientIP
	}
	if rd.Authenticated() {
		fs.userID = rd.UserID
	}
}

func viewOf(fs *flowSession) FlowView {
	_, has := fs.machine.Result()
	return FlowView{
		State:     fs.machine.State(),
		Session:   fs.machine.Session(),
		HasResult: has,
		Unlocked:  fs.machine.Unlocked(),
	}
}

func (s *flowService) View(ctx context.Context, sid string) (FlowView, error) {
	fs, err := s.session(ctx, sid)
	if err != nil {
		return FlowView{}, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return viewOf(fs), nil
}

func (s *flowService) Fire(ctx context.Context, sid string, ev flow.Event) (FlowView, error) {
	fs, err := s.session(ctx, sid)
	if err != nil {
		return FlowView{}, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	s.identify(ctx, fs)

	tr, err := fs.machine.Fire(ev)
	if err != nil {
		return viewOf(fs), err
	}
	s.apply(ctx, sid, fs, tr)
	return viewOf(fs), nil
}

// apply performs tr's effects. Callers hold fs.mu.
func (s *flowService) apply(ctx context.Context, sid string, fs *flowSession, tr flow.Transition) {
	if s.observe != nil {
		s.observe(tr)
	}
	for _, eff := range tr.Effects {
		switch eff {
		case flow.CancelTasks:
			if n := fs.tasks.CancelAll(); n > 0 {
				s.log.Debug("Cancelled flow tasks", "session_id", sid, "count", n)
			}
			fs.epoch++
		case flow.ClearStorage:
			fs.analysisID = uuid.Nil
			fs.checkout = ""
			fs.paid = false
			if err := s.store.Clear(ctx, sid); err != nil {
				s.log.Warn("Failed to clear client state", "session_id", sid, "error", err)
			}
		case flow.StartLocationVerify:
			s.startLocation(sid, fs)
		case flow.StartAnalysis:
			s.startAnalysis(sid, fs)
		case flow.PersistResult:
			s.persist(ctx, sid, fs)
		case flow.SaveSession:
			s.saveSession(sid, fs)
		case flow.MarkUnlocked:
			if err := s.store.SetUnlocked(ctx, sid); err != nil {
				s.log.Warn("Failed to store unlocked flag", "session_id", sid, "error", err)
			}
		case flow.RedirectToPayment:
			// surfaced by Unlock as ErrPaymentRequired
		}
	}
}

func (s *flowService) publish(sid string, event sse.Event, data any) {
	if s.pub != nil {
		s.pub.Publish(sid, event, data)
	}
}

// timerFire applies a timer-driven event unless the task was cancelled while
// it waited for the lock.
func (s *flowService) timerFire(ctx context.Context, sid string, fs *flowSession, ev flow.Event) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	tr, err := fs.machine.Fire(ev)
	if err != nil {
		s.log.Debug("Timer event no longer applies", "session_id", sid, "error", err)
		return
	}
	// The background context outlives the request that started the timer.
	s.apply(s.ctx, sid, fs, tr)
	s.publish(sid, sse.EventFlow, viewOf(fs))
}

// startLocation runs the lookup alongside the animation. The animation is a
// floor: the location is only surfaced once it has finished.
func (s *flowService) startLocation(sid string, fs *flowSession) {
	ip := fs.clientIP
	fs.tasks.Go(s.ctx, func(ctx context.Context) {
		var loc geo.Location
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			loc = s.geo.Detect(gctx, ip)
			return nil
		})
		g.Go(func() error {
			return s.runner.RunLocation(gctx, func(u progress.Update) { s.publish(sid, sse.EventProgress, u) })
		})
		if err := g.Wait(); err != nil {
			return
		}
		s.timerFire(ctx, sid, fs, flow.LocationResolved{Location: loc})
	})
}

func (s *flowService) startAnalysis(sid string, fs *flowSession) {
	fs.tasks.Go(s.ctx, func(ctx context.Context) {
		emit := func(u progress.Update) { s.publish(sid, sse.EventProgress, u) }
		if _, err := s.runner.RunAnalysis(ctx, emit); err != nil {
			return
		}
		s.timerFire(ctx, sid, fs, flow.AnalysisCompleted{})
	})
}

func (s *flowService) persist(ctx context.Context, sid string, fs *flowSession) {
	res, ok := fs.machine.Result()
	if !ok {
		return
	}
	sess := fs.machine.Session()
	b := clientstate.Bundle{TargetUsername: sess.TargetHandle, OwnUsername: sess.OwnHandle, GeneratedSignals: res}
	if err := s.store.SaveBundle(ctx, sid, b); err != nil {
		s.log.Warn("Failed to persist analysis bundle", "session_id", sid, "error", err)
	}
}

// saveSession records the analysis without holding up the flow. The id is
// kept only if no reset happened in the meantime.
func (s *flowService) saveSession(sid string, fs *flowSession) {
	if s.history == nil {
		return
	}
	res, ok := fs.machine.Result()
	if !ok {
		return
	}
	sess := fs.machine.Session()
	userID := fs.userID
	epoch := fs.epoch
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		defer cancel()
		id, err := s.history.Save(ctx, userID, sess, res)
		if err != nil {
			s.log.Warn("Failed to save analysis session", "session_id", sid, "error", err)
			return
		}
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.epoch == epoch {
			fs.analysisID = id
		}
	}()
}

func (s *flowService) resultOf(fs *flowSession) (signals.Result, flow.Session, error) {
	res, ok := fs.machine.Result()
	if !ok {
		return signals.Result{}, flow.Session{}, ErrNoSession
	}
	return res, fs.machine.Session(), nil
}

func (s *flowService) Locked(ctx context.Context, sid string) (LockedView, error) {
	fs, err := s.session(ctx, sid)
	if err != nil {
		return LockedView{}, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	res, sess, err := s.resultOf(fs)
	if err != nil {
		return LockedView{}, err
	}
	return lockedView(res, sess), nil
}

func lockedView(res signals.Result, sess flow.Session) LockedView {
	v := LockedView{
		TargetUsername:    sess.TargetHandle,
		OwnUsername:       sess.OwnHandle,
		PersonalizedTitle: res.PersonalizedTitle,
		InterestScore:     res.InterestScore,
		VisitsCount:       res.VisitsCount,
		LastVisit:         res.LastVisit,
		Signals:           make([]SignalTeaser, 0, signals.SignalCount),
	}
	if sess.Network != "" {
		v.NetworkStyle = contexts.NetworkStyle(sess.Network)
	}
	if def, ok := contexts.Lookup(sess.Context); ok {
		texts := def.Result
		v.Texts = &texts
	}
	for i, sig := range res.Signals {
		t := SignalTeaser{Title: sig.Title, Icon: sig.Icon, Locked: i >= FreeSignals}
		if !t.Locked {
			t.Preview = sig.Preview
			t.Intensity = sig.Intensity
			t.Style = sig.Intensity.Style()
		}
		v.Signals = append(v.Signals, t)
	}
	return v
}

func (s *flowService) Unlock(ctx context.Context, sid string) (UnlockedView, error) {
	fs, err := s.session(ctx, sid)
	if err != nil {
		return UnlockedView{}, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	s.identify(ctx, fs)
	if _, _, err := s.resultOf(fs); err != nil {
		return UnlockedView{}, err
	}

	acc := flow.Access{Authenticated: fs.userID != uuid.Nil, Paid: fs.paid}
	if acc.Authenticated && fs.machine.State() != flow.UnlockedResults {
		if fs.analysisID != uuid.Nil && s.history != nil {
			if err := s.history.Attach(ctx, fs.analysisID, fs.userID); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
				s.log.Warn("Failed to attach analysis to user", "session_id", sid, "error", err)
			}
		}
		if s.access != nil {
			a, err := s.access.Access(ctx, AccessRequest{
				UserID:         fs.userID,
				UserIdentifier: fs.machine.Session().OwnHandle,
				AnalysisID:     fs.analysisID,
			})
			if err != nil {
				s.log.Warn("Access check failed", "session_id", sid, "error", err)
			}
			acc.Paid = acc.Paid || a.Paid
			acc.Subscribed = a.Subscribed
		}
	}

	tr, err := fs.machine.Fire(flow.UnlockRequested{Access: acc})
	if err != nil {
		return UnlockedView{}, err
	}
	s.apply(ctx, sid, fs, tr)
	if tr.Has(flow.RedirectToPayment) {
		return UnlockedView{}, pkgerrors.ErrPaymentRequired
	}
	res, sess, _ := s.resultOf(fs)
	return UnlockedView{TargetUsername: sess.TargetHandle, OwnUsername: sess.OwnHandle, Result: res}, nil
}

func (s *flowService) ConfirmPaymentReturn(ctx context.Context, sid string, ret payment.Return) error {
	fs, err := s.session(ctx, sid)
	if err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	switch ret.Status {
	case payment.ReturnCancelled:
		s.log.Info("Payment cancelled", "session_id", sid)
		return nil
	case payment.ReturnSuccess:
	default:
		return nil
	}
	if fs.checkout != "" && ret.SessionID != "" && ret.SessionID != fs.checkout {
		s.log.Warn("Payment return for another checkout ignored", "session_id", sid, "checkout", ret.SessionID)
		return nil
	}
	fs.paid = true
	s.log.Info("Payment return recorded", "session_id", sid, "payment_type", ret.PaymentType)
	return nil
}

func (s *flowService) CheckoutRef(ctx context.Context, sid string) (string, string, error) {
	fs, err := s.session(ctx, sid)
	if err != nil {
		return "", "", err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, _, err := s.resultOf(fs); err != nil {
		return "", "", err
	}
	switch {
	case fs.analysisID != uuid.Nil:
		fs.checkout = fs.analysisID.String()
	case fs.checkout == "":
		fs.checkout = payment.NewTrackingID(s.now())
	}
	return fs.checkout, fs.machine.Session().OwnHandle, nil
}

// Close stops every running flow task.
func (s *flowService) Close() {
	s.cancel()
	s.mu.Lock()
	s.sessions.Purge()
	s.mu.Unlock()
}
