// Package clientstate keeps the two values a browser session carries
// between pages: the analysis bundle and the unlocked flag. Both live under
// fixed keys scoped by the browser session id and are always cleared
// together.
package clientstate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/signals"
)

const (
	AnalysisKey = "silentview_analysis_data"
	UnlockedKey = "silentview_unlocked"
)

// Bundle is the serialized analysis a result page renders from.
type Bundle struct {
	TargetUsername   string         `json:"targetUsername"`
	OwnUsername      string         `json:"ownUsername"`
	GeneratedSignals signals.Result `json:"generatedSignals"`
}

// ErrMissing is returned by a KV backend for absent keys.
var ErrMissing = errors.New("clientstate: key missing")

// KV is the raw backend. Get returns ErrMissing for absent keys.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Store interface {
	SaveBundle(ctx context.Context, sid string, b Bundle) error
	// LoadBundle reports ok=false both when nothing is stored and when the
	// stored value cannot be decoded.
	LoadBundle(ctx context.Context, sid string) (Bundle, bool, error)
	SetUnlocked(ctx context.Context, sid string) error
	Unlocked(ctx context.Context, sid string) (bool, error)
	Clear(ctx context.Context, sid string) error
}

type store struct {
	log *logger.Logger
	kv  KV
	ttl time.Duration
}

func New(log *logger.Logger, kv KV, ttl time.Duration) Store {
	return &store{log: log.With("service", "ClientStateStore"), kv: kv, ttl: ttl}
}

func key(sid, name string) string { return sid + ":" + name }

func (s *store) SaveBundle(ctx context.Context, sid string, b Bundle) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key(sid, AnalysisKey), string(raw), s.ttl)
}

func (s *store) LoadBundle(ctx context.Context, sid string) (Bundle, bool, error) {
	raw, err := s.kv.Get(ctx, key(sid, AnalysisKey))
	if errors.Is(err, ErrMissing) {
		return Bundle{}, false, nil
	}
	if err != nil {
		return Bundle{}, false, err
	}
	var b Bundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		s.log.Warn("unreadable analysis bundle, treating as no session", "session_id", sid, "error", err)
		return Bundle{}, false, nil
	}
	return b, true, nil
}

func (s *store) SetUnlocked(ctx context.Context, sid string) error {
	return s.kv.Set(ctx, key(sid, UnlockedKey), "true", s.ttl)
}

func (s *store) Unlocked(ctx context.Context, sid string) (bool, error) {
	raw, err := s.kv.Get(ctx, key(sid, UnlockedKey))
	if errors.Is(err, ErrMissing) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return raw == "true", nil
}

func (s *store) Clear(ctx context.Context, sid string) error {
	return s.kv.Del(ctx, key(sid, AnalysisKey), key(sid, UnlockedKey))
}
