package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Milo-adonos/SilentView/internal/data/repos"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/flow"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
	"github.com/Milo-adonos/SilentView/internal/pkg/pointers"
	"github.com/Milo-adonos/SilentView/internal/signals"
)

// HistoryEntry is one row of a user's analysis history.
type HistoryEntry struct {
	ID              uuid.UUID `json:"id"`
	TargetUsername  string    `json:"target_username"`
	SocialNetwork   string    `json:"social_network"`
	ContextType     string    `json:"context_type"`
	PredictionValue int       `json:"prediction_value"`
	InterestScore   int       `json:"interest_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type HistoryService interface {
	// Save records a completed analysis and returns its id.
	Save(ctx context.Context, userID uuid.UUID, sess flow.Session, res signals.Result) (uuid.UUID, error)
	Attach(ctx context.Context, analysisID, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error)
	// Result re-renders a saved analysis owned by userID.
	Result(ctx context.Context, userID, analysisID uuid.UUID) (signals.Result, error)
}

type historyService struct {
	log         *logger.Logger
	sessionRepo repos.AnalysisSessionRepo
}

func NewHistoryService(log *logger.Logger, sessionRepo repos.AnalysisSessionRepo) HistoryService {
	return &historyService{log: log.With("service", "HistoryService"), sessionRepo: sessionRepo}
}

func (s *historyService) Save(ctx context.Context, userID uuid.UUID, sess flow.Session, res signals.Result) (uuid.UUID, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return uuid.Nil, err
	}
	row := &types.AnalysisSession{
		UserID:          pointers.UUID(userID),
		OwnUsername:     sess.OwnHandle,
		TargetUsername:  sess.TargetHandle,
		SocialNetwork:   string(sess.Network),
		ContextType:     string(sess.Context),
		Question1Answer: string(sess.Context),
		Question2Answer: sess.Answer,
		PredictionValue: sess.Prediction,
		Result:          datatypes.JSON(raw),
	}
	if err := s.sessionRepo.Create(dbctx.Of(ctx), row); err != nil {
		return uuid.Nil, fmt.Errorf("save analysis session: %w", err)
	}
	return row.ID, nil
}

func (s *historyService) Attach(ctx context.Context, analysisID, userID uuid.UUID) error {
	return s.sessionRepo.AttachUser(dbctx.Of(ctx), analysisID, userID)
}

func (s *historyService) List(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := s.sessionRepo.ListByUser(dbctx.Of(ctx), userID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		e := HistoryEntry{
			ID:              r.ID,
			TargetUsername:  r.TargetUsername,
			SocialNetwork:   r.SocialNetwork,
			ContextType:     r.ContextType,
			PredictionValue: r.PredictionValue,
			CreatedAt:       r.CreatedAt,
		}
		var res signals.Result
		if len(r.Result) > 0 && json.Unmarshal(r.Result, &res) == nil {
			e.InterestScore = res.InterestScore
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *historyService) Result(ctx context.Context, userID, analysisID uuid.UUID) (signals.Result, error) {
	row, err := s.sessionRepo.GetByID(dbctx.Of(ctx), analysisID)
	if err != nil {
		return signals.Result{}, err
	}
	if row.UserID == nil || *row.UserID != userID {
		return signals.Result{}, fmt.Errorf("analysis %s: %w", analysisID, pkgerrors.ErrNotFound)
	}
	var res signals.Result
	if err := json.Unmarshal(row.Result, &res); err != nil {
		return signals.Result{}, fmt.Errorf("decode stored result: %w", err)
	}
	return res, nil
}
