package analysis

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos/dberr"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

// Payment is what a completed checkout records on the session row.
type Payment struct {
	PaymentType     string
	StripePaymentID string
	UserID          *uuid.UUID
}

type AnalysisSessionRepo interface {
	Create(dbc dbctx.Context, s *types.AnalysisSession) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AnalysisSession, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AnalysisSession, error)
	AttachUser(dbc dbctx.Context, id, userID uuid.UUID) error
	MarkPaid(dbc dbctx.Context, id uuid.UUID, p Payment) error
	PaidFor(dbc dbctx.Context, id uuid.UUID, ownUsername string) (bool, error)
}

type analysisSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalysisSessionRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisSessionRepo {
	repoLog := baseLog.With("repo", "AnalysisSessionRepo")
	return &analysisSessionRepo{db: db, log: repoLog}
}

func (r *analysisSessionRepo) Create(dbc dbctx.Context, s *types.AnalysisSession) error {
	return dbc.Conn(r.db).Create(s).Error
}

func (r *analysisSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AnalysisSession, error) {
	var out types.AnalysisSession
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, dberr.NotFound(err)
	}
	return &out, nil
}

// ListByUser returns the user's sessions, newest first. limit <= 0 means all.
func (r *analysisSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.AnalysisSession, error) {
	q := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.AnalysisSession
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *analysisSessionRepo) AttachUser(dbc dbctx.Context, id, userID uuid.UUID) error {
	res := dbc.Conn(r.db).
		Model(&types.AnalysisSession{}).
		Where("id = ? AND user_id IS NULL", id).
		Update("user_id", userID)
	return res.Error
}

func (r *analysisSessionRepo) MarkPaid(dbc dbctx.Context, id uuid.UUID, p Payment) error {
	updates := map[string]any{
		"payment_completed": true,
		"payment_type":      p.PaymentType,
		"stripe_payment_id": p.StripePaymentID,
	}
	if p.UserID != nil {
		updates["user_id"] = *p.UserID
	}
	res := dbc.Conn(r.db).
		Model(&types.AnalysisSession{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// PaidFor reports whether session id was paid and belongs to ownUsername.
func (r *analysisSessionRepo) PaidFor(dbc dbctx.Context, id uuid.UUID, ownUsername string) (bool, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(&types.AnalysisSession{}).
		Where("id = ? AND own_username = ? AND payment_completed = ?", id, ownUsername, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
