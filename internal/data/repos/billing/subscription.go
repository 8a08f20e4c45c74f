package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type SubscriptionRepo interface {
	Create(dbc dbctx.Context, s *types.Subscription) error
	// ActiveForUser returns nil, nil when the user has no active subscription.
	ActiveForUser(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.Subscription, error)
	ActiveForIdentifier(dbc dbctx.Context, identifier string, now time.Time) (*types.Subscription, error)
	Touch(dbc dbctx.Context, id uuid.UUID, now time.Time) error
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	repoLog := baseLog.With("repo", "SubscriptionRepo")
	return &subscriptionRepo{db: db, log: repoLog}
}

func (r *subscriptionRepo) Create(dbc dbctx.Context, s *types.Subscription) error {
	return dbc.Conn(r.db).Create(s).Error
}

func (r *subscriptionRepo) active(q *gorm.DB, now time.Time) (*types.Subscription, error) {
	var out types.Subscription
	err := q.
		Where("status = ?", types.SubscriptionActive).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("started_at DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subscriptionRepo) ActiveForUser(dbc dbctx.Context, userID uuid.UUID, now time.Time) (*types.Subscription, error) {
	return r.active(dbc.Conn(r.db).Where("user_id = ?", userID), now)
}

func (r *subscriptionRepo) ActiveForIdentifier(dbc dbctx.Context, identifier string, now time.Time) (*types.Subscription, error) {
	return r.active(dbc.Conn(r.db).Where("user_identifier = ?", identifier), now)
}

func (r *subscriptionRepo) Touch(dbc dbctx.Context, id uuid.UUID, now time.Time) error {
	return dbc.Conn(r.db).
		Model(&types.Subscription{}).
		Where("id = ?", id).
		Update("updated_at", now).Error
}
