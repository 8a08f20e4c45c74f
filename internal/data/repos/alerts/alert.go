package alerts

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type AlertRepo interface {
	Create(dbc dbctx.Context, a *types.Alert) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Alert, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Exists(dbc dbctx.Context, userID uuid.UUID, targetUsername, network string) (bool, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
	SetActive(dbc dbctx.Context, userID, id uuid.UUID, active bool) error
}

type alertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	repoLog := baseLog.With("repo", "AlertRepo")
	return &alertRepo{db: db, log: repoLog}
}

func (r *alertRepo) Create(dbc dbctx.Context, a *types.Alert) error {
	return dbc.Conn(r.db).Create(a).Error
}

func (r *alertRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Alert, error) {
	var out []*types.Alert
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alertRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).Model(&types.Alert{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// Exists compares handles case-insensitively.
func (r *alertRepo) Exists(dbc dbctx.Context, userID uuid.UUID, targetUsername, network string) (bool, error) {
	var n int64
	if err := dbc.Conn(r.db).
		Model(&types.Alert{}).
		Where("user_id = ? AND LOWER(target_username) = LOWER(?) AND social_network = ?", userID, targetUsername, network).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *alertRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	res := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.Alert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *alertRepo) SetActive(dbc dbctx.Context, userID, id uuid.UUID, active bool) error {
	res := dbc.Conn(r.db).
		Model(&types.Alert{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}
