package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos/dberr"
	types "github.com/Milo-adonos/SilentView/internal/domain"
	"github.com/Milo-adonos/SilentView/internal/pkg/dbctx"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, token *types.UserToken) error
	GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error)
	DeleteByAccessToken(dbc dbctx.Context, accessToken string) error
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, token *types.UserToken) error {
	return dbc.Conn(utr.db).Create(token).Error
}

func (utr *userTokenRepo) GetByAccessToken(dbc dbctx.Context, accessToken string) (*types.UserToken, error) {
	var out types.UserToken
	if err := dbc.Conn(utr.db).
		Where("access_token = ?", accessToken).
		First(&out).Error; err != nil {
		return nil, dberr.NotFound(err)
	}
	return &out, nil
}

// Deletes are hard deletes so a signed-out token can never be reused.

func (utr *userTokenRepo) DeleteByAccessToken(dbc dbctx.Context, accessToken string) error {
	return dbc.Conn(utr.db).
		Unscoped().
		Where("access_token = ?", accessToken).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.Conn(utr.db).
		Unscoped().
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.Conn(utr.db).
		Unscoped().
		Where("expires_at < ?", now).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		utr.log.Debug("Expired tokens removed", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
