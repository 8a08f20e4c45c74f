package repos

import (
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos/alerts"
	"github.com/Milo-adonos/SilentView/internal/data/repos/analysis"
	"github.com/Milo-adonos/SilentView/internal/data/repos/auth"
	"github.com/Milo-adonos/SilentView/internal/data/repos/billing"
	"github.com/Milo-adonos/SilentView/internal/data/repos/user"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type AnalysisSessionRepo = analysis.AnalysisSessionRepo
type AlertRepo = alerts.AlertRepo
type SubscriptionRepo = billing.SubscriptionRepo

type AnalysisPayment = analysis.Payment

var ErrEmailTaken = user.ErrEmailTaken

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}

func NewAnalysisSessionRepo(db *gorm.DB, log *logger.Logger) AnalysisSessionRepo {
	return analysis.NewAnalysisSessionRepo(db, log)
}

func NewAlertRepo(db *gorm.DB, log *logger.Logger) AlertRepo { return alerts.NewAlertRepo(db, log) }

func NewSubscriptionRepo(db *gorm.DB, log *logger.Logger) SubscriptionRepo {
	return billing.NewSubscriptionRepo(db, log)
}
