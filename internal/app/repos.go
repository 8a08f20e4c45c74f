package app

import (
	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	AnalysisSession repos.AnalysisSessionRepo
	Alert           repos.AlertRepo
	Subscription    repos.SubscriptionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		AnalysisSession: repos.NewAnalysisSessionRepo(db, log),
		Alert:           repos.NewAlertRepo(db, log),
		Subscription:    repos.NewSubscriptionRepo(db, log),
	}
}
