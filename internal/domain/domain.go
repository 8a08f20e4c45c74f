package domain

import (
	"github.com/Milo-adonos/SilentView/internal/domain/alerts"
	"github.com/Milo-adonos/SilentView/internal/domain/analysis"
	"github.com/Milo-adonos/SilentView/internal/domain/auth"
	"github.com/Milo-adonos/SilentView/internal/domain/billing"
	"github.com/Milo-adonos/SilentView/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type AnalysisSession = analysis.AnalysisSession
type Alert = alerts.Alert
type Subscription = billing.Subscription

const (
	SubscriptionActive   = billing.StatusActive
	SubscriptionCanceled = billing.StatusCanceled

	SubscriptionOneTime        = billing.TypeOneTime
	SubscriptionPremiumMonthly = billing.TypePremiumMonthly
)

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&AnalysisSession{},
		&Alert{},
		&Subscription{},
	}
}
