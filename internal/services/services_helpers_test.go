package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/Milo-adonos/SilentView/internal/data/repos"
	"github.com/Milo-adonos/SilentView/internal/data/repos/testutil"
	"github.com/Milo-adonos/SilentView/internal/payment"
	"github.com/Milo-adonos/SilentView/internal/pkg/logger"
)

type testRepos struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	tokens   repos.UserTokenRepo
	sessions repos.AnalysisSessionRepo
	alerts   repos.AlertRepo
	subs     repos.SubscriptionRepo
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return testRepos{
		db:       db,
		log:      log,
		users:    repos.NewUserRepo(db, log),
		tokens:   repos.NewUserTokenRepo(db, log),
		sessions: repos.NewAnalysisSessionRepo(db, log),
		alerts:   repos.NewAlertRepo(db, log),
		subs:     repos.NewSubscriptionRepo(db, log),
	}
}

type fakeCheckout struct {
	mu    sync.Mutex
	calls []payment.CheckoutParams
	url   string
	err   error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, p payment.CheckoutParams) (payment.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if f.err != nil {
		return payment.CheckoutSession{}, f.err
	}
	return payment.CheckoutSession{ID: "cs_test_1", URL: f.url}, nil
}
