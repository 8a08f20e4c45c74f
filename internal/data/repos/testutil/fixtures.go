package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/Milo-adonos/SilentView/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAlert(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, handle, network string) *types.Alert {
	tb.Helper()
	a := &types.Alert{
		UserID:         userID,
		TargetUsername: handle,
		SocialNetwork:  network,
		IsActive:       true,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed alert: %v", err)
	}
	return a
}

// SeedSubscription stores an active premium subscription for identifier.
func SeedSubscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID *uuid.UUID, identifier string) *types.Subscription {
	tb.Helper()
	s := &types.Subscription{
		UserID:           userID,
		UserIdentifier:   identifier,
		SubscriptionType: types.SubscriptionPremiumMonthly,
		Status:           types.SubscriptionActive,
		StartedAt:        time.Now().Add(-time.Hour),
		ExpiresAt:        PtrTime(time.Now().Add(30 * 24 * time.Hour)),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subscription: %v", err)
	}
	return s
}

func PtrTime(v time.Time) *time.Time { return &v }
