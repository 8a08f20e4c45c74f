package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusCanceled = "canceled"

	TypeOneTime        = "one_time"
	TypePremiumMonthly = "premium_monthly"
)

type Subscription struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	UserIdentifier   string     `gorm:"index;not null;column:user_identifier" json:"user_identifier"`
	SubscriptionType string     `gorm:"not null;column:subscription_type" json:"subscription_type"`
	Status           string     `gorm:"not null;index;column:status" json:"status"`
	StartedAt        time.Time  `gorm:"not null;column:started_at" json:"started_at"`
	ExpiresAt        *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`
}

func (Subscription) TableName() string { return "premium_subscriptions" }

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the subscription grants access at t.
func (s Subscription) ActiveAt(t time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(t)
}
