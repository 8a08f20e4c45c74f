package analysis

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisSession is the saved record of one completed wizard run. Result
// holds the generated result exactly as shown to the visitor.
type AnalysisSession struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           *uuid.UUID     `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	OwnUsername      string         `gorm:"column:own_username" json:"own_username"`
	TargetUsername   string         `gorm:"not null;column:target_username" json:"target_username"`
	SocialNetwork    string         `gorm:"column:social_network" json:"social_network"`
	ContextType      string         `gorm:"column:context_type" json:"context_type"`
	Question1Answer  string         `gorm:"column:question_1_answer" json:"question_1_answer"`
	Question2Answer  string         `gorm:"column:question_2_answer" json:"question_2_answer"`
	PredictionValue  int            `gorm:"column:prediction_value" json:"prediction_value"`
	Result           datatypes.JSON `gorm:"column:result" json:"result"`
	PaymentCompleted bool           `gorm:"not null;default:false;column:payment_completed" json:"payment_completed"`
	PaymentType      string         `gorm:"column:payment_type" json:"payment_type,omitempty"`
	StripePaymentID  string         `gorm:"column:stripe_payment_id" json:"stripe_payment_id,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (AnalysisSession) TableName() string { return "analysis_sessions" }

func (s *AnalysisSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
