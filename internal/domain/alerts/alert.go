package alerts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Alert struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	TargetUsername string    `gorm:"not null;column:target_username" json:"target_username"`
	SocialNetwork  string    `gorm:"not null;column:social_network" json:"social_network"`
	IsActive       bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (Alert) TableName() string { return "user_alerts" }

func (a *Alert) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
