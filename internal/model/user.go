package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleAccounting = "accounting"
	RoleStaff      = "staff"
)

// User is the mock identity behind the login endpoint. Any credential pair is
// accepted; unknown emails are provisioned on first login.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Password    string         `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	Role        string         `gorm:"type:varchar(50);not null;default:'staff'" json:"role"`
	PlantID     string         `gorm:"type:varchar(50)" json:"plant_id"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
