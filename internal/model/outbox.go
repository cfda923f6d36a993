package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SAP sync outbox status codes
const (
	SyncStatusPending    = "PENDING"
	SyncStatusProcessing = "PROCESSING"
	SyncStatusSuccess    = "SUCCESS"
	SyncStatusFail       = "FAIL"
)

// Email outbox status codes
const (
	EmailStatusPending = "PENDING"
	EmailStatusSent    = "SENT"
	EmailStatusFail    = "FAIL"
)

// SapSyncOutbox queues completed requests for propagation to SAP. Exactly one
// entry is enqueued per demolish receive and per transfer final approval.
type SapSyncOutbox struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"sap_sync_outbox_id"`
	RefType      string     `gorm:"type:varchar(10);not null;index" json:"ref_type"` // DEMOLISH, TRANSFER
	RefNo        string     `gorm:"type:varchar(20);not null;index" json:"ref_no"`
	NotifyEmail  string     `gorm:"type:varchar(255)" json:"notify_email,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (o *SapSyncOutbox) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// EmailOutbox queues receiver notifications for transfers whose sync entry
// completed successfully.
type EmailOutbox struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"email_outbox_id"`
	RefType      string     `gorm:"type:varchar(10);not null" json:"ref_type"` // TRANSFER
	RefNo        string     `gorm:"type:varchar(20);not null;index" json:"ref_no"`
	ToEmail      string     `gorm:"type:varchar(255);not null" json:"to_email"`
	Subject      string     `gorm:"type:varchar(255);not null" json:"subject"`
	BodyText     string     `gorm:"type:text" json:"body_text"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (o *EmailOutbox) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
