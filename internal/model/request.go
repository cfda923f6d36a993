package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus enum constants shared by demolish and transfer requests
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusReceived  = "RECEIVED" // demolish only
)

// Approval flow variants
const (
	FlowDemolishLowValue  = "DEMOLISH_LE_1"
	FlowDemolishHighValue = "DEMOLISH_GT_1"
	FlowTransfer          = "TRANSFER"
)

// ApprovalActionCode constants for the approval history
const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
	ActionComment = "COMMENT"
)

// RefType distinguishes the two request kinds in shared tables (history, sync outbox)
const (
	RefTypeDemolish = "DEMOLISH"
	RefTypeTransfer = "TRANSFER"
)

// ApprovalState is the in-flight position of a submitted request within its
// approval flow. It is embedded on the request row; a zero FlowCode means the
// request has never been submitted (or was returned to draft).
type ApprovalState struct {
	FlowCode         string   `gorm:"type:varchar(20)" json:"flow_code"`
	Steps            []string `gorm:"serializer:json;type:text" json:"steps"`
	CurrentStepOrder int      `json:"current_step_order"` // 1-based
	CurrentStepName  string   `gorm:"type:varchar(100)" json:"current_step_name"`
}

// Attached reports whether an approval flow has been computed for the request.
func (a ApprovalState) Attached() bool {
	return a.FlowCode != ""
}

// ApprovalAction is one append-only history row. Rows are never updated or
// deleted while the request exists, even across return-to-draft cycles.
type ApprovalAction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"action_id"`
	RefType    string    `gorm:"type:varchar(10);not null;index:idx_approval_actions_ref" json:"ref_type"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index:idx_approval_actions_ref" json:"request_id"`
	StepOrder  int       `json:"step_order"`
	StepName   string    `gorm:"type:varchar(100)" json:"step_name"`
	ActionCode string    `gorm:"type:varchar(10);not null" json:"action_code"`
	ActorName  string    `gorm:"type:varchar(255)" json:"actor_name"`
	Comment    string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time `json:"action_at"`
}

func (a *ApprovalAction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// RequestSequence allocates human-readable request numbers per prefix
// (e.g. "DM-2026"). Numbers are gapless and monotonic for the life of the
// prefix: the counter only moves forward, so deleting a draft never frees
// its number for reuse.
type RequestSequence struct {
	Prefix string `gorm:"type:varchar(20);primaryKey"`
	LastNo int    `gorm:"not null"`
}
