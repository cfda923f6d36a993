package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateDemolishDraft  = "CREATE_DEMOLISH_DRAFT"
	ActionSubmitDemolish       = "SUBMIT_DEMOLISH"
	ActionReceiveDemolish      = "RECEIVE_DEMOLISH"
	ActionDeleteDemolishDraft  = "DELETE_DEMOLISH_DRAFT"
	ActionCreateTransferDraft  = "CREATE_TRANSFER_DRAFT"
	ActionSubmitTransfer       = "SUBMIT_TRANSFER"
	ActionDeleteTransferDraft  = "DELETE_TRANSFER_DRAFT"
	ActionApproveRequest       = "APPROVE_REQUEST"
	ActionRejectRequest        = "REJECT_REQUEST"
	ActionReturnRequestToDraft = "RETURN_REQUEST_TO_DRAFT"
	ActionCloseStocktakeYear   = "CLOSE_STOCKTAKE_YEAR"
	ActionCarryStocktakeYear   = "CARRY_STOCKTAKE_YEAR"
	ActionImportStocktakeCsv   = "IMPORT_STOCKTAKE_CSV"
	ActionMarkSyncResult       = "MARK_SYNC_RESULT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActorName  string    `gorm:"type:varchar(255);index" json:"actor_name"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/request no)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
