package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferRequest moves assets between cost centers. It shares the approval
// machinery with DemolishRequest but has no RECEIVED state: the asset master
// is mutated directly on final approval instead.
type TransferRequest struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"transfer_request_id"`
	RequestNo      string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"request_no"`
	CompanyID      string          `gorm:"type:varchar(50);not null" json:"company_id"`
	PlantID        string          `gorm:"type:varchar(50);not null;index" json:"plant_id"`
	FromCostCenter string          `gorm:"type:varchar(100);not null" json:"from_cost_center"`
	ToCostCenter   string          `gorm:"type:varchar(100);not null" json:"to_cost_center"`
	ToLocation     string          `gorm:"type:varchar(100)" json:"to_location"`
	ToOwnerName    string          `gorm:"type:varchar(255)" json:"to_owner_name"`
	ToOwnerEmail   string          `gorm:"type:varchar(255)" json:"to_owner_email"`
	ReasonText     string          `gorm:"type:text" json:"reason_text"`
	CreatedByName  string          `gorm:"type:varchar(255);not null" json:"created_by_name"`
	Status         string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	TotalBookValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_book_value"`
	Attachments    []string        `gorm:"serializer:json;type:text" json:"attachments"`

	Items []TransferItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`

	Approval ApprovalState `gorm:"embedded;embeddedPrefix:approval_" json:"approval"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *TransferRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TransferItem is one asset on a transfer request with its frozen book value.
type TransferItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"transfer_request_item_id"`
	RequestID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	AssetID            uuid.UUID       `gorm:"type:uuid;not null" json:"asset_id"`
	AssetNo            string          `gorm:"type:varchar(50);not null" json:"asset_no"`
	AssetName          string          `gorm:"type:varchar(255);not null" json:"asset_name"`
	BookValueAtRequest decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"book_value_at_request"`
	Note               string          `gorm:"type:text" json:"note,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (i *TransferItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
