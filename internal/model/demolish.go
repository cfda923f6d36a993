package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DemolishDocType enum constants
const (
	DocTypeApproval = "APPROVAL_DOC"
	DocTypeBudget   = "BUDGET_DOC"
	DocTypeOther    = "OTHER"
)

// DemolishRequest is an asset write-off request routed through the approval
// flow. TotalBookValue is always the sum of the item snapshots, recomputed on
// every item add/remove while the request is in DRAFT.
type DemolishRequest struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"demolish_request_id"`
	RequestNo      string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"request_no"`
	CompanyID      string          `gorm:"type:varchar(50);not null" json:"company_id"`
	PlantID        string          `gorm:"type:varchar(50);not null;index" json:"plant_id"`
	CreatedByName  string          `gorm:"type:varchar(255);not null" json:"created_by_name"`
	Status         string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	TotalBookValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_book_value"`

	Items     []DemolishItem     `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	Documents []DemolishDocument `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"documents"`

	Approval ApprovalState `gorm:"embedded;embeddedPrefix:approval_" json:"approval"`

	ReceivedAt *time.Time `json:"received_at,omitempty"`
	ReceivedBy string     `gorm:"type:varchar(255)" json:"received_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *DemolishRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// DemolishItem is one asset on a demolish request. BookValueAtRequest is a
// frozen snapshot taken when the item was added; it is never re-read from the
// asset master afterwards.
type DemolishItem struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"demolish_request_item_id"`
	RequestID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	AssetID              uuid.UUID       `gorm:"type:uuid;not null" json:"asset_id"`
	AssetNo              string          `gorm:"type:varchar(50);not null" json:"asset_no"`
	AssetName            string          `gorm:"type:varchar(255);not null" json:"asset_name"`
	BookValueAtRequest   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"book_value_at_request"`
	Note                 string          `gorm:"type:text" json:"note,omitempty"`
	Images               []string        `gorm:"serializer:json;type:text" json:"images"`
	HasExistingImage     bool            `json:"has_existing_image"`
	RequiresExpertReview bool            `json:"requires_expert_review"`
	ExpertName           string          `gorm:"type:varchar(255)" json:"expert_name,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

func (i *DemolishItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// DemolishDocument is a supporting file attached to a demolish request.
type DemolishDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"demolish_request_document_id"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	DocTypeCode string    `gorm:"type:varchar(20);not null" json:"doc_type_code"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func (d *DemolishDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
