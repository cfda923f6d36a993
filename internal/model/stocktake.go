package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stocktake count status codes
const (
	CountStatusCounted    = "COUNTED"
	CountStatusNotCounted = "NOT_COUNTED"
	CountStatusPending    = "PENDING"
	CountStatusRejected   = "REJECTED"
	CountStatusOther      = "OTHER"
)

// CountStatuses lists all valid count status codes in display order.
var CountStatuses = []string{
	CountStatusCounted,
	CountStatusNotCounted,
	CountStatusPending,
	CountStatusRejected,
	CountStatusOther,
}

// CountStatusNames maps status codes to display labels.
var CountStatusNames = map[string]string{
	CountStatusCounted:    "Counted",
	CountStatusNotCounted: "Not Counted",
	CountStatusPending:    "Pending",
	CountStatusRejected:   "Rejected",
	CountStatusOther:      "Other",
}

// Count method codes. EXCEL marks rows created by bulk import or carry-forward.
const (
	CountMethodQR     = "QR"
	CountMethodManual = "MANUAL"
	CountMethodExcel  = "EXCEL"
)

// Accounting review status codes, tracked independently of the count status
const (
	AccountingStatusSubmit   = "SUBMIT"
	AccountingStatusApproved = "APPROVED"
	AccountingStatusReject   = "REJECT"
)

// AccountingStatusNames maps accounting status codes to display labels.
var AccountingStatusNames = map[string]string{
	AccountingStatusSubmit:   "Submitted by Accounting",
	AccountingStatusApproved: "Approved by Accounting",
	AccountingStatusReject:   "Rejected by Accounting",
}

// StocktakeYearConfig gates a plant's stocktake campaign for one year.
// Closing requires ReportGeneratedAt to be set; carrying records forward
// requires the source year to be closed and reported.
type StocktakeYearConfig struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"stocktake_year_config_id"`
	PlantID           string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_stocktake_plant_year" json:"plant_id"`
	StocktakeYear     int        `gorm:"not null;uniqueIndex:idx_stocktake_plant_year" json:"stocktake_year"`
	IsOpen            bool       `gorm:"not null;default:true" json:"is_open"`
	ReportGeneratedAt *time.Time `json:"report_generated_at,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	ClosedBy          string     `gorm:"type:varchar(255)" json:"closed_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (c *StocktakeYearConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// StocktakeRecord is the count result for one asset in one plant-year.
// Exactly one row exists per (plant, year, assetNo); re-counting overwrites.
type StocktakeRecord struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"stocktake_record_id"`
	PlantID              string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_stocktake_record_key" json:"plant_id"`
	StocktakeYear        int             `gorm:"not null;uniqueIndex:idx_stocktake_record_key" json:"stocktake_year"`
	AssetNo              string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_stocktake_record_key" json:"asset_no"`
	AssetID              uuid.UUID       `gorm:"type:uuid" json:"asset_id"`
	AssetName            string          `gorm:"type:varchar(255)" json:"asset_name"`
	BookValue            decimal.Decimal `gorm:"type:decimal(18,2)" json:"book_value"`
	CostCenterName       string          `gorm:"type:varchar(100)" json:"cost_center_name"`
	AssetGroupName       string          `gorm:"type:varchar(100)" json:"asset_group_name"`
	LocationName         string          `gorm:"type:varchar(100)" json:"location_name"`
	StatusCode           string          `gorm:"type:varchar(20);not null;index" json:"status_code"`
	AccountingStatusCode string          `gorm:"type:varchar(20)" json:"accounting_status_code,omitempty"`
	CountMethod          string          `gorm:"type:varchar(10);not null" json:"count_method"`
	CountedQty           int             `gorm:"not null;default:1" json:"counted_qty"`
	CountedAt            time.Time       `json:"counted_at"`
	CountedByName        string          `gorm:"type:varchar(255)" json:"counted_by_name"`
	NoteText             string          `gorm:"type:text" json:"note_text,omitempty"`
	Images               []string        `gorm:"serializer:json;type:text" json:"images"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (r *StocktakeRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// StocktakeParticipant is a person invited to a plant-year campaign.
type StocktakeParticipant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"stocktake_participant_id"`
	PlantID       string    `gorm:"type:varchar(50);not null;index" json:"plant_id"`
	StocktakeYear int       `gorm:"not null" json:"stocktake_year"`
	Email         string    `gorm:"type:varchar(255);not null" json:"email"`
	DisplayName   string    `gorm:"type:varchar(255)" json:"display_name"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *StocktakeParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// StocktakeMeetingDoc is a meeting document uploaded for a plant-year campaign.
type StocktakeMeetingDoc struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"stocktake_meeting_doc_id"`
	PlantID       string    `gorm:"type:varchar(50);not null;index" json:"plant_id"`
	StocktakeYear int       `gorm:"not null" json:"stocktake_year"`
	FileName      string    `gorm:"type:varchar(255);not null" json:"file_name"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

func (d *StocktakeMeetingDoc) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
