package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QR label type printed on the physical asset
const (
	QrTypeSticker = "STICKER"
	QrTypeLaserA5 = "LASER_A5"
)

// AssetMismatchType classifies a discrepancy between the asset master and SAP
const (
	MismatchMissingInEasset    = "MISSING_IN_EASSET"
	MismatchMissingInSap       = "MISSING_IN_SAP"
	MismatchPlant              = "PLANT_MISMATCH"
	MismatchCostCenter         = "COSTCENTER_MISMATCH"
	MismatchBookValue          = "BOOKVALUE_MISMATCH"
	MismatchAssetName          = "ASSETNAME_MISMATCH"
)

// Asset is one row of the fixed-asset master. BookValue here is the live
// accounting value; request line items freeze their own copy at add time.
type Asset struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AssetNo        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"asset_no"`
	AssetName      string          `gorm:"type:varchar(255);not null" json:"asset_name"`
	BookValue      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"book_value"`
	ReceiveDate    string          `gorm:"type:varchar(10)" json:"receive_date"`
	QrValue        string          `gorm:"type:varchar(100)" json:"qr_value"`
	QrTypeCode     string          `gorm:"type:varchar(20)" json:"qr_type_code"`
	StatusName     string          `gorm:"type:varchar(100)" json:"status_name"`
	PlantName      string          `gorm:"type:varchar(100);index" json:"plant_name"`
	CostCenterName string          `gorm:"type:varchar(100);index" json:"cost_center_name"`
	LocationName   string          `gorm:"type:varchar(100)" json:"location_name"`
	AssetGroupName string          `gorm:"type:varchar(100)" json:"asset_group_name"`
	Quantity       int             `gorm:"default:1" json:"quantity"`
	HasImage       bool            `json:"has_image"`

	// SAP shadow copy used by the mismatch report
	SapExists    bool            `json:"sap_exists"`
	SapAssetNo   string          `gorm:"type:varchar(60)" json:"sap_asset_no"`
	SapBookValue decimal.Decimal `gorm:"type:decimal(18,2)" json:"sap_book_value"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssetImage stores a reference to an uploaded asset photo. Only the URL is
// kept; there is no real file storage behind it.
type AssetImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID    uuid.UUID `gorm:"type:uuid;not null;index" json:"asset_id"`
	FileUrl    string    `gorm:"type:varchar(500);not null" json:"file_url"`
	IsPrimary  bool      `json:"is_primary"`
	SortOrder  int       `json:"sort_order"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (i *AssetImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
