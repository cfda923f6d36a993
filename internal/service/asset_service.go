package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"easset/internal/model"
	"easset/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Asset list view modes
const (
	AssetViewAll     = "all"
	AssetViewNoImage = "no-image"
	AssetViewSapGap  = "sap-gap"
)

type AssetMetrics struct {
	Total          int             `json:"total"`
	WithImage      int             `json:"with_image"`
	WithoutImage   int             `json:"without_image"`
	SapMismatches  int             `json:"sap_mismatches"`
	TotalBookValue decimal.Decimal `json:"total_book_value"`
}

type AssetDetail struct {
	model.Asset
	Images []model.AssetImage `json:"images"`
}

// AssetOption is the minimal shape used by request-builder pickers.
type AssetOption struct {
	AssetID        string          `json:"asset_id"`
	AssetNo        string          `json:"asset_no"`
	AssetName      string          `json:"asset_name"`
	BookValue      decimal.Decimal `json:"book_value"`
	CostCenterName string          `json:"cost_center_name"`
	HasImage       bool            `json:"has_image"`
}

// SapMismatchRow is one discrepancy between the asset master and its SAP
// shadow copy.
type SapMismatchRow struct {
	AssetNo      string `json:"asset_no"`
	AssetName    string `json:"asset_name"`
	MismatchType string `json:"mismatch_type"`
	EassetValue  string `json:"easset_value"`
	SapValue     string `json:"sap_value"`
}

type UpdateAssetFieldsRequest struct {
	StatusName     string `json:"status_name"`
	CostCenterName string `json:"cost_center_name"`
	LocationName   string `json:"location_name"`
	QrTypeCode     string `json:"qr_type_code"`
}

type AssetService interface {
	List(ctx context.Context, view, keyword string) ([]model.Asset, error)
	Get(ctx context.Context, id string) (*AssetDetail, error)
	Options(ctx context.Context, costCenter string) ([]AssetOption, error)
	Metrics(ctx context.Context) (*AssetMetrics, error)
	SapMismatches(ctx context.Context) ([]SapMismatchRow, error)
	AddImages(ctx context.Context, assetID string, fileNames []string) ([]model.AssetImage, error)
	UpdateFields(ctx context.Context, assetID string, req UpdateAssetFieldsRequest) (*model.Asset, error)
}

type assetService struct {
	assetRepo repository.AssetRepository
	txManager repository.TransactionManager
}

func NewAssetService(assetRepo repository.AssetRepository, txManager repository.TransactionManager) AssetService {
	return &assetService{assetRepo: assetRepo, txManager: txManager}
}

func (s *assetService) List(ctx context.Context, view, keyword string) ([]model.Asset, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	filtered := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		switch view {
		case AssetViewNoImage:
			if a.HasImage {
				continue
			}
		case AssetViewSapGap:
			if len(classifyMismatches(a)) == 0 {
				continue
			}
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(a.AssetNo), keyword) &&
			!strings.Contains(strings.ToLower(a.AssetName), keyword) &&
			!strings.Contains(strings.ToLower(a.CostCenterName), keyword) {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered, nil
}

func (s *assetService) Get(ctx context.Context, id string) (*AssetDetail, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id: %w", err)
	}
	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("asset not found: %w", err)
	}
	images, err := s.assetRepo.ListImages(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset images: %w", err)
	}
	return &AssetDetail{Asset: *asset, Images: images}, nil
}

func (s *assetService) Options(ctx context.Context, costCenter string) ([]AssetOption, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	options := make([]AssetOption, 0, len(assets))
	for _, a := range assets {
		if !a.IsActive {
			continue
		}
		if costCenter != "" && !strings.EqualFold(a.CostCenterName, costCenter) {
			continue
		}
		options = append(options, AssetOption{
			AssetID:        a.ID.String(),
			AssetNo:        a.AssetNo,
			AssetName:      a.AssetName,
			BookValue:      a.BookValue,
			CostCenterName: a.CostCenterName,
			HasImage:       a.HasImage,
		})
	}
	return options, nil
}

func (s *assetService) Metrics(ctx context.Context) (*AssetMetrics, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	metrics := &AssetMetrics{TotalBookValue: decimal.Zero}
	for _, a := range assets {
		metrics.Total++
		if a.HasImage {
			metrics.WithImage++
		} else {
			metrics.WithoutImage++
		}
		if len(classifyMismatches(a)) > 0 {
			metrics.SapMismatches++
		}
		metrics.TotalBookValue = metrics.TotalBookValue.Add(a.BookValue)
	}
	metrics.TotalBookValue = metrics.TotalBookValue.Round(2)
	return metrics, nil
}

// classifyMismatches compares an asset against its SAP shadow fields.
func classifyMismatches(a model.Asset) []SapMismatchRow {
	var rows []SapMismatchRow
	if !a.SapExists {
		rows = append(rows, SapMismatchRow{
			AssetNo:      a.AssetNo,
			AssetName:    a.AssetName,
			MismatchType: model.MismatchMissingInSap,
			EassetValue:  a.AssetNo,
			SapValue:     "",
		})
		return rows
	}
	if a.SapAssetNo != "" && a.SapAssetNo != a.AssetNo {
		rows = append(rows, SapMismatchRow{
			AssetNo:      a.AssetNo,
			AssetName:    a.AssetName,
			MismatchType: model.MismatchAssetName,
			EassetValue:  a.AssetNo,
			SapValue:     a.SapAssetNo,
		})
	}
	if !a.SapBookValue.Equal(a.BookValue) {
		rows = append(rows, SapMismatchRow{
			AssetNo:      a.AssetNo,
			AssetName:    a.AssetName,
			MismatchType: model.MismatchBookValue,
			EassetValue:  a.BookValue.StringFixed(2),
			SapValue:     a.SapBookValue.StringFixed(2),
		})
	}
	return rows
}

func (s *assetService) SapMismatches(ctx context.Context) ([]SapMismatchRow, error) {
	assets, err := s.assetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	var rows []SapMismatchRow
	for _, a := range assets {
		rows = append(rows, classifyMismatches(a)...)
	}
	return rows, nil
}

func (s *assetService) AddImages(ctx context.Context, assetID string, fileNames []string) ([]model.AssetImage, error) {
	id, err := uuid.Parse(assetID)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id: %w", err)
	}

	var images []model.AssetImage
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		asset, err := s.assetRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("asset not found: %w", err)
		}

		existing, err := s.assetRepo.ListImages(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list asset images: %w", err)
		}

		now := time.Now()
		for i, name := range fileNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			image := model.AssetImage{
				AssetID:    id,
				FileUrl:    imageURL(asset.AssetNo, name),
				IsPrimary:  len(existing) == 0 && i == 0,
				SortOrder:  len(existing) + i,
				UploadedAt: now,
			}
			if err := s.assetRepo.AddImage(txCtx, &image); err != nil {
				return fmt.Errorf("failed to add image: %w", err)
			}
			images = append(images, image)
		}
		if len(images) == 0 {
			return fmt.Errorf("no image file names provided")
		}

		if !asset.HasImage {
			if err := s.assetRepo.UpdateFields(txCtx, id, map[string]interface{}{"has_image": true}); err != nil {
				return fmt.Errorf("failed to flag asset as imaged: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// imageURL builds the stored file URL. There is no object storage behind the
// system, so uploads resolve to deterministic placeholder URLs.
func imageURL(assetNo, fileName string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s-%s/640/480", assetNo, fileName)
}

func (s *assetService) UpdateFields(ctx context.Context, assetID string, req UpdateAssetFieldsRequest) (*model.Asset, error) {
	id, err := uuid.Parse(assetID)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id: %w", err)
	}

	var asset *model.Asset
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		asset, err = s.assetRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("asset not found: %w", err)
		}

		fields := map[string]interface{}{}
		if req.StatusName != "" {
			fields["status_name"] = req.StatusName
			asset.StatusName = req.StatusName
		}
		if req.CostCenterName != "" {
			fields["cost_center_name"] = req.CostCenterName
			asset.CostCenterName = req.CostCenterName
		}
		if req.LocationName != "" {
			fields["location_name"] = req.LocationName
			asset.LocationName = req.LocationName
		}
		if req.QrTypeCode != "" {
			if req.QrTypeCode != model.QrTypeSticker && req.QrTypeCode != model.QrTypeLaserA5 {
				return fmt.Errorf("unknown qr type %q", req.QrTypeCode)
			}
			fields["qr_type_code"] = req.QrTypeCode
			asset.QrTypeCode = req.QrTypeCode
		}
		if len(fields) == 0 {
			return fmt.Errorf("no fields to update")
		}
		return s.assetRepo.UpdateFields(txCtx, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}
