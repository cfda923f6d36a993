package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"easset/internal/model"
	"easset/internal/repository"
	ws "easset/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpsertCountRequest struct {
	AssetNo       string   `json:"asset_no" binding:"required"`
	StatusCode    string   `json:"status_code" binding:"required"`
	CountMethod   string   `json:"count_method"`
	CountedQty    int      `json:"counted_qty"`
	CountedByName string   `json:"counted_by_name" binding:"required"`
	NoteText      string   `json:"note_text"`
	Images        []string `json:"images"`
}

type AccountingReviewRequest struct {
	AssetNo              string `json:"asset_no" binding:"required"`
	AccountingStatusCode string `json:"accounting_status_code" binding:"required,oneof=SUBMIT APPROVED REJECT"`
	ActorName            string `json:"actor_name" binding:"required"`
}

type StocktakeWorkspace struct {
	Config       model.StocktakeYearConfig `json:"config"`
	TotalRecords int                       `json:"total_records"`
	StatusCounts map[string]int            `json:"status_counts"`
	Tabs         StocktakeTabs             `json:"tabs"`
}

// StocktakeTabs mirrors the three review buckets: uncounted work left,
// pending items waiting on accounting, and everything already resolved.
type StocktakeTabs struct {
	NotCounted []model.StocktakeRecord `json:"not_counted"`
	Pending    []model.StocktakeRecord `json:"pending"`
	Resolved   []model.StocktakeRecord `json:"resolved"`
}

type AddParticipantRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
}

// --- Interface ---

type StocktakeService interface {
	GetOrCreateYearConfig(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error)
	MarkReportGenerated(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error)
	CloseYear(ctx context.Context, plantID string, year int, actorName string) (*model.StocktakeYearConfig, error)
	CarryPendingToNextYear(ctx context.Context, plantID string, fromYear int, actorName string) (int, error)

	UpsertRecord(ctx context.Context, plantID string, year int, req UpsertCountRequest) (*model.StocktakeRecord, error)
	SetAccountingStatus(ctx context.Context, plantID string, year int, req AccountingReviewRequest) (*model.StocktakeRecord, error)
	Workspace(ctx context.Context, plantID string, year int) (*StocktakeWorkspace, error)
	ListRecords(ctx context.Context, plantID string, year int, statusCode string) ([]model.StocktakeRecord, error)

	ImportCountCsv(ctx context.Context, plantID string, year int, actorName string, content []byte) (*CsvImportResult, error)
	ImportAccountingCsv(ctx context.Context, plantID string, year int, actorName string, content []byte) (*CsvImportResult, error)

	ListParticipants(ctx context.Context, plantID string, year int) ([]model.StocktakeParticipant, error)
	AddParticipant(ctx context.Context, plantID string, year int, req AddParticipantRequest) (*model.StocktakeParticipant, error)
	RemoveParticipant(ctx context.Context, participantID string) error
	ListMeetingDocs(ctx context.Context, plantID string, year int) ([]model.StocktakeMeetingDoc, error)
	AddMeetingDoc(ctx context.Context, plantID string, year int, fileName string) (*model.StocktakeMeetingDoc, error)
}

type stocktakeService struct {
	stocktakeRepo repository.StocktakeRepository
	assetRepo     repository.AssetRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewStocktakeService(
	stocktakeRepo repository.StocktakeRepository,
	assetRepo repository.AssetRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) StocktakeService {
	return &stocktakeService{
		stocktakeRepo: stocktakeRepo,
		assetRepo:     assetRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

// --- Year lifecycle ---

func (s *stocktakeService) GetOrCreateYearConfig(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error) {
	config, err := s.stocktakeRepo.FindYearConfig(ctx, plantID, year)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load year config: %w", err)
	}

	config = &model.StocktakeYearConfig{
		PlantID:       plantID,
		StocktakeYear: year,
		IsOpen:        true,
	}
	if err := s.stocktakeRepo.CreateYearConfig(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to create year config: %w", err)
	}
	return config, nil
}

func (s *stocktakeService) MarkReportGenerated(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error) {
	var config *model.StocktakeYearConfig
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		config, err = s.stocktakeRepo.FindYearConfig(txCtx, plantID, year)
		if err != nil {
			return fmt.Errorf("year config not found: %w", err)
		}
		now := time.Now()
		config.ReportGeneratedAt = &now
		return s.stocktakeRepo.UpdateYearConfig(txCtx, config)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

func (s *stocktakeService) CloseYear(ctx context.Context, plantID string, year int, actorName string) (*model.StocktakeYearConfig, error) {
	var config *model.StocktakeYearConfig
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		config, err = s.stocktakeRepo.FindYearConfig(txCtx, plantID, year)
		if err != nil {
			return fmt.Errorf("year config not found: %w", err)
		}
		if !config.IsOpen {
			return fmt.Errorf("stocktake year %d is already closed", year)
		}
		if config.ReportGeneratedAt == nil {
			return fmt.Errorf("the stocktake report must be generated before closing year %d", year)
		}

		now := time.Now()
		config.IsOpen = false
		config.ClosedAt = &now
		config.ClosedBy = actorName
		if err := s.stocktakeRepo.UpdateYearConfig(txCtx, config); err != nil {
			return fmt.Errorf("failed to close year: %w", err)
		}

		return s.audit(txCtx, actorName, model.ActionCloseStocktakeYear, plantID, year, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notify("stocktake.closed", plantID, year)
	return config, nil
}

// CarryPendingToNextYear clones the closed year's PENDING records into the
// next year. Assets already recorded in the target year are skipped, so the
// operation is safe to run more than once.
func (s *stocktakeService) CarryPendingToNextYear(ctx context.Context, plantID string, fromYear int, actorName string) (int, error) {
	carried := 0
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		source, err := s.stocktakeRepo.FindYearConfig(txCtx, plantID, fromYear)
		if err != nil {
			return fmt.Errorf("year config not found: %w", err)
		}
		if source.IsOpen {
			return fmt.Errorf("stocktake year %d must be closed before carrying records forward", fromYear)
		}
		if source.ReportGeneratedAt == nil {
			return fmt.Errorf("stocktake year %d has no generated report", fromYear)
		}

		toYear := fromYear + 1
		if _, err := s.getOrCreateYearConfigTx(txCtx, plantID, toYear); err != nil {
			return err
		}

		pending, err := s.stocktakeRepo.ListRecordsByStatus(txCtx, plantID, fromYear, model.CountStatusPending)
		if err != nil {
			return fmt.Errorf("failed to list pending records: %w", err)
		}

		now := time.Now()
		for _, record := range pending {
			_, err := s.stocktakeRepo.FindRecord(txCtx, plantID, toYear, record.AssetNo)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check target year record: %w", err)
			}

			clone := record
			clone.ID = uuid.Nil
			clone.StocktakeYear = toYear
			clone.CountMethod = model.CountMethodExcel
			clone.CountedAt = now
			clone.CountedByName = actorName
			clone.AccountingStatusCode = ""
			clone.CreatedAt = time.Time{}
			clone.UpdatedAt = time.Time{}
			if err := s.stocktakeRepo.CreateRecord(txCtx, &clone); err != nil {
				return fmt.Errorf("failed to carry record %s forward: %w", record.AssetNo, err)
			}
			carried++
		}

		return s.audit(txCtx, actorName, model.ActionCarryStocktakeYear, plantID, fromYear, map[string]interface{}{
			"to_year": toYear,
			"carried": carried,
		})
	})
	if err != nil {
		return 0, err
	}

	s.notify("stocktake.carried", plantID, fromYear)
	return carried, nil
}

func (s *stocktakeService) getOrCreateYearConfigTx(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error) {
	config, err := s.stocktakeRepo.FindYearConfig(ctx, plantID, year)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load year config: %w", err)
	}
	config = &model.StocktakeYearConfig{PlantID: plantID, StocktakeYear: year, IsOpen: true}
	if err := s.stocktakeRepo.CreateYearConfig(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to create year config: %w", err)
	}
	return config, nil
}

// --- Counting ---

func (s *stocktakeService) UpsertRecord(ctx context.Context, plantID string, year int, req UpsertCountRequest) (*model.StocktakeRecord, error) {
	if !isValidCountStatus(req.StatusCode) {
		return nil, fmt.Errorf("unknown count status %q", req.StatusCode)
	}

	var record *model.StocktakeRecord
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		config, err := s.getOrCreateYearConfigTx(txCtx, plantID, year)
		if err != nil {
			return err
		}
		if !config.IsOpen {
			return fmt.Errorf("stocktake year %d is closed", year)
		}

		var rec *model.StocktakeRecord
		rec, err = s.upsertRecordTx(txCtx, plantID, year, req)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify("stocktake.counted", plantID, year)
	return record, nil
}

// upsertRecordTx applies one count to the (plant, year, assetNo) slot. The
// caller is responsible for the open-year check.
func (s *stocktakeService) upsertRecordTx(ctx context.Context, plantID string, year int, req UpsertCountRequest) (*model.StocktakeRecord, error) {
	assetNo := strings.TrimSpace(req.AssetNo)
	if assetNo == "" {
		return nil, fmt.Errorf("asset number is required")
	}

	method := req.CountMethod
	switch method {
	case model.CountMethodQR, model.CountMethodManual, model.CountMethodExcel:
	default:
		method = model.CountMethodExcel
	}

	qty := req.CountedQty
	if qty < 1 {
		qty = 1
	}

	now := time.Now()
	existing, err := s.stocktakeRepo.FindRecord(ctx, plantID, year, assetNo)
	if err == nil {
		existing.StatusCode = req.StatusCode
		existing.CountMethod = method
		existing.CountedQty = qty
		existing.CountedAt = now
		existing.CountedByName = req.CountedByName
		existing.NoteText = req.NoteText
		if len(req.Images) > 0 {
			existing.Images = mergeUnique(existing.Images, req.Images)
		}
		if err := s.stocktakeRepo.UpdateRecord(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update count record: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up count record: %w", err)
	}

	record := model.StocktakeRecord{
		PlantID:        plantID,
		StocktakeYear:  year,
		AssetNo:        assetNo,
		AssetName:      fmt.Sprintf("Imported Asset %s", assetNo),
		BookValue:      decimal.Zero,
		CostCenterName: "CCA-UNDEFINED",
		StatusCode:     req.StatusCode,
		CountMethod:    method,
		CountedQty:     qty,
		CountedAt:      now,
		CountedByName:  req.CountedByName,
		NoteText:       req.NoteText,
		Images:         req.Images,
	}
	if record.Images == nil {
		record.Images = []string{}
	}

	if asset, err := s.assetRepo.FindByNo(ctx, assetNo); err == nil {
		record.AssetID = asset.ID
		record.AssetName = asset.AssetName
		record.BookValue = asset.BookValue
		record.CostCenterName = asset.CostCenterName
		record.AssetGroupName = asset.AssetGroupName
		record.LocationName = asset.LocationName
	}

	if err := s.stocktakeRepo.CreateRecord(ctx, &record); err != nil {
		return nil, fmt.Errorf("failed to create count record: %w", err)
	}
	return &record, nil
}

func isValidCountStatus(code string) bool {
	for _, s := range model.CountStatuses {
		if s == code {
			return true
		}
	}
	return false
}

func (s *stocktakeService) SetAccountingStatus(ctx context.Context, plantID string, year int, req AccountingReviewRequest) (*model.StocktakeRecord, error) {
	var record *model.StocktakeRecord
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := s.stocktakeRepo.FindRecord(txCtx, plantID, year, strings.TrimSpace(req.AssetNo))
		if err != nil {
			return fmt.Errorf("count record not found for asset %s: %w", req.AssetNo, err)
		}
		rec.AccountingStatusCode = req.AccountingStatusCode
		if err := s.stocktakeRepo.UpdateRecord(txCtx, rec); err != nil {
			return fmt.Errorf("failed to update accounting status: %w", err)
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// --- Workspace ---

func (s *stocktakeService) Workspace(ctx context.Context, plantID string, year int) (*StocktakeWorkspace, error) {
	config, err := s.GetOrCreateYearConfig(ctx, plantID, year)
	if err != nil {
		return nil, err
	}

	records, err := s.stocktakeRepo.ListRecords(ctx, plantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	ws := &StocktakeWorkspace{
		Config:       *config,
		TotalRecords: len(records),
		StatusCounts: make(map[string]int, len(model.CountStatuses)),
	}
	for _, code := range model.CountStatuses {
		ws.StatusCounts[code] = 0
	}
	for _, r := range records {
		ws.StatusCounts[r.StatusCode]++
		switch r.StatusCode {
		case model.CountStatusNotCounted:
			ws.Tabs.NotCounted = append(ws.Tabs.NotCounted, r)
		case model.CountStatusPending:
			ws.Tabs.Pending = append(ws.Tabs.Pending, r)
		default:
			ws.Tabs.Resolved = append(ws.Tabs.Resolved, r)
		}
	}
	return ws, nil
}

func (s *stocktakeService) ListRecords(ctx context.Context, plantID string, year int, statusCode string) ([]model.StocktakeRecord, error) {
	if statusCode == "" {
		return s.stocktakeRepo.ListRecords(ctx, plantID, year)
	}
	return s.stocktakeRepo.ListRecordsByStatus(ctx, plantID, year, statusCode)
}

// --- Participants & meeting docs ---

func (s *stocktakeService) ListParticipants(ctx context.Context, plantID string, year int) ([]model.StocktakeParticipant, error) {
	return s.stocktakeRepo.ListParticipants(ctx, plantID, year)
}

func (s *stocktakeService) AddParticipant(ctx context.Context, plantID string, year int, req AddParticipantRequest) (*model.StocktakeParticipant, error) {
	existing, err := s.stocktakeRepo.ListParticipants(ctx, plantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	for _, p := range existing {
		if strings.EqualFold(p.Email, req.Email) {
			return &p, nil
		}
	}

	participant := model.StocktakeParticipant{
		PlantID:       plantID,
		StocktakeYear: year,
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:   req.DisplayName,
	}
	if err := s.stocktakeRepo.AddParticipant(ctx, &participant); err != nil {
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}
	return &participant, nil
}

func (s *stocktakeService) RemoveParticipant(ctx context.Context, participantID string) error {
	id, err := uuid.Parse(participantID)
	if err != nil {
		return fmt.Errorf("invalid participant id: %w", err)
	}
	return s.stocktakeRepo.RemoveParticipant(ctx, id)
}

func (s *stocktakeService) ListMeetingDocs(ctx context.Context, plantID string, year int) ([]model.StocktakeMeetingDoc, error) {
	return s.stocktakeRepo.ListMeetingDocs(ctx, plantID, year)
}

func (s *stocktakeService) AddMeetingDoc(ctx context.Context, plantID string, year int, fileName string) (*model.StocktakeMeetingDoc, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("meeting document file name is required")
	}
	doc := model.StocktakeMeetingDoc{
		PlantID:       plantID,
		StocktakeYear: year,
		FileName:      fileName,
		UploadedAt:    time.Now(),
	}
	if err := s.stocktakeRepo.AddMeetingDoc(ctx, &doc); err != nil {
		return nil, fmt.Errorf("failed to add meeting document: %w", err)
	}
	return &doc, nil
}

// --- helpers ---

func (s *stocktakeService) audit(ctx context.Context, actorName, action, plantID string, year int, extra map[string]interface{}) error {
	payload := map[string]interface{}{
		"plant_id":       plantID,
		"stocktake_year": year,
	}
	for k, v := range extra {
		payload[k] = v
	}
	details, _ := json.Marshal(payload)

	entry := model.AuditLog{
		ActorName:  actorName,
		Action:     action,
		EntityID:   plantID,
		EntityName: fmt.Sprintf("stocktake %s/%d", plantID, year),
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *stocktakeService) notify(event, plantID string, year int) {
	if s.hub == nil {
		return
	}
	msg, _ := json.Marshal(map[string]interface{}{"event": event, "plant_id": plantID, "year": year})
	select {
	case s.hub.Broadcast <- msg:
	default:
	}
}
