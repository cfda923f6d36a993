package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"easset/internal/model"
	"easset/internal/repository"

	"github.com/shopspring/decimal"
)

// TrackingRow is one request in the management tracking report, with the
// whole approval trail flattened into a readable string.
type TrackingRow struct {
	RequestNo      string          `json:"request_no"`
	RequestType    string          `json:"request_type"`
	Status         string          `json:"status"`
	CreatedByName  string          `json:"created_by_name"`
	CreatedAt      string          `json:"created_at"`
	TotalBookValue decimal.Decimal `json:"total_book_value"`
	ItemCount      int             `json:"item_count"`
	CurrentStep    string          `json:"current_step"`
	ApproverTrail  string          `json:"approver_trail"`
}

type StocktakeReportRow struct {
	AssetNo          string `json:"asset_no"`
	AssetName        string `json:"asset_name"`
	CostCenterName   string `json:"cost_center_name"`
	StatusCode       string `json:"status_code"`
	StatusName       string `json:"status_name"`
	AccountingStatus string `json:"accounting_status,omitempty"`
	CountMethod      string `json:"count_method"`
	CountedQty       int    `json:"counted_qty"`
	CountedByName    string `json:"counted_by_name"`
	CountedAt        string `json:"counted_at"`
	PreviousStatus   string `json:"previous_status,omitempty"`
	NoteText         string `json:"note_text,omitempty"`
}

type StocktakeReportFilter struct {
	StatusCode     string
	CostCenterName string
	ComparePrev    bool
}

type ReportService interface {
	ManagementTracking(ctx context.Context, requestType, status string) ([]TrackingRow, error)
	StocktakeReport(ctx context.Context, plantID string, year int, filter StocktakeReportFilter) ([]StocktakeReportRow, error)
	ExportStocktakeCsv(ctx context.Context, plantID string, year int, filter StocktakeReportFilter) ([]byte, error)
}

type reportService struct {
	demolishRepo  repository.DemolishRepository
	transferRepo  repository.TransferRepository
	stocktakeRepo repository.StocktakeRepository
}

func NewReportService(
	demolishRepo repository.DemolishRepository,
	transferRepo repository.TransferRepository,
	stocktakeRepo repository.StocktakeRepository,
) ReportService {
	return &reportService{
		demolishRepo:  demolishRepo,
		transferRepo:  transferRepo,
		stocktakeRepo: stocktakeRepo,
	}
}

const trackingPageSize = 1000

func (s *reportService) ManagementTracking(ctx context.Context, requestType, status string) ([]TrackingRow, error) {
	var rows []TrackingRow

	if requestType == "" || requestType == model.RefTypeDemolish {
		requests, _, err := s.demolishRepo.List(ctx, status, 1, trackingPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list demolish requests: %w", err)
		}
		for _, r := range requests {
			actions, err := s.demolishRepo.ListActions(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load actions for %s: %w", r.RequestNo, err)
			}
			rows = append(rows, TrackingRow{
				RequestNo:      r.RequestNo,
				RequestType:    model.RefTypeDemolish,
				Status:         r.Status,
				CreatedByName:  r.CreatedByName,
				CreatedAt:      r.CreatedAt.Format(time.RFC3339),
				TotalBookValue: r.TotalBookValue,
				ItemCount:      len(r.Items),
				CurrentStep:    r.Approval.CurrentStepName,
				ApproverTrail:  approverTrail(actions),
			})
		}
	}

	if requestType == "" || requestType == model.RefTypeTransfer {
		requests, _, err := s.transferRepo.List(ctx, status, 1, trackingPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list transfer requests: %w", err)
		}
		for _, r := range requests {
			actions, err := s.transferRepo.ListActions(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load actions for %s: %w", r.RequestNo, err)
			}
			rows = append(rows, TrackingRow{
				RequestNo:      r.RequestNo,
				RequestType:    model.RefTypeTransfer,
				Status:         r.Status,
				CreatedByName:  r.CreatedByName,
				CreatedAt:      r.CreatedAt.Format(time.RFC3339),
				TotalBookValue: r.TotalBookValue,
				ItemCount:      len(r.Items),
				CurrentStep:    r.Approval.CurrentStepName,
				ApproverTrail:  approverTrail(actions),
			})
		}
	}

	return rows, nil
}

// approverTrail flattens the action history into "Step:ACTION > Step:ACTION".
func approverTrail(actions []model.ApprovalAction) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("%s:%s", a.StepName, a.ActionCode))
	}
	return strings.Join(parts, " > ")
}

func (s *reportService) StocktakeReport(ctx context.Context, plantID string, year int, filter StocktakeReportFilter) ([]StocktakeReportRow, error) {
	records, err := s.stocktakeRepo.ListRecords(ctx, plantID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocktake records: %w", err)
	}

	previous := map[string]string{}
	if filter.ComparePrev {
		prevRecords, err := s.stocktakeRepo.ListRecords(ctx, plantID, year-1)
		if err == nil {
			for _, r := range prevRecords {
				previous[r.AssetNo] = r.StatusCode
			}
		}
	}

	rows := make([]StocktakeReportRow, 0, len(records))
	for _, r := range records {
		if filter.StatusCode != "" && r.StatusCode != filter.StatusCode {
			continue
		}
		if filter.CostCenterName != "" && !strings.EqualFold(r.CostCenterName, filter.CostCenterName) {
			continue
		}
		rows = append(rows, StocktakeReportRow{
			AssetNo:          r.AssetNo,
			AssetName:        r.AssetName,
			CostCenterName:   r.CostCenterName,
			StatusCode:       r.StatusCode,
			StatusName:       model.CountStatusNames[r.StatusCode],
			AccountingStatus: model.AccountingStatusNames[r.AccountingStatusCode],
			CountMethod:      r.CountMethod,
			CountedQty:       r.CountedQty,
			CountedByName:    r.CountedByName,
			CountedAt:        r.CountedAt.Format(time.RFC3339),
			PreviousStatus:   previous[r.AssetNo],
			NoteText:         r.NoteText,
		})
	}
	return rows, nil
}

func (s *reportService) ExportStocktakeCsv(ctx context.Context, plantID string, year int, filter StocktakeReportFilter) ([]byte, error) {
	rows, err := s.StocktakeReport(ctx, plantID, year, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"assetNo", "assetName", "costCenter", "statusCode", "accountingStatus", "method", "qty", "countedBy", "countedAt", "note"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.AssetNo,
			r.AssetName,
			r.CostCenterName,
			r.StatusCode,
			r.AccountingStatus,
			r.CountMethod,
			strconv.Itoa(r.CountedQty),
			r.CountedByName,
			r.CountedAt,
			r.NoteText,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
