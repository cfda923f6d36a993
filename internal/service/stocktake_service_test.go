package service

import (
	"context"
	"testing"

	"easset/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlant = "PL01"

func TestStocktakeYearConfig_CreatedOpenOnFirstTouch(t *testing.T) {
	e := newTestEnv(t)

	config, err := e.stocktake.GetOrCreateYearConfig(context.Background(), testPlant, 2024)
	require.NoError(t, err)
	assert.True(t, config.IsOpen)
	assert.Nil(t, config.ReportGeneratedAt)
	assert.Equal(t, 2024, config.StocktakeYear)

	again, err := e.stocktake.GetOrCreateYearConfig(context.Background(), testPlant, 2024)
	require.NoError(t, err)
	assert.Equal(t, config.ID, again.ID, "second call returns the same row")
}

func TestStocktakeCloseYear_RequiresGeneratedReport(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.GetOrCreateYearConfig(ctx, testPlant, 2024)
	require.NoError(t, err)

	_, err = e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report must be generated")

	_, err = e.stocktake.MarkReportGenerated(ctx, testPlant, 2024)
	require.NoError(t, err)

	closed, err := e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)
	assert.False(t, closed.IsOpen)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, "Accounting Head", closed.ClosedBy)

	_, err = e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.Error(t, err, "closing twice is rejected")
}

func TestStocktakeUpsertRecord_CopiesMasterAndOverwrites(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.createAsset(t, "FA-000100", "Boiler", "3500000.00", "CC-PROD-05")

	record, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000100", StatusCode: model.CountStatusCounted,
		CountMethod: model.CountMethodQR, CountedByName: "Field Team A",
	})
	require.NoError(t, err)
	assert.Equal(t, "Boiler", record.AssetName)
	assert.Equal(t, "CC-PROD-05", record.CostCenterName)
	assert.Equal(t, 1, record.CountedQty, "qty defaults to one")

	// A second count for the same asset replaces the first in place.
	updated, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000100", StatusCode: model.CountStatusPending,
		CountedQty: 3, CountedByName: "Field Team B", NoteText: "Found damaged",
	})
	require.NoError(t, err)
	assert.Equal(t, record.ID, updated.ID)
	assert.Equal(t, model.CountStatusPending, updated.StatusCode)
	assert.Equal(t, 3, updated.CountedQty)
	assert.Equal(t, model.CountMethodExcel, updated.CountMethod, "blank method falls back to EXCEL")

	records, err := e.stocktake.ListRecords(ctx, testPlant, 2024, "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStocktakeUpsertRecord_UnknownAssetGetsPlaceholder(t *testing.T) {
	e := newTestEnv(t)

	record, err := e.stocktake.UpsertRecord(context.Background(), testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-GHOST", StatusCode: model.CountStatusOther, CountedByName: "Field Team A",
	})
	require.NoError(t, err)
	assert.Equal(t, "Imported Asset FA-GHOST", record.AssetName)
	assert.Equal(t, "CCA-UNDEFINED", record.CostCenterName)
	assert.True(t, record.BookValue.IsZero())
}

func TestStocktakeUpsertRecord_ClosedYearRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.GetOrCreateYearConfig(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.MarkReportGenerated(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)

	_, err = e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000100", StatusCode: model.CountStatusCounted, CountedByName: "Late Counter",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestStocktakeSetAccountingStatus_RequiresExistingRecord(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.SetAccountingStatus(ctx, testPlant, 2024, AccountingReviewRequest{
		AssetNo: "FA-NONE", AccountingStatusCode: model.AccountingStatusApproved, ActorName: "Reviewer",
	})
	require.Error(t, err)

	_, err = e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000200", StatusCode: model.CountStatusPending, CountedByName: "Field Team A",
	})
	require.NoError(t, err)

	record, err := e.stocktake.SetAccountingStatus(ctx, testPlant, 2024, AccountingReviewRequest{
		AssetNo: "FA-000200", AccountingStatusCode: model.AccountingStatusApproved, ActorName: "Reviewer",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccountingStatusApproved, record.AccountingStatusCode)
}

func TestStocktakeWorkspace_BucketsRecordsByStatus(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	seed := func(assetNo, status string) {
		_, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
			AssetNo: assetNo, StatusCode: status, CountedByName: "Field Team A",
		})
		require.NoError(t, err)
	}
	seed("FA-A", model.CountStatusNotCounted)
	seed("FA-B", model.CountStatusPending)
	seed("FA-C", model.CountStatusPending)
	seed("FA-D", model.CountStatusCounted)
	seed("FA-E", model.CountStatusRejected)

	ws, err := e.stocktake.Workspace(ctx, testPlant, 2024)
	require.NoError(t, err)
	assert.Equal(t, 5, ws.TotalRecords)
	assert.Len(t, ws.Tabs.NotCounted, 1)
	assert.Len(t, ws.Tabs.Pending, 2)
	assert.Len(t, ws.Tabs.Resolved, 2)
	assert.Equal(t, 2, ws.StatusCounts[model.CountStatusPending])
	assert.True(t, ws.Config.IsOpen)
}

func TestStocktakeCarryForward_ClonesPendingOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	seed := func(assetNo, status string) {
		_, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
			AssetNo: assetNo, StatusCode: status, CountedByName: "Field Team A",
		})
		require.NoError(t, err)
	}
	seed("FA-A", model.CountStatusPending)
	seed("FA-B", model.CountStatusPending)
	seed("FA-C", model.CountStatusCounted)

	// Carrying forward before close is rejected.
	_, err := e.stocktake.CarryPendingToNextYear(ctx, testPlant, 2024, "Accounting Head")
	require.Error(t, err)

	_, err = e.stocktake.MarkReportGenerated(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)

	carried, err := e.stocktake.CarryPendingToNextYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)
	assert.Equal(t, 2, carried)

	next, err := e.stocktake.ListRecords(ctx, testPlant, 2025, "")
	require.NoError(t, err)
	require.Len(t, next, 2)
	for _, record := range next {
		assert.Equal(t, model.CountStatusPending, record.StatusCode)
		assert.Equal(t, model.CountMethodExcel, record.CountMethod)
		assert.Equal(t, "Accounting Head", record.CountedByName)
		assert.Empty(t, record.AccountingStatusCode)
	}

	// A second run finds every asset already present and carries nothing.
	carried, err = e.stocktake.CarryPendingToNextYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)
	assert.Equal(t, 0, carried)
}

func TestStocktakeParticipants_DeduplicatedByEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	first, err := e.stocktake.AddParticipant(ctx, testPlant, 2024, AddParticipantRequest{
		Email: "Somsak.J@mitrphol.com", DisplayName: "Somsak J.",
	})
	require.NoError(t, err)
	assert.Equal(t, "somsak.j@mitrphol.com", first.Email, "emails are stored lowercased")

	dup, err := e.stocktake.AddParticipant(ctx, testPlant, 2024, AddParticipantRequest{
		Email: "SOMSAK.J@MITRPHOL.COM",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, dup.ID, "same person resolves to the existing row")

	participants, err := e.stocktake.ListParticipants(ctx, testPlant, 2024)
	require.NoError(t, err)
	require.Len(t, participants, 1)

	require.NoError(t, e.stocktake.RemoveParticipant(ctx, first.ID.String()))
	participants, err = e.stocktake.ListParticipants(ctx, testPlant, 2024)
	require.NoError(t, err)
	assert.Empty(t, participants)
}
