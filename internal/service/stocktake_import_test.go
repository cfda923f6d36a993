package service

import (
	"context"
	"strings"
	"testing"

	"easset/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCountCsv_HappyPath(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.createAsset(t, "FA-000300", "Mixer", "150000.00", "CC-PROD-02")

	content := []byte("assetNo,statusCode,note,method,qty\n" +
		"FA-000300,COUNTED,all good,QR,1\n" +
		"FA-000301,PENDING,not on master,,2\n")

	result, err := e.stocktake.ImportCountCsv(ctx, testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)

	records, err := e.stocktake.ListRecords(ctx, testPlant, 2024, "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byNo := map[string]model.StocktakeRecord{}
	for _, r := range records {
		byNo[r.AssetNo] = r
	}
	assert.Equal(t, "Mixer", byNo["FA-000300"].AssetName)
	assert.Equal(t, model.CountMethodQR, byNo["FA-000300"].CountMethod)
	assert.Equal(t, "Imported Asset FA-000301", byNo["FA-000301"].AssetName)
	assert.Equal(t, model.CountMethodExcel, byNo["FA-000301"].CountMethod)
	assert.Equal(t, 2, byNo["FA-000301"].CountedQty)
}

func TestImportCountCsv_HeaderAliasesAccepted(t *testing.T) {
	e := newTestEnv(t)

	content := []byte("Asset Number,Status,Remark,Count Method,Quantity\n" +
		"FA-000310,COUNTED,,MANUAL,1\n")

	result, err := e.stocktake.ImportCountCsv(context.Background(), testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestImportCountCsv_HeaderlessFileParsedPositionally(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.createAsset(t, "100-001-2020", "Cane Crusher", "2400000.00", "CC-PROD-01")

	content := []byte("100-001-2020,COUNTED,checked,EXCEL,1\n" +
		"100-002-2020,PENDING,,QR,2\n")

	result, err := e.stocktake.ImportCountCsv(ctx, testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)

	records, err := e.stocktake.ListRecords(ctx, testPlant, 2024, "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byNo := map[string]model.StocktakeRecord{}
	for _, r := range records {
		byNo[r.AssetNo] = r
	}
	assert.Equal(t, "Cane Crusher", byNo["100-001-2020"].AssetName)
	assert.Equal(t, "checked", byNo["100-001-2020"].NoteText)
	assert.Equal(t, model.CountMethodQR, byNo["100-002-2020"].CountMethod)
	assert.Equal(t, 2, byNo["100-002-2020"].CountedQty)
}

func TestImportCountCsv_HeaderlessSingleLineOnClosedYear(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.GetOrCreateYearConfig(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.MarkReportGenerated(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)

	content := []byte("100-001-2020,COUNTED,checked,EXCEL,1")
	result, err := e.stocktake.ImportCountCsv(ctx, testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "closed")
}

func TestImportCountCsv_ReportsBadLinesAndKeepsGoing(t *testing.T) {
	e := newTestEnv(t)

	content := []byte("assetNo,statusCode\n" +
		",COUNTED\n" +
		"FA-000320,NO_SUCH_STATUS\n" +
		"FA-000321,counted\n")

	result, err := e.stocktake.ImportCountCsv(context.Background(), testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported, "lowercased status still lands")
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Line 2")
	assert.Contains(t, result.Errors[1], "Line 3")
}

func TestImportCountCsv_RejectsPipeDelimitedFile(t *testing.T) {
	e := newTestEnv(t)

	content := []byte("ANLN1|TXT50|ANLKL|KOSTL|KTANSW\n" +
		"000000100|Boiler|2000|CC-PROD-01|3500000.00\n" +
		"000000101|Mill Drive|2000|CC-PROD-01|8200000.00\n")

	result, err := e.stocktake.ImportCountCsv(context.Background(), testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "SAP master file")
	assert.Contains(t, result.Errors[0], CountCsvTemplate)
}

func TestImportCountCsv_StrayPipeInNoteIsNotRejected(t *testing.T) {
	e := newTestEnv(t)

	content := []byte("assetNo,statusCode,note\n" +
		"FA-000350,COUNTED,tag reads A|B\n")

	result, err := e.stocktake.ImportCountCsv(context.Background(), testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestImportCountCsv_EmptyAndHeaderOnlyFiles(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	result, err := e.stocktake.ImportCountCsv(ctx, testPlant, 2024, "Importer", []byte("   "))
	require.NoError(t, err)
	assert.Contains(t, strings.Join(result.Errors, ";"), "empty")

	result, err = e.stocktake.ImportCountCsv(ctx, testPlant, 2024, "Importer", []byte("assetNo,statusCode\n"))
	require.NoError(t, err)
	assert.Contains(t, strings.Join(result.Errors, ";"), "no data rows")
}

func TestImportCountCsv_ClosedYearImportsNothing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.GetOrCreateYearConfig(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.MarkReportGenerated(ctx, testPlant, 2024)
	require.NoError(t, err)
	_, err = e.stocktake.CloseYear(ctx, testPlant, 2024, "Accounting Head")
	require.NoError(t, err)

	content := []byte("assetNo,statusCode\nFA-000330,COUNTED\n")
	result, err := e.stocktake.ImportCountCsv(ctx, testPlant, 2024, "Importer", content)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "closed")
}

func TestImportAccountingCsv_AppliesStatusesAndReportsUnknownAssets(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000340", StatusCode: model.CountStatusPending, CountedByName: "Field Team A",
	})
	require.NoError(t, err)

	content := []byte("assetNo,statusCode\n" +
		"FA-000340,APPROVED\n" +
		"FA-MISSING,APPROVED\n" +
		"FA-000340,MAYBE\n")

	result, err := e.stocktake.ImportAccountingCsv(ctx, testPlant, 2024, "Reviewer", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "no count record for asset FA-MISSING")
	assert.Contains(t, result.Errors[1], "unknown accounting status")

	records, err := e.stocktake.ListRecords(ctx, testPlant, 2024, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.AccountingStatusApproved, records[0].AccountingStatusCode)
}

func TestImportAccountingCsv_DocumentedHeaderAccepted(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000350", StatusCode: model.CountStatusPending, CountedByName: "Field Team A",
	})
	require.NoError(t, err)

	content := []byte("assetNo,accountingStatusCode\nFA-000350,SUBMIT\n")
	result, err := e.stocktake.ImportAccountingCsv(ctx, testPlant, 2024, "Reviewer", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)
}

func TestImportAccountingCsv_HeaderlessFileAccepted(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.stocktake.UpsertRecord(ctx, testPlant, 2024, UpsertCountRequest{
		AssetNo: "FA-000360", StatusCode: model.CountStatusPending, CountedByName: "Field Team A",
	})
	require.NoError(t, err)

	content := []byte("FA-000360,REJECT")
	result, err := e.stocktake.ImportAccountingCsv(ctx, testPlant, 2024, "Reviewer", content)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)

	records, err := e.stocktake.ListRecords(ctx, testPlant, 2024, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.AccountingStatusReject, records[0].AccountingStatusCode)
}
