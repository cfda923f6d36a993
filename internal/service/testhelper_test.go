package service

import (
	"context"
	"testing"

	"easset/internal/database"
	"easset/internal/model"
	"easset/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open test db")
	require.NoError(t, database.Migrate(db), "auto-migrate")
	return db
}

// testEnv bundles every repository and service against one in-memory database.
type testEnv struct {
	db        *gorm.DB
	assets    repository.AssetRepository
	demolish  DemolishService
	transfer  TransferService
	stocktake StocktakeService
	sync      SyncService
	outbox    repository.OutboxRepository
	audit     repository.AuditRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	txManager := repository.NewTransactionManager(db)
	assetRepo := repository.NewAssetRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	demolishRepo := repository.NewDemolishRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	stocktakeRepo := repository.NewStocktakeRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	return &testEnv{
		db:        db,
		assets:    assetRepo,
		demolish:  NewDemolishService(demolishRepo, assetRepo, outboxRepo, sequenceRepo, auditRepo, txManager, nil),
		transfer:  NewTransferService(transferRepo, assetRepo, outboxRepo, sequenceRepo, auditRepo, txManager, nil),
		stocktake: NewStocktakeService(stocktakeRepo, assetRepo, auditRepo, txManager, nil),
		sync:      NewSyncService(outboxRepo, auditRepo, txManager),
		outbox:    outboxRepo,
		audit:     auditRepo,
	}
}

func (e *testEnv) createAsset(t *testing.T, assetNo, name, bookValue, costCenter string) *model.Asset {
	t.Helper()
	value, err := decimal.NewFromString(bookValue)
	require.NoError(t, err)

	asset := &model.Asset{
		AssetNo:        assetNo,
		AssetName:      name,
		BookValue:      value,
		CostCenterName: costCenter,
		PlantName:      "Plant PL01",
		LocationName:   "Warehouse",
		AssetGroupName: "Machinery",
		Quantity:       1,
		SapExists:      true,
		SapAssetNo:     assetNo,
		SapBookValue:   value,
		IsActive:       true,
	}
	require.NoError(t, e.assets.Create(context.Background(), asset))
	return asset
}

// readyDemolishDraft builds a DRAFT that passes every submission gate.
func (e *testEnv) readyDemolishDraft(t *testing.T, bookValue string) *model.DemolishRequest {
	t.Helper()
	ctx := context.Background()

	asset := e.createAsset(t, "FA-"+bookValue, "Test Machine "+bookValue, bookValue, "CC-PROD-01")

	request, err := e.demolish.CreateDraft(ctx, CreateDemolishDraftRequest{
		CompanyID:     "C001",
		PlantID:       "PL01",
		CreatedByName: "Somsak Requester",
	})
	require.NoError(t, err)

	item, err := e.demolish.UpsertItem(ctx, request.ID.String(), UpsertDemolishItemRequest{
		AssetID: asset.ID.String(),
	})
	require.NoError(t, err)

	_, err = e.demolish.AddItemImages(ctx, request.ID.String(), item.ID.String(), []string{"photo1.jpg"})
	require.NoError(t, err)

	require.NoError(t, e.demolish.AttachDocument(ctx, request.ID.String(), AttachDemolishDocumentRequest{
		DocTypeCode: model.DocTypeApproval,
		FileName:    "approval.pdf",
	}))
	require.NoError(t, e.demolish.AttachDocument(ctx, request.ID.String(), AttachDemolishDocumentRequest{
		DocTypeCode: model.DocTypeBudget,
		FileName:    "budget.pdf",
	}))

	return request
}

// readyTransferDraft builds a DRAFT transfer that passes every submission gate.
func (e *testEnv) readyTransferDraft(t *testing.T) *model.TransferRequest {
	t.Helper()
	ctx := context.Background()

	asset := e.createAsset(t, "FA-TR-001", "Forklift", "780000.00", "CC-WH-01")

	request, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID:      "C001",
		PlantID:        "PL01",
		CreatedByName:  "Wichai Sender",
		FromCostCenter: "CC-WH-01",
		ToCostCenter:   "CC-PROD-01",
		ToOwnerName:    "Receiving Owner",
		ToOwnerEmail:   "owner@mitrphol.com",
		ReasonText:     "Relocation to production",
	})
	require.NoError(t, err)

	_, err = e.transfer.AddItem(ctx, request.ID.String(), AddTransferItemRequest{AssetID: asset.ID.String()})
	require.NoError(t, err)

	_, err = e.transfer.AddAttachment(ctx, request.ID.String(), "transfer-form.pdf")
	require.NoError(t, err)

	return request
}

func approveDemolishSteps(t *testing.T, e *testEnv, requestID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.demolish.ActionApproval(context.Background(), requestID, ApprovalActionRequest{
			Action:    model.ActionApprove,
			ActorName: "Approver",
		}))
	}
}

func approveTransferSteps(t *testing.T, e *testEnv, requestID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.transfer.ActionApproval(context.Background(), requestID, ApprovalActionRequest{
			Action:    model.ActionApprove,
			ActorName: "Approver",
		}))
	}
}
