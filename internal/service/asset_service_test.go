package service

import (
	"context"
	"testing"

	"easset/internal/model"
	"easset/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssetService(e *testEnv) AssetService {
	return NewAssetService(e.assets, repository.NewTransactionManager(e.db))
}

func TestAssetList_KeywordAndViewFilters(t *testing.T) {
	e := newTestEnv(t)
	svc := newAssetService(e)
	ctx := context.Background()

	e.createAsset(t, "FA-000400", "Steam Turbine", "9000000.00", "CC-POWER-01")
	e.createAsset(t, "FA-000401", "Bagasse Conveyor", "400000.00", "CC-PROD-01")

	assets, err := svc.List(ctx, AssetViewAll, "turbine")
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "FA-000400", assets[0].AssetNo)

	// Neither asset has an image yet.
	assets, err = svc.List(ctx, AssetViewNoImage, "")
	require.NoError(t, err)
	assert.Len(t, assets, 2)
}

func TestAssetAddImages_FirstImageBecomesPrimary(t *testing.T) {
	e := newTestEnv(t)
	svc := newAssetService(e)
	ctx := context.Background()

	asset := e.createAsset(t, "FA-000410", "Clarifier", "600000.00", "CC-PROD-03")

	images, err := svc.AddImages(ctx, asset.ID.String(), []string{"front.jpg", "side.jpg"})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].IsPrimary)
	assert.False(t, images[1].IsPrimary)
	assert.Contains(t, images[0].FileUrl, "FA-000410")

	reloaded, err := e.assets.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.HasImage)

	// Later uploads never steal the primary slot.
	more, err := svc.AddImages(ctx, asset.ID.String(), []string{"plate.jpg"})
	require.NoError(t, err)
	require.Len(t, more, 1)
	assert.False(t, more[0].IsPrimary)
}

func TestAssetSapMismatches_Classification(t *testing.T) {
	e := newTestEnv(t)
	svc := newAssetService(e)
	ctx := context.Background()

	e.createAsset(t, "FA-000420", "Matched Pump", "100000.00", "CC-PROD-01")

	gap := e.createAsset(t, "FA-000421", "Valued Pump", "100000.00", "CC-PROD-01")
	require.NoError(t, e.assets.UpdateFields(ctx, gap.ID, map[string]interface{}{
		"sap_book_value": decimal.NewFromInt(99000),
	}))

	missing := e.createAsset(t, "FA-000422", "Ghost Pump", "50000.00", "CC-PROD-01")
	require.NoError(t, e.assets.UpdateFields(ctx, missing.ID, map[string]interface{}{
		"sap_exists": false,
	}))

	rows, err := svc.SapMismatches(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	types := map[string]string{}
	for _, row := range rows {
		types[row.AssetNo] = row.MismatchType
	}
	assert.Equal(t, model.MismatchBookValue, types["FA-000421"])
	assert.Equal(t, model.MismatchMissingInSap, types["FA-000422"])

	metrics, err := svc.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.Total)
	assert.Equal(t, 2, metrics.SapMismatches)
}

func TestAssetUpdateFields_ValidatesQrType(t *testing.T) {
	e := newTestEnv(t)
	svc := newAssetService(e)
	ctx := context.Background()

	asset := e.createAsset(t, "FA-000430", "Label Printer", "30000.00", "CC-IT-01")

	_, err := svc.UpdateFields(ctx, asset.ID.String(), UpdateAssetFieldsRequest{QrTypeCode: "BARCODE"})
	require.Error(t, err)

	updated, err := svc.UpdateFields(ctx, asset.ID.String(), UpdateAssetFieldsRequest{
		QrTypeCode:   model.QrTypeSticker,
		LocationName: "Server Room",
	})
	require.NoError(t, err)
	assert.Equal(t, model.QrTypeSticker, updated.QrTypeCode)
	assert.Equal(t, "Server Room", updated.LocationName)
}

func TestAssetOptions_FilteredByCostCenter(t *testing.T) {
	e := newTestEnv(t)
	svc := newAssetService(e)
	ctx := context.Background()

	e.createAsset(t, "FA-000440", "Shredder", "250000.00", "CC-PROD-01")
	e.createAsset(t, "FA-000441", "Weigher", "80000.00", "CC-WH-01")

	options, err := svc.Options(ctx, "CC-WH-01")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "FA-000441", options[0].AssetNo)
}
