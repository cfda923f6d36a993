package service

import (
	"context"
	"strings"
	"testing"

	"easset/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferCreateDraft_ValidatesDestination(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "cc-wh-01",
	})
	require.Error(t, err, "same cost center in different case is still the same")
	assert.Contains(t, err.Error(), "must differ")

	_, err = e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "", ToCostCenter: "CC-PROD-01",
	})
	require.Error(t, err)
}

func TestTransferCreateDraft_DefaultsReceiver(t *testing.T) {
	e := newTestEnv(t)

	request, err := e.transfer.CreateDraft(context.Background(), CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "CC-PROD-01",
	})
	require.NoError(t, err)

	assert.Equal(t, defaultReceiverName, request.ToOwnerName)
	assert.Equal(t, defaultReceiverEmail, request.ToOwnerEmail)
	assert.True(t, strings.HasPrefix(request.RequestNo, "TR-"))
	assert.True(t, strings.HasSuffix(request.RequestNo, "-00001"))
}

func TestTransferAddItem_RejectsAssetOutsideSourceCostCenter(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	stray := e.createAsset(t, "FA-000002", "Conveyor", "42000.00", "CC-QA-01")
	request, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "CC-PROD-01",
	})
	require.NoError(t, err)

	_, err = e.transfer.AddItem(ctx, request.ID.String(), AddTransferItemRequest{AssetID: stray.ID.String()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to cost center")
}

func TestTransferAddRemoveItem_MaintainsTotal(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	first := e.createAsset(t, "FA-000010", "Forklift", "780000.00", "CC-WH-01")
	second := e.createAsset(t, "FA-000011", "Pallet Jack", "21000.50", "CC-WH-01")

	request, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "CC-PROD-01",
	})
	require.NoError(t, err)
	assert.True(t, request.TotalBookValue.IsZero())

	_, err = e.transfer.AddItem(ctx, request.ID.String(), AddTransferItemRequest{AssetID: first.ID.String()})
	require.NoError(t, err)
	item, err := e.transfer.AddItem(ctx, request.ID.String(), AddTransferItemRequest{AssetID: second.ID.String()})
	require.NoError(t, err)

	detail, err := e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "801000.5", detail.TotalBookValue.String())

	require.NoError(t, e.transfer.RemoveItem(ctx, request.ID.String(), item.ID.String()))

	detail, err = e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "780000", detail.TotalBookValue.String())
}

func TestTransferSubmit_GateListsAllIssues(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	request, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "CC-PROD-01",
	})
	require.NoError(t, err)

	err = e.transfer.Submit(ctx, request.ID.String())
	var gateErr *SubmissionGateError
	require.ErrorAs(t, err, &gateErr)
	assert.Len(t, gateErr.Issues, 3, "item, reason and attachment issues together: %v", gateErr.Issues)
}

func TestTransferCheckSubmission_ReadyDraftHasNoIssues(t *testing.T) {
	e := newTestEnv(t)

	request := e.readyTransferDraft(t)
	issues, err := e.transfer.CheckSubmission(context.Background(), request.ID.String())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestTransferSubmit_AttachesFiveStepFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	request := e.readyTransferDraft(t)
	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))

	detail, err := e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, detail.Status)
	assert.Equal(t, model.FlowTransfer, detail.Approval.FlowCode)
	assert.Len(t, detail.Approval.Steps, 5)
	assert.Equal(t, "Source Department Head", detail.Approval.CurrentStepName)
}

func TestTransferFinalApproval_MovesAssetsAndQueuesSync(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	request := e.readyTransferDraft(t)
	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))

	approveTransferSteps(t, e, request.ID.String(), 4)

	// Not done yet: the asset stays put until the last step clears.
	detail, err := e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	moved, err := e.assets.FindByID(ctx, detail.Items[0].AssetID)
	require.NoError(t, err)
	assert.Equal(t, "CC-WH-01", moved.CostCenterName)

	approveTransferSteps(t, e, request.ID.String(), 1)

	detail, err = e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, detail.Status)
	assert.Equal(t, "Approved", detail.Approval.CurrentStepName)

	moved, err = e.assets.FindByID(ctx, detail.Items[0].AssetID)
	require.NoError(t, err)
	assert.Equal(t, "CC-PROD-01", moved.CostCenterName)

	entries, err := e.outbox.ListSync(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.RefTypeTransfer, entries[0].RefType)
	assert.Equal(t, request.RequestNo, entries[0].RefNo)
	assert.Equal(t, "owner@mitrphol.com", entries[0].NotifyEmail)
}

func TestTransferFinalApproval_MovesLocationWhenGiven(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	asset := e.createAsset(t, "FA-000020", "Crane", "1200000.00", "CC-WH-01")
	request, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "CC-PROD-01",
		ToLocation: "Line 3", ReasonText: "Capacity move",
	})
	require.NoError(t, err)
	_, err = e.transfer.AddItem(ctx, request.ID.String(), AddTransferItemRequest{AssetID: asset.ID.String()})
	require.NoError(t, err)
	_, err = e.transfer.AddAttachment(ctx, request.ID.String(), "form.pdf")
	require.NoError(t, err)

	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))
	approveTransferSteps(t, e, request.ID.String(), 5)

	moved, err := e.assets.FindByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "Line 3", moved.LocationName)
}

func TestTransferReject_StopsTheFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	request := e.readyTransferDraft(t)
	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))
	approveTransferSteps(t, e, request.ID.String(), 1)

	require.NoError(t, e.transfer.ActionApproval(ctx, request.ID.String(), ApprovalActionRequest{
		Action: model.ActionReject, ActorName: "Division Manager", Comment: "Wrong destination",
	}))

	detail, err := e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, detail.Status)

	// No side effects happened and nothing was queued.
	moved, err := e.assets.FindByID(ctx, detail.Items[0].AssetID)
	require.NoError(t, err)
	assert.Equal(t, "CC-WH-01", moved.CostCenterName)
	entries, err := e.outbox.ListSync(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransferReturnToDraft_AllowsResubmit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	request := e.readyTransferDraft(t)
	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))
	require.NoError(t, e.transfer.ReturnToDraft(ctx, request.ID.String(), "Wichai Sender", "Reason update"))

	require.NoError(t, e.transfer.UpdateDraftMeta(ctx, request.ID.String(), UpdateTransferDraftRequest{
		ToCostCenter: "CC-PROD-01",
		ReasonText:   "Relocation, corrected",
	}))
	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))

	detail, err := e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Approval.CurrentStepOrder)
	assert.Equal(t, request.RequestNo, detail.RequestNo, "resubmission keeps the original number")
}

func TestTransferAttachments_Deduplicated(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	request, err := e.transfer.CreateDraft(ctx, CreateTransferDraftRequest{
		CompanyID: "C001", PlantID: "PL01", CreatedByName: "Wichai",
		FromCostCenter: "CC-WH-01", ToCostCenter: "CC-PROD-01",
	})
	require.NoError(t, err)

	files, err := e.transfer.AddAttachment(ctx, request.ID.String(), "form.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"form.pdf"}, files)

	files, err = e.transfer.AddAttachment(ctx, request.ID.String(), "form.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"form.pdf"}, files, "same file name is not stored twice")

	require.NoError(t, e.transfer.RemoveAttachment(ctx, request.ID.String(), "form.pdf"))
	detail, err := e.transfer.Get(ctx, request.ID.String())
	require.NoError(t, err)
	assert.Empty(t, detail.Attachments)
}
