package service

import (
	"testing"

	"easset/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDemolishApproval_FlowSelection(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		expert    bool
		wantFlow  string
		wantSteps int
		wantFirst string
	}{
		{"zero value uses low flow", "0.00", false, model.FlowDemolishLowValue, 4, "Requester Manager"},
		{"exactly one stays low", "1.00", false, model.FlowDemolishLowValue, 4, "Requester Manager"},
		{"just above one goes high", "1.01", false, model.FlowDemolishHighValue, 6, "Requester Manager"},
		{"large value goes high", "5000000.00", false, model.FlowDemolishHighValue, 6, "Requester Manager"},
		{"expert step prepended low", "0.50", true, model.FlowDemolishLowValue, 5, "Expert Review"},
		{"expert step prepended high", "2.00", true, model.FlowDemolishHighValue, 7, "Expert Review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, err := decimal.NewFromString(tt.total)
			require.NoError(t, err)

			approval := BuildDemolishApproval(total, tt.expert)
			assert.Equal(t, tt.wantFlow, approval.FlowCode)
			assert.Len(t, approval.Steps, tt.wantSteps)
			assert.Equal(t, 1, approval.CurrentStepOrder)
			assert.Equal(t, tt.wantFirst, approval.CurrentStepName)
		})
	}
}

func TestBuildDemolishApproval_ThresholdIsInclusive(t *testing.T) {
	// A total of exactly 1 must take the low-value flow.
	approval := BuildDemolishApproval(decimal.NewFromInt(1), false)
	assert.Equal(t, model.FlowDemolishLowValue, approval.FlowCode)
}

func TestBuildTransferApproval(t *testing.T) {
	approval := BuildTransferApproval()

	assert.Equal(t, model.FlowTransfer, approval.FlowCode)
	require.Len(t, approval.Steps, 5)
	assert.Equal(t, "Source Department Head", approval.Steps[0])
	assert.Equal(t, "Receiving Division Director", approval.Steps[4])
	assert.Equal(t, 1, approval.CurrentStepOrder)
}

func TestAdvanceApproval_WalksEveryStep(t *testing.T) {
	approval := BuildTransferApproval()

	for i := 0; i < 4; i++ {
		completed := advanceApproval(&approval)
		assert.False(t, completed, "step %d should not complete the flow", i+1)
		assert.Equal(t, i+2, approval.CurrentStepOrder)
		assert.Equal(t, approval.Steps[i+1], approval.CurrentStepName)
	}

	completed := advanceApproval(&approval)
	assert.True(t, completed)
	assert.Equal(t, "Approved", approval.CurrentStepName)
}

func TestNewApprovalAction_UnattachedRecordsPlaceholder(t *testing.T) {
	action := newApprovalAction(model.RefTypeDemolish, uuid.Nil, model.ApprovalState{}, model.ActionComment, "Somsak", "Submitted")

	assert.Equal(t, 0, action.StepOrder)
	assert.Equal(t, "SUBMIT", action.StepName)
	assert.Equal(t, model.ActionComment, action.ActionCode)
}

func TestNewApprovalAction_SnapshotsActiveStep(t *testing.T) {
	approval := BuildTransferApproval()
	advanceApproval(&approval)

	action := newApprovalAction(model.RefTypeTransfer, uuid.Nil, approval, model.ActionApprove, "Approver", "")

	assert.Equal(t, 2, action.StepOrder)
	assert.Equal(t, "Source Division Manager", action.StepName)
}
