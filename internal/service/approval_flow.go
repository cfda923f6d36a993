package service

import (
	"time"

	"easset/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LowValueThreshold separates nominal write-offs (book value effectively zero)
// from material ones that need budget approval. Business has confirmed the
// boundary sits at one currency unit.
var LowValueThreshold = decimal.NewFromInt(1)

// MaxDemolishBookValue is the ceiling above which a demolish request cannot be
// submitted at all.
var MaxDemolishBookValue = decimal.NewFromInt(20_000_000)

// finalStepLabel is shown once the last step has been approved.
const finalStepLabel = "Approved"

var demolishLowValueSteps = []string{
	"Requester Manager",
	"Plant Accounting Manager",
	"Central Accounting Director",
	"Requester Division Director",
}

var demolishHighValueSteps = []string{
	"Requester Manager",
	"Plant Accounting Manager",
	"Requester Division Director",
	"Budget Approver",
	"Central Accounting Director",
	"Final Approver by Amount",
}

var transferSteps = []string{
	"Source Department Head",
	"Source Division Manager",
	"Receiving Department Head",
	"Receiving Division Manager",
	"Receiving Division Director",
}

// BuildDemolishApproval computes the flow for a demolish request from its
// current totals and flags. It is called at submission time, so a request
// returned to draft and resubmitted always gets a freshly computed flow.
func BuildDemolishApproval(totalBookValue decimal.Decimal, hasExpertStep bool) model.ApprovalState {
	flowCode := model.FlowDemolishHighValue
	baseSteps := demolishHighValueSteps
	if totalBookValue.LessThanOrEqual(LowValueThreshold) {
		flowCode = model.FlowDemolishLowValue
		baseSteps = demolishLowValueSteps
	}

	steps := make([]string, 0, len(baseSteps)+1)
	if hasExpertStep {
		steps = append(steps, "Expert Review")
	}
	steps = append(steps, baseSteps...)

	return model.ApprovalState{
		FlowCode:         flowCode,
		Steps:            steps,
		CurrentStepOrder: 1,
		CurrentStepName:  steps[0],
	}
}

// BuildTransferApproval returns the fixed five-step transfer flow.
func BuildTransferApproval() model.ApprovalState {
	steps := make([]string, len(transferSteps))
	copy(steps, transferSteps)
	return model.ApprovalState{
		FlowCode:         model.FlowTransfer,
		Steps:            steps,
		CurrentStepOrder: 1,
		CurrentStepName:  steps[0],
	}
}

// advanceApproval moves the flow to the next step. It returns true when the
// current step was the last one, in which case the caller marks the request
// APPROVED and the step label becomes the terminal marker.
func advanceApproval(a *model.ApprovalState) bool {
	if a.CurrentStepOrder >= len(a.Steps) {
		a.CurrentStepName = finalStepLabel
		return true
	}
	a.CurrentStepOrder++
	a.CurrentStepName = a.Steps[a.CurrentStepOrder-1]
	return false
}

// newApprovalAction snapshots the step active at the time of the action.
// Requests that have no approval attached yet (draft submission, return to
// draft) record step 0 with the placeholder name "SUBMIT".
func newApprovalAction(refType string, requestID uuid.UUID, approval model.ApprovalState, actionCode, actorName, comment string) model.ApprovalAction {
	stepOrder := 0
	stepName := "SUBMIT"
	if approval.Attached() {
		stepOrder = approval.CurrentStepOrder
		stepName = approval.CurrentStepName
	}
	return model.ApprovalAction{
		RefType:    refType,
		RequestID:  requestID,
		StepOrder:  stepOrder,
		StepName:   stepName,
		ActionCode: actionCode,
		ActorName:  actorName,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}
}
