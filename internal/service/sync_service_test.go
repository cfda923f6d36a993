package service

import (
	"context"
	"testing"
	"time"

	"easset/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedTransferSyncEntry runs a transfer through its full approval so a
// real PENDING sync entry exists to act on.
func completedTransferSyncEntry(t *testing.T, e *testEnv) model.SapSyncOutbox {
	t.Helper()
	ctx := context.Background()

	request := e.readyTransferDraft(t)
	require.NoError(t, e.transfer.Submit(ctx, request.ID.String()))
	approveTransferSteps(t, e, request.ID.String(), 5)

	entries, err := e.outbox.ListSync(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestMarkSyncResult_SuccessQueuesTransferEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	entry := completedTransferSyncEntry(t, e)

	updated, err := e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusSuccess, ActorName: "SAP Operator",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusSuccess, updated.Status)
	assert.NotNil(t, updated.ProcessedAt)

	emails, err := e.sync.ListEmail(ctx)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "owner@mitrphol.com", emails[0].ToEmail)
	assert.Equal(t, entry.RefNo, emails[0].RefNo)
	assert.Contains(t, emails[0].Subject, entry.RefNo)
	assert.Equal(t, model.EmailStatusPending, emails[0].Status)
}

func TestMarkSyncResult_FailDoesNotQueueEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	entry := completedTransferSyncEntry(t, e)

	updated, err := e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusFail, ErrorMessage: "RFC timeout", ActorName: "SAP Operator",
	})
	require.NoError(t, err)
	assert.Equal(t, "RFC timeout", updated.ErrorMessage)

	emails, err := e.sync.ListEmail(ctx)
	require.NoError(t, err)
	assert.Empty(t, emails)
}

func TestMarkSyncResult_FinalizedEntryCannotChange(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	entry := completedTransferSyncEntry(t, e)

	_, err := e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusSuccess, ActorName: "SAP Operator",
	})
	require.NoError(t, err)

	_, err = e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusFail, ActorName: "SAP Operator",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already finalized")
}

func TestMarkSyncResult_ProcessingLeavesEntryOpen(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	entry := completedTransferSyncEntry(t, e)

	updated, err := e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusProcessing, ActorName: "SAP Operator",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ProcessedAt)

	// Still open: a terminal result can follow.
	_, err = e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusSuccess, ActorName: "SAP Operator",
	})
	require.NoError(t, err)
}

func TestMarkEmailSent_Idempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	entry := completedTransferSyncEntry(t, e)
	_, err := e.sync.MarkSyncResult(ctx, entry.ID.String(), MarkSyncResultRequest{
		Status: model.SyncStatusSuccess, ActorName: "SAP Operator",
	})
	require.NoError(t, err)

	emails, err := e.sync.ListEmail(ctx)
	require.NoError(t, err)
	require.Len(t, emails, 1)

	sent, err := e.sync.MarkEmailSent(ctx, emails[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.EmailStatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)

	again, err := e.sync.MarkEmailSent(ctx, emails[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.EmailStatusSent, again.Status)
	require.NotNil(t, again.SentAt)
	assert.WithinDuration(t, *sent.SentAt, *again.SentAt, time.Second, "repeat calls keep the original timestamp")
}
