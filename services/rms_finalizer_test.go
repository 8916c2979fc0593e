package services

import (
	"context"
	"errors"
	"testing"

	"records-portal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchClosesDecidedDocument(t *testing.T) {
	f := newRMSFixture(t)
	ctx := context.Background()
	doc := f.create(t, "Staff housing allowance")
	f.walkToDecision(t, doc.DocumentID)

	result, err := f.svc.Finalizer.Dispatch(ctx, doc.DocumentID, f.actor(models.RoleRecordsOfficer), "  Approved for FY2025  ")
	require.NoError(t, err)

	stored, err := f.svc.Documents.Get(ctx, doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDispatched, stored.Status)
	assert.Equal(t, models.HandlerInitiator, stored.CurrentHandler)
	require.NotNil(t, stored.DecisionSummary)
	assert.Equal(t, "Approved for FY2025", *stored.DecisionSummary)
	require.NotNil(t, stored.DispatchedAt)
	require.NotNil(t, stored.DispatchedBy)
	assert.Equal(t, f.users[models.RoleRecordsOfficer], *stored.DispatchedBy)

	assert.Equal(t, models.ActionDocumentDispatched, result.Entry.ActionType)
	require.NotNil(t, result.Entry.FromStatus)
	assert.Equal(t, models.StatusDecisionMade, *result.Entry.FromStatus)
	require.NotNil(t, result.Entry.Notes)
	assert.Equal(t, "Approved for FY2025", *result.Entry.Notes)
	assert.True(t, stored.DispatchedAt.Equal(result.Entry.CreatedAt))
}

func TestFileSendsDocumentToRegistry(t *testing.T) {
	f := newRMSFixture(t)
	ctx := context.Background()
	doc := f.create(t, "Annual report")
	f.walkToDecision(t, doc.DocumentID)

	result, err := f.svc.Finalizer.Finalize(ctx, doc.DocumentID, f.actor(models.RoleRecordsOfficer), "Noted, no action", "FILE")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFiled, result.Document.Status)
	assert.Equal(t, models.HandlerRegistry, result.Document.CurrentHandler)
	assert.Equal(t, models.ActionDocumentFiled, result.Entry.ActionType)
	assert.Equal(t, models.HandlerRegistry, result.Entry.ToHandler)
}

func TestFinalizeTwiceFailsWithoutNewEntry(t *testing.T) {
	f := newRMSFixture(t)
	ctx := context.Background()
	doc := f.create(t, "Annual report")
	f.walkToDecision(t, doc.DocumentID)

	_, err := f.svc.Finalizer.Dispatch(ctx, doc.DocumentID, f.actor(models.RoleRecordsOfficer), "Approved")
	require.NoError(t, err)
	before := f.logFor(t, doc.DocumentID)

	_, err = f.svc.Finalizer.Dispatch(ctx, doc.DocumentID, f.actor(models.RoleRecordsOfficer), "Approved again")
	assert.ErrorIs(t, err, ErrAlreadyTerminal)
	_, err = f.svc.Finalizer.File(ctx, doc.DocumentID, f.actor(models.RoleRecordsOfficer), "Filed instead")
	assert.ErrorIs(t, err, ErrAlreadyTerminal)

	assert.Len(t, f.logFor(t, doc.DocumentID), len(before))
	stored, err := f.svc.Documents.Get(ctx, doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Approved", *stored.DecisionSummary)
}

func TestFinalizeRejections(t *testing.T) {
	f := newRMSFixture(t)
	ctx := context.Background()
	decided := f.create(t, "Decided")
	f.walkToDecision(t, decided.DocumentID)
	fresh := f.create(t, "Fresh")

	t.Run("not decided", func(t *testing.T) {
		_, err := f.svc.Finalizer.Dispatch(ctx, fresh.DocumentID, f.actor(models.RoleRecordsOfficer), "Approved")
		require.ErrorIs(t, err, ErrInvalidTransition)
		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, models.StatusReceived, te.From)
		assert.Equal(t, models.StatusDispatched, te.To)
	})

	t.Run("wrong role", func(t *testing.T) {
		for _, role := range []string{models.RoleAdmin, models.RoleBoardCommittee, models.RoleChiefOfficer} {
			_, err := f.svc.Finalizer.Dispatch(ctx, decided.DocumentID, f.actor(role), "Approved")
			assert.ErrorIs(t, err, ErrInvalidTransition, role)
		}
	})

	t.Run("blank summary", func(t *testing.T) {
		_, err := f.svc.Finalizer.File(ctx, decided.DocumentID, f.actor(models.RoleRecordsOfficer), "   ")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := f.svc.Finalizer.Finalize(ctx, decided.DocumentID, f.actor(models.RoleRecordsOfficer), "Approved", "shred")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := f.svc.Finalizer.Dispatch(ctx, 4242, f.actor(models.RoleRecordsOfficer), "Approved")
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	stored, err := f.svc.Documents.Get(ctx, decided.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDecisionMade, stored.Status)
	assert.Nil(t, stored.DecisionSummary)
	assert.Len(t, f.logFor(t, decided.DocumentID), 9)
}
