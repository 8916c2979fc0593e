package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"records-portal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentColumns = []string{"document_id", "subject", "priority", "status", "current_handler", "created_by", "created_at", "updated_at"}

func documentRow(id int64, status models.DocumentStatus, handler models.HandlerRole, updated time.Time) []driver.Value {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return []driver.Value{id, "Tender review", "normal", string(status), string(handler), int64(1), created, updated}
}

func newScriptedService(t *testing.T, steps []*queryStep) (*RMSService, *scriptedDB, time.Time) {
	t.Helper()
	db, state := newScriptedGormDB(t, steps)
	now := time.Date(2025, 3, 2, 10, 30, 0, 0, time.UTC)
	svc := NewRMSService(db)
	svc.SetClock(func() time.Time { return now })
	return svc, state, now
}

var (
	selectForUpdate = regexp.MustCompile("^SELECT \\* FROM `rms_documents` WHERE document_id = \\? .*FOR UPDATE$")
	guardedUpdate   = regexp.MustCompile("^UPDATE `rms_documents` SET `current_handler`=\\?,`status`=\\?,`updated_at`=\\? WHERE \\(?document_id = \\? AND status = \\?\\)?")
	reloadDocument  = regexp.MustCompile("^SELECT \\* FROM `rms_documents` WHERE document_id = \\?")
	insertLogEntry  = regexp.MustCompile("^INSERT INTO `rms_workflow_logs`")
)

func TestTransitionLocksRowAndGuardsStatusOnMySQL(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	stamp := time.Date(2025, 3, 2, 10, 30, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectForUpdate,
			columns: documentColumns,
			rows:    [][]driver.Value{documentRow(7, models.StatusReceived, models.HandlerRecordsOfficer, start)},
		},
		{
			kind:    kindExec,
			pattern: guardedUpdate,
			args:    []driver.Value{"boardSecretary", "forwarded_to_secretary", anyArg, int64(7), "received"},
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: reloadDocument,
			columns: documentColumns,
			rows:    [][]driver.Value{documentRow(7, models.StatusForwardedToSecretary, models.HandlerBoardSecretary, stamp)},
		},
		{
			kind:    kindExec,
			pattern: insertLogEntry,
			result:  scriptedResult{lastInsertID: 41, rowsAffected: 1},
		},
	}
	svc, state, _ := newScriptedService(t, steps)

	result, err := svc.Workflow.Transition(context.Background(), TransitionRequest{
		DocumentID: 7,
		ToStatus:   models.StatusForwardedToSecretary,
		Actor:      Actor{UserID: 3, Role: models.HandlerRecordsOfficer},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusForwardedToSecretary, result.Document.Status)
	assert.Equal(t, 41, result.Entry.LogID)
	assert.Equal(t, models.HandlerBoardSecretary, result.Entry.ToHandler)

	require.NoError(t, state.verifyComplete())
	assert.Equal(t, []string{"BEGIN", "COMMIT"}, state.txEvents())
}

func TestTransitionRollsBackWhenLogInsertFailsOnMySQL(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectForUpdate,
			columns: documentColumns,
			rows:    [][]driver.Value{documentRow(7, models.StatusReceived, models.HandlerRecordsOfficer, start)},
		},
		{
			kind:    kindExec,
			pattern: guardedUpdate,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: reloadDocument,
			columns: documentColumns,
			rows:    [][]driver.Value{documentRow(7, models.StatusForwardedToSecretary, models.HandlerBoardSecretary, start)},
		},
		{
			kind:    kindExec,
			pattern: insertLogEntry,
			err:     errors.New("Error 1205: Lock wait timeout exceeded"),
		},
	}
	svc, state, _ := newScriptedService(t, steps)

	_, err := svc.Workflow.Transition(context.Background(), TransitionRequest{
		DocumentID: 7,
		ToStatus:   models.StatusForwardedToSecretary,
		Actor:      Actor{UserID: 3, Role: models.HandlerRecordsOfficer},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append workflow log")
	assert.False(t, isDomainError(err))

	require.NoError(t, state.verifyComplete())
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, state.txEvents())
}

func TestTransitionReportsStaleDocumentOnMySQL(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectForUpdate,
			columns: documentColumns,
			rows:    [][]driver.Value{documentRow(7, models.StatusReceived, models.HandlerRecordsOfficer, start)},
		},
		{
			kind:    kindExec,
			pattern: guardedUpdate,
			result:  scriptedResult{rowsAffected: 0},
		},
	}
	svc, state, _ := newScriptedService(t, steps)

	_, err := svc.Workflow.Transition(context.Background(), TransitionRequest{
		DocumentID: 7,
		ToStatus:   models.StatusForwardedToSecretary,
		Actor:      Actor{UserID: 3, Role: models.HandlerRecordsOfficer},
	})
	assert.ErrorIs(t, err, ErrStaleDocument)

	require.NoError(t, state.verifyComplete())
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, state.txEvents())
}

func TestRejectedTransitionWritesNothingOnMySQL(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: selectForUpdate,
			columns: documentColumns,
			rows:    [][]driver.Value{documentRow(7, models.StatusReceived, models.HandlerRecordsOfficer, start)},
		},
	}
	svc, state, _ := newScriptedService(t, steps)

	_, err := svc.Workflow.Transition(context.Background(), TransitionRequest{
		DocumentID: 7,
		ToStatus:   models.StatusBoardMeeting,
		Actor:      Actor{UserID: 3, Role: models.HandlerRecordsOfficer},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, state.verifyComplete())
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, state.txEvents())
}
