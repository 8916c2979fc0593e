package services

import (
	"context"
	"testing"
	"time"

	"records-portal-api/models"
	"records-portal-api/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type rmsFixture struct {
	db    *gorm.DB
	svc   *RMSService
	users testutil.Users
	clock *testutil.SteppingClock
}

func newRMSFixture(t *testing.T) *rmsFixture {
	t.Helper()
	db := testutil.OpenTestDB(t)
	users := testutil.SeedUsers(t, db)
	clock := testutil.NewSteppingClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), time.Second)

	svc := NewRMSService(db)
	svc.SetClock(clock.Now)
	return &rmsFixture{db: db, svc: svc, users: users, clock: clock}
}

func (f *rmsFixture) actor(role string) Actor {
	return Actor{UserID: f.users[role], Role: models.HandlerRole(role)}
}

func (f *rmsFixture) create(t *testing.T, subject string) *models.RMSDocument {
	t.Helper()
	doc, err := f.svc.Documents.Create(context.Background(), f.actor(models.RoleRecordsOfficer), CreateDocumentInput{
		Subject:  subject,
		Priority: models.PriorityNormal,
	})
	require.NoError(t, err)
	return doc
}

func (f *rmsFixture) forward(t *testing.T, id int, to models.DocumentStatus, role string) *TransitionResult {
	t.Helper()
	result, err := f.svc.Workflow.Transition(context.Background(), TransitionRequest{
		DocumentID: id,
		ToStatus:   to,
		Actor:      f.actor(role),
	})
	require.NoError(t, err, "-> %s by %s", to, role)
	return result
}

// walkToDecision moves a fresh document along the committee track to decision_made.
func (f *rmsFixture) walkToDecision(t *testing.T, id int) {
	t.Helper()
	steps := []struct {
		to   models.DocumentStatus
		role string
	}{
		{models.StatusForwardedToSecretary, models.RoleRecordsOfficer},
		{models.StatusCommentedBySecretary, models.RoleBoardSecretary},
		{models.StatusSentToChair, models.RoleChiefOfficer},
		{models.StatusCommentedByChair, models.RoleBoardChair},
		{models.StatusSentToCommittee, models.RoleBoardChair},
		{models.StatusAgendaSet, models.RoleBoardCommittee},
		{models.StatusBoardMeeting, models.RoleBoardSecretary},
		{models.StatusDecisionMade, models.RoleBoardCommittee},
	}
	for _, step := range steps {
		f.forward(t, id, step.to, step.role)
	}
}

func (f *rmsFixture) logFor(t *testing.T, id int) []models.RMSWorkflowLog {
	t.Helper()
	entries, err := f.svc.Audit.ListFor(context.Background(), id)
	require.NoError(t, err)
	return entries
}
