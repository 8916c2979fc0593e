package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"records-portal-api/models"
	"records-portal-api/services"
	"records-portal-api/testutil"
	"records-portal-api/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func runCommand(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&App{DB: db})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVerifyLogCommand(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := testutil.SeedUsers(t, db)
	svc := services.NewRMSService(db)
	ctx := context.Background()

	doc, err := svc.Documents.Create(ctx, services.Actor{UserID: users[models.RoleRecordsOfficer], Role: models.HandlerRecordsOfficer}, services.CreateDocumentInput{Subject: "Audit me"})
	require.NoError(t, err)

	out, err := runCommand(t, db, "verify-log")
	require.NoError(t, err)
	assert.Contains(t, out, "1 document(s) checked, 0 violation(s)")

	require.NoError(t, db.Model(&models.RMSDocument{}).
		Where("document_id = ?", doc.DocumentID).
		Update("status", models.StatusDecisionMade).Error)

	out, err = runCommand(t, db, "verify-log", "--format", "json", "--document", "1")
	assert.ErrorIs(t, err, errViolations)
	var report struct {
		Checked    int                     `json:"checked"`
		Violations []services.LogViolation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Checked)
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0].Message, "document is decision_made")
}

func TestSeedUsersCommand(t *testing.T) {
	db := testutil.OpenTestDB(t)

	out, err := runCommand(t, db, "seed-users", "--email", "Clerk@RMS.test", "--role", "records", "--password", "first-password", "--name", "Registry Clerk")
	require.NoError(t, err)
	assert.Contains(t, out, "created user")

	var user models.User
	require.NoError(t, db.Where("email = ?", "clerk@rms.test").First(&user).Error)
	assert.Equal(t, models.RoleRecordsOfficer, user.Role)
	assert.True(t, user.IsActive)
	assert.True(t, utils.CheckPassword(user.Password, "first-password"))

	out, err = runCommand(t, db, "seed-users", "--email", "clerk@rms.test", "--role", "secretary", "--password", "second-password")
	require.NoError(t, err)
	assert.Contains(t, out, "updated user")

	var updated models.User
	require.NoError(t, db.Where("email = ?", "clerk@rms.test").First(&updated).Error)
	assert.Equal(t, user.UserID, updated.UserID)
	assert.Equal(t, models.RoleBoardSecretary, updated.Role)
	assert.Equal(t, "Registry Clerk", updated.FullName)

	_, err = runCommand(t, db, "seed-users", "--email", "x@rms.test", "--role", "initiator", "--password", "long-enough")
	assert.ErrorContains(t, err, "invalid role")
	_, err = runCommand(t, db, "seed-users", "--email", "x@rms.test", "--role", "HR", "--password", "short")
	assert.Error(t, err)
	_, err = runCommand(t, db, "seed-users", "--email", "nope", "--role", "HR", "--password", "long-enough")
	assert.ErrorContains(t, err, "invalid email")
}

func TestHashPasswordsCommand(t *testing.T) {
	db := testutil.OpenTestDB(t)
	require.NoError(t, db.Create(&models.User{Email: "legacy@rms.test", Password: "plain-secret", Role: models.RoleHR, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.User{Email: "hashed@rms.test", Password: testutil.PasswordHash(t), Role: models.RoleHR, IsActive: true}).Error)

	out, err := runCommand(t, db, "hash-passwords")
	require.NoError(t, err)
	assert.Contains(t, out, "1 password(s) hashed")

	var legacy models.User
	require.NoError(t, db.Where("email = ?", "legacy@rms.test").First(&legacy).Error)
	assert.True(t, utils.CheckPassword(legacy.Password, "plain-secret"))
}

func TestStatsCommandAndFormatFlag(t *testing.T) {
	db := testutil.OpenTestDB(t)
	users := testutil.SeedUsers(t, db)
	svc := services.NewRMSService(db)
	_, err := svc.Documents.Create(context.Background(), services.Actor{UserID: users[models.RoleAdmin], Role: models.RoleAdmin}, services.CreateDocumentInput{Subject: "Counted", Priority: models.PriorityUrgent})
	require.NoError(t, err)

	out, err := runCommand(t, db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "total 1, open 1, closed 0")
	assert.Contains(t, out, "urgent")

	out, err = runCommand(t, db, "stats", "--format", "json")
	require.NoError(t, err)
	var stats services.RMSStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 1, stats.ByStatus["received"])

	_, err = runCommand(t, db, "stats", "--format", "yaml")
	assert.ErrorContains(t, err, "invalid format")

	out, err = runCommand(t, db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migration completed")
}
