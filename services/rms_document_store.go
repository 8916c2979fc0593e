package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"records-portal-api/models"
	"records-portal-api/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RMSDocumentStore persists document records. Status and handler are written
// only through update, which the engine and the finalizer call inside their
// transactions.
type RMSDocumentStore struct {
	core  *rmsCore
	audit *RMSAuditLog
}

type CreateDocumentInput struct {
	Subject         string
	Description     string
	Priority        models.DocumentPriority
	FilePath        string
	ReferenceNumber string
	Notes           string
}

// DocumentFilter narrows List. Zero values match everything.
type DocumentFilter struct {
	Status   models.DocumentStatus
	Priority models.DocumentPriority
	Handler  models.HandlerRole
}

// DocumentMetadataPatch holds the fields PATCH may change. Nil means unchanged.
type DocumentMetadataPatch struct {
	Subject         *string
	Description     *string
	Priority        *models.DocumentPriority
	ReferenceNumber *string
}

// RMSStats is the dashboard aggregate.
type RMSStats struct {
	Total      int64            `json:"total"`
	Open       int64            `json:"open"`
	Closed     int64            `json:"closed"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
	ByHandler  map[string]int64 `json:"byHandler"`
}

func canRegister(role models.HandlerRole) bool {
	return role == models.HandlerRecordsOfficer || role == models.RoleAdmin
}

// Create registers a new document in status received and writes its creation
// log entry in the same transaction.
func (s *RMSDocumentStore) Create(ctx context.Context, actor Actor, input CreateDocumentInput) (*models.RMSDocument, error) {
	if !canRegister(actor.Role) {
		return nil, fmt.Errorf("%w: %s cannot register documents", ErrForbidden, actor.Role)
	}

	subject := utils.SanitizeInput(input.Subject)
	if subject == "" {
		return nil, validationError("subject is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return nil, validationError("unknown priority %q", priority)
	}

	now := s.core.timestamp()
	doc := models.RMSDocument{
		Subject:         subject,
		Description:     strings.TrimSpace(input.Description),
		Priority:        priority,
		FilePath:        stringPtr(strings.TrimSpace(input.FilePath)),
		ReferenceNumber: stringPtr(utils.SanitizeInput(input.ReferenceNumber)),
		Status:          models.StatusReceived,
		CurrentHandler:  models.HandlerRecordsOfficer,
		CreatedBy:       actor.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.core.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Creator").Create(&doc).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.audit.append(tx, &models.RMSWorkflowLog{
			DocumentID: doc.DocumentID,
			ToStatus:   models.StatusReceived,
			ToHandler:  models.HandlerRecordsOfficer,
			ActedBy:    actor.UserID,
			ActionType: models.ActionDocumentReceived,
			Notes:      stringPtr(strings.TrimSpace(input.Notes)),
			CreatedAt:  now,
		})
	})
	if err != nil {
		s.core.logger.Error("Failed to register document", zap.Int("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	s.core.logger.Info("Document received",
		zap.Int("document_id", doc.DocumentID),
		zap.String("priority", string(doc.Priority)),
		zap.Int("user_id", actor.UserID))
	return &doc, nil
}

// Get loads a document by id.
func (s *RMSDocumentStore) Get(ctx context.Context, documentID int) (*models.RMSDocument, error) {
	var doc models.RMSDocument
	if err := s.core.db.WithContext(ctx).Preload("Creator").
		Where("document_id = ?", documentID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &doc, nil
}

// List returns documents matching filter, most recently updated first.
func (s *RMSDocumentStore) List(ctx context.Context, filter DocumentFilter) ([]models.RMSDocument, error) {
	query := s.core.db.WithContext(ctx).Model(&models.RMSDocument{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Handler != "" {
		query = query.Where("current_handler = ?", filter.Handler)
	}

	documents := make([]models.RMSDocument, 0)
	if err := query.Order("updated_at DESC, document_id DESC").Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// UpdateMetadata changes descriptive fields only; it never touches status,
// handler, file reference or decision summary.
func (s *RMSDocumentStore) UpdateMetadata(ctx context.Context, actor Actor, documentID int, patch DocumentMetadataPatch) (*models.RMSDocument, error) {
	if !canRegister(actor.Role) {
		return nil, fmt.Errorf("%w: %s cannot edit document metadata", ErrForbidden, actor.Role)
	}

	fields := map[string]interface{}{}
	if patch.Subject != nil {
		subject := utils.SanitizeInput(*patch.Subject)
		if subject == "" {
			return nil, validationError("subject cannot be empty")
		}
		fields["subject"] = subject
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, validationError("unknown priority %q", *patch.Priority)
		}
		fields["priority"] = *patch.Priority
	}
	if patch.ReferenceNumber != nil {
		fields["reference_number"] = stringPtr(utils.SanitizeInput(*patch.ReferenceNumber))
	}
	if len(fields) == 0 {
		return nil, validationError("no updatable fields supplied")
	}
	fields["updated_at"] = s.core.timestamp()

	result := s.core.db.WithContext(ctx).Model(&models.RMSDocument{}).
		Where("document_id = ?", documentID).
		Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("update document metadata: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, documentID)
	}
	return s.Get(ctx, documentID)
}

// Stats counts documents per status, priority and handler.
func (s *RMSDocumentStore) Stats(ctx context.Context) (*RMSStats, error) {
	db := s.core.db.WithContext(ctx)
	stats := &RMSStats{}

	var err error
	if stats.ByStatus, err = countBy(db, "status"); err != nil {
		return nil, err
	}
	if stats.ByPriority, err = countBy(db, "priority"); err != nil {
		return nil, err
	}
	if stats.ByHandler, err = countBy(db, "current_handler"); err != nil {
		return nil, err
	}

	for status, count := range stats.ByStatus {
		stats.Total += count
		if IsTerminal(models.DocumentStatus(status)) {
			stats.Closed += count
		}
	}
	stats.Open = stats.Total - stats.Closed
	return stats, nil
}

func countBy(db *gorm.DB, column string) (map[string]int64, error) {
	var rows []struct {
		Bucket string
		Total  int64
	}
	if err := db.Model(&models.RMSDocument{}).
		Select(column + " AS bucket, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count documents by %s: %w", column, err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Bucket] = row.Total
	}
	return out, nil
}

// loadForUpdate reads a document inside tx holding its row lock.
func (s *RMSDocumentStore) loadForUpdate(tx *gorm.DB, documentID int) (*models.RMSDocument, error) {
	var doc models.RMSDocument
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_id = ?", documentID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &doc, nil
}

// update writes fields to doc guarded by the status doc was loaded with, then
// reloads doc. Callers are the workflow engine and the finalizer.
func (s *RMSDocumentStore) update(tx *gorm.DB, doc *models.RMSDocument, fields map[string]interface{}) error {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = s.core.timestamp()
	}
	result := tx.Model(&models.RMSDocument{}).
		Where("document_id = ? AND status = ?", doc.DocumentID, doc.Status).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update document: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return fmt.Errorf("%w: id %d", ErrStaleDocument, doc.DocumentID)
	}
	if err := tx.Where("document_id = ?", doc.DocumentID).First(doc).Error; err != nil {
		return fmt.Errorf("reload document: %w", err)
	}
	return nil
}
