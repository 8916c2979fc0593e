package services

import (
	"context"
	"fmt"

	"records-portal-api/models"

	"gorm.io/gorm"
)

// RMSAuditLog is the append-only workflow history. Appends happen only inside
// the transactions of the other RMS components.
type RMSAuditLog struct {
	core *rmsCore
}

func (a *RMSAuditLog) append(tx *gorm.DB, entry *models.RMSWorkflowLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = a.core.timestamp()
	}
	if err := tx.Omit("Actor").Create(entry).Error; err != nil {
		return fmt.Errorf("append workflow log: %w", err)
	}
	return nil
}

// ListFor returns a document's log entries in creation order.
func (a *RMSAuditLog) ListFor(ctx context.Context, documentID int) ([]models.RMSWorkflowLog, error) {
	db := a.core.db.WithContext(ctx)
	if err := ensureDocumentExists(db, documentID); err != nil {
		return nil, err
	}

	var entries []models.RMSWorkflowLog
	if err := db.Preload("Actor").
		Where("document_id = ?", documentID).
		Order("created_at ASC, log_id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list workflow log: %w", err)
	}
	return entries, nil
}

func ensureDocumentExists(db *gorm.DB, documentID int) error {
	var count int64
	if err := db.Model(&models.RMSDocument{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", ErrDocumentNotFound, documentID)
	}
	return nil
}
