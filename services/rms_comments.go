package services

import (
	"context"
	"fmt"
	"strings"

	"records-portal-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RMSCommentLedger stores immutable remarks. Every comment also appends a
// "Comment Added" log entry whose from and to status are the current status.
type RMSCommentLedger struct {
	core      *rmsCore
	documents *RMSDocumentStore
	audit     *RMSAuditLog
}

// Add writes a comment on behalf of actor.
func (l *RMSCommentLedger) Add(ctx context.Context, documentID int, actor Actor, kind models.CommentKind, body string) (*models.RMSComment, error) {
	body, err := validateComment(actor, kind, body)
	if err != nil {
		return nil, err
	}

	var comment *models.RMSComment
	err = l.core.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := l.documents.loadForUpdate(tx, documentID)
		if err != nil {
			return err
		}
		comment, err = l.addTx(tx, doc, actor, kind, body)
		return err
	})
	if err != nil {
		if !isDomainError(err) {
			l.core.logger.Error("Failed to add comment",
				zap.Int("document_id", documentID),
				zap.Int("user_id", actor.UserID),
				zap.Error(err))
		}
		return nil, err
	}

	l.core.logger.Info("Comment added",
		zap.Int("document_id", documentID),
		zap.Int("comment_id", comment.CommentID),
		zap.String("kind", string(kind)),
		zap.String("role", string(actor.Role)))
	return comment, nil
}

// addTx writes the comment and its annotation log entry inside tx. The body
// must already have passed validateComment.
func (l *RMSCommentLedger) addTx(tx *gorm.DB, doc *models.RMSDocument, actor Actor, kind models.CommentKind, body string) (*models.RMSComment, error) {
	now := l.core.timestamp()
	comment := models.RMSComment{
		DocumentID:  doc.DocumentID,
		UserID:      actor.UserID,
		AuthorRole:  actor.Role,
		CommentType: kind,
		Comment:     body,
		CreatedAt:   now,
	}
	if err := tx.Omit("Author").Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	status := doc.Status
	handler := doc.CurrentHandler
	note := fmt.Sprintf("comment_id=%d kind=%s", comment.CommentID, kind)
	if err := l.audit.append(tx, &models.RMSWorkflowLog{
		DocumentID:  doc.DocumentID,
		FromStatus:  &status,
		ToStatus:    status,
		FromHandler: &handler,
		ToHandler:   handler,
		ActedBy:     actor.UserID,
		ActionType:  models.ActionCommentAdded,
		Notes:       &note,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListFor returns a document's comments in creation order.
func (l *RMSCommentLedger) ListFor(ctx context.Context, documentID int) ([]models.RMSComment, error) {
	db := l.core.db.WithContext(ctx)
	if err := ensureDocumentExists(db, documentID); err != nil {
		return nil, err
	}

	var comments []models.RMSComment
	if err := db.Preload("Author").
		Where("document_id = ?", documentID).
		Order("created_at ASC, comment_id ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func validateComment(actor Actor, kind models.CommentKind, body string) (string, error) {
	if !models.IsUserRole(string(actor.Role)) {
		return "", fmt.Errorf("%w: %q cannot comment", ErrForbidden, actor.Role)
	}
	if !kind.Valid() {
		return "", validationError("unknown comment type %q", kind)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", validationError("comment is required")
	}
	return body, nil
}
