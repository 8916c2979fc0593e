package services

import (
	"context"
	"fmt"
	"strings"

	"records-portal-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcomes accepted by Finalize.
const (
	OutcomeDispatch = "dispatch"
	OutcomeFile     = "file"
)

// RMSFinalizer closes documents that reached decision_made. Both outcomes are
// terminal; a second call on the same document fails with ErrAlreadyTerminal.
type RMSFinalizer struct {
	core      *rmsCore
	documents *RMSDocumentStore
	audit     *RMSAuditLog
}

type FinalizeResult struct {
	Document *models.RMSDocument    `json:"document"`
	Entry    *models.RMSWorkflowLog `json:"logEntry"`
}

// Dispatch returns the decision to the originator.
func (f *RMSFinalizer) Dispatch(ctx context.Context, documentID int, actor Actor, decisionSummary string) (*FinalizeResult, error) {
	return f.finalize(ctx, documentID, actor, decisionSummary, models.StatusDispatched)
}

// File archives the document in the registry.
func (f *RMSFinalizer) File(ctx context.Context, documentID int, actor Actor, decisionSummary string) (*FinalizeResult, error) {
	return f.finalize(ctx, documentID, actor, decisionSummary, models.StatusFiled)
}

// Finalize dispatches or files depending on outcome.
func (f *RMSFinalizer) Finalize(ctx context.Context, documentID int, actor Actor, decisionSummary, outcome string) (*FinalizeResult, error) {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case OutcomeDispatch:
		return f.Dispatch(ctx, documentID, actor, decisionSummary)
	case OutcomeFile:
		return f.File(ctx, documentID, actor, decisionSummary)
	default:
		return nil, validationError("outcome must be %q or %q", OutcomeDispatch, OutcomeFile)
	}
}

func (f *RMSFinalizer) finalize(ctx context.Context, documentID int, actor Actor, decisionSummary string, to models.DocumentStatus) (*FinalizeResult, error) {
	summary := strings.TrimSpace(decisionSummary)

	var result FinalizeResult
	err := f.core.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := f.documents.loadForUpdate(tx, documentID)
		if err != nil {
			return err
		}
		if IsTerminal(doc.Status) {
			return fmt.Errorf("%w: id %d is %s", ErrAlreadyTerminal, doc.DocumentID, doc.Status)
		}
		if doc.Status != models.StatusDecisionMade {
			return &TransitionError{From: doc.Status, To: to, Role: actor.Role, Reason: "only decided documents can be closed"}
		}
		rule, err := checkEdge(doc, to, actor.Role)
		if err != nil {
			return err
		}
		if summary == "" {
			return validationError("decision summary is required")
		}

		fromStatus := doc.Status
		fromHandler := doc.CurrentHandler
		now := f.core.timestamp()
		if err := f.documents.update(tx, doc, map[string]interface{}{
			"status":           rule.To,
			"current_handler":  rule.ResultingHandler,
			"decision_summary": summary,
			"dispatched_at":    now,
			"dispatched_by":    actor.UserID,
			"updated_at":       now,
		}); err != nil {
			return err
		}

		entry := &models.RMSWorkflowLog{
			DocumentID:  doc.DocumentID,
			FromStatus:  &fromStatus,
			ToStatus:    rule.To,
			FromHandler: &fromHandler,
			ToHandler:   rule.ResultingHandler,
			ActedBy:     actor.UserID,
			ActionType:  rule.ActionType,
			Notes:       &summary,
			CreatedAt:   now,
		}
		if err := f.audit.append(tx, entry); err != nil {
			return err
		}
		result.Document = doc
		result.Entry = entry
		return nil
	})
	if err != nil {
		fields := []zap.Field{
			zap.Int("document_id", documentID),
			zap.String("to_status", string(to)),
			zap.Int("user_id", actor.UserID),
			zap.Error(err),
		}
		if isDomainError(err) {
			f.core.logger.Info("Finalize rejected", fields...)
		} else {
			f.core.logger.Error("Finalize failed", fields...)
		}
		return nil, err
	}

	f.core.logger.Info("Document closed",
		zap.Int("document_id", documentID),
		zap.String("status", string(result.Document.Status)),
		zap.Int("user_id", actor.UserID))
	return &result, nil
}
