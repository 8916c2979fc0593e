package services

import (
	"context"
	"fmt"
	"strings"

	"records-portal-api/models"
	"records-portal-api/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RMSWorkflowEngine validates requested transitions against the transition
// table and applies them together with their log entry in one transaction.
type RMSWorkflowEngine struct {
	core      *rmsCore
	documents *RMSDocumentStore
	comments  *RMSCommentLedger
	audit     *RMSAuditLog
}

type TransitionRequest struct {
	DocumentID int
	ToStatus   models.DocumentStatus
	// ToHandler is optional; when set it must match the table.
	ToHandler       models.HandlerRole
	Actor           Actor
	Notes           string
	AttachmentRef   string
	ReferenceNumber string
}

type SendToRecordsRequest struct {
	DocumentID        int
	Actor             Actor
	Notes             string
	AttachmentRef     string
	ExternalReference string
}

type TransitionResult struct {
	Document *models.RMSDocument    `json:"document"`
	Entry    *models.RMSWorkflowLog `json:"logEntry"`
	Comment  *models.RMSComment     `json:"comment,omitempty"`
}

// Transition moves a document along one non-terminal edge.
func (e *RMSWorkflowEngine) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	var result TransitionResult
	err := e.core.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := e.documents.loadForUpdate(tx, req.DocumentID)
		if err != nil {
			return err
		}
		entry, err := e.transitionTx(tx, doc, req)
		if err != nil {
			return err
		}
		result.Document = doc
		result.Entry = entry
		return nil
	})
	if err != nil {
		e.logFailure("Transition rejected", req.DocumentID, req.ToStatus, req.Actor, err)
		return nil, err
	}

	e.core.logger.Info("Document transitioned",
		zap.Int("document_id", req.DocumentID),
		zap.String("from_status", string(*result.Entry.FromStatus)),
		zap.String("to_status", string(result.Entry.ToStatus)),
		zap.String("handler", string(result.Document.CurrentHandler)),
		zap.Int("user_id", req.Actor.UserID))
	return &result, nil
}

// SendToRecords returns a received document to records intake. An external
// reference, when given, is stored as an external_ref comment in the same
// transaction as the transition.
func (e *RMSWorkflowEngine) SendToRecords(ctx context.Context, req SendToRecordsRequest) (*TransitionResult, error) {
	externalRef := strings.TrimSpace(req.ExternalReference)
	if externalRef != "" {
		var err error
		if externalRef, err = validateComment(req.Actor, models.CommentExternalRef, externalRef); err != nil {
			return nil, err
		}
	}

	var result TransitionResult
	err := e.core.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := e.documents.loadForUpdate(tx, req.DocumentID)
		if err != nil {
			return err
		}
		entry, err := e.transitionTx(tx, doc, TransitionRequest{
			DocumentID:    req.DocumentID,
			ToStatus:      models.StatusSentToRecords,
			Actor:         req.Actor,
			Notes:         req.Notes,
			AttachmentRef: req.AttachmentRef,
		})
		if err != nil {
			return err
		}
		result.Document = doc
		result.Entry = entry

		if externalRef != "" {
			comment, err := e.comments.addTx(tx, doc, req.Actor, models.CommentExternalRef, externalRef)
			if err != nil {
				return err
			}
			result.Comment = comment
		}
		return nil
	})
	if err != nil {
		e.logFailure("Send to records rejected", req.DocumentID, models.StatusSentToRecords, req.Actor, err)
		return nil, err
	}

	e.core.logger.Info("Document sent to records",
		zap.Int("document_id", req.DocumentID),
		zap.Bool("external_reference", result.Comment != nil),
		zap.Int("user_id", req.Actor.UserID))
	return &result, nil
}

// AllowedTransitions lists the edges role may take from the document's
// current status. Terminal edges are excluded; they belong to the finalizer.
func (e *RMSWorkflowEngine) AllowedTransitions(ctx context.Context, documentID int, role models.HandlerRole) ([]TransitionRule, error) {
	doc, err := e.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	rules := TransitionsFrom(doc.Status, role)
	out := make([]TransitionRule, 0, len(rules))
	for _, rule := range rules {
		if IsTerminal(rule.To) {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

func (e *RMSWorkflowEngine) transitionTx(tx *gorm.DB, doc *models.RMSDocument, req TransitionRequest) (*models.RMSWorkflowLog, error) {
	if !IsKnownStatus(req.ToStatus) {
		return nil, &TransitionError{From: doc.Status, To: req.ToStatus, Role: req.Actor.Role, Reason: "unknown status"}
	}
	if IsTerminal(doc.Status) {
		return nil, fmt.Errorf("%w: id %d is %s", ErrAlreadyTerminal, doc.DocumentID, doc.Status)
	}
	if IsTerminal(req.ToStatus) {
		return nil, &TransitionError{From: doc.Status, To: req.ToStatus, Role: req.Actor.Role, Reason: "dispatch and filing are separate operations"}
	}

	rule, err := checkEdge(doc, req.ToStatus, req.Actor.Role)
	if err != nil {
		return nil, err
	}
	if req.ToHandler != "" && req.ToHandler != rule.ResultingHandler {
		return nil, &TransitionError{
			From:   doc.Status,
			To:     req.ToStatus,
			Role:   req.Actor.Role,
			Reason: fmt.Sprintf("%s is handled by %s, not %s", req.ToStatus, rule.ResultingHandler, req.ToHandler),
		}
	}

	fromStatus := doc.Status
	fromHandler := doc.CurrentHandler
	now := e.core.timestamp()
	fields := map[string]interface{}{
		"status":          rule.To,
		"current_handler": rule.ResultingHandler,
		"updated_at":      now,
	}
	if ref := strings.TrimSpace(req.AttachmentRef); ref != "" {
		fields["file_path"] = ref
	}
	if number := utils.SanitizeInput(req.ReferenceNumber); number != "" {
		fields["reference_number"] = number
	}
	if err := e.documents.update(tx, doc, fields); err != nil {
		return nil, err
	}

	entry := &models.RMSWorkflowLog{
		DocumentID:  doc.DocumentID,
		FromStatus:  &fromStatus,
		ToStatus:    rule.To,
		FromHandler: &fromHandler,
		ToHandler:   rule.ResultingHandler,
		ActedBy:     req.Actor.UserID,
		ActionType:  rule.ActionType,
		Notes:       stringPtr(strings.TrimSpace(req.Notes)),
		CreatedAt:   now,
	}
	if err := e.audit.append(tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// checkEdge looks up the (current, to) pair and checks the acting role.
func checkEdge(doc *models.RMSDocument, to models.DocumentStatus, role models.HandlerRole) (TransitionRule, error) {
	rule, ok := LookupTransition(doc.Status, to)
	if !ok {
		return TransitionRule{}, &TransitionError{From: doc.Status, To: to, Role: role, Reason: "no such edge in the workflow"}
	}
	if rule.RequiredRole != role {
		return TransitionRule{}, &TransitionError{
			From:   doc.Status,
			To:     to,
			Role:   role,
			Reason: fmt.Sprintf("requires role %s", rule.RequiredRole),
		}
	}
	return rule, nil
}

func (e *RMSWorkflowEngine) logFailure(msg string, documentID int, to models.DocumentStatus, actor Actor, err error) {
	fields := []zap.Field{
		zap.Int("document_id", documentID),
		zap.String("to_status", string(to)),
		zap.String("role", string(actor.Role)),
		zap.Int("user_id", actor.UserID),
		zap.Error(err),
	}
	if isDomainError(err) {
		e.core.logger.Info(msg, fields...)
		return
	}
	e.core.logger.Error("Transition failed", fields...)
}
