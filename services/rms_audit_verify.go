package services

import (
	"context"
	"fmt"

	"records-portal-api/models"
)

// LogViolation is one inconsistency between a document and its workflow log.
type LogViolation struct {
	DocumentID int    `json:"document_id"`
	LogID      int    `json:"log_id,omitempty"`
	Message    string `json:"message"`
}

// VerifyWorkflowLog replays entries (in creation order) against the
// transition table and checks that the last state change matches doc.
func VerifyWorkflowLog(doc *models.RMSDocument, entries []models.RMSWorkflowLog) []LogViolation {
	var violations []LogViolation
	report := func(logID int, format string, args ...any) {
		violations = append(violations, LogViolation{
			DocumentID: doc.DocumentID,
			LogID:      logID,
			Message:    fmt.Sprintf(format, args...),
		})
	}

	if len(entries) == 0 {
		report(0, "document has no workflow log")
		return violations
	}

	first := entries[0]
	if !first.IsCreation() {
		report(first.LogID, "first entry is not a creation entry")
	} else if first.ToStatus != models.StatusReceived {
		report(first.LogID, "creation entry ends in %s, want %s", first.ToStatus, models.StatusReceived)
	}

	status := first.ToStatus
	handler := first.ToHandler
	for _, entry := range entries[1:] {
		if entry.IsCreation() {
			report(entry.LogID, "second creation entry")
			status, handler = entry.ToStatus, entry.ToHandler
			continue
		}
		if *entry.FromStatus != status {
			report(entry.LogID, "entry starts at %s but document was %s", *entry.FromStatus, status)
		}
		if entry.FromHandler != nil && *entry.FromHandler != handler {
			report(entry.LogID, "entry starts with handler %s but document was held by %s", *entry.FromHandler, handler)
		}

		if entry.IsStateChange() {
			rule, ok := LookupTransition(*entry.FromStatus, entry.ToStatus)
			switch {
			case !ok:
				report(entry.LogID, "%s -> %s is not a workflow edge", *entry.FromStatus, entry.ToStatus)
			case rule.ResultingHandler != entry.ToHandler:
				report(entry.LogID, "%s is handled by %s, entry says %s", entry.ToStatus, rule.ResultingHandler, entry.ToHandler)
			}
		} else if entry.ToHandler != handler {
			report(entry.LogID, "annotation entry changes handler to %s", entry.ToHandler)
		}

		// annotations may follow a terminal status; moves may not
		if entry.IsStateChange() && IsTerminal(status) {
			report(entry.LogID, "entry written after terminal status %s", status)
		}
		status, handler = entry.ToStatus, entry.ToHandler
	}

	if status != doc.Status {
		report(0, "log ends in %s but document is %s", status, doc.Status)
	}
	if handler != doc.CurrentHandler {
		report(0, "log ends with handler %s but document is held by %s", handler, doc.CurrentHandler)
	}
	return violations
}

// Verify checks one document's log.
func (a *RMSAuditLog) Verify(ctx context.Context, documentID int) ([]LogViolation, error) {
	var doc models.RMSDocument
	if err := a.core.db.WithContext(ctx).Where("document_id = ?", documentID).Limit(1).Find(&doc).Error; err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc.DocumentID == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, documentID)
	}
	entries, err := a.ListFor(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return VerifyWorkflowLog(&doc, entries), nil
}

// VerifyAll checks every document and returns all violations found.
func (a *RMSAuditLog) VerifyAll(ctx context.Context) (int, []LogViolation, error) {
	var ids []int
	if err := a.core.db.WithContext(ctx).Model(&models.RMSDocument{}).
		Order("document_id ASC").
		Pluck("document_id", &ids).Error; err != nil {
		return 0, nil, fmt.Errorf("list documents: %w", err)
	}

	var violations []LogViolation
	for _, id := range ids {
		found, err := a.Verify(ctx, id)
		if err != nil {
			return 0, nil, err
		}
		violations = append(violations, found...)
	}
	return len(ids), violations, nil
}
