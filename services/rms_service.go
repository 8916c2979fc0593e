package services

import (
	"context"
	"errors"
	"time"

	"records-portal-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Actor is the acting user together with the role read for the current request.
type Actor struct {
	UserID int
	Role   models.HandlerRole
}

type rmsCore struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

func (c *rmsCore) timestamp() time.Time {
	return c.now().UTC()
}

// RMSService bundles the records-management components over one database.
type RMSService struct {
	core      *rmsCore
	Documents *RMSDocumentStore
	Comments  *RMSCommentLedger
	Audit     *RMSAuditLog
	Workflow  *RMSWorkflowEngine
	Finalizer *RMSFinalizer
}

func NewRMSService(db *gorm.DB) *RMSService {
	core := &rmsCore{
		db:     db,
		now:    time.Now,
		logger: zap.L().With(zap.String("service", "rms")),
	}
	audit := &RMSAuditLog{core: core}
	documents := &RMSDocumentStore{core: core, audit: audit}
	comments := &RMSCommentLedger{core: core, documents: documents, audit: audit}
	return &RMSService{
		core:      core,
		Documents: documents,
		Comments:  comments,
		Audit:     audit,
		Workflow:  &RMSWorkflowEngine{core: core, documents: documents, comments: comments, audit: audit},
		Finalizer: &RMSFinalizer{core: core, documents: documents, audit: audit},
	}
}

// SetClock replaces the time source used for every timestamp the service writes.
func (s *RMSService) SetClock(now func() time.Time) {
	s.core.now = now
}

// TimelineItem is either a comment or a workflow log entry.
type TimelineItem struct {
	Kind      string                 `json:"kind"`
	CreatedAt time.Time              `json:"created_at"`
	Comment   *models.RMSComment     `json:"comment,omitempty"`
	Log       *models.RMSWorkflowLog `json:"log,omitempty"`
}

// DocumentDetail is a document with its full history.
type DocumentDetail struct {
	Document    *models.RMSDocument     `json:"document"`
	Comments    []models.RMSComment     `json:"comments"`
	WorkflowLog []models.RMSWorkflowLog `json:"workflowLog"`
	Timeline    []TimelineItem          `json:"timeline"`
}

// Detail loads a document, its comments and its workflow log.
func (s *RMSService) Detail(ctx context.Context, documentID int) (*DocumentDetail, error) {
	doc, err := s.Documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments.ListFor(ctx, documentID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Audit.ListFor(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &DocumentDetail{
		Document:    doc,
		Comments:    comments,
		WorkflowLog: entries,
		Timeline:    MergeTimeline(comments, entries),
	}, nil
}

// MergeTimeline interleaves comments and log entries by creation time. Both
// inputs must already be in creation order. On equal timestamps a comment is
// followed directly by its "Comment Added" entry; other log entries come
// before the comment.
func MergeTimeline(comments []models.RMSComment, entries []models.RMSWorkflowLog) []TimelineItem {
	out := make([]TimelineItem, 0, len(comments)+len(entries))
	appendLog := func() {
		entry := entries[0]
		out = append(out, TimelineItem{Kind: "log", CreatedAt: entry.CreatedAt, Log: &entry})
		entries = entries[1:]
	}
	for len(entries) > 0 || len(comments) > 0 {
		if len(comments) == 0 {
			appendLog()
			continue
		}
		comment := comments[0]
		if len(entries) > 0 {
			next := entries[0]
			if next.CreatedAt.Before(comment.CreatedAt) ||
				(next.CreatedAt.Equal(comment.CreatedAt) && next.ActionType != models.ActionCommentAdded) {
				appendLog()
				continue
			}
		}
		out = append(out, TimelineItem{Kind: "comment", CreatedAt: comment.CreatedAt, Comment: &comment})
		comments = comments[1:]
		if len(entries) > 0 && entries[0].ActionType == models.ActionCommentAdded &&
			entries[0].CreatedAt.Equal(comment.CreatedAt) {
			appendLog()
		}
	}
	return out
}

// isDomainError separates caller mistakes from storage failures for logging.
func isDomainError(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAlreadyTerminal) ||
		errors.Is(err, ErrStaleDocument) ||
		errors.Is(err, ErrValidation)
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
