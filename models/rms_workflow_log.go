package models

import "time"

// Workflow log action types.
const (
	ActionDocumentReceived   = "Document Received"
	ActionDocumentForwarded  = "Document Forwarded"
	ActionSentToRecords      = "Sent to Records"
	ActionCommentAdded       = "Comment Added"
	ActionDocumentDispatched = "Document Dispatched"
	ActionDocumentFiled      = "Document Filed"
)

// RMSWorkflowLog is one append-only audit entry. FromStatus is nil only on the
// creation entry; annotation entries carry FromStatus == ToStatus.
type RMSWorkflowLog struct {
	LogID       int             `gorm:"primaryKey;column:log_id" json:"log_id"`
	DocumentID  int             `gorm:"column:document_id;not null;index" json:"document_id"`
	FromStatus  *DocumentStatus `gorm:"column:from_status;size:32" json:"from_status"`
	ToStatus    DocumentStatus  `gorm:"column:to_status;size:32;not null" json:"to_status"`
	FromHandler *HandlerRole    `gorm:"column:from_handler;size:32" json:"from_handler"`
	ToHandler   HandlerRole     `gorm:"column:to_handler;size:32;not null" json:"to_handler"`
	ActedBy     int             `gorm:"column:acted_by;not null" json:"acted_by"`
	ActionType  string          `gorm:"column:action_type;size:64;not null" json:"action_type"`
	Notes       *string         `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt   time.Time       `gorm:"column:created_at;precision:6;index" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActedBy;references:UserID" json:"actor,omitempty"`
}

func (RMSWorkflowLog) TableName() string {
	return "rms_workflow_logs"
}

// IsCreation reports whether the entry records the document's creation.
func (l RMSWorkflowLog) IsCreation() bool {
	return l.FromStatus == nil
}

// IsStateChange reports whether the entry moved the document to a new status.
// The creation entry counts as a state change.
func (l RMSWorkflowLog) IsStateChange() bool {
	return l.FromStatus == nil || *l.FromStatus != l.ToStatus
}
