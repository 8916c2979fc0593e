package models

import "time"

// DocumentStatus is the lifecycle stage of an RMS document.
type DocumentStatus string

const (
	StatusReceived             DocumentStatus = "received"
	StatusSentToRecords        DocumentStatus = "sent_to_records"
	StatusForwardedToSecretary DocumentStatus = "forwarded_to_secretary"
	StatusCommentedBySecretary DocumentStatus = "commented_by_secretary"
	StatusSentToChair          DocumentStatus = "sent_to_chair"
	StatusCommentedByChair     DocumentStatus = "commented_by_chair"
	StatusSentToHR             DocumentStatus = "sent_to_hr"
	StatusSentToCommittee      DocumentStatus = "sent_to_committee"
	StatusAgendaSet            DocumentStatus = "agenda_set"
	StatusBoardMeeting         DocumentStatus = "board_meeting"
	StatusDecisionMade         DocumentStatus = "decision_made"
	StatusDispatched           DocumentStatus = "dispatched"
	StatusFiled                DocumentStatus = "filed"
)

// HandlerRole is the organisational role responsible for a document. Besides the
// user roles it includes the two terminal holders, initiator and registry.
type HandlerRole string

const (
	HandlerRecordsOfficer HandlerRole = RoleRecordsOfficer
	HandlerBoardSecretary HandlerRole = RoleBoardSecretary
	HandlerChiefOfficer   HandlerRole = RoleChiefOfficer
	HandlerBoardChair     HandlerRole = RoleBoardChair
	HandlerBoardCommittee HandlerRole = RoleBoardCommittee
	HandlerHR             HandlerRole = RoleHR
	HandlerInitiator      HandlerRole = "initiator"
	HandlerRegistry       HandlerRole = "registry"
)

type DocumentPriority string

const (
	PriorityNormal DocumentPriority = "normal"
	PriorityHigh   DocumentPriority = "high"
	PriorityUrgent DocumentPriority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p DocumentPriority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RMSDocument is the aggregate root of the records workflow. Status and
// CurrentHandler only change through the workflow engine or the finalizer.
type RMSDocument struct {
	DocumentID      int              `gorm:"primaryKey;column:document_id" json:"document_id"`
	Subject         string           `gorm:"column:subject;size:255;not null" json:"subject"`
	Description     string           `gorm:"column:description;type:text" json:"description"`
	Priority        DocumentPriority `gorm:"column:priority;size:16;not null;index" json:"priority"`
	FilePath        *string          `gorm:"column:file_path;size:512" json:"file_path"`
	ReferenceNumber *string          `gorm:"column:reference_number;size:128" json:"reference_number"`
	DecisionSummary *string          `gorm:"column:decision_summary;type:text" json:"decision_summary"`
	Status          DocumentStatus   `gorm:"column:status;size:32;not null;index" json:"status"`
	CurrentHandler  HandlerRole      `gorm:"column:current_handler;size:32;not null;index" json:"current_handler"`
	CreatedBy       int              `gorm:"column:created_by;not null;index" json:"created_by"`
	DispatchedAt    *time.Time       `gorm:"column:dispatched_at;precision:6" json:"dispatched_at"`
	DispatchedBy    *int             `gorm:"column:dispatched_by" json:"dispatched_by"`
	CreatedAt       time.Time        `gorm:"column:created_at;precision:6" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;precision:6" json:"updated_at"`

	Creator *User `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
}

func (RMSDocument) TableName() string {
	return "rms_documents"
}
