package models

import "time"

type CommentKind string

const (
	CommentRemark      CommentKind = "remark"
	CommentDecision    CommentKind = "decision"
	CommentExternalRef CommentKind = "external_ref"
)

// Valid reports whether k is one of the known comment kinds.
func (k CommentKind) Valid() bool {
	switch k {
	case CommentRemark, CommentDecision, CommentExternalRef:
		return true
	}
	return false
}

// RMSComment is an immutable remark on a document. AuthorRole is the role the
// author held when writing it.
type RMSComment struct {
	CommentID   int         `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	DocumentID  int         `gorm:"column:document_id;not null;index" json:"document_id"`
	UserID      int         `gorm:"column:user_id;not null" json:"user_id"`
	AuthorRole  HandlerRole `gorm:"column:author_role;size:32;not null" json:"author_role"`
	CommentType CommentKind `gorm:"column:comment_type;size:32;not null" json:"comment_type"`
	Comment     string      `gorm:"column:comment;type:text;not null" json:"comment"`
	CreatedAt   time.Time   `gorm:"column:created_at;precision:6;index" json:"created_at"`

	Author *User `gorm:"foreignKey:UserID;references:UserID" json:"author,omitempty"`
}

func (RMSComment) TableName() string {
	return "rms_comments"
}
