package controllers

import (
	"net/http"
	"strings"

	"records-portal-api/models"
	"records-portal-api/services"
	"records-portal-api/utils"

	"github.com/gin-gonic/gin"
)

type forwardRequest struct {
	ToStatus        string `json:"toStatus" form:"toStatus"`
	ToHandler       string `json:"toHandler" form:"toHandler"`
	Notes           string `json:"notes" form:"notes"`
	ReferenceNumber string `json:"referenceNumber" form:"referenceNumber"`
	FilePath        string `json:"filePath" form:"filePath"`
}

type sendToRecordsRequest struct {
	Notes             string `json:"notes" form:"notes"`
	ExternalReference string `json:"externalReference" form:"externalReference"`
	FilePath          string `json:"filePath" form:"filePath"`
}

type commentRequest struct {
	CommentType string `json:"commentType"`
	Comment     string `json:"comment"`
}

type dispatchRequest struct {
	DecisionSummary string `json:"decisionSummary"`
	Outcome         string `json:"outcome"`
}

// ForwardRMSDocument moves a document to the next status.
// POST /api/v1/documents/:id/forward
func ForwardRMSDocument(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	var req forwardRequest
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.ToStatus) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "toStatus is required", "code": "VALIDATION"})
		return
	}

	// Unrecognised names pass through unchanged so the engine reports them
	// as an invalid transition with the offending pair.
	toStatus := models.DocumentStatus(strings.TrimSpace(req.ToStatus))
	if normalized, valid := utils.NormalizeStatus(req.ToStatus); valid {
		toStatus = normalized
	}
	var toHandler models.HandlerRole
	if raw := strings.TrimSpace(req.ToHandler); raw != "" {
		toHandler = models.HandlerRole(raw)
		if normalized, valid := utils.NormalizeRole(raw); valid {
			toHandler = normalized
		}
	}

	ref, ok := saveAttachment(c)
	if !ok {
		return
	}
	attachmentRef := req.FilePath
	if ref != "" {
		attachmentRef = ref
	}

	result, err := getRMS().Workflow.Transition(c.Request.Context(), services.TransitionRequest{
		DocumentID:      id,
		ToStatus:        toStatus,
		ToHandler:       toHandler,
		Actor:           actor,
		Notes:           req.Notes,
		AttachmentRef:   attachmentRef,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		discardAttachment(c, ref)
		respondRMSError(c, err)
		return
	}

	notifyHandler(c, result.Document, result.Entry)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": result.Document,
		"logEntry": result.Entry,
	})
}

// SendRMSDocumentToRecords returns a received document to records intake,
// optionally noting an external reference.
// POST /api/v1/documents/:id/send-to-records
func SendRMSDocumentToRecords(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	var req sendToRecordsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "code": "VALIDATION"})
		return
	}

	ref, ok := saveAttachment(c)
	if !ok {
		return
	}
	attachmentRef := req.FilePath
	if ref != "" {
		attachmentRef = ref
	}

	result, err := getRMS().Workflow.SendToRecords(c.Request.Context(), services.SendToRecordsRequest{
		DocumentID:        id,
		Actor:             actor,
		Notes:             req.Notes,
		AttachmentRef:     attachmentRef,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		discardAttachment(c, ref)
		respondRMSError(c, err)
		return
	}

	notifyHandler(c, result.Document, result.Entry)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": result.Document,
		"logEntry": result.Entry,
		"comment":  result.Comment,
	})
}

// AddRMSComment appends a remark without changing status or handler.
// POST /api/v1/documents/:id/comments
func AddRMSComment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "code": "VALIDATION"})
		return
	}
	kind := models.CommentKind(strings.ToLower(strings.TrimSpace(req.CommentType)))
	if kind == "" {
		kind = models.CommentRemark
	}

	comment, err := getRMS().Comments.Add(c.Request.Context(), id, actor, kind, req.Comment)
	if err != nil {
		respondRMSError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"comment": comment,
	})
}

// DispatchRMSDocument closes a decided document by dispatching or filing it.
// POST /api/v1/documents/:id/dispatch
func DispatchRMSDocument(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "code": "VALIDATION"})
		return
	}

	result, err := getRMS().Finalizer.Finalize(c.Request.Context(), id, actor, req.DecisionSummary, req.Outcome)
	if err != nil {
		respondRMSError(c, err)
		return
	}

	notifyHandler(c, result.Document, result.Entry)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": result.Document,
		"logEntry": result.Entry,
	})
}

// GetRMSStats returns dashboard counts.
// GET /api/v1/stats
func GetRMSStats(c *gin.Context) {
	stats, err := getRMS().Documents.Stats(c.Request.Context())
	if err != nil {
		respondRMSError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
