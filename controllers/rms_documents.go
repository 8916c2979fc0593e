package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"records-portal-api/models"
	"records-portal-api/services"
	"records-portal-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createDocumentRequest struct {
	Subject         string `json:"subject" form:"subject"`
	Description     string `json:"description" form:"description"`
	Priority        string `json:"priority" form:"priority"`
	FilePath        string `json:"filePath" form:"filePath"`
	ReferenceNumber string `json:"referenceNumber" form:"referenceNumber"`
	Notes           string `json:"notes" form:"notes"`
}

type patchDocumentRequest struct {
	Subject         *string `json:"subject"`
	Description     *string `json:"description"`
	Priority        *string `json:"priority"`
	ReferenceNumber *string `json:"referenceNumber"`
}

// CreateRMSDocument registers an incoming document.
// POST /api/v1/documents (JSON or multipart with optional "file")
func CreateRMSDocument(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "code": "VALIDATION"})
		return
	}

	priority := models.PriorityNormal
	if strings.TrimSpace(req.Priority) != "" {
		normalized, valid := utils.NormalizePriority(req.Priority)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Priority must be normal, high or urgent", "code": "VALIDATION"})
			return
		}
		priority = normalized
	}

	ref, ok := saveAttachment(c)
	if !ok {
		return
	}
	filePath := req.FilePath
	if ref != "" {
		filePath = ref
	}

	doc, err := getRMS().Documents.Create(c.Request.Context(), actor, services.CreateDocumentInput{
		Subject:         req.Subject,
		Description:     req.Description,
		Priority:        priority,
		FilePath:        filePath,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		discardAttachment(c, ref)
		respondRMSError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"document": doc,
	})
}

// ListRMSDocuments supports status, priority, handler and mine=true filters.
// GET /api/v1/documents
func ListRMSDocuments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var filter services.DocumentFilter
	if raw := c.Query("status"); raw != "" {
		status, valid := utils.NormalizeStatus(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown status filter", "code": "VALIDATION"})
			return
		}
		filter.Status = status
	}
	if raw := c.Query("priority"); raw != "" {
		priority, valid := utils.NormalizePriority(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown priority filter", "code": "VALIDATION"})
			return
		}
		filter.Priority = priority
	}
	if raw := c.Query("handler"); raw != "" {
		handler, valid := utils.NormalizeRole(raw)
		if !valid {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown handler filter", "code": "VALIDATION"})
			return
		}
		filter.Handler = handler
	}
	if strings.EqualFold(c.Query("mine"), "true") {
		filter.Handler = actor.Role
	}

	documents, err := getRMS().Documents.List(c.Request.Context(), filter)
	if err != nil {
		respondRMSError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": documents,
		"total":     len(documents),
	})
}

// GetRMSDocument returns the document with its comments, workflow log and
// merged timeline.
// GET /api/v1/documents/:id
func GetRMSDocument(c *gin.Context) {
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	detail, err := getRMS().Detail(c.Request.Context(), id)
	if err != nil {
		respondRMSError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"document":    detail.Document,
		"comments":    detail.Comments,
		"workflowLog": detail.WorkflowLog,
		"timeline":    detail.Timeline,
	})
}

// PatchRMSDocument edits descriptive metadata. Status, handler, file and
// decision fields are rejected.
// PATCH /api/v1/documents/:id
func PatchRMSDocument(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	var req patchDocumentRequest
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Only subject, description, priority and referenceNumber can be updated",
			"code":    "VALIDATION",
			"details": gin.H{"cause": err.Error()},
		})
		return
	}

	patch := services.DocumentMetadataPatch{
		Subject:         req.Subject,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
	}
	if req.Priority != nil {
		priority := models.DocumentPriority(strings.ToLower(strings.TrimSpace(*req.Priority)))
		patch.Priority = &priority
	}

	doc, err := getRMS().Documents.UpdateMetadata(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondRMSError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": doc,
	})
}

// ListRMSTransitions lists what the caller may do with the document next.
// GET /api/v1/documents/:id/transitions
func ListRMSTransitions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := documentIDParam(c)
	if !ok {
		return
	}

	rms := getRMS()
	doc, err := rms.Documents.Get(c.Request.Context(), id)
	if err != nil {
		respondRMSError(c, err)
		return
	}
	rules, err := rms.Workflow.AllowedTransitions(c.Request.Context(), id, actor.Role)
	if err != nil {
		respondRMSError(c, err)
		return
	}

	transitions := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		transitions = append(transitions, gin.H{
			"toStatus":   rule.To,
			"toHandler":  rule.ResultingHandler,
			"actionType": rule.ActionType,
		})
	}
	outcomes := make([]string, 0, 2)
	for _, rule := range services.TransitionsFrom(doc.Status, actor.Role) {
		switch rule.To {
		case models.StatusDispatched:
			outcomes = append(outcomes, services.OutcomeDispatch)
		case models.StatusFiled:
			outcomes = append(outcomes, services.OutcomeFile)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"status":         doc.Status,
		"currentHandler": doc.CurrentHandler,
		"transitions":    transitions,
		"outcomes":       outcomes,
	})
}

// saveAttachment stores the optional multipart "file" field. It writes the
// error response itself and returns false when the upload is rejected.
func saveAttachment(c *gin.Context) (string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return "", true
	}
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid file upload", "code": "VALIDATION"})
		return "", false
	}
	if attachments == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File uploads are not enabled", "code": "VALIDATION"})
		return "", false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid file upload", "code": "VALIDATION"})
		return "", false
	}
	defer file.Close()

	ref, err := attachments.Save(c.Request.Context(), header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		respondRMSError(c, err)
		return "", false
	}
	return ref, true
}

// discardAttachment removes an upload whose workflow operation failed.
func discardAttachment(c *gin.Context, ref string) {
	if ref == "" || attachments == nil {
		return
	}
	if err := attachments.Remove(c.Request.Context(), ref); err != nil {
		zap.L().Warn("Failed to remove orphaned attachment", zap.String("ref", ref), zap.Error(err))
	}
}
