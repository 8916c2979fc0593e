package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"records-portal-api/config"
	"records-portal-api/models"
	"records-portal-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	rmsService  *services.RMSService
	attachments services.AttachmentStore
	notifier    *services.HandlerNotifier
)

// ConfigureRMS installs the RMS dependencies used by the handlers. A nil
// service is built lazily over config.DB; a nil store disables uploads and a
// nil notifier disables handler emails.
func ConfigureRMS(svc *services.RMSService, store services.AttachmentStore, n *services.HandlerNotifier) {
	rmsService = svc
	attachments = store
	notifier = n
}

func getRMS() *services.RMSService {
	if rmsService == nil {
		rmsService = services.NewRMSService(config.DB)
	}
	return rmsService
}

// currentActor builds the acting user from the values AuthMiddleware set.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userID := c.GetInt("userID")
	role := c.GetString("role")
	if userID == 0 || role == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User context missing"})
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: models.HandlerRole(role)}, true
}

func documentIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid document ID", "code": "VALIDATION"})
		return 0, false
	}
	return id, true
}

// respondRMSError maps service errors onto HTTP responses. Storage failures
// are logged and reported without detail.
func respondRMSError(c *gin.Context, err error) {
	var transitionErr *services.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   err.Error(),
			"code":    "INVALID_TRANSITION",
			"details": gin.H{
				"from": transitionErr.From,
				"to":   transitionErr.To,
				"role": transitionErr.Role,
			},
		})
	case errors.Is(err, services.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error(), "code": "FORBIDDEN"})
	case errors.Is(err, services.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error(), "code": "ALREADY_TERMINAL"})
	case errors.Is(err, services.ErrStaleDocument):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error(), "code": "STALE_DOCUMENT"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "code": "VALIDATION"})
	default:
		zap.L().Error("RMS request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("requestID")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "code": "INTERNAL"})
	}
}

func notifyHandler(c *gin.Context, doc *models.RMSDocument, entry *models.RMSWorkflowLog) {
	if notifier == nil || doc == nil || entry == nil {
		return
	}
	notifier.NotifyAsync(c.Request.Context(), doc, entry)
}
