package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"records-portal-api/config"
	"records-portal-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MailSender delivers one HTML message.
type MailSender func(to []string, subject, html string) error

// HandlerNotifier emails the users who now hold a document. It runs outside
// the workflow transaction; a failed email never affects the document.
type HandlerNotifier struct {
	db     *gorm.DB
	send   MailSender
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewHandlerNotifier(db *gorm.DB, send MailSender) *HandlerNotifier {
	if send == nil {
		send = config.SendMail
	}
	return &HandlerNotifier{
		db:     db,
		send:   send,
		logger: zap.L().With(zap.String("service", "rms_notifier")),
	}
}

// Recipients returns the email addresses of the active, undeleted users holding the
// document's current handler role. Initiator resolves to the document creator;
// registry has no recipients.
func (n *HandlerNotifier) Recipients(ctx context.Context, doc *models.RMSDocument) ([]string, error) {
	query := n.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ? AND delete_at IS NULL", true)
	switch doc.CurrentHandler {
	case models.HandlerRegistry:
		return nil, nil
	case models.HandlerInitiator:
		query = query.Where("user_id = ?", doc.CreatedBy)
	default:
		query = query.Where("role = ?", string(doc.CurrentHandler))
	}

	var emails []string
	if err := query.Order("user_id ASC").Pluck("email", &emails).Error; err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}
	out := emails[:0]
	for _, email := range emails {
		if strings.TrimSpace(email) != "" {
			out = append(out, email)
		}
	}
	return out, nil
}

// Notify sends the handler-change email synchronously.
func (n *HandlerNotifier) Notify(ctx context.Context, doc *models.RMSDocument, entry *models.RMSWorkflowLog) error {
	to, err := n.Recipients(ctx, doc)
	if err != nil {
		return err
	}
	if len(to) == 0 {
		return nil
	}
	subject := fmt.Sprintf("[RMS] %s: %s", entry.ActionType, doc.Subject)
	return n.send(to, subject, buildHandlerEmailHTML(subject, doc, entry))
}

// NotifyAsync sends in the background; the request context may already be
// cancelled by the time the email goes out.
func (n *HandlerNotifier) NotifyAsync(ctx context.Context, doc *models.RMSDocument, entry *models.RMSWorkflowLog) {
	bg := persistentContext(ctx)
	docCopy := *doc
	entryCopy := *entry
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.Notify(bg, &docCopy, &entryCopy); err != nil {
			n.logger.Warn("Handler notification failed",
				zap.Int("document_id", docCopy.DocumentID),
				zap.String("handler", string(docCopy.CurrentHandler)),
				zap.Error(err))
		}
	}()
}

// Wait blocks until pending async notifications finish.
func (n *HandlerNotifier) Wait() {
	n.wg.Wait()
}

func persistentContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}
