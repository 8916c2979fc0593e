package services

import (
	"fmt"
	"html/template"
	"strings"

	"records-portal-api/models"
)

type emailMetaItem struct {
	Label string
	Value string
}

// buildEmailHTML renders a plain card layout: title, paragraphs and a
// label/value table. Empty paragraphs and rows are skipped.
func buildEmailHTML(subject string, paragraphs []string, meta []emailMetaItem) string {
	var content strings.Builder
	for _, paragraph := range paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		escaped := template.HTMLEscapeString(trimmed)
		escaped = strings.ReplaceAll(escaped, "\n", "<br />")
		content.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;">`)
		content.WriteString(escaped)
		content.WriteString(`</p>`)
	}

	var table strings.Builder
	for _, item := range meta {
		label := strings.TrimSpace(item.Label)
		value := strings.TrimSpace(item.Value)
		if label == "" || value == "" {
			continue
		}
		fmt.Fprintf(&table, `<tr>
<td style="padding:10px 16px;font-size:13px;color:#6b7280;width:38%%;">%s</td>
<td style="padding:10px 16px;font-size:15px;color:#111827;font-weight:600;white-space:pre-wrap;">%s</td>
</tr>
`, template.HTMLEscapeString(label), template.HTMLEscapeString(value))
	}
	metaSection := ""
	if table.Len() > 0 {
		metaSection = `<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;"><tbody>
` + table.String() + `</tbody></table>`
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px;">
<h1 style="margin:0 0 20px 0;font-size:22px;color:#111827;">%s</h1>
<div style="color:#1f2937;font-size:16px;">
%s
</div>
%s
</div>
</div>
</body>
</html>`, template.HTMLEscapeString(subject), template.HTMLEscapeString(subject), content.String(), metaSection)
}

func buildHandlerEmailHTML(subject string, doc *models.RMSDocument, entry *models.RMSWorkflowLog) string {
	intro := "A records document now requires your attention."
	switch doc.Status {
	case models.StatusDispatched:
		intro = "A decision has been made on a document you registered."
	case models.StatusFiled:
		intro = "The document has been filed in the registry."
	}

	meta := []emailMetaItem{
		{Label: "Document", Value: fmt.Sprintf("#%d %s", doc.DocumentID, doc.Subject)},
		{Label: "Status", Value: string(doc.Status)},
		{Label: "Priority", Value: string(doc.Priority)},
		{Label: "Action", Value: entry.ActionType},
	}
	if doc.ReferenceNumber != nil {
		meta = append(meta, emailMetaItem{Label: "Reference", Value: *doc.ReferenceNumber})
	}
	if doc.DecisionSummary != nil {
		meta = append(meta, emailMetaItem{Label: "Decision", Value: *doc.DecisionSummary})
	} else if entry.Notes != nil {
		meta = append(meta, emailMetaItem{Label: "Notes", Value: *entry.Notes})
	}
	return buildEmailHTML(subject, []string{intro}, meta)
}
