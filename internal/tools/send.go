package tools

import (
	"fmt"

	"github.com/barhatch/protonmail-mcp-server/internal/smtp"
)

// SendEmailTool sends a new email.
type SendEmailTool struct {
	deps
}

func (t *SendEmailTool) Name() string {
	return "send_email"
}

func (t *SendEmailTool) Description() string {
	return "Send an email with plain text and/or HTML body, CC and BCC"
}

func (t *SendEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"to": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Recipient addresses (array or comma-separated string)",
			},
			"cc": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Optional: CC recipients",
			},
			"bcc": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Optional: BCC recipients",
			},
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "Email subject",
			},
			"body": map[string]interface{}{
				"type":        "string",
				"description": "Plain text body",
			},
			"html_body": map[string]interface{}{
				"type":        "string",
				"description": "Optional: HTML body",
			},
			"reply_to": map[string]interface{}{
				"type":        "string",
				"description": "Optional: Reply-To header",
			},
		},
		"required": []string{"to", "subject", "body"},
	}
}

func (t *SendEmailTool) Execute(params map[string]interface{}) (interface{}, error) {
	to := stringListParam(params, "to")
	if len(to) == 0 {
		return nil, fmt.Errorf("to is required")
	}
	subject, err := requireString(params, "subject")
	if err != nil {
		return nil, err
	}
	body := stringParam(params, "body")
	htmlBody := stringParam(params, "html_body")
	if body == "" && htmlBody == "" {
		return nil, fmt.Errorf("body is required")
	}

	msg := &smtp.Message{
		To:       to,
		Cc:       stringListParam(params, "cc"),
		Bcc:      stringListParam(params, "bcc"),
		Subject:  subject,
		BodyText: body,
		BodyHTML: htmlBody,
		ReplyTo:  stringParam(params, "reply_to"),
	}
	if err := t.sender.Send(msg); err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Email sent to %d recipient(s)", len(to)+len(msg.Cc)+len(msg.Bcc)),
	}, nil
}

// SendTestEmailTool sends a canned message to verify the transport.
type SendTestEmailTool struct {
	deps
}

func (t *SendTestEmailTool) Name() string {
	return "send_test_email"
}

func (t *SendTestEmailTool) Description() string {
	return "Send a test email to the account's own address to verify SMTP connectivity"
}

func (t *SendTestEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"to": map[string]interface{}{
				"type":        "string",
				"description": "Optional: recipient, defaults to the account address",
			},
		},
	}
}

func (t *SendTestEmailTool) Execute(params map[string]interface{}) (interface{}, error) {
	if err := t.sender.SendTest(stringParam(params, "to")); err != nil {
		return nil, fmt.Errorf("failed to send test email: %w", err)
	}
	return map[string]interface{}{
		"success": true,
		"message": "Test email sent",
	}, nil
}
