package tools

import (
	"fmt"

	"github.com/barhatch/protonmail-mcp-server/internal/mailbox"
)

// ListEmailsTool returns a page of messages from a folder, newest first.
type ListEmailsTool struct {
	deps
}

func (t *ListEmailsTool) Name() string {
	return "list_emails"
}

func (t *ListEmailsTool) Description() string {
	return "List emails in a folder with pagination, newest first. Bodies are truncated previews; use get_email for full content"
}

func (t *ListEmailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Optional: folder path (default INBOX)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: page size (default 20)",
			},
			"offset": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: messages to skip from the newest end (default 0)",
			},
		},
	}
}

func (t *ListEmailsTool) Execute(params map[string]interface{}) (interface{}, error) {
	folder := stringParam(params, "folder")
	limit := intParam(params, "limit", 20)
	offset := intParam(params, "offset", 0)

	emails, err := t.session.GetEmails(folder, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return map[string]interface{}{
		"count":  len(emails),
		"emails": emails,
	}, nil
}

// GetEmailTool retrieves the full message for a UID.
type GetEmailTool struct {
	deps
}

func (t *GetEmailTool) Name() string {
	return "get_email"
}

func (t *GetEmailTool) Description() string {
	return "Retrieve a full email by UID, including body and attachment content"
}

func (t *GetEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uid": map[string]interface{}{
				"type":        "integer",
				"description": "Message UID (from list or search results)",
			},
		},
		"required": []string{"uid"},
	}
}

func (t *GetEmailTool) Execute(params map[string]interface{}) (interface{}, error) {
	uid, err := requireUID(params, "uid")
	if err != nil {
		return nil, err
	}

	email, err := t.session.GetEmailByID(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	if email == nil {
		return map[string]interface{}{
			"found": false,
			"uid":   uid,
		}, nil
	}
	return map[string]interface{}{
		"found": true,
		"email": email,
	}, nil
}

// SearchEmailsTool searches one folder with structured filters.
type SearchEmailsTool struct {
	deps
}

func (t *SearchEmailsTool) Name() string {
	return "search_emails"
}

func (t *SearchEmailsTool) Description() string {
	return "Search emails with filters (sender, recipient, subject, date range, read/starred flags)"
}

func (t *SearchEmailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Optional: folder to search (default INBOX)",
			},
			"sender": map[string]interface{}{
				"type":        "string",
				"description": "Optional: filter by sender",
			},
			"recipient": map[string]interface{}{
				"type":        "string",
				"description": "Optional: filter by recipient",
			},
			"subject": map[string]interface{}{
				"type":        "string",
				"description": "Optional: subject substring",
			},
			"date_from": map[string]interface{}{
				"type":        "string",
				"description": "Optional: start date (ISO 8601 or YYYY-MM-DD)",
			},
			"date_to": map[string]interface{}{
				"type":        "string",
				"description": "Optional: end date (ISO 8601 or YYYY-MM-DD)",
			},
			"is_read": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: filter by read state",
			},
			"is_starred": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: filter by starred state",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: result cap",
			},
		},
	}
}

func (t *SearchEmailsTool) Execute(params map[string]interface{}) (interface{}, error) {
	opts := mailbox.SearchOptions{
		Folder:    stringParam(params, "folder"),
		Sender:    stringParam(params, "sender"),
		Recipient: stringParam(params, "recipient"),
		Subject:   stringParam(params, "subject"),
		Seen:      optionalBool(params, "is_read"),
		Starred:   optionalBool(params, "is_starred"),
		Limit:     intParam(params, "limit", 0),
	}

	var err error
	if opts.Since, err = dateParam(params, "date_from"); err != nil {
		return nil, err
	}
	if opts.Before, err = dateParam(params, "date_to"); err != nil {
		return nil, err
	}

	emails, err := t.session.SearchEmails(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}
	return map[string]interface{}{
		"count":  len(emails),
		"emails": emails,
	}, nil
}
