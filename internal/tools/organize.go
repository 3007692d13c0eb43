package tools

import (
	"errors"
	"fmt"

	"github.com/barhatch/protonmail-mcp-server/internal/mailbox"
)

// MarkEmailReadTool flips the read flag on a message.
type MarkEmailReadTool struct {
	deps
}

func (t *MarkEmailReadTool) Name() string {
	return "mark_email_read"
}

func (t *MarkEmailReadTool) Description() string {
	return "Mark an email as read (or unread)"
}

func (t *MarkEmailReadTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uid": map[string]interface{}{
				"type":        "integer",
				"description": "Message UID",
			},
			"read": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: false to mark unread (default true)",
			},
		},
		"required": []string{"uid"},
	}
}

func (t *MarkEmailReadTool) Execute(params map[string]interface{}) (interface{}, error) {
	uid, err := requireUID(params, "uid")
	if err != nil {
		return nil, err
	}
	read := boolParam(params, "read", true)
	if err := t.session.MarkRead(uid, read); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"uid":     uid,
		"read":    read,
	}, nil
}

// StarEmailTool flips the starred flag on a message.
type StarEmailTool struct {
	deps
}

func (t *StarEmailTool) Name() string {
	return "star_email"
}

func (t *StarEmailTool) Description() string {
	return "Star (or unstar) an email"
}

func (t *StarEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uid": map[string]interface{}{
				"type":        "integer",
				"description": "Message UID",
			},
			"starred": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: false to remove the star (default true)",
			},
		},
		"required": []string{"uid"},
	}
}

func (t *StarEmailTool) Execute(params map[string]interface{}) (interface{}, error) {
	uid, err := requireUID(params, "uid")
	if err != nil {
		return nil, err
	}
	starred := boolParam(params, "starred", true)
	if err := t.session.Star(uid, starred); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"uid":     uid,
		"starred": starred,
	}, nil
}

// MoveEmailTool moves a message to another folder.
type MoveEmailTool struct {
	deps
}

func (t *MoveEmailTool) Name() string {
	return "move_email"
}

func (t *MoveEmailTool) Description() string {
	return "Move an email to another folder"
}

func (t *MoveEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uid": map[string]interface{}{
				"type":        "integer",
				"description": "Message UID",
			},
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Destination folder path",
			},
		},
		"required": []string{"uid", "folder"},
	}
}

func (t *MoveEmailTool) Execute(params map[string]interface{}) (interface{}, error) {
	uid, err := requireUID(params, "uid")
	if err != nil {
		return nil, err
	}
	folder, err := requireString(params, "folder")
	if err != nil {
		return nil, err
	}
	if err := t.session.Move(uid, folder); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"uid":     uid,
		"folder":  folder,
	}, nil
}

// BulkMoveEmailsTool moves a batch of messages; individual failures are
// aggregated, not fatal.
type BulkMoveEmailsTool struct {
	deps
}

func (t *BulkMoveEmailsTool) Name() string {
	return "bulk_move_emails"
}

func (t *BulkMoveEmailsTool) Description() string {
	return "Move multiple emails to a folder, reporting per-message failures"
}

func (t *BulkMoveEmailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uids": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer"},
				"description": "Message UIDs",
			},
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Destination folder path",
			},
		},
		"required": []string{"uids", "folder"},
	}
}

func (t *BulkMoveEmailsTool) Execute(params map[string]interface{}) (interface{}, error) {
	uids, err := requireUIDList(params, "uids")
	if err != nil {
		return nil, err
	}
	folder, err := requireString(params, "folder")
	if err != nil {
		return nil, err
	}
	return t.session.BulkMove(uids, folder), nil
}

// ensureLabelFolder creates the Labels/<name> folder if it does not exist
// yet; an "already exists" conflict is expected and ignored.
func ensureLabelFolder(d deps, label string) (string, error) {
	path := labelFolderPrefix + label
	if err := d.session.CreateFolder(path); err != nil {
		var conflict *mailbox.ConflictError
		if !errors.As(err, &conflict) || conflict.Reason != mailbox.ConflictExists {
			return "", fmt.Errorf("failed to prepare label folder: %w", err)
		}
	}
	return path, nil
}

// AddLabelTool applies a label by moving the message into Labels/<name>.
type AddLabelTool struct {
	deps
}

func (t *AddLabelTool) Name() string {
	return "add_label"
}

func (t *AddLabelTool) Description() string {
	return "Apply a label to an email (moves it into the Labels/<name> folder)"
}

func (t *AddLabelTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uid": map[string]interface{}{
				"type":        "integer",
				"description": "Message UID",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "Label name",
			},
		},
		"required": []string{"uid", "label"},
	}
}

func (t *AddLabelTool) Execute(params map[string]interface{}) (interface{}, error) {
	uid, err := requireUID(params, "uid")
	if err != nil {
		return nil, err
	}
	label, err := requireString(params, "label")
	if err != nil {
		return nil, err
	}
	path, err := ensureLabelFolder(t.deps, label)
	if err != nil {
		return nil, err
	}
	if err := t.session.Move(uid, path); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"uid":     uid,
		"label":   label,
		"folder":  path,
	}, nil
}

// BulkAddLabelTool applies a label to a batch of messages.
type BulkAddLabelTool struct {
	deps
}

func (t *BulkAddLabelTool) Name() string {
	return "bulk_add_label"
}

func (t *BulkAddLabelTool) Description() string {
	return "Apply a label to multiple emails, reporting per-message failures"
}

func (t *BulkAddLabelTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uids": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer"},
				"description": "Message UIDs",
			},
			"label": map[string]interface{}{
				"type":        "string",
				"description": "Label name",
			},
		},
		"required": []string{"uids", "label"},
	}
}

func (t *BulkAddLabelTool) Execute(params map[string]interface{}) (interface{}, error) {
	uids, err := requireUIDList(params, "uids")
	if err != nil {
		return nil, err
	}
	label, err := requireString(params, "label")
	if err != nil {
		return nil, err
	}
	path, err := ensureLabelFolder(t.deps, label)
	if err != nil {
		return nil, err
	}
	return t.session.BulkMove(uids, path), nil
}

// DeleteEmailTool deletes a single message.
type DeleteEmailTool struct {
	deps
}

func (t *DeleteEmailTool) Name() string {
	return "delete_email"
}

func (t *DeleteEmailTool) Description() string {
	return "Permanently delete an email"
}

func (t *DeleteEmailTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uid": map[string]interface{}{
				"type":        "integer",
				"description": "Message UID",
			},
		},
		"required": []string{"uid"},
	}
}

func (t *DeleteEmailTool) Execute(params map[string]interface{}) (interface{}, error) {
	uid, err := requireUID(params, "uid")
	if err != nil {
		return nil, err
	}
	if err := t.session.Delete(uid); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"uid":     uid,
	}, nil
}

// BulkDeleteEmailsTool deletes a batch of messages with aggregated results.
type BulkDeleteEmailsTool struct {
	deps
}

func (t *BulkDeleteEmailsTool) Name() string {
	return "bulk_delete_emails"
}

func (t *BulkDeleteEmailsTool) Description() string {
	return "Permanently delete multiple emails, reporting per-message failures"
}

func (t *BulkDeleteEmailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"uids": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "integer"},
				"description": "Message UIDs",
			},
		},
		"required": []string{"uids"},
	}
}

func (t *BulkDeleteEmailsTool) Execute(params map[string]interface{}) (interface{}, error) {
	uids, err := requireUIDList(params, "uids")
	if err != nil {
		return nil, err
	}
	return t.session.BulkDelete(uids), nil
}
