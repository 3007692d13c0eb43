package tools

import (
	"fmt"
)

// GetConnectionStatusTool reports the mailbox connection state.
type GetConnectionStatusTool struct {
	deps
}

func (t *GetConnectionStatusTool) Name() string {
	return "get_connection_status"
}

func (t *GetConnectionStatusTool) Description() string {
	return "Report the IMAP connection state"
}

func (t *GetConnectionStatusTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *GetConnectionStatusTool) Execute(params map[string]interface{}) (interface{}, error) {
	return t.session.Status(), nil
}

// SyncEmailsTool refreshes folders and warms the message cache for one
// folder.
type SyncEmailsTool struct {
	deps
}

func (t *SyncEmailsTool) Name() string {
	return "sync_emails"
}

func (t *SyncEmailsTool) Description() string {
	return "Refresh folder state and re-fetch recent messages for a folder"
}

func (t *SyncEmailsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Optional: folder to sync (default INBOX)",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: messages to fetch (default 50)",
			},
		},
	}
}

func (t *SyncEmailsTool) Execute(params map[string]interface{}) (interface{}, error) {
	folders, err := t.session.SyncFolders()
	if err != nil {
		return nil, fmt.Errorf("failed to sync folders: %w", err)
	}

	folder := stringParam(params, "folder")
	limit := intParam(params, "limit", 50)
	emails, err := t.session.GetEmails(folder, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to sync emails: %w", err)
	}
	if t.cfg.EnableAnalytics {
		t.engine.UpdateEmails(emails)
	}

	return map[string]interface{}{
		"success": true,
		"folders": len(folders),
		"emails":  len(emails),
	}, nil
}

// ClearCacheTool drops derived analytics caches; with all=true it also drops
// the snapshot, contacts and the session's message/folder caches.
type ClearCacheTool struct {
	deps
}

func (t *ClearCacheTool) Name() string {
	return "clear_cache"
}

func (t *ClearCacheTool) Description() string {
	return "Clear derived analytics caches; set all=true to also drop the message snapshot and session caches"
}

func (t *ClearCacheTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"all": map[string]interface{}{
				"type":        "boolean",
				"description": "Optional: drop everything, not just derived aggregates (default false)",
			},
		},
	}
}

func (t *ClearCacheTool) Execute(params map[string]interface{}) (interface{}, error) {
	all := boolParam(params, "all", false)
	if all {
		t.engine.ClearAll()
		t.session.InvalidateCaches()
	} else {
		t.engine.ClearCache()
	}
	return map[string]interface{}{
		"success": true,
		"all":     all,
	}, nil
}

// GetLogsTool returns the recent tail of the in-memory log buffer.
type GetLogsTool struct {
	deps
}

func (t *GetLogsTool) Name() string {
	return "get_logs"
}

func (t *GetLogsTool) Description() string {
	return "Get recent server log entries from the in-memory buffer"
}

func (t *GetLogsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Optional: maximum entries to return (default 50)",
			},
			"level": map[string]interface{}{
				"type":        "string",
				"description": "Optional: minimum severity (debug, info, warning, error)",
			},
		},
	}
}

func (t *GetLogsTool) Execute(params map[string]interface{}) (interface{}, error) {
	limit := intParam(params, "limit", 50)
	level := stringParam(params, "level")
	entries := t.recorder.Entries(limit, level)
	return map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	}, nil
}
