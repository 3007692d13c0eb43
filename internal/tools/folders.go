package tools

import (
	"fmt"
	"strings"
)

// userFolderPrefix and labelFolderPrefix are the reserved path conventions
// the tool surface builds; the session itself treats all paths uniformly.
const (
	userFolderPrefix  = "Folders/"
	labelFolderPrefix = "Labels/"
)

// ListFoldersTool lists mailbox folders with counts.
type ListFoldersTool struct {
	deps
}

func (t *ListFoldersTool) Name() string {
	return "list_folders"
}

func (t *ListFoldersTool) Description() string {
	return "List mailbox folders with message and unread counts"
}

func (t *ListFoldersTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *ListFoldersTool) Execute(params map[string]interface{}) (interface{}, error) {
	folders, err := t.session.GetFolders()
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return map[string]interface{}{
		"count":   len(folders),
		"folders": folders,
	}, nil
}

// SyncFoldersTool forces a re-list of folders, bypassing the folder cache.
type SyncFoldersTool struct {
	deps
}

func (t *SyncFoldersTool) Name() string {
	return "sync_folders"
}

func (t *SyncFoldersTool) Description() string {
	return "Refresh the folder list and counts from the server"
}

func (t *SyncFoldersTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *SyncFoldersTool) Execute(params map[string]interface{}) (interface{}, error) {
	folders, err := t.session.SyncFolders()
	if err != nil {
		return nil, fmt.Errorf("failed to sync folders: %w", err)
	}
	return map[string]interface{}{
		"count":   len(folders),
		"folders": folders,
	}, nil
}

// CreateFolderTool creates a user folder under the Folders/ prefix.
type CreateFolderTool struct {
	deps
}

func (t *CreateFolderTool) Name() string {
	return "create_folder"
}

func (t *CreateFolderTool) Description() string {
	return "Create a user folder (placed under the Folders/ prefix unless a full path is given)"
}

func (t *CreateFolderTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Folder name or full path",
			},
		},
		"required": []string{"name"},
	}
}

func (t *CreateFolderTool) Execute(params map[string]interface{}) (interface{}, error) {
	name, err := requireString(params, "name")
	if err != nil {
		return nil, err
	}
	path := name
	if !strings.Contains(name, "/") {
		path = userFolderPrefix + name
	}
	if err := t.session.CreateFolder(path); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"folder":  path,
	}, nil
}

// DeleteFolderTool deletes a folder; system folders are refused.
type DeleteFolderTool struct {
	deps
}

func (t *DeleteFolderTool) Name() string {
	return "delete_folder"
}

func (t *DeleteFolderTool) Description() string {
	return "Delete a folder by path. System folders (Inbox, Sent, ...) cannot be deleted"
}

func (t *DeleteFolderTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Folder path",
			},
		},
		"required": []string{"folder"},
	}
}

func (t *DeleteFolderTool) Execute(params map[string]interface{}) (interface{}, error) {
	folder, err := requireString(params, "folder")
	if err != nil {
		return nil, err
	}
	if err := t.session.DeleteFolder(folder); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"folder":  folder,
	}, nil
}

// RenameFolderTool renames a folder in place, keeping its parent path.
type RenameFolderTool struct {
	deps
}

func (t *RenameFolderTool) Name() string {
	return "rename_folder"
}

func (t *RenameFolderTool) Description() string {
	return "Rename a folder. System folders cannot be renamed"
}

func (t *RenameFolderTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{
				"type":        "string",
				"description": "Current folder path",
			},
			"new_name": map[string]interface{}{
				"type":        "string",
				"description": "New folder name (parent path is preserved)",
			},
		},
		"required": []string{"folder", "new_name"},
	}
}

func (t *RenameFolderTool) Execute(params map[string]interface{}) (interface{}, error) {
	folder, err := requireString(params, "folder")
	if err != nil {
		return nil, err
	}
	newName, err := requireString(params, "new_name")
	if err != nil {
		return nil, err
	}

	newPath := newName
	if i := strings.LastIndex(folder, "/"); i >= 0 && !strings.Contains(newName, "/") {
		newPath = folder[:i+1] + newName
	}
	if err := t.session.RenameFolder(folder, newPath); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success": true,
		"folder":  newPath,
	}, nil
}
