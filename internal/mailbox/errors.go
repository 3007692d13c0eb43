package mailbox

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected means the session was disconnected and the single
	// reconnect attempt also failed.
	ErrNotConnected = errors.New("mailbox is not connected")

	// ErrMessageNotFound means a referenced message could not be resolved in
	// any known folder.
	ErrMessageNotFound = errors.New("message not found")

	// ErrFolderNotFound means a referenced folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrProtectedFolder means a delete or rename targeted a system folder.
	ErrProtectedFolder = errors.New("folder is protected")
)

// protectedFolders are system folders that may never be deleted or renamed,
// matched case-insensitively against the full path.
var protectedFolders = map[string]struct{}{
	"inbox":    {},
	"sent":     {},
	"drafts":   {},
	"trash":    {},
	"spam":     {},
	"archive":  {},
	"all mail": {},
}

// IsProtectedFolder reports whether path names a protected system folder.
func IsProtectedFolder(path string) bool {
	_, ok := protectedFolders[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

// ConflictReason classifies a folder CRUD conflict reported by the provider.
type ConflictReason string

const (
	ConflictExists   ConflictReason = "already exists"
	ConflictMissing  ConflictReason = "does not exist"
	ConflictNotEmpty ConflictReason = "is not empty"
)

// ConflictError is a provider folder conflict translated into a
// human-readable condition naming the folder.
type ConflictError struct {
	Folder string
	Reason ConflictReason
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("folder %q %s", e.Folder, e.Reason)
}

// translateFolderError maps known provider error markers onto ConflictError.
// Anything unrecognized passes through unmodified.
func translateFolderError(folder string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "alreadyexists") || strings.Contains(msg, "already exists"):
		return &ConflictError{Folder: folder, Reason: ConflictExists}
	case strings.Contains(msg, "nonexistent") || strings.Contains(msg, "does not exist") || strings.Contains(msg, "no such"):
		return &ConflictError{Folder: folder, Reason: ConflictMissing}
	case strings.Contains(msg, "has children") || strings.Contains(msg, "non-empty") || strings.Contains(msg, "not empty") || strings.Contains(msg, "has inferior"):
		return &ConflictError{Folder: folder, Reason: ConflictNotEmpty}
	}
	return err
}
