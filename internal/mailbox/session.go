package mailbox

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

// folderCacheTTL bounds how long the folder list is served without a
// re-list. Any folder CRUD purges it immediately.
const folderCacheTTL = 5 * time.Minute

// Provider is the mailbox protocol surface the session depends on. *Client
// is the production implementation.
type Provider interface {
	Ensure() error
	Close() error
	Status() types.ConnectionStatus
	ListFolders() ([]types.Folder, error)
	FolderStatus(folder string) (total, unread uint32, err error)
	FetchRange(folder string, from, to uint32) ([]*types.Message, error)
	FetchByUID(folder string, uid uint32) (*types.Message, error)
	Search(folder string, criteria *imap.SearchCriteria) ([]uint32, error)
	SetFlag(folder string, uid uint32, flag string, set bool) error
	Move(folder string, uid uint32, dest string) error
	Delete(folder string, uid uint32) error
	CreateFolder(path string) error
	DeleteFolder(path string) error
	RenameFolder(oldPath, newPath string) error
}

// Session owns the connection, the message and folder caches, and all read
// and mutating mailbox operations. Folder-scoped locks serialize this
// process's operations per folder; they give no cross-client guarantee — the
// remote mailbox may still change underneath us and is only reconciled by
// re-fetching.
type Session struct {
	provider Provider
	cfg      *config.Config
	logger   *logrus.Logger
	log      *logrus.Entry

	mu        sync.Mutex
	messages  *lru.Cache[uint32, *types.Message]
	folders   []types.Folder
	foldersAt time.Time
	locks     map[string]*sync.Mutex
}

// NewSession creates a session over the given provider.
func NewSession(provider Provider, cfg *config.Config, logger *logrus.Logger) (*Session, error) {
	cache, err := lru.New[uint32, *types.Message](cfg.MessageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create message cache: %w", err)
	}
	return &Session{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		log:      logger.WithField("component", "mailbox"),
		messages: cache,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Close shuts down the underlying connection.
func (s *Session) Close() error {
	return s.provider.Close()
}

// Status reports the connection status.
func (s *Session) Status() types.ConnectionStatus {
	return s.provider.Status()
}

// folderLock returns the advisory lock for a folder path, creating it on
// first use. Locks are intra-process only.
func (s *Session) folderLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

func (s *Session) cacheGet(uid uint32) (*types.Message, bool) {
	if !s.cfg.EnableCache {
		return nil, false
	}
	return s.messages.Get(uid)
}

func (s *Session) cachePut(m *types.Message) {
	if !s.cfg.EnableCache {
		return
	}
	s.messages.Add(m.UID, m)
}

// InvalidateCaches drops both the message cache and the folder cache.
func (s *Session) InvalidateCaches() {
	s.messages.Purge()
	s.mu.Lock()
	s.folders = nil
	s.foldersAt = time.Time{}
	s.mu.Unlock()
}

func (s *Session) invalidateFolders() {
	s.mu.Lock()
	s.folders = nil
	s.foldersAt = time.Time{}
	s.mu.Unlock()
}

// GetEmails returns a page of messages from a folder, newest first. Offset 0
// is the most recently arrived message. The cache keeps full bodies and
// attachment content; the returned views carry the truncated preview with
// attachment content stripped. A dead connection degrades to an empty result.
func (s *Session) GetEmails(folder string, limit, offset int) ([]*types.Message, error) {
	if folder == "" {
		folder = "INBOX"
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	if err := s.provider.Ensure(); err != nil {
		s.log.WithError(err).Warn("Not connected, returning empty message list")
		return []*types.Message{}, nil
	}

	lock := s.folderLock(folder)
	lock.Lock()
	defer lock.Unlock()

	total, _, err := s.provider.FolderStatus(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	// 1-based sequence range: offset 0 covers the newest limit messages.
	end := int(total) - offset
	if total == 0 || end < 1 {
		return []*types.Message{}, nil
	}
	start := end - limit + 1
	if start < 1 {
		start = 1
	}

	msgs, err := s.provider.FetchRange(folder, uint32(start), uint32(end))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", folder, err)
	}

	views := make([]*types.Message, 0, len(msgs))
	for _, m := range msgs {
		m.Folder = folder
		s.cachePut(m)
		views = append(views, m.View())
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Date.After(views[j].Date)
	})
	return views, nil
}

// GetEmailByID returns the full message for a UID, serving from the cache
// when possible and otherwise scanning every known folder. UIDs are only
// unique per folder, so this resolution is best effort: the first folder
// containing the UID wins. Returns nil (without error) when not found.
func (s *Session) GetEmailByID(uid uint32) (*types.Message, error) {
	if m, ok := s.cacheGet(uid); ok {
		return m, nil
	}

	if err := s.provider.Ensure(); err != nil {
		s.log.WithError(err).WithField("uid", uid).Warn("Not connected, lookup degraded to cache only")
		return nil, nil
	}

	m, err := s.scanFolders(uid)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// scanFolders searches every known folder for a UID, acquiring each folder's
// lock around the provider fetch.
func (s *Session) scanFolders(uid uint32) (*types.Message, error) {
	folders, err := s.GetFolders()
	if err != nil {
		return nil, err
	}
	for _, f := range folders {
		m := func() *types.Message {
			lock := s.folderLock(f.Path)
			lock.Lock()
			defer lock.Unlock()

			msg, err := s.provider.FetchByUID(f.Path, uid)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{"uid": uid, "folder": f.Path}).Debug("Folder scan fetch failed")
				return nil
			}
			return msg
		}()
		if m != nil {
			m.Folder = f.Path
			s.cachePut(m)
			return m, nil
		}
	}
	return nil, nil
}

// locate resolves a message for a mutation. Unlike the read path it fails
// loudly: ErrNotConnected when reconnection failed, ErrMessageNotFound when
// the UID resolves nowhere.
func (s *Session) locate(uid uint32) (*types.Message, error) {
	if m, ok := s.cacheGet(uid); ok {
		return m, nil
	}
	if err := s.provider.Ensure(); err != nil {
		return nil, err
	}
	m, err := s.scanFolders(uid)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: uid %d", ErrMessageNotFound, uid)
	}
	return m, nil
}

// SearchEmails searches one folder (INBOX by default) and returns truncated
// views, newest first, capped at the option or configured limit. Matching
// UIDs are resolved through GetEmailByID so the cache is reused.
func (s *Session) SearchEmails(opts SearchOptions) ([]*types.Message, error) {
	folder := opts.Folder
	if folder == "" {
		folder = "INBOX"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.SearchResultLimit
	}

	if err := s.provider.Ensure(); err != nil {
		s.log.WithError(err).Warn("Not connected, returning empty search result")
		return []*types.Message{}, nil
	}

	uids, err := func() ([]uint32, error) {
		lock := s.folderLock(folder)
		lock.Lock()
		defer lock.Unlock()
		return s.provider.Search(folder, opts.Criteria())
	}()
	if err != nil {
		return nil, fmt.Errorf("search failed in %s: %w", folder, err)
	}

	// UID order is ascending; keep the newest matches when capping.
	if len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	views := make([]*types.Message, 0, len(uids))
	for i := len(uids) - 1; i >= 0; i-- {
		m, err := s.GetEmailByID(uids[i])
		if err != nil || m == nil {
			continue
		}
		views = append(views, m.View())
	}
	return views, nil
}

// MarkRead sets or clears the read flag and updates the cached entry.
func (s *Session) MarkRead(uid uint32, read bool) error {
	m, err := s.locate(uid)
	if err != nil {
		return err
	}

	lock := s.folderLock(m.Folder)
	lock.Lock()
	defer lock.Unlock()

	if err := s.provider.SetFlag(m.Folder, uid, imap.SeenFlag, read); err != nil {
		return err
	}
	if cached, ok := s.cacheGet(uid); ok {
		cached.IsRead = read
	}
	return nil
}

// Star sets or clears the starred flag and updates the cached entry.
func (s *Session) Star(uid uint32, starred bool) error {
	m, err := s.locate(uid)
	if err != nil {
		return err
	}

	lock := s.folderLock(m.Folder)
	lock.Lock()
	defer lock.Unlock()

	if err := s.provider.SetFlag(m.Folder, uid, imap.FlaggedFlag, starred); err != nil {
		return err
	}
	if cached, ok := s.cacheGet(uid); ok {
		cached.IsStarred = starred
	}
	return nil
}

// Move moves a message to another folder and reassigns the cached entry's
// folder so it never diverges from a successful mutation.
func (s *Session) Move(uid uint32, dest string) error {
	m, err := s.locate(uid)
	if err != nil {
		return err
	}
	if m.Folder == dest {
		return nil
	}

	lock := s.folderLock(m.Folder)
	lock.Lock()
	defer lock.Unlock()

	if err := s.provider.Move(m.Folder, uid, dest); err != nil {
		return err
	}
	if cached, ok := s.cacheGet(uid); ok {
		cached.Folder = dest
	}
	return nil
}

// Delete deletes a message and evicts it from the cache.
func (s *Session) Delete(uid uint32) error {
	m, err := s.locate(uid)
	if err != nil {
		return err
	}

	lock := s.folderLock(m.Folder)
	lock.Lock()
	defer lock.Unlock()

	if err := s.provider.Delete(m.Folder, uid); err != nil {
		return err
	}
	s.messages.Remove(uid)
	return nil
}

// BulkMove moves a set of messages, batching lock acquisition per source
// folder. A single failure is recorded in the result and never aborts the
// batch.
func (s *Session) BulkMove(uids []uint32, dest string) types.BulkResult {
	return s.bulk(uids, func(folder string, uid uint32) error {
		if err := s.provider.Move(folder, uid, dest); err != nil {
			return err
		}
		if cached, ok := s.cacheGet(uid); ok {
			cached.Folder = dest
		}
		return nil
	})
}

// BulkDelete deletes a set of messages with the same aggregation rules as
// BulkMove.
func (s *Session) BulkDelete(uids []uint32) types.BulkResult {
	return s.bulk(uids, func(folder string, uid uint32) error {
		if err := s.provider.Delete(folder, uid); err != nil {
			return err
		}
		s.messages.Remove(uid)
		return nil
	})
}

func (s *Session) bulk(uids []uint32, op func(folder string, uid uint32) error) types.BulkResult {
	var res types.BulkResult

	// Partition by resolved source folder so each folder is locked once.
	groups := make(map[string][]uint32)
	order := make([]string, 0)
	for _, uid := range uids {
		m, err := s.locate(uid)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("message %d: %v", uid, err))
			continue
		}
		if _, ok := groups[m.Folder]; !ok {
			order = append(order, m.Folder)
		}
		groups[m.Folder] = append(groups[m.Folder], uid)
	}

	for _, folder := range order {
		func() {
			lock := s.folderLock(folder)
			lock.Lock()
			defer lock.Unlock()

			for _, uid := range groups[folder] {
				if err := op(folder, uid); err != nil {
					res.Failed++
					res.Errors = append(res.Errors, fmt.Sprintf("message %d: %v", uid, err))
					continue
				}
				res.Succeeded++
			}
		}()
	}
	return res
}

// GetFolders returns the folder list, served from the cache within its TTL.
func (s *Session) GetFolders() ([]types.Folder, error) {
	s.mu.Lock()
	if s.folders != nil && time.Since(s.foldersAt) < folderCacheTTL {
		folders := make([]types.Folder, len(s.folders))
		copy(folders, s.folders)
		s.mu.Unlock()
		return folders, nil
	}
	s.mu.Unlock()
	return s.SyncFolders()
}

// SyncFolders re-lists folders with per-folder counts and replaces the
// folder cache. A dead connection degrades to an empty list.
func (s *Session) SyncFolders() ([]types.Folder, error) {
	if err := s.provider.Ensure(); err != nil {
		s.log.WithError(err).Warn("Not connected, returning empty folder list")
		return []types.Folder{}, nil
	}

	folders, err := s.provider.ListFolders()
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	for i := range folders {
		if folders[i].SpecialUse == "" && strings.EqualFold(folders[i].Path, "INBOX") {
			folders[i].SpecialUse = "inbox"
		}
		total, unread, err := s.provider.FolderStatus(folders[i].Path)
		if err != nil {
			s.log.WithError(err).WithField("folder", folders[i].Path).Debug("Failed to read folder counts")
			continue
		}
		folders[i].Total = int(total)
		folders[i].Unread = int(unread)
	}

	s.mu.Lock()
	s.folders = folders
	s.foldersAt = time.Now()
	s.mu.Unlock()

	s.log.WithField("count", len(folders)).Info("Synced folders")
	return folders, nil
}

// CreateFolder creates a folder. Provider conflicts are translated; any
// success purges the folder cache.
func (s *Session) CreateFolder(path string) error {
	if err := s.provider.Ensure(); err != nil {
		return err
	}
	if err := translateFolderError(path, s.provider.CreateFolder(path)); err != nil {
		return err
	}
	s.invalidateFolders()
	return nil
}

// DeleteFolder deletes a folder. Protected system folders are rejected
// before any provider call.
func (s *Session) DeleteFolder(path string) error {
	if IsProtectedFolder(path) {
		return fmt.Errorf("%w: %s", ErrProtectedFolder, path)
	}
	if err := s.provider.Ensure(); err != nil {
		return err
	}
	if err := translateFolderError(path, s.provider.DeleteFolder(path)); err != nil {
		return err
	}
	s.invalidateFolders()
	return nil
}

// RenameFolder renames a folder, with the same protection rule as delete.
func (s *Session) RenameFolder(oldPath, newPath string) error {
	if IsProtectedFolder(oldPath) {
		return fmt.Errorf("%w: %s", ErrProtectedFolder, oldPath)
	}
	if err := s.provider.Ensure(); err != nil {
		return err
	}
	if err := translateFolderError(oldPath, s.provider.RenameFolder(oldPath, newPath)); err != nil {
		return err
	}
	s.invalidateFolders()
	return nil
}
