package mailbox

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/internal/util"
	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

// fakeProvider is an in-memory Provider. Messages are stored per folder in
// ascending sequence order, mirroring how the server would hand them out.
type fakeProvider struct {
	folders  []types.Folder
	messages map[string][]*types.Message

	ensureErr error
	crudErr   error

	listCalls   int
	deleteCalls int
	moveCalls   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		folders: []types.Folder{
			{Name: "INBOX", Path: "INBOX"},
			{Name: "Archive", Path: "Archive", SpecialUse: "archive"},
		},
		messages: make(map[string][]*types.Message),
	}
}

func (p *fakeProvider) Ensure() error { return p.ensureErr }
func (p *fakeProvider) Close() error  { return nil }

func (p *fakeProvider) Status() types.ConnectionStatus {
	return types.ConnectionStatus{State: "connected", Connected: p.ensureErr == nil}
}

func (p *fakeProvider) ListFolders() ([]types.Folder, error) {
	p.listCalls++
	out := make([]types.Folder, len(p.folders))
	copy(out, p.folders)
	return out, nil
}

func (p *fakeProvider) FolderStatus(folder string) (uint32, uint32, error) {
	msgs := p.messages[folder]
	var unread uint32
	for _, m := range msgs {
		if !m.IsRead {
			unread++
		}
	}
	return uint32(len(msgs)), unread, nil
}

func (p *fakeProvider) FetchRange(folder string, from, to uint32) ([]*types.Message, error) {
	msgs := p.messages[folder]
	if from < 1 || int(to) > len(msgs) || from > to {
		return nil, fmt.Errorf("range out of bounds")
	}
	out := make([]*types.Message, 0, to-from+1)
	for _, m := range msgs[from-1 : to] {
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

func (p *fakeProvider) FetchByUID(folder string, uid uint32) (*types.Message, error) {
	for _, m := range p.messages[folder] {
		if m.UID == uid {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

func (p *fakeProvider) Search(folder string, criteria *imap.SearchCriteria) ([]uint32, error) {
	uids := make([]uint32, 0)
	for _, m := range p.messages[folder] {
		if len(criteria.Header["Subject"]) > 0 &&
			!strings.Contains(m.Subject, criteria.Header.Get("Subject")) {
			continue
		}
		uids = append(uids, m.UID)
	}
	return uids, nil
}

func (p *fakeProvider) SetFlag(folder string, uid uint32, flag string, set bool) error {
	for _, m := range p.messages[folder] {
		if m.UID != uid {
			continue
		}
		switch flag {
		case imap.SeenFlag:
			m.IsRead = set
		case imap.FlaggedFlag:
			m.IsStarred = set
		}
		return nil
	}
	return fmt.Errorf("uid %d not in %s", uid, folder)
}

func (p *fakeProvider) Move(folder string, uid uint32, dest string) error {
	p.moveCalls++
	for i, m := range p.messages[folder] {
		if m.UID == uid {
			p.messages[folder] = append(p.messages[folder][:i], p.messages[folder][i+1:]...)
			p.messages[dest] = append(p.messages[dest], m)
			return nil
		}
	}
	return fmt.Errorf("uid %d not in %s", uid, folder)
}

func (p *fakeProvider) Delete(folder string, uid uint32) error {
	p.deleteCalls++
	for i, m := range p.messages[folder] {
		if m.UID == uid {
			p.messages[folder] = append(p.messages[folder][:i], p.messages[folder][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("uid %d not in %s", uid, folder)
}

func (p *fakeProvider) CreateFolder(path string) error {
	if p.crudErr != nil {
		return p.crudErr
	}
	p.folders = append(p.folders, types.Folder{Name: path, Path: path})
	return nil
}

func (p *fakeProvider) DeleteFolder(path string) error {
	if p.crudErr != nil {
		return p.crudErr
	}
	return nil
}

func (p *fakeProvider) RenameFolder(oldPath, newPath string) error {
	if p.crudErr != nil {
		return p.crudErr
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		EnableCache:       true,
		MessageCacheSize:  50,
		SearchResultLimit: 100,
	}
}

func newTestSession(t *testing.T, p *fakeProvider) *Session {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s, err := NewSession(p, testConfig(), logger)
	require.NoError(t, err)
	return s
}

// seedInbox fills INBOX with n messages, uid i with ascending dates so that
// the highest uid is the newest.
func seedInbox(p *fakeProvider, n int) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		p.messages["INBOX"] = append(p.messages["INBOX"], &types.Message{
			UID:     uint32(i),
			From:    fmt.Sprintf("sender%d@example.com", i),
			Subject: fmt.Sprintf("message %d", i),
			Body:    fmt.Sprintf("body %d", i),
			Preview: fmt.Sprintf("body %d", i),
			Date:    base.Add(time.Duration(i) * time.Hour),
			Folder:  "INBOX",
		})
	}
}

func TestGetEmailsPagination(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 10)
	s := newTestSession(t, p)

	t.Run("first page is the newest messages", func(t *testing.T) {
		msgs, err := s.GetEmails("INBOX", 3, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, uint32(10), msgs[0].UID)
		assert.Equal(t, uint32(9), msgs[1].UID)
		assert.Equal(t, uint32(8), msgs[2].UID)
	})

	t.Run("offset walks backwards in time", func(t *testing.T) {
		msgs, err := s.GetEmails("INBOX", 3, 4)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, uint32(6), msgs[0].UID)
		assert.Equal(t, uint32(4), msgs[2].UID)
	})

	t.Run("page past the start clamps", func(t *testing.T) {
		msgs, err := s.GetEmails("INBOX", 5, 8)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, uint32(2), msgs[0].UID)
		assert.Equal(t, uint32(1), msgs[1].UID)
	})

	t.Run("offset beyond the folder is empty", func(t *testing.T) {
		msgs, err := s.GetEmails("INBOX", 5, 100)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("empty folder is empty, not an error", func(t *testing.T) {
		msgs, err := s.GetEmails("Archive", 5, 0)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestGetEmailsReturnsTruncatedViews(t *testing.T) {
	p := newFakeProvider()
	long := strings.Repeat("lorem ipsum ", 100)
	p.messages["INBOX"] = []*types.Message{{
		UID:     1,
		From:    "alice@example.com",
		Subject: "big one",
		Body:    long,
		Preview: util.Preview(long),
		Date:    time.Now(),
		Attachments: []types.Attachment{
			{Filename: "a.pdf", ContentType: "application/pdf", Size: 3, Content: []byte{1, 2, 3}},
		},
		HasAttachments: true,
	}}
	s := newTestSession(t, p)

	msgs, err := s.GetEmails("INBOX", 5, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	view := msgs[0]
	assert.True(t, strings.HasSuffix(view.Body, "..."))
	assert.Less(t, len(view.Body), len(long))
	require.Len(t, view.Attachments, 1)
	assert.Nil(t, view.Attachments[0].Content)
	assert.Equal(t, 3, view.Attachments[0].Size)

	// The cache keeps the full message.
	full, err := s.GetEmailByID(1)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, long, full.Body)
	assert.Equal(t, []byte{1, 2, 3}, full.Attachments[0].Content)
}

func TestGetEmailByIDScansFolders(t *testing.T) {
	p := newFakeProvider()
	p.messages["Archive"] = []*types.Message{{
		UID: 7, From: "a@example.com", Subject: "stored away", Date: time.Now(),
	}}
	s := newTestSession(t, p)

	m, err := s.GetEmailByID(7)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Archive", m.Folder)

	missing, err := s.GetEmailByID(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadPathsDegradeWhenDisconnected(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 3)
	p.ensureErr = ErrNotConnected
	s := newTestSession(t, p)

	msgs, err := s.GetEmails("INBOX", 5, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	found, err := s.SearchEmails(SearchOptions{Subject: "message"})
	require.NoError(t, err)
	assert.Empty(t, found)

	folders, err := s.SyncFolders()
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestMutationsFailLoudlyWhenDisconnected(t *testing.T) {
	p := newFakeProvider()
	p.ensureErr = ErrNotConnected
	s := newTestSession(t, p)

	assert.ErrorIs(t, s.MarkRead(1, true), ErrNotConnected)
	assert.ErrorIs(t, s.CreateFolder("Folders/New"), ErrNotConnected)
	assert.ErrorIs(t, s.DeleteFolder("Folders/Old"), ErrNotConnected)
}

func TestMarkReadUpdatesCache(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 3)
	s := newTestSession(t, p)

	_, err := s.GetEmails("INBOX", 3, 0)
	require.NoError(t, err)

	require.NoError(t, s.MarkRead(2, true))

	m, err := s.GetEmailByID(2)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsRead)

	require.NoError(t, s.MarkRead(2, false))
	m, _ = s.GetEmailByID(2)
	assert.False(t, m.IsRead)
}

func TestStarUpdatesCache(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 1)
	s := newTestSession(t, p)

	require.NoError(t, s.Star(1, true))
	m, err := s.GetEmailByID(1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.IsStarred)
}

func TestMoveReassignsCachedFolder(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 2)
	s := newTestSession(t, p)

	require.NoError(t, s.Move(1, "Archive"))

	m, err := s.GetEmailByID(1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Archive", m.Folder)
	assert.Len(t, p.messages["Archive"], 1)

	// Moving to the current folder is a no-op.
	calls := p.moveCalls
	require.NoError(t, s.Move(1, "Archive"))
	assert.Equal(t, calls, p.moveCalls)
}

func TestMutationOnUnknownMessage(t *testing.T) {
	p := newFakeProvider()
	s := newTestSession(t, p)

	err := s.MarkRead(42, true)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Contains(t, err.Error(), "42")
}

func TestDeleteEvictsCache(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 2)
	s := newTestSession(t, p)

	_, err := s.GetEmails("INBOX", 2, 0)
	require.NoError(t, err)

	require.NoError(t, s.Delete(2))

	m, err := s.GetEmailByID(2)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestBulkMoveAggregatesFailures(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 5)
	p.messages["INBOX"] = append(p.messages["INBOX"][:2], p.messages["INBOX"][3:]...) // drop uid 3
	s := newTestSession(t, p)

	res := s.BulkMove([]uint32{1, 2, 3, 4, 5}, "Archive")
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "message 3")
	assert.Len(t, p.messages["Archive"], 4)
}

func TestBulkDelete(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 3)
	s := newTestSession(t, p)

	res := s.BulkDelete([]uint32{1, 3})
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Failed)
	assert.Len(t, p.messages["INBOX"], 1)
}

func TestSearchEmailsCapsAtNewest(t *testing.T) {
	p := newFakeProvider()
	seedInbox(p, 6)
	s := newTestSession(t, p)

	msgs, err := s.SearchEmails(SearchOptions{Subject: "message", Limit: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, uint32(6), msgs[0].UID)
	assert.Equal(t, uint32(5), msgs[1].UID)
}

func TestFolderCache(t *testing.T) {
	p := newFakeProvider()
	s := newTestSession(t, p)

	first, err := s.GetFolders()
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "inbox", first[0].SpecialUse)

	_, err = s.GetFolders()
	require.NoError(t, err)
	assert.Equal(t, 1, p.listCalls)

	// Folder CRUD purges the cache.
	require.NoError(t, s.CreateFolder("Folders/Receipts"))
	_, err = s.GetFolders()
	require.NoError(t, err)
	assert.Equal(t, 2, p.listCalls)
}

func TestProtectedFoldersRejectedBeforeProviderCall(t *testing.T) {
	p := newFakeProvider()
	s := newTestSession(t, p)

	for _, name := range []string{"INBOX", "Trash", "sent", "All Mail"} {
		err := s.DeleteFolder(name)
		assert.ErrorIs(t, err, ErrProtectedFolder, name)
	}
	assert.ErrorIs(t, s.RenameFolder("Drafts", "Scribbles"), ErrProtectedFolder)
	assert.Zero(t, p.deleteCalls)
}

func TestFolderConflictTranslation(t *testing.T) {
	p := newFakeProvider()
	s := newTestSession(t, p)

	p.crudErr = errors.New("CREATE failed: ALREADYEXISTS mailbox exists")
	err := s.CreateFolder("Folders/Dup")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictExists, conflict.Reason)
	assert.Equal(t, "Folders/Dup", conflict.Folder)

	p.crudErr = errors.New("DELETE failed: NONEXISTENT no such mailbox")
	err = s.DeleteFolder("Folders/Gone")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictMissing, conflict.Reason)

	p.crudErr = errors.New("mailbox has inferior hierarchical names")
	err = s.DeleteFolder("Folders/Parent")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, ConflictNotEmpty, conflict.Reason)

	// Unrecognized provider errors pass through untranslated.
	p.crudErr = errors.New("connection reset")
	err = s.DeleteFolder("Folders/Other")
	assert.False(t, errors.As(err, &conflict))
	assert.ErrorContains(t, err, "connection reset")
}
