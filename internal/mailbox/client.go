package mailbox

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Client wraps an IMAP connection with lifecycle tracking. Connection loss is
// observed asynchronously through the server's logout signal, so an operation
// that finds the client disconnected can attempt exactly one reconnect via
// Ensure before running.
type Client struct {
	cfg    *config.Config
	logger *logrus.Logger

	mu      sync.Mutex
	conn    *client.Client
	state   State
	lastErr error
	since   time.Time
	gen     int
}

// NewClient creates a client; it does not connect until first use.
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		state:  StateDisconnected,
		since:  time.Now(),
	}
}

// Ensure makes sure a connection exists, attempting a single reconnect when
// disconnected. A failed attempt propagates the transport error; retry policy
// belongs to callers.
func (c *Client) Ensure() error {
	c.mu.Lock()
	if c.state == StateConnected && c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.Connect()
}

// Connect establishes a connection and logs in using the stored parameters.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnected && c.conn != nil {
		return nil
	}

	c.state = StateConnecting
	c.since = time.Now()
	addr := fmt.Sprintf("%s:%d", c.cfg.IMAPHost, c.cfg.IMAPPort)

	var (
		cl  *client.Client
		err error
	)
	if c.cfg.IMAPPort == 993 {
		cl, err = client.DialTLS(addr, &tls.Config{
			ServerName: c.cfg.IMAPHost,
			MinVersion: tls.VersionTLS12,
		})
	} else {
		// Bridge-style local endpoints speak plaintext and may offer STARTTLS.
		cl, err = client.Dial(addr)
		if err == nil {
			if ok, _ := cl.SupportStartTLS(); ok {
				err = cl.StartTLS(&tls.Config{ServerName: c.cfg.IMAPHost})
			}
		}
	}
	if err != nil {
		c.state = StateDisconnected
		c.lastErr = err
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	if err := cl.Login(c.cfg.IMAPUsername, c.cfg.IMAPPassword); err != nil {
		cl.Logout() //nolint:errcheck
		c.state = StateDisconnected
		c.lastErr = err
		return fmt.Errorf("failed to login: %w", err)
	}

	c.conn = cl
	c.state = StateConnected
	c.lastErr = nil
	c.since = time.Now()
	c.gen++
	go c.watch(cl, c.gen)

	c.logger.WithField("component", "mailbox").WithField("host", c.cfg.IMAPHost).Info("Connected to IMAP server")
	return nil
}

// watch flips the state when the server side of this connection goes away,
// independent of any in-flight call.
func (c *Client) watch(cl *client.Client, gen int) {
	<-cl.LoggedOut()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	c.since = time.Now()
	c.logger.WithField("component", "mailbox").Warn("IMAP connection closed")
}

// Close logs out and drops the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.since = time.Now()
	c.gen++
	c.mu.Unlock()

	if conn != nil {
		return conn.Logout()
	}
	return nil
}

// Status reports the connection state for the status tool.
func (c *Client) Status() types.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := types.ConnectionStatus{
		State:     c.state.String(),
		Connected: c.state == StateConnected,
		Host:      c.cfg.IMAPHost,
		Since:     c.since,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

func (c *Client) current() (*client.Client, error) {
	if err := c.Ensure(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

// ListFolders lists all mailboxes with their special-use markers.
func (c *Client) ListFolders() ([]types.Folder, error) {
	conn, err := c.current()
	if err != nil {
		return nil, err
	}

	mailboxes := make(chan *imap.MailboxInfo, 10)
	done := make(chan error, 1)
	go func() {
		done <- conn.List("", "*", mailboxes)
	}()

	var folders []types.Folder
	for m := range mailboxes {
		name := m.Name
		if i := strings.LastIndex(name, m.Delimiter); i >= 0 && m.Delimiter != "" {
			name = name[i+len(m.Delimiter):]
		}
		folders = append(folders, types.Folder{
			Name:       name,
			Path:       m.Name,
			SpecialUse: specialUse(m.Attributes),
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

func specialUse(attrs []string) string {
	for _, a := range attrs {
		switch a {
		case imap.SentAttr:
			return "sent"
		case imap.DraftsAttr:
			return "drafts"
		case imap.TrashAttr:
			return "trash"
		case imap.JunkAttr:
			return "spam"
		case imap.ArchiveAttr:
			return "archive"
		case imap.AllAttr:
			return "all"
		}
	}
	return ""
}

// FolderStatus returns the total and unseen message counts for a folder.
func (c *Client) FolderStatus(folder string) (uint32, uint32, error) {
	conn, err := c.current()
	if err != nil {
		return 0, 0, err
	}
	status, err := conn.Status(folder, []imap.StatusItem{imap.StatusMessages, imap.StatusUnseen})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get folder status: %w", err)
	}
	return status.Messages, status.Unseen, nil
}

// FetchRange fetches the sequence range [from, to] from a folder. Messages
// that fail to parse are logged and skipped so a single bad message cannot
// abort the fetch.
func (c *Client) FetchRange(folder string, from, to uint32) ([]*types.Message, error) {
	conn, err := c.current()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Select(folder, false); err != nil {
		return nil, fmt.Errorf("failed to select folder: %w", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(from, to)
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, imap.FetchInternalDate, imap.FetchUid, imap.FetchRFC822}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqSet, items, messages)
	}()

	var out []*types.Message
	for msg := range messages {
		m, err := parseMessage(msg, folder, c.logger)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"component": "mailbox",
				"folder":    folder,
			}).Warn("Skipping unparseable message")
			continue
		}
		out = append(out, m)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return out, nil
}

// FetchByUID fetches a single message by UID; nil when the UID does not exist
// in the folder.
func (c *Client) FetchByUID(folder string, uid uint32) (*types.Message, error) {
	conn, err := c.current()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Select(folder, false); err != nil {
		return nil, fmt.Errorf("failed to select folder: %w", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, imap.FetchInternalDate, imap.FetchUid, imap.FetchRFC822}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- conn.UidFetch(seqSet, items, messages)
	}()

	var found *types.Message
	for msg := range messages {
		m, err := parseMessage(msg, folder, c.logger)
		if err != nil {
			continue
		}
		found = m
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	return found, nil
}

// Search runs a UID search in a folder.
func (c *Client) Search(folder string, criteria *imap.SearchCriteria) ([]uint32, error) {
	conn, err := c.current()
	if err != nil {
		return nil, err
	}
	if _, err := conn.Select(folder, false); err != nil {
		return nil, fmt.Errorf("failed to select folder: %w", err)
	}
	uids, err := conn.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return uids, nil
}

// SetFlag adds or removes a single flag on a message.
func (c *Client) SetFlag(folder string, uid uint32, flag string, set bool) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	if _, err := conn.Select(folder, false); err != nil {
		return fmt.Errorf("failed to select folder: %w", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	if err := conn.UidStore(seqSet, flagsStoreItem(set), []interface{}{flag}, nil); err != nil {
		return fmt.Errorf("failed to store flags: %w", err)
	}
	return nil
}

// flagsStoreItem builds the silent store item that adds or removes flags.
func flagsStoreItem(set bool) imap.StoreItem {
	op := imap.FlagsOp(imap.AddFlags)
	if !set {
		op = imap.FlagsOp(imap.RemoveFlags)
	}
	return imap.FormatFlagsOp(op, true)
}

// Move moves a message to another folder.
func (c *Client) Move(folder string, uid uint32, dest string) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	if _, err := conn.Select(folder, false); err != nil {
		return fmt.Errorf("failed to select folder: %w", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	if err := conn.UidMove(seqSet, dest); err != nil {
		return fmt.Errorf("failed to move message: %w", err)
	}
	return nil
}

// Delete flags a message deleted and expunges the folder.
func (c *Client) Delete(folder string, uid uint32) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	if _, err := conn.Select(folder, false); err != nil {
		return fmt.Errorf("failed to select folder: %w", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := conn.UidStore(seqSet, item, []interface{}{imap.DeletedFlag}, nil); err != nil {
		return fmt.Errorf("failed to flag message deleted: %w", err)
	}
	if err := conn.Expunge(nil); err != nil {
		return fmt.Errorf("failed to expunge: %w", err)
	}
	return nil
}

// CreateFolder creates a folder.
func (c *Client) CreateFolder(path string) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	return conn.Create(path)
}

// DeleteFolder deletes a folder.
func (c *Client) DeleteFolder(path string) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	return conn.Delete(path)
}

// RenameFolder renames a folder.
func (c *Client) RenameFolder(oldPath, newPath string) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	return conn.Rename(oldPath, newPath)
}
