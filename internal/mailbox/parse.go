package mailbox

import (
	"bytes"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/util"
	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

// parseMessage converts a raw IMAP message into a Message with the full body
// and attachment content populated. Callers decide whether to down-project to
// a preview view.
func parseMessage(msg *imap.Message, folder string, logger *logrus.Logger) (*types.Message, error) {
	if msg == nil || msg.Envelope == nil {
		return nil, fmt.Errorf("message has no envelope")
	}

	env := msg.Envelope
	m := &types.Message{
		UID:     msg.Uid,
		Subject: env.Subject,
		Date:    env.Date,
		Folder:  folder,
	}
	if m.Date.IsZero() {
		m.Date = msg.InternalDate
	}

	if len(env.From) > 0 {
		m.From = env.From[0].Address()
	}
	for _, to := range env.To {
		m.To = append(m.To, to.Address())
	}
	for _, cc := range env.Cc {
		m.Cc = append(m.Cc, cc.Address())
	}

	for _, flag := range msg.Flags {
		switch flag {
		case imap.SeenFlag:
			m.IsRead = true
		case imap.FlaggedFlag:
			m.IsStarred = true
		}
	}

	raw := readBody(msg, logger)
	if len(raw) > 0 {
		parseBody(m, raw, logger)
	}
	m.Preview = previewOf(m)
	return m, nil
}

// parseBody fills body, HTML flag and attachments from the raw RFC822 bytes.
func parseBody(m *types.Message, raw []byte, logger *logrus.Logger) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		logger.WithError(err).WithField("uid", m.UID).Debug("MIME parse failed, keeping raw body")
		m.Body = string(raw)
		return
	}

	switch {
	case env.Text != "":
		m.Body = env.Text
	case env.HTML != "":
		m.Body = env.HTML
		m.IsHTML = true
	}

	for _, part := range env.Attachments {
		name := part.FileName
		if name == "" {
			name = "unnamed"
		}
		m.Attachments = append(m.Attachments, types.Attachment{
			Filename:    name,
			ContentType: part.ContentType,
			Size:        len(part.Content),
			ContentID:   part.ContentID,
			Content:     part.Content,
		})
	}
	m.HasAttachments = len(m.Attachments) > 0
}

// previewOf derives the truncated list-view preview. HTML bodies are
// converted to text first so the preview stays readable.
func previewOf(m *types.Message) string {
	text := m.Body
	if m.IsHTML {
		if converted, err := html2text.FromString(m.Body, html2text.Options{TextOnly: true}); err == nil {
			text = converted
		}
	}
	return util.Preview(text)
}

// readBody drains the RFC822 literal from whichever body section the server
// returned it under.
func readBody(msg *imap.Message, logger *logrus.Logger) []byte {
	if msg.Body == nil {
		return nil
	}
	for _, literal := range msg.Body {
		if literal == nil {
			continue
		}
		raw, err := io.ReadAll(literal)
		if err != nil {
			logger.WithError(err).WithField("uid", msg.Uid).Debug("Failed to read body literal")
			continue
		}
		if len(raw) > 0 {
			return raw
		}
	}
	return nil
}
