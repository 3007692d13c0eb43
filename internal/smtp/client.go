package smtp

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	netsmtp "net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/internal/util"
)

// Client composes outbound messages and hands them to the SMTP transport.
type Client struct {
	cfg *config.Config
	log *logrus.Entry
}

// Message represents an email to be sent.
type Message struct {
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	BodyText string
	BodyHTML string
	ReplyTo  string
}

// NewClient creates a new transmission client.
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: logger.WithField("component", "smtp"),
	}
}

// Send validates all recipients, assembles the MIME message and dispatches
// it. Validation happens before any network activity.
func (c *Client) Send(msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if msg.BodyText == "" && msg.BodyHTML == "" {
		return fmt.Errorf("message body is required")
	}
	for _, rcpt := range append(append(append([]string{}, msg.To...), msg.Cc...), msg.Bcc...) {
		if !util.IsValidEmail(rcpt) {
			return fmt.Errorf("invalid recipient address: %s", rcpt)
		}
	}

	raw, err := c.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.SMTPHost, c.cfg.SMTPPort)
	var auth netsmtp.Auth
	if c.cfg.SMTPPassword != "" {
		auth = netsmtp.PlainAuth("", c.cfg.SMTPUsername, c.cfg.SMTPPassword, c.cfg.SMTPHost)
	}

	recipients := append(append(append([]string{}, msg.To...), msg.Cc...), msg.Bcc...)
	if err := c.transmit(addr, auth, recipients, raw); err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
		"size":    util.FormatBytes(uint64(len(raw))),
	}).Info("Email sent")
	return nil
}

// SendTest sends a canned message to the account's own address (or an
// explicit recipient) to verify the transport end to end.
func (c *Client) SendTest(to string) error {
	if to == "" {
		to = c.cfg.SMTPUsername
	}
	return c.Send(&Message{
		To:       []string{to},
		Subject:  "Test email",
		BodyText: fmt.Sprintf("This is a test email sent at %s.", time.Now().Format(time.RFC1123)),
	})
}

// transmit drives the SMTP session: implicit TLS when the secure flag is set
// (or port 465), STARTTLS-if-offered otherwise.
func (c *Client) transmit(addr string, auth netsmtp.Auth, recipients []string, raw []byte) error {
	var (
		cl  *netsmtp.Client
		err error
	)
	if c.cfg.SMTPSecure || c.cfg.SMTPPort == 465 {
		conn, dialErr := tls.Dial("tcp", addr, &tls.Config{ServerName: c.cfg.SMTPHost})
		if dialErr != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", dialErr)
		}
		cl, err = netsmtp.NewClient(conn, c.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		cl, err = netsmtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		if ok, _ := cl.Extension("STARTTLS"); ok {
			if err := cl.StartTLS(&tls.Config{ServerName: c.cfg.SMTPHost}); err != nil {
				cl.Close()
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}
	defer cl.Close()

	if auth != nil {
		if ok, _ := cl.Extension("AUTH"); ok {
			if err := cl.Auth(auth); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}
		}
	}

	if err := cl.Mail(c.cfg.SMTPUsername); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err := cl.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := cl.Data()
	if err != nil {
		return fmt.Errorf("failed to send data command: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return cl.Quit()
}

// buildMessage assembles the MIME message. When both bodies are present the
// result is multipart/alternative with the HTML part last.
func (c *Client) buildMessage(msg *Message) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("From: %s\r\n", c.cfg.SMTPUsername))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	if len(msg.Cc) > 0 {
		buf.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(msg.Cc, ", ")))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	if msg.ReplyTo != "" {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", msg.ReplyTo))
	}
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s@%s>\r\n", uuid.NewString(), c.cfg.SMTPHost))
	buf.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case msg.BodyText != "" && msg.BodyHTML != "":
		boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
		buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))
		buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.BodyText)
		buf.WriteString(fmt.Sprintf("\r\n--%s\r\n", boundary))
		buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.BodyHTML)
		buf.WriteString(fmt.Sprintf("\r\n--%s--\r\n", boundary))
	case msg.BodyHTML != "":
		buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.BodyHTML)
	default:
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.BodyText)
	}

	return buf.Bytes(), nil
}
