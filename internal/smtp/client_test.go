package smtp

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barhatch/protonmail-mcp-server/internal/config"
)

func newTestClient() *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "me@example.com",
		SMTPPassword: "secret",
	}, logger)
}

func TestSendValidatesBeforeDialing(t *testing.T) {
	c := newTestClient()

	err := c.Send(&Message{Subject: "no recipients", BodyText: "hi"})
	assert.ErrorContains(t, err, "at least one recipient")

	err = c.Send(&Message{To: []string{"a@example.com"}, Subject: "no body"})
	assert.ErrorContains(t, err, "body is required")

	err = c.Send(&Message{
		To:       []string{"a@example.com"},
		Cc:       []string{"not-an-address"},
		Subject:  "bad cc",
		BodyText: "hi",
	})
	assert.ErrorContains(t, err, "invalid recipient address: not-an-address")
}

func TestBuildMessageSinglePart(t *testing.T) {
	c := newTestClient()

	raw, err := c.buildMessage(&Message{
		To:       []string{"a@example.com", "b@example.com"},
		Cc:       []string{"c@example.com"},
		Subject:  "hello",
		BodyText: "plain body",
		ReplyTo:  "replies@example.com",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "From: me@example.com\r\n")
	assert.Contains(t, s, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, s, "Cc: c@example.com\r\n")
	assert.Contains(t, s, "Subject: hello\r\n")
	assert.Contains(t, s, "Reply-To: replies@example.com\r\n")
	assert.Contains(t, s, "Message-ID: <")
	assert.Contains(t, s, "@smtp.example.com>\r\n")
	assert.Contains(t, s, "MIME-Version: 1.0\r\n")
	assert.Contains(t, s, "Content-Type: text/plain; charset=utf-8\r\n\r\nplain body")
	assert.NotContains(t, s, "multipart")
}

func TestBuildMessageHTMLOnly(t *testing.T) {
	c := newTestClient()

	raw, err := c.buildMessage(&Message{
		To:       []string{"a@example.com"},
		Subject:  "hello",
		BodyHTML: "<p>rich</p>",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-Type: text/html; charset=utf-8\r\n\r\n<p>rich</p>")
	assert.NotContains(t, s, "multipart")
}

func TestBuildMessageMultipartAlternative(t *testing.T) {
	c := newTestClient()

	raw, err := c.buildMessage(&Message{
		To:       []string{"a@example.com"},
		Subject:  "hello",
		BodyText: "plain",
		BodyHTML: "<p>rich</p>",
	})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, "Content-Type: multipart/alternative; boundary=")

	// Plain part must come before the HTML part.
	plainIdx := strings.Index(s, "Content-Type: text/plain")
	htmlIdx := strings.Index(s, "Content-Type: text/html")
	require.Greater(t, plainIdx, 0)
	require.Greater(t, htmlIdx, 0)
	assert.Less(t, plainIdx, htmlIdx)
	assert.True(t, strings.HasSuffix(strings.TrimRight(s, "\r\n"), "--"))
}

func TestBuildMessageEncodesSubject(t *testing.T) {
	c := newTestClient()

	raw, err := c.buildMessage(&Message{
		To:       []string{"a@example.com"},
		Subject:  "Grüße aus Köln",
		BodyText: "hi",
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: =?utf-8?q?")
}
