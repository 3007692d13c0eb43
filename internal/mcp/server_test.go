package mcp

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barhatch/protonmail-mcp-server/internal/analytics"
	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/internal/logging"
	"github.com/barhatch/protonmail-mcp-server/internal/mailbox"
	"github.com/barhatch/protonmail-mcp-server/internal/smtp"
	"github.com/barhatch/protonmail-mcp-server/internal/tools"
	"github.com/barhatch/protonmail-mcp-server/pkg/types"
)

type nullProvider struct{}

func (nullProvider) Ensure() error                  { return nil }
func (nullProvider) Close() error                   { return nil }
func (nullProvider) Status() types.ConnectionStatus {
	return types.ConnectionStatus{State: "connected", Connected: true}
}
func (nullProvider) ListFolders() ([]types.Folder, error)                 { return nil, nil }
func (nullProvider) FolderStatus(string) (uint32, uint32, error)          { return 0, 0, nil }
func (nullProvider) FetchRange(string, uint32, uint32) ([]*types.Message, error) {
	return nil, nil
}
func (nullProvider) FetchByUID(string, uint32) (*types.Message, error) { return nil, nil }
func (nullProvider) Search(string, *imap.SearchCriteria) ([]uint32, error) {
	return nil, nil
}
func (nullProvider) SetFlag(string, uint32, string, bool) error { return nil }
func (nullProvider) Move(string, uint32, string) error          { return nil }
func (nullProvider) Delete(string, uint32) error                { return nil }
func (nullProvider) CreateFolder(string) error                  { return nil }
func (nullProvider) DeleteFolder(string) error                  { return nil }
func (nullProvider) RenameFolder(string, string) error          { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		EnableCache:       true,
		EnableAnalytics:   true,
		MessageCacheSize:  10,
		SearchResultLimit: 100,
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	session, err := mailbox.NewSession(nullProvider{}, cfg, logger)
	require.NoError(t, err)
	registry := tools.NewRegistry(cfg, session, analytics.NewEngine(logger), smtp.NewClient(cfg, logger), logging.NewRecorder(10), logger)
	return NewServer(registry, logger)
}

func request(method string, params map[string]interface{}) map[string]interface{} {
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      float64(1),
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}
	return req
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(request("initialize", nil))
	require.NotNil(t, resp)
	result := resp["result"].(map[string]interface{})
	assert.Equal(t, "2024-11-05", result["protocolVersion"])

	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "protonmail-mcp-server", info["name"])
}

func TestInitializedNotificationHasNoResponse(t *testing.T) {
	s := newTestServer(t)
	assert.Nil(t, s.handleRequest(request("notifications/initialized", nil)))
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(request("tools/list", nil))
	require.NotNil(t, resp)
	result := resp["result"].(map[string]interface{})
	defs := result["tools"].([]map[string]interface{})
	assert.Len(t, defs, 26)
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(request("tools/call", map[string]interface{}{
		"name": "no_such_tool",
	}))
	require.NotNil(t, resp)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, -32601, errObj["code"])
	assert.Contains(t, errObj["message"], "no_such_tool")
}

func TestToolsCallReturnsTextContent(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(request("tools/call", map[string]interface{}{
		"name": "get_connection_status",
	}))
	require.NotNil(t, resp)
	result := resp["result"].(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	var status types.ConnectionStatus
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &status))
	assert.True(t, status.Connected)
}

func TestToolsCallExecutionError(t *testing.T) {
	s := newTestServer(t)

	// Missing required uid surfaces as an internal error object.
	resp := s.handleRequest(request("tools/call", map[string]interface{}{
		"name":      "get_email",
		"arguments": map[string]interface{}{},
	}))
	require.NotNil(t, resp)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, -32603, errObj["code"])
	assert.True(t, strings.Contains(errObj["message"].(string), "uid"))
}

func TestUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(request("bogus/method", nil))
	require.NotNil(t, resp)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, -32601, errObj["code"])
}
