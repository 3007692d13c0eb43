package tools

import (
	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/analytics"
	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/internal/logging"
	"github.com/barhatch/protonmail-mcp-server/internal/mailbox"
	"github.com/barhatch/protonmail-mcp-server/internal/smtp"
)

// Tool represents an MCP tool
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(params map[string]interface{}) (interface{}, error)
}

// deps bundles the collaborators shared by every tool.
type deps struct {
	cfg      *config.Config
	session  *mailbox.Session
	engine   *analytics.Engine
	sender   *smtp.Client
	recorder *logging.Recorder
	logger   *logrus.Logger
}

// Registry manages MCP tools
type Registry struct {
	deps  deps
	tools map[string]Tool
}

// NewRegistry creates a tool registry with every tool registered.
func NewRegistry(cfg *config.Config, session *mailbox.Session, engine *analytics.Engine, sender *smtp.Client, recorder *logging.Recorder, logger *logrus.Logger) *Registry {
	reg := &Registry{
		deps: deps{
			cfg:      cfg,
			session:  session,
			engine:   engine,
			sender:   sender,
			recorder: recorder,
			logger:   logger,
		},
		tools: make(map[string]Tool),
	}
	reg.registerTools()
	return reg
}

// registerTools registers all available tools
func (r *Registry) registerTools() {
	d := r.deps
	toolList := []Tool{
		&SendEmailTool{d},
		&SendTestEmailTool{d},
		&ListEmailsTool{d},
		&GetEmailTool{d},
		&SearchEmailsTool{d},
		&ListFoldersTool{d},
		&SyncFoldersTool{d},
		&CreateFolderTool{d},
		&DeleteFolderTool{d},
		&RenameFolderTool{d},
		&MarkEmailReadTool{d},
		&StarEmailTool{d},
		&MoveEmailTool{d},
		&BulkMoveEmailsTool{d},
		&AddLabelTool{d},
		&BulkAddLabelTool{d},
		&DeleteEmailTool{d},
		&BulkDeleteEmailsTool{d},
		&GetEmailStatsTool{d},
		&GetEmailAnalyticsTool{d},
		&GetContactsTool{d},
		&GetVolumeTrendsTool{d},
		&GetConnectionStatusTool{d},
		&SyncEmailsTool{d},
		&ClearCacheTool{d},
		&GetLogsTool{d},
	}

	for _, tool := range toolList {
		r.tools[tool.Name()] = tool
		r.deps.logger.WithField("tool", tool.Name()).Debug("Registered tool")
	}
	r.deps.logger.WithField("count", len(r.tools)).Info("Registered tools")
}

// GetTool returns a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// ListTools returns all registered tools
func (r *Registry) ListTools() []Tool {
	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	return tools
}

// GetToolDefinitions returns tool definitions for MCP
func (r *Registry) GetToolDefinitions() []map[string]interface{} {
	definitions := make([]map[string]interface{}, 0, len(r.tools))
	for _, tool := range r.tools {
		definitions = append(definitions, map[string]interface{}{
			"name":        tool.Name(),
			"description": tool.Description(),
			"inputSchema": tool.InputSchema(),
		})
	}
	return definitions
}
