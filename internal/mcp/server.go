// Package mcp exposes the ticket API as Model Context Protocol tools so an
// agent can file, list and resolve support tickets.
package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var createToolDef = mcp.NewTool("ticket_create",
	mcp.WithDescription("File a customer support ticket. The service classifies it (category, priority, summary, routing queue) before storing it."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the person asking for help"),
	),
	mcp.WithString("email",
		mcp.Required(),
		mcp.Description("Contact email of the requester"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The support request in the requester's own words"),
	),
)

var listToolDef = mcp.NewTool("ticket_list",
	mcp.WithDescription("List every support ticket, newest first, with its classification and status."),
)

var updateStatusToolDef = mcp.NewTool("ticket_update_status",
	mcp.WithDescription("Change the status of a support ticket."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Ticket identifier"),
	),
	mcp.WithString("status",
		mcp.Required(),
		mcp.Enum("new", "resolved"),
		mcp.Description("New status"),
	),
)

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"ticket_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"ticket_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"ticket_update_status": {
		def:     updateStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateStatus },
	},
}

// AllToolNames returns every tool name in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewServer creates an MCP server with the ticket tools registered.
func NewServer(api TicketAPI, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"support-intake",
		version,
		server.WithToolCapabilities(false),
	)
	h := NewHandlers(api)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the tools over stdio until stdin closes.
func Run(api TicketAPI, version string) error {
	return server.ServeStdio(NewServer(api, version))
}
