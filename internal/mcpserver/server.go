// Package mcpserver exposes the gateway's capabilities as MCP tools over
// stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Sofia-Luceat-Project/os-browser/internal/catalog"
	"github.com/Sofia-Luceat-Project/os-browser/internal/codec"
	"github.com/Sofia-Luceat-Project/os-browser/internal/listing"
	"github.com/Sofia-Luceat-Project/os-browser/internal/pathres"
	"github.com/Sofia-Luceat-Project/os-browser/internal/search"
	"github.com/Sofia-Luceat-Project/os-browser/internal/settings"
	"github.com/Sofia-Luceat-Project/os-browser/internal/stats"
	"github.com/Sofia-Luceat-Project/os-browser/internal/terminal"
)

// Deps are the components behind the tools.
type Deps struct {
	Resolver  *pathres.Resolver
	Lister    *listing.Lister
	Codec     *codec.Codec
	Engine    *search.Engine
	Catalog   *catalog.Catalog
	Settings  *settings.Store
	Collector *stats.Collector
	Executor  *terminal.Executor
}

// Server wraps the MCP server.
type Server struct {
	mcp   *server.MCPServer
	tools []string
	Deps
}

// New creates the MCP server. run_command is only registered when the
// executor is enabled.
func New(name, version string, d Deps) *Server {
	s := &Server{Deps: d}

	s.mcp = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
	)

	s.addTool(mcp.NewTool("list_directory",
		mcp.WithDescription("List the entries of a directory with size, mtime and extension."),
		mcp.WithString("path", mcp.Description("Absolute or relative directory path; empty for the initial directory")),
	), s.listDirectory)

	s.addTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file as UTF-8 text, transcoding from the detected or given encoding. "+
			"Pass encoding=hex for a hex dump."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
		mcp.WithString("encoding", mcp.Description("Encoding override such as Shift_JIS, or hex")),
	), s.readFile)

	s.addTool(mcp.NewTool("search",
		mcp.WithDescription("Search one directory and the app catalog. Prefixes: file:, folder:, app:, or a leading dot for an extension."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
		mcp.WithString("path", mcp.Description("Directory to scan; empty for the initial directory")),
	), s.search)

	s.addTool(mcp.NewTool("list_apps",
		mcp.WithDescription("List catalog applications, optionally only those that open a file extension."),
		mcp.WithString("extension", mcp.Description("Extension with leading dot, e.g. .png")),
	), s.listApps)

	s.addTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Return the stored settings document of an application."),
		mcp.WithString("app_id", mcp.Required(), mcp.Description("Application id")),
	), s.getSettings)

	s.addTool(mcp.NewTool("system_stats",
		mcp.WithDescription("Current CPU, memory and host information."),
	), s.systemStats)

	if d.Executor != nil && d.Executor.Enabled() {
		s.addTool(mcp.NewTool("run_command",
			mcp.WithDescription("Run a shell command on the host. No timeout or output limit is applied."),
			mcp.WithString("command", mcp.Required(), mcp.Description("Command line")),
			mcp.WithString("cwd", mcp.Description("Working directory")),
		), s.runCommand)
	}

	return s
}

func (s *Server) addTool(tool mcp.Tool, h server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, h)
	s.tools = append(s.tools, tool.Name)
}

// ToolNames lists the registered tools in registration order.
func (s *Server) ToolNames() []string {
	return slices.Clone(s.tools)
}

// optString returns an optional string argument, "" when absent.
func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := s.Resolver.Resolve(optString(req, "path"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.Lister.List(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(l)
}

func (s *Server) readFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.Resolver.Resolve(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hint := optString(req, "encoding")
	if hint == codec.HexMode {
		dump, err := s.Codec.ReadHex(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(dump), nil
	}
	text, err := s.Codec.ReadText(p, hint)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text.Content), nil
}

func (s *Server) search(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := s.Resolver.Resolve(optString(req, "path"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.Engine.Search(query, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listApps(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if ext := optString(req, "extension"); ext != "" {
		return jsonResult(s.Catalog.ForExtension(ext))
	}
	return jsonResult(s.Catalog.List())
}

func (s *Server) getSettings(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appID, err := req.RequireString("app_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.Settings.Get(appID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) systemStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.Collector.Snapshot(ctx))
}

func (s *Server) runCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.Executor.Run(ctx, command, optString(req, "cwd"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(out)
}
