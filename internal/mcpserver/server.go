// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido style tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/joblog"
	"github.com/starford/raido/internal/stylegraph"
	"github.com/starford/raido/internal/styleservice"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp  *server.MCPServer
	svc  *styleservice.Service
	jobs joblog.Log
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *styleservice.Service, jobs joblog.Log) *Server {
	if jobs == nil {
		jobs = joblog.Discard{}
	}
	s := &Server{svc: svc, jobs: jobs}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_styles",
		mcp.WithDescription("List the style catalog of a word document (.doc or .docx)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the document")),
	), s.listStyles)

	s.mcp.AddTool(mcp.NewTool("export_styles",
		mcp.WithDescription("Export the style catalog of a word document as CSV."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the document")),
	), s.exportStyles)

	s.mcp.AddTool(mcp.NewTool("migrate_styles",
		mcp.WithDescription("Copy styles (with their basedOn dependencies) from a source "+
			"document into a target document. The selection follows the style selection "+
			"contract; read it first via the get_selection_contract tool or the "+
			"raido://style-selection resource."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Path to the style source document")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Path to the document to restyle")),
		mcp.WithString("styles", mcp.Required(), mcp.Description("Comma-separated style ids or names, * for all")),
		mcp.WithBoolean("includeDependencies", mcp.Description("Copy basedOn ancestors too (default true)")),
		mcp.WithBoolean("copyNumbering", mcp.Description("Carry the numbering part (default true)")),
	), s.migrateStyles)

	s.mcp.AddTool(mcp.NewTool("clean_styles",
		mcp.WithDescription("Delete the named styles from a word document. The wildcard is not allowed."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the document")),
		mcp.WithString("styles", mcp.Required(), mcp.Description("Comma-separated style ids or names")),
	), s.cleanStyles)

	s.mcp.AddTool(mcp.NewTool("get_selection_contract",
		mcp.WithDescription("Returns the style selection contract. Call this before "+
			"migrating or cleaning styles to write a correct selection."),
	), s.getSelectionContract)

	s.mcp.AddTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List recent style operations recorded by the service."),
	), s.listJobs)

	// Resource: selection contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://style-selection", "Style Selection Contract",
			mcp.WithResourceDescription("How style selections are written for migrate and clean."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSelectionResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	infos, err := s.svc.ListStyles(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(infos, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf strings.Builder
	if err := s.svc.ExportStyles(ctx, path, &buf); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) migrateStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("styles")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := styleservice.ParseSelection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := stylegraph.Options{
		IncludeDependencies: req.GetBool("includeDependencies", true),
		CopyNumbering:       req.GetBool("copyNumbering", true),
	}
	res, err := s.svc.MigrateSelected(ctx, source, target, sel, opts)
	if err != nil {
		_ = s.jobs.Record(joblog.Job{Operation: "migrate", Source: source, Target: target, Status: "error", Detail: err.Error()})
		return mcp.NewToolResultError(err.Error()), nil
	}
	_ = s.jobs.Record(joblog.Job{Operation: "migrate", Source: source, Target: target, Styles: res.Styles, Status: "ok"})
	return mcp.NewToolResultText(fmt.Sprintf("migrated %d styles into %s", res.Styles, res.Path)), nil
}

func (s *Server) cleanStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("styles")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := styleservice.ParseSelection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.CleanStyles(ctx, path, sel)
	if err != nil {
		_ = s.jobs.Record(joblog.Job{Operation: "clean", Target: path, Status: "error", Detail: err.Error()})
		return mcp.NewToolResultError(err.Error()), nil
	}
	_ = s.jobs.Record(joblog.Job{Operation: "clean", Target: path, Removed: res.Removed, Status: "ok"})
	return mcp.NewToolResultText(fmt.Sprintf("removed %d styles from %s", res.Removed, res.Path)), nil
}

func (s *Server) getSelectionContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SelectionContract), nil
}

func (s *Server) readSelectionResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://style-selection",
			MIMEType: "text/markdown",
			Text:     SelectionContract,
		},
	}, nil
}

func (s *Server) listJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.jobs.Recent(20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(jobs) == 0 {
		return mcp.NewToolResultText("no jobs recorded"), nil
	}
	out, _ := json.MarshalIndent(jobs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
