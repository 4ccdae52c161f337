// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes localref tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/localref/internal/apperr"
	"github.com/starford/localref/internal/attach"
	"github.com/starford/localref/internal/editor"
	"github.com/starford/localref/internal/index"
	"github.com/starford/localref/internal/insertsvc"
	"github.com/starford/localref/internal/models"
	"github.com/starford/localref/internal/picker"
	"github.com/starford/localref/internal/refparse"
	"github.com/starford/localref/internal/storage"
)

// FormatResourceURI names the reference format resource.
const FormatResourceURI = "localref://reference-format"

// Deps are the collaborators the tools use. History and DefaultDir are
// optional.
type Deps struct {
	Service    *insertsvc.Service
	Store      storage.Provider
	History    index.History
	DefaultDir func() string
}

// Server wraps the MCP server with localref tools.
type Server struct {
	mcp  *server.MCPServer
	deps Deps
}

// New creates a new MCP server with all localref tools registered.
func New(deps Deps, version string) *Server {
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"localref",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("insert_local_file",
		mcp.WithDescription("Copy a local file into the vault and insert a link or embed to the copy into a Markdown document. "+
			"Images, audio, video and PDF files are embedded; everything else is linked."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the file to insert (relative paths use the default directory)")),
		mcp.WithString("document", mcp.Required(), mcp.Description("Vault-relative path of the referencing document (e.g. notes/day.md)")),
		mcp.WithBoolean("apply", mcp.Description("Append the reference to the document (default true); false only returns it")),
	), s.insertLocalFile)

	s.mcp.AddTool(mcp.NewTool("insert_data",
		mcp.WithDescription("Store base64 or data-URI content in the vault and reference it from a document."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64 content or a data: URI")),
		mcp.WithString("filename", mcp.Description("File name for the copy; derived from the data URI type when omitted")),
		mcp.WithString("document", mcp.Description("Vault-relative path of the referencing document")),
		mcp.WithBoolean("apply", mcp.Description("Append the reference to the document (default true)")),
	), s.insertData)

	s.mcp.AddTool(mcp.NewTool("classify_file",
		mcp.WithDescription("Report whether a file name would be embedded or linked."),
		mcp.WithString("name", mcp.Required(), mcp.Description("File name or path")),
	), s.classifyFile)

	s.mcp.AddTool(mcp.NewTool("list_insertions",
		mcp.WithDescription("List recorded insertions, newest first."),
		mcp.WithString("document", mcp.Description("Only insertions into this document")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 50)")),
	), s.listInsertions)

	s.mcp.AddTool(mcp.NewTool("list_references",
		mcp.WithDescription("List the links and embeds in a document and whether each target exists in the vault."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Vault-relative document path")),
	), s.listReferences)

	s.mcp.AddTool(mcp.NewTool("get_reference_format",
		mcp.WithDescription("Returns the reference format contract: how files are named, placed and referenced."),
	), s.getReferenceFormat)

	s.mcp.AddResource(
		mcp.NewResource(FormatResourceURI, "Reference Format",
			mcp.WithResourceDescription("How localref names copied files and formats links and embeds."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) sink(document string, apply bool) editor.Sink {
	if !apply || document == "" {
		return &editor.Capture{}
	}
	return &editor.Document{Store: s.deps.Store, Path: document, Selection: editor.EndOfDocument}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) insertLocalFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	document, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dir := ""
	if s.deps.DefaultDir != nil {
		dir = s.deps.DefaultDir()
	}
	p := picker.Static{Paths: []string{path}, DefaultDir: dir}
	res, err := s.deps.Service.Insert(ctx, p, document, s.sink(document, req.GetBool("apply", true)))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error inserting file: %v", err)), nil
	}
	if res == nil {
		return mcp.NewToolResultText(apperr.ErrNoSelection.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) classifyFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ext := models.NewSourceFile(name).Ext
	class := attach.Classify(ext)
	return jsonResult(map[string]any{
		"name":       name,
		"ext":        ext,
		"class":      class.String(),
		"embeddable": class == attach.Embeddable,
	})
}

func (s *Server) listInsertions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.History == nil {
		return mcp.NewToolResultError("history is disabled"), nil
	}
	items, total, err := s.deps.History.ListInsertions(req.GetInt("limit", 0), 0, req.GetString("document", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if items == nil {
		items = []models.Insertion{}
	}
	return jsonResult(map[string]any{"insertions": items, "total": total})
}

func (s *Server) listReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	document, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := refparse.Scan(ctx, s.deps.Store, document)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot scan %s: %v", document, err)), nil
	}
	return jsonResult(rep)
}

func (s *Server) getReferenceFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ReferenceFormatContract()), nil
}

func (s *Server) readFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatResourceURI,
			MIMEType: "text/markdown",
			Text:     ReferenceFormatContract(),
		},
	}, nil
}
