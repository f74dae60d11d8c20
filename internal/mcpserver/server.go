// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes note-graph search and lookup tools for LLM integration via stdio
// transport. The tools run through the same search service as the HTTP
// API, so an agent's note lookups honor the same scoping and scoring.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/brodal/ratatosk/internal/search"
)

// Server wraps the MCP server with Ratatosk tools.
type Server struct {
	mcp *server.MCPServer
	svc *search.Service
}

// New creates a new MCP server with all Ratatosk tools registered.
func New(svc *search.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ratatosk",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search the note graph. Supports full-text terms, quoted phrases, "+
			"#label and ~relation predicates, OR/NOT, parentheses, and orderBy/limit directives. "+
			"Read the query syntax first via the ratatosk://query-syntax resource."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("ancestorNoteId", mcp.Description("Restrict results to the subtree of this note")),
		mcp.WithString("limit", mcp.Description("Maximum number of results (default 20)")),
		mcp.WithString("includeArchivedNotes", mcp.Description("Set to 'true' to include archived notes")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note: title, type, content, and attributes."),
		mcp.WithString("noteId", mcp.Required(), mcp.Description("ID of the note to read")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("note_children",
		mcp.WithDescription("List the direct children of a note in tree order."),
		mcp.WithString("noteId", mcp.Required(), mcp.Description("ID of the parent note")),
	), s.noteChildren)

	// Resource: query syntax reference.
	s.mcp.AddResource(
		mcp.NewResource("ratatosk://query-syntax", "Search Query Syntax",
			mcp.WithResourceDescription("Reference for the Ratatosk search query language."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuerySyntaxResource,
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

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := search.Options{Limit: 20}
	if v, err := req.RequireString("ancestorNoteId"); err == nil {
		opts.AncestorNoteID = v
	}
	if v, err := req.RequireString("limit"); err == nil {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v, err := req.RequireString("includeArchivedNotes"); err == nil {
		opts.IncludeArchivedNotes = v == "true"
	}

	sc, err := s.svc.NewContext(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.FindResultsWithQuery(ctx, query, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sc.HasError() {
		return mcp.NewToolResultError(sc.Err()), nil
	}

	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type hit struct {
		NoteID string  `json:"noteId"`
		Title  string  `json:"title"`
		Path   string  `json:"path"`
		Score  float64 `json:"score"`
	}
	hits := make([]hit, 0, len(results))
	for _, r := range results {
		title := ""
		if n := snap.GetNote(r.NoteID); n != nil {
			title = n.Title
		}
		hits = append(hits, hit{
			NoteID: r.NoteID,
			Title:  title,
			Path:   snap.TitlePath(r.NotePathArray),
			Score:  r.Score,
		})
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("noteId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := snap.GetNote(noteID)
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", noteID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\ntype: %s (%s)\n", n.Title, n.Type, n.Mime)
	attrs := snap.OwnedAttributes(noteID)
	if len(attrs) > 0 {
		b.WriteString("\nattributes:\n")
		for _, a := range attrs {
			fmt.Fprintf(&b, "- %s %s=%s\n", a.Type, a.Name, a.Value)
		}
	}
	if n.Content != "" {
		b.WriteString("\n")
		b.WriteString(n.Content)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) noteChildren(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := req.RequireString("noteId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if snap.GetNote(noteID) == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", noteID)), nil
	}

	var lines []string
	for _, br := range snap.ChildBranches(noteID) {
		child := snap.GetNote(br.NoteID)
		if child == nil {
			continue
		}
		title := child.Title
		if br.Prefix != "" {
			title = br.Prefix + " " + title
		}
		lines = append(lines, fmt.Sprintf("%s\t%s", br.NoteID, title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no children"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readQuerySyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ratatosk://query-syntax",
			MIMEType: "text/markdown",
			Text:     QuerySyntaxReference,
		},
	}, nil
}
