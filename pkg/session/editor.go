package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Code-Monger/InkPilot/pkg/finding"
	"github.com/Code-Monger/InkPilot/pkg/highlight"
	"github.com/Code-Monger/InkPilot/pkg/stats"
)

// Projects loads and saves the documents sessions are opened from.
type Projects interface {
	LoadContent(userID, projectID string) (title, content string, err error)
	SaveContent(userID, projectID, content string) error
}

// Editor serves the editor tool and the session resources.
type Editor struct {
	store    *Store
	projects Projects
}

// NewEditor creates an editor over store. projects may be nil, in which
// case the open-from-project and save operations are unavailable.
func NewEditor(store *Store, projects Projects) *Editor {
	return &Editor{store: store, projects: projects}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// HandleEditor is the handler function for the editor tool
func (e *Editor) HandleEditor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arguments := request.Params.Arguments

	// Extract operation
	operation, ok := arguments["operation"].(string)
	if !ok {
		return nil, fmt.Errorf("operation must be a string")
	}

	if operation == "list" {
		return textResult(formatList(e.store.List())), nil
	}
	if operation == "open" {
		return e.open(arguments)
	}

	// Every other operation works on an existing session
	sessionID, ok := arguments["session_id"].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("session_id must be a non-empty string")
	}

	switch operation {
	case "get":
		sess, err := e.store.Get(sessionID)
		if err != nil {
			return nil, err
		}
		return textResult(formatSession(sess)), nil

	case "edit":
		text, ok := arguments["text"].(string)
		if !ok {
			return nil, fmt.Errorf("text must be a string")
		}
		sess, err := e.store.SetText(sessionID, text)
		if err != nil {
			return nil, err
		}
		resultText := "Document updated\n\n"
		resultText += fmt.Sprintf("Revision: %d\n", sess.Document.Revision)
		resultText += "Findings cleared; run analyze to refresh them.\n"
		return textResult(resultText), nil

	case "highlights":
		format, _ := arguments["format"].(string)
		sess, err := e.store.Get(sessionID)
		if err != nil {
			return nil, err
		}
		segments := highlight.Assemble(sess.Document.Text, sess.Findings())
		out, err := renderSegments(segments, sess, format)
		if err != nil {
			return nil, err
		}
		return textResult(out), nil

	case "apply":
		findingID, ok := arguments["finding_id"].(string)
		if !ok || findingID == "" {
			return nil, fmt.Errorf("finding_id must be a non-empty string")
		}
		var kind finding.Kind
		if kindStr, ok := arguments["kind"].(string); ok && kindStr != "" {
			parsed, err := finding.ParseKind(kindStr)
			if err != nil {
				return nil, err
			}
			kind = parsed
		}
		// An absent replacement means the first suggestion; "" deletes
		var replacement *string
		if r, ok := arguments["replacement"].(string); ok {
			replacement = &r
		}

		sess, err := e.store.ApplySuggestion(sessionID, kind, findingID, replacement)
		if err != nil {
			return nil, err
		}
		resultText := fmt.Sprintf("Applied %s\n\n", findingID)
		resultText += fmt.Sprintf("Revision: %d\n", sess.Document.Revision)
		resultText += "All findings cleared; run analyze to refresh them.\n\n"
		resultText += sess.Document.Text
		return textResult(resultText), nil

	case "save":
		if e.projects == nil {
			return nil, fmt.Errorf("project storage is not configured")
		}
		sess, err := e.store.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if sess.ProjectID == "" {
			return nil, fmt.Errorf("session %s is not bound to a project", sessionID)
		}
		if err := e.projects.SaveContent(sess.UserID, sess.ProjectID, sess.Document.Text); err != nil {
			return nil, fmt.Errorf("failed to save project: %w", err)
		}
		log.Printf("[Editor] Saved session %s to project %s", sessionID, sess.ProjectID)
		return textResult(fmt.Sprintf("Saved revision %d to project %s\n", sess.Document.Revision, sess.ProjectID)), nil

	case "close":
		if err := e.store.Close(sessionID); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Session %s closed\n", sessionID)), nil

	default:
		return nil, fmt.Errorf("unsupported operation: %s", operation)
	}
}

func (e *Editor) open(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments["session_id"].(string)
	userID, _ := arguments["user_id"].(string)
	projectID, _ := arguments["project_id"].(string)
	title, _ := arguments["title"].(string)
	text, hasText := arguments["text"].(string)

	if projectID != "" && !hasText {
		if e.projects == nil {
			return nil, fmt.Errorf("project storage is not configured")
		}
		projectTitle, content, err := e.projects.LoadContent(userID, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load project: %w", err)
		}
		text = content
		if title == "" {
			title = projectTitle
		}
	} else if !hasText {
		return nil, fmt.Errorf("text or project_id is required")
	}

	sess := e.store.Open(sessionID, userID, projectID, title, text)

	resultText := "Session opened\n\n"
	resultText += fmt.Sprintf("Session ID: %s\n", sess.ID)
	if sess.ProjectID != "" {
		resultText += fmt.Sprintf("Project: %s\n", sess.ProjectID)
	}
	resultText += fmt.Sprintf("Length: %d bytes\n", sess.Document.Len())
	return textResult(resultText), nil
}

func renderSegments(segments []highlight.Segment, sess Session, format string) (string, error) {
	switch format {
	case "", "plain":
		var sb strings.Builder
		sb.WriteString(highlight.RenderPlain(segments))
		sb.WriteString("\n\n")
		sb.WriteString(formatRegions(segments, sess))
		return sb.String(), nil
	case "html":
		return highlight.RenderHTML(segments), nil
	case "json":
		data, err := json.MarshalIndent(segments, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal segments: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatRegions(segments []highlight.Segment, sess Session) string {
	regions := highlight.Regions(segments)
	if len(regions) == 0 {
		return "No highlights.\n"
	}
	result := fmt.Sprintf("Highlights (%d):\n", len(regions))
	for i, r := range regions {
		result += fmt.Sprintf("%d. [%s] %s %q at %s", i+1, r.FindingID, r.Category, sess.Document.Text[r.Start:r.End], r.Range())
		if f, ok := sess.Lookup(r.Kind, r.FindingID); ok {
			if f.Message != "" {
				result += fmt.Sprintf(": %s", f.Message)
			}
			if len(f.Replacements) > 0 {
				result += fmt.Sprintf(" -> %s", strings.Join(f.Replacements, " | "))
			}
		}
		result += "\n"
	}
	return result
}

func formatSession(sess Session) string {
	result := "Session Information\n\n"
	result += fmt.Sprintf("Session ID: %s\n", sess.ID)
	if sess.UserID != "" {
		result += fmt.Sprintf("User: %s\n", sess.UserID)
	}
	if sess.ProjectID != "" {
		result += fmt.Sprintf("Project: %s\n", sess.ProjectID)
	}
	if sess.Title != "" {
		result += fmt.Sprintf("Title: %s\n", sess.Title)
	}
	result += fmt.Sprintf("Revision: %d\n", sess.Document.Revision)
	result += fmt.Sprintf("Opened: %s\n", sess.OpenedAt.Format(time.RFC3339))
	result += fmt.Sprintf("Last accessed: %s\n", sess.LastAccess.Format(time.RFC3339))
	result += fmt.Sprintf("Grammar findings: %d\n", len(sess.Grammar))
	result += fmt.Sprintf("Style findings: %d\n\n", len(sess.Style))

	for _, f := range sess.Findings() {
		result += formatFinding(f)
	}
	result += "\nText:\n" + sess.Document.Text + "\n"
	return result
}

func formatFinding(f finding.Finding) string {
	line := fmt.Sprintf("- %s (%s/%s) %q", f.ID, f.Kind, f.Category, f.ClaimedText)
	if f.Range != nil {
		line += " at " + f.Range.String()
	}
	if f.Message != "" {
		line += ": " + f.Message
	}
	return line + "\n"
}

func formatList(sessions []Session) string {
	result := fmt.Sprintf("Active Sessions (%d)\n\n", len(sessions))
	for i, sess := range sessions {
		result += fmt.Sprintf("%d. Session ID: %s\n", i+1, sess.ID)
		if sess.Title != "" {
			result += fmt.Sprintf("   Title: %s\n", sess.Title)
		}
		result += fmt.Sprintf("   Revision: %d, %d bytes\n", sess.Document.Revision, sess.Document.Len())
		result += fmt.Sprintf("   Findings: %d grammar, %d style\n", len(sess.Grammar), len(sess.Style))
		result += fmt.Sprintf("   Last accessed: %s\n\n", sess.LastAccess.Format(time.RFC3339))
	}
	return result
}

// HandleSessionResource serves session://list and session://{session_id}.
func (e *Editor) HandleSessionResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	sessionID := strings.TrimPrefix(uri, "session://")

	var text string
	if sessionID == "" || sessionID == "list" {
		text = formatList(e.store.List())
	} else {
		sess, err := e.store.Get(sessionID)
		if err != nil {
			return nil, err
		}
		text = formatSession(sess)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

// RegisterEditor registers the editor tool and the session resources with the MCP server
func RegisterEditor(mcpServer *server.MCPServer, editor *Editor) {
	editorTool := mcp.NewTool("editor",
		mcp.WithDescription("Opens documents for editing, shows highlighted findings and applies suggestions"),
		mcp.WithString("operation",
			mcp.Description("Operation to perform: 'open', 'get', 'edit', 'highlights', 'apply', 'save', 'close' or 'list'"),
			mcp.Required(),
		),
		mcp.WithString("session_id",
			mcp.Description("Session ID (required for every operation except 'open' and 'list')"),
		),
		mcp.WithString("user_id",
			mcp.Description("Owner of the session (for 'open')"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project to load the document from (for 'open')"),
		),
		mcp.WithString("title",
			mcp.Description("Document title (for 'open')"),
		),
		mcp.WithString("text",
			mcp.Description("Document text (for 'open' and 'edit')"),
		),
		mcp.WithString("finding_id",
			mcp.Description("Finding to apply (for 'apply')"),
		),
		mcp.WithString("kind",
			mcp.Description("Kind of the finding to apply: 'grammar' or 'style' (for 'apply'; optional, IDs may also be written as 'style:1')"),
		),
		mcp.WithString("replacement",
			mcp.Description("Replacement text (for 'apply'; omit to use the first suggestion, an empty string deletes the span)"),
		),
		mcp.WithString("format",
			mcp.Description("Highlight format: 'plain', 'html' or 'json' (for 'highlights')"),
		),
	)

	mcpServer.AddTool(editorTool, stats.WrapHandler("editor", editor.HandleEditor))

	mcpServer.AddResource(
		mcp.NewResource(
			"session://list",
			"Open Editor Sessions",
			mcp.WithMIMEType("text/plain"),
		),
		editor.HandleSessionResource,
	)

	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"session://{session_id}",
			"Editor Session",
			mcp.WithTemplateMIMEType("text/plain"),
			mcp.WithTemplateDescription("Document, revision and findings of an open editor session"),
		),
		editor.HandleSessionResource,
	)

	log.Printf("[Editor] Registered editor tool and session resources")
}
