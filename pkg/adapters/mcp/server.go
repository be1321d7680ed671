// Package mcp exposes the session driver as Model Context Protocol tools, so an
// agent can run a survey on behalf of a person.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/logging"
	intakehttp "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/runner"
	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource holding the question catalog.
const CatalogURI = "intake://catalog"

// SessionArgs names one session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// AnswerArgs carries one answer for a session.
type AnswerArgs struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

// PromptResult aligns with the HTTP session response.
type PromptResult struct {
	SessionID string  `json:"session_id" jsonschema_description:"The session identifier"`
	Prompt    *string `json:"prompt" jsonschema_description:"The question awaiting an answer, null once complete"`
}

// AnswerResult is the envelope of one submitted answer.
type AnswerResult struct {
	SessionID string           `json:"session_id" jsonschema_description:"The session identifier"`
	Done      bool             `json:"done" jsonschema_description:"True once the survey has ended"`
	Message   string           `json:"message" jsonschema_description:"Text to show the person"`
	Data      *domain.Document `json:"data" jsonschema_description:"Compiled data, present only when done"`
	Skipped   *string          `json:"skipped" jsonschema_description:"ID of a question skipped after too many attempts"`
}

// StatusResult reports where a session stands.
type StatusResult struct {
	SessionID string        `json:"session_id"`
	Status    domain.Status `json:"status"`
}

// SessionsResult lists session IDs.
type SessionsResult struct {
	Sessions []string `json:"sessions"`
}

// Server wraps a session driver and exposes it as an MCP server.
type Server struct {
	driver    ports.SessionDriver
	catalog   *catalog.Catalog
	logger    *slog.Logger
	maxInput  int
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog exposes c as the catalog resource.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInput overrides the answer size limit.
func WithMaxInput(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(driver ports.SessionDriver, opts ...Option) *Server {
	s := &Server{
		driver:    driver,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("intake-mcp", strings.TrimSpace(intake.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	return intakehttp.Serve(ctx, fmt.Sprintf(":%d", port), mux, s.logger)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Start a new insurance survey and return its first question."),
		mcp.WithString("session_id", mcp.Description("Optional ID to start the session under")),
		mcp.WithOutputSchema[PromptResult](),
	), mcp.NewStructuredToolHandler(s.handleCreateSession))

	s.mcpServer.AddTool(mcp.NewTool("get_prompt",
		mcp.WithDescription("Get the question a session is waiting on."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[PromptResult](),
	), mcp.NewStructuredToolHandler(s.handleGetPrompt))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Submit the person's answer to the current question, verbatim."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The answer as the person wrote it")),
		mcp.WithOutputSchema[AnswerResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmitAnswer))

	s.mcpServer.AddTool(mcp.NewTool("export_data",
		mcp.WithDescription("Compile what a session collected so far."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[domain.Document](),
	), mcp.NewStructuredToolHandler(s.handleExportData))

	s.mcpServer.AddTool(mcp.NewTool("session_status",
		mcp.WithDescription("Report whether a session is active, awaiting a stop confirmation or complete."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[StatusResult](),
	), mcp.NewStructuredToolHandler(s.handleStatus))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List stored survey sessions."),
		mcp.WithOutputSchema[SessionsResult](),
	), mcp.NewStructuredToolHandler(s.handleListSessions))
}

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (PromptResult, error) {
	if args.SessionID != "" {
		starter, ok := s.driver.(runner.SessionStarter)
		if !ok {
			return PromptResult{}, runner.ErrCannotStart
		}
		prompt, err := starter.StartSession(ctx, args.SessionID)
		if err != nil {
			return PromptResult{}, fmt.Errorf("create session failed: %w", err)
		}
		return PromptResult{SessionID: args.SessionID, Prompt: &prompt}, nil
	}

	id, err := s.driver.CreateSession(ctx)
	if err != nil {
		return PromptResult{}, fmt.Errorf("create session failed: %w", err)
	}
	return s.handleGetPrompt(ctx, request, SessionArgs{SessionID: id})
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (PromptResult, error) {
	prompt, ok, err := s.driver.CurrentPrompt(ctx, args.SessionID)
	if err != nil {
		return PromptResult{}, fmt.Errorf("get prompt failed: %w", err)
	}
	res := PromptResult{SessionID: args.SessionID}
	if ok {
		res.Prompt = &prompt
	}
	return res, nil
}

func (s *Server) handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest, args AnswerArgs) (AnswerResult, error) {
	clean, err := runner.SanitizeAnswer(args.Input, s.maxInput)
	if err != nil {
		s.logger.Warn("MCP submit_answer: input rejected", "err", err, "size", len(args.Input))
		return AnswerResult{}, fmt.Errorf("input rejected: %w", err)
	}

	env, err := s.driver.SubmitAnswer(ctx, args.SessionID, clean)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("submit answer failed: %w", err)
	}
	return AnswerResult{
		SessionID: args.SessionID,
		Done:      env.Done,
		Message:   env.Message,
		Data:      env.Data,
		Skipped:   env.Skipped,
	}, nil
}

func (s *Server) handleExportData(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (domain.Document, error) {
	doc, err := s.driver.ExportCompiledData(ctx, args.SessionID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("export data failed: %w", err)
	}
	return doc, nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (StatusResult, error) {
	status, err := s.driver.Status(ctx, args.SessionID)
	if err != nil {
		return StatusResult{}, fmt.Errorf("session status failed: %w", err)
	}
	return StatusResult{SessionID: args.SessionID, Status: status}, nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest, args struct{}) (SessionsResult, error) {
	ids, err := s.driver.ListSessions(ctx)
	if err != nil {
		return SessionsResult{}, fmt.Errorf("list sessions failed: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return SessionsResult{Sessions: ids}, nil
}

func (s *Server) registerResources() {
	if s.catalog == nil {
		return
	}
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Question Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := sonic.MarshalString(s.catalog.ToFile())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}
