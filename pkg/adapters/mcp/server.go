package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tapevm"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/aretw0/tapevm/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/tomb.v2"
)

// ExecuteResult aligns with the HTTP response and provides a unified structure across adapters.
type ExecuteResult struct {
	ProgramCode     string         `json:"program_code" jsonschema_description:"Program that was run (from the token when resuming)"`
	Stdout          string         `json:"stdout" jsonschema_description:"Accumulated output, or the input diagnostic when the value was rejected"`
	SerializedState string         `json:"serialized_state" jsonschema_description:"Opaque token to pass back on the next call"`
	ExpectingInput  bool           `json:"expecting_input" jsonschema_description:"True when the program waits for one value"`
	Outcome         domain.Outcome `json:"outcome" jsonschema_description:"finished, suspended or input_rejected"`
	Steps           uint64         `json:"steps" jsonschema_description:"Instructions executed by this call"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Executor
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Executor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("tapevm-mcp", tapevm.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEHandler returns the /sse and /message endpoints for baseURL.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	return mux
}

// ServeSSE serves SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string, baseURL string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.SSEHandler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var t tomb.Tomb
	t.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	t.Go(func() error {
		select {
		case <-ctx.Done():
		case <-t.Dying():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})

	return t.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: execute_program
	executeTool := mcp.NewTool("execute_program",
		mcp.WithDescription("Run a tape program, or resume a suspended one with a single input value. "+
			"When expecting_input is true, call again with serialized_state and stdin."),
		mcp.WithString("program_code", mcp.Description("Program text using only > < + - . , [ ] (ignored when serialized_state is given)")),
		mcp.WithString("serialized_state", mcp.Description("Token returned by the previous call")),
		mcp.WithString("stdin", mcp.Description("Value for the pending ',': an integer 0..255 or one character")),
		mcp.WithOutputSchema[ExecuteResult](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecute))

	// TOOL: validate_program
	s.mcpServer.AddTool(mcp.NewTool("validate_program",
		mcp.WithDescription("Check that a program is non-empty and uses only the eight instructions."),
		mcp.WithString("program_code", mcp.Required(), mcp.Description("Program text")),
	), s.handleValidate)
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ExecuteResult, error) {
	program, _ := args["program_code"].(string)
	token, _ := args["serialized_state"].(string)
	if program == "" && token == "" {
		return ExecuteResult{}, errors.New("program_code or serialized_state is required")
	}

	req := ports.Request{Program: program, PriorState: token}
	if raw, ok := args["stdin"].(string); ok {
		if err := runner.CheckInput(raw); err != nil {
			s.logger.Warn("MCP Execute: Input rejected", "error", err, "size", len(raw))
			return ExecuteResult{}, fmt.Errorf("input rejected: %w", err)
		}
		req.Input = &raw
	}

	resp, err := s.engine.Execute(ctx, req)
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("%s: %w", domain.Kind(err), err)
	}

	return ExecuteResult{
		ProgramCode:     resp.Program,
		Stdout:          resp.Output,
		SerializedState: resp.NextState,
		ExpectingInput:  resp.AwaitingInput,
		Outcome:         resp.Outcome,
		Steps:           resp.Steps,
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	program, err := request.RequireString("program_code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.Validate(program); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("valid"), nil
}

const instructionSet = `# Instruction set

| Symbol | Effect |
|---|---|
| > | move the data pointer right (fault at the last cell) |
| < | move the data pointer left (fault at cell 0) |
| + | increment the current cell, 255 wraps to 0 |
| - | decrement the current cell, 0 wraps to 255 |
| . | append the current cell as one character to stdout |
| , | suspend until a value (0..255 or one character) is supplied |
| [ | if the cell is 0, jump past the matching ] |
| ] | if the cell is not 0, jump back past the matching [ |

The tape has 30000 cells, all starting at 0.
`

func (s *Server) registerResources() {
	// EXPOSE: tapevm://instructions
	s.mcpServer.AddResource(mcp.NewResource("tapevm://instructions", "Instruction Set",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tapevm://instructions",
				MIMEType: "text/markdown",
				Text:     instructionSet,
			},
		}, nil
	})
}
