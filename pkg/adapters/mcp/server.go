package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/internal/dto"
	"github.com/aretw0/sideeye/internal/logging"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// trialsURI is the resource listing stored trial keys.
const trialsURI = "sideeye://trials"

// TrialResponse is the structured result of the trial tools.
type TrialResponse struct {
	Key           string        `json:"key" jsonschema_description:"Storage key of the trial"`
	Trial         *domain.Trial `json:"trial" jsonschema_description:"The trial record with its reconstructed saccades"`
	FixationsUsed int           `json:"fixations_used" jsonschema_description:"Number of fixations that are not excluded"`
	Regressions   int           `json:"regressions" jsonschema_description:"Number of saccades classified as regressions"`
}

// KeysResponse lists stored trial keys.
type KeysResponse struct {
	Keys []string `json:"keys" jsonschema_description:"Stored trial keys"`
}

// Server wraps an Analyzer and exposes it as an MCP Server.
type Server struct {
	analyzer  ports.Analyzer
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(analyzer ports.Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer:  analyzer,
		mcpServer: server.NewMCPServer("sideeye-mcp", strings.TrimSpace(sideeye.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
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
	// TOOL: build_trial
	buildTool := mcp.NewTool("build_trial",
		mcp.WithDescription("Build a trial from a fixation sequence, reconstruct its saccades and store it."),
		mcp.WithString("item_number", mcp.Description("Number of a known item (required unless item is given)")),
		mcp.WithObject("item", mcp.Description("Inline item definition with number, condition and regions")),
		mcp.WithNumber("index", mcp.Description("Trial index, non-negative")),
		mcp.WithNumber("time", mcp.Description("Total trial time in ms (optional)")),
		mcp.WithString("key", mcp.Description("Storage key (defaults to <item>.<index>)")),
		mcp.WithArray("fixations", mcp.Required(), mcp.Description("Fixations: start, end, duration, char, line, excluded")),
		mcp.WithObject("options", mcp.Description("Build options: include_fixation, include_saccades")),
		mcp.WithOutputSchema[TrialResponse](),
	)
	s.mcpServer.AddTool(buildTool, mcp.NewStructuredToolHandler(s.handleBuildTrial))

	// TOOL: get_trial
	getTool := mcp.NewTool("get_trial",
		mcp.WithDescription("Get a stored trial by key."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Trial key")),
		mcp.WithOutputSchema[TrialResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetTrial))

	// TOOL: measure_trial
	measureTool := mcp.NewTool("measure_trial",
		mcp.WithDescription("Apply the registered measures to a stored trial."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Trial key")),
		mcp.WithOutputSchema[TrialResponse](),
	)
	s.mcpServer.AddTool(measureTool, mcp.NewStructuredToolHandler(s.handleMeasureTrial))

	// TOOL: list_trials
	listTool := mcp.NewTool("list_trials",
		mcp.WithDescription("List the keys of stored trials."),
		mcp.WithOutputSchema[KeysResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListTrials))
}

func (s *Server) handleBuildTrial(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TrialResponse, error) {
	in, err := decodeTrialInput(args)
	if err != nil {
		return TrialResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	req := in.ToRequest()
	trial, err := s.analyzer.Build(ctx, req)
	if err != nil {
		s.logger.Warn("MCP build_trial: rejected", "err", err)
		return TrialResponse{}, fmt.Errorf("build failed: %w", err)
	}
	return newTrialResponse(sideeye.StorageKey(req, trial), trial), nil
}

func (s *Server) handleGetTrial(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TrialResponse, error) {
	key, _ := args["key"].(string)
	trial, err := s.analyzer.Trial(ctx, key)
	if err != nil {
		return TrialResponse{}, err
	}
	return newTrialResponse(key, trial), nil
}

func (s *Server) handleMeasureTrial(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TrialResponse, error) {
	key, _ := args["key"].(string)
	trial, err := s.analyzer.Measure(ctx, key)
	if err != nil {
		return TrialResponse{}, fmt.Errorf("measure failed: %w", err)
	}
	return newTrialResponse(key, trial), nil
}

func (s *Server) handleListTrials(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (KeysResponse, error) {
	keys, err := s.analyzer.Trials(ctx)
	if err != nil {
		return KeysResponse{}, err
	}
	if keys == nil {
		keys = []string{}
	}
	return KeysResponse{Keys: keys}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: sideeye://trials
	s.mcpServer.AddResource(mcp.NewResource(trialsURI, "Stored Trials",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		keys, err := s.analyzer.Trials(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list trials: %w", err)
		}
		if keys == nil {
			keys = []string{}
		}
		jsonBytes, _ := json.Marshal(KeysResponse{Keys: keys})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      trialsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func newTrialResponse(key string, trial *domain.Trial) TrialResponse {
	return TrialResponse{
		Key:           key,
		Trial:         trial,
		FixationsUsed: trial.FixationCount(),
		Regressions:   trial.Regressions(),
	}
}

// decodeTrialInput maps loosely typed tool arguments onto the trial wire format.
// JSON numbers arrive as float64 and are truncated to int.
func decodeTrialInput(args map[string]any) (dto.TrialInput, error) {
	var in dto.TrialInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &in,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return in, err
	}
	if err := decoder.Decode(args); err != nil {
		return in, err
	}
	return in, nil
}
