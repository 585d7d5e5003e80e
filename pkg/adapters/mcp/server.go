// Package mcp exposes the preview engine as a Model Context Protocol server.
//
// Tools are stateless: callers pass the session state they got back from
// the previous call, the same way the HTTP API hands out views.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/journeys"
	"github.com/aretw0/journeys/internal/logging"
	"github.com/aretw0/journeys/internal/presentation/graph"
	"github.com/aretw0/journeys/internal/runtime"
	"github.com/aretw0/journeys/internal/validator"
	"github.com/aretw0/journeys/pkg/domain"
	"github.com/aretw0/journeys/pkg/ports"
	"github.com/aretw0/journeys/pkg/runner"
)

const indexURI = "journeys://index"

// Engine is the preview surface the MCP server drives.
type Engine interface {
	ports.PreviewEngine
	Lint(ctx context.Context, journeyID string) ([]validator.Issue, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
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

// NewServer creates a new MCP server for engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("journeys-mcp", strings.TrimSpace(journeys.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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
	s.mcpServer.AddTool(mcp.NewTool("list_journeys",
		mcp.WithDescription("List the IDs of the journeys available for preview."),
	), s.handleListJourneys)

	s.mcpServer.AddTool(mcp.NewTool("get_journey",
		mcp.WithDescription("Get the normalized definition of a journey."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
	), s.handleGetJourney)

	s.mcpServer.AddTool(mcp.NewTool("build_steps",
		mcp.WithDescription("Build the visible step list of a journey for a set of answers."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("answers", mcp.Description(`JSON object of answers keyed by "question" or "parent/question/instance"`)),
		mcp.WithString("instances", mcp.Description("JSON object mapping repeat parents to their instance IDs")),
		mcp.WithString("mode", mcp.Description("question or page"), mcp.Enum(string(domain.ModeQuestion), string(domain.ModePage))),
	), s.handleBuildSteps)

	s.mcpServer.AddTool(mcp.NewTool("evaluate_rule",
		mcp.WithDescription("Evaluate a visibility rule against a set of answers."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("rule", mcp.Required(), mcp.Description(`JSON rule: {"questionId": "...", "operator": "...", "value": ...}`)),
		mcp.WithString("answers", mcp.Description("JSON object of answers keyed by question ID")),
	), s.handleEvaluateRule)

	s.mcpServer.AddTool(mcp.NewTool("validate_journey",
		mcp.WithDescription("Lint a journey: dangling and forward rule references, duplicate IDs, bad repeats."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
	), s.handleValidateJourney)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render a journey as a Mermaid flowchart."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
	), s.handleGetGraph)

	s.mcpServer.AddTool(mcp.NewTool("preview",
		mcp.WithDescription("Drive a preview session. Omit state to open one; pass back the returned state on every later call."),
		mcp.WithString("journey_id", mcp.Required(), mcp.Description("Journey ID")),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action to apply"),
			mcp.Enum("open", "answer", "next", "prev", "add_instance", "remove_instance")),
		mcp.WithString("state", mcp.Description("JSON session state returned by the previous call")),
		mcp.WithString("mode", mcp.Description("Preview mode when opening"), mcp.Enum(string(domain.ModeQuestion), string(domain.ModePage))),
		mcp.WithString("key", mcp.Description("Answer key for answer")),
		mcp.WithString("value", mcp.Description("JSON encoded answer value for answer")),
		mcp.WithString("parent_id", mcp.Description("Repeat parent for add_instance and remove_instance")),
		mcp.WithString("instance_id", mcp.Description("Instance for remove_instance")),
	), mcp.NewStructuredToolHandler(s.handlePreview))
}

func (s *Server) handleListJourneys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engine.Journeys(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return jsonResult(map[string][]string{"journeys": ids})
}

func (s *Server) handleGetJourney(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	j, errResult := s.journey(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(j)
}

func (s *Server) handleBuildSteps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	j, errResult := s.journey(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	answers, err := parseAnswers(request.GetString("answers", ""), request.GetString("instances", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state := domain.NewState("", j.ID, domain.PreviewMode(request.GetString("mode", string(domain.ModeQuestion))))
	state.Answers = answers
	steps, err := s.engine.Steps(ctx, state)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}
	return jsonResult(map[string][]domain.Step{"steps": steps})
}

func (s *Server) handleEvaluateRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	j, errResult := s.journey(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	var rule domain.Rule
	if err := json.Unmarshal([]byte(request.GetString("rule", "")), &rule); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rule: %v", err)), nil
	}
	answers, err := parseAnswers(request.GetString("answers", ""), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	target, found := runtime.NewIndex(j).Question(rule.QuestionID)
	result := map[string]any{
		"matches": runtime.EvaluateRule(rule, answers, target),
	}
	if !found {
		result["warning"] = fmt.Sprintf("question %q does not exist; the rule never matches", rule.QuestionID)
	}
	return jsonResult(result)
}

func (s *Server) handleValidateJourney(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("journey_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	issues, err := s.engine.Lint(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lint failed: %v", err)), nil
	}
	if issues == nil {
		issues = []validator.Issue{}
	}
	return jsonResult(map[string]any{"issues": issues})
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	j, errResult := s.journey(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(j, nil)), nil
}

// PreviewArgs are the arguments of the preview tool.
type PreviewArgs struct {
	JourneyID  string `json:"journey_id"`
	Action     string `json:"action"`
	State      string `json:"state,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Key        string `json:"key,omitempty"`
	Value      string `json:"value,omitempty"`
	ParentID   string `json:"parent_id,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
}

// PreviewResponse is the view after the action plus the ID of an added
// instance.
type PreviewResponse struct {
	View       *runner.View `json:"view"`
	InstanceID string       `json:"instanceId,omitempty"`
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest, args PreviewArgs) (PreviewResponse, error) {
	if args.Action == "open" {
		state, err := s.engine.Open(ctx, args.JourneyID, "", domain.PreviewMode(args.Mode))
		if err != nil {
			return PreviewResponse{}, fmt.Errorf("open failed: %w", err)
		}
		view, err := runner.BuildView(ctx, s.engine, state)
		if err != nil {
			return PreviewResponse{}, err
		}
		return PreviewResponse{View: view}, nil
	}

	if args.State == "" {
		return PreviewResponse{}, fmt.Errorf("state is required for %s", args.Action)
	}
	var state domain.State
	if err := json.Unmarshal([]byte(args.State), &state); err != nil {
		return PreviewResponse{}, fmt.Errorf("invalid state: %w", err)
	}
	if state.JourneyID != args.JourneyID {
		return PreviewResponse{}, fmt.Errorf("state belongs to journey %q", state.JourneyID)
	}

	var instanceID string
	apply := func(ctx context.Context, st *domain.State) (*domain.State, error) {
		switch args.Action {
		case "answer":
			return s.answer(ctx, st, args)
		case "next":
			return s.engine.Next(ctx, st)
		case "prev":
			return s.engine.Prev(ctx, st)
		case "add_instance":
			next, id, ok, err := s.engine.AddInstance(ctx, st, args.ParentID)
			if err == nil && !ok {
				err = fmt.Errorf("%s is at its maximum number of items", args.ParentID)
			}
			instanceID = id
			return next, err
		case "remove_instance":
			next, ok, err := s.engine.RemoveInstance(ctx, st, args.ParentID, args.InstanceID)
			if err == nil && !ok {
				err = fmt.Errorf("cannot remove %s from %s", args.InstanceID, args.ParentID)
			}
			return next, err
		}
		return nil, fmt.Errorf("unknown action %q", args.Action)
	}

	view, err := runner.Transition(ctx, s.engine, &state, apply)
	if err != nil {
		s.logger.Warn("mcp preview rejected", "action", args.Action, "err", err)
		return PreviewResponse{}, fmt.Errorf("%s failed: %w", args.Action, err)
	}
	return PreviewResponse{View: view, InstanceID: instanceID}, nil
}

func (s *Server) answer(ctx context.Context, state *domain.State, args PreviewArgs) (*domain.State, error) {
	key, err := domain.ParseAnswerKey(args.Key)
	if err != nil {
		return nil, err
	}
	var value any
	if args.Value != "" {
		if err := json.Unmarshal([]byte(args.Value), &value); err != nil {
			// Bare strings are accepted unquoted.
			value = args.Value
		}
	}
	return s.engine.Answer(ctx, state, key, value)
}

func (s *Server) journey(ctx context.Context, request mcp.CallToolRequest) (*domain.Journey, *mcp.CallToolResult) {
	id, err := request.RequireString("journey_id")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	j, err := s.engine.Journey(ctx, id)
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return j, nil
}

func parseAnswers(rawAnswers, rawInstances string) (domain.Answers, error) {
	answers := domain.NewAnswers()
	if rawAnswers != "" {
		var values map[string]any
		if err := json.Unmarshal([]byte(rawAnswers), &values); err != nil {
			return answers, fmt.Errorf("invalid answers: %w", err)
		}
		for k, v := range values {
			key, err := domain.ParseAnswerKey(k)
			if err != nil {
				return answers, err
			}
			answers.Set(key, v)
		}
	}
	if rawInstances != "" {
		var instances map[string][]string
		if err := json.Unmarshal([]byte(rawInstances), &instances); err != nil {
			return answers, fmt.Errorf("invalid instances: %w", err)
		}
		for parent, ids := range instances {
			answers.SetInstanceIDs(parent, ids)
		}
	}
	return answers, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(indexURI, "Journey Index",
		mcp.WithResourceDescription("IDs of every journey the server previews"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Journeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list journeys: %w", err)
		}
		data, _ := json.Marshal(map[string][]string{"journeys": ids})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      indexURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
