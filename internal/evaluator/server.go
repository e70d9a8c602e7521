// Package evaluator implements the HTTP scoring route. It asks an
// OpenAI-compatible chat model to rate a piece of corporate writing and
// normalizes whatever the model answers into a score in [0, 10].
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	openai "github.com/sashabaranov/go-openai"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/config"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
)

// Canned replies.
const (
	MsgMissingKey      = "Missing OPENAI_API_KEY"
	MsgInvalidJSON     = "Invalid JSON body"
	CommentEmpty       = "No meaningful content was provided."
	CommentNoFeedback  = "Evaluation completed, but no specific feedback was provided."
	CommentModelFailed = "Automatic evaluation failed; a neutral score has been assigned."
	NeutralScore       = 5.0
)

const (
	temperature  = 0.4
	maxBodyBytes = 64 << 10
)

// Completer is the part of the OpenAI client the route needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// SoftFloor raises low scores for texts that use the requested keywords:
// the score becomes at least used*PerKeyword, capped at 10.
type SoftFloor struct {
	Enabled    bool
	PerKeyword float64
}

// Config configures a Server.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration // Per-request deadline for the model call
	SoftFloor SoftFloor
	Logger    *log.Logger
	Completer Completer // Overrides the client built from APIKey and BaseURL
}

// Server handles evaluation requests.
type Server struct {
	completer Completer
	model     string
	timeout   time.Duration
	floor     SoftFloor
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a server. Without an API key and without an explicit
// Completer every evaluation answers 500.
func NewServer(cfg Config) *Server {
	s := &Server{
		completer: cfg.Completer,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		floor:     cfg.SoftFloor,
		logger:    cfg.Logger,
		startTime: time.Now(),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.model == "" {
		s.model = config.DefaultModel
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	if s.completer == nil && cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		s.completer = openai.NewClientWithConfig(oc)
	}
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Post("/api/evaluate", s.handleEvaluate)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"model":      s.model,
		"configured": s.completer != nil,
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if s.completer == nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: MsgMissingKey})
		return
	}

	var req oracle.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: MsgInvalidJSON})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusOK, oracle.Response{Score: 0, Comment: CommentEmpty})
		return
	}

	resp, err := s.evaluate(r.Context(), req)
	if err != nil {
		s.logger.Error("model evaluation failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusOK, oracle.Response{Score: NeutralScore, Comment: CommentModelFailed})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// evaluate calls the model and normalizes its answer.
func (s *Server) evaluate(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rubric},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(req.Text, req.Prompt, req.Keywords)},
		},
	})
	if err != nil {
		return oracle.Response{}, err
	}
	if len(completion.Choices) == 0 {
		return oracle.Response{}, errors.New("evaluator: model returned no choices")
	}

	score, comment := parseVerdict(completion.Choices[0].Message.Content)
	if s.floor.Enabled {
		used := catalog.CountUsed(req.Text, req.Keywords)
		score = math.Max(score, math.Min(10, float64(used)*s.floor.PerKeyword))
	}
	return oracle.Response{Score: math.Round(score*10) / 10, Comment: comment}, nil
}

// parseVerdict reads the model's JSON. Unparseable content and non-numeric
// scores count as 0; the result is clamped to [0, 10].
func parseVerdict(content string) (float64, string) {
	var parsed struct {
		Score   json.RawMessage `json:"score"`
		Comment json.RawMessage `json:"comment"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return 0, CommentNoFeedback
	}

	var score float64
	if err := json.Unmarshal(parsed.Score, &score); err != nil {
		score = 0
	}
	score = math.Min(10, math.Max(0, score))

	comment := CommentNoFeedback
	var c *string
	if err := json.Unmarshal(parsed.Comment, &c); err == nil && c != nil {
		comment = *c
	}
	return score, comment
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with proper headers.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
