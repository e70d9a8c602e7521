package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
	last    openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

func newTestServer(c Completer, floor SoftFloor) *Server {
	return NewServer(Config{
		Completer: c,
		SoftFloor: floor,
		Logger:    log.New(io.Discard),
	})
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return rec, out
}

func TestEvaluateMissingKey(t *testing.T) {
	s := NewServer(Config{Logger: log.New(io.Discard)})
	rec, out := post(t, s.Routes(), `{"text":"hello"}`)
	if rec.Code != http.StatusInternalServerError || out["error"] != MsgMissingKey {
		t.Errorf("status %d, body %v", rec.Code, out)
	}
}

func TestEvaluateInvalidJSON(t *testing.T) {
	fc := &fakeCompleter{}
	rec, out := post(t, newTestServer(fc, SoftFloor{}).Routes(), `{"text":`)
	if rec.Code != http.StatusBadRequest || out["error"] != MsgInvalidJSON {
		t.Errorf("status %d, body %v", rec.Code, out)
	}
	if fc.calls != 0 {
		t.Error("model should not be called for invalid JSON")
	}
}

func TestEvaluateEmptyText(t *testing.T) {
	fc := &fakeCompleter{}
	rec, out := post(t, newTestServer(fc, SoftFloor{}).Routes(), `{"text":"   ","prompt":null,"keywords":[]}`)
	if rec.Code != http.StatusOK || out["score"] != 0.0 || out["comment"] != CommentEmpty {
		t.Errorf("status %d, body %v", rec.Code, out)
	}
	if fc.calls != 0 {
		t.Error("model should not be called for empty text")
	}
}

func TestEvaluateModelReplies(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantScore   float64
		wantComment string
	}{
		{"plain", `{"score": 7.26, "comment": "Nice."}`, 7.3, "Nice."},
		{"above range", `{"score": 14, "comment": "Wow."}`, 10, "Wow."},
		{"below range", `{"score": -2, "comment": "No."}`, 0, "No."},
		{"string score", `{"score": "9", "comment": "Hmm."}`, 0, "Hmm."},
		{"missing comment", `{"score": 6}`, 6, CommentNoFeedback},
		{"not json", `I give it a 9`, 0, CommentNoFeedback},
		{"numeric comment", `{"score": 4, "comment": 12}`, 4, CommentNoFeedback},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeCompleter{content: tc.content}
			rec, out := post(t, newTestServer(fc, SoftFloor{}).Routes(), `{"text":"Excited to share our synergy.","prompt":"Announce","keywords":["synergy"]}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d", rec.Code)
			}
			if out["score"] != tc.wantScore || out["comment"] != tc.wantComment {
				t.Errorf("body = %v, expected score %v comment %q", out, tc.wantScore, tc.wantComment)
			}
		})
	}
}

func TestEvaluateModelRequest(t *testing.T) {
	fc := &fakeCompleter{content: `{"score": 5, "comment": "ok"}`}
	post(t, newTestServer(fc, SoftFloor{}).Routes(), `{"text":"Our northstar.","prompt":null,"keywords":["impact","northstar"]}`)

	req := fc.last
	if req.Model != "gpt-4o-mini" || req.Temperature != 0.4 {
		t.Errorf("model %q temperature %v", req.Model, req.Temperature)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("the model should be asked for a JSON object")
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v", req.Messages)
	}
	user := req.Messages[1].Content
	for _, want := range []string{"(no specific prompt provided)", "impact, northstar", `"""Our northstar."""`} {
		if !strings.Contains(user, want) {
			t.Errorf("user message is missing %q:\n%s", want, user)
		}
	}
}

func TestEvaluateModelFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("rate limited")}
	rec, out := post(t, newTestServer(fc, SoftFloor{}).Routes(), `{"text":"Leverage."}`)
	if rec.Code != http.StatusOK || out["score"] != NeutralScore || out["comment"] != CommentModelFailed {
		t.Errorf("status %d, body %v", rec.Code, out)
	}
}

func TestSoftFloor(t *testing.T) {
	body := `{"text":"Impact through synergy.","keywords":["impact","synergy","cadence"]}`
	fc := &fakeCompleter{content: `{"score": 2, "comment": "meh"}`}

	_, out := post(t, newTestServer(fc, SoftFloor{}).Routes(), body)
	if out["score"] != 2.0 {
		t.Errorf("disabled floor changed the score: %v", out["score"])
	}

	_, out = post(t, newTestServer(fc, SoftFloor{Enabled: true, PerKeyword: 2.5}).Routes(), body)
	if out["score"] != 5.0 {
		t.Errorf("floored score = %v, expected 5", out["score"])
	}

	fc.content = `{"score": 8, "comment": "good"}`
	_, out = post(t, newTestServer(fc, SoftFloor{Enabled: true, PerKeyword: 2.5}).Routes(), body)
	if out["score"] != 8.0 {
		t.Errorf("the floor should never lower a score, got %v", out["score"])
	}

	fc.content = `{"score": 1}`
	_, out = post(t, newTestServer(fc, SoftFloor{Enabled: true, PerKeyword: 6}).Routes(), body)
	if out["score"] != 10.0 {
		t.Errorf("the floor is capped at 10, got %v", out["score"])
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeCompleter{}, SoftFloor{})
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

// The oracle client and the route agree on the wire format.
func TestOracleClientAgainstRoute(t *testing.T) {
	fc := &fakeCompleter{content: `{"score": 9.94, "comment": "Visionary."}`}
	srv := httptest.NewServer(newTestServer(fc, SoftFloor{}).Routes())
	defer srv.Close()

	client := oracle.NewClient(srv.URL+"/api/evaluate", oracle.WithLogger(log.New(io.Discard)))
	resp, err := client.Score(context.Background(), oracle.NewRequest("Thrilled.", "Announce", []string{"impact"}))
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if resp.Score != 9.9 || resp.Comment != "Visionary." {
		t.Errorf("Score() = %+v", resp)
	}

	missing := httptest.NewServer(NewServer(Config{Logger: log.New(io.Discard)}).Routes())
	defer missing.Close()
	_, err = oracle.NewClient(missing.URL+"/api/evaluate", oracle.WithLogger(log.New(io.Discard))).
		Score(context.Background(), oracle.NewRequest("Thrilled.", "", nil))
	if !errors.Is(err, oracle.ErrBadStatus) {
		t.Errorf("missing key should surface as ErrBadStatus, got %v", err)
	}
}
