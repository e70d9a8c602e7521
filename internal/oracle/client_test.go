package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func quietClient(url string) *Client {
	return NewClient(url, WithLogger(log.New(io.Discard)))
}

func TestClientScore(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, expected POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("cannot decode request: %v", err)
		}
		w.Write([]byte(`{"score": 7.4, "comment": "Nice synergy."}`))
	}))
	defer srv.Close()

	req := NewRequest("We are aligned.", "Announce a milestone", []string{"impact", "synergy", "alignment"})
	resp, err := quietClient(srv.URL).Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if resp.Score != 7.4 || resp.Comment != "Nice synergy." {
		t.Errorf("Score() = %+v", resp)
	}
	if got.Text != "We are aligned." || got.Prompt == nil || *got.Prompt != "Announce a milestone" {
		t.Errorf("server received %+v", got)
	}
	if len(got.Keywords) != 3 {
		t.Errorf("server received keywords %v", got.Keywords)
	}
}

func TestNewRequestNullPrompt(t *testing.T) {
	data, err := json.Marshal(NewRequest("hi", "", nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"text":"hi","prompt":null,"keywords":[]}` {
		t.Errorf("encoded request = %s", data)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"Missing OPENAI_API_KEY"}`, ErrBadStatus},
		{"bad request", http.StatusBadRequest, `{"error":"Invalid JSON body"}`, ErrBadStatus},
		{"not json", http.StatusOK, `<html>oops</html>`, ErrMalformed},
		{"missing score", http.StatusOK, `{"comment":"hmm"}`, ErrMalformed},
		{"string score", http.StatusOK, `{"score":"9"}`, ErrMalformed},
		{"null score", http.StatusOK, `{"score":null}`, ErrMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := quietClient(srv.URL).Score(context.Background(), NewRequest("text", "", nil))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Score() error = %v, expected %v", err, tc.wantErr)
			}
		})
	}
}

func TestClientOutOfRangeScorePassesThrough(t *testing.T) {
	// Clamping is the game's job; the client reports what it received.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"score": 14}`))
	}))
	defer srv.Close()

	resp, err := quietClient(srv.URL).Score(context.Background(), NewRequest("text", "", nil))
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if resp.Score != 14 || resp.Comment != "" {
		t.Errorf("Score() = %+v", resp)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := quietClient(srv.URL).Score(ctx, NewRequest("text", "", nil))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Score() error = %v, expected deadline exceeded", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := quietClient(url).Score(context.Background(), NewRequest("text", "", nil)); err == nil {
		t.Error("Score() against a closed server should fail")
	}
}
