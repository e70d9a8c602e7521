// Package oracle defines the text scoring contract and its clients.
//
// A Scorer turns a player's text into a score in [0, 10] with an optional
// comment. The game never trusts the returned value blindly: it clamps and
// rounds whatever comes back, and any error is replaced by a neutral score.
package oracle

import (
	"context"
	"errors"
)

// Request is the body sent to the evaluate route.
// Prompt is serialized as null when absent.
type Request struct {
	Text     string   `json:"text"`
	Prompt   *string  `json:"prompt"`
	Keywords []string `json:"keywords"`
}

// Response is the evaluate route's reply.
type Response struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

// Scorer scores a piece of writing.
type Scorer interface {
	Score(ctx context.Context, req Request) (Response, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, req Request) (Response, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

var (
	// ErrBadStatus is returned when the route answers with a non-2xx status.
	ErrBadStatus = errors.New("oracle: unexpected status")
	// ErrMalformed is returned when the body is not JSON or has no numeric score.
	ErrMalformed = errors.New("oracle: malformed response")
)

// NewRequest builds a request, mapping an empty prompt to null.
func NewRequest(text, prompt string, keywords []string) Request {
	req := Request{Text: text, Keywords: keywords}
	if req.Keywords == nil {
		req.Keywords = []string{}
	}
	if prompt != "" {
		p := prompt
		req.Prompt = &p
	}
	return req
}
