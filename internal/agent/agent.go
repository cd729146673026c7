// Package agent binds a prompt to a hosted model and exposes the reply as a
// stream of chunks.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrEmptyPrompt = errors.New("agent: prompt is empty")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is what an agent sends to its model for one turn.
type Request struct {
	System   string
	Messages []Message
}

// Stream yields chunks until io.EOF.
//
// Callers must Close the stream once they stop reading, including after
// io.EOF or an error.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Model is a handle on one hosted model.
type Model interface {
	ID() string
	Stream(ctx context.Context, req Request) (Stream, error)
}

type Agent struct {
	model  Model
	system string
}

type Option func(*Agent)

// WithSystemPrompt sets the system instruction sent with every turn.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.system = strings.TrimSpace(prompt)
	}
}

func New(model Model, opts ...Option) *Agent {
	a := &Agent{model: model}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Model() Model {
	return a.model
}

// Stream asks the model to answer prompt and returns the reply stream.
func (a *Agent) Stream(ctx context.Context, prompt string) (Stream, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	req := Request{
		System:   a.system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}

	s, err := a.model.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("agent: stream from %s: %w", a.model.ID(), err)
	}
	return s, nil
}

// LastUserMessage returns the content of the most recent user message in req.
func LastUserMessage(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

type sliceStream struct {
	ctx    context.Context
	chunks []Chunk
}

// NewSliceStream returns a Stream that yields chunks in order. It stops early
// with the context error once ctx is done.
func NewSliceStream(ctx context.Context, chunks ...Chunk) Stream {
	return &sliceStream{ctx: ctx, chunks: chunks}
}

func (s *sliceStream) Recv() (Chunk, error) {
	if err := s.ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if len(s.chunks) == 0 {
		return Chunk{}, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceStream) Close() error {
	s.chunks = nil
	return nil
}
