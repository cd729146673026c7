package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"chat-gateway/internal/agent"
	"chat-gateway/internal/models"
)

// ChatService turns a chat request into a text stream: it builds a fresh model
// handle and agent per request and normalises the agent's chunks.
type ChatService struct {
	provider       Provider
	defaultModelID string
	agentOpts      []agent.Option
}

func NewChatService(provider Provider, defaultModelID string, agentOpts ...agent.Option) *ChatService {
	return &ChatService{
		provider:       provider,
		defaultModelID: defaultModelID,
		agentOpts:      agentOpts,
	}
}

// ModelID resolves the model a request should run against.
func (s *ChatService) ModelID(requested string) string {
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	return s.defaultModelID
}

// Validate reports request-shape problems as a *ValidationError.
func (s *ChatService) Validate(req models.ChatRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return &ValidationError{Fields: map[string]string{"prompt": "Prompt is required"}}
	}
	return nil
}

// Start constructs the model handle and agent for req and opens its stream.
// Provider failures are returned as *UpstreamError.
func (s *ChatService) Start(ctx context.Context, req models.ChatRequest) (*ChatStream, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	modelID := s.ModelID(req.ModelID)

	model, err := s.provider.NewModel(ctx, modelID)
	if err != nil {
		return nil, &UpstreamError{Err: fmt.Errorf("failed to create %s model %s: %w", s.provider.Name(), modelID, err)}
	}

	stream, err := agent.New(model, s.agentOpts...).Stream(ctx, req.Prompt)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	return &ChatStream{
		stream:  stream,
		modelID: modelID,
		log: logrus.WithFields(logrus.Fields{
			"provider": s.provider.Name(),
			"model_id": modelID,
		}),
	}, nil
}

// ChatStream yields the text of an agent stream, skipping unknown chunks.
type ChatStream struct {
	stream  agent.Stream
	modelID string
	log     *logrus.Entry

	emitted int
	dropped int
}

func (c *ChatStream) ModelID() string { return c.modelID }

// Emitted is the number of chunks that produced text so far.
func (c *ChatStream) Emitted() int { return c.emitted }

// Next returns the next piece of text, or io.EOF when the stream ends.
func (c *ChatStream) Next() (string, error) {
	for {
		chunk, err := c.stream.Recv()
		if err != nil {
			return "", err
		}
		text, ok := chunk.Payload()
		if !ok {
			c.dropped++
			c.log.Debugf("Dropping unrecognized chunk %T", chunk.Raw)
			continue
		}
		c.emitted++
		return text, nil
	}
}

// Relay writes every piece of text to emit in arrival order until the stream
// ends. It returns nil on a clean end of stream.
func (c *ChatStream) Relay(emit func(text string) error) error {
	for {
		text, err := c.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := emit(text); err != nil {
			return err
		}
	}
}

func (c *ChatStream) Close() error {
	c.log.WithFields(logrus.Fields{
		"chunks":  c.emitted,
		"dropped": c.dropped,
	}).Info("Chat stream closed")
	return c.stream.Close()
}
