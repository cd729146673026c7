package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"chat-gateway/internal/agent"
)

type geminiResponses interface {
	Next() (*genai.GenerateContentResponse, error)
}

// GeminiProvider serves Google Gemini models.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) NewModel(ctx context.Context, modelID string) (agent.Model, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("gemini: model id is required")
	}
	return &geminiModel{model: p.client.GenerativeModel(modelID), id: modelID}, nil
}

type geminiModel struct {
	model *genai.GenerativeModel
	id    string
}

func (m *geminiModel) ID() string { return m.id }

func (m *geminiModel) Stream(ctx context.Context, req agent.Request) (agent.Stream, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("gemini: no messages to send")
	}
	if req.System != "" {
		m.model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	last := req.Messages[len(req.Messages)-1]
	if len(req.Messages) == 1 {
		return &geminiStream{responses: m.model.GenerateContentStream(ctx, genai.Text(last.Content))}, nil
	}

	cs := m.model.StartChat()
	cs.History = toGeminiHistory(req.Messages[:len(req.Messages)-1])
	return &geminiStream{responses: cs.SendMessageStream(ctx, genai.Text(last.Content))}, nil
}

func toGeminiHistory(msgs []agent.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		role := "user"
		if msg.Role == agent.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return history
}

type geminiStream struct {
	responses geminiResponses
	pending   []agent.Chunk
	done      bool
}

func (s *geminiStream) Recv() (agent.Chunk, error) {
	for len(s.pending) == 0 {
		if s.done {
			return agent.Chunk{}, io.EOF
		}
		resp, err := s.responses.Next()
		if errors.Is(err, iterator.Done) {
			s.done = true
			return agent.Chunk{}, io.EOF
		}
		if err != nil {
			return agent.Chunk{}, fmt.Errorf("Gemini API error: %w", err)
		}
		s.pending = geminiChunks(resp)
	}

	c := s.pending[0]
	s.pending = s.pending[1:]
	return c, nil
}

func (s *geminiStream) Close() error {
	s.done = true
	s.pending = nil
	return nil
}

// geminiChunks flattens one streamed response. Text parts become chunks;
// function calls, blobs and other parts are unknown.
func geminiChunks(resp *genai.GenerateContentResponse) []agent.Chunk {
	var chunks []agent.Chunk
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				chunks = append(chunks, agent.TextPartChunk(string(t)))
				continue
			}
			chunks = append(chunks, agent.UnknownChunk(part))
		}
	}
	return chunks
}
