package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"chat-gateway/internal/agent"
)

type bedrockAPI interface {
	ConverseStream(ctx context.Context, params *bedrockruntime.ConverseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error)
}

// bedrockEvents is the subset of *bedrockruntime.ConverseStreamEventStream the
// stream reader needs.
type bedrockEvents interface {
	Events() <-chan types.ConverseStreamOutput
	Close() error
	Err() error
}

// BedrockProvider serves models hosted on AWS Bedrock through the Converse API.
type BedrockProvider struct {
	client bedrockAPI
	region string
}

// NewBedrockProvider loads AWS credentials from the default chain. An empty
// region defers to the chain as well (AWS_REGION, shared config).
func NewBedrockProvider(ctx context.Context, region string) (*BedrockProvider, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, errors.New("failed to create Bedrock client: no AWS region configured")
	}

	return &BedrockProvider{
		client: bedrockruntime.NewFromConfig(awsCfg),
		region: awsCfg.Region,
	}, nil
}

func (p *BedrockProvider) Name() string { return "bedrock" }

func (p *BedrockProvider) Region() string { return p.region }

func (p *BedrockProvider) NewModel(ctx context.Context, modelID string) (agent.Model, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.New("bedrock: model id is required")
	}
	return &bedrockModel{client: p.client, id: modelID}, nil
}

type bedrockModel struct {
	client bedrockAPI
	id     string
}

func (m *bedrockModel) ID() string { return m.id }

func (m *bedrockModel) Stream(ctx context.Context, req agent.Request) (agent.Stream, error) {
	input := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(m.id),
		Messages: toBedrockMessages(req.Messages),
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	out, err := m.client.ConverseStream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("Bedrock API error: %w", err)
	}
	return &bedrockStream{events: out.GetStream()}, nil
}

func toBedrockMessages(msgs []agent.Message) []types.Message {
	out := make([]types.Message, 0, len(msgs))
	for _, msg := range msgs {
		role := types.ConversationRoleUser
		if msg.Role == agent.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		out = append(out, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: msg.Content}},
		})
	}
	return out
}

type bedrockStream struct {
	events bedrockEvents
}

func (s *bedrockStream) Recv() (agent.Chunk, error) {
	ev, ok := <-s.events.Events()
	if !ok {
		if err := s.events.Err(); err != nil {
			return agent.Chunk{}, fmt.Errorf("Bedrock stream error: %w", err)
		}
		return agent.Chunk{}, io.EOF
	}
	return bedrockChunk(ev), nil
}

func (s *bedrockStream) Close() error {
	return s.events.Close()
}

// bedrockChunk maps a Converse stream event onto a chunk. Only text deltas
// carry text; message start/stop, metadata and tool-use deltas are unknown.
func bedrockChunk(ev types.ConverseStreamOutput) agent.Chunk {
	delta, ok := ev.(*types.ConverseStreamOutputMemberContentBlockDelta)
	if !ok {
		return agent.UnknownChunk(ev)
	}
	if text, ok := delta.Value.Delta.(*types.ContentBlockDeltaMemberText); ok {
		return agent.DataChunk(text.Value)
	}
	return agent.UnknownChunk(ev)
}
