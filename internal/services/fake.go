package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"chat-gateway/internal/agent"
)

// FakeProvider is a development provider that never leaves the process.
// With a script it replays one JSON value per line through agent.Decode;
// without one it echoes the prompt back.
type FakeProvider struct {
	script []any
}

func NewFakeProvider(scriptPath string) (*FakeProvider, error) {
	if scriptPath == "" {
		return &FakeProvider{}, nil
	}

	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fake script: %w", err)
	}
	script, err := parseFakeScript(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fake script %s: %w", scriptPath, err)
	}
	return &FakeProvider{script: script}, nil
}

func parseFakeScript(data []byte) ([]any, error) {
	var script []any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		script = append(script, v)
	}
	return script, scanner.Err()
}

func (p *FakeProvider) Name() string { return "fake" }

func (p *FakeProvider) NewModel(ctx context.Context, modelID string) (agent.Model, error) {
	return &fakeModel{id: modelID, script: p.script}, nil
}

type fakeModel struct {
	id     string
	script []any
}

func (m *fakeModel) ID() string { return m.id }

func (m *fakeModel) Stream(ctx context.Context, req agent.Request) (agent.Stream, error) {
	if len(m.script) == 0 {
		return agent.NewSliceStream(ctx, agent.TextChunk(agent.LastUserMessage(req))), nil
	}

	chunks := make([]agent.Chunk, len(m.script))
	for i, v := range m.script {
		chunks[i] = agent.Decode(v)
	}
	return agent.NewSliceStream(ctx, chunks...), nil
}
