package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-gateway/internal/agent"
	"chat-gateway/internal/config"
)

func drain(t *testing.T, s agent.Stream) string {
	t.Helper()
	defer s.Close()

	var out string
	for {
		c, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		if text, ok := c.Payload(); ok {
			out += text
		}
	}
}

func TestFakeProvider_ReplaysScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.jsonl")
	script := "{\"data\":\"Hel\"}\n\"lo\"\n\n42\n{\"text\":\"!\"}\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))

	p, err := NewFakeProvider(path)
	require.NoError(t, err)

	m, err := p.NewModel(context.Background(), "fake-model")
	require.NoError(t, err)
	assert.Equal(t, "fake-model", m.ID())

	s, err := agent.New(m).Stream(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", drain(t, s))
}

func TestFakeProvider_EchoesWithoutScript(t *testing.T) {
	p, err := NewFakeProvider("")
	require.NoError(t, err)

	m, err := p.NewModel(context.Background(), "fake-model")
	require.NoError(t, err)

	s, err := agent.New(m).Stream(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", drain(t, s))
}

func TestFakeProvider_BadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\"ok\"\n{not json}\n"), 0o600))

	_, err := NewFakeProvider(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = NewFakeProvider(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cfg := &config.Config{ModelProvider: config.ProviderFake, ModelConcurrentReqs: 2}

	p, closeFn, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "fake", p.Name())

	_, _, err = NewProvider(context.Background(), &config.Config{ModelProvider: "openai"})
	assert.Error(t, err)
}
