package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-gateway/internal/agent"
)

func TestWithConcurrencyLimit_Unbounded(t *testing.T) {
	p := &stubProvider{}
	assert.Same(t, Provider(p), WithConcurrencyLimit(p, 0))
}

func TestWithConcurrencyLimit_BlocksUntilClose(t *testing.T) {
	p := WithConcurrencyLimit(&stubProvider{}, 1)
	ctx := context.Background()

	m, err := p.NewModel(ctx, "m")
	require.NoError(t, err)

	first, err := m.Stream(ctx, agent.Request{Messages: []agent.Message{{Role: agent.RoleUser, Content: "a"}}})
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = m.Stream(waitCtx, agent.Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, first.Close())
	// Closing twice must not hand out a second slot.
	require.NoError(t, first.Close())

	second, err := m.Stream(ctx, agent.Request{})
	require.NoError(t, err)

	waitCtx2, cancel2 := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel2()
	_, err = m.Stream(waitCtx2, agent.Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, second.Close())
}

func TestWithConcurrencyLimit_KeepsName(t *testing.T) {
	p := WithConcurrencyLimit(&stubProvider{}, 2)
	assert.Equal(t, "stub", p.Name())
}
