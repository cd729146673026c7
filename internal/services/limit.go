package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chat-gateway/internal/agent"
)

const slotWaitTimeout = 5 * time.Minute

// WithConcurrencyLimit caps the number of model streams open at once across
// every model p constructs. n <= 0 leaves p unbounded.
func WithConcurrencyLimit(p Provider, n int) Provider {
	if n <= 0 {
		return p
	}

	// Token bucket of stream slots
	slots := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		slots <- struct{}{}
	}
	return &limitedProvider{Provider: p, slots: slots}
}

type limitedProvider struct {
	Provider
	slots chan struct{}
}

func (p *limitedProvider) NewModel(ctx context.Context, modelID string) (agent.Model, error) {
	m, err := p.Provider.NewModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return &limitedModel{Model: m, slots: p.slots}, nil
}

type limitedModel struct {
	agent.Model
	slots chan struct{}
}

// acquire blocks until a slot is available
func (m *limitedModel) acquire(ctx context.Context) error {
	select {
	case <-m.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(slotWaitTimeout):
		return fmt.Errorf("timeout waiting for a %s stream slot", m.ID())
	}
}

func (m *limitedModel) release() {
	m.slots <- struct{}{}
}

func (m *limitedModel) Stream(ctx context.Context, req agent.Request) (agent.Stream, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}

	s, err := m.Model.Stream(ctx, req)
	if err != nil {
		m.release()
		return nil, err
	}
	return &slotStream{Stream: s, release: m.release}, nil
}

// slotStream gives its slot back on Close.
type slotStream struct {
	agent.Stream
	once    sync.Once
	release func()
}

func (s *slotStream) Close() error {
	err := s.Stream.Close()
	s.once.Do(s.release)
	return err
}
