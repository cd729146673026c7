package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-gateway/internal/agent"
	"chat-gateway/internal/models"
	"chat-gateway/internal/services"
)

type scriptedProvider struct {
	chunks []agent.Chunk
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) NewModel(ctx context.Context, modelID string) (agent.Model, error) {
	return &scriptedModel{id: modelID, chunks: p.chunks}, nil
}

type scriptedModel struct {
	id     string
	chunks []agent.Chunk
}

func (m *scriptedModel) ID() string { return m.id }

func (m *scriptedModel) Stream(ctx context.Context, req agent.Request) (agent.Stream, error) {
	return agent.NewSliceStream(ctx, m.chunks...), nil
}

type wsReply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, chunks ...agent.Chunk) *websocket.Conn {
	t.Helper()

	svc := services.NewChatService(&scriptedProvider{chunks: chunks}, "default-model")
	srv := httptest.NewServer(http.HandlerFunc(NewChatSocket(svc, "http://localhost:5173").HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestChatSocket_StreamsChunksThenCompleted(t *testing.T) {
	conn := dial(t, agent.DataChunk("Hel"), agent.UnknownChunk(42), agent.TextChunk("lo"), agent.TextPartChunk("!"))

	require.NoError(t, conn.WriteJSON(models.ChatRequest{Prompt: "hi"}))

	var text strings.Builder
	for {
		var msg wsReply
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == models.WSTypeCompleted {
			var done models.CompletedEvent
			require.NoError(t, json.Unmarshal(msg.Payload, &done))
			assert.Equal(t, "default-model", done.ModelID)
			assert.Equal(t, 3, done.TotalChunksSent)
			break
		}
		require.Equal(t, models.WSTypeChunk, msg.Type)
		var part models.PartialContent
		require.NoError(t, json.Unmarshal(msg.Payload, &part))
		text.WriteString(part.Chunk)
	}
	assert.Equal(t, "Hello!", text.String())
}

func TestChatSocket_ValidationErrorKeepsConnection(t *testing.T) {
	conn := dial(t, agent.TextChunk("ok"))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"prompt":`)))
	var msg wsReply
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.WSTypeError, msg.Type)

	require.NoError(t, conn.WriteJSON(models.ChatRequest{Prompt: " "}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.WSTypeError, msg.Type)
	var ev models.ErrorEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, "VALIDATION_ERROR", ev.ErrorCode)

	require.NoError(t, conn.WriteJSON(models.ChatRequest{Prompt: "again"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.WSTypeChunk, msg.Type)
}

func TestChatSocket_RejectsForeignOrigin(t *testing.T) {
	svc := services.NewChatService(&scriptedProvider{}, "m")
	srv := httptest.NewServer(http.HandlerFunc(NewChatSocket(svc, "http://localhost:5173").HandleWebSocket))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
