package models

// WebSocket message types
const (
	WSTypeChunk     = "chunk"
	WSTypeCompleted = "completed"
	WSTypeError     = "error"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type PartialContent struct {
	Chunk           string `json:"chunk"`
	TotalChunksSent int    `json:"total_chunks_sent"`
}

type CompletedEvent struct {
	ModelID         string `json:"model_id"`
	TotalChunksSent int    `json:"total_chunks_sent"`
}

type ErrorEvent struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
