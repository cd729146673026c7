package agent

// ChunkKind tags the shape a streamed unit arrived in.
type ChunkKind int

const (
	// ChunkUnknown is anything the gateway cannot turn into text. It is dropped.
	ChunkUnknown ChunkKind = iota
	// ChunkData is a structured record carrying a "data" field.
	ChunkData
	// ChunkText is raw text.
	ChunkText
	// ChunkTextPart is an object exposing its content as text.
	ChunkTextPart
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkData:
		return "data"
	case ChunkText:
		return "text"
	case ChunkTextPart:
		return "text_part"
	default:
		return "unknown"
	}
}

// Chunk is one unit of a streamed model response.
type Chunk struct {
	Kind ChunkKind
	Text string
	// Raw holds the original value of an unknown chunk, for logging only.
	Raw any
}

func DataChunk(data string) Chunk     { return Chunk{Kind: ChunkData, Text: data} }
func TextChunk(text string) Chunk     { return Chunk{Kind: ChunkText, Text: text} }
func TextPartChunk(text string) Chunk { return Chunk{Kind: ChunkTextPart, Text: text} }
func UnknownChunk(raw any) Chunk      { return Chunk{Kind: ChunkUnknown, Raw: raw} }

// Payload returns the text the chunk contributes to a response.
// ok is false for unknown chunks.
func (c Chunk) Payload() (text string, ok bool) {
	switch c.Kind {
	case ChunkData, ChunkText, ChunkTextPart:
		return c.Text, true
	default:
		return "", false
	}
}

// Texter is implemented by values that expose their content as text.
type Texter interface {
	Text() string
}

// Decode classifies a loosely typed stream value. Checks run in order:
// a record with a "data" field, plain text, then anything exposing text.
// Everything else becomes an unknown chunk.
func Decode(v any) Chunk {
	switch t := v.(type) {
	case Chunk:
		return t
	case map[string]any:
		if data, ok := t["data"]; ok {
			if s, ok := data.(string); ok {
				return DataChunk(s)
			}
			return UnknownChunk(v)
		}
		if s, ok := t["text"].(string); ok {
			return TextPartChunk(s)
		}
	case string:
		return TextChunk(t)
	case Texter:
		return TextPartChunk(t.Text())
	}
	return UnknownChunk(v)
}
