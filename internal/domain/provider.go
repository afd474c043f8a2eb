package domain

import "context"

// Provider is the interface to an LLM chat-completion backend.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
}

type ChatRequest struct {
	Messages    []ModelMessage
	Tools       []ToolDefinition
	Model       string
	MaxTokens   int
	Temperature float64
}

type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string // stop | tool_calls | length
	Usage        Usage
}

func (r *ChatResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// ModelMessage is one record of a model exchange: a user turn, an assistant
// reply, a requested tool call or a tool result. A sequence of these is the
// conversation transcript the agent conditions on.
type ModelMessage struct {
	Role       string        `json:"role"` // system | user | assistant | tool
	Content    string        `json:"content,omitempty"`
	Parts      []ContentPart `json:"parts,omitempty"`
	ToolCalls  []ToolCall    `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolName   string        `json:"tool_name,omitempty"`
}

// ContentPart is one segment of a mixed text/attachment prompt. Data holds
// raw attachment bytes and is never serialized; a transcript containing a
// non-empty Data part cannot be persisted.
type ContentPart struct {
	Text     string `json:"text,omitempty"`
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// TextPart builds a text-only prompt segment.
func TextPart(text string) ContentPart {
	return ContentPart{Text: text}
}

// AttachmentPart builds a binary prompt segment tagged with its MIME type.
func AttachmentPart(data []byte, mimeType, fileName string) ContentPart {
	return ContentPart{Data: data, MimeType: mimeType, FileName: fileName}
}

type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Tool is a named capability the agent may invoke during a run.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}
