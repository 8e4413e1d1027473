package opencode

import "encoding/json"

// Part type discriminators as the server emits them.
const (
	PartText       = "text"
	PartTool       = "tool"
	PartStepStart  = "step-start"
	PartStepFinish = "step-finish"
	PartReasoning  = "reasoning"
)

// Tool invocation statuses.
const (
	ToolPending   = "pending"
	ToolRunning   = "running"
	ToolCompleted = "completed"
	ToolError     = "error"
)

// Assistant error names that get dedicated rendering.
const (
	ErrNameAborted      = "MessageAbortedError"
	ErrNameProviderAuth = "ProviderAuthError"
)

// Session is a single conversation thread on the server.
type Session struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"projectID,omitempty"`
	Directory string      `json:"directory,omitempty"`
	Title     string      `json:"title,omitempty"`
	Version   string      `json:"version,omitempty"`
	Time      SessionTime `json:"time"`
}

type SessionTime struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// Message pairs the server's metadata envelope with its content parts.
type Message struct {
	Info  MessageInfo `json:"info"`
	Parts []Part      `json:"parts"`
}

type MessageInfo struct {
	ID    string          `json:"id"`
	Role  string          `json:"role"`
	Error *AssistantError `json:"error,omitempty"`
}

// AssistantError is the structured error attached to a failed assistant
// message. Name selects the rendering; Data carries whatever detail the
// server included.
type AssistantError struct {
	Name string    `json:"name"`
	Data ErrorData `json:"data"`
}

type ErrorData struct {
	Message    string `json:"message,omitempty"`
	ProviderID string `json:"providerID,omitempty"`
}

// Part is one unit of assistant output. Type selects which of the
// kind-specific fields carry meaning; unknown types keep only Type.
type Part struct {
	ID    string     `json:"id,omitempty"`
	Type  string     `json:"type"`
	Text  string     `json:"text,omitempty"`
	Tool  string     `json:"tool,omitempty"`
	State *ToolState `json:"state,omitempty"`

	// step-finish only
	Tokens *Tokens `json:"tokens,omitempty"`
	Cost   float64 `json:"cost,omitempty"`
}

// ToolState tracks a tool invocation through its lifecycle. Tools take
// arbitrary argument shapes, so Input stays raw JSON until rendering.
type ToolState struct {
	Status string          `json:"status"`
	Title  string          `json:"title,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output string          `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Tokens is the usage block on a step-finish part.
type Tokens struct {
	Input     float64 `json:"input"`
	Output    float64 `json:"output"`
	Reasoning float64 `json:"reasoning"`
}

// Provider is one model provider in the server's catalog.
type Provider struct {
	ID     string               `json:"id"`
	Name   string               `json:"name,omitempty"`
	Models map[string]ModelInfo `json:"models"`
}

type ModelInfo struct {
	Name string     `json:"name,omitempty"`
	Cost *ModelCost `json:"cost,omitempty"`
}

// ModelCost is priced per million tokens.
type ModelCost struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// Catalog is the provider/model inventory plus the server's per-provider
// default model ids.
type Catalog struct {
	Providers []Provider        `json:"providers"`
	Default   map[string]string `json:"default"`
}

// TextInput is the only part kind the client sends.
type TextInput struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatRequest struct {
	ProviderID string      `json:"providerID"`
	ModelID    string      `json:"modelID"`
	Parts      []TextInput `json:"parts"`
}

type createSessionRequest struct {
	Title string `json:"title,omitempty"`
}
