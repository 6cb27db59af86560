package domain

import "encoding/json"

// ChatMessage is the provider-agnostic chat message shape used by the
// completion gateway and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseSchema names a JSON schema the provider must constrain its output to.
type ResponseSchema struct {
	Name   string
	Schema json.RawMessage
}
