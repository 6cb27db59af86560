// Package gemini adapts Google's Generative Language API to the completion
// gateway's provider contract.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hotel-agent/internal/domain"
	"hotel-agent/internal/integrations/paramstore"
)

// Client lazily opens a genai client with a key read from SSM.
type Client struct {
	getter      paramstore.Getter
	paramPrefix string
	temperature *float32

	mu     sync.Mutex
	client *genai.Client
}

type Option func(*Client)

func WithTemperature(t float32) Option {
	return func(c *Client) {
		c.temperature = &t
	}
}

func NewClient(ps paramstore.Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("gemini: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("gemini: parameter prefix must not be empty")
	}
	c := &Client{getter: ps, paramPrefix: paramPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) tokenParameterName() string {
	return paramstore.Join(c.paramPrefix, "gemini-token")
}

// resolveClient opens the genai client on first use. A failed token fetch
// or dial is not cached, so the next call retries.
func (c *Client) resolveClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	key, err := paramstore.FetchToken(ctx, c.getter, c.tokenParameterName())
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.client = client
	return client, nil
}

// Complete runs one schema-constrained generation. System messages become the
// system instruction, the last message is sent and the rest is chat history.
func (c *Client) Complete(ctx context.Context, model string, messages []domain.ChatMessage, schema domain.ResponseSchema) (string, error) {
	if model == "" {
		return "", errors.New("gemini: model must not be empty")
	}
	rs, err := convertSchema(schema.Schema)
	if err != nil {
		return "", err
	}
	system, history, last, err := splitMessages(messages)
	if err != nil {
		return "", err
	}

	client, err := c.resolveClient(ctx)
	if err != nil {
		return "", err
	}

	gm := client.GenerativeModel(model)
	gm.ResponseMIMEType = "application/json"
	gm.ResponseSchema = rs
	if c.temperature != nil {
		gm.SetTemperature(*c.temperature)
	}
	if system != "" {
		gm.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := gm.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	return responseText(resp)
}

// Close releases the underlying connection if one was opened.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func splitMessages(messages []domain.ChatMessage) (string, []*genai.Content, string, error) {
	var system []string
	var turns []domain.ChatMessage
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 {
		return "", nil, "", errors.New("gemini: no user message to send")
	}
	last := turns[len(turns)-1]
	if last.Role != "user" {
		return "", nil, "", fmt.Errorf("gemini: last message must come from the user, got %q", last.Role)
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return strings.Join(system, "\n\n"), history, last.Content, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("gemini: empty candidate (finish reason %s)", cand.FinishReason)
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini: candidate has no text")
	}
	return sb.String(), nil
}

// jsonSchema is the subset of JSON Schema the gateway emits.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Enum        []string               `json:"enum"`
	Items       *jsonSchema            `json:"items"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
}

func convertSchema(raw json.RawMessage) (*genai.Schema, error) {
	if len(raw) == 0 {
		return nil, errors.New("gemini: response schema must not be empty")
	}
	var js jsonSchema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, fmt.Errorf("gemini: decode response schema: %w", err)
	}
	return toGenai(&js)
}

func toGenai(js *jsonSchema) (*genai.Schema, error) {
	s := &genai.Schema{Description: js.Description, Enum: js.Enum, Required: js.Required}
	switch js.Type {
	case "object":
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(js.Properties))
		for name, prop := range js.Properties {
			if prop == nil {
				return nil, fmt.Errorf("gemini: property %q has no schema", name)
			}
			ps, err := toGenai(prop)
			if err != nil {
				return nil, err
			}
			s.Properties[name] = ps
		}
	case "array":
		s.Type = genai.TypeArray
		if js.Items == nil {
			return nil, errors.New("gemini: array schema without items")
		}
		items, err := toGenai(js.Items)
		if err != nil {
			return nil, err
		}
		s.Items = items
	case "string":
		s.Type = genai.TypeString
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("gemini: unsupported schema type %q", js.Type)
	}
	return s, nil
}
