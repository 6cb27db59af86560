package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"hotel-agent/internal/domain"
)

type fakeGetter struct {
	val string
	err error
}

func (f *fakeGetter) GetParameter(context.Context, string) (string, error) {
	return f.val, f.err
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, "/hotel-agent")
	require.Error(t, err)

	_, err = NewClient(&fakeGetter{}, "")
	require.Error(t, err)

	c, err := NewClient(&fakeGetter{}, "/hotel-agent/")
	require.NoError(t, err)
	require.Equal(t, "/hotel-agent/gemini-token", c.tokenParameterName())
	require.NoError(t, c.Close())
}

type sequenceGetter struct {
	results []error
	calls   int
}

func (g *sequenceGetter) GetParameter(context.Context, string) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.results) && g.results[i] != nil {
		return "", g.results[i]
	}
	return `{"token":"k"}`, nil
}

func TestComplete_TokenErrorSurfaces(t *testing.T) {
	c, err := NewClient(&fakeGetter{err: errors.New("ssm down")}, "/hotel-agent")
	require.NoError(t, err)

	msgs := []domain.ChatMessage{{Role: "user", Content: "hi"}}
	schema := domain.ResponseSchema{Name: "x", Schema: json.RawMessage(`{"type":"object","properties":{}}`)}

	_, err = c.Complete(context.Background(), "gemini-1.5-flash", msgs, schema)
	require.ErrorContains(t, err, "ssm down")
}

func TestResolveClient_RetriesAfterTokenError(t *testing.T) {
	getter := &sequenceGetter{results: []error{errors.New("ssm throttled")}}
	c, err := NewClient(getter, "/hotel-agent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.resolveClient(context.Background())
	require.ErrorContains(t, err, "ssm throttled")

	first, err := c.resolveClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.resolveClient(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 2, getter.calls)
}

func TestComplete_ValidatesBeforeDialing(t *testing.T) {
	c, err := NewClient(&fakeGetter{val: `{"token":"k"}`}, "/hotel-agent")
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "", nil, domain.ResponseSchema{})
	require.ErrorContains(t, err, "model")

	_, err = c.Complete(context.Background(), "m", nil, domain.ResponseSchema{Name: "x"})
	require.ErrorContains(t, err, "schema")

	_, err = c.Complete(context.Background(), "m", nil, domain.ResponseSchema{Name: "x", Schema: json.RawMessage(`{"type":"string"}`)})
	require.ErrorContains(t, err, "no user message")
}

func TestConvertSchema(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"suggestions": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"hotelId": {"type": "string"},
						"reason": {"type": "string", "description": "why"},
						"kind": {"type": "string", "enum": ["a", "b"]},
						"score": {"type": "number"},
						"rank": {"type": "integer"},
						"ok": {"type": "boolean"}
					},
					"required": ["hotelId", "reason"]
				}
			}
		},
		"required": ["suggestions"]
	}`)

	s, err := convertSchema(raw)
	require.NoError(t, err)
	require.Equal(t, genai.TypeObject, s.Type)
	require.Equal(t, []string{"suggestions"}, s.Required)

	arr := s.Properties["suggestions"]
	require.Equal(t, genai.TypeArray, arr.Type)
	item := arr.Items
	require.Equal(t, genai.TypeObject, item.Type)
	require.Equal(t, []string{"hotelId", "reason"}, item.Required)
	require.Equal(t, "why", item.Properties["reason"].Description)
	require.Equal(t, []string{"a", "b"}, item.Properties["kind"].Enum)
	require.Equal(t, genai.TypeNumber, item.Properties["score"].Type)
	require.Equal(t, genai.TypeInteger, item.Properties["rank"].Type)
	require.Equal(t, genai.TypeBoolean, item.Properties["ok"].Type)
}

func TestConvertSchema_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":       ``,
		"malformed":   `{"type":`,
		"unsupported": `{"type":"null"}`,
		"no items":    `{"type":"array"}`,
		"nested":      `{"type":"object","properties":{"a":{"type":"tuple"}}}`,
	}
	for name, raw := range cases {
		_, err := convertSchema(json.RawMessage(raw))
		require.Error(t, err, name)
	}
}

func TestSplitMessages(t *testing.T) {
	system, history, last, err := splitMessages([]domain.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
		{Role: "system", Content: "json only"},
		{Role: "user", Content: "find me a hotel"},
	})
	require.NoError(t, err)
	require.Equal(t, "be brief\n\njson only", system)
	require.Equal(t, "find me a hotel", last)
	require.Len(t, history, 2)
	require.Equal(t, "user", history[0].Role)
	require.Equal(t, "model", history[1].Role)
	require.Equal(t, genai.Text("hi there"), history[1].Parts[0])
}

func TestSplitMessages_LastMustBeUser(t *testing.T) {
	_, _, _, err := splitMessages([]domain.ChatMessage{{Role: "assistant", Content: "x"}})
	require.ErrorContains(t, err, "last message")
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	require.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	require.ErrorContains(t, err, "empty candidate")

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
	}}})
	require.ErrorContains(t, err, "no text")

	got, err := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
	}}})
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, got)
}
