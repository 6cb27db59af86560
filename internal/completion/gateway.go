// Package completion is the typed gateway between the dialogue router and
// the configured LLM provider. Every operation renders a prompt, asks for
// JSON constrained by a schema, and strictly decodes the answer.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"hotel-agent/internal/domain"
)

// Completer is implemented by the OpenAI and Gemini clients.
type Completer interface {
	Complete(ctx context.Context, model string, messages []domain.ChatMessage, schema domain.ResponseSchema) (string, error)
}

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type Gateway struct {
	llm         Completer
	params      ParamGetter
	paramPrefix string
	limiter     *rate.Limiter

	mu    sync.RWMutex
	model string
}

type Option func(*Gateway)

// WithModel pins the model name and skips the parameter store lookup.
func WithModel(model string) Option {
	return func(g *Gateway) {
		g.model = strings.TrimSpace(model)
	}
}

// WithRateLimit bounds outbound completion calls per process. A non-positive
// rps disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(llm Completer, params ParamGetter, paramPrefix string, opts ...Option) (*Gateway, error) {
	if llm == nil {
		return nil, errors.New("completion: llm client must not be nil")
	}
	g := &Gateway{
		llm:         llm,
		params:      params,
		paramPrefix: strings.TrimRight(strings.TrimSpace(paramPrefix), "/"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.model == "" {
		if g.params == nil {
			return nil, errors.New("completion: param getter must not be nil without a pinned model")
		}
		if g.paramPrefix == "" {
			return nil, errors.New("completion: parameter prefix must not be empty")
		}
	}
	return g, nil
}

func (g *Gateway) resolveModel(ctx context.Context) (string, error) {
	g.mu.RLock()
	model := g.model
	g.mu.RUnlock()
	if model != "" {
		return model, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.model != "" {
		return g.model, nil
	}
	raw, err := g.params.GetParameter(ctx, g.paramPrefix+"/config/model")
	if err != nil {
		return "", fmt.Errorf("completion: load model: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("completion: model parameter is empty")
	}
	g.model = raw
	return raw, nil
}

// complete runs one provider call and decodes the result into T.
func complete[T any](ctx context.Context, g *Gateway, op string, schema domain.ResponseSchema, messages []domain.ChatMessage, validate func(*T) error) (T, error) {
	var zero T
	model, err := g.resolveModel(ctx)
	if err != nil {
		return zero, err
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("completion: %s: rate limit wait: %w", op, err)
		}
	}
	raw, err := g.llm.Complete(ctx, model, messages, schema)
	if err != nil {
		return zero, fmt.Errorf("completion: %s: %w", op, err)
	}
	out, err := decodeStrict[T](raw)
	if err != nil {
		return zero, fmt.Errorf("completion: %s: %w", op, err)
	}
	if validate != nil {
		if err := validate(&out); err != nil {
			return zero, fmt.Errorf("completion: %s: %w", op, err)
		}
	}
	return out, nil
}

func decodeStrict[T any](raw string) (T, error) {
	var out T
	dec := json.NewDecoder(bytes.NewBufferString(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode response: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var zero T
		if err == nil {
			return zero, errors.New("decode response: multiple JSON values")
		}
		return zero, fmt.Errorf("decode response trailing data: %w", err)
	}
	return out, nil
}

func requireString(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("missing %s", field)
	}
	return nil
}
