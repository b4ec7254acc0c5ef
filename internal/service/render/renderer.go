// Package render turns a conversation state and its context into reply text.
package render

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/dinebot/backend/internal/model/chat"
)

var ErrTemplateNotFound = errors.New("response template not found")

// Vars is what a template can see.
type Vars struct {
	UserMessage string
	Context     map[string]string
	Intent      chat.Intent
	Query       string
}

// Renderer formats state templates through eino chat templates.
type Renderer struct {
	templates map[string]prompt.ChatTemplate
}

// New builds a Renderer from the built-in templates, with overrides replacing
// or adding entries by key.
func New(overrides map[string]string) *Renderer {
	sources := maps.Clone(builtinTemplates)
	maps.Copy(sources, overrides)

	r := &Renderer{templates: make(map[string]prompt.ChatTemplate, len(sources))}
	for key, src := range sources {
		r.templates[key] = prompt.FromMessages(schema.GoTemplate, schema.AssistantMessage(src, nil))
	}
	return r
}

// Render produces the reply for state.
func (r *Renderer) Render(ctx context.Context, state chat.State, vars Vars) (string, error) {
	return r.RenderKey(ctx, string(state), vars)
}

// RenderKey renders the template stored under key.
func (r *Renderer) RenderKey(ctx context.Context, key string, vars Vars) (string, error) {
	tpl, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}

	slots := vars.Context
	if slots == nil {
		slots = map[string]string{}
	}

	messages, err := tpl.Format(ctx, map[string]any{
		"user_message": vars.UserMessage,
		"context":      slots,
		"intent":       string(vars.Intent),
		"query":        vars.Query,
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("render %s: empty output", key)
	}
	return strings.TrimSpace(messages[0].Content), nil
}

// Greeting renders the opening message.
func (r *Renderer) Greeting(ctx context.Context) (string, error) {
	return r.Render(ctx, chat.StateGreeting, Vars{})
}
