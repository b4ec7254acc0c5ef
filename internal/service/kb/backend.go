package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	kbmodel "github.com/zhouzirui/dinebot/backend/internal/model/kb"
	"github.com/zhouzirui/dinebot/backend/internal/textutil"
)

// ErrNoAnswer means the backend responded but had nothing to say.
var ErrNoAnswer = errors.New("backend returned no answer")

// Backend is a remote knowledge source consulted before local data.
type Backend interface {
	Name() string
	Query(ctx context.Context, city, query string) (string, error)
}

// HTTPBackend queries a hosted knowledge-base API with a bearer agent key.
type HTTPBackend struct {
	url      string
	kbKey    string
	agentKey string
	client   *http.Client
}

// NewHTTPBackend returns an HTTPBackend. A nil client means http.DefaultClient;
// call deadlines come from the request context.
func NewHTTPBackend(url, kbKey, agentKey string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{url: url, kbKey: kbKey, agentKey: agentKey, client: client}
}

func (b *HTTPBackend) Name() string { return "http" }

type remoteQuery struct {
	Query string `json:"query"`
	KBKey string `json:"kb_key"`
	City  string `json:"city,omitempty"`
}

type remoteAnswer struct {
	Answer string `json:"answer"`
}

// Query posts the question and returns the "answer" field of a 200 response.
func (b *HTTPBackend) Query(ctx context.Context, city, query string) (string, error) {
	body, err := json.Marshal(remoteQuery{Query: query, KBKey: b.kbKey, City: city})
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.agentKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.agentKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call knowledge api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("knowledge api returned status %d", resp.StatusCode)
	}

	var out remoteAnswer
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode knowledge api response: %w", err)
	}
	if strings.TrimSpace(out.Answer) == "" {
		return "", ErrNoAnswer
	}
	return out.Answer, nil
}

// LLMBackend answers with a chat model grounded on the city's FAQ entries.
type LLMBackend struct {
	store kbmodel.Store
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewLLMBackend compiles the prompt chain around chatModel.
func NewLLMBackend(ctx context.Context, chatModel model.ChatModel, store kbmodel.Store) (*LLMBackend, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile knowledge chain: %w", err)
	}
	return &LLMBackend{store: store, chain: runnable}, nil
}

func (b *LLMBackend) Name() string { return "llm" }

// Query loads the city's entries and asks the model to answer from them only.
func (b *LLMBackend) Query(ctx context.Context, city, query string) (string, error) {
	collection, err := b.store.Load(ctx, city)
	if err != nil {
		return "", fmt.Errorf("load grounding for %s: %w", city, err)
	}

	msg, err := b.chain.Invoke(ctx, map[string]any{
		"system": buildGroundingPrompt(city, collection),
		"query":  query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run knowledge chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" || strings.TrimSpace(msg.Content) == noAnswerToken {
		return "", ErrNoAnswer
	}
	return strings.TrimSpace(msg.Content), nil
}

const noAnswerToken = "NO_ANSWER"

func buildGroundingPrompt(city string, collection kbmodel.Collection) string {
	var builder strings.Builder
	builder.WriteString("You are the virtual assistant of a barbeque restaurant chain in ")
	builder.WriteString(city)
	builder.WriteString(". Answer the guest in one or two sentences using only the facts below. ")
	builder.WriteString("If the facts do not cover the question, reply with exactly ")
	builder.WriteString(noAnswerToken)
	builder.WriteString(".\n\nFacts:\n")

	for _, entry := range collection[kbmodel.CategoryFAQ] {
		if entry.Question == "" || entry.Answer == "" {
			continue
		}
		builder.WriteString("- Q: ")
		builder.WriteString(entry.Question)
		builder.WriteString(" A: ")
		builder.WriteString(clipFact(entry.Answer))
		builder.WriteString("\n")
	}
	for _, entry := range collection[kbmodel.CategoryBooking] {
		if entry.Details == "" {
			continue
		}
		builder.WriteString("- ")
		builder.WriteString(clipFact(entry.Details))
		builder.WriteString("\n")
	}
	return builder.String()
}

// factTokenBudget caps each fact placed in the grounding prompt.
const factTokenBudget = 200

func clipFact(text string) string {
	chunks := textutil.Chunk(text, factTokenBudget)
	if len(chunks) == 0 {
		return ""
	}
	return chunks[0]
}
