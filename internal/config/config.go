package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	KB      KBConfig
	AI      AIConfig
	CallLog CallLogConfig
	Session SessionConfig
	Log     LogConfig
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.KB.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Addr is derived from Port.
	Addr string
}

func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are used as given.
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// KB backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendLLM    = "llm"
)

// KBConfig describes knowledge base storage and answering.
type KBConfig struct {
	Dir           string        `env:"KB_DIR" envDefault:"kb_data"`
	Backend       string        `env:"KB_BACKEND" envDefault:"local"`
	DefaultCity   string        `env:"KB_DEFAULT_CITY" envDefault:"Bangalore"`
	RandomSeed    *uint64       `env:"KB_RANDOM_SEED"`
	RemoteURL     string        `env:"KB_REMOTE_URL" envDefault:"https://api.retailai.com/v1/knowledge/query"`
	KnowledgeKey  string        `env:"KNOWLEDGE_BASE_KEY"`
	AgentKey      string        `env:"AGENT_KEY"`
	RemoteTimeout time.Duration `env:"KB_REMOTE_TIMEOUT" envDefault:"5s"`
}

func (c KBConfig) validate() error {
	switch c.Backend {
	case BackendLocal, BackendRemote, BackendLLM:
	default:
		return fmt.Errorf("invalid KB_BACKEND value: %q", c.Backend)
	}
	if c.Backend == BackendRemote && c.RemoteURL == "" {
		return fmt.Errorf("KB_REMOTE_URL is required for the remote backend")
	}
	return nil
}

// AIConfig describes the Ark chat model used by the llm backend.
type AIConfig struct {
	APIKey      string   `env:"ARK_API_KEY"`
	AccessKey   string   `env:"ARK_ACCESS_KEY"`
	SecretKey   string   `env:"ARK_SECRET_KEY"`
	Model       string   `env:"Model"`
	BaseURL     string   `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string   `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature *float64 `env:"ARK_TEMPERATURE"`
	TopP        *float64 `env:"ARK_TOP_P"`
	MaxTokens   *int     `env:"ARK_MAX_TOKENS"`
}

// Enabled reports whether credentials and a model are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// CallLogConfig describes the conversation log sinks.
type CallLogConfig struct {
	SheetsCredentials string        `env:"GOOGLE_SHEETS_CREDENTIALS" envDefault:"credentials.json"`
	SheetsID          string        `env:"GOOGLE_SHEETS_ID"`
	SheetsRange       string        `env:"GOOGLE_SHEETS_RANGE" envDefault:"Sheet1!A:G"`
	SQLitePath        string        `env:"CALLLOG_SQLITE_PATH"`
	Timeout           time.Duration `env:"CALLLOG_TIMEOUT" envDefault:"5s"`
}

// SheetsEnabled reports whether a spreadsheet is configured.
func (c CallLogConfig) SheetsEnabled() bool {
	return c.SheetsID != ""
}

// SessionConfig controls idle session expiry. A zero TTL keeps sessions
// for the life of the process.
type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"0"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// NewLogger builds a logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL value %q: %w", c.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT value: %q", c.Format)
	}
}
