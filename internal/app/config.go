package app

import (
	"strings"
	"time"
)

// Defaults applied by ApplyDefaults to unset fields.
const (
	DefaultListenAddr       = ":8000"
	DefaultLLMModel         = "mistralai/mistral-7b-instruct:free"
	DefaultFormFetchTimeout = 15 * time.Second
	DefaultSubmitTimeout    = 15 * time.Second
	DefaultLLMTimeout       = 60 * time.Second
	DefaultMaxUploadBytes   = 10 << 20
)

// Config holds runtime configuration for the application.
type Config struct {
	ResumePath    string
	FormURL       string
	OutputPath    string
	OutputPDFPath string

	// Server
	ListenAddr  string
	CORSOrigins []string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	OCRModel   string
	OCREnable  bool

	// HTTP
	UserAgent        string
	FormFetchTimeout time.Duration
	SubmitTimeout    time.Duration
	LLMTimeout       time.Duration
	MaxUploadBytes   int64

	// Behavior
	DryRun  bool
	Verbose bool
}

// StructuringEnabled reports whether the model-backed structuring strategy
// is configured. Without credentials the feature is absent and only the
// heuristic extractor runs.
func (c Config) StructuringEnabled() bool {
	if strings.TrimSpace(c.LLMModel) == "" {
		return false
	}
	// A local OpenAI-compatible server may not need a key.
	return strings.TrimSpace(c.LLMAPIKey) != "" || strings.TrimSpace(c.LLMBaseURL) != ""
}

// OCREnabled reports whether scanned PDFs are sent to a vision model.
func (c Config) OCREnabled() bool {
	if !c.OCREnable || strings.TrimSpace(c.OCRModel) == "" {
		return false
	}
	return strings.TrimSpace(c.LLMAPIKey) != "" || strings.TrimSpace(c.LLMBaseURL) != ""
}

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultLLMModel
	}
	if cfg.FormFetchTimeout == 0 {
		cfg.FormFetchTimeout = DefaultFormFetchTimeout
	}
	if cfg.SubmitTimeout == 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}
	if cfg.LLMTimeout == 0 {
		cfg.LLMTimeout = DefaultLLMTimeout
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	return list
}
