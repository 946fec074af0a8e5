package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/autoform/internal/document"
	"github.com/hyperifyio/autoform/internal/fetch"
	"github.com/hyperifyio/autoform/internal/form"
	"github.com/hyperifyio/autoform/internal/llm"
	"github.com/hyperifyio/autoform/internal/mapper"
	"github.com/hyperifyio/autoform/internal/ocr"
	"github.com/hyperifyio/autoform/internal/resume"
	"github.com/hyperifyio/autoform/internal/structurer"
	"github.com/hyperifyio/autoform/internal/submit"
)

// ErrFormAnalysis wraps every failure to fetch or recognize the form.
var ErrFormAnalysis = errors.New("analyze form")

// App wires the pipeline from a Config. It holds no per-request state and is
// safe for concurrent use.
type App struct {
	cfg       Config
	documents *document.Reader
	extractor resume.Structurer
	// strategy is nil when structuring is not configured.
	strategy  resume.Structurer
	analyzer  *form.Analyzer
	submitter *submit.Client
}

// New builds an App talking to the configured OpenAI-compatible endpoint.
func New(cfg Config) (*App, error) {
	ApplyDefaults(&cfg)
	httpClient := newHTTPClient()
	var client llm.Client
	if cfg.StructuringEnabled() || cfg.OCREnabled() {
		client = llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey, httpClient)
	}
	return NewWithClient(cfg, client, httpClient)
}

// NewWithClient builds an App with an explicit model client, which may be nil.
func NewWithClient(cfg Config, client llm.Client, httpClient *http.Client) (*App, error) {
	ApplyDefaults(&cfg)
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	a := &App{
		cfg:       cfg,
		documents: &document.Reader{},
		extractor: resume.Heuristic{},
		analyzer: &form.Analyzer{Fetcher: &fetch.Client{
			HTTPClient:        httpClient,
			UserAgent:         cfg.UserAgent,
			PerRequestTimeout: cfg.FormFetchTimeout,
		}},
		submitter: &submit.Client{Poster: &fetch.Client{
			HTTPClient:        httpClient,
			UserAgent:         cfg.UserAgent,
			PerRequestTimeout: cfg.SubmitTimeout,
		}},
	}
	if client != nil && cfg.StructuringEnabled() {
		a.strategy = &structurer.LLM{Client: client, Model: cfg.LLMModel, Timeout: cfg.LLMTimeout}
	}
	if client != nil && cfg.OCREnabled() {
		a.documents.OCR = &ocr.Vision{Client: client, Model: cfg.OCRModel, Timeout: cfg.LLMTimeout}
	}
	log.Debug().
		Bool("structuring", a.strategy != nil).
		Bool("ocr", a.documents.OCR != nil).
		Msg("pipeline configured")
	return a, nil
}

// Config returns the effective configuration.
func (a *App) Config() Config { return a.cfg }

// ParseOutcome is the result of reading a resume. NotATSFriendly is set,
// and Resume empty, when the document holds no extractable text.
type ParseOutcome struct {
	Resume         resume.Data     `json:"data"`
	Structured     bool            `json:"structured"`
	NotATSFriendly *NotATSFriendly `json:"-"`
}

// ParseResume extracts resume data from an uploaded document. Unsupported
// formats return document.ErrUnrecognizedFormat.
func (a *App) ParseResume(ctx context.Context, filename string, content []byte) (ParseOutcome, error) {
	text, err := a.documents.Text(ctx, filename, content)
	if errors.Is(err, document.ErrNoExtractableText) {
		log.Warn().Str("stage", "parse").Str("file", filename).Msg("document is not machine-readable")
		rej := NewNotATSFriendly()
		return ParseOutcome{Resume: resume.Data{}.Normalized(), NotATSFriendly: &rej}, nil
	}
	if err != nil {
		return ParseOutcome{}, err
	}
	data, _ := a.extractor.Structure(ctx, text)
	out := ParseOutcome{Resume: data.Normalized()}
	if data.LowConfidence() && a.strategy != nil {
		if s, ok := a.strategy.Structure(ctx, text); ok {
			out.Resume = s.Normalized()
			out.Structured = true
		}
	}
	log.Info().
		Str("stage", "parse").
		Bool("structured", out.Structured).
		Bool("has_name", out.Resume.FullName != "").
		Bool("has_email", out.Resume.Email != "").
		Int("skills", len(out.Resume.Skills)).
		Msg("resume parsed")
	return out, nil
}

// AnalyzeForm recovers the entries of the form at formURL.
func (a *App) AnalyzeForm(ctx context.Context, formURL string) (form.Schema, error) {
	s, err := a.analyzer.Analyze(ctx, formURL)
	if err != nil {
		return form.Schema{}, fmt.Errorf("%w: %w", ErrFormAnalysis, err)
	}
	return s, nil
}

// FillResult is the outcome of one fill run. Submission is nil for dry runs
// and for documents that are not machine-readable.
type FillResult struct {
	FormURL        string                 `json:"form_url"`
	FormID         string                 `json:"form_id"`
	Title          string                 `json:"title"`
	DryRun         bool                   `json:"dry_run"`
	Resume         resume.Data            `json:"resume"`
	Entries        []form.Entry           `json:"fields"`
	Filled         *mapper.FilledEntryMap `json:"filled_data"`
	Submission     *submit.Result         `json:"submission,omitempty"`
	NotATSFriendly *NotATSFriendly        `json:"not_ats_friendly,omitempty"`
}

// Submitted reports whether a submission was attempted and accepted.
func (r FillResult) Submitted() bool { return r.Submission != nil && r.Submission.Success }

// Message summarizes the outcome for display.
func (r FillResult) Message() string {
	switch {
	case r.NotATSFriendly != nil:
		return r.NotATSFriendly.Message
	case r.DryRun:
		return fmt.Sprintf("Dry run: mapped %d fields without submitting", r.Filled.Len())
	case r.Submitted():
		return fmt.Sprintf("Form submitted successfully with %d fields", r.Filled.Len())
	}
	return "Form submission failed"
}

// FillForm parses the resume, analyzes the form, maps the fields and,
// unless dryRun or the config says otherwise, submits the response.
func (a *App) FillForm(ctx context.Context, formURL, filename string, content []byte, dryRun bool) (FillResult, error) {
	res := FillResult{FormURL: formURL, DryRun: dryRun || a.cfg.DryRun, Filled: mapper.NewFilledEntryMap()}

	parsed, err := a.ParseResume(ctx, filename, content)
	if err != nil {
		return res, err
	}
	res.Resume = parsed.Resume
	if parsed.NotATSFriendly != nil {
		res.NotATSFriendly = parsed.NotATSFriendly
		return res, nil
	}

	schema, err := a.AnalyzeForm(ctx, formURL)
	if err != nil {
		return res, err
	}
	res.FormID, res.Title, res.Entries = schema.FormID, schema.Title, schema.Entries

	res.Filled = mapper.Map(schema.Entries, parsed.Resume)
	log.Info().Str("stage", "map").Int("entries", len(schema.Entries)).Msg("fields mapped")
	if res.DryRun {
		return res, nil
	}

	sub := a.submitter.Submit(ctx, formURL, res.Filled)
	res.Submission = &sub
	log.Info().Str("stage", "submit").Bool("success", sub.Success).Msg("form submission finished")
	return res, nil
}
