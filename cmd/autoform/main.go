package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/hyperifyio/autoform/internal/app"
	"github.com/hyperifyio/autoform/internal/server"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailed    = 1
	exitNotUsable = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env"); err != nil {
		log.Warn().Err(err).Msg("load .env")
	}

	cfg, serve, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(exitOK)
	}
	if err != nil {
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(exitNotUsable)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := run(ctx, cfg, serve)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("run failed")
	}
	os.Exit(code)
}

// parseFlags resolves the configuration: flags over environment over the
// optional config file over defaults.
func parseFlags(args []string) (app.Config, bool, error) {
	fs := flag.NewFlagSet("autoform", flag.ContinueOnError)
	var (
		configPath    string
		resumePath    string
		formURL       string
		outputPath    string
		outputPDF     string
		serveAddr     string
		corsOrigins   []string
		llmBaseURL    string
		llmModel      string
		llmKey        string
		llmTimeout    time.Duration
		ocrEnable     bool
		ocrModel      string
		userAgent     string
		formTimeout   time.Duration
		submitTimeout time.Duration
		maxUpload     int64
		dryRun        bool
		verbose       bool
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&resumePath, "resume", "", "Path to the resume (.pdf, .docx or .txt)")
	fs.StringVar(&formURL, "form", "", "Google Form URL (viewform link)")
	fs.StringVar(&outputPath, "output", "", "Path to write the JSON report")
	fs.StringVar(&outputPDF, "output.pdf", "", "Path to write the PDF audit report")
	fs.StringVar(&serveAddr, "serve", "", "Run the HTTP API on this address instead of a single fill (e.g. --serve=:8000)")
	fs.Lookup("serve").NoOptDefVal = app.DefaultListenAddr
	fs.StringSliceVar(&corsOrigins, "cors", nil, "Allowed CORS origins for --serve")
	fs.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&llmModel, "llm.model", "", "Model used to structure low-confidence resumes")
	fs.StringVar(&llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	fs.DurationVar(&llmTimeout, "llm.timeout", 0, "Deadline for each model call")
	fs.BoolVar(&ocrEnable, "ocr", false, "Transcribe scanned PDFs with a vision model")
	fs.StringVar(&ocrModel, "ocr.model", "", "Vision model used for OCR")
	fs.StringVar(&userAgent, "user-agent", "", "User-Agent for form requests")
	fs.DurationVar(&formTimeout, "form.timeout", 0, "Deadline for fetching the form")
	fs.DurationVar(&submitTimeout, "submit.timeout", 0, "Deadline for submitting the form")
	fs.Int64Var(&maxUpload, "max-upload", 0, "Maximum accepted upload size in bytes for --serve")
	fs.BoolVar(&dryRun, "dry-run", false, "Map fields without submitting")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, false, err
	}

	var cfg app.Config
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, false, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
		app.ApplyEnvOverrides(&cfg)
	} else {
		app.ApplyEnvToConfig(&cfg)
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("resume", func() { cfg.ResumePath = resumePath })
	set("form", func() { cfg.FormURL = formURL })
	set("output", func() { cfg.OutputPath = outputPath })
	set("output.pdf", func() { cfg.OutputPDFPath = outputPDF })
	set("serve", func() {
		if serveAddr != "" {
			cfg.ListenAddr = serveAddr
		}
	})
	set("cors", func() { cfg.CORSOrigins = corsOrigins })
	set("llm.base", func() { cfg.LLMBaseURL = llmBaseURL })
	set("llm.model", func() { cfg.LLMModel = llmModel })
	set("llm.key", func() { cfg.LLMAPIKey = llmKey })
	set("llm.timeout", func() { cfg.LLMTimeout = llmTimeout })
	set("ocr", func() { cfg.OCREnable = ocrEnable })
	set("ocr.model", func() { cfg.OCRModel = ocrModel })
	set("user-agent", func() { cfg.UserAgent = userAgent })
	set("form.timeout", func() { cfg.FormFetchTimeout = formTimeout })
	set("submit.timeout", func() { cfg.SubmitTimeout = submitTimeout })
	set("max-upload", func() { cfg.MaxUploadBytes = maxUpload })
	set("dry-run", func() { cfg.DryRun = dryRun })
	set("verbose", func() { cfg.Verbose = verbose })

	serve := fs.Changed("serve")
	app.ApplyDefaults(&cfg)
	if err := app.ValidateConfig(cfg, serve); err != nil {
		return cfg, serve, err
	}
	return cfg, serve, nil
}

// run executes one fill, or serves the API until ctx is done, and returns
// the process exit code.
func run(ctx context.Context, cfg app.Config, serve bool) (int, error) {
	a, err := app.New(cfg)
	if err != nil {
		return exitFailed, fmt.Errorf("init app: %w", err)
	}
	if serve {
		if err := server.New(a, a.Config()).Run(ctx, a.Config().ListenAddr); err != nil {
			return exitFailed, err
		}
		return exitOK, nil
	}

	content, err := os.ReadFile(cfg.ResumePath)
	if err != nil {
		return exitFailed, fmt.Errorf("read resume: %w", err)
	}
	res, err := a.FillForm(ctx, cfg.FormURL, filepath.Base(cfg.ResumePath), content, cfg.DryRun)
	if errors.Is(err, app.ErrFormAnalysis) {
		return exitNotUsable, err
	}
	if err != nil {
		return exitFailed, err
	}
	if err := a.WriteReports(res); err != nil {
		return exitFailed, err
	}

	log.Info().Str("stage", "report").Int("fields", res.Filled.Len()).Msg(res.Message())
	switch {
	case res.NotATSFriendly != nil:
		return exitNotUsable, nil
	case res.DryRun, res.Submitted():
		return exitOK, nil
	}
	return exitFailed, nil
}
