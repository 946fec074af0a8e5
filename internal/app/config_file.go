package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "os"
    "path/filepath"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
    Resume    string `yaml:"resume" json:"resume"`
    Form      string `yaml:"form" json:"form"`
    Output    string `yaml:"output" json:"output"`
    OutputPDF string `yaml:"outputPDF" json:"outputPDF"`

    Server struct {
        Listen string   `yaml:"listen" json:"listen"`
        CORS   []string `yaml:"cors" json:"cors"`
    } `yaml:"server" json:"server"`

    LLM struct {
        BaseURL string        `yaml:"base" json:"base"`
        Model   string        `yaml:"model" json:"model"`
        APIKey  string        `yaml:"key" json:"key"`
        Timeout time.Duration `yaml:"timeout" json:"timeout"`
    } `yaml:"llm" json:"llm"`

    OCR struct {
        Enable bool   `yaml:"enable" json:"enable"`
        Model  string `yaml:"model" json:"model"`
    } `yaml:"ocr" json:"ocr"`

    HTTP struct {
        UserAgent      string        `yaml:"userAgent" json:"userAgent"`
        FormTimeout    time.Duration `yaml:"formTimeout" json:"formTimeout"`
        SubmitTimeout  time.Duration `yaml:"submitTimeout" json:"submitTimeout"`
        MaxUploadBytes int64         `yaml:"maxUploadBytes" json:"maxUploadBytes"`
    } `yaml:"http" json:"http"`

    DryRun  bool `yaml:"dryRun" json:"dryRun"`
    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.ResumePath == "" && fc.Resume != "" { cfg.ResumePath = fc.Resume }
    if cfg.FormURL == "" && fc.Form != "" { cfg.FormURL = fc.Form }
    if cfg.OutputPath == "" && fc.Output != "" { cfg.OutputPath = fc.Output }
    if cfg.OutputPDFPath == "" && fc.OutputPDF != "" { cfg.OutputPDFPath = fc.OutputPDF }

    if cfg.ListenAddr == "" && fc.Server.Listen != "" { cfg.ListenAddr = fc.Server.Listen }
    if len(cfg.CORSOrigins) == 0 && len(fc.Server.CORS) > 0 { cfg.CORSOrigins = append([]string{}, fc.Server.CORS...) }

    if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if cfg.LLMTimeout == 0 && fc.LLM.Timeout > 0 { cfg.LLMTimeout = fc.LLM.Timeout }

    if !cfg.OCREnable && fc.OCR.Enable { cfg.OCREnable = true }
    if cfg.OCRModel == "" && fc.OCR.Model != "" { cfg.OCRModel = fc.OCR.Model }

    if cfg.UserAgent == "" && fc.HTTP.UserAgent != "" { cfg.UserAgent = fc.HTTP.UserAgent }
    if cfg.FormFetchTimeout == 0 && fc.HTTP.FormTimeout > 0 { cfg.FormFetchTimeout = fc.HTTP.FormTimeout }
    if cfg.SubmitTimeout == 0 && fc.HTTP.SubmitTimeout > 0 { cfg.SubmitTimeout = fc.HTTP.SubmitTimeout }
    if cfg.MaxUploadBytes == 0 && fc.HTTP.MaxUploadBytes > 0 { cfg.MaxUploadBytes = fc.HTTP.MaxUploadBytes }

    if !cfg.DryRun && fc.DryRun { cfg.DryRun = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig performs minimal schema validation for required settings.
// serve selects the HTTP server mode, which needs no resume or form.
func ValidateConfig(cfg Config, serve bool) error {
    if !serve {
        if trim(cfg.ResumePath) == "" {
            return errors.New("config: resume path is required")
        }
        if trim(cfg.FormURL) == "" {
            return errors.New("config: form url is required")
        }
        u, err := url.Parse(cfg.FormURL)
        if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
            return fmt.Errorf("config: form url must be an absolute http(s) URL: %q", cfg.FormURL)
        }
    } else if trim(cfg.ListenAddr) == "" {
        return errors.New("config: listen address is required")
    }
    if cfg.OCREnable && trim(cfg.OCRModel) == "" {
        return errors.New("config: ocr.model is required when OCR is enabled (or set OCR_MODEL)")
    }
    if cfg.FormFetchTimeout < 0 || cfg.SubmitTimeout < 0 || cfg.LLMTimeout < 0 || cfg.MaxUploadBytes < 0 {
        return errors.New("config: negative limits are not allowed")
    }
    return nil
}

func trim(s string) string {
    i := 0
    j := len(s)
    for i < j && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') { i++ }
    for j > i && (s[j-1] == ' ' || s[j-1] == '\t' || s[j-1] == '\n' || s[j-1] == '\r') { j-- }
    return s[i:j]
}
