package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    if cfg.LLMBaseURL == "" {
        cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
    }
    if cfg.LLMModel == "" {
        cfg.LLMModel = os.Getenv("LLM_MODEL")
    }
    if cfg.LLMAPIKey == "" {
        // Support both LLM_API_KEY and OPENROUTER_API_KEY; prefer LLM_API_KEY if set
        v := os.Getenv("LLM_API_KEY")
        if v == "" { v = os.Getenv("OPENROUTER_API_KEY") }
        cfg.LLMAPIKey = v
    }
    if cfg.OCRModel == "" {
        cfg.OCRModel = os.Getenv("OCR_MODEL")
    }
    if cfg.ListenAddr == "" {
        cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
    }
    if len(cfg.CORSOrigins) == 0 {
        if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
            cfg.CORSOrigins = SplitList(v)
        }
    }
    if cfg.UserAgent == "" {
        cfg.UserAgent = os.Getenv("USER_AGENT")
    }

    // Optional durations
    setDuration := func(dst *time.Duration, envKey string) {
        if *dst != 0 { return }
        if s := os.Getenv(envKey); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                *dst = d
            }
        }
    }
    setDuration(&cfg.FormFetchTimeout, "FORM_FETCH_TIMEOUT")
    setDuration(&cfg.SubmitTimeout, "SUBMIT_TIMEOUT")
    setDuration(&cfg.LLMTimeout, "LLM_TIMEOUT")

    if cfg.MaxUploadBytes == 0 {
        if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")), 10, 64); err == nil && n > 0 {
            cfg.MaxUploadBytes = n
        }
    }

    // Booleans
    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.OCREnable, "OCR_ENABLE")
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This is used to let env take
// precedence over values coming from a config file while still allowing flags
// to remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := os.Getenv("LLM_BASE_URL"); v != "" { cfg.LLMBaseURL = v }
    if v := os.Getenv("LLM_MODEL"); v != "" { cfg.LLMModel = v }
    if v := os.Getenv("OPENROUTER_API_KEY"); v != "" { cfg.LLMAPIKey = v }
    if v := os.Getenv("LLM_API_KEY"); v != "" { cfg.LLMAPIKey = v }
    if v := os.Getenv("OCR_MODEL"); v != "" { cfg.OCRModel = v }
    if v := os.Getenv("LISTEN_ADDR"); v != "" { cfg.ListenAddr = v }
    if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" { cfg.CORSOrigins = SplitList(v) }
    if v := os.Getenv("USER_AGENT"); v != "" { cfg.UserAgent = v }

    setDuration := func(dst *time.Duration, envKey string) {
        if s := os.Getenv(envKey); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                *dst = d
            }
        }
    }
    setDuration(&cfg.FormFetchTimeout, "FORM_FETCH_TIMEOUT")
    setDuration(&cfg.SubmitTimeout, "SUBMIT_TIMEOUT")
    setDuration(&cfg.LLMTimeout, "LLM_TIMEOUT")

    if s := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); s != "" {
        if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
            cfg.MaxUploadBytes = n
        }
    }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            switch s {
            case "1", "true", "yes", "on":
                *dst = true
            case "0", "false", "no", "off":
                *dst = false
            }
        }
    }
    setBool(&cfg.OCREnable, "OCR_ENABLE")
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
}
