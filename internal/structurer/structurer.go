package structurer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/autoform/internal/llm"
	"github.com/hyperifyio/autoform/internal/resume"
)

// MaxInputChars bounds the text prefix sent to the model.
const MaxInputChars = 2000

const systemMessage = "You are a resume parsing assistant. Respond with strict JSON only, no narration and no markdown."

const instruction = `Extract and structure the following resume information into JSON format:

{
    "Full Name": "extracted full name",
    "Email": "extracted email address",
    "Phone Number": "extracted phone number",
    "Address": "extracted address",
    "Education": "education background",
    "Work Experience": "work experience summary",
    "Skills": "technical and professional skills"
}

Resume text:
%s

Return only valid JSON, no additional text.`

// LLM structures resume text with an OpenAI-compatible chat model. Any
// failure is reported as absent so callers keep their heuristic result.
type LLM struct {
	Client      llm.Client
	Model       string
	MaxTokens   int
	Temperature float32
	// Timeout bounds the completion call. Zero means no extra deadline.
	Timeout time.Duration
}

var errNotConfigured = errors.New("structurer not configured")

// Structure implements resume.Structurer.
func (s *LLM) Structure(ctx context.Context, text string) (resume.Data, bool) {
	d, err := s.structure(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("stage", "structurer").Msg("structuring strategy failed; keeping heuristic result")
		return resume.Data{}, false
	}
	return d, true
}

func (s *LLM) structure(ctx context.Context, text string) (resume.Data, error) {
	if s == nil || s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return resume.Data{}, errNotConfigured
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	user := fmt.Sprintf(instruction, Truncate(text, MaxInputChars))
	log.Debug().Str("stage", "structurer").Str("model", s.Model).Int("user_len", len(user)).Msg("structurer prompt")

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: s.Temperature,
		MaxTokens:   maxTokens,
		N:           1,
	})
	if err != nil {
		return resume.Data{}, fmt.Errorf("structurer call: %w", err)
	}
	raw, err := llm.FirstContent(resp)
	if err != nil {
		return resume.Data{}, err
	}
	d, err := Parse(raw)
	if err != nil {
		return resume.Data{}, err
	}
	d.RawText = text
	return d, nil
}

// payload mirrors the seven-key collaborator schema.
type payload struct {
	FullName       string     `json:"Full Name"`
	Email          string     `json:"Email"`
	Phone          string     `json:"Phone Number"`
	Address        string     `json:"Address"`
	Education      stringList `json:"Education"`
	WorkExperience stringList `json:"Work Experience"`
	Skills         stringList `json:"Skills"`
}

// ErrEmptyResponse and ErrNoContactFields classify rejected model output.
var (
	ErrEmptyResponse   = errors.New("empty model response")
	ErrNoContactFields = errors.New("model output has no name, email or phone")
)

// Parse unwraps and validates a model response. A record is accepted only
// when at least one of name, email or phone is non-empty.
func Parse(raw string) (resume.Data, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return resume.Data{}, ErrEmptyResponse
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	var p payload
	if err := dec.Decode(&p); err != nil {
		return resume.Data{}, fmt.Errorf("parse structurer json: %w", err)
	}
	d := resume.Data{
		FullName:       strings.TrimSpace(p.FullName),
		Email:          strings.TrimSpace(p.Email),
		Phone:          strings.TrimSpace(p.Phone),
		Address:        strings.TrimSpace(p.Address),
		Education:      []string(p.Education),
		WorkExperience: []string(p.WorkExperience),
		Skills:         []string(p.Skills),
	}
	if d.FullName == "" && d.Email == "" && d.Phone == "" {
		return resume.Data{}, ErrNoContactFields
	}
	return d.Normalized(), nil
}

// CleanJSON strips markdown code fences and collapses whitespace.
func CleanJSON(content string) string {
	if _, after, ok := strings.Cut(content, "```json"); ok {
		content, _, _ = strings.Cut(after, "```")
	} else if _, after, ok := strings.Cut(content, "```"); ok {
		content, _, _ = strings.Cut(after, "```")
	}
	return strings.Join(strings.Fields(content), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// stringList accepts either a JSON string or an array of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = []string{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = nonEmpty([]string{s})
		return nil
	}
	var items []any
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	*l = nonEmpty(out)
	return nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
