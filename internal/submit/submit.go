package submit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/autoform/internal/fetch"
	"github.com/hyperifyio/autoform/internal/mapper"
)

const (
	// MaxSnippetBytes bounds the response body quoted in a diagnostic.
	MaxSnippetBytes = 2000
	// MaxAuditChars bounds each value echoed back in FilledFields.
	MaxAuditChars = 200
)

// Poster sends a form-encoded POST.
type Poster interface {
	PostForm(ctx context.Context, url string, form url.Values, header http.Header) (*fetch.Response, error)
}

// FieldAudit is one submitted field with its value truncated for display.
type FieldAudit struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Result describes the outcome of one submission.
type Result struct {
	Success      bool         `json:"success"`
	StatusCode   *int         `json:"status_code,omitempty"`
	Diagnostic   string       `json:"diagnostic,omitempty"`
	FilledFields []FieldAudit `json:"filled_fields"`
}

// Client submits filled entries to a form's response endpoint. It never
// retries.
type Client struct {
	Poster Poster
}

// Submit posts filled to the response endpoint derived from formURL.
// Failures are reported in the Result, never as an error.
func (c *Client) Submit(ctx context.Context, formURL string, filled *mapper.FilledEntryMap) Result {
	res := Result{FilledFields: Audit(filled)}
	target, err := ResponseURL(formURL)
	if err != nil {
		res.Diagnostic = err.Error()
		return res
	}
	// User-Agent is left to the Poster, which applies its configured agent.
	h := http.Header{}
	h.Set("Referer", formURL)

	resp, err := c.Poster.PostForm(ctx, target, filled.Form(), h)
	if err != nil {
		log.Warn().Err(err).Str("stage", "submit").Msg("form submission error")
		res.Diagnostic = err.Error()
		return res
	}
	code := resp.StatusCode
	res.StatusCode = &code
	if code == http.StatusOK || code == http.StatusFound {
		res.Success = true
		return res
	}
	res.Diagnostic = fmt.Sprintf("status %d: %s", code, snippet(resp.Body, MaxSnippetBytes))
	log.Warn().Int("status", code).Str("stage", "submit").Msg("form submission rejected")
	return res
}

// ResponseURL replaces a trailing /viewform path segment with /formResponse,
// or appends /formResponse. The query string is kept.
func ResponseURL(formURL string) (string, error) {
	u, err := url.Parse(formURL)
	if err != nil {
		return "", fmt.Errorf("parse form url: %w", err)
	}
	p := strings.TrimSuffix(u.Path, "/")
	switch {
	case strings.HasSuffix(p, "/formResponse"):
	case strings.HasSuffix(p, "/viewform"):
		p = strings.TrimSuffix(p, "/viewform") + "/formResponse"
	default:
		p += "/formResponse"
	}
	u.Path = p
	u.RawPath = ""
	return u.String(), nil
}

// Audit lists filled fields in order with values truncated for display.
func Audit(filled *mapper.FilledEntryMap) []FieldAudit {
	keys := filled.Keys()
	out := make([]FieldAudit, 0, len(keys))
	for _, k := range keys {
		v, _ := filled.Get(k)
		out = append(out, FieldAudit{Key: k, Value: truncateRunes(v, MaxAuditChars)})
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// snippet returns at most n bytes of b without splitting a UTF-8 sequence.
func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return string(b[:cut])
}
