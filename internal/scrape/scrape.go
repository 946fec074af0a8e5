package scrape

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

// cursor is the state shared by the attempts tried against one span.
type cursor struct {
	src  string
	name string
}

// attempt tries to recover the literal from a span. It never panics and
// reports absence with false.
type attempt func(c *cursor) (any, bool)

// attempts are ordered by cost; the first success wins.
var attempts = []attempt{assignmentRegex, bracketScan}

// Literal recovers the JSON-compatible array assigned to name inside html.
// Script bodies that mention name are searched first, then the whole
// document.
func Literal(html, name string) (any, bool) {
	if name == "" || !strings.Contains(html, name) {
		return nil, false
	}
	for _, span := range candidateSpans(html, name) {
		c := &cursor{src: span, name: name}
		for _, try := range attempts {
			if v, ok := try(c); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// assignmentRegex matches `[var] NAME = [ ... ];` lazily and parses the
// captured array.
func assignmentRegex(c *cursor) (any, bool) {
	re, err := regexp.Compile(`(?s)(?:var\s+)?` + regexp.QuoteMeta(c.name) + `\s*=\s*(\[.*?\]);`)
	if err != nil {
		return nil, false
	}
	m := re.FindStringSubmatch(c.src)
	if m == nil {
		return nil, false
	}
	return parseArray(m[1])
}

// bracketScan starts at the first '[' after the '=' that follows name and
// counts bracket depth. Every return to depth zero is a candidate; scanning
// continues past candidates that fail to parse.
func bracketScan(c *cursor) (any, bool) {
	idx := strings.Index(c.src, c.name)
	if idx < 0 {
		return nil, false
	}
	eq := strings.IndexByte(c.src[idx:], '=')
	if eq < 0 {
		return nil, false
	}
	eq += idx
	start := strings.IndexByte(c.src[eq:], '[')
	if start < 0 {
		return nil, false
	}
	start += eq

	depth := 0
	for i := start; i < len(c.src); i++ {
		switch c.src[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				if v, ok := parseArray(c.src[start : i+1]); ok {
					return v, true
				}
			}
		}
	}
	return nil, false
}

var errTrailingData = errors.New("trailing data after literal")

// parseArray decodes s as a single JSON array. Numbers stay json.Number so
// large entry ids keep their exact digits.
func parseArray(s string) (any, bool) {
	v, err := decodeStrict(s)
	if err != nil {
		return nil, false
	}
	if _, ok := v.([]any); !ok {
		return nil, false
	}
	return v, true
}

func decodeStrict(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}
