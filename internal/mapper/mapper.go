package mapper

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperifyio/autoform/internal/form"
	"github.com/hyperifyio/autoform/internal/resume"
)

// MaxSnippetLen bounds a raw-text line accepted as a fallback value.
const MaxSnippetLen = 500

// rule maps labels containing any keyword to a resume value.
type rule struct {
	keywords []string
	resolve  func(resume.Data) string
}

// rules are evaluated top to bottom; the first rule with a matching keyword
// wins even when its value is empty.
var rules = []rule{
	{[]string{"name", "full name"}, func(r resume.Data) string { return r.FullName }},
	{[]string{"email", "mail"}, func(r resume.Data) string { return r.Email }},
	{[]string{"phone", "mobile", "contact"}, func(r resume.Data) string { return r.Phone }},
	{[]string{"address", "location"}, func(r resume.Data) string { return r.Address }},
	{[]string{"skill", "technology"}, func(r resume.Data) string { return strings.Join(r.Skills, ", ") }},
	{[]string{"education", "degree", "university", "college"}, func(r resume.Data) string { return strings.Join(r.Education, "; ") }},
	{[]string{"experience", "work", "job", "company", "role", "position"}, func(r resume.Data) string { return strings.Join(r.WorkExperience, "; ") }},
}

var tokenRe = regexp.MustCompile(`[a-zA-Z]{3,}`)

// Map fills one value per entry, in entry order. Values may be empty.
func Map(entries []form.Entry, r resume.Data) *FilledEntryMap {
	out := NewFilledEntryMap()
	for _, e := range entries {
		out.Set(e.Key(), Value(e.Label, r))
	}
	return out
}

// Value resolves a single label against r: keyword rules, then a direct
// field lookup, then the first raw-text line mentioning a label word.
func Value(label string, r resume.Data) string {
	lower := strings.ToLower(label)
	value, matched := byRule(lower, r)
	if !matched {
		value = byLookup(label, r)
	}
	if value == "" && r.RawText != "" {
		value = byRawText(lower, r.RawText)
	}
	return value
}

func byRule(lower string, r resume.Data) (string, bool) {
	for _, rl := range rules {
		for _, k := range rl.keywords {
			if strings.Contains(lower, k) {
				return rl.resolve(r), true
			}
		}
	}
	return "", false
}

// byLookup answers labels no rule claims. Every field resume.Data.Lookup
// knows today is also claimed by a rule, so from Value this step only
// matters once Data gains a field without a keyword rule.
func byLookup(label string, r resume.Data) string {
	if label == "" {
		return ""
	}
	// A Caser holds state and is not shared between goroutines.
	title := cases.Title(language.English).String(label)
	for _, key := range []string{label, title} {
		v, ok := r.Lookup(key)
		if !ok {
			continue
		}
		if s := flatten(v); s != "" {
			return s
		}
	}
	return ""
}

// byRawText is best effort: only the first line containing each label token
// is considered, and an overlong line moves on to the next token.
func byRawText(lower, raw string) string {
	lines := strings.Split(raw, "\n")
	for _, tok := range tokenRe.FindAllString(lower, -1) {
		if s, ok := firstLineWith(lines, tok); ok && len(s) < MaxSnippetLen {
			return s
		}
	}
	return ""
}

func firstLineWith(lines []string, tok string) (string, bool) {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), tok) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	}
	return ""
}
