package resume

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9_.+-]+@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)+`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\-(). ]{6,}\d`)

	skillsRe     = sectionRe(`skills`)
	educationRe  = sectionRe(`education`)
	experienceRe = sectionRe(`work experience|professional experience|experience`)

	listSplitRe = regexp.MustCompile(`[;,\n]`)
)

// headings lists every recognized section heading, longest phrase first so a
// multi-word heading ends a section as a whole.
const headings = `work experience|professional experience|experience|education|skills`

// sectionRe captures the text after heading up to a blank line, the next
// recognized heading, or the end of text.
func sectionRe(heading string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)(?:` + heading + `)[:\s]*(.+?)(?:\n\n|` + headings + `|$)`)
}

// rule fills one part of Data from normalized text.
type rule struct {
	name  string
	apply func(text string, d *Data)
}

// rules run top to bottom; each owns a distinct field.
var rules = []rule{
	{"email", func(t string, d *Data) { d.Email = emailRe.FindString(t) }},
	{"phone", func(t string, d *Data) { d.Phone = strings.TrimSpace(phoneRe.FindString(t)) }},
	{"name", func(t string, d *Data) { d.FullName = findName(t) }},
	{"skills", func(t string, d *Data) { d.Skills = section(skillsRe, t, listSplitRe.Split) }},
	{"education", func(t string, d *Data) { d.Education = section(educationRe, t, splitLines) }},
	{"experience", func(t string, d *Data) { d.WorkExperience = section(experienceRe, t, splitLines) }},
}

// Extract derives resume fields from free text using pattern rules. It never
// fails; text without any signal yields empty fields.
func Extract(text string) Data {
	t := normalizeNewlines(text)
	d := Data{RawText: text}
	for _, r := range rules {
		r.apply(t, &d)
	}
	return d.Normalized()
}

// nameLabels are the labels taken to introduce a personal name.
var nameLabels = map[string]bool{
	"name":           true,
	"full name":      true,
	"candidate name": true,
	"applicant name": true,
	"legal name":     true,
	"your name":      true,
}

// findName prefers a "Full Name: X" style line anywhere in the text and
// otherwise takes the first short line that reads like a personal name.
// The second pass misfires on documents opening with a job title.
func findName(t string) string {
	lines := nonEmptyLines(t)
	for _, line := range lines {
		label, value, ok := strings.Cut(line, ":")
		if !ok || !nameLabels[strings.Join(strings.Fields(strings.ToLower(label)), " ")] {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	for _, line := range lines {
		if looksLikeName(line) {
			return strings.TrimSpace(strings.TrimRight(line, ":"))
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	if len(line) <= 2 {
		return false
	}
	low := strings.ToLower(line)
	if strings.Contains(low, "resume") || strings.Contains(low, "curriculum") || strings.Contains(low, "email") {
		return false
	}
	if strings.IndexFunc(line, unicode.IsLetter) < 0 {
		return false
	}
	n := len(strings.Fields(line))
	return n >= 2 && n <= 5
}

func section(re *regexp.Regexp, t string, split func(string, int) []string) []string {
	m := re.FindStringSubmatch(t)
	if m == nil {
		return []string{}
	}
	return cleanFragments(split(strings.TrimSpace(m[1]), -1))
}

func splitLines(s string, n int) []string {
	return strings.SplitN(s, "\n", n)
}

func cleanFragments(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonEmptyLines(t string) []string {
	return cleanFragments(strings.Split(t, "\n"))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
