package resume

import (
	"context"
	"encoding/json"
	"strings"
)

// Data is the structured view of a candidate document. Every field is always
// present: missing information is an empty string or an empty slice.
type Data struct {
	FullName       string   `json:"Full Name"`
	Email          string   `json:"Email"`
	Phone          string   `json:"Phone Number"`
	Address        string   `json:"Address"`
	Education      []string `json:"Education"`
	WorkExperience []string `json:"Work Experience"`
	Skills         []string `json:"Skills"`
	// RawText is the full source text, kept for fallback matching.
	RawText string `json:"raw_text"`
}

// Structurer turns document text into Data. A false return means the
// strategy produced nothing usable and the caller keeps its own result.
type Structurer interface {
	Structure(ctx context.Context, text string) (Data, bool)
}

// Heuristic is the default Structurer backed by Extract.
type Heuristic struct{}

func (Heuristic) Structure(_ context.Context, text string) (Data, bool) {
	return Extract(text), true
}

// LowConfidence reports whether neither a name nor an email was found.
func (d Data) LowConfidence() bool {
	return strings.TrimSpace(d.FullName) == "" && strings.TrimSpace(d.Email) == ""
}

// Normalized returns a copy with nil slices replaced by empty ones.
func (d Data) Normalized() Data {
	d.Education = nonNil(d.Education)
	d.WorkExperience = nonNil(d.WorkExperience)
	d.Skills = nonNil(d.Skills)
	return d
}

// MarshalJSON keeps list fields encoded as [] rather than null.
func (d Data) MarshalJSON() ([]byte, error) {
	type plain Data
	return json.Marshal(plain(d.Normalized()))
}

// Lookup resolves a field by its display name ("Full Name", "Skills", ...).
// String fields return string, list fields return []string.
func (d Data) Lookup(name string) (any, bool) {
	switch name {
	case "Full Name":
		return d.FullName, true
	case "Email":
		return d.Email, true
	case "Phone Number", "Phone":
		return d.Phone, true
	case "Address":
		return d.Address, true
	case "Education":
		return d.Education, true
	case "Work Experience":
		return d.WorkExperience, true
	case "Skills":
		return d.Skills, true
	}
	return nil, false
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
