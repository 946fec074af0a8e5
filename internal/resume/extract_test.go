package resume

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane.doe@example.com
+1 (555) 010-2030

Skills: Go, SQL; Docker
Kubernetes

Education
BSc Computer Science, MIT
MSc Data Engineering, Stanford

Work Experience
Acme Corp - Backend Engineer
Globex - Intern`

func TestExtract_SampleResume(t *testing.T) {
	d := Extract(sampleResume)

	assert.Equal(t, "Jane Doe", d.FullName)
	assert.Equal(t, "jane.doe@example.com", d.Email)
	assert.Equal(t, "+1 (555) 010-2030", d.Phone)
	assert.Equal(t, "", d.Address)
	assert.Equal(t, []string{"Go", "SQL", "Docker", "Kubernetes"}, d.Skills)
	assert.Equal(t, []string{"BSc Computer Science, MIT", "MSc Data Engineering, Stanford"}, d.Education)
	assert.Equal(t, []string{"Acme Corp - Backend Engineer", "Globex - Intern"}, d.WorkExperience)
	assert.Equal(t, sampleResume, d.RawText)
}

func TestExtract_EmailIsExactSubstring(t *testing.T) {
	cases := map[string]string{
		"reach me at a.b+tag@mail.example.co.uk today": "a.b+tag@mail.example.co.uk",
		"Email: user@domain.tld.":                      "user@domain.tld",
		"(first@x.io), second@y.io":                    "first@x.io",
	}
	for text, want := range cases {
		assert.Equal(t, want, Extract(text).Email, text)
	}
}

func TestExtract_LabeledNameWinsOverGenericLine(t *testing.T) {
	text := "Senior Platform Engineer\nFull Name:   Alice Example  \nalice@example.com"
	assert.Equal(t, "Alice Example", Extract(text).FullName)
}

func TestExtract_SkipsResumeHeadings(t *testing.T) {
	text := "RESUME\nCurriculum Vitae of\nJane Q Public\n"
	assert.Equal(t, "Jane Q Public", Extract(text).FullName)
}

// Known imprecision: a leading job-title line is taken as the name.
func TestExtract_JobTitleLineMisfires(t *testing.T) {
	text := "Senior Software Engineer\nJane Doe\njane@example.com"
	assert.Equal(t, "Senior Software Engineer", Extract(text).FullName)
}

func TestExtract_EmptyLabeledNameFallsThrough(t *testing.T) {
	text := "Name:\nBob Builder\n"
	assert.Equal(t, "Bob Builder", Extract(text).FullName)
}

func TestExtract_NoSignal(t *testing.T) {
	d := Extract("")
	assert.Empty(t, d.FullName)
	assert.Empty(t, d.Email)
	assert.Empty(t, d.Phone)
	require.NotNil(t, d.Skills)
	require.NotNil(t, d.Education)
	require.NotNil(t, d.WorkExperience)
	assert.True(t, d.LowConfidence())
}

func TestExtract_CRLFDoesNotSplitSections(t *testing.T) {
	text := "Skills:\r\nGo\r\nSQL\r\n\r\nEducation\r\nBSc Physics"
	d := Extract(text)
	assert.Equal(t, []string{"Go", "SQL"}, d.Skills)
	assert.Equal(t, []string{"BSc Physics"}, d.Education)
}

func TestExtract_AdjacentHeadingsEndSections(t *testing.T) {
	for _, heading := range []string{"Work Experience", "Professional Experience", "Experience"} {
		t.Run(heading, func(t *testing.T) {
			text := "Jane Doe\nSkills: Go, SQL\nEducation\nBS Computer Science\n" + heading + "\nAcme Corp, Engineer"
			d := Extract(text)
			assert.Equal(t, []string{"Go", "SQL"}, d.Skills)
			assert.Equal(t, []string{"BS Computer Science"}, d.Education)
			assert.Equal(t, []string{"Acme Corp, Engineer"}, d.WorkExperience)
		})
	}

	d := Extract("Jane Doe\nSkills: Go, SQL\nProfessional Experience\nBeta Inc")
	assert.Equal(t, []string{"Go", "SQL"}, d.Skills)
	assert.Equal(t, []string{"Beta Inc"}, d.WorkExperience)

	d = Extract("Work Experience\nBeta Inc\nSkills\nRust")
	assert.Equal(t, []string{"Beta Inc"}, d.WorkExperience)
	assert.Equal(t, []string{"Rust"}, d.Skills)
}

func TestExtract_OtherNameLabelsDoNotWin(t *testing.T) {
	text := "John Smith\njohn@x.com\nCompany Name: Acme Corp\nProject Name: Apollo\nUsername: jsmith"
	assert.Equal(t, "John Smith", Extract(text).FullName)

	assert.Equal(t, "Ann Lee", Extract("Platform Team Lead\nCandidate Name: Ann Lee").FullName)
	assert.Equal(t, "Ann Lee", Extract("Platform Team Lead\n  NAME :  Ann Lee").FullName)
}

func TestExtract_Idempotent(t *testing.T) {
	assert.Equal(t, Extract(sampleResume), Extract(sampleResume))
}

func TestHeuristic_Structure(t *testing.T) {
	d, ok := Heuristic{}.Structure(context.Background(), "John Smith\njohn@x.com\n555-123-4567")
	require.True(t, ok)
	assert.Equal(t, "John Smith", d.FullName)
	assert.Equal(t, "john@x.com", d.Email)
	assert.Equal(t, "555-123-4567", d.Phone)
	assert.False(t, d.LowConfidence())
}

func TestData_MarshalJSONKeepsAllKeys(t *testing.T) {
	b, err := json.Marshal(Data{FullName: "A B"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"Full Name", "Email", "Phone Number", "Address", "Education", "Work Experience", "Skills", "raw_text"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, []any{}, m["Skills"])
}

func TestData_Lookup(t *testing.T) {
	d := Data{Phone: "123", Skills: []string{"Go"}}
	v, ok := d.Lookup("Phone Number")
	require.True(t, ok)
	assert.Equal(t, "123", v)

	v, ok = d.Lookup("Skills")
	require.True(t, ok)
	assert.Equal(t, []string{"Go"}, v)

	_, ok = d.Lookup("Favourite Colour")
	assert.False(t, ok)
}
