package form

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureLiteral = `[null,["Apply here",[` +
	`[111,"Full Name",null,0,[[1001,null,1]]],` +
	`[222,"Email",null,0,[[1002,null,0]]],` +
	`[333,"Next page",null,8,null],` +
	`[444,"Gender",null,2,[[1003,[["Male"],["Female"]],1]]],` +
	`[555,null,null,0,[[1004,null,0]]]` +
	`],null,null,null,null,[0,0]],"/forms","Job Application"]`

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestFlatten_Fixture(t *testing.T) {
	entries, err := Flatten(decode(t, fixtureLiteral))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, Entry{ID: 1001, Label: "Full Name", Kind: 0, Required: true}, entries[0])
	assert.Equal(t, Entry{ID: 1002, Label: "Email", Kind: 0}, entries[1])
	assert.Equal(t, Entry{ID: 1003, Label: "Gender", Kind: 2, Required: true, Options: []string{"Male", "Female"}}, entries[2])
	assert.Equal(t, "", entries[3].Label)
	assert.Equal(t, "entry.1001", entries[0].Key())
}

func TestFlatten_ExcludesSessionEntries(t *testing.T) {
	entries, err := Flatten(decode(t, fixtureLiteral))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, SessionKind, e.Kind)
	}
}

func TestFlatten_Unrecognized(t *testing.T) {
	cases := []string{`[]`, `[1]`, `[null, 5]`, `[null, [1]]`, `[null, [1, "x"]]`, `{"a":1}`}
	for _, c := range cases {
		entries, err := Flatten(decode(t, c))
		assert.True(t, errors.Is(err, ErrSchemaNotRecognized), c)
		assert.Empty(t, entries, c)
	}
	_, err := Flatten(nil)
	assert.ErrorIs(t, err, ErrSchemaNotRecognized)
}

func TestFlatten_SkipsMalformedDescriptors(t *testing.T) {
	lit := `[null,[null,[` +
		`"junk",` +
		`[1,"Short"],` +
		`[2,"Bad kind","x","zero",[[7]]],` +
		`[3,"Bad subs",null,0,"nope"],` +
		`[4,"Phone",null,0,["junk",[null],[9,null,1]]]` +
		`]]]`
	entries, err := Flatten(decode(t, lit))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{ID: 9, Label: "Phone", Required: true}, entries[0])
}

func TestFlatten_FloatIDs(t *testing.T) {
	var lit any
	require.NoError(t, json.Unmarshal([]byte(`[null,[null,[[1,"Name",null,0,[[42,null,1]]]]]]`), &lit))
	entries, err := Flatten(lit)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].ID)
}

func TestID(t *testing.T) {
	assert.Equal(t, "1FAIpQLSabc_-9", ID("https://docs.google.com/forms/d/e/1FAIpQLSabc_-9/viewform?usp=sf_link"))
	assert.Equal(t, "abc123", ID("https://docs.google.com/forms/d/abc123/edit"))
	assert.Equal(t, "", ID("https://example.com/other"))
}

type stubFetcher struct {
	body string
	err  error
	got  string
}

func (s *stubFetcher) Get(_ context.Context, url string) ([]byte, string, error) {
	s.got = url
	if s.err != nil {
		return nil, "", s.err
	}
	return []byte(s.body), "text/html", nil
}

func TestAnalyze(t *testing.T) {
	page := `<html><head><title>Job Application</title></head><body>` +
		`<script>var FB_PUBLIC_LOAD_DATA_ = ` + fixtureLiteral + `;</script></body></html>`
	f := &stubFetcher{body: page}
	a := &Analyzer{Fetcher: f}
	url := "https://docs.google.com/forms/d/e/FORM42/viewform"

	s, err := a.Analyze(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, url, f.got)
	assert.Equal(t, "FORM42", s.FormID)
	assert.Equal(t, "Job Application", s.Title)
	assert.Len(t, s.Entries, 4)
}

func TestAnalyze_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := (&Analyzer{Fetcher: &stubFetcher{body: "<html>nothing</html>"}}).Analyze(ctx, "https://x/forms/d/e/a/viewform")
	assert.ErrorIs(t, err, ErrSchemaNotRecognized)

	empty := `<script>FB_PUBLIC_LOAD_DATA_ = [null,[null,[[1,"P",null,8,null]]]];</script>`
	_, err = (&Analyzer{Fetcher: &stubFetcher{body: empty}}).Analyze(ctx, "https://x/forms/d/e/a/viewform")
	assert.ErrorIs(t, err, ErrSchemaNotRecognized)

	boom := errors.New("boom")
	_, err = (&Analyzer{Fetcher: &stubFetcher{err: boom}}).Analyze(ctx, "https://x/forms/d/e/a/viewform")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSchemaNotRecognized)
}
