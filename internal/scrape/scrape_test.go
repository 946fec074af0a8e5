package scrape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const varName = "FB_PUBLIC_LOAD_DATA_"

func expectedLiteral() any {
	return []any{
		json.Number("1"),
		[]any{json.Number("2"), "a"},
		[]any{json.Number("3")},
	}
}

func TestLiteral_FastPath(t *testing.T) {
	doc := `<html><head><script>var FB_PUBLIC_LOAD_DATA_ = [1,[2,"a"],[3]];</script></head><body></body></html>`
	v, ok := Literal(doc, varName)
	require.True(t, ok)
	assert.Equal(t, expectedLiteral(), v)
}

func TestLiteral_FallbackWithoutSemicolon(t *testing.T) {
	doc := "<script>\nFB_PUBLIC_LOAD_DATA_ =\n  [1,[2,\"a\"],[3]]\n</script>"
	c := &cursor{src: doc, name: varName}
	_, ok := assignmentRegex(c)
	require.False(t, ok, "fast path should not match")

	v, ok := Literal(doc, varName)
	require.True(t, ok)
	assert.Equal(t, expectedLiteral(), v)
}

func TestLiteral_SameResultOnBothPaths(t *testing.T) {
	src := `FB_PUBLIC_LOAD_DATA_ = [1,[2,"a"],[3]];`
	c := &cursor{src: src, name: varName}
	fast, ok := assignmentRegex(c)
	require.True(t, ok)
	scanned, ok := bracketScan(c)
	require.True(t, ok)
	assert.Equal(t, fast, scanned)
}

func TestLiteral_ContinuesPastFailedClosure(t *testing.T) {
	doc := `<script>FB_PUBLIC_LOAD_DATA_ = ["][", 1]</script>`
	v, ok := Literal(doc, varName)
	require.True(t, ok)
	assert.Equal(t, []any{"][", json.Number("1")}, v)
}

func TestLiteral_RegexCaptureFailsThenScanRecovers(t *testing.T) {
	// The lazy regex stops at the first "];" which lives inside a string.
	doc := `<script>FB_PUBLIC_LOAD_DATA_ = [["x];y["], 2];</script>`
	v, ok := Literal(doc, varName)
	require.True(t, ok)
	assert.Equal(t, []any{[]any{"x];y["}, json.Number("2")}, v)
}

func TestLiteral_PrefersScriptBlocks(t *testing.T) {
	doc := `<body><p>FB_PUBLIC_LOAD_DATA_ = [9];</p><script>var FB_PUBLIC_LOAD_DATA_ = [1];</script></body>`
	v, ok := Literal(doc, varName)
	require.True(t, ok)
	assert.Equal(t, []any{json.Number("1")}, v)
}

func TestLiteral_KeepsLargeIDsExact(t *testing.T) {
	doc := `<script>var FB_PUBLIC_LOAD_DATA_ = [[1234567890123456789]];</script>`
	v, ok := Literal(doc, varName)
	require.True(t, ok)
	assert.Equal(t, []any{[]any{json.Number("1234567890123456789")}}, v)
}

func TestLiteral_Absent(t *testing.T) {
	cases := []string{
		`<script>var other = [1];</script>`,
		`<script>var FB_PUBLIC_LOAD_DATA_ = [1, 2</script>`,
		`<script>var FB_PUBLIC_LOAD_DATA_ = {"a": 1};</script>`,
		`<script>FB_PUBLIC_LOAD_DATA_</script>`,
	}
	for _, doc := range cases {
		_, ok := Literal(doc, varName)
		assert.False(t, ok, doc)
	}
	_, ok := Literal(`<script>var x = [1];</script>`, "")
	assert.False(t, ok)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Job Application", Title(`<html><head><title> Job Application </title></head><body></body></html>`))
	assert.Equal(t, "OG Title", Title(`<html><head><meta property="og:title" content="OG Title"></head></html>`))
	assert.Equal(t, "", Title(`<html><body>no title</body></html>`))
}
