package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopLevelNodes(t *testing.T) {
	src := []byte(`/* banner */
h1 {
  color: red;
}

@import url("extra.css");

@media screen {
  p { margin: 0; }
}
`)
	sheet, err := NewCSS().Parse(context.Background(), src, "a.css")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 4)

	assert.Equal(t, KindComment, sheet.Nodes[0].Kind)
	assert.Equal(t, "/* banner */", sheet.Nodes[0].Text)

	assert.Equal(t, KindRule, sheet.Nodes[1].Kind)
	assert.Equal(t, "h1 {\n  color: red;\n}", sheet.Nodes[1].Text)
	assert.Equal(t, 2, sheet.Nodes[1].Pos.Line)
	assert.Equal(t, 0, sheet.Nodes[1].Pos.Col)

	assert.Equal(t, KindAtRule, sheet.Nodes[2].Kind)
	assert.Equal(t, `@import url("extra.css");`, sheet.Nodes[2].Text)

	assert.Equal(t, KindAtRule, sheet.Nodes[3].Kind)
	assert.Equal(t, 8, sheet.Nodes[3].Pos.Line)

	for _, n := range sheet.Nodes {
		assert.Equal(t, "a.css", n.Origin)
	}
}

func TestParseRetainsSourceContent(t *testing.T) {
	src := []byte("a { color: blue; }\n")
	sheet, err := NewCSS().Parse(context.Background(), src, "x.css")
	require.NoError(t, err)
	assert.Equal(t, src, sheet.Sources["x.css"])
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unterminated comment": "/* never closed",
		"unterminated block":   "a { color: red;",
		"unterminated string":  `a { content: "oops; }`,
		"stray close brace":    "}",
		"trailing garbage":     "a",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCSS().Parse(context.Background(), []byte(src), "bad.css")
			assert.Error(t, err)
		})
	}
}

func TestParseBracesInsideStringsAndComments(t *testing.T) {
	src := []byte(`a { content: "}{"; /* } */ color: red; }`)
	sheet, err := NewCSS().Parse(context.Background(), src, "a.css")
	require.NoError(t, err)
	require.Len(t, sheet.Nodes, 1)
	assert.Equal(t, string(src), sheet.Nodes[0].Text)
}

func TestCloneIsDeep(t *testing.T) {
	sheet, err := NewCSS().Parse(context.Background(), []byte("a { color: red; }"), "a.css")
	require.NoError(t, err)

	clone := sheet.Clone()
	clone.Nodes[0].Text = "mutated"
	clone.Sources["a.css"][0] = 'X'

	assert.Equal(t, "a { color: red; }", sheet.Nodes[0].Text)
	assert.Equal(t, byte('a'), sheet.Sources["a.css"][0])
}

func TestAppendPreservesOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	first, err := NewCSS().Parse(ctx, []byte("a { color: red; }"), "a.css")
	require.NoError(t, err)
	second, err := NewCSS().Parse(ctx, []byte("b { color: blue; }"), "b.css")
	require.NoError(t, err)

	first.Append(second)
	require.Len(t, first.Nodes, 2)
	assert.Equal(t, "a.css", first.Nodes[0].Origin)
	assert.Equal(t, "b.css", first.Nodes[1].Origin)
	assert.Equal(t, []string{"a.css", "b.css"}, first.Origins())

	// The merged root must not alias the appended unit.
	first.Nodes[1].Text = "mutated"
	assert.Equal(t, "b { color: blue; }", second.Nodes[0].Text)
}
