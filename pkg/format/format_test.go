package format_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gotdop/pkg/asdl"
	"github.com/sandrolain/gotdop/pkg/format"
	"github.com/sandrolain/gotdop/pkg/types"
)

var reg = asdl.MustParseSchema([]byte(`
module: demo
types:
  - name: expr
    sum:
      - name: Num
        fields: [{name: n, type: int}]
      - name: Name
        fields: [{name: s, type: string}]
      - name: Add
        fields: [{name: left, type: expr}, {name: right, type: expr}]
      - name: List
        fields:
          - {name: items, type: "expr*"}
          - {name: flag, type: bool}
          - {name: note, type: "string?"}
`))

func build(t *testing.T, name string, positional ...any) *asdl.Record {
	t.Helper()
	desc, err := reg.Compound("expr." + name)
	require.NoError(t, err)
	r, err := asdl.Construct(desc, positional, nil)
	require.NoError(t, err)
	return r
}

func num(t *testing.T, n int) *asdl.Record { return build(t, "Num", n) }

func fullString(t *testing.T, obj asdl.Obj) string {
	t.Helper()
	tree, err := format.MakePrettyTree(reg, obj)
	require.NoError(t, err)
	return format.String(tree)
}

func abbrevString(t *testing.T, obj asdl.Obj, hooks format.Hooks) string {
	t.Helper()
	tree, err := format.MakeAbbreviatedTree(reg, obj, hooks)
	require.NoError(t, err)
	return format.String(tree)
}

func TestFullForm(t *testing.T) {
	tests := []struct {
		name     string
		obj      func(t *testing.T) asdl.Obj
		expected string
	}{
		{
			name:     "scalar",
			obj:      func(t *testing.T) asdl.Obj { return num(t, 1) },
			expected: "(expr.Num n:1)",
		},
		{
			name:     "nested",
			obj:      func(t *testing.T) asdl.Obj { return build(t, "Add", num(t, 1), build(t, "Name", "x")) },
			expected: "(expr.Add left:(expr.Num n:1) right:(expr.Name s:x))",
		},
		{
			name:     "empty array and absent maybe are omitted",
			obj:      func(t *testing.T) asdl.Obj { return build(t, "List", nil, true, nil) },
			expected: "(expr.List flag:T)",
		},
		{
			name: "array and quoted string",
			obj: func(t *testing.T) asdl.Obj {
				return build(t, "List", []any{num(t, 1), num(t, 2)}, false, "hi there")
			},
			expected: `(expr.List items:[(expr.Num n:1) (expr.Num n:2)] flag:F note:"hi there")`,
		},
		{
			name:     "empty string",
			obj:      func(t *testing.T) asdl.Obj { return build(t, "Name", "") },
			expected: `(expr.Name s:"")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fullString(t, tt.obj(t)))
		})
	}
}

func TestPrettyNodeField(t *testing.T) {
	tree, err := format.MakePrettyTree(reg, build(t, "List", nil, true, "n"))
	require.NoError(t, err)

	assert.Equal(t, "expr.List", tree.NodeType)
	assert.Nil(t, tree.Field("items"))
	assert.Equal(t, format.Leaf("T", format.ColorOtherConst), tree.Field("flag"))
	assert.Equal(t, format.Leaf("n", format.ColorStringConst), tree.Field("note"))
}

func TestAbbreviatedForm(t *testing.T) {
	add := build(t, "Add", num(t, 1), build(t, "Name", "x"))
	list := build(t, "List", []any{num(t, 1), num(t, 2)}, false, nil)

	assert.Equal(t, "1", abbrevString(t, num(t, 1), nil))
	assert.Equal(t, "(Add 1 x)", abbrevString(t, add, nil))
	assert.Equal(t, "(List [1 2] F)", abbrevString(t, list, nil))
}

func TestAbbreviationHooks(t *testing.T) {
	infix := func(obj asdl.Obj, node *format.PrettyNode) format.Pretty {
		return &format.PrettyNode{
			NodeType:      "+",
			Left:          "(",
			Right:         ")",
			Abbrev:        true,
			UnnamedFields: []format.Pretty{node.Field("left"), node.Field("right")},
		}
	}
	declined := func(asdl.Obj, *format.PrettyNode) format.Pretty { return nil }

	add := build(t, "Add", num(t, 1), build(t, "Add", num(t, 2), num(t, 3)))

	assert.Equal(t, "(+ 1 (+ 2 3))", abbrevString(t, add, format.Hooks{"expr.Add": infix}))
	assert.Equal(t, "(Add 1 (Add 2 3))", abbrevString(t, add, format.Hooks{"expr.Add": declined}))
}

func TestMakeTreeErrors(t *testing.T) {
	loc := asdl.MustParseSchema([]byte("types:\n  - name: loc\n    product: [{name: line, type: int}]\n"))
	desc, err := loc.Compound("loc")
	require.NoError(t, err)
	r, err := asdl.Construct(desc, []any{1}, nil)
	require.NoError(t, err)

	_, err = format.MakePrettyTree(reg, r)
	assert.Equal(t, types.ErrUnknownType, types.CodeOf(err))

	partial := asdl.NewRecord(mustCompound(t, "Add"))
	require.NoError(t, partial.Set("left", num(t, 1)))
	_, err = format.MakeAbbreviatedTree(reg, partial, nil)
	assert.Equal(t, types.ErrFieldUnassigned, types.CodeOf(err))
}

func mustCompound(t *testing.T, name string) *asdl.CompoundDescriptor {
	t.Helper()
	desc, err := reg.Compound("expr." + name)
	require.NoError(t, err)
	return desc
}

func printText(t *testing.T, tree format.Pretty, maxCol int) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, format.PrintTree(format.NewTextOutput(&sb), tree, maxCol))
	return sb.String()
}

func TestPrintTreeWrapsFullForm(t *testing.T) {
	add := build(t, "Add", num(t, 1), num(t, 2))
	tree, err := format.MakePrettyTree(reg, add)
	require.NoError(t, err)

	assert.Equal(t, "(expr.Add left:(expr.Num n:1) right:(expr.Num n:2))", printText(t, tree, format.DefaultMaxCol))
	assert.Equal(t, strings.Join([]string{
		"(expr.Add",
		"  left: (expr.Num n:1)",
		"  right: (expr.Num n:2)",
		")",
	}, "\n"), printText(t, tree, 30))
}

func TestPrintTreeWrapsArrays(t *testing.T) {
	list := build(t, "List", []any{num(t, 1), num(t, 2)}, true, nil)
	tree, err := format.MakePrettyTree(reg, list)
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"(expr.List",
		"  items: [",
		"    (expr.Num n:1)",
		"    (expr.Num n:2)",
		"  ]",
		"  flag: T",
		")",
	}, "\n"), printText(t, tree, 30))
}

func TestPrintTreeWrapsAbbreviated(t *testing.T) {
	add := build(t, "Add", build(t, "Add", num(t, 1), num(t, 2)), build(t, "Add", num(t, 3), num(t, 4)))
	tree, err := format.MakeAbbreviatedTree(reg, add, nil)
	require.NoError(t, err)

	assert.Equal(t, "(Add (Add 1 2) (Add 3 4))", printText(t, tree, format.DefaultMaxCol))
	assert.Equal(t, "(Add (Add 1 2) \n  (Add 3 4)\n)", printText(t, tree, 15))
}

func TestAnsiOutput(t *testing.T) {
	tree, err := format.MakePrettyTree(reg, num(t, 1))
	require.NoError(t, err)

	var sb strings.Builder
	out := format.NewAnsiOutput(&sb)
	require.NoError(t, format.PrintTree(out, tree, format.DefaultMaxCol))

	assert.Contains(t, sb.String(), "\x1b[33mexpr.Num")
	assert.Contains(t, sb.String(), "\x1b[32m1")
	assert.Equal(t, len("(expr.Num n:1)"), out.NumChars(), "escape codes must not count towards the width")
}

func TestHTMLOutput(t *testing.T) {
	tree, err := format.MakePrettyTree(reg, build(t, "Name", "a<b"))
	require.NoError(t, err)

	var sb strings.Builder
	out := format.NewHTMLOutput(&sb)
	out.FileHeader()
	require.NoError(t, format.PrintTree(out, tree, format.DefaultMaxCol))
	out.FileFooter()

	html := sb.String()
	assert.True(t, strings.HasPrefix(html, "<html>"))
	assert.Contains(t, html, `<span class="n">expr.Name</span>`)
	assert.Contains(t, html, `<span class="s">a&lt;b</span>`)
	assert.Contains(t, html, "</html>")
	assert.Equal(t, len("(expr.Name s:a<b)"), out.NumChars())
}

func TestDetectConsoleOutput(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "tree.txt"))
	require.NoError(t, err)
	defer f.Close()

	_, ok := format.DetectConsoleOutput(f).(*format.TextOutput)
	assert.True(t, ok, "a regular file is not a terminal")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestOutputErrorIsSticky(t *testing.T) {
	tree, err := format.MakePrettyTree(reg, num(t, 1))
	require.NoError(t, err)

	err = format.PrintTree(format.NewTextOutput(failingWriter{}), tree, format.DefaultMaxCol)
	assert.EqualError(t, err, "disk full")
}
