package workspace_test

import (
	"encoding/json"
	"testing"

	"github.com/nalgeon/be"
	"github.com/stefanvanburen/strvars/internal/strvar"
	"github.com/stefanvanburen/strvars/internal/workspace"
)

const sampleDoc = `{
  "blocks": [
    {
      "id": "decl",
      "type": "string_declare",
      "fields": {"VAR": "Greeting"},
      "children": [
        {"id": "set", "type": "string_set", "fields": {"VAR": "greeting"}},
        {"id": "text", "type": "text", "fields": {"TEXT": "hello"}}
      ]
    },
    {
      "id": "loop",
      "type": "controls_repeat",
      "children": [
        {"id": "expr", "type": "string_expr", "fields": {"EXPR": "name + suffix"}},
        {"id": "half", "type": "string_get"}
      ]
    },
    {"id": "len", "type": "string_lengthof", "fields": {"VAR": "suffix"}}
  ]
}`

func mustParse(t *testing.T, doc string, opts ...workspace.Option) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Parse([]byte(doc), opts...)
	be.Err(t, err, nil)
	return ws
}

func blockIDs(blocks []strvar.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.(workspace.Block).ID()
	}
	return ids
}

func TestParse(t *testing.T) {
	t.Parallel()

	ws := mustParse(t, sampleDoc)
	be.Equal(t, ws.Len(), 7)
	be.Equal(t, len(ws.TopBlocks()), 3)
	be.Equal(t, blockIDs(ws.AllBlocks()), []string{"decl", "set", "text", "loop", "expr", "half", "len"})

	b, ok := ws.Block("set")
	be.True(t, ok)
	be.Equal(t, b.Type(), "string_set")
	be.Equal(t, b.Field(workspace.VarField), "greeting")

	_, ok = ws.Block("missing")
	be.True(t, !ok)
}

func TestParseVariants(t *testing.T) {
	t.Parallel()

	ws := mustParse(t, sampleDoc)
	kinds := make(map[string]string)
	for _, b := range ws.AllBlocks() {
		blk := b.(workspace.Block)
		switch blk.(type) {
		case *workspace.FieldBlock:
			kinds[blk.ID()] = "field"
		case *workspace.ExprBlock:
			kinds[blk.ID()] = "expr"
		case *workspace.PlainBlock:
			kinds[blk.ID()] = "plain"
		}
	}
	be.Equal(t, kinds, map[string]string{
		"decl": "field", "set": "field", "text": "plain",
		"loop": "plain", "expr": "expr", "half": "field", "len": "field",
	})
}

func TestParseVariableTypes(t *testing.T) {
	t.Parallel()

	doc := `{"blocks": [{"id": "a", "type": "string_upper", "fields": {"VAR": "s"}}]}`

	got, err := strvar.All(mustParse(t, doc))
	be.Err(t, err, nil)
	be.Equal(t, len(got), 0)

	got, err = strvar.All(mustParse(t, doc, workspace.WithVariableTypes("string_upper")))
	be.Err(t, err, nil)
	be.Equal(t, got, []string{"s"})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "duplicate_id",
			doc:  `{"blocks": [{"id": "a", "type": "text"}, {"id": "b", "type": "text", "children": [{"id": "a", "type": "text"}]}]}`,
			want: workspace.ErrDuplicateID,
		},
		{
			name: "missing_type",
			doc:  `{"blocks": [{"id": "a"}]}`,
			want: workspace.ErrMissingType,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := workspace.Parse([]byte(tc.doc))
			be.Err(t, err, tc.want)
		})
	}

	_, err := workspace.Parse([]byte(`{"blocks": [`))
	be.Err(t, err, "failed to parse workspace")
}

func TestParseAssignsIDs(t *testing.T) {
	t.Parallel()

	ws := mustParse(t, `{"blocks": [{"type": "text"}, {"type": "text"}]}`)
	ids := blockIDs(ws.AllBlocks())
	be.Equal(t, len(ids), 2)
	be.True(t, ids[0] != "")
	be.True(t, ids[0] != ids[1])
}

func TestWorkspaceAll(t *testing.T) {
	t.Parallel()

	ws := mustParse(t, sampleDoc)
	got, err := strvar.All(ws)
	be.Err(t, err, nil)
	be.Equal(t, got, []string{"Greeting", "name", "suffix"})

	loop, _ := ws.Block("loop")
	got, err = strvar.All(loop)
	be.Err(t, err, nil)
	be.Equal(t, got, []string{"name", "suffix"})

	be.Equal(t, strvar.GenerateUniqueName(ws), "i")
}

func TestWorkspaceRename(t *testing.T) {
	t.Parallel()

	ws := mustParse(t, sampleDoc)
	strvar.Rename("suffix", "tail", ws)

	expr, _ := ws.Block("expr")
	be.Equal(t, expr.Field(workspace.ExprField), "name + tail")
	length, _ := ws.Block("len")
	be.Equal(t, length.Field(workspace.VarField), "tail")

	// Variable blocks match ignoring case; both spellings follow.
	strvar.Rename("GREETING", "salutation", ws)
	decl, _ := ws.Block("decl")
	set, _ := ws.Block("set")
	be.Equal(t, decl.Field(workspace.VarField), "salutation")
	be.Equal(t, set.Field(workspace.VarField), "salutation")

	// The unfilled block stays unfilled.
	half, _ := ws.Block("half")
	be.Equal(t, half.Field(workspace.VarField), "")

	got, err := strvar.All(ws)
	be.Err(t, err, nil)
	be.Equal(t, got, []string{"salutation", "name", "tail"})
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	ws := mustParse(t, sampleDoc)
	strvar.Rename("name", "who", ws)

	data, err := json.Marshal(ws)
	be.Err(t, err, nil)

	again := mustParse(t, string(data))
	be.Equal(t, blockIDs(again.AllBlocks()), blockIDs(ws.AllBlocks()))
	expr, _ := again.Block("expr")
	be.Equal(t, expr.Field(workspace.ExprField), "who + suffix")
	half, _ := again.Block("half")
	be.Equal(t, half.Type(), "string_get")
}

func TestNew(t *testing.T) {
	t.Parallel()

	ws, err := workspace.New(
		workspace.NewFieldBlock("a", "string_set", "x",
			workspace.NewExprBlock("b", "x + y"),
		),
		workspace.NewPlainBlock("c", "text", map[string]string{"TEXT": "hi"}),
	)
	be.Err(t, err, nil)
	be.Equal(t, ws.Len(), 3)

	got, err := strvar.All(ws)
	be.Err(t, err, nil)
	be.Equal(t, got, []string{"x", "y"})

	_, err = workspace.New(
		workspace.NewPlainBlock("a", "text", nil),
		workspace.NewPlainBlock("a", "text", nil),
	)
	be.Err(t, err, workspace.ErrDuplicateID)
}
