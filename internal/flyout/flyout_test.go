package flyout_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
	"github.com/stefanvanburen/strvars/internal/flyout"
	"github.com/stefanvanburen/strvars/internal/workspace"
)

func newWorkspace(t *testing.T, names ...string) *workspace.Workspace {
	t.Helper()
	var blocks []workspace.Block
	for i, name := range names {
		blocks = append(blocks, workspace.NewFieldBlock(string(rune('a'+i)), flyout.GetType, name))
	}
	ws, err := workspace.New(blocks...)
	be.Err(t, err, nil)
	return ws
}

func varField(name string) *flyout.Field {
	return &flyout.Field{Name: "VAR", Value: name}
}

func TestCategory(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		names []string
		reg   flyout.Registry
		want  []flyout.Element
	}{
		{
			name:  "empty_workspace_declare_only",
			names: nil,
			reg:   flyout.NewRegistry(flyout.DeclareType, flyout.SetType, flyout.GetType),
			want:  []flyout.Element{{Type: flyout.DeclareType}},
		},
		{
			name:  "set_and_get_pairs_sorted",
			names: []string{"zeta", "Alpha"},
			reg:   flyout.NewRegistry(flyout.SetType, flyout.GetType),
			want: []flyout.Element{
				{Type: flyout.SetType, Gap: 8, Field: varField("Alpha")},
				{Type: flyout.GetType, Gap: 24, Field: varField("Alpha")},
				{Type: flyout.SetType, Gap: 8, Field: varField("zeta")},
				{Type: flyout.GetType, Gap: 24, Field: varField("zeta")},
			},
		},
		{
			name:  "set_without_get_has_no_gap",
			names: []string{"s"},
			reg:   flyout.NewRegistry(flyout.SetType, flyout.LengthOfType),
			want: []flyout.Element{
				{Type: flyout.SetType, Field: varField("s")},
				{Type: flyout.LengthOfType, Gap: 24, Field: varField("s")},
			},
		},
		{
			name:  "get_without_set_has_no_gap",
			names: []string{"s"},
			reg:   flyout.NewRegistry(flyout.GetType),
			want: []flyout.Element{
				{Type: flyout.GetType, Field: varField("s")},
			},
		},
		{
			name:  "default_name_not_offered",
			names: []string{"item", "s"},
			reg:   flyout.NewRegistry(flyout.DeclareType, flyout.EqualToType),
			want: []flyout.Element{
				{Type: flyout.DeclareType},
				{Type: flyout.EqualToType, Gap: 24, Field: varField("s")},
			},
		},
		{
			name:  "default_name_match_is_case_sensitive",
			names: []string{"Item"},
			reg:   flyout.NewRegistry(flyout.ConcatType),
			want: []flyout.Element{
				{Type: flyout.ConcatType, Gap: 24, Field: varField("Item")},
			},
		},
		{
			name:  "template_order",
			names: []string{"s"},
			reg: flyout.NewRegistry(
				flyout.EqualToType, flyout.EndsWithType, flyout.LengthOfType, flyout.ConcatType,
				flyout.CompareToType, flyout.CharAtType, flyout.GetType, flyout.SetType, flyout.DeclareType,
			),
			want: []flyout.Element{
				{Type: flyout.DeclareType},
				{Type: flyout.SetType, Gap: 8, Field: varField("s")},
				{Type: flyout.GetType, Gap: 24, Field: varField("s")},
				{Type: flyout.CharAtType, Gap: 24, Field: varField("s")},
				{Type: flyout.CompareToType, Gap: 24, Field: varField("s")},
				{Type: flyout.ConcatType, Gap: 24, Field: varField("s")},
				{Type: flyout.LengthOfType, Gap: 24, Field: varField("s")},
				{Type: flyout.EndsWithType, Gap: 24, Field: varField("s")},
				{Type: flyout.EqualToType, Gap: 24, Field: varField("s")},
			},
		},
		{
			name:  "nothing_registered",
			names: []string{"s"},
			reg:   flyout.NewRegistry(),
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := flyout.Category(newWorkspace(t, tc.names...), tc.reg, "item")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Category() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	elems := flyout.Category(
		newWorkspace(t, "a<b"),
		flyout.NewRegistry(flyout.DeclareType, flyout.SetType, flyout.GetType),
		"item",
	)
	data, err := flyout.Marshal(elems)
	be.Err(t, err, nil)
	be.Equal(t, string(data),
		`<xml><block type="string_declare"></block>`+
			`<block type="string_set" gap="8"><field name="VAR">a&lt;b</field></block>`+
			`<block type="string_get" gap="24"><field name="VAR">a&lt;b</field></block></xml>`)
}

func TestElementString(t *testing.T) {
	t.Parallel()

	be.Equal(t, flyout.Element{Type: flyout.DeclareType}.String(), "string_declare")
	be.Equal(t, flyout.Element{Type: flyout.GetType, Gap: 24, Field: varField("s")}.String(), "string_get gap=24 VAR=s")
}
