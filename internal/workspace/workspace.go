// Package workspace is an in-memory block workspace: a forest of blocks that
// the strvar functions operate on, loadable from and writable to JSON.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/stefanvanburen/strvars/internal/strvar"
)

var (
	// ErrDuplicateID is returned when two blocks share an id.
	ErrDuplicateID = errors.New("duplicate block id")
	// ErrMissingType is returned for a block without a type.
	ErrMissingType = errors.New("block has no type")
)

// Workspace is an ordered forest of blocks.
type Workspace struct {
	top  []Block
	byID map[string]Block
}

// New returns a workspace with the given top-level blocks.
func New(top ...Block) (*Workspace, error) {
	w := &Workspace{
		top:  top,
		byID: make(map[string]Block),
	}
	for _, b := range w.AllBlocks() {
		blk := b.(Block)
		if _, ok := w.byID[blk.ID()]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, blk.ID())
		}
		w.byID[blk.ID()] = blk
	}
	return w, nil
}

// AllBlocks returns every block, depth first, top-level blocks in order.
func (w *Workspace) AllBlocks() []strvar.Block {
	var out []strvar.Block
	for _, b := range w.top {
		out = append(out, b.Descendants()...)
	}
	return out
}

// TopBlocks returns the blocks not nested in any other block.
func (w *Workspace) TopBlocks() []Block {
	return slices.Clone(w.top)
}

// Block looks up a block by id.
func (w *Workspace) Block(id string) (Block, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// Len returns the total number of blocks.
func (w *Workspace) Len() int {
	return len(w.byID)
}

// CheckRename reports whether oldName can be renamed to newName throughout
// the workspace: newName must be a valid identifier and must not be captured
// by a comprehension variable in any expression block.
func (w *Workspace) CheckRename(oldName, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	for _, b := range w.AllBlocks() {
		eb, ok := b.(*ExprBlock)
		if !ok {
			continue
		}
		if err := eb.checkRename(oldName, newName); err != nil {
			return fmt.Errorf("block %q: %w", eb.ID(), err)
		}
	}
	return nil
}

type options struct {
	variableTypes []string
}

// Option configures Parse.
type Option func(*options)

// WithVariableTypes adds block types that are read as VAR field blocks on top
// of VariableTypes.
func WithVariableTypes(types ...string) Option {
	return func(o *options) {
		o.variableTypes = append(o.variableTypes, types...)
	}
}

// document is the JSON form of a workspace.
type document struct {
	Blocks []blockJSON `json:"blocks"`
}

type blockJSON struct {
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type"`
	Fields   map[string]string `json:"fields,omitempty"`
	Children []blockJSON       `json:"children,omitempty"`
}

// Parse reads a workspace from its JSON form:
//
//	{"blocks": [{"id": "b1", "type": "string_set", "fields": {"VAR": "s"}, "children": [...]}]}
//
// Blocks without an id are given a random one.
func Parse(data []byte, opts ...Option) (*Workspace, error) {
	o := &options{variableTypes: slices.Clone(VariableTypes)}
	for _, opt := range opts {
		opt(o)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workspace: %w", err)
	}

	top := make([]Block, 0, len(doc.Blocks))
	for _, bj := range doc.Blocks {
		b, err := o.build(bj)
		if err != nil {
			return nil, err
		}
		top = append(top, b)
	}
	return New(top...)
}

func (o *options) build(bj blockJSON) (Block, error) {
	if bj.Type == "" {
		return nil, fmt.Errorf("%w (id %q)", ErrMissingType, bj.ID)
	}
	id := bj.ID
	if id == "" {
		id = uuid.NewString()
	}

	children := make([]Block, 0, len(bj.Children))
	for _, cj := range bj.Children {
		c, err := o.build(cj)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}

	n := newNode(id, bj.Type, bj.Fields, children)
	switch {
	case bj.Type == ExprType:
		return &ExprBlock{node: n}, nil
	case slices.Contains(o.variableTypes, bj.Type):
		return &FieldBlock{node: n}, nil
	default:
		return &PlainBlock{node: n}, nil
	}
}

// MarshalJSON writes the workspace in the form Parse reads.
func (w *Workspace) MarshalJSON() ([]byte, error) {
	doc := document{Blocks: make([]blockJSON, 0, len(w.top))}
	for _, b := range w.top {
		doc.Blocks = append(doc.Blocks, toJSON(b))
	}
	return json.Marshal(doc)
}

func toJSON(b Block) blockJSON {
	bj := blockJSON{
		ID:     b.ID(),
		Type:   b.Type(),
		Fields: b.fieldValues(),
	}
	for _, c := range b.Children() {
		bj.Children = append(bj.Children, toJSON(c))
	}
	return bj
}
