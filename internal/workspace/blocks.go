package workspace

import (
	"maps"
	"strings"

	"github.com/stefanvanburen/strvars/internal/strvar"
)

// Field names used by the string blocks.
const (
	VarField  = "VAR"
	ExprField = "EXPR"
)

// ExprType is the block type holding a CEL expression over string
// identifiers.
const ExprType = "string_expr"

// VariableTypes are the block types that carry a single identifier in their
// VAR field.
var VariableTypes = []string{
	"string_declare",
	"string_set",
	"string_get",
	"string_charat",
	"string_compareto",
	"string_concat",
	"string_lengthof",
	"string_endswith",
	"string_equalto",
}

// Block is a block in a Workspace.
type Block interface {
	strvar.Block
	strvar.Subtree

	// ID returns the block's workspace-unique id.
	ID() string
	// Children returns the blocks directly nested in this one.
	Children() []Block
	// Field returns the value of a named field, "" if unset.
	Field(name string) string

	fieldValues() map[string]string
}

// node holds what all block variants share.
type node struct {
	id       string
	typ      string
	fields   map[string]string
	children []Block
}

func newNode(id, typ string, fields map[string]string, children []Block) node {
	f := make(map[string]string, len(fields))
	maps.Copy(f, fields)
	return node{id: id, typ: typ, fields: f, children: children}
}

func (n *node) ID() string                     { return n.id }
func (n *node) Type() string                   { return n.typ }
func (n *node) Children() []Block              { return n.children }
func (n *node) Field(name string) string       { return n.fields[name] }
func (n *node) fieldValues() map[string]string { return n.fields }

// descendants lists b and everything under it in depth-first pre-order.
func descendants(b Block) []strvar.Block {
	out := []strvar.Block{b}
	for _, child := range b.Children() {
		out = append(out, child.Descendants()...)
	}
	return out
}

// FieldBlock references one identifier through its VAR field.
type FieldBlock struct {
	node
}

// NewFieldBlock returns a variable block of type typ referencing name. An
// empty name leaves the field unfilled.
func NewFieldBlock(id, typ, name string, children ...Block) *FieldBlock {
	return &FieldBlock{node: newNode(id, typ, map[string]string{VarField: name}, children)}
}

// Name returns the referenced identifier, "" if the field is unfilled.
func (b *FieldBlock) Name() string { return b.fields[VarField] }

func (b *FieldBlock) Descendants() []strvar.Block { return descendants(b) }

func (b *FieldBlock) IdentifierReferences() []string {
	return []string{b.Name()}
}

// RenameIdentifier replaces the referenced identifier when it matches oldName
// ignoring case, the way the editor compares variable names.
func (b *FieldBlock) RenameIdentifier(oldName, newName string) {
	if b.Name() != "" && strings.EqualFold(b.Name(), oldName) {
		b.fields[VarField] = newName
	}
}

// ExprBlock holds a CEL expression in its EXPR field. Free identifiers of the
// expression are its references.
type ExprBlock struct {
	node
}

// NewExprBlock returns an expression block holding expr.
func NewExprBlock(id, expr string, children ...Block) *ExprBlock {
	return &ExprBlock{node: newNode(id, ExprType, map[string]string{ExprField: expr}, children)}
}

// Expr returns the expression source.
func (b *ExprBlock) Expr() string { return b.fields[ExprField] }

func (b *ExprBlock) Descendants() []strvar.Block { return descendants(b) }

// IdentifierReferences returns the free identifiers of the expression in
// source order. An expression that does not parse references nothing.
func (b *ExprBlock) IdentifierReferences() []string {
	occs, err := freeIdentifiers(b.Expr())
	if err != nil {
		return nil
	}
	names := make([]string, len(occs))
	for i, o := range occs {
		names[i] = o.name
	}
	return names
}

// RenameIdentifier rewrites every free occurrence of oldName, matched
// ignoring case like FieldBlock so that all spellings the registry folds
// together move at once. The expression is left alone when newName is not a
// valid name or would be captured by a comprehension variable; see
// CheckRename.
func (b *ExprBlock) RenameIdentifier(oldName, newName string) {
	if ValidateName(newName) != nil {
		return
	}
	rewritten, err := renameInExpr(b.Expr(), oldName, newName)
	if err != nil {
		return
	}
	b.fields[ExprField] = rewritten
}

// Problems returns the syntax errors of the expression, nil when it parses.
// Identifier usage is not type-checked.
func (b *ExprBlock) Problems() []Problem {
	probs, err := problems(b.Expr())
	if err != nil {
		return []Problem{{Message: err.Error()}}
	}
	return probs
}

// checkRename reports whether renaming oldName to newName would capture an
// occurrence.
func (b *ExprBlock) checkRename(oldName, newName string) error {
	occs, err := matchingOccurrences(b.Expr(), oldName)
	if err != nil {
		// Unparseable expressions are never rewritten.
		return nil
	}
	return checkCapture(occs, newName)
}

// PlainBlock is any block that does not deal in identifiers.
type PlainBlock struct {
	node
}

// NewPlainBlock returns a block of type typ with the given fields.
func NewPlainBlock(id, typ string, fields map[string]string, children ...Block) *PlainBlock {
	return &PlainBlock{node: newNode(id, typ, fields, children)}
}

func (b *PlainBlock) Descendants() []strvar.Block { return descendants(b) }
