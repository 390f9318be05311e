// Package strvar manages the user-declared string identifiers of a block
// workspace.
//
// Blocks advertise what they can do through small capability interfaces:
// IdentifierReporter for blocks that reference identifiers and
// IdentifierRenamer for blocks that can rewrite those references. The
// functions in this package only ever read a workspace; mutation happens
// inside the blocks themselves.
package strvar

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// NameType separates string identifiers from other kinds of names (procedures,
// generated helpers) in the editor's name database.
const NameType = "STRING"

// Block is a single unit of a workspace.
type Block interface {
	// Type returns the registered block type, e.g. "string_set".
	Type() string
}

// IdentifierReporter is implemented by blocks that reference identifiers.
//
// A half-built block may report "" for a slot that has not been filled in
// yet; such slots are not identifiers.
type IdentifierReporter interface {
	IdentifierReferences() []string
}

// IdentifierRenamer is implemented by blocks that can rewrite their own
// identifier references. Whether a reference matches oldName is up to the
// block.
type IdentifierRenamer interface {
	RenameIdentifier(oldName, newName string)
}

// Workspace exposes every block of an editor workspace as a flat list.
type Workspace interface {
	AllBlocks() []Block
}

// Subtree is a block that can list itself and everything nested under it.
type Subtree interface {
	Descendants() []Block
}

// InvalidRootError is returned by All when the root is neither a Subtree nor
// a Workspace.
type InvalidRootError struct {
	Root any
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("strvar: not a block or workspace: %T", e.Root)
}

// All returns every distinct identifier referenced under root, which must be
// a Subtree or a Workspace.
//
// Identifiers are compared case-insensitively. Each one is returned with the
// spelling it had the first time it was seen, in order of first appearance.
func All(root any) ([]string, error) {
	var blocks []Block
	switch r := root.(type) {
	case Subtree:
		blocks = r.Descendants()
	case Workspace:
		blocks = r.AllBlocks()
	default:
		return nil, &InvalidRootError{Root: root}
	}

	seen := make(map[string]string)
	var names []string
	for _, b := range blocks {
		reporter, ok := b.(IdentifierReporter)
		if !ok {
			continue
		}
		for _, name := range reporter.IdentifierReferences() {
			// Unfilled slot on a half-built block.
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = name
			names = append(names, name)
		}
	}
	return names, nil
}

// Rename asks every block in ws that supports renaming to replace oldName
// with newName.
//
// No check is made that newName is unused; renaming onto an existing
// identifier merges the two.
func Rename(oldName, newName string, ws Workspace) {
	for _, b := range ws.AllBlocks() {
		if renamer, ok := b.(IdentifierRenamer); ok {
			renamer.RenameIdentifier(oldName, newName)
		}
	}
}

// Sorted returns a copy of names sorted case-insensitively. Names that differ
// only in case keep their relative order.
func Sorted(names []string) []string {
	sorted := slices.Clone(names)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return sorted
}
