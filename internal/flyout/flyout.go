// Package flyout builds the block templates shown in the string category of
// the editor's toolbox.
package flyout

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"

	"github.com/stefanvanburen/strvars/internal/strvar"
)

// Block types the string category knows how to offer.
const (
	DeclareType   = "string_declare"
	SetType       = "string_set"
	GetType       = "string_get"
	CharAtType    = "string_charat"
	CompareToType = "string_compareto"
	ConcatType    = "string_concat"
	LengthOfType  = "string_lengthof"
	EndsWithType  = "string_endswith"
	EqualToType   = "string_equalto"
)

// perName are the templates emitted for every identifier, in order. Set and
// get come first and are spaced as a pair.
var perName = []string{
	SetType,
	GetType,
	CharAtType,
	CompareToType,
	ConcatType,
	LengthOfType,
	EndsWithType,
	EqualToType,
}

// Registry is the set of block types registered with the editor.
type Registry map[string]struct{}

// NewRegistry returns a registry holding types.
func NewRegistry(types ...string) Registry {
	r := make(Registry, len(types))
	for _, t := range types {
		r[t] = struct{}{}
	}
	return r
}

// Has reports whether blockType is registered.
func (r Registry) Has(blockType string) bool {
	_, ok := r[blockType]
	return ok
}

// Element is a block template as the toolbox XML represents it.
type Element struct {
	XMLName xml.Name `xml:"block"`
	Type    string   `xml:"type,attr"`
	Gap     int      `xml:"gap,attr,omitempty"`
	Field   *Field   `xml:"field,omitempty"`
}

// Field is a named field value on a template.
type Field struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Category returns the templates for the string category of ws.
//
// Identifiers are listed case-insensitively sorted. defaultName is never
// offered as a template of its own; declaring it is what the string_declare
// template is for.
func Category(ws strvar.Workspace, reg Registry, defaultName string) []Element {
	// A Workspace is always a valid root.
	names, _ := strvar.All(ws)
	names = strvar.Sorted(names)
	if i := slices.Index(names, defaultName); i >= 0 {
		names = slices.Delete(names, i, i+1)
	}

	var elems []Element
	if reg.Has(DeclareType) {
		elems = append(elems, Element{Type: DeclareType})
	}
	for _, name := range names {
		for _, blockType := range perName {
			if !reg.Has(blockType) {
				continue
			}
			elems = append(elems, Element{
				Type:  blockType,
				Gap:   gap(reg, blockType),
				Field: &Field{Name: "VAR", Value: name},
			})
		}
	}
	return elems
}

// gap is the vertical space after a template.
func gap(reg Registry, blockType string) int {
	switch blockType {
	case SetType:
		if reg.Has(GetType) {
			return 8
		}
		return 0
	case GetType:
		if reg.Has(SetType) {
			return 24
		}
		return 0
	default:
		return 24
	}
}

type toolbox struct {
	XMLName xml.Name  `xml:"xml"`
	Blocks  []Element `xml:"block"`
}

// Marshal renders elems as a toolbox XML document.
func Marshal(elems []Element) ([]byte, error) {
	data, err := xml.Marshal(toolbox{Blocks: elems})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flyout: %w", err)
	}
	return data, nil
}

// String returns a one-line description of the template.
func (e Element) String() string {
	s := e.Type
	if e.Gap != 0 {
		s += " gap=" + strconv.Itoa(e.Gap)
	}
	if e.Field != nil {
		s += " " + e.Field.Name + "=" + e.Field.Value
	}
	return s
}
