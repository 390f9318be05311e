package workspace

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/ast"
)

var celEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(cel.EnableMacroCallTracking())
})

// occurrence is one free identifier in an expression, as byte offsets into
// the source.
type occurrence struct {
	name       string
	start, end int
	// bound are the comprehension variables in scope at the occurrence.
	bound []string
}

// freeIdentifiers parses expr and returns its free identifiers in source
// order. Comprehension variables are bound and not returned.
func freeIdentifiers(expr string) ([]occurrence, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	parsed, issues := env.Parse(expr)
	if issues.Err() != nil {
		return nil, issues.Err()
	}

	nativeAST := parsed.NativeRep()
	w := &identWalker{
		source:     expr,
		sourceInfo: nativeAST.SourceInfo(),
	}
	w.walk(nativeAST.Expr(), nil)

	slices.SortStableFunc(w.found, func(a, b occurrence) int {
		return cmp.Compare(a.start, b.start)
	})
	// Macro expansion can visit the same source range twice.
	return slices.CompactFunc(w.found, func(a, b occurrence) bool {
		return a.start == b.start && a.name == b.name
	}), nil
}

// Problem is a syntax error in an expression block.
type Problem struct {
	// Column is the 0-based column cel-go reported the error at.
	Column  int
	Message string
}

// problems parses expr and returns its syntax errors.
func problems(expr string) ([]Problem, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	_, issues := env.Parse(expr)
	if issues.Err() == nil {
		return nil, nil
	}
	errs := issues.Errors()
	out := make([]Problem, 0, len(errs))
	for _, e := range errs {
		out = append(out, Problem{
			Column:  max(e.Location.Column(), 0),
			Message: e.Message,
		})
	}
	return out, nil
}

// ErrNameCaptured is returned when a rename would turn a free identifier into
// a reference to a comprehension variable.
var ErrNameCaptured = errors.New("new name is bound by a comprehension")

// matchingOccurrences returns the free occurrences of oldName in expr,
// compared ignoring case.
func matchingOccurrences(expr, oldName string) ([]occurrence, error) {
	occs, err := freeIdentifiers(expr)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(occs, func(o occurrence) bool {
		return !strings.EqualFold(o.name, oldName)
	}), nil
}

// checkCapture reports ErrNameCaptured if newName is bound where any of occs
// appears.
func checkCapture(occs []occurrence, newName string) error {
	for _, o := range occs {
		if slices.Contains(o.bound, newName) {
			return fmt.Errorf("%w: %q", ErrNameCaptured, newName)
		}
	}
	return nil
}

// renameInExpr returns expr with every free occurrence of oldName, compared
// ignoring case, replaced by newName. expr is returned unchanged together
// with ErrNameCaptured when newName is a comprehension variable in scope at
// one of those occurrences.
func renameInExpr(expr, oldName, newName string) (string, error) {
	occs, err := matchingOccurrences(expr, oldName)
	if err != nil {
		return expr, err
	}
	if err := checkCapture(occs, newName); err != nil {
		return expr, err
	}
	var b strings.Builder
	last := 0
	for _, o := range occs {
		b.WriteString(expr[last:o.start])
		b.WriteString(newName)
		last = o.end
	}
	b.WriteString(expr[last:])
	return b.String(), nil
}

type identWalker struct {
	source     string
	sourceInfo *ast.SourceInfo
	found      []occurrence
}

// walk records identifiers of e not in bound.
func (w *identWalker) walk(e ast.Expr, bound []string) {
	if e == nil {
		return
	}

	switch e.Kind() {
	case ast.IdentKind:
		name := e.AsIdent()
		if slices.Contains(bound, name) {
			return
		}
		offsetRange, hasOffset := w.sourceInfo.GetOffsetRange(e.ID())
		if !hasOffset {
			return
		}
		start := runeOffsetToByteOffset(w.source, offsetRange.Start)
		end := runeOffsetToByteOffset(w.source, offsetRange.Stop)
		// Guard against ranges that do not cover the identifier text.
		if start > end || w.source[start:end] != name {
			return
		}
		w.found = append(w.found, occurrence{name: name, start: start, end: end, bound: bound})

	case ast.CallKind:
		call := e.AsCall()
		if call.IsMemberFunction() {
			w.walk(call.Target(), bound)
		}
		for _, arg := range call.Args() {
			w.walk(arg, bound)
		}

	case ast.ListKind:
		for _, elem := range e.AsList().Elements() {
			w.walk(elem, bound)
		}

	case ast.MapKind:
		for _, entry := range e.AsMap().Entries() {
			mapEntry := entry.AsMapEntry()
			w.walk(mapEntry.Key(), bound)
			w.walk(mapEntry.Value(), bound)
		}

	case ast.StructKind:
		for _, field := range e.AsStruct().Fields() {
			w.walk(field.AsStructField().Value(), bound)
		}

	case ast.SelectKind:
		w.walk(e.AsSelect().Operand(), bound)

	case ast.ComprehensionKind:
		comp := e.AsComprehension()
		w.walk(comp.IterRange(), bound)
		w.walk(comp.AccuInit(), bound)

		loop := append(slices.Clone(bound), comp.IterVar(), comp.IterVar2(), comp.AccuVar())
		w.walk(comp.LoopCondition(), loop)
		w.walk(comp.LoopStep(), loop)

		result := append(slices.Clone(bound), comp.AccuVar())
		w.walk(comp.Result(), result)
	}
}

// runeOffsetToByteOffset converts a CEL source position (rune offset) to a
// UTF-8 byte offset within s.
func runeOffsetToByteOffset(s string, runeOffset int32) int {
	byteIdx := 0
	for runeIdx := int32(0); runeIdx < runeOffset && byteIdx < len(s); runeIdx++ {
		_, size := utf8.DecodeRuneInString(s[byteIdx:])
		byteIdx += size
	}
	return byteIdx
}
