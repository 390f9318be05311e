package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned for a name that is not a CEL identifier.
	ErrInvalidName = errors.New("invalid identifier")
	// ErrReservedName is returned for a CEL keyword or reserved word.
	ErrReservedName = errors.New("reserved word")
)

// ValidateName checks that name can stand for an identifier in every block:
// a CEL identifier that is neither a literal nor a reserved word.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if !IsIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if isReserved(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// IsIdentifier reports whether s matches [_a-zA-Z][_a-zA-Z0-9]*.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// isReserved reports whether name is a CEL literal, keyword or reserved word.
func isReserved(name string) bool {
	switch name {
	case "true", "false", "null", "in",
		"as", "break", "const", "continue", "else", "for", "function", "if",
		"import", "let", "loop", "package", "namespace", "return", "var",
		"void", "while":
		return true
	}
	return false
}
