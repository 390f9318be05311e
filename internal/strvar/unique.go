package strvar

import (
	"strconv"
	"strings"
)

// FallbackName is suggested when a workspace has no identifiers at all.
const FallbackName = "i"

// Alphabet is the probe order for generated names. There is no 'l', it reads
// too much like '1'.
const Alphabet = "ijkmnopqrstuvwxyzabcdefgh"

// GenerateUniqueName returns a name that no block in ws uses yet, compared
// case-insensitively.
//
// Candidates are tried in a fixed order: the letters of Alphabet, then the
// same letters suffixed with 2, then with 3, and so on. The name is not
// reserved; a later call may return it again if nothing has used it.
func GenerateUniqueName(ws Workspace) string {
	// A Workspace is always a valid root.
	existing, _ := All(ws)
	if len(existing) == 0 {
		return FallbackName
	}

	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = struct{}{}
	}

	// The taken set is finite, so some suffix round has a free letter.
	for round := 1; ; round++ {
		suffix := ""
		if round > 1 {
			suffix = strconv.Itoa(round)
		}
		for _, letter := range Alphabet {
			candidate := string(letter) + suffix
			if _, ok := taken[candidate]; !ok {
				return candidate
			}
		}
	}
}
