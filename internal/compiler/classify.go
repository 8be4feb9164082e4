package compiler

import (
	"fmt"
	"strings"

	"robson/internal/bytecode"
)

type lineKind int

const (
	kindAlias lineKind = iota
	kindInclude
	kindOpcode
	kindOther
)

// classifiedLine is one non-blank, comment-stripped source line, tagged
// with the syntactic category spec.md 4.1 assigns it.
type classifiedLine struct {
	kind        lineKind
	tokens      []string // whitespace-split tokens of the stripped line
	aliasName   string
	includePath string
	opcode      bytecode.Opcode
	raw         string // stripped line, for diagnostics
}

// classifyLines strips comments and blank lines, then classifies what
// remains. Mirrors the teacher's preprocessLine comment-stripping, widened
// to additionally recognize robson's alias/opcode/include line shapes.
func classifyLines(lines []string) ([]classifiedLine, error) {
	out := make([]classifiedLine, 0, len(lines))
	for _, raw := range lines {
		stripped := stripComment(raw)
		if stripped == "" {
			continue
		}
		cl, err := classifyLine(stripped)
		if err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func classifyLine(line string) (classifiedLine, error) {
	if strings.HasSuffix(line, ":") {
		name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
		if name == "" {
			return classifiedLine{}, fmt.Errorf("compiler: empty alias name in %q", line)
		}
		return classifiedLine{kind: kindAlias, aliasName: name, raw: line}, nil
	}

	tokens := strings.Fields(line)

	if tokens[0] == "robsons" {
		if len(tokens) < 2 {
			return classifiedLine{}, fmt.Errorf("compiler: robsons directive missing a path: %q", line)
		}
		return classifiedLine{kind: kindInclude, includePath: tokens[1], tokens: tokens, raw: line}, nil
	}

	if isOpcodeLine(tokens) {
		op := bytecode.Opcode(len(tokens))
		return classifiedLine{kind: kindOpcode, opcode: op, tokens: tokens, raw: line}, nil
	}

	return classifiedLine{kind: kindOther, tokens: tokens, raw: line}, nil
}

// isOpcodeLine reports whether tokens is one or more space-separated
// copies of the literal keyword `robson` (spec.md 4.1), which is how the
// opcode number (1..=16) is encoded on the wire of the source text.
func isOpcodeLine(tokens []string) bool {
	if len(tokens) == 0 || len(tokens) > 16 {
		return false
	}
	for _, tok := range tokens {
		if tok != "robson" {
			return false
		}
	}
	return true
}
