package compiler

import (
	"fmt"

	"robson/internal/bytecode"
)

type stmtKind int

const (
	stmtAlias stmtKind = iota
	stmtInclude
	stmtInstruction
)

// statement is one "slot" that will eventually occupy a command index
// (instruction, or a zero-width alias/include marker interleaved between
// them).
type statement struct {
	kind        stmtKind
	aliasName   string
	includePath string
	op          bytecode.Opcode
	paramLines  [][]string // one entry per parameter line's tokens
}

// groupStatements walks classified lines once, applying the push-
// abbreviation and parameter-counting rules of spec.md 4.2 to turn a flat
// line stream into a statement stream both compiler passes share. This
// state machine has no teacher analogue (the teacher's label resolution
// is single-file and has no parameter-arity or push-abbreviation
// bookkeeping); factoring it into one function shared by resolveAliases
// and emit avoids the two passes drifting out of sync with each other.
func groupStatements(lines []classifiedLine) ([]statement, error) {
	var stmts []statement
	pendingParams := 0
	var lastOpcode bytecode.Opcode
	haveLastOpcode := false
	var cur *statement

	for _, cl := range lines {
		switch cl.kind {
		case kindAlias:
			stmts = append(stmts, statement{kind: stmtAlias, aliasName: cl.aliasName})

		case kindInclude:
			if pendingParams > 0 {
				return nil, fmt.Errorf("compiler: missing parameter line for %s before %q", lastOpcode, cl.raw)
			}
			stmts = append(stmts, statement{kind: stmtInclude, includePath: cl.includePath})
			haveLastOpcode = false

		case kindOpcode:
			if pendingParams > 0 {
				return nil, fmt.Errorf("compiler: missing parameter line for %s before %q", lastOpcode, cl.raw)
			}
			op := cl.opcode
			lastOpcode = op
			haveLastOpcode = true
			if arity := op.Arity(); arity > 0 {
				pendingParams = arity
				cur = &statement{kind: stmtInstruction, op: op}
			} else {
				stmts = append(stmts, statement{kind: stmtInstruction, op: op})
				cur = nil
			}

		case kindOther:
			if pendingParams > 0 {
				cur.paramLines = append(cur.paramLines, cl.tokens)
				pendingParams--
				if pendingParams == 0 {
					stmts = append(stmts, *cur)
					cur = nil
				}
				continue
			}
			if !haveLastOpcode || lastOpcode != bytecode.Push {
				return nil, fmt.Errorf("compiler: unexpected line with no opcode in effect: %q", cl.raw)
			}
			// Push-abbreviation: this line is the sole parameter of an
			// implicit Push, not a continuation of the previous one.
			stmts = append(stmts, statement{kind: stmtInstruction, op: bytecode.Push, paramLines: [][]string{cl.tokens}})
		}
	}

	if pendingParams > 0 {
		return nil, fmt.Errorf("compiler: missing parameter line for %s at end of file", lastOpcode)
	}
	return stmts, nil
}
