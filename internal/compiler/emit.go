package compiler

import (
	"fmt"

	"robson/internal/bytecode"
)

// emit is pass 2: walk the same statements resolveAliases already
// validated, building the output buffer. Aliases is the table resolveAliases
// produced for this exact file.
func emit(host Host, stmts []statement, offset int, aliases map[string]uint32, ancestors map[string]struct{}, cache sizeCache) ([]byte, error) {
	var buf []byte
	commandNumber := 0

	for _, st := range stmts {
		switch st.kind {
		case stmtAlias:
			// No bytes; already accounted for in the alias table.

		case stmtInclude:
			childBuf, err := includeBuffer(host, st.includePath, commandNumber+offset, ancestors, cache)
			if err != nil {
				return nil, err
			}
			buf = append(buf, childBuf...)
			commandNumber += len(childBuf) / bytecode.RecordSize

		case stmtInstruction:
			instr, err := buildInstruction(st, aliases)
			if err != nil {
				return nil, err
			}
			rec := bytecode.Encode(instr)
			buf = append(buf, rec[:]...)
			commandNumber++
		}
	}

	return buf, nil
}

// includeBuffer compiles path from scratch at the given offset, returning
// its emitted buffer. Pass 1 only needed path's command count (cached in
// cache); pass 2 needs the actual bytes, so it recompiles here rather than
// trying to stash pass 1's intermediate state.
func includeBuffer(host Host, path string, offset int, ancestors map[string]struct{}, cache sizeCache) ([]byte, error) {
	if _, cyclic := ancestors[path]; cyclic {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, path)
	}
	lines, err := host.ReadSource(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: reading %s: %w", path, err)
	}
	r, err := compileLines(host, lines, path, offset, ancestors, cache)
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

// buildInstruction resolves every parameter line of st (filling unused
// slots with the zero Param, harmless since handlers for arity < 3 opcodes
// never read them) into a bytecode.Instruction ready for Encode.
func buildInstruction(st statement, aliases map[string]uint32) (bytecode.Instruction, error) {
	var params [3]bytecode.Param
	for i, toks := range st.paramLines {
		if i >= 3 {
			break
		}
		p, err := resolveParamLine(toks, aliases)
		if err != nil {
			return bytecode.Instruction{}, err
		}
		params[i] = p
	}
	return bytecode.Instruction{
		Op:     st.op,
		Param1: params[0],
		Param2: params[1],
		Param3: params[2],
	}, nil
}
