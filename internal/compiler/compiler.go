// Package compiler implements the robson two-pass compiler: alias
// resolution with cross-file offset tracking (pass 1), followed by
// 15-byte instruction record emission (pass 2). See SPEC_FULL.md EXP-4.2.
//
// The overall shape - read lines, preprocess, resolve labels/aliases,
// then parse each instruction - is grounded on the teacher's
// compile.go/CompileSourceFromBuffer and CompileSource split between
// "read files into lines" and "assemble lines into instructions"; the
// include graph and offset-threading machinery has no teacher analogue
// (the teacher's VM has no include directive) and is original to this
// package, built directly from spec.md 4.2.
package compiler

import (
	"errors"
	"fmt"
)

// ColorCode selects the color used by Host.ColorPrint, mirroring the
// ansi-color-code parameter of the color_print capability in spec.md 6.
type ColorCode int

const (
	ColorDefault ColorCode = iota
	ColorCyan              // a file being compiled for the first time
	ColorYellow            // a file served from the compiled-size cache
)

// Host is the subset of spec.md 6's capability set the compiler needs:
// reading source files and logging include-chain activity.
type Host interface {
	ReadSource(path string) ([]string, error)
	ColorPrint(text string, code ColorCode)
}

var (
	ErrIncludeCycle  = errors.New("compiler: infinite compilation")
	ErrDuplicateName = errors.New("compiler: duplicate alias")
	ErrUnknownAlias  = errors.New("compiler: unknown alias")
)

// result bundles what a single translation unit's compilation produced:
// its emitted buffer and the total number of commands it contributes
// (including everything pulled in transitively via robsons).
type result struct {
	buf          []byte
	commandCount int
}

// CompileFile compiles path (and everything it transitively includes) into
// a buffer whose length is a multiple of bytecode.RecordSize.
func CompileFile(host Host, path string) ([]byte, error) {
	r, err := compileUnit(host, path, 0, map[string]struct{}{})
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

// CompileSource compiles an in-memory source (no filename) into a buffer.
// Used by tests; robsons includes
// are still honored by resolving paths through host, but the buffer itself
// has no path of its own for ancestor-cycle bookkeeping.
func CompileSource(host Host, lines []string) ([]byte, error) {
	r, err := compileLines(host, lines, "<source>", 0, map[string]struct{}{}, map[string]int{})
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

// sizeCache maps an include path to the total command count its
// compilation previously produced. It is passed down explicitly rather
// than kept in a process global; one map is shared by reference across a
// whole compilation and is not cloned per child.
type sizeCache = map[string]int

// compileUnit reads path from host and fully compiles it (pass 1 then
// pass 2), threading a fresh size cache rooted at this call.
func compileUnit(host Host, path string, offset int, ancestors map[string]struct{}) (result, error) {
	lines, err := host.ReadSource(path)
	if err != nil {
		return result{}, fmt.Errorf("compiler: reading %s: %w", path, err)
	}
	return compileLines(host, lines, path, offset, ancestors, sizeCache{})
}

// compileLines runs both passes over one translation unit's already-read
// lines. cache is shared (by reference) across the whole recursive
// compilation rooted at the original CompileFile/CompileSource call, so
// that pass 1 computes a path's command count once and serves later
// includes of it from the cache. Pass 2 does not consult the cache: it
// recompiles every include occurrence to obtain its bytes.
func compileLines(host Host, lines []string, selfPath string, offset int, ancestors map[string]struct{}, cache sizeCache) (result, error) {
	classified, err := classifyLines(lines)
	if err != nil {
		return result{}, err
	}

	stmts, err := groupStatements(classified)
	if err != nil {
		return result{}, err
	}

	childAncestors := make(map[string]struct{}, len(ancestors)+1)
	for k := range ancestors {
		childAncestors[k] = struct{}{}
	}
	childAncestors[selfPath] = struct{}{}

	aliases, commandCount, err := resolveAliases(host, stmts, offset, childAncestors, cache)
	if err != nil {
		return result{}, err
	}

	buf, err := emit(host, stmts, offset, aliases, childAncestors, cache)
	if err != nil {
		return result{}, err
	}

	cache[selfPath] = commandCount
	return result{buf: buf, commandCount: commandCount}, nil
}
