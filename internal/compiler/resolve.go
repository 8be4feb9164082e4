package compiler

import "fmt"

// resolveAliases is pass 1: walk one file's statements, building its alias
// table and counting the total commands it (and everything it
// transitively includes) contributes, starting from offset.
func resolveAliases(host Host, stmts []statement, offset int, ancestors map[string]struct{}, cache sizeCache) (map[string]uint32, int, error) {
	aliases := make(map[string]uint32)
	commandNumber := 0

	for _, st := range stmts {
		switch st.kind {
		case stmtAlias:
			if _, dup := aliases[st.aliasName]; dup {
				return nil, 0, fmt.Errorf("%w: %q", ErrDuplicateName, st.aliasName)
			}
			aliases[st.aliasName] = uint32(commandNumber + offset)

		case stmtInclude:
			n, err := includeCount(host, st.includePath, commandNumber+offset, ancestors, cache)
			if err != nil {
				return nil, 0, err
			}
			commandNumber += n

		case stmtInstruction:
			commandNumber++
		}
	}

	return aliases, commandNumber, nil
}

// includeCount resolves the total command count contributed by path,
// consulting and populating the shared size cache, and refusing to
// recurse into an ancestor (an include cycle).
func includeCount(host Host, path string, offset int, ancestors map[string]struct{}, cache sizeCache) (int, error) {
	if _, cyclic := ancestors[path]; cyclic {
		return 0, fmt.Errorf("%w: %s", ErrIncludeCycle, path)
	}
	if n, cached := cache[path]; cached {
		host.ColorPrint(path, ColorYellow)
		return n, nil
	}

	host.ColorPrint(path, ColorCyan)
	lines, err := host.ReadSource(path)
	if err != nil {
		return 0, fmt.Errorf("compiler: reading %s: %w", path, err)
	}
	classified, err := classifyLines(lines)
	if err != nil {
		return 0, err
	}
	stmts, err := groupStatements(classified)
	if err != nil {
		return 0, err
	}

	childAncestors := make(map[string]struct{}, len(ancestors)+1)
	for k := range ancestors {
		childAncestors[k] = struct{}{}
	}
	childAncestors[path] = struct{}{}

	_, count, err := resolveAliases(host, stmts, offset, childAncestors, cache)
	if err != nil {
		return 0, err
	}
	cache[path] = count
	return count, nil
}
