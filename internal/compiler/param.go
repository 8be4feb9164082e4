package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"robson/internal/bytecode"
	"robson/internal/value"
)

// resolveParamLine parses one parameter line's tokens ("MODE VALUE
// [robson]") into a bytecode.Param, consulting aliases for `lambeu`
// references. Grounded on the teacher's inputArgToUint32 (char/hex/signed/
// float literal dispatch), generalized to the tagged-value, four-mode
// grammar of spec.md 4.1.
func resolveParamLine(tokens []string, aliases map[string]uint32) (bytecode.Param, error) {
	if len(tokens) < 2 {
		return bytecode.Param{}, fmt.Errorf("compiler: malformed parameter line %q", strings.Join(tokens, " "))
	}
	modeKw, val := tokens[0], tokens[1]

	convert := len(tokens) >= 3 && tokens[2] == "robson"

	if modeKw == "lambeu" {
		name, ok := strings.CutPrefix(val, ":")
		if !ok {
			return bytecode.Param{}, fmt.Errorf("compiler: lambeu value %q missing leading ':'", val)
		}
		idx, ok := aliases[name]
		if !ok {
			return bytecode.Param{}, fmt.Errorf("%w: %q", ErrUnknownAlias, name)
		}
		return bytecode.Param{
			Payload: bytecode.EncodeUint32(idx),
			Mode:    bytecode.Immediate,
			Type:    value.Unsigned,
			Convert: convert,
		}, nil
	}

	mode, ok := bytecode.ModeFromKeyword(modeKw)
	if !ok {
		return bytecode.Param{}, fmt.Errorf("compiler: invalid parameter mode %q", modeKw)
	}

	tag, payload, err := parseLiteral(val)
	if err != nil {
		return bytecode.Param{}, fmt.Errorf("compiler: parsing literal %q: %w", val, err)
	}

	return bytecode.Param{
		Payload: payload,
		Mode:    mode,
		Type:    tag,
		Convert: convert,
	}, nil
}

// parseLiteral parses a numeric literal per spec.md 4.1: unsigned by
// default, signed with an `i` prefix, 32-bit float with an `f` prefix.
func parseLiteral(raw string) (value.Tag, [4]byte, error) {
	switch {
	case strings.HasPrefix(raw, "i"):
		n, err := strconv.ParseInt(raw[1:], 10, 32)
		if err != nil {
			return 0, [4]byte{}, err
		}
		return value.Signed, bytecode.EncodeUint32(uint32(int32(n))), nil

	case strings.HasPrefix(raw, "f"):
		f, err := strconv.ParseFloat(raw[1:], 32)
		if err != nil {
			return 0, [4]byte{}, err
		}
		return value.Floating, bytecode.EncodeUint32(math.Float32bits(float32(f))), nil

	default:
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, [4]byte{}, err
		}
		return value.Unsigned, bytecode.EncodeUint32(uint32(n)), nil
	}
}
