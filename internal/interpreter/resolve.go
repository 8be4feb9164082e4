package interpreter

import (
	"encoding/binary"
	"fmt"

	"robson/internal/bytecode"
	"robson/internal/value"
)

// resolveFunc implements one of the four addressing modes of spec.md 4.3,
// turning a raw parameter into the Value it designates.
type resolveFunc func(*Interpreter, bytecode.Param) (value.Value, error)

// resolveTable is indexed by bytecode.Mode, materialized as a fixed-size
// array per spec.md 9's dispatch-table design note.
var resolveTable = [4]resolveFunc{
	bytecode.Immediate:      resolveImmediate,
	bytecode.StackRelative:  resolveStackRelative,
	bytecode.DirectMemory:   resolveDirectMemory,
	bytecode.IndirectMemory: resolveIndirectMemory,
}

// resolve dispatches p through its addressing mode.
func (ip *Interpreter) resolve(p bytecode.Param) (value.Value, error) {
	if int(p.Mode) >= len(resolveTable) {
		return value.Value{}, fmt.Errorf("interpreter: invalid addressing mode %d", p.Mode)
	}
	return resolveTable[p.Mode](ip, p)
}

func resolveImmediate(_ *Interpreter, p bytecode.Param) (value.Value, error) {
	return p.Value(), nil
}

// resolveStackRelative requires a zero payload (spec.md 9's normative
// resolution of the StackRelative open question) and pops the stack top.
func resolveStackRelative(ip *Interpreter, p bytecode.Param) (value.Value, error) {
	if binary.BigEndian.Uint32(p.Payload[:]) != 0 {
		return value.Value{}, ErrInvalidAddressing
	}
	return ip.stack.Pop()
}

func resolveDirectMemory(ip *Interpreter, p bytecode.Param) (value.Value, error) {
	addr, err := p.Value().ForceUnsigned()
	if err != nil {
		return value.Value{}, err
	}
	return ip.memory.Read(addr), nil
}

func resolveIndirectMemory(ip *Interpreter, p bytecode.Param) (value.Value, error) {
	addr, err := p.Value().ForceUnsigned()
	if err != nil {
		return value.Value{}, err
	}
	addr2, err := ip.memory.Read(addr).ForceUnsigned()
	if err != nil {
		return value.Value{}, err
	}
	return ip.memory.Read(addr2), nil
}
