package interpreter

import (
	"testing"

	"robson/internal/bytecode"
	"robson/internal/value"
)

func stackRelativeParam(t *testing.T, payload uint32) bytecode.Param {
	t.Helper()
	return bytecode.Param{
		Payload: bytecode.EncodeUint32(payload),
		Mode:    bytecode.StackRelative,
		Type:    value.Unsigned,
	}
}

func terminalOpInstr(sub uint32) bytecode.Instruction {
	return bytecode.Instruction{
		Op: bytecode.TerminalOp,
		Param1: bytecode.Param{
			Payload: bytecode.EncodeUint32(sub),
			Mode:    bytecode.Immediate,
			Type:    value.Unsigned,
		},
	}
}

func loadStringInstrAt(addr uint32) bytecode.Instruction {
	return bytecode.Instruction{
		Op: bytecode.LoadString,
		Param1: bytecode.Param{
			Payload: bytecode.EncodeUint32(addr),
			Mode:    bytecode.Immediate,
			Type:    value.Unsigned,
		},
	}
}
