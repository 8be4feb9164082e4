package interpreter

import (
	"robson/internal/bytecode"
	"robson/internal/value"
)

// opTerminalOp implements opcode 15. Param1 (the opcode's sole declared
// parameter) selects the subcommand; subcommands that need an argument
// (raw mode on/off, clear purge/all, cursor show/hide) pop it from the
// stack the same way subcommand 0's "arg from stack" is documented,
// since TerminalOp has no second or third parameter slot to carry one.
func opTerminalOp(ip *Interpreter, instr bytecode.Instruction) error {
	if ip.term == nil {
		return ErrNoTerminal
	}
	subV, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	sub, err := subV.ForceUnsigned()
	if err != nil {
		return err
	}

	switch sub {
	case 0:
		argV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		arg, err := argV.ForceUnsigned()
		if err != nil {
			return err
		}
		if arg == 0 {
			return ip.term.DisableRawMode()
		}
		return ip.term.EnableRawMode()

	case 1:
		argV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		arg, err := argV.ForceUnsigned()
		if err != nil {
			return err
		}
		if arg == 0 {
			ip.term.ClearPurge()
		} else {
			ip.term.ClearAll()
		}
		return nil

	case 2:
		hiV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		loV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		hi, err := hiV.ForceUnsigned()
		if err != nil {
			return err
		}
		lo, err := loV.ForceUnsigned()
		if err != nil {
			return err
		}
		ms := uint64(hi)<<32 | uint64(lo)
		code, err := ip.term.Poll(int(ms))
		if err != nil {
			return err
		}
		ip.stack.Push(value.FromUnsigned(uint32(code)))
		return nil

	case 3:
		argV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		arg, err := argV.ForceUnsigned()
		if err != nil {
			return err
		}
		if arg == 0 {
			ip.term.HideCursor()
		} else {
			ip.term.ShowCursor()
		}
		return nil

	case 4:
		// top = x, popped first; matches the original interpreter's
		// terminal_commands case 4 (x then y), not the "top = most
		// recent of the pair" convention used elsewhere.
		xV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		yV, err := ip.stack.Pop()
		if err != nil {
			return err
		}
		x, err := xV.ForceUnsigned()
		if err != nil {
			return err
		}
		y, err := yV.ForceUnsigned()
		if err != nil {
			return err
		}
		ip.term.MoveCursor(int(x), int(y))
		return nil

	default:
		// unknown subcommands are silently ignored per spec.md 7
		return nil
	}
}
