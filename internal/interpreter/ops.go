package interpreter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"robson/internal/bytecode"
	"robson/internal/value"
)

// opcodeHandler executes one already-decoded instruction, possibly
// overwriting ip.pc (jumps).
type opcodeHandler func(*Interpreter, bytecode.Instruction) error

// handlers is the opcode dispatch table (17 entries) of spec.md 9's
// design note; index i handles bytecode.Opcode(i).
var handlers = [17]opcodeHandler{
	bytecode.NoOp:             opNoOp,
	bytecode.Arith:            opArith,
	bytecode.IfLess:           opIfLess,
	bytecode.Push:             opPush,
	bytecode.IfEqJump:         opIfEqJump,
	bytecode.JumpIfStackEmpty: opJumpIfStackEmpty,
	bytecode.Input:            opInput,
	bytecode.PrintChar:        opPrintChar,
	bytecode.PrintNumber:      opPrintNumber,
	bytecode.Jump:             opJump,
	bytecode.Store:            opStore,
	bytecode.Pop:              opPop,
	bytecode.LoadString:       opLoadString,
	bytecode.TimeOp:           opTimeOp,
	bytecode.Flush:            opFlush,
	bytecode.TerminalOp:       opTerminalOp,
	bytecode.Random:           opRandom,
}

func opNoOp(ip *Interpreter, instr bytecode.Instruction) error { return nil }

// opArith implements opcode 1: param1 (Immediate, Unsigned) selects the
// operation; params 2 and 3 are the operands. A convert flag reinterprets
// one operand's tag as the other's before the matching-tag requirement is
// checked; with neither flag set, mismatched tags are a hard error.
func opArith(ip *Interpreter, instr bytecode.Instruction) error {
	opSel, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	op, err := opSel.AsUnsigned()
	if err != nil {
		return fmt.Errorf("arith selector: %w", err)
	}
	if int(op) >= len(arithTable) {
		return fmt.Errorf("interpreter: unknown arith op %d", op)
	}

	a, err := ip.resolve(instr.Param2)
	if err != nil {
		return err
	}
	b, err := ip.resolve(instr.Param3)
	if err != nil {
		return err
	}

	switch {
	case instr.Param2.Convert:
		a = a.WithTag(b.Tag)
	case instr.Param3.Convert:
		b = b.WithTag(a.Tag)
	case a.Tag != b.Tag:
		return ErrTypeMismatch
	}

	fn := arithTable[op][a.Tag]
	if fn == nil {
		return fmt.Errorf("interpreter: arith op %d has no handler for type %s", op, a.Tag)
	}
	result, err := fn(a, b)
	if err != nil {
		return err
	}
	ip.stack.Push(result)
	return nil
}

func opIfLess(ip *Interpreter, instr bytecode.Instruction) error {
	return compareAndJump(ip, instr, false)
}

func opIfEqJump(ip *Interpreter, instr bytecode.Instruction) error {
	return compareAndJump(ip, instr, true)
}

func compareAndJump(ip *Interpreter, instr bytecode.Instruction, equality bool) error {
	a, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	b, err := ip.resolve(instr.Param2)
	if err != nil {
		return err
	}
	target, err := ip.resolve(instr.Param3)
	if err != nil {
		return err
	}
	if a.Tag != b.Tag {
		return ErrTypeMismatch
	}

	var branch bool
	if equality {
		if a.Tag == value.Floating {
			fa, _ := a.AsFloat()
			fb, _ := b.AsFloat()
			branch = value.ApproxEqualFloat(fa, fb)
		} else {
			branch = a.Bytes() == b.Bytes()
		}
	} else {
		branch = value.Less(a, b)
	}

	if branch {
		addr, err := target.ForceUnsigned()
		if err != nil {
			return err
		}
		ip.pc = int(addr) * bytecode.RecordSize
	}
	return nil
}

func opPush(ip *Interpreter, instr bytecode.Instruction) error {
	v, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	ip.stack.Push(v)
	return nil
}

func opJumpIfStackEmpty(ip *Interpreter, instr bytecode.Instruction) error {
	if !ip.stack.Empty() {
		return nil
	}
	target, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	addr, err := target.ForceUnsigned()
	if err != nil {
		return err
	}
	ip.pc = int(addr) * bytecode.RecordSize
	return nil
}

func opJump(ip *Interpreter, instr bytecode.Instruction) error {
	target, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	addr, err := target.ForceUnsigned()
	if err != nil {
		return err
	}
	ip.pc = int(addr) * bytecode.RecordSize
	return nil
}

func opStore(ip *Interpreter, instr bytecode.Instruction) error {
	addrV, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	v, err := ip.stack.Pop()
	if err != nil {
		return err
	}
	addr, err := addrV.ForceUnsigned()
	if err != nil {
		return err
	}
	ip.memory.Write(addr, v)
	return nil
}

func opPop(ip *Interpreter, instr bytecode.Instruction) error {
	ip.stack.Pop() // empty stack is a documented no-op, error discarded
	return nil
}

// opLoadString reads consecutive Unsigned cells starting at address p1
// until a zero cell, then pushes them in reverse so that iterative
// top-pop-print yields the string in forward order.
func opLoadString(ip *Interpreter, instr bytecode.Instruction) error {
	addrV, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	addr, err := addrV.ForceUnsigned()
	if err != nil {
		return err
	}

	var chars []value.Value
	for {
		cell := ip.memory.Read(addr)
		u, err := cell.AsUnsigned()
		if err != nil {
			return fmt.Errorf("LoadString: %w", err)
		}
		if u == 0 {
			break
		}
		chars = append(chars, cell)
		addr++
	}
	for i := len(chars) - 1; i >= 0; i-- {
		ip.stack.Push(chars[i])
	}
	return nil
}

func opFlush(ip *Interpreter, instr bytecode.Instruction) error {
	ip.host.Flush()
	return nil
}

func opPrintChar(ip *Interpreter, instr bytecode.Instruction) error {
	v, err := ip.stack.Top()
	if err != nil {
		return err
	}
	u, err := v.AsUnsigned()
	if err != nil {
		return fmt.Errorf("PrintChar: %w", err)
	}
	ip.host.Print(string([]byte{byte(u)}))
	ip.stack.Pop()
	return nil
}

func opPrintNumber(ip *Interpreter, instr bytecode.Instruction) error {
	v, err := ip.stack.Pop()
	if err != nil {
		return err
	}
	switch v.Tag {
	case value.Unsigned:
		u, _ := v.AsUnsigned()
		ip.host.Print(strconv.FormatUint(uint64(u), 10))
	case value.Signed:
		s, _ := v.AsSigned()
		ip.host.Print(strconv.FormatInt(int64(s), 10))
	case value.Floating:
		f, _ := v.AsFloat()
		ip.host.Print(strconv.FormatFloat(float64(f), 'f', -1, 32))
	default:
		return ErrTypeMismatch
	}
	return nil
}

// opInput implements opcode 6: p1 = destination address, p2 = kind
// (1=Unsigned, 2=Signed, 3=Float, other=ASCII buffer), p3 = limit.
func opInput(ip *Interpreter, instr bytecode.Instruction) error {
	addrV, err := ip.resolve(instr.Param1)
	if err != nil {
		return err
	}
	kindV, err := ip.resolve(instr.Param2)
	if err != nil {
		return err
	}
	limitV, err := ip.resolve(instr.Param3)
	if err != nil {
		return err
	}
	addr, err := addrV.ForceUnsigned()
	if err != nil {
		return err
	}
	kind, err := kindV.ForceUnsigned()
	if err != nil {
		return err
	}
	limit, err := limitV.ForceUnsigned()
	if err != nil {
		return err
	}

	ip.host.Flush()
	line, err := ip.host.ReadLine()
	if err != nil {
		return fmt.Errorf("Input: %w", err)
	}

	switch kind {
	case 1:
		u, err := strconv.ParseUint(strings.TrimSpace(line), 10, 32)
		if err != nil {
			return fmt.Errorf("Input: parsing unsigned: %w", err)
		}
		ip.memory.Write(addr, value.FromUnsigned(uint32(u)))
	case 2:
		s, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if err != nil {
			return fmt.Errorf("Input: parsing signed: %w", err)
		}
		ip.memory.Write(addr, value.FromSigned(int32(s)))
	case 3:
		f, err := strconv.ParseFloat(strings.TrimSpace(line), 32)
		if err != nil {
			return fmt.Errorf("Input: parsing float: %w", err)
		}
		ip.memory.Write(addr, value.FromFloat(float32(f)))
	default:
		line = strings.ReplaceAll(line, "\n", "\x00")
		n := len(line)
		if uint32(n) > limit {
			n = int(limit)
		}
		a := addr
		for i := 0; i < n; i++ {
			ip.memory.Write(a, value.FromUnsigned(uint32(line[i])))
			a++
		}
		ip.memory.Write(a, value.FromUnsigned(0))
	}
	return nil
}

// opTimeOp implements opcode 13. Subcommand 1 consumes two stack slots
// concatenated into an 8-byte big-endian millisecond count (top = high
// 4 bytes).
func opTimeOp(ip *Interpreter, instr bytecode.Instruction) error {
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
		now := time.Now()
		ip.timerStart = &now
	case 1:
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
		d := time.Duration(ms) * time.Millisecond
		ip.timerDuration = &d
	case 2:
		var start time.Time
		if ip.timerStart != nil {
			start = *ip.timerStart
		}
		var target time.Duration
		if ip.timerDuration != nil {
			target = *ip.timerDuration
		}
		elapsed := time.Since(start)
		var cmp uint32
		switch {
		case elapsed < target:
			cmp = 0
		case elapsed == target:
			cmp = 1
		default:
			cmp = 2
		}
		ip.stack.Push(value.FromUnsigned(cmp))
	}
	// unknown subcommands are silently ignored
	return nil
}

func opRandom(ip *Interpreter, instr bytecode.Instruction) error {
	ip.stack.Push(value.FromFloat(ip.rng.Float32()))
	return nil
}
