// Package interpreter implements the robson stack machine: decode,
// resolve, dispatch, repeat. See SPEC_FULL.md EXP-4.3.
//
// The overall shape - a struct owning memory/stack/pc, a decode-advance-
// dispatch loop, and a debug trace toggle - is grounded on the teacher's
// vm.go/exec.go and run.go (RunProgram's tight execution loop with GC
// disabled during the hot path, and RunProgramDebugMode's line-at-a-time
// trace). Unlike the teacher's VM, this interpreter never touches the
// hardware-device bus or the OS directly; all I/O goes through the Host
// and TerminalHost capabilities injected at construction (spec.md 6).
package interpreter

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"robson/internal/bytecode"
	"robson/internal/value"
)

// Host is the non-terminal I/O capability set consumed by the core.
type Host interface {
	ReadLine() (string, error)
	Print(s string)
	Println(s string)
	Flush()
}

// TerminalHost is the terminal-control capability set consumed by
// TerminalOp. A nil TerminalHost is valid; TerminalOp then fails with
// ErrNoTerminal rather than panicking, so a headless run of a program
// that never executes opcode 15 still works.
type TerminalHost interface {
	EnableRawMode() error
	DisableRawMode() error
	ClearAll()
	ClearPurge()
	ShowCursor()
	HideCursor()
	MoveCursor(x, y int)
	Poll(ms int) (int, error)
}

var (
	ErrTypeMismatch     = errors.New("interpreter: mismatched operand types")
	ErrDivisionByZero   = errors.New("interpreter: division by zero")
	ErrInvalidAddressing = errors.New("interpreter: StackRelative payload must be 0")
	ErrUnknownOpcode    = errors.New("interpreter: unknown opcode")
	ErrNoTerminal       = errors.New("interpreter: no terminal host configured")
	ErrMustBeUnsigned   = errors.New("interpreter: value must be tagged Unsigned")
)

// Interpreter is a single stack-machine run over one compiled buffer.
type Interpreter struct {
	buf    []byte
	memory value.Memory
	stack  value.Stack
	pc     int

	timerStart    *time.Time
	timerDuration *time.Duration

	host  Host
	term  TerminalHost
	debug bool
	rng   *rand.Rand
}

// New constructs an Interpreter over a compiled buffer. term may be nil if
// the program is known never to use terminal ops.
func New(buf []byte, host Host, term TerminalHost, debug bool) *Interpreter {
	return &Interpreter{
		buf:   buf,
		host:  host,
		term:  term,
		debug: debug,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PC returns the current byte offset into the buffer, always a multiple
// of bytecode.RecordSize while running and possibly buf length at halt.
func (ip *Interpreter) PC() int { return ip.pc }

// Run drives the execution loop until pc reaches the end of the buffer or
// a handler returns an error.
func (ip *Interpreter) Run() error {
	for ip.pc < len(ip.buf) {
		if ip.pc+bytecode.RecordSize > len(ip.buf) {
			return fmt.Errorf("interpreter: truncated record at pc=%d", ip.pc)
		}
		instr, err := bytecode.Decode(ip.buf[ip.pc : ip.pc+bytecode.RecordSize])
		if err != nil {
			return err
		}

		if ip.debug {
			ip.trace(instr)
		}

		ip.pc += bytecode.RecordSize

		if !instr.Op.Valid() || int(instr.Op) >= len(handlers) || handlers[instr.Op] == nil {
			return fmt.Errorf("%w: %d", ErrUnknownOpcode, instr.Op)
		}
		if err := handlers[instr.Op](ip, instr); err != nil {
			return fmt.Errorf("interpreter: %s at command %d: %w", instr.Op, (ip.pc-bytecode.RecordSize)/bytecode.RecordSize, err)
		}
	}
	return nil
}

// trace prints a single line documenting the instruction about to run,
// the debug toggle's only effect: a linear trace-print, deliberately not
// the teacher's interactive step/breakpoint REPL, since spec.md's
// Non-goals exclude a source-level debugger.
func (ip *Interpreter) trace(instr bytecode.Instruction) {
	ip.host.Println(fmt.Sprintf("%04d: %s", ip.pc/bytecode.RecordSize, instr))
}
