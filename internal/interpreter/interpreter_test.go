package interpreter

import (
	"strings"
	"testing"

	"robson/internal/bytecode"
	"robson/internal/compiler"
	"robson/internal/value"
)

// recordingHost is a scripted Host: it serves canned input lines split on
// "\n" (one per ReadLine call, mirroring spec.md 9's test-substrate note)
// and records everything printed, the same shape as the teacher's
// vm_test.go local fixtures.
type recordingHost struct {
	out   strings.Builder
	lines []string
}

func (h *recordingHost) ReadLine() (string, error) {
	if len(h.lines) == 0 {
		return "", nil
	}
	line := h.lines[0]
	h.lines = h.lines[1:]
	return line, nil
}
func (h *recordingHost) Print(s string)   { h.out.WriteString(s) }
func (h *recordingHost) Println(s string) { h.out.WriteString(s + "\n") }
func (h *recordingHost) Flush()           {}

// fakeTerm is a minimal TerminalHost that only records MoveCursor calls,
// enough to pin down the x/y argument order opTerminalOp hands it.
type fakeTerm struct {
	movedX, movedY int
}

func (f *fakeTerm) EnableRawMode() error  { return nil }
func (f *fakeTerm) DisableRawMode() error { return nil }
func (f *fakeTerm) ClearAll()             {}
func (f *fakeTerm) ClearPurge()           {}
func (f *fakeTerm) ShowCursor()           {}
func (f *fakeTerm) HideCursor()           {}
func (f *fakeTerm) MoveCursor(x, y int)   { f.movedX, f.movedY = x, y }
func (f *fakeTerm) Poll(ms int) (int, error) { return 0, nil }

type fakeCompilerHost struct{}

func (fakeCompilerHost) ReadSource(path string) ([]string, error) { return nil, nil }
func (fakeCompilerHost) ColorPrint(string, compiler.ColorCode)    {}

func compileOrFatal(t *testing.T, lines []string) []byte {
	t.Helper()
	buf, err := compiler.CompileSource(fakeCompilerHost{}, lines)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestPushAndPrintCharEndToEnd(t *testing.T) {
	lines := []string{"robson robson robson", "comeu 65", "robson robson robson robson robson robson robson"}
	buf := compileOrFatal(t, lines)
	host := &recordingHost{}
	ip := New(buf, host, nil, false)
	if err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	if host.out.String() != "A" {
		t.Fatalf("output = %q; want %q", host.out.String(), "A")
	}
}

func TestPushAbbreviationThenPrintNumber(t *testing.T) {
	lines := []string{"robson robson robson", "comeu 7", "comeu 8", "robson robson robson robson robson robson robson robson"}
	buf := compileOrFatal(t, lines)
	host := &recordingHost{}
	ip := New(buf, host, nil, false)
	if err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	if host.out.String() != "8" {
		t.Fatalf("output = %q; want %q (prints the top of stack, 8)", host.out.String(), "8")
	}
}

func TestTypedAddPushesSignedSeven(t *testing.T) {
	lines := []string{"robson", "comeu 0", "comeu i3", "comeu i4"}
	buf := compileOrFatal(t, lines)
	ip := New(buf, &recordingHost{}, nil, false)
	if err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	top, err := ip.stack.Top()
	if err != nil {
		t.Fatal(err)
	}
	got, err := top.AsSigned()
	if err != nil || got != 7 {
		t.Fatalf("top = %d, %v; want 7, nil", got, err)
	}
	if top.Bytes() != [4]byte{0, 0, 0, 7} {
		t.Fatalf("bytes = %v; want big-endian 00 00 00 07", top.Bytes())
	}
}

func TestFloatEqJumpBranchesOnApproxEquality(t *testing.T) {
	lines := []string{
		"robson robson robson", "comeu f1.00001",
		"robson robson robson", "comeu f1.00002",
		"robson robson robson robson", // IfEqJump
		"chupou 0",
		"chupou 0",
		"lambeu :target",
		"robson robson robson robson robson robson robson robson robson", // Jump (never reached if branch taken)
		"comeu 0",
		"target:",
	}
	buf := compileOrFatal(t, lines)
	ip := New(buf, &recordingHost{}, nil, false)
	if err := ip.Run(); err != nil {
		t.Fatal(err)
	}
	wantPC := len(buf)
	if ip.PC() != wantPC {
		t.Fatalf("pc = %d; want %d (branch taken straight to end)", ip.PC(), wantPC)
	}
}

func TestStackRelativeRejectsNonZeroPayload(t *testing.T) {
	ip := New(nil, &recordingHost{}, nil, false)
	ip.stack.Push(value.FromUnsigned(1))
	_, err := resolveStackRelative(ip, stackRelativeParam(t, 5))
	if err != ErrInvalidAddressing {
		t.Fatalf("err = %v; want ErrInvalidAddressing", err)
	}
}

func TestDivisionByZeroIsATypedError(t *testing.T) {
	_, err := divUnsigned(value.FromUnsigned(1), value.FromUnsigned(0))
	if err != ErrDivisionByZero {
		t.Fatalf("err = %v; want ErrDivisionByZero", err)
	}
}

func TestPopOnEmptyStackIsANoOp(t *testing.T) {
	lines := []string{"robson robson robson robson robson robson robson robson robson robson robson"} // Pop
	buf := compileOrFatal(t, lines)
	ip := New(buf, &recordingHost{}, nil, false)
	if err := ip.Run(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadStringPushesInReverseForForwardPrint(t *testing.T) {
	ip := New(nil, &recordingHost{}, nil, false)
	ip.memory.Write(0, value.FromUnsigned('h'))
	ip.memory.Write(1, value.FromUnsigned('i'))
	ip.memory.Write(2, value.FromUnsigned(0))

	instr := loadStringInstrAt(0)
	if err := opLoadString(ip, instr); err != nil {
		t.Fatal(err)
	}
	first, _ := ip.stack.Pop()
	second, _ := ip.stack.Pop()
	fu, _ := first.AsUnsigned()
	su, _ := second.AsUnsigned()
	if fu != 'h' || su != 'i' {
		t.Fatalf("pop order = %c, %c; want h, i", fu, su)
	}
}

// TestMoveCursorPopsXBeforeY pins down the one TerminalOp subcommand whose
// argument order breaks from the "top = most recently pushed" convention
// used by TimeOp and TerminalOp's own Poll timeout: the stack top is x.
func TestMoveCursorPopsXBeforeY(t *testing.T) {
	term := &fakeTerm{}
	ip := New(nil, &recordingHost{}, term, false)
	ip.stack.Push(value.FromUnsigned(7))  // y, pushed first
	ip.stack.Push(value.FromUnsigned(3))  // x, pushed last, sits on top

	if err := opTerminalOp(ip, terminalOpInstr(4)); err != nil {
		t.Fatal(err)
	}
	if term.movedX != 3 || term.movedY != 7 {
		t.Fatalf("MoveCursor(%d, %d); want MoveCursor(3, 7)", term.movedX, term.movedY)
	}
}

func TestForceUnsignedRejectsNonUnsignedAddress(t *testing.T) {
	ip := New(nil, &recordingHost{}, nil, false)
	ip.stack.Push(value.FromSigned(-1))
	instr := bytecode.Instruction{
		Op: bytecode.Store,
		Param1: bytecode.Param{
			Payload: bytecode.EncodeUint32(0),
			Mode:    bytecode.Immediate,
			Type:    value.Signed,
		},
	}
	if err := opStore(ip, instr); err != value.ErrTagMismatch {
		t.Fatalf("err = %v; want ErrTagMismatch (address param must carry Unsigned tag)", err)
	}
}

// TestPrintCharLeavesStackOnTypeMismatch pins down that a type error on
// PrintChar's top-of-stack check never pops: the value stays put, matching
// the original interpreter's non-destructive top() check before print.
func TestPrintCharLeavesStackOnTypeMismatch(t *testing.T) {
	ip := New(nil, &recordingHost{}, nil, false)
	ip.stack.Push(value.FromSigned(-1))
	if err := opPrintChar(ip, bytecode.Instruction{}); err == nil {
		t.Fatal("expected a type error printing a Signed value")
	}
	if ip.stack.Len() != 1 {
		t.Fatalf("stack len = %d; want 1 (PrintChar must not pop on error)", ip.stack.Len())
	}
}

// TestCompareAndJumpResolvesParam3BeforeTagCheck pins down that Param3 is
// resolved (and its addressing-mode side effect observed) even when
// Param1/Param2 turn out to have mismatched tags, per spec.md 5's "p1 then
// p2 then p3" resolution-order rule.
func TestCompareAndJumpResolvesParam3BeforeTagCheck(t *testing.T) {
	ip := New(nil, &recordingHost{}, nil, false)
	ip.stack.Push(value.FromUnsigned(99)) // consumed by Param3's StackRelative pop

	instr := bytecode.Instruction{
		Param1: bytecode.Param{Payload: bytecode.EncodeUint32(1), Mode: bytecode.Immediate, Type: value.Unsigned},
		Param2: bytecode.Param{Payload: bytecode.EncodeUint32(1), Mode: bytecode.Immediate, Type: value.Signed},
		Param3: stackRelativeParam(t, 0),
	}
	if err := opIfLess(ip, instr); err != ErrTypeMismatch {
		t.Fatalf("err = %v; want ErrTypeMismatch", err)
	}
	if ip.stack.Len() != 0 {
		t.Fatalf("stack len = %d; want 0 (Param3's StackRelative pop must run before the tag check fails)", ip.stack.Len())
	}
}
