package bytecode

import (
	"testing"

	"robson/internal/value"
)

func TestRoundTripEncodeDecode(t *testing.T) {
	original := Instruction{
		Op: Arith,
		Param1: Param{
			Payload: EncodeUint32(0),
			Mode:    Immediate,
			Type:    value.Unsigned,
		},
		Param2: Param{
			Payload: EncodeUint32(3),
			Mode:    DirectMemory,
			Type:    value.Signed,
			Convert: true,
		},
		Param3: Param{
			Payload: EncodeUint32(4),
			Mode:    IndirectMemory,
			Type:    value.Floating,
			Convert: true,
		},
	}

	rec := Encode(original)
	if len(rec) != RecordSize {
		t.Fatalf("Encode produced %d bytes; want %d", len(rec), RecordSize)
	}

	decoded, err := Decode(rec[:])
	if err != nil {
		t.Fatal(err)
	}

	if decoded != original {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", decoded, original)
	}
}

func TestDecodeRejectsShortRecord(t *testing.T) {
	if _, err := Decode(make([]byte, RecordSize-1)); err == nil {
		t.Fatal("expected an error decoding a short record")
	}
}

func TestOpcodeArityMatchesSpecTable(t *testing.T) {
	cases := map[Opcode]int{
		NoOp:             0,
		Arith:            3,
		IfLess:           3,
		Push:             1,
		IfEqJump:         3,
		JumpIfStackEmpty: 1,
		Input:            3,
		PrintChar:        0,
		PrintNumber:      0,
		Jump:             1,
		Store:            1,
		Pop:              0,
		LoadString:       1,
		TimeOp:           1,
		Flush:            0,
		TerminalOp:       1,
		Random:           0,
	}
	for op, want := range cases {
		if got := op.Arity(); got != want {
			t.Errorf("%s.Arity() = %d; want %d", op, got, want)
		}
	}
}

func TestModeFromKeyword(t *testing.T) {
	cases := map[string]Mode{
		"comeu":    Immediate,
		"chupou":   StackRelative,
		"fudeu":    DirectMemory,
		"penetrou": IndirectMemory,
	}
	for kw, want := range cases {
		got, ok := ModeFromKeyword(kw)
		if !ok || got != want {
			t.Errorf("ModeFromKeyword(%q) = %v, %v; want %v, true", kw, got, ok, want)
		}
	}
	if _, ok := ModeFromKeyword("lambeu"); ok {
		t.Error("lambeu should not resolve at the bytecode layer")
	}
}
