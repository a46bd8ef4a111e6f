package bytecode

import (
	"bytes"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		instr    Instruction
		expected []byte
	}{
		{Make(RET), []byte{byte(RET)}},
		{Make(ADD), []byte{byte(ADD)}},
		{MakeWithOperand(PUSH, 65000), []byte{byte(PUSH), 0, 0, 0, 0, 0, 0, 253, 232}},
		{MakeWithOperand(LOCA, 3), []byte{byte(LOCA), 0, 0, 0, 3}},
		{MakeWithOperand(BR, -1), []byte{byte(BR), 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		got, err := Encode(tt.instr)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", tt.instr, err)
		}
		if !bytes.Equal(got, tt.expected) {
			t.Errorf("Encode(%+v) = %v, want %v", tt.instr, got, tt.expected)
		}
	}
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		instr    Instruction
		expected string
	}{
		{Make(RET), "ret"},
		{MakeWithOperand(PUSH, 42), "push 42"},
		{MakeWithOperand(BR, -3), "br -3"},
	}

	for _, tt := range tests {
		got, err := Disassemble(tt.instr)
		if err != nil {
			t.Fatalf("Disassemble(%+v): %v", tt.instr, err)
		}
		if got != tt.expected {
			t.Errorf("Disassemble(%+v) = %q, want %q", tt.instr, got, tt.expected)
		}
	}
}

func TestGetUnknownOpcode(t *testing.T) {
	if _, err := Get(Opcode(0xee)); err == nil {
		t.Fatal("expected an error for an undefined opcode")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []Instruction{
		Make(RET),
		Make(ADD),
		MakeWithOperand(PUSH, 65000),
		MakeWithOperand(LOCA, 3),
		MakeWithOperand(BR, -1),
		MakeWithOperand(CALL, 7),
	}

	for _, instr := range tests {
		encoded, err := Encode(instr)
		if err != nil {
			t.Fatalf("Encode(%+v): %v", instr, err)
		}
		got, err := Decode(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("Decode(%+v): %v", instr, err)
		}
		if got != instr {
			t.Errorf("round trip %+v = %+v", instr, got)
		}
	}
}
