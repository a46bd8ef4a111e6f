package image

import (
	"testing"

	"nilanc/bytecode"
	"nilanc/symtab"
)

func TestAssembleReadRoundTrip(t *testing.T) {
	program := Program{
		Globals: []symtab.GlobalDef{
			{IsConstant: true, Bytes: []byte("_start")},
			{IsConstant: true, Bytes: []byte("main")},
		},
		Functions: []*symtab.FunctionDef{
			{
				Name:           "_start",
				NameGlobalIdx:  0,
				Instructions:   []bytecode.Instruction{bytecode.MakeWithOperand(bytecode.CALL, 1), bytecode.Make(bytecode.RET)},
				LocalSlotCount: 0,
			},
			{
				Name:           "main",
				NameGlobalIdx:  1,
				ReturnSlots:    0,
				ParamCount:     0,
				LocalSlotCount: 1,
				Instructions: []bytecode.Instruction{
					bytecode.MakeWithOperand(bytecode.PUSH, 42),
					bytecode.MakeWithOperand(bytecode.LOCA, 0),
					bytecode.Make(bytecode.STORE),
					bytecode.Make(bytecode.RET),
				},
			},
		},
	}

	data, err := Assemble(program)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	globals, functions, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(globals) != 2 || string(globals[1].Bytes) != "main" {
		t.Fatalf("globals round trip = %+v", globals)
	}
	if len(functions) != 2 {
		t.Fatalf("len(functions) = %d, want 2", len(functions))
	}
	main := functions[1]
	if main.Name != "main" || main.LocalSlotCount != 1 || len(main.Instructions) != 4 {
		t.Fatalf("main round trip = %+v", main)
	}
	if main.Instructions[0].Op != bytecode.PUSH || main.Instructions[0].Operand != 42 {
		t.Fatalf("main.Instructions[0] = %+v", main.Instructions[0])
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	if _, _, err := Read([]byte{0, 0, 0, 0}); err == nil {
		t.Fatal("expected an error reading a short/invalid image")
	}
}
