// Package image serializes a compiled analyzer.Result into the big-endian
// binary image the out-of-scope companion VM loads, and can read one back
// for the disassemble dev command. Grounded on the teacher's
// ASTCompiler bytecode-emission pass (compiler/ast_compiler.go writes a
// []byte buffer incrementally in the same append-as-you-go style), scaled
// up to the fixed header/table layout this spec's image format requires.
package image

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"nilanc/bytecode"
	"nilanc/symtab"
)

const (
	Magic   uint32 = 0x72303b3e
	Version uint32 = 0x00000001
)

// Program is the analyzer's output in the shape the assembler consumes.
type Program struct {
	Globals   []symtab.GlobalDef
	Functions []*symtab.FunctionDef
}

// Assemble serializes program to a binary image.
func Assemble(program Program) ([]byte, error) {
	var buf bytes.Buffer

	writeU32(&buf, Magic)
	writeU32(&buf, Version)

	writeU32(&buf, uint32(len(program.Globals)))
	for _, g := range program.Globals {
		isConst := byte(0)
		if g.IsConstant {
			isConst = 1
		}
		buf.WriteByte(isConst)
		writeU32(&buf, uint32(len(g.Bytes)))
		buf.Write(g.Bytes)
	}

	writeU32(&buf, uint32(len(program.Functions)))
	for _, fn := range program.Functions {
		writeU32(&buf, uint32(fn.NameGlobalIdx))
		writeU32(&buf, uint32(fn.ReturnSlots))
		writeU32(&buf, uint32(fn.ParamCount))
		writeU32(&buf, uint32(fn.LocalSlotCount))
		writeU32(&buf, uint32(len(fn.Instructions)))
		for _, instr := range fn.Instructions {
			encoded, err := bytecode.Encode(instr)
			if err != nil {
				return nil, fmt.Errorf("image: function %q: %w", fn.Name, err)
			}
			buf.Write(encoded)
		}
	}

	return buf.Bytes(), nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}
