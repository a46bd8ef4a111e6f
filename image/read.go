package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"nilanc/bytecode"
	"nilanc/symtab"
)

// FunctionImage is one function as read back from an assembled image: the
// analyzer's FunctionDef carries richer compile-time bookkeeping (name,
// functionId) that the image itself does not store per-function beyond
// nameGlobalIndex, so reading resolves the name from the global table.
type FunctionImage struct {
	Name           string
	ReturnSlots    int
	ParamCount     int
	LocalSlotCount int
	Instructions   []bytecode.Instruction
}

// Read parses an assembled image back into its globals and functions, in
// the order they were written (functionId order, _start first).
func Read(data []byte) ([]symtab.GlobalDef, []FunctionImage, error) {
	r := bytes.NewReader(data)

	var magic, version uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, nil, fmt.Errorf("image: reading magic: %w", err)
	}
	if magic != Magic {
		return nil, nil, fmt.Errorf("image: bad magic 0x%08x", magic)
	}
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("image: reading version: %w", err)
	}
	if version != Version {
		return nil, nil, fmt.Errorf("image: unsupported version 0x%08x", version)
	}

	var globalsCount uint32
	if err := binary.Read(r, binary.BigEndian, &globalsCount); err != nil {
		return nil, nil, fmt.Errorf("image: reading globals count: %w", err)
	}
	globals := make([]symtab.GlobalDef, globalsCount)
	for i := range globals {
		var isConst byte
		if err := binary.Read(r, binary.BigEndian, &isConst); err != nil {
			return nil, nil, fmt.Errorf("image: reading global %d flag: %w", i, err)
		}
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, nil, fmt.Errorf("image: reading global %d length: %w", i, err)
		}
		bytesVal := make([]byte, length)
		if _, err := io.ReadFull(r, bytesVal); err != nil {
			return nil, nil, fmt.Errorf("image: reading global %d bytes: %w", i, err)
		}
		globals[i] = symtab.GlobalDef{IsConstant: isConst != 0, Bytes: bytesVal}
	}

	var functionsCount uint32
	if err := binary.Read(r, binary.BigEndian, &functionsCount); err != nil {
		return nil, nil, fmt.Errorf("image: reading functions count: %w", err)
	}
	functions := make([]FunctionImage, functionsCount)
	for i := range functions {
		var nameIdx, returnSlots, paramSlots, localSlots, instrCount uint32
		for _, field := range []*uint32{&nameIdx, &returnSlots, &paramSlots, &localSlots, &instrCount} {
			if err := binary.Read(r, binary.BigEndian, field); err != nil {
				return nil, nil, fmt.Errorf("image: reading function %d header: %w", i, err)
			}
		}
		name := ""
		if int(nameIdx) < len(globals) {
			name = string(globals[nameIdx].Bytes)
		}
		instrs := make([]bytecode.Instruction, instrCount)
		for j := range instrs {
			instr, err := bytecode.Decode(r)
			if err != nil {
				return nil, nil, fmt.Errorf("image: function %q instruction %d: %w", name, j, err)
			}
			instrs[j] = instr
		}
		functions[i] = FunctionImage{
			Name:           name,
			ReturnSlots:    int(returnSlots),
			ParamCount:     int(paramSlots),
			LocalSlotCount: int(localSlots),
			Instructions:   instrs,
		}
	}

	return globals, functions, nil
}
