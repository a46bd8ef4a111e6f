package analyzer

import (
	"nilanc/bytecode"
	"nilanc/compileerr"
	"nilanc/symtab"
)

// finish synthesizes _start and assembles the final Result once every
// top-level item has been analyzed.
func (a *Analyzer) finish() (*Result, error) {
	mainDef, ok := a.functions.Lookup("main")
	if !ok {
		return nil, compileerr.NoMainAt(a.buf.LastPos())
	}

	instr := make([]bytecode.Instruction, 0, len(a.globalInit)+4)
	instr = append(instr, a.globalInit...)

	k := int64(0)
	if mainDef.ReturnType != symtab.Void {
		k = 1
	}
	instr = append(instr, bytecode.MakeWithOperand(bytecode.STACKALLOC, k))
	instr = append(instr, bytecode.MakeWithOperand(bytecode.CALL, int64(mainDef.FunctionID)))
	if mainDef.ReturnType != symtab.Void {
		instr = append(instr, bytecode.MakeWithOperand(bytecode.POPN, 1))
	}
	instr = append(instr, bytecode.Make(bytecode.RET))

	nameIdx := a.globals.Append(symtab.GlobalDef{IsConstant: true, Bytes: []byte("_start")})
	start := &symtab.FunctionDef{
		Name:           "_start",
		NameGlobalIdx:  nameIdx,
		FunctionID:     0,
		Instructions:   instr,
		LocalSlotCount: a.localSlotCount,
		ReturnType:     symtab.Void,
	}

	// Top-level globals are the only symbols still live; drop them so the
	// symbol table is empty once compilation completes.
	a.symbols.EndScope(0)

	functions := make([]*symtab.FunctionDef, 0, len(a.functions.Ordered())+1)
	functions = append(functions, start)
	functions = append(functions, a.functions.Ordered()...)

	return &Result{Globals: a.globals.Entries(), Functions: functions}, nil
}
