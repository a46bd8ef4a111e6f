// Package analyzer implements the single-pass analyzer/emitter (component
// F): a recursive-descent grammar walk that resolves symbols, checks
// types, and emits bytecode.Instructions directly, with no intermediate
// AST. Grounded on the teacher's compiler/ast_compiler.go for the
// scope/local/patch-jump bookkeeping shape, restructured to drive
// straight off the token buffer per the fused parse-and-emit design.
package analyzer

import (
	"nilanc/bytecode"
	"nilanc/compileerr"
	"nilanc/lexer"
	"nilanc/parser"
	"nilanc/precedence"
	"nilanc/symtab"
	"nilanc/token"
)

// libSig describes a built-in library function's signature. putstr is
// handled outside this table because its parameter accepts either Int or
// String (see DESIGN.md, open question 2).
type libSig struct {
	params []symtab.ValueType
	ret    symtab.ValueType
}

var libraryFuncs = map[string]libSig{
	"getint":    {nil, symtab.Int},
	"getdouble": {nil, symtab.Double},
	"getchar":   {nil, symtab.Int},
	"putint":    {[]symtab.ValueType{symtab.Int}, symtab.Void},
	"putdouble": {[]symtab.ValueType{symtab.Double}, symtab.Void},
	"putchar":   {[]symtab.ValueType{symtab.Int}, symtab.Void},
	"putln":     {nil, symtab.Void},
	// putstr is special-cased in callExpr.
}

// loopContext tracks the innermost while loop being compiled, so break can
// back-patch forward past it and continue can jump back to its condition.
type loopContext struct {
	loopTop int
	breaks  []int
}

// Analyzer holds all state threaded through one compilation: the token
// buffer, the four symbol collections, the shared operator stack, and the
// instruction list currently being appended to.
type Analyzer struct {
	buf *parser.Buffer

	symbols   symtab.SymbolTable
	params    symtab.ParamList
	functions *symtab.FunctionTable
	globals   symtab.GlobalTable
	ops       precedence.Stack

	level int

	// out points at whichever instruction slice is currently being
	// emitted into: globalInit while analyzing top-level declarations,
	// or the body of the function currently being compiled.
	out        *[]bytecode.Instruction
	globalInit []bytecode.Instruction

	inFunction     bool
	paramBase      int
	localSlotCount int
	curReturnType  symtab.ValueType
	haveReturn     bool

	loops []loopContext

	nextFunctionID int
}

// New builds an Analyzer ready to compile src.
func New(src string) *Analyzer {
	a := &Analyzer{
		functions:      symtab.NewFunctionTable(),
		nextFunctionID: 1, // 0 is reserved for _start
	}
	a.buf = parser.New(lexer.New(src))
	a.out = &a.globalInit
	return a
}

// Result is everything the image assembler needs.
type Result struct {
	Globals   []symtab.GlobalDef
	Functions []*symtab.FunctionDef
}

// Compile runs the analyzer over the whole input and returns the compiled
// program, or the first error encountered.
func (a *Analyzer) Compile() (*Result, error) {
	for {
		atEOF, err := a.buf.Check(token.EOF)
		if err != nil {
			return nil, err
		}
		if atEOF {
			break
		}
		if err := a.item(); err != nil {
			return nil, err
		}
	}
	return a.finish()
}

// item ::= function | decl_stmt
func (a *Analyzer) item() error {
	isFn, err := a.buf.Check(token.FN)
	if err != nil {
		return err
	}
	if isFn {
		return a.function()
	}
	return a.declStmt()
}

// emit appends instr to whatever instruction list is currently active.
func (a *Analyzer) emit(instr bytecode.Instruction) {
	*a.out = append(*a.out, instr)
}

func (a *Analyzer) emitOp(op bytecode.Opcode) {
	a.emit(bytecode.Make(op))
}

func (a *Analyzer) emitOperand(op bytecode.Opcode, operand int64) {
	a.emit(bytecode.MakeWithOperand(op, operand))
}

// currentIndex is the index the next-emitted instruction will occupy.
func (a *Analyzer) currentIndex() int {
	return len(*a.out)
}

// patch rewrites the operand of an already-emitted branch instruction,
// keeping its opcode.
func (a *Analyzer) patch(idx int, operand int64) {
	instr := (*a.out)[idx]
	(*a.out)[idx] = bytecode.MakeWithOperand(instr.Op, operand)
}

// allocSlot bumps and returns the slot counter for the context currently
// being compiled (a function's locals, or _start's locals while compiling
// top-level declarations and their initializers).
func (a *Analyzer) allocSlot() int {
	slot := a.localSlotCount
	a.localSlotCount++
	return slot
}

// function ::= 'fn' IDENT '(' param_list? ')' '->' ty block_stmt
func (a *Analyzer) function() error {
	if _, err := a.buf.Expect(token.FN); err != nil {
		return err
	}
	nameTok, err := a.buf.Expect(token.IDENT)
	if err != nil {
		return err
	}
	name, _ := nameTok.Value.(string)
	if a.functions.Has(name) || a.symbols.HasAtLevel(name, 0) {
		return compileerr.Duplicatef(nameTok.Start, name)
	}

	if _, err := a.buf.Expect(token.LPAREN); err != nil {
		return err
	}
	var params []symtab.Parameter
	closed, err := a.buf.Check(token.RPAREN)
	if err != nil {
		return err
	}
	if !closed {
		params, err = a.paramList()
		if err != nil {
			return err
		}
	}
	if _, err := a.buf.Expect(token.RPAREN); err != nil {
		return err
	}
	if _, err := a.buf.Expect(token.ARROW); err != nil {
		return err
	}
	retType, retPos, err := a.typeName()
	if err != nil {
		return err
	}

	paramBase := 0
	if retType != symtab.Void {
		paramBase = 1
	}

	paramTypes := make([]symtab.ValueType, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}

	funcID := a.nextFunctionID
	a.nextFunctionID++
	def := &symtab.FunctionDef{
		Name:       name,
		ReturnType: retType,
		FunctionID: funcID,
		ParamCount: len(params),
		ParamTypes: paramTypes,
	}
	if retType != symtab.Void {
		def.ReturnSlots = 1
	}
	a.functions.Register(def)
	def.NameGlobalIdx = a.globals.Append(symtab.GlobalDef{IsConstant: true, Bytes: []byte(name)})

	// Swap in fresh per-function state, saving the caller's (top-level)
	// state to restore afterwards.
	savedOut, savedInFunction := a.out, a.inFunction
	savedParamBase, savedLocalSlotCount := a.paramBase, a.localSlotCount
	savedHaveReturn, savedReturnType := a.haveReturn, a.curReturnType
	savedParams := a.params

	var body []bytecode.Instruction
	a.out = &body
	a.inFunction = true
	a.paramBase = paramBase
	a.localSlotCount = 0
	a.haveReturn = false
	a.curReturnType = retType
	a.params.Reset()
	for _, p := range params {
		a.params.Add(p)
	}

	if err := a.blockStmt(); err != nil {
		return err
	}

	if retType == symtab.Void {
		a.emitOp(bytecode.RET)
	} else if !a.haveReturn {
		return compileerr.NotValidReturnf(retPos, "function %q must return a value", name)
	}

	def.Instructions = body
	def.LocalSlotCount = a.localSlotCount

	a.out, a.inFunction = savedOut, savedInFunction
	a.paramBase, a.localSlotCount = savedParamBase, savedLocalSlotCount
	a.haveReturn, a.curReturnType = savedHaveReturn, savedReturnType
	a.params = savedParams

	return nil
}

// typeName parses the `ty` nonterminal: an IDENT whose value must be one
// of int, double, void.
func (a *Analyzer) typeName() (symtab.ValueType, token.Position, error) {
	tok, err := a.buf.Expect(token.IDENT)
	if err != nil {
		return symtab.Void, token.Position{}, err
	}
	name, _ := tok.Value.(string)
	ty, ok := symtab.ParseType(name)
	if !ok {
		return symtab.Void, tok.Start, compileerr.NotValidReturnf(tok.Start, "unknown type %q", name)
	}
	return ty, tok.Start, nil
}

// paramList ::= param (',' param)*
// param     ::= 'const'? IDENT ':' ty
func (a *Analyzer) paramList() ([]symtab.Parameter, error) {
	var params []symtab.Parameter
	for {
		_, isConst, err := a.buf.Accept(token.CONST)
		if err != nil {
			return nil, err
		}
		nameTok, err := a.buf.Expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		name, _ := nameTok.Value.(string)
		for _, p := range params {
			if p.Name == name {
				return nil, compileerr.Duplicatef(nameTok.Start, name)
			}
		}
		if _, err := a.buf.Expect(token.COLON); err != nil {
			return nil, err
		}
		ty, tyPos, err := a.typeName()
		if err != nil {
			return nil, err
		}
		if ty == symtab.Void {
			return nil, compileerr.Paramf(tyPos, "parameter %q cannot be void", name)
		}
		params = append(params, symtab.Parameter{Name: name, Type: ty, IsConstant: isConst})

		_, more, err := a.buf.Accept(token.COMMA)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return params, nil
}
