package analyzer

import (
	"nilanc/bytecode"
	"nilanc/compileerr"
	"nilanc/symtab"
	"nilanc/token"
)

// callExpr ::= IDENT '(' arg_list? ')', with IDENT already consumed and
// '(' about to be consumed.
func (a *Analyzer) callExpr(nameTok token.Token) (symtab.ValueType, error) {
	name, _ := nameTok.Value.(string)
	if _, err := a.buf.Next(); err != nil { // consume '('
		return symtab.Void, err
	}

	if name == "putstr" {
		return a.callPutstr(nameTok)
	}
	if sig, ok := libraryFuncs[name]; ok {
		return a.callLibrary(nameTok, name, sig)
	}
	def, ok := a.functions.Lookup(name)
	if !ok {
		return symtab.Void, compileerr.NotDeclaredf(nameTok.Start, name)
	}
	return a.callUser(nameTok, def)
}

// parseArgs ::= ( arg_list? ')' ) with '(' already consumed. It emits each
// argument's instructions, draining the operator stack down to the group
// marker before each comma, and returns the argument types in source
// order.
func (a *Analyzer) parseArgs() ([]symtab.ValueType, error) {
	closed, err := a.buf.Check(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if closed {
		_, err := a.buf.Next()
		return nil, err
	}

	a.ops.PushMarker()
	var types []symtab.ValueType
	for {
		ty, err := a.expr()
		if err != nil {
			return nil, err
		}
		a.drainOperators()
		types = append(types, ty)

		_, more, err := a.buf.Accept(token.COMMA)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	a.ops.PopMarker()

	if _, err := a.buf.Expect(token.RPAREN); err != nil {
		return nil, err
	}
	return types, nil
}

// callPutstr handles the one library function whose parameter accepts
// either int or the internal String tag (see DESIGN.md, open question 2).
func (a *Analyzer) callPutstr(nameTok token.Token) (symtab.ValueType, error) {
	a.emitOperand(bytecode.STACKALLOC, 0)
	argTypes, err := a.parseArgs()
	if err != nil {
		return symtab.Void, err
	}
	if len(argTypes) != 1 {
		return symtab.Void, compileerr.Paramf(nameTok.Start, "putstr expects 1 argument, got %d", len(argTypes))
	}
	if argTypes[0] != symtab.String && argTypes[0] != symtab.Int {
		return symtab.Void, compileerr.Paramf(nameTok.Start, "putstr argument must be string or int, got %s", argTypes[0])
	}
	idx := a.globals.Append(symtab.GlobalDef{IsConstant: true, Bytes: []byte("putstr")})
	a.emitOperand(bytecode.CALLNAME, int64(idx))
	return symtab.Void, nil
}

func (a *Analyzer) callLibrary(nameTok token.Token, name string, sig libSig) (symtab.ValueType, error) {
	k := int64(0)
	if sig.ret != symtab.Void {
		k = 1
	}
	a.emitOperand(bytecode.STACKALLOC, k)

	argTypes, err := a.parseArgs()
	if err != nil {
		return symtab.Void, err
	}
	if len(argTypes) != len(sig.params) {
		return symtab.Void, compileerr.Paramf(nameTok.Start, "%s expects %d argument(s), got %d", name, len(sig.params), len(argTypes))
	}
	for i, want := range sig.params {
		if numKind(argTypes[i]) != want {
			return symtab.Void, compileerr.Paramf(nameTok.Start, "%s argument %d: expected %s, got %s", name, i+1, want, argTypes[i])
		}
	}

	idx := a.globals.Append(symtab.GlobalDef{IsConstant: true, Bytes: []byte(name)})
	a.emitOperand(bytecode.CALLNAME, int64(idx))
	return sig.ret, nil
}

func (a *Analyzer) callUser(nameTok token.Token, def *symtab.FunctionDef) (symtab.ValueType, error) {
	k := int64(0)
	if def.ReturnType != symtab.Void {
		k = 1
	}
	a.emitOperand(bytecode.STACKALLOC, k)

	argTypes, err := a.parseArgs()
	if err != nil {
		return symtab.Void, err
	}
	if len(argTypes) != def.ParamCount {
		return symtab.Void, compileerr.Paramf(nameTok.Start, "%s expects %d argument(s), got %d", def.Name, def.ParamCount, len(argTypes))
	}
	for i, want := range def.ParamTypes {
		if numKind(argTypes[i]) != want {
			return symtab.Void, compileerr.Paramf(nameTok.Start, "%s argument %d: expected %s, got %s", def.Name, i+1, want, argTypes[i])
		}
	}

	a.emitOperand(bytecode.CALL, int64(def.FunctionID))
	return def.ReturnType, nil
}
