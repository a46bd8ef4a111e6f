package analyzer

import (
	"nilanc/bytecode"
	"nilanc/compileerr"
	"nilanc/precedence"
	"nilanc/symtab"
	"nilanc/token"
)

// numKind collapses String to Int: a string literal is sugar for "address
// of global" and behaves exactly as an int everywhere except as a direct
// putstr argument (tracked separately in callPutstr).
func numKind(t symtab.ValueType) symtab.ValueType {
	if t == symtab.String {
		return symtab.Int
	}
	return t
}

func isBinOp(k token.Kind) bool {
	switch k {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE:
		return true
	default:
		return false
	}
}

// isComparisonOp reports whether k is one of the six comparison operators,
// which always push an int 0/1 regardless of their operands' type.
func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE:
		return true
	default:
		return false
	}
}

// expr ::= unary_or_primary (bin_op expr | 'as' ty)*
func (a *Analyzer) expr() (symtab.ValueType, error) {
	leftStart := a.currentIndex()
	leftType, err := a.unaryOrPrimary()
	if err != nil {
		return symtab.Void, err
	}

	for {
		next, err := a.buf.Peek()
		if err != nil {
			return symtab.Void, err
		}

		if next.Kind == token.AS {
			if _, err := a.buf.Next(); err != nil {
				return symtab.Void, err
			}
			targetType, tyPos, err := a.typeName()
			if err != nil {
				return symtab.Void, err
			}
			srcKind := numKind(leftType)
			if srcKind != symtab.Int && srcKind != symtab.Double {
				return symtab.Void, compileerr.Typef(tyPos, "cannot cast %s", leftType)
			}
			if targetType != symtab.Int && targetType != symtab.Double {
				return symtab.Void, compileerr.Typef(tyPos, "cannot cast to %s", targetType)
			}
			if targetType != srcKind {
				if srcKind == symtab.Int {
					a.emitOp(bytecode.ITOF)
				} else {
					a.emitOp(bytecode.FTOI)
				}
			}
			leftType = targetType
			continue
		}

		if !isBinOp(next.Kind) {
			break
		}
		opTok, err := a.buf.Next()
		if err != nil {
			return symtab.Void, err
		}
		opPrec := precedence.Level(opTok.Kind)

		for {
			top, ok := a.ops.Top()
			if !ok || top.IsMarker || top.Prec < opPrec {
				break
			}
			a.ops.Pop()
			if err := a.emitBinaryOp(top); err != nil {
				return symtab.Void, err
			}
			leftStart = top.LeftStart
		}
		a.ops.Push(opTok.Kind, opTok.Start, leftType, leftStart)

		rightType, err := a.expr()
		if err != nil {
			return symtab.Void, err
		}
		if numKind(rightType) != numKind(leftType) {
			return symtab.Void, compileerr.Typef(opTok.Start, "operand type mismatch: %s vs %s", leftType, rightType)
		}
		if isComparisonOp(opTok.Kind) {
			return symtab.Int, nil
		}
		return rightType, nil
	}
	return leftType, nil
}

// drainOperators pops and emits every operator above the nearest group
// marker (or down to the bottom of the stack, at a true statement
// boundary).
func (a *Analyzer) drainOperators() {
	for {
		top, ok := a.ops.Top()
		if !ok || top.IsMarker {
			return
		}
		a.ops.Pop()
		// emitBinaryOp never errors for a drain triggered from known-good
		// entries; any malformed entry would have been rejected at push
		// time.
		_ = a.emitBinaryOp(top)
	}
}

// unaryOrPrimary ::= '-' expr | IDENT (...) | '(' expr ')' | literal
func (a *Analyzer) unaryOrPrimary() (symtab.ValueType, error) {
	next, err := a.buf.Peek()
	if err != nil {
		return symtab.Void, err
	}

	switch next.Kind {
	case token.MINUS:
		if _, err := a.buf.Next(); err != nil {
			return symtab.Void, err
		}
		a.ops.PushMarker()
		innerType, err := a.expr()
		if err != nil {
			return symtab.Void, err
		}
		a.drainOperators()
		a.ops.PopMarker()
		switch numKind(innerType) {
		case symtab.Int:
			a.emitOp(bytecode.NEGI)
		case symtab.Double:
			a.emitOp(bytecode.NEGF)
		default:
			return symtab.Void, compileerr.Typef(next.Start, "cannot negate %s", innerType)
		}
		return innerType, nil

	case token.LPAREN:
		if _, err := a.buf.Next(); err != nil {
			return symtab.Void, err
		}
		a.ops.PushMarker()
		innerType, err := a.expr()
		if err != nil {
			return symtab.Void, err
		}
		a.drainOperators()
		a.ops.PopMarker()
		if _, err := a.buf.Expect(token.RPAREN); err != nil {
			return symtab.Void, err
		}
		return innerType, nil

	case token.IDENT:
		return a.identifierExpr()

	case token.UINT_LITERAL:
		tok, _ := a.buf.Next()
		val, _ := tok.Value.(uint64)
		a.emitOperand(bytecode.PUSH, int64(val))
		return symtab.Int, nil

	case token.DOUBLE_LITERAL:
		tok, _ := a.buf.Next()
		bits, _ := tok.Value.(uint64)
		a.emitOperand(bytecode.PUSH, int64(bits))
		return symtab.Double, nil

	case token.CHAR_LITERAL:
		tok, _ := a.buf.Next()
		val, _ := tok.Value.(uint64)
		a.emitOperand(bytecode.PUSH, int64(val))
		return symtab.Int, nil

	case token.STRING_LITERAL:
		tok, _ := a.buf.Next()
		s, _ := tok.Value.(string)
		idx := a.globals.Append(symtab.GlobalDef{IsConstant: true, Bytes: []byte(s)})
		a.emitOperand(bytecode.PUSH, int64(idx))
		return symtab.String, nil

	default:
		return symtab.Void, compileerr.Invalidf(next.Start, "unexpected %s in expression", next.Kind)
	}
}

// identifierExpr dispatches IDENT to assignment, call, or plain rvalue
// resolution depending on what follows.
func (a *Analyzer) identifierExpr() (symtab.ValueType, error) {
	nameTok, err := a.buf.Expect(token.IDENT)
	if err != nil {
		return symtab.Void, err
	}

	isAssign, err := a.buf.Check(token.ASSIGN)
	if err != nil {
		return symtab.Void, err
	}
	if isAssign {
		return a.assignExpr(nameTok)
	}

	isCall, err := a.buf.Check(token.LPAREN)
	if err != nil {
		return symtab.Void, err
	}
	if isCall {
		return a.callExpr(nameTok)
	}

	return a.identifierRvalue(nameTok)
}

// identifierRvalue resolves name by precedence local -> parameter ->
// global and emits its address followed by load.
func (a *Analyzer) identifierRvalue(nameTok token.Token) (symtab.ValueType, error) {
	name, _ := nameTok.Value.(string)
	sym, symOk := a.symbols.Lookup(name)

	if symOk && sym.Level >= 1 {
		a.emitOperand(bytecode.LOCA, int64(sym.Offset))
		a.emitOp(bytecode.LOAD)
		return sym.Type, nil
	}
	if param, idx, ok := a.params.Lookup(name); ok {
		a.emitOperand(bytecode.ARGA, int64(a.paramBase+idx))
		a.emitOp(bytecode.LOAD)
		return param.Type, nil
	}
	if symOk && sym.Level == 0 {
		a.emitOperand(bytecode.GLOBA, int64(sym.Offset))
		a.emitOp(bytecode.LOAD)
		return sym.Type, nil
	}
	return symtab.Void, compileerr.NotDeclaredf(nameTok.Start, name)
}

// assignExpr ::= IDENT '=' expr, with IDENT already consumed.
func (a *Analyzer) assignExpr(nameTok token.Token) (symtab.ValueType, error) {
	name, _ := nameTok.Value.(string)
	if _, err := a.buf.Next(); err != nil { // consume '='
		return symtab.Void, err
	}

	sym, symOk := a.symbols.Lookup(name)
	param, pidx, pOk := a.params.Lookup(name)

	var targetType symtab.ValueType
	var isConst bool
	switch {
	case symOk && sym.Level >= 1:
		a.emitOperand(bytecode.LOCA, int64(sym.Offset))
		targetType, isConst = sym.Type, sym.IsConstant
	case pOk:
		a.emitOperand(bytecode.ARGA, int64(a.paramBase+pidx))
		targetType, isConst = param.Type, param.IsConstant
	case symOk && sym.Level == 0:
		a.emitOperand(bytecode.GLOBA, int64(sym.Offset))
		targetType, isConst = sym.Type, sym.IsConstant
	default:
		return symtab.Void, compileerr.NotDeclaredf(nameTok.Start, name)
	}
	if isConst {
		return symtab.Void, compileerr.AssignConstf(nameTok.Start, name)
	}
	if targetType == symtab.Void {
		return symtab.Void, compileerr.InvalidAssignf(nameTok.Start, "cannot assign to void")
	}

	rhsType, err := a.expr()
	if err != nil {
		return symtab.Void, err
	}
	a.drainOperators()
	if numKind(rhsType) != targetType {
		return symtab.Void, compileerr.InvalidAssignf(nameTok.Start, "cannot assign %s to %s %q", rhsType, targetType, name)
	}
	a.emitOp(bytecode.STORE)
	return symtab.Void, nil
}

// emitBinaryOp emits the opcode(s) realizing entry, which the caller has
// already popped off the operator stack, specialized
// for entry.Type (int vs double). The stack-machine convention assumed
// throughout: a binary op pops its right operand (top), then its left
// operand (next), and pushes left-op-right; this matches "push left; push
// right; op" emission order everywhere in this analyzer.
func (a *Analyzer) emitBinaryOp(entry precedence.Entry) error {
	isDouble := entry.Type == symtab.Double

	switch entry.Kind {
	case token.PLUS:
		a.emitOp(pick(isDouble, bytecode.ADDF, bytecode.ADD))
	case token.MINUS:
		a.emitOp(pick(isDouble, bytecode.SUBF, bytecode.SUB))
	case token.STAR:
		a.emitOp(pick(isDouble, bytecode.MULF, bytecode.MUL))
	case token.SLASH:
		a.emitOp(pick(isDouble, bytecode.DIVF, bytecode.DIV))
	case token.LT:
		a.emitOp(pick(isDouble, bytecode.CMPF, bytecode.CMPI))
		a.emitOp(bytecode.SETLT)
	case token.GT:
		a.emitOp(pick(isDouble, bytecode.CMPF, bytecode.CMPI))
		a.emitOp(bytecode.SETGT)
	case token.LE, token.GE, token.EQ, token.NEQ:
		a.emitComparisonViaTemp(entry, isDouble)
	default:
		return compileerr.Invalidf(entry.Pos, "unsupported operator %s", entry.Kind)
	}
	return nil
}

func pick(cond bool, ifTrue, ifFalse bytecode.Opcode) bytecode.Opcode {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// insertInstruction splices instr into the active instruction list at
// index at, shifting everything from at onward one slot later, and
// corrects every still-pending operator-stack entry's LeftStart bookmark
// so later splices still land in the right place.
func (a *Analyzer) insertInstruction(at int, instr bytecode.Instruction) {
	s := *a.out
	s = append(s, bytecode.Instruction{})
	copy(s[at+1:], s[at:])
	s[at] = instr
	*a.out = s
	a.ops.ShiftFrom(at, 1)
}

// emitComparisonViaTemp realizes <=, >=, ==, and != from cmpi/cmpf plus
// setLt/setGt. Those two opcodes each consume the comparison result, so a
// single cmpi call cannot feed both tests; the result is spilled to a
// scratch local slot (inserted ahead of the already-emitted operands, so
// the store's address/value ordering matches every other store in this
// analyzer) and reloaded once per test instead of re-evaluating the
// operand expressions.
func (a *Analyzer) emitComparisonViaTemp(entry precedence.Entry, isDouble bool) {
	slot := a.allocSlot()
	a.emitOp(pick(isDouble, bytecode.CMPF, bytecode.CMPI))
	a.insertInstruction(entry.LeftStart, bytecode.MakeWithOperand(bytecode.LOCA, int64(slot)))
	a.emitOp(bytecode.STORE)

	loadAndTest := func(testOp bytecode.Opcode) {
		a.emitOperand(bytecode.LOCA, int64(slot))
		a.emitOp(bytecode.LOAD)
		a.emitOp(testOp)
	}

	switch entry.Kind {
	case token.LE: // 1 - (left > right)
		a.emitOperand(bytecode.PUSH, 1)
		loadAndTest(bytecode.SETGT)
		a.emitOp(bytecode.SUB)
	case token.GE: // 1 - (left < right)
		a.emitOperand(bytecode.PUSH, 1)
		loadAndTest(bytecode.SETLT)
		a.emitOp(bytecode.SUB)
	case token.EQ: // 1 - (left < right) - (left > right)
		a.emitOperand(bytecode.PUSH, 1)
		loadAndTest(bytecode.SETLT)
		a.emitOp(bytecode.SUB)
		loadAndTest(bytecode.SETGT)
		a.emitOp(bytecode.SUB)
	case token.NEQ: // (left < right) + (left > right)
		loadAndTest(bytecode.SETLT)
		loadAndTest(bytecode.SETGT)
		a.emitOp(bytecode.ADD)
	}
}
