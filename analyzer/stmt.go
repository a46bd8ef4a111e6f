package analyzer

import (
	"nilanc/bytecode"
	"nilanc/compileerr"
	"nilanc/symtab"
	"nilanc/token"
)

// blockStmt ::= '{' stmt* '}'
func (a *Analyzer) blockStmt() error {
	if _, err := a.buf.Expect(token.LBRACE); err != nil {
		return err
	}
	a.level++
	lvl := a.level
	for {
		closed, err := a.buf.Check(token.RBRACE)
		if err != nil {
			return err
		}
		if closed {
			break
		}
		if err := a.stmt(); err != nil {
			return err
		}
	}
	if _, err := a.buf.Expect(token.RBRACE); err != nil {
		return err
	}
	a.symbols.EndScope(lvl)
	a.level--
	return nil
}

// stmt dispatches on the next token's kind to one of the statement
// productions.
func (a *Analyzer) stmt() error {
	next, err := a.buf.Peek()
	if err != nil {
		return err
	}
	switch next.Kind {
	case token.SEMI:
		_, err := a.buf.Next()
		return err
	case token.LET, token.CONST:
		return a.declStmt()
	case token.IF:
		return a.ifStmt()
	case token.WHILE:
		return a.whileStmt()
	case token.BREAK:
		return a.breakStmt()
	case token.CONTINUE:
		return a.continueStmt()
	case token.RETURN:
		return a.returnStmt()
	case token.LBRACE:
		return a.blockStmt()
	default:
		return a.exprStmt()
	}
}

// declStmt ::= ('let' | 'const') IDENT ':' ty ('=' expr)? ';'
// Used both for local declarations (inside a function) and for top-level
// globals (level 0, called directly from item()).
func (a *Analyzer) declStmt() error {
	kindTok, err := a.buf.Next()
	if err != nil {
		return err
	}
	isConst := kindTok.Kind == token.CONST

	nameTok, err := a.buf.Expect(token.IDENT)
	if err != nil {
		return err
	}
	name, _ := nameTok.Value.(string)

	if a.symbols.HasAtLevel(name, a.level) || a.params.Has(name) || a.functions.Has(name) {
		return compileerr.Duplicatef(nameTok.Start, name)
	}

	if _, err := a.buf.Expect(token.COLON); err != nil {
		return err
	}
	ty, tyPos, err := a.typeName()
	if err != nil {
		return err
	}
	if ty == symtab.Void {
		return compileerr.NotValidReturnf(tyPos, "%q cannot be declared void", name)
	}

	var offset int
	if a.level == 0 {
		offset = a.globals.Append(symtab.GlobalDef{IsConstant: isConst})
	} else {
		offset = a.allocSlot()
	}

	sym := symtab.Symbol{Name: name, Level: a.level, Type: ty, Offset: offset, IsConstant: isConst}
	a.symbols.Declare(sym)

	hasInit, err := a.buf.Check(token.ASSIGN)
	if err != nil {
		return err
	}
	if !hasInit {
		if isConst {
			got, _ := a.buf.Peek()
			return compileerr.Expected(got.Start, token.ASSIGN, got.Kind)
		}
		if _, err := a.buf.Expect(token.SEMI); err != nil {
			return err
		}
		return nil
	}

	if _, err := a.buf.Next(); err != nil { // consume '='
		return err
	}
	a.emitAddress(a.level, offset)
	rhsType, err := a.expr()
	if err != nil {
		return err
	}
	a.drainOperators()
	if numKind(rhsType) != ty {
		return compileerr.InvalidAssignf(nameTok.Start, "cannot initialize %q of type %s with %s", name, ty, rhsType)
	}
	a.emitOp(bytecode.STORE)
	a.symbols.MarkInitialized(name)

	if _, err := a.buf.Expect(token.SEMI); err != nil {
		return err
	}
	return nil
}

// exprStmt ::= expr ';'
func (a *Analyzer) exprStmt() error {
	_, err := a.expr()
	if err != nil {
		return err
	}
	a.drainOperators()
	_, err = a.buf.Expect(token.SEMI)
	return err
}

// ifStmt ::= 'if' expr block_stmt ('else' (if_stmt | block_stmt))?
func (a *Analyzer) ifStmt() error {
	if _, err := a.buf.Expect(token.IF); err != nil {
		return err
	}
	condType, err := a.expr()
	if err != nil {
		return err
	}
	a.drainOperators()
	if numKind(condType) != symtab.Int {
		pos := a.buf.LastPos()
		return compileerr.Typef(pos, "if condition must be int, got %s", condType)
	}

	a.emitOperand(bytecode.BRTRUE, 1)
	skipThen := a.currentIndex()
	a.emitOperand(bytecode.BR, 0)

	if err := a.blockStmt(); err != nil {
		return err
	}

	skipElse := a.currentIndex()
	a.emitOperand(bytecode.BR, 0)
	a.patch(skipThen, int64(a.currentIndex()-skipThen))

	_, hasElse, err := a.buf.Accept(token.ELSE)
	if err != nil {
		return err
	}
	if hasElse {
		isIf, err := a.buf.Check(token.IF)
		if err != nil {
			return err
		}
		if isIf {
			if err := a.ifStmt(); err != nil {
				return err
			}
		} else if err := a.blockStmt(); err != nil {
			return err
		}
	}
	a.patch(skipElse, int64(a.currentIndex()-skipElse))
	return nil
}

// whileStmt ::= 'while' expr block_stmt
func (a *Analyzer) whileStmt() error {
	if _, err := a.buf.Expect(token.WHILE); err != nil {
		return err
	}
	loopTop := a.currentIndex()
	condType, err := a.expr()
	if err != nil {
		return err
	}
	a.drainOperators()
	if numKind(condType) != symtab.Int {
		pos := a.buf.LastPos()
		return compileerr.Typef(pos, "while condition must be int, got %s", condType)
	}

	a.emitOperand(bytecode.BRTRUE, 1)
	skipBody := a.currentIndex()
	a.emitOperand(bytecode.BR, 0)
	bodyStart := a.currentIndex()

	a.loops = append(a.loops, loopContext{loopTop: loopTop})

	if err := a.blockStmt(); err != nil {
		return err
	}

	a.emitOperand(bytecode.BR, int64(loopTop-a.currentIndex()))
	a.patch(skipBody, int64(a.currentIndex()-bodyStart))

	loop := a.loops[len(a.loops)-1]
	a.loops = a.loops[:len(a.loops)-1]
	for _, idx := range loop.breaks {
		a.patch(idx, int64(a.currentIndex()-idx))
	}
	return nil
}

func (a *Analyzer) breakStmt() error {
	tok, err := a.buf.Expect(token.BREAK)
	if err != nil {
		return err
	}
	if len(a.loops) == 0 {
		return compileerr.NotWhilef(tok.Start, "break")
	}
	idx := a.currentIndex()
	a.emitOperand(bytecode.BR, 0)
	top := len(a.loops) - 1
	a.loops[top].breaks = append(a.loops[top].breaks, idx)
	_, err = a.buf.Expect(token.SEMI)
	return err
}

func (a *Analyzer) continueStmt() error {
	tok, err := a.buf.Expect(token.CONTINUE)
	if err != nil {
		return err
	}
	if len(a.loops) == 0 {
		return compileerr.NotWhilef(tok.Start, "continue")
	}
	loopTop := a.loops[len(a.loops)-1].loopTop
	a.emitOperand(bytecode.BR, int64(loopTop-a.currentIndex()-1))
	_, err = a.buf.Expect(token.SEMI)
	return err
}

// returnStmt ::= 'return' expr? ';'
func (a *Analyzer) returnStmt() error {
	tok, err := a.buf.Expect(token.RETURN)
	if err != nil {
		return err
	}
	hasExpr, err := a.buf.Check(token.SEMI)
	if err != nil {
		return err
	}
	hasExpr = !hasExpr

	if a.curReturnType == symtab.Void {
		if hasExpr {
			return compileerr.NotValidReturnf(tok.Start, "void function must not return a value")
		}
		a.emitOp(bytecode.RET)
		a.haveReturn = true
		_, err = a.buf.Expect(token.SEMI)
		return err
	}

	if !hasExpr {
		return compileerr.NotValidReturnf(tok.Start, "function must return a value of type %s", a.curReturnType)
	}

	a.emitOperand(bytecode.ARGA, 0)
	exprType, err := a.expr()
	if err != nil {
		return err
	}
	a.drainOperators()
	if numKind(exprType) != a.curReturnType {
		return compileerr.NotValidReturnf(tok.Start, "return type mismatch: declared %s, got %s", a.curReturnType, exprType)
	}
	a.emitOp(bytecode.STORE)
	a.emitOp(bytecode.RET)
	a.haveReturn = true

	_, err = a.buf.Expect(token.SEMI)
	return err
}

// emitAddress pushes the address of the symbol declared at level/offset,
// without loading its value: loca for a local slot, globa for a global.
func (a *Analyzer) emitAddress(level, offset int) {
	if level == 0 {
		a.emitOperand(bytecode.GLOBA, int64(offset))
	} else {
		a.emitOperand(bytecode.LOCA, int64(offset))
	}
}
