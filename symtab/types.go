// Package symtab implements the four symbol collections the analyzer
// owns: the scoped symbol table, the per-function parameter list, the
// function table, and the global table. Grounded on the teacher's
// compiler/ast_compiler.go Local/scope-depth bookkeeping, generalized to
// also cover globals, parameters, and functions.
package symtab

import "nilanc/bytecode"

// ValueType is the closed set of types the language supports. A typed
// enum rather than comparing "int"/"double" strings, per the spec's
// preferred redesign.
type ValueType int

const (
	Void ValueType = iota
	Int
	Double
	// String exists only so a string literal can satisfy putstr's
	// parameter check without widening Int's meaning; nothing else in
	// the language ever declares a variable of this type.
	String
)

func (t ValueType) String() string {
	switch t {
	case Void:
		return "void"
	case Int:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "?"
	}
}

// ParseType maps the grammar's type-name identifiers to a ValueType.
func ParseType(name string) (ValueType, bool) {
	switch name {
	case "int":
		return Int, true
	case "double":
		return Double, true
	case "void":
		return Void, true
	default:
		return Void, false
	}
}

// Symbol is one declared name visible at some scope level.
type Symbol struct {
	Name          string
	Level         int
	Type          ValueType
	Offset        int
	IsConstant    bool
	IsInitialized bool
}

// Parameter is one formal parameter of the function currently being
// analyzed.
type Parameter struct {
	Name       string
	Type       ValueType
	IsConstant bool
}

// GlobalDef is one entry in the flat global table: either data (a string
// literal's bytes, or the zero-length placeholder of a let/const global,
// whose value is written at run time by _start's initializer code) or a
// function-name global.
type GlobalDef struct {
	IsConstant bool
	Bytes      []byte
}

// FunctionDef is one compiled function, ready for the image assembler.
type FunctionDef struct {
	Name           string
	NameGlobalIdx  int
	ReturnSlots    int
	ParamCount     int
	ParamTypes     []ValueType
	LocalSlotCount int
	Instructions   []bytecode.Instruction
	FunctionID     int
	ReturnType     ValueType
}
