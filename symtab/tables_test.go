package symtab

import "testing"

func TestSymbolTableLookupShadowing(t *testing.T) {
	var t1 SymbolTable
	t1.Declare(Symbol{Name: "x", Level: 0, Type: Int})
	t1.Declare(Symbol{Name: "x", Level: 1, Type: Double})

	got, ok := t1.Lookup("x")
	if !ok || got.Type != Double {
		t.Fatalf("Lookup(x) = %+v, %v, want level-1 Double entry", got, ok)
	}
}

func TestSymbolTableEndScope(t *testing.T) {
	var t1 SymbolTable
	t1.Declare(Symbol{Name: "g", Level: 0})
	t1.Declare(Symbol{Name: "a", Level: 1})
	t1.Declare(Symbol{Name: "b", Level: 1})

	t1.EndScope(1)

	if t1.Len() != 1 {
		t.Fatalf("Len() after EndScope(1) = %d, want 1", t1.Len())
	}
	if _, ok := t1.Lookup("a"); ok {
		t.Fatal("Lookup(a) found a symbol that should have gone out of scope")
	}
	if _, ok := t1.Lookup("g"); !ok {
		t.Fatal("Lookup(g) lost the level-0 global when ending an inner scope")
	}
}

func TestSymbolTableHasAtLevel(t *testing.T) {
	var t1 SymbolTable
	t1.Declare(Symbol{Name: "x", Level: 1})

	if t1.HasAtLevel("x", 0) {
		t.Fatal("HasAtLevel(x, 0) reported true for a level-1 symbol")
	}
	if !t1.HasAtLevel("x", 1) {
		t.Fatal("HasAtLevel(x, 1) reported false for a level-1 symbol")
	}
}

func TestParamListLookup(t *testing.T) {
	var p ParamList
	p.Add(Parameter{Name: "a", Type: Int})
	p.Add(Parameter{Name: "b", Type: Double})

	param, idx, ok := p.Lookup("b")
	if !ok || idx != 1 || param.Type != Double {
		t.Fatalf("Lookup(b) = %+v, %d, %v", param, idx, ok)
	}
	if p.Has("c") {
		t.Fatal("Has(c) reported true for an undeclared parameter")
	}
}

func TestFunctionTableRegisterAndOrder(t *testing.T) {
	ft := NewFunctionTable()
	ft.Register(&FunctionDef{Name: "main", FunctionID: 1})
	ft.Register(&FunctionDef{Name: "helper", FunctionID: 2})

	if !ft.Has("main") {
		t.Fatal("Has(main) = false")
	}
	ordered := ft.Ordered()
	if len(ordered) != 2 || ordered[0].Name != "main" || ordered[1].Name != "helper" {
		t.Fatalf("Ordered() = %+v, want [main helper]", ordered)
	}
}

func TestGlobalTableAppend(t *testing.T) {
	var gt GlobalTable
	i0 := gt.Append(GlobalDef{Bytes: []byte("a")})
	i1 := gt.Append(GlobalDef{Bytes: []byte("b"), IsConstant: true})

	if i0 != 0 || i1 != 1 {
		t.Fatalf("Append indices = %d, %d, want 0, 1", i0, i1)
	}
	entries := gt.Entries()
	if len(entries) != 2 || !entries[1].IsConstant {
		t.Fatalf("Entries() = %+v", entries)
	}
}
