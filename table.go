package cinterp

// CType is the static type lattice the analyzer reasons over: wider
// than the single runtime Number type, since it exists only to flag
// incompatible-type warnings before evaluation ever starts. Grounded
// on the original's SemanticAnalyzer.CType (semantic_analysis/analyzer.py),
// kept as the same ordered ladder.
type CType struct {
	name string
}

var ctypeOrder = []string{"char", "int", "float", "double"}

func newCType(name string) CType { return CType{name: name} }

func ctypeRank(name string) int {
	for i, n := range ctypeOrder {
		if n == name {
			return i
		}
	}
	return -1
}

// Widen returns the wider of the two types, the way binary arithmetic
// promotes its operands in C.
func (t CType) Widen(o CType) CType {
	if ctypeRank(o.name) > ctypeRank(t.name) {
		return o
	}
	return t
}

func (t CType) Equal(o CType) bool { return t.name == o.name }

func (t CType) String() string { return t.name }

var ctypeVoid = newCType("void")

// Symbol is implemented by every entry a ScopedSymbolTable can hold.
type Symbol interface {
	symbolName() string
}

// TypeSymbol names one of the built-in type keywords; it exists so
// type names resolve through the same lookup path as variables and
// functions.
type TypeSymbol struct {
	Name string
}

func (s *TypeSymbol) symbolName() string { return s.Name }

// VarSymbol is a declared variable or parameter: a name bound to a
// CType, and for struct-typed declarations, the struct layout name.
type VarSymbol struct {
	Name       string
	Type       CType
	StructType string // set when this variable holds a struct instance
}

func (s *VarSymbol) symbolName() string { return s.Name }

// FunctionSymbol is a declared (or builtin) function: its return type
// and parameter list. ParamsSet is false for a variadic builtin like
// printf, which the analyzer must not arity-check; it is true for
// every declared function and every builtin with a fixed arity,
// including a zero-arity one like getchar, whose Params is empty
// (nil); ParamsSet, not Params != nil, is what marks it as checked.
type FunctionSymbol struct {
	Name      string
	Return    CType
	Params    []*VarSymbol
	ParamsSet bool
	Builtin   bool
}

func (s *FunctionSymbol) symbolName() string { return s.Name }

// ScopedSymbolTable is a compile-time analogue of Memory's Scope: a
// name-to-Symbol map with a parent pointer, used only during semantic
// analysis and discarded before evaluation begins. Grounded on the
// original's ScopedSymbolTable referenced throughout analyzer.py.
type ScopedSymbolTable struct {
	name      string
	level     int
	enclosing *ScopedSymbolTable
	symbols   map[string]Symbol
}

func newScopedSymbolTable(name string, level int, enclosing *ScopedSymbolTable) *ScopedSymbolTable {
	t := &ScopedSymbolTable{name: name, level: level, enclosing: enclosing, symbols: map[string]Symbol{}}
	if enclosing == nil {
		t.initBuiltinTypes()
	}
	return t
}

func (t *ScopedSymbolTable) initBuiltinTypes() {
	for _, n := range []string{"void", "char", "int", "float", "double"} {
		t.symbols[n] = &TypeSymbol{Name: n}
	}
}

func (t *ScopedSymbolTable) insert(sym Symbol) {
	t.symbols[sym.symbolName()] = sym
}

// lookup walks the enclosing chain unless currentOnly restricts the
// search to this table alone (used to detect redeclaration).
func (t *ScopedSymbolTable) lookup(name string, currentOnly bool) Symbol {
	if sym, ok := t.symbols[name]; ok {
		return sym
	}
	if currentOnly || t.enclosing == nil {
		return nil
	}
	return t.enclosing.lookup(name, false)
}
