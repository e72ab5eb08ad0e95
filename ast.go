package cinterp

// Node is implemented by every AST node variant. Rather than a
// class-per-kind hierarchy dispatched through an Accept/Visitor pair,
// the analyzer and interpreter each walk the tree with a single type
// switch keyed on the concrete type — the same "single type switch
// instead of a full visitor pattern" shape the teacher's own
// Inspect-style traversal uses alongside its Visitor interface.
type Node interface {
	Pos() Position
}

type base struct {
	pos Position
}

func (b base) Pos() Position { return b.pos }

// Program is the root of every parsed source file.
type Program struct {
	base
	Children []Node
}

// IncludeLibrary models a single `#include <name.h>` directive.
type IncludeLibrary struct {
	base
	LibraryName string
}

// Type names one of the value types this subset tracks: char, int,
// float, double, void. Whatever the type name, a declared variable
// holds a runtime Number.
type Type struct {
	base
	Name string
}

// Var references a plain identifier.
type Var struct {
	base
	Name string
}

// StructVar references a (possibly nested) struct field access,
// `container.field_path`. Container is the outer Var/StructVar being
// projected through; FieldPath is the innermost field name.
type StructVar struct {
	base
	Container Node
	FieldPath string
}

// NumKind distinguishes integer from character literals, both of
// which evaluate to a Number at runtime.
type NumKind int

const (
	NumInteger NumKind = iota
	NumCharacter
)

// Num is an integer or character literal.
type Num struct {
	base
	Kind  NumKind
	Value uint32
}

// String is a string literal, legal only as a function-call argument.
type String struct {
	base
	Text string
}

// VarDecl declares one variable of a given type with no initializer
// (initialization is a separate Assign node, as in C).
type VarDecl struct {
	base
	TypeNode *Type
	VarNode  *Var
}

// StructDecl declares a variable of a named struct type.
type StructDecl struct {
	base
	StructType string
	Name       string
}

// StructField is one member of a struct body: either a typed scalar
// field or a nested struct-typed field.
type StructField struct {
	base
	Type *Type      // nil when Struct is set
	Name string
	Struct *StructDecl // nested struct field, or nil
}

// StructTypeDecl declares a struct layout: `struct Name { ... };`.
type StructTypeDecl struct {
	base
	Name   string
	Fields []*StructField
}

// Param is one formal parameter of a function declaration.
type Param struct {
	base
	TypeNode *Type
	VarNode  *Var
}

// FunctionDecl declares a function: its return type, name, parameters
// and body.
type FunctionDecl struct {
	base
	ReturnType *Type
	Name       string
	Params     []*Param
	Body       *FunctionBody
}

// FunctionBody is the top-level compound statement of a function.
type FunctionBody struct {
	base
	Children []Node
}

// AssignOp enumerates the assignment operator family.
type AssignOp int

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
)

// Assign models `target op= value` for op in {=, +=, -=, *=, /=}.
type Assign struct {
	base
	Target Node // *Var or *StructVar
	Op     AssignOp
	Value  Node
}

// BinOp is a binary operator expression.
type BinOp struct {
	base
	Op    string
	Left  Node
	Right Node
}

// UnOp is a unary operator expression: prefix/postfix ++/--, unary
// +/-/!, the address-of pseudo-operator &, or a type-token cast.
type UnOp struct {
	base
	Op      string
	Operand Node
	Prefix  bool
	CastTo  *Type // non-nil when Op is a type-token cast
}

// TerOp is the ternary conditional expression.
type TerOp struct {
	base
	Cond Node
	T    Node
	F    Node
}

// IfStmt is an if/else statement; Else is nil when there is no else
// branch.
type IfStmt struct {
	base
	Cond Node
	Then Node
	Else Node
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	base
	Cond Node
	Body Node
}

// DoWhileStmt is a post-tested loop.
type DoWhileStmt struct {
	base
	Cond Node
	Body Node
}

// ForStmt is a C-style for loop; Init, Cond, and Step may each be nil.
type ForStmt struct {
	base
	Init Node
	Cond Node
	Step Node
	Body Node
}

// ReturnStmt evaluates Expr (which may be nil for `return;` in a void
// function) and short-circuits the enclosing function body.
type ReturnStmt struct {
	base
	Expr Node
}

// BreakStmt and ContinueStmt carry no data beyond their position.
type BreakStmt struct{ base }
type ContinueStmt struct{ base }

// NoOp is the empty statement, e.g. a bare `;`.
type NoOp struct{ base }

// CompoundStmt is a `{ ... }` block: pushes a scope, visits children,
// pops the scope.
type CompoundStmt struct {
	base
	Children []Node
}

// Expression groups a sequence of nodes evaluated in order. The parser
// builds one only for a for-loop init clause that declares a variable:
// the VarDecl plus its initializing Assign.
type Expression struct {
	base
	Children []Node
}

// FunctionCall invokes either a user-defined function or a built-in by
// name.
type FunctionCall struct {
	base
	Name string
	Args []Node
}
