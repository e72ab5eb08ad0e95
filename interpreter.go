package cinterp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/clarete/cinterp/builtins"
)

// addrValue is the pseudo-address a unary `&` on a variable or struct
// field yields: just the dotted name Memory already uses to resolve
// assignments, since this subset has no real pointers. Grounded on
// the Glossary's "Pseudo-address" entry.
type addrValue struct{ name string }

// astFunction and builtinFunction are the two shapes a callable name
// can resolve to, dispatched by FunctionCall on a type switch rather
// than a shared interface with an Invoke method — mirroring the
// original's `isinstance(self.memory[node.name], Node)` branch
// (interpreter/interpreter.py) and design note §9's "Runtime value
// polymorphism".
type astFunction struct{ decl *FunctionDecl }
type builtinFunction struct {
	name string
	impl builtins.Builtin
}

// control-flow signals unwind exec via Go's error return rather than
// panic/recover, so every evaluator frame stays an ordinary function
// call the compiler can check.
type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

type returnSignal struct{ value Number }

func (returnSignal) Error() string { return "return" }

// Interpreter is the tree-walking evaluator over an analyzed AST,
// grounded on interpreter/interpreter.py. It owns Memory and the
// StructRegistry; the AST it walks is immutable and shared by
// reference only, matching §5's shared-resource model.
type Interpreter struct {
	mem      *Memory
	structs  *StructRegistry
	debugger *Debugger
	ctx      context.Context
	in       io.Reader
	out      io.Writer
	config   *Config
}

// NewInterpreter creates an Interpreter. debugger may be nil to run
// without breakpoint support. in/out back `#include <stdio.h>`'s
// scanf/printf/getchar.
func NewInterpreter(ctx context.Context, cfg *Config, debugger *Debugger, in io.Reader, out io.Writer) *Interpreter {
	if cfg == nil {
		cfg = NewConfig()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Interpreter{
		mem:      NewMemory(),
		structs:  NewStructRegistry(),
		debugger: debugger,
		ctx:      ctx,
		in:       in,
		out:      out,
		config:   cfg,
	}
}

// Memory exposes the interpreter's memory, mainly so tests and a
// controller can inspect state after Run returns.
func (in *Interpreter) Memory() *Memory { return in.mem }

func (in *Interpreter) check(pos Position) error {
	return in.debugger.hit(in.ctx, pos, in.mem)
}

func (in *Interpreter) runtimeError(pos Position, format string, args ...any) error {
	return &RuntimeError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Run loads includes, struct layouts, and function declarations from
// tree, evaluates top-level variable declarations, then calls main
// with no arguments. It returns main's return value as an int32 exit
// status.
func (in *Interpreter) Run(tree *Program) (int32, error) {
	if err := in.check(tree.pos); err != nil {
		return -1, err
	}
	if err := in.loadLibraries(tree); err != nil {
		return -1, err
	}
	in.loadStructs(tree)
	in.loadFunctions(tree)

	for _, child := range tree.Children {
		switch child.(type) {
		case *FunctionDecl, *StructTypeDecl, *IncludeLibrary:
			continue
		default:
			if _, err := in.exec(child); err != nil {
				return -1, err
			}
		}
	}

	mainFn, err := in.mem.Get(tree.pos, "main")
	if err != nil {
		return -1, in.runtimeError(tree.pos, "undeclared mandatory function main")
	}
	decl, ok := mainFn.(astFunction)
	if !ok {
		return -1, in.runtimeError(tree.pos, "'main' is not callable")
	}
	result, err := in.callAstFunction(tree.pos, decl, nil)
	if err != nil {
		return -1, err
	}
	return int32(result.Value), nil
}

func (in *Interpreter) loadLibraries(tree *Program) error {
	enabled := map[string]bool{}
	for _, name := range strings.Split(in.config.GetString("runtime.builtin_modules"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			enabled[name] = true
		}
	}
	for _, child := range tree.Children {
		lib, ok := child.(*IncludeLibrary)
		if !ok {
			continue
		}
		if !enabled[lib.LibraryName] {
			return in.runtimeError(lib.pos, "library '%s' is not enabled for this run", lib.LibraryName)
		}
		ctor, ok := libraryRegistry[lib.LibraryName]
		if !ok {
			return in.runtimeError(lib.pos, "unknown library '%s'", lib.LibraryName)
		}
		for name, fn := range ctor(in.in, in.out) {
			in.mem.Declare(name, builtinFunction{name: name, impl: fn})
		}
	}
	return nil
}

func (in *Interpreter) loadStructs(tree *Program) {
	for _, child := range tree.Children {
		if decl, ok := child.(*StructTypeDecl); ok {
			in.structs.Create(decl)
		}
	}
}

func (in *Interpreter) loadFunctions(tree *Program) {
	for _, child := range tree.Children {
		if decl, ok := child.(*FunctionDecl); ok {
			in.mem.Declare(decl.Name, astFunction{decl: decl})
		}
	}
}

// exec evaluates a statement-position node. Expression nodes used as
// statements (assignments, calls, ++/--) return their value as well,
// since this subset treats assignment as an expression.
func (in *Interpreter) exec(node Node) (any, error) {
	switch n := node.(type) {
	case *VarDecl:
		return nil, in.execVarDecl(n)
	case *StructDecl:
		return nil, in.execStructDecl(n)
	case *CompoundStmt:
		return nil, in.execCompoundStmt(n)
	case *IfStmt:
		return nil, in.execIfStmt(n)
	case *WhileStmt:
		return nil, in.execWhileStmt(n)
	case *DoWhileStmt:
		return nil, in.execDoWhileStmt(n)
	case *ForStmt:
		return nil, in.execForStmt(n)
	case *ReturnStmt:
		return nil, in.execReturnStmt(n)
	case *BreakStmt:
		return nil, breakSignal{}
	case *ContinueStmt:
		return nil, continueSignal{}
	case *NoOp:
		return nil, nil
	case *Expression:
		var last any
		for _, child := range n.Children {
			v, err := in.exec(child)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	default:
		return in.eval(node)
	}
}

func (in *Interpreter) execVarDecl(node *VarDecl) error {
	in.mem.Declare(node.VarNode.Name, NewNumber(0))
	return nil
}

func (in *Interpreter) execStructDecl(node *StructDecl) error {
	return in.structs.Declare(node.pos, node.StructType, node.Name, in.mem)
}

func (in *Interpreter) execCompoundStmt(node *CompoundStmt) error {
	if err := in.check(node.pos); err != nil {
		return err
	}
	in.mem.NewScope()
	defer in.mem.DelScope()
	for _, child := range node.Children {
		if _, err := in.exec(child); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execIfStmt(node *IfStmt) error {
	if err := in.check(node.pos); err != nil {
		return err
	}
	cond, err := in.eval(node.Cond)
	if err != nil {
		return err
	}
	n, err := asNumber(node.pos, cond)
	if err != nil {
		return err
	}
	if n.Bool() {
		_, err := in.exec(node.Then)
		return err
	}
	if node.Else != nil {
		_, err := in.exec(node.Else)
		return err
	}
	return nil
}

func (in *Interpreter) execWhileStmt(node *WhileStmt) error {
	for {
		if err := in.check(node.pos); err != nil {
			return err
		}
		cond, err := in.eval(node.Cond)
		if err != nil {
			return err
		}
		n, err := asNumber(node.pos, cond)
		if err != nil {
			return err
		}
		if !n.Bool() {
			return nil
		}
		if _, err := in.exec(node.Body); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			if _, ok := err.(continueSignal); ok {
				if err := in.check(node.pos); err != nil {
					return err
				}
				continue
			}
			return err
		}
		if err := in.check(node.pos); err != nil {
			return err
		}
	}
}

func (in *Interpreter) execDoWhileStmt(node *DoWhileStmt) error {
	for {
		if _, err := in.exec(node.Body); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			if _, ok := err.(continueSignal); !ok {
				return err
			}
		}
		cond, err := in.eval(node.Cond)
		if err != nil {
			return err
		}
		n, err := asNumber(node.pos, cond)
		if err != nil {
			return err
		}
		if !n.Bool() {
			return nil
		}
	}
}

func (in *Interpreter) execForStmt(node *ForStmt) error {
	if err := in.check(node.pos); err != nil {
		return err
	}
	if node.Init != nil {
		if _, err := in.exec(node.Init); err != nil {
			return err
		}
	}
	for {
		if node.Cond != nil {
			cond, err := in.eval(node.Cond)
			if err != nil {
				return err
			}
			n, err := asNumber(node.pos, cond)
			if err != nil {
				return err
			}
			if !n.Bool() {
				return nil
			}
		}
		if _, err := in.exec(node.Body); err != nil {
			if _, ok := err.(breakSignal); ok {
				return nil
			}
			if _, ok := err.(continueSignal); !ok {
				return err
			}
		}
		if node.Step != nil {
			if _, err := in.eval(node.Step); err != nil {
				return err
			}
		}
	}
}

func (in *Interpreter) execReturnStmt(node *ReturnStmt) error {
	var value Number
	if node.Expr != nil {
		v, err := in.eval(node.Expr)
		if err != nil {
			return err
		}
		n, err := asNumber(node.pos, v)
		if err != nil {
			return err
		}
		value = n
	}
	if err := in.check(node.pos); err != nil {
		return err
	}
	return returnSignal{value: value}
}

// eval evaluates an expression-position node to a runtime value: a
// Number, a plain string (a String literal), or an addrValue (the
// result of unary `&`).
func (in *Interpreter) eval(node Node) (any, error) {
	switch n := node.(type) {
	case *Num:
		if err := in.check(n.pos); err != nil {
			return nil, err
		}
		return NewNumber(n.Value), nil
	case *String:
		if err := in.check(n.pos); err != nil {
			return nil, err
		}
		return n.Text, nil
	case *Var:
		if err := in.check(n.pos); err != nil {
			return nil, err
		}
		return in.mem.Get(n.pos, n.Name)
	case *StructVar:
		if err := in.check(n.pos); err != nil {
			return nil, err
		}
		return in.evalStructVar(n)
	case *Assign:
		return in.evalAssign(n)
	case *BinOp:
		return in.evalBinOp(n)
	case *UnOp:
		return in.evalUnOp(n)
	case *TerOp:
		return in.evalTerOp(n)
	case *FunctionCall:
		return in.evalFunctionCall(n)
	default:
		return nil, in.runtimeError(node.Pos(), "cannot evaluate node as an expression")
	}
}

func asNumber(pos Position, v any) (Number, error) {
	n, ok := v.(Number)
	if !ok {
		return Number{}, &RuntimeError{Pos: pos, Message: "expected a numeric value"}
	}
	return n, nil
}

func containerPath(node Node) (string, []string, error) {
	switch n := node.(type) {
	case *Var:
		return n.Name, nil, nil
	case *StructVar:
		root, path, err := containerPath(n.Container)
		if err != nil {
			return "", nil, err
		}
		return root, append(path, n.FieldPath), nil
	default:
		return "", nil, &RuntimeError{Pos: node.Pos(), Message: "invalid struct field reference"}
	}
}

func (in *Interpreter) evalStructVar(node *StructVar) (any, error) {
	root, path, err := containerPath(node)
	if err != nil {
		return nil, err
	}
	cur, err := in.mem.Get(node.pos, root)
	if err != nil {
		return nil, err
	}
	for _, field := range path {
		inst, ok := cur.(*StructInstance)
		if !ok {
			return nil, in.runtimeError(node.pos, "'%s' is not a struct", root)
		}
		v, ok := inst.Fields[field]
		if !ok {
			return nil, in.runtimeError(node.pos, "struct has no field '%s'", field)
		}
		cur = v
	}
	return cur, nil
}

func (in *Interpreter) setStructVar(pos Position, node *StructVar, value any) error {
	root, path, err := containerPath(node)
	if err != nil {
		return err
	}
	cur, err := in.mem.Get(pos, root)
	if err != nil {
		return err
	}
	for _, field := range path[:len(path)-1] {
		inst, ok := cur.(*StructInstance)
		if !ok {
			return in.runtimeError(pos, "'%s' is not a struct", root)
		}
		cur = inst.Fields[field]
	}
	inst, ok := cur.(*StructInstance)
	if !ok {
		return in.runtimeError(pos, "'%s' is not a struct", root)
	}
	inst.Fields[path[len(path)-1]] = value
	return nil
}

func (in *Interpreter) evalAssign(node *Assign) (any, error) {
	// Checked before the target is read or written, so a controller
	// observing this position sees memory exactly as it stood prior to
	// the assignment taking effect.
	if err := in.check(node.pos); err != nil {
		return nil, err
	}
	rightRaw, err := in.eval(node.Value)
	if err != nil {
		return nil, err
	}

	applyOp := func(current any) (any, error) {
		if node.Op == AssignSet {
			return rightRaw, nil
		}
		cn, err := asNumber(node.pos, current)
		if err != nil {
			return nil, err
		}
		rn, err := asNumber(node.pos, rightRaw)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case AssignAdd:
			return cn.Add(rn), nil
		case AssignSub:
			return cn.Sub(rn), nil
		case AssignMul:
			return cn.Mul(rn), nil
		case AssignDiv:
			res, err := cn.Div(node.pos, rn)
			if err != nil {
				return nil, err
			}
			return res, nil
		default:
			return nil, in.runtimeError(node.pos, "unknown assignment operator")
		}
	}

	switch target := node.Target.(type) {
	case *Var:
		current, err := in.mem.Get(node.pos, target.Name)
		if err != nil && node.Op != AssignSet {
			return nil, err
		}
		newVal, err := applyOp(current)
		if err != nil {
			return nil, err
		}
		if err := in.mem.Set(node.pos, target.Name, newVal); err != nil {
			return nil, err
		}
		return newVal, nil
	case *StructVar:
		current, err := in.evalStructVar(target)
		if err != nil && node.Op != AssignSet {
			return nil, err
		}
		newVal, err := applyOp(current)
		if err != nil {
			return nil, err
		}
		if err := in.setStructVar(node.pos, target, newVal); err != nil {
			return nil, err
		}
		return newVal, nil
	default:
		return nil, in.runtimeError(node.pos, "invalid assignment target")
	}
}

func (in *Interpreter) evalBinOp(node *BinOp) (any, error) {
	left, err := in.eval(node.Left)
	if err != nil {
		return nil, err
	}
	ln, err := asNumber(node.pos, left)
	if err != nil {
		return nil, err
	}

	if node.Op == "&&" {
		if !ln.Bool() {
			return NewNumber(0), in.check(node.pos)
		}
		right, err := in.eval(node.Right)
		if err != nil {
			return nil, err
		}
		rn, err := asNumber(node.pos, right)
		if err != nil {
			return nil, err
		}
		return boolNumber(rn.Bool()), in.check(node.pos)
	}
	if node.Op == "||" {
		if ln.Bool() {
			return NewNumber(1), in.check(node.pos)
		}
		right, err := in.eval(node.Right)
		if err != nil {
			return nil, err
		}
		rn, err := asNumber(node.pos, right)
		if err != nil {
			return nil, err
		}
		return boolNumber(rn.Bool()), in.check(node.pos)
	}

	right, err := in.eval(node.Right)
	if err != nil {
		return nil, err
	}
	rn, err := asNumber(node.pos, right)
	if err != nil {
		return nil, err
	}

	var result Number
	switch node.Op {
	case "+":
		result = ln.Add(rn)
	case "-":
		result = ln.Sub(rn)
	case "*":
		result = ln.Mul(rn)
	case "/":
		result, err = ln.Div(node.pos, rn)
	case "%":
		result, err = ln.Mod(node.pos, rn)
	case "<":
		result = ln.Lt(rn)
	case ">":
		result = ln.Gt(rn)
	case "<=":
		result = ln.Le(rn)
	case ">=":
		result = ln.Ge(rn)
	case "==":
		result = ln.Eq(rn)
	case "!=":
		result = ln.Ne(rn)
	case "&":
		result = ln.And(rn)
	case "|":
		result = ln.Or(rn)
	case "^":
		result = ln.Xor(rn)
	default:
		return nil, in.runtimeError(node.pos, "unknown operator '%s'", node.Op)
	}
	if err != nil {
		return nil, err
	}
	if err := in.check(node.pos); err != nil {
		return nil, err
	}
	return result, nil
}

func (in *Interpreter) evalUnOp(node *UnOp) (any, error) {
	if err := in.check(node.pos); err != nil {
		return nil, err
	}

	if node.Op == "&" {
		root, path, err := containerPath(node.Operand)
		if err != nil {
			return nil, err
		}
		return addrValue{name: strings.Join(append([]string{root}, path...), ".")}, nil
	}

	if node.Op == "cast" {
		v, err := in.eval(node.Operand)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	if node.Op == "++" || node.Op == "--" {
		root, path, err := containerPath(node.Operand)
		if err != nil {
			return nil, err
		}
		var current any
		if len(path) == 0 {
			current, err = in.mem.Get(node.pos, root)
		} else {
			current, err = in.evalStructVar(node.Operand.(*StructVar))
		}
		if err != nil {
			return nil, err
		}
		cn, err := asNumber(node.pos, current)
		if err != nil {
			return nil, err
		}
		var updated Number
		if node.Op == "++" {
			updated = cn.Add(NewNumber(1))
		} else {
			updated = cn.Sub(NewNumber(1))
		}
		if len(path) == 0 {
			if err := in.mem.Set(node.pos, root, updated); err != nil {
				return nil, err
			}
		} else {
			if err := in.setStructVar(node.pos, node.Operand.(*StructVar), updated); err != nil {
				return nil, err
			}
		}
		if node.Prefix {
			return updated, nil
		}
		return cn, nil
	}

	v, err := in.eval(node.Operand)
	if err != nil {
		return nil, err
	}
	n, err := asNumber(node.pos, v)
	if err != nil {
		return nil, err
	}
	switch node.Op {
	case "+":
		return n, nil
	case "-":
		return n.Neg(), nil
	case "!":
		return n.Not(), nil
	default:
		return nil, in.runtimeError(node.pos, "unknown unary operator '%s'", node.Op)
	}
}

func (in *Interpreter) evalTerOp(node *TerOp) (any, error) {
	cond, err := in.eval(node.Cond)
	if err != nil {
		return nil, err
	}
	cn, err := asNumber(node.pos, cond)
	if err != nil {
		return nil, err
	}
	if cn.Bool() {
		return in.eval(node.T)
	}
	return in.eval(node.F)
}

func (in *Interpreter) evalFunctionCall(node *FunctionCall) (any, error) {
	if err := in.check(node.pos); err != nil {
		return nil, err
	}
	callee, err := in.mem.Get(node.pos, node.Name)
	if err != nil {
		return nil, err
	}

	argValues := make([]any, len(node.Args))
	for i, arg := range node.Args {
		v, err := in.eval(arg)
		if err != nil {
			return nil, err
		}
		argValues[i] = v
	}

	switch fn := callee.(type) {
	case astFunction:
		nums := make([]Number, len(argValues))
		for i, v := range argValues {
			n, err := asNumber(node.pos, v)
			if err != nil {
				return nil, in.runtimeError(node.pos, "argument %d to '%s' is not numeric", i+1, node.Name)
			}
			nums[i] = n
		}
		return in.callAstFunction(node.pos, fn, nums)
	case builtinFunction:
		return in.callBuiltinFunction(node.pos, fn, argValues)
	default:
		return nil, in.runtimeError(node.pos, "'%s' is not callable", node.Name)
	}
}

func (in *Interpreter) callAstFunction(pos Position, fn astFunction, args []Number) (Number, error) {
	if len(fn.decl.Params) != len(args) {
		return Number{}, in.runtimeError(pos, "function %s takes %d positional arguments but %d were given",
			fn.decl.Name, len(fn.decl.Params), len(args))
	}
	if err := in.check(fn.decl.pos); err != nil {
		return Number{}, err
	}
	in.mem.NewFrame(fn.decl.Name)
	defer in.mem.DelFrame()

	for i, param := range fn.decl.Params {
		in.mem.Declare(param.VarNode.Name, args[i])
	}

	if err := in.check(fn.decl.Body.pos); err != nil {
		return Number{}, err
	}
	for _, child := range fn.decl.Body.Children {
		_, err := in.exec(child)
		if err == nil {
			continue
		}
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return Number{}, err
	}
	return NewNumber(0), nil
}

type memBinder struct {
	mem *Memory
	pos Position
	err error
}

func (b *memBinder) Bind(name string, v uint32) {
	var err error
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		err = b.mem.SetField(b.pos, name[:idx], name[idx+1:], NewNumber(v))
	} else {
		err = b.mem.Set(b.pos, name, NewNumber(v))
	}
	if err != nil && b.err == nil {
		b.err = err
	}
}

func (in *Interpreter) callBuiltinFunction(pos Position, fn builtinFunction, args []any) (any, error) {
	var nums []uint32
	var strs []string
	var names []string
	for _, v := range args {
		switch val := v.(type) {
		case Number:
			nums = append(nums, val.Value)
			names = append(names, "")
		case addrValue:
			nums = append(nums, 0)
			names = append(names, val.name)
		case string:
			strs = append(strs, val)
		default:
			return nil, in.runtimeError(pos, "unsupported argument type for '%s'", fn.name)
		}
	}
	binder := &memBinder{mem: in.mem, pos: pos}
	result, err := fn.impl.Invoke(nums, strs, names, binder)
	if err != nil {
		return nil, in.runtimeError(pos, "%s", err.Error())
	}
	if binder.err != nil {
		return nil, binder.err
	}
	return NewNumber(result), nil
}
