package cinterp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	tree, err := Parse(src)
	require.NoError(t, err)
	return tree
}

func TestParser_IncludeDirective(t *testing.T) {
	tree := mustParse(t, "#include <stdio.h>\nint main() { return 0; }")
	inc, ok := tree.Children[0].(*IncludeLibrary)
	require.True(t, ok)
	assert.Equal(t, "stdio", inc.LibraryName)
}

func TestParser_RejectsNonHIncludeExtension(t *testing.T) {
	_, err := Parse("#include <stdio.c>\nint main() { return 0; }")
	require.Error(t, err)
}

func TestParser_VarDeclList(t *testing.T) {
	tree := mustParse(t, "int main() { int a, b = 2, c; return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	decl0 := fn.Body.Children[0].(*VarDecl)
	assert.Equal(t, "a", decl0.VarNode.Name)
	decl1 := fn.Body.Children[1].(*VarDecl)
	assert.Equal(t, "b", decl1.VarNode.Name)
	assign := fn.Body.Children[2].(*Assign)
	assert.Equal(t, "b", assign.Target.(*Var).Name)
	decl2 := fn.Body.Children[3].(*VarDecl)
	assert.Equal(t, "c", decl2.VarNode.Name)
}

func TestParser_StructTypeDeclVsStructVarDecl(t *testing.T) {
	tree := mustParse(t, `
		struct Point { int x; int y; };
		int main() { struct Point p; return 0; }
	`)
	typeDecl, ok := tree.Children[0].(*StructTypeDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", typeDecl.Name)
	require.Len(t, typeDecl.Fields, 2)

	fn := tree.Children[1].(*FunctionDecl)
	varDecl, ok := fn.Body.Children[0].(*StructDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", varDecl.StructType)
	assert.Equal(t, "p", varDecl.Name)
}

func TestParser_StructFieldAccessChain(t *testing.T) {
	tree := mustParse(t, `
		int main() { a.b.c = 1; return 0; }
	`)
	fn := tree.Children[0].(*FunctionDecl)
	assign := fn.Body.Children[0].(*Assign)
	outer, ok := assign.Target.(*StructVar)
	require.True(t, ok)
	assert.Equal(t, "c", outer.FieldPath)
	inner, ok := outer.Container.(*StructVar)
	require.True(t, ok)
	assert.Equal(t, "b", inner.FieldPath)
	root, ok := inner.Container.(*Var)
	require.True(t, ok)
	assert.Equal(t, "a", root.Name)
}

func TestParser_DanglingElseBindsToNearestIf(t *testing.T) {
	tree := mustParse(t, `
		int main() {
			if (1)
				if (0)
					return 1;
				else
					return 2;
			return 0;
		}
	`)
	fn := tree.Children[0].(*FunctionDecl)
	outer := fn.Body.Children[0].(*IfStmt)
	inner := outer.Then.(*IfStmt)
	require.NotNil(t, inner.Else)
	assert.Nil(t, outer.Else)
}

func TestParser_OperatorPrecedence(t *testing.T) {
	tree := mustParse(t, "int main() { int x = 1 + 2 * 3; return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	assign := fn.Body.Children[1].(*Assign)
	add := assign.Value.(*BinOp)
	assert.Equal(t, "+", add.Op)
	_, leftIsNum := add.Left.(*Num)
	assert.True(t, leftIsNum)
	mul := add.Right.(*BinOp)
	assert.Equal(t, "*", mul.Op)
}

func TestParser_LeftAssociativity(t *testing.T) {
	tree := mustParse(t, "int main() { int x = 1 - 2 - 3; return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	assign := fn.Body.Children[1].(*Assign)
	outer := assign.Value.(*BinOp)
	assert.Equal(t, "-", outer.Op)
	_, rightIsNum := outer.Right.(*Num)
	assert.True(t, rightIsNum, "1 - 2 - 3 must parse as (1 - 2) - 3")
	_, leftIsBinOp := outer.Left.(*BinOp)
	assert.True(t, leftIsBinOp)
}

func TestParser_TernaryExpression(t *testing.T) {
	tree := mustParse(t, "int main() { int x = 1 ? 2 : 3; return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	assign := fn.Body.Children[1].(*Assign)
	ter, ok := assign.Value.(*TerOp)
	require.True(t, ok)
	assert.NotNil(t, ter.Cond)
	assert.NotNil(t, ter.T)
	assert.NotNil(t, ter.F)
}

func TestParser_CastVsParenthesizedExpression(t *testing.T) {
	tree := mustParse(t, "int main() { int x = (int) 1; int y = (1 + 2); return 0; }")
	fn := tree.Children[0].(*FunctionDecl)

	castAssign := fn.Body.Children[1].(*Assign)
	cast, ok := castAssign.Value.(*UnOp)
	require.True(t, ok)
	assert.Equal(t, "cast", cast.Op)
	assert.Equal(t, "int", cast.CastTo.Name)

	parenAssign := fn.Body.Children[3].(*Assign)
	_, isBinOp := parenAssign.Value.(*BinOp)
	assert.True(t, isBinOp)
}

func TestParser_FunctionCallVsBareVariable(t *testing.T) {
	tree := mustParse(t, "int f() { return 1; } int main() { int x = f(); int y = x; return 0; }")
	fn := tree.Children[1].(*FunctionDecl)
	callAssign := fn.Body.Children[1].(*Assign)
	_, isCall := callAssign.Value.(*FunctionCall)
	assert.True(t, isCall)

	varAssign := fn.Body.Children[3].(*Assign)
	_, isVar := varAssign.Value.(*Var)
	assert.True(t, isVar)
}

func TestParser_PrefixAndPostfixIncrement(t *testing.T) {
	tree := mustParse(t, "int main() { int x; ++x; x++; return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	prefix := fn.Body.Children[1].(*UnOp)
	assert.True(t, prefix.Prefix)
	assert.Equal(t, "++", prefix.Op)
	postfix := fn.Body.Children[2].(*UnOp)
	assert.False(t, postfix.Prefix)
}

func TestParser_ForLoopInitDoesNotOpenAScope(t *testing.T) {
	tree := mustParse(t, "int main() { for (int i = 0; i < 10; i++) { } return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	forStmt := fn.Body.Children[0].(*ForStmt)
	init, ok := forStmt.Init.(*Expression)
	require.True(t, ok)
	require.Len(t, init.Children, 2)
	_, isVarDecl := init.Children[0].(*VarDecl)
	assert.True(t, isVarDecl)
}

func TestParser_FunctionCallAllowsStringLiteralArgument(t *testing.T) {
	tree := mustParse(t, `
		#include <stdio.h>
		int main() { printf("hi"); return 0; }
	`)
	fn := tree.Children[1].(*FunctionDecl)
	call := fn.Body.Children[0].(*FunctionCall)
	require.Len(t, call.Args, 1)
	str, ok := call.Args[0].(*String)
	require.True(t, ok)
	assert.Equal(t, "hi", str.Text)
}

func TestParser_CompoundAssignmentOperators(t *testing.T) {
	tree := mustParse(t, "int main() { int x; x += 1; x -= 1; x *= 2; x /= 2; return 0; }")
	fn := tree.Children[0].(*FunctionDecl)
	ops := []AssignOp{AssignAdd, AssignSub, AssignMul, AssignDiv}
	for i, op := range ops {
		assign := fn.Body.Children[i+1].(*Assign)
		assert.Equal(t, op, assign.Op)
	}
}

func TestParser_SyntaxErrorReportsPosition(t *testing.T) {
	_, err := Parse("int main() { int x = ; return 0; }")
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, Position{Line: 1, Column: 22}, syn.Pos)
}
