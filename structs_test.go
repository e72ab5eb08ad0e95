package cinterp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructRegistry_DeclareZeroInitializes(t *testing.T) {
	reg := NewStructRegistry()
	reg.Create(&StructTypeDecl{
		Name: "Point",
		Fields: []*StructField{
			{Type: &Type{Name: "int"}, Name: "x"},
			{Type: &Type{Name: "int"}, Name: "y"},
		},
	})

	mem := NewMemory()
	require.NoError(t, reg.Declare(Position{}, "Point", "p", mem))

	x, err := mem.GetField(Position{}, "p", "x")
	require.NoError(t, err)
	assert.Equal(t, NewNumber(0), x)

	y, err := mem.GetField(Position{}, "p", "y")
	require.NoError(t, err)
	assert.Equal(t, NewNumber(0), y)
}

func TestStructRegistry_NestedStructFieldsInstantiateRecursively(t *testing.T) {
	reg := NewStructRegistry()
	reg.Create(&StructTypeDecl{
		Name: "Inner",
		Fields: []*StructField{
			{Type: &Type{Name: "int"}, Name: "v"},
		},
	})
	reg.Create(&StructTypeDecl{
		Name: "Outer",
		Fields: []*StructField{
			{Name: "inner", Struct: &StructDecl{StructType: "Inner", Name: "inner"}},
		},
	})

	mem := NewMemory()
	require.NoError(t, reg.Declare(Position{}, "Outer", "o", mem))

	v, err := mem.Get(Position{}, "o")
	require.NoError(t, err)
	outer, ok := v.(*StructInstance)
	require.True(t, ok)
	inner, ok := outer.Fields["inner"].(*StructInstance)
	require.True(t, ok)
	assert.Equal(t, NewNumber(0), inner.Fields["v"])
}

func TestStructRegistry_UnknownTypeErrors(t *testing.T) {
	reg := NewStructRegistry()
	mem := NewMemory()
	err := reg.Declare(Position{Line: 9}, "Missing", "x", mem)
	require.Error(t, err)
}

func TestStructRegistry_Lookup(t *testing.T) {
	reg := NewStructRegistry()
	assert.False(t, reg.Lookup("Point"))
	reg.Create(&StructTypeDecl{Name: "Point"})
	assert.True(t, reg.Lookup("Point"))
}
