package cinterp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		left     uint32
		right    uint32
		op       func(a, b Number) Number
		expected uint32
	}{
		{"add", 2, 3, Number.Add, 5},
		{"sub", 10, 4, Number.Sub, 6},
		{"sub underflows to wraparound", 0, 1, Number.Sub, 0xFFFFFFFF},
		{"mul", 6, 7, Number.Mul, 42},
		{"mul overflow wraps", 0xFFFFFFFF, 2, Number.Mul, 0xFFFFFFFE},
		{"bitwise and", 0b1100, 0b1010, Number.And, 0b1000},
		{"bitwise or", 0b1100, 0b1010, Number.Or, 0b1110},
		{"bitwise xor", 0b1100, 0b1010, Number.Xor, 0b0110},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op(NewNumber(tt.left), NewNumber(tt.right))
			assert.Equal(t, tt.expected, got.Value)
		})
	}
}

func TestNumber_Comparisons(t *testing.T) {
	tests := []struct {
		name     string
		op       func(a, b Number) Number
		left     uint32
		right    uint32
		expected uint32
	}{
		{"lt true", Number.Lt, 1, 2, 1},
		{"lt false", Number.Lt, 2, 1, 0},
		{"gt true", Number.Gt, 5, 1, 1},
		{"le equal", Number.Le, 3, 3, 1},
		{"ge equal", Number.Ge, 3, 3, 1},
		{"eq true", Number.Eq, 9, 9, 1},
		{"ne true", Number.Ne, 9, 8, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op(NewNumber(tt.left), NewNumber(tt.right))
			assert.Equal(t, tt.expected, got.Value)
		})
	}
}

func TestNumber_DivisionByZero(t *testing.T) {
	_, err := NewNumber(10).Div(Position{Line: 4}, NewNumber(0))
	require.Error(t, err)
	var arithErr *ArithmeticError
	require.ErrorAs(t, err, &arithErr)
	assert.Equal(t, 4, arithErr.Pos.Line)
}

func TestNumber_ModuloByZero(t *testing.T) {
	_, err := NewNumber(10).Mod(Position{Line: 7}, NewNumber(0))
	require.Error(t, err)
	var arithErr *ArithmeticError
	require.ErrorAs(t, err, &arithErr)
}

func TestNumber_DivisionTruncates(t *testing.T) {
	got, err := NewNumber(7).Div(Position{}, NewNumber(2))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), got.Value)
}

func TestNumber_BoolCoercion(t *testing.T) {
	assert.False(t, NewNumber(0).Bool())
	assert.True(t, NewNumber(1).Bool())
	assert.True(t, NewNumber(42).Bool())
}

func TestNumber_NegTwosComplement(t *testing.T) {
	got := NewNumber(1).Neg()
	assert.Equal(t, int32(-1), int32(got.Value))
}

func TestNumber_String(t *testing.T) {
	assert.Equal(t, "-1", NewNumber(0xFFFFFFFF).String())
	assert.Equal(t, "42", NewNumber(42).String())
}
