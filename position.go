package cinterp

import "fmt"

// Position identifies a location in source text by 1-based line and
// column, the way every token and AST node in this package tags where
// it came from.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// NoPosition is used by synthetic nodes that don't come from source text.
var NoPosition = Position{}
