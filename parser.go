package cinterp

import (
	"fmt"
	"strconv"
)

// parserMark is a saved parser position, grounded on the teacher's
// ParserState/State()/Backtrack() pair (go/base_parser.go) combined
// with the original's @restorable decorator (utils/utils.py): both
// save enough state to undo a speculative series of `eat`s. Since the
// lexer here is a plain pull-based rune scanner, the whole of it is
// cheap to snapshot by value.
type parserMark struct {
	lex Lexer
	cur Token
}

// Parser turns a token stream into an AST with a single token of
// lookahead, falling back to restorable speculation exactly where the
// grammar is ambiguous with one token: `ID (` as a call vs a bare
// variable, `( TYPE )` as a cast vs a parenthesized expression, and
// `TYPE ID (` as a function vs a variable declaration.
type Parser struct {
	lex *Lexer
	cur Token
}

// NewParser creates a Parser over lex and primes the first token.
func NewParser(lex *Lexer) (*Parser, error) {
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse lexes and parses src in one call.
func Parse(src string) (*Program, error) {
	p, err := NewParser(NewLexer(src))
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) mark() parserMark {
	return parserMark{lex: *p.lex, cur: p.cur}
}

func (p *Parser) restore(m parserMark) {
	*p.lex = m.lex
	p.cur = m.cur
}

func (p *Parser) isPunct(lexeme string) bool {
	return p.cur.Kind == TokPunct && p.cur.Lexeme == lexeme
}

func (p *Parser) isOperator(lexeme string) bool {
	return p.cur.Kind == TokOperator && p.cur.Lexeme == lexeme
}

func (p *Parser) isKeyword(kind TokenKind, lexeme string) bool {
	return p.cur.Kind == kind && p.cur.Lexeme == lexeme
}

func (p *Parser) expect(kind TokenKind, lexeme string) (Token, error) {
	if p.cur.Kind == kind && (lexeme == "" || p.cur.Lexeme == lexeme) {
		tok := p.cur
		if err := p.advance(); err != nil {
			return Token{}, err
		}
		return tok, nil
	}
	want := kind.String()
	if lexeme != "" {
		want = fmt.Sprintf("%q", lexeme)
	}
	return Token{}, &SyntaxError{
		Pos:     p.cur.Pos,
		Message: fmt.Sprintf("expected %s but found %q", want, p.cur.Lexeme),
	}
}

// checkFunctionCall is the restorable lookahead that disambiguates an
// identifier used as a call (`ID (`) from one used as a plain
// variable or lvalue, mirroring the original's @restorable
// check_function.
func (p *Parser) checkFunctionCall() bool {
	if p.cur.Kind != TokIdentifier {
		return false
	}
	m := p.mark()
	defer p.restore(m)
	if err := p.advance(); err != nil {
		return false
	}
	return p.isPunct("(")
}

// checkCast is the restorable lookahead that disambiguates a
// parenthesized cast (`( TYPE )`) from a parenthesized expression.
func (p *Parser) checkCast() bool {
	if !p.isPunct("(") {
		return false
	}
	m := p.mark()
	defer p.restore(m)
	if err := p.advance(); err != nil {
		return false
	}
	if p.cur.Kind != TokKeywordType {
		return false
	}
	if err := p.advance(); err != nil {
		return false
	}
	return p.isPunct(")")
}

func (p *Parser) parseProgram() (*Program, error) {
	pos := p.cur.Pos
	var children []Node
	for p.cur.Kind != TokEOF {
		decls, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		children = append(children, decls...)
	}
	return &Program{base: base{pos}, Children: children}, nil
}

func (p *Parser) parseTopLevel() ([]Node, error) {
	switch {
	case p.cur.Kind == TokHash:
		node, err := p.parseInclude()
		return []Node{node}, err
	case p.cur.Kind == TokKeywordStruct:
		return p.parseStructDeclOrDef()
	case p.cur.Kind == TokKeywordType && p.checkFunctionDecl():
		node, err := p.parseFunctionDecl()
		return []Node{node}, err
	case p.cur.Kind == TokKeywordType:
		return p.parseVarDeclList()
	default:
		return nil, &SyntaxError{Pos: p.cur.Pos, Message: fmt.Sprintf("unexpected token %q at top level", p.cur.Lexeme)}
	}
}

func (p *Parser) checkFunctionDecl() bool {
	m := p.mark()
	defer p.restore(m)
	if err := p.advance(); err != nil { // consume TYPE
		return false
	}
	if p.cur.Kind != TokIdentifier {
		return false
	}
	if err := p.advance(); err != nil { // consume ID
		return false
	}
	return p.isPunct("(")
}

func (p *Parser) parseInclude() (Node, error) {
	pos := p.cur.Pos
	if _, err := p.expect(TokHash, "#"); err != nil {
		return nil, err
	}
	word, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if word.Lexeme != "include" {
		return nil, &SyntaxError{Pos: word.Pos, Message: fmt.Sprintf("expected \"include\" but found %q", word.Lexeme)}
	}
	if _, err := p.expect(TokOperator, "<"); err != nil {
		return nil, err
	}
	lib, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "."); err != nil {
		return nil, err
	}
	ext, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if ext.Lexeme != "h" {
		return nil, &SyntaxError{Pos: ext.Pos, Message: "you can only include *.h files"}
	}
	if _, err := p.expect(TokOperator, ">"); err != nil {
		return nil, err
	}
	return &IncludeLibrary{base: base{pos}, LibraryName: lib.Lexeme}, nil
}

func (p *Parser) parseTypeSpec() (*Type, error) {
	tok, err := p.expect(TokKeywordType, "")
	if err != nil {
		return nil, err
	}
	return &Type{base: base{tok.Pos}, Name: tok.Lexeme}, nil
}

func (p *Parser) parseVarNode() (*Var, error) {
	tok, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	return &Var{base: base{tok.Pos}, Name: tok.Lexeme}, nil
}

func (p *Parser) parseVarDeclList() ([]Node, error) {
	pos := p.cur.Pos
	typeNode, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	var nodes []Node
	appendOne := func() error {
		varNode, err := p.parseVarNode()
		if err != nil {
			return err
		}
		nodes = append(nodes, &VarDecl{base: base{pos}, TypeNode: typeNode, VarNode: varNode})
		if p.isOperator("=") {
			if err := p.advance(); err != nil {
				return err
			}
			val, err := p.parseAssignExpr()
			if err != nil {
				return err
			}
			nodes = append(nodes, &Assign{base: base{varNode.pos}, Target: varNode, Op: AssignSet, Value: val})
		}
		return nil
	}
	if err := appendOne(); err != nil {
		return nil, err
	}
	for p.isPunct(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := appendOne(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (p *Parser) parseStructDeclOrDef() ([]Node, error) {
	pos := p.cur.Pos
	if _, err := p.expect(TokKeywordStruct, "struct"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if p.isPunct("{") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		var fields []*StructField
		for !p.isPunct("}") {
			field, err := p.parseStructField()
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		if _, err := p.expect(TokPunct, "}"); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return []Node{&StructTypeDecl{base: base{pos}, Name: nameTok.Lexeme, Fields: fields}}, nil
	}
	varTok, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return []Node{&StructDecl{base: base{pos}, StructType: nameTok.Lexeme, Name: varTok.Lexeme}}, nil
}

func (p *Parser) parseStructField() (*StructField, error) {
	pos := p.cur.Pos
	if p.cur.Kind == TokKeywordStruct {
		if err := p.advance(); err != nil {
			return nil, err
		}
		typeTok, err := p.expect(TokIdentifier, "")
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(TokIdentifier, "")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return &StructField{
			base: base{pos}, Name: nameTok.Lexeme,
			Struct: &StructDecl{base: base{pos}, StructType: typeTok.Lexeme, Name: nameTok.Lexeme},
		}, nil
	}
	typeNode, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &StructField{base: base{pos}, Type: typeNode, Name: nameTok.Lexeme}, nil
}

func (p *Parser) parseFunctionDecl() (Node, error) {
	pos := p.cur.Pos
	retType, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseFunctionBody()
	if err != nil {
		return nil, err
	}
	return &FunctionDecl{base: base{pos}, ReturnType: retType, Name: nameTok.Lexeme, Params: params, Body: body}, nil
}

func (p *Parser) parseParams() ([]*Param, error) {
	if p.isPunct(")") {
		return nil, nil
	}
	var params []*Param
	one := func() error {
		pos := p.cur.Pos
		t, err := p.parseTypeSpec()
		if err != nil {
			return err
		}
		v, err := p.parseVarNode()
		if err != nil {
			return err
		}
		params = append(params, &Param{base: base{pos}, TypeNode: t, VarNode: v})
		return nil
	}
	if err := one(); err != nil {
		return nil, err
	}
	for p.isPunct(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := one(); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func (p *Parser) parseFunctionBody() (*FunctionBody, error) {
	pos := p.cur.Pos
	if _, err := p.expect(TokPunct, "{"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "}"); err != nil {
		return nil, err
	}
	return &FunctionBody{base: base{pos}, Children: stmts}, nil
}

func (p *Parser) parseStatementList() ([]Node, error) {
	var nodes []Node
	for !p.isPunct("}") && p.cur.Kind != TokEOF {
		switch {
		case p.cur.Kind == TokKeywordType:
			decls, err := p.parseVarDeclList()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, decls...)
		case p.cur.Kind == TokKeywordStruct:
			decls, err := p.parseStructDeclOrDef()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, decls...)
		default:
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, stmt)
		}
	}
	return nodes, nil
}

func (p *Parser) parseCompoundStmt() (Node, error) {
	pos := p.cur.Pos
	if _, err := p.expect(TokPunct, "{"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatementList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "}"); err != nil {
		return nil, err
	}
	return &CompoundStmt{base: base{pos}, Children: stmts}, nil
}

func (p *Parser) parseBlockOrStatement() (Node, error) {
	if p.isPunct("{") {
		return p.parseCompoundStmt()
	}
	return p.parseStatement()
}

// parseStatement handles every statement form that does not start
// with a type or struct keyword (those are handled by
// parseStatementList, which may expand to more than one node).
func (p *Parser) parseStatement() (Node, error) {
	pos := p.cur.Pos
	switch {
	case p.isPunct(";"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &NoOp{base: base{pos}}, nil
	case p.isPunct("{"):
		return p.parseCompoundStmt()
	case p.isKeyword(TokKeywordControl, "if"):
		return p.parseIfStmt()
	case p.isKeyword(TokKeywordControl, "while"):
		return p.parseWhileStmt()
	case p.isKeyword(TokKeywordControl, "do"):
		return p.parseDoWhileStmt()
	case p.isKeyword(TokKeywordControl, "for"):
		return p.parseForStmt()
	case p.isKeyword(TokKeywordControl, "return"):
		return p.parseReturnStmt()
	case p.isKeyword(TokKeywordControl, "break"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return &BreakStmt{base{pos}}, nil
	case p.isKeyword(TokKeywordControl, "continue"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return &ContinueStmt{base{pos}}, nil
	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ";"); err != nil {
			return nil, err
		}
		return expr, nil
	}
}

func (p *Parser) parseIfStmt() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // "if"
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	then, err := p.parseBlockOrStatement()
	if err != nil {
		return nil, err
	}
	var elseNode Node
	if p.isKeyword(TokKeywordControl, "else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseNode, err = p.parseBlockOrStatement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{base: base{pos}, Cond: cond, Then: then, Else: elseNode}, nil
}

func (p *Parser) parseWhileStmt() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockOrStatement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{base: base{pos}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseDoWhileStmt() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // "do"
		return nil, err
	}
	body, err := p.parseBlockOrStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokKeywordControl, "while"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &DoWhileStmt{base: base{pos}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseForStmt() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // "for"
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	var initNode Node
	if !p.isPunct(";") {
		var err error
		initNode, err = p.parseForInit()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	var condNode Node
	if !p.isPunct(";") {
		var err error
		condNode, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	var stepNode Node
	if !p.isPunct(")") {
		var err error
		stepNode, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockOrStatement()
	if err != nil {
		return nil, err
	}
	return &ForStmt{base: base{pos}, Init: initNode, Cond: condNode, Step: stepNode, Body: body}, nil
}

// parseForInit parses a for-loop's init clause, which may declare a
// loop variable. It never opens a scope of its own (unlike
// CompoundStmt) so the declared name stays visible to cond/step/body,
// matching the original interpreter's lack of a new_scope call around
// for loops.
func (p *Parser) parseForInit() (Node, error) {
	pos := p.cur.Pos
	if p.cur.Kind != TokKeywordType {
		return p.parseExpr()
	}
	typeNode, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	varNode, err := p.parseVarNode()
	if err != nil {
		return nil, err
	}
	children := []Node{&VarDecl{base: base{pos}, TypeNode: typeNode, VarNode: varNode}}
	if p.isOperator("=") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		children = append(children, &Assign{base: base{varNode.pos}, Target: varNode, Op: AssignSet, Value: val})
	}
	return &Expression{base: base{pos}, Children: children}, nil
}

func (p *Parser) parseReturnStmt() (Node, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var expr Node
	if !p.isPunct(";") {
		var err error
		expr, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokPunct, ";"); err != nil {
		return nil, err
	}
	return &ReturnStmt{base: base{pos}, Expr: expr}, nil
}

// --- expressions, precedence climbing from assignment (lowest) to
// postfix (highest) ---

func (p *Parser) parseExpr() (Node, error) { return p.parseAssignExpr() }

var assignOps = map[string]AssignOp{
	"=": AssignSet, "+=": AssignAdd, "-=": AssignSub, "*=": AssignMul, "/=": AssignDiv,
}

func (p *Parser) parseAssignExpr() (Node, error) {
	pos := p.cur.Pos
	left, err := p.parseTernaryExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == TokOperator {
		if op, ok := assignOps[p.cur.Lexeme]; ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			target, err := asLValue(left)
			if err != nil {
				return nil, err
			}
			return &Assign{base: base{pos}, Target: target, Op: op, Value: right}, nil
		}
	}
	return left, nil
}

func asLValue(n Node) (Node, error) {
	switch n.(type) {
	case *Var, *StructVar:
		return n, nil
	default:
		return nil, &SyntaxError{Pos: n.Pos(), Message: "invalid assignment target"}
	}
}

func (p *Parser) parseTernaryExpr() (Node, error) {
	cond, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.isOperator("?") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokOperator, ":"); err != nil {
			return nil, err
		}
		f, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		return &TerOp{base: base{cond.Pos()}, Cond: cond, T: t, F: f}, nil
	}
	return cond, nil
}

func (p *Parser) binOpLevel(next func() (Node, error), ops ...string) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		if p.cur.Kind == TokOperator {
			for _, op := range ops {
				if p.cur.Lexeme == op {
					matched = op
					break
				}
			}
		}
		if matched == "" {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinOp{base: base{left.Pos()}, Op: matched, Left: left, Right: right}
	}
}

func (p *Parser) parseLogicalOr() (Node, error) {
	return p.binOpLevel(p.parseLogicalAnd, "||")
}
func (p *Parser) parseLogicalAnd() (Node, error) {
	return p.binOpLevel(p.parseBitOr, "&&")
}
func (p *Parser) parseBitOr() (Node, error) {
	return p.binOpLevel(p.parseBitXor, "|")
}
func (p *Parser) parseBitXor() (Node, error) {
	return p.binOpLevel(p.parseBitAnd, "^")
}
func (p *Parser) parseBitAnd() (Node, error) {
	return p.binOpLevel(p.parseEquality, "&")
}
func (p *Parser) parseEquality() (Node, error) {
	return p.binOpLevel(p.parseRelational, "==", "!=")
}
func (p *Parser) parseRelational() (Node, error) {
	return p.binOpLevel(p.parseAdditive, "<", "<=", ">", ">=")
}
func (p *Parser) parseAdditive() (Node, error) {
	return p.binOpLevel(p.parseMultiplicative, "+", "-")
}
func (p *Parser) parseMultiplicative() (Node, error) {
	return p.binOpLevel(p.parseUnary, "*", "/", "%")
}

var unaryPrefixOps = map[string]bool{"+": true, "-": true, "!": true, "&": true, "++": true, "--": true}

func (p *Parser) parseUnary() (Node, error) {
	pos := p.cur.Pos
	if p.cur.Kind == TokOperator && unaryPrefixOps[p.cur.Lexeme] {
		op := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnOp{base: base{pos}, Op: op, Operand: operand, Prefix: true}, nil
	}
	if p.checkCast() {
		if err := p.advance(); err != nil { // "("
			return nil, err
		}
		typeNode, err := p.parseTypeSpec()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ")"); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnOp{base: base{pos}, Op: "cast", Operand: operand, Prefix: true, CastTo: typeNode}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.cur.Kind == TokOperator && (p.cur.Lexeme == "++" || p.cur.Lexeme == "--"):
			op := p.cur.Lexeme
			if err := p.advance(); err != nil {
				return nil, err
			}
			node = &UnOp{base: base{node.Pos()}, Op: op, Operand: node, Prefix: false}
		case p.isPunct("."):
			if err := p.advance(); err != nil {
				return nil, err
			}
			fieldTok, err := p.expect(TokIdentifier, "")
			if err != nil {
				return nil, err
			}
			node = &StructVar{base: base{node.Pos()}, Container: node, FieldPath: fieldTok.Lexeme}
		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	pos := p.cur.Pos
	switch {
	case p.cur.Kind == TokIntegerConst:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := strconv.ParseUint(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, &SyntaxError{Pos: pos, Message: fmt.Sprintf("invalid integer literal %q", tok.Lexeme)}
		}
		return &Num{base: base{pos}, Kind: NumInteger, Value: uint32(val)}, nil
	case p.cur.Kind == TokCharConst:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		r := []rune(tok.Lexeme)[0]
		return &Num{base: base{pos}, Kind: NumCharacter, Value: uint32(r)}, nil
	case p.cur.Kind == TokStringConst:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &String{base: base{pos}, Text: tok.Lexeme}, nil
	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokPunct, ")"); err != nil {
			return nil, err
		}
		return node, nil
	case p.cur.Kind == TokIdentifier:
		if p.checkFunctionCall() {
			return p.parseFunctionCall()
		}
		return p.parseVarNode()
	default:
		return nil, &SyntaxError{Pos: pos, Message: fmt.Sprintf("unexpected token %q", p.cur.Lexeme)}
	}
}

func (p *Parser) parseFunctionCall() (Node, error) {
	pos := p.cur.Pos
	nameTok, err := p.expect(TokIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokPunct, "("); err != nil {
		return nil, err
	}
	var args []Node
	for !p.isPunct(")") {
		if p.cur.Kind == TokStringConst {
			args = append(args, &String{base: base{p.cur.Pos}, Text: p.cur.Lexeme})
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			arg, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(TokPunct, ")"); err != nil {
		return nil, err
	}
	return &FunctionCall{base: base{pos}, Name: nameTok.Lexeme, Args: args}, nil
}
