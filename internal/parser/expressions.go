package parser

import (
	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.addError(diagnostics.ErrP001, p.curToken, "expression too complex: recursion depth limit exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

// parseExpressionList parses `a, b, *c`. A single element without a
// trailing comma is returned as is; otherwise the result is a Tuple.
func (p *Parser) parseExpressionList(allowStar bool) ast.Expression {
	first := p.parseListElement(allowStar)
	if first == nil {
		return nil
	}
	if !p.peekTokenIs(token.COMMA) {
		return first
	}
	tuple := &ast.Tuple{Base: ast.Base{Token: first.GetToken()}, Elts: []ast.Expression{first}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.startsExpression(p.peekToken) {
			break
		}
		p.nextToken()
		el := p.parseListElement(allowStar)
		if el == nil {
			return nil
		}
		tuple.Elts = append(tuple.Elts, el)
	}
	p.finish(tuple)
	return tuple
}

func (p *Parser) parseListElement(allowStar bool) ast.Expression {
	if p.curTokenIs(token.ASTERISK) && !allowStar {
		p.addError(diagnostics.ErrP001, p.curToken, "starred expression is not allowed here")
		return nil
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) startsExpression(tok token.Token) bool {
	_, ok := p.prefixParseFns[tok.Type]
	return ok
}

// parseTargetList parses assignment targets of `for` statements and
// comprehension clauses, where `in` ends the list.
func (p *Parser) parseTargetList() ast.Expression {
	saved := p.noIn
	p.noIn = true
	defer func() { p.noIn = saved }()
	return p.parseExpressionList(true)
}

func (p *Parser) allowIn() func() {
	saved := p.noIn
	p.noIn = false
	return func() { p.noIn = saved }
}

func (p *Parser) parseName() ast.Expression {
	n := &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
	p.finish(n)
	return n
}

func (p *Parser) parseNumber() ast.Expression {
	lit, _ := p.curToken.Literal.(token.NumberLiteral)
	n := &ast.NumberLit{Base: ast.Base{Token: p.curToken}, Kind: lit.Kind, Text: lit.Text}
	p.finish(n)
	return n
}

// parseString joins adjacent string literals.
func (p *Parser) parseString() ast.Expression {
	lit, _ := p.curToken.Literal.(token.StringLiteral)
	s := &ast.StringLit{Base: ast.Base{Token: p.curToken}, Value: lit.Value, Prefix: lit.Prefix}
	for p.peekTokenIs(token.STRING) {
		p.nextToken()
		next, _ := p.curToken.Literal.(token.StringLiteral)
		s.Value += next.Value
	}
	p.finish(s)
	return s
}

func (p *Parser) parseConstant() ast.Expression {
	c := &ast.Constant{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
	p.finish(c)
	return c
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	exp := &ast.UnaryOp{Base: ast.Base{Token: p.curToken}, Op: p.curToken.Lexeme}
	p.nextToken()
	exp.Operand = p.parseExpression(PREFIX)
	if exp.Operand == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseNotExpression() ast.Expression {
	exp := &ast.UnaryOp{Base: ast.Base{Token: p.curToken}, Op: "not"}
	p.nextToken()
	exp.Operand = p.parseExpression(NOT)
	if exp.Operand == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	exp := &ast.Await{Base: ast.Base{Token: p.curToken}}
	p.nextToken()
	exp.Value = p.parseExpression(AWAIT)
	if exp.Value == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseStarredExpression() ast.Expression {
	exp := &ast.Starred{Base: ast.Base{Token: p.curToken}}
	p.nextToken()
	exp.Value = p.parseExpression(BOR)
	if exp.Value == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseLambdaExpression() ast.Expression {
	exp := &ast.Lambda{Base: ast.Base{Token: p.curToken}}
	params, ok := p.parseParamList(token.COLON, false)
	if !ok {
		return nil
	}
	exp.Params = params
	p.nextToken()
	exp.Body = p.parseExpression(LOWEST)
	if exp.Body == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func isYieldTerminator(t token.TokenType) bool {
	switch t {
	case token.NEWLINE, token.EOF, token.SEMICOLON, token.RPAREN, token.RBRACKET, token.RBRACE, token.ASSIGN:
		return true
	}
	return false
}

func (p *Parser) parseYieldExpression() ast.Expression {
	exp := &ast.Yield{Base: ast.Base{Token: p.curToken}}
	if isYieldTerminator(p.peekToken.Type) {
		p.finish(exp)
		return exp
	}
	p.nextToken()
	if p.curTokenIs(token.FROM) {
		exp.From = true
		p.nextToken()
		exp.Value = p.parseExpression(LOWEST)
	} else {
		exp.Value = p.parseExpressionList(true)
	}
	if exp.Value == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	defer p.allowIn()()
	start := p.curToken

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		t := &ast.Tuple{Base: ast.Base{Token: start}, Parenthesized: true}
		p.finish(t)
		return t
	}
	p.nextToken()
	if p.curTokenIs(token.YIELD) {
		y := p.parseYieldExpression()
		if y == nil || !p.expectPeek(token.RPAREN) {
			return nil
		}
		return y
	}

	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	if p.startsComprehension() {
		return p.parseComprehension(start, ast.GeneratorExp, nil, first, token.RPAREN)
	}
	if !p.peekTokenIs(token.COMMA) {
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		if t, ok := first.(*ast.Tuple); ok {
			t.Parenthesized = true
		}
		return first
	}

	t := &ast.Tuple{Base: ast.Base{Token: start}, Elts: []ast.Expression{first}, Parenthesized: true}
	elts, ok := p.parseRestOfList(token.RPAREN)
	if !ok {
		return nil
	}
	t.Elts = append(t.Elts, elts...)
	p.finish(t)
	return t
}

// parseRestOfList parses `, b, c]` after the first element, leaving the
// closing token as current.
func (p *Parser) parseRestOfList(end token.TokenType) ([]ast.Expression, bool) {
	var elts []ast.Expression
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil, false
		}
		elts = append(elts, el)
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return elts, true
}

func (p *Parser) startsComprehension() bool {
	return p.peekTokenIs(token.FOR) || (p.peekTokenIs(token.ASYNC) && p.peekAhead(2).Type == token.FOR)
}

func (p *Parser) parseListLiteral() ast.Expression {
	defer p.allowIn()()
	start := p.curToken

	list := &ast.List{Base: ast.Base{Token: start}}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		p.finish(list)
		return list
	}
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	if p.startsComprehension() {
		return p.parseComprehension(start, ast.ListComp, nil, first, token.RBRACKET)
	}
	rest, ok := p.parseRestOfList(token.RBRACKET)
	if !ok {
		return nil
	}
	list.Elts = append([]ast.Expression{first}, rest...)
	p.finish(list)
	return list
}

func (p *Parser) parseBraceLiteral() ast.Expression {
	defer p.allowIn()()
	start := p.curToken

	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		d := &ast.Dict{Base: ast.Base{Token: start}}
		p.finish(d)
		return d
	}
	p.nextToken()

	if p.curTokenIs(token.POWER) {
		return p.parseDictEntries(start, nil)
	}
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	if p.peekTokenIs(token.COLON) {
		return p.parseDictEntries(start, first)
	}
	if p.startsComprehension() {
		return p.parseComprehension(start, ast.SetComp, nil, first, token.RBRACE)
	}
	rest, ok := p.parseRestOfList(token.RBRACE)
	if !ok {
		return nil
	}
	s := &ast.Set{Base: ast.Base{Token: start}, Elts: append([]ast.Expression{first}, rest...)}
	p.finish(s)
	return s
}

// parseDictEntries parses a dict display starting at its first entry. key
// is the already parsed first key, or nil when the entry is `**mapping`.
func (p *Parser) parseDictEntries(start token.Token, key ast.Expression) ast.Expression {
	d := &ast.Dict{Base: ast.Base{Token: start}}
	first := true
	for {
		if !first {
			if p.curTokenIs(token.POWER) {
				key = nil
			} else {
				key = p.parseExpression(LOWEST)
				if key == nil {
					return nil
				}
			}
		}
		if key == nil {
			p.nextToken()
			value := p.parseExpression(BOR)
			if value == nil {
				return nil
			}
			d.Keys = append(d.Keys, nil)
			d.Values = append(d.Values, value)
		} else {
			if !p.expectPeek(token.COLON) {
				return nil
			}
			p.nextToken()
			value := p.parseExpression(LOWEST)
			if value == nil {
				return nil
			}
			if first && p.startsComprehension() {
				return p.parseComprehension(start, ast.DictComp, key, value, token.RBRACE)
			}
			d.Keys = append(d.Keys, key)
			d.Values = append(d.Values, value)
		}
		first = false

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.RBRACE) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	p.finish(d)
	return d
}

func (p *Parser) parseComprehension(start token.Token, kind ast.ComprehensionKind, key, elt ast.Expression, end token.TokenType) ast.Expression {
	c := &ast.Comprehension{Base: ast.Base{Token: start}, Kind: kind, Key: key, Elt: elt}
	for p.startsComprehension() {
		p.nextToken()
		clause := &ast.CompClause{Base: ast.Base{Token: p.curToken}}
		if p.curTokenIs(token.ASYNC) {
			clause.Async = true
			p.nextToken()
		}
		p.nextToken()
		clause.Target = p.parseTargetList()
		if clause.Target == nil || !p.expectPeek(token.IN) {
			return nil
		}
		p.nextToken()
		clause.Iter = p.parseExpression(TERNARY)
		if clause.Iter == nil {
			return nil
		}
		for p.peekTokenIs(token.IF) {
			p.nextToken()
			p.nextToken()
			cond := p.parseExpression(TERNARY)
			if cond == nil {
				return nil
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		p.finish(clause)
		c.Clauses = append(c.Clauses, clause)
	}
	if !p.expectPeek(end) {
		return nil
	}
	p.finish(c)
	return c
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	exp := &ast.BinaryOp{Base: ast.Base{Token: left.GetToken()}, Left: left, Op: p.curToken.Lexeme}
	precedence := p.curPrecedence()
	p.nextToken()
	exp.Right = p.parseExpression(precedence)
	if exp.Right == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseRightAssocInfixExpression(left ast.Expression) ast.Expression {
	exp := &ast.BinaryOp{Base: ast.Base{Token: left.GetToken()}, Left: left, Op: p.curToken.Lexeme}
	precedence := p.curPrecedence()
	p.nextToken()
	// Parse right side with lower precedence to achieve right associativity
	exp.Right = p.parseExpression(precedence - 1)
	if exp.Right == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseBoolExpression(left ast.Expression) ast.Expression {
	op := p.curToken.Type
	exp := &ast.BoolOp{Base: ast.Base{Token: left.GetToken()}, Op: p.curToken.Lexeme, Values: []ast.Expression{left}}
	precedence := p.curPrecedence()
	for {
		p.nextToken()
		right := p.parseExpression(precedence)
		if right == nil {
			return nil
		}
		exp.Values = append(exp.Values, right)
		if !p.peekTokenIs(op) {
			break
		}
		p.nextToken()
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseComparison(left ast.Expression) ast.Expression {
	exp := &ast.Compare{Base: ast.Base{Token: left.GetToken()}, Left: left}
	for {
		op := p.curToken.Lexeme
		switch {
		case p.curTokenIs(token.NOT):
			p.nextToken() // in
			op = "not in"
		case p.curTokenIs(token.IS) && p.peekTokenIs(token.NOT):
			p.nextToken()
			op = "is not"
		}
		p.nextToken()
		right := p.parseExpression(COMPARISON)
		if right == nil {
			return nil
		}
		exp.Ops = append(exp.Ops, op)
		exp.Comparators = append(exp.Comparators, right)
		if p.peekPrecedence() != COMPARISON {
			break
		}
		p.nextToken()
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseTernaryExpression(left ast.Expression) ast.Expression {
	exp := &ast.IfExp{Base: ast.Base{Token: left.GetToken()}, Body: left}
	p.nextToken()
	exp.Test = p.parseExpression(TERNARY)
	if exp.Test == nil || !p.expectPeek(token.ELSE) {
		return nil
	}
	p.nextToken()
	exp.Orelse = p.parseExpression(NAMED)
	if exp.Orelse == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseNamedExpression(left ast.Expression) ast.Expression {
	target, ok := left.(*ast.Name)
	if !ok {
		p.addError(diagnostics.ErrP001, p.curToken, "cannot use assignment expressions with this target")
		return nil
	}
	exp := &ast.NamedExpr{Base: ast.Base{Token: left.GetToken()}, Target: target}
	p.nextToken()
	exp.Value = p.parseExpression(NAMED)
	if exp.Value == nil {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseAttributeExpression(left ast.Expression) ast.Expression {
	if !p.expectPeek(token.NAME) {
		return nil
	}
	attr := &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
	p.finish(attr)
	exp := &ast.Attribute{Base: ast.Base{Token: left.GetToken()}, Value: left, Attr: attr}
	p.finish(exp)
	return exp
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.Call{Base: ast.Base{Token: function.GetToken()}, Func: function}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	exp.Args = args
	p.finish(exp)
	return exp
}

// parseCallArguments parses `(args)` with curToken on the opening paren and
// leaves the closing paren as current.
func (p *Parser) parseCallArguments() ([]*ast.Argument, bool) {
	defer p.allowIn()()
	var args []*ast.Argument
	for {
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			return args, true
		}
		p.nextToken()
		arg := &ast.Argument{Base: ast.Base{Token: p.curToken}}
		switch {
		case p.curTokenIs(token.ASTERISK):
			arg.Star = 1
			p.nextToken()
		case p.curTokenIs(token.POWER):
			arg.Star = 2
			p.nextToken()
		case p.curTokenIs(token.NAME) && p.peekTokenIs(token.ASSIGN):
			arg.Keyword = &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
			p.finish(arg.Keyword)
			p.nextToken()
			p.nextToken()
		}
		arg.Value = p.parseExpression(LOWEST)
		if arg.Value == nil {
			return nil, false
		}
		if arg.Star == 0 && arg.Keyword == nil && p.startsComprehension() {
			arg.Value = p.parseComprehension(arg.Value.GetToken(), ast.GeneratorExp, nil, arg.Value, token.RPAREN)
			if arg.Value == nil {
				return nil, false
			}
			p.finish(arg)
			return append(args, arg), true
		}
		p.finish(arg)
		args = append(args, arg)

		if !p.peekTokenIs(token.COMMA) {
			if !p.expectPeek(token.RPAREN) {
				return nil, false
			}
			return args, true
		}
		p.nextToken()
	}
}

func (p *Parser) parseSubscriptExpression(left ast.Expression) ast.Expression {
	defer p.allowIn()()
	exp := &ast.Subscript{Base: ast.Base{Token: left.GetToken()}, Value: left}
	for {
		p.nextToken()
		el := p.parseSubscriptElement()
		if el == nil {
			return nil
		}
		exp.Index = append(exp.Index, el)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.RBRACKET) {
			break
		}
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	p.finish(exp)
	return exp
}

func (p *Parser) parseSubscriptElement() ast.Expression {
	var lower ast.Expression
	if !p.curTokenIs(token.COLON) {
		lower = p.parseExpression(LOWEST)
		if lower == nil {
			return nil
		}
		if !p.peekTokenIs(token.COLON) {
			return lower
		}
		p.nextToken()
	}

	slice := &ast.Slice{Base: ast.Base{Token: p.curToken}, Lower: lower}
	if lower != nil {
		slice.Token = lower.GetToken()
	}
	bound := func() (ast.Expression, bool) {
		if p.peekTokenIs(token.COLON) || p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.RBRACKET) {
			return nil, true
		}
		p.nextToken()
		e := p.parseExpression(LOWEST)
		return e, e != nil
	}
	var ok bool
	if slice.Upper, ok = bound(); !ok {
		return nil
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if slice.Step, ok = bound(); !ok {
			return nil
		}
	}
	p.finish(slice)
	return slice
}

// parseParamList parses parameters up to end, with curToken on the token
// before the first parameter. It leaves end as current.
func (p *Parser) parseParamList(end token.TokenType, annotations bool) ([]*ast.Param, bool) {
	var params []*ast.Param
	keywordOnly := false
	for {
		if p.peekTokenIs(end) {
			p.nextToken()
			return params, true
		}
		p.nextToken()

		switch {
		case p.curTokenIs(token.SLASH):
			for _, prm := range params {
				prm.PositionalOnly = true
			}
		case p.curTokenIs(token.ASTERISK) && (p.peekTokenIs(token.COMMA) || p.peekTokenIs(end)):
			keywordOnly = true
		default:
			param := &ast.Param{Base: ast.Base{Token: p.curToken}, KeywordOnly: keywordOnly}
			if p.curTokenIs(token.ASTERISK) {
				param.Star = 1
				keywordOnly = true
				p.nextToken()
			} else if p.curTokenIs(token.POWER) {
				param.Star = 2
				p.nextToken()
			}
			if !p.curTokenIs(token.NAME) {
				p.addError(diagnostics.ErrP001, p.curToken, "expected parameter name, got %s", p.curToken.Type)
				return nil, false
			}
			param.Name = &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
			p.finish(param.Name)
			if annotations && p.peekTokenIs(token.COLON) {
				p.nextToken()
				p.nextToken()
				param.Annotation = p.parseExpression(LOWEST)
				if param.Annotation == nil {
					return nil, false
				}
			}
			if p.peekTokenIs(token.ASSIGN) {
				p.nextToken()
				p.nextToken()
				param.Default = p.parseExpression(LOWEST)
				if param.Default == nil {
					return nil, false
				}
			}
			p.finish(param)
			params = append(params, param)
		}

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(end) {
			return nil, false
		}
		return params, true
	}
}
