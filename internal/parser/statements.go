package parser

import (
	"strings"

	"github.com/funvibe/pyhint/internal/ast"
	"github.com/funvibe/pyhint/internal/diagnostics"
	"github.com/funvibe/pyhint/internal/token"
)

func (p *Parser) ParseModule() *ast.Module {
	m := &ast.Module{Base: ast.Base{Token: p.curToken}, File: p.file}
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.DEDENT) {
			p.nextToken()
			continue
		}
		m.Body = append(m.Body, p.parseStatement()...)
	}
	m.SetEnd(p.curToken.Pos())
	ast.LinkParents(m)
	return m
}

// parseStatement parses one logical line or compound statement starting at
// curToken and leaves the first token of the next statement as current.
func (p *Parser) parseStatement() []ast.Statement {
	switch p.curToken.Type {
	case token.NEWLINE, token.SEMICOLON:
		p.nextToken()
		return nil
	case token.INDENT:
		p.addError(diagnostics.ErrP002, p.curToken, "unexpected indent")
		p.nextToken()
		return p.parseBlockBody()
	case token.DEF, token.CLASS, token.IF, token.WHILE, token.FOR, token.TRY, token.WITH, token.AT:
		return p.parseCompound(nil)
	case token.ASYNC:
		if next := p.peekToken.Type; next == token.DEF || next == token.FOR || next == token.WITH {
			return p.parseCompound(nil)
		}
	}
	return p.parseSimpleLine()
}

func (p *Parser) parseCompound(decorators []ast.Expression) []ast.Statement {
	errs := len(p.errors)
	var stmt ast.Statement
	switch p.curToken.Type {
	case token.AT:
		return p.parseDecorated()
	case token.ASYNC:
		start := p.curToken
		p.nextToken()
		switch p.curToken.Type {
		case token.DEF:
			if fd := p.parseFuncDef(decorators, start); fd != nil {
				fd.Async = true
				stmt = fd
			}
		case token.FOR:
			if f := p.parseFor(); f != nil {
				f.Async = true
				f.Token = start
				stmt = f
			}
		case token.WITH:
			if w := p.parseWith(); w != nil {
				w.Async = true
				w.Token = start
				stmt = w
			}
		}
	case token.DEF:
		if fd := p.parseFuncDef(decorators, p.curToken); fd != nil {
			stmt = fd
		}
	case token.CLASS:
		if cd := p.parseClassDef(decorators); cd != nil {
			stmt = cd
		}
	case token.IF:
		if s := p.parseIf(); s != nil {
			stmt = s
		}
	case token.WHILE:
		if s := p.parseWhile(); s != nil {
			stmt = s
		}
	case token.FOR:
		if s := p.parseFor(); s != nil {
			stmt = s
		}
	case token.TRY:
		if s := p.parseTry(); s != nil {
			stmt = s
		}
	case token.WITH:
		if s := p.parseWith(); s != nil {
			stmt = s
		}
	}
	if stmt == nil {
		if len(p.errors) == errs {
			p.noPrefixParseFnError(p.curToken)
		}
		p.skipToNextLine()
		return nil
	}
	return []ast.Statement{stmt}
}

func (p *Parser) parseDecorated() []ast.Statement {
	var decorators []ast.Expression
	for p.curTokenIs(token.AT) {
		p.nextToken()
		dec := p.parseExpression(LOWEST)
		if dec == nil || !p.expectPeek(token.NEWLINE) {
			p.skipToNextLine()
			return nil
		}
		decorators = append(decorators, dec)
		p.nextToken()
	}
	switch p.curToken.Type {
	case token.DEF, token.CLASS, token.ASYNC:
		return p.parseCompound(decorators)
	}
	p.addError(diagnostics.ErrP001, p.curToken, "expected function or class definition after decorator")
	p.skipToNextLine()
	return nil
}

// skipToNextLine discards tokens through the end of the current line.
func (p *Parser) skipToNextLine() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// parseBlock parses the suite after a header colon, which is current. The
// header comment of owner is taken from the colon's line.
func (p *Parser) parseBlock(owner ast.Node) []ast.Statement {
	if !p.peekTokenIs(token.NEWLINE) {
		line := p.curToken.Line
		p.nextToken()
		body := p.parseSimpleLine()
		if c, ok := p.lexer.CommentAt(line); ok && owner != nil {
			ast.AttachComment(owner, c)
		}
		return body
	}
	p.nextToken()
	if c, ok := p.lexer.CommentAt(p.curToken.Line); ok && owner != nil {
		ast.AttachComment(owner, c)
	}
	if !p.peekTokenIs(token.INDENT) {
		p.addError(diagnostics.ErrP002, p.peekToken, "expected an indented block")
		p.nextToken()
		return nil
	}
	p.nextToken()
	p.nextToken()
	return p.parseBlockBody()
}

// parseBlockBody parses statements up to and including the closing DEDENT.
func (p *Parser) parseBlockBody() []ast.Statement {
	var body []ast.Statement
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) {
		body = append(body, p.parseStatement()...)
	}
	if p.curTokenIs(token.DEDENT) {
		p.nextToken()
	}
	return body
}

func (p *Parser) parseSimpleLine() []ast.Statement {
	var stmts []ast.Statement
	errs := len(p.errors)
	for {
		s := p.parseSimpleStatement()
		if s == nil || len(p.errors) > errs {
			if len(p.errors) == errs {
				p.noPrefixParseFnError(p.curToken)
			}
			p.skipToNextLine()
			return stmts
		}
		stmts = append(stmts, s)
		if !p.peekTokenIs(token.SEMICOLON) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.NEWLINE) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.NEWLINE) {
		p.skipToNextLine()
		return stmts
	}
	if c, ok := p.lexer.CommentAt(p.curToken.Line); ok {
		for _, s := range stmts {
			ast.AttachComment(s, c)
		}
	}
	p.nextToken()
	return stmts
}

func (p *Parser) atStatementEnd() bool {
	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.EOF:
		return true
	}
	return false
}

// parseSimpleStatement parses one small statement and leaves its last
// token as current.
func (p *Parser) parseSimpleStatement() ast.Statement {
	start := p.curToken
	var stmt ast.Statement
	switch p.curToken.Type {
	case token.PASS, token.BREAK, token.CONTINUE:
		stmt = &ast.Keyword{Base: ast.Base{Token: start}, Value: start.Lexeme}
	case token.RETURN:
		r := &ast.Return{Base: ast.Base{Token: start}}
		if !p.atStatementEnd() {
			p.nextToken()
			if r.Value = p.parseExpressionList(true); r.Value == nil {
				return nil
			}
		}
		stmt = r
	case token.RAISE:
		r := &ast.Raise{Base: ast.Base{Token: start}}
		if !p.atStatementEnd() {
			p.nextToken()
			if r.Exc = p.parseExpression(LOWEST); r.Exc == nil {
				return nil
			}
			if p.peekTokenIs(token.FROM) {
				p.nextToken()
				p.nextToken()
				if r.Cause = p.parseExpression(LOWEST); r.Cause == nil {
					return nil
				}
			}
		}
		stmt = r
	case token.GLOBAL, token.NONLOCAL:
		g := &ast.Global{Base: ast.Base{Token: start}, Nonlocal: start.Type == token.NONLOCAL}
		for {
			if !p.expectPeek(token.NAME) {
				return nil
			}
			n := &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
			p.finish(n)
			g.Names = append(g.Names, n)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		stmt = g
	case token.DEL:
		p.nextToken()
		targets := p.parseExpressionList(false)
		if targets == nil {
			return nil
		}
		d := &ast.Del{Base: ast.Base{Token: start}}
		if t, ok := targets.(*ast.Tuple); ok && !t.Parenthesized {
			d.Targets = t.Elts
		} else {
			d.Targets = []ast.Expression{targets}
		}
		stmt = d
	case token.ASSERT:
		a := &ast.Assert{Base: ast.Base{Token: start}}
		p.nextToken()
		if a.Test = p.parseExpression(LOWEST); a.Test == nil {
			return nil
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			if a.Msg = p.parseExpression(LOWEST); a.Msg == nil {
				return nil
			}
		}
		stmt = a
	case token.IMPORT:
		stmt = p.parseImport()
	case token.FROM:
		stmt = p.parseImportFrom()
	default:
		stmt = p.parseExpressionStatement()
	}
	if stmt == nil {
		return nil
	}
	p.finish(stmt)
	return stmt
}

func (p *Parser) parseAssignValue() ast.Expression {
	if p.curTokenIs(token.YIELD) {
		return p.parseYieldExpression()
	}
	return p.parseExpressionList(true)
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.curToken
	first := p.parseExpressionList(true)
	if first == nil {
		return nil
	}

	switch {
	case p.peekTokenIs(token.COLON):
		a := &ast.Assign{Base: ast.Base{Token: start}, Targets: []ast.Expression{first}}
		p.nextToken()
		p.nextToken()
		if a.Annotation = p.parseExpression(LOWEST); a.Annotation == nil {
			return nil
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			if a.Value = p.parseAssignValue(); a.Value == nil {
				return nil
			}
		}
		return a
	case p.peekTokenIs(token.AUG_ASSIGN):
		p.nextToken()
		a := &ast.AugAssign{Base: ast.Base{Token: start}, Target: first, Op: p.curToken.Lexeme}
		p.nextToken()
		if a.Value = p.parseAssignValue(); a.Value == nil {
			return nil
		}
		return a
	case p.peekTokenIs(token.ASSIGN):
		a := &ast.Assign{Base: ast.Base{Token: start}, Targets: []ast.Expression{first}}
		for p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			e := p.parseAssignValue()
			if e == nil {
				return nil
			}
			if p.peekTokenIs(token.ASSIGN) {
				a.Targets = append(a.Targets, e)
				continue
			}
			a.Value = e
		}
		return a
	}
	return &ast.ExprStmt{Base: ast.Base{Token: start}, Value: first}
}

func (p *Parser) parseDottedName() (string, bool) {
	if !p.expectPeek(token.NAME) {
		return "", false
	}
	parts := []string{p.curToken.Lexeme}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.NAME) {
			return "", false
		}
		parts = append(parts, p.curToken.Lexeme)
	}
	return strings.Join(parts, "."), true
}

func (p *Parser) parseAlias(dotted bool) *ast.Alias {
	start := p.peekToken
	var name string
	if dotted {
		n, ok := p.parseDottedName()
		if !ok {
			return nil
		}
		name = n
	} else {
		if !p.expectPeek(token.NAME) {
			return nil
		}
		name = p.curToken.Lexeme
	}
	alias := &ast.Alias{Base: ast.Base{Token: start}, Name: name}
	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek(token.NAME) {
			return nil
		}
		alias.AsName = &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
		p.finish(alias.AsName)
	}
	p.finish(alias)
	return alias
}

func (p *Parser) parseImport() ast.Statement {
	im := &ast.Import{Base: ast.Base{Token: p.curToken}}
	for {
		alias := p.parseAlias(true)
		if alias == nil {
			return nil
		}
		im.Names = append(im.Names, alias)
		if !p.peekTokenIs(token.COMMA) {
			return im
		}
		p.nextToken()
	}
}

func (p *Parser) parseImportFrom() ast.Statement {
	im := &ast.ImportFrom{Base: ast.Base{Token: p.curToken}}
	for p.peekTokenIs(token.DOT) || p.peekTokenIs(token.ELLIPSIS) {
		p.nextToken()
		im.Level += len(p.curToken.Lexeme)
	}
	if p.peekTokenIs(token.NAME) {
		name, ok := p.parseDottedName()
		if !ok {
			return nil
		}
		im.Module = name
	} else if im.Level == 0 {
		p.peekError(token.NAME)
		return nil
	}
	if !p.expectPeek(token.IMPORT) {
		return nil
	}
	if p.peekTokenIs(token.ASTERISK) {
		p.nextToken()
		im.Star = true
		return im
	}
	parens := p.peekTokenIs(token.LPAREN)
	if parens {
		p.nextToken()
	}
	for {
		alias := p.parseAlias(false)
		if alias == nil {
			return nil
		}
		im.Names = append(im.Names, alias)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if parens && p.peekTokenIs(token.RPAREN) {
			break
		}
	}
	if parens && !p.expectPeek(token.RPAREN) {
		return nil
	}
	return im
}

func (p *Parser) parseFuncDef(decorators []ast.Expression, start token.Token) *ast.FuncDef {
	fd := &ast.FuncDef{Base: ast.Base{Token: start}, Decorators: decorators}
	if !p.expectPeek(token.NAME) {
		return nil
	}
	fd.Name = &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
	p.finish(fd.Name)
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParamList(token.RPAREN, true)
	if !ok {
		return nil
	}
	fd.Params = params
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		if fd.Returns = p.parseExpression(LOWEST); fd.Returns == nil {
			return nil
		}
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(fd)
	fd.Body = p.parseBlock(fd)
	return fd
}

func (p *Parser) parseClassDef(decorators []ast.Expression) *ast.ClassDef {
	cd := &ast.ClassDef{Base: ast.Base{Token: p.curToken}, Decorators: decorators}
	if !p.expectPeek(token.NAME) {
		return nil
	}
	cd.Name = &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
	p.finish(cd.Name)
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		bases, ok := p.parseCallArguments()
		if !ok {
			return nil
		}
		cd.Bases = bases
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(cd)
	cd.Body = p.parseBlock(cd)
	return cd
}

// parseElse parses an optional `else:` suite following a block.
func (p *Parser) parseElse() ([]ast.Statement, bool) {
	if !p.curTokenIs(token.ELSE) {
		return nil, true
	}
	if !p.expectPeek(token.COLON) {
		return nil, false
	}
	return p.parseBlock(nil), true
}

func (p *Parser) parseIf() *ast.If {
	s := &ast.If{Base: ast.Base{Token: p.curToken}}
	p.nextToken()
	if s.Test = p.parseExpression(LOWEST); s.Test == nil {
		return nil
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(s)
	s.Body = p.parseBlock(s)
	if p.curTokenIs(token.ELIF) {
		elif := p.parseIf()
		if elif == nil {
			return nil
		}
		s.Orelse = []ast.Statement{elif}
		return s
	}
	var ok bool
	if s.Orelse, ok = p.parseElse(); !ok {
		return nil
	}
	return s
}

func (p *Parser) parseWhile() *ast.While {
	s := &ast.While{Base: ast.Base{Token: p.curToken}}
	p.nextToken()
	if s.Test = p.parseExpression(LOWEST); s.Test == nil {
		return nil
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(s)
	s.Body = p.parseBlock(s)
	var ok bool
	if s.Orelse, ok = p.parseElse(); !ok {
		return nil
	}
	return s
}

func (p *Parser) parseFor() *ast.For {
	s := &ast.For{Base: ast.Base{Token: p.curToken}}
	p.nextToken()
	if s.Target = p.parseTargetList(); s.Target == nil {
		return nil
	}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	if s.Iter = p.parseExpressionList(true); s.Iter == nil {
		return nil
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(s)
	s.Body = p.parseBlock(s)
	var ok bool
	if s.Orelse, ok = p.parseElse(); !ok {
		return nil
	}
	return s
}

func (p *Parser) parseWith() *ast.With {
	s := &ast.With{Base: ast.Base{Token: p.curToken}}
	for {
		p.nextToken()
		item := &ast.WithItem{Base: ast.Base{Token: p.curToken}}
		if item.Context = p.parseExpression(LOWEST); item.Context == nil {
			return nil
		}
		if p.peekTokenIs(token.AS) {
			p.nextToken()
			p.nextToken()
			if item.Target = p.parseExpression(BOR); item.Target == nil {
				return nil
			}
		}
		p.finish(item)
		s.Items = append(s.Items, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(s)
	s.Body = p.parseBlock(s)
	return s
}

func (p *Parser) parseTry() *ast.Try {
	s := &ast.Try{Base: ast.Base{Token: p.curToken}}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.finish(s)
	s.Body = p.parseBlock(s)
	for p.curTokenIs(token.EXCEPT) {
		h := &ast.ExceptHandler{Base: ast.Base{Token: p.curToken}}
		if !p.peekTokenIs(token.COLON) {
			p.nextToken()
			if h.Type = p.parseExpression(LOWEST); h.Type == nil {
				return nil
			}
			if p.peekTokenIs(token.AS) {
				p.nextToken()
				if !p.expectPeek(token.NAME) {
					return nil
				}
				h.Name = &ast.Name{Base: ast.Base{Token: p.curToken}, Value: p.curToken.Lexeme}
				p.finish(h.Name)
			}
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.finish(h)
		h.Body = p.parseBlock(h)
		s.Handlers = append(s.Handlers, h)
	}
	var ok bool
	if s.Orelse, ok = p.parseElse(); !ok {
		return nil
	}
	if p.curTokenIs(token.FINALLY) {
		if !p.expectPeek(token.COLON) {
			return nil
		}
		s.Finalbody = p.parseBlock(nil)
	}
	if len(s.Handlers) == 0 && s.Finalbody == nil {
		p.addError(diagnostics.ErrP001, s.Token, "expected 'except' or 'finally' block")
	}
	return s
}
