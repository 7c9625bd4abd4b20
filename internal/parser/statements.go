package parser

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.SEMI:
		n := &ast.EmptyStatement{Base: ast.Base{Loc: p.curSpan()}}
		p.next()
		return n
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVarStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		if p.peekIs(lexer.FUNCTION) && !p.peek.NewlineBefore {
			p.next() // consume "async", cur == "function"
			return p.parseFunctionDeclaration(true)
		}
		return p.parseExpressionStatement()
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.IMPORT:
		if p.peekIs(lexer.LPAREN) {
			return p.parseExpressionStatement()
		}
		return p.parseImportDeclaration()
	case lexer.EXPORT:
		return p.parseExportDeclaration()
	case lexer.IDENT:
		if p.peekIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.cur.Pos
	p.expect(lexer.LBRACE)
	var body []ast.Statement
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.BlockStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Body: body}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur.Pos
	expr := p.parseExpr()
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Expr: expr}
}

func (p *Parser) parseVarStatement() ast.Statement {
	start := p.cur.Pos
	kind := string(p.cur.Type)
	p.next() // past var/let/const
	var decls []*ast.VarDeclarator
	for {
		dstart := p.cur.Pos
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.is(lexer.ASSIGN) {
			p.next()
			init = p.parseAssignExpr()
		}
		decls = append(decls, &ast.VarDeclarator{Base: ast.Base{Loc: p.spanFrom(dstart)}, ID: target, Init: init})
		if p.is(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.consumeSemicolon()
	return &ast.VarDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Kind: kind, Declarations: decls}
}

// parseBindingTarget parses an identifier or destructuring pattern used as
// a variable declarator, parameter, or catch binding.
func (p *Parser) parseBindingTarget() ast.Expression {
	switch p.cur.Type {
	case lexer.LBRACKET:
		return p.parseArrayPattern()
	case lexer.LBRACE:
		return p.parseObjectPattern()
	default:
		id := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
		return id
	}
}

func (p *Parser) parseArrayPattern() ast.Expression {
	start := p.cur.Pos
	var elems []ast.Expression
	p.next() // past '['
	for !p.is(lexer.RBRACKET) && !p.is(lexer.EOF) {
		if p.is(lexer.COMMA) {
			elems = append(elems, nil)
			p.next()
			continue
		}
		if p.is(lexer.ELLIPSIS) {
			s := p.cur.Pos
			p.next()
			arg := p.parseBindingTarget()
			elems = append(elems, &ast.RestElement{Base: ast.Base{Loc: p.spanFrom(s)}, Argument: arg})
		} else {
			target := p.parseBindingTarget()
			if p.is(lexer.ASSIGN) {
				eq := p.cur.Pos
				p.next()
				def := p.parseAssignExpr()
				target = &ast.AssignmentPattern{Base: ast.Base{Loc: p.spanFrom(eq)}, Left: target, Right: def}
			}
			elems = append(elems, target)
		}
		if p.is(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return &ast.ArrayPattern{Base: ast.Base{Loc: p.spanFrom(start)}, Elements: elems}
}

func (p *Parser) parseObjectPattern() ast.Expression {
	start := p.cur.Pos
	var props []*ast.ObjectPatternProperty
	var rest *ast.RestElement
	p.next() // past '{'
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		if p.is(lexer.ELLIPSIS) {
			s := p.cur.Pos
			p.next()
			id := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
			p.next()
			rest = &ast.RestElement{Base: ast.Base{Loc: p.spanFrom(s)}, Argument: id}
			break
		}
		pstart := p.cur.Pos
		computed := false
		var key ast.Expression
		if p.is(lexer.LBRACKET) {
			computed = true
			p.next()
			key = p.parseAssignExpr()
			p.expect(lexer.RBRACKET)
		} else if p.is(lexer.STRING) {
			key = &ast.StringLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: p.cur.Literal}
			p.next()
		} else if p.is(lexer.NUMBER) {
			key = &ast.NumericLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: parseNumericText(p.cur.Literal), Raw: p.cur.Literal}
			p.next()
		} else {
			key = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
			p.next()
		}
		var value ast.Expression
		shorthand := false
		if p.is(lexer.COLON) {
			p.next()
			value = p.parseBindingTarget()
		} else {
			shorthand = true
			value = key
		}
		if p.is(lexer.ASSIGN) {
			eq := p.cur.Pos
			p.next()
			def := p.parseAssignExpr()
			value = &ast.AssignmentPattern{Base: ast.Base{Loc: p.spanFrom(eq)}, Left: value, Right: def}
		}
		props = append(props, &ast.ObjectPatternProperty{Base: ast.Base{Loc: p.spanFrom(pstart)}, Key: key, Value: value, Computed: computed, Shorthand: shorthand})
		if p.is(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.ObjectPattern{Base: ast.Base{Loc: p.spanFrom(start)}, Properties: props, Rest: rest}
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'if'
	p.expect(lexer.LPAREN)
	test := p.parseExpr()
	p.expect(lexer.RPAREN)
	cons := p.parseStatement()
	var alt ast.Statement
	if p.is(lexer.ELSE) {
		p.next()
		alt = p.parseStatement()
	}
	return &ast.IfStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'while'
	p.expect(lexer.LPAREN)
	test := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	return &ast.WhileStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'do'
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	p.expect(lexer.WHILE)
	p.expect(lexer.LPAREN)
	test := p.parseExpr()
	p.expect(lexer.RPAREN)
	if p.is(lexer.SEMI) {
		p.next()
	}
	return &ast.DoWhileStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Body: body, Test: test}
}

// parseForStatement handles all four for-loop forms: classic three-clause,
// for-in, for-of, and for-await-of, disambiguating after parsing the init
// clause by checking for the "in"/"of" keyword.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'for'
	await := false
	if p.is(lexer.AWAIT) {
		await = true
		p.next()
	}
	p.expect(lexer.LPAREN)

	var init ast.Node
	if p.is(lexer.VAR) || p.is(lexer.LET) || p.is(lexer.CONST) {
		dstart := p.cur.Pos
		kind := string(p.cur.Type)
		p.next()
		target := p.parseBindingTarget()
		if p.is(lexer.IN) || p.is(lexer.OF) {
			decl := &ast.VarDeclaration{Base: ast.Base{Loc: p.spanFrom(dstart)}, Kind: kind, Declarations: []*ast.VarDeclarator{{Base: ast.Base{Loc: target.Span()}, ID: target}}}
			return p.finishForInOf(start, decl, await)
		}
		var declInit ast.Expression
		if p.is(lexer.ASSIGN) {
			p.next()
			declInit = p.parseAssignExpr()
		}
		decls := []*ast.VarDeclarator{{Base: ast.Base{Loc: p.spanFrom(dstart)}, ID: target, Init: declInit}}
		for p.is(lexer.COMMA) {
			p.next()
			ds := p.cur.Pos
			t := p.parseBindingTarget()
			var di ast.Expression
			if p.is(lexer.ASSIGN) {
				p.next()
				di = p.parseAssignExpr()
			}
			decls = append(decls, &ast.VarDeclarator{Base: ast.Base{Loc: p.spanFrom(ds)}, ID: t, Init: di})
		}
		init = &ast.VarDeclaration{Base: ast.Base{Loc: p.spanFrom(dstart)}, Kind: kind, Declarations: decls}
	} else if !p.is(lexer.SEMI) {
		expr := p.parseExpr()
		if p.is(lexer.IN) || p.is(lexer.OF) {
			return p.finishForInOf(start, p.exprToPattern(expr), await)
		}
		init = expr
	}

	p.expect(lexer.SEMI)
	var test ast.Expression
	if !p.is(lexer.SEMI) {
		test = p.parseExpr()
	}
	p.expect(lexer.SEMI)
	var update ast.Expression
	if !p.is(lexer.RPAREN) {
		update = p.parseExpr()
	}
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	return &ast.ForStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Init: init, Test: test, Update: update, Body: body}
}

func (p *Parser) finishForInOf(start ast.Position, left ast.Node, await bool) ast.Statement {
	isOf := p.is(lexer.OF)
	p.next() // past 'in'/'of'
	right := p.parseAssignExpr()
	p.expect(lexer.RPAREN)
	p.inLoop++
	body := p.parseStatement()
	p.inLoop--
	if isOf {
		return &ast.ForOfStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Left: left, Right: right, Body: body, Await: await}
	}
	return &ast.ForInStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Left: left, Right: right, Body: body}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'break'
	label := ""
	if p.is(lexer.IDENT) && !p.cur.NewlineBefore {
		label = p.cur.Literal
		p.next()
	}
	p.consumeSemicolon()
	return &ast.BreakStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Label: label}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'continue'
	label := ""
	if p.is(lexer.IDENT) && !p.cur.NewlineBefore {
		label = p.cur.Literal
		p.next()
	}
	p.consumeSemicolon()
	return &ast.ContinueStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Label: label}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'return'
	var arg ast.Expression
	if !p.is(lexer.SEMI) && !p.is(lexer.RBRACE) && !p.is(lexer.EOF) && !p.cur.NewlineBefore {
		arg = p.parseExpr()
	}
	p.consumeSemicolon()
	return &ast.ReturnStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Argument: arg}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'throw'
	if p.cur.NewlineBefore {
		p.errorf(p.curSpan(), "illegal newline after throw")
	}
	arg := p.parseExpr()
	p.consumeSemicolon()
	return &ast.ThrowStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Argument: arg}
}

func (p *Parser) parseTryStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'try'
	block := p.parseBlockStatement()
	var handler *ast.CatchClause
	var finalizer *ast.BlockStatement
	if p.is(lexer.CATCH) {
		cstart := p.cur.Pos
		p.next()
		var param ast.Expression
		if p.is(lexer.LPAREN) {
			p.next()
			param = p.parseBindingTarget()
			p.expect(lexer.RPAREN)
		}
		body := p.parseBlockStatement()
		handler = &ast.CatchClause{Base: ast.Base{Loc: p.spanFrom(cstart)}, Param: param, Body: body}
	}
	if p.is(lexer.FINALLY) {
		p.next()
		finalizer = p.parseBlockStatement()
	}
	return &ast.TryStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Block: block, Handler: handler, Finalizer: finalizer}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'switch'
	p.expect(lexer.LPAREN)
	disc := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	p.inSwitch++
	var cases []*ast.SwitchCase
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		cstart := p.cur.Pos
		var test ast.Expression
		if p.is(lexer.CASE) {
			p.next()
			test = p.parseExpr()
		} else {
			p.expect(lexer.DEFAULT)
		}
		p.expect(lexer.COLON)
		var body []ast.Statement
		for !p.is(lexer.CASE) && !p.is(lexer.DEFAULT) && !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
			body = append(body, p.parseStatement())
		}
		cases = append(cases, &ast.SwitchCase{Base: ast.Base{Loc: p.spanFrom(cstart)}, Test: test, Consequent: body})
	}
	p.inSwitch--
	p.expect(lexer.RBRACE)
	return &ast.SwitchStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Discriminant: disc, Cases: cases}
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	start := p.cur.Pos
	label := p.cur.Literal
	p.next() // past identifier
	p.next() // past ':'
	body := p.parseStatement()
	return &ast.LabeledStatement{Base: ast.Base{Loc: p.spanFrom(start)}, Label: label, Body: body}
}

func (p *Parser) parseFunctionDeclaration(async bool) ast.Statement {
	start := p.cur.Pos
	p.next() // past 'function'
	generator := false
	if p.is(lexer.STAR) {
		generator = true
		p.next()
	}
	id := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
	p.next()
	params, body := p.parseFunctionParamsAndBody(generator, async)
	return &ast.FunctionDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, ID: id, Params: params, Body: body, Generator: generator, Async: async}
}
