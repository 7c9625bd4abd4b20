package parser

import (
	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/lexer"
)

func (p *Parser) parseFunctionExpression() ast.Expression {
	start := p.cur.Pos
	p.next() // past 'function'
	generator := false
	if p.is(lexer.STAR) {
		generator = true
		p.next()
	}
	var id *ast.Identifier
	if p.is(lexer.IDENT) {
		id = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
	}
	params, body := p.parseFunctionParamsAndBody(generator, false)
	return &ast.FunctionExpression{Base: ast.Base{Loc: p.spanFrom(start)}, ID: id, Params: params, Body: body, Generator: generator}
}

// parseFunctionTail parses "(params) { body }" for a method, getter, or
// setter definition whose name has already been consumed.
func (p *Parser) parseFunctionTail(generator, async bool) *ast.FunctionExpression {
	start := p.cur.Pos
	params, body := p.parseFunctionParamsAndBody(generator, async)
	return &ast.FunctionExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Params: params, Body: body, Generator: generator, Async: async}
}

func (p *Parser) parseFunctionParamsAndBody(generator, async bool) ([]ast.Expression, *ast.BlockStatement) {
	p.expect(lexer.LPAREN)
	var params []ast.Expression
	for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
		if p.is(lexer.ELLIPSIS) {
			s := p.cur.Pos
			p.next()
			target := p.parseBindingTarget()
			params = append(params, &ast.RestElement{Base: ast.Base{Loc: p.spanFrom(s)}, Argument: target})
		} else {
			target := p.parseBindingTarget()
			if p.is(lexer.ASSIGN) {
				eq := p.cur.Pos
				p.next()
				def := p.parseAssignExpr()
				target = &ast.AssignmentPattern{Base: ast.Base{Loc: p.spanFrom(eq)}, Left: target, Right: def}
			}
			params = append(params, target)
		}
		if p.is(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)

	p.inFunction++
	if generator {
		p.inGenerator++
	}
	if async {
		p.inAsync++
	}
	savedLoop, savedSwitch := p.inLoop, p.inSwitch
	p.inLoop, p.inSwitch = 0, 0

	body := p.parseBlockStatement()

	p.inLoop, p.inSwitch = savedLoop, savedSwitch
	p.inFunction--
	if generator {
		p.inGenerator--
	}
	if async {
		p.inAsync--
	}
	return params, body
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'class'
	var id *ast.Identifier
	if p.is(lexer.IDENT) {
		id = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
	}
	super, body := p.parseClassTail()
	return &ast.ClassDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, ID: id, SuperClass: super, Body: body}
}

func (p *Parser) parseClassExpression() ast.Expression {
	start := p.cur.Pos
	p.next() // past 'class'
	var id *ast.Identifier
	if p.is(lexer.IDENT) {
		id = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
	}
	super, body := p.parseClassTail()
	return &ast.ClassExpression{Base: ast.Base{Loc: p.spanFrom(start)}, ID: id, SuperClass: super, Body: body}
}

func (p *Parser) parseClassTail() (ast.Expression, []ast.ClassMember) {
	var super ast.Expression
	if p.is(lexer.EXTENDS) {
		p.next()
		super = p.parseExpression(precCall - 1)
	}
	p.expect(lexer.LBRACE)
	var members []ast.ClassMember
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		if p.is(lexer.SEMI) {
			p.next()
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.expect(lexer.RBRACE)
	return super, members
}

func (p *Parser) parseClassMember() ast.ClassMember {
	start := p.cur.Pos
	static := false
	if p.is(lexer.STATIC) && !p.peekIs(lexer.ASSIGN) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.SEMI) {
		if p.peekIs(lexer.LBRACE) {
			p.next() // past 'static', cur == '{'
			body := p.parseBlockStatement()
			return &ast.StaticBlock{Base: ast.Base{Loc: p.spanFrom(start)}, Body: body.Body}
		}
		static = true
		p.next()
	}

	async := false
	generator := false
	kind := "method"
	if (p.is(lexer.GET) || p.is(lexer.SET)) && !p.peekIs(lexer.ASSIGN) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.SEMI) {
		kind = string(p.cur.Type)
		p.next()
	} else if p.is(lexer.ASYNC) && !p.peekIs(lexer.ASSIGN) && !p.peekIs(lexer.LPAREN) && !p.peekIs(lexer.SEMI) && !p.peek.NewlineBefore {
		async = true
		p.next()
	}
	if p.is(lexer.STAR) {
		generator = true
		p.next()
	}

	computed := false
	var key ast.Expression
	switch {
	case p.is(lexer.LBRACKET):
		computed = true
		p.next()
		key = p.parseAssignExpr()
		p.expect(lexer.RBRACKET)
	case p.is(lexer.HASH):
		p.next()
		key = &ast.PrivateIdentifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
	case p.is(lexer.STRING):
		key = &ast.StringLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: p.cur.Literal}
		p.next()
	case p.is(lexer.NUMBER):
		key = &ast.NumericLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: parseNumericText(p.cur.Literal), Raw: p.cur.Literal}
		p.next()
	default:
		key = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
	}

	if p.is(lexer.LPAREN) {
		if kind == "method" {
			if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" && !static {
				kind = "constructor"
			}
		}
		fn := p.parseFunctionTail(generator, async)
		return &ast.MethodDefinition{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: fn, Kind: kind, Static: static, Computed: computed}
	}

	var val ast.Expression
	if p.is(lexer.ASSIGN) {
		p.next()
		val = p.parseAssignExpr()
	}
	p.consumeSemicolon()
	return &ast.PropertyDefinition{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: val, Static: static, Computed: computed}
}

func (p *Parser) parseImportDeclaration() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'import'
	if p.is(lexer.STRING) {
		src := p.cur.Literal
		p.next()
		p.consumeSemicolon()
		return &ast.ImportDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Source: src}
	}

	var specs []*ast.ImportSpecifier
	if p.is(lexer.IDENT) {
		local := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		specs = append(specs, &ast.ImportSpecifier{Base: ast.Base{Loc: p.curSpan()}, Kind: "default", Local: local})
		p.next()
		if p.is(lexer.COMMA) {
			p.next()
		}
	}
	if p.is(lexer.STAR) {
		p.next()
		p.expect(lexer.AS)
		local := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		specs = append(specs, &ast.ImportSpecifier{Base: ast.Base{Loc: p.curSpan()}, Kind: "namespace", Local: local})
		p.next()
	} else if p.is(lexer.LBRACE) {
		p.next()
		for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
			sstart := p.cur.Pos
			imported := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
			p.next()
			local := imported
			if p.is(lexer.AS) {
				p.next()
				local = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
				p.next()
			}
			specs = append(specs, &ast.ImportSpecifier{Base: ast.Base{Loc: p.spanFrom(sstart)}, Kind: "named", Imported: imported, Local: local})
			if p.is(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RBRACE)
	}
	p.expect(lexer.FROM)
	src := p.cur.Literal
	p.expect(lexer.STRING)
	p.consumeSemicolon()
	return &ast.ImportDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Specifiers: specs, Source: src}
}

func (p *Parser) parseExportDeclaration() ast.Statement {
	start := p.cur.Pos
	p.next() // past 'export'
	if p.is(lexer.DEFAULT) {
		p.next()
		var decl ast.Node
		switch p.cur.Type {
		case lexer.FUNCTION:
			decl = p.parseFunctionDeclaration(false)
		case lexer.CLASS:
			decl = p.parseClassDeclaration()
		case lexer.ASYNC:
			p.next()
			decl = p.parseFunctionDeclaration(true)
		default:
			decl = p.parseAssignExpr()
			p.consumeSemicolon()
		}
		return &ast.ExportDefaultDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Declaration: decl}
	}
	if p.is(lexer.STAR) {
		p.next()
		exported := ""
		if p.is(lexer.AS) {
			p.next()
			exported = p.cur.Literal
			p.next()
		}
		p.expect(lexer.FROM)
		src := p.cur.Literal
		p.expect(lexer.STRING)
		p.consumeSemicolon()
		return &ast.ExportAllDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Source: src, Exported: exported}
	}
	if p.is(lexer.LBRACE) {
		p.next()
		var specs []*ast.ExportSpecifier
		for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
			sstart := p.cur.Pos
			local := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
			p.next()
			exported := local
			if p.is(lexer.AS) {
				p.next()
				exported = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
				p.next()
			}
			specs = append(specs, &ast.ExportSpecifier{Base: ast.Base{Loc: p.spanFrom(sstart)}, Local: local, Exported: exported})
			if p.is(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RBRACE)
		src := ""
		if p.is(lexer.FROM) {
			p.next()
			src = p.cur.Literal
			p.expect(lexer.STRING)
		}
		p.consumeSemicolon()
		return &ast.ExportNamedDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Specifiers: specs, Source: src}
	}
	var decl ast.Statement
	switch p.cur.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		decl = p.parseVarStatement()
	case lexer.FUNCTION:
		decl = p.parseFunctionDeclaration(false)
	case lexer.CLASS:
		decl = p.parseClassDeclaration()
	case lexer.ASYNC:
		p.next()
		decl = p.parseFunctionDeclaration(true)
	default:
		p.errorf(p.curSpan(), "unexpected token after export: %s", p.cur.Type)
		decl = p.parseStatement()
	}
	return &ast.ExportNamedDeclaration{Base: ast.Base{Loc: p.spanFrom(start)}, Declaration: decl}
}

// exprToPattern reinterprets an already-parsed expression as an assignment
// or arrow-parameter destructuring target, used once a construct that was
// ambiguous at parse time (parenthesized group vs. arrow params, or a plain
// assignment vs. destructuring assignment) resolves in the pattern's favor.
func (p *Parser) exprToPattern(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case *ast.ArrayExpression:
		elems := make([]ast.Expression, len(n.Elements))
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			if sp, ok := el.(*ast.SpreadElement); ok {
				elems[i] = &ast.RestElement{Base: sp.Base, Argument: p.exprToPattern(sp.Argument)}
				continue
			}
			elems[i] = p.exprToPattern(el)
		}
		return &ast.ArrayPattern{Base: n.Base, Elements: elems}
	case *ast.ObjectExpression:
		var props []*ast.ObjectPatternProperty
		var rest *ast.RestElement
		for _, pr := range n.Properties {
			if pr.Kind == "spread" {
				rest = &ast.RestElement{Base: pr.Base, Argument: p.exprToPattern(pr.Value)}
				continue
			}
			props = append(props, &ast.ObjectPatternProperty{Base: pr.Base, Key: pr.Key, Value: p.exprToPattern(pr.Value), Computed: pr.Computed, Shorthand: pr.Shorthand})
		}
		return &ast.ObjectPattern{Base: n.Base, Properties: props, Rest: rest}
	case *ast.AssignmentExpression:
		if n.Operator == "=" {
			return &ast.AssignmentPattern{Base: n.Base, Left: p.exprToPattern(n.Left), Right: n.Right}
		}
		return n
	case *ast.AssignmentPattern:
		return n
	default:
		return e
	}
}
