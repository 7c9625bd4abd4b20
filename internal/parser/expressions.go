package parser

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/lexer"
)

// parseExpression parses a single (no top-level comma) expression at or
// above the given precedence, using Pratt-style prefix/infix dispatch.
// Assignment and conditional are handled as right-associative infix
// operators by recursing at precedence-1 for their right-hand side.
func (p *Parser) parseExpression(prec precedence) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.peekIs(lexer.SEMI) && prec < p.peekPrecedence() {
		left = p.parseInfix(left)
	}
	return left
}

// parseAssignExpr is the common entry point for "one expression, no
// top-level comma" positions (call arguments, array/object literal
// elements, variable initializers, return/throw arguments, ...).
func (p *Parser) parseAssignExpr() ast.Expression {
	return p.parseExpression(precLowest)
}

// parseExpr parses a possibly comma-joined SequenceExpression, used at
// statement and for-loop-clause level.
func (p *Parser) parseExpr() ast.Expression {
	start := p.cur.Pos
	first := p.parseAssignExpr()
	if !p.peekIs(lexer.COMMA) {
		return first
	}
	exprs := []ast.Expression{first}
	for p.peekIs(lexer.COMMA) {
		p.next() // consume ','
		p.next() // move to next expr start
		exprs = append(exprs, p.parseAssignExpr())
	}
	return &ast.SequenceExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Expressions: exprs}
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Type {
	case lexer.IDENT, lexer.OF, lexer.GET, lexer.SET, lexer.STATIC, lexer.AS, lexer.FROM:
		return p.parseIdentifierOrArrow()
	case lexer.ASYNC:
		return p.parseAsyncExprOrIdent()
	case lexer.AWAIT:
		return p.parseAwaitExpr()
	case lexer.YIELD:
		return p.parseYieldExpr()
	case lexer.NUMBER:
		return p.parseNumericLiteral()
	case lexer.BIGINT:
		return p.parseBigIntLiteral()
	case lexer.STRING:
		return p.parseStringLiteral()
	case lexer.TRUEKW, lexer.FALSEKW:
		return p.parseBooleanLiteral()
	case lexer.NULLKW:
		return p.parseNullLiteral()
	case lexer.THIS:
		n := &ast.ThisExpression{Base: ast.Base{Loc: p.curSpan()}}
		p.next()
		return n
	case lexer.SUPER:
		n := &ast.SuperExpression{Base: ast.Base{Loc: p.curSpan()}}
		p.next()
		return n
	case lexer.TEMPLATE_FULL, lexer.TEMPLATE_HEAD:
		return p.parseTemplateLiteral()
	case lexer.LPAREN:
		return p.parseGroupOrArrow()
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	case lexer.FUNCTION:
		return p.parseFunctionExpression()
	case lexer.CLASS:
		return p.parseClassExpression()
	case lexer.NEW:
		return p.parseNewExpression()
	case lexer.IMPORT:
		return p.parseImportExpression()
	case lexer.BANG, lexer.TILDE, lexer.PLUS, lexer.MINUS, lexer.TYPEOF, lexer.VOID, lexer.DELETE:
		return p.parseUnaryExpression()
	case lexer.INC, lexer.DEC:
		return p.parseUpdatePrefix()
	case lexer.SLASH, lexer.SLASHEQ:
		return p.parseRegexLiteral()
	case lexer.HASH:
		n := &ast.PrivateIdentifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
		return n
	default:
		p.errorf(p.curSpan(), "unexpected token %s %q", p.cur.Type, p.cur.Literal)
		p.next()
		return nil
	}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	switch p.peek.Type {
	case lexer.DOT:
		p.next()
		return p.parseMember(left, false)
	case lexer.QDOT:
		p.next()
		return p.parseOptionalChain(left)
	case lexer.LBRACKET:
		p.next()
		return p.parseComputedMember(left, false)
	case lexer.LPAREN:
		p.next()
		return p.parseCallArgs(left, false)
	case lexer.TEMPLATE_FULL, lexer.TEMPLATE_HEAD:
		p.next()
		quasi := p.parseTemplateLiteral().(*ast.TemplateLiteral)
		quasi.Tagged = true
		return &ast.TaggedTemplateExpression{Base: ast.Base{Loc: p.spanFromExpr(left)}, Tag: left, Quasi: quasi}
	case lexer.INC, lexer.DEC:
		p.next()
		n := &ast.UpdateExpression{Base: ast.Base{Loc: p.spanFromExpr(left)}, Operator: string(p.cur.Type), Argument: left, Prefix: false}
		return n
	case lexer.QUESTION:
		p.next()
		return p.parseConditional(left)
	}
	if assignOps[p.peek.Type] {
		p.next()
		return p.parseAssignment(left)
	}
	if _, ok := binaryPrecedence[p.peek.Type]; ok {
		return p.parseBinaryOp(left)
	}
	return left
}

func (p *Parser) spanFromExpr(left ast.Expression) ast.Span {
	return ast.Span{Start: left.Span().Start, End: p.cur.End}
}

func (p *Parser) parseBinaryOp(left ast.Expression) ast.Expression {
	p.next() // move onto operator
	opTok := p.cur
	opPrec := binaryPrecedence[opTok.Type]
	next := opPrec
	if opTok.Type == lexer.POW {
		next = opPrec - 1 // right-associative
	}
	p.next() // move to right operand start
	right := p.parseExpression(next)
	span := ast.Span{Start: left.Span().Start, End: right.Span().End}
	if opTok.Type == lexer.ANDAND || opTok.Type == lexer.OROR || opTok.Type == lexer.QQ {
		return &ast.LogicalExpression{Base: ast.Base{Loc: span}, Operator: string(opTok.Type), Left: left, Right: right}
	}
	return &ast.BinaryExpression{Base: ast.Base{Loc: span}, Operator: string(opTok.Type), Left: left, Right: right}
}

func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	opTok := p.cur
	p.next() // move to right operand start
	right := p.parseExpression(precAssign - 1)
	target := left
	if opTok.Type == lexer.ASSIGN {
		target = p.exprToPattern(left)
	}
	span := ast.Span{Start: left.Span().Start, End: right.Span().End}
	return &ast.AssignmentExpression{Base: ast.Base{Loc: span}, Operator: string(opTok.Type), Left: target, Right: right}
}

func (p *Parser) parseConditional(test ast.Expression) ast.Expression {
	p.next() // move to consequent start
	cons := p.parseAssignExpr()
	p.expect(lexer.COLON)
	alt := p.parseExpression(precConditional - 1)
	span := ast.Span{Start: test.Span().Start, End: alt.Span().End}
	return &ast.ConditionalExpression{Base: ast.Base{Loc: span}, Test: test, Consequent: cons, Alternate: alt}
}

func (p *Parser) parseMember(left ast.Expression, optional bool) ast.Expression {
	start := left.Span().Start
	prop := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
	if p.is(lexer.HASH) {
		p.next()
		prop = &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: "#" + p.cur.Literal}
	}
	p.next()
	return &ast.MemberExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Object: left, Property: prop, Computed: false, Optional: optional}
}

func (p *Parser) parseComputedMember(left ast.Expression, optional bool) ast.Expression {
	start := left.Span().Start
	p.next() // move past '[' to expr start
	idx := p.parseAssignExpr()
	p.expect(lexer.RBRACKET)
	return &ast.MemberExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Object: left, Property: idx, Computed: true, Optional: optional}
}

func (p *Parser) parseCallArgs(callee ast.Expression, optional bool) ast.Expression {
	start := callee.Span().Start
	args := p.parseArguments()
	return &ast.CallExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Callee: callee, Arguments: args, Optional: optional}
}

func (p *Parser) parseArguments() []ast.Expression {
	var args []ast.Expression
	p.next() // move past '(' to first arg or ')'
	for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
		if p.is(lexer.ELLIPSIS) {
			start := p.cur.Pos
			p.next()
			arg := p.parseAssignExpr()
			args = append(args, &ast.SpreadElement{Base: ast.Base{Loc: p.spanFrom(start)}, Argument: arg})
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if p.peekIs(lexer.COMMA) {
			p.next()
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

// parseOptionalChain parses the remainder of an optional chain starting at
// the '?.' that follows left, continuing through further '.', '[]', and
// '()' segments without requiring another '?.' at each step (per the ES
// spec, once a chain is optional it stays optional through the rest of the
// chain expression).
func (p *Parser) parseOptionalChain(left ast.Expression) ast.Expression {
	var node ast.Expression
	switch p.cur.Type {
	case lexer.LPAREN:
		node = p.parseCallArgs(left, true)
	case lexer.LBRACKET:
		node = p.parseComputedMember(left, true)
	default:
		node = p.parseMember(left, true)
	}
	for {
		switch p.cur.Type {
		case lexer.DOT:
			p.next()
			node = p.parseMember(node, false)
		case lexer.LBRACKET:
			node = p.parseComputedMember(node, false)
		case lexer.LPAREN:
			node = p.parseCallArgs(node, false)
		case lexer.QDOT:
			p.next()
			node = p.parseOptionalChainStep(node)
		default:
			return node
		}
	}
}

func (p *Parser) parseOptionalChainStep(left ast.Expression) ast.Expression {
	switch p.cur.Type {
	case lexer.LPAREN:
		return p.parseCallArgs(left, true)
	case lexer.LBRACKET:
		return p.parseComputedMember(left, true)
	default:
		return p.parseMember(left, true)
	}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	op := p.cur
	p.next()
	arg := p.parseExpression(precUnary)
	return &ast.UnaryExpression{Base: ast.Base{Loc: p.spanFrom(op.Pos)}, Operator: string(op.Type), Argument: arg}
}

func (p *Parser) parseUpdatePrefix() ast.Expression {
	op := p.cur
	p.next()
	arg := p.parseExpression(precUnary)
	return &ast.UpdateExpression{Base: ast.Base{Loc: p.spanFrom(op.Pos)}, Operator: string(op.Type), Argument: arg, Prefix: true}
}

func (p *Parser) parseAwaitExpr() ast.Expression {
	start := p.cur.Pos
	p.next()
	arg := p.parseExpression(precUnary)
	return &ast.AwaitExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Argument: arg}
}

func (p *Parser) parseYieldExpr() ast.Expression {
	start := p.cur.Pos
	p.next()
	delegate := false
	if p.is(lexer.STAR) {
		delegate = true
		p.next()
	}
	var arg ast.Expression
	if !p.is(lexer.SEMI) && !p.is(lexer.RPAREN) && !p.is(lexer.RBRACE) &&
		!p.is(lexer.RBRACKET) && !p.is(lexer.COMMA) && !p.is(lexer.COLON) &&
		!p.is(lexer.EOF) && !p.cur.NewlineBefore {
		arg = p.parseAssignExpr()
	}
	return &ast.YieldExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Argument: arg, Delegate: delegate}
}

func (p *Parser) parseIdentifierOrArrow() ast.Expression {
	name := p.cur.Literal
	start := p.cur.Pos
	if p.peekIs(lexer.ARROW) && !p.peek.NewlineBefore {
		param := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: name}
		p.next() // cur = '=>'
		return p.finishArrow(start, []ast.Expression{param}, false)
	}
	id := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: name}
	p.next()
	return id
}

func (p *Parser) parseAsyncExprOrIdent() ast.Expression {
	start := p.cur.Pos
	// "async function" is an async function expression.
	if p.peekIs(lexer.FUNCTION) {
		p.next()
		fn := p.parseFunctionExpression().(*ast.FunctionExpression)
		fn.Async = true
		fn.Loc = p.spanFrom(start)
		return fn
	}
	// "async (" or "async ident" followed by "=>" is an async arrow;
	// attempt it with backtracking since plain `async` can also be a
	// regular identifier used as a value.
	if p.peekIs(lexer.LPAREN) || p.peekIs(lexer.IDENT) {
		snap := p.snapshot()
		p.next() // consume "async"
		params, ok := p.tryParseArrowParams()
		if ok && p.is(lexer.ARROW) {
			return p.finishArrow(start, params, true)
		}
		p.restore(snap)
	}
	id := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
	p.next()
	return id
}

// tryParseArrowParams parses either a single identifier or a parenthesized,
// possibly-destructured parameter list, leaving p.cur on the token right
// after it (expected to be "=>" on success). ok is false if the tokens
// consumed do not form a valid parameter list, in which case the caller
// must restore a snapshot taken before the call.
func (p *Parser) tryParseArrowParams() (params []ast.Expression, ok bool) {
	if p.is(lexer.IDENT) {
		param := &ast.Identifier{Base: ast.Base{Loc: p.curSpan()}, Name: p.cur.Literal}
		p.next()
		return []ast.Expression{param}, true
	}
	if !p.is(lexer.LPAREN) {
		return nil, false
	}
	beforeErrs := len(p.errs)
	list := p.parseParenExprList()
	if len(p.errs) > beforeErrs {
		return nil, false
	}
	out := make([]ast.Expression, len(list))
	for i, e := range list {
		out[i] = p.exprToPattern(e)
	}
	return out, true
}

// parseParenExprList parses "(" expr ("," expr)* ")" (each expr possibly a
// SpreadElement), leaving p.cur just past ")".
func (p *Parser) parseParenExprList() []ast.Expression {
	var list []ast.Expression
	p.next() // past '('
	for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
		if p.is(lexer.ELLIPSIS) {
			start := p.cur.Pos
			p.next()
			arg := p.parseAssignExpr()
			list = append(list, &ast.SpreadElement{Base: ast.Base{Loc: p.spanFrom(start)}, Argument: arg})
		} else {
			list = append(list, p.parseAssignExpr())
		}
		if p.peekIs(lexer.COMMA) {
			p.next()
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return list
}

// parseGroupOrArrow disambiguates a parenthesized expression from an arrow
// function's parameter list by attempting the arrow-param parse first and
// backtracking if it is not followed by "=>".
func (p *Parser) parseGroupOrArrow() ast.Expression {
	start := p.cur.Pos
	snap := p.snapshot()
	params, ok := p.tryParseArrowParams()
	if ok && p.is(lexer.ARROW) {
		return p.finishArrow(start, params, false)
	}
	p.restore(snap)

	p.next() // past '('
	if p.is(lexer.RPAREN) {
		p.errorf(p.curSpan(), "unexpected empty parentheses")
		p.next()
		return &ast.Identifier{Base: ast.Base{Loc: p.spanFrom(start)}, Name: ""}
	}
	expr := p.parseExpr()
	p.expect(lexer.RPAREN)
	return expr
}

func (p *Parser) finishArrow(start ast.Position, params []ast.Expression, async bool) ast.Expression {
	// p.cur == "=>"
	p.next() // move to body start
	if p.is(lexer.LBRACE) {
		body := p.parseBlockStatement()
		return &ast.ArrowFunctionExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Params: params, Body: body, Async: async}
	}
	body := p.parseAssignExpr()
	return &ast.ArrowFunctionExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Params: params, Body: body, Async: async, ExpressionBody: true}
}

func (p *Parser) parseNumericLiteral() ast.Expression {
	raw := p.cur.Literal
	val := parseNumericText(raw)
	n := &ast.NumericLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: val, Raw: raw}
	p.next()
	return n
}

func parseNumericText(raw string) float64 {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			uv, uerr := strconv.ParseUint(raw, 0, 64)
			if uerr == nil {
				return float64(uv)
			}
			return 0
		}
		return float64(v)
	}
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	raw := p.cur.Literal
	v := new(big.Int)
	base := 10
	digits := raw
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "0x"):
		base, digits = 16, raw[2:]
	case strings.HasPrefix(lower, "0o"):
		base, digits = 8, raw[2:]
	case strings.HasPrefix(lower, "0b"):
		base, digits = 2, raw[2:]
	}
	v.SetString(digits, base)
	n := &ast.BigIntLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: v, Raw: raw}
	p.next()
	return n
}

func (p *Parser) parseStringLiteral() ast.Expression {
	n := &ast.StringLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: p.cur.Literal}
	p.next()
	return n
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	n := &ast.BooleanLiteral{Base: ast.Base{Loc: p.curSpan()}, Value: p.cur.Type == lexer.TRUEKW}
	p.next()
	return n
}

func (p *Parser) parseNullLiteral() ast.Expression {
	n := &ast.NullLiteral{Base: ast.Base{Loc: p.curSpan()}}
	p.next()
	return n
}

func (p *Parser) parseRegexLiteral() ast.Expression {
	tok := p.l.RescanAsRegex(p.cur.Pos)
	flags := p.l.LastRegexFlags()
	n := &ast.RegexLiteral{Base: ast.Base{Loc: ast.Span{Start: tok.Pos, End: tok.End}}, Pattern: tok.Literal, Flags: flags}
	p.cur = tok
	p.next()
	return n
}

func (p *Parser) parseTemplateLiteral() ast.Expression {
	start := p.cur.Pos
	var quasis []*ast.TemplateElement
	var exprs []ast.Expression
	tail := p.cur.Type == lexer.TEMPLATE_FULL
	quasis = append(quasis, &ast.TemplateElement{Base: ast.Base{Loc: p.curSpan()}, Cooked: p.cur.Literal, Raw: p.l.LastTemplateRaw(), Tail: tail})
	for p.cur.Type == lexer.TEMPLATE_HEAD || p.cur.Type == lexer.TEMPLATE_MID {
		p.next() // move into substitution expression
		exprs = append(exprs, p.parseExpr())
		// p.cur should be '}'; resume quasi scanning right after it.
		if !p.is(lexer.RBRACE) {
			p.errorf(p.curSpan(), "expected '}' to close template substitution")
		}
		tok := p.l.ScanTemplateContinuation()
		p.cur = tok
		p.peek = p.l.NextToken()
		tail = p.cur.Type == lexer.TEMPLATE_TAIL
		quasis = append(quasis, &ast.TemplateElement{Base: ast.Base{Loc: p.curSpan()}, Cooked: p.cur.Literal, Raw: p.l.LastTemplateRaw(), Tail: tail})
	}
	end := p.curSpan()
	p.next()
	return &ast.TemplateLiteral{Base: ast.Base{Loc: ast.Span{Start: start, End: end.End}}, Quasis: quasis, Expressions: exprs}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
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
			arg := p.parseAssignExpr()
			elems = append(elems, &ast.SpreadElement{Base: ast.Base{Loc: p.spanFrom(s)}, Argument: arg})
		} else {
			elems = append(elems, p.parseAssignExpr())
		}
		if p.is(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return &ast.ArrayExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.cur.Pos
	var props []*ast.Property
	p.next() // past '{'
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		props = append(props, p.parseObjectProperty())
		if p.is(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.ObjectExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Properties: props}
}

func (p *Parser) parseObjectProperty() *ast.Property {
	start := p.cur.Pos
	if p.is(lexer.ELLIPSIS) {
		p.next()
		arg := p.parseAssignExpr()
		return &ast.Property{Base: ast.Base{Loc: p.spanFrom(start)}, Kind: "spread", Value: arg}
	}

	async := false
	generator := false
	kind := "init"
	if (p.is(lexer.GET) || p.is(lexer.SET)) && !p.peekIs(lexer.COLON) && !p.peekIs(lexer.COMMA) && !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.LPAREN) {
		kind = string(p.cur.Type)
		p.next()
	} else if p.is(lexer.ASYNC) && !p.peekIs(lexer.COLON) && !p.peekIs(lexer.COMMA) && !p.peekIs(lexer.RBRACE) && !p.peekIs(lexer.LPAREN) {
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

	if kind == "get" || kind == "set" {
		fn := p.parseFunctionTail(false, false)
		return &ast.Property{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: fn, Computed: computed, Kind: kind, Method: true}
	}
	if p.is(lexer.LPAREN) {
		fn := p.parseFunctionTail(generator, async)
		return &ast.Property{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: fn, Computed: computed, Kind: "init", Method: true}
	}
	if p.is(lexer.COLON) {
		p.next()
		val := p.parseAssignExpr()
		return &ast.Property{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: val, Computed: computed, Kind: "init"}
	}
	if p.is(lexer.ASSIGN) {
		// Shorthand with default, only valid in a destructuring context:
		// `{a = 1}`. Represented uniformly as a Property whose Value is an
		// AssignmentPattern; exprToPattern/evalObjectPattern handle it.
		eqStart := p.cur.Pos
		p.next()
		def := p.parseAssignExpr()
		ident := key.(*ast.Identifier)
		val := &ast.AssignmentPattern{Base: ast.Base{Loc: p.spanFrom(eqStart)}, Left: ident, Right: def}
		return &ast.Property{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: val, Shorthand: true, Kind: "init"}
	}
	// Shorthand `{a}`.
	ident := key.(*ast.Identifier)
	return &ast.Property{Base: ast.Base{Loc: p.spanFrom(start)}, Key: key, Value: ident, Shorthand: true, Kind: "init"}
}

func (p *Parser) parseNewExpression() ast.Expression {
	start := p.cur.Pos
	p.next() // past 'new'
	callee := p.parseExpression(precCall - 1)
	var args []ast.Expression
	if ce, ok := callee.(*ast.CallExpression); ok {
		// `new a.b(args)` parses args as part of the member/call chain;
		// unwrap so NewExpression owns the argument list directly.
		return &ast.NewExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Callee: ce.Callee, Arguments: ce.Arguments}
	}
	return &ast.NewExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Callee: callee, Arguments: args}
}

func (p *Parser) parseImportExpression() ast.Expression {
	start := p.cur.Pos
	p.next() // past 'import'
	p.expect(lexer.LPAREN)
	src := p.parseAssignExpr()
	p.expect(lexer.RPAREN)
	return &ast.ImportExpression{Base: ast.Base{Loc: p.spanFrom(start)}, Source: src}
}
