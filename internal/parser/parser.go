// Package parser implements a recursive-descent/Pratt parser that turns
// vaultjs source text into an *ast.Program. Per spec.md §4.A, parsing is
// conceptually external to the interpreter core; this package is the
// bundled reference implementation internal/interp never imports — only
// pkg/vaultjs, internal/module and cmd/vaultjs call it; internal/interp
// itself evaluates an already-parsed *ast.Program.
package parser

import (
	"fmt"

	"github.com/vaultjs/vaultjs/internal/ast"
	"github.com/vaultjs/vaultjs/internal/lexer"
)

// SyntaxError is a single parse failure with its source span.
type SyntaxError struct {
	Message string
	Span    ast.Span
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// Options configures a parse. The parser is grammar-complete and does not
// consult the feature gate; import/export declarations parse whether or
// not Module is set.
type Options struct {
	Module bool // marks the resulting Program as a module (Program.IsModule)
}

// Parser is a single-use recursive-descent/Pratt parser instance.
type Parser struct {
	l    *lexer.Lexer
	opts Options

	cur, peek lexer.Token
	errs      []*SyntaxError

	inFunction  int
	inGenerator int
	inAsync     int
	inLoop      int
	inSwitch    int
}

// New creates a Parser over src.
func New(src string, opts Options) *Parser {
	p := &Parser{l: lexer.New(src), opts: opts}
	p.next()
	p.next()
	return p
}

// Errors returns every syntax error collected during ParseProgram. A
// non-empty result means the returned *ast.Program, if any, is unreliable.
func (p *Parser) Errors() []*SyntaxError { return p.errs }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(span ast.Span, format string, args ...any) {
	p.errs = append(p.errs, &SyntaxError{Message: fmt.Sprintf(format, args...), Span: span})
}

func (p *Parser) curSpan() ast.Span {
	return ast.Span{Start: p.cur.Pos, End: p.cur.End}
}

func (p *Parser) spanFrom(start ast.Position) ast.Span {
	return ast.Span{Start: start, End: p.cur.End}
}

func (p *Parser) is(t lexer.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.Type) bool { return p.peek.Type == t }

// expect consumes the current token if it matches t, else records an error
// and leaves the cursor in place so callers can attempt recovery.
func (p *Parser) expect(t lexer.Type) lexer.Token {
	tok := p.cur
	if p.cur.Type != t {
		p.errorf(p.curSpan(), "expected %s, got %s %q", t, p.cur.Type, p.cur.Literal)
		return tok
	}
	p.next()
	return tok
}

// consumeSemicolon implements automatic semicolon insertion: an explicit
// ';' is consumed; otherwise the statement end is accepted silently when
// the next token is '}', EOF, or begins on a new source line.
func (p *Parser) consumeSemicolon() {
	if p.is(lexer.SEMI) {
		p.next()
		return
	}
	if p.is(lexer.RBRACE) || p.is(lexer.EOF) || p.cur.NewlineBefore {
		return
	}
	p.errorf(p.curSpan(), "expected ';', got %s %q", p.cur.Type, p.cur.Literal)
}

// parserState is a backtracking checkpoint used only to disambiguate
// constructs that share a token prefix, namely a parenthesized expression
// vs. an arrow function's parameter list.
type parserState struct {
	lex       lexer.State
	cur, peek lexer.Token
	errLen    int
}

func (p *Parser) snapshot() parserState {
	return parserState{p.l.Snapshot(), p.cur, p.peek, len(p.errs)}
}

func (p *Parser) restore(s parserState) {
	p.l.Restore(s.lex)
	p.cur, p.peek = s.cur, s.peek
	p.errs = p.errs[:s.errLen]
}

// ParseProgram parses a full script or module.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.cur.Pos
	prog := &ast.Program{Hashbang: p.l.Hashbang, IsModule: p.opts.Module}
	for !p.is(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	prog.Loc = p.spanFrom(start)
	return prog
}
