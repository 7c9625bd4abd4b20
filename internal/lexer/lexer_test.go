package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 1;
	x = x + 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    Type
	}{
		{"let", LET},
		{"x", IDENT},
		{"=", ASSIGN},
		{"1", NUMBER},
		{";", SEMI},
		{"x", IDENT},
		{"=", ASSIGN},
		{"x", IDENT},
		{"+", PLUS},
		{"10", NUMBER},
		{";", SEMI},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `function return if else for while do break continue
		switch case default try catch finally throw new delete
		typeof void instanceof in of this super class extends
		static get set async await yield import export from as
		null true false`

	tests := []Type{
		FUNCTION, RETURN, IF, ELSE, FOR, WHILE, DO, BREAK, CONTINUE,
		SWITCH, CASE, DEFAULT, TRY, CATCH, FINALLY, THROW, NEW, DELETE,
		TYPEOF, VOID, INSTOF, IN, OF, THIS, SUPER, CLASS, EXTENDS,
		STATIC, GET, SET, ASYNC, AWAIT, YIELD, IMPORT, EXPORT, FROM, AS,
		NULLKW, TRUEKW, FALSEKW,
		EOF,
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, expected, tok.Type, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `=== !== == != <= >= << >> >>> ** ++ -- ?? ?. => &&= ||= ??=`

	tests := []struct {
		expectedLiteral string
		expectedType    Type
	}{
		{"===", SEQ},
		{"!==", SNE},
		{"==", EQ},
		{"!=", NE},
		{"<=", LE},
		{">=", GE},
		{"<<", SHL},
		{">>", SHR},
		{">>>", USHR},
		{"**", POW},
		{"++", INC},
		{"--", DEC},
		{"??", QQ},
		{"?.", QDOT},
		{"=>", ARROW},
		{"&&=", ANDEQ2},
		{"||=", OREQ2},
		{"??=", QQEQ},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTemplateLiteralNoSubstitution(t *testing.T) {
	l := New("`hello world`")
	tok := l.NextToken()
	if tok.Type != TEMPLATE_FULL {
		t.Fatalf("expected TEMPLATE_FULL, got %q", tok.Type)
	}
	if tok.Literal != "hello world" {
		t.Fatalf("expected cooked text %q, got %q", "hello world", tok.Literal)
	}
}

func TestTemplateLiteralHeadAndTail(t *testing.T) {
	l := New("`a${")
	tok := l.NextToken()
	if tok.Type != TEMPLATE_HEAD {
		t.Fatalf("expected TEMPLATE_HEAD, got %q", tok.Type)
	}
	if tok.Literal != "a" {
		t.Fatalf("expected cooked text %q, got %q", "a", tok.Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc"`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %q", tok.Type)
	}
	if tok.Literal != "a\nb\tc" {
		t.Fatalf("expected escaped literal, got %q", tok.Literal)
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input        string
		expectedType Type
		expectedLit  string
	}{
		{"42", NUMBER, "42"},
		{"3.14", NUMBER, "3.14"},
		{"1e10", NUMBER, "1e10"},
		{"0xFF", NUMBER, "0xFF"},
		{"0b101", NUMBER, "0b101"},
		{"1_000", NUMBER, "1000"},
		{"9007199254740993n", BIGINT, "9007199254740993"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("input %q: expected type %q, got %q", tt.input, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLit {
			t.Fatalf("input %q: expected literal %q, got %q", tt.input, tt.expectedLit, tok.Literal)
		}
	}
}

func TestPrivateIdentifier(t *testing.T) {
	l := New("#count")
	tok := l.NextToken()
	if tok.Type != HASH {
		t.Fatalf("expected HASH, got %q", tok.Type)
	}
	if tok.Literal != "count" {
		t.Fatalf("expected literal %q, got %q", "count", tok.Literal)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "// a line comment\nx /* block\ncomment */ + 1"
	tests := []Type{IDENT, PLUS, NUMBER, EOF}
	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, expected, tok.Type)
		}
	}
}

func TestHashbangIsExcludedFromTokenStream(t *testing.T) {
	l := New("#!/usr/bin/env vaultjs\nlet x = 1;")
	if l.Hashbang != "/usr/bin/env vaultjs" {
		t.Fatalf("expected hashbang to be captured, got %q", l.Hashbang)
	}
	tok := l.NextToken()
	if tok.Type != LET {
		t.Fatalf("expected first token to be LET, got %q", tok.Type)
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := New("abc def")
	first := l.NextToken()
	if first.Literal != "abc" {
		t.Fatalf("expected abc, got %q", first.Literal)
	}
	snap := l.Snapshot()
	second := l.NextToken()
	if second.Literal != "def" {
		t.Fatalf("expected def, got %q", second.Literal)
	}
	l.Restore(snap)
	replayed := l.NextToken()
	if replayed.Literal != "def" {
		t.Fatalf("expected replayed def, got %q", replayed.Literal)
	}
}

func TestRescanAsRegex(t *testing.T) {
	l := New("/abc/gi")
	start := l.here()
	div := l.NextToken()
	if div.Type != SLASH {
		t.Fatalf("expected SLASH as the initial tokenization, got %q", div.Type)
	}
	tok := l.RescanAsRegex(start)
	if tok.Type != REGEX {
		t.Fatalf("expected REGEX, got %q", tok.Type)
	}
	if tok.Literal != "abc" {
		t.Fatalf("expected pattern %q, got %q", "abc", tok.Literal)
	}
	if l.LastRegexFlags() != "gi" {
		t.Fatalf("expected flags %q, got %q", "gi", l.LastRegexFlags())
	}
}

func TestNewlineBeforeFlag(t *testing.T) {
	l := New("a\nb")
	first := l.NextToken()
	if first.NewlineBefore {
		t.Fatal("first token should not report a newline before it")
	}
	second := l.NextToken()
	if !second.NewlineBefore {
		t.Fatal("second token should report the newline that precedes it")
	}
}
