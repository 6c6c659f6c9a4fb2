package lexer

import (
	"testing"

	"github.com/skx/cc/source"
	"github.com/skx/cc/token"
)

func newFor(text string) *Lexer {
	fi := &source.FileInfo{Filename: "test.c", Text: text, LineStarts: []int{0}}
	return New(fi)
}

// Trivial test of the parsing of numbers.
func TestParseNumbers(t *testing.T) {
	input := `3 43 0x2a 017 3.5 2.0f 1e3`

	tests := []struct {
		expectedKind    token.Kind
		expectedLiteral string
	}{
		{token.INT_CONST, "3"},
		{token.INT_CONST, "43"},
		{token.INT_CONST, "0x2a"},
		{token.INT_CONST, "017"},
		{token.DOUBLE_CONST, "3.5"},
		{token.FLOAT_CONST, "2.0f"},
		{token.DOUBLE_CONST, "1e3"},
		{token.EOF, ""},
	}
	l := newFor(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - kind wrong, expected=%q, got=%q", i, tt.expectedKind, tok.Kind)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// Trivial test of the parsing of operators, including the
// multi-character forms.
func TestParseOperators(t *testing.T) {
	input := `+ - * / % & | ^ ~ ! << >> <= >= == != && || ++ -- += -=`

	tests := []struct {
		expectedKind token.Kind
	}{
		{token.PLUS}, {token.MINUS}, {token.STAR}, {token.SLASH}, {token.PERCENT},
		{token.AMP}, {token.PIPE}, {token.CARET}, {token.TILDE}, {token.BANG},
		{token.SHL}, {token.SHR}, {token.LE}, {token.GE}, {token.EQ}, {token.NE},
		{token.ANDAND}, {token.OROR}, {token.INC}, {token.DEC},
		{token.PLUS_ASSIGN}, {token.MINUS_ASSIGN},
		{token.EOF},
	}
	l := newFor(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - kind wrong, expected=%q, got=%q", i, tt.expectedKind, tok.Kind)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `int x return foo`

	tests := []struct {
		expectedKind token.Kind
	}{
		{token.INT}, {token.IDENT}, {token.RETURN}, {token.IDENT}, {token.EOF},
	}
	l := newFor(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.expectedKind {
			t.Fatalf("tests[%d] - kind wrong, expected=%q, got=%q", i, tt.expectedKind, tok.Kind)
		}
	}
}

func TestCharAndStringLiterals(t *testing.T) {
	input := `'a' '\n' "hello\nworld"`

	l := newFor(input)

	tok := l.NextToken()
	if tok.Kind != token.CHAR_CONST || tok.IntValue != int64('a') {
		t.Fatalf("char constant wrong: %+v", tok)
	}

	tok = l.NextToken()
	if tok.Kind != token.CHAR_CONST || tok.IntValue != int64('\n') {
		t.Fatalf("escaped char constant wrong: %+v", tok)
	}

	tok = l.NextToken()
	if tok.Kind != token.STRING_CONST || tok.Decoded != "hello\nworld" {
		t.Fatalf("string constant wrong: %+v", tok)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	input := "// comment\nint /* inline */ x;"

	tests := []token.Kind{token.INT, token.IDENT, token.SEMICOLON, token.EOF}
	l := newFor(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Kind != want {
			t.Fatalf("tests[%d] - kind wrong, expected=%q, got=%q", i, want, tok.Kind)
		}
	}
}

func TestMixedCaseLongLongSuffixIsAnError(t *testing.T) {
	l := newFor("1Ll")
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("expected 'Ll' suffix to be a lexer error, got %+v", tok)
	}
}

func TestMatchingCaseLongLongSuffixIsAccepted(t *testing.T) {
	l := newFor("1LL 1ll")
	for _, want := range []token.Kind{token.LLONG_CONST, token.LLONG_CONST} {
		tok := l.NextToken()
		if tok.Kind != want {
			t.Fatalf("expected %q, got %+v", want, tok)
		}
	}
}

func TestHexFloatingConstantIsAnError(t *testing.T) {
	l := newFor("0x1.5")
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("expected a hex floating constant to be a lexer error, got %+v", tok)
	}
}

func TestNonOctalDigitInOctalIntegerIsAnError(t *testing.T) {
	l := newFor("089")
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("expected '089' to be a lexer error, got %+v", tok)
	}
}

func TestNonOctalDigitFollowedByFloatSuffixIsNotAnError(t *testing.T) {
	// A leading-zero digit run that turns into a float (via '.' or an
	// exponent) is a decimal float, not an invalid octal literal.
	l := newFor("089.5")
	tok := l.NextToken()
	if tok.Kind != token.DOUBLE_CONST {
		t.Fatalf("expected '089.5' to lex as a double constant, got %+v", tok)
	}
}

func TestUnterminatedStringLiteralIsAnError(t *testing.T) {
	l := newFor(`"abc`)
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("expected an unterminated string to be a lexer error, got %+v", tok)
	}
}

func TestUnterminatedCharConstantIsAnError(t *testing.T) {
	l := newFor(`'a`)
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("expected an unterminated char constant to be a lexer error, got %+v", tok)
	}
}

func TestEmptyCharConstantIsAnError(t *testing.T) {
	l := newFor(`''`)
	tok := l.NextToken()
	if tok.Kind != token.ERROR {
		t.Fatalf("expected an empty char constant to be a lexer error, got %+v", tok)
	}
}

func TestLineTracking(t *testing.T) {
	input := "int a;\nint b;\n"
	fi := &source.FileInfo{Filename: "test.c", Text: input, LineStarts: []int{0}}
	l := New(fi)

	var last token.Token
	for {
		tok := l.NextToken()
		if tok.Kind == token.EOF {
			break
		}
		last = tok
	}
	if last.Line != 2 {
		t.Fatalf("expected last token on line 2, got %d", last.Line)
	}
}
