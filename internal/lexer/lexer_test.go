package lexer

import (
	"testing"

	"github.com/manwithacat/dazzle-sub010/internal/testutil"
	"github.com/manwithacat/dazzle-sub010/spec"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, got []TokenKind, want ...TokenKind) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count mismatch\n  got:  %v\n  want: %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i].Name(), want[i].Name())
		}
	}
}

func TestTokenizeModuleHeader(t *testing.T) {
	l := New([]byte("module shop.catalog\n"), nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens), TokKwModule, TokIdent, TokNewline, TokEOF)
}

func TestDottedIdentIsNotKeyword(t *testing.T) {
	l := New([]byte("module.thing\n"), nil)
	tokens, _ := l.Tokenize()

	assertKinds(t, kinds(tokens), TokIdent, TokNewline, TokEOF)
	testutil.Equal(t, "module.thing", string([]byte("module.thing\n")[tokens[0].Span.Start:tokens[0].Span.End]), "ident text")
}

func TestIndentDedent(t *testing.T) {
	source := []byte("entity User\n    field id: int\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens),
		TokKwEntity, TokIdent, TokNewline,
		TokIndent, TokKwField, TokIdent, TokColon, TokIdent, TokNewline,
		TokDedent, TokEOF)
}

func TestNestedDedentsAtEOF(t *testing.T) {
	source := []byte("experience Checkout\n    step pay\n        goto done\n    step done\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens),
		TokKwExperience, TokIdent, TokNewline,
		TokIndent, TokKwStep, TokIdent, TokNewline,
		TokIndent, TokKwGoto, TokIdent, TokNewline,
		TokDedent, TokKwStep, TokIdent, TokNewline,
		TokDedent, TokEOF)
}

func TestMissingFinalNewline(t *testing.T) {
	l := New([]byte("module shop"), nil)
	tokens, _ := l.Tokenize()

	assertKinds(t, kinds(tokens), TokKwModule, TokIdent, TokNewline, TokEOF)
}

func TestBlankAndCommentLinesProduceNoTokens(t *testing.T) {
	source := []byte("# header comment\n\nmodule shop\n\n# trailing\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens), TokKwModule, TokIdent, TokNewline, TokEOF)
}

func TestCommentAfterContent(t *testing.T) {
	source := []byte("module shop  # the shop app\nentity User\n")
	l := New(source, nil)
	tokens, _ := l.Tokenize()

	assertKinds(t, kinds(tokens),
		TokKwModule, TokIdent, TokNewline,
		TokKwEntity, TokIdent, TokNewline, TokEOF)
}

func TestPunctuationAndArrow(t *testing.T) {
	source := []byte("operation charge(amount: decimal) -> bool\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens),
		TokKwOperation, TokIdent, TokLParen, TokIdent, TokColon, TokIdent, TokRParen,
		TokArrow, TokIdent, TokNewline, TokEOF)
}

func TestNumbers(t *testing.T) {
	source := []byte("field qty: int default -3.25\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens),
		TokKwField, TokIdent, TokColon, TokIdent, TokKwDefault, TokNumber, TokNewline, TokEOF)
	testutil.Equal(t, "-3.25", string(source[tokens[5].Span.Start:tokens[5].Span.End]), "number text")
}

func TestStringLiteral(t *testing.T) {
	source := []byte(`entity User "A person"` + "\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens), TokKwEntity, TokIdent, TokString, TokNewline, TokEOF)
	testutil.Equal(t, `"A person"`, string(source[tokens[2].Span.Start:tokens[2].Span.End]), "string span includes quotes")
}

func TestUnterminatedString(t *testing.T) {
	l := New([]byte(`entity User "oops`+"\n"), nil)
	_, diags := l.Tokenize()

	if len(diags) == 0 {
		t.Fatal("expected a diagnostic")
	}
	testutil.Equal(t, spec.CodeUnterminated, diags[0].Code, "diagnostic code")
	testutil.Equal(t, spec.SeverityError, diags[0].Severity, "severity")
}

func TestMixedIndentationWarns(t *testing.T) {
	source := []byte("entity User\n \tfield id: int\n")
	l := New(source, nil)
	_, diags := l.Tokenize()

	if len(diags) == 0 {
		t.Fatal("expected a diagnostic")
	}
	testutil.Equal(t, spec.CodeBadIndent, diags[0].Code, "diagnostic code")
	testutil.Equal(t, spec.SeverityWarning, diags[0].Severity, "severity")
}

func TestUnalignedDedentReported(t *testing.T) {
	source := []byte("entity User\n    field id: int\n  field x: int\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	if len(diags) == 0 {
		t.Fatal("expected a diagnostic")
	}
	testutil.Equal(t, spec.CodeBadIndent, diags[0].Code, "diagnostic code")
	testutil.Equal(t, spec.SeverityError, diags[0].Severity, "severity")
	// The stream stays balanced: every indent has a dedent before EOF.
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case TokIndent:
			depth++
		case TokDedent:
			depth--
		}
	}
	testutil.Equal(t, 0, depth, "indent/dedent balance")
}

func TestUnexpectedCharacter(t *testing.T) {
	l := New([]byte("entity User @\n"), nil)
	tokens, diags := l.Tokenize()

	if len(diags) == 0 {
		t.Fatal("expected a diagnostic")
	}
	testutil.Equal(t, spec.CodeParseError, diags[0].Code, "diagnostic code")
	testutil.Equal(t, TokError, tokens[2].Kind, "error token emitted")
}

func TestCRLFLineEndings(t *testing.T) {
	source := []byte("module shop\r\nentity User\r\n")
	l := New(source, nil)
	tokens, diags := l.Tokenize()

	testutil.Len(t, diags, 0, "diagnostics")
	assertKinds(t, kinds(tokens),
		TokKwModule, TokIdent, TokNewline,
		TokKwEntity, TokIdent, TokNewline, TokEOF)
}
