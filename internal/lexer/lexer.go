package lexer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Lexer tokenizes dazzle specification source text.
//
// The grammar is line-oriented and indentation-scoped, so alongside ordinary
// tokens the lexer synthesizes TokNewline at every logical line end and
// TokIndent/TokDedent whenever a line's leading whitespace opens or closes a
// block. Comment-only and blank lines produce no tokens at all.
type Lexer struct {
	source      []byte
	pos         int
	atLineStart bool
	hadContent  bool
	indents     []int
	pending     []Token
	diagnostics []types.SpanDiagnostic
	types.Logger
}

// New returns a Lexer that tokenizes the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source:      source,
		atLineStart: true,
		indents:     []int{0},
		Logger:      types.Logger{L: logger},
	}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Diagnostics returns a copy of all collected diagnostics.
func (l *Lexer) Diagnostics() []types.SpanDiagnostic {
	return slices.Clone(l.diagnostics)
}

// Tokenize consumes all source text and returns the token stream
// along with any diagnostics generated during lexing.
func (l *Lexer) Tokenize() ([]Token, []types.SpanDiagnostic) {
	estimatedTokens := max(len(l.source)/6, 64)
	tokens := make([]Token, 0, estimatedTokens)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Log(slog.LevelDebug, "tokenization complete",
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(l.diagnostics)))
	return tokens, l.diagnostics
}

// NextToken advances the lexer and returns the next token.
// Returns TokEOF when all input is consumed.
func (l *Lexer) NextToken() Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			l.traceToken(tok)
			return tok
		}
		if l.atLineStart && l.pos < len(l.source) {
			l.startLine()
			continue
		}
		if l.pos >= len(l.source) {
			tok := l.eofStep()
			l.traceToken(tok)
			return tok
		}

		l.skipInlineSpace()
		b, ok := l.peek()
		if !ok {
			continue
		}

		switch {
		case b == '\n' || b == '\r':
			start := l.pos
			l.skipLineEnding()
			l.atLineStart = true
			l.hadContent = false
			tok := NewToken(TokNewline, l.span(start, l.pos))
			l.traceToken(tok)
			return tok
		case b == '#':
			l.skipToEOL()
			l.atLineStart = true
			l.hadContent = false
			// The comment swallows the line ending; the newline token still
			// marks the logical line end.
			tok := NewToken(TokNewline, l.span(l.pos, l.pos))
			l.traceToken(tok)
			return tok
		default:
			tok := l.scanToken()
			l.hadContent = true
			l.traceToken(tok)
			return tok
		}
	}
}

// eofStep emits the shutdown sequence at end of input: a newline for an
// unterminated final line, one dedent per open block, then EOF.
func (l *Lexer) eofStep() Token {
	span := l.span(len(l.source), len(l.source))
	if l.hadContent {
		l.hadContent = false
		return NewToken(TokNewline, span)
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return NewToken(TokDedent, span)
	}
	return NewToken(TokEOF, span)
}

// startLine measures the indentation of the next non-blank, non-comment line
// and queues indent or dedent tokens for any block level change.
func (l *Lexer) startLine() {
	for {
		start := l.pos
		width, mixed := l.measureIndent()

		b, ok := l.peek()
		if !ok {
			l.atLineStart = false
			return
		}
		if b == '\n' || b == '\r' {
			l.skipLineEnding()
			continue
		}
		if b == '#' {
			l.skipToEOL()
			continue
		}

		if mixed {
			l.emitDiagnostic(spec.CodeBadIndent, spec.SeverityWarning, l.span(start, l.pos),
				"line mixes tabs and spaces in indentation")
		}

		current := l.indents[len(l.indents)-1]
		switch {
		case width > current:
			l.indents = append(l.indents, width)
			l.pending = append(l.pending, NewToken(TokIndent, l.span(start, l.pos)))
		case width < current:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, NewToken(TokDedent, l.span(start, l.pos)))
			}
			if l.indents[len(l.indents)-1] != width {
				l.emitDiagnostic(spec.CodeBadIndent, spec.SeverityError, l.span(start, l.pos),
					"indentation does not match any open block")
				l.indents[len(l.indents)-1] = width
			}
		}

		l.atLineStart = false
		return
	}
}

// measureIndent advances over leading whitespace and returns its width.
// Tabs and spaces each count one column; mixing them within one line's
// indentation is reported.
func (l *Lexer) measureIndent() (width int, mixed bool) {
	var sawSpace, sawTab bool
	for {
		b, ok := l.peek()
		if !ok {
			break
		}
		if b == ' ' {
			sawSpace = true
		} else if b == '\t' {
			sawTab = true
		} else {
			break
		}
		l.advance()
		width++
	}
	return width, sawSpace && sawTab
}

func (l *Lexer) scanToken() Token {
	start := l.pos
	b, _ := l.peek()

	switch {
	case isIdentStart(b):
		return l.scanIdent()
	case b >= '0' && b <= '9':
		return l.scanNumber(start)
	case b == '"':
		return l.scanString()
	case b == ':':
		l.advance()
		return NewToken(TokColon, l.span(start, l.pos))
	case b == '(':
		l.advance()
		return NewToken(TokLParen, l.span(start, l.pos))
	case b == ')':
		l.advance()
		return NewToken(TokRParen, l.span(start, l.pos))
	case b == ',':
		l.advance()
		return NewToken(TokComma, l.span(start, l.pos))
	case b == '-':
		l.advance()
		if next, ok := l.peek(); ok {
			if next == '>' {
				l.advance()
				return NewToken(TokArrow, l.span(start, l.pos))
			}
			if next >= '0' && next <= '9' {
				return l.scanNumber(start)
			}
		}
		l.emitDiagnostic(spec.CodeParseError, spec.SeverityError, l.span(start, l.pos),
			"unexpected '-'")
		return NewToken(TokError, l.span(start, l.pos))
	default:
		l.advance()
		l.emitDiagnostic(spec.CodeParseError, spec.SeverityError, l.span(start, l.pos),
			fmt.Sprintf("unexpected character %q", rune(b)))
		return NewToken(TokError, l.span(start, l.pos))
	}
}

// scanIdent scans an identifier, following dots into qualified names
// (shop.core.User). Keywords are recognized only for undotted identifiers.
func (l *Lexer) scanIdent() Token {
	start := l.pos
	l.consumeIdentPart()
	dotted := false
	for {
		b, ok := l.peek()
		if !ok || b != '.' {
			break
		}
		next, ok := l.peekAt(1)
		if !ok || !isIdentStart(next) {
			break
		}
		l.advance() // '.'
		l.consumeIdentPart()
		dotted = true
	}
	span := l.span(start, l.pos)
	if !dotted {
		if kind, ok := KeywordKind(string(l.source[start:l.pos])); ok {
			return NewToken(kind, span)
		}
	}
	return NewToken(TokIdent, span)
}

func (l *Lexer) consumeIdentPart() {
	for {
		b, ok := l.peek()
		if !ok || !isIdentCont(b) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanNumber(start int) Token {
	l.consumeDigits()
	if b, ok := l.peek(); ok && b == '.' {
		if next, ok := l.peekAt(1); ok && next >= '0' && next <= '9' {
			l.advance()
			l.consumeDigits()
		}
	}
	return NewToken(TokNumber, l.span(start, l.pos))
}

func (l *Lexer) consumeDigits() {
	for {
		b, ok := l.peek()
		if !ok || b < '0' || b > '9' {
			return
		}
		l.advance()
	}
}

// scanString scans a double-quoted string with backslash escapes. The token
// span includes the quotes; unquoting happens in the parser.
func (l *Lexer) scanString() Token {
	start := l.pos
	l.advance() // opening quote
	for {
		b, ok := l.peek()
		if !ok || b == '\n' || b == '\r' {
			l.emitDiagnostic(spec.CodeUnterminated, spec.SeverityError, l.span(start, l.pos),
				"unterminated string literal")
			return NewToken(TokError, l.span(start, l.pos))
		}
		l.advance()
		if b == '\\' {
			if _, ok := l.peek(); ok {
				l.advance()
			}
			continue
		}
		if b == '"' {
			return NewToken(TokString, l.span(start, l.pos))
		}
	}
}

func (l *Lexer) emitDiagnostic(code string, severity spec.Severity, span types.Span, message string) {
	l.diagnostics = append(l.diagnostics, types.SpanDiagnostic{
		Severity: severity,
		Code:     code,
		Span:     span,
		Message:  message,
	})
}

func (l *Lexer) traceToken(tok Token) {
	if l.TraceEnabled() {
		l.Trace("token",
			slog.Int("kind", int(tok.Kind)),
			slog.Int("start", int(tok.Span.Start)),
			slog.Int("end", int(tok.Span.End)))
	}
}

func (l *Lexer) peek() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	return l.source[l.pos], true
}

func (l *Lexer) peekAt(offset int) (byte, bool) {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0, false
	}
	return l.source[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.pos >= len(l.source) {
		return 0, false
	}
	b := l.source[l.pos]
	l.pos++
	return b, true
}

func (l *Lexer) skipInlineSpace() {
	for {
		b, ok := l.peek()
		if !ok || (b != ' ' && b != '\t') {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipLineEnding() {
	b, ok := l.advance()
	if !ok {
		return
	}
	if b == '\r' {
		if next, ok := l.peek(); ok && next == '\n' {
			l.advance()
		}
	}
}

func (l *Lexer) skipToEOL() {
	for {
		b, ok := l.peek()
		if !ok {
			return
		}
		if b == '\n' || b == '\r' {
			l.skipLineEnding()
			return
		}
		l.advance()
	}
}

func (l *Lexer) span(start, end int) types.Span {
	return types.NewSpan(types.ByteOffset(start), types.ByteOffset(end))
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
