// Package parser provides dazzle module parsing into an AST.
//
// The parser is a single pass over the lexer's indentation-aware token
// stream. Parse errors are collected as diagnostics rather than causing
// immediate failure: on a local error the parser recovers by skipping to the
// next top-level declaration boundary, so one malformed construct does not
// suppress diagnostics for the rest of the file.
package parser

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/manwithacat/dazzle-sub010/internal/ast"
	"github.com/manwithacat/dazzle-sub010/internal/lexer"
	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Parser converts a token stream into an AST module with diagnostics.
type Parser struct {
	source      []byte
	lex         *lexer.Lexer
	buf         [2]lexer.Token // lookahead buffer: buf[0]=current, buf[1]=next
	depth       int            // current block nesting, tracked via indent/dedent
	diagnostics []types.SpanDiagnostic
	cfg         spec.Config
	types.Logger
}

// New returns a Parser that lexes the source and prepares for parsing.
// Pass nil for logger to disable logging.
func New(source []byte, logger *slog.Logger, cfg spec.Config) *Parser {
	var lexLogger *slog.Logger
	if logger != nil {
		lexLogger = logger.With(slog.String("component", "lexer"))
	}
	lex := lexer.New(source, lexLogger)
	p := &Parser{
		source: source,
		lex:    lex,
		cfg:    cfg,
		Logger: types.Logger{L: logger},
	}
	p.buf[0] = p.nextFromLexer()
	p.buf[1] = p.nextFromLexer()
	p.Log(slog.LevelDebug, "parser initialized")
	return p
}

// ParseModule parses a complete module file and returns its AST.
// Parse errors are collected in the module's diagnostics rather
// than causing immediate failure.
func (p *Parser) ParseModule() *ast.Module {
	start := p.currentSpan().Start

	p.skipBlankLines()

	name, err := p.parseModuleHeader()
	if err != nil {
		p.recordParseError(*err)
		p.Log(slog.LevelDebug, "failed to parse module header")
		span := types.NewSpan(start, p.currentSpan().End)
		return &ast.Module{
			Name:        ast.NewIdent("", span),
			Span:        span,
			Diagnostics: append(p.lex.Diagnostics(), p.diagnostics...),
		}
	}

	p.Log(slog.LevelDebug, "parsing module", slog.String("module", name.Name))

	module := &ast.Module{Name: name, Span: types.NewSpan(start, 0)}

	if p.check(lexer.TokIndent) {
		module.Uses = p.parseUsesBlock()
	}

	for !p.isEOF() {
		p.skipBlankLines()
		if p.isEOF() {
			break
		}
		decl, err := p.parseDecl()
		if err != nil {
			p.recordParseError(*err)
			p.recoverToDecl()
		} else if decl != nil {
			module.Decls = append(module.Decls, decl)
		}
	}

	module.Span = types.NewSpan(start, types.ByteOffset(len(p.source)))
	module.Diagnostics = append(p.lex.Diagnostics(), p.diagnostics...)

	p.Log(slog.LevelDebug, "parsing complete",
		slog.String("module", name.Name),
		slog.Int("declarations", len(module.Decls)),
		slog.Int("diagnostics", len(p.diagnostics)))

	return module
}

// parseModuleHeader parses: module <dotted-name> NEWLINE
func (p *Parser) parseModuleHeader() (ast.Ident, *types.SpanDiagnostic) {
	if _, err := p.expect(lexer.TokKwModule); err != nil {
		return ast.Ident{}, err
	}
	nameTok, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Ident{}, err
	}
	name := p.makeIdent(nameTok)
	if err := p.expectNewline(); err != nil {
		return ast.Ident{}, err
	}
	return name, nil
}

// parseUsesBlock parses the indented block of uses clauses under the module
// header. Anything other than a uses line is an error.
func (p *Parser) parseUsesBlock() []ast.UseClause {
	var uses []ast.UseClause
	p.advance() // indent
	for !p.check(lexer.TokDedent) && !p.isEOF() {
		if !p.check(lexer.TokKwUses) {
			p.recordParseError(p.makeError("expected 'uses' in module block"))
			p.skipLine()
			continue
		}
		start := p.currentSpan().Start
		p.advance()
		nameTok, err := p.expect(lexer.TokIdent)
		if err != nil {
			p.recordParseError(*err)
			p.skipLine()
			continue
		}
		if err := p.expectNewline(); err != nil {
			p.recordParseError(*err)
			p.skipLine()
			continue
		}
		uses = append(uses, ast.UseClause{
			Module: p.makeIdent(nameTok),
			Span:   types.NewSpan(start, nameTok.Span.End),
		})
	}
	if p.check(lexer.TokDedent) {
		p.advance()
	}
	return uses
}

// parseDecl dispatches on the top-level declaration keyword.
func (p *Parser) parseDecl() (ast.Decl, *types.SpanDiagnostic) {
	switch p.peek().Kind {
	case lexer.TokKwEntity:
		return p.parseEntity()
	case lexer.TokKwSurface:
		return p.parseSurface()
	case lexer.TokKwExperience:
		return p.parseExperience()
	case lexer.TokKwService:
		return p.parseService()
	case lexer.TokKwForeign:
		return p.parseForeign()
	case lexer.TokKwIntegration:
		return p.parseIntegration()
	default:
		diag := p.makeError(fmt.Sprintf("expected a declaration, found %s", p.peek().Kind.Name()))
		return nil, &diag
	}
}

// parseDeclHeader parses: <keyword already current> Name ["Label"] NEWLINE
func (p *Parser) parseDeclHeader() (name ast.Ident, label *ast.StringLit, err *types.SpanDiagnostic) {
	p.advance() // declaration keyword
	nameTok, e := p.expect(lexer.TokIdent)
	if e != nil {
		return ast.Ident{}, nil, e
	}
	name = p.makeIdent(nameTok)
	if name.IsQualified() {
		diag := p.makeErrorAt(nameTok.Span, "declaration names cannot be qualified")
		return ast.Ident{}, nil, &diag
	}
	if p.check(lexer.TokString) {
		label = p.makeString(p.advance())
	}
	if e := p.expectNewline(); e != nil {
		return ast.Ident{}, nil, e
	}
	return name, label, nil
}

func (p *Parser) parseEntity() (ast.Decl, *types.SpanDiagnostic) {
	start := p.currentSpan().Start
	name, label, err := p.parseDeclHeader()
	if err != nil {
		return nil, err
	}
	decl := &ast.EntityDecl{Name: name, Label: label}
	p.parseBody(func() {
		switch p.peek().Kind {
		case lexer.TokKwField:
			if f, ok := p.parseField(); ok {
				decl.Fields = append(decl.Fields, f)
			}
		default:
			p.unexpectedLine("entity")
		}
	})
	decl.Span = types.NewSpan(start, p.lastSpan().End)
	return decl, nil
}

func (p *Parser) parseSurface() (ast.Decl, *types.SpanDiagnostic) {
	start := p.currentSpan().Start
	name, label, err := p.parseDeclHeader()
	if err != nil {
		return nil, err
	}
	decl := &ast.SurfaceDecl{Name: name, Label: label, Mode: spec.ModeList}
	p.parseBody(func() {
		switch p.peek().Kind {
		case lexer.TokKwOver:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				decl.Over = p.makeIdent(tok)
				p.endLine()
			}
		case lexer.TokKwMode:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				if mode, ok := spec.ParseSurfaceMode(p.text(tok.Span)); ok {
					decl.Mode = mode
				} else {
					p.emitDiagnostic(spec.CodeParseError, spec.SeverityError, tok.Span,
						fmt.Sprintf("unknown surface mode %q", p.text(tok.Span)))
				}
				p.endLine()
			}
		case lexer.TokKwShow:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				decl.Shows = append(decl.Shows, ast.ShowClause{
					Field: p.makeIdent(tok),
					Span:  tok.Span,
				})
				p.endLine()
			}
		default:
			p.unexpectedLine("surface")
		}
	})
	decl.Span = types.NewSpan(start, p.lastSpan().End)
	return decl, nil
}

func (p *Parser) parseExperience() (ast.Decl, *types.SpanDiagnostic) {
	start := p.currentSpan().Start
	name, label, err := p.parseDeclHeader()
	if err != nil {
		return nil, err
	}
	decl := &ast.ExperienceDecl{Name: name, Label: label}
	p.parseBody(func() {
		switch p.peek().Kind {
		case lexer.TokKwEntry:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				entry := p.makeIdent(tok)
				decl.Entry = &entry
				p.endLine()
			}
		case lexer.TokKwStep:
			if step, ok := p.parseStep(); ok {
				decl.Steps = append(decl.Steps, step)
			}
		default:
			p.unexpectedLine("experience")
		}
	})
	decl.Span = types.NewSpan(start, p.lastSpan().End)
	return decl, nil
}

// parseStep parses: step name ["Label"] NEWLINE [INDENT goto-lines DEDENT]
func (p *Parser) parseStep() (ast.StepDecl, bool) {
	start := p.currentSpan().Start
	p.advance() // 'step'
	nameTok, err := p.expect(lexer.TokIdent)
	if err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.StepDecl{}, false
	}
	step := ast.StepDecl{Name: p.makeIdent(nameTok)}
	if p.check(lexer.TokString) {
		step.Label = p.makeString(p.advance())
	}
	if err := p.expectNewline(); err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.StepDecl{}, false
	}
	p.parseBody(func() {
		if !p.check(lexer.TokKwGoto) {
			p.unexpectedLine("step")
			return
		}
		p.advance()
		tok, err := p.expect(lexer.TokIdent)
		if err != nil {
			p.recordParseError(*err)
			p.skipLine()
			return
		}
		step.Gotos = append(step.Gotos, p.makeIdent(tok))
		p.endLine()
	})
	step.Span = types.NewSpan(start, p.lastSpan().End)
	return step, true
}

func (p *Parser) parseService() (ast.Decl, *types.SpanDiagnostic) {
	start := p.currentSpan().Start
	name, label, err := p.parseDeclHeader()
	if err != nil {
		return nil, err
	}
	decl := &ast.ServiceDecl{Name: name, Label: label}
	p.parseBody(func() {
		switch p.peek().Kind {
		case lexer.TokKwProtocol:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				proto := p.makeIdent(tok)
				decl.Protocol = &proto
				p.endLine()
			}
		case lexer.TokKwEndpoint:
			p.advance()
			if tok, err := p.expect(lexer.TokString); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				decl.Endpoint = p.makeString(tok)
				p.endLine()
			}
		case lexer.TokKwOperation:
			if op, ok := p.parseOperation(); ok {
				decl.Operations = append(decl.Operations, op)
			}
		default:
			p.unexpectedLine("service")
		}
	})
	decl.Span = types.NewSpan(start, p.lastSpan().End)
	return decl, nil
}

// parseOperation parses: operation name(param: type, ...) [-> type] NEWLINE
func (p *Parser) parseOperation() (ast.OperationDecl, bool) {
	start := p.currentSpan().Start
	p.advance() // 'operation'
	nameTok, err := p.expect(lexer.TokIdent)
	if err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.OperationDecl{}, false
	}
	op := ast.OperationDecl{Name: p.makeIdent(nameTok)}

	if _, err := p.expect(lexer.TokLParen); err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.OperationDecl{}, false
	}
	for !p.check(lexer.TokRParen) {
		paramTok, err := p.expect(lexer.TokIdent)
		if err != nil {
			p.recordParseError(*err)
			p.skipLine()
			return ast.OperationDecl{}, false
		}
		if _, err := p.expect(lexer.TokColon); err != nil {
			p.recordParseError(*err)
			p.skipLine()
			return ast.OperationDecl{}, false
		}
		typ, ok := p.parseType()
		if !ok {
			p.skipLine()
			return ast.OperationDecl{}, false
		}
		op.Params = append(op.Params, ast.ParamDecl{
			Name: p.makeIdent(paramTok),
			Type: typ,
			Span: types.NewSpan(paramTok.Span.Start, p.lastSpan().End),
		})
		if p.check(lexer.TokComma) {
			p.advance()
		}
	}
	p.advance() // ')'

	if p.check(lexer.TokArrow) {
		p.advance()
		typ, ok := p.parseType()
		if !ok {
			p.skipLine()
			return ast.OperationDecl{}, false
		}
		op.Result = &typ
	}
	if err := p.expectNewline(); err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.OperationDecl{}, false
	}
	op.Span = types.NewSpan(start, p.lastSpan().End)
	return op, true
}

func (p *Parser) parseForeign() (ast.Decl, *types.SpanDiagnostic) {
	start := p.currentSpan().Start
	name, label, err := p.parseDeclHeader()
	if err != nil {
		return nil, err
	}
	decl := &ast.ForeignDecl{Name: name, Label: label}
	p.parseBody(func() {
		switch p.peek().Kind {
		case lexer.TokKwOf:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				decl.Of = p.makeIdent(tok)
				p.endLine()
			}
		case lexer.TokKwField:
			if f, ok := p.parseField(); ok {
				decl.Fields = append(decl.Fields, f)
			}
		default:
			p.unexpectedLine("foreign")
		}
	})
	decl.Span = types.NewSpan(start, p.lastSpan().End)
	return decl, nil
}

func (p *Parser) parseIntegration() (ast.Decl, *types.SpanDiagnostic) {
	start := p.currentSpan().Start
	name, label, err := p.parseDeclHeader()
	if err != nil {
		return nil, err
	}
	decl := &ast.IntegrationDecl{Name: name, Label: label}
	p.parseBody(func() {
		switch p.peek().Kind {
		case lexer.TokKwCalls:
			p.advance()
			tok, err := p.expect(lexer.TokIdent)
			if err != nil {
				p.recordParseError(*err)
				p.skipLine()
				return
			}
			raw := p.text(tok.Span)
			service, operation := spec.SplitName(raw)
			if service == "" {
				p.emitDiagnostic(spec.CodeParseError, spec.SeverityError, tok.Span,
					"calls requires a service-qualified operation (Service.operation)")
				p.endLine()
				return
			}
			decl.Calls = &ast.CallClause{
				Service:   ast.NewIdent(service, tok.Span),
				Operation: operation,
				Span:      tok.Span,
			}
			p.endLine()
		case lexer.TokKwFeeds:
			p.advance()
			if tok, err := p.expect(lexer.TokIdent); err != nil {
				p.recordParseError(*err)
				p.skipLine()
			} else {
				feeds := p.makeIdent(tok)
				decl.Feeds = &feeds
				p.endLine()
			}
		default:
			p.unexpectedLine("integration")
		}
	})
	decl.Span = types.NewSpan(start, p.lastSpan().End)
	return decl, nil
}

// parseField parses: field name: type [required|unique|pk]* [default lit] NEWLINE
func (p *Parser) parseField() (ast.FieldDecl, bool) {
	start := p.currentSpan().Start
	p.advance() // 'field'
	nameTok, err := p.expect(lexer.TokIdent)
	if err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.FieldDecl{}, false
	}
	if _, err := p.expect(lexer.TokColon); err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.FieldDecl{}, false
	}
	typ, ok := p.parseType()
	if !ok {
		p.skipLine()
		return ast.FieldDecl{}, false
	}
	field := ast.FieldDecl{Name: p.makeIdent(nameTok), Type: typ}

	for {
		switch p.peek().Kind {
		case lexer.TokKwRequired:
			field.Required = true
			p.advance()
			continue
		case lexer.TokKwUnique:
			field.Unique = true
			p.advance()
			continue
		case lexer.TokKwPk:
			field.PrimaryKey = true
			p.advance()
			continue
		case lexer.TokKwDefault:
			p.advance()
			lit, ok := p.parseLiteral()
			if !ok {
				p.skipLine()
				return ast.FieldDecl{}, false
			}
			field.Default = &lit
			continue
		}
		break
	}

	if err := p.expectNewline(); err != nil {
		p.recordParseError(*err)
		p.skipLine()
		return ast.FieldDecl{}, false
	}
	field.Span = types.NewSpan(start, p.lastSpan().End)
	return field, true
}

// parseType parses a type expression: a scalar name, 'ref' target, or
// 'enum(member ...)'.
func (p *Parser) parseType() (ast.TypeExpr, bool) {
	start := p.currentSpan().Start
	switch p.peek().Kind {
	case lexer.TokKwRef:
		p.advance()
		tok, err := p.expect(lexer.TokIdent)
		if err != nil {
			p.recordParseError(*err)
			return ast.TypeExpr{}, false
		}
		return ast.TypeExpr{
			Kind: spec.TypeRef,
			Ref:  p.makeIdent(tok),
			Span: types.NewSpan(start, tok.Span.End),
		}, true
	case lexer.TokKwEnum:
		p.advance()
		if _, err := p.expect(lexer.TokLParen); err != nil {
			p.recordParseError(*err)
			return ast.TypeExpr{}, false
		}
		var members []ast.Ident
		for p.check(lexer.TokIdent) {
			members = append(members, p.makeIdent(p.advance()))
			if p.check(lexer.TokComma) {
				p.advance()
			}
		}
		end, err := p.expect(lexer.TokRParen)
		if err != nil {
			p.recordParseError(*err)
			return ast.TypeExpr{}, false
		}
		if len(members) == 0 {
			p.emitDiagnostic(spec.CodeParseError, spec.SeverityError,
				types.NewSpan(start, end.Span.End), "enum requires at least one member")
		}
		return ast.TypeExpr{
			Kind: spec.TypeEnum,
			Enum: members,
			Span: types.NewSpan(start, end.Span.End),
		}, true
	case lexer.TokIdent:
		tok := p.advance()
		name := p.text(tok.Span)
		scalar, ok := spec.ParseScalar(name)
		if !ok {
			p.emitDiagnostic(spec.CodeUnknownType, spec.SeverityError, tok.Span,
				fmt.Sprintf("unknown type %q", name))
			scalar = spec.ScalarText
		}
		return ast.TypeExpr{Kind: spec.TypeScalar, Scalar: scalar, Span: tok.Span}, true
	default:
		diag := p.makeError(fmt.Sprintf("expected a type, found %s", p.peek().Kind.Name()))
		p.recordParseError(diag)
		return ast.TypeExpr{}, false
	}
}

// parseLiteral parses a default-value literal.
func (p *Parser) parseLiteral() (ast.LiteralExpr, bool) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokNumber:
		p.advance()
		return ast.LiteralExpr{Kind: spec.LitNumber, Text: p.text(tok.Span), Span: tok.Span}, true
	case lexer.TokString:
		p.advance()
		return ast.LiteralExpr{Kind: spec.LitString, Text: p.unquote(tok), Span: tok.Span}, true
	case lexer.TokKwTrue, lexer.TokKwFalse:
		p.advance()
		return ast.LiteralExpr{Kind: spec.LitBool, Text: p.text(tok.Span), Span: tok.Span}, true
	case lexer.TokIdent:
		p.advance()
		return ast.LiteralExpr{Kind: spec.LitIdent, Text: p.text(tok.Span), Span: tok.Span}, true
	default:
		diag := p.makeError(fmt.Sprintf("expected a literal, found %s", tok.Kind.Name()))
		p.recordParseError(diag)
		return ast.LiteralExpr{}, false
	}
}

// parseBody consumes an optional indented block, invoking line for each
// logical line until the matching dedent. The callback must consume through
// its line's newline.
func (p *Parser) parseBody(line func()) {
	if !p.check(lexer.TokIndent) {
		return
	}
	depth := p.depth
	p.advance()
	for !p.isEOF() {
		if p.check(lexer.TokDedent) && p.depth == depth+1 {
			p.advance()
			return
		}
		line()
	}
}

// unexpectedLine reports an out-of-place line inside a declaration body and
// skips it, including any nested block it opens.
func (p *Parser) unexpectedLine(context string) {
	p.recordParseError(p.makeError(
		fmt.Sprintf("unexpected %s in %s body", p.peek().Kind.Name(), context)))
	p.skipLine()
}

// skipLine discards tokens through the current line's newline, then any
// block the line opened.
func (p *Parser) skipLine() {
	for !p.isEOF() {
		tok := p.advance()
		if tok.Kind == lexer.TokNewline {
			break
		}
		if tok.Kind == lexer.TokDedent {
			return
		}
	}
	if p.check(lexer.TokIndent) {
		depth := p.depth
		p.advance()
		for !p.isEOF() && p.depth > depth {
			p.advance()
		}
	}
}

// endLine consumes the expected newline after a completed clause, reporting
// and skipping trailing junk.
func (p *Parser) endLine() {
	if err := p.expectNewline(); err != nil {
		p.recordParseError(*err)
		p.skipLine()
	}
}

// recoverToDecl skips tokens until the next top-level declaration keyword,
// discarding everything in between.
func (p *Parser) recoverToDecl() {
	for !p.isEOF() {
		if p.depth == 0 && lexer.IsDeclKeyword(p.peek().Kind) {
			return
		}
		p.advance()
	}
}

func (p *Parser) skipBlankLines() {
	for p.check(lexer.TokNewline) {
		p.advance()
	}
}

func (p *Parser) nextFromLexer() lexer.Token {
	return p.lex.NextToken()
}

func (p *Parser) isEOF() bool {
	return p.peek().Kind == lexer.TokEOF
}

func (p *Parser) peek() lexer.Token {
	return p.buf[0]
}

func (p *Parser) advance() lexer.Token {
	tok := p.buf[0]
	p.buf[0] = p.buf[1]
	if p.buf[1].Kind != lexer.TokEOF {
		p.buf[1] = p.nextFromLexer()
	}
	switch tok.Kind {
	case lexer.TokIndent:
		p.depth++
	case lexer.TokDedent:
		p.depth--
	}
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, *types.SpanDiagnostic) {
	if p.check(kind) {
		return p.advance(), nil
	}
	diag := p.makeError(fmt.Sprintf("expected %s, found %s", kind.Name(), p.peek().Kind.Name()))
	return lexer.Token{}, &diag
}

func (p *Parser) expectNewline() *types.SpanDiagnostic {
	if p.check(lexer.TokNewline) {
		p.advance()
		return nil
	}
	if p.check(lexer.TokDedent) || p.isEOF() {
		return nil
	}
	diag := p.makeError(fmt.Sprintf("expected end of line, found %s", p.peek().Kind.Name()))
	return &diag
}

func (p *Parser) currentSpan() types.Span {
	return p.peek().Span
}

// lastSpan returns the span of the most recently consumed position.
func (p *Parser) lastSpan() types.Span {
	return types.NewSpan(p.peek().Span.Start, p.peek().Span.Start)
}

func (p *Parser) text(span types.Span) string {
	return string(p.source[span.Start:span.End])
}

func (p *Parser) makeIdent(token lexer.Token) ast.Ident {
	return ast.NewIdent(p.text(token.Span), token.Span)
}

func (p *Parser) makeString(token lexer.Token) *ast.StringLit {
	return &ast.StringLit{Value: p.unquote(token), Span: token.Span}
}

// unquote strips quotes and resolves escapes in a string token. A malformed
// escape is reported and the raw inner text kept.
func (p *Parser) unquote(token lexer.Token) string {
	raw := p.text(token.Span)
	value, err := strconv.Unquote(raw)
	if err != nil {
		p.emitDiagnostic(spec.CodeInvalidLiteral, spec.SeverityError, token.Span,
			"invalid string escape")
		if len(raw) >= 2 {
			return raw[1 : len(raw)-1]
		}
		return raw
	}
	return value
}

func (p *Parser) emitDiagnostic(code string, severity spec.Severity, span types.Span, message string) {
	if !p.cfg.ShouldReport(code) {
		return
	}
	p.diagnostics = append(p.diagnostics, types.SpanDiagnostic{
		Severity: p.cfg.Effective(code, severity),
		Code:     code,
		Span:     span,
		Message:  message,
	})
}

// recordParseError appends a structural parse error unconditionally.
// Parse errors bypass Ignore filtering because they indicate a syntax
// problem that must be reported at any strictness level.
func (p *Parser) recordParseError(diag types.SpanDiagnostic) {
	p.diagnostics = append(p.diagnostics, diag)
}

func (p *Parser) makeError(message string) types.SpanDiagnostic {
	return p.makeErrorAt(p.currentSpan(), message)
}

func (p *Parser) makeErrorAt(span types.Span, message string) types.SpanDiagnostic {
	return types.SpanDiagnostic{
		Severity: spec.SeverityError,
		Code:     spec.CodeParseError,
		Span:     span,
		Message:  message,
	}
}
