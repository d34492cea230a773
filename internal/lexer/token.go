// Package lexer provides tokenization for dazzle specification source text.
package lexer

import (
	"github.com/manwithacat/dazzle-sub010/internal/types"
)

// Token is a token with kind and source span.
type Token struct {
	Kind TokenKind
	Span types.Span
}

// NewToken creates a new token.
func NewToken(kind TokenKind, span types.Span) Token {
	return Token{Kind: kind, Span: span}
}

// TokenKind identifies a token type.
type TokenKind int

const (
	// === Special ===

	// TokError is a lexical error.
	TokError TokenKind = iota
	// TokEOF is end of input.
	TokEOF

	// === Layout ===

	// TokNewline terminates a logical line.
	TokNewline
	// TokIndent opens an indented block.
	TokIndent
	// TokDedent closes an indented block.
	TokDedent

	// === Identifiers and literals ===

	// TokIdent is an identifier, possibly dotted (shop.core.User).
	TokIdent
	// TokNumber is a decimal number, possibly negative or fractional.
	TokNumber
	// TokString is a double-quoted string literal.
	TokString

	// === Punctuation ===

	// TokColon is ':'.
	TokColon
	// TokLParen is '('.
	TokLParen
	// TokRParen is ')'.
	TokRParen
	// TokComma is ','.
	TokComma
	// TokArrow is '->'.
	TokArrow

	// === Structural keywords ===

	// TokKwModule is 'module'.
	TokKwModule
	// TokKwUses is 'uses'.
	TokKwUses
	// TokKwEntity is 'entity'.
	TokKwEntity
	// TokKwSurface is 'surface'.
	TokKwSurface
	// TokKwExperience is 'experience'.
	TokKwExperience
	// TokKwService is 'service'.
	TokKwService
	// TokKwForeign is 'foreign'.
	TokKwForeign
	// TokKwIntegration is 'integration'.
	TokKwIntegration

	// === Clause keywords ===

	// TokKwField is 'field'.
	TokKwField
	// TokKwOver is 'over'.
	TokKwOver
	// TokKwMode is 'mode'.
	TokKwMode
	// TokKwShow is 'show'.
	TokKwShow
	// TokKwEntry is 'entry'.
	TokKwEntry
	// TokKwStep is 'step'.
	TokKwStep
	// TokKwGoto is 'goto'.
	TokKwGoto
	// TokKwProtocol is 'protocol'.
	TokKwProtocol
	// TokKwEndpoint is 'endpoint'.
	TokKwEndpoint
	// TokKwOperation is 'operation'.
	TokKwOperation
	// TokKwOf is 'of'.
	TokKwOf
	// TokKwCalls is 'calls'.
	TokKwCalls
	// TokKwFeeds is 'feeds'.
	TokKwFeeds

	// === Type and modifier keywords ===

	// TokKwRef is 'ref'.
	TokKwRef
	// TokKwEnum is 'enum'.
	TokKwEnum
	// TokKwRequired is 'required'.
	TokKwRequired
	// TokKwUnique is 'unique'.
	TokKwUnique
	// TokKwPk is 'pk'.
	TokKwPk
	// TokKwDefault is 'default'.
	TokKwDefault
	// TokKwTrue is 'true'.
	TokKwTrue
	// TokKwFalse is 'false'.
	TokKwFalse
)

var tokenNames = map[TokenKind]string{
	TokError:         "error",
	TokEOF:           "end of file",
	TokNewline:       "end of line",
	TokIndent:        "indent",
	TokDedent:        "dedent",
	TokIdent:         "identifier",
	TokNumber:        "number",
	TokString:        "string",
	TokColon:         "':'",
	TokLParen:        "'('",
	TokRParen:        "')'",
	TokComma:         "','",
	TokArrow:         "'->'",
	TokKwModule:      "'module'",
	TokKwUses:        "'uses'",
	TokKwEntity:      "'entity'",
	TokKwSurface:     "'surface'",
	TokKwExperience:  "'experience'",
	TokKwService:     "'service'",
	TokKwForeign:     "'foreign'",
	TokKwIntegration: "'integration'",
	TokKwField:       "'field'",
	TokKwOver:        "'over'",
	TokKwMode:        "'mode'",
	TokKwShow:        "'show'",
	TokKwEntry:       "'entry'",
	TokKwStep:        "'step'",
	TokKwGoto:        "'goto'",
	TokKwProtocol:    "'protocol'",
	TokKwEndpoint:    "'endpoint'",
	TokKwOperation:   "'operation'",
	TokKwOf:          "'of'",
	TokKwCalls:       "'calls'",
	TokKwFeeds:       "'feeds'",
	TokKwRef:         "'ref'",
	TokKwEnum:        "'enum'",
	TokKwRequired:    "'required'",
	TokKwUnique:      "'unique'",
	TokKwPk:          "'pk'",
	TokKwDefault:     "'default'",
	TokKwTrue:        "'true'",
	TokKwFalse:       "'false'",
}

// Name returns a human-readable description of the token kind for use in
// parse error messages.
func (k TokenKind) Name() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "token"
}

var keywords = map[string]TokenKind{
	"module":      TokKwModule,
	"uses":        TokKwUses,
	"entity":      TokKwEntity,
	"surface":     TokKwSurface,
	"experience":  TokKwExperience,
	"service":     TokKwService,
	"foreign":     TokKwForeign,
	"integration": TokKwIntegration,
	"field":       TokKwField,
	"over":        TokKwOver,
	"mode":        TokKwMode,
	"show":        TokKwShow,
	"entry":       TokKwEntry,
	"step":        TokKwStep,
	"goto":        TokKwGoto,
	"protocol":    TokKwProtocol,
	"endpoint":    TokKwEndpoint,
	"operation":   TokKwOperation,
	"of":          TokKwOf,
	"calls":       TokKwCalls,
	"feeds":       TokKwFeeds,
	"ref":         TokKwRef,
	"enum":        TokKwEnum,
	"required":    TokKwRequired,
	"unique":      TokKwUnique,
	"pk":          TokKwPk,
	"default":     TokKwDefault,
	"true":        TokKwTrue,
	"false":       TokKwFalse,
}

// KeywordKind returns the keyword token kind for text, if it is a keyword.
// Dotted identifiers are never keywords.
func KeywordKind(text string) (TokenKind, bool) {
	kind, ok := keywords[text]
	return kind, ok
}

// IsDeclKeyword reports whether the kind starts a top-level declaration.
// Used by the parser for error recovery at declaration boundaries.
func IsDeclKeyword(kind TokenKind) bool {
	switch kind {
	case TokKwModule, TokKwEntity, TokKwSurface, TokKwExperience,
		TokKwService, TokKwForeign, TokKwIntegration:
		return true
	default:
		return false
	}
}
