package spec

// Diagnostic codes emitted by the parser, lowering, linker, and validator
// phases. Centralizing these prevents silent breakage from typos in string
// literals.

// Parser diagnostic codes.
const (
	CodeParseError     = "parse-error"
	CodeBadIndent      = "bad-indentation"
	CodeInvalidLiteral = "invalid-literal"
	CodeUnknownType    = "unknown-type"
	CodeUnterminated   = "unterminated-string"
)

// Lowering diagnostic codes.
const (
	CodeDuplicateUses   = "duplicate-uses"
	CodeDuplicateModule = "duplicate-module"
)

// Module graph diagnostic codes.
const (
	CodeMissingModule   = "missing-module"
	CodeDependencyCycle = "dependency-cycle"
)

// Linker diagnostic codes.
const (
	CodeDuplicateDecl = "duplicate-declaration"
	CodeUnresolvedRef = "unresolved-reference"
	CodeAmbiguousRef  = "ambiguous-reference"
	CodeRefKind       = "reference-kind-mismatch"
	CodeUnknownOp     = "unknown-operation"
	CodeUnknownField  = "unknown-field"
)

// Validator diagnostic codes.
const (
	CodeNaming           = "naming-convention"
	CodeNoEntry          = "experience-no-entry"
	CodeUnknownStep      = "unknown-step"
	CodeUnreachableStep  = "unreachable-step"
	CodeMissingBinding   = "missing-binding"
	CodeDefaultMismatch  = "default-type-mismatch"
	CodeDefaultNotMember = "default-not-member"
	CodeRefDefault       = "ref-default"
	CodeMultiplePrimary  = "multiple-primary-keys"
	CodePrimaryOptional  = "primary-key-optional"
)

// CodeInfo describes a diagnostic code and the phase that emits it.
type CodeInfo struct {
	Code  string
	Phase string
}

// AllCodes returns all known diagnostic codes grouped by phase.
func AllCodes() []CodeInfo {
	return []CodeInfo{
		// Parser
		{Code: CodeParseError, Phase: "parser"},
		{Code: CodeBadIndent, Phase: "parser"},
		{Code: CodeInvalidLiteral, Phase: "parser"},
		{Code: CodeUnknownType, Phase: "parser"},
		{Code: CodeUnterminated, Phase: "parser"},
		// Lowering
		{Code: CodeDuplicateUses, Phase: "lowering"},
		{Code: CodeDuplicateModule, Phase: "lowering"},
		// Graph
		{Code: CodeMissingModule, Phase: "graph"},
		{Code: CodeDependencyCycle, Phase: "graph"},
		// Linker
		{Code: CodeDuplicateDecl, Phase: "linker"},
		{Code: CodeUnresolvedRef, Phase: "linker"},
		{Code: CodeAmbiguousRef, Phase: "linker"},
		{Code: CodeRefKind, Phase: "linker"},
		{Code: CodeUnknownOp, Phase: "linker"},
		{Code: CodeUnknownField, Phase: "linker"},
		// Validator
		{Code: CodeNaming, Phase: "validator"},
		{Code: CodeNoEntry, Phase: "validator"},
		{Code: CodeUnknownStep, Phase: "validator"},
		{Code: CodeUnreachableStep, Phase: "validator"},
		{Code: CodeMissingBinding, Phase: "validator"},
		{Code: CodeDefaultMismatch, Phase: "validator"},
		{Code: CodeDefaultNotMember, Phase: "validator"},
		{Code: CodeRefDefault, Phase: "validator"},
		{Code: CodeMultiplePrimary, Phase: "validator"},
		{Code: CodePrimaryOptional, Phase: "validator"},
	}
}
