package dazzle

import "github.com/manwithacat/dazzle-sub010/spec"

// Type aliases for the public API - all model types come from the spec
// subpackage.

// Model is the fully linked intermediate representation.
type Model = spec.Model

// Entity is a data entity with ordered fields.
type Entity = spec.Entity

// Surface is a UI-facing view over an entity.
type Surface = spec.Surface

// Experience is a workflow with named steps and transitions.
type Experience = spec.Experience

// Service is an external-service binding with ordered operations.
type Service = spec.Service

// ForeignModel is a data shape owned by an external service.
type ForeignModel = spec.ForeignModel

// Integration binds a service operation to the entity it feeds.
type Integration = spec.Integration

// Decl is the closed variant over declaration kinds.
type Decl = spec.Decl

// Kind identifies a declaration's construct kind.
type Kind = spec.Kind

// Ref is a mention of another declaration by name.
type Ref = spec.Ref

// Field is one ordered field of an entity or foreign shape.
type Field = spec.Field

// Diagnostic represents a parse, link, or validation issue.
type Diagnostic = spec.Diagnostic

// Severity for diagnostics.
type Severity = spec.Severity

// Config controls diagnostic reporting.
type Config = spec.Config

// GraphError reports a module graph that admits no processing order.
type GraphError = spec.GraphError
