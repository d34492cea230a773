// Package spec defines the composed intermediate model produced by linking
// dazzle specification modules, along with the diagnostics and configuration
// shared by every pipeline stage.
package spec

import (
	"fmt"
	"slices"
	"strings"
)

// Severity classifies a diagnostic. Lower values are more severe.
type Severity int

const (
	// SeverityError marks a diagnostic that makes the run fail.
	SeverityError Severity = iota
	// SeverityWarning marks a diagnostic that fails the run only in strict mode.
	SeverityWarning
	// SeverityInfo marks an informational diagnostic.
	SeverityInfo
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize as
// their names in both JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Diagnostic represents an issue found during parsing, linking, or validation.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	Module   string   `json:"module,omitempty" yaml:"module,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`     // 1-based, 0 if not applicable
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"` // 1-based, 0 if not applicable
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// String returns a human-readable representation of the diagnostic.
// Format: "[severity] module:line:col: message" with location parts omitted when zero.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(d.Severity.String())
	b.WriteByte(']')
	b.WriteByte(' ')
	if d.Module != "" {
		b.WriteString(d.Module)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
			if d.Column > 0 {
				fmt.Fprintf(&b, ":%d", d.Column)
			}
		}
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	return b.String()
}

// Config controls diagnostic filtering and run failure. It is constructed
// once per invocation and passed by value; pipeline stages never mutate it.
type Config struct {
	// Strict promotes warnings to failures for exit-code purposes.
	// It does not change what is computed or reported.
	Strict bool

	// Overrides change severity for specific diagnostic codes.
	Overrides map[string]Severity

	// Ignore lists diagnostic codes to suppress entirely.
	// Supports glob patterns (e.g., "naming-*").
	Ignore []string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// StrictConfig returns a configuration where warnings fail the run.
func StrictConfig() Config {
	return Config{Strict: true}
}

// ShouldReport reports whether a diagnostic with the given code should be
// recorded under this configuration.
func (c Config) ShouldReport(code string) bool {
	return !slices.ContainsFunc(c.Ignore, func(pattern string) bool {
		return MatchGlob(pattern, code)
	})
}

// Effective returns the severity after applying per-code overrides.
func (c Config) Effective(code string, sev Severity) Severity {
	if override, ok := c.Overrides[code]; ok {
		return override
	}
	return sev
}

// Fails reports whether a diagnostic with the given severity fails the run.
// Errors always fail; warnings fail only in strict mode.
func (c Config) Fails(sev Severity) bool {
	if sev == SeverityError {
		return true
	}
	return c.Strict && sev == SeverityWarning
}

// MatchGlob performs simple glob matching with * wildcard.
func MatchGlob(pattern, s string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
