package spec_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/manwithacat/dazzle-sub010/spec"
)

func sampleModel() *spec.Model {
	b := spec.NewBuilder()
	b.AddModule(spec.ModuleInfo{Name: "shop.core", Path: "shop.core.dazzle"})
	product := b.Add(&spec.Entity{
		DeclInfo: spec.DeclInfo{Kind: spec.KindEntity, Module: "shop.core", Name: "Product", Line: 3},
		Fields: []spec.Field{
			{Name: "id", Type: spec.FieldType{Kind: spec.TypeScalar, Scalar: spec.ScalarInt}, PrimaryKey: true, Required: true},
			{Name: "status", Type: spec.FieldType{Kind: spec.TypeEnum, Enum: []string{"draft", "live"}}, Default: &spec.Literal{Kind: spec.LitIdent, Text: "draft"}},
		},
	})
	b.Add(&spec.Surface{
		DeclInfo: spec.DeclInfo{Kind: spec.KindSurface, Module: "shop.core", Name: "ProductList", Line: 7},
		Over:     spec.Ref{Raw: "Product", Target: product, State: spec.RefResolved},
		Mode:     spec.ModeList,
		Shows:    []spec.Show{{Field: "status"}},
	})
	b.AddDiagnostic(spec.Diagnostic{Severity: spec.SeverityWarning, Code: spec.CodeNaming, Module: "shop.core", Line: 5, Message: "odd name"})
	return b.Model()
}

func TestEncodeYAML(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, sampleModel().Encode(&buf, spec.FormatYAML))
	out := buf.String()

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	assert.Contains(t, out, "kind: entity")
	assert.Contains(t, out, "state: resolved")
	assert.Contains(t, out, "severity: warning")
	assert.Contains(t, out, "scalar: int")
}

func TestEncodeJSON(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, sampleModel().Encode(&buf, spec.FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &doc))

	assert.Contains(t, buf.String(), `"kind": "surface"`)
	assert.Contains(t, buf.String(), `"mode": "list"`)
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf strings.Builder
	assert.Error(t, sampleModel().Encode(&buf, spec.Format("toml")))
}

func TestEncodeDeterministic(t *testing.T) {
	var first string
	for i := range 5 {
		var buf strings.Builder
		require.NoError(t, sampleModel().Encode(&buf, spec.FormatYAML))
		if i == 0 {
			first = buf.String()
			continue
		}
		assert.Equal(t, first, buf.String())
	}
}
