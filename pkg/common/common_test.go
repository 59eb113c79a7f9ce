package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromName(t *testing.T) {
	cases := map[string]Format{
		"values.json":                         FormatJSON,
		"values.YAML":                         FormatYAML,
		"dir/values.yml":                      FormatYAML,
		"cfg.toml":                            FormatTOML,
		"ctx.star":                            FormatStarlark,
		"-":                                   FormatJSON,
		"noext":                               FormatJSON,
		"https://example.com/a/ctx.yaml?v=2":  FormatYAML,
		"https://example.com/a/ctx.star#frag": FormatStarlark,
	}
	for name, want := range cases {
		assert.Equal(t, want, FormatFromName(name), name)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = ParseFormat("xml")
	assert.EqualError(t, err, `unknown context format "xml"`)
}
