package common

import (
	"fmt"
	"path"
	"strings"
)

// Format names the encoding of a context document.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatStarlark Format = "starlark"
)

var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatStarlark}

var extensions = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".star": FormatStarlark,
}

// FormatFromName picks a format from a file name or URL path. Names with
// no known extension (including "-" for stdin) are treated as JSON.
func FormatFromName(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 && strings.Contains(name, "://") {
		name = name[:i]
	}
	if f, ok := extensions[strings.ToLower(path.Ext(name))]; ok {
		return f
	}
	return FormatJSON
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown context format %q", s)
}
