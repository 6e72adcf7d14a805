// Package output renders decoded header reports for CLI commands in
// table, JSON or YAML form.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable outputs data in a formatted table.
	FormatTable Format = "table"
	// FormatJSON outputs data as JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs data as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Print writes v to w in the given format. Table rendering requires v to
// implement TableRenderer; values that do not are emitted as JSON.
func Print(w io.Writer, format Format, v any) error {
	switch format {
	case FormatTable:
		if renderer, ok := v.(TableRenderer); ok {
			return PrintTable(w, renderer)
		}
		return PrintJSON(w, v)
	case FormatJSON:
		return PrintJSON(w, v)
	case FormatYAML:
		return PrintYAML(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
