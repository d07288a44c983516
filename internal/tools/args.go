package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// stringArg returns the named argument as a string, or "" when absent or of
// another type.
func stringArg(request mcp.CallToolRequest, name string) string {
	if v, ok := request.GetArguments()[name].(string); ok {
		return v
	}
	return ""
}

// requireString returns the named string argument, or an error when it is
// missing or empty.
func requireString(request mcp.CallToolRequest, name string) (string, error) {
	v := stringArg(request, name)
	if v == "" {
		return "", fmt.Errorf("missing required parameter: %s", name)
	}
	return v, nil
}

// intArg returns the named argument as an int. JSON numbers decode as
// float64, but integer-typed values are tolerated too.
func intArg(request mcp.CallToolRequest, name string) (int, bool) {
	switch v := request.GetArguments()[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// floatArg returns the named argument as a float64.
func floatArg(request mcp.CallToolRequest, name string) (float64, bool) {
	switch v := request.GetArguments()[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// stringSliceArg returns the named argument as a slice of strings,
// tolerating a bare string as a one-element slice. Non-string elements
// are skipped.
func stringSliceArg(request mcp.CallToolRequest, name string) []string {
	switch v := request.GetArguments()[name].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
