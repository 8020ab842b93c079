// Package filter applies JMESPath expressions to captured JSON bodies in the
// log and history viewers.
package filter

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// Apply narrows a body with filter (e.g. items[?status=='active']) and then
// reshapes it with query (e.g. [].name). Either expression may be empty.
func Apply(body string, filter string, query string) (string, error) {
	result := body

	if filter != "" {
		filtered, err := applyJMESPath(result, filter)
		if err != nil {
			return "", fmt.Errorf("failed to apply filter: %w", err)
		}
		result = filtered
	}

	if query != "" {
		queried, err := applyJMESPath(result, query)
		if err != nil {
			return "", fmt.Errorf("failed to apply query: %w", err)
		}
		result = queried
	}

	return result, nil
}

func applyJMESPath(jsonStr string, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}

// IsValid checks if an expression is valid JMESPath syntax.
func IsValid(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}
