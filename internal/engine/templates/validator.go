package templates

import (
	"fmt"
	"strings"
)

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateConfig checks a submitted config against a template schema.
// Every violation is collected; nothing fails fast and nothing panics.
func ValidateConfig(config map[string]interface{}, schema ConfigSchema) ValidationResult {
	errors := []string{}

	for _, field := range schema.Required {
		value, present := config[field]
		if !present || value == nil || value == "" {
			errors = append(errors, fmt.Sprintf("%s is required", field))
		}
	}

	for field, prop := range schema.Properties {
		value, present := config[field]
		if !present || value == nil {
			continue
		}

		if !matchesType(value, prop.Type) {
			errors = append(errors, fmt.Sprintf("%s must be a %s", field, prop.Type))
			continue
		}

		if len(prop.Enum) > 0 {
			if s, ok := value.(string); ok && !contains(prop.Enum, s) {
				errors = append(errors, fmt.Sprintf("%s must be one of: %s", field, strings.Join(prop.Enum, ", ")))
			}
		}
	}

	return ValidationResult{Valid: len(errors) == 0, Errors: errors}
}

func matchesType(value interface{}, declared string) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		// JSON decoding yields float64; accept int types from in-process callers too
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	default:
		// Unknown declared types are not this validator's problem
		return true
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
