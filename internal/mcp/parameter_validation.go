package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValidateAndWarnExtraParams checks for unknown parameters in a JSON request
// and returns a list of warning messages for any extra parameters found.
// Unknown parameters never fail a request.
func ValidateAndWarnExtraParams(jsonBytes []byte, validStruct interface{}) []string {
	var warnings []string

	var providedFields map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &providedFields); err != nil {
		return warnings
	}

	validFields := getValidFieldNames(validStruct)

	for fieldName := range providedFields {
		if !validFields[fieldName] {
			warnings = append(warnings, fmt.Sprintf("Unknown parameter '%s' was provided and will be ignored", fieldName))
		}
	}
	sort.Strings(warnings)

	return warnings
}

// getValidFieldNames extracts the JSON field names of a struct
func getValidFieldNames(structPtr interface{}) map[string]bool {
	validFields := make(map[string]bool)

	structType := reflect.TypeOf(structPtr)
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	if structType.Kind() != reflect.Struct {
		return validFields
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "" {
			validFields[strings.ToLower(field.Name)] = true
			continue
		}
		tagParts := strings.Split(jsonTag, ",")
		if tagParts[0] != "" && tagParts[0] != "-" {
			validFields[tagParts[0]] = true
		}
	}

	return validFields
}

// decodeParams unmarshals raw tool arguments into p. Empty arguments leave p
// at its zero value.
func decodeParams(raw json.RawMessage, p interface{}) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return ValidateAndWarnExtraParams(raw, p), nil
}

// validateNonNegative rejects negative overrides
func validateNonNegative(name string, v *int) error {
	if v != nil && *v < 0 {
		return fmt.Errorf("parameter '%s' cannot be negative", name)
	}
	return nil
}
