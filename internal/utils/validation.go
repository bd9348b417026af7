package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve {
		messages = append(messages, fmt.Sprintf("%s %s", err.Field, err.Message))
	}
	return strings.Join(messages, ", ")
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks if the given string is a valid email address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateStruct validates a struct using the `validate` struct tags.
// Supported rules: required, email, min=N, max=N, gte=N.
func ValidateStruct(s interface{}) error {
	var errors ValidationErrors

	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanInterface() {
			continue
		}

		// Validate nested structs (e.g. shipping addresses)
		if field.Kind() == reflect.Struct && fieldType.Tag.Get("json") != "" && fieldType.Type.Name() != "Time" {
			if err := ValidateStruct(field.Interface()); err != nil {
				if nested, ok := err.(ValidationErrors); ok {
					errors = append(errors, nested...)
					continue
				}
			}
		}

		// Validate slice-of-struct elements (e.g. order line items)
		if field.Kind() == reflect.Slice && fieldType.Type.Elem().Kind() == reflect.Struct {
			for j := 0; j < field.Len(); j++ {
				if err := ValidateStruct(field.Index(j).Interface()); err != nil {
					if nested, ok := err.(ValidationErrors); ok {
						errors = append(errors, nested...)
					}
				}
			}
		}

		validateTag := fieldType.Tag.Get("validate")
		if validateTag == "" {
			continue
		}

		rules := strings.Split(validateTag, ",")
		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if err := validateField(fieldType.Name, field, rule); err != nil {
				errors = append(errors, *err)
			}
		}
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// validateField validates a single field against a rule
func validateField(fieldName string, field reflect.Value, rule string) *ValidationError {
	parts := strings.Split(rule, "=")
	ruleName := parts[0]
	var ruleValue string
	if len(parts) > 1 {
		ruleValue = parts[1]
	}

	switch ruleName {
	case "required":
		if isEmpty(field) {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	case "email":
		if field.Kind() == reflect.String {
			email := field.String()
			if email != "" && !IsValidEmail(email) {
				return &ValidationError{Field: fieldName, Message: "must be a valid email address"}
			}
		}
	case "min":
		limit := parseIntOrDefault(ruleValue, 0)
		if field.Kind() == reflect.String {
			if len(field.String()) < limit {
				return &ValidationError{Field: fieldName, Message: fmt.Sprintf("must be at least %s characters", ruleValue)}
			}
		} else if isNumeric(field) {
			if numericValue(field) < float64(limit) {
				return &ValidationError{Field: fieldName, Message: fmt.Sprintf("must be at least %s", ruleValue)}
			}
		}
	case "max":
		limit := parseIntOrDefault(ruleValue, 0)
		if field.Kind() == reflect.String {
			if len(field.String()) > limit {
				return &ValidationError{Field: fieldName, Message: fmt.Sprintf("cannot be more than %s characters", ruleValue)}
			}
		} else if isNumeric(field) {
			if numericValue(field) > float64(limit) {
				return &ValidationError{Field: fieldName, Message: fmt.Sprintf("cannot be more than %s", ruleValue)}
			}
		}
	case "gte":
		if isNumeric(field) {
			if numericValue(field) < float64(parseIntOrDefault(ruleValue, 0)) {
				return &ValidationError{Field: fieldName, Message: fmt.Sprintf("must be at least %s", ruleValue)}
			}
		}
	}

	return nil
}

func isEmpty(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return field.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return field.IsNil()
	default:
		return false
	}
}

func isNumeric(field reflect.Value) bool {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func numericValue(field reflect.Value) float64 {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int())
	case reflect.Float32, reflect.Float64:
		return field.Float()
	default:
		return 0
	}
}

func parseIntOrDefault(s string, defaultValue int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultValue
}
