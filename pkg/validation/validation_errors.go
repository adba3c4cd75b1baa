package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to user-facing labels
var FieldLabels = map[string]string{
	"name":       "Name",
	"email":      "Email",
	"subject":    "Subject",
	"message":    "Message",
	"attachment": "CV",
}

// FieldErrors converts validator.ValidationErrors into one message per field.
// Other errors are reported under the empty key.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return map[string]string{}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"": err.Error()}
	}

	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		messages[e.Field()] = formatSingleError(e)
	}
	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required", "trimmed_required":
		return fmt.Sprintf("%s is required", label)

	case "min", "trimmed_min":
		return fmt.Sprintf("%s must be at least %s characters long", label, e.Param())

	case "email", "loose_email":
		return fmt.Sprintf("Please enter a valid %s address", strings.ToLower(label))

	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	if fieldName == "" {
		return fieldName
	}
	return strings.ToUpper(fieldName[:1]) + fieldName[1:]
}
