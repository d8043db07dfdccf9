package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists every problem found, one per field.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate checks struct tags and the cross-field rules tags cannot
// express. The service refuses to start on any problem.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if !errors.As(err, &fields) {
			return fmt.Errorf("validating config: %w", err)
		}

		for _, fe := range fields {
			problems = append(problems, describe(fe))
		}
	}

	problems = append(problems, c.Tree.pairingProblems()...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	return nil
}

// pairingProblems rejects bus choices that cannot observe the backend's
// writes. The local bus only reaches this process, and the redis bus rides
// on the redis store's client.
func (t TreeConfig) pairingProblems() []string {
	switch {
	case t.Backend == "redis" && t.Bus == "local":
		return []string{"tree.bus must be redis or nats when tree.backend is redis"}
	case t.Backend != "redis" && t.Bus == "redis":
		return []string{"tree.bus redis requires tree.backend redis"}
	default:
		return nil
	}
}

func describe(fe validator.FieldError) string {
	field, p := formatFieldPath(fe.Namespace()), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required when " + p
	case "min":
		return field + " must be at least " + p
	case "max":
		return field + " must be at most " + p
	case "oneof":
		return field + " must be one of: " + p
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " failed validation: " + fe.Tag()
	}
}

// formatFieldPath turns "Config.Client.CircuitBreaker" into
// "client.circuitbreaker".
func formatFieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}

	return strings.ToLower(rest)
}
