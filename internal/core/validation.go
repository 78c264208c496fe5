package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Form holds submitted field values by field name.
type Form map[string]string

// Test decides whether a field value passes. A non-nil error means the test
// itself could not run (for instance a failed repository lookup) and aborts validation.
type Test func(ctx context.Context, value string, form Form) (bool, error)

// Rule attaches a failure message to a test on one field.
type Rule struct {
	Field   string
	Message string
	Test    Test
	Cause   error
}

// Rules is an ordered rule set for one form.
type Rules []Rule

// FieldError is one failed rule, reported back to the submitting form.
type FieldError struct {
	Field   string `json:"param"`
	Message string `json:"msg"`
	Value   string `json:"value,omitempty"`
	Cause   error  `json:"-"`
}

// ValidationErrors is the ordered list of failed rules.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the causes of the failed rules, so errors.Is can find
// for instance a duplicate error behind a uniqueness rule.
func (v ValidationErrors) Unwrap() []error {
	var causes []error
	for _, fe := range v {
		if fe.Cause != nil {
			causes = append(causes, fe.Cause)
		}
	}
	return causes
}

// Invalid builds a single-field validation failure.
func Invalid(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// Conflict builds a single-field failure caused by err.
func Conflict(field, message string, err error) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message, Cause: err}}
}

// Check registers a rule for field.
func Check(field, message string, test Test) Rule {
	return Rule{Field: field, Message: message, Test: test}
}

// WithCause attaches err to failures of r.
func (r Rule) WithCause(err error) Rule {
	r.Cause = err
	return r
}

// Validate runs every rule in order. All rules are evaluated, including
// several on the same field, and every failure is reported.
func (rs Rules) Validate(ctx context.Context, form Form) (ValidationErrors, error) {
	var failed ValidationErrors
	for _, r := range rs {
		value := form[r.Field]
		ok, err := r.Test(ctx, value, form)
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", r.Field, err)
		}
		if !ok {
			failed = append(failed, FieldError{Field: r.Field, Message: r.Message, Value: value, Cause: r.Cause})
		}
	}
	return failed, nil
}

// --- Built-in tests ---

func tag(t string) Test {
	return func(_ context.Context, value string, _ Form) (bool, error) {
		return validate.Var(value, t) == nil, nil
	}
}

// Required fails on an empty value.
func Required() Test { return tag("required") }

// MinLength fails on values shorter than n characters.
func MinLength(n int) Test { return tag(fmt.Sprintf("min=%d", n)) }

// MaxLength fails on values longer than n characters.
func MaxLength(n int) Test { return tag(fmt.Sprintf("max=%d", n)) }

// Email fails on malformed addresses.
func Email() Test { return tag("email") }

// Date fails unless the value is a YYYY-MM-DD calendar date.
func Date() Test { return tag("datetime=2006-01-02") }

// EqualsField fails unless the value equals the other field's value.
func EqualsField(other string) Test {
	return func(_ context.Context, value string, form Form) (bool, error) {
		return value == form[other], nil
	}
}

// PositiveInt fails unless the value is a whole number above zero.
// Empty values pass; pair with Required.
func PositiveInt() Test {
	return func(_ context.Context, value string, _ Form) (bool, error) {
		if value == "" {
			return true, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		return err == nil && n > 0, nil
	}
}

// Custom wraps an arbitrary, possibly repository-backed, test.
func Custom(fn func(ctx context.Context, value string, form Form) (bool, error)) Test {
	return fn
}

// Redact blanks the echoed values of the named fields, for secrets such as passwords.
func (v ValidationErrors) Redact(fields ...string) ValidationErrors {
	out := make(ValidationErrors, len(v))
	for i, fe := range v {
		for _, f := range fields {
			if fe.Field == f {
				fe.Value = ""
			}
		}
		out[i] = fe
	}
	return out
}
