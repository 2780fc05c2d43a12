package response

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitcheck/packages/schema"
)

var (
	ErrUnsupportedContentType = errors.New("content type not supported")
	ErrMalformedBody          = errors.New("body is not valid JSON")
	ErrDuplicateRule          = errors.New("rule already exists")
	ErrInvalidSchema          = schema.ErrInvalidSchema
	ErrAssertionFailed        = errors.New("assertion failed")
	ErrUnknownRule            = errors.New("rule not registered")

	ErrPathNotFound = errors.New("path not found")
	ErrTypeMismatch = errors.New("type mismatch")
)

// SchemaRule is the rule name carried by a failed schema assertion.
const SchemaRule = "schema"

// AssertionError reports a failed rule or schema check.
type AssertionError struct {
	Rule string
}

func (e *AssertionError) Error() string {
	if e.Rule == SchemaRule {
		return "schema check failed"
	}
	return fmt.Sprintf("(%s) test failed", e.Rule)
}

func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertionFailed
}
