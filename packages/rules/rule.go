package rules

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitcheck/packages/response"
	"github.com/google/uuid"
)

// Operator is the comparison a rule applies.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not_equals"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpContains       Operator = "contains"
	OpStartsWith     Operator = "starts_with"
	OpEndsWith       Operator = "ends_with"
	OpMatches        Operator = "matches"
	OpExists         Operator = "exists"
	OpNotExists      Operator = "not_exists"
	OpLength         Operator = "length"
	OpType           Operator = "type"
	OpIncludes       Operator = "includes"
	OpUUID           Operator = "uuid"
)

// Rule is a declarative check against the response body.
type Rule struct {
	Name  string   `yaml:"name" json:"name"`
	Path  string   `yaml:"path" json:"path"`
	Op    Operator `yaml:"op" json:"op"`
	Value any      `yaml:"value,omitempty" json:"value,omitempty"`
}

// Title returns the rule name, or a name derived from the rule itself.
func (r Rule) Title() string {
	if r.Name != "" {
		return r.Name
	}
	path := r.Path
	if path == "" {
		path = "body"
	}
	if r.Value == nil {
		return fmt.Sprintf("%s %s", path, r.Op)
	}
	return fmt.Sprintf("%s %s %v", path, r.Op, r.Value)
}

// check returns nil when actual satisfies the rule.
type check func(actual any) error

// Compile validates the rule and returns its predicate.
func (r Rule) Compile() (response.Predicate, error) {
	switch r.Op {
	case OpExists:
		return func(body response.Value) (bool, error) {
			return body.Lookup(r.Path).Exists(), nil
		}, nil
	case OpNotExists:
		return func(body response.Value) (bool, error) {
			return !body.Lookup(r.Path).Exists(), nil
		}, nil
	}

	c, err := r.compileCheck()
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.Title(), err)
	}

	return func(body response.Value) (bool, error) {
		actual, err := body.Lookup(r.Path).Interface()
		if err != nil {
			return false, err
		}
		if err := c(actual); err != nil {
			return false, err
		}
		return true, nil
	}, nil
}

func (r Rule) compileCheck() (check, error) {
	expected := r.Value

	switch r.Op {
	case OpEquals:
		return func(actual any) error { return equals(actual, expected) }, nil
	case OpNotEquals:
		return func(actual any) error {
			if equals(actual, expected) == nil {
				return fmt.Errorf("expected not to equal %v", expected)
			}
			return nil
		}, nil
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		want, ok := toFloat64(expected)
		if !ok {
			return nil, fmt.Errorf("%s needs a numeric value, got %v", r.Op, expected)
		}
		return func(actual any) error { return compareNumeric(actual, want, r.Op) }, nil
	case OpContains:
		return func(actual any) error { return contains(actual, expected) }, nil
	case OpStartsWith:
		want := fmt.Sprintf("%v", expected)
		return func(actual any) error {
			if s := fmt.Sprintf("%v", actual); !strings.HasPrefix(s, want) {
				return fmt.Errorf("expected '%v' to start with '%v'", actual, want)
			}
			return nil
		}, nil
	case OpEndsWith:
		want := fmt.Sprintf("%v", expected)
		return func(actual any) error {
			if s := fmt.Sprintf("%v", actual); !strings.HasSuffix(s, want) {
				return fmt.Errorf("expected '%v' to end with '%v'", actual, want)
			}
			return nil
		}, nil
	case OpMatches:
		pattern := strings.TrimSuffix(strings.TrimPrefix(fmt.Sprintf("%v", expected), "/"), "/")
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return func(actual any) error {
			if !re.MatchString(fmt.Sprintf("%v", actual)) {
				return fmt.Errorf("expected '%v' to match /%s/", actual, pattern)
			}
			return nil
		}, nil
	case OpLength:
		want, ok := toInt(expected)
		if !ok {
			return nil, fmt.Errorf("length needs an integer value, got %v", expected)
		}
		return func(actual any) error { return length(actual, want) }, nil
	case OpType:
		want := fmt.Sprintf("%v", expected)
		switch want {
		case "null", "boolean", "number", "string", "array", "object":
		default:
			return nil, fmt.Errorf("unknown type %q", want)
		}
		return func(actual any) error {
			if got := typeName(actual); got != want {
				return fmt.Errorf("expected type %s, got %s", want, got)
			}
			return nil
		}, nil
	case OpIncludes:
		return func(actual any) error { return includes(actual, expected) }, nil
	case OpUUID:
		return func(actual any) error {
			s, ok := actual.(string)
			if !ok {
				return fmt.Errorf("expected a uuid string, got %T", actual)
			}
			if _, err := uuid.Parse(s); err != nil {
				return fmt.Errorf("expected a uuid: %w", err)
			}
			return nil
		}, nil
	case "":
		return nil, fmt.Errorf("missing operator")
	default:
		return nil, fmt.Errorf("unknown operator: %s", r.Op)
	}
}

func equals(actual, expected any) error {
	if reflect.DeepEqual(actual, expected) {
		return nil
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return nil
	}

	if fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected) {
		return nil
	}

	return fmt.Errorf("expected %v, got %v", expected, actual)
}

func compareNumeric(actual any, expected float64, op Operator) error {
	actualNum, ok := actual.(float64)
	if !ok {
		return fmt.Errorf("cannot compare non-numeric value %v", actual)
	}

	var passed bool
	switch op {
	case OpGreaterThan:
		passed = actualNum > expected
	case OpGreaterOrEqual:
		passed = actualNum >= expected
	case OpLessThan:
		passed = actualNum < expected
	case OpLessOrEqual:
		passed = actualNum <= expected
	}

	if !passed {
		return fmt.Errorf("expected %v %s %v", actual, op, expected)
	}
	return nil
}

func contains(actual, expected any) error {
	if strings.Contains(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)) {
		return nil
	}
	return fmt.Errorf("expected '%v' to contain '%v'", actual, expected)
}

// computeLength returns the length of a value, or -1 if length cannot be computed
func computeLength(actual any) int {
	switch v := actual.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return -1
	}
}

func length(actual any, expected int) error {
	got := computeLength(actual)
	if got == -1 {
		return fmt.Errorf("cannot get length of %T", actual)
	}
	if got != expected {
		return fmt.Errorf("expected length %d, got %d", expected, got)
	}
	return nil
}

func includes(actual, expected any) error {
	arr, ok := actual.([]any)
	if !ok {
		return fmt.Errorf("expected array, got %T", actual)
	}
	for _, item := range arr {
		if equals(item, expected) == nil {
			return nil
		}
	}
	return fmt.Errorf("expected array to include %v", expected)
}

func typeName(actual any) string {
	switch actual.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return reflect.TypeOf(actual).String()
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// CompileAll compiles rules in order, failing on the first bad rule.
func CompileAll(rules []Rule) ([]response.Predicate, error) {
	out := make([]response.Predicate, len(rules))
	for i, r := range rules {
		p, err := r.Compile()
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Apply registers every rule on the snapshot under its title.
func Apply(s *response.Snapshot, rules []Rule) error {
	predicates, err := CompileAll(rules)
	if err != nil {
		return err
	}
	for i, r := range rules {
		if err := s.AddRule(r.Title(), predicates[i]); err != nil {
			return err
		}
	}
	return nil
}
