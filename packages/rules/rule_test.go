package rules

import (
	"testing"

	"github.com/abdul-hamid-achik/hitcheck/packages/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `{
	"id": "3a6b4e0b-8e5c-df11-849b-0014c258f21e",
	"count": 2,
	"price": 9.5,
	"active": true,
	"deleted": null,
	"tags": ["new", "sale"],
	"products": [
		{"id": "2f355deb-423e-46aa-8d53-071b01018465"},
		{"id": "065983e6-092a-491b-99b0-be3de3fe74c9", "name": "wizzy bang"}
	]
}`

func evaluate(t *testing.T, r Rule) bool {
	t.Helper()
	p, err := r.Compile()
	require.NoError(t, err)
	v, err := response.Parse(body)
	require.NoError(t, err)
	ok, err := p(v)
	if err != nil {
		return false
	}
	return ok
}

func TestRule_Operators(t *testing.T) {
	tests := []struct {
		name   string
		rule   Rule
		passed bool
	}{
		{"equals string", Rule{Path: "products[1].name", Op: OpEquals, Value: "wizzy bang"}, true},
		{"equals number from yaml int", Rule{Path: "count", Op: OpEquals, Value: 2}, true},
		{"equals bool", Rule{Path: "active", Op: OpEquals, Value: true}, true},
		{"equals mismatch", Rule{Path: "count", Op: OpEquals, Value: 3}, false},
		{"not equals", Rule{Path: "count", Op: OpNotEquals, Value: 3}, true},
		{"gt", Rule{Path: "price", Op: OpGreaterThan, Value: 9}, true},
		{"gte", Rule{Path: "count", Op: OpGreaterOrEqual, Value: 2}, true},
		{"lt", Rule{Path: "price", Op: OpLessThan, Value: 9}, false},
		{"lte", Rule{Path: "price", Op: OpLessOrEqual, Value: "9.5"}, true},
		{"gt on string", Rule{Path: "id", Op: OpGreaterThan, Value: 1}, false},
		{"contains", Rule{Path: "products[1].name", Op: OpContains, Value: "bang"}, true},
		{"starts with", Rule{Path: "id", Op: OpStartsWith, Value: "3a6b"}, true},
		{"ends with", Rule{Path: "id", Op: OpEndsWith, Value: "f21e"}, true},
		{"matches", Rule{Path: "products.1.name", Op: OpMatches, Value: "/^wizzy/"}, true},
		{"exists", Rule{Path: "products[1].name", Op: OpExists}, true},
		{"exists null", Rule{Path: "deleted", Op: OpExists}, true},
		{"exists missing", Rule{Path: "products[0].name", Op: OpExists}, false},
		{"not exists", Rule{Path: "products[0].name", Op: OpNotExists}, true},
		{"length array", Rule{Path: "products", Op: OpLength, Value: 2}, true},
		{"length string", Rule{Path: "products[1].name", Op: OpLength, Value: 10}, true},
		{"length number", Rule{Path: "count", Op: OpLength, Value: 1}, false},
		{"type array", Rule{Path: "tags", Op: OpType, Value: "array"}, true},
		{"type null", Rule{Path: "deleted", Op: OpType, Value: "null"}, true},
		{"type whole body", Rule{Op: OpType, Value: "object"}, true},
		{"includes", Rule{Path: "tags", Op: OpIncludes, Value: "sale"}, true},
		{"includes missing", Rule{Path: "tags", Op: OpIncludes, Value: "old"}, false},
		{"uuid", Rule{Path: "products[0].id", Op: OpUUID}, true},
		{"uuid not a uuid", Rule{Path: "products[1].name", Op: OpUUID}, false},
		{"uuid on number", Rule{Path: "count", Op: OpUUID}, false},
		{"missing path fails", Rule{Path: "products[0].name", Op: OpEquals, Value: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.passed, evaluate(t, tt.rule))
		})
	}
}

func TestRule_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"missing operator", Rule{Path: "id"}},
		{"unknown operator", Rule{Path: "id", Op: "between"}},
		{"bad regex", Rule{Path: "id", Op: OpMatches, Value: "(["}},
		{"non numeric threshold", Rule{Path: "count", Op: OpGreaterThan, Value: "many"}},
		{"non integer length", Rule{Path: "tags", Op: OpLength, Value: 1.5}},
		{"unknown type", Rule{Path: "tags", Op: OpType, Value: "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rule.Compile()
			assert.Error(t, err)
		})
	}
}

func TestRule_Title(t *testing.T) {
	assert.Equal(t, "named", Rule{Name: "named", Path: "x", Op: OpExists}.Title())
	assert.Equal(t, "x exists", Rule{Path: "x", Op: OpExists}.Title())
	assert.Equal(t, "count equals 2", Rule{Path: "count", Op: OpEquals, Value: 2}.Title())
	assert.Equal(t, "body type object", Rule{Op: OpType, Value: "object"}.Title())
}

func TestApply(t *testing.T) {
	s, err := response.New(response.Capture{ContentType: "application/json", Body: body})
	require.NoError(t, err)

	err = Apply(s, []Rule{
		{Name: "two products", Path: "products", Op: OpLength, Value: 2},
		{Name: "missing name", Path: "products[0].name", Op: OpEquals, Value: ""},
	})
	require.NoError(t, err)

	assert.NoError(t, s.Assert("two products"))
	assert.ErrorIs(t, s.Assert("missing name"), response.ErrAssertionFailed)

	err = Apply(s, []Rule{{Name: "two products", Path: "id", Op: OpExists}})
	assert.ErrorIs(t, err, response.ErrDuplicateRule)

	err = Apply(s, []Rule{{Name: "bad", Path: "id", Op: "nope"}})
	assert.Error(t, err)
	_, ok := s.Passed("bad")
	assert.False(t, ok)
}
