package response

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a node of a parsed JSON document. Navigation never panics: a
// missing field, an index out of range or a type mismatch is remembered on
// the returned Value and reported by its terminal accessors.
type Value struct {
	res gjson.Result
	loc string
	err error
}

func rootValue(res gjson.Result) Value {
	return Value{res: res, loc: "$"}
}

// Parse parses raw JSON into a Value.
func Parse(raw string) (Value, error) {
	if !gjson.Valid(raw) {
		return Value{}, ErrMalformedBody
	}
	return rootValue(gjson.Parse(raw)), nil
}

// Err returns the first navigation error on the path to v.
func (v Value) Err() error {
	return v.err
}

// Location is the path from the document root to v, e.g. "$.products[1].name".
func (v Value) Location() string {
	return v.loc
}

// Exists reports whether v was reached without error.
func (v Value) Exists() bool {
	return v.err == nil && v.res.Exists()
}

// Kind returns the JSON type of v; Null when v does not exist.
func (v Value) Kind() Kind {
	if !v.Exists() {
		return Null
	}
	switch v.res.Type {
	case gjson.True, gjson.False:
		return Bool
	case gjson.Number:
		return Number
	case gjson.String:
		return String
	case gjson.JSON:
		if v.res.IsArray() {
			return Array
		}
		return Object
	default:
		return Null
	}
}

// Raw returns the JSON text of v.
func (v Value) Raw() string {
	return v.res.Raw
}

func (v Value) String() string {
	if v.err != nil {
		return "<" + v.err.Error() + ">"
	}
	return v.res.Raw
}

func (v Value) fail(loc string, err error) Value {
	return Value{loc: loc, err: fmt.Errorf("%w: %s", err, loc)}
}

func (v Value) expect(k Kind) error {
	if v.err != nil {
		return v.err
	}
	if got := v.Kind(); got != k {
		return fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, v.loc, got, k)
	}
	return nil
}

// Get returns the field key of an object.
func (v Value) Get(key string) Value {
	if v.err != nil {
		return v
	}
	loc := v.loc + "." + key
	if err := v.expect(Object); err != nil {
		return Value{loc: loc, err: err}
	}

	var found gjson.Result
	v.res.ForEach(func(k, val gjson.Result) bool {
		if k.String() == key {
			found = val
			return false
		}
		return true
	})
	if !found.Exists() {
		return v.fail(loc, ErrPathNotFound)
	}
	return Value{res: found, loc: loc}
}

// Index returns element i of an array.
func (v Value) Index(i int) Value {
	if v.err != nil {
		return v
	}
	loc := v.loc + "[" + strconv.Itoa(i) + "]"
	if err := v.expect(Array); err != nil {
		return Value{loc: loc, err: err}
	}

	items := v.res.Array()
	if i < 0 || i >= len(items) {
		return v.fail(loc, ErrPathNotFound)
	}
	return Value{res: items[i], loc: loc}
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(result, ".")
}

// Lookup resolves a gjson path relative to v. Bracket indexes are accepted,
// so "products[1].name" and "products.1.name" are equivalent.
func (v Value) Lookup(path string) Value {
	if v.err != nil {
		return v
	}
	path = convertBracketNotation(path)
	if path == "" {
		return v
	}
	loc := v.loc + "." + path
	res := v.res.Get(path)
	if !res.Exists() {
		return v.fail(loc, ErrPathNotFound)
	}
	return Value{res: res, loc: loc}
}

// AsString returns the value of a JSON string.
func (v Value) AsString() (string, error) {
	if err := v.expect(String); err != nil {
		return "", err
	}
	return v.res.Str, nil
}

// AsFloat returns the value of a JSON number.
func (v Value) AsFloat() (float64, error) {
	if err := v.expect(Number); err != nil {
		return 0, err
	}
	return v.res.Num, nil
}

// AsInt returns the value of a JSON number that is an integer.
func (v Value) AsInt() (int64, error) {
	if err := v.expect(Number); err != nil {
		return 0, err
	}
	n := v.res.Int()
	if float64(n) != v.res.Num {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrTypeMismatch, v.loc)
	}
	return n, nil
}

// AsBool returns the value of a JSON boolean.
func (v Value) AsBool() (bool, error) {
	if err := v.expect(Bool); err != nil {
		return false, err
	}
	return v.res.Bool(), nil
}

// IsNull reports whether v exists and is JSON null.
func (v Value) IsNull() bool {
	return v.Exists() && v.res.Type == gjson.Null
}

// Len returns the number of elements of an array, keys of an object or
// bytes of a string.
func (v Value) Len() (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	switch v.Kind() {
	case Array:
		return len(v.res.Array()), nil
	case Object:
		n := 0
		v.res.ForEach(func(_, _ gjson.Result) bool {
			n++
			return true
		})
		return n, nil
	case String:
		return len(v.res.Str), nil
	default:
		return 0, fmt.Errorf("%w: %s has no length", ErrTypeMismatch, v.loc)
	}
}

// Array returns the elements of an array.
func (v Value) Array() ([]Value, error) {
	if err := v.expect(Array); err != nil {
		return nil, err
	}
	items := v.res.Array()
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Value{res: item, loc: v.loc + "[" + strconv.Itoa(i) + "]"}
	}
	return out, nil
}

// Keys returns the keys of an object in document order.
func (v Value) Keys() ([]string, error) {
	if err := v.expect(Object); err != nil {
		return nil, err
	}
	var keys []string
	v.res.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys, nil
}

// Interface returns v as plain Go data: map[string]any, []any, string,
// float64, bool or nil.
func (v Value) Interface() (any, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.res.Value(), nil
}
