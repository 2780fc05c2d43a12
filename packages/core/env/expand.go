package env

import (
	"os"
	"regexp"
)

var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expander replaces ${VAR} references. Any other use of $ is left as is.
type Expander struct {
	vars       map[string]string
	unresolved []string
}

// NewExpander resolves names from vars first and the process environment
// second.
func NewExpander(vars map[string]string) *Expander {
	return &Expander{vars: vars}
}

func (e *Expander) lookup(name string) (string, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	return os.LookupEnv(name)
}

func (e *Expander) Expand(s string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if v, ok := e.lookup(name); ok {
			return v
		}
		e.unresolved = append(e.unresolved, name)
		return match
	})
}

// ExpandAll expands every value of m in place.
func (e *Expander) ExpandAll(m map[string]string) {
	for k, v := range m {
		m[k] = e.Expand(v)
	}
}

// Unresolved lists the names that had no value, in the order they were met.
// Their references are left in the text unchanged.
func (e *Expander) Unresolved() []string {
	out := make([]string, len(e.unresolved))
	copy(out, e.unresolved)
	return out
}
