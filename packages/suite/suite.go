package suite

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcheck/packages/core/env"
	"github.com/abdul-hamid-achik/hitcheck/packages/http"
	"github.com/abdul-hamid-achik/hitcheck/packages/load"
	"github.com/abdul-hamid-achik/hitcheck/packages/rules"
	"github.com/abdul-hamid-achik/hitcheck/packages/schema"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSuite = errors.New("invalid suite")

// Suite is one request together with the checks run against its response.
type Suite struct {
	Name         string       `yaml:"name"`
	Request      Request      `yaml:"request"`
	Status       int          `yaml:"status,omitempty"`
	Load         *load.Driver `yaml:"load,omitempty"`
	Schema       string       `yaml:"schema,omitempty"`
	SchemaInline string       `yaml:"schemaInline,omitempty"`
	Rules        []rules.Rule `yaml:"rules,omitempty"`
	Strict       bool         `yaml:"strict,omitempty"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-"`

	schemaText string
}

type Request struct {
	Method  string            `yaml:"method"`
	URL     string            `yaml:"url"`
	Query   map[string]string `yaml:"query,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Auth    *Auth             `yaml:"auth,omitempty"`
	Body    string            `yaml:"body,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
}

// Auth sets the Authorization header. Only one of Basic and Bearer may be set.
type Auth struct {
	Basic  *BasicAuth `yaml:"basic,omitempty"`
	Bearer string     `yaml:"bearer,omitempty"`
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads and validates the suite at path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}

	vars, err := env.LoadDir(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err := parse(data, env.NewExpander(vars))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if s.Schema != "" {
		text, err := readSchema(s.Schema, filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		s.schemaText = text
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a suite document and expands references to the process
// environment. Schema files are not read; use Load for suites that reference
// one.
func Parse(data []byte) (*Suite, error) {
	return parse(data, env.NewExpander(nil))
}

func parse(data []byte, exp *env.Expander) (*Suite, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Suite
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSuite, err)
	}

	s.Request.URL = exp.Expand(s.Request.URL)
	s.Request.Body = exp.Expand(s.Request.Body)
	exp.ExpandAll(s.Request.Query)
	exp.ExpandAll(s.Request.Headers)
	if a := s.Request.Auth; a != nil {
		a.Bearer = exp.Expand(a.Bearer)
		if a.Basic != nil {
			a.Basic.Username = exp.Expand(a.Basic.Username)
			a.Basic.Password = exp.Expand(a.Basic.Password)
		}
	}
	if missing := exp.Unresolved(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: unresolved variables: %s", ErrInvalidSuite, strings.Join(missing, ", "))
	}
	if s.Request.Method == "" {
		s.Request.Method = "GET"
	}
	s.Request.Method = strings.ToUpper(s.Request.Method)
	if s.SchemaInline != "" {
		s.schemaText = s.SchemaInline
	}
	return &s, nil
}

// Validate checks the request, compiles every rule and parses the schema.
func (s *Suite) Validate() error {
	if s.Request.URL == "" {
		return fmt.Errorf("%w: request url is required", ErrInvalidSuite)
	}
	if err := http.ValidateURL(s.Request.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSuite, err)
	}
	if s.Schema != "" && s.SchemaInline != "" {
		return fmt.Errorf("%w: schema and schemaInline are mutually exclusive", ErrInvalidSuite)
	}
	if a := s.Request.Auth; a != nil && a.Basic != nil && a.Bearer != "" {
		return fmt.Errorf("%w: auth basic and bearer are mutually exclusive", ErrInvalidSuite)
	}
	if s.Load != nil {
		if err := s.Load.Validate(); err != nil {
			return fmt.Errorf("%w: load: %w", ErrInvalidSuite, err)
		}
	}
	if _, err := rules.CompileAll(s.Rules); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSuite, err)
	}

	seen := make(map[string]bool, len(s.Rules)+1)
	if s.Status != 0 {
		seen[statusRule] = true
	}
	for _, r := range s.Rules {
		title := r.Title()
		if seen[title] {
			return fmt.Errorf("%w: duplicate rule %q", ErrInvalidSuite, title)
		}
		seen[title] = true
	}

	if s.HasSchema() {
		if _, err := schema.Parse(s.schemaText); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSuite, err)
		}
	}
	return nil
}

// HasSchema reports whether the suite carries a schema to check.
func (s *Suite) HasSchema() bool {
	return s.schemaText != ""
}

// SchemaText returns the resolved schema document.
func (s *Suite) SchemaText() string {
	return s.schemaText
}

func readSchema(name, baseDir string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, name)
	}
	if err := validatePathWithinBase(path, baseDir); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	return string(data), nil
}

// validatePathWithinBase checks that the resolved path stays within the base
// directory.
func validatePathWithinBase(path, baseDir string) error {
	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}
	return nil
}
