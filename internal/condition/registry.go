package condition

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/sift/internal/queryir"
)

var (
	// ErrDuplicateKey is returned when a condition name is registered twice.
	ErrDuplicateKey = errors.New("condition already registered")

	// ErrInvalidDefinition is returned for definitions that are neither an
	// operator string, a Resolved value, a Definition nor a resolver func.
	ErrInvalidDefinition = errors.New("invalid condition definition")
)

// Resolved is the outcome of resolving one leaf.
type Resolved struct {
	// Operator is the SQL comparison operator.
	Operator string

	// Value is bound as the right-hand side parameter.
	Value any

	// Column replaces the leaf column expression when non-empty.
	Column string

	// Transform names a registered value transform applied to the
	// placeholder text (not the bound value).
	Transform string

	// Literal, when non-empty, is emitted instead of a placeholder and
	// no value is bound (e.g. "NULL" for IS NULL).
	Literal string

	// List expands Value into one placeholder per element: (p1, p2, ...).
	List bool
}

// Definition resolves a leaf descriptor.
type Definition interface {
	Resolve(leaf queryir.Leaf) Resolved
}

// DefinitionFunc adapts a plain function to Definition.
type DefinitionFunc func(leaf queryir.Leaf) Resolved

// Resolve implements Definition.
func (f DefinitionFunc) Resolve(leaf queryir.Leaf) Resolved {
	return f(leaf)
}

// TransformFunc rewrites placeholder text, e.g. "$1" -> "LOWER($1)".
type TransformFunc func(placeholder string) string

// Registry maps condition names to definitions and value transforms.
// Names are case-insensitive.
type Registry struct {
	mu         sync.RWMutex
	defs       map[string]Definition
	transforms map[string]TransformFunc
}

// NewEmptyRegistry returns a registry with no conditions.
func NewEmptyRegistry() *Registry {
	return &Registry{
		defs:       make(map[string]Definition),
		transforms: make(map[string]TransformFunc),
	}
}

// NewRegistry returns a registry preloaded with the builtin conditions.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	registerBuiltins(r)
	return r
}

// Register adds a condition.
//
// def may be:
//   - string: a fixed operator; the leaf value is bound unchanged
//   - Resolved: a fixed resolution; copied per call so callers cannot
//     mutate shared state, with the leaf value bound when the template
//     carries neither Value nor Literal
//   - Definition or func(queryir.Leaf) Resolved: called per leaf
func (r *Registry) Register(key string, def any) error {
	name := normalizeKey(key)
	if name == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidDefinition)
	}

	var d Definition
	switch v := def.(type) {
	case string:
		op := strings.TrimSpace(v)
		if op == "" {
			return fmt.Errorf("%w: %q has an empty operator", ErrInvalidDefinition, name)
		}
		d = fixedOperator(op)
	case Resolved:
		if strings.TrimSpace(v.Operator) == "" {
			return fmt.Errorf("%w: %q has an empty operator", ErrInvalidDefinition, name)
		}
		d = fixedResolution(v)
	case Definition:
		if v == nil {
			return fmt.Errorf("%w: %q is nil", ErrInvalidDefinition, name)
		}
		d = v
	case func(queryir.Leaf) Resolved:
		if v == nil {
			return fmt.Errorf("%w: %q is nil", ErrInvalidDefinition, name)
		}
		d = DefinitionFunc(v)
	default:
		return fmt.Errorf("%w: %q has type %T", ErrInvalidDefinition, name, def)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, name)
	}
	r.defs[name] = d
	return nil
}

// RegisterTransform adds a named placeholder transform.
func (r *Registry) RegisterTransform(key string, fn TransformFunc) error {
	name := normalizeKey(key)
	if name == "" || fn == nil {
		return fmt.Errorf("%w: transform %q", ErrInvalidDefinition, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transforms[name]; exists {
		return fmt.Errorf("%w: transform %q", ErrDuplicateKey, name)
	}
	r.transforms[name] = fn
	return nil
}

// RegisterFunctionWrapped registers a condition comparing FUNC(column).
//
// The operator defaults to defaultOperator and may be overridden per leaf
// through Leaf.Operator. When the transform is enabled (transformByDefault,
// or Leaf.Transform per call) the placeholder is wrapped in the same
// function, so LOWER(title) = LOWER($1) compares case-insensitively.
func (r *Registry) RegisterFunctionWrapped(function string, transformByDefault bool, defaultOperator string) error {
	fn := normalizeKey(function)
	if !isFunctionName(fn) {
		return fmt.Errorf("%w: function name %q", ErrInvalidDefinition, function)
	}
	defOp, ok := ComparisonOperator(defaultOperator)
	if !ok {
		return fmt.Errorf("%w: %q default operator %q", ErrInvalidDefinition, fn, defaultOperator)
	}

	if err := r.RegisterTransform(fn, func(placeholder string) string {
		return fn + "(" + placeholder + ")"
	}); err != nil {
		return err
	}

	return r.Register(fn, DefinitionFunc(func(leaf queryir.Leaf) Resolved {
		op := defOp
		if override, ok := ComparisonOperator(leaf.Operator); ok && leaf.Condition != "" {
			op = override
		}

		transform := transformByDefault
		if leaf.Transform != nil {
			transform = *leaf.Transform
		}

		res := Resolved{
			Operator: op,
			Value:    leaf.Value,
			Column:   fn + "(" + leaf.Column + ")",
			List:     IsListOperator(op),
		}
		if transform {
			res.Transform = fn
		}
		return res
	}))
}

// Resolve looks up the leaf's condition and resolves it.
//
// The registry key is Leaf.Condition, else Leaf.Operator, else "=".
// ok is false when the key is not registered; the caller then compares
// the raw column to the raw value with "=".
func (r *Registry) Resolve(leaf queryir.Leaf) (res Resolved, ok bool) {
	key := leaf.Condition
	if key == "" {
		key = leaf.Operator
	}
	if key == "" {
		key = "="
	}

	r.mu.RLock()
	def, ok := r.defs[normalizeKey(key)]
	r.mu.RUnlock()

	if !ok {
		return Resolved{Operator: "=", Value: leaf.Value}, false
	}
	return def.Resolve(leaf), true
}

// Transform returns the named placeholder transform.
func (r *Registry) Transform(key string) (TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.transforms[normalizeKey(key)]
	return fn, ok
}

// Has reports whether a condition name is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.defs[normalizeKey(key)]
	return ok
}

// Keys returns the registered condition names, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.defs))
	for k := range r.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fixedOperator(op string) Definition {
	list := IsListOperator(op)
	return DefinitionFunc(func(leaf queryir.Leaf) Resolved {
		return Resolved{Operator: op, Value: leaf.Value, List: list}
	})
}

func fixedResolution(tmpl Resolved) Definition {
	return DefinitionFunc(func(leaf queryir.Leaf) Resolved {
		res := tmpl
		if res.Value == nil && res.Literal == "" {
			res.Value = leaf.Value
		}
		return res
	})
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.Join(strings.Fields(key), " "))
}

func isFunctionName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
