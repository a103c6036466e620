package queryir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// ParseFilter decodes a JSON condition tree.
//
// The node shape is decided here, once:
//
//	{"logic": "OR", "conditions": [ ... ]}         -> Group
//	{"column": "score", "value": 3, ...}           -> Leaf
//	{"rating": "safe", "score": {"operator": ">", "value": 10}} -> FlatMap
//
// Numbers decode to int64 when integral and float64 otherwise.
func ParseFilter(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode filter: %w", err)
	}
	return FromValue(NormalizeNumbers(raw))
}

// FromValue builds a condition tree from decoded JSON/YAML data.
func FromValue(v any) (Node, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("filter node must be an object, got %T", v)
	}

	if conds, ok := obj["conditions"]; ok {
		return groupFromValue(obj, conds)
	}
	if col, ok := obj["column"].(string); ok {
		leaf, err := leafFromObject(obj)
		if err != nil {
			return nil, err
		}
		leaf.Column = col
		return leaf, nil
	}

	flat := make(FlatMap, len(obj))
	for column, desc := range obj {
		leaf := Leaf{Value: desc}
		if m, ok := desc.(map[string]any); ok && isDescriptor(m) {
			var err error
			if leaf, err = leafFromObject(m); err != nil {
				return nil, fmt.Errorf("column %q: %w", column, err)
			}
		}
		leaf.Column = column
		flat[column] = leaf
	}
	return flat, nil
}

func groupFromValue(obj map[string]any, conds any) (Node, error) {
	list, ok := conds.([]any)
	if !ok {
		return nil, fmt.Errorf("conditions must be a list, got %T", conds)
	}

	group := Group{Logic: LogicAnd}
	if logic, ok := obj["logic"].(string); ok && strings.EqualFold(logic, string(LogicOr)) {
		group.Logic = LogicOr
	}

	for i, child := range list {
		node, err := FromValue(child)
		if err != nil {
			return nil, fmt.Errorf("conditions[%d]: %w", i, err)
		}
		if node != nil {
			group.Children = append(group.Children, node)
		}
	}
	return group, nil
}

func isDescriptor(m map[string]any) bool {
	for _, key := range []string{"value", "condition", "operator"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func leafFromObject(m map[string]any) (Leaf, error) {
	leaf := Leaf{Value: m["value"]}

	var err error
	if leaf.Condition, err = optionalString(m, "condition"); err != nil {
		return Leaf{}, err
	}
	if leaf.Operator, err = optionalString(m, "operator"); err != nil {
		return Leaf{}, err
	}
	if t, ok := m["transform"]; ok {
		b, err := cast.ToBoolE(t)
		if err != nil {
			return Leaf{}, fmt.Errorf("transform: %w", err)
		}
		leaf.Transform = &b
	}
	return leaf, nil
}

func optionalString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

// NormalizeNumbers replaces json.Number with int64 or float64 throughout,
// modifying maps and slices in place.
func NormalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, elem := range val {
			val[k] = NormalizeNumbers(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = NormalizeNumbers(elem)
		}
		return val
	default:
		return v
	}
}

// SortedColumns returns the FlatMap keys in compilation order.
func (m FlatMap) SortedColumns() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
