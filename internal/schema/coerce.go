package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/roach88/sift/internal/queryir"
)

// Hydrate converts a stored row into application types. Declared columns
// are coerced; undeclared columns pass through. The input is not modified.
func (t *Table) Hydrate(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for name, v := range row {
		col, ok := t.Columns[name]
		if !ok {
			out[name] = v
			continue
		}
		out[name] = HydrateValue(col.Type, v)
	}
	return out
}

// Serialize converts application values into their bindable form.
func (t *Table) Serialize(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for name, v := range values {
		col, ok := t.Columns[name]
		if !ok {
			out[name] = v
			continue
		}
		sv, err := SerializeValue(col.Type, v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		out[name] = sv
	}
	return out, nil
}

var hydrators = map[ColumnType]func(any) any{
	TypeBoolean:     hydrateBool,
	TypeInteger:     hydrateInt,
	TypeBigInt:      hydrateBigInt,
	TypeFloat:       hydrateFloat,
	TypeJSON:        hydrateJSON,
	TypeText:        hydrateText,
	TypeDate:        hydrateTime,
	TypeTimestamp:   hydrateTime,
	TypeTimestampTZ: hydrateTime,
}

// HydrateValue converts one stored value. Unparsable values and nil
// become nil; unknown types pass through.
func HydrateValue(typ ColumnType, v any) any {
	if v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	fn, ok := hydrators[typ]
	if !ok {
		return v
	}
	return fn(v)
}

// SerializeValue converts one application value for binding.
func SerializeValue(typ ColumnType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case TypeJSON:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return string(data), nil
	case TypeBigInt:
		if n, ok := v.(*big.Int); ok {
			if n.IsInt64() {
				return n.Int64(), nil
			}
			return n.String(), nil
		}
	}
	return v, nil
}

func hydrateBool(v any) any {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "on":
			return true
		case "no", "n", "off", "":
			return false
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil
	}
	return b
}

// hydrateInt truncates fractional values toward zero.
func hydrateInt(v any) any {
	switch n := v.(type) {
	case float64:
		return truncate(n)
	case float32:
		return truncate(float64(n))
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncate(f)
		}
		return nil
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return nil
	}
	return i
}

func truncate(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	return int64(f)
}

func hydrateBigInt(v any) any {
	switch n := v.(type) {
	case *big.Int:
		return n
	case string:
		i, ok := new(big.Int).SetString(strings.TrimSpace(n), 10)
		if !ok {
			return nil
		}
		return i
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		i, _ := big.NewFloat(n).Int(nil)
		return i
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return nil
	}
	return big.NewInt(i)
}

func hydrateFloat(v any) any {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return f
}

// hydrateJSON decodes text, keeping integral numbers as int64; values the driver already decoded (objects,
// arrays, numbers, booleans) pass through unchanged.
func hydrateJSON(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	if dec.More() {
		return nil
	}
	return queryir.NormalizeNumbers(out)
}

func hydrateText(v any) any {
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil
	}
	return s
}

func hydrateTime(v any) any {
	if t, ok := v.(time.Time); ok {
		return t
	}
	t, err := cast.ToTimeE(v)
	if err != nil || t.IsZero() {
		return nil
	}
	return t
}
