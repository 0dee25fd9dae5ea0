package harness

import (
	"fmt"
	"time"

	"github.com/roach88/sieve/internal/ir"
)

// toValue converts a decoded YAML or JSON value into an ir.Value so that
// records from either backend compare and serialize identically.
func toValue(v any) (ir.Value, error) {
	switch x := v.(type) {
	case nil:
		return ir.Null{}, nil
	case string:
		return ir.String(x), nil
	case bool:
		return ir.Bool(x), nil
	case int:
		return ir.Int(x), nil
	case int64:
		return ir.Int(x), nil
	case uint64:
		return ir.Uint(x), nil
	case float64:
		if x == float64(int64(x)) && x >= -1<<53 && x <= 1<<53 {
			return ir.Int(int64(x)), nil
		}
		return ir.Float(x), nil
	case time.Time:
		return ir.DateTime(x), nil
	case []any:
		list := make(ir.List, len(x))
		for i, item := range x {
			val, err := toValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = val
		}
		return list, nil
	case map[string]any:
		obj := make(ir.Object, len(x))
		for k, item := range x {
			val, err := toValue(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			obj[k] = val
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// canonical renders v as canonical JSON.
func canonical(v any) (string, error) {
	val, err := toValue(v)
	if err != nil {
		return "", err
	}
	data, err := ir.MarshalCanonical(val)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
