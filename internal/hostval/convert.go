package hostval

import "fmt"

// FromAny converts a plain Go value tree (as decoded from YAML or JSON) into
// a Value. Supported inputs: nil, bool, string, the numeric types yaml.v3 and
// encoding/json produce, []any, and map[string]any.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type for host value: %T", v)
	}
}

// FromAnySlice converts a slice of plain Go values into an Array.
func FromAnySlice(vs []any) (Array, error) {
	converted, err := FromAny(vs)
	if err != nil {
		return nil, err
	}
	if converted == nil {
		return Array{}, nil
	}
	return converted.(Array), nil
}

// ToAny converts a Value back into a plain Go value tree, suitable for
// encoding/json or yaml.v3. Undefined converts to nil, like Null.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null, Undefined:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		// Unreachable: Value is sealed.
		return nil
	}
}
