package value

import (
	"encoding/json"
	"fmt"
)

// ParseJSON decodes a JSON document into a Value.
func ParseJSON(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	return FromJSON(raw)
}

// FromJSON converts the result of encoding/json (or gopkg.in/yaml.v3)
// decoding into a Value.
func FromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case int:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case float32:
		return Number(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case string:
		return String(x), nil
	case []any:
		arr := make(Array, len(x))
		for i, e := range x {
			v, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(x))
		for k, e := range x {
			v, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			obj[k] = v
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", raw)
	}
}

// ToJSON converts v into plain Go values for encoding. Functions and
// channels have no data representation and become their display strings.
func ToJSON(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Number:
		return float64(x)
	case String:
		return string(x)
	case Array:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToJSON(e)
		}
		return out
	case Object:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = ToJSON(e)
		}
		return out
	default:
		return v.String()
	}
}
