package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
)

// String returns the kind name used in validation messages.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	}
	return "None"
}

// Value is a single option value: none, bool, integer, float or string.
// Arrays and objects are not representable.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func None() Value                { return Value{} }
func Bool(v bool) Value          { return Value{kind: KindBool, b: v} }
func Integer(v int64) Value      { return Value{kind: KindInteger, i: v} }
func Float(v float64) Value      { return Value{kind: KindFloat, f: v} }
func String(v string) Value      { return Value{kind: KindString, s: v} }
func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNone() bool     { return v.kind == KindNone }
func (v Value) AsBool() bool     { return v.b }
func (v Value) AsInteger() int64 { return v.i }
func (v Value) AsString() string { return v.s }

// AsFloat returns the numeric value, widening integers.
func (v Value) AsFloat() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

// Interface returns the native Go representation.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	}
	return nil
}

// String renders the value the way it is exported to a command environment.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindString:
		return v.s
	}
	return ""
}

// Equal reports whether both values hold the same variant and payload.
func (v Value) Equal(other Value) bool {
	return v == other
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	value, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: option value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*v = None()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return err
		}
		*v = Integer(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		*v = Float(f)
	default:
		*v = String(node.Value)
	}
	return nil
}

// ValueOf converts a decoded JSON/YAML scalar into a Value.
func ValueOf(raw interface{}) (Value, error) {
	switch actual := raw.(type) {
	case nil:
		return None(), nil
	case Value:
		return actual, nil
	case bool:
		return Bool(actual), nil
	case string:
		return String(actual), nil
	case json.Number:
		if i, err := actual.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := actual.Float64()
		if err != nil {
			return None(), fmt.Errorf("invalid number %q: %w", actual, err)
		}
		return Float(f), nil
	case int:
		return Integer(int64(actual)), nil
	case int32:
		return Integer(int64(actual)), nil
	case int64:
		return Integer(actual), nil
	case uint64:
		return Integer(int64(actual)), nil
	case float32:
		return Float(float64(actual)), nil
	case float64:
		if actual == math.Trunc(actual) && math.Abs(actual) < 1<<63 {
			return Integer(int64(actual)), nil
		}
		return Float(actual), nil
	}
	return None(), fmt.Errorf("unsupported option value type %T", raw)
}

// ParseValue interprets text as a JSON scalar, falling back to a string.
func ParseValue(text string) Value {
	var value Value
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value
	}
	return String(text)
}

// Input maps option names to values.
type Input map[string]Value

// Clone returns a shallow copy.
func (i Input) Clone() Input {
	ret := make(Input, len(i))
	for k, v := range i {
		ret[k] = v
	}
	return ret
}

// Merge copies every entry of other into i, overwriting existing keys.
func (i Input) Merge(other Input) Input {
	for k, v := range other {
		i[k] = v
	}
	return i
}

// InputOf converts a generic map, as decoded from JSON, into Input.
func InputOf(m map[string]interface{}) (Input, error) {
	ret := make(Input, len(m))
	for k, raw := range m {
		value, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("option '%s': %w", k, err)
		}
		ret[k] = value
	}
	return ret, nil
}
