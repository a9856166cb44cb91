package command

import (
	"strings"
)

// CheckInput validates input against the option schemas of node and returns
// a new input with defaults filled in. Keys without a schema pass through.
func CheckInput(node *Node, input Input) (Input, error) {
	ret := input.Clone()
	if node == nil || node.Descriptor == nil {
		return ret, nil
	}
	descriptor := node.Descriptor
	for _, name := range descriptor.OptionNames() {
		option := descriptor.Options[name]
		if value, ok := input[name]; ok {
			checked, err := checkValue(name, option, value)
			if err != nil {
				return nil, err
			}
			ret[name] = checked
			continue
		}
		switch {
		case option.HasDefault():
			ret[name] = *option.Default
		case option.ValueType.Kind == TypeBoolean && !option.Required:
			ret[name] = Bool(false)
		case option.ValueType.Kind == TypeAny && !option.Required:
			ret[name] = None()
		default:
			return nil, invalid(name, "required option %s is not given and has no default value", name)
		}
	}
	return ret, nil
}

func checkValue(name string, option *Option, value Value) (Value, error) {
	valueType := option.ValueType
	switch valueType.Kind {
	case TypeAny, "":
		return value, nil
	case TypeEnum:
		if value.Kind() != KindString {
			return value, invalid(name, "option '%s' should be 'String' and one of %s", name, quoteList(valueType.Accepted))
		}
		if !contains(valueType.Accepted, value.AsString()) {
			return value, invalid(name, "accepted values for option '%s' are %s", name, quoteList(valueType.Accepted))
		}
		return value, nil
	case TypeFloat:
		if value.Kind() == KindInteger {
			value = Float(value.AsFloat())
		}
	}
	if !valueType.Accepts(value) {
		return value, invalid(name, "option '%s' takes '%s' type but we got '%s' type", name, valueType.Name(), value.Kind())
	}
	return value, checkBounds(name, valueType.Bounds, value)
}

func checkBounds(name string, bounds Bounds, value Value) error {
	var size float64
	switch value.Kind() {
	case KindString:
		size = float64(len(value.AsString()))
	case KindInteger, KindFloat:
		size = value.AsFloat()
	default:
		return nil
	}
	if bounds.Min != nil && size < *bounds.Min {
		return invalid(name, "input size %v for option '%s' is lower than configured minimum size %v", size, name, *bounds.Min)
	}
	if bounds.Max != nil && size > *bounds.Max {
		return invalid(name, "input size %v for option '%s' is bigger than configured maximum size %v", size, name, *bounds.Max)
	}
	return nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return strings.Join(quoted, ", ")
}
