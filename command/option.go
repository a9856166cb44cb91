package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TypeKind names an option value type.
type TypeKind string

const (
	TypeAny     TypeKind = "any"
	TypeBoolean TypeKind = "bool"
	TypeInteger TypeKind = "integer"
	TypeFloat   TypeKind = "float"
	TypeString  TypeKind = "string"
	TypeEnum    TypeKind = "accepted_value_list"
)

// Bounds holds inclusive limits. For strings they apply to the byte length.
type Bounds struct {
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// ValueType describes the accepted shape of an option value.
type ValueType struct {
	Kind     TypeKind
	Bounds   Bounds
	Accepted []string
}

// Name returns the type name used in validation messages.
func (t ValueType) Name() string {
	switch t.Kind {
	case TypeBoolean:
		return KindBool.String()
	case TypeInteger:
		return KindInteger.String()
	case TypeFloat:
		return KindFloat.String()
	case TypeString, TypeEnum:
		return KindString.String()
	}
	return KindNone.String()
}

// Accepts reports whether the variant of v matches the type, ignoring bounds.
func (t ValueType) Accepts(v Value) bool {
	switch t.Kind {
	case TypeAny, "":
		return true
	case TypeBoolean:
		return v.Kind() == KindBool
	case TypeInteger:
		return v.Kind() == KindInteger
	case TypeFloat:
		return v.Kind() == KindFloat
	case TypeString, TypeEnum:
		return v.Kind() == KindString
	}
	return false
}

type sizeSpec struct {
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	MinSize *float64 `yaml:"min_size"`
	MaxSize *float64 `yaml:"max_size"`
}

func (s *sizeSpec) bounds() Bounds {
	ret := Bounds{Min: s.Min, Max: s.Max}
	if s.MinSize != nil {
		ret.Min = s.MinSize
	}
	if s.MaxSize != nil {
		ret.Max = s.MaxSize
	}
	return ret
}

func parseTypeKind(name string) (TypeKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any":
		return TypeAny, nil
	case "bool", "boolean":
		return TypeBoolean, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float", "number":
		return TypeFloat, nil
	case "string", "str":
		return TypeString, nil
	case "accepted_value_list", "enum":
		return TypeEnum, nil
	}
	return "", fmt.Errorf("unknown value type %q", name)
}

// UnmarshalYAML accepts either a bare type name or a single-key mapping
// carrying bounds or the accepted value list.
func (t *ValueType) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		kind, err := parseTypeKind(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if kind == TypeEnum {
			return fmt.Errorf("line %d: %s requires a list of values", node.Line, kind)
		}
		*t = ValueType{Kind: kind}
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: value type mapping must have exactly one key", node.Line)
		}
		kind, err := parseTypeKind(node.Content[0].Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		body := node.Content[1]
		ret := ValueType{Kind: kind}
		switch kind {
		case TypeEnum:
			if err := body.Decode(&ret.Accepted); err != nil {
				return err
			}
			if ret.Accepted == nil {
				ret.Accepted = []string{}
			}
		case TypeInteger, TypeFloat, TypeString:
			if body.Tag != "!!null" {
				size := &sizeSpec{}
				if err := body.Decode(size); err != nil {
					return err
				}
				ret.Bounds = size.bounds()
			}
		}
		*t = ret
		return nil
	}
	return fmt.Errorf("line %d: invalid value type", node.Line)
}

func (t ValueType) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TypeEnum:
		return json.Marshal(map[string]interface{}{string(t.Kind): t.Accepted})
	case TypeInteger, TypeFloat, TypeString:
		if t.Bounds.Min != nil || t.Bounds.Max != nil {
			return json.Marshal(map[string]interface{}{string(t.Kind): map[string]*float64{
				"min_size": t.Bounds.Min,
				"max_size": t.Bounds.Max,
			}})
		}
	case "":
		return json.Marshal(TypeAny)
	}
	return json.Marshal(t.Kind)
}

// Option is the schema of one named command option.
type Option struct {
	Description string    `yaml:"description" json:"description"`
	Required    bool      `yaml:"required" json:"required"`
	ValueType   ValueType `yaml:"value_type" json:"value_type"`
	Default     *Value    `yaml:"default_value" json:"default_value,omitempty"`
	Size        *Bounds   `yaml:"size,omitempty" json:"-"`
}

// HasDefault reports whether a non-null default value is configured.
func (o *Option) HasDefault() bool {
	return o.Default != nil && !o.Default.IsNone()
}

// StateSpec describes how a command reports its state: either a constant
// string or argv passed to the executable.
type StateSpec struct {
	Constant *string  `yaml:"constant,omitempty" json:"constant,omitempty"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Descriptor is the sidecar metadata of a leaf command.
type Descriptor struct {
	Description  string             `yaml:"description" json:"description"`
	Version      string             `yaml:"version,omitempty" json:"version,omitempty"`
	SupportState bool               `yaml:"support_state,omitempty" json:"support_state,omitempty"`
	State        *StateSpec         `yaml:"state,omitempty" json:"state,omitempty"`
	Options      map[string]*Option `yaml:"options,omitempty" json:"options"`
}

// OptionNames returns option names in lexical order.
func (d *Descriptor) OptionNames() []string {
	names := make([]string, 0, len(d.Options))
	for name := range d.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasState reports whether state retrieval is configured.
func (d *Descriptor) HasState() bool {
	return d.SupportState && d.State != nil
}

// Validate checks option schemas for consistency.
func (d *Descriptor) Validate() error {
	if d.State != nil && d.State.Constant != nil && len(d.State.Options) > 0 {
		return fmt.Errorf("state must be either a constant or options")
	}
	for _, name := range d.OptionNames() {
		option := d.Options[name]
		if option == nil {
			return fmt.Errorf("option %q has no definition", name)
		}
		if option.ValueType.Kind == "" {
			option.ValueType.Kind = TypeAny
		}
		if option.Size != nil {
			if option.Size.Min != nil {
				option.ValueType.Bounds.Min = option.Size.Min
			}
			if option.Size.Max != nil {
				option.ValueType.Bounds.Max = option.Size.Max
			}
		}
		if !option.Required && !option.HasDefault() {
			return fmt.Errorf("option %q is optional and does not have a default value", name)
		}
		if option.HasDefault() && !option.ValueType.Accepts(*option.Default) {
			return fmt.Errorf("for option '%s' the default value type should be the same as value type", name)
		}
		if option.ValueType.Kind != TypeEnum {
			continue
		}
		if len(option.ValueType.Accepted) == 0 {
			return fmt.Errorf("value of option '%s' is an accepted_value_list which is empty", name)
		}
		if option.HasDefault() && !contains(option.ValueType.Accepted, option.Default.AsString()) {
			return fmt.Errorf("for option '%s' the default value should be in its default value list", name)
		}
	}
	return nil
}

func contains(list []string, candidate string) bool {
	for _, item := range list {
		if item == candidate {
			return true
		}
	}
	return false
}
