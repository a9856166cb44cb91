package conversion

import (
	"fmt"

	"github.com/pouriya/restcommander-sub000/command"
	"github.com/pouriya/restcommander-sub000/internal/conv"
	"github.com/pouriya/restcommander-sub000/mcp/tool"
	schema "github.com/viant/mcp-protocol/schema"
)

// BuildSchema describes a leaf command as an MCP tool.
func BuildSchema(node *command.Node) schema.Tool {
	name := tool.NewName(node.Segments)
	description := fmt.Sprintf("Command: %s", node.Name)
	inputSchema := schema.ToolInputSchema{
		Type:       "object",
		Properties: map[string]map[string]interface{}{},
		Required:   []string{},
	}
	if descriptor := node.Descriptor; descriptor != nil {
		if descriptor.Description != "" {
			description = descriptor.Description
		}
		for _, optionName := range descriptor.OptionNames() {
			option := descriptor.Options[optionName]
			inputSchema.Properties[optionName] = Property(option)
			if option.Required {
				inputSchema.Required = append(inputSchema.Required, optionName)
			}
		}
	}
	return schema.Tool{
		Name:        name.String(),
		Description: conv.Pointer(description),
		InputSchema: inputSchema,
	}
}

// Property returns the JSON Schema of one option.
func Property(option *command.Option) map[string]interface{} {
	ret := map[string]interface{}{}
	valueType := option.ValueType
	switch valueType.Kind {
	case command.TypeString:
		ret["type"] = "string"
	case command.TypeInteger:
		ret["type"] = "integer"
	case command.TypeFloat:
		ret["type"] = "number"
	case command.TypeBoolean:
		ret["type"] = "boolean"
	case command.TypeEnum:
		accepted := append([]string{}, valueType.Accepted...)
		ret["type"] = "string"
		ret["enum"] = accepted
	}
	if option.Description != "" {
		ret["description"] = option.Description
	}
	if option.Default != nil {
		ret["default"] = option.Default.Interface()
	}
	bounds := valueType.Bounds
	switch valueType.Kind {
	case command.TypeString:
		if bounds.Min != nil {
			ret["minLength"] = int64(*bounds.Min)
		}
		if bounds.Max != nil {
			ret["maxLength"] = int64(*bounds.Max)
		}
	case command.TypeInteger, command.TypeFloat:
		if bounds.Min != nil {
			ret["minimum"] = *bounds.Min
		}
		if bounds.Max != nil {
			ret["maximum"] = *bounds.Max
		}
	}
	return ret
}

// Arguments converts MCP call arguments into command input. Values that are
// not scalars are dropped.
func Arguments(arguments interface{}) (command.Input, error) {
	if arguments == nil {
		return command.Input{}, nil
	}
	m, err := conv.ToMap(arguments)
	if err != nil {
		return nil, fmt.Errorf("arguments must be an object: %w", err)
	}
	ret := make(command.Input, len(m))
	for name, raw := range m {
		value, err := command.ValueOf(raw)
		if err != nil {
			continue
		}
		ret[name] = value
	}
	return ret, nil
}
