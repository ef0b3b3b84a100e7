package form

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Descriptor declares one form field.
type Descriptor struct {
	Name    string
	Kind    Kind
	Label   string
	Default *Value
	// Options feeds select and autocomplete fields.
	Options []string
	// Conditional names a sibling field controlling visibility.
	Conditional string
	// ConditionalValues is matched against a non-flag sibling's value.
	ConditionalValues []string
}

// Title is the label shown for the field, falling back to its name.
func (d Descriptor) Title() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Fields is an ordered descriptor list. Names are unique within one form.
type Fields []Descriptor

// Lookup returns the descriptor for name.
func (f Fields) Lookup(name string) (Descriptor, bool) {
	for _, d := range f {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns the field names in declaration order.
func (f Fields) Names() []string {
	names := make([]string, len(f))
	for i, d := range f {
		names[i] = d.Name
	}
	return names
}

// Validate checks descriptor shape: unique names, known kinds, defaults
// typed per kind and conditionals naming an existing sibling.
func (f Fields) Validate() error {
	seen := make(map[string]struct{}, len(f))
	for _, d := range f {
		if d.Name == "" {
			return configurationError("field with empty name")
		}
		if _, dup := seen[d.Name]; dup {
			return configurationError(fmt.Sprintf("duplicate field %q", d.Name))
		}
		seen[d.Name] = struct{}{}
		if _, ok := ParseKind(string(d.Kind)); !ok {
			return unknownKindError(d.Name, string(d.Kind))
		}
		if d.Default != nil && d.Default.Type() != d.Kind.ValueType() {
			return configurationError(fmt.Sprintf("field %q: %s default for a %s field", d.Name, d.Default.Type(), d.Kind))
		}
	}
	for _, d := range f {
		if d.Conditional == "" {
			if len(d.ConditionalValues) > 0 {
				return configurationError(fmt.Sprintf("field %q: conditionalValues without conditional", d.Name))
			}
			continue
		}
		if d.Conditional == d.Name {
			return configurationError(fmt.Sprintf("field %q: conditional on itself", d.Name))
		}
		if _, ok := seen[d.Conditional]; !ok {
			return configurationError(fmt.Sprintf("field %q: conditional sibling %q does not exist", d.Name, d.Conditional))
		}
	}
	return nil
}

type wireDescriptor struct {
	Type              string    `yaml:"type"`
	Label             string    `yaml:"label"`
	DefaultValue      yaml.Node `yaml:"defaultValue"`
	Options           []string  `yaml:"options"`
	Conditional       string    `yaml:"conditional"`
	ConditionalValues []string  `yaml:"conditionalValues"`
}

// ParseFields decodes a descriptor mapping (YAML or JSON) keyed by field
// name. Mapping order becomes field order. The result is validated.
func ParseFields(data []byte) (Fields, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, configurationError(fmt.Sprintf("parse fields: %v", err))
	}
	if doc.Kind == 0 {
		return Fields{}, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, configurationError("fields must be a mapping of name to descriptor")
	}

	fields := make(Fields, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		var wire wireDescriptor
		if err := root.Content[i+1].Decode(&wire); err != nil {
			return nil, configurationError(fmt.Sprintf("field %q: %v", name, err))
		}
		kind, ok := ParseKind(wire.Type)
		if !ok {
			return nil, unknownKindError(name, wire.Type)
		}
		d := Descriptor{
			Name:              name,
			Kind:              kind,
			Label:             wire.Label,
			Options:           wire.Options,
			Conditional:       wire.Conditional,
			ConditionalValues: wire.ConditionalValues,
		}
		if wire.DefaultValue.Kind != 0 {
			v, err := decodeValue(&wire.DefaultValue)
			if err != nil {
				return nil, configurationError(fmt.Sprintf("field %q: defaultValue: %v", name, err))
			}
			if !v.IsZero() {
				d.Default = &v
			}
		}
		fields = append(fields, d)
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return fields, nil
}

func decodeValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return Value{}, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return Value{}, err
			}
			return Bool(b), nil
		case "!!int", "!!float":
			var n float64
			if err := node.Decode(&n); err != nil {
				return Value{}, err
			}
			return Number(n), nil
		default:
			return String(node.Value), nil
		}
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return Value{}, err
		}
		return List(items...), nil
	}
	return Value{}, fmt.Errorf("unsupported value")
}
