package resolver

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// nativeKeys are top-level keys whose values keep their YAML types.
var nativeKeys = map[string]bool{"metadata": true}

// textValue decodes n with every scalar read as text: version: 5.1 is the
// string "5.1" and term: 2030 the string "2030". Only nulls stay null, so
// optional fields can still be left empty.
func textValue(n *yaml.Node, top bool) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return textValue(n.Content[0], true)
	case yaml.AliasNode:
		return textValue(n.Alias, top)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := textValue(c, false)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", key.Line)
			}
			if top && nativeKeys[key.Value] {
				var v any
				if err := value.Decode(&v); err != nil {
					return nil, err
				}
				m[key.Value] = v
				continue
			}
			v, err := textValue(value, false)
			if err != nil {
				return nil, err
			}
			m[key.Value] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}
