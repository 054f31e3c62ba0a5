// Package taxonomy loads the hierarchical failure-code catalog that drives
// rule classification. The taxonomy is loaded once per process and passed
// explicitly to the classifier; there is no global singleton.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/sawmill/internal/model"
)

// Load reads a YAML taxonomy file and flattens it into an ordered code list.
// Declaration order in the file is preserved; the classifier breaks score
// ties in favor of earlier codes.
func Load(path string) ([]model.FailureCode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	codes, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %s: %w", path, err)
	}
	return codes, nil
}

// Parse flattens YAML taxonomy data into an ordered code list.
//
// A node is either a nested mapping, a mapping with an "indicators"
// sequence (leaf), or a bare sequence of indicator strings (shorthand
// leaf). Leaf path components join with ":".
func Parse(data []byte) ([]model.FailureCode, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty taxonomy document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("taxonomy root must be a mapping, got %s", kindName(root.Kind))
	}

	var codes []model.FailureCode
	if err := walk(root, "", &codes); err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("taxonomy defines no codes")
	}
	return codes, nil
}

// walk descends a mapping node, appending leaves in declaration order.
func walk(node *yaml.Node, prefix string, codes *[]model.FailureCode) error {
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]

		path := key.Value
		if prefix != "" {
			path = prefix + ":" + key.Value
		}

		switch val.Kind {
		case yaml.SequenceNode:
			// Shorthand leaf: direct indicator list.
			indicators, err := decodeIndicators(val, path)
			if err != nil {
				return err
			}
			*codes = append(*codes, model.FailureCode{Code: path, Indicators: indicators})

		case yaml.MappingNode:
			if ind := mappingValue(val, "indicators"); ind != nil {
				indicators, err := decodeIndicators(ind, path)
				if err != nil {
					return err
				}
				*codes = append(*codes, model.FailureCode{Code: path, Indicators: indicators})
				continue
			}
			if err := walk(val, path, codes); err != nil {
				return err
			}

		default:
			return fmt.Errorf("code %q: expected mapping or sequence, got %s", path, kindName(val.Kind))
		}
	}
	return nil
}

func decodeIndicators(node *yaml.Node, path string) ([]string, error) {
	var indicators []string
	if err := node.Decode(&indicators); err != nil {
		return nil, fmt.Errorf("code %q: %w", path, err)
	}
	if len(indicators) == 0 {
		return nil, fmt.Errorf("code %q has no indicators", path)
	}
	for _, ind := range indicators {
		if strings.TrimSpace(ind) == "" {
			return nil, fmt.Errorf("code %q has an empty indicator", path)
		}
	}
	return indicators, nil
}

// mappingValue returns the value node for the given key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// ToYAML renders an ordered code list back to YAML for transport.
func ToYAML(codes []model.FailureCode) ([]byte, error) {
	out, err := yaml.Marshal(codes)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	return out, nil
}
