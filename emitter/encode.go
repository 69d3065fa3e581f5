package emitter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type format struct {
	suffix string
	encode func(tree any) ([]byte, error)
}

var formats = []format{
	{suffix: ".json", encode: prettyJSON},
	{suffix: ".min.json", encode: minJSON},
	{suffix: ".yml", encode: prettyYAML},
	{suffix: ".min.yml", encode: minYAML},
}

// encodeJSON leaves <, > and & unescaped and drops the encoder's trailing
// newline
func encodeJSON(tree any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func prettyJSON(tree any) ([]byte, error) {
	return encodeJSON(tree, "  ")
}

func minJSON(tree any) ([]byte, error) {
	return encodeJSON(tree, "")
}

// yamlNode goes through JSON so the dialect trees' own marshalers decide the
// content and key order
func yamlNode(tree any) (*yaml.Node, error) {
	data, err := minJSON(tree)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert to yaml: %w", err)
	}
	return &node, nil
}

func prettyYAML(tree any) ([]byte, error) {
	node, err := yamlNode(tree)
	if err != nil {
		return nil, err
	}
	setStyle(node, func(*yaml.Node) yaml.Style { return 0 })
	return encodeYAML(node)
}

func minYAML(tree any) ([]byte, error) {
	node, err := yamlNode(tree)
	if err != nil {
		return nil, err
	}
	setStyle(node, func(n *yaml.Node) yaml.Style {
		if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
			return yaml.FlowStyle
		}
		return n.Style
	})
	return encodeYAML(node)
}

func setStyle(n *yaml.Node, style func(*yaml.Node) yaml.Style) {
	n.Style = style(n)
	for _, c := range n.Content {
		setStyle(c, style)
	}
}

func encodeYAML(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
