package manifest

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// yamlDocument edits the YAML node tree so that key order and comments survive.
type yamlDocument struct {
	root yaml.Node
}

func decodeYAML(data []byte) (Document, error) {
	doc := &yamlDocument{}
	if err := yaml.Unmarshal(data, &doc.root); err != nil {
		return nil, errors.Wrap(ErrMalformedManifest, err.Error())
	}
	if doc.mapping() == nil {
		return nil, errors.Wrap(ErrMalformedManifest, "YAML root is not a mapping")
	}
	return doc, nil
}

func (d *yamlDocument) mapping() *yaml.Node {
	if d.root.Kind != yaml.DocumentNode || len(d.root.Content) == 0 {
		return nil
	}
	if node := d.root.Content[0]; node.Kind == yaml.MappingNode {
		return node
	}
	return nil
}

// lookup walks a dotted path through nested mappings.
func lookup(node *yaml.Node, path []string) *yaml.Node {
	for _, key := range path {
		if node == nil || node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		node = next
	}
	return node
}

func (d *yamlDocument) Get(field string) string {
	node := lookup(d.mapping(), strings.Split(field, "."))
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

func (d *yamlDocument) Set(field, value string) error {
	path := strings.Split(field, ".")
	parent := lookup(d.mapping(), path[:len(path)-1])
	if parent == nil || parent.Kind != yaml.MappingNode {
		return errors.Newf("no mapping to hold %q", field)
	}

	key := path[len(path)-1]
	if node := lookup(parent, []string{key}); node != nil {
		node.Kind = yaml.ScalarNode
		node.Tag = "!!str"
		node.Value = value
		node.Content = nil
		return nil
	}

	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	)
	return nil
}

func (d *yamlDocument) Bytes() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(&d.root); err != nil {
		return nil, errors.Wrap(err, "could not encode YAML")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, "could not encode YAML")
	}
	return buffer.Bytes(), nil
}
