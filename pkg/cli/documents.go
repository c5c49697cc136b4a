package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDocuments reads every document of a multi-document YAML file. JSON
// input is accepted as well, being a subset of YAML. path "-" reads stdin.
func LoadDocuments(path string) ([]any, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return DecodeDocuments(r)
}

// DecodeDocuments decodes YAML documents from r until EOF. Empty documents
// are skipped.
func DecodeDocuments(r io.Reader) ([]any, error) {
	dec := yaml.NewDecoder(r)
	var docs []any
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %d: %w", len(docs)+1, err)
		}
		if node.Kind == 0 || (node.Kind == yaml.DocumentNode && len(node.Content) == 0) {
			continue
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("failed to decode YAML document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, v)
	}
}
