package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// Parse decodes a JSON mind map and validates it.
//
// Generation services occasionally wrap JSON in Markdown code fences despite
// being told not to; a single surrounding fence is stripped.
func Parse(data []byte) (*Node, error) {
	data = stripFence(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyResponse, "empty mind map document")
	}
	var root *Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode mind map JSON")
	}
	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseYAML decodes a YAML mind map and validates it.
func ParseYAML(data []byte) (*Node, error) {
	var root *Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode mind map YAML")
	}
	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// ReadFile loads a mind map from path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ReadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mind map %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Marshal encodes a mind map as indented JSON.
func Marshal(root *Node) ([]byte, error) {
	return json.MarshalIndent(root, "", "  ")
}

func stripFence(data []byte) []byte {
	s := bytes.TrimSpace(data)
	if !bytes.HasPrefix(s, []byte("```")) {
		return data
	}
	if i := bytes.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return data
	}
	s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
	return s
}
