package workspace

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Wire shape (same as the tree document stored per project):
//
//	{"type": "file", "content": "..."}
//	{"type": "directory", "children": {"name": <node>, ...}}
//
// Children keep insertion order in both directions.

type fileJSON struct {
	Type    Kind   `json:"type"`
	Content string `json:"content"`
}

type directoryJSON struct {
	Type     Kind                                 `json:"type"`
	Children *orderedmap.OrderedMap[string, Node] `json:"children"`
}

type rawDirectoryJSON struct {
	Type     Kind                                            `json:"type"`
	Children *orderedmap.OrderedMap[string, json.RawMessage] `json:"children"`
}

// MarshalJSON implements json.Marshaler
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileJSON{Type: KindFile, Content: f.Content})
}

// UnmarshalJSON implements json.Unmarshaler
func (f *File) UnmarshalJSON(data []byte) error {
	var raw fileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != KindFile {
		return fmt.Errorf("workspace: expected node type %q, got %q", KindFile, raw.Type)
	}
	f.Content = raw.Content
	return nil
}

// MarshalJSON implements json.Marshaler
func (d *Directory) MarshalJSON() ([]byte, error) {
	return json.Marshal(directoryJSON{Type: KindDirectory, Children: d.entries()})
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Directory) UnmarshalJSON(data []byte) error {
	var raw rawDirectoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != KindDirectory {
		return fmt.Errorf("workspace: expected node type %q, got %q", KindDirectory, raw.Type)
	}

	d.children = orderedmap.New[string, Node]()
	if raw.Children == nil {
		return nil
	}
	for pair := raw.Children.Oldest(); pair != nil; pair = pair.Next() {
		if err := ValidateSegment(pair.Key); err != nil {
			return fmt.Errorf("workspace: child %q: %w", pair.Key, err)
		}
		child, err := DecodeNode(pair.Value)
		if err != nil {
			return fmt.Errorf("workspace: child %q: %w", pair.Key, err)
		}
		d.children.Set(pair.Key, child)
	}
	return nil
}

// DecodeNode decodes a single tagged node.
func DecodeNode(data []byte) (Node, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var n Node
	switch head.Type {
	case KindFile:
		n = &File{}
	case KindDirectory:
		n = &Directory{}
	default:
		return nil, fmt.Errorf("unknown node type %q", head.Type)
	}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}
