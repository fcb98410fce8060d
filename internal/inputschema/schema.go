package inputschema

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/partytracker/partytracker/runtime/metadata"
)

// Entry is one label with its fields.
type Entry struct {
	Label  string           `json:"label" yaml:"label"`
	Fields []metadata.Field `json:"fields" yaml:"fields"`
}

// InputSchema is the flattened root union. Labels keep variant order in
// every accessor and in both JSON and YAML output.
type InputSchema struct {
	root    string
	labels  []string
	fields  map[string][]metadata.Field
	skipped []string
}

func newInputSchema(root string, size int) *InputSchema {
	return &InputSchema{
		root:   root,
		labels: make([]string, 0, size),
		fields: make(map[string][]metadata.Field, size),
	}
}

func (s *InputSchema) add(label string, fields []metadata.Field) {
	copied := make([]metadata.Field, len(fields))
	copy(copied, fields)
	s.labels = append(s.labels, label)
	s.fields[label] = copied
}

func (s *InputSchema) skip(label string) {
	s.skipped = append(s.skipped, label)
}

// Root returns the name of the union the schema was flattened from.
func (s *InputSchema) Root() string {
	return s.root
}

// Len returns the number of entries.
func (s *InputSchema) Len() int {
	return len(s.labels)
}

// Has reports whether label has an entry.
func (s *InputSchema) Has(label string) bool {
	_, ok := s.fields[label]
	return ok
}

// Labels returns the entry labels in variant order.
func (s *InputSchema) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Fields returns a copy of the fields for label.
func (s *InputSchema) Fields(label string) ([]metadata.Field, bool) {
	fields, ok := s.fields[label]
	if !ok {
		return nil, false
	}
	out := make([]metadata.Field, len(fields))
	copy(out, fields)
	return out, true
}

// Entries returns every entry in variant order.
func (s *InputSchema) Entries() []Entry {
	out := make([]Entry, 0, len(s.labels))
	for _, label := range s.labels {
		fields, _ := s.Fields(label)
		out = append(out, Entry{Label: label, Fields: fields})
	}
	return out
}

// Skipped returns the labels of variants that produced no entry.
func (s *InputSchema) Skipped() []string {
	out := make([]string, len(s.skipped))
	copy(out, s.skipped)
	return out
}

// ToMap returns the schema as a plain map. Order is lost.
func (s *InputSchema) ToMap() map[string][]metadata.Field {
	out := make(map[string][]metadata.Field, len(s.labels))
	for _, label := range s.labels {
		out[label], _ = s.Fields(label)
	}
	return out
}

// MarshalJSON encodes the schema as a JSON object with keys in variant order.
func (s *InputSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range s.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.fields[label])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the schema as a YAML mapping with keys in variant order.
func (s *InputSchema) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, label := range s.labels {
		var value yaml.Node
		if err := value.Encode(s.fields[label]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: label},
			&value,
		)
	}
	return node, nil
}
