package contract

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-openapi/jsonpointer"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasguard/oaserrors"
)

// Document is a decoded OpenAPI document: a JSON-shaped tree plus the
// original key order of every mapping, keyed by JSON pointer.
//
// Values are nil, bool, float64, int, string, []any and map[string]any.
type Document struct {
	root   map[string]any
	order  map[string][]string
	source string
}

// ParseDocument decodes a YAML or JSON OpenAPI document.
func ParseDocument(data []byte) (*Document, error) {
	return parseDocument(data, "")
}

// NewDocument wraps an already decoded document. Mapping keys are reported in
// sorted order since the original order is unknown.
func NewDocument(root map[string]any) *Document {
	return &Document{root: root, order: map[string][]string{}}
}

// LoadFile reads and decodes the document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller
	if err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "reading file", Cause: err}
	}
	return parseDocument(data, path)
}

// Load reads the document at path and builds a Contract from it.
func Load(ctx context.Context, path string, opts ...Option) (*Contract, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, doc, opts...)
}

// Root returns the decoded document tree. It must not be modified.
func (d *Document) Root() map[string]any {
	return d.root
}

// Source returns the file the document was read from, if any.
func (d *Document) Source() string {
	return d.source
}

// Version returns the declared openapi field, or "" when absent.
func (d *Document) Version() string {
	v, _ := d.root["openapi"].(string)
	return v
}

// keys returns the keys of m, the mapping found at ptr, in document order.
func (d *Document) keys(ptr string, m map[string]any) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range d.order[ptr] {
		if _, ok := m[k]; ok && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	if len(out) == len(m) {
		return out
	}
	rest := make([]string, 0, len(m)-len(out))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func parseDocument(data []byte, source string) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "invalid YAML or JSON", Cause: err}
	}

	d := &Document{order: make(map[string][]string), source: source}
	value, err := d.decode(&node, "", 0)
	if err != nil {
		return nil, err
	}
	root, ok := value.(map[string]any)
	if !ok {
		return nil, &oaserrors.ParseError{Path: source, Line: node.Line, Column: node.Column, Message: "document root must be a mapping"}
	}
	d.root = root
	return d, nil
}

// maxDepth bounds nesting, including alias expansion.
const maxDepth = 512

func (d *Document) decode(node *yaml.Node, ptr string, depth int) (any, error) {
	if depth > maxDepth {
		return nil, &oaserrors.ParseError{Path: d.source, Line: node.Line, Column: node.Column, Message: "document nested too deeply"}
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, &oaserrors.ParseError{Path: d.source, Message: "empty document"}
		}
		return d.decode(node.Content[0], ptr, depth+1)

	case yaml.AliasNode:
		return d.decode(node.Alias, ptr, depth+1)

	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		keys := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, &oaserrors.ParseError{Path: d.source, Line: keyNode.Line, Column: keyNode.Column, Message: "mapping keys must be scalars"}
			}
			key := keyNode.Value
			v, err := d.decode(valNode, ptr+"/"+jsonpointer.Escape(key), depth+1)
			if err != nil {
				return nil, err
			}
			if _, dup := m[key]; !dup {
				keys = append(keys, key)
			}
			m[key] = v
		}
		d.order[ptr] = keys
		return m, nil

	case yaml.SequenceNode:
		s := make([]any, 0, len(node.Content))
		for i, child := range node.Content {
			v, err := d.decode(child, fmt.Sprintf("%s/%d", ptr, i), depth+1)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil

	case yaml.ScalarNode:
		return d.scalar(node)

	default:
		return nil, &oaserrors.ParseError{Path: d.source, Line: node.Line, Column: node.Column, Message: fmt.Sprintf("unexpected node kind %v", node.Kind)}
	}
}

// scalar decodes a scalar the way a JSON decoder would see it. Integers that
// fit are kept as int, other numbers become float64, timestamps stay strings.
func (d *Document) scalar(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, &oaserrors.ParseError{Path: d.source, Line: node.Line, Column: node.Column, Message: "invalid scalar", Cause: err}
	}
	switch x := v.(type) {
	case time.Time:
		return node.Value, nil
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x), nil
		}
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case []byte:
		return strings.TrimSpace(node.Value), nil
	default:
		return v, nil
	}
}
