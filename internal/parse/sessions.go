package parse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SessionsFileName is the fixed name of a year's session source.
const SessionsFileName = "_sessions.yml"

// ErrMissingField is wrapped by every error about an absent session field.
var ErrMissingField = errors.New("missing field")

// sessionFields are the required keys of a session mapping. The files write
// them with a leading colon; the bare name is accepted too.
var sessionFields = [...]string{"title", "description", "track"}

// DecodeError reports a _sessions.yml that matched neither document shape.
type DecodeError struct {
	Year  uint
	Path  string
	Err   error // document-level failure (syntax, empty input)
	Keyed error // why the keyed-mapping shape was rejected
	List  error // why the list-of-pairs shape was rejected
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode")
	if e.Year != 0 {
		fmt.Fprintf(&b, " year %d", e.Year)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
		return b.String()
	}
	fmt.Fprintf(&b, "%s: %v; %s: %v", ShapeKeyed, e.Keyed, ShapeList, e.List)
	return b.String()
}

func (e *DecodeError) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.Err, e.Keyed, e.List} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// document is one successfully decoded _sessions.yml in either shape.
type document interface {
	shape() Shape
	sessions() []Session
}

type keyedDocument struct {
	entries *orderedMap[string, Session]
}

func (keyedDocument) shape() Shape { return ShapeKeyed }

func (d keyedDocument) sessions() []Session {
	out := make([]Session, 0, d.entries.Len())
	d.entries.Each(func(_ string, s Session) {
		out = append(out, s)
	})
	return out
}

type listDocument struct {
	entries *orderedMap[uint64, Session]
}

func (listDocument) shape() Shape { return ShapeList }

func (d listDocument) sessions() []Session {
	out := make([]Session, 0, d.entries.Len())
	d.entries.Each(func(_ uint64, s Session) {
		out = append(out, s)
	})
	return out
}

// ParseFile reads and decodes the session file of one year.
func ParseFile(year uint, path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	sessions, shape, err := Decode(data)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Year = year
			de.Path = path
			return nil, de
		}
		return nil, err
	}

	return &ParseResult{
		Year:     year,
		FilePath: path,
		Shape:    shape,
		Sessions: sessions,
	}, nil
}

// Decode turns raw YAML into sessions. The keyed-mapping shape is tried
// first, then the list-of-pairs shape. Sessions come back in document order.
func Decode(data []byte) ([]Session, Shape, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ShapeUnknown, &DecodeError{Err: err}
	}

	root := documentRoot(&doc)
	if root == nil {
		return nil, ShapeUnknown, &DecodeError{Err: errors.New("empty document")}
	}

	d, keyedErr := decodeKeyed(root)
	if keyedErr == nil {
		return d.sessions(), d.shape(), nil
	}

	d, listErr := decodeList(root)
	if listErr == nil {
		return d.sessions(), d.shape(), nil
	}

	return nil, ShapeUnknown, &DecodeError{Keyed: keyedErr, List: listErr}
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return resolve(doc.Content[0])
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func decodeKeyed(root *yaml.Node) (document, error) {
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level node is a %s, want a mapping", kindName(root.Kind))
	}

	entries := newOrderedMap[string, Session]()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := resolve(root.Content[i])
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: session key is a %s, want a scalar", key.Line, kindName(key.Kind))
		}

		s, err := decodeSession(key.Value, root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("session %q: %w", key.Value, err)
		}
		entries.Set(key.Value, s)
	}

	return keyedDocument{entries: entries}, nil
}

func decodeList(root *yaml.Node) (document, error) {
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("top-level node is a %s, want a sequence", kindName(root.Kind))
	}

	entries := newOrderedMap[uint64, Session]()
	for i, item := range root.Content {
		pair := resolve(item)
		if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
			return nil, fmt.Errorf("entry %d (line %d): want an [id, fields] pair", i, pair.Line)
		}

		var id uint64
		idNode := resolve(pair.Content[0])
		if idNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("entry %d (line %d): id is a %s, want an unsigned integer", i, idNode.Line, kindName(idNode.Kind))
		}
		if err := idNode.Decode(&id); err != nil {
			return nil, fmt.Errorf("entry %d (line %d): id %q is not an unsigned integer", i, idNode.Line, idNode.Value)
		}

		key := strconv.FormatUint(id, 10)
		s, err := decodeSession(key, pair.Content[1])
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", key, err)
		}
		entries.Set(id, s)
	}

	return listDocument{entries: entries}, nil
}

func decodeSession(id string, n *yaml.Node) (Session, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return Session{}, fmt.Errorf("line %d: fields are a %s, want a mapping", n.Line, kindName(n.Kind))
	}

	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		if k.Kind == yaml.ScalarNode {
			fields[k.Value] = n.Content[i+1]
		}
	}

	var values [len(sessionFields)]string
	for i, name := range sessionFields {
		v, ok := fields[":"+name]
		if !ok {
			v, ok = fields[name]
		}
		if !ok {
			return Session{}, fmt.Errorf("%w :%s", ErrMissingField, name)
		}

		s, err := scalarString(v)
		if err != nil {
			return Session{}, fmt.Errorf(":%s: %w", name, err)
		}
		values[i] = s
	}

	return Session{
		ID:          id,
		Title:       values[0],
		Description: values[1],
		Track:       values[2],
	}, nil
}

func scalarString(n *yaml.Node) (string, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: value is a %s, want a string", n.Line, kindName(n.Kind))
	}
	if n.ShortTag() == "!!null" {
		return "", fmt.Errorf("line %d: value is null, want a string", n.Line)
	}
	var s string
	if err := n.Decode(&s); err != nil {
		return "", err
	}
	return s, nil
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
		return "empty node"
	}
}
