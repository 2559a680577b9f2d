// Package bsontree builds the N-ary result tree the engine returns to a
// caller for display/editing (C8): stable per-node ids, parent-relative
// path tracking, and expand/collapse state. Grounded on
// original_source/src/mongo/bson_tree.rs's BsonNode/IdGenerator, stripped
// of its iced GUI widget rendering (out of scope per spec.md §1) and kept
// as the pure data-structure half.
package bsontree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/felixdotgo/mongoshell/internal/shellsyntax"
)

// Kind distinguishes a document/array container node from a scalar leaf.
type Kind int

const (
	KindDocument Kind = iota
	KindArray
	KindScalar
)

// Node is one element of the result tree: a document/array container with
// Children, or a scalar leaf carrying its formatted display text.
type Node struct {
	ID         int
	Kind       Kind
	DisplayKey string // e.g. "name" for a field, "[3]" for an array index
	PathKey    string // e.g. "name" for a field, "3" for an array index
	Path       []string
	TypeLabel  string
	Display    string // formatted scalar text; empty for containers
	Value      interface{}
	Children   []*Node
	Expanded   bool
}

// IsContainer reports whether n has children rather than a scalar value.
func (n *Node) IsContainer() bool { return n.Kind != KindScalar }

// IsEditableScalar reports whether n's value is eligible for inline
// editing — every scalar leaf is, per original_source/bson_tree.rs's
// is_editable_scalar (which is unconditionally true there too).
func (n *Node) IsEditableScalar() bool { return n.Kind == KindScalar }

// Options controls tree construction: field ordering and whether container
// nodes start out expanded.
type Options struct {
	SortFieldsAlphabetically bool
	ExpandAllByDefault       bool
}

type idGenerator struct{ next int }

func (g *idGenerator) id() int {
	id := g.next
	g.next++
	return id
}

// Build constructs a result tree from a slice of top-level documents
// (e.g. a drained cursor's batch), returning one root Node per document.
func Build(docs []bson.D, opts Options) []*Node {
	gen := &idGenerator{}
	roots := make([]*Node, 0, len(docs))
	for i, doc := range docs {
		n := fromBSON(gen, doc, strconv.Itoa(i), strconv.Itoa(i), []string{strconv.Itoa(i)}, opts)
		roots = append(roots, n)
	}
	return roots
}

// BuildOne builds a single-root tree from one value (e.g. a scalar write
// acknowledgment, or a single document).
func BuildOne(v interface{}, opts Options) *Node {
	gen := &idGenerator{}
	return fromBSON(gen, v, "", "", nil, opts)
}

func fromBSON(gen *idGenerator, v interface{}, displayKey, pathKey string, path []string, opts Options) *Node {
	id := gen.id()
	switch t := v.(type) {
	case bson.D:
		fields := make(bson.D, len(t))
		copy(fields, t)
		if opts.SortFieldsAlphabetically {
			sort.SliceStable(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
		}
		children := make([]*Node, 0, len(fields))
		for _, e := range fields {
			childPath := append(append([]string{}, path...), e.Key)
			children = append(children, fromBSON(gen, e.Value, e.Key, e.Key, childPath, opts))
		}
		return &Node{
			ID: id, Kind: KindDocument, DisplayKey: defaultKey(displayKey), PathKey: pathKey,
			Path: path, TypeLabel: "object", Children: children, Value: t,
			Expanded: opts.ExpandAllByDefault,
		}
	case bson.A:
		children := make([]*Node, 0, len(t))
		for i, item := range t {
			idx := strconv.Itoa(i)
			childPath := append(append([]string{}, path...), idx)
			children = append(children, fromBSON(gen, item, "["+idx+"]", idx, childPath, opts))
		}
		return &Node{
			ID: id, Kind: KindArray, DisplayKey: defaultKey(displayKey), PathKey: pathKey,
			Path: path, TypeLabel: "array", Children: children, Value: t,
			Expanded: opts.ExpandAllByDefault,
		}
	default:
		return &Node{
			ID: id, Kind: KindScalar, DisplayKey: defaultKey(displayKey), PathKey: pathKey,
			Path: path, TypeLabel: typeLabel(v), Display: shellsyntax.FormatScalar(v), Value: v,
		}
	}
}

func defaultKey(k string) string {
	if k == "" {
		return "value"
	}
	return k
}

func typeLabel(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int32:
		return "int"
	case int64:
		return "long"
	case float64:
		return "double"
	case primitive.Decimal128:
		return "decimal"
	case string:
		return "string"
	case primitive.ObjectID:
		return "objectId"
	case primitive.DateTime:
		return "date"
	case primitive.Binary:
		return "binData"
	case primitive.Regex:
		return "regex"
	case primitive.Timestamp:
		return "timestamp"
	case primitive.JavaScript, primitive.CodeWithScope:
		return "javascript"
	case primitive.MinKey:
		return "minKey"
	case primitive.MaxKey:
		return "maxKey"
	case primitive.Undefined:
		return "undefined"
	case primitive.Symbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// FindByID walks roots looking for the node with the given id, returning
// nil if it is not present.
func FindByID(roots []*Node, id int) *Node {
	for _, r := range roots {
		if found := findByID(r, id); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *Node, id int) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// SetExpanded toggles whether a container node's children are shown.
func SetExpanded(n *Node, expanded bool) {
	if n.IsContainer() {
		n.Expanded = expanded
	}
}

// ToStruct exports a document node as a google.protobuf.Struct, following
// the teacher's bsonDocToStruct pattern exactly: marshal through relaxed
// extended JSON, then unmarshal with encoding/json (not bson's own ext-JSON
// decoder) into a plain map, since structpb.NewStruct only accepts the
// handful of plain-JSON Go types (string/float64/bool/nil/[]interface{}/
// map[string]interface{}) that package produces, not BSON-typed values.
func ToStruct(doc bson.D) (*structpb.Struct, error) {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("marshal ext-json: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal to map: %w", err)
	}
	return structpb.NewStruct(m)
}
