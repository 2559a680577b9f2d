package pluginapi

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/felixdotgo/mongoshell/internal/bsontree"
)

func TestFromNodesProjectsDocumentShape(t *testing.T) {
	doc := bson.D{{Key: "name", Value: bson.D{{Key: "first", Value: "alice"}}}, {Key: "age", Value: int32(30)}}
	roots := bsontree.Build([]bson.D{doc}, bsontree.Options{})

	nodes := FromNodes(roots)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 root node, got %d", len(nodes))
	}
	root := nodes[0]
	if root.Kind != "document" {
		t.Fatalf("expected kind 'document', got %q", root.Kind)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[0].Display != "" {
		t.Fatalf("expected a container child to have no Display, got %q", root.Children[0].Display)
	}
}

func TestFromNodesProjectsScalarLeaf(t *testing.T) {
	root := bsontree.BuildOne(int32(7), bsontree.Options{})
	nodes := FromNodes([]*bsontree.Node{root})
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	if nodes[0].Kind != "scalar" {
		t.Fatalf("expected kind 'scalar', got %q", nodes[0].Kind)
	}
	if nodes[0].Display != "7" {
		t.Fatalf("expected display '7', got %q", nodes[0].Display)
	}
}

func TestFromNodesEmptyInput(t *testing.T) {
	nodes := FromNodes(nil)
	if len(nodes) != 0 {
		t.Fatalf("expected 0 nodes for nil input, got %d", len(nodes))
	}
}
