package bsontree

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildOneRootPerDocument(t *testing.T) {
	docs := []bson.D{
		{{Key: "name", Value: "alice"}},
		{{Key: "name", Value: "bob"}},
	}
	roots := Build(docs, Options{})
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].Kind != KindDocument || roots[1].Kind != KindDocument {
		t.Fatal("expected both roots to be documents")
	}
}

func TestBuildAssignsUniqueSequentialIDs(t *testing.T) {
	docs := []bson.D{{{Key: "a", Value: 1}, {Key: "b", Value: 2}}}
	roots := Build(docs, Options{})
	seen := map[int]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		if seen[n.ID] {
			t.Fatalf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(roots[0])
	if len(seen) != 3 { // root doc + 2 scalar fields
		t.Fatalf("expected 3 distinct ids, got %d", len(seen))
	}
	for id := 0; id < 3; id++ {
		if !seen[id] {
			t.Fatalf("expected sequential ids 0..2, id %d missing", id)
		}
	}
}

func TestBuildNestedDocumentAndArray(t *testing.T) {
	doc := bson.D{
		{Key: "tags", Value: bson.A{"a", "b"}},
		{Key: "address", Value: bson.D{{Key: "city", Value: "NYC"}}},
	}
	root := Build([]bson.D{doc}, Options{})[0]
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 top-level fields, got %d", len(root.Children))
	}
	tags := root.Children[0]
	if tags.Kind != KindArray || len(tags.Children) != 2 {
		t.Fatalf("expected a 2-element array, got %+v", tags)
	}
	if tags.Children[0].DisplayKey != "[0]" {
		t.Fatalf("expected array index display key '[0]', got %q", tags.Children[0].DisplayKey)
	}
	addr := root.Children[1]
	if addr.Kind != KindDocument || addr.TypeLabel != "object" {
		t.Fatalf("expected a nested document, got %+v", addr)
	}
}

func TestBuildSortFieldsAlphabetically(t *testing.T) {
	doc := bson.D{{Key: "zed", Value: 1}, {Key: "alpha", Value: 2}}
	root := Build([]bson.D{doc}, Options{SortFieldsAlphabetically: true})[0]
	if root.Children[0].DisplayKey != "alpha" {
		t.Fatalf("expected 'alpha' first, got %q", root.Children[0].DisplayKey)
	}
}

func TestScalarTypeLabels(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{nil, "null"},
		{true, "bool"},
		{int32(1), "int"},
		{int64(1), "long"},
		{1.5, "double"},
		{"s", "string"},
		{primitive.NewObjectID(), "objectId"},
		{primitive.Regex{Pattern: "^a"}, "regex"},
	}
	for _, tt := range tests {
		root := BuildOne(tt.value, Options{})
		if root.TypeLabel != tt.want {
			t.Errorf("typeLabel(%T) = %q, want %q", tt.value, root.TypeLabel, tt.want)
		}
	}
}

func TestBuildOneScalarHasNoChildren(t *testing.T) {
	root := BuildOne(int32(42), Options{})
	if root.Kind != KindScalar || root.IsContainer() {
		t.Fatal("expected a scalar, non-container node")
	}
	if root.Display != "42" {
		t.Fatalf("expected display '42', got %q", root.Display)
	}
	if root.DisplayKey != "value" {
		t.Fatalf("expected default display key 'value', got %q", root.DisplayKey)
	}
}

func TestFindByID(t *testing.T) {
	doc := bson.D{{Key: "a", Value: 1}, {Key: "b", Value: 2}}
	roots := Build([]bson.D{doc}, Options{})
	target := roots[0].Children[1]
	found := FindByID(roots, target.ID)
	if found == nil || found.DisplayKey != "b" {
		t.Fatalf("expected to find field 'b', got %+v", found)
	}
}

func TestFindByIDMissing(t *testing.T) {
	roots := Build([]bson.D{{{Key: "a", Value: 1}}}, Options{})
	if FindByID(roots, 9999) != nil {
		t.Fatal("expected nil for a nonexistent id")
	}
}

func TestSetExpandedOnlyAffectsContainers(t *testing.T) {
	root := Build([]bson.D{{{Key: "a", Value: 1}}}, Options{})[0]
	SetExpanded(root, true)
	if !root.Expanded {
		t.Fatal("expected container's Expanded to be set")
	}
	scalar := root.Children[0]
	SetExpanded(scalar, true)
	if scalar.Expanded {
		t.Fatal("expected SetExpanded to be a no-op on a scalar leaf")
	}
}

func TestToStructRoundTripsPlainFields(t *testing.T) {
	doc := bson.D{{Key: "name", Value: "alice"}, {Key: "age", Value: int32(30)}}
	s, err := ToStruct(doc)
	if err != nil {
		t.Fatalf("ToStruct failed: %v", err)
	}
	fields := s.GetFields()
	if fields["name"].GetStringValue() != "alice" {
		t.Fatalf("expected name 'alice', got %v", fields["name"])
	}
	if fields["age"].GetNumberValue() != 30 {
		t.Fatalf("expected age 30, got %v", fields["age"])
	}
}
