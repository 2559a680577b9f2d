package engine

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/felixdotgo/mongoshell/internal/mql"
	"github.com/felixdotgo/mongoshell/internal/options"
)

func TestParseOnlyBuildsFindOperation(t *testing.T) {
	op, err := ParseOnly(`db.users.find({active:true}).sort({name:1}).limit(10)`)
	if err != nil {
		t.Fatalf("ParseOnly failed: %v", err)
	}
	if op.Kind != mql.KindFind {
		t.Fatalf("expected KindFind, got %v", op.Kind)
	}
	if op.Collection != "users" {
		t.Fatalf("expected collection 'users', got %q", op.Collection)
	}
	if op.Limit == nil || *op.Limit != 10 {
		t.Fatalf("expected limit 10, got %v", op.Limit)
	}
	if len(op.Sort) != 1 || op.Sort[0].Key != "name" {
		t.Fatalf("expected sort on name, got %v", op.Sort)
	}
}

func TestParseOnlyRejectsUnknownMethod(t *testing.T) {
	_, err := ParseOnly(`db.users.bogusMethod({})`)
	if err == nil {
		t.Fatal("expected an error for an unsupported method")
	}
}

func TestResolveTimeoutChainWinsOverOptionsDoc(t *testing.T) {
	chainMS := int64(500)
	optMS := 2 * time.Second
	op := &mql.Operation{
		MaxTimeMS:   &chainMS,
		FindOptions: &options.FindParsedOptions{MaxTimeMS: &optMS},
	}
	got := resolveTimeout(op, DefaultTimeout)
	if got != 500*time.Millisecond {
		t.Fatalf("expected chain maxTimeMS to win, got %v", got)
	}
}

func TestResolveTimeoutFallsBackToOptionsDoc(t *testing.T) {
	optMS := 2 * time.Second
	op := &mql.Operation{FindOptions: &options.FindParsedOptions{MaxTimeMS: &optMS}}
	got := resolveTimeout(op, DefaultTimeout)
	if got != optMS {
		t.Fatalf("expected options maxTimeMS, got %v", got)
	}
}

func TestResolveSkipLimitChainOverridesOptionsDoc(t *testing.T) {
	chainLimit := int64(5)
	optLimit := int64(50)
	op := &mql.Operation{
		Limit:       &chainLimit,
		FindOptions: &options.FindParsedOptions{Limit: &optLimit},
	}
	_, limit := resolveSkipLimit(op)
	if limit == nil || *limit != 5 {
		t.Fatalf("expected chained limit to win, got %v", limit)
	}
}

func TestResolveSortPrefersChain(t *testing.T) {
	chainSort := bson.D{{Key: "a", Value: 1}}
	optSort := bson.D{{Key: "b", Value: -1}}
	op := &mql.Operation{Sort: chainSort, FindOptions: &options.FindParsedOptions{Sort: optSort}}
	got := resolveSort(op)
	if len(got) != 1 || got[0].Key != "a" {
		t.Fatalf("expected chain sort to win, got %v", got)
	}
}

func TestOkResultIncludesExtraFields(t *testing.T) {
	res := okResult(bson.D{{Key: "insertedId", Value: "abc"}})
	if len(res.Summary) != 2 || res.Summary[0].Key != "result" || res.Summary[1].Key != "insertedId" {
		t.Fatalf("unexpected summary shape: %v", res.Summary)
	}
	if len(res.Roots) != 1 {
		t.Fatalf("expected a single root node, got %d", len(res.Roots))
	}
}
