// Package engine is the external interface spec.md §6 names: Run binds a
// parsed Operation against a live *mongo.Client and returns a result tree,
// ParseOnly exposes the parse stage alone for tests that must not touch a
// driver connection, and BuildTree re-shapes an already-fetched value into
// the C8 display tree. Structured around the teacher's single-entry-point
// execMQL dispatch (plugins/mongodb/main.go), split into parse/execute
// halves because spec.md §6 requires a parse-only seam.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/felixdotgo/mongoshell/internal/bsontree"
	"github.com/felixdotgo/mongoshell/internal/mql"
	"github.com/felixdotgo/mongoshell/internal/translate"
)

// DefaultCursorCap bounds how many documents a single Run call will drain
// from a cursor-producing operation, so an unbounded find() on a huge
// collection can't exhaust memory.
const DefaultCursorCap = 5000

// DefaultTimeout is used when neither the operation's maxTimeMS chain
// modifier, its options document, nor Options.Timeout specifies one.
const DefaultTimeout = 30 * time.Second

// Result is what Run/Execute return: the shaped document tree plus
// whatever scalar summary fields (matchedCount, insertedId, ...) the
// operation produced.
type Result struct {
	Roots   []*bsontree.Node
	Summary bson.D
}

// ParseOnly parses source into an Operation without executing it, the
// seam spec.md §6 requires for tests that exercise C1–C6 without a driver
// connection.
func ParseOnly(source string) (*mql.Operation, error) {
	cmd, err := mql.ParseCommand(source)
	if err != nil {
		return nil, err
	}
	return mql.Build(cmd)
}

// Options configures a Run/Execute call's defaults.
type Options struct {
	Timeout    time.Duration
	CursorCap  int
	Log        *logrus.Logger
	Translator translate.Translator
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

func (o Options) cursorCap() int {
	if o.CursorCap > 0 {
		return o.CursorCap
	}
	return DefaultCursorCap
}

func (o Options) logger() *logrus.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.StandardLogger()
}

func (o Options) translator() translate.Translator {
	if o.Translator != nil {
		return o.Translator
	}
	return translate.Default
}

// Run parses and executes source against db, draining any cursor up to
// Options.CursorCap documents (DefaultCursorCap when unset) and resolving the effective timeout/pagination
// per spec.md §6.
func Run(ctx context.Context, db *mongo.Database, source string, opts Options) (*Result, error) {
	op, err := ParseOnly(source)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, db, op, opts)
}

// resolveTimeout implements the effective-timeout rule: the chain's
// maxTimeMS(...) call wins over the options document's maxTimeMS field,
// which wins over Options.Timeout.
func resolveTimeout(op *mql.Operation, fallback time.Duration) time.Duration {
	if op.MaxTimeMS != nil {
		return time.Duration(*op.MaxTimeMS) * time.Millisecond
	}
	switch {
	case op.FindOptions != nil && op.FindOptions.MaxTimeMS != nil:
		return *op.FindOptions.MaxTimeMS
	case op.AggregateOptions != nil && op.AggregateOptions.MaxTimeMS != nil:
		return *op.AggregateOptions.MaxTimeMS
	case op.CountOptions != nil && op.CountOptions.MaxTimeMS != nil:
		return *op.CountOptions.MaxTimeMS
	case op.EstimatedCountOptions != nil && op.EstimatedCountOptions.MaxTimeMS != nil:
		return *op.EstimatedCountOptions.MaxTimeMS
	case op.DistinctOptions != nil && op.DistinctOptions.MaxTimeMS != nil:
		return *op.DistinctOptions.MaxTimeMS
	}
	return fallback
}

// resolveSkipLimit implements spec.md's pagination merge rule: a chained
// .skip()/.limit() call overrides the options-document field of the same
// name, rather than the two being summed.
func resolveSkipLimit(op *mql.Operation) (skip, limit *int64) {
	skip, limit = op.Skip, op.Limit
	if op.FindOptions != nil {
		if skip == nil {
			skip = op.FindOptions.Skip
		}
		if limit == nil {
			limit = op.FindOptions.Limit
		}
	}
	return skip, limit
}

// resolveSort merges a chained .sort(...) call (winning) with the options
// document's sort field.
func resolveSort(op *mql.Operation) bson.D {
	if op.Sort != nil {
		return op.Sort
	}
	if op.FindOptions != nil {
		return op.FindOptions.Sort
	}
	return nil
}

// resolveHint merges a chained .hint(...) call (winning) with the options
// document's hint field.
func resolveHint(op *mql.Operation) interface{} {
	if op.Hint != nil {
		return op.Hint
	}
	if op.FindOptions != nil {
		return op.FindOptions.Hint
	}
	return nil
}

// Execute binds an already-parsed Operation against db, dispatching on its
// Kind the way the teacher's execMQL switches on the shell method name.
func Execute(ctx context.Context, db *mongo.Database, op *mql.Operation, opts Options) (*Result, error) {
	timeout := resolveTimeout(op, opts.timeout())
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := opts.logger().WithField("kind", op.Kind)
	log.Debug("executing operation")

	if op.Kind == mql.KindReplicaSet {
		return executeReplicaSet(ctx, db, op, opts)
	}

	coll := db.Collection(op.Collection)
	switch op.Kind {
	case mql.KindFind, mql.KindFindOne:
		return executeFind(ctx, coll, op, opts)
	case mql.KindInsertOne:
		return executeInsertOne(ctx, coll, op)
	case mql.KindInsertMany:
		return executeInsertMany(ctx, coll, op)
	case mql.KindUpdateOne:
		return executeUpdateOne(ctx, coll, op)
	case mql.KindUpdateMany:
		return executeUpdateMany(ctx, coll, op)
	case mql.KindReplaceOne:
		return executeReplace(ctx, coll, op)
	case mql.KindDeleteOne:
		return executeDeleteOne(ctx, coll, op)
	case mql.KindDeleteMany:
		return executeDeleteMany(ctx, coll, op)
	case mql.KindAggregate:
		return executeAggregate(ctx, coll, op, opts)
	case mql.KindCountDocuments:
		return executeCountDocuments(ctx, coll, op)
	case mql.KindEstimatedDocumentCount:
		return executeEstimatedDocumentCount(ctx, coll, op)
	case mql.KindDistinct:
		return executeDistinct(ctx, coll, op)
	case mql.KindFindOneAndUpdate:
		return executeFindOneAndUpdate(ctx, coll, op)
	case mql.KindFindOneAndReplace:
		return executeFindOneAndReplace(ctx, coll, op)
	case mql.KindFindOneAndDelete:
		return executeFindOneAndDelete(ctx, coll, op)
	case mql.KindDrop:
		return executeDrop(ctx, coll)
	case mql.KindDropDatabase:
		return executeDropDatabase(ctx, db)
	case mql.KindCreateCollection:
		return executeCreateCollection(ctx, db, op)
	case mql.KindCreateIndex:
		return executeCreateIndex(ctx, coll, op)
	case mql.KindListCollections:
		return executeListCollections(ctx, db)
	case mql.KindListIndexes:
		return executeListIndexes(ctx, coll)
	case mql.KindWatch:
		return executeWatch(ctx, db, coll, op, opts)
	case mql.KindDatabaseCommand:
		return executeDatabaseCommand(ctx, db, op)
	default:
		return nil, fmt.Errorf("Operation kind %v is not implemented.", op.Kind)
	}
}

// okResult builds a {"result":"ok", ...extra} summary tree used by write
// operations that don't return a document, matching the teacher's
// kvResponse pattern.
func okResult(extra bson.D) *Result {
	summary := append(bson.D{{Key: "result", Value: "ok"}}, extra...)
	return &Result{Summary: summary, Roots: bsontree.Build([]bson.D{summary}, bsontree.Options{})}
}

func docResult(doc bson.D) *Result {
	if doc == nil {
		return &Result{Summary: bson.D{{Key: "result", Value: nil}}}
	}
	return &Result{Roots: bsontree.Build([]bson.D{doc}, bsontree.Options{}), Summary: doc}
}

func docsResult(docs []bson.D) *Result {
	return &Result{Roots: bsontree.Build(docs, bsontree.Options{})}
}

// ErrorTree shows a failed operation as the one-node tree spec.md §7
// requires: a single scalar node whose value is the error's message, so a
// caller that renders every result as a tree doesn't need a second display
// path for errors.
func ErrorTree(err error) []*bsontree.Node {
	return bsontree.Build([]bson.D{{{Key: "error", Value: err.Error()}}}, bsontree.Options{})
}

// BuildTree re-shapes an arbitrary already-fetched document slice into the
// C8 display tree, for callers that don't want to re-run the operation.
func BuildTree(docs []bson.D) []*bsontree.Node {
	return bsontree.Build(docs, bsontree.Options{})
}
