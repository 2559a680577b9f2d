package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
)

// executeFind handles both find() and findOne(): findOne is find() capped
// to a single result, matching the teacher's shared findOpts construction
// with Limit(1) set only in the findOne branch.
func executeFind(ctx context.Context, coll *mongo.Collection, op *mql.Operation, opts Options) (*Result, error) {
	findOpts := driveroptions.Find()
	if sort := resolveSort(op); sort != nil {
		findOpts.SetSort(sort)
	}
	if hint := resolveHint(op); hint != nil {
		findOpts.SetHint(hint)
	}
	skip, limit := resolveSkipLimit(op)
	if skip != nil {
		findOpts.SetSkip(*skip)
	}
	if limit != nil {
		findOpts.SetLimit(*limit)
	}
	if fo := op.FindOptions; fo != nil {
		if fo.Projection != nil {
			findOpts.SetProjection(fo.Projection)
		}
		if fo.Collation != nil {
			findOpts.SetCollation(fo.Collation)
		}
		if fo.Comment != nil {
			findOpts.SetComment(*fo.Comment)
		}
		if fo.BatchSize != nil {
			findOpts.SetBatchSize(int32(*fo.BatchSize))
		}
	}
	if op.Kind == mql.KindFindOne {
		findOpts.SetLimit(1)
	}

	cursor, err := coll.Find(ctx, op.Filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs, err := drainCursor(ctx, cursor, opts.cursorCap())
	if err != nil {
		return nil, err
	}
	return docsResult(docs), nil
}

// drainCursor reads up to cap documents from cursor, matching the teacher's
// cursorToDocumentResponse loop but bounded so an unbounded find() can't
// exhaust memory.
func drainCursor(ctx context.Context, cursor *mongo.Cursor, cap int) ([]bson.D, error) {
	var docs []bson.D
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		if len(docs) >= cap {
			break
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
