package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
)

func executeAggregate(ctx context.Context, coll *mongo.Collection, op *mql.Operation, opts Options) (*Result, error) {
	aggOpts := driveroptions.Aggregate()
	if ao := op.AggregateOptions; ao != nil {
		if ao.AllowDiskUse != nil {
			aggOpts.SetAllowDiskUse(*ao.AllowDiskUse)
		}
		if ao.BatchSize != nil {
			aggOpts.SetBatchSize(int32(*ao.BatchSize))
		}
		if ao.Collation != nil {
			aggOpts.SetCollation(ao.Collation)
		}
		if ao.Hint != nil {
			aggOpts.SetHint(ao.Hint)
		}
		if ao.Comment != nil {
			aggOpts.SetComment(*ao.Comment)
		}
		if ao.BypassDocumentValidation != nil {
			aggOpts.SetBypassDocumentValidation(*ao.BypassDocumentValidation)
		}
	}

	cursor, err := coll.Aggregate(ctx, op.Pipeline, aggOpts)
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
