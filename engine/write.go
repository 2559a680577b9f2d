package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/felixdotgo/mongoshell/internal/mql"
	parsedoptions "github.com/felixdotgo/mongoshell/internal/options"
)

// withWriteConcern returns a collection handle scoped to wc when non-nil,
// since the driver applies write concern at the collection/session level
// rather than through per-call options.
func withWriteConcern(coll *mongo.Collection, wc *writeconcern.WriteConcern) *mongo.Collection {
	if wc == nil {
		return coll
	}
	return coll.Clone(driveroptions.Collection().SetWriteConcern(wc))
}

func executeInsertOne(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	insOpts := driveroptions.InsertOne()
	if io := op.InsertOneOptions; io != nil {
		if io.BypassDocumentValidation != nil {
			insOpts.SetBypassDocumentValidation(*io.BypassDocumentValidation)
		}
		if io.Comment != nil {
			insOpts.SetComment(*io.Comment)
		}
		coll = withWriteConcern(coll, io.WriteConcern)
	}
	res, err := coll.InsertOne(ctx, op.Filter, insOpts)
	if err != nil {
		return nil, err
	}
	return okResult(bson.D{{Key: "insertedId", Value: res.InsertedID}}), nil
}

func executeInsertMany(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	docs := make([]interface{}, len(op.Pipeline))
	for i, d := range op.Pipeline {
		docs[i] = d
	}
	insOpts := driveroptions.InsertMany()
	if im := op.InsertManyOptions; im != nil {
		if im.Ordered != nil {
			insOpts.SetOrdered(*im.Ordered)
		}
		if im.BypassDocumentValidation != nil {
			insOpts.SetBypassDocumentValidation(*im.BypassDocumentValidation)
		}
		if im.Comment != nil {
			insOpts.SetComment(*im.Comment)
		}
		coll = withWriteConcern(coll, im.WriteConcern)
	}
	res, err := coll.InsertMany(ctx, docs, insOpts)
	if err != nil {
		return nil, err
	}
	ids := make(bson.A, len(res.InsertedIDs))
	copy(ids, res.InsertedIDs)
	return okResult(bson.D{
		{Key: "insertedCount", Value: int64(len(res.InsertedIDs))},
		{Key: "insertedIds", Value: ids},
	}), nil
}

func executeUpdateOne(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	if op.UpdateOptions != nil {
		coll = withWriteConcern(coll, op.UpdateOptions.WriteConcern)
	}
	res, err := coll.UpdateOne(ctx, op.Filter, op.Update, updateDriverOptions(op.UpdateOptions))
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func executeUpdateMany(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	if op.UpdateOptions != nil {
		coll = withWriteConcern(coll, op.UpdateOptions.WriteConcern)
	}
	res, err := coll.UpdateMany(ctx, op.Filter, op.Update, updateDriverOptions(op.UpdateOptions))
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func updateDriverOptions(uo *parsedoptions.UpdateParsedOptions) *driveroptions.UpdateOptions {
	upOpts := driveroptions.Update()
	if uo == nil {
		return upOpts
	}
	if uo.Upsert != nil {
		upOpts.SetUpsert(*uo.Upsert)
	}
	if uo.ArrayFilters != nil {
		upOpts.SetArrayFilters(driveroptions.ArrayFilters{Filters: uo.ArrayFilters})
	}
	if uo.Collation != nil {
		upOpts.SetCollation(uo.Collation)
	}
	if uo.Hint != nil {
		upOpts.SetHint(uo.Hint)
	}
	if uo.BypassDocumentValidation != nil {
		upOpts.SetBypassDocumentValidation(*uo.BypassDocumentValidation)
	}
	if uo.Comment != nil {
		upOpts.SetComment(*uo.Comment)
	}
	if uo.Sort != nil {
		upOpts.SetSort(uo.Sort)
	}
	if uo.Let != nil {
		upOpts.SetLet(uo.Let)
	}
	return upOpts
}

func deleteDriverOptions(do *parsedoptions.DeleteParsedOptions) *driveroptions.DeleteOptions {
	delOpts := driveroptions.Delete()
	if do == nil {
		return delOpts
	}
	if do.Collation != nil {
		delOpts.SetCollation(do.Collation)
	}
	if do.Hint != nil {
		delOpts.SetHint(do.Hint)
	}
	if do.Comment != nil {
		delOpts.SetComment(*do.Comment)
	}
	return delOpts
}

func executeReplace(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	repOpts := driveroptions.Replace()
	if ro := op.ReplaceOptions; ro != nil {
		if ro.Upsert != nil {
			repOpts.SetUpsert(*ro.Upsert)
		}
		if ro.Collation != nil {
			repOpts.SetCollation(ro.Collation)
		}
		if ro.Hint != nil {
			repOpts.SetHint(ro.Hint)
		}
		if ro.BypassDocumentValidation != nil {
			repOpts.SetBypassDocumentValidation(*ro.BypassDocumentValidation)
		}
		if ro.Comment != nil {
			repOpts.SetComment(*ro.Comment)
		}
		if ro.Sort != nil {
			repOpts.SetSort(ro.Sort)
		}
		if ro.Let != nil {
			repOpts.SetLet(ro.Let)
		}
		coll = withWriteConcern(coll, ro.WriteConcern)
	}
	res, err := coll.ReplaceOne(ctx, op.Filter, op.Replacement, repOpts)
	if err != nil {
		return nil, err
	}
	return updateResult(res), nil
}

func updateResult(res *mongo.UpdateResult) *Result {
	fields := bson.D{
		{Key: "matchedCount", Value: res.MatchedCount},
		{Key: "modifiedCount", Value: res.ModifiedCount},
	}
	if res.UpsertedID != nil {
		fields = append(fields, bson.E{Key: "upsertedId", Value: res.UpsertedID})
	}
	return okResult(fields)
}

func executeDeleteOne(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	if op.DeleteOptions != nil {
		coll = withWriteConcern(coll, op.DeleteOptions.WriteConcern)
	}
	res, err := coll.DeleteOne(ctx, op.Filter, deleteDriverOptions(op.DeleteOptions))
	if err != nil {
		return nil, err
	}
	return okResult(bson.D{{Key: "deletedCount", Value: res.DeletedCount}}), nil
}

func executeDeleteMany(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	if op.DeleteOptions != nil {
		coll = withWriteConcern(coll, op.DeleteOptions.WriteConcern)
	}
	res, err := coll.DeleteMany(ctx, op.Filter, deleteDriverOptions(op.DeleteOptions))
	if err != nil {
		return nil, err
	}
	return okResult(bson.D{{Key: "deletedCount", Value: res.DeletedCount}}), nil
}
