package engine

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
)

func executeFindOneAndUpdate(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	upOpts := driveroptions.FindOneAndUpdate()
	if fo := op.FindOneAndUpdateOptions; fo != nil {
		if fo.Upsert != nil {
			upOpts.SetUpsert(*fo.Upsert)
		}
		if fo.ReturnDocument != nil {
			upOpts.SetReturnDocument(*fo.ReturnDocument)
		}
		if fo.ArrayFilters != nil {
			upOpts.SetArrayFilters(driveroptions.ArrayFilters{Filters: fo.ArrayFilters})
		}
		if fo.Collation != nil {
			upOpts.SetCollation(fo.Collation)
		}
		if fo.Hint != nil {
			upOpts.SetHint(fo.Hint)
		}
		if fo.Sort != nil {
			upOpts.SetSort(fo.Sort)
		}
		if fo.Projection != nil {
			upOpts.SetProjection(fo.Projection)
		}
		if fo.Comment != nil {
			upOpts.SetComment(*fo.Comment)
		}
		if fo.BypassDocumentValidation != nil {
			upOpts.SetBypassDocumentValidation(*fo.BypassDocumentValidation)
		}
		if fo.Let != nil {
			upOpts.SetLet(fo.Let)
		}
		coll = withWriteConcern(coll, fo.WriteConcern)
	}
	var doc bson.D
	err := coll.FindOneAndUpdate(ctx, op.Filter, op.Update, upOpts).Decode(&doc)
	return findModifyResult(doc, err)
}

func executeFindOneAndReplace(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	repOpts := driveroptions.FindOneAndReplace()
	if fo := op.FindOneAndReplaceOpts; fo != nil {
		if fo.Upsert != nil {
			repOpts.SetUpsert(*fo.Upsert)
		}
		if fo.ReturnDocument != nil {
			repOpts.SetReturnDocument(*fo.ReturnDocument)
		}
		if fo.Collation != nil {
			repOpts.SetCollation(fo.Collation)
		}
		if fo.Hint != nil {
			repOpts.SetHint(fo.Hint)
		}
		if fo.Sort != nil {
			repOpts.SetSort(fo.Sort)
		}
		if fo.Projection != nil {
			repOpts.SetProjection(fo.Projection)
		}
		if fo.Comment != nil {
			repOpts.SetComment(*fo.Comment)
		}
		if fo.BypassDocumentValidation != nil {
			repOpts.SetBypassDocumentValidation(*fo.BypassDocumentValidation)
		}
		if fo.Let != nil {
			repOpts.SetLet(fo.Let)
		}
		coll = withWriteConcern(coll, fo.WriteConcern)
	}
	var doc bson.D
	err := coll.FindOneAndReplace(ctx, op.Filter, op.Replacement, repOpts).Decode(&doc)
	return findModifyResult(doc, err)
}

func executeFindOneAndDelete(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	delOpts := driveroptions.FindOneAndDelete()
	if fo := op.FindOneAndDeleteOpts; fo != nil {
		if fo.Collation != nil {
			delOpts.SetCollation(fo.Collation)
		}
		if fo.Hint != nil {
			delOpts.SetHint(fo.Hint)
		}
		if fo.Sort != nil {
			delOpts.SetSort(fo.Sort)
		}
		if fo.Projection != nil {
			delOpts.SetProjection(fo.Projection)
		}
		if fo.Comment != nil {
			delOpts.SetComment(*fo.Comment)
		}
		if fo.Let != nil {
			delOpts.SetLet(fo.Let)
		}
		coll = withWriteConcern(coll, fo.WriteConcern)
	}
	var doc bson.D
	err := coll.FindOneAndDelete(ctx, op.Filter, delOpts).Decode(&doc)
	return findModifyResult(doc, err)
}

// findModifyResult normalizes the three findOneAnd* calls' shared "no
// matching document" outcome (mongo.ErrNoDocuments) into a null result
// rather than an error, matching the shell's own findAndModify semantics.
func findModifyResult(doc bson.D, err error) (*Result, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docResult(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return docResult(doc), nil
}
