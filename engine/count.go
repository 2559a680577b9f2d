package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
)

func executeCountDocuments(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	countOpts := driveroptions.Count()
	if co := op.CountOptions; co != nil {
		if co.Limit != nil {
			countOpts.SetLimit(*co.Limit)
		}
		if co.Skip != nil {
			countOpts.SetSkip(*co.Skip)
		}
		if co.Hint != nil {
			countOpts.SetHint(co.Hint)
		}
		if co.Collation != nil {
			countOpts.SetCollation(co.Collation)
		}
	}
	n, err := coll.CountDocuments(ctx, op.Filter, countOpts)
	if err != nil {
		return nil, err
	}
	return okResult(bson.D{{Key: "count", Value: n}}), nil
}

func executeEstimatedDocumentCount(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	n, err := coll.EstimatedDocumentCount(ctx, driveroptions.EstimatedDocumentCount())
	if err != nil {
		return nil, err
	}
	return okResult(bson.D{{Key: "count", Value: n}}), nil
}

func executeDistinct(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	distOpts := driveroptions.Distinct()
	if do := op.DistinctOptions; do != nil {
		if do.Collation != nil {
			distOpts.SetCollation(do.Collation)
		}
	}
	values, err := coll.Distinct(ctx, op.FieldName, op.Filter, distOpts)
	if err != nil {
		return nil, err
	}
	arr := make(bson.A, len(values))
	copy(arr, values)
	return &Result{
		Summary: bson.D{{Key: "values", Value: arr}},
		Roots:   BuildTree([]bson.D{{{Key: "values", Value: arr}}}),
	}, nil
}
