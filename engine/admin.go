package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
)

func executeDrop(ctx context.Context, coll *mongo.Collection) (*Result, error) {
	if err := coll.Drop(ctx); err != nil {
		return nil, err
	}
	return okResult(nil), nil
}

func executeDropDatabase(ctx context.Context, db *mongo.Database) (*Result, error) {
	if err := db.Drop(ctx); err != nil {
		return nil, err
	}
	return okResult(nil), nil
}

func executeCreateCollection(ctx context.Context, db *mongo.Database, op *mql.Operation) (*Result, error) {
	var createOpts *driveroptions.CreateCollectionOptions
	if op.CreateCollectionOptions != nil {
		createOpts = driveroptions.CreateCollection()
		for _, e := range op.CreateCollectionOptions {
			switch e.Key {
			case "capped":
				if b, ok := e.Value.(bool); ok {
					createOpts.SetCapped(b)
				}
			case "size":
				if n, ok := asInt64(e.Value); ok {
					createOpts.SetSizeInBytes(n)
				}
			case "max":
				if n, ok := asInt64(e.Value); ok {
					createOpts.SetMaxDocuments(n)
				}
			case "validator":
				if d, ok := e.Value.(bson.D); ok {
					createOpts.SetValidator(d)
				}
			}
		}
	}
	if err := db.CreateCollection(ctx, op.Collection, createOpts); err != nil {
		return nil, err
	}
	return okResult(nil), nil
}

func asInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func executeCreateIndex(ctx context.Context, coll *mongo.Collection, op *mql.Operation) (*Result, error) {
	indexModel := mongo.IndexModel{Keys: op.IndexKeys}
	if ci := op.CreateIndexOptions; ci != nil {
		idxOpts := driveroptions.Index()
		if ci.Name != nil {
			idxOpts.SetName(*ci.Name)
		}
		if ci.Unique != nil {
			idxOpts.SetUnique(*ci.Unique)
		}
		if ci.Sparse != nil {
			idxOpts.SetSparse(*ci.Sparse)
		}
		if ci.Background != nil {
			idxOpts.SetBackground(*ci.Background)
		}
		if ci.ExpireAfterSeconds != nil {
			idxOpts.SetExpireAfterSeconds(int32(*ci.ExpireAfterSeconds))
		}
		if ci.PartialFilterExpression != nil {
			idxOpts.SetPartialFilterExpression(ci.PartialFilterExpression)
		}
		if ci.Collation != nil {
			idxOpts.SetCollation(ci.Collation)
		}
		indexModel.Options = idxOpts
	}
	name, err := coll.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return nil, err
	}
	return okResult(bson.D{{Key: "createdCollectionAutomatically", Value: false}, {Key: "name", Value: name}}), nil
}

func executeListCollections(ctx context.Context, db *mongo.Database) (*Result, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	arr := make(bson.A, len(names))
	for i, n := range names {
		arr[i] = n
	}
	doc := bson.D{{Key: "collections", Value: arr}}
	return docResult(doc), nil
}

func executeListIndexes(ctx context.Context, coll *mongo.Collection) (*Result, error) {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docsResult(docs), nil
}

// executeDatabaseCommand runs op.CommandDoc against the database op.DB
// names ("" means db's own database, "admin" for db.adminCommand()),
// covering stats/runCommand/adminCommand/explain/the index helpers that
// all produce a raw command document instead of a driver-native call.
func executeDatabaseCommand(ctx context.Context, db *mongo.Database, op *mql.Operation) (*Result, error) {
	target := db
	if op.DB == "admin" {
		target = db.Client().Database("admin")
	} else if op.DB != "" {
		target = db.Client().Database(op.DB)
	}
	var doc bson.D
	if err := target.RunCommand(ctx, op.CommandDoc).Decode(&doc); err != nil {
		return nil, err
	}
	return docResult(doc), nil
}
