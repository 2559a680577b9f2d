package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
)

// executeWatch opens a change stream and drains whatever events arrive
// before the operation's timeout expires (watch() is a long-lived shell
// command; a single Run call surfaces the events it can see within its
// deadline, same as the shell printing change events as they arrive).
// db.watch(...) opens it at the database; db.<coll>.watch(...) scopes it to
// the collection.
func executeWatch(ctx context.Context, db *mongo.Database, coll *mongo.Collection, op *mql.Operation, opts Options) (*Result, error) {
	pipeline := op.Pipeline
	if pipeline == nil {
		pipeline = bson.A{}
	}
	var stream *mongo.ChangeStream
	var err error
	if op.WatchOnDatabase {
		stream, err = db.Watch(ctx, pipeline, driveroptions.ChangeStream())
	} else {
		stream, err = coll.Watch(ctx, pipeline, driveroptions.ChangeStream())
	}
	if err != nil {
		return nil, err
	}
	defer stream.Close(ctx)

	var events []bson.D
	for stream.Next(ctx) {
		var ev bson.D
		if err := stream.Decode(&ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
		if len(events) >= opts.cursorCap() {
			break
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return nil, err
	}
	return docsResult(events), nil
}
