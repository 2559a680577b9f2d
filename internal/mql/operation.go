package mql

import (
	"fmt"

	"github.com/felixdotgo/mongoshell/internal/options"
	"github.com/felixdotgo/mongoshell/internal/replicaset"
	"github.com/felixdotgo/mongoshell/internal/shellsyntax"
	"go.mongodb.org/mongo-driver/bson"
)

// Kind identifies the shape of a parsed Operation, the C5 tagged union.
type Kind int

const (
	KindFind Kind = iota
	KindFindOne
	KindInsertOne
	KindInsertMany
	KindUpdateOne
	KindUpdateMany
	KindReplaceOne
	KindDeleteOne
	KindDeleteMany
	KindAggregate
	KindCountDocuments
	KindEstimatedDocumentCount
	KindDistinct
	KindFindOneAndUpdate
	KindFindOneAndReplace
	KindFindOneAndDelete
	KindDrop
	KindDropDatabase
	KindCreateCollection
	KindCreateIndex
	KindListCollections
	KindWatch
	KindReplicaSet
	KindListIndexes
	KindDatabaseCommand
)

// Operation is the fully-resolved, network-agnostic description of one
// shell statement: which collection/database it targets, its filter/
// update/pipeline payload, its validated options, and any chained cursor
// modifiers (sort/skip/limit/hint/maxTimeMS), ready for engine to bind
// against a live *mongo.Client.
type Operation struct {
	Kind       Kind
	Collection string

	Filter      bson.D
	Update      interface{} // bson.D (operator doc) or bson.A (pipeline update)
	Replacement bson.D
	Pipeline    bson.A
	FieldName   string // distinct()'s field argument
	IndexKeys   bson.D // createIndex()'s key-pattern argument

	// Chain modifiers layered on top of a cursor-producing call.
	Sort      bson.D
	Skip      *int64
	Limit     *int64
	Hint      interface{}
	MaxTimeMS *int64

	FindOptions             *options.FindParsedOptions
	InsertOneOptions        *options.InsertOneParsedOptions
	InsertManyOptions       *options.InsertManyParsedOptions
	UpdateOptions           *options.UpdateParsedOptions
	ReplaceOptions          *options.ReplaceParsedOptions
	DeleteOptions           *options.DeleteParsedOptions
	AggregateOptions        *options.AggregateParsedOptions
	CountOptions            *options.CountDocumentsParsedOptions
	EstimatedCountOptions   *options.EstimatedDocumentCountParsedOptions
	DistinctOptions         *options.DistinctParsedOptions
	FindOneAndUpdateOptions *options.FindOneAndUpdateParsedOptions
	FindOneAndReplaceOpts   *options.FindOneAndReplaceParsedOptions
	FindOneAndDeleteOpts    *options.FindOneAndDeleteParsedOptions
	CreateIndexOptions      *options.CreateIndexParsedOptions
	CreateCollectionOptions bson.D

	// WatchOnDatabase distinguishes db.watch(...) (whole-database change
	// stream) from db.<coll>.watch(...).
	WatchOnDatabase bool

	// DB and CommandDoc back KindDatabaseCommand: DB is the target database
	// name ("" means the connection's current database, "admin" for
	// db.adminCommand); CommandDoc is the raw command document to run.
	DB         string
	CommandDoc bson.D

	RS *replicaset.Command
}

// Build converts a parsed Command into an Operation, validating arity,
// decoding filter/update/pipeline arguments through shellsyntax, and
// routing the trailing options document through internal/options.
func Build(cmd *Command) (*Operation, error) {
	if cmd.Receiver == ReceiverReplicaSet {
		rsCmd, err := replicaset.Parse(cmd.Primary.Method, cmd.Primary.Args)
		if err != nil {
			return nil, err
		}
		op := &Operation{Kind: KindReplicaSet, RS: rsCmd}
		return op, nil
	}

	op := &Operation{Collection: cmd.Collection}
	args := cmd.Primary.Args

	switch cmd.Primary.Method {
	case "find", "findOne":
		filter, err := argDoc(args, 0)
		if err != nil {
			return nil, err
		}
		var opts *options.FindParsedOptions
		method := cmd.Primary.Method
		if doc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			opts, err = options.DecodeFind(method, doc)
			if err != nil {
				return nil, err
			}
		}
		op.Filter = filter
		op.FindOptions = opts
		if method == "find" {
			op.Kind = KindFind
		} else {
			op.Kind = KindFindOne
		}

	case "insertOne":
		doc, err := requireDoc(args, 0, "insertOne")
		if err != nil {
			return nil, err
		}
		op.Kind = KindInsertOne
		op.Filter = doc
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.InsertOneOptions, err = options.DecodeInsertOne(optDoc); err != nil {
				return nil, err
			}
		}

	case "insertMany":
		arr, err := requireArray(args, 0, "insertMany")
		if err != nil {
			return nil, err
		}
		op.Kind = KindInsertMany
		op.Pipeline = arr
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.InsertManyOptions, err = options.DecodeInsertMany(optDoc); err != nil {
				return nil, err
			}
		}

	case "updateOne", "updateMany":
		filter, err := requireDoc(args, 0, cmd.Primary.Method)
		if err != nil {
			return nil, err
		}
		update, err := argUpdate(args, 1)
		if err != nil {
			return nil, err
		}
		op.Filter = filter
		op.Update = update
		if cmd.Primary.Method == "updateOne" {
			op.Kind = KindUpdateOne
		} else {
			op.Kind = KindUpdateMany
		}
		if optDoc, ok, err := argDocOpt(args, 2); err != nil {
			return nil, err
		} else if ok {
			if op.UpdateOptions, err = options.DecodeUpdate(cmd.Primary.Method, optDoc); err != nil {
				return nil, err
			}
		}

	case "replaceOne":
		filter, err := requireDoc(args, 0, "replaceOne")
		if err != nil {
			return nil, err
		}
		replacement, err := requireDoc(args, 1, "replaceOne")
		if err != nil {
			return nil, err
		}
		op.Kind = KindReplaceOne
		op.Filter = filter
		op.Replacement = replacement
		if optDoc, ok, err := argDocOpt(args, 2); err != nil {
			return nil, err
		} else if ok {
			if op.ReplaceOptions, err = options.DecodeReplace(optDoc); err != nil {
				return nil, err
			}
		}

	case "deleteOne", "deleteMany":
		filter, err := argDoc(args, 0)
		if err != nil {
			return nil, err
		}
		op.Filter = filter
		if cmd.Primary.Method == "deleteOne" {
			op.Kind = KindDeleteOne
		} else {
			op.Kind = KindDeleteMany
		}
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.DeleteOptions, err = options.DecodeDelete(cmd.Primary.Method, optDoc); err != nil {
				return nil, err
			}
		}

	case "aggregate":
		pipeline, err := requireArray(args, 0, "aggregate")
		if err != nil {
			return nil, err
		}
		op.Kind = KindAggregate
		op.Pipeline = pipeline
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.AggregateOptions, err = options.DecodeAggregate(optDoc); err != nil {
				return nil, err
			}
		}

	case "countDocuments":
		filter, err := argDoc(args, 0)
		if err != nil {
			return nil, err
		}
		op.Kind = KindCountDocuments
		op.Filter = filter
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.CountOptions, err = options.DecodeCountDocuments(optDoc); err != nil {
				return nil, err
			}
		}

	case "estimatedDocumentCount":
		op.Kind = KindEstimatedDocumentCount
		if optDoc, ok, err := argDocOpt(args, 0); err != nil {
			return nil, err
		} else if ok {
			if op.EstimatedCountOptions, err = options.DecodeEstimatedDocumentCount(optDoc); err != nil {
				return nil, err
			}
		}

	case "distinct":
		if len(args) == 0 {
			return nil, fmt.Errorf("distinct expects a field name argument.")
		}
		field, err := argString(args[0])
		if err != nil {
			return nil, fmt.Errorf("distinct's first argument must be a string field name.")
		}
		filter, err := argDoc(args, 1)
		if err != nil {
			return nil, err
		}
		op.Kind = KindDistinct
		op.FieldName = field
		op.Filter = filter
		if optDoc, ok, err := argDocOpt(args, 2); err != nil {
			return nil, err
		} else if ok {
			if op.DistinctOptions, err = options.DecodeDistinct(optDoc); err != nil {
				return nil, err
			}
		}

	case "findOneAndUpdate":
		filter, err := requireDoc(args, 0, "findOneAndUpdate")
		if err != nil {
			return nil, err
		}
		update, err := argUpdate(args, 1)
		if err != nil {
			return nil, err
		}
		op.Kind = KindFindOneAndUpdate
		op.Filter = filter
		op.Update = update
		if optDoc, ok, err := argDocOpt(args, 2); err != nil {
			return nil, err
		} else if ok {
			if op.FindOneAndUpdateOptions, err = options.DecodeFindOneAndUpdate(optDoc); err != nil {
				return nil, err
			}
		}

	case "findOneAndReplace":
		filter, err := requireDoc(args, 0, "findOneAndReplace")
		if err != nil {
			return nil, err
		}
		replacement, err := requireDoc(args, 1, "findOneAndReplace")
		if err != nil {
			return nil, err
		}
		op.Kind = KindFindOneAndReplace
		op.Filter = filter
		op.Replacement = replacement
		if optDoc, ok, err := argDocOpt(args, 2); err != nil {
			return nil, err
		} else if ok {
			if op.FindOneAndReplaceOpts, err = options.DecodeFindOneAndReplace(optDoc); err != nil {
				return nil, err
			}
		}

	case "findOneAndDelete":
		filter, err := argDoc(args, 0)
		if err != nil {
			return nil, err
		}
		op.Kind = KindFindOneAndDelete
		op.Filter = filter
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.FindOneAndDeleteOpts, err = options.DecodeFindOneAndDelete(optDoc); err != nil {
				return nil, err
			}
		}

	case "findAndModify":
		return desugarFindAndModify(cmd, args)

	case "drop":
		op.Kind = KindDrop
	case "dropDatabase":
		op.Kind = KindDropDatabase
	case "createCollection":
		if len(args) == 0 {
			return nil, fmt.Errorf("createCollection expects a collection name argument.")
		}
		name, err := argString(args[0])
		if err != nil {
			return nil, fmt.Errorf("createCollection's first argument must be a string.")
		}
		op.Kind = KindCreateCollection
		op.Collection = name
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if err := options.ValidateKeys("createCollection", optDoc); err != nil {
				return nil, err
			}
			op.CreateCollectionOptions = optDoc
		}
	case "createIndex":
		keys, err := requireDoc(args, 0, "createIndex")
		if err != nil {
			return nil, err
		}
		op.Kind = KindCreateIndex
		op.IndexKeys = keys
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if op.CreateIndexOptions, err = options.DecodeCreateIndex(optDoc); err != nil {
				return nil, err
			}
		}
	case "listCollections":
		op.Kind = KindListCollections
	case "getIndexes":
		if cmd.Receiver != ReceiverCollection {
			return nil, fmt.Errorf("getIndexes must be called on a collection, e.g. db.users.getIndexes().")
		}
		op.Kind = KindListIndexes
	case "createIndexes":
		keys, err := requireArray(args, 0, "createIndexes")
		if err != nil {
			return nil, err
		}
		op.Kind = KindDatabaseCommand
		op.CommandDoc = bson.D{{Key: "createIndexes", Value: op.Collection}, {Key: "indexes", Value: keys}}
	case "dropIndex", "dropIndexes":
		if len(args) == 0 {
			return nil, fmt.Errorf("%s requires an index name, key document, or \"*\" argument.", cmd.Primary.Method)
		}
		v, err := shellsyntax.ParseBSONValue(args[0])
		if err != nil {
			return nil, err
		}
		op.Kind = KindDatabaseCommand
		op.CommandDoc = bson.D{{Key: "dropIndexes", Value: op.Collection}, {Key: "index", Value: v}}
	case "hideIndex", "unhideIndex":
		if len(args) == 0 {
			return nil, fmt.Errorf("%s requires an index name or key document argument.", cmd.Primary.Method)
		}
		v, err := shellsyntax.ParseBSONValue(args[0])
		if err != nil {
			return nil, err
		}
		op.Kind = KindDatabaseCommand
		op.CommandDoc = bson.D{{Key: cmd.Primary.Method, Value: op.Collection}, {Key: "index", Value: v}}
	case "stats":
		if cmd.Receiver != ReceiverDatabase {
			return nil, fmt.Errorf("stats must be called on the database, e.g. db.stats().")
		}
		cmdDoc := bson.D{{Key: "dbStats", Value: 1}}
		if len(args) > 0 {
			v, err := shellsyntax.ParseJSONValue(args[0])
			if err != nil {
				return nil, err
			}
			cmdDoc = append(cmdDoc, bson.E{Key: "scale", Value: v})
		}
		op.Kind = KindDatabaseCommand
		op.CommandDoc = cmdDoc
	case "runCommand":
		if cmd.Receiver != ReceiverDatabase {
			return nil, fmt.Errorf("runCommand must be called on the database, e.g. db.runCommand({...}).")
		}
		doc, err := requireDoc(args, 0, "runCommand")
		if err != nil {
			return nil, err
		}
		op.Kind = KindDatabaseCommand
		op.CommandDoc = doc
	case "adminCommand":
		if cmd.Receiver != ReceiverDatabase {
			return nil, fmt.Errorf("adminCommand must be called on the database, e.g. db.adminCommand({...}).")
		}
		doc, err := requireDoc(args, 0, "adminCommand")
		if err != nil {
			return nil, err
		}
		op.Kind = KindDatabaseCommand
		op.DB = "admin"
		op.CommandDoc = doc
	case "watch":
		op.Kind = KindWatch
		op.WatchOnDatabase = cmd.Receiver == ReceiverDatabase
		if pipe, ok, err := argArrayOpt(args, 0); err != nil {
			return nil, err
		} else if ok {
			op.Pipeline = pipe
		}
		if optDoc, ok, err := argDocOpt(args, 1); err != nil {
			return nil, err
		} else if ok {
			if err := options.ValidateKeys("watch", optDoc); err != nil {
				return nil, err
			}
			op.CreateCollectionOptions = optDoc
		}
	default:
		if cmd.Receiver == ReceiverDatabase {
			return nil, fmt.Errorf("Method db.%s is not supported. Available methods: stats, runCommand, adminCommand, watch.", cmd.Primary.Method)
		}
		return nil, fmt.Errorf("Method '%s' is not supported. Available methods: find, findOne, watch, insertOne, insertMany, updateOne, updateMany, replaceOne, deleteOne, deleteMany, aggregate, countDocuments, estimatedDocumentCount, distinct, findOneAndUpdate, findOneAndReplace, findOneAndDelete, findAndModify, drop, dropDatabase, createCollection, createIndex, createIndexes, dropIndex, dropIndexes, hideIndex, unhideIndex, listCollections, getIndexes.", cmd.Primary.Method)
	}

	if err := applyChain(op, cmd.Chain); err != nil {
		return nil, err
	}
	return op, nil
}

func applyChain(op *Operation, chain []Call) error {
	for i, c := range chain {
		switch c.Method {
		case "sort":
			d, err := requireDoc(c.Args, 0, "sort")
			if err != nil {
				return err
			}
			op.Sort = d
		case "skip":
			n, err := requireCount(c.Args, "skip")
			if err != nil {
				return err
			}
			op.Skip = &n
		case "limit":
			n, err := requireCount(c.Args, "limit")
			if err != nil {
				return err
			}
			op.Limit = &n
		case "hint":
			if len(c.Args) != 1 {
				return fmt.Errorf("hint expects a single argument.")
			}
			v, err := shellsyntax.ParseBSONValue(c.Args[0])
			if err != nil {
				return err
			}
			op.Hint = v
		case "maxTimeMS":
			n, err := requireCount(c.Args, "maxTimeMS")
			if err != nil {
				return err
			}
			op.MaxTimeMS = &n
		case "count", "countDocuments", "explain":
			if i != len(chain)-1 {
				return fmt.Errorf("%s must be the last call in a find chain.", c.Method)
			}
			return applyFindTerminal(op, c)
		default:
			return fmt.Errorf("Method '%s' is not supported in a method chain. Available methods: sort, skip, limit, hint, maxTimeMS, count, countDocuments, explain.", c.Method)
		}
	}
	return nil
}

// applyFindTerminal handles find()'s terminal cursor modifiers, which
// replace the operation's Kind instead of narrowing its filter.
func applyFindTerminal(op *Operation, c Call) error {
	if op.Kind != KindFind && op.Kind != KindFindOne {
		return fmt.Errorf("%s is only valid at the end of a find() chain.", c.Method)
	}

	switch c.Method {
	case "count", "countDocuments":
		op.Kind = KindCountDocuments
		promote := c.Method == "countDocuments"
		if len(c.Args) > 0 {
			v, err := shellsyntax.ParseJSONValue(c.Args[0])
			if err != nil {
				return err
			}
			if b, ok := v.(bool); ok {
				promote = b
			} else if doc, ok := v.(bson.D); ok {
				opts, err := options.DecodeCountDocuments(doc)
				if err != nil {
					return err
				}
				op.CountOptions = opts
			}
		}
		if promote {
			if op.CountOptions == nil {
				op.CountOptions = &options.CountDocumentsParsedOptions{}
			}
			op.CountOptions.Skip = op.Skip
			op.CountOptions.Limit = op.Limit
		}
		op.Skip, op.Limit = nil, nil
		return nil

	case "explain":
		if len(c.Args) != 0 {
			return fmt.Errorf("explain() takes no arguments.")
		}
		find := bson.D{{Key: "find", Value: op.Collection}, {Key: "filter", Value: op.Filter}}
		if op.Sort != nil {
			find = append(find, bson.E{Key: "sort", Value: op.Sort})
		}
		if op.Skip != nil {
			find = append(find, bson.E{Key: "skip", Value: *op.Skip})
		}
		if op.Limit != nil {
			find = append(find, bson.E{Key: "limit", Value: *op.Limit})
		}
		if op.Hint != nil {
			find = append(find, bson.E{Key: "hint", Value: op.Hint})
		}
		op.Kind = KindDatabaseCommand
		op.CommandDoc = bson.D{{Key: "explain", Value: find}}
		return nil
	}
	return nil
}

func requireCount(args []string, method string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s expects a single numeric argument.", method)
	}
	v, err := shellsyntax.ParseJSONValue(args[0])
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("%s expects a numeric argument.", method)
	}
}

func argString(arg string) (string, error) {
	v, err := shellsyntax.ParseJSONValue(arg)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string argument")
	}
	return s, nil
}

func argDoc(args []string, i int) (bson.D, error) {
	if i >= len(args) {
		return bson.D{}, nil
	}
	return shellsyntax.ParseShellDocument(args[i])
}

func requireDoc(args []string, i int, method string) (bson.D, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%s requires a document argument at position %d.", method, i+1)
	}
	return shellsyntax.ParseShellDocument(args[i])
}

func requireArray(args []string, i int, method string) (bson.A, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%s requires an array argument at position %d.", method, i+1)
	}
	return shellsyntax.ParseShellArray(args[i])
}

func argDocOpt(args []string, i int) (bson.D, bool, error) {
	if i >= len(args) {
		return nil, false, nil
	}
	d, err := shellsyntax.ParseShellDocument(args[i])
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func argArrayOpt(args []string, i int) (bson.A, bool, error) {
	if i >= len(args) {
		return nil, false, nil
	}
	a, err := shellsyntax.ParseShellArray(args[i])
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// argUpdate accepts either an operator document ($set, $inc, ...) or an
// aggregation pipeline (an array of stage documents) as update().
func argUpdate(args []string, i int) (interface{}, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("update document or pipeline is required.")
	}
	v, err := shellsyntax.ParseBSONValue(args[i])
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case bson.D, bson.A:
		return v, nil
	default:
		return nil, fmt.Errorf("update argument must be a document or a pipeline array.")
	}
}
