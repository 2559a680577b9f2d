package options

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// FindParsedOptions is the validated, typed form of find()/findOne()'s
// trailing options document.
type FindParsedOptions struct {
	Sort       bson.D
	Projection bson.D
	Skip       *int64
	Limit      *int64
	Hint       interface{}
	Collation  *driveroptions.Collation
	MaxTimeMS  *time.Duration
	Comment    *string
	BatchSize  *int64
}

func DecodeFind(method string, doc bson.D) (*FindParsedOptions, error) {
	if err := ValidateKeys(method, doc); err != nil {
		return nil, err
	}
	sort, err := decodeSortProjection(doc, "sort")
	if err != nil {
		return nil, err
	}
	proj, err := decodeSortProjection(doc, "projection")
	if err != nil {
		return nil, err
	}
	skip, err := decodeInt64(doc, "skip")
	if err != nil {
		return nil, err
	}
	limit, err := decodeInt64(doc, "limit")
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	batchSize, err := decodeInt64(doc, "batchSize")
	if err != nil {
		return nil, err
	}
	return &FindParsedOptions{
		Sort: sort, Projection: proj, Skip: skip, Limit: limit, Hint: hint,
		Collation: collation, MaxTimeMS: maxTime, Comment: comment, BatchSize: batchSize,
	}, nil
}

// InsertOneParsedOptions / InsertManyParsedOptions mirror
// original_source/src/mongo/query.rs's structs of the same name.
type InsertOneParsedOptions struct {
	WriteConcern             *writeconcern.WriteConcern
	BypassDocumentValidation *bool
	Comment                  *string
}

func DecodeInsertOne(doc bson.D) (*InsertOneParsedOptions, error) {
	if err := ValidateKeys("insertOne", doc); err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	return &InsertOneParsedOptions{WriteConcern: wc, BypassDocumentValidation: bypass, Comment: comment}, nil
}

type InsertManyParsedOptions struct {
	WriteConcern             *writeconcern.WriteConcern
	BypassDocumentValidation *bool
	Ordered                  *bool
	Comment                  *string
}

func DecodeInsertMany(doc bson.D) (*InsertManyParsedOptions, error) {
	if err := ValidateKeys("insertMany", doc); err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	ordered, err := decodeBool(doc, "ordered")
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	return &InsertManyParsedOptions{WriteConcern: wc, BypassDocumentValidation: bypass, Ordered: ordered, Comment: comment}, nil
}

// UpdateParsedOptions covers updateOne/updateMany.
type UpdateParsedOptions struct {
	Upsert                   *bool
	ArrayFilters             []interface{}
	Collation                *driveroptions.Collation
	Hint                     interface{}
	WriteConcern             *writeconcern.WriteConcern
	BypassDocumentValidation *bool
	Comment                  *string
	Sort                     bson.D
	Let                      bson.D
}

func DecodeUpdate(method string, doc bson.D) (*UpdateParsedOptions, error) {
	if err := ValidateKeys(method, doc); err != nil {
		return nil, err
	}
	upsert, err := decodeBool(doc, "upsert")
	if err != nil {
		return nil, err
	}
	filters, err := decodeArrayFilters(doc)
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	sort, err := decodeSortProjection(doc, "sort")
	if err != nil {
		return nil, err
	}
	letVars, err := decodeSortProjection(doc, "let")
	if err != nil {
		return nil, err
	}
	return &UpdateParsedOptions{
		Upsert: upsert, ArrayFilters: filters, Collation: collation, Hint: hint,
		WriteConcern: wc, BypassDocumentValidation: bypass, Comment: comment,
		Sort: sort, Let: letVars,
	}, nil
}

// ReplaceParsedOptions covers replaceOne.
type ReplaceParsedOptions struct {
	Upsert                   *bool
	Collation                *driveroptions.Collation
	Hint                     interface{}
	WriteConcern             *writeconcern.WriteConcern
	BypassDocumentValidation *bool
	Comment                  *string
	Sort                     bson.D
	Let                      bson.D
}

func DecodeReplace(doc bson.D) (*ReplaceParsedOptions, error) {
	if err := ValidateKeys("replaceOne", doc); err != nil {
		return nil, err
	}
	upsert, err := decodeBool(doc, "upsert")
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	sort, err := decodeSortProjection(doc, "sort")
	if err != nil {
		return nil, err
	}
	letVars, err := decodeSortProjection(doc, "let")
	if err != nil {
		return nil, err
	}
	return &ReplaceParsedOptions{
		Upsert: upsert, Collation: collation, Hint: hint, WriteConcern: wc,
		BypassDocumentValidation: bypass, Comment: comment, Sort: sort, Let: letVars,
	}, nil
}

// DeleteParsedOptions covers deleteOne/deleteMany.
type DeleteParsedOptions struct {
	Collation    *driveroptions.Collation
	Hint         interface{}
	WriteConcern *writeconcern.WriteConcern
	Comment      *string
}

func DecodeDelete(method string, doc bson.D) (*DeleteParsedOptions, error) {
	if err := ValidateKeys(method, doc); err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	return &DeleteParsedOptions{Collation: collation, Hint: hint, WriteConcern: wc, Comment: comment}, nil
}

// AggregateParsedOptions covers aggregate().
type AggregateParsedOptions struct {
	AllowDiskUse             *bool
	BatchSize                *int64
	Collation                *driveroptions.Collation
	Hint                     interface{}
	MaxTimeMS                *time.Duration
	Comment                  *string
	BypassDocumentValidation *bool
}

func DecodeAggregate(doc bson.D) (*AggregateParsedOptions, error) {
	if err := ValidateKeys("aggregate", doc); err != nil {
		return nil, err
	}
	allowDiskUse, err := decodeBool(doc, "allowDiskUse")
	if err != nil {
		return nil, err
	}
	batchSize, err := decodeInt64(doc, "batchSize")
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	return &AggregateParsedOptions{
		AllowDiskUse: allowDiskUse, BatchSize: batchSize, Collation: collation,
		Hint: hint, MaxTimeMS: maxTime, Comment: comment, BypassDocumentValidation: bypass,
	}, nil
}

// CountDocumentsParsedOptions / EstimatedDocumentCountParsedOptions mirror
// original_source/src/mongo/query.rs's structs of the same name.
type CountDocumentsParsedOptions struct {
	Limit     *int64
	Skip      *int64
	Hint      interface{}
	MaxTimeMS *time.Duration
	Collation *driveroptions.Collation
}

func DecodeCountDocuments(doc bson.D) (*CountDocumentsParsedOptions, error) {
	if err := ValidateKeys("countDocuments", doc); err != nil {
		return nil, err
	}
	limit, err := decodeInt64(doc, "limit")
	if err != nil {
		return nil, err
	}
	skip, err := decodeInt64(doc, "skip")
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	return &CountDocumentsParsedOptions{Limit: limit, Skip: skip, Hint: hint, MaxTimeMS: maxTime, Collation: collation}, nil
}

type EstimatedDocumentCountParsedOptions struct {
	MaxTimeMS *time.Duration
}

func DecodeEstimatedDocumentCount(doc bson.D) (*EstimatedDocumentCountParsedOptions, error) {
	if err := ValidateKeys("estimatedDocumentCount", doc); err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	return &EstimatedDocumentCountParsedOptions{MaxTimeMS: maxTime}, nil
}

type DistinctParsedOptions struct {
	Collation *driveroptions.Collation
	MaxTimeMS *time.Duration
}

func DecodeDistinct(doc bson.D) (*DistinctParsedOptions, error) {
	if err := ValidateKeys("distinct", doc); err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	return &DistinctParsedOptions{Collation: collation, MaxTimeMS: maxTime}, nil
}

// FindOneAndUpdateParsedOptions / FindOneAndReplaceParsedOptions /
// FindOneAndDeleteParsedOptions mirror the findAndModify desugaring
// targets spec.md §4.5.3 names.
type FindOneAndUpdateParsedOptions struct {
	Upsert                   *bool
	ReturnDocument           *driveroptions.ReturnDocument
	ArrayFilters             []interface{}
	Collation                *driveroptions.Collation
	Hint                     interface{}
	Sort                     bson.D
	Projection               bson.D
	MaxTimeMS                *time.Duration
	Comment                  *string
	WriteConcern             *writeconcern.WriteConcern
	BypassDocumentValidation *bool
	Let                      bson.D
}

func DecodeFindOneAndUpdate(doc bson.D) (*FindOneAndUpdateParsedOptions, error) {
	if err := ValidateKeys("findOneAndUpdate", doc); err != nil {
		return nil, err
	}
	upsert, err := decodeBool(doc, "upsert")
	if err != nil {
		return nil, err
	}
	rd, err := decodeReturnDocument(doc)
	if err != nil {
		return nil, err
	}
	filters, err := decodeArrayFilters(doc)
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	sort, err := decodeSortProjection(doc, "sort")
	if err != nil {
		return nil, err
	}
	proj, err := decodeSortProjection(doc, "projection")
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	letVars, err := decodeSortProjection(doc, "let")
	if err != nil {
		return nil, err
	}
	return &FindOneAndUpdateParsedOptions{
		Upsert: upsert, ReturnDocument: rd, ArrayFilters: filters, Collation: collation,
		Hint: hint, Sort: sort, Projection: proj, MaxTimeMS: maxTime, Comment: comment,
		WriteConcern: wc, BypassDocumentValidation: bypass, Let: letVars,
	}, nil
}

type FindOneAndReplaceParsedOptions struct {
	Upsert                   *bool
	ReturnDocument           *driveroptions.ReturnDocument
	Collation                *driveroptions.Collation
	Hint                     interface{}
	Sort                     bson.D
	Projection               bson.D
	MaxTimeMS                *time.Duration
	Comment                  *string
	WriteConcern             *writeconcern.WriteConcern
	BypassDocumentValidation *bool
	Let                      bson.D
}

func DecodeFindOneAndReplace(doc bson.D) (*FindOneAndReplaceParsedOptions, error) {
	if err := ValidateKeys("findOneAndReplace", doc); err != nil {
		return nil, err
	}
	upsert, err := decodeBool(doc, "upsert")
	if err != nil {
		return nil, err
	}
	rd, err := decodeReturnDocument(doc)
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	sort, err := decodeSortProjection(doc, "sort")
	if err != nil {
		return nil, err
	}
	proj, err := decodeSortProjection(doc, "projection")
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	bypass, err := decodeBool(doc, "bypassDocumentValidation")
	if err != nil {
		return nil, err
	}
	letVars, err := decodeSortProjection(doc, "let")
	if err != nil {
		return nil, err
	}
	return &FindOneAndReplaceParsedOptions{
		Upsert: upsert, ReturnDocument: rd, Collation: collation, Hint: hint,
		Sort: sort, Projection: proj, MaxTimeMS: maxTime, Comment: comment,
		WriteConcern: wc, BypassDocumentValidation: bypass, Let: letVars,
	}, nil
}

type FindOneAndDeleteParsedOptions struct {
	Collation    *driveroptions.Collation
	Hint         interface{}
	Sort         bson.D
	Projection   bson.D
	MaxTimeMS    *time.Duration
	Comment      *string
	WriteConcern *writeconcern.WriteConcern
	Let          bson.D
}

func DecodeFindOneAndDelete(doc bson.D) (*FindOneAndDeleteParsedOptions, error) {
	if err := ValidateKeys("findOneAndDelete", doc); err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	hint, err := decodeHint(doc)
	if err != nil {
		return nil, err
	}
	sort, err := decodeSortProjection(doc, "sort")
	if err != nil {
		return nil, err
	}
	proj, err := decodeSortProjection(doc, "projection")
	if err != nil {
		return nil, err
	}
	maxTime, err := decodeMaxTimeMS(doc)
	if err != nil {
		return nil, err
	}
	comment, err := decodeString(doc, "comment")
	if err != nil {
		return nil, err
	}
	wc, err := decodeWriteConcern(doc)
	if err != nil {
		return nil, err
	}
	letVars, err := decodeSortProjection(doc, "let")
	if err != nil {
		return nil, err
	}
	return &FindOneAndDeleteParsedOptions{
		Collation: collation, Hint: hint, Sort: sort, Projection: proj,
		MaxTimeMS: maxTime, Comment: comment, WriteConcern: wc, Let: letVars,
	}, nil
}

// CreateIndexParsedOptions covers createIndex()'s second argument.
type CreateIndexParsedOptions struct {
	Name                     *string
	Unique                   *bool
	Sparse                   *bool
	Background               *bool
	ExpireAfterSeconds       *int64
	PartialFilterExpression  bson.D
	Collation                *driveroptions.Collation
}

func DecodeCreateIndex(doc bson.D) (*CreateIndexParsedOptions, error) {
	if err := ValidateKeys("createIndex", doc); err != nil {
		return nil, err
	}
	name, err := decodeString(doc, "name")
	if err != nil {
		return nil, err
	}
	unique, err := decodeBool(doc, "unique")
	if err != nil {
		return nil, err
	}
	sparse, err := decodeBool(doc, "sparse")
	if err != nil {
		return nil, err
	}
	background, err := decodeBool(doc, "background")
	if err != nil {
		return nil, err
	}
	expire, err := decodeInt64(doc, "expireAfterSeconds")
	if err != nil {
		return nil, err
	}
	partial, err := decodeSortProjection(doc, "partialFilterExpression")
	if err != nil {
		return nil, err
	}
	collation, err := decodeCollation(doc)
	if err != nil {
		return nil, err
	}
	return &CreateIndexParsedOptions{
		Name: name, Unique: unique, Sparse: sparse, Background: background,
		ExpireAfterSeconds: expire, PartialFilterExpression: partial, Collation: collation,
	}, nil
}
