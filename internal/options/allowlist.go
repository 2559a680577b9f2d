// Package options validates and decodes the trailing options document each
// MQL method accepts, per spec.md §4.6: each method has a closed allowlist
// of recognized option keys, and an unrecognized key is a hard parse error
// rather than being silently ignored. Implementation follows
// original_source/src/mongo/query.rs's per-operation *ParsedOptions structs
// field-by-field, translated into one decoder function per method here.
package options

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// allowedKeys is the per-method closed set of recognized option document
// keys. The list itself is part of the contract: passing a key outside
// this set is rejected even if the driver would otherwise accept it.
var allowedKeys = map[string]map[string]struct{}{
	"find": set("sort", "projection", "skip", "limit", "hint", "collation",
		"maxTimeMS", "comment", "batchSize", "noCursorTimeout", "allowDiskUse"),
	"findOne": set("sort", "projection", "skip", "hint", "collation",
		"maxTimeMS", "comment"),
	"insertOne":  set("writeConcern", "bypassDocumentValidation", "comment"),
	"insertMany": set("writeConcern", "bypassDocumentValidation", "ordered", "comment"),
	"updateOne": set("upsert", "arrayFilters", "collation", "hint",
		"writeConcern", "bypassDocumentValidation", "comment", "let", "sort"),
	"updateMany": set("upsert", "arrayFilters", "collation", "hint",
		"writeConcern", "bypassDocumentValidation", "comment", "let", "sort"),
	"replaceOne": set("upsert", "collation", "hint", "writeConcern",
		"bypassDocumentValidation", "comment", "let", "sort"),
	"deleteOne":  set("collation", "hint", "writeConcern", "comment"),
	"deleteMany": set("collation", "hint", "writeConcern", "comment"),
	"aggregate": set("allowDiskUse", "batchSize", "collation", "hint",
		"maxTimeMS", "comment", "bypassDocumentValidation"),
	"countDocuments": set("limit", "skip", "hint", "maxTimeMS", "collation"),
	"estimatedDocumentCount": set("maxTimeMS"),
	"distinct":               set("collation", "maxTimeMS"),
	"findOneAndUpdate": set("upsert", "returnDocument", "arrayFilters",
		"collation", "hint", "sort", "projection", "maxTimeMS", "comment",
		"writeConcern", "bypassDocumentValidation", "let"),
	"findOneAndReplace": set("upsert", "returnDocument", "collation", "hint",
		"sort", "projection", "maxTimeMS", "comment",
		"writeConcern", "bypassDocumentValidation", "let"),
	"findOneAndDelete": set("collation", "hint", "sort", "projection",
		"maxTimeMS", "comment", "writeConcern", "let"),
	"createIndex":      set("name", "unique", "sparse", "background", "expireAfterSeconds", "partialFilterExpression", "collation"),
	"createCollection": set("capped", "size", "max", "validator", "validationLevel", "validationAction", "collation"),
	"drop":             set(),
	"dropDatabase":     set(),
	"listCollections":  set("nameOnly"),
	"watch":            set("fullDocument", "maxAwaitTimeMS", "batchSize", "resumeAfter", "startAfter", "startAtOperationTime"),
}

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// ValidateKeys checks every key in doc against method's allowlist, and
// fails closed for methods with no registered allowlist at all.
func ValidateKeys(method string, doc bson.D) error {
	allowed, ok := allowedKeys[method]
	if !ok {
		return fmt.Errorf("No option allowlist is registered for method '%s'.", method)
	}
	for _, e := range doc {
		if _, ok := allowed[e.Key]; !ok {
			return fmt.Errorf("Unsupported option '%s' for %s.", e.Key, method)
		}
	}
	return nil
}

func get(doc bson.D, key string) (interface{}, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
