package mql

import (
	"fmt"

	"github.com/felixdotgo/mongoshell/internal/options"
	"go.mongodb.org/mongo-driver/bson"
)

// desugarFindAndModify implements spec.md §120: findAndModify's single
// document argument accepts the full field set split across
// findOneAndUpdate/findOneAndReplace/findOneAndDelete - query, sort, update,
// remove, new/returnNewDocument, returnOriginal, fields/projection, upsert,
// bypassDocumentValidation, arrayFilters, maxTimeMS, writeConcern, collation,
// hint, let, comment - and enforces the two cross-field rules the split
// methods never need to: new/returnOriginal must agree, and fields/projection
// cannot both be set. The fields shared with the split methods are handed off
// to the same per-method decoders those methods use, so the two stay in sync.
func desugarFindAndModify(cmd *Command, args []string) (*Operation, error) {
	spec, err := requireDoc(args, 0, "findAndModify")
	if err != nil {
		return nil, err
	}

	var query bson.D
	var update interface{}
	var updateSet, remove, projectionSet bool
	var returnAfter *bool
	var rawOpts bson.D

	setReturnAfter := func(v bool) error {
		if returnAfter != nil && *returnAfter != v {
			return fmt.Errorf("Parameters 'new' and 'returnOriginal' conflict.")
		}
		returnAfter = &v
		return nil
	}

	for _, e := range spec {
		switch e.Key {
		case "query":
			d, ok := e.Value.(bson.D)
			if !ok {
				return nil, fmt.Errorf("findAndModify's 'query' must be a document.")
			}
			query = d
		case "update":
			switch e.Value.(type) {
			case bson.D, bson.A:
				update = e.Value
				updateSet = true
			default:
				return nil, fmt.Errorf("findAndModify's 'update' must be a document or pipeline.")
			}
		case "remove":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("findAndModify's 'remove' must be a boolean.")
			}
			remove = b
		case "new", "returnNewDocument":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("findAndModify's '%s' must be a boolean.", e.Key)
			}
			if err := setReturnAfter(b); err != nil {
				return nil, err
			}
		case "returnOriginal":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("findAndModify's 'returnOriginal' must be a boolean.")
			}
			if err := setReturnAfter(!b); err != nil {
				return nil, err
			}
		case "fields", "projection":
			if projectionSet {
				return nil, fmt.Errorf("Parameters 'fields' and 'projection' cannot be set at the same time.")
			}
			d, ok := e.Value.(bson.D)
			if !ok {
				return nil, fmt.Errorf("findAndModify's '%s' must be a document.", e.Key)
			}
			projectionSet = true
			rawOpts = append(rawOpts, bson.E{Key: "projection", Value: d})
		case "sort", "upsert", "bypassDocumentValidation", "arrayFilters",
			"maxTimeMS", "writeConcern", "collation", "hint", "let", "comment":
			rawOpts = append(rawOpts, e)
		default:
			return nil, fmt.Errorf("Parameter '%s' is not supported in findAndModify.", e.Key)
		}
	}

	if remove {
		if updateSet {
			return nil, fmt.Errorf("Parameter 'update' must not be set together with remove=true.")
		}
		if hasKey(rawOpts, "upsert") {
			return nil, fmt.Errorf("Parameter 'upsert' is not supported when remove=true.")
		}
		if hasKey(rawOpts, "bypassDocumentValidation") {
			return nil, fmt.Errorf("Parameter 'bypassDocumentValidation' is not supported when remove=true.")
		}
		if hasKey(rawOpts, "arrayFilters") {
			return nil, fmt.Errorf("Parameter 'arrayFilters' is not supported when remove=true.")
		}
		if returnAfter != nil {
			return nil, fmt.Errorf("Document return options are not supported when remove=true.")
		}
		opts, err := options.DecodeFindOneAndDelete(pick(rawOpts,
			"sort", "projection", "maxTimeMS", "writeConcern", "collation", "hint", "let", "comment"))
		if err != nil {
			return nil, err
		}
		return &Operation{
			Collection:           cmd.Collection,
			Kind:                 KindFindOneAndDelete,
			Filter:               query,
			Sort:                 opts.Sort,
			FindOneAndDeleteOpts: opts,
		}, nil
	}

	if !updateSet {
		return nil, fmt.Errorf("findAndModify requires an 'update' parameter when remove=false.")
	}

	if returnAfter != nil {
		rawOpts = append(rawOpts, bson.E{Key: "returnDocument", Value: returnDocumentString(*returnAfter)})
	}

	switch u := update.(type) {
	case bson.A:
		opts, err := options.DecodeFindOneAndUpdate(pick(rawOpts,
			"sort", "projection", "upsert", "bypassDocumentValidation", "arrayFilters",
			"returnDocument", "maxTimeMS", "writeConcern", "collation", "hint", "let", "comment"))
		if err != nil {
			return nil, err
		}
		return &Operation{
			Collection:              cmd.Collection,
			Kind:                    KindFindOneAndUpdate,
			Filter:                  query,
			Update:                  u,
			Sort:                    opts.Sort,
			FindOneAndUpdateOptions: opts,
		}, nil
	case bson.D:
		if isUpdateOperatorDoc(u) {
			opts, err := options.DecodeFindOneAndUpdate(pick(rawOpts,
				"sort", "projection", "upsert", "bypassDocumentValidation", "arrayFilters",
				"returnDocument", "maxTimeMS", "writeConcern", "collation", "hint", "let", "comment"))
			if err != nil {
				return nil, err
			}
			return &Operation{
				Collection:              cmd.Collection,
				Kind:                    KindFindOneAndUpdate,
				Filter:                  query,
				Update:                  u,
				Sort:                    opts.Sort,
				FindOneAndUpdateOptions: opts,
			}, nil
		}
		if hasKey(rawOpts, "arrayFilters") {
			return nil, fmt.Errorf("Parameter 'arrayFilters' is not supported when 'update' is a replacement document.")
		}
		opts, err := options.DecodeFindOneAndReplace(pick(rawOpts,
			"sort", "projection", "upsert", "bypassDocumentValidation",
			"returnDocument", "maxTimeMS", "writeConcern", "collation", "hint", "let", "comment"))
		if err != nil {
			return nil, err
		}
		return &Operation{
			Collection:            cmd.Collection,
			Kind:                  KindFindOneAndReplace,
			Filter:                query,
			Replacement:           u,
			Sort:                  opts.Sort,
			FindOneAndReplaceOpts: opts,
		}, nil
	}
	return nil, fmt.Errorf("findAndModify's 'update' must be a document or pipeline.")
}

// returnDocumentString maps findAndModify's return-after-update flag onto
// the "before"/"after" vocabulary findOneAndUpdate/findOneAndReplace's own
// returnDocument option uses.
func returnDocumentString(after bool) string {
	if after {
		return "after"
	}
	return "before"
}

// hasKey reports whether doc carries key, regardless of its value.
func hasKey(doc bson.D, key string) bool {
	for _, e := range doc {
		if e.Key == key {
			return true
		}
	}
	return false
}

// pick returns the subset of doc whose keys appear in keys, preserving
// doc's original order.
func pick(doc bson.D, keys ...string) bson.D {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	var out bson.D
	for _, e := range doc {
		if _, ok := allowed[e.Key]; ok {
			out = append(out, e)
		}
	}
	return out
}

// isUpdateOperatorDoc reports whether doc's top-level keys are all "$"
// operators ($set, $inc, ...), as opposed to a full replacement document.
func isUpdateOperatorDoc(doc bson.D) bool {
	if len(doc) == 0 {
		return true
	}
	for _, e := range doc {
		if len(e.Key) == 0 || e.Key[0] != '$' {
			return false
		}
	}
	return true
}
