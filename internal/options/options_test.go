package options

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"
)

func TestValidateKeysRejectsUnknownKey(t *testing.T) {
	err := ValidateKeys("find", bson.D{{Key: "bogus", Value: 1}})
	if err == nil {
		t.Fatal("expected an error for an unrecognized option key")
	}
}

func TestValidateKeysRejectsUnregisteredMethod(t *testing.T) {
	err := ValidateKeys("noSuchMethod", bson.D{})
	if err == nil {
		t.Fatal("expected an error for a method with no allowlist")
	}
}

func TestDecodeFindPopulatesAllFields(t *testing.T) {
	doc := bson.D{
		{Key: "sort", Value: bson.D{{Key: "name", Value: 1}}},
		{Key: "skip", Value: int32(5)},
		{Key: "limit", Value: int64(10)},
		{Key: "hint", Value: "name_1"},
		{Key: "maxTimeMS", Value: int32(1500)},
		{Key: "comment", Value: "hi"},
	}
	opts, err := DecodeFind("find", doc)
	if err != nil {
		t.Fatalf("DecodeFind failed: %v", err)
	}
	if opts.Skip == nil || *opts.Skip != 5 {
		t.Fatalf("expected skip 5, got %v", opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 10 {
		t.Fatalf("expected limit 10, got %v", opts.Limit)
	}
	if opts.Hint != "name_1" {
		t.Fatalf("expected hint 'name_1', got %v", opts.Hint)
	}
	if opts.MaxTimeMS == nil || *opts.MaxTimeMS != 1500*time.Millisecond {
		t.Fatalf("expected maxTimeMS 1500ms, got %v", opts.MaxTimeMS)
	}
	if opts.Comment == nil || *opts.Comment != "hi" {
		t.Fatalf("expected comment 'hi', got %v", opts.Comment)
	}
}

func TestDecodeFindRejectsOptionNotInFindOneAllowlist(t *testing.T) {
	_, err := DecodeFind("findOne", bson.D{{Key: "batchSize", Value: 10}})
	if err == nil {
		t.Fatal("expected an error: batchSize is not in findOne's allowlist")
	}
}

func TestDecodeHintAcceptsStringOrDocument(t *testing.T) {
	opts, err := DecodeFind("find", bson.D{{Key: "hint", Value: bson.D{{Key: "name", Value: 1}}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := opts.Hint.(bson.D); !ok {
		t.Fatalf("expected hint to decode as a document, got %T", opts.Hint)
	}
}

func TestDecodeHintRejectsWrongType(t *testing.T) {
	_, err := DecodeFind("find", bson.D{{Key: "hint", Value: 42}})
	if err == nil {
		t.Fatal("expected an error: hint must be a string or document")
	}
}

func TestDecodeCollationFields(t *testing.T) {
	doc := bson.D{{Key: "collation", Value: bson.D{
		{Key: "locale", Value: "en"},
		{Key: "strength", Value: int32(2)},
		{Key: "caseLevel", Value: true},
		{Key: "caseFirst", Value: "upper"},
		{Key: "numericOrdering", Value: false},
	}}}
	opts, err := DecodeFind("find", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &driveroptions.Collation{Locale: "en", Strength: 2, CaseLevel: true, CaseFirst: "upper"}
	if *opts.Collation != *want {
		t.Fatalf("collation mismatch: got %+v, want %+v", opts.Collation, want)
	}
}

func TestDecodeCollationRejectsUnknownField(t *testing.T) {
	_, err := DecodeFind("find", bson.D{{Key: "collation", Value: bson.D{{Key: "bogus", Value: 1}}}})
	if err == nil {
		t.Fatal("expected an error for an unsupported collation field")
	}
}

func TestDecodeWriteConcern(t *testing.T) {
	doc := bson.D{{Key: "writeConcern", Value: bson.D{
		{Key: "w", Value: "majority"},
		{Key: "j", Value: true},
		{Key: "wtimeout", Value: int32(2000)},
	}}}
	opts, err := DecodeInsertOne(doc)
	if err != nil {
		t.Fatalf("DecodeInsertOne failed: %v", err)
	}
	if opts.WriteConcern.W != "majority" {
		t.Fatalf("expected w 'majority', got %v", opts.WriteConcern.W)
	}
	if opts.WriteConcern.Journal == nil || !*opts.WriteConcern.Journal {
		t.Fatalf("expected journal true")
	}
	if opts.WriteConcern.WTimeout != 2*time.Second {
		t.Fatalf("expected wtimeout 2s, got %v", opts.WriteConcern.WTimeout)
	}
}

func TestDecodeReturnDocument(t *testing.T) {
	opts, err := DecodeFindOneAndUpdate(bson.D{{Key: "returnDocument", Value: "after"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.ReturnDocument == nil || *opts.ReturnDocument != driveroptions.After {
		t.Fatalf("expected ReturnDocument=After, got %v", opts.ReturnDocument)
	}
}

func TestDecodeReturnDocumentRejectsInvalidValue(t *testing.T) {
	_, err := DecodeFindOneAndUpdate(bson.D{{Key: "returnDocument", Value: "sideways"}})
	if err == nil {
		t.Fatal("expected an error for an invalid returnDocument value")
	}
}

func TestDecodeArrayFilters(t *testing.T) {
	doc := bson.D{{Key: "arrayFilters", Value: bson.A{
		bson.D{{Key: "elem.grade", Value: bson.D{{Key: "$gte", Value: 85}}}},
	}}}
	opts, err := DecodeUpdate("updateOne", doc)
	if err != nil {
		t.Fatalf("DecodeUpdate failed: %v", err)
	}
	if len(opts.ArrayFilters) != 1 {
		t.Fatalf("expected 1 array filter, got %d", len(opts.ArrayFilters))
	}
}

func TestDecodeEmptyDocumentReturnsZeroOptions(t *testing.T) {
	opts, err := DecodeEstimatedDocumentCount(bson.D{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.MaxTimeMS != nil {
		t.Fatalf("expected nil MaxTimeMS, got %v", opts.MaxTimeMS)
	}
}

func TestDecodeUpdateAcceptsSortAndLet(t *testing.T) {
	doc := bson.D{
		{Key: "sort", Value: bson.D{{Key: "_id", Value: 1}}},
		{Key: "let", Value: bson.D{{Key: "a", Value: 1}}},
	}
	opts, err := DecodeUpdate("updateOne", doc)
	if err != nil {
		t.Fatalf("DecodeUpdate failed: %v", err)
	}
	if opts.Sort == nil || opts.Let == nil {
		t.Fatalf("expected sort and let to decode, got %+v", opts)
	}
}

func TestDecodeReplaceAcceptsSortAndLet(t *testing.T) {
	doc := bson.D{
		{Key: "sort", Value: bson.D{{Key: "_id", Value: 1}}},
		{Key: "let", Value: bson.D{{Key: "a", Value: 1}}},
	}
	opts, err := DecodeReplace(doc)
	if err != nil {
		t.Fatalf("DecodeReplace failed: %v", err)
	}
	if opts.Sort == nil || opts.Let == nil {
		t.Fatalf("expected sort and let to decode, got %+v", opts)
	}
}

func TestDecodeFindOneAndUpdateAcceptsWriteConcernBypassAndLet(t *testing.T) {
	doc := bson.D{
		{Key: "writeConcern", Value: bson.D{{Key: "w", Value: "majority"}}},
		{Key: "bypassDocumentValidation", Value: true},
		{Key: "let", Value: bson.D{{Key: "a", Value: 1}}},
	}
	opts, err := DecodeFindOneAndUpdate(doc)
	if err != nil {
		t.Fatalf("DecodeFindOneAndUpdate failed: %v", err)
	}
	if opts.WriteConcern == nil || opts.BypassDocumentValidation == nil || opts.Let == nil {
		t.Fatalf("expected writeConcern, bypassDocumentValidation and let to decode, got %+v", opts)
	}
}

func TestDecodeFindOneAndReplaceAcceptsWriteConcernBypassAndLet(t *testing.T) {
	doc := bson.D{
		{Key: "writeConcern", Value: bson.D{{Key: "w", Value: "majority"}}},
		{Key: "bypassDocumentValidation", Value: true},
		{Key: "let", Value: bson.D{{Key: "a", Value: 1}}},
	}
	opts, err := DecodeFindOneAndReplace(doc)
	if err != nil {
		t.Fatalf("DecodeFindOneAndReplace failed: %v", err)
	}
	if opts.WriteConcern == nil || opts.BypassDocumentValidation == nil || opts.Let == nil {
		t.Fatalf("expected writeConcern, bypassDocumentValidation and let to decode, got %+v", opts)
	}
}

func TestDecodeFindOneAndDeleteAcceptsWriteConcernAndLet(t *testing.T) {
	doc := bson.D{
		{Key: "writeConcern", Value: bson.D{{Key: "w", Value: "majority"}}},
		{Key: "let", Value: bson.D{{Key: "a", Value: 1}}},
	}
	opts, err := DecodeFindOneAndDelete(doc)
	if err != nil {
		t.Fatalf("DecodeFindOneAndDelete failed: %v", err)
	}
	if opts.WriteConcern == nil || opts.Let == nil {
		t.Fatalf("expected writeConcern and let to decode, got %+v", opts)
	}
}
