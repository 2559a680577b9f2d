package shellsyntax

import (
	"math"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestQuoteKeysBareIdentifiers(t *testing.T) {
	got := QuoteKeys(`{name: "ann", age: 5}`)
	want := `{"name": "ann", "age": 5}`
	if got != want {
		t.Fatalf("QuoteKeys() = %q, want %q", got, want)
	}
}

func TestQuoteKeysLeavesStringsAlone(t *testing.T) {
	got := QuoteKeys(`{note: "a: b, c: d"}`)
	want := `{"note": "a: b, c: d"}`
	if got != want {
		t.Fatalf("QuoteKeys() = %q, want %q", got, want)
	}
}

func TestQuoteKeysIgnoresRegexColon(t *testing.T) {
	got := QuoteKeys(`{pattern: /a:b/}`)
	want := `{"pattern": /a:b/}`
	if got != want {
		t.Fatalf("QuoteKeys() = %q, want %q", got, want)
	}
}

func TestParseJSONValuePrimitives(t *testing.T) {
	cases := map[string]interface{}{
		`"hello"`: "hello",
		`'hello'`: "hello",
		`42`:      int32(42),
		`3.5`:     3.5,
		`true`:    true,
		`false`:   false,
		`null`:    nil,
	}
	for src, want := range cases {
		got, err := ParseJSONValue(src)
		if err != nil {
			t.Fatalf("ParseJSONValue(%q) error: %v", src, err)
		}
		if got != want {
			t.Fatalf("ParseJSONValue(%q) = %#v, want %#v", src, got, want)
		}
	}
}

func TestParseJSONValueDocument(t *testing.T) {
	got, err := ParseJSONValue(`{name: "ann", tags: [1, 2, 3]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := got.(bson.D)
	if !ok {
		t.Fatalf("expected bson.D, got %T", got)
	}
	if doc[0].Key != "name" || doc[0].Value != "ann" {
		t.Fatalf("unexpected first field: %#v", doc[0])
	}
	arr, ok := doc[1].Value.(bson.A)
	if !ok || len(arr) != 3 {
		t.Fatalf("unexpected tags field: %#v", doc[1].Value)
	}
}

func TestParseJSONValueDuplicateKeysLastWins(t *testing.T) {
	got, err := ParseJSONValue(`{a: 1, a: 2}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := got.(bson.D)
	if len(doc) != 1 || doc[0].Value != int32(2) {
		t.Fatalf("expected last-wins dedup, got %#v", doc)
	}
}

func TestParseBSONValueObjectId(t *testing.T) {
	v, err := ParseBSONValue(`ObjectId("507f1f77bcf86cd799439011")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	oid, ok := v.(primitive.ObjectID)
	if !ok {
		t.Fatalf("expected ObjectID, got %T", v)
	}
	if oid.Hex() != "507f1f77bcf86cd799439011" {
		t.Fatalf("unexpected hex: %s", oid.Hex())
	}
}

func TestParseBSONValueObjectIdRejectsBadHex(t *testing.T) {
	if _, err := ParseBSONValue(`ObjectId("not-hex")`); err == nil {
		t.Fatalf("expected error for invalid ObjectId hex")
	}
}

func TestParseBSONValueNewKeywordIsTransparent(t *testing.T) {
	withNew, err := ParseBSONValue(`new NumberLong("42")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bare, err := ParseBSONValue(`NumberLong("42")`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withNew != bare {
		t.Fatalf("new Ctor() should equal bare Ctor(): %#v vs %#v", withNew, bare)
	}
}

func TestParseBSONValueNumberDoubleAlwaysDouble(t *testing.T) {
	v, err := ParseBSONValue(`NumberDouble(5)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.(float64); !ok {
		t.Fatalf("expected float64 for integral NumberDouble argument, got %T", v)
	}
}

func TestParseBSONValueRegexLiteral(t *testing.T) {
	v, err := ParseBSONValue(`/^abc$/i`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	re, ok := v.(primitive.Regex)
	if !ok {
		t.Fatalf("expected Regex, got %T", v)
	}
	if re.Pattern != "^abc$" || re.Options != "i" {
		t.Fatalf("unexpected regex: %#v", re)
	}
}

func TestParseBSONValueTimestamp(t *testing.T) {
	v, err := ParseBSONValue(`Timestamp(100, 2)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts, ok := v.(primitive.Timestamp)
	if !ok || ts.T != 100 || ts.I != 2 {
		t.Fatalf("unexpected timestamp: %#v", v)
	}
}

func TestParseBSONValueArrayAndObjectConstructors(t *testing.T) {
	v, err := ParseBSONValue(`Array(1, 2, NumberLong(3))`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := v.(bson.A)
	if !ok || len(arr) != 3 {
		t.Fatalf("unexpected array: %#v", v)
	}
	if arr[2] != int64(3) {
		t.Fatalf("expected NumberLong(3) to decode to int64, got %#v", arr[2])
	}
}

func TestParseBSONValueUndefinedAndMinMaxKey(t *testing.T) {
	for src, want := range map[string]interface{}{
		"undefined":   primitive.Undefined{},
		"MinKey()":    primitive.MinKey{},
		"MaxKey()":    primitive.MaxKey{},
		"Undefined()": primitive.Undefined{},
	} {
		v, err := ParseBSONValue(src)
		if err != nil {
			t.Fatalf("ParseBSONValue(%q) error: %v", src, err)
		}
		if v != want {
			t.Fatalf("ParseBSONValue(%q) = %#v, want %#v", src, v, want)
		}
	}
}

func TestParseBSONValueInfinityAndNaN(t *testing.T) {
	v, err := ParseBSONValue("Infinity")
	if err != nil || v.(float64) != math.Inf(1) {
		t.Fatalf("expected +Inf, got %#v err=%v", v, err)
	}
	v, err = ParseBSONValue("-Infinity")
	if err != nil || v.(float64) != math.Inf(-1) {
		t.Fatalf("expected -Inf, got %#v err=%v", v, err)
	}
	v, err = ParseBSONValue("NaN")
	if err != nil || !math.IsNaN(v.(float64)) {
		t.Fatalf("expected NaN, got %#v err=%v", v, err)
	}
}

func TestSplitTopLevelArgsRespectsNesting(t *testing.T) {
	got := SplitTopLevelArgs(`1, {a: "x, y"}, [1, 2]`)
	want := []string{"1", `{a: "x, y"}`, "[1, 2]"}
	if len(got) != len(want) {
		t.Fatalf("SplitTopLevelArgs() = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatScalarRoundTripsCommonTypes(t *testing.T) {
	oid := primitive.NewObjectID()
	if FormatScalar(oid) != "ObjectId(\""+oid.Hex()+"\")" {
		t.Fatalf("unexpected ObjectId formatting: %s", FormatScalar(oid))
	}
	if FormatScalar(int64(42)) != `NumberLong("42")` {
		t.Fatalf("unexpected int64 formatting: %s", FormatScalar(int64(42)))
	}
	if FormatScalar(math.NaN()) != "NaN" {
		t.Fatalf("unexpected NaN formatting: %s", FormatScalar(math.NaN()))
	}
}

func TestFormatShellNestedDocument(t *testing.T) {
	doc := bson.D{{Key: "a", Value: int32(1)}, {Key: "b", Value: bson.A{int32(1), int32(2)}}}
	got := FormatShell(doc)
	want := "{\n    \"a\": 1,\n    \"b\": [\n        1,\n        2\n    ]\n}"
	if got != want {
		t.Fatalf("FormatShell() = %q, want %q", got, want)
	}
}

func TestPreprocessRoundTrip(t *testing.T) {
	out, err := Preprocess(`{a: ObjectId("507f1f77bcf86cd799439011")}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reparsed, err := ParseBSONValue(out)
	if err != nil {
		t.Fatalf("re-parsing preprocessed output failed: %v", err)
	}
	doc, ok := reparsed.(bson.D)
	if !ok || doc[0].Key != "a" {
		t.Fatalf("unexpected round trip result: %#v", reparsed)
	}
	if _, ok := doc[0].Value.(primitive.ObjectID); !ok {
		t.Fatalf("expected ObjectID after round trip, got %T", doc[0].Value)
	}
}

func TestParseDateConstructorComponents(t *testing.T) {
	dt, err := ParseDateConstructor([]string{"2020", "0", "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dt.Year() != 2020 || dt.Month() != 1 || dt.Day() != 1 {
		t.Fatalf("unexpected date: %v", dt)
	}
}

func TestParseDateConstructorClampsOutOfRangeMonth(t *testing.T) {
	dt, err := ParseDateConstructor([]string{"2024", "12", "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dt.Year() != 2024 || dt.Month() != 12 || dt.Day() != 1 {
		t.Fatalf("expected month to clamp to December 2024, got %v", dt)
	}
}

func TestParseDateConstructorClampsOutOfRangeComponents(t *testing.T) {
	dt, err := ParseDateConstructor([]string{"2024", "0", "99", "30", "99", "99"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dt.Day() != 31 {
		t.Fatalf("expected day to clamp to 31, got %d", dt.Day())
	}
	if dt.Hour() != 23 {
		t.Fatalf("expected hour to clamp to 23, got %d", dt.Hour())
	}
	if dt.Minute() != 59 {
		t.Fatalf("expected minute to clamp to 59, got %d", dt.Minute())
	}
	if dt.Second() != 59 {
		t.Fatalf("expected second to clamp to 59, got %d", dt.Second())
	}
}
