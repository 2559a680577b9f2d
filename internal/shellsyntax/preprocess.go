package shellsyntax

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preprocess is the C2 normalization step exposed as its own function for
// testing and display purposes: it runs the full shell grammar (key
// quoting, constructor evaluation, literal parsing) and re-renders the
// result as strict JSON text, so "parse, then re-emit" round-trips can be
// asserted without going through a driver call. internal/mql and
// internal/options call ParseJSONValue/ParseBSONValue directly rather than
// going through this text form; Preprocess exists for callers that want an
// intermediate JSON string (e.g. logging what a shell fragment normalized
// to).
func Preprocess(source string) (string, error) {
	v, err := parseTopLevel(source)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	writeStrictJSON(&b, v)
	return b.String(), nil
}

func writeStrictJSON(b *strings.Builder, v interface{}) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case int32:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		b.WriteString(`{"$numberLong":"`)
		b.WriteString(strconv.FormatInt(t, 10))
		b.WriteString(`"}`)
	case float64:
		b.WriteString(`{"$numberDouble":"`)
		b.WriteString(formatDoubleScalar(t))
		b.WriteString(`"}`)
	case primitive.Decimal128:
		b.WriteString(`{"$numberDecimal":"`)
		b.WriteString(t.String())
		b.WriteString(`"}`)
	case string:
		writeJSONString(b, t)
	case primitive.ObjectID:
		b.WriteString(`{"$oid":"`)
		b.WriteString(t.Hex())
		b.WriteString(`"}`)
	case primitive.DateTime:
		b.WriteString(`{"$date":"`)
		b.WriteString(t.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
		b.WriteString(`"}`)
	case primitive.Binary:
		b.WriteString(`{"$binary":{"base64":"`)
		b.WriteString(base64Encode(t.Data))
		b.WriteString(`","subType":"`)
		b.WriteString(strconv.FormatUint(uint64(t.Subtype), 16))
		b.WriteString(`"}}`)
	case primitive.Regex:
		b.WriteString(`{"$regularExpression":{"pattern":`)
		writeJSONString(b, t.Pattern)
		b.WriteString(`,"options":`)
		writeJSONString(b, t.Options)
		b.WriteString(`}}`)
	case primitive.Timestamp:
		b.WriteString(`{"$timestamp":{"t":`)
		b.WriteString(strconv.FormatUint(uint64(t.T), 10))
		b.WriteString(`,"i":`)
		b.WriteString(strconv.FormatUint(uint64(t.I), 10))
		b.WriteString(`}}`)
	case primitive.JavaScript:
		b.WriteString(`{"$code":`)
		writeJSONString(b, string(t))
		b.WriteString(`}`)
	case primitive.CodeWithScope:
		b.WriteString(`{"$code":`)
		writeJSONString(b, string(t.Code))
		b.WriteString(`,"$scope":`)
		writeStrictJSON(b, t.Scope)
		b.WriteString(`}`)
	case primitive.MinKey:
		b.WriteString(`{"$minKey":1}`)
	case primitive.MaxKey:
		b.WriteString(`{"$maxKey":1}`)
	case primitive.Undefined:
		b.WriteString(`{"$undefined":true}`)
	case primitive.Symbol:
		b.WriteString(`{"$symbol":`)
		writeJSONString(b, string(t))
		b.WriteString(`}`)
	case bson.D:
		b.WriteString("{")
		for i, e := range t {
			if i > 0 {
				b.WriteString(",")
			}
			writeJSONString(b, e.Key)
			b.WriteString(":")
			writeStrictJSON(b, e.Value)
		}
		b.WriteString("}")
	case bson.A:
		b.WriteString("[")
		for i, item := range t {
			if i > 0 {
				b.WriteString(",")
			}
			writeStrictJSON(b, item)
		}
		b.WriteString("]")
	}
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
