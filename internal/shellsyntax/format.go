package shellsyntax

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormatScalar renders a single non-container BSON value the way the shell
// would echo it back (ObjectId("..."), ISODate("..."), NumberLong("..."),
// and so on), mirroring original_source/src/mongo/shell.rs's
// format_bson_scalar. Containers (documents/arrays) are rendered as their
// type name; callers that need the full nested layout should use
// FormatShell instead.
func FormatScalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return fmt.Sprintf("NumberLong(\"%d\")", t)
	case float64:
		return formatDoubleScalar(t)
	case primitive.Decimal128:
		return fmt.Sprintf("NumberDecimal(\"%s\")", t.String())
	case string:
		return quoteShellString(t)
	case primitive.ObjectID:
		return fmt.Sprintf("ObjectId(\"%s\")", t.Hex())
	case primitive.DateTime:
		return fmt.Sprintf("ISODate(\"%s\")", t.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
	case primitive.Binary:
		return fmt.Sprintf("BinData(%d, \"%s\")", t.Subtype, base64Encode(t.Data))
	case primitive.Regex:
		return fmt.Sprintf("/%s/%s", t.Pattern, t.Options)
	case primitive.Timestamp:
		return fmt.Sprintf("Timestamp(%d, %d)", t.T, t.I)
	case primitive.JavaScript:
		return fmt.Sprintf("Code(\"%s\")", string(t))
	case primitive.CodeWithScope:
		return fmt.Sprintf("Code(\"%s\", %s)", string(t.Code), FormatShell(t.Scope))
	case primitive.MinKey:
		return "MinKey()"
	case primitive.MaxKey:
		return "MaxKey()"
	case primitive.Undefined:
		return "undefined"
	case primitive.Symbol:
		return quoteShellString(string(t))
	case bson.D:
		return "Object"
	case bson.A:
		return "Array"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatDoubleScalar(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	}
}

func quoteShellString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func base64Encode(data []byte) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	var b strings.Builder
	for i := 0; i < len(data); i += 3 {
		var chunk [3]byte
		n := copy(chunk[:], data[i:])
		b.WriteByte(alphabet[chunk[0]>>2])
		b.WriteByte(alphabet[(chunk[0]&0x03)<<4|chunk[1]>>4])
		if n > 1 {
			b.WriteByte(alphabet[(chunk[1]&0x0f)<<2|chunk[2]>>6])
		} else {
			b.WriteByte('=')
		}
		if n > 2 {
			b.WriteByte(alphabet[chunk[2]&0x3f])
		} else {
			b.WriteByte('=')
		}
	}
	return b.String()
}

// FormatShell renders a full BSON value tree in the shell's pretty-printed
// dialect, with documents and arrays indented four spaces per nesting
// level, matching original_source/src/mongo/shell.rs's
// format_document_shell/format_array_shell.
func FormatShell(v interface{}) string {
	var b strings.Builder
	writeShellValue(&b, v, 0)
	return b.String()
}

func writeShellValue(b *strings.Builder, v interface{}, depth int) {
	switch t := v.(type) {
	case bson.D:
		writeShellDocument(b, t, depth)
	case bson.A:
		writeShellArray(b, t, depth)
	default:
		b.WriteString(FormatScalar(v))
	}
}

func writeShellDocument(b *strings.Builder, doc bson.D, depth int) {
	if len(doc) == 0 {
		b.WriteString("{}")
		return
	}
	indent := strings.Repeat("    ", depth+1)
	closeIndent := strings.Repeat("    ", depth)
	b.WriteString("{\n")
	for i, e := range doc {
		b.WriteString(indent)
		b.WriteString(quoteShellString(e.Key))
		b.WriteString(": ")
		writeShellValue(b, e.Value, depth+1)
		if i < len(doc)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(closeIndent)
	b.WriteString("}")
}

func writeShellArray(b *strings.Builder, arr bson.A, depth int) {
	if len(arr) == 0 {
		b.WriteString("[]")
		return
	}
	indent := strings.Repeat("    ", depth+1)
	closeIndent := strings.Repeat("    ", depth)
	b.WriteString("[\n")
	for i, item := range arr {
		b.WriteString(indent)
		writeShellValue(b, item, depth+1)
		if i < len(arr)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(closeIndent)
	b.WriteString("]")
}
