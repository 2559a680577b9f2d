package shellsyntax

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	infPos = math.Inf(1)
	infNeg = math.Inf(-1)
	nanVal = math.NaN()
)

// dateLayouts mirrors the format patterns original_source/src/mongo/shell.rs
// tries in order inside parse_date_constructor, before falling back to a
// bare numeric-millis literal.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateConstructor evaluates the argument list of ISODate/Date exactly
// like shell.rs's parse_date_constructor: zero arguments is "now", one
// string argument is parsed against a fixed list of layouts (or treated as
// epoch millis if purely numeric), and 2-7 numeric arguments build a date
// from Date(y, m, d, H, M, S, ms) components using zero-based months, the
// same convention JavaScript's Date constructor uses.
func ParseDateConstructor(args []string) (time.Time, error) {
	switch len(args) {
	case 0:
		return time.Now().UTC(), nil
	case 1:
		return parseSingleDateArgument(args[0])
	default:
		return parseDateComponents(args)
	}
}

func parseSingleDateArgument(arg string) (time.Time, error) {
	text, err := parseArgAsString(arg)
	if err != nil {
		return time.Time{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Now().UTC(), nil
	}

	if millis, convErr := strconv.ParseInt(text, 10, 64); convErr == nil {
		return time.UnixMilli(millis).UTC(), nil
	}

	for _, layout := range dateLayouts {
		if t, parseErr := time.Parse(layout, text); parseErr == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("Unable to parse '%s' as a date.", text)
}

func parseDateComponents(args []string) (time.Time, error) {
	if len(args) > 7 {
		return time.Time{}, fmt.Errorf("Date accepts at most seven numeric arguments.")
	}
	nums := make([]int, 7)
	// Date(year, month, day, hours, minutes, seconds, ms) - defaults below
	// match JavaScript's new Date(...) component semantics.
	nums[2] = 1 // day defaults to 1
	for i, raw := range args {
		v, err := ParseJSONValue(raw)
		if err != nil {
			return time.Time{}, err
		}
		f, err := valueAsFloat64(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("Date component %d must be a number.", i+1)
		}
		nums[i] = int(f)
	}
	year, month, day, hour, minute, second, ms := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5], nums[6]
	month = clampInt(month+1, 1, 12)
	day = clampInt(day, 1, 31)
	hour = clampInt(hour, 0, 23)
	minute = clampInt(minute, 0, 59)
	second = clampInt(second, 0, 59)
	return time.Date(year, time.Month(month), day, hour, minute, second, ms*int(time.Millisecond), time.UTC), nil
}

// clampInt restricts v to [lo, hi], matching
// original_source/src/mongo/shell.rs's construct_date_from_components, which
// clamps each Date(...) component instead of letting time.Date roll it over
// into an adjacent month/day/hour.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// bsonTypeName returns a human-readable type label for v, matching shell.rs's
// bson_type_name error-message vocabulary.
func bsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int32:
		return "int"
	case int64:
		return "long"
	case float64:
		return "double"
	case primitive.Decimal128:
		return "decimal"
	case string:
		return "string"
	case primitive.ObjectID:
		return "objectId"
	case primitive.DateTime:
		return "date"
	case primitive.Binary:
		return "binData"
	case primitive.Regex:
		return "regex"
	case primitive.Timestamp:
		return "timestamp"
	case primitive.JavaScript:
		return "javascript"
	case primitive.CodeWithScope:
		return "javascriptWithScope"
	case primitive.MinKey:
		return "minKey"
	case primitive.MaxKey:
		return "maxKey"
	case primitive.Undefined:
		return "undefined"
	case primitive.Symbol:
		return "symbol"
	case primitive.D:
		return "object"
	case primitive.A:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
