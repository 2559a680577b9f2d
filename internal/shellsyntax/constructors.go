package shellsyntax

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// knownConstructors is the authoritative set named in spec.md §4.3. A
// dotted entry ("ObjectId.fromDate") is matched as a whole against the
// identifier the preprocessor reads (including any embedded dots), since
// shell identifiers may contain '.' as a continuation character.
var knownConstructors = map[string]bool{
	"ObjectId":           true,
	"ObjectId.fromDate":  true,
	"ISODate":            true,
	"Date":               true,
	"NumberDecimal":      true,
	"NumberLong":         true,
	"NumberInt":          true,
	"NumberDouble":       true,
	"Number":              true,
	"String":             true,
	"Boolean":            true,
	"BinData":            true,
	"HexData":            true,
	"UUID":               true,
	"Timestamp":          true,
	"RegExp":             true,
	"Code":               true,
	"Array":              true,
	"Object":              true,
	"DBRef":              true,
	"MinKey":             true,
	"MaxKey":             true,
	"Undefined":          true,
}

// IsKnownConstructor reports whether identifier names one of the
// constructors in spec.md §4.3.
func IsKnownConstructor(identifier string) bool {
	return knownConstructors[identifier]
}

// EvalConstructor evaluates a known constructor name applied to the raw,
// comma-split argument source strings (each element is shell-dialect
// source, not yet parsed) and returns the resulting BSON value (C3).
func EvalConstructor(name string, args []string) (interface{}, error) {
	switch name {
	case "ObjectId":
		return evalObjectID(args)
	case "ObjectId.fromDate":
		return evalObjectIDFromDate(args)
	case "ISODate", "Date":
		return evalDate(args)
	case "NumberDecimal":
		return evalNumberDecimal(args)
	case "NumberLong":
		return evalNumberLong(args)
	case "NumberInt":
		return evalNumberInt(args)
	case "NumberDouble", "Number":
		return evalNumberDouble(args)
	case "Boolean":
		return evalBoolean(args)
	case "String":
		return evalString(args)
	case "UUID":
		return evalUUID(args)
	case "BinData":
		return evalBinData(args)
	case "HexData":
		return evalHexData(args)
	case "Array":
		return evalArray(args)
	case "Object":
		return evalObject(args)
	case "Timestamp":
		return evalTimestamp(args)
	case "RegExp":
		return evalRegExp(args)
	case "Code":
		return evalCode(args)
	case "DBRef":
		return evalDBRef(args)
	case "MinKey":
		return primitive.MinKey{}, nil
	case "MaxKey":
		return primitive.MaxKey{}, nil
	case "Undefined":
		return primitive.Undefined{}, nil
	default:
		return nil, fmt.Errorf("Constructor '%s' is not supported.", name)
	}
}

func argOrDefault(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func parseArgAsString(arg string) (string, error) {
	v, err := ParseJSONValue(arg)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return formatFloatLiteral(t), nil
	case int32:
		return strconv.Itoa(int(t)), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	default:
		return "", fmt.Errorf("Argument must be a string or a number.")
	}
}

func evalObjectID(args []string) (interface{}, error) {
	switch len(args) {
	case 0:
		return primitive.NewObjectID(), nil
	case 1:
		hex, err := parseArgAsString(args[0])
		if err != nil {
			return nil, err
		}
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("ObjectId requires a 24-character hex string or no arguments.")
		}
		return oid, nil
	default:
		return nil, fmt.Errorf("ObjectId accepts either zero or one string argument.")
	}
}

func evalObjectIDFromDate(args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("ObjectId.fromDate expects a single argument.")
	}
	dt, err := ParseDateConstructor(args)
	if err != nil {
		return nil, err
	}
	seconds := uint32(dt.Unix())
	var oid [12]byte
	oid[0] = byte(seconds >> 24)
	oid[1] = byte(seconds >> 16)
	oid[2] = byte(seconds >> 8)
	oid[3] = byte(seconds)
	return primitive.ObjectID(oid), nil
}

func evalDate(args []string) (interface{}, error) {
	dt, err := ParseDateConstructor(args)
	if err != nil {
		return nil, err
	}
	return primitive.NewDateTimeFromTime(dt), nil
}

func evalNumberDecimal(args []string) (interface{}, error) {
	literal := argOrDefault(args, 0, "0")
	text, err := parseArgAsString(literal)
	if err != nil {
		return nil, err
	}
	dec, err := primitive.ParseDecimal128(text)
	if err != nil {
		return nil, fmt.Errorf("NumberDecimal expects a valid decimal value.")
	}
	return dec, nil
}

func evalNumberLong(args []string) (interface{}, error) {
	literal := argOrDefault(args, 0, "0")
	text, err := parseArgAsString(literal)
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("NumberLong expects an integer.")
	}
	return v, nil
}

func evalNumberInt(args []string) (interface{}, error) {
	literal := argOrDefault(args, 0, "0")
	text, err := parseArgAsString(literal)
	if err != nil {
		return nil, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("NumberInt expects an integer.")
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return nil, fmt.Errorf("NumberInt value is out of the Int32 range.")
	}
	return int32(v), nil
}

func evalNumberDouble(args []string) (interface{}, error) {
	literal := argOrDefault(args, 0, "0")
	v, err := ParseJSONValue(literal)
	if err != nil {
		return nil, err
	}
	f, err := valueAsFloat64(v)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func evalBoolean(args []string) (interface{}, error) {
	literal := argOrDefault(args, 0, "false")
	v, err := ParseJSONValue(literal)
	if err != nil {
		return nil, err
	}
	return valueAsBool(v)
}

func evalString(args []string) (interface{}, error) {
	if len(args) == 0 {
		return "", nil
	}
	return parseArgAsString(args[0])
}

func evalUUID(args []string) (interface{}, error) {
	var id uuid.UUID
	if len(args) > 0 {
		text, err := parseArgAsString(args[0])
		if err != nil {
			return nil, err
		}
		id, err = uuid.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("UUID expects a string in the format xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.")
		}
	} else {
		id = uuid.New()
	}
	return primitive.Binary{Subtype: 0x04, Data: id[:]}, nil
}

func evalBinData(args []string) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("BinData expects two arguments: a subtype and a base64 string.")
	}
	subtypeVal, err := ParseJSONValue(args[0])
	if err != nil {
		return nil, err
	}
	subtype, err := valueAsUint8(subtypeVal)
	if err != nil {
		return nil, err
	}
	dataVal, err := ParseJSONValue(args[1])
	if err != nil {
		return nil, err
	}
	encoded, ok := dataVal.(string)
	if !ok {
		return nil, fmt.Errorf("BinData expects a base64 string as the second argument.")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("Unable to decode the BinData base64 string.")
	}
	return primitive.Binary{Subtype: subtype, Data: data}, nil
}

func evalHexData(args []string) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("HexData expects two arguments: a subtype and a hex string.")
	}
	subtypeVal, err := ParseJSONValue(args[0])
	if err != nil {
		return nil, err
	}
	subtype, err := valueAsUint8(subtypeVal)
	if err != nil {
		return nil, err
	}
	hexVal, err := ParseJSONValue(args[1])
	if err != nil {
		return nil, err
	}
	hexStr, ok := hexVal.(string)
	if !ok {
		return nil, fmt.Errorf("HexData expects a string as the second argument.")
	}
	cleaned := strings.Join(strings.Fields(hexStr), "")
	if len(cleaned)%2 != 0 {
		return nil, fmt.Errorf("Hex string must contain an even number of characters.")
	}
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("Hex string must contain an even number of characters.")
	}
	return primitive.Binary{Subtype: subtype, Data: data}, nil
}

func evalArray(args []string) (interface{}, error) {
	items := make(bson.A, 0, len(args))
	for _, a := range args {
		v, err := ParseBSONValue(a)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func evalObject(args []string) (interface{}, error) {
	if len(args) == 0 {
		return bson.D{}, nil
	}
	v, err := ParseBSONValue(args[0])
	if err != nil {
		return nil, err
	}
	doc, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("Object expects a JSON object, but received a value of type %s.", bsonTypeName(v))
	}
	return doc, nil
}

func evalTimestamp(args []string) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("Timestamp expects two arguments: time and increment.")
	}
	t, err := parseTimestampSeconds(args[0])
	if err != nil {
		return nil, err
	}
	i, err := parseU32Argument(args[1], "Timestamp", "i")
	if err != nil {
		return nil, err
	}
	return primitive.Timestamp{T: t, I: i}, nil
}

func evalRegExp(args []string) (interface{}, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("RegExp expects a pattern and optional options.")
	}
	patVal, err := ParseJSONValue(args[0])
	if err != nil {
		return nil, err
	}
	pattern, ok := patVal.(string)
	if !ok {
		return nil, fmt.Errorf("RegExp expects a string pattern.")
	}
	options := ""
	if len(args) == 2 {
		optVal, err := ParseJSONValue(args[1])
		if err != nil {
			return nil, err
		}
		options, ok = optVal.(string)
		if !ok {
			return nil, fmt.Errorf("RegExp options must be a string.")
		}
	}
	return primitive.Regex{Pattern: pattern, Options: options}, nil
}

func evalCode(args []string) (interface{}, error) {
	codeText := argOrDefault(args, 0, "")
	var code string
	if codeText != "" {
		v, err := ParseJSONValue(codeText)
		if err != nil {
			return nil, err
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("Argument must be a string or a number.")
		}
		code = s
	}
	if len(args) > 1 {
		scopeVal, err := ParseBSONValue(args[1])
		if err != nil {
			return nil, err
		}
		scope, ok := scopeVal.(bson.D)
		if !ok {
			return nil, fmt.Errorf("The second argument to Code must be an object.")
		}
		return primitive.CodeWithScope{Code: primitive.JavaScript(code), Scope: scope}, nil
	}
	return primitive.JavaScript(code), nil
}

func evalDBRef(args []string) (interface{}, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("DBRef expects two or three arguments: collection, _id, and an optional database name.")
	}
	collVal, err := ParseJSONValue(args[0])
	if err != nil {
		return nil, err
	}
	coll, ok := collVal.(string)
	if !ok {
		return nil, fmt.Errorf("Argument must be a string or a number.")
	}
	idVal, err := ParseBSONValue(args[1])
	if err != nil {
		return nil, err
	}
	oid, ok := idVal.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("DBRef expects an ObjectId as the second argument.")
	}
	doc := bson.D{{Key: "$ref", Value: coll}, {Key: "$id", Value: oid}}
	if len(args) == 3 {
		dbVal, err := ParseJSONValue(args[2])
		if err != nil {
			return nil, err
		}
		dbName, ok := dbVal.(string)
		if !ok {
			return nil, fmt.Errorf("Argument must be a string or a number.")
		}
		doc = append(doc, bson.E{Key: "$db", Value: dbName})
	}
	return doc, nil
}

func parseTimestampSeconds(value string) (uint32, error) {
	trimmed := strings.TrimSpace(value)
	if prefix, ok := strings.CutSuffix(trimmed, ".getTime()/1000"); ok {
		dt, err := ParseDateConstructor([]string{strings.TrimSpace(prefix)})
		if err != nil {
			return 0, err
		}
		return uint32(dt.Unix()), nil
	}
	if prefix, ok := strings.CutSuffix(trimmed, ".getTime()"); ok {
		dt, err := ParseDateConstructor([]string{strings.TrimSpace(prefix)})
		if err != nil {
			return 0, err
		}
		return uint32(dt.UnixMilli()), nil
	}

	v, err := ParseBSONValue(trimmed)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case primitive.DateTime:
		return uint32(t.Time().Unix()), nil
	case int32:
		return uint32(t), nil
	case int64:
		if t < 0 || t > math.MaxUint32 {
			return 0, fmt.Errorf("Timestamp time value must fit into u32.")
		}
		return uint32(t), nil
	case float64:
		return uint32(t), nil
	case string:
		if dt, err := time.Parse(time.RFC3339, t); err == nil {
			return uint32(dt.Unix()), nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("String value in Timestamp must be a number or an ISO date.")
		}
		return uint32(f), nil
	default:
		return 0, fmt.Errorf("The first argument to Timestamp must be a number or a date; received %s.", bsonTypeName(v))
	}
}

func parseU32Argument(value, context, field string) (uint32, error) {
	v, err := ParseBSONValue(value)
	if err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case int32:
		return uint32(t), nil
	case int64:
		if t < 0 || t > math.MaxUint32 {
			return 0, fmt.Errorf("%s::%s must fit into u32.", context, field)
		}
		return uint32(t), nil
	case float64:
		return uint32(t), nil
	case string:
		n, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s::%s must be a positive integer.", context, field)
		}
		return uint32(n), nil
	default:
		return 0, fmt.Errorf("%s::%s must be a number, received %s.", context, field, bsonTypeName(v))
	}
}

func valueAsBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case float64:
		return t != 0, nil
	case int32:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return false, fmt.Errorf("String must be true or false.")
		}
	default:
		return false, fmt.Errorf("Value must be boolean, numeric, or a string equal to true/false.")
	}
}

func valueAsFloat64(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "infinity":
			return math.Inf(1), nil
		case "-infinity":
			return math.Inf(-1), nil
		case "nan":
			return math.NaN(), nil
		default:
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return 0, fmt.Errorf("Failed to convert string value to number.")
			}
			return f, nil
		}
	default:
		return 0, fmt.Errorf("Value must be a number or a string.")
	}
}

func valueAsUint8(v interface{}) (byte, error) {
	switch t := v.(type) {
	case float64:
		if t < 0 || t > 255 {
			return 0, fmt.Errorf("BinData subtype must be a number from 0 to 255.")
		}
		return byte(t), nil
	case int32:
		if t < 0 || t > 255 {
			return 0, fmt.Errorf("BinData subtype must be a number from 0 to 255.")
		}
		return byte(t), nil
	case string:
		n, err := strconv.ParseUint(t, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("BinData subtype must be a number or a hex string.")
		}
		return byte(n), nil
	default:
		return 0, fmt.Errorf("BinData subtype must be a number.")
	}
}

func formatFloatLiteral(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
