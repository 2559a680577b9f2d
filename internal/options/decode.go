package options

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

func decodeBool(doc bson.D, key string) (*bool, error) {
	v, ok := get(doc, key)
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("Option '%s' must be a boolean.", key)
	}
	return &b, nil
}

func decodeInt64(doc bson.D, key string) (*int64, error) {
	v, ok := get(doc, key)
	if !ok {
		return nil, nil
	}
	n, err := asInt64(v)
	if err != nil {
		return nil, fmt.Errorf("Option '%s' must be an integer.", key)
	}
	return &n, nil
}

func decodeString(doc bson.D, key string) (*string, error) {
	v, ok := get(doc, key)
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("Option '%s' must be a string.", key)
	}
	return &s, nil
}

func asInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("not an integer")
	}
}

// decodeMaxTimeMS turns a maxTimeMS option (milliseconds, any numeric BSON
// type) into a time.Duration.
func decodeMaxTimeMS(doc bson.D) (*time.Duration, error) {
	ms, err := decodeInt64(doc, "maxTimeMS")
	if err != nil {
		return nil, err
	}
	if ms == nil {
		return nil, nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d, nil
}

// decodeHint accepts either a string index name or a document key pattern.
func decodeHint(doc bson.D) (interface{}, error) {
	v, ok := get(doc, "hint")
	if !ok {
		return nil, nil
	}
	switch v.(type) {
	case string, bson.D:
		return v, nil
	default:
		return nil, fmt.Errorf("Option 'hint' must be a string index name or a key-pattern document.")
	}
}

// decodeCollation decodes the collation option document into the driver's
// options.Collation, per the spec's fixed field set (locale, strength,
// caseLevel, caseFirst, numericOrdering).
func decodeCollation(doc bson.D) (*driveroptions.Collation, error) {
	v, ok := get(doc, "collation")
	if !ok {
		return nil, nil
	}
	sub, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("Option 'collation' must be a document.")
	}
	coll := &driveroptions.Collation{}
	for _, e := range sub {
		switch e.Key {
		case "locale":
			s, ok := e.Value.(string)
			if !ok {
				return nil, fmt.Errorf("collation.locale must be a string.")
			}
			coll.Locale = s
		case "strength":
			n, err := asInt64(e.Value)
			if err != nil {
				return nil, fmt.Errorf("collation.strength must be an integer.")
			}
			coll.Strength = int(n)
		case "caseLevel":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("collation.caseLevel must be a boolean.")
			}
			coll.CaseLevel = b
		case "caseFirst":
			s, ok := e.Value.(string)
			if !ok {
				return nil, fmt.Errorf("collation.caseFirst must be a string.")
			}
			coll.CaseFirst = s
		case "numericOrdering":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("collation.numericOrdering must be a boolean.")
			}
			coll.NumericOrdering = b
		default:
			return nil, fmt.Errorf("Unsupported collation field '%s'.", e.Key)
		}
	}
	return coll, nil
}

// decodeWriteConcern decodes {w, j, wtimeout} into *writeconcern.WriteConcern.
func decodeWriteConcern(doc bson.D) (*writeconcern.WriteConcern, error) {
	v, ok := get(doc, "writeConcern")
	if !ok {
		return nil, nil
	}
	sub, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("Option 'writeConcern' must be a document.")
	}
	wc := &writeconcern.WriteConcern{}
	for _, e := range sub {
		switch e.Key {
		case "w":
			switch wv := e.Value.(type) {
			case string:
				wc.W = wv
			case int32:
				wc.W = int(wv)
			case int64:
				wc.W = int(wv)
			default:
				return nil, fmt.Errorf("writeConcern.w must be a string or integer.")
			}
		case "j":
			b, ok := e.Value.(bool)
			if !ok {
				return nil, fmt.Errorf("writeConcern.j must be a boolean.")
			}
			wc.Journal = &b
		case "wtimeout":
			n, err := asInt64(e.Value)
			if err != nil {
				return nil, fmt.Errorf("writeConcern.wtimeout must be an integer.")
			}
			wc.WTimeout = time.Duration(n) * time.Millisecond
		default:
			return nil, fmt.Errorf("Unsupported writeConcern field '%s'.", e.Key)
		}
	}
	return wc, nil
}

// decodeArrayFilters accepts an array of filter documents.
func decodeArrayFilters(doc bson.D) ([]interface{}, error) {
	v, ok := get(doc, "arrayFilters")
	if !ok {
		return nil, nil
	}
	arr, ok := v.(bson.A)
	if !ok {
		return nil, fmt.Errorf("Option 'arrayFilters' must be an array of documents.")
	}
	out := make([]interface{}, 0, len(arr))
	for _, item := range arr {
		d, ok := item.(bson.D)
		if !ok {
			return nil, fmt.Errorf("Each arrayFilters entry must be a document.")
		}
		out = append(out, d)
	}
	return out, nil
}

// decodeReturnDocument maps the shell's "before"/"after" strings onto the
// driver's ReturnDocument enum.
func decodeReturnDocument(doc bson.D) (*driveroptions.ReturnDocument, error) {
	v, ok := get(doc, "returnDocument")
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("Option 'returnDocument' must be 'before' or 'after'.")
	}
	var rd driveroptions.ReturnDocument
	switch s {
	case "before":
		rd = driveroptions.Before
	case "after":
		rd = driveroptions.After
	default:
		return nil, fmt.Errorf("Option 'returnDocument' must be 'before' or 'after'.")
	}
	return &rd, nil
}

func decodeSortProjection(doc bson.D, key string) (bson.D, error) {
	v, ok := get(doc, key)
	if !ok {
		return nil, nil
	}
	d, ok := v.(bson.D)
	if !ok {
		return nil, fmt.Errorf("Option '%s' must be a document.", key)
	}
	return d, nil
}
