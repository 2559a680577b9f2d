package replicaset

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IncrementConfigVersion returns conf with its top-level "version" field
// bumped by one, matching
// original_source/src/mongo/query.rs's increment_config_version.
func IncrementConfigVersion(conf bson.D) (bson.D, error) {
	out := make(bson.D, len(conf))
	copy(out, conf)
	found := false
	for i, e := range out {
		if e.Key == "version" {
			v, err := bsonToI64(e.Value)
			if err != nil {
				return nil, fmt.Errorf("Replica set configuration's 'version' field must be a number.")
			}
			out[i].Value = v + 1
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("Replica set configuration is missing a 'version' field.")
	}
	return out, nil
}

// NextMemberID returns one greater than the highest "_id" found across
// members, or 0 if members is empty — mirrors next_member_id.
func NextMemberID(members bson.A) (int32, error) {
	var max int32 = -1
	for _, m := range members {
		doc, ok := m.(bson.D)
		if !ok {
			return 0, fmt.Errorf("Each replica set member must be a document.")
		}
		for _, e := range doc {
			if e.Key == "_id" {
				id, err := bsonToI64(e.Value)
				if err != nil {
					return 0, fmt.Errorf("Replica set member '_id' must be a number.")
				}
				if int32(id) > max {
					max = int32(id)
				}
			}
		}
	}
	return max + 1, nil
}

// NormalizeNewMember builds the member document rs.add/rs.addArb appends
// to the config's "members" array, assigning the next free _id and
// setting arbiterOnly when asArbiter is true.
func NormalizeNewMember(host string, id int32, asArbiter bool) bson.D {
	doc := bson.D{{Key: "_id", Value: id}, {Key: "host", Value: host}}
	if asArbiter {
		doc = append(doc, bson.E{Key: "arbiterOnly", Value: true})
	}
	return doc
}

// ExtractMembers returns the "members" array out of a replica set config
// document, or an error if the field is missing or of the wrong shape.
func ExtractMembers(conf bson.D) (bson.A, error) {
	for _, e := range conf {
		if e.Key == "members" {
			arr, ok := e.Value.(bson.A)
			if !ok {
				return nil, fmt.Errorf("Replica set configuration's 'members' field must be an array.")
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("Replica set configuration is missing a 'members' field.")
}

func bsonToI64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("expected a numeric value")
	}
}

// ReplicationInfo is the synthesized summary rs.printReplicationInfo()
// reports: the oplog's configured size and its observed time window.
type ReplicationInfo struct {
	ConfiguredSizeMB float64
	UsedMB           float64
	TimeDiffSeconds  int64
	FirstEventTime   time.Time
	LastEventTime    time.Time
}

// BuildReplicationInfo derives a ReplicationInfo from the oplog
// collection's reported stats and its first/last timestamp documents,
// mirroring build_replication_info.
func BuildReplicationInfo(configuredSizeMB, usedMB float64, firstTS, lastTS primitive.Timestamp) ReplicationInfo {
	first := time.Unix(int64(firstTS.T), 0).UTC()
	last := time.Unix(int64(lastTS.T), 0).UTC()
	return ReplicationInfo{
		ConfiguredSizeMB: configuredSizeMB,
		UsedMB:           usedMB,
		TimeDiffSeconds:  last.Unix() - first.Unix(),
		FirstEventTime:   first,
		LastEventTime:    last,
	}
}

// SecondaryLag is one secondary member's lag behind the primary,
// mirroring build_secondary_replication_info's per-member optime diff.
type SecondaryLag struct {
	Host       string
	LagSeconds int64
}

// BuildSecondaryReplicationInfo computes each secondary's lag against the
// primary's optime, in seconds.
func BuildSecondaryReplicationInfo(primaryOptime primitive.Timestamp, secondaries map[string]primitive.Timestamp) []SecondaryLag {
	lags := make([]SecondaryLag, 0, len(secondaries))
	for host, optime := range secondaries {
		lags = append(lags, SecondaryLag{
			Host:       host,
			LagSeconds: int64(primaryOptime.T) - int64(optime.T),
		})
	}
	return lags
}
