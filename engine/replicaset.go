package engine

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	driveroptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/internal/mql"
	"github.com/felixdotgo/mongoshell/internal/replicaset"
)

// executeReplicaSet dispatches an rs.* command: most are admin-database
// runCommand calls, printReplicationInfo/printSecondaryReplicationInfo
// query local.oplog.rs directly, following
// original_source/src/mongo/query.rs's run_replica_set_command split.
func executeReplicaSet(ctx context.Context, db *mongo.Database, op *mql.Operation, opts Options) (*Result, error) {
	rs := op.RS
	admin := db.Client().Database("admin")

	switch rs.Kind {
	case replicaset.KindStatus:
		return runAdminCommand(ctx, admin, bson.D{{Key: "replSetGetStatus", Value: 1}})
	case replicaset.KindConf:
		return runAdminCommand(ctx, admin, bson.D{{Key: "replSetGetConfig", Value: 1}})
	case replicaset.KindIsMaster:
		return runAdminCommand(ctx, admin, bson.D{{Key: "isMaster", Value: 1}})
	case replicaset.KindSlaveOk:
		note := opts.translator().T("slaveOk is a client-side read preference toggle; no server command was issued.")
		return okResult(bson.D{{Key: "note", Value: note}}), nil
	case replicaset.KindInitiate:
		cmd := bson.D{{Key: "replSetInitiate", Value: 1}}
		if rs.ConfigDoc != nil {
			cmd = bson.D{{Key: "replSetInitiate", Value: rs.ConfigDoc}}
		}
		return runAdminCommand(ctx, admin, cmd)
	case replicaset.KindReconfig:
		conf, err := replicaset.IncrementConfigVersion(rs.ConfigDoc)
		if err != nil {
			return nil, err
		}
		cmd := bson.D{{Key: "replSetReconfig", Value: conf}}
		if rs.Force {
			cmd = append(cmd, bson.E{Key: "force", Value: true})
		}
		return runAdminCommand(ctx, admin, cmd)
	case replicaset.KindStepDown:
		secs := rs.Seconds
		if secs == 0 {
			secs = 60
		}
		return runAdminCommand(ctx, admin, bson.D{{Key: "replSetStepDown", Value: secs}})
	case replicaset.KindFreeze:
		return runAdminCommand(ctx, admin, bson.D{{Key: "replSetFreeze", Value: rs.Seconds}})
	case replicaset.KindAdd:
		return reconfigureAddMember(ctx, admin, rs.Host, false)
	case replicaset.KindAddArb:
		return reconfigureAddMember(ctx, admin, rs.Host, true)
	case replicaset.KindRemove:
		return reconfigureRemoveMember(ctx, admin, rs.Host)
	case replicaset.KindSyncFrom:
		return runAdminCommand(ctx, admin, bson.D{{Key: "replSetSyncFrom", Value: rs.Host}})
	case replicaset.KindPrintReplicationInfo:
		return printReplicationInfo(ctx, db)
	case replicaset.KindPrintSecondaryReplicationInfo:
		return printSecondaryReplicationInfo(ctx, db, admin)
	default:
		return nil, fmt.Errorf("replica set command is not implemented.")
	}
}

func runAdminCommand(ctx context.Context, admin *mongo.Database, cmd bson.D) (*Result, error) {
	var doc bson.D
	if err := admin.RunCommand(ctx, cmd).Decode(&doc); err != nil {
		return nil, err
	}
	return docResult(doc), nil
}

func reconfigureAddMember(ctx context.Context, admin *mongo.Database, host string, asArbiter bool) (*Result, error) {
	var confResp bson.D
	if err := admin.RunCommand(ctx, bson.D{{Key: "replSetGetConfig", Value: 1}}).Decode(&confResp); err != nil {
		return nil, err
	}
	conf, err := extractConfig(confResp)
	if err != nil {
		return nil, err
	}
	members, err := replicaset.ExtractMembers(conf)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if doc, ok := m.(bson.D); ok && memberHost(doc) == host {
			return nil, fmt.Errorf("Host '%s' is already a member of the replica set.", host)
		}
	}
	nextID, err := replicaset.NextMemberID(members)
	if err != nil {
		return nil, err
	}
	members = append(members, replicaset.NormalizeNewMember(host, nextID, asArbiter))
	conf = setMembers(conf, members)
	conf, err = replicaset.IncrementConfigVersion(conf)
	if err != nil {
		return nil, err
	}
	return runAdminCommand(ctx, admin, bson.D{{Key: "replSetReconfig", Value: conf}})
}

func reconfigureRemoveMember(ctx context.Context, admin *mongo.Database, host string) (*Result, error) {
	var confResp bson.D
	if err := admin.RunCommand(ctx, bson.D{{Key: "replSetGetConfig", Value: 1}}).Decode(&confResp); err != nil {
		return nil, err
	}
	conf, err := extractConfig(confResp)
	if err != nil {
		return nil, err
	}
	members, err := replicaset.ExtractMembers(conf)
	if err != nil {
		return nil, err
	}
	filtered := make(bson.A, 0, len(members))
	for _, m := range members {
		doc, ok := m.(bson.D)
		if !ok {
			filtered = append(filtered, m)
			continue
		}
		if memberHost(doc) != host {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == len(members) {
		return nil, fmt.Errorf("Host '%s' is not a member of the replica set.", host)
	}
	conf = setMembers(conf, filtered)
	conf, err = replicaset.IncrementConfigVersion(conf)
	if err != nil {
		return nil, err
	}
	return runAdminCommand(ctx, admin, bson.D{{Key: "replSetReconfig", Value: conf}})
}

func memberHost(doc bson.D) string {
	for _, e := range doc {
		if e.Key == "host" {
			if s, ok := e.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// extractConfig pulls the "config" sub-document out of a replSetGetConfig
// response.
func extractConfig(resp bson.D) (bson.D, error) {
	for _, e := range resp {
		if e.Key == "config" {
			d, ok := e.Value.(bson.D)
			if !ok {
				return nil, fmt.Errorf("replSetGetConfig response's 'config' field was not a document.")
			}
			return d, nil
		}
	}
	return nil, fmt.Errorf("replSetGetConfig response is missing a 'config' field.")
}

func setMembers(conf bson.D, members bson.A) bson.D {
	out := make(bson.D, len(conf))
	copy(out, conf)
	for i, e := range out {
		if e.Key == "members" {
			out[i].Value = members
			return out
		}
	}
	return append(out, bson.E{Key: "members", Value: members})
}

// printReplicationInfo reports the oplog's configured size and observed
// time window, mirroring rs.printReplicationInfo() against local.oplog.rs.
func printReplicationInfo(ctx context.Context, db *mongo.Database) (*Result, error) {
	local := db.Client().Database("local")
	oplog := local.Collection("oplog.rs")

	var stats bson.D
	if err := local.RunCommand(ctx, bson.D{{Key: "collStats", Value: "oplog.rs"}}).Decode(&stats); err != nil {
		return nil, err
	}
	sizeMB := bsonFloat(stats, "maxSize") / (1024 * 1024)
	usedMB := bsonFloat(stats, "size") / (1024 * 1024)

	first, err := firstOplogTimestamp(ctx, oplog, 1)
	if err != nil {
		return nil, err
	}
	last, err := firstOplogTimestamp(ctx, oplog, -1)
	if err != nil {
		return nil, err
	}
	info := replicaset.BuildReplicationInfo(sizeMB, usedMB, first, last)
	doc := bson.D{
		{Key: "configuredSizeMB", Value: info.ConfiguredSizeMB},
		{Key: "usedMB", Value: info.UsedMB},
		{Key: "timeDiffSeconds", Value: info.TimeDiffSeconds},
		{Key: "firstEventTime", Value: info.FirstEventTime},
		{Key: "lastEventTime", Value: info.LastEventTime},
	}
	return docResult(doc), nil
}

func firstOplogTimestamp(ctx context.Context, oplog *mongo.Collection, sortDir int) (primitive.Timestamp, error) {
	findOpts := driveroptions.FindOne().SetSort(bson.D{{Key: "$natural", Value: sortDir}})
	var doc bson.D
	if err := oplog.FindOne(ctx, bson.D{}, findOpts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.Timestamp{}, nil
		}
		return primitive.Timestamp{}, err
	}
	for _, e := range doc {
		if e.Key == "ts" {
			if ts, ok := e.Value.(primitive.Timestamp); ok {
				return ts, nil
			}
		}
	}
	return primitive.Timestamp{}, nil
}

func bsonFloat(doc bson.D, key string) float64 {
	for _, e := range doc {
		if e.Key == key {
			if n, ok := asInt64(e.Value); ok {
				return float64(n)
			}
			if f, ok := e.Value.(float64); ok {
				return f
			}
		}
	}
	return 0
}

// printSecondaryReplicationInfo reports each secondary's lag behind the
// primary's optime, driven by replSetGetStatus's member list.
func printSecondaryReplicationInfo(ctx context.Context, db *mongo.Database, admin *mongo.Database) (*Result, error) {
	var status bson.D
	if err := admin.RunCommand(ctx, bson.D{{Key: "replSetGetStatus", Value: 1}}).Decode(&status); err != nil {
		return nil, err
	}
	var members bson.A
	for _, e := range status {
		if e.Key == "members" {
			if a, ok := e.Value.(bson.A); ok {
				members = a
			}
		}
	}
	var primaryOptime primitive.Timestamp
	secondaries := map[string]primitive.Timestamp{}
	for _, m := range members {
		doc, ok := m.(bson.D)
		if !ok {
			continue
		}
		state, _ := memberField(doc, "stateStr").(string)
		name, _ := memberField(doc, "name").(string)
		optime := memberOptime(doc)
		switch state {
		case "PRIMARY":
			primaryOptime = optime
		case "SECONDARY":
			secondaries[name] = optime
		}
	}
	lags := replicaset.BuildSecondaryReplicationInfo(primaryOptime, secondaries)
	docs := make([]bson.D, 0, len(lags))
	for _, l := range lags {
		docs = append(docs, bson.D{{Key: "host", Value: l.Host}, {Key: "lagSeconds", Value: l.LagSeconds}})
	}
	return docsResult(docs), nil
}

func memberField(doc bson.D, key string) interface{} {
	for _, e := range doc {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func memberOptime(doc bson.D) primitive.Timestamp {
	v := memberField(doc, "optime")
	if sub, ok := v.(bson.D); ok {
		for _, e := range sub {
			if e.Key == "ts" {
				if ts, ok := e.Value.(primitive.Timestamp); ok {
					return ts
				}
			}
		}
	}
	return primitive.Timestamp{}
}
