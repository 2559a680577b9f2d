// Package replicaset implements the rs.* shell helpers (spec.md §4.7):
// parsing rs.<method>(...) into a typed Command, and the pure arithmetic
// (config version bumps, member id assignment, replication lag) the
// engine package drives against a live admin/local connection. Grounded
// on original_source/src/mongo/query.rs's run_replica_set_command and its
// supporting helpers.
package replicaset

import (
	"fmt"

	"github.com/felixdotgo/mongoshell/internal/shellsyntax"
	"go.mongodb.org/mongo-driver/bson"
)

type Kind int

const (
	KindStatus Kind = iota
	KindConf
	KindIsMaster
	KindPrintReplicationInfo
	KindPrintSecondaryReplicationInfo
	KindInitiate
	KindReconfig
	KindStepDown
	KindFreeze
	KindAdd
	KindAddArb
	KindRemove
	KindSyncFrom
	KindSlaveOk
)

// Command is the parsed form of one rs.<method>(...) call.
type Command struct {
	Kind      Kind
	ConfigDoc bson.D // initiate/reconfig's config document argument
	Host      string // add/addArb/remove/syncFrom's target host:port
	Seconds   int64  // stepDown/freeze's duration argument
	Force     bool   // reconfig's {force: true}
}

var methodKinds = map[string]Kind{
	"status":                         KindStatus,
	"conf":                           KindConf,
	"isMaster":                       KindIsMaster,
	"hello":                          KindIsMaster,
	"printReplicationInfo":           KindPrintReplicationInfo,
	"printSecondaryReplicationInfo":  KindPrintSecondaryReplicationInfo,
	"initiate":                       KindInitiate,
	"reconfig":                       KindReconfig,
	"stepDown":                       KindStepDown,
	"freeze":                         KindFreeze,
	"add":                            KindAdd,
	"addArb":                         KindAddArb,
	"remove":                         KindRemove,
	"syncFrom":                       KindSyncFrom,
	"slaveOk":                        KindSlaveOk,
}

// Parse parses rs.<method>(args) into a Command. The error text for an
// unrecognized method matches original_source/src/mongo/query.rs's
// rs-method error message verbatim.
func Parse(method string, args []string) (*Command, error) {
	kind, ok := methodKinds[method]
	if !ok {
		return nil, fmt.Errorf("Method rs.%s is not supported. Available methods: status, conf, isMaster, hello, printReplicationInfo, printSecondaryReplicationInfo, initiate, reconfig, stepDown, freeze, add, addArb, remove, syncFrom, slaveOk.", method)
	}

	cmd := &Command{Kind: kind}
	switch kind {
	case KindStatus, KindConf, KindIsMaster, KindPrintReplicationInfo,
		KindPrintSecondaryReplicationInfo, KindSlaveOk:
		// no arguments expected

	case KindInitiate:
		if len(args) > 0 {
			doc, err := shellsyntax.ParseShellDocument(args[0])
			if err != nil {
				return nil, err
			}
			cmd.ConfigDoc = doc
		}

	case KindReconfig:
		if len(args) == 0 {
			return nil, fmt.Errorf("rs.reconfig expects a configuration document argument.")
		}
		doc, err := shellsyntax.ParseShellDocument(args[0])
		if err != nil {
			return nil, err
		}
		cmd.ConfigDoc = doc
		if len(args) > 1 {
			opts, err := shellsyntax.ParseShellDocument(args[1])
			if err != nil {
				return nil, err
			}
			for _, e := range opts {
				if e.Key == "force" {
					b, ok := e.Value.(bool)
					if !ok {
						return nil, fmt.Errorf("rs.reconfig's 'force' option must be a boolean.")
					}
					cmd.Force = b
				}
			}
		}

	case KindStepDown, KindFreeze:
		if len(args) > 0 {
			v, err := shellsyntax.ParseJSONValue(args[0])
			if err != nil {
				return nil, err
			}
			n, err := asSeconds(v)
			if err != nil {
				return nil, err
			}
			cmd.Seconds = n
		}

	case KindAdd, KindAddArb, KindSyncFrom:
		if len(args) == 0 {
			return nil, fmt.Errorf("rs.%s expects a host:port argument.", method)
		}
		host, err := argHost(args[0])
		if err != nil {
			return nil, err
		}
		cmd.Host = host

	case KindRemove:
		if len(args) == 0 {
			return nil, fmt.Errorf("rs.remove expects a host:port argument.")
		}
		host, err := argHost(args[0])
		if err != nil {
			return nil, err
		}
		cmd.Host = host
	}
	return cmd, nil
}

func argHost(arg string) (string, error) {
	v, err := shellsyntax.ParseJSONValue(arg)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("Expected a host:port string argument.")
	}
	return s, nil
}

func asSeconds(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("Expected a numeric seconds argument.")
	}
}
