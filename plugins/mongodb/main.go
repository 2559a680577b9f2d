// Command mongodb-plugin is the MongoDB driver plugin binary: a thin
// stdin/stdout process that accepts a connection map and a shell statement
// and returns a result tree, built on engine (the shell query engine) and
// pkg/pluginapi (the stdio harness), following the teacher's own
// plugins/mongodb layout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/engine"
	"github.com/felixdotgo/mongoshell/pkg/pluginapi"
)

// credentialPayload is the JSON shape stored in connection["credential_blob"],
// carried over from the teacher's own connection-form encoding.
type credentialPayload struct {
	Form   string            `json:"form"`
	Values map[string]string `json:"values"`
}

// buildURI constructs a MongoDB connection URI from the connection map.
// Returns the URI string, the explicitly configured database name, and any error.
func buildURI(connection map[string]string) (string, string, error) {
	if u, ok := connection["uri"]; ok && u != "" {
		return u, "", nil
	}

	if blob, ok := connection["credential_blob"]; ok && blob != "" {
		var payload credentialPayload
		if err := json.Unmarshal([]byte(blob), &payload); err != nil {
			return "", "", fmt.Errorf("invalid credential blob: %w", err)
		}
		if u, ok := payload.Values["uri"]; ok && u != "" {
			return u, "", nil
		}
		return buildURIFromValues(payload.Values)
	}

	return buildURIFromValues(connection)
}

// buildURIFromValues constructs a MongoDB URI from a flat key/value map.
func buildURIFromValues(values map[string]string) (string, string, error) {
	host := values["host"]
	if host == "" {
		host = "127.0.0.1"
	}
	port := values["port"]
	if port == "" {
		port = "27017"
	}
	user := values["user"]
	pass := values["password"]
	dbname := values["database"]
	authSource := values["auth_source"]
	if authSource == "" {
		authSource = "admin"
	}

	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%s", host, port)}
	if user != "" {
		u.User = url.UserPassword(user, pass)
	}
	if dbname != "" {
		u.Path = "/" + dbname
	}
	q := url.Values{}
	if user != "" {
		q.Set("authSource", authSource)
	}
	if values["tls"] == "true" {
		q.Set("tls", "true")
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String(), dbname, nil
}

// getDatabaseName returns the database name from the connection map, if specified.
func getDatabaseName(connection map[string]string) string {
	if blob, ok := connection["credential_blob"]; ok && blob != "" {
		var payload credentialPayload
		if json.Unmarshal([]byte(blob), &payload) == nil {
			if d := payload.Values["database"]; d != "" {
				return d
			}
		}
	}
	return connection["database"]
}

// connectMongo builds a *mongo.Client from the connection map. The caller is
// responsible for calling client.Disconnect.
func connectMongo(ctx context.Context, connection map[string]string) (*mongo.Client, string, error) {
	uri, dbname, err := buildURI(connection)
	if err != nil {
		return nil, "", err
	}
	if uri == "" {
		return nil, "", fmt.Errorf("missing connection parameters")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, "", fmt.Errorf("connect error: %w", err)
	}
	if dbname == "" {
		dbname = getDatabaseName(connection)
	}
	return client, dbname, nil
}

type mongoPlugin struct{}

func (mongoPlugin) Info(ctx context.Context) (*pluginapi.InfoResponse, error) {
	return &pluginapi.InfoResponse{Name: "MongoDB", Version: "0.1.0"}, nil
}

func (mongoPlugin) Exec(ctx context.Context, req *pluginapi.ExecRequest) (*pluginapi.ExecResponse, error) {
	conn := map[string]string{"uri": req.URI}
	if req.Database != "" {
		conn["database"] = req.Database
	}
	client, dbname, err := connectMongo(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(ctx)

	res, err := engine.Run(ctx, client.Database(dbname), req.Query, engine.Options{})
	if err != nil {
		return &pluginapi.ExecResponse{Tree: pluginapi.FromNodes(engine.ErrorTree(err)), Error: err.Error()}, nil
	}
	return &pluginapi.ExecResponse{Tree: pluginapi.FromNodes(res.Roots)}, nil
}

func main() {
	pluginapi.ServeCLI(mongoPlugin{})
}
