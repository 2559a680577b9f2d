// Package pluginapi is the stdin/stdout JSON harness a mongoshell front end
// drives a query engine process through: a small set of plain Go structs
// and a ServeCLI dispatcher, adapted from the teacher's pkg/plugin.ServeCLI.
// The teacher's harness carries its request/response shapes as protobuf
// type aliases (github.com/felixdotgo/querybox/rpc/contracts/plugin/v1);
// that generated package is not part of this module's retrieval pack, so
// here the same wire shapes are plain structs marshaled with encoding/json
// instead of protojson — see DESIGN.md for why the proto dependency was
// dropped rather than reimplemented.
package pluginapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/felixdotgo/mongoshell/internal/bsontree"
)

// InfoResponse answers the "info" subcommand: what this binary is and what
// version it reports itself as.
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ExecRequest is the "exec" subcommand's stdin payload: a connection URI to
// dial, the database to run against, and the shell statement to execute.
type ExecRequest struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	Query    string `json:"query"`
}

// TreeNode is the JSON-safe projection of a bsontree.Node — Value is
// dropped since it may hold a non-JSON-marshalable BSON type (ObjectID,
// Decimal128, ...); Display already carries the shell-formatted text for
// scalar leaves.
type TreeNode struct {
	ID         int        `json:"id"`
	Kind       string     `json:"kind"`
	DisplayKey string     `json:"displayKey"`
	TypeLabel  string     `json:"typeLabel"`
	Display    string     `json:"display,omitempty"`
	Children   []TreeNode `json:"children,omitempty"`
}

func fromNode(n *bsontree.Node) TreeNode {
	out := TreeNode{
		ID: n.ID, DisplayKey: n.DisplayKey, TypeLabel: n.TypeLabel, Display: n.Display,
	}
	switch n.Kind {
	case bsontree.KindDocument:
		out.Kind = "document"
	case bsontree.KindArray:
		out.Kind = "array"
	default:
		out.Kind = "scalar"
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, fromNode(c))
	}
	return out
}

// FromNodes projects a slice of result-tree roots into their JSON-safe form.
func FromNodes(roots []*bsontree.Node) []TreeNode {
	out := make([]TreeNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, fromNode(r))
	}
	return out
}

// ExecResponse is the "exec" subcommand's stdout payload.
type ExecResponse struct {
	Tree  []TreeNode `json:"tree,omitempty"`
	Error string     `json:"error,omitempty"`
}

// Service is what a driver plugin implements; Exec is expected to dial its
// own connection per call (or reuse a pooled one) since the harness is
// stateless across invocations.
type Service interface {
	Info(ctx context.Context) (*InfoResponse, error)
	Exec(ctx context.Context, req *ExecRequest) (*ExecResponse, error)
}

// ServeCLI drives s from os.Args[1] ("info" or "exec"), reading a JSON
// request body from stdin for "exec" and writing the JSON response to
// stdout, mirroring the teacher's ServeCLI dispatch shape with protojson
// swapped for encoding/json.
func ServeCLI(s Service) {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "info":
		info, err := s.Info(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "mongoshell: info error: %v\n", err)
			os.Exit(1)
		}
		writeJSON(info)
	case "exec":
		in, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mongoshell: failed to read stdin: %v\n", err)
			os.Exit(1)
		}
		var req ExecRequest
		if err := json.Unmarshal(in, &req); err != nil {
			fmt.Fprintf(os.Stderr, "mongoshell: invalid request json: %v\n", err)
			os.Exit(1)
		}
		res, err := s.Exec(context.Background(), &req)
		if err != nil {
			res = &ExecResponse{Error: err.Error()}
		}
		writeJSON(res)
	default:
		usage()
		os.Exit(2)
	}
}

func writeJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongoshell: failed to marshal response: %v\n", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(b)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: mongoshell-plugin info | exec (request on stdin as JSON)")
}
