package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixdotgo/mongoshell/engine"
)

// runREPL is the root command's default action: an interactive loop that
// reads one shell statement per line from stdin and prints its result
// tree, until "exit"/"quit" or EOF.
func runREPL(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect(ctx)

	opts := engineOptions()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(os.Stderr, "> ")
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		res, err := engine.Run(ctx, db, line, opts)
		if err != nil {
			printTree(engine.ErrorTree(err))
		} else {
			printTree(res.Roots)
		}
		fmt.Fprint(os.Stderr, "> ")
	}
	return scanner.Err()
}
