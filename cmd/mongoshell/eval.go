package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixdotgo/mongoshell/engine"
)

var evalCmd = &cobra.Command{
	Use:   "eval <statement>",
	Short: "run a single shell statement and print its result tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect(ctx)

	res, err := engine.Run(ctx, db, args[0], engineOptions())
	if err != nil {
		printTree(engine.ErrorTree(err))
		return fmt.Errorf("statement failed: %w", err)
	}
	printTree(res.Roots)
	return nil
}
