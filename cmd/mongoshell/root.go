// Command mongoshell is the CLI front end: it dials a real *mongo.Client,
// feeds shell statements to engine.Run, and prints the result tree the way
// a mongosh session would. Config layering (flags → env → file → default)
// follows the teacher's cobra+viper wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixdotgo/mongoshell/engine"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mongoshell",
	Short: "a mongosh-compatible query engine for MongoDB",
	RunE:  runREPL,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.mongoshell.yaml)")
	rootCmd.PersistentFlags().String("uri", "mongodb://localhost:27017", "MongoDB connection URI")
	rootCmd.PersistentFlags().String("database", "test", "database to run statements against")
	rootCmd.PersistentFlags().Duration("timeout", engine.DefaultTimeout, "per-operation timeout")
	rootCmd.PersistentFlags().Int("cursor-cap", engine.DefaultCursorCap, "max documents drained from a cursor")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("uri", rootCmd.PersistentFlags().Lookup("uri"))
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("cursor_cap", rootCmd.PersistentFlags().Lookup("cursor-cap"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(evalCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mongoshell")
	}

	viper.SetEnvPrefix("MONGOSHELL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func engineOptions() engine.Options {
	return engine.Options{
		Timeout:   viper.GetDuration("timeout"),
		CursorCap: viper.GetInt("cursor_cap"),
		Log:       newLogger(),
	}
}

func connect(ctx context.Context) (*mongo.Database, func(context.Context) error, error) {
	uri := viper.GetString("uri")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect error: %w", err)
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping failed: %w", err)
	}
	return client.Database(viper.GetString("database")), client.Disconnect, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
