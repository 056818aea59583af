package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-arcade/ingest/internal/console"
	"github.com/go-arcade/ingest/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ingestctl",
	Short: "ingestctl manages data sources and sync tasks of an ingest engine",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://127.0.0.1:8000", "engine address, env INGEST_SERVER")
	flags.StringP("output", "o", "table", "output format: table, json or yaml")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	flags.Int("retry", 2, "retries of idempotent reads")

	viper.SetEnvPrefix("INGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"server", "output", "timeout", "retry"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(taskCmd(), dataSourceCmd(), auditCmd(), assetCmd(), version.VersionCmd)
}

func newClient() *console.Client {
	return console.NewClient(console.ClientConfig{
		Server:  viper.GetString("server"),
		Timeout: viper.GetDuration("timeout"),
		Retry:   viper.GetInt("retry"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
