package main

import (
	"os"

	"github.com/go-arcade/ingest/internal/engine/bootstrap"
	"github.com/go-arcade/ingest/pkg/version"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "ingest engine serves data sources, tasks and the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap 初始化应用
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		// 启动应用并等待退出信号
		bootstrap.Run(app, cleanup)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path, e.g. -c ./conf.d/config.toml")
	rootCmd.AddCommand(version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
