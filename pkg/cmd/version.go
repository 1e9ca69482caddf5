package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/wikiviews/pkg/configs"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the version",
	// 不需要加载配置
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", configs.AppName, configs.AppVersion)
	},
}

// registerVersionCommands 注册 version 命令.
func registerVersionCommands() {
	rootCmd.AddCommand(versionCmd)
}
