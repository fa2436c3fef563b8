package main

import (
	"github.com/go-arcade/agileboard/pkg/version"
	"github.com/spf13/cobra"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/4 19:51
 * @file: main.go
 * @description: cli program
 */

var confFile string

var rootCmd = &cobra.Command{
	Use:   "agileboard-cli",
	Short: "agileboard cli is a command line tool",
	Long:  "agileboard cli runs maintenance tasks against the agileboard database",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&confFile, "conf", "conf.d/config.toml", "conf file path")
	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(attentionCmd)
	rootCmd.AddCommand(lifecycleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
