package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "workboard",
	Short: "Workboard API - workspaces, projects and kanban boards",
	Long: `Workboard serves the REST API of a multi-tenant project management
backend: workspaces with ADMIN and MEMBER roles, projects, and tasks ordered
on a five lane board.

Configuration is read from environment variables and, optionally, a YAML
file passed with --config.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("workboard %s\ncommit: %s\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(versionCmd, serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
