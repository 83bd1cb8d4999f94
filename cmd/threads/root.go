package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "threads",
	Short: "threads runs scripts in isolated background workers",
	Long:  `threads spawns worker processes, streams their messages, progress and errors, and exposes an optional introspection endpoint.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "threads.yaml", "Path to the worker configuration file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
