package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stockctl",
	Short:         "stockhub operator CLI",
	Long:          "Operate a stockhub database: migrate the schema, seed demo data, manage users, mint dev tokens and audit stock ledgers.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	// Auth
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(tokenCmd)

	// Ledger
	rootCmd.AddCommand(historyCmd)
}
