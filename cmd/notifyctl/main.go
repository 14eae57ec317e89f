// notifyctl is the operator CLI for pride-notify.
//
// Usage:
//
//	notifyctl keygen
//	ENCRYPTION_KEY=... notifyctl encrypt 'https://esb.internal/loans'
//	notifyctl hash-key 's3cret-trigger-key'
//	notifyctl dispatch loans_due --bulk -o json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notifyctl",
		Short: "Manage pride-notify secrets and run dispatches by hand",
		Long: `notifyctl prepares encrypted configuration values for pride-notify
and runs a single category dispatch outside the scheduler.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")

	root.AddCommand(keygenCmd())
	root.AddCommand(encryptCmd())
	root.AddCommand(hashKeyCmd())
	root.AddCommand(dispatchCmd())
	return root
}
