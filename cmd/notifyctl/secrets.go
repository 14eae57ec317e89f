package main

import (
	"errors"
	"fmt"
	"os"

	"pride-notify/internal/pkg/apikey"
	"pride-notify/internal/pkg/secret"

	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new ENCRYPTION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := secret.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func encryptCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "encrypt [value]",
		Short: "Encrypt a configuration value with ENCRYPTION_KEY",
		Long: `Encrypts a gateway or ESB credential so it can be stored in the
environment. The key comes from --key or the ENCRYPTION_KEY variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv("ENCRYPTION_KEY")
			}
			if key == "" {
				return errors.New("no key: pass --key or set ENCRYPTION_KEY")
			}
			c, err := secret.NewCipher(key)
			if err != nil {
				return err
			}
			token, err := c.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Fernet key (defaults to $ENCRYPTION_KEY)")
	return cmd
}

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [api-key]",
		Short: "Hash a trigger API key for TRIGGER_API_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := apikey.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
}
