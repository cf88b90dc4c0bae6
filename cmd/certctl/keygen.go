package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-certified-backend/internal/keys"
)

var keygenEnv bool

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 signing key pair",
	Long: `Generates a fresh Ed25519 key pair encoded as base64 DER
(SPKI for the public key, PKCS#8 for the private key).`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().BoolVar(&keygenEnv, "env", false, "print as CERT_SIGN_* environment assignments")
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	pub, priv, err := keys.Generate()
	if err != nil {
		return fmt.Errorf("generate keys: %w", err)
	}
	if keygenEnv {
		fmt.Fprintf(cmd.OutOrStdout(), "CERT_SIGN_PUBLIC_KEY=%s\n", pub)
		fmt.Fprintf(cmd.OutOrStdout(), "CERT_SIGN_PRIVATE_KEY=%s\n", priv)
		return nil
	}
	return printJSON(cmd, map[string]string{
		"algorithm":  "ed25519",
		"publicKey":  pub,
		"privateKey": priv,
	})
}
