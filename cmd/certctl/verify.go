package main

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-certified-backend/internal/keys"
	"github.com/tbourn/go-certified-backend/internal/services"
)

var (
	verifyArtifact  string
	verifySignature string
	verifyPubKey    string
)

// errVerifyFailed makes the process exit non-zero on a negative result.
var errVerifyFailed = errors.New("verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signed artifact offline",
	Long: `Verifies an artifact body against its Ed25519 signature and a public key,
then checks that the embedded sha256 matches the artifact content. Formatting
and key order of the artifact file do not matter.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyArtifact, "artifact", "a", "", "artifact JSON file (\"-\" for stdin)")
	verifyCmd.Flags().StringVarP(&verifySignature, "signature", "s", "", "base64 signature or a file containing it")
	verifyCmd.Flags().StringVarP(&verifyPubKey, "pubkey", "k", "", "base64 DER public key or a file containing it")
	_ = verifyCmd.MarkFlagRequired("artifact")
	_ = verifyCmd.MarkFlagRequired("signature")
	_ = verifyCmd.MarkFlagRequired("pubkey")
	rootCmd.AddCommand(verifyCmd)
}

// publicKeyVerifier checks signatures against a single public key.
type publicKeyVerifier struct{ pub ed25519.PublicKey }

func (v publicKeyVerifier) Verify(msg []byte, sigB64 string) bool {
	return keys.VerifyWith(v.pub, msg, sigB64)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	pub, err := keys.ParsePublicKey(fileOrValue(verifyPubKey))
	if err != nil {
		return err
	}
	raw, err := readInput(cmd, verifyArtifact)
	if err != nil {
		return err
	}

	svc := services.NewVerifyService(nil, nil, publicKeyVerifier{pub: pub}, nil)
	res, err := svc.Inline(context.Background(), raw, fileOrValue(verifySignature))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if err := printJSON(cmd, res); err != nil {
		return err
	}
	if !res.OK {
		return errVerifyFailed
	}
	return nil
}
