package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-certified-backend/internal/canon"
	"github.com/tbourn/go-certified-backend/internal/domain"
)

var canonHash bool

var canonCmd = &cobra.Command{
	Use:   "canon [file]",
	Short: "Print the canonical form of a JSON document",
	Long: `Prints the canonical JSON of a document: object keys sorted, no
insignificant whitespace. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runCanon,
}

var lockCmd = &cobra.Command{
	Use:   "lock [plan.json]",
	Short: "Compute the lock of a plan",
	Long: `Computes {algo, hash} for a plan document ({title, items}). The hash is
the SHA-256 of the plan's canonical JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runLock,
}

func init() {
	canonCmd.Flags().BoolVar(&canonHash, "sha256", false, "print the SHA-256 of the canonical form instead")
	rootCmd.AddCommand(canonCmd)
	rootCmd.AddCommand(lockCmd)
}

func runCanon(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	out, err := canon.CanonicalizeJSON(raw)
	if err != nil {
		return fmt.Errorf("canonicalize: %w", err)
	}
	if canonHash {
		fmt.Fprintln(cmd.OutOrStdout(), canon.SHA256Hex(out))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runLock(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	var plan domain.PlanDraft
	if err := json.Unmarshal(raw, &plan); err != nil {
		return fmt.Errorf("decode plan: %w", err)
	}
	if !domain.ValidDraft(plan) {
		return fmt.Errorf("plan must have at least one card and unique item ids")
	}
	lock, err := canon.ComputeLock(plan)
	if err != nil {
		return fmt.Errorf("compute lock: %w", err)
	}
	return printJSON(cmd, lock)
}
