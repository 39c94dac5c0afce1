// Purposes command group for the consentdb CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consentbase/consentdb/pkg/consent"
	"github.com/consentbase/consentdb/pkg/pipeline"
	"github.com/consentbase/consentdb/pkg/types"
)

var purposesCmd = &cobra.Command{
	Use:   "purposes",
	Short: "Manage consent purposes",
}

var purposesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the baseline consent purposes",
	Long: `Seed inserts the baseline purposes (necessary, functional, analytics,
marketing) when they are missing. Running it twice is safe.`,
	Args: cobra.NoArgs,
	RunE: runPurposesSeed,
}

var purposesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List consent purposes",
	Args:  cobra.NoArgs,
	RunE:  runPurposesList,
}

func init() {
	purposesCmd.AddCommand(purposesSeedCmd)
	purposesCmd.AddCommand(purposesListCmd)
}

func seedPurposes(ctx context.Context, eng *pipeline.Engine) (int, error) {
	return consent.SeedPurposes(ctx, eng)
}

func runPurposesSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, eng, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "purposes seed:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	created, err := seedPurposes(ctx, eng)
	if err != nil {
		fmt.Fprintln(os.Stderr, "purposes seed:", err)
		os.Exit(exitSysError)
	}
	fmt.Printf("Seeded %d purpose(s)\n", created)
	return nil
}

func runPurposesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "purposes list:", err)
		os.Exit(exitSysError)
	}
	defer s.Close()

	purposes, err := s.Adapter().FindMany(ctx, consent.EntityPurpose, types.Query{
		SortBy: &types.SortBy{Field: "code", Direction: types.SortAsc},
	})
	if err != nil {
		return fmt.Errorf("list purposes: %w", err)
	}
	return printRecords(purposes)
}
